package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Atulsharma2004/quote-app-at/internal/model"
	"github.com/Atulsharma2004/quote-app-at/internal/repository"
)

// Default pagination window for the public feed.
const (
	DefaultPage  = 1
	DefaultLimit = 9
	MaxLimit     = 100
)

// statsTimeout bounds the aggregate queries behind the home page. Past it we
// serve zeros rather than an error — see SiteStats.
const statsTimeout = 2 * time.Second

// FeedService serves the read side: the filtered public feed, per-user quote
// lists, and the aggregate stats on the home page. Every list it returns is
// enriched — avatars re-resolved through the identity resolver so a profile
// edit shows up on old quotes.
type FeedService struct {
	quotes   repository.QuoteRepository
	users    repository.UserRepository
	resolver *Resolver
	logger   *slog.Logger
}

// NewFeedService creates a FeedService.
func NewFeedService(
	quotes repository.QuoteRepository,
	users repository.UserRepository,
	resolver *Resolver,
	logger *slog.Logger,
) *FeedService {
	return &FeedService{quotes: quotes, users: users, resolver: resolver, logger: logger}
}

// Pagination describes one page of a larger result set. Pages is
// ceil(Total/Limit) so the client can render page controls without a second
// request.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// ListQuotes returns one enriched page of the public feed.
//
// Out-of-range page/limit values are clamped to defaults rather than
// rejected — the feed is the landing page and should never 400 over a bad
// query string. Enrichment failures degrade per item: a quote whose poster
// can't be resolved keeps its stored snapshot, and the page still renders.
func (s *FeedService) ListQuotes(ctx context.Context, filter repository.QuoteFilter) ([]model.Quote, Pagination, error) {
	if filter.Page < 1 {
		filter.Page = DefaultPage
	}
	if filter.Limit < 1 || filter.Limit > MaxLimit {
		filter.Limit = DefaultLimit
	}
	if filter.Category == "" {
		filter.Category = repository.CategoryAll
	}

	quotes, total, err := s.quotes.List(ctx, filter)
	if err != nil {
		return nil, Pagination{}, fmt.Errorf("service/feed: listing quotes: %w", err)
	}

	s.enrich(ctx, quotes)

	return quotes, s.paginate(filter.Page, filter.Limit, total), nil
}

// ListByUser returns all quotes posted by one user, enriched, newest first.
func (s *FeedService) ListByUser(ctx context.Context, userID string) ([]model.Quote, error) {
	quotes, err := s.quotes.ListByUser(ctx, normalizeID(userID))
	if err != nil {
		return nil, fmt.Errorf("service/feed: listing quotes for user %s: %w", userID, err)
	}
	s.enrich(ctx, quotes)
	return quotes, nil
}

// ListLikedBy returns all quotes the given user has liked, enriched.
func (s *FeedService) ListLikedBy(ctx context.Context, userID string) ([]model.Quote, error) {
	quotes, err := s.quotes.ListLikedBy(ctx, normalizeID(userID))
	if err != nil {
		return nil, fmt.Errorf("service/feed: listing liked quotes for user %s: %w", userID, err)
	}
	s.enrich(ctx, quotes)
	return quotes, nil
}

// UserStats aggregates a user's activity for their profile page.
type UserStats struct {
	TotalQuotes   int    `json:"totalQuotes"`
	TotalLikes    int    `json:"totalLikes"`
	TotalComments int    `json:"totalComments"`
	JoinedDate    string `json:"joinedDate"`
}

// GetUserStats sums likes and comments across everything the user posted.
// JoinedDate falls back to "N/A" when the user row predates timestamping.
func (s *FeedService) GetUserStats(ctx context.Context, userID string) (*UserStats, error) {
	user, err := s.users.GetByID(ctx, normalizeID(userID))
	if err != nil {
		return nil, err
	}

	quotes, err := s.quotes.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/feed: stats for user %s: %w", userID, err)
	}

	stats := &UserStats{TotalQuotes: len(quotes), JoinedDate: "N/A"}
	for _, q := range quotes {
		stats.TotalLikes += q.LikesCount
		stats.TotalComments += q.CommentsCount
	}
	if !user.CreatedAt.IsZero() {
		stats.JoinedDate = user.CreatedAt.Format("January 2006")
	}

	return stats, nil
}

// SiteStats is the aggregate banner on the home page.
type SiteStats struct {
	TotalQuotes int `json:"totalQuotes"`
	TotalUsers  int `json:"totalUsers"`
}

// GetSiteStats counts quotes and users under a bounded deadline.
//
// The home page must render even when the store is slow or down, so a failed
// or timed-out count degrades to zero instead of surfacing an error. The
// error return exists for tests; handlers ignore it and always serve 200.
func (s *FeedService) GetSiteStats(ctx context.Context) (*SiteStats, error) {
	ctx, cancel := context.WithTimeout(ctx, statsTimeout)
	defer cancel()

	stats := &SiteStats{}

	quotes, err := s.quotes.Count(ctx)
	if err != nil {
		s.logger.Warn("site stats degraded: quote count failed", slog.String("error", err.Error()))
		return stats, err
	}
	stats.TotalQuotes = quotes

	users, err := s.users.Count(ctx)
	if err != nil {
		s.logger.Warn("site stats degraded: user count failed", slog.String("error", err.Error()))
		return stats, err
	}
	stats.TotalUsers = users

	return stats, nil
}

// GetRecentQuotes returns the newest quotes as trimmed home-page cards.
// Same degraded contract as GetSiteStats: on failure the caller gets an
// empty slice it can serve with a 200.
func (s *FeedService) GetRecentQuotes(ctx context.Context, limit int) ([]model.RecentQuote, error) {
	ctx, cancel := context.WithTimeout(ctx, statsTimeout)
	defer cancel()

	recent, err := s.quotes.Recent(ctx, limit)
	if err != nil {
		s.logger.Warn("recent quotes degraded", slog.String("error", err.Error()))
		return []model.RecentQuote{}, err
	}
	return recent, nil
}

// enrich re-resolves the poster avatar on each quote and each embedded
// comment, in place. Failures leave the stored snapshot — never an error.
func (s *FeedService) enrich(ctx context.Context, quotes []model.Quote) {
	for i := range quotes {
		q := &quotes[i]
		q.UserImage = s.resolver.ResolveAvatar(ctx, q.UserID, q.UserEmail, q.UserImage)
		for j := range q.Comments {
			c := &q.Comments[j]
			c.UserImage = s.resolver.ResolveAvatar(ctx, c.UserID, c.UserEmail, c.UserImage)
		}
	}
}

func (s *FeedService) paginate(page, limit, total int) Pagination {
	pages := 0
	if total > 0 {
		pages = (total + limit - 1) / limit
	}
	return Pagination{Page: page, Limit: limit, Total: total, Pages: pages}
}
