package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Atulsharma2004/quote-app-at/internal/apperror"
	"github.com/Atulsharma2004/quote-app-at/internal/auth"
	"github.com/Atulsharma2004/quote-app-at/internal/model"
	"github.com/Atulsharma2004/quote-app-at/internal/repository"
)

// QuoteService owns the quote lifecycle: create, read, edit, delete, like,
// comment. Read-side enrichment (re-resolving avatars on lists) lives in
// FeedService; this service handles the write paths.
type QuoteService struct {
	quotes   repository.QuoteRepository
	resolver *Resolver
	logger   *slog.Logger
}

// NewQuoteService creates a QuoteService.
func NewQuoteService(quotes repository.QuoteRepository, resolver *Resolver, logger *slog.Logger) *QuoteService {
	return &QuoteService{quotes: quotes, resolver: resolver, logger: logger}
}

// QuoteInput is the user-editable portion of a quote.
type QuoteInput struct {
	Text     string `json:"text"`
	Author   string `json:"author"`
	Category string `json:"category"`
}

func (in *QuoteInput) validate() error {
	in.Text = strings.TrimSpace(in.Text)
	in.Author = strings.TrimSpace(in.Author)
	in.Category = strings.TrimSpace(in.Category)

	if in.Text == "" || in.Author == "" {
		return apperror.ValidationFailed("", "quote text and author are required")
	}
	return nil
}

// Create stores a new quote for the authenticated user.
//
// The poster's name, email, and avatar are snapshotted onto the quote so it
// renders without a join. The avatar snapshot comes from a fresh profile
// lookup, not the token — the token may predate a profile edit. If the
// principal resolves to no stored user at all (deleted account with a live
// cookie) the create is refused.
func (s *QuoteService) Create(ctx context.Context, viewer auth.Principal, in QuoteInput) (*model.Quote, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	owner := s.resolver.Lookup(ctx, viewer.ID, viewer.Email)
	if owner == nil {
		return nil, apperror.NotFound("user", viewer.ID)
	}

	quote := &model.Quote{
		Text:      in.Text,
		Author:    in.Author,
		Category:  in.Category,
		UserID:    owner.ID,
		UserName:  owner.Name,
		UserEmail: owner.Email,
		UserImage: owner.ProfilePicture,
		Likes:     []string{},
		Comments:  []model.Comment{},
	}

	if err := s.quotes.Create(ctx, quote); err != nil {
		return nil, fmt.Errorf("service/quote: creating quote: %w", err)
	}

	s.logger.Info("quote created",
		slog.String("quoteID", quote.ID),
		slog.String("userID", owner.ID),
	)

	return quote, nil
}

// Get returns a single quote by id.
func (s *QuoteService) Get(ctx context.Context, id string) (*model.Quote, error) {
	return s.quotes.GetByID(ctx, id)
}

// Update edits a quote's text, author, and category. Only the quote's owner
// or an admin may edit; likes and comments are untouched.
func (s *QuoteService) Update(ctx context.Context, viewer auth.Principal, id string, in QuoteInput) (*model.Quote, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	quote, err := s.quotes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(viewer, quote); err != nil {
		return nil, err
	}

	quote.Text = in.Text
	quote.Author = in.Author
	quote.Category = in.Category

	if err := s.quotes.Update(ctx, quote); err != nil {
		return nil, fmt.Errorf("service/quote: updating quote %s: %w", id, err)
	}

	s.logger.Info("quote updated",
		slog.String("quoteID", id),
		slog.String("userID", viewer.ID),
	)

	return quote, nil
}

// Delete removes a quote and, with it, all embedded comments and likes.
// Owner-or-admin only.
func (s *QuoteService) Delete(ctx context.Context, viewer auth.Principal, id string) error {
	quote, err := s.quotes.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorize(viewer, quote); err != nil {
		return err
	}

	if err := s.quotes.Delete(ctx, id); err != nil {
		return fmt.Errorf("service/quote: deleting quote %s: %w", id, err)
	}

	s.logger.Info("quote deleted",
		slog.String("quoteID", id),
		slog.String("userID", viewer.ID),
	)

	return nil
}

// LikeResult reports the state after a like toggle.
type LikeResult struct {
	Liked      bool `json:"liked"`
	LikesCount int  `json:"likesCount"`
}

// ToggleLike flips the viewer's like on a quote. Membership decides the
// direction: present means remove, absent means add. The list and counter
// move together inside the repository transaction, so likesCount always
// equals the set size — a like followed by an unlike restores the original
// count exactly.
func (s *QuoteService) ToggleLike(ctx context.Context, viewer auth.Principal, quoteID string) (*LikeResult, error) {
	quote, err := s.quotes.GetByID(ctx, quoteID)
	if err != nil {
		return nil, err
	}

	liked := containsNormalized(quote.Likes, viewer.ID)

	if err := s.quotes.SetLike(ctx, quoteID, viewer.ID, !liked); err != nil {
		return nil, fmt.Errorf("service/quote: toggling like on %s: %w", quoteID, err)
	}

	count := quote.LikesCount
	if liked {
		count--
	} else {
		count++
	}

	return &LikeResult{Liked: !liked, LikesCount: count}, nil
}

// AddComment appends an immutable comment to a quote and returns it.
//
// The commenter's identity is snapshotted the same way quote creation
// snapshots the poster's: name and email from the token, avatar from a fresh
// profile lookup falling back to empty. Comment ids are UUIDs rather than
// xids — comments never need ordering by id, and the random form makes them
// unguessable in client URLs.
func (s *QuoteService) AddComment(ctx context.Context, viewer auth.Principal, quoteID, text string) (*model.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperror.ValidationFailed("text", "comment text is required")
	}

	if _, err := s.quotes.GetByID(ctx, quoteID); err != nil {
		return nil, err
	}

	avatar := s.resolver.ResolveAvatar(ctx, viewer.ID, viewer.Email, "")

	comment := model.Comment{
		ID:        uuid.NewString(),
		Text:      text,
		UserID:    viewer.ID,
		UserName:  viewer.Name,
		UserEmail: viewer.Email,
		UserImage: avatar,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.quotes.AppendComment(ctx, quoteID, comment); err != nil {
		return nil, fmt.Errorf("service/quote: commenting on %s: %w", quoteID, err)
	}

	s.logger.Info("comment added",
		slog.String("quoteID", quoteID),
		slog.String("commentID", comment.ID),
		slog.String("userID", viewer.ID),
	)

	return &comment, nil
}

// authorize enforces the owner-or-admin rule for quote mutations. Ownership
// compares the normalized stored owner id against the principal, so legacy
// quoted-id rows still authorize their real owner.
func (s *QuoteService) authorize(viewer auth.Principal, quote *model.Quote) error {
	if viewer.IsAdmin() {
		return nil
	}
	if normalizeID(quote.UserID) == normalizeID(viewer.ID) {
		return nil
	}
	return apperror.Forbidden("you can only modify your own quotes")
}
