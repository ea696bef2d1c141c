// Package repository defines the storage interfaces the service layer programs
// against. The sqlite subpackage provides the concrete implementation; tests
// substitute in-memory mocks.
package repository

import (
	"context"

	"github.com/Atulsharma2004/quote-app-at/internal/model"
)

// Sort orders accepted by QuoteFilter.Sort. Anything else falls back to
// SortNewest.
const (
	SortNewest        = "newest"
	SortOldest        = "oldest"
	SortMostLiked     = "most-liked"
	SortMostCommented = "most-commented"
)

// CategoryAll is the sentinel meaning "no category filter".
const CategoryAll = "all"

// QuoteFilter describes a filtered/sorted/paginated view over the quote store.
// Search matches case-insensitively against quote text, quote author, and the
// denormalized poster name (logical OR).
type QuoteFilter struct {
	Search   string
	Category string
	Sort     string
	Page     int
	Limit    int
}

// ProfileUpdate carries a profile edit. A nil ProfilePicture means "leave the
// stored avatar unchanged"; a pointer to the empty string clears it.
type ProfileUpdate struct {
	Name           string
	Bio            string
	ProfilePicture *string
}

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	// GetByID returns apperror.ErrNotFound for unknown AND malformed ids —
	// a malformed id is never an internal error (see the resolver fallback chain).
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateProfile(ctx context.Context, id string, upd ProfileUpdate) error
	// SetFollowEdge adds (follow=true) or removes (follow=false) the directed
	// edge follower→followee on BOTH user documents in one transaction:
	// followee joins/leaves follower.Following, follower joins/leaves
	// followee.Followers. Set semantics — applying the same edge twice is a no-op.
	SetFollowEdge(ctx context.Context, followerID, followeeID string, follow bool) error
	// ListByIDs batch-fetches users. Unknown ids are skipped; output order is
	// storage order, not input order.
	ListByIDs(ctx context.Context, ids []string) ([]model.User, error)
	Count(ctx context.Context) (int, error)
}

type QuoteRepository interface {
	Create(ctx context.Context, quote *model.Quote) error
	GetByID(ctx context.Context, id string) (*model.Quote, error)
	Update(ctx context.Context, quote *model.Quote) error
	Delete(ctx context.Context, id string) error
	// List returns one page of quotes plus the total match count for the filter.
	List(ctx context.Context, filter QuoteFilter) ([]model.Quote, int, error)
	ListLikedBy(ctx context.Context, userID string) ([]model.Quote, error)
	ListByUser(ctx context.Context, userID string) ([]model.Quote, error)
	Recent(ctx context.Context, limit int) ([]model.RecentQuote, error)
	Count(ctx context.Context) (int, error)
	// SetLike adds or removes userID from the quote's like set and moves
	// likesCount with it in the same transaction.
	SetLike(ctx context.Context, quoteID, userID string, like bool) error
	// AppendComment appends the comment and increments commentsCount in the
	// same transaction. Comments are immutable once appended.
	AppendComment(ctx context.Context, quoteID string, comment model.Comment) error
}
