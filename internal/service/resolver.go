package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/rs/xid"

	"github.com/Atulsharma2004/quote-app-at/internal/apperror"
	"github.com/Atulsharma2004/quote-app-at/internal/model"
	"github.com/Atulsharma2004/quote-app-at/internal/repository"
)

// Resolver turns the (userID, email, snapshot) triple stored on quotes and
// comments into a current avatar.
//
// THE THREE-TIER FALLBACK:
// The id representation stored in quote.userId has drifted over the
// application's history — early rows carry values that are not valid ids
// today — so userId cannot be assumed to be a live foreign key. Resolution
// therefore tries, in order:
//
//  1. fresh lookup by owner id (only when the id parses as a valid xid)
//  2. fresh lookup by the email snapshot
//  3. the avatar denormalized onto the quote/comment at write time
//  4. empty
//
// A resolution failure is never an error for the caller: tier 3/4 always
// produce a usable value, which is what lets feed enrichment degrade
// per-item instead of aborting a page.
type Resolver struct {
	users  repository.UserRepository
	logger *slog.Logger
}

// NewResolver creates a Resolver over the user store.
func NewResolver(users repository.UserRepository, logger *slog.Logger) *Resolver {
	return &Resolver{users: users, logger: logger}
}

// ResolveAvatar returns the freshest avatar available for the given identity
// triple. Empty string means "no avatar anywhere".
func (r *Resolver) ResolveAvatar(ctx context.Context, userID, email, snapshot string) string {
	if u := r.Lookup(ctx, userID, email); u != nil && u.ProfilePicture != "" {
		return u.ProfilePicture
	}
	return snapshot
}

// Lookup finds the user behind an identity triple, trying id first and email
// second. Returns nil when neither resolves — callers decide whether that is
// an error (quote creation) or a fallback (enrichment).
func (r *Resolver) Lookup(ctx context.Context, userID, email string) *model.User {
	if id := strings.TrimSpace(userID); id != "" {
		// Skip the id lookup entirely for values that were never valid
		// xids (legacy rows) — they cannot match and the email tier is
		// the right path for them.
		if _, err := xid.FromString(id); err == nil {
			u, err := r.users.GetByID(ctx, id)
			if err == nil {
				return u
			}
			if !errors.Is(err, apperror.ErrNotFound) {
				r.logger.Warn("resolver: id lookup failed",
					slog.String("userID", id),
					slog.String("error", err.Error()),
				)
			}
		}
	}

	if email = strings.TrimSpace(email); email != "" {
		u, err := r.users.GetByEmail(ctx, email)
		if err == nil {
			return u
		}
		if !errors.Is(err, apperror.ErrNotFound) {
			r.logger.Warn("resolver: email lookup failed",
				slog.String("email", email),
				slog.String("error", err.Error()),
			)
		}
	}

	return nil
}
