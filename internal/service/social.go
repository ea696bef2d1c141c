package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rs/xid"

	"github.com/Atulsharma2004/quote-app-at/internal/apperror"
	"github.com/Atulsharma2004/quote-app-at/internal/auth"
	"github.com/Atulsharma2004/quote-app-at/internal/model"
	"github.com/Atulsharma2004/quote-app-at/internal/repository"
)

// Follow actions reported back to the client.
const (
	ActionFollowed   = "followed"
	ActionUnfollowed = "unfollowed"
)

// RelatedFollowers / RelatedFollowing select which list ListRelated reads.
const (
	RelatedFollowers = "followers"
	RelatedFollowing = "following"
)

// SocialService maintains the follow graph and user profiles.
type SocialService struct {
	users  repository.UserRepository
	logger *slog.Logger
}

// NewSocialService creates a SocialService.
func NewSocialService(users repository.UserRepository, logger *slog.Logger) *SocialService {
	return &SocialService{users: users, logger: logger}
}

// FollowStatus is the read-only social summary for a profile page.
type FollowStatus struct {
	IsFollowing    bool `json:"isFollowing"`
	IsOwnProfile   bool `json:"isOwnProfile"`
	FollowersCount int  `json:"followersCount"`
	FollowingCount int  `json:"followingCount"`
}

// ToggleFollow flips the follow edge from actor to target and returns the new
// state plus which action was taken.
//
// Both sides of the edge — target joining actor.Following and actor joining
// target.Followers — are applied by the repository in one transaction, so the
// symmetric-edge invariant holds even across a crash between writes. The
// toggle decision itself reads the actor's current list; two racing toggles
// serialize on the row transaction and the set semantics keep duplicates out
// either way.
func (s *SocialService) ToggleFollow(ctx context.Context, actorID, targetID string) (bool, string, error) {
	actorID = normalizeID(actorID)
	targetID = normalizeID(targetID)

	if actorID == "" || targetID == "" {
		return false, "", apperror.ValidationFailed("userId", "user ID is required")
	}
	if actorID == targetID {
		return false, "", apperror.ValidationFailed("userId", "you cannot follow yourself")
	}

	actor, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return false, "", err
	}
	if _, err := s.users.GetByID(ctx, targetID); err != nil {
		return false, "", err
	}

	isFollowing := containsNormalized(actor.Following, targetID)

	if err := s.users.SetFollowEdge(ctx, actorID, targetID, !isFollowing); err != nil {
		return false, "", fmt.Errorf("service/social: toggling follow %s→%s: %w", actorID, targetID, err)
	}

	action := ActionFollowed
	if isFollowing {
		action = ActionUnfollowed
	}

	s.logger.Info("follow toggled",
		slog.String("actor", actorID),
		slog.String("target", targetID),
		slog.String("action", action),
	)

	return !isFollowing, action, nil
}

// GetFollowStatus reports whether viewer follows target, plus the target's
// follower/following counts. Read-only, no side effects.
func (s *SocialService) GetFollowStatus(ctx context.Context, viewerID, targetID string) (*FollowStatus, error) {
	viewer, err := s.users.GetByID(ctx, normalizeID(viewerID))
	if err != nil {
		return nil, err
	}
	target, err := s.users.GetByID(ctx, normalizeID(targetID))
	if err != nil {
		return nil, err
	}

	return &FollowStatus{
		IsFollowing:    containsNormalized(viewer.Following, target.ID),
		IsOwnProfile:   viewer.ID == target.ID,
		FollowersCount: len(target.Followers),
		FollowingCount: len(target.Following),
	}, nil
}

// ListRelated returns the display projection of a user's followers or
// following list.
//
// Entries that are not valid ids (legacy writes) are dropped silently rather
// than failing the request; the rest are batch-fetched in one query. Output
// order follows the batch fetch, not the stored list — callers must not
// depend on it.
func (s *SocialService) ListRelated(ctx context.Context, userID, which string) ([]model.RelatedUser, error) {
	user, err := s.users.GetByID(ctx, normalizeID(userID))
	if err != nil {
		return nil, err
	}

	var ids []string
	switch which {
	case RelatedFollowers:
		ids = user.Followers
	case RelatedFollowing:
		ids = user.Following
	default:
		return nil, apperror.ValidationFailed("which", "must be followers or following")
	}

	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		id = normalizeID(id)
		if _, err := xid.FromString(id); err != nil {
			s.logger.Debug("dropping invalid id from relation list",
				slog.String("userID", user.ID),
				slog.String("entry", id),
			)
			continue
		}
		valid = append(valid, id)
	}

	users, err := s.users.ListByIDs(ctx, valid)
	if err != nil {
		return nil, fmt.Errorf("service/social: fetching %s of %s: %w", which, user.ID, err)
	}

	related := make([]model.RelatedUser, 0, len(users))
	for _, u := range users {
		related = append(related, model.RelatedUser{
			ID:             u.ID,
			Name:           u.Name,
			Email:          u.Email,
			ProfilePicture: u.ProfilePicture,
			Bio:            u.Bio,
		})
	}
	return related, nil
}

// GetProfile returns a user's full profile. When the requested id doesn't
// resolve but belongs to the viewer, the viewer's email is tried as a
// fallback — the same schema-drift tolerance as the resolver.
func (s *SocialService) GetProfile(ctx context.Context, id string, viewer auth.Principal) (*model.User, error) {
	user, err := s.users.GetByID(ctx, normalizeID(id))
	if err == nil {
		return user, nil
	}

	if id == viewer.ID && viewer.Email != "" {
		if user, emailErr := s.users.GetByEmail(ctx, viewer.Email); emailErr == nil {
			return user, nil
		}
	}

	return nil, err
}

// UpdateProfile applies a profile edit for the authenticated user. Name is
// required; a nil picture leaves the stored avatar untouched.
func (s *SocialService) UpdateProfile(ctx context.Context, viewer auth.Principal, name, bio string, picture *string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return apperror.ValidationFailed("name", "name is required")
	}

	err := s.users.UpdateProfile(ctx, viewer.ID, repository.ProfileUpdate{
		Name:           name,
		Bio:            bio,
		ProfilePicture: picture,
	})
	if err != nil {
		return err
	}

	s.logger.Info("profile updated", slog.String("userID", viewer.ID))
	return nil
}

// normalizeID reduces the stored id representations (raw string, quoted
// legacy forms, stray whitespace) to one comparable form.
func normalizeID(id string) string {
	return strings.Trim(strings.TrimSpace(id), `"`)
}

func containsNormalized(ids []string, id string) bool {
	id = normalizeID(id)
	for _, v := range ids {
		if normalizeID(v) == id {
			return true
		}
	}
	return false
}
