package handler

import (
	"log/slog"
	"net/http"

	"github.com/Atulsharma2004/quote-app-at/internal/auth"
	"github.com/Atulsharma2004/quote-app-at/internal/metrics"
	"github.com/Atulsharma2004/quote-app-at/internal/service"
)

// UserHandler manages profiles and the follow graph.
type UserHandler struct {
	social *service.SocialService
	feed   *service.FeedService
	logger *slog.Logger
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(social *service.SocialService, feed *service.FeedService, logger *slog.Logger) *UserHandler {
	return &UserHandler{social: social, feed: feed, logger: logger}
}

// HandleGetProfile returns a user's public profile.
//
// HTTP: GET /api/users/{id}/profile
// Auth: Required — the principal also drives the own-profile email fallback.
func (h *UserHandler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.PrincipalFromContext(r.Context())

	user, err := h.social.GetProfile(r.Context(), r.PathValue("id"), p)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

type profileUpdateRequest struct {
	Name string `json:"name"`
	Bio  string `json:"bio"`
	// Pointer distinguishes "field absent" (keep stored avatar) from
	// "empty string" (clear it).
	ProfilePicture *string `json:"profilePicture"`
}

// HandleUpdateProfile edits the caller's own profile.
//
// HTTP: PUT /api/users/profile
// Auth: Required
func (h *UserHandler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.PrincipalFromContext(r.Context())

	var req profileUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.social.UpdateProfile(r.Context(), p, req.Name, req.Bio, req.ProfilePicture); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.social.GetProfile(r.Context(), p.ID, p)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

type followResponse struct {
	IsFollowing bool   `json:"isFollowing"`
	Action      string `json:"action"`
}

// HandleToggleFollow follows or unfollows a user.
//
// HTTP: POST /api/users/{id}/follow
// Auth: Required
//
// RESPONSE: {"isFollowing": true, "action": "followed"}
func (h *UserHandler) HandleToggleFollow(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.PrincipalFromContext(r.Context())

	isFollowing, action, err := h.social.ToggleFollow(r.Context(), p.ID, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	metrics.FollowsToggled.Inc()
	writeJSON(w, http.StatusOK, followResponse{IsFollowing: isFollowing, Action: action})
}

// HandleFollowStatus reports the follow relationship between the caller and
// a profile, plus the profile's counts.
//
// HTTP: GET /api/users/{id}/follow-status
// Auth: Required
func (h *UserHandler) HandleFollowStatus(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.PrincipalFromContext(r.Context())

	status, err := h.social.GetFollowStatus(r.Context(), p.ID, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, status)
}

// HandleListFollowers returns the display projection of a user's followers.
//
// HTTP: GET /api/users/{id}/followers
// Auth: Required
func (h *UserHandler) HandleListFollowers(w http.ResponseWriter, r *http.Request) {
	h.listRelated(w, r, service.RelatedFollowers)
}

// HandleListFollowing returns who a user follows.
//
// HTTP: GET /api/users/{id}/following
// Auth: Required
func (h *UserHandler) HandleListFollowing(w http.ResponseWriter, r *http.Request) {
	h.listRelated(w, r, service.RelatedFollowing)
}

func (h *UserHandler) listRelated(w http.ResponseWriter, r *http.Request, which string) {
	users, err := h.social.ListRelated(r.Context(), r.PathValue("id"), which)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{which: users})
}

// HandleUserQuotes returns everything a user has posted, enriched.
//
// HTTP: GET /api/users/{id}/quotes
// Auth: Required
func (h *UserHandler) HandleUserQuotes(w http.ResponseWriter, r *http.Request) {
	quotes, err := h.feed.ListByUser(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quotes)
}

// HandleLikedQuotes returns the quotes a user has liked, enriched.
//
// HTTP: GET /api/users/{id}/liked-quotes
// Auth: Required
func (h *UserHandler) HandleLikedQuotes(w http.ResponseWriter, r *http.Request) {
	quotes, err := h.feed.ListLikedBy(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quotes)
}

// HandleUserStats returns the activity summary for a profile page.
//
// HTTP: GET /api/users/{id}/stats
// Auth: Required
func (h *UserHandler) HandleUserStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.feed.GetUserStats(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
