package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Atulsharma2004/quote-app-at/internal/model"
	"github.com/Atulsharma2004/quote-app-at/internal/service"
)

// HomeHandler serves the aggregate endpoints behind the landing page.
//
// Both endpoints have a degraded contract: the home page must render even
// when the store is slow or down, so failures become zeros/empty lists with
// a 200, never a 5xx. The service logs the underlying cause.
type HomeHandler struct {
	feed   *service.FeedService
	logger *slog.Logger
}

// NewHomeHandler creates a HomeHandler.
func NewHomeHandler(feed *service.FeedService, logger *slog.Logger) *HomeHandler {
	return &HomeHandler{feed: feed, logger: logger}
}

// HandleSiteStats returns the quote/user counts for the home-page banner.
//
// HTTP: GET /api/stats
// Auth: None (public)
func (h *HomeHandler) HandleSiteStats(w http.ResponseWriter, r *http.Request) {
	stats, _ := h.feed.GetSiteStats(r.Context())
	writeJSON(w, http.StatusOK, stats)
}

// HandleRecentQuotes returns the newest quotes as trimmed cards.
//
// HTTP: GET /api/quotes/recent?limit=3
// Auth: None (public)
func (h *HomeHandler) HandleRecentQuotes(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	recent, _ := h.feed.GetRecentQuotes(r.Context(), limit)
	writeJSON(w, http.StatusOK, recent)
}

// HandleCategories returns the suggested category set for the submit form.
// Categories stay free-form on the wire; this list is a suggestion, not an
// enum.
//
// HTTP: GET /api/categories
// Auth: None (public)
func (h *HomeHandler) HandleCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"categories": model.SuggestedCategories})
}
