package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Atulsharma2004/quote-app-at/internal/auth"
	"github.com/Atulsharma2004/quote-app-at/internal/metrics"
	"github.com/Atulsharma2004/quote-app-at/internal/model"
	"github.com/Atulsharma2004/quote-app-at/internal/repository"
	"github.com/Atulsharma2004/quote-app-at/internal/service"
)

// QuoteHandler manages the quote endpoints: the public feed, CRUD, likes,
// and comments.
//
// Write operations go through QuoteService (which enforces validation and
// ownership); list reads go through FeedService (which enriches avatars and
// paginates).
type QuoteHandler struct {
	quotes *service.QuoteService
	feed   *service.FeedService
	logger *slog.Logger
}

// NewQuoteHandler creates a QuoteHandler.
func NewQuoteHandler(quotes *service.QuoteService, feed *service.FeedService, logger *slog.Logger) *QuoteHandler {
	return &QuoteHandler{quotes: quotes, feed: feed, logger: logger}
}

// quoteListResponse is the feed envelope: one page of quotes plus the
// pagination block the client uses to render page controls.
type quoteListResponse struct {
	Quotes     []model.Quote      `json:"quotes"`
	Pagination service.Pagination `json:"pagination"`
}

// HandleList serves the public feed.
//
// HTTP: GET /api/quotes?search=&category=&sort=&page=&limit=
// Auth: Optional
//
// QUERY PARAMETERS:
//   - search:   case-insensitive match over text, author, and poster name
//   - category: exact match, or "all" / empty for everything
//   - sort:     newest (default) | oldest | most-liked | most-commented
//   - page:     1-based page number
//   - limit:    page size
//
// Bad values are clamped, never rejected — the feed is the landing page.
func (h *QuoteHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := repository.QuoteFilter{
		Search:   q.Get("search"),
		Category: q.Get("category"),
		Sort:     q.Get("sort"),
	}
	filter.Page, _ = strconv.Atoi(q.Get("page"))
	filter.Limit, _ = strconv.Atoi(q.Get("limit"))

	quotes, pagination, err := h.feed.ListQuotes(r.Context(), filter)
	if err != nil {
		h.logger.Error("feed listing failed", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, quoteListResponse{Quotes: quotes, Pagination: pagination})
}

// HandleGet returns a single quote.
//
// HTTP: GET /api/quotes/{id}
// Auth: Required
func (h *QuoteHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	quote, err := h.quotes.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

// HandleCreate posts a new quote.
//
// HTTP: POST /api/quotes
// Auth: Required
// BODY: {"text": "...", "author": "...", "category": "..."}
func (h *QuoteHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.PrincipalFromContext(r.Context())

	var in service.QuoteInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	quote, err := h.quotes.Create(r.Context(), p, in)
	if err != nil {
		writeError(w, err)
		return
	}

	metrics.QuotesCreated.Inc()
	writeJSON(w, http.StatusCreated, quote)
}

// HandleUpdate edits a quote's text, author, or category.
//
// HTTP: PUT /api/quotes/{id}
// Auth: Required, owner or admin
func (h *QuoteHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.PrincipalFromContext(r.Context())

	var in service.QuoteInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	quote, err := h.quotes.Update(r.Context(), p, r.PathValue("id"), in)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, quote)
}

// HandleDelete removes a quote.
//
// HTTP: DELETE /api/quotes/{id}
// Auth: Required, owner or admin
func (h *QuoteHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.PrincipalFromContext(r.Context())

	if err := h.quotes.Delete(r.Context(), p, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "quote deleted"})
}

// HandleToggleLike flips the caller's like on a quote.
//
// HTTP: POST /api/quotes/{id}/like
// Auth: Required
//
// RESPONSE: {"liked": true, "likesCount": 4}
func (h *QuoteHandler) HandleToggleLike(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.PrincipalFromContext(r.Context())

	result, err := h.quotes.ToggleLike(r.Context(), p, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	metrics.LikesToggled.Inc()
	writeJSON(w, http.StatusOK, result)
}

type commentRequest struct {
	Text string `json:"text"`
}

// HandleAddComment appends a comment to a quote. The client re-fetches the
// quote to render the new comment, so the response is just an acknowledgment.
//
// HTTP: POST /api/quotes/{id}/comment
// Auth: Required
// BODY: {"text": "..."}
func (h *QuoteHandler) HandleAddComment(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.PrincipalFromContext(r.Context())

	var req commentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if _, err := h.quotes.AddComment(r.Context(), p, r.PathValue("id"), req.Text); err != nil {
		writeError(w, err)
		return
	}

	metrics.CommentsAdded.Inc()
	writeJSON(w, http.StatusOK, map[string]string{"message": "comment added"})
}
