package handler

import (
	"log/slog"
	"net/http"

	"github.com/Atulsharma2004/quote-app-at/internal/auth"
	"github.com/Atulsharma2004/quote-app-at/internal/payment"
)

// PaymentHandler creates checkout sessions for the premium plans.
type PaymentHandler struct {
	payments *payment.Client
	logger   *slog.Logger
}

// NewPaymentHandler creates a PaymentHandler.
func NewPaymentHandler(payments *payment.Client, logger *slog.Logger) *PaymentHandler {
	return &PaymentHandler{payments: payments, logger: logger}
}

type checkoutRequest struct {
	Plan string `json:"plan"`
}

// HandleCheckout creates a hosted checkout session and returns the redirect
// URL.
//
// HTTP: POST /api/payment/checkout
// Auth: Required
// BODY: {"plan": "basic"} or {"plan": "premium"}
// RESPONSE: {"id": "cs_...", "url": "https://checkout..."}
func (h *PaymentHandler) HandleCheckout(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.PrincipalFromContext(r.Context())

	var req checkoutRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	session, err := h.payments.CreateCheckout(r.Context(), req.Plan, p.Email)
	if err != nil {
		h.logger.Error("checkout session failed",
			slog.String("plan", req.Plan),
			slog.String("userID", p.ID),
			slog.String("error", err.Error()),
		)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, session)
}
