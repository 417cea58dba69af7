package billing

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/saulo-duarte/mathbank-lambda/internal/auth"
	"github.com/saulo-duarte/mathbank-lambda/internal/config"
)

const maxWebhookBody = 65536

type Handler struct {
	service BillingService
}

func NewHandler(service BillingService) *Handler {
	return &Handler{service: service}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrUnauthorized):
		config.Error(w, http.StatusUnauthorized, "login_required", "log in to upgrade")
	case errors.Is(err, ErrUnknownPlan), errors.Is(err, ErrUnknownReturn):
		config.Error(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, ErrInvalidSignature):
		config.Error(w, http.StatusBadRequest, "invalid_signature", "webhook signature verification failed")
	case errors.Is(err, ErrPaymentUnavailable):
		config.Error(w, http.StatusBadGateway, "payment_unavailable", "payment provider unavailable, try again")
	default:
		config.Error(w, http.StatusInternalServerError, "internal", "internal server error")
	}
}

func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	sess, err := auth.SessionFromContext(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	var req struct {
		Plan string `json:"plan"`
	}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			config.Error(w, http.StatusBadRequest, "invalid_request", "invalid request body")
			return
		}
	}

	res, err := h.service.Checkout(r.Context(), sess, req.Plan)
	if err != nil {
		writeError(w, err)
		return
	}
	config.JSON(w, http.StatusOK, res)
}

func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	log := config.WithContext(r.Context())

	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		log.WithError(err).Warn("Failed to read webhook body")
		config.Error(w, http.StatusRequestEntityTooLarge, "invalid_request", "webhook body too large")
		return
	}

	if err := h.service.HandleWebhook(r.Context(), payload, r.Header.Get("Stripe-Signature")); err != nil {
		writeError(w, err)
		return
	}
	config.JSON(w, http.StatusOK, map[string]bool{"received": true})
}

func (h *Handler) Return(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.ReturnStatus(r.URL.Query().Get("payment"))
	if err != nil {
		writeError(w, err)
		return
	}
	config.JSON(w, http.StatusOK, res)
}
