package billing

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/saulo-duarte/mathbank-lambda/internal/auth"
)

func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Get("/return", h.Return)
	r.Post("/webhook", h.Webhook)
	r.With(auth.AuthMiddleware).Post("/checkout", h.Checkout)
	return r
}
