package question

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/saulo-duarte/mathbank-lambda/internal/auth"
)

func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(auth.AuthMiddleware)

	r.Get("/", h.Browse)
	r.Get("/sample", h.Sample)
	r.Get("/warnings", h.ListWarnings)
	r.Get("/years", h.ListYears)
	r.Get("/years/{year}/levels", h.ListLevels)
	r.Get("/years/{year}/levels/{level}/modules", h.ListModules)
	return r
}
