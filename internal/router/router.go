package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/saulo-duarte/mathbank-lambda/internal/billing"
	"github.com/saulo-duarte/mathbank-lambda/internal/config"
	"github.com/saulo-duarte/mathbank-lambda/internal/middlewares"
	"github.com/saulo-duarte/mathbank-lambda/internal/question"
	"github.com/saulo-duarte/mathbank-lambda/internal/user"
)

type RouterConfig struct {
	UserHandler     *user.Handler
	QuestionHandler *question.Handler
	BillingHandler  *billing.Handler

	AuthMode      string
	GoogleEnabled bool
	CORSOrigins   []string
}

func New(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewares.CorsMiddleware(cfg.CORSOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		config.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Mount("/auth", user.AuthRoutes(cfg.UserHandler, cfg.AuthMode, cfg.GoogleEnabled))
	r.Mount("/users", user.Routes(cfg.UserHandler))
	r.Mount("/questions", question.Routes(cfg.QuestionHandler))
	if cfg.BillingHandler != nil {
		r.Mount("/billing", billing.Routes(cfg.BillingHandler))
	}
	return r
}
