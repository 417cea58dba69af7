package user

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/saulo-duarte/mathbank-lambda/internal/auth"
)

const (
	AuthModeEmail    = "email"
	AuthModePassword = "password"
)

// AuthRoutes mounts the login surface for the configured auth mode.
func AuthRoutes(h *Handler, mode string, google bool) http.Handler {
	r := chi.NewRouter()

	switch mode {
	case AuthModePassword:
		r.Post("/signin", h.SignIn)
		r.Post("/signup", h.SignUp)
	default:
		r.Post("/login", h.Login)
		r.Post("/register", h.Register)
	}
	if google {
		r.Post("/google", h.GoogleLogin)
	}

	r.With(auth.AuthMiddleware).Post("/refresh", h.RefreshToken)
	r.Post("/logout", h.session.Logout)
	return r
}

func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(auth.AuthMiddleware)
	r.Get("/me", h.GetUser)
	return r
}
