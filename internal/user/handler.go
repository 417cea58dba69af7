package user

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/saulo-duarte/mathbank-lambda/internal/auth"
	"github.com/saulo-duarte/mathbank-lambda/internal/config"
)

type Handler struct {
	service UserService
	session *auth.Handler
}

func NewHandler(service UserService, session *auth.Handler) *Handler {
	return &Handler{service: service, session: session}
}

type emailRequest struct {
	Email    string `json:"email"     validate:"required,email"`
	FullName string `json:"full_name"`
}

type passwordRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type signUpRequest struct {
	Email    string `json:"email"     validate:"required,email"`
	Password string `json:"password"  validate:"required,min=8"`
	FullName string `json:"full_name"`
}

type googleRequest struct {
	Code string `json:"code" validate:"required"`
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrUnauthorized):
		config.Error(w, http.StatusUnauthorized, "login_required", "log in to continue")
	case errors.Is(err, ErrUserNotFound):
		config.Error(w, http.StatusNotFound, "register_required", "no account exists for this email")
	case errors.Is(err, ErrUserAlreadyExists):
		config.Error(w, http.StatusConflict, "already_registered", "an account already exists for this email")
	case errors.Is(err, ErrInvalidEmail), errors.Is(err, ErrWeakPassword):
		config.Error(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, ErrInvalidCredentials):
		config.Error(w, http.StatusUnauthorized, "invalid_credentials", "email or password is incorrect")
	case errors.Is(err, ErrGoogleDisabled):
		config.Error(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, ErrIdentityUnavailable):
		config.Error(w, http.StatusServiceUnavailable, "identity_unavailable", "identity provider unavailable, try again")
	default:
		config.Error(w, http.StatusInternalServerError, "internal", "internal server error")
	}
}

// decode reads a JSON body into T and checks its validate tags.
func decode[T any](w http.ResponseWriter, r *http.Request) (T, bool) {
	var req T
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.WithContext(r.Context()).WithError(err).Warn("Invalid request body")
		config.Error(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return req, false
	}
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			config.WithContext(r.Context()).WithError(err).Error("Request validation failed")
			config.Error(w, http.StatusInternalServerError, "internal", "internal server error")
			return req, false
		}
		config.Error(w, http.StatusBadRequest, "invalid_request", fieldMessage(verrs[0]))
		return req, false
	}
	return req, true
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return fe.Field() + " must be a valid email address"
	case "min":
		return fe.Field() + " must have at least " + fe.Param() + " characters"
	}
	return fe.Field() + " is invalid"
}

func (h *Handler) respond(w http.ResponseWriter, status int, res *AuthResult) {
	if h.session != nil {
		h.session.SetSessionCookie(w, res.Token, time.Until(res.ExpiresAt))
	}
	config.JSON(w, status, res)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[emailRequest](w, r)
	if !ok {
		return
	}
	res, err := h.service.Login(r.Context(), req.Email)
	if err != nil {
		writeError(w, err)
		return
	}
	h.respond(w, http.StatusOK, res)
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[emailRequest](w, r)
	if !ok {
		return
	}
	u, err := h.service.Register(r.Context(), req.Email, req.FullName)
	if err != nil {
		writeError(w, err)
		return
	}
	config.JSON(w, http.StatusCreated, u)
}

func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[passwordRequest](w, r)
	if !ok {
		return
	}
	res, err := h.service.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	h.respond(w, http.StatusOK, res)
}

func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[signUpRequest](w, r)
	if !ok {
		return
	}
	res, err := h.service.SignUp(r.Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		writeError(w, err)
		return
	}
	h.respond(w, http.StatusCreated, res)
}

func (h *Handler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[googleRequest](w, r)
	if !ok {
		return
	}
	res, err := h.service.LoginWithGoogle(r.Context(), req.Code)
	if err != nil {
		writeError(w, err)
		return
	}
	h.respond(w, http.StatusOK, res)
}

func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	sess, err := auth.SessionFromContext(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := h.service.Refresh(r.Context(), sess)
	if err != nil {
		writeError(w, err)
		return
	}
	h.respond(w, http.StatusOK, res)
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	sess, err := auth.SessionFromContext(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	u, err := h.service.Me(r.Context(), sess)
	if err != nil {
		writeError(w, err)
		return
	}
	config.JSON(w, http.StatusOK, map[string]interface{}{
		"user":    u,
		"session": sess,
	})
}
