package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/saulo-duarte/mathbank-lambda/internal/access"
	"github.com/saulo-duarte/mathbank-lambda/internal/config"
)

const CookieName = "jwt"

var ErrUnauthorized = errors.New("unauthorized")

type ctxKey struct{}

var claimsKey = ctxKey{}

// Session is the authenticated identity of one request.
type Session struct {
	UserID string      `json:"user_id"`
	Email  string      `json:"email"`
	Role   access.Role `json:"role"`
}

func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

func GetUserClaimsFromContext(ctx context.Context) (*Claims, error) {
	claims, ok := ctx.Value(claimsKey).(*Claims)
	if !ok || claims == nil {
		return nil, ErrUnauthorized
	}
	return claims, nil
}

func SessionFromContext(ctx context.Context) (*Session, error) {
	claims, err := GetUserClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}
	role := access.Role(claims.Role)
	if role == "" {
		role = access.RoleFree
	}
	return &Session{UserID: claims.UserID, Email: claims.Email, Role: role}, nil
}

func tokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	if c, err := r.Cookie(CookieName); err == nil {
		return c.Value
	}
	return ""
}

func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := config.WithContext(r.Context())

		tokenStr := tokenFromRequest(r)
		if tokenStr == "" {
			config.Error(w, http.StatusUnauthorized, "login_required", "missing session token")
			return
		}

		claims, err := ValidateJWT(tokenStr)
		if err != nil {
			log.WithError(err).Warn("Rejected session token")
			config.Error(w, http.StatusUnauthorized, "login_required", "invalid session token")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}
