package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/oluwadara03/Two-Player-Guessing-Game/internal/api/apierr"
	"github.com/oluwadara03/Two-Player-Guessing-Game/internal/services/auth"
)

type contextKey string

const sessionContextKey contextKey = "admin_session"

// SessionValidator validates admin bearer tokens
type SessionValidator interface {
	ValidateSession(token string) (*auth.AdminSession, error)
}

// AdminAuth requires a valid admin bearer token
func AdminAuth(validator SessionValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ExtractToken(r)
			if token == "" {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}

			session, err := validator.ValidateSession(token)
			if err != nil {
				apierr.WriteError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), sessionContextKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ExtractToken returns the bearer token from the Authorization header
func ExtractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

// GetSession returns the admin session from the request context
func GetSession(ctx context.Context) *auth.AdminSession {
	session, _ := ctx.Value(sessionContextKey).(*auth.AdminSession)
	return session
}

// MustGetSession returns the admin session or panics
func MustGetSession(ctx context.Context) *auth.AdminSession {
	session := GetSession(ctx)
	if session == nil {
		panic("no admin session in context - auth middleware not applied?")
	}
	return session
}
