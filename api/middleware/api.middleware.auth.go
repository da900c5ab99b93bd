package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/Gibsonzwenyika/iot-dashboard/internal/auth"
	"github.com/Gibsonzwenyika/iot-dashboard/internal/errors"
)

type contextKey string

// UserContextKey is where the authenticated claims live in the request context.
const UserContextKey contextKey = "user"

// AuthMiddleware validates bearer tokens issued by the auth service.
type AuthMiddleware struct {
	auth *auth.Service
}

func NewAuthMiddleware(svc *auth.Service) *AuthMiddleware {
	return &AuthMiddleware{auth: svc}
}

// Authenticate validates the token and adds the claims to the request context
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractToken(r)
		if token == "" {
			handleError(w, errors.NewUnauthorizedError("no token provided", nil))
			return
		}

		claims, err := m.auth.VerifyToken(token)
		if err != nil {
			handleError(w, errors.NewUnauthorizedError("invalid token", err))
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ClaimsFromContext returns the authenticated claims, if any.
func ClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(UserContextKey).(*auth.Claims)
	return claims, ok
}

func extractToken(r *http.Request) string {
	bearerToken := r.Header.Get("Authorization")
	if len(strings.Split(bearerToken, " ")) == 2 {
		return strings.Split(bearerToken, " ")[1]
	}
	return ""
}

func handleError(w http.ResponseWriter, err error) {
	if apiErr, ok := err.(*errors.APIError); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(apiErr.Code)
		json.NewEncoder(w).Encode(apiErr)
		return
	}
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}
