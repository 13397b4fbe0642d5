package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/terra-clan/graduate-survey/internal/auth"
)

// AdminAuth guards the admin routes with bearer tokens issued at login
type AdminAuth struct {
	auth *auth.Manager
}

// NewAdminAuth creates new admin auth middleware
func NewAdminAuth(manager *auth.Manager) *AdminAuth {
	return &AdminAuth{auth: manager}
}

// Authenticate verifies the admin token.
// Supports "Authorization: Bearer <token>" and, for WebSocket clients that
// cannot set headers, a token query parameter.
func (m *AdminAuth) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractToken(r)
		if token == "" {
			writeAuthError(w, http.StatusUnauthorized, "missing_token", "provide Authorization header with Bearer token")
			return
		}

		claims, err := m.auth.Parse(token)
		if err != nil {
			slog.Warn("invalid admin token", "error", err, "remote_addr", r.RemoteAddr)
			writeAuthError(w, http.StatusUnauthorized, "invalid_token", "the provided token is not valid or has expired")
			return
		}

		ctx := ContextWithClaims(r.Context(), claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// extractToken extracts the admin token from the request
func extractToken(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	return r.URL.Query().Get("token")
}

// writeAuthError writes an authentication failure in the API envelope
func writeAuthError(w http.ResponseWriter, status int, code, message string) {
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", `Bearer realm="admin"`)
	}
	respondError(w, status, code, message)
}
