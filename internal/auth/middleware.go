package auth

import (
	"net/http"
)

// Skipper allows callers to bypass session checks for specific requests.
type Skipper func(r *http.Request) bool

// Middleware resolves the session cookie on every request and redirects
// unauthenticated requests to the login page unless skipped.
type Middleware struct {
	manager *Manager
	skipper Skipper
}

// NewMiddleware constructs a middleware with an optional skipper.
func NewMiddleware(manager *Manager, skipper Skipper) Middleware {
	return Middleware{manager: manager, skipper: skipper}
}

// Wrap attaches session handling to an http.Handler. Valid claims are stored
// on the request context for handlers to pick up.
func (m Middleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := m.manager.FromRequest(r)
		if err == nil {
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
			return
		}

		if m.skipper != nil && m.skipper(r) {
			next.ServeHTTP(w, r)
			return
		}

		http.Redirect(w, r, "/login", http.StatusSeeOther)
	})
}
