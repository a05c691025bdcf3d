package router

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// SecurityHeaders sets the baseline response headers for every route.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Content-Security-Policy", "default-src 'self'; img-src 'self' https: data:")
		next.ServeHTTP(w, r)
	})
}

// RequireToken guards a route group with a bearer token. Used for the
// admin routes when a token is configured.
func RequireToken(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			got, ok := strings.CutPrefix(auth, "Bearer ")
			if !ok || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				http.Error(w, "Nicht autorisiert.", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
