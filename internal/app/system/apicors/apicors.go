// Package apicors provides CORS middleware for the bearer-token API.
//
// The API authenticates with Authorization headers, not cookies, so there are
// no credentials for a cross-origin page to leak: origins can be "*" and
// AllowCredentials stays false. The snippet UI is served from a different
// origin and relies on this for preflight handling.
package apicors

import (
	"net/http"
)

// Middleware returns permissive CORS middleware for token-authenticated
// endpoints. It allows any origin and the methods the API uses, and answers
// preflight OPTIONS requests directly.
func Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, Accept")
			w.Header().Set("Access-Control-Max-Age", "86400")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
