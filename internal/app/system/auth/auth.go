// Package auth attaches verified caller identities to API requests.
//
// Identity verification itself is an external concern: a trusted gateway (or
// the token issuer) resolves a user to a stable {id, email, name} triple and
// encodes it in a signed bearer token. This package verifies the signature,
// extracts the triple, and places it in the request context. Nothing past the
// middleware re-validates identity.
package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/dalemusser/snipsave/internal/domain/models"
	"go.uber.org/zap"
)

type contextKey int

const identityKey contextKey = iota

// Verifier resolves a bearer token to a verified identity.
type Verifier interface {
	Verify(token string) (models.Identity, error)
}

// RequireIdentity returns middleware that authenticates requests via the
// Authorization header ("Bearer <token>") and injects the resolved identity
// into the request context.
//
// If the verifier is nil (no token secret configured), every request is
// rejected; this fails closed rather than serving an unauthenticated API.
func RequireIdentity(v Verifier, logger *zap.Logger) func(http.Handler) http.Handler {
	if v == nil {
		logger.Warn("identity verifier not configured - all API requests will be rejected")
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if v == nil {
				logger.Warn("request rejected: identity verifier not configured",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
				)
				http.Error(w, "Authentication not configured", http.StatusUnauthorized)
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Debug("request rejected: missing Authorization header",
					zap.String("path", r.URL.Path),
				)
				http.Error(w, "Missing Authorization header", http.StatusUnauthorized)
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				logger.Debug("request rejected: invalid Authorization format",
					zap.String("path", r.URL.Path),
				)
				http.Error(w, "Invalid Authorization header", http.StatusUnauthorized)
				return
			}

			identity, err := v.Verify(strings.TrimSpace(parts[1]))
			if err != nil {
				logger.Debug("request rejected: token verification failed",
					zap.String("path", r.URL.Path),
					zap.Error(err),
				)
				http.Error(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CurrentIdentity returns the verified identity for the request, if any.
func CurrentIdentity(r *http.Request) (models.Identity, bool) {
	id, ok := r.Context().Value(identityKey).(models.Identity)
	if !ok || id.IsZero() {
		return models.Identity{}, false
	}
	return id, true
}

// WithIdentity returns a context carrying the given identity. Used by tests
// and by internal callers that bypass the HTTP layer.
func WithIdentity(ctx context.Context, id models.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}
