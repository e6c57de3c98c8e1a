package folderapi

import (
	"net/http"

	"github.com/dalemusser/snipsave/internal/app/system/apicors"
	"github.com/dalemusser/snipsave/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Routes returns a router with the folder API endpoints.
//
// The wildcard routes carry the folder path in the URL; the fixed-name
// routes (/rename, /share) take it in the body.
func Routes(h *Handler, verifier auth.Verifier, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(apicors.Middleware())
	r.Use(auth.RequireIdentity(verifier, logger))

	r.Get("/", h.TreeHandler)
	r.Post("/", h.CreateHandler)
	r.Put("/rename", h.RenameHandler)
	r.Post("/share", h.ShareHandler)
	r.Get("/*", h.ContentsHandler)
	r.Delete("/*", h.DeleteHandler)

	return r
}
