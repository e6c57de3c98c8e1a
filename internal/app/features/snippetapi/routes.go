package snippetapi

import (
	"net/http"

	"github.com/dalemusser/snipsave/internal/app/system/apicors"
	"github.com/dalemusser/snipsave/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Routes returns a router with the snippet API endpoints.
//
// Authentication is via signed bearer token in the Authorization header.
// CORS is permissive since token auth is used.
func Routes(h *Handler, verifier auth.Verifier, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(apicors.Middleware())
	r.Use(auth.RequireIdentity(verifier, logger))

	r.Post("/", h.CreateHandler)
	r.Get("/", h.ListHandler)
	r.Get("/mine", h.ListMineHandler)
	r.Get("/shared", h.ListSharedHandler)

	r.Route("/{id}", func(sr chi.Router) {
		sr.Get("/", h.GetHandler)
		sr.Put("/", h.UpdateHandler)
		sr.Delete("/", h.DeleteHandler)
		sr.Post("/share", h.ShareHandler)
		sr.Get("/history", h.HistoryHandler)
	})

	return r
}
