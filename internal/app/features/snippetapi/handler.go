// Package snippetapi provides the snippet CRUD, share, and history API.
//
// Endpoints (mounted at /api/snippets):
//   - POST   /            - Create a snippet
//   - GET    /            - List everything visible to the caller
//   - GET    /mine        - List the caller's own snippets
//   - GET    /shared      - List snippets shared to the caller
//   - GET    /{id}        - Fetch one snippet
//   - PUT    /{id}        - Update a snippet (appends a history entry)
//   - DELETE /{id}        - Delete a snippet
//   - POST   /{id}/share  - Grant read/write access by email
//   - GET    /{id}/history - The snippet's edit history
//
// All endpoints require a verified identity (Bearer token).
package snippetapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/dalemusser/snipsave/internal/app/store/snippet"
	"github.com/dalemusser/snipsave/internal/app/system/auth"
	"github.com/dalemusser/snipsave/internal/app/system/jsonutil"
	"github.com/dalemusser/snipsave/internal/app/vault"
	"github.com/dalemusser/snipsave/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler handles snippet API requests.
type Handler struct {
	vault  *vault.Service
	logger *zap.Logger
}

// NewHandler creates a new snippetapi handler.
func NewHandler(v *vault.Service, logger *zap.Logger) *Handler {
	return &Handler{vault: v, logger: logger}
}

// writeServiceError maps vault errors onto HTTP status codes.
func writeServiceError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var partial *vault.PartialFailureError

	switch {
	case errors.Is(err, vault.ErrNotFound):
		jsonutil.Error(w, http.StatusNotFound, "not found")
	case errors.Is(err, vault.ErrAccessDenied):
		jsonutil.Error(w, http.StatusForbidden, "access denied")
	case errors.Is(err, vault.ErrInvalidPath):
		jsonutil.Error(w, http.StatusBadRequest, "invalid folder path")
	case errors.Is(err, vault.ErrInvalidArgument):
		jsonutil.Error(w, http.StatusBadRequest, "invalid argument")
	case errors.Is(err, vault.ErrAlreadyExists):
		jsonutil.Error(w, http.StatusBadRequest, "already exists")
	case errors.As(err, &partial):
		logger.Error("partial failure", zap.Int64("affected", partial.Affected), zap.Error(err))
		jsonutil.JSON(w, http.StatusInternalServerError, map[string]any{
			"error":    "operation partially applied",
			"affected": partial.Affected,
		})
	default:
		logger.Error("store failure", zap.Error(err))
		jsonutil.Error(w, http.StatusServiceUnavailable, "storage unavailable")
	}
}

// identity pulls the verified caller from the request. The auth middleware
// guarantees presence; the zero check guards direct handler wiring in tests.
func identity(w http.ResponseWriter, r *http.Request) (models.Identity, bool) {
	id, ok := auth.CurrentIdentity(r)
	if !ok {
		jsonutil.Error(w, http.StatusUnauthorized, "authentication required")
		return models.Identity{}, false
	}
	return id, true
}

func snippetID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		jsonutil.Error(w, http.StatusBadRequest, "invalid snippet id")
		return primitive.NilObjectID, false
	}
	return oid, true
}

func listOptions(r *http.Request) snippet.ListOptions {
	q := r.URL.Query()
	limit, _ := strconv.ParseInt(q.Get("limit"), 10, 64)
	page, _ := strconv.ParseInt(q.Get("page"), 10, 64)
	return snippet.ListOptions{Limit: limit, Page: page}
}

// CreateHandler handles POST /.
func (h *Handler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	var in createRequest
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if err := validate.Struct(in); err != nil {
		jsonutil.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	snip, err := h.vault.CreateSnippet(r.Context(), id, vault.CreateSnippetInput{
		Title:       in.Title,
		Content:     in.Content,
		ContentType: in.ContentType,
		Description: in.Description,
		Tags:        in.Tags,
		FolderPath:  in.FolderPath,
		IsPublic:    in.IsPublic,
		SharedWith:  in.SharedWith,
		CanEdit:     in.CanEdit,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	jsonutil.Created(w, toView(snip))
}

// GetHandler handles GET /{id}.
func (h *Handler) GetHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	oid, ok := snippetID(w, r)
	if !ok {
		return
	}

	snip, err := h.vault.GetSnippet(r.Context(), id, oid)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	jsonutil.OK(w, toView(snip))
}

// UpdateHandler handles PUT /{id}.
func (h *Handler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	oid, ok := snippetID(w, r)
	if !ok {
		return
	}

	var in updateRequest
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if err := validate.Struct(in); err != nil {
		jsonutil.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	snip, err := h.vault.UpdateSnippet(r.Context(), id, oid, vault.UpdateSnippetInput{
		Title:       in.Title,
		Content:     in.Content,
		ContentType: in.ContentType,
		Description: in.Description,
		Tags:        in.Tags,
		IsPublic:    in.IsPublic,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	jsonutil.OK(w, toView(snip))
}

// DeleteHandler handles DELETE /{id}.
func (h *Handler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	oid, ok := snippetID(w, r)
	if !ok {
		return
	}

	if err := h.vault.DeleteSnippet(r.Context(), id, oid); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	jsonutil.OK(w, map[string]string{"status": "deleted"})
}

// ShareHandler handles POST /{id}/share.
func (h *Handler) ShareHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	oid, ok := snippetID(w, r)
	if !ok {
		return
	}

	var in shareRequest
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if err := validate.Struct(in); err != nil {
		jsonutil.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	snip, err := h.vault.ShareSnippet(r.Context(), id, oid, vault.ShareInput{
		ReadEmails:  in.ReadEmails,
		WriteEmails: in.WriteEmails,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	jsonutil.OK(w, toView(snip))
}

// HistoryHandler handles GET /{id}/history.
func (h *Handler) HistoryHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	oid, ok := snippetID(w, r)
	if !ok {
		return
	}

	entries, err := h.vault.History(r.Context(), id, oid)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	jsonutil.OK(w, toHistoryViews(entries))
}

// ListHandler handles GET /.
func (h *Handler) ListHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	snips, err := h.vault.ListAllVisible(r.Context(), id, listOptions(r))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	jsonutil.OK(w, toViews(snips))
}

// ListMineHandler handles GET /mine.
func (h *Handler) ListMineHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	snips, err := h.vault.ListMine(r.Context(), id, listOptions(r))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	jsonutil.OK(w, toViews(snips))
}

// ListSharedHandler handles GET /shared.
func (h *Handler) ListSharedHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	snips, err := h.vault.ListShared(r.Context(), id, listOptions(r))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	jsonutil.OK(w, toViews(snips))
}
