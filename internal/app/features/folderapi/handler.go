// Package folderapi provides the virtual folder API.
//
// Endpoints (mounted at /api/folders):
//   - GET    /        - The caller's folder tree, shallow-first
//   - POST   /        - Create an empty folder (marker record)
//   - GET    /*       - Records directly inside a folder (non-recursive)
//   - PUT    /rename  - Move every owned record under one path to another
//   - POST   /share   - Grant access to every owned record under a path
//   - DELETE /*       - Delete every owned record under a path
//
// Folders are virtual: they exist because records carry their path. Bulk
// operations touch only records the caller owns.
package folderapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/dalemusser/snipsave/internal/app/store/snippet"
	"github.com/dalemusser/snipsave/internal/app/system/auth"
	"github.com/dalemusser/snipsave/internal/app/system/jsonutil"
	"github.com/dalemusser/snipsave/internal/app/system/pathutil"
	"github.com/dalemusser/snipsave/internal/app/vault"
	"github.com/dalemusser/snipsave/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler handles folder API requests.
type Handler struct {
	vault  *vault.Service
	logger *zap.Logger
}

// NewHandler creates a new folderapi handler.
func NewHandler(v *vault.Service, logger *zap.Logger) *Handler {
	return &Handler{vault: v, logger: logger}
}

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

func identity(w http.ResponseWriter, r *http.Request) (models.Identity, bool) {
	id, ok := auth.CurrentIdentity(r)
	if !ok {
		jsonutil.Error(w, http.StatusUnauthorized, "authentication required")
		return models.Identity{}, false
	}
	return id, true
}

// wildcardPath extracts the folder path from a /* route. The wildcard arrives
// without its leading slash.
func wildcardPath(r *http.Request) string {
	return pathutil.Normalize(chi.URLParam(r, "*"))
}

// entryView is a summary row in a folder listing; full snippet content is
// fetched through the snippet API.
type entryView struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	ContentType string    `json:"content_type"`
	Description string    `json:"description,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	FolderPath  string    `json:"folder_path"`
	IsFolder    bool      `json:"is_folder_marker,omitempty"`
	OwnerEmail  string    `json:"owner_email"`
	IsPublic    bool      `json:"is_public"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toEntries(snips []models.Snippet) []entryView {
	out := make([]entryView, 0, len(snips))
	for i := range snips {
		s := &snips[i]
		out = append(out, entryView{
			ID:          s.ID.Hex(),
			Title:       s.Title,
			ContentType: s.ContentType,
			Description: s.Description,
			Tags:        s.Tags,
			FolderPath:  s.FolderPath,
			IsFolder:    s.IsFolderMarker,
			OwnerEmail:  s.OwnerEmail,
			IsPublic:    s.IsPublic,
			UpdatedAt:   s.UpdatedAt,
		})
	}
	return out
}

// TreeHandler handles GET /.
func (h *Handler) TreeHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	folders, err := h.vault.ListFolders(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	jsonutil.OK(w, map[string]any{"folders": folders})
}

// ContentsHandler handles GET /*.
func (h *Handler) ContentsHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	limit, _ := strconv.ParseInt(q.Get("limit"), 10, 64)
	page, _ := strconv.ParseInt(q.Get("page"), 10, 64)

	snips, err := h.vault.ListFolder(r.Context(), id, wildcardPath(r), snippet.ListOptions{Limit: limit, Page: page})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	jsonutil.OK(w, toEntries(snips))
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

	marker, err := h.vault.CreateFolder(r.Context(), id, in.Path)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	jsonutil.Created(w, map[string]string{"path": marker.FolderPath})
}

// RenameHandler handles PUT /rename.
func (h *Handler) RenameHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	var in renameRequest
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if err := validate.Struct(in); err != nil {
		jsonutil.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	moved, err := h.vault.RenameFolder(r.Context(), id, in.OldPath, in.NewPath)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	jsonutil.OK(w, map[string]int64{"moved": moved})
}

// ShareHandler handles POST /share.
func (h *Handler) ShareHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
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

	affected, err := h.vault.ShareFolder(r.Context(), id, in.Path, vault.ShareInput{
		ReadEmails:  in.ReadEmails,
		WriteEmails: in.WriteEmails,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	jsonutil.OK(w, map[string]int64{"affected": affected})
}

// DeleteHandler handles DELETE /*.
func (h *Handler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	deleted, err := h.vault.DeleteFolder(r.Context(), id, wildcardPath(r))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	jsonutil.OK(w, map[string]int64{"deleted": deleted})
}
