package snippetapi

import (
	"time"

	"github.com/dalemusser/snipsave/internal/domain/models"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// createRequest is the payload for POST /.
type createRequest struct {
	Title       string   `json:"title" validate:"required"`
	Content     string   `json:"content" validate:"required"`
	ContentType string   `json:"content_type"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	FolderPath  string   `json:"folder_path"`
	IsPublic    bool     `json:"is_public"`
	SharedWith  []string `json:"shared_with" validate:"omitempty,dive,email"`
	CanEdit     []string `json:"can_edit" validate:"omitempty,dive,email"`
}

// updateRequest is the payload for PUT /{id}. Updates submit complete field
// values; there is no partial patching.
type updateRequest struct {
	Title       string   `json:"title" validate:"required"`
	Content     string   `json:"content" validate:"required"`
	ContentType string   `json:"content_type"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	IsPublic    *bool    `json:"is_public"`
}

// shareRequest is the payload for POST /{id}/share.
type shareRequest struct {
	ReadEmails  []string `json:"read_emails" validate:"omitempty,dive,email"`
	WriteEmails []string `json:"write_emails" validate:"omitempty,dive,email"`
}

// snippetView is the JSON shape returned for a snippet.
type snippetView struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	ContentType string    `json:"content_type"`
	Description string    `json:"description,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	FolderPath  string    `json:"folder_path"`
	IsFolder    bool      `json:"is_folder_marker,omitempty"`
	OwnerID     string    `json:"owner_id"`
	OwnerEmail  string    `json:"owner_email"`
	OwnerName   string    `json:"owner_name,omitempty"`
	IsPublic    bool      `json:"is_public"`
	SharedWith  []string  `json:"shared_with,omitempty"`
	CanEdit     []string  `json:"can_edit,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// historyView is the JSON shape of one edit-history entry.
type historyView struct {
	ID          string    `json:"id"`
	EditorID    string    `json:"editor_id"`
	EditorName  string    `json:"editor_name,omitempty"`
	EditorEmail string    `json:"editor_email"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	ContentType string    `json:"content_type"`
	Description string    `json:"description,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	EditedAt    time.Time `json:"edited_at"`
}

func toView(s *models.Snippet) snippetView {
	return snippetView{
		ID:          s.ID.Hex(),
		Title:       s.Title,
		Content:     s.Content,
		ContentType: s.ContentType,
		Description: s.Description,
		Tags:        s.Tags,
		FolderPath:  s.FolderPath,
		IsFolder:    s.IsFolderMarker,
		OwnerID:     s.OwnerID,
		OwnerEmail:  s.OwnerEmail,
		OwnerName:   s.OwnerName,
		IsPublic:    s.IsPublic,
		SharedWith:  s.SharedWith,
		CanEdit:     s.CanEdit,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

func toViews(snips []models.Snippet) []snippetView {
	out := make([]snippetView, 0, len(snips))
	for i := range snips {
		out = append(out, toView(&snips[i]))
	}
	return out
}

func toHistoryViews(entries []models.EditEntry) []historyView {
	out := make([]historyView, 0, len(entries))
	for _, e := range entries {
		out = append(out, historyView{
			ID:          e.ID,
			EditorID:    e.EditorID,
			EditorName:  e.EditorName,
			EditorEmail: e.EditorEmail,
			Title:       e.Changes.Title,
			Content:     e.Changes.Content,
			ContentType: e.Changes.ContentType,
			Description: e.Changes.Description,
			Tags:        e.Changes.Tags,
			EditedAt:    e.EditedAt,
		})
	}
	return out
}
