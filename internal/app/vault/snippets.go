package vault

import (
	"context"
	"time"

	"github.com/dalemusser/snipsave/internal/app/store/snippet"
	"github.com/dalemusser/snipsave/internal/app/system/access"
	"github.com/dalemusser/snipsave/internal/app/system/pathutil"
	"github.com/dalemusser/snipsave/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// DefaultContentType is used when a snippet is created without one.
const DefaultContentType = "text"

// CreateSnippetInput carries the caller-supplied fields for a new snippet.
type CreateSnippetInput struct {
	Title       string
	Content     string
	ContentType string
	Description string
	Tags        []string
	FolderPath  string
	IsPublic    bool
	SharedWith  []string
	CanEdit     []string
}

// CreateSnippet stores a new snippet owned by the caller. Title and content
// are required; content type defaults to "text" and folder path to the root.
func (s *Service) CreateSnippet(ctx context.Context, id models.Identity, input CreateSnippetInput) (*models.Snippet, error) {
	if id.IsZero() {
		return nil, ErrAccessDenied
	}
	if input.Title == "" || input.Content == "" {
		return nil, ErrInvalidArgument
	}
	if input.ContentType == "" {
		input.ContentType = DefaultContentType
	}

	folderPath := pathutil.Normalize(input.FolderPath)
	if !pathutil.Valid(folderPath) {
		return nil, ErrInvalidPath
	}

	created, err := s.store.Create(ctx, snippet.CreateInput{
		Title:       s.clean(input.Title),
		Content:     input.Content,
		ContentType: input.ContentType,
		Description: s.clean(input.Description),
		Tags:        input.Tags,
		FolderPath:  folderPath,
		IsPublic:    input.IsPublic,
		Owner:       id,
		SharedWith:  input.SharedWith,
		CanEdit:     input.CanEdit,
	})
	if err != nil {
		return nil, storeErr("create snippet", err)
	}

	s.logger.Info("snippet created",
		zap.String("snippet_id", created.ID.Hex()),
		zap.String("owner_id", id.ID),
		zap.String("folder_path", created.FolderPath))
	return created, nil
}

// GetSnippet returns a snippet the caller may read.
func (s *Service) GetSnippet(ctx context.Context, id models.Identity, snippetID primitive.ObjectID) (*models.Snippet, error) {
	snip, err := s.store.GetByID(ctx, snippetID)
	if err != nil {
		return nil, notFoundOr("get snippet", err)
	}
	if !access.CanRead(id, snip) {
		return nil, ErrAccessDenied
	}
	return snip, nil
}

// History returns a snippet's append-only edit history, oldest first. Read
// access on the snippet grants access to its history.
func (s *Service) History(ctx context.Context, id models.Identity, snippetID primitive.ObjectID) ([]models.EditEntry, error) {
	snip, err := s.GetSnippet(ctx, id, snippetID)
	if err != nil {
		return nil, err
	}
	return snip.EditHistory, nil
}

// UpdateSnippetInput carries a full replacement of the content fields. Every
// update submits complete values; there is no field-level patching.
type UpdateSnippetInput struct {
	Title       string
	Content     string
	ContentType string
	Description string
	Tags        []string

	// IsPublic, when non-nil, changes the record's visibility. Only the
	// owner may change it.
	IsPublic *bool
}

// UpdateSnippet rewrites a snippet's content fields and appends exactly one
// history entry recording the submitted values and the editor's identity.
// Requires write access; changing visibility requires ownership.
func (s *Service) UpdateSnippet(ctx context.Context, id models.Identity, snippetID primitive.ObjectID, input UpdateSnippetInput) (*models.Snippet, error) {
	snip, err := s.store.GetByID(ctx, snippetID)
	if err != nil {
		return nil, notFoundOr("get snippet", err)
	}
	if !access.CanWrite(id, snip) {
		return nil, ErrAccessDenied
	}
	if input.IsPublic != nil && !access.IsOwner(id, snip) {
		return nil, ErrAccessDenied
	}
	if input.Title == "" || input.Content == "" {
		return nil, ErrInvalidArgument
	}
	if input.ContentType == "" {
		input.ContentType = DefaultContentType
	}

	fields := models.SnippetFields{
		Title:       s.clean(input.Title),
		Content:     input.Content,
		ContentType: input.ContentType,
		Description: s.clean(input.Description),
		Tags:        input.Tags,
	}
	entry := models.EditEntry{
		ID:          uuid.NewString(),
		EditorID:    id.ID,
		EditorName:  id.Name,
		EditorEmail: id.Email,
		Changes:     fields,
		EditedAt:    time.Now().UTC(),
	}

	if err := s.store.ApplyUpdate(ctx, snippetID, fields, input.IsPublic, entry); err != nil {
		return nil, notFoundOr("update snippet", err)
	}

	updated, err := s.store.GetByID(ctx, snippetID)
	if err != nil {
		return nil, notFoundOr("get snippet", err)
	}

	s.logger.Info("snippet updated",
		zap.String("snippet_id", snippetID.Hex()),
		zap.String("editor_id", id.ID))
	return updated, nil
}

// DeleteSnippet removes a snippet and its history. Owner only.
func (s *Service) DeleteSnippet(ctx context.Context, id models.Identity, snippetID primitive.ObjectID) error {
	snip, err := s.store.GetByID(ctx, snippetID)
	if err != nil {
		return notFoundOr("get snippet", err)
	}
	if !access.IsOwner(id, snip) {
		return ErrAccessDenied
	}

	if err := s.store.DeleteByID(ctx, snippetID); err != nil {
		return storeErr("delete snippet", err)
	}

	s.logger.Info("snippet deleted",
		zap.String("snippet_id", snippetID.Hex()),
		zap.String("owner_id", id.ID))
	return nil
}

// ShareInput names the emails to grant read and write access to. Write access
// implies read. Grants accumulate; sharing never revokes.
type ShareInput struct {
	ReadEmails  []string
	WriteEmails []string
}

func (in ShareInput) empty() bool {
	return len(in.ReadEmails) == 0 && len(in.WriteEmails) == 0
}

// ShareSnippet unions the given emails into the snippet's share sets.
// Owner only; re-sharing to the same email is a no-op.
func (s *Service) ShareSnippet(ctx context.Context, id models.Identity, snippetID primitive.ObjectID, input ShareInput) (*models.Snippet, error) {
	if input.empty() {
		return nil, ErrInvalidArgument
	}

	snip, err := s.store.GetByID(ctx, snippetID)
	if err != nil {
		return nil, notFoundOr("get snippet", err)
	}
	if !access.IsOwner(id, snip) {
		return nil, ErrAccessDenied
	}

	if err := s.store.AddShares(ctx, snippetID, input.ReadEmails, input.WriteEmails); err != nil {
		return nil, notFoundOr("share snippet", err)
	}

	updated, err := s.store.GetByID(ctx, snippetID)
	if err != nil {
		return nil, notFoundOr("get snippet", err)
	}

	s.logger.Info("snippet shared",
		zap.String("snippet_id", snippetID.Hex()),
		zap.Int("read_grants", len(input.ReadEmails)),
		zap.Int("write_grants", len(input.WriteEmails)))
	return updated, nil
}

// ListMine returns the caller's own snippets, newest first, markers excluded.
func (s *Service) ListMine(ctx context.Context, id models.Identity, opts snippet.ListOptions) ([]models.Snippet, error) {
	snips, err := s.store.ListOwned(ctx, id.ID, opts)
	if err != nil {
		return nil, storeErr("list owned", err)
	}
	return snips, nil
}

// ListShared returns the snippets read-shared to the caller's email, markers
// excluded.
func (s *Service) ListShared(ctx context.Context, id models.Identity, opts snippet.ListOptions) ([]models.Snippet, error) {
	if id.Email == "" {
		return nil, nil
	}
	snips, err := s.store.ListSharedWith(ctx, id.Email, opts)
	if err != nil {
		return nil, storeErr("list shared", err)
	}
	return snips, nil
}

// ListAllVisible returns everything the caller may read: their own records,
// records shared to them, and public records.
func (s *Service) ListAllVisible(ctx context.Context, id models.Identity, opts snippet.ListOptions) ([]models.Snippet, error) {
	snips, err := s.store.ListVisible(ctx, id, opts)
	if err != nil {
		return nil, storeErr("list visible", err)
	}
	return snips, nil
}
