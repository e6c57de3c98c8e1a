// Package vault implements the snippet vault: snippet CRUD with append-only
// edit history, sharing, and the virtual folder tree derived from the flat
// records' folder paths.
//
// The service trusts the caller identity handed to it; authentication happens
// in the transport layer. Authorization, by contrast, is decided here on every
// operation from the record's owner, public flag, and share sets.
package vault

import (
	"context"
	"errors"

	"github.com/dalemusser/snipsave/internal/app/store/snippet"
	"github.com/dalemusser/snipsave/internal/domain/models"
	"github.com/microcosm-cc/bluemonday"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// recordStore is the slice of the snippet store the service depends on. Bulk
// folder operations have no cross-record transaction, so their mid-run
// failure behavior is part of the contract; the seam lets tests stand in a
// store that fails partway through.
type recordStore interface {
	Create(ctx context.Context, input snippet.CreateInput) (*models.Snippet, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Snippet, error)
	DeleteByID(ctx context.Context, id primitive.ObjectID) error
	ApplyUpdate(ctx context.Context, id primitive.ObjectID, fields models.SnippetFields, setPublic *bool, entry models.EditEntry) error
	AddShares(ctx context.Context, id primitive.ObjectID, readEmails, writeEmails []string) error
	SetFolderPath(ctx context.Context, id primitive.ObjectID, newPath string) error
	ListVisible(ctx context.Context, id models.Identity, opts snippet.ListOptions) ([]models.Snippet, error)
	VisibleFolderPaths(ctx context.Context, id models.Identity) ([]string, error)
	ListByFolder(ctx context.Context, id models.Identity, folderPath string, opts snippet.ListOptions) ([]models.Snippet, error)
	ListOwned(ctx context.Context, ownerID string, opts snippet.ListOptions) ([]models.Snippet, error)
	ListSharedWith(ctx context.Context, email string, opts snippet.ListOptions) ([]models.Snippet, error)
	FindAtPath(ctx context.Context, folderPath, ownerID string) (*models.Snippet, error)
	ListOwnedUnder(ctx context.Context, ownerID, root string) ([]models.Snippet, error)
	DeleteOwnedUnder(ctx context.Context, ownerID, root string) (int64, error)
	ShareOwnedUnder(ctx context.Context, ownerID, root string, readEmails, writeEmails []string) (int64, error)
}

// Service coordinates snippet and folder operations against the record store.
type Service struct {
	store     recordStore
	logger    *zap.Logger
	sanitizer *bluemonday.Policy
}

// New creates a vault service backed by the given store.
func New(store *snippet.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:     store,
		logger:    logger,
		sanitizer: bluemonday.StrictPolicy(),
	}
}

// clean strips all markup from free-text metadata fields. Snippet content is
// never sanitized; it is code and may legitimately contain markup.
func (s *Service) clean(v string) string {
	return s.sanitizer.Sanitize(v)
}

// notFoundOr translates the store's missing-document error into the service
// taxonomy and wraps anything else as a store failure.
func notFoundOr(op string, err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return storeErr(op, err)
}
