package vault

import (
	"context"
	"errors"

	"github.com/dalemusser/snipsave/internal/app/store/snippet"
	"github.com/dalemusser/snipsave/internal/app/system/pathutil"
	"github.com/dalemusser/snipsave/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// ListFolders derives the caller's folder tree from every record they can
// read. Ancestors are synthesized so the tree has no gaps, the root is always
// present, and the result is sorted shallow-first.
func (s *Service) ListFolders(ctx context.Context, id models.Identity) ([]string, error) {
	paths, err := s.store.VisibleFolderPaths(ctx, id)
	if err != nil {
		return nil, storeErr("list folder paths", err)
	}
	return pathutil.CollectFolders(paths), nil
}

// ListFolder returns the visible records directly inside a folder. The
// listing is non-recursive; records in subfolders are not included.
func (s *Service) ListFolder(ctx context.Context, id models.Identity, folderPath string, opts snippet.ListOptions) ([]models.Snippet, error) {
	folderPath = pathutil.Normalize(folderPath)
	if !pathutil.Valid(folderPath) {
		return nil, ErrInvalidPath
	}

	snips, err := s.store.ListByFolder(ctx, id, folderPath, opts)
	if err != nil {
		return nil, storeErr("list folder", err)
	}
	return snips, nil
}

// CreateFolder makes an empty folder discoverable by writing a marker record
// at the path. The path is occupied if the caller already has any record
// there, or if anyone holds a marker there.
func (s *Service) CreateFolder(ctx context.Context, id models.Identity, folderPath string) (*models.Snippet, error) {
	if id.IsZero() {
		return nil, ErrAccessDenied
	}
	folderPath = pathutil.Normalize(folderPath)
	if folderPath == pathutil.Root || !pathutil.Valid(folderPath) {
		return nil, ErrInvalidPath
	}

	_, err := s.store.FindAtPath(ctx, folderPath, id.ID)
	switch {
	case err == nil:
		return nil, ErrAlreadyExists
	case !errors.Is(err, mongo.ErrNoDocuments):
		return nil, storeErr("check folder path", err)
	}

	marker, err := s.store.Create(ctx, snippet.CreateInput{
		Title:          models.MarkerTitle,
		ContentType:    DefaultContentType,
		FolderPath:     folderPath,
		IsFolderMarker: true,
		Owner:          id,
	})
	if err != nil {
		return nil, storeErr("create folder marker", err)
	}

	s.logger.Info("folder created",
		zap.String("folder_path", folderPath),
		zap.String("owner_id", id.ID))
	return marker, nil
}

// RenameFolder moves every record the caller owns at or under oldPath to the
// corresponding path under newPath. Records are rewritten one at a time; a
// mid-run failure leaves the already-moved records in place and is reported
// as a partial failure. Returns the number of records moved.
func (s *Service) RenameFolder(ctx context.Context, id models.Identity, oldPath, newPath string) (int64, error) {
	if id.IsZero() {
		return 0, ErrAccessDenied
	}
	oldPath = pathutil.Normalize(oldPath)
	newPath = pathutil.Normalize(newPath)
	if oldPath == pathutil.Root || !pathutil.Valid(oldPath) {
		return 0, ErrInvalidPath
	}
	if newPath == pathutil.Root || !pathutil.Valid(newPath) {
		return 0, ErrInvalidPath
	}
	// A folder cannot be moved into itself or onto itself.
	if pathutil.IsUnderOrEqual(newPath, oldPath) {
		return 0, ErrInvalidArgument
	}

	if _, err := s.store.FindAtPath(ctx, newPath, id.ID); err == nil {
		return 0, ErrAlreadyExists
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		return 0, storeErr("check folder path", err)
	}

	owned, err := s.store.ListOwnedUnder(ctx, id.ID, oldPath)
	if err != nil {
		return 0, storeErr("list folder records", err)
	}
	if len(owned) == 0 {
		return 0, ErrNotFound
	}

	var moved int64
	for _, rec := range owned {
		rebased := pathutil.Rebase(rec.FolderPath, oldPath, newPath)
		if err := s.store.SetFolderPath(ctx, rec.ID, rebased); err != nil {
			return moved, &PartialFailureError{Affected: moved, Err: err}
		}
		moved++
	}

	s.logger.Info("folder renamed",
		zap.String("old_path", oldPath),
		zap.String("new_path", newPath),
		zap.Int64("records_moved", moved))
	return moved, nil
}

// DeleteFolder removes every record the caller owns at or under the path,
// markers included, and returns the number removed. Other owners' records in
// the same virtual folder are untouched.
func (s *Service) DeleteFolder(ctx context.Context, id models.Identity, folderPath string) (int64, error) {
	if id.IsZero() {
		return 0, ErrAccessDenied
	}
	folderPath = pathutil.Normalize(folderPath)
	if folderPath == pathutil.Root || !pathutil.Valid(folderPath) {
		return 0, ErrInvalidPath
	}

	deleted, err := s.store.DeleteOwnedUnder(ctx, id.ID, folderPath)
	if err != nil {
		return 0, storeErr("delete folder records", err)
	}
	if deleted == 0 {
		return 0, ErrNotFound
	}

	s.logger.Info("folder deleted",
		zap.String("folder_path", folderPath),
		zap.String("owner_id", id.ID),
		zap.Int64("records_deleted", deleted))
	return deleted, nil
}

// ShareFolder unions the given emails into the share sets of every record the
// caller owns at or under the path and returns the number of records in
// scope. Sharing the same emails again is a no-op on each record.
func (s *Service) ShareFolder(ctx context.Context, id models.Identity, folderPath string, input ShareInput) (int64, error) {
	if id.IsZero() {
		return 0, ErrAccessDenied
	}
	if input.empty() {
		return 0, ErrInvalidArgument
	}
	folderPath = pathutil.Normalize(folderPath)
	if !pathutil.Valid(folderPath) {
		return 0, ErrInvalidPath
	}

	owned, err := s.store.ListOwnedUnder(ctx, id.ID, folderPath)
	if err != nil {
		return 0, storeErr("list folder records", err)
	}
	if len(owned) == 0 {
		return 0, ErrNotFound
	}

	if _, err := s.store.ShareOwnedUnder(ctx, id.ID, folderPath, input.ReadEmails, input.WriteEmails); err != nil {
		return 0, storeErr("share folder records", err)
	}

	affected := int64(len(owned))
	s.logger.Info("folder shared",
		zap.String("folder_path", folderPath),
		zap.Int64("records_affected", affected),
		zap.Int("read_grants", len(input.ReadEmails)),
		zap.Int("write_grants", len(input.WriteEmails)))
	return affected, nil
}
