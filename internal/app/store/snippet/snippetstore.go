// Package snippet provides storage for snippet records.
//
// One flat collection holds both real snippets and folder-marker records;
// folder hierarchy is derived from the folder_path field by the callers.
// Prefix-scoped methods use the boundary-safe pattern from pathutil so a
// folder named /foo never captures records under /foobar.
package snippet

import (
	"context"
	"time"

	"github.com/dalemusser/snipsave/internal/app/store/storeutil"
	"github.com/dalemusser/snipsave/internal/app/system/pathutil"
	"github.com/dalemusser/snipsave/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// CollectionName is the MongoDB collection for snippet records.
const CollectionName = "snippets"

// Store provides access to the snippets collection.
type Store struct {
	c *mongo.Collection
}

// New creates a new snippet store.
func New(db *mongo.Database) *Store {
	return &Store{
		c: db.Collection(CollectionName),
	}
}

// CreateInput contains the input for creating a record.
type CreateInput struct {
	Title          string
	Content        string
	ContentType    string
	Description    string
	Tags           []string
	FolderPath     string
	IsFolderMarker bool
	IsPublic       bool
	Owner          models.Identity
	SharedWith     []string
	CanEdit        []string
}

// Create persists a new record. The folder path is normalized before the
// record is written; every stored path starts with "/".
func (s *Store) Create(ctx context.Context, input CreateInput) (*models.Snippet, error) {
	now := time.Now().UTC()
	snip := models.Snippet{
		ID:             primitive.NewObjectID(),
		Title:          input.Title,
		TitleCI:        text.Fold(input.Title),
		Content:        input.Content,
		ContentType:    input.ContentType,
		Description:    input.Description,
		Tags:           input.Tags,
		FolderPath:     pathutil.Normalize(input.FolderPath),
		IsFolderMarker: input.IsFolderMarker,
		OwnerID:        input.Owner.ID,
		OwnerEmail:     input.Owner.Email,
		OwnerName:      input.Owner.Name,
		IsPublic:       input.IsPublic,
		SharedWith:     input.SharedWith,
		CanEdit:        input.CanEdit,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if _, err := s.c.InsertOne(ctx, snip); err != nil {
		return nil, err
	}

	return &snip, nil
}

// GetByID retrieves a record by ID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Snippet, error) {
	var snip models.Snippet
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&snip); err != nil {
		return nil, err
	}
	return &snip, nil
}

// DeleteByID deletes a record and, with it, the record's entire history.
func (s *Store) DeleteByID(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// ApplyUpdate rewrites the content fields of a record and appends one history
// entry in a single UpdateOne, relying on the store's per-record atomicity.
// setPublic is optional; nil leaves the public flag untouched.
func (s *Store) ApplyUpdate(ctx context.Context, id primitive.ObjectID, fields models.SnippetFields, setPublic *bool, entry models.EditEntry) error {
	set := bson.M{
		"title":        fields.Title,
		"title_ci":     text.Fold(fields.Title),
		"content":      fields.Content,
		"content_type": fields.ContentType,
		"description":  fields.Description,
		"tags":         fields.Tags,
		"updated_at":   time.Now().UTC(),
	}
	if setPublic != nil {
		set["is_public"] = *setPublic
	}

	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set":  set,
		"$push": bson.M{"edit_history": entry},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// AddShares unions the given emails into the record's share sets. $addToSet
// makes re-sharing idempotent; duplicates collapse.
func (s *Store) AddShares(ctx context.Context, id primitive.ObjectID, readEmails, writeEmails []string) error {
	addToSet := bson.M{}
	if len(readEmails) > 0 {
		addToSet["shared_with"] = bson.M{"$each": readEmails}
	}
	if len(writeEmails) > 0 {
		addToSet["can_edit"] = bson.M{"$each": writeEmails}
	}
	if len(addToSet) == 0 {
		return nil
	}

	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$addToSet": addToSet})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// SetFolderPath rewrites a single record's folder path. Folder rename
// iterates matched records and calls this per record; there is no
// cross-record transaction.
func (s *Store) SetFolderPath(ctx context.Context, id primitive.ObjectID, newPath string) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{
			"folder_path": pathutil.Normalize(newPath),
			"updated_at":  time.Now().UTC(),
		},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Scans                                                                      */
/* -------------------------------------------------------------------------- */

// ListOptions contains options for listing records.
type ListOptions struct {
	Limit int64 // page size; 0 = default
	Page  int64 // 1-based page number
}

// visibilityFilter matches every record the identity may read: their own,
// records shared to their email for read or for write (a write share implies
// read), and public records.
func visibilityFilter(id models.Identity) bson.M {
	return bson.M{
		"$or": []bson.M{
			{"owner_id": id.ID},
			{"shared_with": id.Email},
			{"can_edit": id.Email},
			{"is_public": true},
		},
	}
}

func (s *Store) find(ctx context.Context, filter bson.M, opts ListOptions) ([]models.Snippet, error) {
	findOpts := storeutil.NewestFirst(storeutil.Paginate(opts.Limit, opts.Page))

	cursor, err := s.c.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var snips []models.Snippet
	if err := cursor.All(ctx, &snips); err != nil {
		return nil, err
	}
	return snips, nil
}

// ListVisible returns every record the identity may read, newest first.
func (s *Store) ListVisible(ctx context.Context, id models.Identity, opts ListOptions) ([]models.Snippet, error) {
	return s.find(ctx, visibilityFilter(id), opts)
}

// VisibleFolderPaths returns the distinct folder paths across every record
// the identity may read. Callers derive the folder tree from these.
func (s *Store) VisibleFolderPaths(ctx context.Context, id models.Identity) ([]string, error) {
	raw, err := s.c.Distinct(ctx, "folder_path", visibilityFilter(id))
	if err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(raw))
	for _, v := range raw {
		if p, ok := v.(string); ok {
			paths = append(paths, p)
		}
	}
	return paths, nil
}

// ListByFolder returns the visible records whose folder path equals the given
// path. The scan is non-recursive: descendants are not included.
func (s *Store) ListByFolder(ctx context.Context, id models.Identity, folderPath string, opts ListOptions) ([]models.Snippet, error) {
	filter := visibilityFilter(id)
	filter["folder_path"] = pathutil.Normalize(folderPath)
	return s.find(ctx, filter, opts)
}

// ListOwned returns the identity's own snippets, folder markers excluded.
func (s *Store) ListOwned(ctx context.Context, ownerID string, opts ListOptions) ([]models.Snippet, error) {
	return s.find(ctx, bson.M{
		"owner_id":         ownerID,
		"is_folder_marker": bson.M{"$ne": true},
	}, opts)
}

// ListSharedWith returns the snippets shared to an email, whether for read or
// for write, folder markers excluded.
func (s *Store) ListSharedWith(ctx context.Context, email string, opts ListOptions) ([]models.Snippet, error) {
	return s.find(ctx, bson.M{
		"$or":              []bson.M{{"shared_with": email}, {"can_edit": email}},
		"is_folder_marker": bson.M{"$ne": true},
	}, opts)
}

// FindAtPath returns a record occupying exactly the given path, either one of
// the owner's records or any folder marker regardless of owner. Used for
// folder-creation collision checks. Returns mongo.ErrNoDocuments when the
// path is free.
func (s *Store) FindAtPath(ctx context.Context, folderPath, ownerID string) (*models.Snippet, error) {
	folderPath = pathutil.Normalize(folderPath)
	var snip models.Snippet
	err := s.c.FindOne(ctx, bson.M{
		"$or": []bson.M{
			{"folder_path": folderPath, "owner_id": ownerID},
			{"folder_path": folderPath, "is_folder_marker": true},
		},
	}).Decode(&snip)
	if err != nil {
		return nil, err
	}
	return &snip, nil
}

/* -------------------------------------------------------------------------- */
/* Prefix-scoped operations                                                   */
/* -------------------------------------------------------------------------- */

// ownedUnderFilter matches the owner's records at root or anywhere beneath it,
// with a segment boundary: /foo matches /foo and /foo/bar, never /foobar.
func ownedUnderFilter(ownerID, root string) bson.M {
	return bson.M{
		"owner_id":    ownerID,
		"folder_path": bson.M{"$regex": pathutil.PrefixPattern(root)},
	}
}

// ListOwnedUnder returns the owner's records under-or-equal the given path.
func (s *Store) ListOwnedUnder(ctx context.Context, ownerID, root string) ([]models.Snippet, error) {
	cursor, err := s.c.Find(ctx, ownedUnderFilter(ownerID, root))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var snips []models.Snippet
	if err := cursor.All(ctx, &snips); err != nil {
		return nil, err
	}
	return snips, nil
}

// DeleteOwnedUnder deletes the owner's records under-or-equal the given path
// and returns the number removed. There is no all-or-nothing guarantee.
func (s *Store) DeleteOwnedUnder(ctx context.Context, ownerID, root string) (int64, error) {
	res, err := s.c.DeleteMany(ctx, ownedUnderFilter(ownerID, root))
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// ShareOwnedUnder unions the given emails into the share sets of every record
// the owner holds under-or-equal the path, returning the modified count.
func (s *Store) ShareOwnedUnder(ctx context.Context, ownerID, root string, readEmails, writeEmails []string) (int64, error) {
	addToSet := bson.M{}
	if len(readEmails) > 0 {
		addToSet["shared_with"] = bson.M{"$each": readEmails}
	}
	if len(writeEmails) > 0 {
		addToSet["can_edit"] = bson.M{"$each": writeEmails}
	}
	if len(addToSet) == 0 {
		return 0, nil
	}

	res, err := s.c.UpdateMany(ctx, ownedUnderFilter(ownerID, root), bson.M{"$addToSet": addToSet})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}
