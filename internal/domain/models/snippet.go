package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MarkerTitle is the title given to folder-marker records.
const MarkerTitle = ".folder"

// EditEntry is one immutable entry in a snippet's edit history.
// Entries are only ever appended; they record the editor's identity and the
// field values that were submitted with the update.
type EditEntry struct {
	ID          string        `bson:"id"`
	EditorID    string        `bson:"editor_id"`
	EditorName  string        `bson:"editor_name"`
	EditorEmail string        `bson:"editor_email"`
	Changes     SnippetFields `bson:"changes"`
	EditedAt    time.Time     `bson:"edited_at"`
}

// SnippetFields are the content-bearing fields of a snippet, used both in
// update requests and in history entries.
type SnippetFields struct {
	Title       string   `bson:"title"`
	Content     string   `bson:"content"`
	ContentType string   `bson:"content_type"`
	Description string   `bson:"description"`
	Tags        []string `bson:"tags"`
}

// Snippet is the unit of storage. A record is either a real snippet or a
// folder marker (IsFolderMarker true, empty content) that exists only to make
// an otherwise-empty folder path discoverable and shareable.
type Snippet struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	TitleCI     string             `bson:"title_ci"` // Case-insensitive for sorting/search
	Content     string             `bson:"content"`
	ContentType string             `bson:"content_type"`
	Description string             `bson:"description,omitempty"`
	Tags        []string           `bson:"tags,omitempty"`

	// FolderPath always starts with "/" (normalized before persistence).
	FolderPath     string `bson:"folder_path"`
	IsFolderMarker bool   `bson:"is_folder_marker,omitempty"`

	// Owner identity, captured at creation and immutable afterwards.
	OwnerID    string `bson:"owner_id"`
	OwnerEmail string `bson:"owner_email"`
	OwnerName  string `bson:"owner_name,omitempty"`

	IsPublic   bool     `bson:"is_public"`
	SharedWith []string `bson:"shared_with,omitempty"` // read access, by email
	CanEdit    []string `bson:"can_edit,omitempty"`    // write access, by email

	EditHistory []EditEntry `bson:"edit_history,omitempty"`

	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// Fields returns the snippet's content-bearing fields.
func (s *Snippet) Fields() SnippetFields {
	return SnippetFields{
		Title:       s.Title,
		Content:     s.Content,
		ContentType: s.ContentType,
		Description: s.Description,
		Tags:        s.Tags,
	}
}
