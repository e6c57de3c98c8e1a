package vault

import (
	"context"
	"errors"
	"testing"

	"github.com/dalemusser/snipsave/internal/app/store/snippet"
	"github.com/dalemusser/snipsave/internal/domain/models"
	"github.com/dalemusser/snipsave/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var (
	alice = models.Identity{ID: "u-alice", Email: "alice@example.com", Name: "Alice"}
	bob   = models.Identity{ID: "u-bob", Email: "bob@example.com", Name: "Bob"}
	carol = models.Identity{ID: "u-carol", Email: "carol@example.com", Name: "Carol"}
)

func newService(t *testing.T) *Service {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return New(snippet.New(db), zap.NewNop())
}

func mustCreate(t *testing.T, s *Service, ctx context.Context, id models.Identity, input CreateSnippetInput) *models.Snippet {
	t.Helper()
	snip, err := s.CreateSnippet(ctx, id, input)
	if err != nil {
		t.Fatalf("CreateSnippet: %v", err)
	}
	return snip
}

func TestCreateSnippetDefaults(t *testing.T) {
	s := newService(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	snip := mustCreate(t, s, ctx, alice, CreateSnippetInput{Title: "t", Content: "c"})

	if snip.ContentType != "text" {
		t.Errorf("content_type = %q, want text", snip.ContentType)
	}
	if snip.FolderPath != "/" {
		t.Errorf("folder_path = %q, want /", snip.FolderPath)
	}
	if snip.IsPublic {
		t.Error("new snippet public by default")
	}
	if len(snip.EditHistory) != 0 {
		t.Errorf("new snippet has %d history entries, want 0", len(snip.EditHistory))
	}
}

func TestCreateSnippetValidation(t *testing.T) {
	s := newService(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := s.CreateSnippet(ctx, alice, CreateSnippetInput{Content: "c"}); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("missing title: err = %v, want ErrInvalidArgument", err)
	}
	if _, err := s.CreateSnippet(ctx, alice, CreateSnippetInput{Title: "t"}); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("missing content: err = %v, want ErrInvalidArgument", err)
	}
	if _, err := s.CreateSnippet(ctx, alice, CreateSnippetInput{Title: "t", Content: "c", FolderPath: "/bad path!"}); !errors.Is(err, ErrInvalidPath) {
		t.Errorf("bad path: err = %v, want ErrInvalidPath", err)
	}
	if _, err := s.CreateSnippet(ctx, models.Identity{}, CreateSnippetInput{Title: "t", Content: "c"}); !errors.Is(err, ErrAccessDenied) {
		t.Errorf("anonymous: err = %v, want ErrAccessDenied", err)
	}
}

func TestCreateSnippetSanitizesMetadata(t *testing.T) {
	s := newService(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	snip := mustCreate(t, s, ctx, alice, CreateSnippetInput{
		Title:       `Hi<script>alert(1)</script>`,
		Content:     "<b>raw code stays</b>",
		Description: "<img src=x>note",
	})

	if snip.Title != "Hi" {
		t.Errorf("title = %q, want markup stripped", snip.Title)
	}
	if snip.Description != "note" {
		t.Errorf("description = %q, want markup stripped", snip.Description)
	}
	if snip.Content != "<b>raw code stays</b>" {
		t.Errorf("content = %q, must not be sanitized", snip.Content)
	}
}

func TestGetSnippetAccess(t *testing.T) {
	s := newService(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	private := mustCreate(t, s, ctx, alice, CreateSnippetInput{Title: "t", Content: "c"})
	public := mustCreate(t, s, ctx, alice, CreateSnippetInput{Title: "t", Content: "c", IsPublic: true})

	if _, err := s.GetSnippet(ctx, alice, private.ID); err != nil {
		t.Errorf("owner read: %v", err)
	}
	if _, err := s.GetSnippet(ctx, bob, private.ID); !errors.Is(err, ErrAccessDenied) {
		t.Errorf("stranger read private: err = %v, want ErrAccessDenied", err)
	}
	if _, err := s.GetSnippet(ctx, bob, public.ID); err != nil {
		t.Errorf("stranger read public: %v", err)
	}
	if _, err := s.GetSnippet(ctx, alice, primitive.NewObjectID()); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing id: err = %v, want ErrNotFound", err)
	}
}

func TestShareSnippetGrantsAccess(t *testing.T) {
	s := newService(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	snip := mustCreate(t, s, ctx, alice, CreateSnippetInput{Title: "t", Content: "original"})

	// Read share lets bob see it but not edit it.
	if _, err := s.ShareSnippet(ctx, alice, snip.ID, ShareInput{ReadEmails: []string{bob.Email}}); err != nil {
		t.Fatalf("ShareSnippet: %v", err)
	}
	if _, err := s.GetSnippet(ctx, bob, snip.ID); err != nil {
		t.Errorf("read-shared get: %v", err)
	}
	if _, err := s.UpdateSnippet(ctx, bob, snip.ID, UpdateSnippetInput{Title: "x", Content: "y"}); !errors.Is(err, ErrAccessDenied) {
		t.Errorf("read-shared update: err = %v, want ErrAccessDenied", err)
	}

	// Write share lets carol edit.
	if _, err := s.ShareSnippet(ctx, alice, snip.ID, ShareInput{WriteEmails: []string{carol.Email}}); err != nil {
		t.Fatalf("ShareSnippet: %v", err)
	}
	if _, err := s.UpdateSnippet(ctx, carol, snip.ID, UpdateSnippetInput{Title: "edited", Content: "by carol"}); err != nil {
		t.Errorf("write-shared update: %v", err)
	}

	// Only the owner may share.
	if _, err := s.ShareSnippet(ctx, bob, snip.ID, ShareInput{ReadEmails: []string{carol.Email}}); !errors.Is(err, ErrAccessDenied) {
		t.Errorf("non-owner share: err = %v, want ErrAccessDenied", err)
	}
	// Empty grant list is rejected.
	if _, err := s.ShareSnippet(ctx, alice, snip.ID, ShareInput{}); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("empty share: err = %v, want ErrInvalidArgument", err)
	}
}

func TestUpdateAppendsOneHistoryEntry(t *testing.T) {
	s := newService(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	snip := mustCreate(t, s, ctx, alice, CreateSnippetInput{Title: "v1", Content: "one"})
	if _, err := s.ShareSnippet(ctx, alice, snip.ID, ShareInput{WriteEmails: []string{bob.Email}}); err != nil {
		t.Fatalf("ShareSnippet: %v", err)
	}

	updated, err := s.UpdateSnippet(ctx, bob, snip.ID, UpdateSnippetInput{Title: "v2", Content: "two", Tags: []string{"a"}})
	if err != nil {
		t.Fatalf("UpdateSnippet: %v", err)
	}
	if len(updated.EditHistory) != 1 {
		t.Fatalf("history has %d entries, want 1", len(updated.EditHistory))
	}
	entry := updated.EditHistory[0]
	if entry.EditorID != bob.ID || entry.EditorEmail != bob.Email {
		t.Errorf("entry editor = %s/%s, want bob", entry.EditorID, entry.EditorEmail)
	}
	if entry.Changes.Title != "v2" || entry.Changes.Content != "two" {
		t.Errorf("entry changes = %+v, want submitted values", entry.Changes)
	}
	if entry.ID == "" {
		t.Error("entry has no id")
	}

	// Second update appends, never rewrites.
	updated, err = s.UpdateSnippet(ctx, alice, snip.ID, UpdateSnippetInput{Title: "v3", Content: "three"})
	if err != nil {
		t.Fatalf("UpdateSnippet: %v", err)
	}
	if len(updated.EditHistory) != 2 {
		t.Fatalf("history has %d entries, want 2", len(updated.EditHistory))
	}
	if updated.EditHistory[0].Changes.Title != "v2" {
		t.Error("earlier history entry was rewritten")
	}

	hist, err := s.History(ctx, bob, snip.ID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(hist) != 2 {
		t.Errorf("History returned %d entries, want 2", len(hist))
	}
}

func TestVisibilityChangeIsOwnerOnly(t *testing.T) {
	s := newService(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	snip := mustCreate(t, s, ctx, alice, CreateSnippetInput{Title: "t", Content: "c"})
	if _, err := s.ShareSnippet(ctx, alice, snip.ID, ShareInput{WriteEmails: []string{bob.Email}}); err != nil {
		t.Fatalf("ShareSnippet: %v", err)
	}

	pub := true
	if _, err := s.UpdateSnippet(ctx, bob, snip.ID, UpdateSnippetInput{Title: "t", Content: "c", IsPublic: &pub}); !errors.Is(err, ErrAccessDenied) {
		t.Errorf("editor toggling visibility: err = %v, want ErrAccessDenied", err)
	}
	updated, err := s.UpdateSnippet(ctx, alice, snip.ID, UpdateSnippetInput{Title: "t", Content: "c", IsPublic: &pub})
	if err != nil {
		t.Fatalf("owner toggling visibility: %v", err)
	}
	if !updated.IsPublic {
		t.Error("snippet not public after owner update")
	}
}

func TestDeleteSnippetOwnerOnly(t *testing.T) {
	s := newService(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	snip := mustCreate(t, s, ctx, alice, CreateSnippetInput{Title: "t", Content: "c", CanEdit: []string{bob.Email}})

	if err := s.DeleteSnippet(ctx, bob, snip.ID); !errors.Is(err, ErrAccessDenied) {
		t.Errorf("editor delete: err = %v, want ErrAccessDenied", err)
	}
	if err := s.DeleteSnippet(ctx, alice, snip.ID); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if _, err := s.GetSnippet(ctx, alice, snip.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("get after delete: err = %v, want ErrNotFound", err)
	}
}

func TestCreateFolderAndCollisions(t *testing.T) {
	s := newService(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	marker, err := s.CreateFolder(ctx, alice, "/docs")
	if err != nil {
		t.Fatalf("CreateFolder: %v", err)
	}
	if !marker.IsFolderMarker || marker.Title != models.MarkerTitle {
		t.Errorf("marker = %+v, want folder marker titled %q", marker, models.MarkerTitle)
	}

	// Same owner, same path: occupied.
	if _, err := s.CreateFolder(ctx, alice, "/docs"); !errors.Is(err, ErrAlreadyExists) {
		t.Errorf("duplicate folder: err = %v, want ErrAlreadyExists", err)
	}
	// Another owner hits the marker too.
	if _, err := s.CreateFolder(ctx, bob, "/docs"); !errors.Is(err, ErrAlreadyExists) {
		t.Errorf("foreign marker collision: err = %v, want ErrAlreadyExists", err)
	}
	// Root and invalid paths rejected.
	if _, err := s.CreateFolder(ctx, alice, "/"); !errors.Is(err, ErrInvalidPath) {
		t.Errorf("root folder: err = %v, want ErrInvalidPath", err)
	}
	if _, err := s.CreateFolder(ctx, alice, "/sp ace"); !errors.Is(err, ErrInvalidPath) {
		t.Errorf("invalid chars: err = %v, want ErrInvalidPath", err)
	}
}

func TestListFoldersSynthesizesAncestors(t *testing.T) {
	s := newService(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	mustCreate(t, s, ctx, alice, CreateSnippetInput{Title: "t", Content: "c", FolderPath: "/a/b/c"})
	mustCreate(t, s, ctx, bob, CreateSnippetInput{Title: "t", Content: "c", FolderPath: "/pub", IsPublic: true})
	mustCreate(t, s, ctx, bob, CreateSnippetInput{Title: "t", Content: "c", FolderPath: "/secret"})

	folders, err := s.ListFolders(ctx, alice)
	if err != nil {
		t.Fatalf("ListFolders: %v", err)
	}

	want := []string{"/", "/a", "/pub", "/a/b", "/a/b/c"}
	if len(folders) != len(want) {
		t.Fatalf("folders = %v, want %v", folders, want)
	}
	for i, f := range want {
		if folders[i] != f {
			t.Fatalf("folders = %v, want %v", folders, want)
		}
	}
}

func TestRenameFolderLeavesSiblings(t *testing.T) {
	s := newService(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	mustCreate(t, s, ctx, alice, CreateSnippetInput{Title: "a", Content: "c", FolderPath: "/proj"})
	mustCreate(t, s, ctx, alice, CreateSnippetInput{Title: "b", Content: "c", FolderPath: "/proj/sub"})
	sibling := mustCreate(t, s, ctx, alice, CreateSnippetInput{Title: "s", Content: "c", FolderPath: "/projects"})
	foreign := mustCreate(t, s, ctx, bob, CreateSnippetInput{Title: "f", Content: "c", FolderPath: "/proj"})

	moved, err := s.RenameFolder(ctx, alice, "/proj", "/project")
	if err != nil {
		t.Fatalf("RenameFolder: %v", err)
	}
	if moved != 2 {
		t.Errorf("moved %d records, want 2", moved)
	}

	got, err := s.GetSnippet(ctx, alice, sibling.ID)
	if err != nil {
		t.Fatalf("GetSnippet: %v", err)
	}
	if got.FolderPath != "/projects" {
		t.Errorf("/projects sibling moved to %q", got.FolderPath)
	}

	got, err = s.GetSnippet(ctx, bob, foreign.ID)
	if err != nil {
		t.Fatalf("GetSnippet: %v", err)
	}
	if got.FolderPath != "/proj" {
		t.Errorf("another owner's record moved to %q", got.FolderPath)
	}

	folders, err := s.ListFolders(ctx, alice)
	if err != nil {
		t.Fatalf("ListFolders: %v", err)
	}
	for _, f := range folders {
		if f == "/proj" || f == "/proj/sub" {
			t.Errorf("old path %s still present after rename", f)
		}
	}
}

func TestRenameFolderValidation(t *testing.T) {
	s := newService(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	mustCreate(t, s, ctx, alice, CreateSnippetInput{Title: "a", Content: "c", FolderPath: "/proj"})
	mustCreate(t, s, ctx, alice, CreateSnippetInput{Title: "b", Content: "c", FolderPath: "/taken"})

	if _, err := s.RenameFolder(ctx, alice, "/", "/x"); !errors.Is(err, ErrInvalidPath) {
		t.Errorf("rename root: err = %v, want ErrInvalidPath", err)
	}
	if _, err := s.RenameFolder(ctx, alice, "/proj", "/proj/inner"); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("move into self: err = %v, want ErrInvalidArgument", err)
	}
	if _, err := s.RenameFolder(ctx, alice, "/proj", "/taken"); !errors.Is(err, ErrAlreadyExists) {
		t.Errorf("occupied target: err = %v, want ErrAlreadyExists", err)
	}
	if _, err := s.RenameFolder(ctx, alice, "/missing", "/elsewhere"); !errors.Is(err, ErrNotFound) {
		t.Errorf("empty source: err = %v, want ErrNotFound", err)
	}
}

// faultyStore fails every per-record path rewrite after the first N, standing
// in for a store connection that drops partway through a bulk rename.
type faultyStore struct {
	*snippet.Store
	allowed int
	moves   int
}

func (f *faultyStore) SetFolderPath(ctx context.Context, id primitive.ObjectID, newPath string) error {
	if f.moves >= f.allowed {
		return errors.New("connection reset by peer")
	}
	f.moves++
	return f.Store.SetFolderPath(ctx, id, newPath)
}

func TestRenameFolderReportsPartialFailure(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := snippet.New(db)
	s := New(store, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	mustCreate(t, s, ctx, alice, CreateSnippetInput{Title: "a", Content: "c", FolderPath: "/proj"})
	mustCreate(t, s, ctx, alice, CreateSnippetInput{Title: "b", Content: "c", FolderPath: "/proj/sub"})
	mustCreate(t, s, ctx, alice, CreateSnippetInput{Title: "c", Content: "c", FolderPath: "/proj/sub/deep"})

	// Fail the second per-record rewrite mid-run.
	s.store = &faultyStore{Store: store, allowed: 1}

	moved, err := s.RenameFolder(ctx, alice, "/proj", "/project")
	var pf *PartialFailureError
	if !errors.As(err, &pf) {
		t.Fatalf("err = %v, want PartialFailureError", err)
	}
	if pf.Affected != 1 {
		t.Errorf("Affected = %d, want 1", pf.Affected)
	}
	if moved != pf.Affected {
		t.Errorf("moved = %d, want the reported affected count %d", moved, pf.Affected)
	}

	// No rollback: the record moved before the failure stays moved, the rest
	// stay where they were.
	s.store = store
	atNew, err := store.ListOwnedUnder(ctx, alice.ID, "/project")
	if err != nil {
		t.Fatalf("ListOwnedUnder(/project): %v", err)
	}
	if int64(len(atNew)) != pf.Affected {
		t.Errorf("records under /project = %d, want %d", len(atNew), pf.Affected)
	}
	atOld, err := store.ListOwnedUnder(ctx, alice.ID, "/proj")
	if err != nil {
		t.Fatalf("ListOwnedUnder(/proj): %v", err)
	}
	if len(atOld) != 2 {
		t.Errorf("records under /proj = %d, want 2 left behind", len(atOld))
	}
}

func TestDeleteFolderScopedToOwnerAndBoundary(t *testing.T) {
	s := newService(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	mustCreate(t, s, ctx, alice, CreateSnippetInput{Title: "a", Content: "c", FolderPath: "/proj"})
	mustCreate(t, s, ctx, alice, CreateSnippetInput{Title: "b", Content: "c", FolderPath: "/proj/deep"})
	sibling := mustCreate(t, s, ctx, alice, CreateSnippetInput{Title: "s", Content: "c", FolderPath: "/proj2"})
	foreign := mustCreate(t, s, ctx, bob, CreateSnippetInput{Title: "f", Content: "c", FolderPath: "/proj"})

	deleted, err := s.DeleteFolder(ctx, alice, "/proj")
	if err != nil {
		t.Fatalf("DeleteFolder: %v", err)
	}
	if deleted != 2 {
		t.Errorf("deleted %d records, want 2", deleted)
	}

	if _, err := s.GetSnippet(ctx, alice, sibling.ID); err != nil {
		t.Errorf("sibling folder /proj2 record gone: %v", err)
	}
	if _, err := s.GetSnippet(ctx, bob, foreign.ID); err != nil {
		t.Errorf("another owner's record gone: %v", err)
	}
	if _, err := s.DeleteFolder(ctx, alice, "/proj"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete: err = %v, want ErrNotFound", err)
	}
}

func TestShareFolderGrantsSubtreeAccess(t *testing.T) {
	s := newService(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	inTree := mustCreate(t, s, ctx, alice, CreateSnippetInput{Title: "a", Content: "c", FolderPath: "/team"})
	nested := mustCreate(t, s, ctx, alice, CreateSnippetInput{Title: "b", Content: "c", FolderPath: "/team/docs"})
	outside := mustCreate(t, s, ctx, alice, CreateSnippetInput{Title: "o", Content: "c", FolderPath: "/teams"})

	affected, err := s.ShareFolder(ctx, alice, "/team", ShareInput{ReadEmails: []string{bob.Email}})
	if err != nil {
		t.Fatalf("ShareFolder: %v", err)
	}
	if affected != 2 {
		t.Errorf("affected %d records, want 2", affected)
	}

	if _, err := s.GetSnippet(ctx, bob, inTree.ID); err != nil {
		t.Errorf("bob cannot read shared record: %v", err)
	}
	if _, err := s.GetSnippet(ctx, bob, nested.ID); err != nil {
		t.Errorf("bob cannot read nested shared record: %v", err)
	}
	if _, err := s.GetSnippet(ctx, bob, outside.ID); !errors.Is(err, ErrAccessDenied) {
		t.Errorf("/teams record leaked by /team share: err = %v", err)
	}

	if _, err := s.ShareFolder(ctx, alice, "/nowhere", ShareInput{ReadEmails: []string{bob.Email}}); !errors.Is(err, ErrNotFound) {
		t.Errorf("share empty folder: err = %v, want ErrNotFound", err)
	}
	if _, err := s.ShareFolder(ctx, alice, "/team", ShareInput{}); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("empty grant: err = %v, want ErrInvalidArgument", err)
	}
}

func TestListScopes(t *testing.T) {
	s := newService(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	mustCreate(t, s, ctx, alice, CreateSnippetInput{Title: "mine", Content: "c"})
	mustCreate(t, s, ctx, bob, CreateSnippetInput{Title: "shared", Content: "c", SharedWith: []string{alice.Email}})
	mustCreate(t, s, ctx, bob, CreateSnippetInput{Title: "pub", Content: "c", IsPublic: true})
	mustCreate(t, s, ctx, bob, CreateSnippetInput{Title: "hidden", Content: "c"})

	mine, err := s.ListMine(ctx, alice, snippet.ListOptions{})
	if err != nil {
		t.Fatalf("ListMine: %v", err)
	}
	if len(mine) != 1 || mine[0].Title != "mine" {
		t.Errorf("ListMine = %+v, want only alice's snippet", mine)
	}

	shared, err := s.ListShared(ctx, alice, snippet.ListOptions{})
	if err != nil {
		t.Fatalf("ListShared: %v", err)
	}
	if len(shared) != 1 || shared[0].Title != "shared" {
		t.Errorf("ListShared = %+v, want only the shared snippet", shared)
	}

	all, err := s.ListAllVisible(ctx, alice, snippet.ListOptions{})
	if err != nil {
		t.Fatalf("ListAllVisible: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("ListAllVisible returned %d records, want 3", len(all))
	}
}
