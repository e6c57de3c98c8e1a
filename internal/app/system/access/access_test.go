package access

import (
	"testing"

	"github.com/dalemusser/snipsave/internal/domain/models"
)

var (
	owner    = models.Identity{ID: "u1", Email: "u1@example.com", Name: "User One"}
	stranger = models.Identity{ID: "u2", Email: "u2@example.com", Name: "User Two"}
)

func privateSnippet() *models.Snippet {
	return &models.Snippet{
		OwnerID:    owner.ID,
		OwnerEmail: owner.Email,
		FolderPath: "/proj",
	}
}

func TestEffective_Owner(t *testing.T) {
	s := privateSnippet()
	if got := Effective(owner, s); got != Owner {
		t.Errorf("Effective(owner) = %v, want owner", got)
	}
	if !IsOwner(owner, s) || !CanWrite(owner, s) || !CanRead(owner, s) {
		t.Error("owner should hold every capability")
	}
}

func TestEffective_StrangerOnPrivate(t *testing.T) {
	s := privateSnippet()
	if got := Effective(stranger, s); got != None {
		t.Errorf("Effective(stranger) = %v, want none", got)
	}
	if CanRead(stranger, s) {
		t.Error("stranger must not read a private snippet")
	}
}

func TestEffective_Public(t *testing.T) {
	s := privateSnippet()
	s.IsPublic = true
	if got := Effective(stranger, s); got != Read {
		t.Errorf("Effective(stranger, public) = %v, want read", got)
	}
	if CanWrite(stranger, s) {
		t.Error("public read must not grant write")
	}
}

func TestEffective_ReadShare(t *testing.T) {
	s := privateSnippet()
	s.SharedWith = []string{stranger.Email}
	if got := Effective(stranger, s); got != Read {
		t.Errorf("Effective(read-shared) = %v, want read", got)
	}
	if CanWrite(stranger, s) {
		t.Error("read share must not grant write")
	}
}

func TestEffective_WriteShare(t *testing.T) {
	s := privateSnippet()
	s.CanEdit = []string{stranger.Email}
	if got := Effective(stranger, s); got != Write {
		t.Errorf("Effective(write-shared) = %v, want write", got)
	}
	if !CanRead(stranger, s) {
		t.Error("write share must imply read")
	}
	if IsOwner(stranger, s) {
		t.Error("write share must not grant ownership")
	}
}

// Granting shares never reduces anyone's existing permission.
func TestEffective_Monotonic(t *testing.T) {
	s := privateSnippet()
	s.IsPublic = true

	before := Effective(owner, s)
	beforePublic := Effective(stranger, s)

	s.SharedWith = append(s.SharedWith, "third@example.com")
	s.CanEdit = append(s.CanEdit, "third@example.com")

	if Effective(owner, s) < before {
		t.Error("granting shares reduced the owner's permission")
	}
	if Effective(stranger, s) < beforePublic {
		t.Error("granting shares reduced a public reader's permission")
	}
}

func TestEffective_EmptyEmailNeverMatchesShares(t *testing.T) {
	s := privateSnippet()
	s.SharedWith = []string{""}
	s.CanEdit = []string{""}

	anon := models.Identity{ID: "u3"}
	if got := Effective(anon, s); got != None {
		t.Errorf("Effective(identity without email) = %v, want none", got)
	}
}
