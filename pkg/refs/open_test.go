package refs

import (
	"path/filepath"
	"testing"

	"github.com/gitrefdb/refdb/pkg/oid"
)

func TestInitCreatesHeadPointingAtMain(t *testing.T) {
	gitDir := filepath.Join(t.TempDir(), ".git")
	db, err := Init(gitDir)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}

	head, err := db.GetRef("HEAD")
	if err != nil {
		t.Fatal(err)
	}
	if head == nil || !head.IsSymbolic() || head.SymbolicTarget() != "refs/heads/main" {
		t.Errorf("HEAD after Init = %+v, want symbolic refs/heads/main", head)
	}
}

func TestInitFailsIfGitDirAlreadyExists(t *testing.T) {
	gitDir := filepath.Join(t.TempDir(), ".git")
	if _, err := Init(gitDir); err != nil {
		t.Fatalf("first Init: %v", err)
	}
	if _, err := Init(gitDir); err == nil {
		t.Fatal("second Init on the same directory should fail")
	}
}

func TestOpenRequiresHead(t *testing.T) {
	dir := t.TempDir()
	if _, err := Open(dir); err == nil {
		t.Fatal("Open on a directory with no HEAD should fail")
	}
}

func TestOpenReusesExistingState(t *testing.T) {
	gitDir := filepath.Join(t.TempDir(), ".git")
	db, err := Init(gitDir)
	if err != nil {
		t.Fatal(err)
	}
	mustCommitDirect(t, db, "refs/heads/main", oid.Sum("blob", []byte("reopen")))

	reopened, err := Open(gitDir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	got, err := reopened.GetRef("refs/heads/main")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil {
		t.Error("reopened database should see the committed ref")
	}
}

func TestDiscoverWalksUpward(t *testing.T) {
	gitDir := filepath.Join(t.TempDir(), ".git")
	if _, err := Init(gitDir); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(filepath.Dir(gitDir), "a", "b", "c")
	if db, err := Discover(nested); err != nil {
		t.Fatalf("Discover: %v", err)
	} else if db == nil {
		t.Fatal("Discover returned a nil database")
	}
}
