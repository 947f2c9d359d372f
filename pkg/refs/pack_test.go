package refs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gitrefdb/refdb/pkg/oid"
)

func TestPackRefsFoldsLooseIntoPacked(t *testing.T) {
	db := newTestDatabase(t)
	mainID := oid.Sum("blob", []byte("main"))
	tagID := oid.Sum("blob", []byte("v1"))
	mustCommitDirect(t, db, "refs/heads/main", mainID)
	mustCommitDirect(t, db, "refs/tags/v1", tagID)

	head := db.NewUpdate("HEAD", false)
	head.SetSymbolicTarget("refs/heads/main")
	if _, err := head.Commit(); err != nil {
		t.Fatal(err)
	}

	if err := db.PackRefs(); err != nil {
		t.Fatalf("PackRefs: %v", err)
	}

	if _, err := os.Stat(filepath.Join(db.root, "refs", "heads", "main")); !os.IsNotExist(err) {
		t.Error("loose file for refs/heads/main should be removed after packing")
	}
	if _, err := os.Stat(filepath.Join(db.root, "HEAD")); err != nil {
		t.Error("HEAD must stay loose")
	}

	got, err := db.GetRef("refs/heads/main")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.ObjectID() != mainID || got.Storage() != StoragePacked {
		t.Fatalf("GetRef(main) after pack = %+v", got)
	}

	head2, err := db.GetRef("HEAD")
	if err != nil {
		t.Fatal(err)
	}
	if head2 == nil || head2.ObjectID() != mainID {
		t.Errorf("HEAD should still resolve through the now-packed branch, got %+v", head2)
	}
}

func TestPackRefsNoOpWhenNothingLoose(t *testing.T) {
	db := newTestDatabase(t)
	if err := db.PackRefs(); err != nil {
		t.Fatalf("PackRefs on an empty database: %v", err)
	}
}
