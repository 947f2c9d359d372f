package refs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/gitrefdb/refdb/pkg/oid"
)

func TestRefUpdateCASMismatch(t *testing.T) {
	db := newTestDatabase(t)
	first := oid.Sum("blob", []byte("first"))
	mustCommitDirect(t, db, "refs/heads/main", first)

	wrong := oid.Sum("blob", []byte("wrong"))
	u := db.NewUpdate("refs/heads/main", false)
	u.SetExpectedOldObjectID(wrong)
	u.SetNewObjectID(oid.Sum("blob", []byte("second")))
	_, err := u.Commit()
	if err == nil || !errors.Is(err, ErrCASMismatch) {
		t.Fatalf("Commit() with wrong expected-old = %v, want ErrCASMismatch", err)
	}

	got, err := db.GetRef("refs/heads/main")
	if err != nil {
		t.Fatal(err)
	}
	if got.ObjectID() != first {
		t.Error("a failed CAS must not change the stored value")
	}
}

func TestRefUpdateCASSucceedsWithCorrectOld(t *testing.T) {
	db := newTestDatabase(t)
	first := oid.Sum("blob", []byte("first"))
	mustCommitDirect(t, db, "refs/heads/main", first)

	second := oid.Sum("blob", []byte("second"))
	u := db.NewUpdate("refs/heads/main", false)
	u.SetExpectedOldObjectID(first)
	u.SetNewObjectID(second)
	if _, err := u.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	got, err := db.GetRef("refs/heads/main")
	if err != nil {
		t.Fatal(err)
	}
	if got.ObjectID() != second {
		t.Errorf("GetRef = %s, want %s", got.ObjectID(), second)
	}
}

func TestRefUpdateDetachUsesSymbolicLeafAsExpectedOld(t *testing.T) {
	db := newTestDatabase(t)
	leafID := oid.Sum("blob", []byte("leaf"))
	mustCommitDirect(t, db, "refs/heads/main", leafID)

	head := db.NewUpdate("HEAD", false)
	head.SetSymbolicTarget("refs/heads/main")
	if _, err := head.Commit(); err != nil {
		t.Fatal(err)
	}

	newID := oid.Sum("blob", []byte("detached"))
	detach := db.NewUpdate("HEAD", true)
	detach.SetExpectedOldObjectID(leafID)
	detach.SetNewObjectID(newID)
	ref, err := detach.Commit()
	if err != nil {
		t.Fatalf("detach Commit: %v", err)
	}
	if ref.IsSymbolic() || ref.ObjectID() != newID {
		t.Errorf("detach result = %+v", ref)
	}

	main, err := db.GetRef("refs/heads/main")
	if err != nil {
		t.Fatal(err)
	}
	if main.ObjectID() != leafID {
		t.Error("detaching HEAD must not alter the branch it used to point at")
	}
}

func TestRefRenameMovesValueAndDeletesOld(t *testing.T) {
	db := newTestDatabase(t)
	id := oid.Sum("blob", []byte("x"))
	mustCommitDirect(t, db, "refs/heads/old-name", id)

	rn := db.NewRename("refs/heads/old-name", "refs/heads/new-name")
	ref, err := rn.Commit()
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if ref.ObjectID() != id {
		t.Errorf("renamed ref id = %s, want %s", ref.ObjectID(), id)
	}

	gone, err := db.GetRef("refs/heads/old-name")
	if err != nil {
		t.Fatal(err)
	}
	if gone != nil {
		t.Error("old name should be gone after rename")
	}
	moved, err := db.GetRef("refs/heads/new-name")
	if err != nil {
		t.Fatal(err)
	}
	if moved == nil || moved.ObjectID() != id {
		t.Error("new name should hold the renamed value")
	}
}

func TestDeletePrunesEmptyParentDirectories(t *testing.T) {
	db := newTestDatabase(t)
	id := oid.Sum("blob", []byte("x"))
	mustCommitDirect(t, db, "refs/heads/feature/topic", id)

	if err := db.Delete(db.NewUpdate("refs/heads/feature/topic", false)); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if _, err := os.Stat(filepath.Join(db.root, "refs", "heads", "feature")); !os.IsNotExist(err) {
		t.Error("refs/heads/feature should be pruned once empty")
	}
	if _, err := os.Stat(filepath.Join(db.root, "refs", "heads")); err != nil {
		t.Error("refs/heads must never be pruned")
	}
}

func TestDeleteDoesNotPruneSingleLevelBranch(t *testing.T) {
	db := newTestDatabase(t)
	mustCommitDirect(t, db, "refs/heads/main", oid.Sum("blob", []byte("x")))

	if err := db.Delete(db.NewUpdate("refs/heads/main", false)); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := os.Stat(filepath.Join(db.root, "refs", "heads")); err != nil {
		t.Error("refs/heads must survive deleting a single top-level branch")
	}
}

func TestRefUpdateCASConcurrentSingleWinner(t *testing.T) {
	db := newTestDatabase(t)
	base := oid.Sum("blob", []byte("base"))
	mustCommitDirect(t, db, "refs/heads/main", base)

	const workers = 16
	var wg sync.WaitGroup
	wg.Add(workers)

	successCh := make(chan oid.ID, workers)
	errCh := make(chan error, workers)

	for i := 0; i < workers; i++ {
		i := i
		go func() {
			defer wg.Done()
			next := oid.Sum("blob", []byte(fmt.Sprintf("candidate-%d", i)))
			u := db.NewUpdate("refs/heads/main", false)
			u.SetExpectedOldObjectID(base)
			u.SetNewObjectID(next)
			if _, err := u.Commit(); err != nil {
				errCh <- err
				return
			}
			successCh <- next
		}()
	}

	wg.Wait()
	close(successCh)
	close(errCh)

	var winner oid.ID
	successes := 0
	for id := range successCh {
		successes++
		winner = id
	}
	if successes != 1 {
		t.Fatalf("successful CAS updates = %d, want 1", successes)
	}

	mismatches := 0
	for err := range errCh {
		if errors.Is(err, ErrCASMismatch) {
			mismatches++
			continue
		}
		t.Fatalf("unexpected error type: %v", err)
	}
	if mismatches != workers-1 {
		t.Fatalf("CAS mismatches = %d, want %d", mismatches, workers-1)
	}

	got, err := db.GetRef("refs/heads/main")
	if err != nil {
		t.Fatalf("GetRef: %v", err)
	}
	if got == nil || got.ObjectID() != winner {
		t.Fatalf("refs/heads/main = %+v, want winner %s", got, winner)
	}
}

func TestRefUpdateRejectsDotDotInName(t *testing.T) {
	db := newTestDatabase(t)
	u := db.NewUpdate("refs/heads/../escape", false)
	u.SetNewObjectID(oid.Sum("blob", []byte("x")))
	if _, err := u.Commit(); err == nil {
		t.Fatal("expected an error for a name containing \"..\"")
	}
}
