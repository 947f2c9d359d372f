package refs

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestStatSnapshotMissing(t *testing.T) {
	snap, err := StatSnapshot(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatalf("StatSnapshot: %v", err)
	}
	if !snap.IsMissing() {
		t.Error("IsMissing() = false for a nonexistent file")
	}
}

func TestIsModifiedDetectsContentChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f")
	if err := os.WriteFile(path, []byte("one"), 0o644); err != nil {
		t.Fatal(err)
	}
	snap, err := StatSnapshot(path)
	if err != nil {
		t.Fatal(err)
	}
	if snap.IsModified(path) {
		t.Error("IsModified() = true immediately after snapshotting")
	}

	time.Sleep(2 * time.Millisecond)
	if err := os.WriteFile(path, []byte("two-longer"), 0o644); err != nil {
		t.Fatal(err)
	}
	if !snap.IsModified(path) {
		t.Error("IsModified() = false after the file's size changed")
	}
}

func TestIsModifiedMissingToPresentAndBack(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f")

	missing, err := StatSnapshot(path)
	if err != nil {
		t.Fatal(err)
	}
	if !missing.IsMissing() {
		t.Fatal("expected missing snapshot")
	}
	if missing.IsModified(path) {
		t.Error("missing snapshot should not be modified while file is still absent")
	}

	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if !missing.IsModified(path) {
		t.Error("missing snapshot should be modified once the file appears")
	}
}

func TestEqualIgnoresLastRead(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	a, err := StatSnapshot(path)
	if err != nil {
		t.Fatal(err)
	}
	time.Sleep(time.Millisecond)
	b, err := StatSnapshot(path)
	if err != nil {
		t.Fatal(err)
	}
	if !a.Equal(b) {
		t.Error("snapshots of an unchanged file should be Equal despite different lastRead")
	}
}

func TestSetCleanAdoptsLastReadOnly(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	old, err := StatSnapshot(path)
	if err != nil {
		t.Fatal(err)
	}
	time.Sleep(time.Millisecond)
	fresh, err := StatSnapshot(path)
	if err != nil {
		t.Fatal(err)
	}

	cleaned := old.SetClean(fresh)
	if !cleaned.modTime.Equal(old.modTime) || cleaned.size != old.size {
		t.Error("SetClean must keep the receiver's modTime/size")
	}
	if !cleaned.lastRead.Equal(fresh.lastRead) {
		t.Error("SetClean must adopt other's lastRead")
	}
}
