package refs

import (
	"testing"

	"github.com/gitrefdb/refdb/pkg/oid"
)

func TestListBranchNamesSortedAndStripped(t *testing.T) {
	db := newTestDatabase(t)
	mustCommitDirect(t, db, "refs/heads/main", oid.Sum("blob", []byte("main")))
	mustCommitDirect(t, db, "refs/heads/alpha", oid.Sum("blob", []byte("alpha")))
	mustCommitDirect(t, db, "refs/tags/v1", oid.Sum("blob", []byte("v1")))

	names, err := db.ListBranchNames()
	if err != nil {
		t.Fatalf("ListBranchNames: %v", err)
	}
	if len(names) != 2 || names[0] != "alpha" || names[1] != "main" {
		t.Errorf("names = %v, want [alpha main]", names)
	}
}

func TestCurrentBranchFromSymbolicHead(t *testing.T) {
	db := newTestDatabase(t)
	mustCommitDirect(t, db, "refs/heads/main", oid.Sum("blob", []byte("main")))
	head := db.NewUpdate("HEAD", false)
	head.SetSymbolicTarget("refs/heads/main")
	if _, err := head.Commit(); err != nil {
		t.Fatal(err)
	}

	branch, err := db.CurrentBranch()
	if err != nil {
		t.Fatalf("CurrentBranch: %v", err)
	}
	if branch != "main" {
		t.Errorf("CurrentBranch = %q, want main", branch)
	}
}

func TestCurrentBranchDetachedHead(t *testing.T) {
	db := newTestDatabase(t)
	head := db.NewUpdate("HEAD", false)
	head.SetNewObjectID(oid.Sum("blob", []byte("detached")))
	if _, err := head.Commit(); err != nil {
		t.Fatal(err)
	}

	branch, err := db.CurrentBranch()
	if err != nil {
		t.Fatalf("CurrentBranch: %v", err)
	}
	if branch != "" {
		t.Errorf("CurrentBranch on a detached HEAD = %q, want empty", branch)
	}
}
