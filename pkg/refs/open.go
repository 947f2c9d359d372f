package refs

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gitrefdb/refdb/pkg/object"
)

// Init creates a fresh reference database at gitDir (a directory such
// as ".git") and returns it ready for use. It fails if gitDir already
// exists, mirroring the teacher's Init/.got guard.
func Init(gitDir string) (*Database, error) {
	if _, err := os.Stat(gitDir); err == nil {
		return nil, fmt.Errorf("init: %s already exists", gitDir)
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("init: stat %s: %w", gitDir, err)
	}
	if err := os.MkdirAll(gitDir, 0o755); err != nil {
		return nil, fmt.Errorf("init: mkdir %s: %w", gitDir, err)
	}

	cfg, err := LoadConfig(filepath.Join(gitDir, "refdb.toml"))
	if err != nil {
		return nil, err
	}
	reflog := NewFileReflogWriter(gitDir)
	db := NewDatabase(gitDir, object.NewStore(gitDir), reflog, cfg)
	if err := db.Create(); err != nil {
		return nil, err
	}

	head := db.NewUpdate("HEAD", false)
	head.SetSymbolicTarget("refs/heads/main")
	head.SetMessage("init", false)
	if _, err := head.Commit(); err != nil {
		return nil, fmt.Errorf("init: write HEAD: %w", err)
	}

	return db, nil
}

// Open opens the reference database rooted at gitDir. It fails if
// gitDir does not look like a git directory (no HEAD file).
func Open(gitDir string) (*Database, error) {
	if _, err := os.Stat(filepath.Join(gitDir, "HEAD")); err != nil {
		return nil, fmt.Errorf("open %s: %w", gitDir, err)
	}
	cfg, err := LoadConfig(filepath.Join(gitDir, "refdb.toml"))
	if err != nil {
		return nil, err
	}
	reflog := NewFileReflogWriter(gitDir)
	return NewDatabase(gitDir, object.NewStore(gitDir), reflog, cfg), nil
}

// Discover searches upward from startPath for a git directory and opens
// the reference database there, mirroring the teacher's upward-search
// Open. At each level it accepts the directory itself if it contains a
// HEAD file, otherwise its ".git" subdirectory if that contains one.
func Discover(startPath string) (*Database, error) {
	abs, err := filepath.Abs(startPath)
	if err != nil {
		return nil, fmt.Errorf("discover: %w", err)
	}
	cur := abs
	for {
		if _, err := os.Stat(filepath.Join(cur, "HEAD")); err == nil {
			return Open(cur)
		}
		if _, err := os.Stat(filepath.Join(cur, ".git", "HEAD")); err == nil {
			return Open(filepath.Join(cur, ".git"))
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return nil, fmt.Errorf("discover: no git directory found above %s", startPath)
		}
		cur = parent
	}
}
