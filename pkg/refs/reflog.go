package refs

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gitrefdb/refdb/pkg/oid"
)

// zeroHex is the reflog's sentinel for "no object id", written for a
// ref's creation (old side) or deletion (new side).
const zeroHex = "0000000000000000000000000000000000000000"

// ReflogWriter is the narrow interface the reference database drives
// on every committed update (spec.md §6, "Collaborator interfaces").
// Its failure never rolls back a ref write. After a committed update
// it surfaces as a ReflogAppendError (spec.md §1, §7); the entry
// written for a delete is best-effort and its failure is not reported.
type ReflogWriter interface {
	// log appends one entry for name, recording the transition from old
	// to next. deref indicates the update followed a symbolic ref to its
	// leaf before writing (reflog entries are always attributed to the
	// name actually written to, never to a symbolic alias).
	log(name string, old, next oid.ID, msg string, deref bool) error
	// logFor returns the path of the log file for name, creating parent
	// directories as needed.
	logFor(name string) (string, error)
	// create initializes the reflog directory structure for a fresh
	// database.
	create() error
}

// FileReflogWriter is a ReflogWriter backed by one append-only text file
// per reference, under <root>/logs/, in the teacher's own format:
// "<old> <new> <unix-seconds> <message>\n" (pkg/repo/reflog.go).
type FileReflogWriter struct {
	root string
}

// NewFileReflogWriter returns a ReflogWriter rooted at root (the
// repository directory containing HEAD and refs/).
func NewFileReflogWriter(root string) *FileReflogWriter {
	return &FileReflogWriter{root: root}
}

func (w *FileReflogWriter) logFor(name string) (string, error) {
	path := filepath.Join(w.root, "logs", filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("reflog mkdir: %w", err)
	}
	return path, nil
}

func (w *FileReflogWriter) create() error {
	dirs := []string{
		filepath.Join(w.root, "logs", "refs", "heads"),
		filepath.Join(w.root, "logs", "refs", "tags"),
		filepath.Join(w.root, "logs", "refs", "remotes"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return fmt.Errorf("reflog create: %w", err)
		}
	}
	return nil
}

func (w *FileReflogWriter) log(name string, old, next oid.ID, msg string, deref bool) error {
	path, err := w.logFor(name)
	if err != nil {
		return err
	}

	oldHex := zeroHex
	if !old.IsZero() {
		oldHex = old.String()
	}
	newHex := zeroHex
	if !next.IsZero() {
		newHex = next.String()
	}
	if strings.TrimSpace(msg) == "" {
		msg = "update"
	}
	if deref {
		msg = "deref: " + msg
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("reflog open: %w", err)
	}
	defer f.Close()

	line := fmt.Sprintf("%s %s %d %s\n", oldHex, newHex, time.Now().Unix(), msg)
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("reflog write: %w", err)
	}
	return nil
}

// ReflogEntry is one parsed line of a reference's reflog.
type ReflogEntry struct {
	Ref       string
	OldID     oid.ID
	NewID     oid.ID
	Timestamp int64
	Message   string
}

// ReadReflog reads name's reflog, newest entry first. limit <= 0 means
// no limit. A reference with no reflog yields (nil, nil).
func (w *FileReflogWriter) ReadReflog(name string, limit int) ([]ReflogEntry, error) {
	path := filepath.Join(w.root, "logs", filepath.FromSlash(name))
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read reflog %s: %w", name, err)
	}
	defer f.Close()

	var entries []ReflogEntry
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, " ", 4)
		if len(parts) < 4 {
			continue
		}
		oldID, err := oid.FromHex(parts[0])
		if err != nil {
			continue
		}
		newID, err := oid.FromHex(parts[1])
		if err != nil {
			continue
		}
		ts, err := strconv.ParseInt(parts[2], 10, 64)
		if err != nil {
			continue
		}
		entries = append(entries, ReflogEntry{Ref: name, OldID: oldID, NewID: newID, Timestamp: ts, Message: parts[3]})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read reflog %s: %w", name, err)
	}

	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}
