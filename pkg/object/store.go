// Package object implements a minimal loose-object store: just enough
// of Git's object layer for the reference database's peel operation to
// tell a tag from everything else and follow a tag chain to its target.
// Pack-file object storage is out of scope (spec.md §1 Non-goals); this
// store only ever reads and writes loose objects.
package object

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gitrefdb/refdb/pkg/oid"
)

// Store is a content-addressed loose object store with Git's
// two-character fan-out directory layout: objects/ab/cdef0123...
type Store struct {
	root string
}

// NewStore creates a Store rooted at the given .git-style directory. The
// objects/ subdirectory is created lazily on first write.
func NewStore(root string) *Store {
	return &Store{root: root}
}

func (s *Store) objectPath(id oid.ID) string {
	hex := id.String()
	return filepath.Join(s.root, "objects", hex[:2], hex[2:])
}

// Has reports whether the store contains an object with the given id.
func (s *Store) Has(id oid.ID) bool {
	_, err := os.Stat(s.objectPath(id))
	return err == nil
}

// Write stores an object and returns its id. The on-disk format is
// "type len\x00content", the same envelope oid.Sum hashes. Writes
// are atomic: data is written to a temp file and then renamed into
// place, mirroring the lock-file commit protocol used for refs.
func (s *Store) Write(objType Type, data []byte) (oid.ID, error) {
	id := oid.Sum(string(objType), data)
	if s.Has(id) {
		return id, nil
	}

	dir := filepath.Join(s.root, "objects", id.String()[:2])
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return oid.Zero, fmt.Errorf("object write mkdir: %w", err)
	}

	envelope := fmt.Sprintf("%s %d\x00", objType, len(data))
	raw := append([]byte(envelope), data...)

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return oid.Zero, fmt.Errorf("object write tmpfile: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return oid.Zero, fmt.Errorf("object write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return oid.Zero, fmt.Errorf("object write close: %w", err)
	}

	if err := os.Rename(tmpName, s.objectPath(id)); err != nil {
		os.Remove(tmpName)
		return oid.Zero, fmt.Errorf("object write rename: %w", err)
	}
	return id, nil
}

// Read retrieves an object by id, returning its type and raw content.
func (s *Store) Read(id oid.ID) (Type, []byte, error) {
	raw, err := os.ReadFile(s.objectPath(id))
	if err != nil {
		return "", nil, fmt.Errorf("object read %s: %w", id, err)
	}

	nulIdx := bytes.IndexByte(raw, 0)
	if nulIdx < 0 {
		return "", nil, fmt.Errorf("object read %s: invalid format (no NUL)", id)
	}
	header := string(raw[:nulIdx])
	content := raw[nulIdx+1:]

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 {
		return "", nil, fmt.Errorf("object read %s: invalid header %q", id, header)
	}
	objType := Type(parts[0])
	length, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", nil, fmt.Errorf("object read %s: invalid length %q: %w", id, parts[1], err)
	}
	if len(content) != length {
		return "", nil, fmt.Errorf("object read %s: length mismatch (header=%d, actual=%d)", id, length, len(content))
	}
	return objType, content, nil
}

// WriteTag serializes and stores a Tag.
func (s *Store) WriteTag(t *Tag) (oid.ID, error) {
	return s.Write(TypeTag, MarshalTag(t))
}

// ReadTag reads and deserializes a Tag. It fails if the object exists
// but is not of type tag.
func (s *Store) ReadTag(id oid.ID) (*Tag, error) {
	objType, data, err := s.Read(id)
	if err != nil {
		return nil, err
	}
	if objType != TypeTag {
		return nil, fmt.Errorf("object %s: expected tag, got %s", id, objType)
	}
	return UnmarshalTag(data)
}

// Type returns the type of an object without decoding its body.
func (s *Store) Type(id oid.ID) (Type, error) {
	objType, _, err := s.Read(id)
	return objType, err
}
