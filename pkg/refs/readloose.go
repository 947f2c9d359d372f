package refs

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/gitrefdb/refdb/pkg/oid"
)

// maxLooseRefSize bounds how much of a loose-ref file is read. A
// well-formed loose ref is always far shorter than this; it exists so
// a read never pulls an unbounded amount of a misidentified file into
// memory (spec.md §4.7, §6).
const maxLooseRefSize = 4096

const symbolicRefPrefix = "ref: "

// readLooseRefFile reads one loose-ref file at path (named name) under
// root and returns the Reference it encodes. A nil Reference with a
// nil error covers every "no value" case: the file does not exist, is
// empty, or read exactly maxLooseRefSize bytes while starting with
// "ref: " (which this package treats as possibly truncated rather than
// risk resolving to the wrong target, per spec.md §9's open question —
// the ambiguity with a merely long malformed symbolic ref is kept and
// only surfaced as a debug log line). cached, if non-nil, is the
// previous entry known for this name; when the file's content matches
// what cached already represents, a copy of cached is returned instead
// of a newly parsed Reference. The copy keeps cached's snapshot
// modification time and size and adopts the fresh stat's lastRead
// (Reference.withCleanSnapshot).
func readLooseRefFile(root, name, path string, cached *Reference) (*Reference, bool, error) {
	_ = root // name is already the full ref name; root is not needed to read it

	snap, err := StatSnapshot(path)
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", path, err)
	}
	if snap.IsMissing() {
		return nil, false, nil
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read %s: %w", path, err)
	}
	data, err := io.ReadAll(io.LimitReader(f, maxLooseRefSize))
	f.Close()
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", path, err)
	}

	if len(data) == 0 {
		return nil, false, nil
	}
	if len(data) == maxLooseRefSize && bytes.HasPrefix(data, []byte(symbolicRefPrefix)) {
		slog.Debug("loose ref at read-size cap, treating as no value", "path", path, "size", len(data))
		return nil, false, nil
	}

	content := strings.TrimRight(string(data), " \t\r\n")
	if content == "" {
		return nil, false, newMalformed(path, data, fmt.Errorf("blank loose ref"))
	}

	if strings.HasPrefix(content, symbolicRefPrefix) {
		target := strings.TrimSpace(strings.TrimPrefix(content, symbolicRefPrefix))
		if target == "" {
			return nil, false, newMalformed(path, data, fmt.Errorf("symbolic ref with no target"))
		}
		if cached != nil && cached.symbolic && cached.target == target {
			return cached.withCleanSnapshot(snap), true, nil
		}
		return NewSymbolic(name, target, StorageLoose).withSnapshot(snap), true, nil
	}

	id, err := oid.FromHex(content)
	if err != nil {
		return nil, false, newMalformed(path, data, fmt.Errorf("not a symbolic ref and not a valid object id: %w", err))
	}

	if cached != nil && !cached.symbolic && cached.id == id {
		return cached.withCleanSnapshot(snap), false, nil
	}
	return NewDirect(name, id, StorageLoose).withSnapshot(snap), false, nil
}
