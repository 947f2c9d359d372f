package refs

import (
	"os"
	"time"
)

// FileSnapshot is a cheap proxy for "did this file change under me?",
// captured at the moment a file was read. Comparing a fresh os.Stat
// against a FileSnapshot avoids re-reading (and re-parsing) file content
// on every cache lookup.
type FileSnapshot struct {
	modTime  time.Time
	size     int64
	lastRead time.Time
	missing  bool // true if the file did not exist when snapshotted
}

// missingSnapshot is the MISSING sentinel used for packed-refs when the
// file does not exist.
var missingSnapshot = FileSnapshot{missing: true}

// StatSnapshot stats path and returns the resulting FileSnapshot. A
// missing file yields a MISSING snapshot, not an error.
func StatSnapshot(path string) (FileSnapshot, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return missingSnapshot, nil
		}
		return FileSnapshot{}, err
	}
	return FileSnapshot{
		modTime:  info.ModTime(),
		size:     info.Size(),
		lastRead: time.Now(),
	}, nil
}

// IsMissing reports whether the snapshotted file did not exist.
func (s FileSnapshot) IsMissing() bool { return s.missing }

// IsModified re-stats path and reports whether lastModified or size
// differ from what was captured. A snapshot that was MISSING is
// considered modified iff the file now exists (and vice versa).
func (s FileSnapshot) IsModified(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return !s.missing
	}
	if s.missing {
		return true
	}
	return !info.ModTime().Equal(s.modTime) || info.Size() != s.size
}

// SetClean returns a copy of s that adopts other's lastRead time. Used
// when a fresh read's content compared equal to what s already
// represents: the file's mtime may have moved (e.g. a no-op rewrite) but
// since the bytes didn't change there's no need to track the new mtime,
// only to note that we looked more recently.
func (s FileSnapshot) SetClean(other FileSnapshot) FileSnapshot {
	s.lastRead = other.lastRead
	return s
}

// Equal reports whether two snapshots describe the same modTime/size
// pair, ignoring lastRead. Two MISSING snapshots are equal; a MISSING
// snapshot never equals one of an existing file.
func (s FileSnapshot) Equal(other FileSnapshot) bool {
	if s.missing != other.missing {
		return false
	}
	if s.missing {
		return true
	}
	return s.modTime.Equal(other.modTime) && s.size == other.size
}
