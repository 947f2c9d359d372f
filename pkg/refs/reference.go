// Package refs implements the filesystem-backed reference database of a
// Git-compatible repository: the subsystem that maps reference names
// such as "refs/heads/master" or "HEAD" to object ids, persists them
// atomically to disk, and serves concurrent readers and writers.
package refs

import "github.com/gitrefdb/refdb/pkg/oid"

// Storage records where a Reference's value currently lives. Only New,
// Loose and Packed arise from this package; LoosePacked and Network are
// carried so callers that merge this database's output with another
// source (a packed+loose overlay from a different repo view, or a
// network-advertised ref) have a place to record that provenance.
type Storage int8

const (
	// StorageNew marks a reference that has been constructed in memory
	// but not yet persisted.
	StorageNew Storage = iota
	// StorageLoose marks a reference backed by a file under refs/ (or a
	// top-level pseudo-ref file).
	StorageLoose
	// StoragePacked marks a reference backed by a line in packed-refs.
	StoragePacked
	// StorageLoosePacked marks a reference known from both a loose file
	// and a packed-refs line.
	StorageLoosePacked
	// StorageNetwork marks a reference advertised by a remote peer.
	StorageNetwork
)

func (s Storage) String() string {
	switch s {
	case StorageNew:
		return "new"
	case StorageLoose:
		return "loose"
	case StoragePacked:
		return "packed"
	case StorageLoosePacked:
		return "loose+packed"
	case StorageNetwork:
		return "network"
	default:
		return "unknown"
	}
}

// peelStatus records what is known about a direct reference's peeled
// (non-tag) target.
type peelStatus int8

const (
	// peelUnknown means the reference's peeled target has not been
	// determined; Peel must consult the object graph.
	peelUnknown peelStatus = iota
	// peelIsTag means the reference's own id is a tag, and peeledID
	// holds the non-tag object the tag chain ultimately resolves to.
	peelIsTag
	// peelIsNonTag means the reference's own id is already a non-tag
	// object, so it is its own peel.
	peelIsNonTag
)

// Reference is an immutable, named snapshot of either an object id
// (a "direct" reference) or another reference's name (a "symbolic"
// reference). Values are never mutated in place; updates produce new
// Reference values that replace entries in a List.
type Reference struct {
	name    string
	storage Storage

	symbolic bool
	target   string // symbolic target name; only meaningful when symbolic

	id       oid.ID // object id for a direct reference
	peel     peelStatus
	peeledID oid.ID // valid when peel == peelIsTag or peelIsNonTag

	snap    FileSnapshot // meaningful only when storage == StorageLoose
	hasSnap bool
}

// NewDirect returns an unpeeled direct reference: name bound to id, with
// the peeled target not yet known.
func NewDirect(name string, id oid.ID, storage Storage) *Reference {
	return &Reference{name: name, storage: storage, id: id}
}

// NewPeeledTag returns a direct reference known to be a tag, along with
// the non-tag object its chain ultimately resolves to.
func NewPeeledTag(name string, tagID, peeledID oid.ID, storage Storage) *Reference {
	return &Reference{name: name, storage: storage, id: tagID, peel: peelIsTag, peeledID: peeledID}
}

// NewPeeledNonTag returns a direct reference known not to be a tag; its
// own id is its peel.
func NewPeeledNonTag(name string, id oid.ID, storage Storage) *Reference {
	return &Reference{name: name, storage: storage, id: id, peel: peelIsNonTag, peeledID: id}
}

// NewSymbolic returns a reference that points at another reference by
// name, such as HEAD pointing at refs/heads/main.
func NewSymbolic(name, target string, storage Storage) *Reference {
	return &Reference{name: name, storage: storage, symbolic: true, target: target}
}

// Name returns the reference's full name, e.g. "refs/heads/main".
func (r *Reference) Name() string { return r.name }

// Storage returns where this reference's value currently lives.
func (r *Reference) Storage() Storage { return r.storage }

// IsSymbolic reports whether this reference points at another reference
// by name rather than directly at an object id.
func (r *Reference) IsSymbolic() bool { return r.symbolic }

// SymbolicTarget returns the name this reference points at. It is only
// meaningful when IsSymbolic is true.
func (r *Reference) SymbolicTarget() string { return r.target }

// ObjectID returns the object id a direct reference is bound to. For a
// symbolic reference it returns the zero id; callers that want the
// leaf's id should resolve the chain first (see Database.getRef).
func (r *Reference) ObjectID() oid.ID {
	if r.symbolic {
		return oid.Zero
	}
	return r.id
}

// IsPeeled reports whether this direct reference's peeled target is
// already known, without consulting the object graph.
func (r *Reference) IsPeeled() bool {
	return !r.symbolic && r.peel != peelUnknown
}

// IsTag reports whether this direct reference is known to point at a
// tag object. It is only meaningful when IsPeeled is true.
func (r *Reference) IsTag() bool {
	return !r.symbolic && r.peel == peelIsTag
}

// PeeledObjectID returns the non-tag object this reference's chain
// resolves to, and whether that value is known. It is always known for
// peeledNonTag and peeledTag references; never known for unpeeled direct
// references or symbolic references.
func (r *Reference) PeeledObjectID() (oid.ID, bool) {
	if r.symbolic || r.peel == peelUnknown {
		return oid.Zero, false
	}
	return r.peeledID, true
}

// withStorage returns a copy of r with a different storage tag. Used
// by PackRefs to re-tag loose entries as packed. A copy whose storage
// is not StorageLoose carries no FileSnapshot.
func (r *Reference) withStorage(s Storage) *Reference {
	cp := *r
	cp.storage = s
	if s != StorageLoose {
		cp.snap, cp.hasSnap = FileSnapshot{}, false
	}
	return &cp
}

// Snapshot returns the FileSnapshot of the loose file that produced
// this reference, and whether one is attached. Only loose-ref entries
// carry a snapshot (spec.md §3, "Loose-ref entry").
func (r *Reference) Snapshot() (FileSnapshot, bool) {
	return r.snap, r.hasSnap
}

// withSnapshot returns a copy of r with a FileSnapshot attached, used
// when the loose scanner reads a file.
func (r *Reference) withSnapshot(s FileSnapshot) *Reference {
	cp := *r
	cp.snap = s
	cp.hasSnap = true
	return &cp
}

// withCleanSnapshot attaches fresh, but folds fresh.lastRead forward via
// FileSnapshot.SetClean when r already carries a snapshot. Used on the
// unchanged-content fast path, where fresh was only stat'd to confirm
// nothing changed.
func (r *Reference) withCleanSnapshot(fresh FileSnapshot) *Reference {
	if r.hasSnap {
		fresh = r.snap.SetClean(fresh)
	}
	return r.withSnapshot(fresh)
}

// Equal reports whether r and other encode the same reference value,
// ignoring the attached FileSnapshot (which changes on every re-stat
// regardless of content). Used by the loose scanner to tell a genuine
// value change from a pointer reallocated by withSnapshot.
func (r *Reference) Equal(other *Reference) bool {
	if r == other {
		return true
	}
	if r == nil || other == nil {
		return false
	}
	if r.name != other.name || r.storage != other.storage || r.symbolic != other.symbolic {
		return false
	}
	if r.symbolic {
		return r.target == other.target
	}
	if r.id != other.id || r.peel != other.peel {
		return false
	}
	if r.peel != peelUnknown && r.peeledID != other.peeledID {
		return false
	}
	return true
}
