package refs

import "sort"

// List is an immutable, name-sorted, duplicate-free sequence of
// references. Every mutating operation returns a new List; the receiver
// is left unchanged, so a List can be shared across goroutines and
// cached in an atomic cell without locking.
type List struct {
	refs []*Reference // sorted by Name(), no duplicates
}

// emptyList is the List used as the initial state of a fresh database.
var emptyList = &List{}

// Find returns the index of name if present, or -(insertion point)-1 if
// not, matching the classic binary-search "not found" encoding so
// callers can tell "absent" from "absent at position 0" without a
// second return value.
func (l *List) Find(name string) int {
	if l == nil {
		return -1
	}
	lo, hi := 0, len(l.refs)
	for lo < hi {
		mid := (lo + hi) / 2
		if l.refs[mid].name < name {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo < len(l.refs) && l.refs[lo].name == name {
		return lo
	}
	return -lo - 1
}

// Contains reports whether name is present.
func (l *List) Contains(name string) bool {
	return l.Find(name) >= 0
}

// Get returns the reference named name, or nil if absent.
func (l *List) Get(name string) *Reference {
	i := l.Find(name)
	if i < 0 {
		return nil
	}
	return l.refs[i]
}

// GetAt returns the reference at index i.
func (l *List) GetAt(i int) *Reference {
	return l.refs[i]
}

// Len returns the number of references in the list.
func (l *List) Len() int {
	if l == nil {
		return 0
	}
	return len(l.refs)
}

// All returns the references in sorted order. The caller must not
// mutate the returned slice.
func (l *List) All() []*Reference {
	if l == nil {
		return nil
	}
	return l.refs
}

// Add inserts ref at index i, which must equal -(Find(ref.Name()))-1
// (i.e. ref.Name() must not already be present). Returns a new List.
func (l *List) Add(i int, ref *Reference) *List {
	out := make([]*Reference, len(l.refs)+1)
	copy(out, l.refs[:i])
	out[i] = ref
	copy(out[i+1:], l.refs[i:])
	return &List{refs: out}
}

// Set replaces the reference at index i. Returns a new List.
func (l *List) Set(i int, ref *Reference) *List {
	out := make([]*Reference, len(l.refs))
	copy(out, l.refs)
	out[i] = ref
	return &List{refs: out}
}

// Remove deletes the reference at index i. Returns a new List.
func (l *List) Remove(i int) *List {
	out := make([]*Reference, len(l.refs)-1)
	copy(out, l.refs[:i])
	copy(out[i:], l.refs[i+1:])
	return &List{refs: out}
}

// Put inserts ref, or replaces the existing entry with the same name.
// Returns a new List.
func (l *List) Put(ref *Reference) *List {
	i := l.Find(ref.name)
	if i >= 0 {
		return l.Set(i, ref)
	}
	return l.Add(-i-1, ref)
}

// Builder accumulates references for bulk construction before freezing
// into an immutable List.
type Builder struct {
	refs []*Reference
}

// NewBuilder returns an empty Builder with capacity hinted by size.
func NewBuilder(size int) *Builder {
	return &Builder{refs: make([]*Reference, 0, size)}
}

// Append adds ref without preserving sort order; call Sort before
// ToList if the input wasn't already sorted.
func (b *Builder) Append(ref *Reference) {
	b.refs = append(b.refs, ref)
}

// Len returns the number of references appended so far.
func (b *Builder) Len() int { return len(b.refs) }

// Sort performs a stable sort by name.
func (b *Builder) Sort() {
	sort.SliceStable(b.refs, func(i, j int) bool {
		return b.refs[i].name < b.refs[j].name
	})
}

// ToList freezes the builder into an immutable, sorted List. The
// builder must not be used afterwards.
func (b *Builder) ToList() *List {
	if len(b.refs) == 0 {
		return emptyList
	}
	return &List{refs: b.refs}
}
