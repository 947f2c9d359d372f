package refs

// This file is the exported surface over Database's internal contract
// methods, named for Go callers the way the teacher names its own
// Repo methods (PascalCase, one line of doc each). The lowercase
// methods in database.go and update.go keep the names spec.md uses
// for the C7 contract; these thin wrappers are what other packages —
// the CLI, the ls-remote-style transport collaborator, tests — import.

// Create creates refs/, refs/heads/, refs/tags/, refs/remotes/, and
// the reflog directory structure for a fresh database.
func (d *Database) Create() error { return d.create() }

// Refresh invalidates both caches so the next read fully rescans.
func (d *Database) Refresh() { d.refresh() }

// GetRef resolves name through the fixed search path and returns the
// first match's resolved leaf. A symbolic match whose target does not
// exist is returned unresolved; nil is returned if no match exists on
// the search path or the match's chain exceeds the depth bound.
func (d *Database) GetRef(name string) (*Reference, error) { return d.getRef(name) }

// GetRefs returns the union of packed and loose refs whose names
// begin with prefix, each resolved to its leaf. This is the only
// database method a transport-facing collaborator (e.g. an
// ls-remote-style command) is permitted to call.
func (d *Database) GetRefs(prefix string) (map[string]*Reference, error) { return d.getRefs(prefix) }

// GetAdditionalRefs returns the subset of the pseudo-ref names
// (MERGE_HEAD, FETCH_HEAD, ORIG_HEAD, CHERRY_PICK_HEAD) that currently
// exist.
func (d *Database) GetAdditionalRefs() []*Reference { return d.getAdditionalRefs() }

// IsNameConflicting reports whether name is an ancestor path
// component of, or a descendant path under, any existing reference.
func (d *Database) IsNameConflicting(name string) (bool, error) { return d.isNameConflicting(name) }

// Peel resolves ref's peeled (non-tag) target.
func (d *Database) Peel(ref *Reference) (*Reference, error) { return d.peel(ref) }

// NewUpdate constructs an update handle for name.
func (d *Database) NewUpdate(name string, detach bool) *RefUpdate { return d.newUpdate(name, detach) }

// NewRename constructs a rename operation from one name to another.
func (d *Database) NewRename(from, to string) *RefRename { return d.newRename(from, to) }

// Delete removes the reference named by u's target name.
func (d *Database) Delete(u *RefUpdate) error { return d.delete(u) }
