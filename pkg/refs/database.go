package refs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/gitrefdb/refdb/pkg/object"
)

// maxSymbolicDepth is the default bound on how many symbolic hops
// resolution will follow before giving up (spec.md §3 invariant 3, §8
// "Symbolic bound"). Database.resolveSymbolic uses the configured
// Config.Resolution.MaxSymbolicDepth, which defaults to this value.
const maxSymbolicDepth = 5

// searchPath is the fixed, ordered list of prefixes tried when
// resolving a short reference name; the first match wins (spec.md
// §4.6).
var searchPath = []string{"", "refs/", "refs/tags/", "refs/heads/", "refs/remotes/"}

// Database is the top-level filesystem-backed reference database
// (spec.md C7): it unifies the loose refs/ tree and the packed-refs
// file into one logical namespace, serves lock-free concurrent reads
// off two atomic caches, and serializes writes through LockFile.
type Database struct {
	root string // repository directory containing HEAD, refs/, packed-refs
	cfg  *Config

	objects *object.Store
	reflog  ReflogWriter

	loose  atomic.Pointer[List]
	packed atomic.Pointer[packedList]

	modCnt             atomic.Int64
	lastNotifiedModCnt atomic.Int64

	listeners []func()
}

// NewDatabase returns a Database rooted at root. objects is consulted
// only by peel; reflog, if non-nil, is driven on every committed
// update. cfg, if nil, is replaced with DefaultConfig.
func NewDatabase(root string, objects *object.Store, reflog ReflogWriter, cfg *Config) *Database {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	d := &Database{root: root, objects: objects, reflog: reflog, cfg: cfg}
	d.loose.Store(emptyList)
	d.packed.Store(emptyPackedList)
	return d
}

// OnChange registers a listener invoked after modCnt advances past a
// previously notified value (spec.md §4.6 "Change notification").
// Listeners run synchronously on whichever goroutine caused the
// transition and must not block; register all listeners before
// concurrent use begins.
func (d *Database) OnChange(fn func()) {
	d.listeners = append(d.listeners, fn)
}

func (d *Database) packedPath() string {
	return filepath.Join(d.root, "packed-refs")
}

// create creates refs/, refs/heads/, refs/tags/, refs/remotes/, and the
// reflog directory structure for a fresh database (spec.md §4.6).
func (d *Database) create() error {
	dirs := []string{
		filepath.Join(d.root, "refs", "heads"),
		filepath.Join(d.root, "refs", "tags"),
		filepath.Join(d.root, "refs", "remotes"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create refs: %w", err)
		}
	}
	if d.reflog != nil {
		if err := d.reflog.create(); err != nil {
			return err
		}
	}
	return nil
}

// refresh invalidates both caches so the next read fully rescans
// (spec.md §4.6).
func (d *Database) refresh() {
	d.loose.Store(emptyList)
	d.packed.Store(emptyPackedList)
}

func (d *Database) bumpModCnt() {
	d.modCnt.Add(1)
	d.maybeNotify()
}

// maybeNotify implements the single-fire change-notification rule: one
// CAS install of lastNotifiedModCnt per distinct transition, and the
// very first 0 → n transition on a fresh database is never dispatched
// as an event (spec.md §4.6, §6).
func (d *Database) maybeNotify() {
	for {
		cur := d.modCnt.Load()
		last := d.lastNotifiedModCnt.Load()
		if cur <= last {
			return
		}
		if !d.lastNotifiedModCnt.CompareAndSwap(last, cur) {
			continue
		}
		if last != 0 {
			for _, fn := range d.listeners {
				fn()
			}
		}
		return
	}
}

// refreshLoose reconciles the loose cache against disk under prefix
// and installs the result via compare-and-set. A losing CAS discards
// its scan result and returns whatever is currently installed, per
// the "fail soft" recovery policy (spec.md §7).
func (d *Database) refreshLoose(prefix string) (*List, error) {
	cur := d.loose.Load()
	res, err := scanLoose(d.root, cur, prefix)
	if err != nil {
		return nil, err
	}
	if !res.changed {
		return cur, nil
	}
	if d.loose.CompareAndSwap(cur, res.list) {
		d.bumpModCnt()
		return res.list, nil
	}
	return d.loose.Load(), nil
}

// refreshPacked re-reads packed-refs iff its snapshot shows it has
// changed, and installs the result via compare-and-set (spec.md §4.6
// "Packed-ref refresh policy").
func (d *Database) refreshPacked() (*packedList, error) {
	cur := d.packed.Load()
	path := d.packedPath()
	if !cur.snap.IsModified(path) {
		return cur, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read packed-refs: %w", err)
		}
		data = nil
	}
	list, err := ParsePackedRefs(data)
	if err != nil {
		return nil, err
	}
	snap, err := StatSnapshot(path)
	if err != nil {
		return nil, fmt.Errorf("stat packed-refs: %w", err)
	}
	next := &packedList{list: list, snap: snap}

	if d.packed.CompareAndSwap(cur, next) {
		d.bumpModCnt()
		return next, nil
	}
	return d.packed.Load(), nil
}

// lookupDirect returns the stored value for name without following a
// symbolic chain. Loose wins over packed (spec.md invariant 4). When
// name falls outside scannedPrefix the loose cache cannot be trusted
// for it, so it is read directly from disk instead (spec.md §4.6
// "Symbolic resolution").
func (d *Database) lookupDirect(name string, loose *List, packedL *packedList, scannedPrefix string) (*Reference, error) {
	if r := loose.Get(name); r != nil {
		return r, nil
	}
	if scannedPrefix == "" || strings.HasPrefix(name, scannedPrefix) {
		if r := packedL.list.Get(name); r != nil {
			return r, nil
		}
		return nil, nil
	}

	path := filepath.Join(d.root, filepath.FromSlash(name))
	ref, _, err := readLooseRefFile(d.root, name, path, nil)
	if err != nil {
		return nil, err
	}
	if ref != nil {
		return ref, nil
	}
	return packedL.list.Get(name), nil
}

// resolveSymbolic follows ref's symbolic chain to its leaf. It returns
// ref unchanged if ref is already direct, the unresolved symbolic ref
// if its target cannot be found, and nil if the chain exceeds
// d.cfg.Resolution.MaxSymbolicDepth (spec.md §3 invariant 3, §4.6).
func (d *Database) resolveSymbolic(ref *Reference, loose *List, packedL *packedList, scannedPrefix string, depth int) (*Reference, error) {
	if !ref.IsSymbolic() {
		return ref, nil
	}
	if depth >= d.cfg.Resolution.MaxSymbolicDepth {
		return nil, nil
	}
	target, err := d.lookupDirect(ref.SymbolicTarget(), loose, packedL, scannedPrefix)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return ref, nil
	}
	return d.resolveSymbolic(target, loose, packedL, scannedPrefix, depth+1)
}

// getRef resolves name through the fixed search path, returning the
// first match as resolveSymbolic leaves it: its leaf, or the unresolved
// symbolic ref if its target is missing. nil, nil means no match
// anywhere on the search path, or a chain past the depth bound.
func (d *Database) getRef(name string) (*Reference, error) {
	loose, err := d.refreshLoose("")
	if err != nil {
		return nil, err
	}
	packedL, err := d.refreshPacked()
	if err != nil {
		return nil, err
	}

	for _, prefix := range searchPath {
		candidate := prefix + name
		raw, err := d.lookupDirect(candidate, loose, packedL, "")
		if err != nil {
			return nil, err
		}
		if raw == nil {
			continue
		}
		return d.resolveSymbolic(raw, loose, packedL, "", 0)
	}
	return nil, nil
}

// getRefs returns the union of packed and loose refs whose names begin
// with prefix, each resolved to its leaf. Broken symbolic refs (leaf
// missing, or chain too deep) are omitted (spec.md §4.6).
func (d *Database) getRefs(prefix string) (map[string]*Reference, error) {
	loose, err := d.refreshLoose(prefix)
	if err != nil {
		return nil, err
	}
	packedL, err := d.refreshPacked()
	if err != nil {
		return nil, err
	}

	out := make(map[string]*Reference)
	resolve := func(r *Reference) error {
		if !strings.HasPrefix(r.Name(), prefix) {
			return nil
		}
		resolved, err := d.resolveSymbolic(r, loose, packedL, prefix, 0)
		if err != nil {
			return err
		}
		if resolved == nil || resolved.IsSymbolic() {
			return nil
		}
		out[r.Name()] = resolved
		return nil
	}

	for _, r := range loose.All() {
		if err := resolve(r); err != nil {
			return nil, err
		}
	}
	for _, r := range packedL.list.All() {
		if loose.Contains(r.Name()) {
			continue // loose wins, whether or not it resolved
		}
		if err := resolve(r); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// getAdditionalRefs returns the subset of the pseudo-ref names that
// currently exist. These names never enter the loose cache (spec.md
// §4.6, §6).
func (d *Database) getAdditionalRefs() []*Reference {
	var out []*Reference
	for _, name := range d.cfg.AdditionalRefs {
		path := filepath.Join(d.root, name)
		ref, _, err := readLooseRefFile(d.root, name, path, nil)
		if err == nil && ref != nil {
			out = append(out, ref)
		}
	}
	return out
}

// isNameConflicting reports whether name is an ancestor path component
// of, or a descendant path under, any existing reference (spec.md
// §4.6, the "no-nesting" invariant).
func (d *Database) isNameConflicting(name string) (bool, error) {
	loose, err := d.refreshLoose("")
	if err != nil {
		return false, err
	}
	packedL, err := d.refreshPacked()
	if err != nil {
		return false, err
	}

	conflicts := func(l *List) bool {
		for _, r := range l.All() {
			n := r.Name()
			if n == name {
				continue
			}
			if strings.HasPrefix(name, n+"/") || strings.HasPrefix(n, name+"/") {
				return true
			}
		}
		return false
	}
	return conflicts(loose) || conflicts(packedL.list), nil
}

// peel resolves ref's peeled (non-tag) target, consulting the object
// graph if necessary, and memoizes the result back into the loose
// cache iff ref is still the cached value at that name (spec.md §4.6).
func (d *Database) peel(ref *Reference) (*Reference, error) {
	if ref.IsSymbolic() {
		return nil, ErrPeelNotSupported
	}
	if ref.IsPeeled() || ref.ObjectID().IsZero() {
		return ref, nil
	}

	isTag, err := d.objects.IsTag(ref.ObjectID())
	if err != nil {
		return nil, fmt.Errorf("peel %s: %w", ref.Name(), err)
	}

	var next *Reference
	if isTag {
		target, err := d.objects.Peel(ref.ObjectID())
		if err != nil {
			return nil, fmt.Errorf("peel %s: %w", ref.Name(), err)
		}
		next = NewPeeledTag(ref.Name(), ref.ObjectID(), target, ref.Storage())
	} else {
		next = NewPeeledNonTag(ref.Name(), ref.ObjectID(), ref.Storage())
	}
	if snap, ok := ref.Snapshot(); ok {
		next = next.withSnapshot(snap)
	}

	cur := d.loose.Load()
	i := cur.Find(ref.Name())
	if i < 0 || cur.GetAt(i) != ref {
		return next, nil
	}
	if d.loose.CompareAndSwap(cur, cur.Set(i, next)) {
		return next, nil
	}
	return next, nil
}
