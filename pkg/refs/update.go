package refs

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gitrefdb/refdb/pkg/oid"
)

// RefUpdate is a handle for a staged single-reference mutation,
// constructed by Database.newUpdate and committed with Commit (spec.md
// §4.6).
type RefUpdate struct {
	db     *Database
	name   string
	detach bool

	haveExpectedOld bool
	expectedOld     oid.ID

	setSymbolic bool
	newID       oid.ID
	newTarget   string

	message string
	deref   bool
}

// newUpdate constructs an update handle for name. If detach is true and
// the ref currently at name is symbolic, commit takes the symbolic
// ref's current leaf object id as the ref's old value: the value a
// SetExpectedOldObjectID check compares against and the old id logged
// to the reflog, since the on-disk value being replaced is not itself
// an object id (spec.md §4.6).
func (d *Database) newUpdate(name string, detach bool) *RefUpdate {
	return &RefUpdate{db: d, name: name, detach: detach}
}

// SetExpectedOldObjectID requests a compare-and-swap: Commit fails with
// ErrCASMismatch unless the ref's current object id equals old.
func (u *RefUpdate) SetExpectedOldObjectID(old oid.ID) {
	u.haveExpectedOld = true
	u.expectedOld = old
}

// SetNewObjectID stages a direct update to id.
func (u *RefUpdate) SetNewObjectID(id oid.ID) {
	u.newID = id
	u.setSymbolic = false
}

// SetSymbolicTarget stages a symbolic update to target.
func (u *RefUpdate) SetSymbolicTarget(target string) {
	u.newTarget = target
	u.setSymbolic = true
}

// SetMessage attaches the reflog message and deref flag that will be
// recorded when this update commits.
func (u *RefUpdate) SetMessage(msg string, deref bool) {
	u.message = msg
	u.deref = deref
}

// Commit writes the staged value to disk under a LockFile, updates the
// loose cache, and appends a reflog entry. A successful write with a
// failed reflog append returns the new Reference alongside a
// *ReflogAppendError (spec.md §1, §7).
func (u *RefUpdate) Commit() (*Reference, error) {
	return u.db.commitUpdate(u)
}

func (d *Database) commitUpdate(u *RefUpdate) (*Reference, error) {
	if strings.Contains(u.name, "..") || strings.HasPrefix(u.name, "/") {
		return nil, fmt.Errorf("update ref %q: invalid name", u.name)
	}
	conflict, err := d.isNameConflicting(u.name)
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, fmt.Errorf("update ref %q: %w", u.name, ErrNameConflict)
	}

	path := filepath.Join(d.root, filepath.FromSlash(u.name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("update ref %q: mkdir: %w", u.name, err)
	}

	lock := NewLockFile(path)
	lock.SetRetry(d.cfg.retryInterval(), d.cfg.timeout())
	ok, err := lock.Lock()
	if err != nil {
		return nil, fmt.Errorf("update ref %q: %w", u.name, err)
	}
	if !ok {
		return nil, fmt.Errorf("update ref %q: %w", u.name, ErrLockFailed)
	}
	committed := false
	defer func() {
		if !committed {
			lock.Unlock()
		}
	}()

	oldRef, _, err := readLooseRefFile(d.root, u.name, path, nil)
	if err != nil {
		return nil, err
	}
	var oldID oid.ID
	switch {
	case oldRef == nil:
		// leaves oldID at the zero value: creating a new ref.
	case !oldRef.IsSymbolic():
		oldID = oldRef.ObjectID()
	case u.detach:
		if leaf, err := d.resolveSymbolic(oldRef, d.loose.Load(), d.packed.Load(), "", 0); err == nil && leaf != nil && !leaf.IsSymbolic() {
			oldID = leaf.ObjectID()
		}
	}
	if u.haveExpectedOld && oldID != u.expectedOld {
		return nil, fmt.Errorf("update ref %q: %w (expected %s, found %s)", u.name, ErrCASMismatch, u.expectedOld, oldID)
	}

	var content string
	var next *Reference
	if u.setSymbolic {
		content = symbolicRefPrefix + u.newTarget + "\n"
		next = NewSymbolic(u.name, u.newTarget, StorageLoose)
	} else {
		content = u.newID.String() + "\n"
		next = NewDirect(u.name, u.newID, StorageLoose)
	}

	if err := lock.Write([]byte(content)); err != nil {
		return nil, fmt.Errorf("update ref %q: %w: %w", u.name, ErrWriteFailed, err)
	}
	lock.SetFSync(d.cfg.Lock.FSync)
	lock.SetNeedSnapshot(true)
	ok, err = lock.Commit()
	if err != nil {
		return nil, fmt.Errorf("update ref %q: %w: %w", u.name, ErrWriteFailed, err)
	}
	if !ok {
		return nil, fmt.Errorf("update ref %q: %w", u.name, ErrLockFailed)
	}
	committed = true

	if snap, has := lock.CommitSnapshot(); has {
		next = next.withSnapshot(snap)
	}

	d.installLooseRef(next)
	d.bumpModCnt()

	if d.reflog != nil {
		newForLog := u.newID
		if u.setSymbolic {
			newForLog = oid.Zero
		}
		if err := d.reflog.log(u.name, oldID, newForLog, u.message, u.deref); err != nil {
			return next, &ReflogAppendError{Ref: u.name, OldID: oldID.String(), NewID: newForLog.String(), Err: err}
		}
	}

	return next, nil
}

// installLooseRef inserts or replaces ref in the loose cache,
// retrying on a lost compare-and-set against a concurrently refreshed
// list.
func (d *Database) installLooseRef(ref *Reference) {
	for {
		cur := d.loose.Load()
		if d.loose.CompareAndSwap(cur, cur.Put(ref)) {
			return
		}
	}
}

// RefRename is a handle for a staged rename, implemented as a write to
// the new name followed by a delete of the old one (spec.md §4.6).
type RefRename struct {
	db   *Database
	from string
	to   string
}

// newRename constructs a rename operation from one name to another.
func (d *Database) newRename(from, to string) *RefRename {
	return &RefRename{db: d, from: from, to: to}
}

// Commit performs the rename and returns the new Reference at the
// destination name.
func (rn *RefRename) Commit() (*Reference, error) {
	return rn.db.commitRename(rn)
}

func (d *Database) commitRename(rn *RefRename) (*Reference, error) {
	path := filepath.Join(d.root, filepath.FromSlash(rn.from))
	oldRef, _, err := readLooseRefFile(d.root, rn.from, path, nil)
	if err != nil {
		return nil, err
	}
	if oldRef == nil {
		if r := d.packed.Load().list.Get(rn.from); r != nil {
			oldRef = r
		}
	}
	if oldRef == nil {
		return nil, fmt.Errorf("rename ref %q: %w", rn.from, ErrNotFound)
	}

	toUpdate := d.newUpdate(rn.to, false)
	if oldRef.IsSymbolic() {
		toUpdate.SetSymbolicTarget(oldRef.SymbolicTarget())
	} else {
		toUpdate.SetNewObjectID(oldRef.ObjectID())
	}
	toUpdate.SetMessage(fmt.Sprintf("renamed %s to %s", rn.from, rn.to), false)
	next, err := toUpdate.Commit()
	if err != nil {
		return nil, fmt.Errorf("rename ref %q to %q: %w", rn.from, rn.to, err)
	}

	if err := d.delete(d.newUpdate(rn.from, false)); err != nil {
		return next, fmt.Errorf("rename ref %q to %q: delete old: %w", rn.from, rn.to, err)
	}
	return next, nil
}

// delete removes the ref named by u.name from packed-refs (under
// lock) if present there, from the loose cache via compare-and-set,
// and from disk if a loose file existed, then prunes now-empty parent
// directories (spec.md §4.6).
func (d *Database) delete(u *RefUpdate) error {
	name := u.name

	if err := d.removeFromPacked(name); err != nil {
		return err
	}

	existed := false
	for {
		cur := d.loose.Load()
		i := cur.Find(name)
		if i < 0 {
			break
		}
		existed = true
		if d.loose.CompareAndSwap(cur, cur.Remove(i)) {
			break
		}
	}

	path := filepath.Join(d.root, filepath.FromSlash(name))
	if err := os.Remove(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("delete ref %q: %w", name, err)
		}
	} else {
		existed = true
	}

	pruneEmptyParents(d.root, name)

	if existed {
		d.bumpModCnt()
		if d.reflog != nil {
			_ = d.reflog.log(name, oid.Zero, oid.Zero, "delete", false)
		}
	}
	return nil
}

func (d *Database) removeFromPacked(name string) error {
	cur := d.packed.Load()
	if !cur.list.Contains(name) {
		fresh, err := d.refreshPacked()
		if err != nil {
			return err
		}
		if !fresh.list.Contains(name) {
			return nil
		}
		cur = fresh
	}

	lock := NewLockFile(d.packedPath())
	lock.SetRetry(d.cfg.retryInterval(), d.cfg.timeout())
	ok, err := lock.Lock()
	if err != nil {
		return fmt.Errorf("delete ref %q: %w", name, err)
	}
	if !ok {
		return fmt.Errorf("delete ref %q: %w", name, ErrLockFailed)
	}
	committed := false
	defer func() {
		if !committed {
			lock.Unlock()
		}
	}()

	i := cur.list.Find(name)
	if i < 0 {
		lock.Unlock()
		return nil
	}
	updatedList := cur.list.Remove(i)

	var buf bytes.Buffer
	if err := WritePackedRefs(&buf, updatedList); err != nil {
		return fmt.Errorf("delete ref %q: %w", name, err)
	}
	if err := lock.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("delete ref %q: %w: %w", name, ErrWriteFailed, err)
	}
	lock.SetFSync(d.cfg.Lock.FSync)
	lock.SetNeedSnapshot(true)
	ok, err = lock.Commit()
	if err != nil {
		return fmt.Errorf("delete ref %q: %w: %w", name, ErrWriteFailed, err)
	}
	if !ok {
		return fmt.Errorf("delete ref %q: %w", name, ErrLockFailed)
	}
	committed = true

	next := &packedList{list: updatedList}
	if snap, has := lock.CommitSnapshot(); has {
		next.snap = snap
	}
	// A lost CAS here means a concurrent refreshPacked already installed
	// an equivalent-or-fresher view; per spec.md §7 recovery policy the
	// loser's result is simply discarded.
	d.packed.CompareAndSwap(cur, next)
	return nil
}

// pruneEmptyParents removes now-empty directories above a just-deleted
// loose ref file, stopping before the refs/<category> directory
// (refs/heads, refs/tags, refs/remotes) and refs/ itself — spec.md
// §4.6's "prune ... up to levels_in(name) - 2 levels", read as never
// pruning those two structural levels.
func pruneEmptyParents(root, name string) {
	parts := strings.Split(name, "/")
	maxPrune := len(parts) - 3
	if maxPrune <= 0 {
		return
	}
	dir := filepath.Dir(filepath.Join(root, filepath.FromSlash(name)))
	for i := 0; i < maxPrune; i++ {
		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			return
		}
		if err := os.Remove(dir); err != nil {
			return
		}
		dir = filepath.Dir(dir)
	}
}
