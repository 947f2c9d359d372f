package refs

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
)

// PackRefs folds every direct loose reference (HEAD excluded, since it
// is always meant to stay loose) into packed-refs and removes the now
// redundant loose files, exercising the packed-refs writer (spec.md
// §4.5) the way a repository's periodic housekeeping would. Symbolic
// loose refs are left untouched; packed-refs has no representation for
// them.
func (d *Database) PackRefs() error {
	loose, err := d.refreshLoose("")
	if err != nil {
		return err
	}

	lock := NewLockFile(d.packedPath())
	lock.SetRetry(d.cfg.retryInterval(), d.cfg.timeout())
	ok, err := lock.Lock()
	if err != nil {
		return fmt.Errorf("pack-refs: %w", err)
	}
	if !ok {
		return fmt.Errorf("pack-refs: %w", ErrLockFailed)
	}
	committed := false
	defer func() {
		if !committed {
			lock.Unlock()
		}
	}()

	packedL, err := d.refreshPacked()
	if err != nil {
		return err
	}

	merged := packedL.list
	var toRemove []*Reference
	for _, r := range loose.All() {
		if r.Name() == "HEAD" || r.IsSymbolic() {
			continue
		}
		merged = merged.Put(r.withStorage(StoragePacked))
		toRemove = append(toRemove, r)
	}
	if len(toRemove) == 0 {
		lock.Unlock()
		return nil
	}

	var buf bytes.Buffer
	if err := WritePackedRefs(&buf, merged); err != nil {
		return fmt.Errorf("pack-refs: %w", err)
	}
	if err := lock.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("pack-refs: %w: %w", ErrWriteFailed, err)
	}
	lock.SetFSync(d.cfg.Lock.FSync)
	lock.SetNeedSnapshot(true)
	ok, err = lock.Commit()
	if err != nil {
		return fmt.Errorf("pack-refs: %w: %w", ErrWriteFailed, err)
	}
	if !ok {
		return fmt.Errorf("pack-refs: %w", ErrLockFailed)
	}
	committed = true

	next := &packedList{list: merged}
	if snap, has := lock.CommitSnapshot(); has {
		next.snap = snap
	}
	d.packed.CompareAndSwap(packedL, next)

	for _, r := range toRemove {
		path := filepath.Join(d.root, filepath.FromSlash(r.Name()))
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("pack-refs: remove %s: %w", r.Name(), err)
		}
		for {
			cur := d.loose.Load()
			i := cur.Find(r.Name())
			if i < 0 {
				break
			}
			if d.loose.CompareAndSwap(cur, cur.Remove(i)) {
				break
			}
		}
		pruneEmptyParents(d.root, r.Name())
	}
	d.bumpModCnt()
	return nil
}
