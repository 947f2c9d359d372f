package refs

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// lockRetryDelay and lockWaitLimit bound how long LockFile.Lock will
// busy-wait for a contended lock before giving up, mirroring the
// teacher's acquireRefLock retry loop.
const (
	lockRetryDelay = 5 * time.Millisecond
	lockWaitLimit  = 2 * time.Second
)

// statPollInterval bounds the busy-wait in WaitForStatChange.
const statPollInterval = 1 * time.Millisecond

// LockFile is an advisory, filesystem-level single-writer lock on a
// target path P, implemented as a sibling P.lock file created with
// O_CREATE|O_EXCL semantics. A commit atomically renames P.lock onto P;
// an abandoned or failed lock leaves P untouched.
type LockFile struct {
	target string
	path   string // target + ".lock"

	f    *os.File
	held bool

	retryDelay time.Duration
	waitLimit  time.Duration

	needFSync     bool
	needSnapshot  bool
	commitSnap    FileSnapshot
	haveCommitSnap bool
}

// NewLockFile returns a LockFile for target. Lock must be called before
// Write or Commit.
func NewLockFile(target string) *LockFile {
	return &LockFile{target: target, path: target + ".lock", retryDelay: lockRetryDelay, waitLimit: lockWaitLimit}
}

// SetRetry overrides the default retry interval and wait limit, letting
// a configured refs.Config (§10.3) drive contention behavior.
func (l *LockFile) SetRetry(interval, limit time.Duration) {
	l.retryDelay = interval
	l.waitLimit = limit
}

// SetFSync controls whether Commit calls fsync on the lock file's
// contents before renaming it into place.
func (l *LockFile) SetFSync(v bool) { l.needFSync = v }

// SetNeedSnapshot controls whether Commit captures a FileSnapshot of the
// committed file, retrievable via CommitSnapshot.
func (l *LockFile) SetNeedSnapshot(v bool) { l.needSnapshot = v }

// Lock attempts to create the lock file exclusively, retrying on
// contention until the wait limit (lockWaitLimit unless SetRetry
// changed it) elapses. It returns false (not an error) if another
// writer is continuously holding the lock past the deadline; LockFailed
// conditions other than contention (e.g. permission errors) are
// returned as errors wrapping ErrLockFailed.
func (l *LockFile) Lock() (bool, error) {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return false, fmt.Errorf("lock %s: mkdir: %w", l.path, err)
	}
	deadline := time.Now().Add(l.waitLimit)
	for {
		f, err := os.OpenFile(l.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			l.f = f
			l.held = true
			return true, nil
		}
		if !os.IsExist(err) {
			return false, fmt.Errorf("lock %s: %w: %w", l.path, ErrLockFailed, err)
		}
		if time.Now().After(deadline) {
			return false, nil
		}
		time.Sleep(l.retryDelay)
	}
}

// Write streams bytes into the lock file. It does not affect the
// target until Commit is called.
func (l *LockFile) Write(data []byte) error {
	if !l.held {
		return fmt.Errorf("lock %s: write without holding lock", l.path)
	}
	if _, err := l.f.Write(data); err != nil {
		return fmt.Errorf("lock %s: write: %w", l.path, err)
	}
	return nil
}

// Commit atomically renames the lock file onto the target. It returns
// false (not an error) only when the lock was never successfully
// acquired; I/O failures during sync/close/rename are returned as
// errors and the lock is released.
func (l *LockFile) Commit() (bool, error) {
	if !l.held {
		return false, nil
	}

	if l.needFSync {
		if err := l.f.Sync(); err != nil {
			l.cleanupFailedCommit()
			return false, fmt.Errorf("commit %s: sync: %w", l.path, err)
		}
	}
	if err := l.f.Close(); err != nil {
		l.held = false
		os.Remove(l.path)
		return false, fmt.Errorf("commit %s: close: %w", l.path, err)
	}
	l.f = nil

	if l.needSnapshot {
		snap, err := StatSnapshot(l.path)
		if err == nil {
			l.commitSnap = snap
			l.haveCommitSnap = true
		}
	}

	if err := os.Rename(l.path, l.target); err != nil {
		l.held = false
		os.Remove(l.path)
		return false, fmt.Errorf("commit %s: rename: %w", l.path, err)
	}
	l.held = false
	return true, nil
}

func (l *LockFile) cleanupFailedCommit() {
	if l.f != nil {
		l.f.Close()
		l.f = nil
	}
	os.Remove(l.path)
	l.held = false
}

// CommitSnapshot returns the FileSnapshot captured right after a
// successful Commit, if SetNeedSnapshot(true) was called beforehand.
func (l *LockFile) CommitSnapshot() (FileSnapshot, bool) {
	return l.commitSnap, l.haveCommitSnap
}

// Unlock deletes the lock file without committing it. Safe to call
// whether or not Lock succeeded; always safe to call after Commit.
func (l *LockFile) Unlock() {
	if l.f != nil {
		l.f.Close()
		l.f = nil
	}
	if l.held {
		os.Remove(l.path)
		l.held = false
	}
}

// WaitForStatChange busy-waits, up to the lock's wait limit, until the lock
// file's mtime differs from the target's mtime (as it was before the
// lock was taken). This guards against filesystems with coarse mtime
// resolution reporting a rename as a no-op change to observers that
// poll FileSnapshot.IsModified.
func (l *LockFile) WaitForStatChange(beforeTarget FileSnapshot) {
	deadline := time.Now().Add(l.waitLimit)
	for time.Now().Before(deadline) {
		info, err := os.Stat(l.path)
		if err != nil {
			return
		}
		if beforeTarget.missing || !info.ModTime().Equal(beforeTarget.modTime) {
			return
		}
		time.Sleep(statPollInterval)
	}
}
