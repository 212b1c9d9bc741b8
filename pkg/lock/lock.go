// Package lock serialises writers of one container with an advisory lock
// on a sidecar file next to it.
//
// The lock has two layers. An in-process name table stops goroutines of
// the same process from sharing a lock (fcntl locks are per process), and
// an fcntl write lock on <container>.lock keeps other processes out. The
// sidecar exists because fcntl locks are dropped when any descriptor of
// the locked file is closed, which the HDF5 library does freely.
package lock

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/arthur-debert/solidhdf5/pkg/errors"
	"github.com/arthur-debert/solidhdf5/pkg/paths"
)

// DefaultPoll is the retry interval used when none is given
const DefaultPoll = 50 * time.Millisecond

var (
	mu    sync.Mutex
	names = make(map[string]bool)
)

// Lock is a held container lock
type Lock struct {
	name string
	f    *os.File
}

// Acquire locks the container at path, retrying every poll until timeout
// passes or ctx is done. A zero timeout tries once. Relative and absolute
// spellings of one path share a lock.
func Acquire(ctx context.Context, path string, timeout, poll time.Duration) (*Lock, error) {
	if poll <= 0 {
		poll = DefaultPoll
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrContainerInaccessible, "cannot resolve %s", path)
	}
	name := paths.LockPath(abs)
	deadline := time.Now().Add(timeout)

	for {
		l, busy, err := try(name)
		if err != nil {
			return nil, err
		}
		if !busy {
			return l, nil
		}

		if !time.Now().Before(deadline) {
			return nil, errors.Newf(errors.ErrLockTimeout, "timed out after %s waiting for %s", timeout, name).
				WithDetail("lock", name)
		}

		t := time.NewTimer(poll)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, errors.Wrapf(ctx.Err(), errors.ErrLockTimeout, "gave up waiting for %s", name)
		case <-t.C:
		}
	}
}

// try makes one attempt. busy reports that someone else holds the lock.
func try(name string) (l *Lock, busy bool, err error) {
	mu.Lock()
	defer mu.Unlock()

	if names[name] {
		return nil, true, nil
	}

	f, err := os.OpenFile(name, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, false, errors.Wrapf(err, errors.ErrContainerInaccessible, "cannot open lock file %s", name)
	}

	held, err := lockFile(f)
	if err != nil {
		_ = f.Close()
		return nil, false, errors.Wrapf(err, errors.ErrInternal, "cannot lock %s", name)
	}
	if !held {
		_ = f.Close()
		return nil, true, nil
	}

	names[name] = true
	return &Lock{name: name, f: f}, false, nil
}

// Release drops the lock. Releasing twice is a no-op.
func (l *Lock) Release() error {
	mu.Lock()
	defer mu.Unlock()

	if l.f == nil {
		return nil
	}
	delete(names, l.name)

	err := unlockFile(l.f)
	if cerr := l.f.Close(); err == nil {
		err = cerr
	}
	l.f = nil
	if err != nil {
		return errors.Wrapf(err, errors.ErrInternal, "cannot unlock %s", l.name)
	}
	return nil
}

// Path returns the sidecar file the lock is held on
func (l *Lock) Path() string {
	return l.name
}
