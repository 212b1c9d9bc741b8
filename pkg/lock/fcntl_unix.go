//go:build unix

package lock

import (
	"os"
	"syscall"
)

// lockFile takes a whole-file fcntl write lock without blocking.
// It returns false when another process holds it.
func lockFile(f *os.File) (bool, error) {
	fl := &syscall.Flock_t{
		Type:   syscall.F_WRLCK,
		Whence: int16(os.SEEK_SET),
		Start:  0,
		Len:    0,
	}
	err := syscall.FcntlFlock(f.Fd(), syscall.F_SETLK, fl)
	if err == syscall.EAGAIN || err == syscall.EACCES {
		return false, nil
	}
	return err == nil, err
}

func unlockFile(f *os.File) error {
	fl := &syscall.Flock_t{
		Type:   syscall.F_UNLCK,
		Whence: int16(os.SEEK_SET),
		Start:  0,
		Len:    0,
	}
	return syscall.FcntlFlock(f.Fd(), syscall.F_SETLK, fl)
}
