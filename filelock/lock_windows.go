//go:build windows

package filelock

import "os"
import "syscall"
import "unsafe"

var (
	modkernel32      = syscall.NewLazyDLL("kernel32.dll")
	procLockFileEx   = modkernel32.NewProc("LockFileEx")
	procUnlockFileEx = modkernel32.NewProc("UnlockFileEx")
)

const lockfileExclusiveLock = 2

// WithExclusive opens path (creating it if necessary), takes an
// exclusive lock, runs fn with the open file, and releases the lock
// before returning.
func WithExclusive(path string, fn func(f *os.File) error) error {
	return withLockFileEx(path, os.O_CREATE|os.O_RDWR, lockfileExclusiveLock, fn)
}

// WithShared opens path, takes a shared lock, runs fn with the open
// file, and releases the lock before returning.
func WithShared(path string, fn func(f *os.File) error) error {
	return withLockFileEx(path, os.O_CREATE|os.O_RDONLY, 0, fn)
}

func withLockFileEx(path string, flag int, flags uint32, fn func(f *os.File) error) error {
	f, err := os.OpenFile(path, flag, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	h := syscall.Handle(f.Fd())
	var ol syscall.Overlapped
	if err := lockFileEx(h, flags, 0, 1, 0, &ol); err != nil {
		return err
	}
	defer unlockFileEx(h, 0, 1, 0, &ol)

	return fn(f)
}

func lockFileEx(h syscall.Handle, flags, reserved, locklow, lockhigh uint32, ol *syscall.Overlapped) (err error) {
	r1, _, e1 := syscall.Syscall6(
		procLockFileEx.Addr(), 6, uintptr(h), uintptr(flags),
		uintptr(reserved), uintptr(locklow), uintptr(lockhigh), uintptr(unsafe.Pointer(ol)))
	if r1 == 0 {
		if e1 != 0 {
			err = error(e1)
		} else {
			err = syscall.EINVAL
		}
	}
	return
}

func unlockFileEx(h syscall.Handle, reserved, locklow, lockhigh uint32, ol *syscall.Overlapped) (err error) {
	r1, _, e1 := syscall.Syscall6(procUnlockFileEx.Addr(), 5, uintptr(h),
		uintptr(reserved), uintptr(locklow), uintptr(lockhigh), uintptr(unsafe.Pointer(ol)), 0)
	if r1 == 0 {
		if e1 != 0 {
			err = error(e1)
		} else {
			err = syscall.EINVAL
		}
	}
	return
}
