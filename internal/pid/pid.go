// Package pid guards against accidentally running two copies of the same
// event-provider daemon through a per-daemon PID file in the temp directory.
package pid

import (
	"os"
	"path/filepath"
	"strconv"
	"syscall"

	"codeberg.org/rwein/barpoll/internal/errors"
)

func pidPath(name string) string {
	return filepath.Join(os.TempDir(), name+".pid")
}

// Write writes the current process ID to the daemon's PID file. It fails
// with ErrAlreadyRunning when the file exists and points at a live process.
func Write(name string) error {
	errFactory := errors.New()
	pid := os.Getpid()
	path := pidPath(name)

	if _, err := os.Stat(path); err == nil {
		bytes, err := os.ReadFile(path)
		if err != nil {
			return errFactory.Wrap(errors.ErrInternal, err)
		}

		oldPID, err := strconv.Atoi(string(bytes))
		if err == nil {
			process, err := os.FindProcess(oldPID)
			if err == nil && process.Signal(syscall.Signal(0)) == nil {
				return errFactory.WithData(errors.ErrAlreadyRunning, oldPID)
			}
		}
		// Stale file from a dead process, fall through and overwrite.
	}

	if err := os.WriteFile(path, []byte(strconv.Itoa(pid)), 0o600); err != nil {
		return errFactory.Wrap(errors.ErrInternal, err)
	}

	return nil
}

// Remove removes the daemon's PID file.
func Remove(name string) error {
	errFactory := errors.New()
	path := pidPath(name)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	if err := os.Remove(path); err != nil {
		return errFactory.Wrap(errors.ErrInternal, err)
	}

	return nil
}
