//go:build !windows

package lock

import (
	"errors"
	"os"
	"syscall"
)

// processExists probes a pid with signal 0. On Unix FindProcess
// always succeeds, so the signal is the actual check; EPERM means the
// process exists but belongs to someone else, which still counts.
func processExists(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}

	err = process.Signal(syscall.Signal(0))
	if err == nil {
		return true
	}
	return errors.Is(err, syscall.EPERM)
}
