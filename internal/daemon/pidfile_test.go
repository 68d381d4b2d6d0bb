package daemon_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/droidsweep/droidsweep/internal/daemon"
)

func TestPIDFile_WriteAndRead(t *testing.T) {
	pidPath := filepath.Join(t.TempDir(), "watch.pid")
	pidFile := daemon.NewPIDFile(pidPath)

	if err := pidFile.Write(); err != nil {
		t.Fatalf("Failed to write pid file: %v", err)
	}
	defer pidFile.Remove()

	pid, err := pidFile.Read()
	if err != nil {
		t.Fatalf("Failed to read pid file: %v", err)
	}
	if pid != os.Getpid() {
		t.Errorf("Expected pid %d, got %d", os.Getpid(), pid)
	}
}

func TestPIDFile_IsRunning(t *testing.T) {
	pidPath := filepath.Join(t.TempDir(), "watch.pid")
	pidFile := daemon.NewPIDFile(pidPath)

	if err := pidFile.Write(); err != nil {
		t.Fatalf("Failed to write pid file: %v", err)
	}
	defer pidFile.Remove()

	running, err := pidFile.IsRunning()
	if err != nil {
		t.Fatalf("Failed to check if running: %v", err)
	}
	if !running {
		t.Error("Expected current process to count as running")
	}
}

func TestPIDFile_WriteRejectsLiveProcess(t *testing.T) {
	pidPath := filepath.Join(t.TempDir(), "watch.pid")
	pidFile := daemon.NewPIDFile(pidPath)

	if err := pidFile.Write(); err != nil {
		t.Fatalf("Failed to write pid file: %v", err)
	}
	defer pidFile.Remove()

	if err := pidFile.Write(); err == nil {
		t.Error("Expected second write to fail while the process lives")
	}
}

func TestPIDFile_WriteReplacesStaleFile(t *testing.T) {
	pidPath := filepath.Join(t.TempDir(), "watch.pid")

	// A pid that cannot name a live process.
	if err := os.WriteFile(pidPath, []byte("999999999\n"), 0644); err != nil {
		t.Fatalf("Failed to seed stale pid file: %v", err)
	}

	pidFile := daemon.NewPIDFile(pidPath)
	if err := pidFile.Write(); err != nil {
		t.Fatalf("Write should replace a stale pid file: %v", err)
	}
	defer pidFile.Remove()

	pid, err := pidFile.Read()
	if err != nil {
		t.Fatalf("Failed to read pid file: %v", err)
	}
	if pid != os.Getpid() {
		t.Errorf("Expected pid %d after replacement, got %d", os.Getpid(), pid)
	}
}

func TestPIDFile_ReadMissing(t *testing.T) {
	pidFile := daemon.NewPIDFile(filepath.Join(t.TempDir(), "absent.pid"))
	if _, err := pidFile.Read(); err == nil {
		t.Error("Expected error reading a missing pid file")
	}
}

func TestPIDFile_RemoveMissing(t *testing.T) {
	pidFile := daemon.NewPIDFile(filepath.Join(t.TempDir(), "absent.pid"))
	if err := pidFile.Remove(); err != nil {
		t.Errorf("Removing a missing pid file should succeed: %v", err)
	}
}
