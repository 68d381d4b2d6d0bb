package staging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/droidsweep/droidsweep/internal/testutil"
)

func TestPrepareCreatesDir(t *testing.T) {
	base, cleanup := testutil.TempDir(t)
	defer cleanup()

	area := New(filepath.Join(base, "nested", "staging"), nil)
	if err := area.Prepare(); err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}

	info, err := os.Stat(area.Dir())
	if err != nil || !info.IsDir() {
		t.Fatalf("staging dir missing after Prepare: %v", err)
	}
}

func TestClearSweepsLeftovers(t *testing.T) {
	dir, cleanup := testutil.TempDir(t)
	defer cleanup()

	area := New(dir, nil)
	testutil.CreateTestFile(t, dir, "ab12cd34_photo.jpg.tmp", []byte("leftover"))
	testutil.CreateTestFile(t, dir, "ef56ab78_video.mp4.tmp", []byte("leftover"))

	if err := area.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("expected empty staging dir, found %d entries", len(entries))
	}

	// Directory itself survives
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("staging dir removed by Clear: %v", err)
	}
}

func TestClearMissingDir(t *testing.T) {
	base, cleanup := testutil.TempDir(t)
	defer cleanup()

	area := New(filepath.Join(base, "never-created"), nil)
	if err := area.Clear(); err != nil {
		t.Errorf("Clear on missing dir should be a no-op, got: %v", err)
	}
}

func TestRemoveBestEffort(t *testing.T) {
	dir, cleanup := testutil.TempDir(t)
	defer cleanup()

	area := New(dir, nil)
	staged := testutil.CreateTestFile(t, dir, "ab12cd34_a.jpg.tmp", []byte("staged"))

	area.Remove(staged)
	if _, err := os.Stat(staged); !os.IsNotExist(err) {
		t.Error("staged file still present after Remove")
	}

	// Removing again, or removing nothing, must not panic or log-fatal
	area.Remove(staged)
	area.Remove("")
}

func TestUsage(t *testing.T) {
	dir, cleanup := testutil.TempDir(t)
	defer cleanup()

	area := New(dir, nil)
	testutil.CreateTestFile(t, dir, "one.tmp", []byte("12345"))
	testutil.CreateTestFile(t, dir, "two.tmp", []byte("1234567890"))

	total, err := area.Usage()
	if err != nil {
		t.Fatalf("Usage failed: %v", err)
	}
	if total != 15 {
		t.Errorf("Usage = %d, want 15", total)
	}
}
