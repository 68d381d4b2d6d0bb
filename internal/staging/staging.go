// Package staging manages the local scratch directory device files
// are pulled into before hashing or uploading. Staged copies are
// transient: every pipeline that pulls a file removes it again, so
// anything found here at startup is leftover from a crash.
package staging

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/droidsweep/droidsweep/internal/logger"
)

// Area is a staging directory.
type Area struct {
	dir string
	log logger.Logger
}

// New creates an area rooted at dir. A nil logger falls back to the
// global one.
func New(dir string, log logger.Logger) *Area {
	if log == nil {
		log = logger.Get()
	}
	return &Area{dir: dir, log: log}
}

// Dir returns the staging directory path.
func (a *Area) Dir() string {
	return a.dir
}

// Prepare ensures the staging directory exists.
func (a *Area) Prepare() error {
	if err := os.MkdirAll(a.dir, 0755); err != nil {
		return fmt.Errorf("failed to create staging dir: %w", err)
	}
	return nil
}

// Clear removes everything inside the staging directory but keeps the
// directory itself. Used at operation start to sweep crash leftovers.
func (a *Area) Clear() error {
	entries, err := os.ReadDir(a.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read staging dir: %w", err)
	}

	for _, entry := range entries {
		full := filepath.Join(a.dir, entry.Name())
		if err := os.RemoveAll(full); err != nil {
			return fmt.Errorf("failed to clear staged entry %s: %w", entry.Name(), err)
		}
	}
	return nil
}

// Remove deletes one staged file, best effort. A failure is logged
// and otherwise ignored; the next Clear sweeps it.
func (a *Area) Remove(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		a.log.Warn("failed to remove staged file", "path", path, "error", err.Error())
	}
}

// Usage returns the total size in bytes of everything currently
// staged.
func (a *Area) Usage() (int64, error) {
	var total int64
	err := filepath.WalkDir(a.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		total += info.Size()
		return nil
	})
	if err != nil && !os.IsNotExist(err) {
		return 0, fmt.Errorf("failed to walk staging dir: %w", err)
	}
	return total, nil
}
