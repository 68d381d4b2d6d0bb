// Package localdir implements the object store on a plain directory
// tree. Used for backups to external disks and in tests.
package localdir

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/droidsweep/droidsweep/internal/cloud"
	"github.com/droidsweep/droidsweep/internal/domain"
)

const tempSuffix = ".droidsweep.tmp"

// Store lays object keys out as files under a root directory.
type Store struct {
	root string
}

// New creates a store rooted at root, creating the directory if needed.
func New(root string) (*Store, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(absRoot, 0755); err != nil {
		return nil, err
	}
	return &Store{root: absRoot}, nil
}

// resolveKey maps an object key onto a path under root. Keys that
// would escape the root are rejected.
func (s *Store) resolveKey(key string) (string, error) {
	if key == "" || key == "." {
		return "", domain.ErrPermissionDenied
	}

	rel := filepath.Clean(filepath.FromSlash(key))
	if filepath.IsAbs(rel) {
		return "", domain.ErrPermissionDenied
	}

	full := filepath.Join(s.root, rel)

	check, err := filepath.Rel(s.root, full)
	if err != nil {
		return "", domain.ErrPermissionDenied
	}
	if strings.HasPrefix(check, "..") {
		return "", domain.ErrPermissionDenied
	}

	return full, nil
}

// Put writes the object atomically via a temp file.
func (s *Store) Put(ctx context.Context, key string, r io.Reader, size int64) error {
	full, err := s.resolveKey(key)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return err
	}

	tempPath := full + tempSuffix
	f, err := os.Create(tempPath)
	if err != nil {
		return err
	}

	_, copyErr := io.Copy(f, r)
	closeErr := f.Close()
	if copyErr != nil {
		os.Remove(tempPath)
		return copyErr
	}
	if closeErr != nil {
		os.Remove(tempPath)
		return closeErr
	}

	if err := os.Rename(tempPath, full); err != nil {
		os.Remove(tempPath)
		return err
	}
	return nil
}

// Get opens the object for reading.
func (s *Store) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	full, err := s.resolveKey(key)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrObjectNotFound
		}
		return nil, err
	}
	if info.IsDir() {
		return nil, domain.ErrObjectNotFound
	}

	return os.Open(full)
}

// List walks the tree and returns every object key matching prefix,
// in lexical order.
func (s *Store) List(ctx context.Context, prefix string) ([]cloud.ObjectInfo, error) {
	var result []cloud.ObjectInfo

	err := filepath.WalkDir(s.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() || strings.HasSuffix(p, tempSuffix) {
			return nil
		}

		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if !strings.HasPrefix(key, prefix) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		result = append(result, cloud.ObjectInfo{Key: key, Size: info.Size()})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Close is a no-op for directory stores.
func (s *Store) Close() error { return nil }

// Root returns the store's root directory.
func (s *Store) Root() string { return s.root }

var _ cloud.ObjectStore = (*Store)(nil)
