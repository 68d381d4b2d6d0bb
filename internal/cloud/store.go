// Package cloud moves staged device files to and from an object store.
// The store itself is an injected backend; sync logic never knows
// which provider it is talking to.
package cloud

import (
	"context"
	"io"
)

// ObjectInfo describes one stored blob.
type ObjectInfo struct {
	// Key is the full object key, forward-slash separated
	Key string

	// Size is the blob size in bytes when the backend reports one
	Size int64
}

// ObjectStore is the blob interface backup and restore run against.
// Implementations handle provider auth, retries and error mapping
// internally and are safe for use from a single operation goroutine.
type ObjectStore interface {
	// Put creates or overwrites the object at key with r's content.
	// Size is the exact content length; backends that do not need it
	// may ignore it.
	Put(ctx context.Context, key string, r io.Reader, size int64) error

	// Get opens the object at key for reading. The caller closes the
	// reader. Returns domain.ErrObjectNotFound if the key does not
	// exist.
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// List returns every object whose key starts with prefix.
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)

	// Close releases provider resources.
	Close() error
}
