// Package gdrive implements the object store on Google Drive. Object
// keys map onto a folder tree under a configured root folder; folder
// IDs are cached per path so repeated key walks stay cheap.
package gdrive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"sync"
	"time"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/droidsweep/droidsweep/internal/cloud"
	"github.com/droidsweep/droidsweep/internal/config"
	"github.com/droidsweep/droidsweep/internal/domain"
	"github.com/droidsweep/droidsweep/internal/logger"
	"github.com/droidsweep/droidsweep/internal/metrics"
)

const (
	// folderMimeType is the MIME type Drive uses for folders
	folderMimeType = "application/vnd.google-apps.folder"
	// pageSize is the number of files fetched per listing request
	pageSize = 100
)

// Store keeps objects in a Google Drive folder tree.
type Store struct {
	service *drive.Service
	root    string
	cache   *idCache
	log     logger.Logger
}

// idCache caches folder ID lookups with thread-safe access
type idCache struct {
	mu    sync.RWMutex
	paths map[string]string
}

func newIDCache() *idCache {
	return &idCache{paths: make(map[string]string)}
}

func (c *idCache) get(path string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.paths[path]
	return id, ok
}

func (c *idCache) set(path, id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.paths[path] = id
}

func (c *idCache) delete(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.paths, path)
}

// New builds a Drive-backed store from config. The stored OAuth token
// must already exist; run the auth flow first.
func New(ctx context.Context, cfg config.GDriveConfig, log logger.Logger) (*Store, error) {
	if log == nil {
		log = logger.Get()
	}

	creds, err := LoadCredentials(cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("load gdrive credentials: %w", err)
	}

	auth := NewAuthenticator(creds.ClientID, creds.ClientSecret, cfg.TokenFile)
	token, err := auth.Token(ctx)
	if err != nil {
		return nil, err
	}

	client := auth.Config().Client(ctx, token)
	service, err := drive.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create Drive service: %w", err)
	}

	store := &Store{
		service: service,
		root:    normalizeRoot(cfg.RootFolder),
		cache:   newIDCache(),
		log:     log,
	}

	rootID, err := store.getOrCreateFolderID(ctx, store.root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root folder: %w", err)
	}
	store.cache.set(store.root, rootID)

	return store, nil
}

// normalizeRoot normalizes the root folder path
func normalizeRoot(root string) string {
	root = strings.TrimSpace(root)
	if root == "" || root == "/" {
		return ""
	}
	if !strings.HasPrefix(root, "/") {
		root = "/" + root
	}
	return strings.TrimSuffix(root, "/")
}

// joinKey maps an object key onto a Drive path under root. Keys that
// would walk out of the root folder are rejected.
func (s *Store) joinKey(key string) (string, error) {
	if key == "" || key == "." {
		return "", domain.ErrPermissionDenied
	}

	clean := path.Clean(key)
	if path.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", domain.ErrPermissionDenied
	}

	return s.root + "/" + clean, nil
}

// Put creates or overwrites the object at key.
func (s *Store) Put(ctx context.Context, key string, r io.Reader, size int64) error {
	start := time.Now()
	err := s.put(ctx, key, r)
	metrics.RecordCloudOperation("put_object", time.Since(start), err == nil)
	if err == nil {
		s.log.Debug("drive put object", "key", key, "size", size)
	}
	return err
}

func (s *Store) put(ctx context.Context, key string, r io.Reader) error {
	fullPath, err := s.joinKey(key)
	if err != nil {
		return err
	}
	fileName := path.Base(fullPath)

	existingID, err := s.getFileID(ctx, fullPath)
	if err == nil {
		file := &drive.File{Name: fileName}
		_, updateErr := s.service.Files.Update(existingID, file).
			Context(ctx).
			Media(r).
			Do()
		return s.mapError(updateErr)
	}
	if !errors.Is(err, domain.ErrObjectNotFound) {
		return err
	}

	parentID, err := s.getOrCreateFolderID(ctx, path.Dir(fullPath))
	if err != nil {
		return err
	}

	file := &drive.File{
		Name:    fileName,
		Parents: []string{parentID},
	}
	_, err = s.service.Files.Create(file).
		Context(ctx).
		Media(r).
		Do()
	return s.mapError(err)
}

// Get opens the object at key for reading.
func (s *Store) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	fullPath, err := s.joinKey(key)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	fileID, err := s.getFileID(ctx, fullPath)
	if err != nil {
		metrics.RecordCloudOperation("get_object", time.Since(start), false)
		return nil, err
	}

	resp, err := s.service.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		metrics.RecordCloudOperation("get_object", time.Since(start), false)
		return nil, s.mapError(err)
	}

	metrics.RecordCloudOperation("get_object", time.Since(start), true)
	return resp.Body, nil
}

// List walks the folder tree under prefix and returns every file it
// holds as an object key. Returns domain.ErrObjectNotFound if the
// prefix folder does not exist.
func (s *Store) List(ctx context.Context, prefix string) ([]cloud.ObjectInfo, error) {
	trimmed := strings.TrimSuffix(prefix, "/")
	fullPath, err := s.joinKey(trimmed)
	if err != nil {
		return nil, err
	}
	folderID, err := s.getFileID(ctx, fullPath)
	if err != nil {
		return nil, err
	}

	type frame struct {
		id     string
		prefix string
	}

	var result []cloud.ObjectInfo
	queue := []frame{{id: folderID, prefix: trimmed + "/"}}

	for len(queue) > 0 {
		f := queue[0]
		queue = queue[1:]

		pageToken := ""
		for {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}

			query := fmt.Sprintf("'%s' in parents and trashed = false", f.id)
			call := s.service.Files.List().
				Q(query).
				PageSize(pageSize).
				Fields("nextPageToken, files(id, name, mimeType, size)")
			if pageToken != "" {
				call = call.PageToken(pageToken)
			}

			start := time.Now()
			fileList, err := call.Context(ctx).Do()
			if err != nil {
				metrics.RecordCloudOperation("list_objects", time.Since(start), false)
				return nil, s.mapError(err)
			}
			metrics.RecordCloudOperation("list_objects", time.Since(start), true)

			for _, file := range fileList.Files {
				if file.MimeType == folderMimeType {
					queue = append(queue, frame{id: file.Id, prefix: f.prefix + file.Name + "/"})
					continue
				}
				result = append(result, cloud.ObjectInfo{Key: f.prefix + file.Name, Size: file.Size})
			}

			pageToken = fileList.NextPageToken
			if pageToken == "" {
				break
			}
		}
	}

	return result, nil
}

// Close releases no resources; the Drive client has no shutdown.
func (s *Store) Close() error {
	return nil
}

// escapeQueryString escapes special characters in Drive query strings
func escapeQueryString(s string) string {
	// Escape backslash first, then single quote
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "'", "\\'")
	return s
}

// getFileID returns the ID of a file or folder at the given path
func (s *Store) getFileID(ctx context.Context, fullPath string) (string, error) {
	if id, ok := s.cache.get(fullPath); ok {
		return id, nil
	}

	if fullPath == "" {
		return "root", nil
	}

	parts := strings.Split(strings.TrimPrefix(fullPath, "/"), "/")
	currentID := "root"

	for i, part := range parts {
		if part == "" {
			continue
		}

		escapedPart := escapeQueryString(part)
		query := fmt.Sprintf("name = '%s' and '%s' in parents and trashed = false", escapedPart, currentID)
		fileList, err := s.service.Files.List().
			Q(query).
			PageSize(1).
			Fields("files(id, mimeType)").
			Context(ctx).Do()
		if err != nil {
			return "", s.mapError(err)
		}

		if len(fileList.Files) == 0 {
			return "", domain.ErrObjectNotFound
		}

		currentID = fileList.Files[0].Id

		// Cache intermediate paths
		partialPath := "/" + strings.Join(parts[:i+1], "/")
		s.cache.set(partialPath, currentID)
	}

	return currentID, nil
}

// getOrCreateFolderID returns the ID of a folder, creating it if necessary
func (s *Store) getOrCreateFolderID(ctx context.Context, fullPath string) (string, error) {
	if fullPath == "" {
		return "root", nil
	}

	if id, ok := s.cache.get(fullPath); ok {
		return id, nil
	}

	parts := strings.Split(strings.TrimPrefix(fullPath, "/"), "/")
	currentID := "root"

	for i, part := range parts {
		if part == "" {
			continue
		}

		partialPath := "/" + strings.Join(parts[:i+1], "/")

		if id, ok := s.cache.get(partialPath); ok {
			currentID = id
			continue
		}

		escapedPart := escapeQueryString(part)
		query := fmt.Sprintf("name = '%s' and '%s' in parents and mimeType = '%s' and trashed = false",
			escapedPart, currentID, folderMimeType)
		fileList, err := s.service.Files.List().
			Q(query).
			PageSize(1).
			Fields("files(id)").
			Context(ctx).Do()
		if err != nil {
			return "", s.mapError(err)
		}

		if len(fileList.Files) > 0 {
			currentID = fileList.Files[0].Id
		} else {
			folder := &drive.File{
				Name:     part,
				MimeType: folderMimeType,
				Parents:  []string{currentID},
			}
			created, err := s.service.Files.Create(folder).
				Fields("id").
				Context(ctx).Do()
			if err != nil {
				return "", s.mapError(err)
			}
			currentID = created.Id
		}

		s.cache.set(partialPath, currentID)
	}

	return currentID, nil
}

// mapError converts Google API errors to domain errors
func (s *Store) mapError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 404:
			return domain.ErrObjectNotFound
		case 401:
			return domain.ErrAuthFailed
		case 403:
			return domain.ErrPermissionDenied
		case 429:
			return fmt.Errorf("rate limit exceeded: %w", err)
		}
	}

	// Fallback for non-googleapi errors
	if strings.Contains(err.Error(), "notFound") {
		return domain.ErrObjectNotFound
	}

	return err
}

var _ cloud.ObjectStore = (*Store)(nil)
