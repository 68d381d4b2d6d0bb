package cloud

import (
	"context"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/droidsweep/droidsweep/internal/domain"
	"github.com/droidsweep/droidsweep/internal/events"
	"github.com/droidsweep/droidsweep/internal/logger"
	"github.com/droidsweep/droidsweep/internal/metrics"
	"github.com/droidsweep/droidsweep/internal/progress"
	"github.com/droidsweep/droidsweep/internal/staging"
)

// DevicePuller is the slice of the device adapter backup needs.
type DevicePuller interface {
	Pull(ctx context.Context, remotePath, localDir string) (string, bool)
}

// Sync streams staged device files into an object store and back.
type Sync struct {
	device   DevicePuller
	area     *staging.Area
	store    ObjectStore
	reporter progress.Reporter
	log      logger.Logger
}

// NewSync wires a cloud sync pipeline. A nil reporter disables byte
// progress; a nil log falls back to the package logger.
func NewSync(device DevicePuller, area *staging.Area, store ObjectStore, reporter progress.Reporter, log logger.Logger) *Sync {
	if reporter == nil {
		reporter = progress.NullReporter{}
	}
	if log == nil {
		log = logger.Get()
	}
	return &Sync{device: device, area: area, store: store, reporter: reporter, log: log}
}

// containerPrefix namespaces one backup container inside the store.
func containerPrefix(container string) string {
	return path.Join("users", container)
}

// Backup pulls each file to the staging area and uploads it under the
// container's key prefix. Staged copies live for exactly one upload
// attempt, successful or not. Cancellation stops the walk at the next
// file boundary.
func (s *Sync) Backup(ctx context.Context, files []string, container string, em events.Emitter) domain.TransferResult {
	result := domain.TransferResult{Operation: domain.OperationCloudBackup}
	total := len(files)
	prefix := containerPrefix(container)

	em.Emit(events.Progress{Current: 0, Total: total})
	events.Logf(em, events.Info, "starting cloud backup of %d files", total)
	s.log.Info("cloud backup starting", "files", total, "container", container)
	s.reporter.SetTotal(total, 0)

	for i, remote := range files {
		if ctx.Err() != nil {
			events.Logf(em, events.Warning, "cloud backup cancelled")
			break
		}

		basename := path.Base(remote)
		staged, ok := s.device.Pull(ctx, remote, s.area.Dir())
		if !ok {
			events.Logf(em, events.Error, "failed to pull %s for cloud backup", basename)
			result.Failed++
			em.Emit(events.Progress{Current: i + 1, Total: total})
			continue
		}

		key := prefix + "/" + filepath.Base(staged)
		events.Logf(em, events.Info, "uploading %s (%d/%d)", basename, i+1, total)
		if err := s.upload(ctx, key, staged); err != nil {
			events.Logf(em, events.Error, "cloud upload failed for %s: %v", basename, err)
			result.Failed++
		} else {
			events.Logf(em, events.Info, "uploaded %s", basename)
			result.Success++
		}

		s.area.Remove(staged)
		em.Emit(events.Progress{Current: i + 1, Total: total})
	}

	events.Logf(em, events.Info, "cloud backup completed. uploaded: %d, failed: %d", result.Success, result.Failed)
	s.log.Info("cloud backup finished", "success", result.Success, "failed", result.Failed)
	em.Emit(events.TransferComplete{Result: result})
	em.Emit(events.Progress{Current: 0, Total: 0})
	return result
}

// upload streams one staged file into the store.
func (s *Sync) upload(ctx context.Context, key, stagedPath string) error {
	f, err := os.Open(stagedPath)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	size := info.Size()

	s.reporter.Start(key, size)
	reader := progress.NewCountingReader(f, s.reporter)
	if err := s.store.Put(ctx, key, reader, size); err != nil {
		s.reporter.Error(err)
		return err
	}
	s.reporter.Complete()
	metrics.AddCloudBytes("upload", size)
	s.log.Debug("uploaded object", "key", key, "bytes", size)
	return nil
}

// Restore downloads every object in the container into destRoot,
// recreating each key's relative path on disk.
func (s *Sync) Restore(ctx context.Context, container, destRoot string, em events.Emitter) domain.TransferResult {
	result := domain.TransferResult{Operation: domain.OperationCloudRestore}
	prefix := containerPrefix(container) + "/"

	objects, err := s.store.List(ctx, prefix)
	if err != nil {
		events.Logf(em, events.Error, "failed to list cloud container: %v", err)
		s.log.Error("cloud container listing failed", "container", container, "error", err)
		em.Emit(events.TransferComplete{Result: result})
		em.Emit(events.Progress{Current: 0, Total: 0})
		return result
	}

	total := len(objects)
	events.Logf(em, events.Info, "starting cloud restore of %d files to %s", total, destRoot)
	s.log.Info("cloud restore starting", "objects", total, "dest", destRoot)
	em.Emit(events.Progress{Current: 0, Total: total})
	s.reporter.SetTotal(total, totalBytes(objects))

	for i, obj := range objects {
		if ctx.Err() != nil {
			events.Logf(em, events.Warning, "cloud restore cancelled")
			break
		}

		rel := relativeKey(obj.Key, prefix)
		if rel == "" {
			events.Logf(em, events.Error, "skipping object with unsafe key: %s", obj.Key)
			result.Failed++
			em.Emit(events.Progress{Current: i + 1, Total: total})
			continue
		}

		events.Logf(em, events.Info, "downloading %s (%d/%d)", rel, i+1, total)
		em.Emit(events.Progress{Current: i + 1, Total: total})

		if err := s.download(ctx, obj, filepath.Join(destRoot, filepath.FromSlash(rel))); err != nil {
			events.Logf(em, events.Error, "download failed for %s: %v", rel, err)
			result.Failed++
			continue
		}
		events.Logf(em, events.Info, "downloaded %s", rel)
		result.Success++
	}

	events.Logf(em, events.Info, "cloud restore completed. restored: %d, failed: %d", result.Success, result.Failed)
	s.log.Info("cloud restore finished", "success", result.Success, "failed", result.Failed)
	em.Emit(events.TransferComplete{Result: result})
	em.Emit(events.Progress{Current: 0, Total: 0})
	return result
}

// download streams one object into localPath via a temp file.
func (s *Sync) download(ctx context.Context, obj ObjectInfo, localPath string) error {
	if err := os.MkdirAll(filepath.Dir(localPath), 0755); err != nil {
		return err
	}

	rc, err := s.store.Get(ctx, obj.Key)
	if err != nil {
		return err
	}
	defer rc.Close()

	tempPath := localPath + ".droidsweep.tmp"
	f, err := os.Create(tempPath)
	if err != nil {
		return err
	}

	s.reporter.Start(obj.Key, obj.Size)
	n, copyErr := io.Copy(progress.NewCountingWriter(f, s.reporter), rc)
	closeErr := f.Close()
	if copyErr != nil || closeErr != nil {
		os.Remove(tempPath)
		err := copyErr
		if err == nil {
			err = closeErr
		}
		s.reporter.Error(err)
		return err
	}

	if err := os.Rename(tempPath, localPath); err != nil {
		os.Remove(tempPath)
		s.reporter.Error(err)
		return err
	}

	s.reporter.Complete()
	metrics.AddCloudBytes("download", n)
	s.log.Debug("downloaded object", "key", obj.Key, "bytes", n)
	return nil
}

// relativeKey strips the container prefix and rejects keys that would
// land outside the restore root. Returns "" for unusable keys.
func relativeKey(key, prefix string) string {
	rel := strings.TrimPrefix(key, prefix)
	if rel == "" || rel == key {
		return ""
	}
	clean := path.Clean(rel)
	if clean == "." || clean == ".." || path.IsAbs(clean) || strings.HasPrefix(clean, "../") {
		return ""
	}
	return clean
}

func totalBytes(objects []ObjectInfo) int64 {
	var n int64
	for _, o := range objects {
		n += o.Size
	}
	return n
}
