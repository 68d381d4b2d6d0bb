package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/droidsweep/droidsweep/internal/cloud"
	"github.com/droidsweep/droidsweep/internal/cloud/gdrive"
	"github.com/droidsweep/droidsweep/internal/cloud/localdir"
	"github.com/droidsweep/droidsweep/internal/cloud/s3"
	"github.com/droidsweep/droidsweep/internal/config"
	"github.com/droidsweep/droidsweep/internal/core/checksum"
	"github.com/droidsweep/droidsweep/internal/core/dedup"
	"github.com/droidsweep/droidsweep/internal/core/transfer"
	"github.com/droidsweep/droidsweep/internal/domain"
	"github.com/droidsweep/droidsweep/internal/events"
)

// buildFileList expands roots into the flat file list an operation
// runs over: roots ending in "/" are walked on the device, bare paths
// pass through. The result is de-duplicated and sorted. A false
// return means the run was cancelled mid-expansion.
func (s *Service) buildFileList(ctx context.Context, roots []string, em events.Emitter) ([]string, bool) {
	var result []string
	for _, p := range roots {
		if ctx.Err() != nil {
			events.Logf(em, events.Info, "operation cancelled")
			return nil, false
		}
		if strings.HasSuffix(p, "/") {
			events.Logf(em, events.Info, "finding files in: %s", p)
			files := s.device.FindFiles(ctx, p)
			events.Logf(em, events.Info, "found %d files", len(files))
			result = append(result, files...)
		} else {
			result = append(result, p)
		}
	}

	seen := make(map[string]struct{}, len(result))
	var unique []string
	for _, p := range result {
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		unique = append(unique, p)
	}
	sort.Strings(unique)

	return unique, true
}

// runScan hashes the expanded file list and groups duplicates.
func (s *Service) runScan(ctx context.Context, roots []string, em events.Emitter) (outcome, error) {
	files, ok := s.buildFileList(ctx, roots, em)
	if !ok {
		return outcome{}, nil
	}

	events.Logf(em, events.Info, "starting duplicate scan...")
	hasher := dedup.NewHasher(s.device, checksum.NewDefaultCalculator(), s.area, s.cfg.Scan.MaxPullSize, s.log)
	digests, ok := hasher.ComputeHashes(ctx, files, em)
	if !ok {
		em.Emit(events.Progress{})
		return outcome{total: len(files)}, nil
	}

	if ctx.Err() == nil {
		groups, uniques := dedup.GroupByHash(files, digests)
		events.Logf(em, events.Info, "scan complete. found %d unique files and %d duplicate groups",
			len(uniques), len(groups))
		em.Emit(events.ScanComplete{Report: domain.ScanReport{
			Files:   files,
			Uniques: uniques,
			Groups:  groups,
		}})
	}
	em.Emit(events.Progress{})

	return outcome{
		total: len(files),
		result: domain.TransferResult{
			Operation: domain.OperationScan,
			Success:   len(digests),
			Failed:    len(files) - len(digests),
		},
	}, nil
}

// runTransfer copies or moves the expanded file list into the
// organized local tree.
func (s *Service) runTransfer(ctx context.Context, roots []string, destRoot string, op domain.Operation, em events.Emitter) (outcome, error) {
	files, ok := s.buildFileList(ctx, roots, em)
	if !ok {
		return outcome{}, nil
	}

	engine := transfer.NewEngine(s.device, s.broker, s.cfg.Transfer.ConfirmTimeout, s.log)
	result := engine.Run(ctx, transfer.Request{
		Operation: op,
		Files:     files,
		DestRoot:  destRoot,
		Album:     s.cfg.Transfer.Album,
	}, em)

	return outcome{total: len(files), result: result}, nil
}

// runBackup stages the expanded file list and uploads it.
func (s *Service) runBackup(ctx context.Context, roots []string, container string, em events.Emitter) (outcome, error) {
	files, ok := s.buildFileList(ctx, roots, em)
	if !ok {
		return outcome{}, nil
	}

	store, err := s.openStore(ctx)
	if err != nil {
		events.Logf(em, events.Error, "cloud backup failed: %v", err)
		return outcome{}, err
	}
	defer store.Close()

	sync := cloud.NewSync(s.device, s.area, store, s.getReporter(), s.log)
	result := sync.Backup(ctx, files, container, em)

	return outcome{total: len(files), result: result}, nil
}

// runRestore downloads a container back to local disk.
func (s *Service) runRestore(ctx context.Context, container, destRoot string, em events.Emitter) (outcome, error) {
	store, err := s.openStore(ctx)
	if err != nil {
		events.Logf(em, events.Error, "cloud restore failed: %v", err)
		return outcome{}, err
	}
	defer store.Close()

	sync := cloud.NewSync(s.device, s.area, store, s.getReporter(), s.log)
	result := sync.Restore(ctx, container, destRoot, em)

	// The restore plan is discovered server-side, so the listed count
	// only exists inside the run; attempted files stand in for it.
	return outcome{total: result.Total(), result: result}, nil
}

// openStore builds the configured object store backend.
func (s *Service) openStore(ctx context.Context) (cloud.ObjectStore, error) {
	switch s.cfg.Cloud.Backend {
	case "s3":
		return s3.New(ctx, s.cfg.Cloud.S3, s.log)
	case "gdrive":
		return gdrive.New(ctx, s.cfg.Cloud.GDrive, s.log)
	case "localdir":
		return localdir.New(config.ExpandPath(s.cfg.Cloud.LocalDir.Path))
	case "":
		return nil, fmt.Errorf("no cloud backend configured")
	default:
		return nil, fmt.Errorf("unknown cloud backend: %s", s.cfg.Cloud.Backend)
	}
}
