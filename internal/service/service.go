// Package service dispatches droidsweep operations. It owns the
// one-operation-at-a-time discipline: every background run holds both
// the in-process busy flag and the on-disk file lock, so neither a
// second goroutine nor a second droidsweep process can touch the
// staging area mid-operation.
package service

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/droidsweep/droidsweep/internal/config"
	"github.com/droidsweep/droidsweep/internal/confirm"
	"github.com/droidsweep/droidsweep/internal/domain"
	"github.com/droidsweep/droidsweep/internal/events"
	"github.com/droidsweep/droidsweep/internal/lock"
	"github.com/droidsweep/droidsweep/internal/logger"
	"github.com/droidsweep/droidsweep/internal/progress"
	"github.com/droidsweep/droidsweep/internal/staging"
	"github.com/droidsweep/droidsweep/internal/state"
)

// eventBuffer is the channel buffer of one operation's event stream.
// Emitters block when it fills, so the starter must keep draining.
const eventBuffer = 64

// Device is the slice of the bridge client the service dispatches on.
type Device interface {
	Status(ctx context.Context) domain.StatusReport
	List(ctx context.Context, remotePath string) []domain.RemoteEntry
	FindFiles(ctx context.Context, remotePath string) []string
	ModTime(ctx context.Context, remotePath string) (time.Time, bool)
	Size(ctx context.Context, remotePath string) (int64, bool)
	HashRemote(ctx context.Context, remotePath string) (string, bool)
	Pull(ctx context.Context, remotePath, localDir string) (string, bool)
	Delete(ctx context.Context, remotePath string) (bool, string)
}

// Service runs droidsweep operations against one attached device.
type Service struct {
	cfg      *config.Config
	device   Device
	area     *staging.Area
	history  *state.Manager
	broker   *confirm.Broker
	lock     *lock.FileLock
	reporter progress.Reporter
	log      logger.Logger

	mu      sync.Mutex
	running bool
}

// NewService creates the operations service. history may be nil, in
// which case runs are not recorded.
func NewService(cfg *config.Config, device Device, history *state.Manager, log logger.Logger) (*Service, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if device == nil {
		return nil, fmt.Errorf("device cannot be nil")
	}
	if log == nil {
		log = logger.Get()
	}

	area := staging.New(cfg.StagingDir(), log)
	if err := area.Prepare(); err != nil {
		return nil, err
	}

	// The lock file sits beside the staging directory it guards, not
	// inside it, so sweeping the area cannot drop a held lock.
	fileLock, err := lock.NewFileLock(filepath.Dir(area.Dir()))
	if err != nil {
		return nil, fmt.Errorf("failed to create operation lock: %w", err)
	}

	return &Service{
		cfg:     cfg,
		device:  device,
		area:    area,
		history: history,
		broker:  confirm.NewBroker(),
		lock:    fileLock,
		log:     log,
	}, nil
}

// SetProgressReporter sets the byte-level reporter cloud transfers
// stream through.
func (s *Service) SetProgressReporter(reporter progress.Reporter) {
	s.reporter = reporter
}

// getReporter returns the current progress reporter or a null reporter
func (s *Service) getReporter() progress.Reporter {
	if s.reporter != nil {
		return s.reporter
	}
	return progress.NullReporter{}
}

// Handle tracks one running operation.
type Handle struct {
	Op     domain.Operation
	Events <-chan events.Event

	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

// Cancel requests a stop. The file in flight still concludes; drain
// Events until the channel closes.
func (h *Handle) Cancel() {
	h.cancel()
}

// Wait blocks until the operation has fully wound down and returns
// its terminal error. Completed and cancelled runs return nil.
func (h *Handle) Wait() error {
	<-h.done
	return h.err
}

// outcome is what a pipeline run reports back for the history row.
type outcome struct {
	// total is the number of files the operation set out to touch
	total  int
	result domain.TransferResult
}

// start launches run on its own goroutine behind the busy flag and
// file lock. The returned handle's event channel closes once the
// operation has wound down and released both.
func (s *Service) start(op domain.Operation, run func(ctx context.Context, em events.Emitter) (outcome, error)) (*Handle, error) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil, domain.ErrOperationRunning
	}
	if err := s.lock.Acquire(string(op)); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.running = true
	s.mu.Unlock()

	// Sweep crash leftovers before the pipeline starts staging.
	if err := s.area.Clear(); err != nil {
		s.log.Warn("failed to sweep staging area", "error", err.Error())
	}

	ctx, cancel := context.WithCancel(context.Background())
	em := events.NewChannelEmitter(eventBuffer)
	h := &Handle{
		Op:     op,
		Events: em.Events(),
		cancel: cancel,
		done:   make(chan struct{}),
	}

	started := time.Now()
	s.log.Info("operation started", "operation", string(op))

	go func() {
		defer close(h.done)
		defer func() {
			em.Close()
			cancel()
			s.mu.Lock()
			s.running = false
			s.mu.Unlock()
			if err := s.lock.Release(); err != nil {
				s.log.Error("failed to release operation lock",
					"operation", string(op), "error", err.Error())
			}
		}()

		out, err := run(ctx, em)
		h.err = err
		s.record(op, started, ctx.Err() != nil, out, err)
	}()

	return h, nil
}

// record writes the history row and the operation summary log line
func (s *Service) record(op domain.Operation, started time.Time, cancelled bool, out outcome, runErr error) {
	status := "completed"
	errMsg := ""
	switch {
	case runErr != nil:
		status = "failed"
		errMsg = runErr.Error()
	case cancelled:
		status = "cancelled"
	}

	s.log.Info("operation finished",
		"operation", string(op),
		"status", status,
		"files", out.total,
		"success", out.result.Success,
		"failed", out.result.Failed,
		"duration", time.Since(started).String(),
	)

	if s.history == nil {
		return
	}

	rec := state.OperationRecord{
		Operation:    string(op),
		StartedAt:    started,
		FinishedAt:   time.Now(),
		Status:       status,
		FilesTotal:   out.total,
		SuccessCount: out.result.Success,
		FailedCount:  out.result.Failed,
		Error:        errMsg,
	}
	if err := s.history.SaveOperation(rec); err != nil {
		s.log.Error("failed to record operation history",
			"operation", string(op), "error", err.Error())
	}
}

// StartScan launches a duplicate scan over roots.
func (s *Service) StartScan(roots []string) (*Handle, error) {
	if len(roots) == 0 {
		return nil, fmt.Errorf("no files selected for scan")
	}
	return s.start(domain.OperationScan, func(ctx context.Context, em events.Emitter) (outcome, error) {
		return s.runScan(ctx, roots, em)
	})
}

// StartTransfer launches a copy or move of roots into destRoot. An
// empty destRoot falls back to the configured destination.
func (s *Service) StartTransfer(roots []string, destRoot string, op domain.Operation) (*Handle, error) {
	if op != domain.OperationCopy && op != domain.OperationMove {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidOperation, op)
	}
	if len(roots) == 0 {
		return nil, fmt.Errorf("no files selected for %s", op)
	}
	if destRoot == "" {
		destRoot = s.cfg.Transfer.DestRoot
	}
	if destRoot == "" {
		return nil, fmt.Errorf("destination folder required for %s", op)
	}
	destRoot = config.ExpandPath(destRoot)

	return s.start(op, func(ctx context.Context, em events.Emitter) (outcome, error) {
		return s.runTransfer(ctx, roots, destRoot, op, em)
	})
}

// StartBackup launches a cloud backup of roots into container.
func (s *Service) StartBackup(roots []string, container string) (*Handle, error) {
	if container == "" {
		return nil, fmt.Errorf("container required for cloud backup")
	}
	if len(roots) == 0 {
		return nil, fmt.Errorf("no files selected for cloud backup")
	}
	return s.start(domain.OperationCloudBackup, func(ctx context.Context, em events.Emitter) (outcome, error) {
		return s.runBackup(ctx, roots, container, em)
	})
}

// StartRestore launches a cloud restore of container into destRoot.
func (s *Service) StartRestore(container, destRoot string) (*Handle, error) {
	if container == "" || destRoot == "" {
		return nil, fmt.Errorf("container and destination folder required for cloud restore")
	}
	destRoot = config.ExpandPath(destRoot)

	return s.start(domain.OperationCloudRestore, func(ctx context.Context, em events.Emitter) (outcome, error) {
		return s.runRestore(ctx, container, destRoot, em)
	})
}

// Resolve answers a pending conflict confirmation. It returns false
// when the id is unknown or already settled.
func (s *Service) Resolve(id uint64, d confirm.Decision) bool {
	return s.broker.Resolve(id, d)
}

// Status probes the bridge, device list and storage access.
func (s *Service) Status(ctx context.Context) domain.StatusReport {
	return s.device.Status(ctx)
}

// ListDir lists one remote directory.
func (s *Service) ListDir(ctx context.Context, remotePath string) []domain.RemoteEntry {
	return s.device.List(ctx, remotePath)
}

// Preview pulls a remote file into the staging area and returns the
// local path. The copy lives until the next operation sweeps staging.
func (s *Service) Preview(ctx context.Context, remotePath string) (string, error) {
	if err := s.area.Prepare(); err != nil {
		return "", err
	}

	s.log.Info("pulling for preview", "path", remotePath)
	local, ok := s.device.Pull(ctx, remotePath, s.area.Dir())
	if !ok {
		return "", fmt.Errorf("failed to pull %s for preview", remotePath)
	}
	return local, nil
}

// History returns the most recent operation records, newest first.
func (s *Service) History(limit int) ([]state.OperationRecord, error) {
	if s.history == nil {
		return nil, nil
	}
	return s.history.GetHistory(limit)
}

// LastSuccess returns the most recent completed run of an operation,
// or nil when it has never completed.
func (s *Service) LastSuccess(op domain.Operation) (*state.OperationRecord, error) {
	if s.history == nil {
		return nil, nil
	}
	return s.history.GetLastSuccess(string(op))
}
