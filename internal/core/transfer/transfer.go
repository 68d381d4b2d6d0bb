// Package transfer copies or moves device files into the organized
// local destination tree, one file at a time.
package transfer

import (
	"context"
	"errors"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/droidsweep/droidsweep/internal/confirm"
	"github.com/droidsweep/droidsweep/internal/core/organize"
	"github.com/droidsweep/droidsweep/internal/domain"
	"github.com/droidsweep/droidsweep/internal/events"
	"github.com/droidsweep/droidsweep/internal/logger"
	"github.com/droidsweep/droidsweep/internal/metrics"
)

// DeviceFS is the slice of the device adapter transfers need.
type DeviceFS interface {
	ModTime(ctx context.Context, remotePath string) (time.Time, bool)
	Pull(ctx context.Context, remotePath, localDir string) (string, bool)
	Delete(ctx context.Context, remotePath string) (bool, string)
}

// Confirmer answers destination-conflict questions.
type Confirmer interface {
	Ask(ctx context.Context, em events.Emitter, filename string, timeout time.Duration) (confirm.Decision, error)
}

// Request describes one copy or move run.
type Request struct {
	Operation domain.Operation
	Files     []string
	DestRoot  string
	Album     string
}

// Engine runs transfers. Conflict questions go through the confirmer;
// the policy (prompt, always skip, always overwrite) is decided by
// whoever answers them.
type Engine struct {
	fs             DeviceFS
	confirmer      Confirmer
	confirmTimeout time.Duration
	log            logger.Logger
}

// NewEngine wires a transfer engine.
func NewEngine(fs DeviceFS, confirmer Confirmer, confirmTimeout time.Duration, log logger.Logger) *Engine {
	if log == nil {
		log = logger.Get()
	}
	return &Engine{fs: fs, confirmer: confirmer, confirmTimeout: confirmTimeout, log: log}
}

// Run processes req.Files in order and returns the terminal counts.
// Every reached file concludes as success or failed; cancellation
// stops the walk at the next boundary and leaves later files
// untouched. The result is also emitted as a TransferComplete event,
// after which progress resets.
func (e *Engine) Run(ctx context.Context, req Request, em events.Emitter) domain.TransferResult {
	result := domain.TransferResult{Operation: req.Operation}
	total := len(req.Files)
	verb, past := verbForms(req.Operation)

	em.Emit(events.Progress{Current: 0, Total: total})
	events.Logf(em, events.Info, "starting %s of %d files to %s", verb, total, req.DestRoot)
	e.log.Info("transfer starting", "operation", string(req.Operation), "files", total, "dest", req.DestRoot)

	for i, remote := range req.Files {
		if ctx.Err() != nil {
			events.Logf(em, events.Warning, "%s operation cancelled", verb)
			break
		}

		basename := path.Base(remote)
		modTime, modKnown := e.fs.ModTime(ctx, remote)
		destPath := organize.DestPath(req.DestRoot, req.Album, remote, modTime, modKnown)
		targetDir := filepath.Dir(destPath)

		if _, err := os.Stat(destPath); err == nil {
			decision, err := e.confirmer.Ask(ctx, em, basename, e.confirmTimeout)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					events.Logf(em, events.Warning, "%s operation cancelled", verb)
					break
				}
				metrics.RecordConflictDecision("timeout")
				events.Logf(em, events.Error, "'%s' already exists and was not confirmed", basename)
				result.Failed++
				metrics.RecordTransferFile(string(req.Operation), false)
				em.Emit(events.Progress{Current: i + 1, Total: total})
				continue
			}

			metrics.RecordConflictDecision(string(decision))
			if decision == confirm.DecisionSkip {
				events.Logf(em, events.Info, "skipping existing '%s'", basename)
				result.Failed++
				metrics.RecordTransferFile(string(req.Operation), false)
				em.Emit(events.Progress{Current: i + 1, Total: total})
				continue
			}
			events.Logf(em, events.Info, "overwriting '%s'", basename)
		}

		if err := os.MkdirAll(targetDir, 0755); err != nil {
			events.Logf(em, events.Error, "failed to create %s: %v", targetDir, err)
			result.Failed++
			metrics.RecordTransferFile(string(req.Operation), false)
			em.Emit(events.Progress{Current: i + 1, Total: total})
			continue
		}

		events.Logf(em, events.Info, "[%d/%d] %s: %s", i+1, total, verb, basename)
		e.log.Debug("transferring file", "remote", remote, "dest", destPath)

		if _, ok := e.fs.Pull(ctx, remote, targetDir); ok {
			if req.Operation.RemovesSource() {
				events.Logf(em, events.Info, "pull successful, wiping %s from device", basename)
				if deleted, errMsg := e.fs.Delete(ctx, remote); deleted {
					result.Success++
					metrics.RecordTransferFile(string(req.Operation), true)
				} else {
					events.Logf(em, events.Error, "failed to delete '%s' from device: %s", remote, errMsg)
					result.Failed++
					metrics.RecordTransferFile(string(req.Operation), false)
				}
			} else {
				result.Success++
				metrics.RecordTransferFile(string(req.Operation), true)
			}
		} else {
			events.Logf(em, events.Error, "failed to pull %s", remote)
			result.Failed++
			metrics.RecordTransferFile(string(req.Operation), false)
		}

		em.Emit(events.Progress{Current: i + 1, Total: total})
	}

	events.Logf(em, events.Info, "%s completed. %s: %d, failed: %d", verb, past, result.Success, result.Failed)
	e.log.Info("transfer finished", "operation", string(req.Operation), "success", result.Success, "failed", result.Failed)
	em.Emit(events.TransferComplete{Result: result})
	em.Emit(events.Progress{Current: 0, Total: 0})

	return result
}

func verbForms(op domain.Operation) (string, string) {
	if op.RemovesSource() {
		return "moving", "moved"
	}
	return "copying", "copied"
}
