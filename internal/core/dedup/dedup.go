// Package dedup computes content hashes for device files and groups
// them into duplicate sets.
package dedup

import (
	"context"
	"path"

	"github.com/dustin/go-humanize"

	"github.com/droidsweep/droidsweep/internal/core/checksum"
	"github.com/droidsweep/droidsweep/internal/domain"
	"github.com/droidsweep/droidsweep/internal/events"
	"github.com/droidsweep/droidsweep/internal/logger"
	"github.com/droidsweep/droidsweep/internal/metrics"
	"github.com/droidsweep/droidsweep/internal/staging"
)

// DeviceFS is the slice of the device adapter hashing needs.
type DeviceFS interface {
	HashRemote(ctx context.Context, remotePath string) (string, bool)
	Size(ctx context.Context, remotePath string) (int64, bool)
	Pull(ctx context.Context, remotePath, localDir string) (string, bool)
}

// Hasher resolves a digest per remote file: on the device when its
// shell has a hash tool, otherwise by pulling a staged copy and
// hashing locally. Files above the pull ceiling are skipped rather
// than staged.
type Hasher struct {
	fs          DeviceFS
	calc        checksum.Calculator
	area        *staging.Area
	maxPullSize int64
	log         logger.Logger
}

// NewHasher wires a hasher. maxPullSize bounds the staged-fallback
// path only; remote hashing has no size limit.
func NewHasher(fs DeviceFS, calc checksum.Calculator, area *staging.Area, maxPullSize int64, log logger.Logger) *Hasher {
	if log == nil {
		log = logger.Get()
	}
	return &Hasher{fs: fs, calc: calc, area: area, maxPullSize: maxPullSize, log: log}
}

// ComputeHashes walks files in order and returns remotePath -> digest.
// Files it cannot hash (too large, pull failed, hash failed) are
// absent from the result and reported on the event stream. A false
// return means the context was cancelled; the partial map is
// discarded.
func (h *Hasher) ComputeHashes(ctx context.Context, files []string, em events.Emitter) (map[string]string, bool) {
	digests := make(map[string]string, len(files))
	total := len(files)

	for i, remote := range files {
		if ctx.Err() != nil {
			events.Logf(em, events.Warning, "duplicate detection cancelled")
			return nil, false
		}

		events.Logf(em, events.Info, "(%d/%d): %s", i+1, total, path.Base(remote))
		em.Emit(events.Progress{Current: i + 1, Total: total})

		if digest, ok := h.fs.HashRemote(ctx, remote); ok {
			digests[remote] = digest
			continue
		}

		if size, ok := h.fs.Size(ctx, remote); ok && size > h.maxPullSize {
			events.Logf(em, events.Warning, "skipping large file %s (%s)",
				path.Base(remote), humanize.IBytes(uint64(size)))
			continue
		}

		staged, ok := h.fs.Pull(ctx, remote, h.area.Dir())
		if !ok {
			events.Logf(em, events.Error, "failed to pull %s for detection", path.Base(remote))
			continue
		}

		digest, err := checksum.File(ctx, h.calc, staged, checksum.MD5)
		if err != nil {
			metrics.RecordHash("local_md5", false)
			events.Logf(em, events.Error, "failed to hash %s", path.Base(remote))
			h.log.Warn("local hash failed", "path", remote, "error", err.Error())
		} else {
			metrics.RecordHash("local_md5", true)
			digests[remote] = digest
		}
		h.area.Remove(staged)
	}

	return digests, true
}

// GroupByHash partitions files into duplicate groups and unique
// representatives. files fixes the order: groups appear by the first
// occurrence of their digest, members in scan order, and the first
// member of every bucket represents it in uniques. Files without a
// digest are ignored.
func GroupByHash(files []string, digests map[string]string) ([]domain.DuplicateGroup, []string) {
	buckets := make(map[string][]string, len(digests))
	var order []string

	for _, f := range files {
		digest, ok := digests[f]
		if !ok {
			continue
		}
		if _, seen := buckets[digest]; !seen {
			order = append(order, digest)
		}
		buckets[digest] = append(buckets[digest], f)
	}

	var groups []domain.DuplicateGroup
	var uniques []string
	for _, digest := range order {
		members := buckets[digest]
		if len(members) > 1 {
			groups = append(groups, domain.DuplicateGroup{Hash: digest, Files: members})
		}
		uniques = append(uniques, members[0])
	}

	return groups, uniques
}
