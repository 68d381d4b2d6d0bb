package adb

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/droidsweep/droidsweep/internal/domain"
	"github.com/droidsweep/droidsweep/internal/logger"
	"github.com/droidsweep/droidsweep/internal/metrics"
)

// StorageRoot is the shared storage mount probed by the status check
// and used as the default browse root.
const StorageRoot = "/sdcard/"

// Device exposes the remote filesystem of the attached device.
// Every method degrades on failure: empty results and ok=false,
// never an error value, matching the transport's best-effort nature.
type Device struct {
	runner Runner
	log    logger.Logger
}

// NewDevice wraps a runner. A nil logger falls back to the global one.
func NewDevice(runner Runner, log logger.Logger) *Device {
	if log == nil {
		log = logger.Get()
	}
	return &Device{runner: runner, log: log}
}

// List returns the entries of a remote directory. Command failure
// yields an empty listing and a warning, not an error.
func (d *Device) List(ctx context.Context, remotePath string) []domain.RemoteEntry {
	res := d.runner.Run(ctx, timeoutList, "shell", "ls", "-l", shellQuote(remotePath))
	if !res.OK {
		d.log.Warn("directory listing failed", "path", remotePath, "stderr", res.Stderr)
		return nil
	}

	var entries []domain.RemoteEntry
	for _, line := range strings.Split(res.Stdout, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if entry, ok := parseListLine(line); ok {
			entries = append(entries, entry)
		}
	}
	return entries
}

// FindFiles walks a remote directory tree and returns every regular
// file under it. Empty on failure.
func (d *Device) FindFiles(ctx context.Context, remotePath string) []string {
	res := d.runner.Run(ctx, timeoutFind, "shell", "find", shellQuote(remotePath), "-type", "f", "-print")
	if !res.OK {
		d.log.Warn("remote find failed", "path", remotePath, "stderr", res.Stderr)
		return nil
	}

	var files []string
	for _, line := range strings.Split(res.Stdout, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			files = append(files, line)
		}
	}
	return files
}

// ModTime returns the remote file's modification time.
func (d *Device) ModTime(ctx context.Context, remotePath string) (time.Time, bool) {
	res := d.runner.Run(ctx, timeoutStat, "shell", "stat", "-c", "%Y", shellQuote(remotePath))
	if !res.OK {
		return time.Time{}, false
	}
	sec, ok := parseInt(strings.TrimSpace(res.Stdout))
	if !ok {
		return time.Time{}, false
	}
	return time.Unix(sec, 0), true
}

// Size returns the remote file's size in bytes, read from the size
// column of a long listing.
func (d *Device) Size(ctx context.Context, remotePath string) (int64, bool) {
	res := d.runner.Run(ctx, timeoutStat, "shell", "ls", "-l", shellQuote(remotePath))
	if !res.OK {
		return 0, false
	}
	parts := strings.Fields(res.Stdout)
	if len(parts) <= 4 {
		return 0, false
	}
	return parseInt(parts[4])
}

// HashRemote computes a content hash on the device itself, trying
// md5sum first and sha1sum as a fallback. ok=false means the shell
// supports neither and the caller must hash a pulled copy instead.
func (d *Device) HashRemote(ctx context.Context, remotePath string) (string, bool) {
	res := d.runner.Run(ctx, timeoutHash, "shell", "md5sum", remotePath)
	if res.OK && strings.TrimSpace(res.Stdout) != "" {
		metrics.RecordHash("remote_md5", true)
		return strings.ToLower(strings.Fields(res.Stdout)[0]), true
	}
	metrics.RecordHash("remote_md5", false)

	res = d.runner.Run(ctx, timeoutHash, "shell", "sha1sum", remotePath)
	if res.OK && strings.TrimSpace(res.Stdout) != "" {
		metrics.RecordHash("remote_sha1", true)
		return strings.ToLower(strings.Fields(res.Stdout)[0]), true
	}
	metrics.RecordHash("remote_sha1", false)

	return "", false
}

// Delete removes a remote path: recursively when it ends with a
// separator, as a plain unlink otherwise. Returns success plus the
// shell's error text.
func (d *Device) Delete(ctx context.Context, remotePath string) (bool, string) {
	trimmed := strings.TrimSpace(remotePath)
	flag := "-f"
	if strings.HasSuffix(trimmed, "/") {
		flag = "-r"
	}
	res := d.runner.Run(ctx, timeoutDelete, "shell", "rm", flag, shellQuote(trimmed))
	return res.OK, res.Stderr
}

// Pull stages the remote file into localDir and returns the final
// local path. The transfer lands in a temp file first whose name is
// derived from the remote path, so files sharing a basename can never
// collide mid-pull; the temp is then renamed over any existing file.
// On failure the temp file is removed and ok is false.
func (d *Device) Pull(ctx context.Context, remotePath, localDir string) (string, bool) {
	localPath := filepath.Join(localDir, path.Base(remotePath))
	tempPath := filepath.Join(localDir, stageName(remotePath))

	res := d.runner.Run(ctx, timeoutPull, "pull", remotePath, tempPath)
	if res.OK {
		if info, err := os.Stat(tempPath); err == nil {
			metrics.AddStagedBytes(info.Size())
			os.Remove(localPath)
			if err := os.Rename(tempPath, localPath); err == nil {
				return localPath, true
			}
		}
	} else {
		d.log.Warn("pull failed", "path", remotePath, "stderr", res.Stderr)
	}

	os.Remove(tempPath)
	return "", false
}

// stageName derives the collision-free temp name for a staged pull:
// eight hex chars of the remote path's digest, the basename, and a
// .tmp suffix.
func stageName(remotePath string) string {
	sum := sha256.Sum256([]byte(remotePath))
	return hex.EncodeToString(sum[:])[:8] + "_" + path.Base(remotePath) + ".tmp"
}

// shellQuote wraps a path for the device shell, which re-parses the
// joined argument string on its side of the bridge. Paths made of
// plain filename characters pass through untouched.
func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	safe := func(r rune) bool {
		return r == '_' || r == '@' || r == '%' || r == '+' || r == '=' ||
			r == ':' || r == ',' || r == '.' || r == '/' || r == '-' ||
			(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
	}
	if !strings.ContainsFunc(s, func(r rune) bool { return !safe(r) }) {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}
