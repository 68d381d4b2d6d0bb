package adb

import (
	"fmt"
	"strings"

	"github.com/droidsweep/droidsweep/internal/domain"
)

const (
	sizeKB = int64(1024)
	sizeMB = sizeKB * 1024
	sizeGB = sizeMB * 1024
)

// parseListLine turns one `ls -l` output line into an entry.
// Toybox and older toolbox builds disagree on the date columns: when
// the seventh token is a clock time (one colon) the name starts at
// token eight, otherwise at token nine. Lines with fewer than six
// tokens, the `.`/`..` entries, and anything that is neither a file
// nor a directory are dropped.
func parseListLine(line string) (domain.RemoteEntry, bool) {
	parts := strings.Fields(line)
	if len(parts) < 6 {
		return domain.RemoteEntry{}, false
	}

	var name string
	if len(parts) >= 7 && strings.Count(parts[6], ":") == 1 {
		name = strings.Join(parts[7:], " ")
	} else if len(parts) >= 8 {
		name = strings.Join(parts[8:], " ")
	}
	if name == "" || name == "." || name == ".." {
		return domain.RemoteEntry{}, false
	}

	perms := parts[0]
	switch {
	case strings.HasPrefix(perms, "d"):
		return domain.RemoteEntry{Name: name + "/", Size: "-", IsDir: true}, true
	case strings.HasPrefix(perms, "-"):
		var size int64
		if n, ok := parseInt(parts[4]); ok {
			size = n
		}
		return domain.RemoteEntry{Name: name, Size: formatListSize(size), IsDir: false}, true
	default:
		return domain.RemoteEntry{}, false
	}
}

// formatListSize renders a byte count the way the listing presents it:
// strictly-greater-than thresholds at each power of 1024.
func formatListSize(n int64) string {
	switch {
	case n > sizeGB:
		return fmt.Sprintf("%.2f GB", float64(n)/float64(sizeGB))
	case n > sizeMB:
		return fmt.Sprintf("%.2f MB", float64(n)/float64(sizeMB))
	case n > sizeKB:
		return fmt.Sprintf("%.1f KB", float64(n)/float64(sizeKB))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

// parseInt parses a non-negative decimal integer. Unlike
// strconv.ParseInt it rejects signs and whitespace, matching the
// strictly-numeric size and timestamp fields the shell emits.
func parseInt(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	var n int64
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int64(r-'0')
	}
	return n, true
}

// parseDeviceList parses `devices -l` output into device descriptors.
// The first line is the banner; remaining lines are
// "<serial> <state> [key:value ...]".
func parseDeviceList(out string) []domain.DeviceInfo {
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) <= 1 {
		return nil
	}

	var devices []domain.DeviceInfo
	for _, line := range lines[1:] {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}

		info := domain.DeviceInfo{Serial: fields[0]}
		switch fields[1] {
		case "device":
			info.State = domain.DeviceStateReady
		case "unauthorized":
			info.State = domain.DeviceStateUnauthorized
		case "offline":
			info.State = domain.DeviceStateOffline
		default:
			info.State = domain.DeviceStateUnknown
		}

		for _, field := range fields[2:] {
			if v, ok := strings.CutPrefix(field, "model:"); ok {
				info.Model = v
			}
		}

		devices = append(devices, info)
	}
	return devices
}
