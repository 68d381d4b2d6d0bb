package adb

import (
	"testing"

	"github.com/droidsweep/droidsweep/internal/domain"
)

// TestParseListLine tests listing lines from the toybox and coreutils
// ls variants found on devices.
func TestParseListLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want domain.RemoteEntry
		ok   bool
	}{
		{
			name: "toybox file",
			line: "-rw-rw---- 1 root sdcard_rw 2048000 2024-03-11 09:31 photo.jpg",
			want: domain.RemoteEntry{Name: "photo.jpg", Size: "1.95 MB", IsDir: false},
			ok:   true,
		},
		{
			name: "toybox directory",
			line: "drwxrwx--x 2 root sdcard_rw 4096 2024-03-11 09:30 DCIM",
			want: domain.RemoteEntry{Name: "DCIM/", Size: "-", IsDir: true},
			ok:   true,
		},
		{
			name: "name with spaces",
			line: "-rw-rw---- 1 root sdcard_rw 500 2024-03-11 09:31 My Holiday Photo.jpg",
			want: domain.RemoteEntry{Name: "My Holiday Photo.jpg", Size: "500 B", IsDir: false},
			ok:   true,
		},
		{
			name: "seconds precision timestamp",
			line: "-rw-r--r-- 1 root sdcard_rw 4096 2024-03-11 09:31:02.123456789 +0100 notes.txt",
			want: domain.RemoteEntry{Name: "notes.txt", Size: "4.0 KB", IsDir: false},
			ok:   true,
		},
		{
			name: "symlink skipped",
			line: "lrwxrwxrwx 1 root root 21 2009-01-01 00:00 sdcard -> /storage/self/primary",
			ok:   false,
		},
		{
			name: "total banner skipped",
			line: "total 64",
			ok:   false,
		},
		{
			name: "dot entry skipped",
			line: "drwxrwx--x 2 root sdcard_rw 4096 2024-03-11 09:30 .",
			ok:   false,
		},
		{
			name: "dotdot entry skipped",
			line: "drwxrwx--x 4 root sdcard_rw 4096 2024-03-11 09:30 ..",
			ok:   false,
		},
		{
			name: "missing name skipped",
			line: "-rw-rw---- 1 root sdcard_rw 500 2024-03-11 09:31",
			ok:   false,
		},
		{
			name: "non-numeric size falls back to zero",
			line: "-rw-rw---- 1 root sdcard_rw ? 2024-03-11 09:31 odd.bin",
			want: domain.RemoteEntry{Name: "odd.bin", Size: "0 B", IsDir: false},
			ok:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseListLine(tt.line)
			if ok != tt.ok {
				t.Fatalf("parseListLine(%q) ok = %v, want %v", tt.line, ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("parseListLine(%q) = %+v, want %+v", tt.line, got, tt.want)
			}
		})
	}
}

// TestFormatListSize tests the human-readable size thresholds. Each
// boundary value stays in the smaller unit; one byte more tips over.
func TestFormatListSize(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1024 B"},
		{1025, "1.0 KB"},
		{1536, "1.5 KB"},
		{1048576, "1024.0 KB"},
		{1048577, "1.00 MB"},
		{2048000, "1.95 MB"},
		{1073741824, "1024.00 MB"},
		{1073741825, "1.00 GB"},
		{5368709120, "5.00 GB"},
	}

	for _, tt := range tests {
		if got := formatListSize(tt.n); got != tt.want {
			t.Errorf("formatListSize(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

// TestParseInt tests the strict decimal parser.
func TestParseInt(t *testing.T) {
	tests := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"0", 0, true},
		{"2048000", 2048000, true},
		{"007", 7, true},
		{"", 0, false},
		{"-5", 0, false},
		{" 12", 0, false},
		{"12a", 0, false},
		{"1.5", 0, false},
	}

	for _, tt := range tests {
		got, ok := parseInt(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("parseInt(%q) = %d, %v, want %d, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

// TestParseDeviceList tests device table parsing across states.
func TestParseDeviceList(t *testing.T) {
	out := `List of devices attached
emulator-5554          device product:sdk_gphone64_x86_64 model:sdk_gphone64_x86_64 device:emu64xa transport_id:1
R58M123ABC             unauthorized transport_id:2
0123456789ABCDEF       offline
`

	devices := parseDeviceList(out)
	if len(devices) != 3 {
		t.Fatalf("expected 3 devices, got %d", len(devices))
	}

	if devices[0].Serial != "emulator-5554" || devices[0].State != domain.DeviceStateReady {
		t.Errorf("device 0 = %+v, want ready emulator-5554", devices[0])
	}
	if devices[0].Model != "sdk_gphone64_x86_64" {
		t.Errorf("device 0 model = %q, want sdk_gphone64_x86_64", devices[0].Model)
	}
	if devices[1].State != domain.DeviceStateUnauthorized {
		t.Errorf("device 1 state = %q, want unauthorized", devices[1].State)
	}
	if devices[2].State != domain.DeviceStateOffline {
		t.Errorf("device 2 state = %q, want offline", devices[2].State)
	}
}

// TestParseDeviceListEmpty tests that a bare banner yields no devices.
func TestParseDeviceListEmpty(t *testing.T) {
	if devices := parseDeviceList("List of devices attached\n"); devices != nil {
		t.Errorf("expected nil, got %+v", devices)
	}
	if devices := parseDeviceList(""); devices != nil {
		t.Errorf("expected nil for empty output, got %+v", devices)
	}
}
