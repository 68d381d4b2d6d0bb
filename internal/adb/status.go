package adb

import (
	"context"
	"strings"

	"github.com/droidsweep/droidsweep/internal/domain"
)

// Version reports whether the bridge executable responds, and its
// version banner when it does.
func (d *Device) Version(ctx context.Context) (string, bool) {
	res := d.runner.Run(ctx, timeoutVersion, "version")
	if !res.OK {
		return "", false
	}
	return strings.TrimSpace(res.Stdout), true
}

// Devices lists the devices the bridge currently tracks.
func (d *Device) Devices(ctx context.Context) []domain.DeviceInfo {
	res := d.runner.Run(ctx, timeoutDevices, "devices", "-l")
	if !res.OK {
		return nil
	}
	return parseDeviceList(res.Stdout)
}

// StorageAccessible probes the shared storage root. Access counts
// only when the listing succeeds, produces output, and emits nothing
// on stderr; unauthorized devices typically fail the last condition.
func (d *Device) StorageAccessible(ctx context.Context) bool {
	res := d.runner.Run(ctx, timeoutProbe, "shell", "ls", "-A", StorageRoot)
	return res.OK && strings.TrimSpace(res.Stdout) != "" && strings.TrimSpace(res.Stderr) == ""
}

// Status runs the readiness chain: bridge version, device list,
// storage probe. Each stage runs only if the previous one passed, and
// the probe only when a ready device is attached.
func (d *Device) Status(ctx context.Context) domain.StatusReport {
	var report domain.StatusReport

	report.Version, report.BridgeAvailable = d.Version(ctx)
	if !report.BridgeAvailable {
		return report
	}

	report.Devices = d.Devices(ctx)
	if len(report.ReadyDevices()) == 0 {
		return report
	}

	report.StorageAccessible = d.StorageAccessible(ctx)
	return report
}

// Model returns the device's raw model property.
func (d *Device) Model(ctx context.Context) string {
	res := d.runner.Run(ctx, timeoutGetprop, "shell", "getprop", "ro.product.model")
	if !res.OK {
		return ""
	}
	return strings.TrimSpace(res.Stdout)
}

// Name returns a human-readable device name: the marketing name when
// the model is a known one, the raw model otherwise, and a fixed
// placeholder when the property is empty.
func (d *Device) Name(ctx context.Context) string {
	model := d.Model(ctx)
	if model == "" {
		return "Unknown Device"
	}
	if name, ok := marketingNames[model]; ok {
		return name
	}
	return model
}
