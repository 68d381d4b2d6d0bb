package domain

// Operation identifies one kind of device pipeline run.
type Operation string

const (
	// OperationScan hashes a file list and groups duplicates
	OperationScan Operation = "scan"

	// OperationCopy pulls files into the organized local tree
	OperationCopy Operation = "copy"

	// OperationMove copies and then deletes the remote original
	OperationMove Operation = "move"

	// OperationCloudBackup stages files and uploads them to an object store
	OperationCloudBackup Operation = "cloud_backup"

	// OperationCloudRestore downloads a container back to local disk
	OperationCloudRestore Operation = "cloud_restore"
)

// IsValid checks if the operation is a known value
func (o Operation) IsValid() bool {
	switch o {
	case OperationScan, OperationCopy, OperationMove, OperationCloudBackup, OperationCloudRestore:
		return true
	}
	return false
}

// RemovesSource reports whether the operation deletes the remote file
// after a successful transfer.
func (o Operation) RemovesSource() bool {
	return o == OperationMove
}

// TransferResult summarizes one completed (or cancelled) operation.
type TransferResult struct {
	Operation Operation
	Success   int
	Failed    int
}

// Total returns the number of files the operation concluded on,
// processed or failed. Files never reached before a cancel are not
// part of the total.
func (r TransferResult) Total() int {
	return r.Success + r.Failed
}

// DeviceState is the connection state reported by the bridge for one device.
type DeviceState string

const (
	DeviceStateReady        DeviceState = "device"
	DeviceStateUnauthorized DeviceState = "unauthorized"
	DeviceStateOffline      DeviceState = "offline"
	DeviceStateUnknown      DeviceState = "unknown"
)

// DeviceInfo describes one attached device from the bridge device list.
type DeviceInfo struct {
	Serial string
	State  DeviceState

	// Model is the raw product model string when the bridge reports one
	Model string
}

// StatusReport is the result of the connectivity status check.
// Each field reflects how far the probe chain got; a missing bridge
// leaves everything after BridgeAvailable at its zero value.
type StatusReport struct {
	BridgeAvailable   bool
	Version           string
	Devices           []DeviceInfo
	StorageAccessible bool
}

// Ready reports whether a device is attached, authorized, and its
// storage is readable.
func (s StatusReport) Ready() bool {
	return s.BridgeAvailable && s.StorageAccessible && len(s.ReadyDevices()) > 0
}

// ReadyDevices returns the attached devices in the ready state.
// Unauthorized and offline entries are listed in Devices but cannot
// serve file operations.
func (s StatusReport) ReadyDevices() []DeviceInfo {
	var ready []DeviceInfo
	for _, d := range s.Devices {
		if d.State == DeviceStateReady {
			ready = append(ready, d)
		}
	}
	return ready
}
