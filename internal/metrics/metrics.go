// Package metrics provides Prometheus metrics for droidsweep.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Bridge command metrics
	bridgeCommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "droidsweep_bridge_commands_total",
			Help: "Total debug bridge commands executed",
		},
		[]string{"command", "status"},
	)

	bridgeCommandDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "droidsweep_bridge_command_duration_seconds",
			Help:    "Debug bridge command duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"command"},
	)

	// Hashing metrics
	hashTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "droidsweep_hash_total",
			Help: "Total content hash computations by method",
		},
		[]string{"method", "status"},
	)

	// Transfer metrics
	transferFilesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "droidsweep_transfer_files_total",
			Help: "Total files processed by transfer operations",
		},
		[]string{"operation", "status"},
	)

	conflictDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "droidsweep_conflict_decisions_total",
			Help: "Total conflict decisions by outcome",
		},
		[]string{"decision"},
	)

	// Cloud metrics
	cloudOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "droidsweep_cloud_operations_total",
			Help: "Total object store operations",
		},
		[]string{"operation", "status"},
	)

	cloudOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "droidsweep_cloud_operation_duration_seconds",
			Help:    "Object store operation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	cloudBytesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "droidsweep_cloud_bytes_total",
			Help: "Total bytes moved to or from the object store",
		},
		[]string{"direction"},
	)

	// Staging metrics
	stagedBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "droidsweep_staged_bytes_total",
			Help: "Total bytes staged locally for hashing or upload",
		},
	)
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordBridgeCommand records one debug bridge command execution.
func RecordBridgeCommand(command string, duration time.Duration, success bool) {
	bridgeCommandsTotal.WithLabelValues(command, statusLabel(success)).Inc()
	bridgeCommandDuration.WithLabelValues(command).Observe(duration.Seconds())
}

// RecordHash records a hash computation. Method is one of
// remote_md5, remote_sha1, local_md5.
func RecordHash(method string, success bool) {
	hashTotal.WithLabelValues(method, statusLabel(success)).Inc()
}

// RecordTransferFile records one per-file transfer outcome.
func RecordTransferFile(operation string, success bool) {
	transferFilesTotal.WithLabelValues(operation, statusLabel(success)).Inc()
}

// RecordConflictDecision records a conflict decision outcome.
func RecordConflictDecision(decision string) {
	conflictDecisionsTotal.WithLabelValues(decision).Inc()
}

// RecordCloudOperation records an object store call.
func RecordCloudOperation(operation string, duration time.Duration, success bool) {
	cloudOperationsTotal.WithLabelValues(operation, statusLabel(success)).Inc()
	cloudOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// AddCloudBytes accumulates transferred bytes; direction is upload or download.
func AddCloudBytes(direction string, n int64) {
	cloudBytesTotal.WithLabelValues(direction).Add(float64(n))
}

// AddStagedBytes accumulates bytes staged to local disk.
func AddStagedBytes(n int64) {
	stagedBytesTotal.Add(float64(n))
}

func statusLabel(success bool) string {
	if success {
		return "success"
	}
	return "error"
}
