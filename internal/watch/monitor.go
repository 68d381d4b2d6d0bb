// Package watch polls the attached device's connectivity on an
// interval and logs state transitions. It backs the `droidsweep
// watch` command.
package watch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/droidsweep/droidsweep/internal/domain"
	"github.com/droidsweep/droidsweep/internal/logger"
)

// State is the coarse connectivity state derived from one status probe.
type State string

const (
	// StateBridgeDown means the debug bridge executable is unavailable
	StateBridgeDown State = "bridge unavailable"

	// StateDisconnected means the bridge runs but tracks no device
	StateDisconnected State = "disconnected"

	// StateUnauthorized means a device is attached but has not
	// authorized this host
	StateUnauthorized State = "unauthorized"

	// StateNoStorage means a device is ready but its storage is not
	// readable
	StateNoStorage State = "storage inaccessible"

	// StateReady means a device is attached, authorized, and readable
	StateReady State = "ready"
)

// Classify reduces a status report to its connectivity state.
func Classify(report domain.StatusReport) State {
	switch {
	case !report.BridgeAvailable:
		return StateBridgeDown
	case len(report.Devices) == 0:
		return StateDisconnected
	case len(report.ReadyDevices()) == 0:
		return StateUnauthorized
	case !report.StorageAccessible:
		return StateNoStorage
	default:
		return StateReady
	}
}

// StatusProber runs one connectivity probe chain.
type StatusProber interface {
	Status(ctx context.Context) domain.StatusReport
}

// Stats is a snapshot of the monitor's runtime counters.
type Stats struct {
	Running      bool
	LastPollTime time.Time
	NextPollTime time.Time
	TotalPolls   int
	Transitions  int
	State        State
}

// Monitor polls a StatusProber on a fixed interval. A monitor runs
// once: after Stop it cannot be restarted.
type Monitor struct {
	interval time.Duration
	prober   StatusProber
	log      logger.Logger

	// Runtime state
	mu          sync.RWMutex
	running     bool
	stopped     bool      // Track if stopped to prevent restart
	stopOnce    sync.Once // Ensure Stop() is idempotent
	closeOnce   sync.Once // Ensure stoppedChan is closed exactly once
	stopChan    chan struct{}
	stoppedChan chan struct{}

	// Statistics
	stats struct {
		lastPollTime time.Time
		nextPollTime time.Time
		totalPolls   int
		transitions  int
		state        State
	}
}

// NewMonitor creates a connectivity monitor.
func NewMonitor(interval time.Duration, prober StatusProber, log logger.Logger) (*Monitor, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("interval must be positive, got %v", interval)
	}
	if prober == nil {
		return nil, fmt.Errorf("status prober cannot be nil")
	}
	if log == nil {
		log = logger.Get()
	}

	return &Monitor{
		interval:    interval,
		prober:      prober,
		log:         log,
		stopChan:    make(chan struct{}),
		stoppedChan: make(chan struct{}),
	}, nil
}

// Start begins the polling loop. The first probe runs immediately,
// not one interval in.
func (m *Monitor) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return fmt.Errorf("monitor is already running")
	}
	if m.stopped {
		return fmt.Errorf("monitor cannot be restarted after stop")
	}

	m.running = true
	m.stats.nextPollTime = time.Now()

	go m.run(ctx)

	return nil
}

// run is the main polling loop
func (m *Monitor) run(ctx context.Context) {
	defer m.closeOnce.Do(func() {
		m.mu.Lock()
		m.stopped = true
		m.running = false
		m.mu.Unlock()
		close(m.stoppedChan)
	})

	// Probe once up front so the current state is known before the
	// first tick.
	m.poll(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-m.stopChan:
			return
		case <-ticker.C:
			m.poll(ctx)
		}
	}
}

// poll runs one probe and records any state transition
func (m *Monitor) poll(ctx context.Context) {
	m.mu.Lock()
	m.stats.lastPollTime = time.Now()
	m.stats.totalPolls++
	m.stats.nextPollTime = time.Now().Add(m.interval)
	previous := m.stats.state
	m.mu.Unlock()

	state := Classify(m.prober.Status(ctx))

	m.mu.Lock()
	m.stats.state = state
	if state != previous {
		m.stats.transitions++
	}
	m.mu.Unlock()

	if state == previous {
		return
	}

	// First poll has no previous state to report a transition from.
	if previous == "" {
		m.log.Info("device state", "state", string(state))
		return
	}

	switch state {
	case StateReady:
		m.log.Info("device connected", "previous", string(previous))
	case StateBridgeDown:
		m.log.Error("debug bridge became unavailable", "previous", string(previous))
	default:
		m.log.Warn("device state changed",
			"previous", string(previous), "state", string(state))
	}
}

// Stop gracefully stops the monitor and waits for the loop to exit.
func (m *Monitor) Stop() error {
	m.mu.RLock()
	if !m.running {
		m.mu.RUnlock()
		return fmt.Errorf("monitor is not running")
	}
	m.mu.RUnlock()

	m.stopOnce.Do(func() {
		close(m.stopChan)
	})

	<-m.stoppedChan

	m.mu.Lock()
	m.stopped = true
	m.mu.Unlock()

	return nil
}

// Stats returns a snapshot of the monitor's counters.
func (m *Monitor) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return Stats{
		Running:      m.running,
		LastPollTime: m.stats.lastPollTime,
		NextPollTime: m.stats.nextPollTime,
		TotalPolls:   m.stats.totalPolls,
		Transitions:  m.stats.transitions,
		State:        m.stats.state,
	}
}
