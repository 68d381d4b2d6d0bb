// Package adb drives the attached device through the debug bridge
// executable. Every remote interaction funnels through one command
// primitive that captures stdout/stderr, applies a per-call timeout,
// and reports outcome as a value instead of an error: callers degrade
// on failure, they never unwind.
package adb

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/droidsweep/droidsweep/internal/metrics"
)

// Per-call budgets. Pull gets the long budget since it moves file
// contents; find walks whole directory trees on slow flash storage.
const (
	timeoutVersion = 2 * time.Second
	timeoutDevices = 5 * time.Second
	timeoutGetprop = 5 * time.Second
	timeoutList    = 20 * time.Second
	timeoutStat    = 10 * time.Second
	timeoutProbe   = 10 * time.Second
	timeoutHash    = 60 * time.Second
	timeoutDelete  = 60 * time.Second
	timeoutFind    = 120 * time.Second
	timeoutPull    = 300 * time.Second
)

// Result is the outcome of one bridge command. OK is false on nonzero
// exit, timeout, or a missing executable; the cause lands in Stderr.
type Result struct {
	OK     bool
	Stdout string
	Stderr string
}

// Runner executes one debug bridge command.
type Runner interface {
	Run(ctx context.Context, timeout time.Duration, args ...string) Result
}

// ExecRunner invokes the configured bridge binary as a subprocess.
type ExecRunner struct {
	bin    string
	serial string
}

// NewExecRunner creates a runner for the given binary. A non-empty
// serial targets that device on every call.
func NewExecRunner(bin, serial string) *ExecRunner {
	return &ExecRunner{bin: bin, serial: serial}
}

// Run executes the command and never returns an error: all failure
// modes collapse into Result{OK: false}.
func (r *ExecRunner) Run(ctx context.Context, timeout time.Duration, args ...string) Result {
	cmdArgs := args
	if r.serial != "" {
		cmdArgs = append([]string{"-s", r.serial}, args...)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.bin, cmdArgs...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	metrics.RecordBridgeCommand(commandFamily(args), time.Since(start), err == nil)

	if err != nil {
		msg := strings.TrimRight(stderr.String(), "\n")
		switch {
		case errors.Is(err, exec.ErrNotFound):
			msg = fmt.Sprintf("debug bridge executable not found: %s", r.bin)
		case errors.Is(ctx.Err(), context.DeadlineExceeded):
			msg = fmt.Sprintf("command timed out after %s: %s %s", timeout, r.bin, strings.Join(cmdArgs, " "))
		}
		if msg == "" {
			msg = err.Error()
		}
		return Result{OK: false, Stdout: stdout.String(), Stderr: msg}
	}

	return Result{OK: true, Stdout: stdout.String(), Stderr: stderr.String()}
}

// commandFamily reduces an argument list to a bounded metric label:
// the bridge verb, plus the shell applet for shell commands.
func commandFamily(args []string) string {
	if len(args) == 0 {
		return "unknown"
	}
	if args[0] == "shell" && len(args) > 1 {
		return "shell " + args[1]
	}
	return args[0]
}
