package main

import (
	"context"
	"fmt"
	"os"

	"github.com/droidsweep/droidsweep/internal/confirm"
	"github.com/droidsweep/droidsweep/internal/domain"
	"github.com/droidsweep/droidsweep/internal/events"
	"github.com/droidsweep/droidsweep/internal/progress"
	"github.com/droidsweep/droidsweep/internal/service"
)

const progressBarWidth = 30

// runOutput collects the terminal events of one drained operation.
type runOutput struct {
	scan   *domain.ScanReport
	result *domain.TransferResult
}

// drain renders an operation's event stream on the terminal until it
// closes, answering conflict questions through decider. Cancelling
// ctx asks the operation to stop; the stream is still drained to the
// end so terminal counts arrive.
func drain(ctx context.Context, h *service.Handle, svc *service.Service, decider confirm.Decider) runOutput {
	var out runOutput
	barShown := false

	clearBar := func() {
		if barShown {
			fmt.Fprint(os.Stdout, "\r\033[K")
			barShown = false
		}
	}

	done := ctx.Done()
	for {
		select {
		case <-done:
			fmt.Fprintln(os.Stderr, "cancelling, finishing the file in flight...")
			h.Cancel()
			done = nil

		case ev, ok := <-h.Events:
			if !ok {
				clearBar()
				return out
			}

			switch e := ev.(type) {
			case events.Log:
				clearBar()
				switch e.Level {
				case events.Warning:
					fmt.Fprintf(os.Stderr, "warning: %s\n", e.Message)
				case events.Error:
					fmt.Fprintf(os.Stderr, "error: %s\n", e.Message)
				default:
					fmt.Println(e.Message)
				}

			case events.Progress:
				if e.Total == 0 {
					clearBar()
					break
				}
				fmt.Printf("\r%s %d/%d",
					progress.Bar(int64(e.Current), int64(e.Total), progressBarWidth),
					e.Current, e.Total)
				barShown = true

			case events.ConfirmRequest:
				clearBar()
				d, err := decider.Decide(e.Filename)
				if err != nil {
					// A broken prompt counts as skip; leaving the
					// question pending would stall until the broker
					// times out.
					fmt.Fprintf(os.Stderr, "warning: conflict prompt failed (%v), skipping %s\n", err, e.Filename)
					d = confirm.DecisionSkip
				}
				svc.Resolve(e.ID, d)

			case events.ScanComplete:
				report := e.Report
				out.scan = &report

			case events.TransferComplete:
				result := e.Result
				out.result = &result
			}
		}
	}
}
