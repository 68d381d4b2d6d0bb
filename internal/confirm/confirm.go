// Package confirm resolves destination conflicts. A transfer that
// finds its target file already present asks the broker and blocks;
// whoever drains the event stream answers under the request's id, or
// the question times out and the file is counted as failed.
package confirm

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/droidsweep/droidsweep/internal/domain"
	"github.com/droidsweep/droidsweep/internal/events"
)

// Decision is the answer to a conflict question.
type Decision string

const (
	DecisionSkip      Decision = "skip"
	DecisionOverwrite Decision = "overwrite"
)

// IsValid checks if the decision is a known value.
func (d Decision) IsValid() bool {
	return d == DecisionSkip || d == DecisionOverwrite
}

// Broker matches conflict questions to answers by correlation id.
// Safe for concurrent use.
type Broker struct {
	nextID  atomic.Uint64
	mu      sync.Mutex
	pending map[uint64]chan Decision
}

// NewBroker creates an empty broker.
func NewBroker() *Broker {
	return &Broker{pending: make(map[uint64]chan Decision)}
}

// Ask emits a confirmation request for filename and blocks until an
// answer arrives, the timeout passes, or ctx ends. Timeout returns
// ErrConfirmTimeout.
func (b *Broker) Ask(ctx context.Context, em events.Emitter, filename string, timeout time.Duration) (Decision, error) {
	id := b.nextID.Add(1)
	ch := make(chan Decision, 1)

	b.mu.Lock()
	b.pending[id] = ch
	b.mu.Unlock()

	em.Emit(events.ConfirmRequest{ID: id, Filename: filename})

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case d := <-ch:
		return d, nil
	case <-timer.C:
		b.drop(id)
		return "", domain.ErrConfirmTimeout
	case <-ctx.Done():
		b.drop(id)
		return "", ctx.Err()
	}
}

// Resolve answers a pending question. It reports false when the id is
// unknown, already answered, or timed out.
func (b *Broker) Resolve(id uint64, d Decision) bool {
	b.mu.Lock()
	ch, ok := b.pending[id]
	if ok {
		delete(b.pending, id)
	}
	b.mu.Unlock()

	if !ok {
		return false
	}
	ch <- d
	return true
}

// Pending returns the number of unanswered questions.
func (b *Broker) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}

func (b *Broker) drop(id uint64) {
	b.mu.Lock()
	delete(b.pending, id)
	b.mu.Unlock()
}
