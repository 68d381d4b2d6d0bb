// Package events carries the live feed of a running operation: log
// lines, progress ticks, confirmation requests, and terminal results.
// Pipelines emit; whoever started the operation drains and renders.
package events

import (
	"fmt"

	"github.com/droidsweep/droidsweep/internal/domain"
)

// Event is the interface implemented by all operation events.
type Event interface {
	isEvent()
}

// Emitter is the interface for emitting events.
type Emitter interface {
	Emit(event Event)
}

// Level classifies a log event.
type Level string

const (
	Info    Level = "info"
	Warning Level = "warning"
	Error   Level = "error"
)

// Log is a human-readable line from a running operation.
type Log struct {
	Message string
	Level   Level
}

func (Log) isEvent() {}

// Progress is a counter tick. Current 0 of Total 0 resets the bar;
// every operation emits that reset as its last progress event.
type Progress struct {
	Current int
	Total   int
}

func (Progress) isEvent() {}

// ScanComplete carries the terminal result of a duplicate scan.
type ScanComplete struct {
	Report domain.ScanReport
}

func (ScanComplete) isEvent() {}

// TransferComplete carries the terminal counts of a copy, move, or
// cloud operation.
type TransferComplete struct {
	Result domain.TransferResult
}

func (TransferComplete) isEvent() {}

// ConfirmRequest asks the drainer to resolve a destination conflict.
// The answer goes back through the confirmation broker under the same
// ID, not through the event stream.
type ConfirmRequest struct {
	ID       uint64
	Filename string
}

func (ConfirmRequest) isEvent() {}

// Logf formats and emits a log event.
func Logf(e Emitter, level Level, format string, args ...any) {
	e.Emit(Log{Message: fmt.Sprintf(format, args...), Level: level})
}

// NullEmitter discards everything.
type NullEmitter struct{}

func (NullEmitter) Emit(Event) {}

// ChannelEmitter delivers events over a channel. One emitter serves
// one operation run: the operation goroutine emits, the starter
// drains until Close.
type ChannelEmitter struct {
	ch chan Event
}

// NewChannelEmitter creates an emitter with the given buffer size.
func NewChannelEmitter(buffer int) *ChannelEmitter {
	return &ChannelEmitter{ch: make(chan Event, buffer)}
}

// Emit delivers one event. It blocks when the buffer is full, so a
// drain loop must be running for the lifetime of the operation.
func (e *ChannelEmitter) Emit(event Event) {
	e.ch <- event
}

// Events returns the receive side of the stream.
func (e *ChannelEmitter) Events() <-chan Event {
	return e.ch
}

// Close ends the stream. Only the emitting side may call it, after
// the last event.
func (e *ChannelEmitter) Close() {
	close(e.ch)
}
