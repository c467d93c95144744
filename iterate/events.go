package iterate

import (
	"sync"
	"time"
)

// EventKind identifies the type of loop event.
type EventKind string

const (
	EventRunStart       EventKind = "run_start"
	EventRunEnd         EventKind = "run_end"
	EventIterationStart EventKind = "iteration_start"
	EventSnapshotTaken  EventKind = "snapshot_taken"
	EventModelResponse  EventKind = "model_response"
	EventPatchApplied   EventKind = "patch_applied"
	EventCommandsRun    EventKind = "commands_run"
	EventCommitted      EventKind = "committed"
	EventNoProposal     EventKind = "no_proposal"
	EventError          EventKind = "error"
)

// LoopEvent is a typed event emitted by the iteration loop.
type LoopEvent struct {
	Kind      EventKind              `json:"kind"`
	Timestamp time.Time              `json:"timestamp"`
	RunID     string                 `json:"run_id"`
	Iteration int                    `json:"iteration,omitempty"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

// EventEmitter delivers typed events to the host application via a channel.
type EventEmitter struct {
	runID     string
	iteration int
	ch        chan LoopEvent
	closed    bool
	mu        sync.Mutex
}

// NewEventEmitter creates a new EventEmitter with a buffered channel.
func NewEventEmitter(runID string, bufferSize int) *EventEmitter {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	return &EventEmitter{
		runID: runID,
		ch:    make(chan LoopEvent, bufferSize),
	}
}

// SetIteration sets the iteration number stamped on subsequent events.
func (e *EventEmitter) SetIteration(n int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.iteration = n
}

// Emit sends an event to the channel. If the emitter is closed, the event is
// silently dropped.
func (e *EventEmitter) Emit(kind EventKind, data map[string]interface{}) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	event := LoopEvent{
		Kind:      kind,
		Timestamp: time.Now(),
		RunID:     e.runID,
		Iteration: e.iteration,
		Data:      data,
	}
	select {
	case e.ch <- event:
	default:
		// Channel full; drop event to avoid blocking the loop.
	}
}

// Events returns the read-only event channel.
func (e *EventEmitter) Events() <-chan LoopEvent {
	return e.ch
}

// Close closes the event channel. Safe to call multiple times.
func (e *EventEmitter) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.closed {
		e.closed = true
		close(e.ch)
	}
}
