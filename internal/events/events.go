// Package events is the engine's observability hook. The scheduler reports
// what it does as structured events and never logs progress on its own;
// observers decide where the events go.
package events

import (
	"context"
	"sync"
	"time"
)

// Kind names what happened.
type Kind string

const (
	RunStarted          Kind = "run_started"
	NodeStarted         Kind = "node_started"
	NodeFired           Kind = "node_fired"
	NodeSkippedNotReady Kind = "node_skipped_not_ready"
	RunFinished         Kind = "run_finished"
	RunFailed           Kind = "run_failed"
)

// Event is one observation from a run.
type Event struct {
	RunID  string
	Kind   Kind
	NodeID string
	Time   time.Time
	// Firing is the node's firing count after a NodeFired event, or the
	// run's total firings on RunFinished.
	Firing int
	// Missing lists the names of required inlets that had no value when a
	// node was skipped.
	Missing []string
	// Err is set on RunFailed.
	Err error
}

// Observer receives events. Observe must not block for long; it runs on the
// scheduler's goroutine.
type Observer interface {
	Observe(ctx context.Context, e Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, e Event)

// Observe calls f.
func (f ObserverFunc) Observe(ctx context.Context, e Event) { f(ctx, e) }

// Discard drops every event.
var Discard Observer = ObserverFunc(func(context.Context, Event) {})

// Multi fans each event out to all observers in order. Nil entries are
// skipped.
func Multi(observers ...Observer) Observer {
	var list []Observer
	for _, o := range observers {
		if o != nil {
			list = append(list, o)
		}
	}
	return ObserverFunc(func(ctx context.Context, e Event) {
		for _, o := range list {
			o.Observe(ctx, e)
		}
	})
}

// Recorder keeps every event it sees. It is safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Observe appends e.
func (r *Recorder) Observe(_ context.Context, e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Of returns the recorded events of one kind.
func (r *Recorder) Of(kind Kind) []Event {
	var out []Event
	for _, e := range r.Events() {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// FiredNodes returns the ids of fired nodes in firing order.
func (r *Recorder) FiredNodes() []string {
	var ids []string
	for _, e := range r.Of(NodeFired) {
		ids = append(ids, e.NodeID)
	}
	return ids
}
