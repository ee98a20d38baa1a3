package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/vk/flowgrid/internal/ctxlog"
	"github.com/vk/flowgrid/internal/events"
	"github.com/vk/flowgrid/internal/flowerr"
	"github.com/vk/flowgrid/internal/input"
	"github.com/vk/flowgrid/internal/propagate"
	"github.com/vk/flowgrid/internal/readiness"
	"github.com/vk/flowgrid/internal/state"
)

// Options tunes a Scheduler.
type Options struct {
	Order Order
	// MaxFiringsPerNode bounds re-firing inside cycles. Zero selects
	// DefaultMaxFiringsPerNode.
	MaxFiringsPerNode int
	// Observer receives node-level events. Nil discards them.
	Observer events.Observer
	// RunID is stamped on every event.
	RunID string
}

// Result summarizes a run.
type Result struct {
	// Fired lists node ids in firing order, one entry per firing.
	Fired []string
	// Stalled lists nodes that were considered but never became ready, in the
	// order they were first skipped.
	Stalled []string
}

// Scheduler executes a run over one graph.
type Scheduler struct {
	graph    Graph
	invoker  Invoker
	opts     Options
	observer events.Observer
}

// New creates a scheduler. The graph's edge values should already be cleared.
func New(g Graph, inv Invoker, opts Options) *Scheduler {
	obs := opts.Observer
	if obs == nil {
		obs = events.Discard
	}
	return &Scheduler{graph: g, invoker: inv, opts: opts, observer: obs}
}

// Run fires triggeredBy and everything its outputs reach. On failure the
// returned Result describes the run up to the failing firing, and edge values
// are left as the last successful firing wrote them.
func (s *Scheduler) Run(ctx context.Context, triggeredBy string) (*Result, error) {
	logger := ctxlog.FromContext(ctx)

	guard := NewGuard(s.opts.MaxFiringsPerNode)
	worklist := NewWorklist(s.opts.Order)
	var stalled []string
	skipped := make(map[string]bool)

	result := func() *Result {
		res := &Result{Fired: guard.Order()}
		for _, id := range stalled {
			if guard.Count(id) == 0 {
				res.Stalled = append(res.Stalled, id)
			}
		}
		return res
	}

	if _, err := s.graph.FindNode(triggeredBy); err != nil {
		return result(), err
	}
	worklist.Push(triggeredBy)

	for {
		id, ok := worklist.Pop()
		if !ok {
			break
		}
		if err := ctx.Err(); err != nil {
			return result(), err
		}

		n, err := s.graph.FindNode(id)
		if err != nil {
			return result(), err
		}
		if !guard.Eligible(id) {
			logger.Debug("Node already fired with current inputs, dropping.", "node_id", id)
			continue
		}

		if missing := readiness.Missing(n, s.graph); len(missing) > 0 {
			names := make([]string, len(missing))
			for i, in := range missing {
				names[i] = in.Name
			}
			s.emit(ctx, events.Event{Kind: events.NodeSkippedNotReady, NodeID: id, Missing: names})
			if !skipped[id] {
				skipped[id] = true
				stalled = append(stalled, id)
			}
			continue
		}

		if err := s.fire(ctx, n, guard, worklist); err != nil {
			return result(), err
		}
	}

	res := result()
	if cycle := findDeadlock(s.graph, res.Stalled, guard); cycle != nil {
		return res, &flowerr.CycleError{NodeIDs: cycle}
	}
	return res, nil
}

// fire runs one node end to end: input, invocation, propagation, and pushing
// what it feeds.
func (s *Scheduler) fire(ctx context.Context, n *state.Node, guard *Guard, worklist Worklist) error {
	if err := guard.Admit(n.ID); err != nil {
		return err
	}
	s.emit(ctx, events.Event{Kind: events.NodeStarted, NodeID: n.ID})

	doc, err := input.Build(ctx, n, s.graph)
	if err != nil {
		return asInvocationError(n, err)
	}
	out, err := s.invoker.Invoke(ctx, n, doc)
	if err != nil {
		return err
	}
	written, err := propagate.Propagate(ctx, n, out, s.graph)
	if err != nil {
		return err
	}

	// Count the firing before marking fed nodes so a node feeding itself is
	// seen as fed again.
	count := guard.Fired(n.ID)
	for _, e := range written {
		owner, err := s.graph.InletOwner(e.End)
		if err != nil {
			return err
		}
		guard.Fed(owner.ID)
	}
	s.emit(ctx, events.Event{Kind: events.NodeFired, NodeID: n.ID, Firing: count})

	downstream, err := s.graph.DownstreamNodeIDs(n.ID)
	if err != nil {
		return err
	}
	for _, id := range downstream {
		if guard.Eligible(id) {
			worklist.Push(id)
		}
	}
	return nil
}

func (s *Scheduler) emit(ctx context.Context, e events.Event) {
	e.RunID = s.opts.RunID
	e.Time = time.Now()
	s.observer.Observe(ctx, e)
}

func asInvocationError(n *state.Node, err error) error {
	var invErr *flowerr.InvocationError
	if errors.As(err, &invErr) {
		return err
	}
	return &flowerr.InvocationError{NodeID: n.ID, EntryPoint: n.Name, Err: err}
}
