package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vk/flowgrid/internal/ctxlog"
	"github.com/vk/flowgrid/internal/events"
	"github.com/vk/flowgrid/internal/graph"
	"github.com/vk/flowgrid/internal/scheduler"
	"github.com/vk/flowgrid/internal/state"
	"github.com/vk/flowgrid/internal/typecheck"
	"github.com/vk/flowgrid/internal/unit"
)

// Invoker runs and describes compute units. *unit.Invoker implements it.
type Invoker interface {
	scheduler.Invoker
	Describe(ctx context.Context, n *state.Node) (*unit.Descriptor, error)
}

// Options configures an Engine.
type Options struct {
	Order             scheduler.Order
	MaxFiringsPerNode int
	// Observer receives run and node events. Nil discards them.
	Observer events.Observer
}

// Result describes a finished or failed run.
type Result struct {
	RunID string
	// Fired lists node ids in firing order, one entry per firing.
	Fired []string
	// Stalled lists nodes that were visited but never became ready.
	Stalled []string
}

// Engine executes runs over State documents.
type Engine struct {
	invoker Invoker
	opts    Options
}

// New creates an engine.
func New(inv Invoker, opts Options) *Engine {
	if opts.Observer == nil {
		opts.Observer = events.Discard
	}
	return &Engine{invoker: inv, opts: opts}
}

// Run executes st starting from triggeredBy. The returned Result is non-nil
// whenever the run started, including failed runs.
func (e *Engine) Run(ctx context.Context, st *state.State, triggeredBy string) (*Result, error) {
	runID := uuid.NewString()
	ctx = ctxlog.With(ctx, "run_id", runID)
	logger := ctxlog.FromContext(ctx)
	result := &Result{RunID: runID}

	st.Graph.ClearEdgeValues()
	e.emit(ctx, events.Event{RunID: runID, Kind: events.RunStarted, NodeID: triggeredBy})

	model, err := graph.New(&st.Graph)
	if err != nil {
		return result, e.fail(ctx, runID, err)
	}
	logger.Debug("Graph indexed.", "nodes", len(st.Graph.Nodes), "edges", len(st.Graph.Edges))

	sched := scheduler.New(model, e.invoker, scheduler.Options{
		Order:             e.opts.Order,
		MaxFiringsPerNode: e.opts.MaxFiringsPerNode,
		Observer:          e.opts.Observer,
		RunID:             runID,
	})
	res, err := sched.Run(ctx, triggeredBy)
	if res != nil {
		result.Fired = res.Fired
		result.Stalled = res.Stalled
	}
	if err != nil {
		return result, e.fail(ctx, runID, err)
	}

	e.emit(ctx, events.Event{RunID: runID, Kind: events.RunFinished, Firing: len(result.Fired)})
	return result, nil
}

// Describe asks the unit behind nodeID for its declared ports.
func (e *Engine) Describe(ctx context.Context, st *state.State, nodeID string) (*unit.Descriptor, error) {
	model, err := graph.New(&st.Graph)
	if err != nil {
		return nil, err
	}
	n, err := model.FindNode(nodeID)
	if err != nil {
		return nil, err
	}
	return e.invoker.Describe(ctx, n)
}

// Validate checks st without running it: references must resolve and edge
// types must be compatible. With withDescriptors set, every node's ports are
// also compared against its unit's descriptor. All problems found are joined
// into the returned error.
func (e *Engine) Validate(ctx context.Context, st *state.State, withDescriptors bool) error {
	logger := ctxlog.FromContext(ctx)

	if _, err := graph.New(&st.Graph); err != nil {
		return err
	}

	var errs []error
	if err := typecheck.CheckEdges(&st.Graph); err != nil {
		errs = append(errs, err)
	}
	if withDescriptors {
		for _, n := range st.Graph.Nodes {
			d, err := e.invoker.Describe(ctx, n)
			if err != nil {
				errs = append(errs, fmt.Errorf("describe: %w", err))
				continue
			}
			if err := typecheck.CheckDescriptor(n, d); err != nil {
				errs = append(errs, err)
			}
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	logger.Debug("State is valid.", "nodes", len(st.Graph.Nodes), "edges", len(st.Graph.Edges))
	return nil
}

func (e *Engine) fail(ctx context.Context, runID string, err error) error {
	e.emit(ctx, events.Event{RunID: runID, Kind: events.RunFailed, Err: err})
	return err
}

func (e *Engine) emit(ctx context.Context, ev events.Event) {
	ev.Time = time.Now()
	e.opts.Observer.Observe(ctx, ev)
}
