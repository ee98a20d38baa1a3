package scheduler

import (
	"context"

	"github.com/vk/flowgrid/internal/document"
	"github.com/vk/flowgrid/internal/graph"
	"github.com/vk/flowgrid/internal/state"
)

// Graph is what a run needs from the graph model. *graph.Model implements it.
type Graph interface {
	graph.View
	graph.Writer
	InletOwner(inletID string) (*state.Node, error)
	OutletOwner(outletID string) (*state.Node, error)
	DownstreamNodeIDs(nodeID string) ([]string, error)
}

// Invoker runs the compute unit behind a node. unit.Invoker is the production
// implementation.
type Invoker interface {
	Invoke(ctx context.Context, n *state.Node, doc document.Document) (*document.JSONOutput, error)
}

// Worklist holds candidate node ids.
type Worklist interface {
	Push(id string)
	// Pop removes the next candidate. ok is false when the list is empty.
	Pop() (id string, ok bool)
	Len() int
}
