package graph

import (
	"sync"

	"github.com/vk/flowgrid/internal/flowerr"
	"github.com/vk/flowgrid/internal/state"
)

// View is the read-only side of the Model.
type View interface {
	// FindNode resolves a node id, failing with a *flowerr.ReferenceError.
	FindNode(id string) (*state.Node, error)
	// IncomingEdges returns copies of the edges ending at inletID, in
	// declaration order.
	IncomingEdges(inletID string) []state.Edge
	// OutgoingEdges returns copies of the edges starting at outletID, in
	// declaration order.
	OutgoingEdges(outletID string) []state.Edge
}

// Writer is the only way to put a value on an edge.
type Writer interface {
	OutgoingEdges(outletID string) []state.Edge
	SetLastValue(edgeID string, raw string) error
}

// Model indexes a state.Graph for lookups and adjacency queries.
type Model struct {
	// mutex guards the LastValue fields of the underlying edges.
	mutex sync.RWMutex
	graph *state.Graph

	nodes       map[string]*state.Node
	edges       map[string]*state.Edge
	inletOwner  map[string]*state.Node
	outletOwner map[string]*state.Node
	// byStart and byEnd keep edges in declaration order.
	byStart map[string][]*state.Edge
	byEnd   map[string][]*state.Edge
}

// New indexes g and checks its referential integrity. The Model keeps g and
// writes edge values into it.
func New(g *state.Graph) (*Model, error) {
	m := &Model{
		graph:       g,
		nodes:       make(map[string]*state.Node, len(g.Nodes)),
		edges:       make(map[string]*state.Edge, len(g.Edges)),
		inletOwner:  make(map[string]*state.Node),
		outletOwner: make(map[string]*state.Node),
		byStart:     make(map[string][]*state.Edge),
		byEnd:       make(map[string][]*state.Edge),
	}

	for _, n := range g.Nodes {
		if _, dup := m.nodes[n.ID]; dup {
			return nil, &flowerr.ReferenceError{Kind: "node", ID: n.ID, Duplicate: true}
		}
		m.nodes[n.ID] = n
		for _, in := range n.Inlets {
			if _, dup := m.inletOwner[in.ID]; dup {
				return nil, &flowerr.ReferenceError{Kind: "inlet", ID: in.ID, Duplicate: true}
			}
			m.inletOwner[in.ID] = n
		}
		for _, out := range n.Outlets {
			if _, dup := m.outletOwner[out.ID]; dup {
				return nil, &flowerr.ReferenceError{Kind: "outlet", ID: out.ID, Duplicate: true}
			}
			m.outletOwner[out.ID] = n
		}
	}

	for _, e := range g.Edges {
		if _, dup := m.edges[e.ID]; dup {
			return nil, &flowerr.ReferenceError{Kind: "edge", ID: e.ID, Duplicate: true}
		}
		if _, ok := m.outletOwner[e.Start]; !ok {
			return nil, &flowerr.ReferenceError{Kind: "outlet", ID: e.Start, From: e.ID}
		}
		if _, ok := m.inletOwner[e.End]; !ok {
			return nil, &flowerr.ReferenceError{Kind: "inlet", ID: e.End, From: e.ID}
		}
		m.edges[e.ID] = e
		m.byStart[e.Start] = append(m.byStart[e.Start], e)
		m.byEnd[e.End] = append(m.byEnd[e.End], e)
	}

	return m, nil
}

// FindNode resolves a node id.
func (m *Model) FindNode(id string) (*state.Node, error) {
	n, ok := m.nodes[id]
	if !ok {
		return nil, &flowerr.ReferenceError{Kind: "node", ID: id}
	}
	return n, nil
}

// Nodes returns the graph's nodes in declaration order.
func (m *Model) Nodes() []*state.Node {
	return m.graph.Nodes
}

// InletOwner returns the node owning inletID.
func (m *Model) InletOwner(inletID string) (*state.Node, error) {
	n, ok := m.inletOwner[inletID]
	if !ok {
		return nil, &flowerr.ReferenceError{Kind: "inlet", ID: inletID}
	}
	return n, nil
}

// OutletOwner returns the node owning outletID.
func (m *Model) OutletOwner(outletID string) (*state.Node, error) {
	n, ok := m.outletOwner[outletID]
	if !ok {
		return nil, &flowerr.ReferenceError{Kind: "outlet", ID: outletID}
	}
	return n, nil
}

// IncomingEdges implements View.
func (m *Model) IncomingEdges(inletID string) []state.Edge {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return copyEdges(m.byEnd[inletID])
}

// OutgoingEdges implements View.
func (m *Model) OutgoingEdges(outletID string) []state.Edge {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return copyEdges(m.byStart[outletID])
}

// DownstreamNodeIDs returns the ids of nodes owning an inlet fed by any of
// nodeID's outlets. Ids are unique and ordered by the first edge, in
// declaration order, that reaches them.
func (m *Model) DownstreamNodeIDs(nodeID string) ([]string, error) {
	n, err := m.FindNode(nodeID)
	if err != nil {
		return nil, err
	}

	outlets := make(map[string]struct{}, len(n.Outlets))
	for _, out := range n.Outlets {
		outlets[out.ID] = struct{}{}
	}

	seen := make(map[string]struct{})
	var ids []string
	for _, e := range m.graph.Edges {
		if _, ok := outlets[e.Start]; !ok {
			continue
		}
		owner, err := m.InletOwner(e.End)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[owner.ID]; dup {
			continue
		}
		seen[owner.ID] = struct{}{}
		ids = append(ids, owner.ID)
	}
	return ids, nil
}

// SetLastValue stores raw as the value of edge edgeID.
func (m *Model) SetLastValue(edgeID string, raw string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	e, ok := m.edges[edgeID]
	if !ok {
		return &flowerr.ReferenceError{Kind: "edge", ID: edgeID}
	}
	v := raw
	e.LastValue = &v
	return nil
}

// ClearValues empties every edge.
func (m *Model) ClearValues() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.graph.ClearEdgeValues()
}

func copyEdges(src []*state.Edge) []state.Edge {
	if len(src) == 0 {
		return nil
	}
	out := make([]state.Edge, len(src))
	for i, e := range src {
		out[i] = *e
	}
	return out
}
