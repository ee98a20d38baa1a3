package testutil

import (
	"github.com/vk/flowgrid/internal/state"
)

// StateBuilder assembles state documents for tests without hand-written JSON.
type StateBuilder struct {
	st *state.State
}

// NodeOption customizes a node added through StateBuilder.Node.
type NodeOption func(n *state.Node)

// NewState starts an empty state document.
func NewState() *StateBuilder {
	return &StateBuilder{st: &state.State{Version: "0.1"}}
}

// Node adds a node. Unless WithSource is given, the source is "<name>.wasm".
func (b *StateBuilder) Node(id, name string, opts ...NodeOption) *StateBuilder {
	n := &state.Node{
		ID:      id,
		Name:    name,
		Source:  name + ".wasm",
		Inlets:  []*state.Inlet{},
		Outlets: []*state.Outlet{},
	}
	for _, opt := range opts {
		opt(n)
	}
	b.st.Graph.Nodes = append(b.st.Graph.Nodes, n)
	return b
}

// Edge wires outlet start to inlet end.
func (b *StateBuilder) Edge(id, start, end string) *StateBuilder {
	b.st.Graph.Edges = append(b.st.Graph.Edges, &state.Edge{ID: id, Start: start, End: end})
	return b
}

// State returns the assembled document.
func (b *StateBuilder) State() *state.State {
	return b.st
}

// WithSource sets the compute unit locator.
func WithSource(source string) NodeOption {
	return func(n *state.Node) { n.Source = source }
}

// WithContext sets the encoded static context.
func WithContext(raw string) NodeOption {
	return func(n *state.Node) { n.Context = raw }
}

// WithInlet adds an inlet of type "any".
func WithInlet(id, name string, required bool) NodeOption {
	return func(n *state.Node) {
		n.Inlets = append(n.Inlets, &state.Inlet{ID: id, Name: name, Type: "any", Required: required})
	}
}

// WithTypedInlet adds an inlet with an explicit type tag.
func WithTypedInlet(id, name, typ string, required bool) NodeOption {
	return func(n *state.Node) {
		n.Inlets = append(n.Inlets, &state.Inlet{ID: id, Name: name, Type: typ, Required: required})
	}
}

// WithOutlet adds an outlet of type "any".
func WithOutlet(id, name string) NodeOption {
	return func(n *state.Node) {
		n.Outlets = append(n.Outlets, &state.Outlet{ID: id, Name: name, Type: "any"})
	}
}

// WithTypedOutlet adds an outlet with an explicit type tag.
func WithTypedOutlet(id, name, typ string) NodeOption {
	return func(n *state.Node) {
		n.Outlets = append(n.Outlets, &state.Outlet{ID: id, Name: name, Type: typ})
	}
}

// Values returns edge id -> last value for every edge, "" meaning empty.
func Values(st *state.State) map[string]string {
	out := make(map[string]string, len(st.Graph.Edges))
	for _, e := range st.Graph.Edges {
		if e.LastValue == nil {
			out[e.ID] = ""
			continue
		}
		out[e.ID] = *e.LastValue
	}
	return out
}
