// Package readiness decides whether a node may fire: every required inlet
// must have at least one incoming edge currently holding a value. Optional
// inlets never block.
//
// Nothing here is cached. Edge values change between visits, so callers must
// ask again every time they consider a node.
package readiness

import (
	"github.com/vk/flowgrid/internal/state"
)

// EdgeView is the slice of the graph model readiness needs.
type EdgeView interface {
	IncomingEdges(inletID string) []state.Edge
}

// IsReady reports whether all of n's required inlets are satisfied. A node with
// no required inlets is always ready.
func IsReady(n *state.Node, view EdgeView) bool {
	for _, in := range n.Inlets {
		if in.Required && !Satisfied(in, view) {
			return false
		}
	}
	return true
}

// Missing returns the required inlets of n that currently have no value, in
// declaration order.
func Missing(n *state.Node, view EdgeView) []*state.Inlet {
	var missing []*state.Inlet
	for _, in := range n.Inlets {
		if in.Required && !Satisfied(in, view) {
			missing = append(missing, in)
		}
	}
	return missing
}

// Satisfied reports whether any edge feeding in currently holds a value.
func Satisfied(in *state.Inlet, view EdgeView) bool {
	for _, e := range view.IncomingEdges(in.ID) {
		if e.HasValue() {
			return true
		}
	}
	return false
}
