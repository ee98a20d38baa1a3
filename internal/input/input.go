// Package input assembles the document a compute unit receives when its node
// fires: the node's static context with the live inlet values deep-merged on
// top, each under its inlet's name.
package input

import (
	"context"
	"fmt"

	"github.com/vk/flowgrid/internal/ctxlog"
	"github.com/vk/flowgrid/internal/document"
	"github.com/vk/flowgrid/internal/state"
)

// EdgeView is the slice of the graph model input assembly needs.
type EdgeView interface {
	IncomingEdges(inletID string) []state.Edge
}

// Build merges n's static context with the values on its inbound edges.
//
// Inlets are visited in declaration order. When several edges feed one inlet,
// the last populated edge in declaration order supplies the value; values
// from different edges into the same inlet are not merged with each other.
func Build(ctx context.Context, n *state.Node, view EdgeView) (document.Document, error) {
	logger := ctxlog.FromContext(ctx)

	base, err := n.ContextDocument()
	if err != nil {
		return nil, err
	}
	doc := document.Document(base)

	for _, in := range n.Inlets {
		raw, edgeID, ok := latestValue(view.IncomingEdges(in.ID))
		if !ok {
			continue
		}
		value, err := document.DecodeValue(raw)
		if err != nil {
			return nil, fmt.Errorf("node '%s': value on edge '%s' for inlet '%s': %w", n.ID, edgeID, in.Name, err)
		}
		logger.Debug("Merging inlet value into context.", "node_id", n.ID, "inlet", in.Name, "edge_id", edgeID)
		doc = document.MergeField(doc, in.Name, value)
	}
	return doc, nil
}

// latestValue picks the last edge in declaration order that holds a value.
func latestValue(edges []state.Edge) (raw, edgeID string, ok bool) {
	for _, e := range edges {
		if e.HasValue() {
			raw, edgeID, ok = *e.LastValue, e.ID, true
		}
	}
	return raw, edgeID, ok
}
