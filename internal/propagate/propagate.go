// Package propagate moves a compute unit's output onto the graph: each outlet
// takes the output field named like itself and every edge leaving that outlet
// stores it as its last value.
package propagate

import (
	"context"

	"github.com/vk/flowgrid/internal/ctxlog"
	"github.com/vk/flowgrid/internal/document"
	"github.com/vk/flowgrid/internal/state"
)

// EdgeWriter is the write side of the graph model.
type EdgeWriter interface {
	OutgoingEdges(outletID string) []state.Edge
	SetLastValue(edgeID string, raw string) error
}

// Propagate writes n's output onto its outgoing edges and returns the edges it
// wrote, in outlet then edge declaration order. An output without a field for
// some outlet is not an error; that outlet simply produces nothing this time
// and its edges keep whatever they held.
func Propagate(ctx context.Context, n *state.Node, out document.FieldGetter, w EdgeWriter) ([]state.Edge, error) {
	logger := ctxlog.FromContext(ctx)

	var written []state.Edge
	for _, outlet := range n.Outlets {
		raw, ok := out.Field(outlet.Name)
		if !ok {
			logger.Debug("Outlet produced no value.", "node_id", n.ID, "outlet", outlet.Name)
			continue
		}
		for _, e := range w.OutgoingEdges(outlet.ID) {
			if err := w.SetLastValue(e.ID, raw); err != nil {
				return written, err
			}
			v := raw
			e.LastValue = &v
			written = append(written, e)
		}
	}
	return written, nil
}
