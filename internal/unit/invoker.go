package unit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/vk/flowgrid/internal/ctxlog"
	"github.com/vk/flowgrid/internal/document"
	"github.com/vk/flowgrid/internal/flowerr"
	"github.com/vk/flowgrid/internal/state"
)

// DescribeEntryPoint is the fixed export a unit may provide to declare its
// ports.
const DescribeEntryPoint = "describe_node"

// Port describes one declared input or output of a unit.
type Port struct {
	Type []string `json:"type"`
}

// Descriptor is what a unit's describe entry point returns.
type Descriptor struct {
	Inputs map[string]Port `json:"inputs"`
	Output map[string]Port `json:"Output"`
}

// Invoker loads a node's unit and calls the entry point named after the node.
type Invoker struct {
	loader Loader
	host   Host
}

// NewInvoker creates an invoker over the given loader and host.
func NewInvoker(loader Loader, host Host) *Invoker {
	return &Invoker{loader: loader, host: host}
}

// Invoke runs n's unit with doc as its context and returns the parsed output.
// Load failures come back as *flowerr.LoadError; everything else, including
// output that is not a JSON object, as *flowerr.InvocationError.
func (i *Invoker) Invoke(ctx context.Context, n *state.Node, doc document.Document) (*document.JSONOutput, error) {
	logger := ctxlog.FromContext(ctx).With("node_id", n.ID, "entry_point", n.Name)

	code, err := i.load(ctx, n)
	if err != nil {
		return nil, err
	}

	input, err := document.Wrap(doc)
	if err != nil {
		return nil, &flowerr.InvocationError{NodeID: n.ID, EntryPoint: n.Name, Err: err}
	}

	logger.Debug("Invoking compute unit.", "input_bytes", len(input))
	raw, err := i.host.Invoke(ctx, code, n.Name, input)
	if err != nil {
		return nil, &flowerr.InvocationError{NodeID: n.ID, EntryPoint: n.Name, Err: err}
	}

	out, err := document.ParseOutput(raw)
	if err != nil {
		return nil, &flowerr.InvocationError{NodeID: n.ID, EntryPoint: n.Name, Err: err}
	}
	logger.Debug("Compute unit returned.", "output_bytes", len(raw))
	return out, nil
}

// Describe queries n's unit for its declared ports.
func (i *Invoker) Describe(ctx context.Context, n *state.Node) (*Descriptor, error) {
	code, err := i.load(ctx, n)
	if err != nil {
		return nil, err
	}
	raw, err := i.host.Invoke(ctx, code, DescribeEntryPoint, nil)
	if err != nil {
		return nil, &flowerr.InvocationError{NodeID: n.ID, EntryPoint: DescribeEntryPoint, Err: err}
	}
	var d Descriptor
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, &flowerr.InvocationError{
			NodeID:     n.ID,
			EntryPoint: DescribeEntryPoint,
			Err:        fmt.Errorf("decode descriptor: %w", err),
		}
	}
	return &d, nil
}

func (i *Invoker) load(ctx context.Context, n *state.Node) ([]byte, error) {
	code, err := i.loader.Load(ctx, n.Source)
	if err != nil {
		return nil, &flowerr.LoadError{NodeID: n.ID, Source: n.Source, Err: err}
	}
	return code, nil
}
