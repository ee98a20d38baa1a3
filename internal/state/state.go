// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the schema of the state document and its JSON codec.
//
// Why keep context as a string?
//
// The exchanged document stores each node's static configuration as an encoded
// JSON string so that producers can treat it as opaque. Compute units only ever
// see the decoded form, merged with live inlet values by the input package.
package state

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/vk/flowgrid/internal/flowerr"
)

// State is the root persisted unit.
type State struct {
	Version string `json:"version"`
	Graph   Graph  `json:"graph"`
}

// Graph holds the nodes and edges. Order carries no meaning beyond making
// serialization deterministic.
type Graph struct {
	Nodes []*Node `json:"nodes"`
	Edges []*Edge `json:"edges"`
}

// Node is a single unit of computation backed by a compute unit.
type Node struct {
	ID string `json:"id"`
	// Name is the display name and also the entry point invoked on the unit.
	Name string `json:"name"`
	// Source locates the compute unit code, e.g. a file path or s3://bucket/key.
	Source string `json:"source"`
	// Context is the node's static configuration as an encoded JSON object.
	Context string    `json:"context"`
	Inlets  []*Inlet  `json:"inlets"`
	Outlets []*Outlet `json:"outlets"`
}

// Inlet is a node's input port.
type Inlet struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Required bool   `json:"required"`
}

// Outlet is a node's output port.
type Outlet struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// Edge wires an outlet (Start) to an inlet (End).
type Edge struct {
	ID    string `json:"id"`
	Start string `json:"start"`
	End   string `json:"end"`
	// LastValue is the serialized JSON value most recently propagated from
	// Start, or nil if nothing has propagated since the last reset.
	LastValue *string `json:"last_value"`
}

// HasValue reports whether a value is currently sitting on the edge.
func (e *Edge) HasValue() bool {
	return e != nil && e.LastValue != nil
}

// ClearEdgeValues resets every edge to carry no value.
func (g *Graph) ClearEdgeValues() {
	for _, e := range g.Edges {
		if e != nil {
			e.LastValue = nil
		}
	}
}

// ContextDocument decodes the node's static context. An empty context decodes
// to an empty document.
func (n *Node) ContextDocument() (map[string]any, error) {
	doc := make(map[string]any)
	if len(bytes.TrimSpace([]byte(n.Context))) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal([]byte(n.Context), &doc); err != nil {
		return nil, fmt.Errorf("node '%s': context is not a JSON object: %w", n.ID, err)
	}
	if doc == nil {
		// "null" decodes to a nil map.
		doc = make(map[string]any)
	}
	return doc, nil
}

// Parse decodes a state document. Any decoding problem, including a node
// context that is not a JSON object, is reported as a *flowerr.ParseError.
func Parse(data []byte) (*State, error) {
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, &flowerr.ParseError{Err: err}
	}
	for i, n := range st.Graph.Nodes {
		if n == nil {
			return nil, &flowerr.ParseError{Err: fmt.Errorf("graph.nodes[%d] is null", i)}
		}
		for j, in := range n.Inlets {
			if in == nil {
				return nil, &flowerr.ParseError{Err: fmt.Errorf("graph.nodes[%d].inlets[%d] is null", i, j)}
			}
		}
		for j, out := range n.Outlets {
			if out == nil {
				return nil, &flowerr.ParseError{Err: fmt.Errorf("graph.nodes[%d].outlets[%d] is null", i, j)}
			}
		}
		if _, err := n.ContextDocument(); err != nil {
			return nil, &flowerr.ParseError{Err: err}
		}
	}
	for i, e := range st.Graph.Edges {
		if e == nil {
			return nil, &flowerr.ParseError{Err: fmt.Errorf("graph.edges[%d] is null", i)}
		}
	}
	return &st, nil
}

// Marshal encodes the state document with two-space indentation.
func Marshal(st *State) ([]byte, error) {
	out, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode state: %w", err)
	}
	return append(out, '\n'), nil
}
