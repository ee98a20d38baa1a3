// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package state provides the Go representation of the flow state document:
// the persisted, exchanged unit that describes a graph of compute nodes and the
// values currently sitting on its edges.
//
// # Core Concepts
//
//   - State: The root document. A version string plus one Graph.
//
//   - Node: One unit of computation. Its Source locates the compute unit code,
//     its Name selects the entry point to invoke, and its Context carries static
//     configuration as a JSON document encoded in a string.
//
//   - Inlet / Outlet: A node's typed ports. Their ids are unique across the
//     whole graph because edges reference them globally.
//
//   - Edge: A wire from one outlet to one inlet that remembers the most recently
//     propagated value (LastValue), or nothing if none has propagated.
//
// Why a separate state package?
//
// The document is read once per run and then only mutated by the scheduler,
// through the graph package. Keeping the schema here, free of behavior, lets the
// loader, the engine, and the tooling agree on one shape without importing each
// other.
package state
