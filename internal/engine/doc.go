// Package engine is the entry point for executing a flow. It owns a run from
// start to finish:
//
//  1. Stamp the run with a fresh id.
//  2. Clear every edge value, unconditionally.
//  3. Index the graph, which also checks referential integrity.
//  4. Hand the graph to the scheduler, starting at the trigger node.
//
// The State passed to Run is mutated in place. On success it holds the values
// produced by the run; on failure it holds the values as of the last
// successful firing, which is what callers want to persist for diagnostics.
//
// Run-level events (started, finished, failed) are emitted here; node-level
// events come from the scheduler. Both go to the same observer.
//
// Describe and Validate are tooling operations. They never fire a node and
// never touch edge values.
package engine
