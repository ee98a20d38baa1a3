// Package scheduler drives a single run: it decides which node fires next,
// whether it may fire at all, and when the run is over.
//
// # How It Works
//
// A run starts from one trigger node and follows a worklist of candidate node
// ids:
//  1. Pop a candidate and resolve it against the graph model.
//  2. If a required inlet has no value, skip the node. It is not retried; it
//     comes back only when an upstream firing pushes it again.
//  3. Otherwise build the unit input, invoke the unit, and propagate the
//     output onto the node's outgoing edges.
//  4. Push every downstream node, subject to the firing guard.
//  5. Stop when the worklist is empty.
//
// Edge values are cleared by the caller before the run; the scheduler never
// clears them itself.
//
// # Firing Guard
//
// A node that already fired in this run is pushed again only if one of its
// inlets received a new value since that firing. This lets the join of a
// diamond re-evaluate when its second producer arrives, while a DAG still
// terminates: every re-firing consumes a distinct propagation event.
//
// True cycles can feed themselves forever, so each node may fire at most
// Options.MaxFiringsPerNode times. Going past the bound fails the run with a
// *flowerr.CycleError carrying the limit.
//
// # Deadlocks
//
// A cycle whose members all wait on each other's required inputs never fires
// at all and the worklist simply drains. When that happens the scheduler walks
// the wait-for relation among the nodes that never fired, starting from the
// ones it skipped, and reports the first cycle it finds as a *flowerr.CycleError
// with a zero limit. Nodes that stalled for any other reason (an upstream
// producer that was never triggered, an optional-only path that produced
// nothing) are reported in Result.Stalled but are not an error.
//
// # Ordering
//
// The worklist is LIFO by default, which gives a depth-first bias; FIFO is
// available for breadth-first traversal. Downstream nodes are pushed in the
// order the graph model returns them (edge declaration order), so a run over
// a given graph is fully deterministic.
//
// # Thread-Safety
//
// A Scheduler runs on the caller's goroutine and is not safe for concurrent
// Run calls. It is the only writer of edge values for the duration of a run.
package scheduler
