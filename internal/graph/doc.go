// Package graph provides the Graph Model: an indexed view over a state.Graph
// that answers lookup and adjacency queries and owns every write to an edge's
// last value.
//
// # Why Graph Package Exists
//
// The state document is a flat list of nodes and edges referencing ports by
// id. Every firing needs to resolve those ids (which node owns this inlet,
// which edges leave that outlet), so the Model indexes them once and rejects
// a corrupt document before any compute unit runs.
//
// # Architecture
//
//	┌──────────────────────────────┐
//	│          Scheduler           │
//	│ (sole writer during a run)   │
//	└──────┬───────────────┬───────┘
//	       │ View          │ SetLastValue / ClearValues
//	       ▼               ▼
//	┌──────────────────────────────┐
//	│            Model             │
//	│  nodes · ports · edge index  │
//	└──────────────┬───────────────┘
//	               ▼
//	         state.Graph
//
// Readiness checks and input assembly receive the read-only View and get
// copies of edges back, so they cannot write into the table. The edge
// propagator writes through the narrow Writer interface, which the scheduler
// hands it only for the duration of one firing.
//
// # Referential Integrity
//
// New fails with a *flowerr.ReferenceError when:
//   - a node, inlet, outlet or edge id is declared twice
//   - an edge's start is not an outlet id
//   - an edge's end is not an inlet id
//
// # Thread-Safety
//
// All Model methods are safe for concurrent use; a single RWMutex guards the
// edge values.
package graph
