package scheduler

import "github.com/vk/flowgrid/internal/flowerr"

// DefaultMaxFiringsPerNode bounds how often one node may fire in a run.
const DefaultMaxFiringsPerNode = 100

// Guard tracks per-node firing counts and whether a node received a new
// inbound value since it last fired.
type Guard struct {
	limit  int
	counts map[string]int
	fed    map[string]bool
	order  []string
}

// NewGuard creates a guard allowing limit firings per node. A non-positive
// limit selects DefaultMaxFiringsPerNode.
func NewGuard(limit int) *Guard {
	if limit <= 0 {
		limit = DefaultMaxFiringsPerNode
	}
	return &Guard{
		limit:  limit,
		counts: make(map[string]int),
		fed:    make(map[string]bool),
	}
}

// Fed records that one of id's inlets received a value.
func (g *Guard) Fed(id string) {
	g.fed[id] = true
}

// Eligible reports whether id may be considered: it has never fired, or it
// was fed since its last firing.
func (g *Guard) Eligible(id string) bool {
	return g.counts[id] == 0 || g.fed[id]
}

// Admit checks that id may fire once more without exceeding the limit.
func (g *Guard) Admit(id string) error {
	if g.counts[id] >= g.limit {
		return &flowerr.CycleError{NodeIDs: []string{id}, Limit: g.limit}
	}
	return nil
}

// Fired records a completed firing of id and returns its new count.
func (g *Guard) Fired(id string) int {
	g.counts[id]++
	g.fed[id] = false
	g.order = append(g.order, id)
	return g.counts[id]
}

// Count returns how often id fired.
func (g *Guard) Count(id string) int { return g.counts[id] }

// Order returns node ids in firing order, one entry per firing.
func (g *Guard) Order() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}
