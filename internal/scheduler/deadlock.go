package scheduler

import "github.com/vk/flowgrid/internal/readiness"

// findDeadlock looks for nodes that never fired and wait on each other's
// required inlets. The search starts from the stalled nodes and follows, for
// each missing required inlet, the producers feeding it that have not fired
// either. It returns the first cycle found, in wait order, or nil.
func findDeadlock(g Graph, stalled []string, guard *Guard) []string {
	// Classic depth-first search with three colors:
	// black: fully explored and not part of a cycle.
	// gray: on the current path.
	// white (absent): not visited yet.
	const (
		gray  = 1
		black = 2
	)
	color := make(map[string]int)
	var path []string

	var visit func(id string) []string
	visit = func(id string) []string {
		color[id] = gray
		path = append(path, id)

		for _, dep := range waitsOn(g, id, guard) {
			switch color[dep] {
			case gray:
				for i, p := range path {
					if p == dep {
						return append([]string(nil), path[i:]...)
					}
				}
			case black:
				continue
			default:
				if cycle := visit(dep); cycle != nil {
					return cycle
				}
			}
		}

		path = path[:len(path)-1]
		color[id] = black
		return nil
	}

	for _, id := range stalled {
		if color[id] == 0 {
			if cycle := visit(id); cycle != nil {
				return cycle
			}
		}
	}
	return nil
}

// waitsOn returns the unfired producers of id's missing required inlets, in
// inlet then edge declaration order, without duplicates.
func waitsOn(g Graph, id string, guard *Guard) []string {
	n, err := g.FindNode(id)
	if err != nil {
		return nil
	}
	seen := make(map[string]bool)
	var deps []string
	for _, in := range readiness.Missing(n, g) {
		for _, e := range g.IncomingEdges(in.ID) {
			producer, err := g.OutletOwner(e.Start)
			if err != nil || guard.Count(producer.ID) > 0 || seen[producer.ID] {
				continue
			}
			seen[producer.ID] = true
			deps = append(deps, producer.ID)
		}
	}
	return deps
}
