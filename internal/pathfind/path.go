// Package pathfind computes least-cost routes across the battlefield grid
// and drives step-by-step movement along them.
package pathfind

import "github.com/talgya/skirmish/internal/world"

// Path is an ordered route from (but excluding) the origin to the
// destination, with the accumulated integer movement cost. A Path is
// produced fresh per query and never mutated after return; callers may
// truncate a prefix as steps complete.
type Path struct {
	Steps []world.HexCoord
	Cost  int
}

// Len returns the number of steps remaining on the path.
func (p *Path) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Steps)
}

// Destination returns the final coordinate, ok=false for an empty path.
func (p *Path) Destination() (world.HexCoord, bool) {
	if p == nil || len(p.Steps) == 0 {
		return world.HexCoord{}, false
	}
	return p.Steps[len(p.Steps)-1], true
}

// PathCost recomputes a route's cost from grid data: the sum of each
// traversed cell's movement cost. It agrees exactly with the cost the
// search accumulated for the same route. An absent cell counts as
// impassable, which makes a stale path visibly over budget instead of
// silently cheap.
func PathCost(grid *world.Grid, steps []world.HexCoord) int {
	total := 0
	for _, step := range steps {
		cell := grid.Get(step)
		if cell == nil {
			total += world.ImpassableCost
			continue
		}
		total += cell.MovementCost()
	}
	return total
}
