package pathfind

import "github.com/talgya/skirmish/internal/world"

// FindPathAdjacent routes from start to the cheapest-to-reach free cell
// adjacent to around. The around cell itself is never the goal (it usually
// holds the unit being approached), and occupied cells are planned around
// rather than through. Returns nil when already adjacent or when no
// adjacent cell is reachable.
func FindPathAdjacent(grid *world.Grid, start, around world.HexCoord, maxCost int) *Path {
	if world.Distance(start, around) <= 1 {
		return nil
	}
	blocked := func(c world.HexCoord) bool { return grid.IsOccupied(c) }

	var best *Path
	for _, n := range around.Neighbors() {
		cell := grid.Get(n)
		if cell == nil || !cell.IsWalkable() || grid.IsOccupied(n) {
			continue
		}
		p := FindPathAvoiding(grid, start, n, maxCost, blocked)
		if p != nil && (best == nil || p.Cost < best.Cost) {
			best = p
		}
	}
	return best
}
