package pathfind

import (
	"container/heap"

	"github.com/talgya/skirmish/internal/world"
)

// searchRecord is per-coordinate bookkeeping for one search.
type searchRecord struct {
	parent world.HexCoord
	g      int
	closed bool
}

// FindPath computes a minimum-cost route from start to goal using A* over
// the six axial hex directions. The cost of an edge is the destination
// cell's movement cost; cells at or above world.ImpassableCost are excluded
// entirely. The heuristic is hex distance, which is admissible and
// consistent because every step costs at least 1.
//
// maxCost bounds the search: expansions whose accumulated cost exceeds it
// are pruned, so a nil result means no route within budget exists.
// maxCost <= 0 disables the bound. Callers following the find-then-validate
// pattern re-check the returned Cost against their own budget with PathCost.
//
// Returns nil when start == goal, when either endpoint is impassable, or
// when no route exists. Identical grid state and identical arguments always
// yield the identical path, not merely an equal-cost one: ties on f-score
// break toward the node discovered first.
//
// FindPath is occupancy-blind: units are transient obstacles, and the mover
// re-checks each cell at step time. Callers that want to plan around
// standing units use FindPathAvoiding.
func FindPath(grid *world.Grid, start, goal world.HexCoord, maxCost int) *Path {
	return FindPathAvoiding(grid, start, goal, maxCost, nil)
}

// FindPathAvoiding is FindPath with an extra exclusion: cells for which
// blocked returns true are not entered (the start cell is never tested).
// A nil blocked predicate makes it identical to FindPath.
func FindPathAvoiding(grid *world.Grid, start, goal world.HexCoord, maxCost int, blocked func(world.HexCoord) bool) *Path {
	if start == goal {
		return nil
	}
	goalCell := grid.Get(goal)
	if goalCell == nil || !goalCell.IsWalkable() {
		return nil
	}
	if grid.Get(start) == nil {
		return nil
	}
	if blocked != nil && blocked(goal) {
		return nil
	}

	records := map[world.HexCoord]*searchRecord{
		start: {g: 0},
	}

	frontier := make(nodeQueue, 0, 64)
	heap.Init(&frontier)
	seq := 0
	heap.Push(&frontier, &node{
		coord: start,
		f:     world.Distance(start, goal),
		seq:   seq,
	})

	for frontier.Len() > 0 {
		current := heap.Pop(&frontier).(*node)
		rec := records[current.coord]
		if rec.closed {
			continue // stale frontier entry superseded by a cheaper one
		}
		rec.closed = true

		if current.coord == goal {
			return reconstruct(records, start, goal, rec.g)
		}

		for _, next := range current.coord.Neighbors() {
			cell := grid.Get(next)
			if cell == nil || !cell.IsWalkable() {
				continue
			}
			if blocked != nil && blocked(next) {
				continue
			}

			g := rec.g + cell.MovementCost()
			if maxCost > 0 && g > maxCost {
				continue
			}

			existing, seen := records[next]
			if seen && (existing.closed || existing.g <= g) {
				continue
			}

			records[next] = &searchRecord{parent: current.coord, g: g}
			seq++
			heap.Push(&frontier, &node{
				coord: next,
				f:     g + world.Distance(next, goal),
				seq:   seq,
			})
		}
	}

	return nil
}

// reconstruct walks parent links from goal back to start and returns the
// forward route. The origin itself is excluded from the steps.
func reconstruct(records map[world.HexCoord]*searchRecord, start, goal world.HexCoord, cost int) *Path {
	var steps []world.HexCoord
	for at := goal; at != start; at = records[at].parent {
		steps = append(steps, at)
	}
	for i, j := 0, len(steps)-1; i < j; i, j = i+1, j-1 {
		steps[i], steps[j] = steps[j], steps[i]
	}
	return &Path{Steps: steps, Cost: cost}
}

// node is a frontier entry. seq is the discovery order, used to break
// f-score ties deterministically.
type node struct {
	coord world.HexCoord
	f     int
	seq   int
	index int
}

// nodeQueue implements heap.Interface as a min-heap on (f, seq).
type nodeQueue []*node

func (q nodeQueue) Len() int { return len(q) }

func (q nodeQueue) Less(i, j int) bool {
	if q[i].f != q[j].f {
		return q[i].f < q[j].f
	}
	return q[i].seq < q[j].seq
}

func (q nodeQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *nodeQueue) Push(x any) {
	n := x.(*node)
	n.index = len(*q)
	*q = append(*q, n)
}

func (q *nodeQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*q = old[0 : n-1]
	return item
}
