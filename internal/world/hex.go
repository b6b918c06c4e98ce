// Package world provides the hex grid, terrain, and spatial queries for the
// battlefield. Uses axial coordinates (q, r) for the hex grid.
package world

import "fmt"

// HexCoord represents a position on the hex grid using axial coordinates.
// The third cube coordinate s is derived: s = -q - r. HexCoord is a value
// type: positions are replaced, never mutated in place.
type HexCoord struct {
	Q int `json:"q"`
	R int `json:"r"`
}

// S returns the implicit third cube coordinate.
func (h HexCoord) S() int {
	return -h.Q - h.R
}

// String formats the coordinate for logs and errors.
func (h HexCoord) String() string {
	return fmt.Sprintf("(%d,%d)", h.Q, h.R)
}

// HexNeighborDirections defines the six neighbor offsets in axial coordinates.
// Order matters: pathfinding expands neighbors in this order, which keeps
// equal-cost route choice deterministic.
var HexNeighborDirections = [6]HexCoord{
	{Q: 1, R: 0},
	{Q: 1, R: -1},
	{Q: 0, R: -1},
	{Q: -1, R: 0},
	{Q: -1, R: 1},
	{Q: 0, R: 1},
}

// Neighbors returns the six adjacent hex coordinates.
func (h HexCoord) Neighbors() [6]HexCoord {
	var result [6]HexCoord
	for i, dir := range HexNeighborDirections {
		result[i] = HexCoord{Q: h.Q + dir.Q, R: h.R + dir.R}
	}
	return result
}

// Add returns the coordinate offset by d.
func (h HexCoord) Add(d HexCoord) HexCoord {
	return HexCoord{Q: h.Q + d.Q, R: h.R + d.R}
}

// Distance returns the hex distance between two coordinates: the minimum
// number of adjacent-cell hops, computed as the max of the three absolute
// cube-coordinate differences.
func Distance(a, b HexCoord) int {
	dq := a.Q - b.Q
	dr := a.R - b.R
	ds := a.S() - b.S()
	if dq < 0 {
		dq = -dq
	}
	if dr < 0 {
		dr = -dr
	}
	if ds < 0 {
		ds = -ds
	}
	max := dq
	if dr > max {
		max = dr
	}
	if ds > max {
		max = ds
	}
	return max
}

// CellsFromWorld converts a world-unit range to a hex-cell range given the
// hex size in world units. Hex cells are the canonical range unit everywhere
// in the core; this is the single conversion point for legacy world-unit
// callers.
func CellsFromWorld(worldUnits, hexSize float64) int {
	if hexSize <= 0 {
		return 0
	}
	return int(worldUnits / hexSize)
}
