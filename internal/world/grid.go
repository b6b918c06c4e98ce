package world

import (
	"fmt"

	"github.com/google/uuid"
)

// Terrain types for battlefield cells.
type Terrain uint8

const (
	TerrainGrass  Terrain = iota // Open ground — cheapest to cross
	TerrainForest                // Dense trees, slow going
	TerrainHill                  // Steep ground
	TerrainSwamp                 // Barely passable mire
	TerrainWater                 // Impassable on foot
	TerrainRock                  // Impassable cliffs
)

// ImpassableCost marks a cell no unit can enter. Any movement cost at or
// above this sentinel excludes the cell from pathfinding entirely.
const ImpassableCost = 999

// terrainCosts maps each terrain kind to its movement cost.
var terrainCosts = [...]int{
	TerrainGrass:  1,
	TerrainForest: 2,
	TerrainHill:   3,
	TerrainSwamp:  4,
	TerrainWater:  ImpassableCost,
	TerrainRock:   ImpassableCost,
}

// MovementCost returns the cost of entering a cell of this terrain.
func (t Terrain) MovementCost() int {
	if int(t) >= len(terrainCosts) {
		return ImpassableCost
	}
	return terrainCosts[t]
}

// TerrainName returns a human-readable name for logs.
func TerrainName(t Terrain) string {
	switch t {
	case TerrainGrass:
		return "grass"
	case TerrainForest:
		return "forest"
	case TerrainHill:
		return "hill"
	case TerrainSwamp:
		return "swamp"
	case TerrainWater:
		return "water"
	case TerrainRock:
		return "rock"
	default:
		return "unknown"
	}
}

// Cell is a single battlefield tile.
type Cell struct {
	Coord   HexCoord `json:"coord"`
	Terrain Terrain  `json:"terrain"`
}

// MovementCost returns the cost of entering this cell.
func (c *Cell) MovementCost() int {
	return c.Terrain.MovementCost()
}

// IsWalkable reports whether any unit can ever enter this cell.
func (c *Cell) IsWalkable() bool {
	return c.Terrain.MovementCost() < ImpassableCost
}

// Grid holds the complete hex battlefield state: cells keyed by coordinate
// plus an occupancy index. The occupancy index is a weak relation — it maps
// a coordinate to the handle of the unit standing there, and is maintained
// by whoever moves a unit. Cells never hold entity references.
type Grid struct {
	Cells  map[HexCoord]*Cell `json:"-"`
	Radius int                `json:"radius"`

	occupants map[HexCoord]uuid.UUID
}

// NewGrid creates an empty grid with the given radius.
// A hex grid of radius R contains cells where max(|q|, |r|, |s|) <= R.
func NewGrid(radius int) *Grid {
	return &Grid{
		Cells:     make(map[HexCoord]*Cell),
		Radius:    radius,
		occupants: make(map[HexCoord]uuid.UUID),
	}
}

// Get returns the cell at the given coordinate, or nil if out of bounds.
// An absent cell resolves as impassable; callers never see an error.
func (g *Grid) Get(coord HexCoord) *Cell {
	return g.Cells[coord]
}

// Set places a cell at its coordinate.
func (g *Grid) Set(cell *Cell) {
	g.Cells[cell.Coord] = cell
}

// InBounds returns true if the coordinate is within the grid radius.
func (g *Grid) InBounds(coord HexCoord) bool {
	q := coord.Q
	r := coord.R
	s := coord.S()
	if q < 0 {
		q = -q
	}
	if r < 0 {
		r = -r
	}
	if s < 0 {
		s = -s
	}
	max := q
	if r > max {
		max = r
	}
	if s > max {
		max = s
	}
	return max <= g.Radius
}

// IsOccupied reports whether a unit currently stands on the coordinate.
func (g *Grid) IsOccupied(coord HexCoord) bool {
	_, ok := g.occupants[coord]
	return ok
}

// OccupantAt returns the handle of the unit standing on the coordinate.
func (g *Grid) OccupantAt(coord HexCoord) (uuid.UUID, bool) {
	id, ok := g.occupants[coord]
	return id, ok
}

// Occupy records a unit on a coordinate. Re-occupying the same cell with the
// same handle is a no-op; a different handle overwrites (last mover wins,
// movement code is responsible for checking IsOccupied first).
func (g *Grid) Occupy(coord HexCoord, id uuid.UUID) {
	g.occupants[coord] = id
}

// Vacate clears a unit from a coordinate. Only the recorded occupant is
// removed; a stale handle is a no-op.
func (g *Grid) Vacate(coord HexCoord, id uuid.UUID) {
	if cur, ok := g.occupants[coord]; ok && cur == id {
		delete(g.occupants, coord)
	}
}

// CellCount returns the total number of cells in the grid.
func (g *Grid) CellCount() int {
	return len(g.Cells)
}

// String returns a summary of the grid.
func (g *Grid) String() string {
	return fmt.Sprintf("Grid(radius=%d, cells=%d)", g.Radius, g.CellCount())
}
