package pathfind

import (
	"github.com/google/uuid"

	"github.com/talgya/skirmish/internal/world"
)

// Mover holds explicit stepped-movement state for one unit: the current
// path and an index into it, advanced by an external driver on each tick.
// There is no suspended execution anywhere — cancelling simply clears the
// state between completed steps.
type Mover struct {
	unit uuid.UUID
	path *Path
	next int
}

// NewMover creates movement state for the unit with the given handle.
func NewMover(unit uuid.UUID) *Mover {
	return &Mover{unit: unit}
}

// Begin starts following a path. Any in-progress route is discarded.
// A nil or empty path leaves the mover idle.
func (m *Mover) Begin(path *Path) {
	if path == nil || len(path.Steps) == 0 {
		m.Cancel()
		return
	}
	m.path = path
	m.next = 0
}

// Cancel abandons the current path. Safe to call at any point between
// completed steps, including when already idle.
func (m *Mover) Cancel() {
	m.path = nil
	m.next = 0
}

// Moving reports whether steps remain on the current path.
func (m *Mover) Moving() bool {
	return m.path != nil && m.next < len(m.path.Steps)
}

// Remaining returns the steps not yet taken.
func (m *Mover) Remaining() []world.HexCoord {
	if !m.Moving() {
		return nil
	}
	return m.path.Steps[m.next:]
}

// Advance takes the next step: it vacates from, occupies the next cell, and
// returns the new position. A blocked step (cell now occupied or no longer
// walkable) cancels the remaining route and reports ok=false — the unit
// stays where it is and the caller decides whether to re-path.
func (m *Mover) Advance(grid *world.Grid, from world.HexCoord) (world.HexCoord, bool) {
	if !m.Moving() {
		return from, false
	}

	step := m.path.Steps[m.next]
	cell := grid.Get(step)
	if cell == nil || !cell.IsWalkable() || grid.IsOccupied(step) {
		m.Cancel()
		return from, false
	}

	grid.Vacate(from, m.unit)
	grid.Occupy(step, m.unit)
	m.next++
	if m.next >= len(m.path.Steps) {
		m.Cancel()
	}
	return step, true
}
