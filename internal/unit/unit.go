// Package unit implements the battlefield combatants: the player and the
// NPCs that the scheduler drives and the alert system reasons about.
package unit

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/talgya/skirmish/internal/faction"
	"github.com/talgya/skirmish/internal/pathfind"
	"github.com/talgya/skirmish/internal/world"
)

// Kind separates the externally-driven player from scheduler-driven NPCs.
type Kind uint8

const (
	KindPlayer Kind = iota
	KindNPC
)

// Stats is the combat block shared by all units.
type Stats struct {
	Health         int     `json:"health"`
	MaxHealth      int     `json:"max_health"`
	AttackDamage   int     `json:"attack_damage"`
	Armor          int     `json:"armor"`
	CritChance     float64 `json:"crit_chance"`
	CritMultiplier float64 `json:"crit_multiplier"`
}

// Unit is a combatant on the grid. Its handle is stable for its lifetime
// and is what every registry (scheduler, occupancy, alerts) refers to — a
// dead unit must be unregistered everywhere before it is dropped.
type Unit struct {
	id   uuid.UUID
	name string
	kind Kind
	fac  faction.Faction

	pos   world.HexCoord
	stats Stats

	actionPoints    int
	maxActionPoints int
	active          bool
	protected       bool

	// Sensing ranges in hex cells.
	VisionRange  int
	HearingRange int

	mover *pathfind.Mover

	// Brain supplies NPC turn behavior; the player has none (the turn is
	// driven by external input).
	brain Brain
}

// Config seeds a new unit.
type Config struct {
	Name         string
	Kind         Kind
	Faction      faction.Faction
	Position     world.HexCoord
	Stats        Stats
	ActionPoints int
	VisionRange  int
	HearingRange int
	Protected    bool
	Brain        Brain
}

// New creates a unit and records it on the grid's occupancy index.
func New(grid *world.Grid, cfg Config) *Unit {
	id := uuid.New()
	u := &Unit{
		id:              id,
		name:            cfg.Name,
		kind:            cfg.Kind,
		fac:             cfg.Faction,
		pos:             cfg.Position,
		stats:           cfg.Stats,
		actionPoints:    cfg.ActionPoints,
		maxActionPoints: cfg.ActionPoints,
		active:          true,
		protected:       cfg.Protected,
		VisionRange:     cfg.VisionRange,
		HearingRange:    cfg.HearingRange,
		mover:           pathfind.NewMover(id),
		brain:           cfg.Brain,
	}
	grid.Occupy(u.pos, id)
	return u
}

// Restore rebuilds a unit from persisted fields, keeping its saved handle.
func Restore(grid *world.Grid, id uuid.UUID, cfg Config) *Unit {
	u := New(grid, cfg)
	grid.Vacate(u.pos, u.id)
	u.id = id
	u.mover = pathfind.NewMover(id)
	grid.Occupy(u.pos, id)
	return u
}

// Handle returns the unit's stable identifier.
func (u *Unit) Handle() uuid.UUID { return u.id }

// EntityName returns the unit's display name.
func (u *Unit) EntityName() string { return u.name }

// Kind returns whether this is the player or an NPC.
func (u *Unit) Kind() Kind { return u.kind }

// Faction returns the unit's side.
func (u *Unit) Faction() faction.Faction { return u.fac }

// Position returns the unit's current grid coordinate.
func (u *Unit) Position() world.HexCoord { return u.pos }

// IsActive reports whether the unit takes turns.
func (u *Unit) IsActive() bool { return u.active }

// SetActive toggles turn participation without unregistering (stun,
// capture). Dead units are deactivated permanently by TakeDamage.
func (u *Unit) SetActive(active bool) {
	if u.Alive() {
		u.active = active
	}
}

// Alive reports whether the unit has health left.
func (u *Unit) Alive() bool { return u.stats.Health > 0 }

// Health returns current health.
func (u *Unit) Health() int { return u.stats.Health }

// MaxHealth returns maximum health.
func (u *Unit) MaxHealth() int { return u.stats.MaxHealth }

// AttackDamage returns the base damage per swing.
func (u *Unit) AttackDamage() int { return u.stats.AttackDamage }

// Armor returns flat incoming-damage reduction.
func (u *Unit) Armor() int { return u.stats.Armor }

// CritChance returns the probability of a critical swing.
func (u *Unit) CritChance() float64 { return u.stats.CritChance }

// CritMultiplier returns the damage multiplier on a critical swing.
func (u *Unit) CritMultiplier() float64 { return u.stats.CritMultiplier }

// Protected reports whether the unit is a protected archetype.
func (u *Unit) Protected() bool { return u.protected }

// Stats returns a copy of the combat block, for persistence.
func (u *Unit) Stats() Stats { return u.stats }

// ActionPoints returns the remaining per-turn action budget.
func (u *Unit) ActionPoints() int { return u.actionPoints }

// MaxActionPoints returns the per-turn action budget.
func (u *Unit) MaxActionPoints() int { return u.maxActionPoints }

// SetActionPoints overwrites the remaining budget, clamped to the maximum.
// Used when restoring a saved battle.
func (u *Unit) SetActionPoints(n int) {
	if n < 0 {
		n = 0
	}
	if n > u.maxActionPoints {
		n = u.maxActionPoints
	}
	u.actionPoints = n
}

// ConsumeActionPoints spends n points, reporting false (and spending
// nothing) when fewer than n remain.
func (u *Unit) ConsumeActionPoints(n int) bool {
	if n < 0 || n > u.actionPoints {
		return false
	}
	u.actionPoints -= n
	return true
}

// TakeDamage applies damage after armor (minimum 1) and reports whether
// the unit died. A dead unit goes inactive and cancels any movement; the
// battle layer unregisters it and vacates its cell.
func (u *Unit) TakeDamage(raw int) bool {
	dmg := raw - u.stats.Armor
	if dmg < 1 {
		dmg = 1
	}
	u.stats.Health -= dmg
	if u.stats.Health <= 0 {
		u.stats.Health = 0
		u.active = false
		u.mover.Cancel()
		slog.Debug("unit died", "name", u.name, "faction", u.fac.Name())
		return true
	}
	return false
}

// OnTurnStart restores the unit's action points for the new round.
func (u *Unit) OnTurnStart() {
	u.actionPoints = u.maxActionPoints
}

// OnTurnEnd finishes the unit's turn. Leftover action points do not carry
// over; unfinished movement is kept and resumed next round.
func (u *Unit) OnTurnEnd() {}

// TakeTurn runs the unit's behavior. The player's turn is driven by
// external input, so a unit without a brain does nothing here.
func (u *Unit) TakeTurn() {
	if u.brain != nil {
		u.brain.TakeTurn(u)
	}
}

// Moving reports whether the unit has an unfinished route.
func (u *Unit) Moving() bool { return u.mover.Moving() }

// StopMovement abandons the current route between steps.
func (u *Unit) StopMovement() { u.mover.Cancel() }

// FollowPath starts the unit down a freshly computed route.
func (u *Unit) FollowPath(p *pathfind.Path) { u.mover.Begin(p) }

// AdvanceMovement walks the current route one cell at a time, spending
// each destination cell's movement cost from the action-point pool, until
// the route ends, a step is blocked, or the budget runs out. Returns the
// number of steps taken.
func (u *Unit) AdvanceMovement(grid *world.Grid) int {
	steps := 0
	for u.mover.Moving() {
		remaining := u.mover.Remaining()
		next := remaining[0]
		cost := world.ImpassableCost
		if cell := grid.Get(next); cell != nil {
			cost = cell.MovementCost()
		}
		if !u.ConsumeActionPoints(cost) {
			break
		}
		pos, ok := u.mover.Advance(grid, u.pos)
		if !ok {
			// The step was blocked after the points were committed;
			// refund them since no ground was covered.
			u.actionPoints += cost
			break
		}
		u.pos = pos
		steps++
	}
	return steps
}

// Teleport places the unit directly (battle setup and restore only).
func (u *Unit) Teleport(grid *world.Grid, to world.HexCoord) {
	grid.Vacate(u.pos, u.id)
	u.pos = to
	grid.Occupy(to, u.id)
}
