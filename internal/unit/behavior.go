package unit

import (
	"log/slog"

	"github.com/talgya/skirmish/internal/alert"
	"github.com/talgya/skirmish/internal/pathfind"
	"github.com/talgya/skirmish/internal/weather"
	"github.com/talgya/skirmish/internal/world"
)

// Brain decides what a unit does with its turn. Implementations must be
// synchronous: TakeTurn returns only when the unit is done acting.
type Brain interface {
	TakeTurn(*Unit)
}

// BrainFunc adapts a function to the Brain interface.
type BrainFunc func(*Unit)

// TakeTurn calls f.
func (f BrainFunc) TakeTurn(u *Unit) { f(u) }

// RescueBrain is the standard NPC behavior: finish any movement in
// progress, then listen for distress. A faction-relevant call within
// vision range wins (protect the weakest ally); failing that, the loudest
// scream within hearing range draws the unit in to investigate. With no
// calls the unit holds position.
type RescueBrain struct {
	Grid   *world.Grid
	Alerts *alert.Registry

	// Weather shortens effective sense ranges when set.
	Weather *weather.System

	// Engage is installed by the battle layer; it resolves an attack on
	// target when the unit stands adjacent to it. Nil means the unit only
	// ever moves.
	Engage func(u *Unit, target alert.Combatant)
}

// TakeTurn implements Brain.
func (b *RescueBrain) TakeTurn(u *Unit) {
	if u.Moving() {
		u.AdvanceMovement(b.Grid)
		if u.ActionPoints() == 0 {
			return
		}
	}

	vision, hearing := u.VisionRange, u.HearingRange
	if b.Weather != nil {
		cond := b.Weather.Current()
		vision = weather.ScaleRange(vision, cond.VisionModifier())
		hearing = weather.ScaleRange(hearing, cond.HearingModifier())
	}

	call := b.Alerts.HighestPriorityCall(u.Faction(), u.Position(), vision, u.Handle())
	if call == nil {
		call = b.Alerts.LoudestCall(u.Position(), hearing, u.Handle())
	}
	if call == nil {
		return
	}

	// Already on the scene: turn on the aggressor.
	if b.arrived(u, call) {
		if b.Engage != nil {
			b.Engage(u, call.Attacker)
		}
		return
	}

	path := b.pathToward(u, call.Position)
	if path == nil {
		slog.Debug("responder cannot reach distress scene",
			"responder", u.EntityName(), "scene", call.Position)
		return
	}
	u.FollowPath(path)
	u.AdvanceMovement(b.Grid)

	if b.Engage != nil && b.arrived(u, call) {
		b.Engage(u, call.Attacker)
	}
}

// arrived reports whether the unit stands next to the scene or next to the
// aggressor itself.
func (b *RescueBrain) arrived(u *Unit, call *alert.DistressCall) bool {
	return world.Distance(u.Position(), call.Position) <= 1 ||
		world.Distance(u.Position(), call.Attacker.Position()) <= 1
}

// pathToward routes next to the scene. The scene cell itself is usually
// occupied by the victim, so the goal is the cheapest free adjacent cell.
func (b *RescueBrain) pathToward(u *Unit, scene world.HexCoord) *pathfind.Path {
	return pathfind.FindPathAdjacent(b.Grid, u.Position(), scene, 0)
}
