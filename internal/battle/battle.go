// Package battle assembles a playable skirmish: the generated battlefield,
// the turn cycle, the faction matrix, and the distress-alert registry, with
// the combat rules that connect them.
package battle

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/talgya/skirmish/internal/alert"
	"github.com/talgya/skirmish/internal/entropy"
	"github.com/talgya/skirmish/internal/faction"
	"github.com/talgya/skirmish/internal/pathfind"
	"github.com/talgya/skirmish/internal/turn"
	"github.com/talgya/skirmish/internal/unit"
	"github.com/talgya/skirmish/internal/weather"
	"github.com/talgya/skirmish/internal/world"
)

// AttackCost is the action-point price of one swing.
const AttackCost = 2

// Config assembles a battle. Zero values fall back to the standard
// battlefield, relationships, and alert decay.
type Config struct {
	// Gen drives terrain generation; ignored when Grid is supplied directly
	// (restores reuse the saved grid).
	Gen  world.GenConfig
	Grid *world.Grid

	Factions *faction.Matrix

	// AlertDurationRounds is how many turns a distress call stays live.
	AlertDurationRounds int

	// Rolls supplies crit and weather rolls. Nil gets a crypto-backed
	// source; tests and replays pass a seeded one.
	Rolls entropy.Source

	// Weather overrides the default system (clear skies, rolled on the
	// battle's entropy source). Tests pass a frozen one.
	Weather *weather.System
}

// Battle owns all simulation state for one skirmish.
type Battle struct {
	Grid      *world.Grid
	Scheduler *turn.Scheduler
	Factions  *faction.Matrix
	Alerts    *alert.Registry
	Weather   *weather.System

	units map[uuid.UUID]*unit.Unit
	rolls entropy.Source
}

// AttackResult describes one resolved swing.
type AttackResult struct {
	Damage int  `json:"damage"`
	Crit   bool `json:"crit"`
	Killed bool `json:"killed"`
}

// New builds a battle: battlefield, scheduler, factions, alerts, and
// weather wired together. The processing phase at the end of each cycle
// rolls the weather and sweeps expired alerts.
func New(cfg Config) *Battle {
	grid := cfg.Grid
	if grid == nil {
		gen := cfg.Gen
		if gen.Radius <= 0 {
			gen = world.DefaultGenConfig()
		}
		grid = world.Generate(gen)
	}
	matrix := cfg.Factions
	if matrix == nil {
		matrix = faction.DefaultMatrix()
	}
	duration := cfg.AlertDurationRounds
	if duration <= 0 {
		duration = 3
	}
	rolls := cfg.Rolls
	if rolls == nil {
		rolls = entropy.Crypto()
	}
	wx := cfg.Weather
	if wx == nil {
		wx = weather.NewSystem(weather.Clear, rolls)
	}

	b := &Battle{
		Grid:      grid,
		Scheduler: turn.NewScheduler(),
		Factions:  matrix,
		Weather:   wx,
		units:     make(map[uuid.UUID]*unit.Unit),
		rolls:     rolls,
	}
	b.Alerts = alert.NewRegistry(matrix, duration, b.Scheduler.TurnNumber)
	b.Scheduler.Processing = func(int) {
		b.Weather.Advance()
		b.Alerts.Sweep()
	}
	return b
}

// SpawnPlayer creates the player unit and claims the scheduler's player
// slot. Fails if the slot is already held by a different unit.
func (b *Battle) SpawnPlayer(cfg unit.Config) (*unit.Unit, error) {
	cfg.Kind = unit.KindPlayer
	cfg.Brain = nil
	u := unit.New(b.Grid, cfg)
	if err := b.Scheduler.RegisterPlayer(u); err != nil {
		b.Grid.Vacate(u.Position(), u.Handle())
		return nil, err
	}
	b.units[u.Handle()] = u
	return u, nil
}

// SpawnNPC creates an NPC. A config without a brain gets the standard
// rescue behavior, with its engagements resolved through Attack.
func (b *Battle) SpawnNPC(cfg unit.Config) *unit.Unit {
	cfg.Kind = unit.KindNPC
	if cfg.Brain == nil {
		cfg.Brain = &unit.RescueBrain{
			Grid:    b.Grid,
			Alerts:  b.Alerts,
			Weather: b.Weather,
			Engage:  b.engage,
		}
	}
	u := unit.New(b.Grid, cfg)
	b.Scheduler.RegisterEntity(u)
	b.units[u.Handle()] = u
	return u
}

// RestoreUnit rebuilds a saved unit under its original handle and registers
// it. NPCs without an explicit brain get the standard rescue behavior.
func (b *Battle) RestoreUnit(id uuid.UUID, cfg unit.Config) (*unit.Unit, error) {
	if cfg.Kind == unit.KindNPC && cfg.Brain == nil {
		cfg.Brain = &unit.RescueBrain{
			Grid:    b.Grid,
			Alerts:  b.Alerts,
			Weather: b.Weather,
			Engage:  b.engage,
		}
	}
	u := unit.Restore(b.Grid, id, cfg)
	if err := b.Adopt(u); err != nil {
		b.Grid.Vacate(u.Position(), u.Handle())
		return nil, err
	}
	return u, nil
}

// Adopt registers an already-built unit (restores). Player units claim the
// player slot.
func (b *Battle) Adopt(u *unit.Unit) error {
	if u.Kind() == unit.KindPlayer {
		if err := b.Scheduler.RegisterPlayer(u); err != nil {
			return err
		}
	} else {
		b.Scheduler.RegisterEntity(u)
	}
	b.units[u.Handle()] = u
	return nil
}

// Unit looks up a living unit by handle.
func (b *Battle) Unit(handle uuid.UUID) (*unit.Unit, bool) {
	u, ok := b.units[handle]
	return u, ok
}

// Units returns the living units in no particular order.
func (b *Battle) Units() []*unit.Unit {
	out := make([]*unit.Unit, 0, len(b.units))
	for _, u := range b.units {
		out = append(out, u)
	}
	return out
}

// Attack resolves one swing from attacker against defender. The swing is a
// rejected no-op unless the two stand adjacent, the attacker can pay the
// action-point cost, and the attacker does not consider the defender
// friendly. A surviving defender broadcasts a distress call; a kill clears
// the board of the victim and of every call it was party to.
func (b *Battle) Attack(attacker, defender *unit.Unit) (AttackResult, bool) {
	if attacker == nil || defender == nil || !attacker.Alive() || !defender.Alive() {
		return AttackResult{}, false
	}
	if b.Factions.IsFriendly(attacker.Faction(), defender.Faction()) {
		slog.Warn("attack on friendly target rejected",
			"attacker", attacker.EntityName(), "defender", defender.EntityName())
		return AttackResult{}, false
	}
	if world.Distance(attacker.Position(), defender.Position()) > 1 {
		return AttackResult{}, false
	}
	if !attacker.ConsumeActionPoints(AttackCost) {
		return AttackResult{}, false
	}

	dmg := attacker.AttackDamage()
	crit := b.rolls.Float() < attacker.CritChance()
	if crit {
		dmg = int(float64(dmg) * attacker.CritMultiplier())
	}

	killed := defender.TakeDamage(dmg)
	slog.Info("attack resolved",
		"attacker", attacker.EntityName(),
		"defender", defender.EntityName(),
		"damage", dmg,
		"crit", crit,
		"killed", killed,
	)

	if killed {
		b.removeUnit(defender)
	} else {
		b.Alerts.Broadcast(defender, attacker, dmg)
	}
	return AttackResult{Damage: dmg, Crit: crit, Killed: killed}, true
}

// engage resolves a brain's engagement: close the last stretch to the
// target if needed, then swing when adjacent.
func (b *Battle) engage(attacker *unit.Unit, target alert.Combatant) {
	defender, ok := b.units[target.Handle()]
	if !ok {
		return
	}
	if world.Distance(attacker.Position(), defender.Position()) > 1 {
		if p := pathfind.FindPathAdjacent(b.Grid, attacker.Position(), defender.Position(), 0); p != nil {
			attacker.FollowPath(p)
			attacker.AdvanceMovement(b.Grid)
		}
	}
	if world.Distance(attacker.Position(), defender.Position()) <= 1 {
		b.Attack(attacker, defender)
	}
}

// removeUnit takes a dead unit off the board: scheduler roster, occupancy
// index, unit table, and every distress call naming it as the aggressor.
// Calls where it was the victim die on the next sweep.
func (b *Battle) removeUnit(u *unit.Unit) {
	b.Scheduler.UnregisterEntity(u.Handle())
	b.Alerts.ClearForAttacker(u.Handle())
	b.Grid.Vacate(u.Position(), u.Handle())
	delete(b.units, u.Handle())
}

// MovePlayer routes the player to dest and walks as far as this turn's
// action points allow. Rejected outside the player's turn, with no player,
// or when no route exists.
func (b *Battle) MovePlayer(dest world.HexCoord) bool {
	if b.Scheduler.State() != turn.StatePlayerTurn {
		return false
	}
	p := b.player()
	if p == nil {
		return false
	}
	path := pathfind.FindPath(b.Grid, p.Position(), dest, 0)
	if path == nil {
		return false
	}
	p.FollowPath(path)
	return p.AdvanceMovement(b.Grid) > 0
}

// PlayerAttack resolves a player swing at the unit on target, if any.
func (b *Battle) PlayerAttack(target world.HexCoord) (AttackResult, bool) {
	if b.Scheduler.State() != turn.StatePlayerTurn {
		return AttackResult{}, false
	}
	p := b.player()
	if p == nil {
		return AttackResult{}, false
	}
	handle, ok := b.Grid.OccupantAt(target)
	if !ok {
		return AttackResult{}, false
	}
	defender, ok := b.units[handle]
	if !ok {
		return AttackResult{}, false
	}
	return b.Attack(p, defender)
}

func (b *Battle) player() *unit.Unit {
	e := b.Scheduler.PlayerEntity()
	if e == nil {
		return nil
	}
	return b.units[e.Handle()]
}
