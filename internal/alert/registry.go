package alert

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/talgya/skirmish/internal/faction"
	"github.com/talgya/skirmish/internal/world"
)

// Observer receives a snapshot of every new or merged distress call, for
// presentation (popups, pings). Delivery is synchronous, in subscription
// order.
type Observer interface {
	OnDistressCall(DistressCall)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(DistressCall)

// OnDistressCall calls f.
func (f ObserverFunc) OnDistressCall(c DistressCall) { f(c) }

// Registry is the decaying event store of distress calls. All range
// arguments are hex cells (use world.CellsFromWorld for legacy world-unit
// callers). Expiry is turn-based by default; the legacy wall-clock mode
// expires by elapsed seconds instead.
type Registry struct {
	matrix *faction.Matrix
	calls  []*DistressCall

	// DurationRounds: a call expires once currentTurn − createdTurn
	// exceeds it.
	DurationRounds int
	// UseWallClock switches to the legacy mode: expired once
	// DurationSeconds of wall-clock time has elapsed.
	UseWallClock    bool
	DurationSeconds float64

	turnSource func() int
	now        func() time.Time

	observers []Observer
}

// NewRegistry creates a registry. turnSource supplies the current turn
// number (typically Scheduler.TurnNumber) and is consulted on every
// broadcast, sweep, and query.
func NewRegistry(matrix *faction.Matrix, durationRounds int, turnSource func() int) *Registry {
	return &Registry{
		matrix:         matrix,
		DurationRounds: durationRounds,
		turnSource:     turnSource,
		now:            time.Now,
	}
}

// Subscribe adds a distress-call observer.
func (r *Registry) Subscribe(o Observer) {
	if o != nil {
		r.observers = append(r.observers, o)
	}
}

// Broadcast records an attack on victim by attacker. The victim's faction,
// threat level, and health fraction are sampled now. A still-active call
// for the same (victim, attacker) pair accumulates damage and refreshes in
// place; otherwise a new call is appended. A broadcast with a missing or
// dead party is a reported no-op.
func (r *Registry) Broadcast(victim, attacker Combatant, damage int) *DistressCall {
	if victim == nil || attacker == nil || !victim.Alive() || !attacker.Alive() {
		slog.Warn("distress broadcast rejected: invalid party",
			"victim_missing", victim == nil || !victim.Alive(),
			"attacker_missing", attacker == nil || !attacker.Alive(),
		)
		return nil
	}

	turn := r.turnSource()
	call := r.find(victim.Handle(), attacker.Handle(), turn)
	if call != nil {
		call.Damage += damage
		call.CreatedTurn = turn // an ongoing assault restarts the expiry clock
		call.refresh(r.now())
	} else {
		call = &DistressCall{
			Victim:        victim,
			Attacker:      attacker,
			VictimFaction: victim.Faction(),
			CreatedTurn:   turn,
			Damage:        damage,
		}
		call.refresh(r.now())
		r.calls = append(r.calls, call)
	}

	slog.Debug("distress call",
		"victim", victim.EntityName(),
		"attacker", attacker.EntityName(),
		"damage", call.Damage,
		"sound", call.SoundLevel(),
		"turn", turn,
	)
	for _, o := range r.observers {
		o.OnDistressCall(*call)
	}
	return call
}

// find returns the live call for a (victim, attacker) pair, or nil.
func (r *Registry) find(victim, attacker uuid.UUID, turn int) *DistressCall {
	for _, c := range r.calls {
		if c.Victim.Handle() == victim && c.Attacker.Handle() == attacker && !r.expired(c, turn) {
			return c
		}
	}
	return nil
}

// expired checks the active decay mode.
func (r *Registry) expired(c *DistressCall, turn int) bool {
	if r.UseWallClock {
		return r.now().Sub(c.Timestamp).Seconds() > r.DurationSeconds
	}
	return turn-c.CreatedTurn > r.DurationRounds
}

// Sweep purges expired calls and calls whose victim or attacker is no
// longer valid. Run at least once per turn (the battle wires it into the
// scheduler's Processing phase).
func (r *Registry) Sweep() {
	turn := r.turnSource()
	kept := r.calls[:0]
	removed := 0
	for _, c := range r.calls {
		if r.expired(c, turn) || !c.valid() {
			removed++
			continue
		}
		kept = append(kept, c)
	}
	for i := len(kept); i < len(r.calls); i++ {
		r.calls[i] = nil
	}
	r.calls = kept
	if removed > 0 {
		slog.Debug("distress sweep", "removed", removed, "remaining", len(r.calls), "turn", turn)
	}
}

// active iterates the non-expired, valid calls.
func (r *Registry) active(turn int) []*DistressCall {
	out := make([]*DistressCall, 0, len(r.calls))
	for _, c := range r.calls {
		if !r.expired(c, turn) && c.valid() {
			out = append(out, c)
		}
	}
	return out
}

// Len returns the number of stored calls, including any not yet swept.
func (r *Registry) Len() int { return len(r.calls) }

// RelevantCalls returns the active calls whose victim faction is an ally of
// listener (same faction short-circuits the matrix) and whose hex distance
// from position is within rng. Unsorted.
func (r *Registry) RelevantCalls(listener faction.Faction, position world.HexCoord, rng int) []*DistressCall {
	turn := r.turnSource()
	var out []*DistressCall
	for _, c := range r.active(turn) {
		if c.VictimFaction != listener && !r.matrix.IsFriendly(listener, c.VictimFaction) {
			continue
		}
		if world.Distance(position, c.Position) > rng {
			continue
		}
		out = append(out, c)
	}
	return out
}

// AllCallsInRange returns every active call within rng hex cells of
// position, regardless of faction — the listener hears a scream without
// knowing friend from foe. Calls whose victim is exclude are omitted.
func (r *Registry) AllCallsInRange(position world.HexCoord, rng int, exclude uuid.UUID) []*DistressCall {
	turn := r.turnSource()
	var out []*DistressCall
	for _, c := range r.active(turn) {
		if exclude != uuid.Nil && c.Victim.Handle() == exclude {
			continue
		}
		if world.Distance(position, c.Position) > rng {
			continue
		}
		out = append(out, c)
	}
	return out
}

// LoudestCall picks, from all calls within hearing range, the one with the
// highest sound level; ties go to the smaller hex distance, then the more
// recent timestamp. Nil when nothing is in range. Models hearing the
// loudest or closest scream, not necessarily an ally's.
func (r *Registry) LoudestCall(position world.HexCoord, hearingRange int, exclude uuid.UUID) *DistressCall {
	var best *DistressCall
	var bestDist int
	for _, c := range r.AllCallsInRange(position, hearingRange, exclude) {
		dist := world.Distance(position, c.Position)
		if best == nil {
			best, bestDist = c, dist
			continue
		}
		switch {
		case c.SoundLevel() > best.SoundLevel():
			best, bestDist = c, dist
		case c.SoundLevel() == best.SoundLevel() && dist < bestDist:
			best, bestDist = c, dist
		case c.SoundLevel() == best.SoundLevel() && dist == bestDist && c.Timestamp.After(best.Timestamp):
			best, bestDist = c, dist
		}
	}
	return best
}

// HighestPriorityCall picks, from the faction-relevant calls within vision
// range, the victim most deserving of protection: lowest threat level
// first (protect the weak), then lowest health fraction (most urgent),
// then the more recent call. Nil when nothing qualifies.
func (r *Registry) HighestPriorityCall(listener faction.Faction, position world.HexCoord, visionRange int, exclude uuid.UUID) *DistressCall {
	var best *DistressCall
	for _, c := range r.RelevantCalls(listener, position, visionRange) {
		if exclude != uuid.Nil && c.Victim.Handle() == exclude {
			continue
		}
		if best == nil {
			best = c
			continue
		}
		switch {
		case c.ThreatLevel < best.ThreatLevel:
			best = c
		case c.ThreatLevel == best.ThreatLevel && c.HealthFraction < best.HealthFraction:
			best = c
		case c.ThreatLevel == best.ThreatLevel && c.HealthFraction == best.HealthFraction && c.Timestamp.After(best.Timestamp):
			best = c
		}
	}
	return best
}

// IsUnderAttack reports whether a non-expired call names the entity as
// victim.
func (r *Registry) IsUnderAttack(victim uuid.UUID) bool {
	return r.GetAttacker(victim) != nil
}

// GetAttacker returns the attacker from the first non-expired call naming
// the entity as victim, or nil.
func (r *Registry) GetAttacker(victim uuid.UUID) Combatant {
	turn := r.turnSource()
	for _, c := range r.active(turn) {
		if c.Victim.Handle() == victim {
			return c.Attacker
		}
	}
	return nil
}

// ClearAll drops every call immediately (end of combat). Not tied to expiry
// timing.
func (r *Registry) ClearAll() {
	r.calls = nil
}

// ClearForAttacker drops every call naming the attacker (attacker death).
func (r *Registry) ClearForAttacker(attacker uuid.UUID) {
	kept := r.calls[:0]
	for _, c := range r.calls {
		if c.Attacker.Handle() == attacker {
			continue
		}
		kept = append(kept, c)
	}
	for i := len(kept); i < len(r.calls); i++ {
		r.calls[i] = nil
	}
	r.calls = kept
}
