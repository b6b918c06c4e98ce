package alert

import (
	"time"

	"github.com/talgya/skirmish/internal/faction"
	"github.com/talgya/skirmish/internal/world"
)

// DistressCall is a record of an attack: who was hit, by whom, where, and
// how badly. At most one call is live per (victim, attacker) pair — a
// repeat attack merges into the existing call instead of duplicating it.
type DistressCall struct {
	Victim   Combatant
	Attacker Combatant

	VictimFaction faction.Faction
	Position      world.HexCoord

	// CreatedTurn drives turn-based expiry; Timestamp drives the legacy
	// wall-clock variant and breaks recency ties in queries. Timestamp is
	// refreshed when the call is merged into.
	CreatedTurn int
	Timestamp   time.Time

	// Damage accumulates across merged attacks. HealthFraction and
	// ThreatLevel are sampled from the victim at broadcast time and
	// refreshed on merge.
	Damage         int
	ThreatLevel    float64
	HealthFraction float64
}

// Sound-level model: a call starts at a base murmur, rises as the victim's
// health falls, and gets a capped transient boost from recent damage.
const (
	soundBase        = 20.0
	soundHealthSpan  = 80.0
	soundDamageScale = 0.5
	soundDamageCap   = 20.0
)

// SoundLevel derives the call's urgency in [0,100]: near-full health is a
// mild call (~20), near-death a desperate scream (~92–100). Pure function
// of the call's current fields, recomputed on every read, never cached.
func (c *DistressCall) SoundLevel() float64 {
	boost := float64(c.Damage) * soundDamageScale
	if boost > soundDamageCap {
		boost = soundDamageCap
	}
	return clamp(soundBase+(1-c.HealthFraction)*soundHealthSpan+boost, 0, 100)
}

// refresh re-samples the victim-dependent fields after a merge.
func (c *DistressCall) refresh(now time.Time) {
	c.Position = c.Victim.Position()
	c.HealthFraction = HealthFraction(c.Victim)
	c.ThreatLevel = ThreatLevel(c.Victim)
	c.Timestamp = now
}

// valid reports whether both parties can still be referenced.
func (c *DistressCall) valid() bool {
	return c.Victim != nil && c.Attacker != nil && c.Victim.Alive() && c.Attacker.Alive()
}
