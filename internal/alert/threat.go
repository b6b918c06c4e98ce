// Package alert records combat events as distress calls, expires them, and
// answers the ranked queries NPCs use to decide whom to rescue.
package alert

import (
	"github.com/google/uuid"

	"github.com/talgya/skirmish/internal/faction"
	"github.com/talgya/skirmish/internal/world"
)

// Combatant is the read surface the alert system needs from a unit. The
// registry never owns combatants; a call whose victim or attacker is no
// longer valid is purged on the next sweep.
type Combatant interface {
	Handle() uuid.UUID
	EntityName() string
	Faction() faction.Faction
	Position() world.HexCoord
	Alive() bool

	Health() int
	MaxHealth() int
	AttackDamage() int
	CritChance() float64
	CritMultiplier() float64
	// Protected marks archetypes the AI prioritizes keeping alive
	// (healers, caravan drivers, quest givers).
	Protected() bool
}

// Threat scoring weights. Tuned so a common battlefield unit (attack ~10,
// health ~50) lands mid-scale and a boss-grade unit saturates near 100.
const (
	threatAttackWeight = 1.2
	threatHealthWeight = 0.25
	threatCritWeight   = 0.8
)

// ThreatLevel scores a combatant's strength into roughly [0,100]: a
// weighted combination of base attack damage, max health, and expected
// critical damage per swing. Lower is weaker.
func ThreatLevel(c Combatant) float64 {
	atk := float64(c.AttackDamage())
	hp := float64(c.MaxHealth())
	expectedCrit := c.CritChance() * c.CritMultiplier() * atk

	score := atk*threatAttackWeight + hp*threatHealthWeight + expectedCrit*threatCritWeight
	return clamp(score, 0, 100)
}

// HealthFraction returns the combatant's health as a fraction in [0,1].
func HealthFraction(c Combatant) float64 {
	max := c.MaxHealth()
	if max <= 0 {
		return 0
	}
	return clamp(float64(c.Health())/float64(max), 0, 1)
}

// ProtectionPriority ranks how badly a combatant needs protecting: inverted
// threat (protect the weak first), plus an urgency term from missing
// health, plus a flat bonus for protected archetypes. Higher means more
// deserving of rescue.
func ProtectionPriority(c Combatant) float64 {
	priority := (100 - ThreatLevel(c)) + (1-HealthFraction(c))*50
	if c.Protected() {
		priority += 25
	}
	return priority
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
