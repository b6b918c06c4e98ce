// Package faction defines the closed set of battlefield factions and the
// directed relationship matrix between them.
package faction

// Faction is a stable identifier for one of the battlefield's sides.
// The set is closed: factions are never created or destroyed at runtime.
type Faction uint8

const (
	Player Faction = iota
	Villagers
	Bandits
	Wildlife
	Mercenaries

	factionCount
)

// All lists every faction, in declaration order.
func All() []Faction {
	out := make([]Faction, 0, factionCount)
	for f := Faction(0); f < factionCount; f++ {
		out = append(out, f)
	}
	return out
}

// Name returns the faction's display name.
func (f Faction) Name() string {
	switch f {
	case Player:
		return "Player"
	case Villagers:
		return "Villagers"
	case Bandits:
		return "Bandits"
	case Wildlife:
		return "Wildlife"
	case Mercenaries:
		return "Mercenaries"
	default:
		return "Unknown"
	}
}

// FromName resolves a faction by display name. Used by the YAML standings
// loader; unknown names report ok=false rather than inventing a faction.
func FromName(name string) (Faction, bool) {
	for f := Faction(0); f < factionCount; f++ {
		if f.Name() == name {
			return f, true
		}
	}
	return 0, false
}

// Standing is a faction's directed attitude toward another faction.
// The order is meaningful: comparisons use it.
type Standing int8

const (
	Hostile Standing = iota
	Unfriendly
	Neutral
	Friendly
	Allied
)

// StandingName returns the standing's display name.
func (s Standing) String() string {
	switch s {
	case Hostile:
		return "Hostile"
	case Unfriendly:
		return "Unfriendly"
	case Neutral:
		return "Neutral"
	case Friendly:
		return "Friendly"
	case Allied:
		return "Allied"
	default:
		return "Unknown"
	}
}

// StandingFromName resolves a standing by display name.
func StandingFromName(name string) (Standing, bool) {
	for s := Hostile; s <= Allied; s++ {
		if s.String() == name {
			return s, true
		}
	}
	return 0, false
}
