package faction

import "log/slog"

// Matrix answers "how does faction A view faction B" queries.
//
// The table is a sparse directed mapping; entries absent from it resolve to
// the configured default standing. Relationships are intentionally
// asymmetric: setting A→B never touches B→A. A faction always views itself
// as Allied, regardless of table contents.
type Matrix struct {
	standings map[Faction]map[Faction]Standing
	def       Standing
}

// NewMatrix creates an empty matrix with the given default standing for
// absent entries.
func NewMatrix(defaultStanding Standing) *Matrix {
	return &Matrix{
		standings: make(map[Faction]map[Faction]Standing),
		def:       defaultStanding,
	}
}

// DefaultMatrix returns the standard battlefield relationships: villagers
// side with the player, bandits and wildlife prey on everyone, mercenaries
// stay aloof.
func DefaultMatrix() *Matrix {
	m := NewMatrix(Neutral)

	m.SetStanding(Player, Villagers, Friendly)
	m.SetStanding(Villagers, Player, Allied)

	m.SetStanding(Bandits, Player, Hostile)
	m.SetStanding(Player, Bandits, Hostile)
	m.SetStanding(Bandits, Villagers, Hostile)
	m.SetStanding(Villagers, Bandits, Hostile)
	m.SetStanding(Bandits, Mercenaries, Unfriendly)

	m.SetStanding(Wildlife, Player, Hostile)
	m.SetStanding(Wildlife, Villagers, Hostile)
	m.SetStanding(Wildlife, Bandits, Hostile)
	m.SetStanding(Wildlife, Mercenaries, Hostile)

	m.SetStanding(Mercenaries, Bandits, Unfriendly)
	m.SetStanding(Villagers, Mercenaries, Friendly)

	return m
}

// GetStanding returns how source views target. The identity override is
// checked before the table: a faction is always Allied with itself.
// Unknown factions fall back to the default standing.
func (m *Matrix) GetStanding(source, target Faction) Standing {
	if source == target {
		return Allied
	}
	if row, ok := m.standings[source]; ok {
		if s, ok := row[target]; ok {
			return s
		}
	}
	return m.def
}

// SetStanding overwrites a single directed entry at runtime, for reputation
// changes. The reverse direction is left untouched.
func (m *Matrix) SetStanding(source, target Faction, standing Standing) {
	row, ok := m.standings[source]
	if !ok {
		row = make(map[Faction]Standing)
		m.standings[source] = row
	}
	row[target] = standing
	slog.Debug("standing set",
		"source", source.Name(),
		"target", target.Name(),
		"standing", standing.String(),
	)
}

// DefaultStanding returns the standing used for absent entries.
func (m *Matrix) DefaultStanding() Standing { return m.def }

// Entry is one directed relationship, for persistence and export.
type Entry struct {
	Source   Faction
	Target   Faction
	Standing Standing
}

// Entries returns the explicit (non-default, non-identity) relationships in
// a fixed faction order, so repeated saves are byte-identical.
func (m *Matrix) Entries() []Entry {
	var out []Entry
	for _, source := range All() {
		row, ok := m.standings[source]
		if !ok {
			continue
		}
		for _, target := range All() {
			if s, ok := row[target]; ok && source != target {
				out = append(out, Entry{Source: source, Target: target, Standing: s})
			}
		}
	}
	return out
}

// IsFriendly reports whether source views target as Friendly or Allied.
func (m *Matrix) IsFriendly(source, target Faction) bool {
	s := m.GetStanding(source, target)
	return s == Friendly || s == Allied
}

// IsEnemy reports whether source views target as Hostile.
func (m *Matrix) IsEnemy(source, target Faction) bool {
	return m.GetStanding(source, target) == Hostile
}

// IsNeutral reports whether source views target as exactly Neutral.
func (m *Matrix) IsNeutral(source, target Faction) bool {
	return m.GetStanding(source, target) == Neutral
}
