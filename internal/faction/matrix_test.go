package faction

import "testing"

func TestSelfStandingIsAlwaysAllied(t *testing.T) {
	m := NewMatrix(Neutral)
	// Even a poisoned table entry cannot override the identity rule.
	m.SetStanding(Bandits, Bandits, Hostile)

	for _, f := range All() {
		if got := m.GetStanding(f, f); got != Allied {
			t.Errorf("GetStanding(%s, %s) = %s, want Allied", f.Name(), f.Name(), got)
		}
	}
}

func TestDefaultStandingFallback(t *testing.T) {
	m := NewMatrix(Unfriendly)
	if got := m.GetStanding(Player, Mercenaries); got != Unfriendly {
		t.Errorf("absent entry = %s, want default Unfriendly", got)
	}
}

func TestSetStandingIsDirected(t *testing.T) {
	m := NewMatrix(Neutral)
	m.SetStanding(Mercenaries, Player, Friendly)

	if got := m.GetStanding(Mercenaries, Player); got != Friendly {
		t.Errorf("forward standing = %s, want Friendly", got)
	}
	// The reverse direction must be untouched.
	if got := m.GetStanding(Player, Mercenaries); got != Neutral {
		t.Errorf("reverse standing = %s, want default Neutral", got)
	}

	// Overwriting replaces, not accumulates.
	m.SetStanding(Mercenaries, Player, Hostile)
	if got := m.GetStanding(Mercenaries, Player); got != Hostile {
		t.Errorf("overwritten standing = %s, want Hostile", got)
	}
}

func TestStandingPredicates(t *testing.T) {
	m := DefaultMatrix()

	cases := []struct {
		name             string
		source, target   Faction
		friendly, enemy  bool
		neutral          bool
	}{
		{"villagers adore player", Villagers, Player, true, false, false},
		{"bandits hate player", Bandits, Player, false, true, false},
		{"player ignores mercenaries", Player, Mercenaries, false, false, true},
		{"bandits wary of mercenaries", Bandits, Mercenaries, false, false, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := m.IsFriendly(tc.source, tc.target); got != tc.friendly {
				t.Errorf("IsFriendly = %t, want %t", got, tc.friendly)
			}
			if got := m.IsEnemy(tc.source, tc.target); got != tc.enemy {
				t.Errorf("IsEnemy = %t, want %t", got, tc.enemy)
			}
			if got := m.IsNeutral(tc.source, tc.target); got != tc.neutral {
				t.Errorf("IsNeutral = %t, want %t", got, tc.neutral)
			}
		})
	}
}

func TestParseMatrix(t *testing.T) {
	data := []byte(`
default: Unfriendly
standings:
  - source: Bandits
    target: Player
    standing: Hostile
  - source: Villagers
    target: Player
    standing: Allied
`)
	m, err := ParseMatrix(data)
	if err != nil {
		t.Fatalf("ParseMatrix: %v", err)
	}
	if got := m.GetStanding(Bandits, Player); got != Hostile {
		t.Errorf("Bandits→Player = %s, want Hostile", got)
	}
	if got := m.GetStanding(Villagers, Player); got != Allied {
		t.Errorf("Villagers→Player = %s, want Allied", got)
	}
	if got := m.GetStanding(Mercenaries, Wildlife); got != Unfriendly {
		t.Errorf("absent entry = %s, want file default Unfriendly", got)
	}
}

func TestParseMatrixRejectsUnknownNames(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"unknown faction", "standings:\n  - source: Elves\n    target: Player\n    standing: Hostile\n"},
		{"unknown standing", "standings:\n  - source: Bandits\n    target: Player\n    standing: Furious\n"},
		{"unknown default", "default: Grumpy\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseMatrix([]byte(tc.data)); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}
