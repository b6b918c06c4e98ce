package persistence

import (
	"path/filepath"
	"testing"

	"github.com/talgya/skirmish/internal/battle"
	"github.com/talgya/skirmish/internal/entropy"
	"github.com/talgya/skirmish/internal/faction"
	"github.com/talgya/skirmish/internal/unit"
	"github.com/talgya/skirmish/internal/world"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "skirmish.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func smallBattle(t *testing.T) *battle.Battle {
	t.Helper()
	grid := world.NewGrid(3)
	for q := -3; q <= 3; q++ {
		for r := -3; r <= 3; r++ {
			c := world.HexCoord{Q: q, R: r}
			if grid.InBounds(c) {
				grid.Set(&world.Cell{Coord: c, Terrain: world.TerrainGrass})
			}
		}
	}
	grid.Set(&world.Cell{Coord: world.HexCoord{Q: 2, R: 0}, Terrain: world.TerrainSwamp})
	return battle.New(battle.Config{Grid: grid, Rolls: entropy.Seeded(7)})
}

func TestSaveLoadRoundTrip(t *testing.T) {
	db := openTestDB(t)
	b := smallBattle(t)

	hero, err := b.SpawnPlayer(unit.Config{
		Name:    "hero",
		Faction: faction.Player,
		Stats: unit.Stats{
			Health: 100, MaxHealth: 100,
			AttackDamage: 10, Armor: 2,
			CritChance: 0.2, CritMultiplier: 1.5,
		},
		ActionPoints: 6,
		VisionRange:  8, HearingRange: 10,
	})
	if err != nil {
		t.Fatal(err)
	}
	healer := b.SpawnNPC(unit.Config{
		Name:     "healer",
		Faction:  faction.Villagers,
		Position: world.HexCoord{Q: 1, R: 1},
		Stats: unit.Stats{
			Health: 40, MaxHealth: 40,
			AttackDamage: 2,
		},
		ActionPoints: 4,
		Protected:    true,
	})

	// Give the save something mid-battle to capture.
	healer.TakeDamage(15)
	hero.ConsumeActionPoints(3)
	b.Factions.SetStanding(faction.Mercenaries, faction.Player, faction.Friendly)
	b.Scheduler.SetTurnNumber(9)

	if err := db.SaveBattle(b); err != nil {
		t.Fatalf("save: %v", err)
	}
	if !db.HasSave() {
		t.Fatal("HasSave false after a save")
	}

	loaded, err := db.LoadBattle(entropy.Seeded(7))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if got := loaded.Scheduler.TurnNumber(); got != 9 {
		t.Errorf("turn = %d, want 9", got)
	}
	if loaded.Grid.CellCount() != b.Grid.CellCount() {
		t.Errorf("cells = %d, want %d", loaded.Grid.CellCount(), b.Grid.CellCount())
	}
	if cell := loaded.Grid.Get(world.HexCoord{Q: 2, R: 0}); cell == nil || cell.Terrain != world.TerrainSwamp {
		t.Error("swamp cell lost in the round trip")
	}

	if len(loaded.Units()) != 2 {
		t.Fatalf("units = %d, want 2", len(loaded.Units()))
	}
	lh, ok := loaded.Unit(hero.Handle())
	if !ok {
		t.Fatal("hero handle not preserved")
	}
	if lh.ActionPoints() != 3 || lh.MaxActionPoints() != 6 {
		t.Errorf("hero points = %d/%d, want 3/6", lh.ActionPoints(), lh.MaxActionPoints())
	}
	if lh.Stats() != hero.Stats() {
		t.Errorf("hero stats = %+v, want %+v", lh.Stats(), hero.Stats())
	}
	if p := loaded.Scheduler.PlayerEntity(); p == nil || p.Handle() != hero.Handle() {
		t.Error("player slot not restored")
	}

	lhealer, ok := loaded.Unit(healer.Handle())
	if !ok {
		t.Fatal("healer handle not preserved")
	}
	if lhealer.Health() != healer.Health() {
		t.Errorf("healer health = %d, want %d", lhealer.Health(), healer.Health())
	}
	if !lhealer.Protected() {
		t.Error("protected flag lost")
	}
	if !loaded.Grid.IsOccupied(world.HexCoord{Q: 1, R: 1}) {
		t.Error("occupancy index not rebuilt")
	}

	if got := loaded.Factions.GetStanding(faction.Mercenaries, faction.Player); got != faction.Friendly {
		t.Errorf("standing override = %v, want Friendly", got)
	}
}

func TestLoadWithoutSave(t *testing.T) {
	db := openTestDB(t)
	if db.HasSave() {
		t.Error("fresh database reports a save")
	}
	if _, err := db.LoadBattle(nil); err == nil {
		t.Error("loading an empty database must fail")
	}
}

func TestSaveIsFullReplace(t *testing.T) {
	db := openTestDB(t)
	b := smallBattle(t)

	b.SpawnNPC(unit.Config{
		Name: "wolf", Faction: faction.Wildlife,
		Position: world.HexCoord{Q: -1, R: 0},
		Stats:    unit.Stats{Health: 30, MaxHealth: 30, AttackDamage: 6},
	})
	if err := db.SaveBattle(b); err != nil {
		t.Fatal(err)
	}

	// A later save with fewer units must not resurrect the old ones.
	b2 := smallBattle(t)
	if err := db.SaveBattle(b2); err != nil {
		t.Fatal(err)
	}
	loaded, err := db.LoadBattle(nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded.Units()) != 0 {
		t.Errorf("units = %d, want 0 after replacing save", len(loaded.Units()))
	}
}
