package world

import (
	"testing"

	"github.com/google/uuid"
)

func TestGridBoundsAndCells(t *testing.T) {
	g := NewGrid(2)
	g.Set(&Cell{Coord: HexCoord{0, 0}, Terrain: TerrainGrass})
	g.Set(&Cell{Coord: HexCoord{1, 0}, Terrain: TerrainWater})

	if cell := g.Get(HexCoord{0, 0}); cell == nil || !cell.IsWalkable() {
		t.Error("grass cell should exist and be walkable")
	}
	if cell := g.Get(HexCoord{1, 0}); cell == nil || cell.IsWalkable() {
		t.Error("water cell should exist and be impassable")
	}
	// Absent cell resolves to nil, not an error.
	if cell := g.Get(HexCoord{9, 9}); cell != nil {
		t.Error("absent cell should be nil")
	}

	if !g.InBounds(HexCoord{1, 1}) {
		t.Error("(1,1) should be within radius 2")
	}
	if g.InBounds(HexCoord{2, 1}) {
		t.Error("(2,1) has cube magnitude 3, outside radius 2")
	}
}

func TestTerrainCosts(t *testing.T) {
	cases := []struct {
		terrain Terrain
		cost    int
	}{
		{TerrainGrass, 1},
		{TerrainForest, 2},
		{TerrainHill, 3},
		{TerrainSwamp, 4},
		{TerrainWater, ImpassableCost},
		{TerrainRock, ImpassableCost},
	}
	for _, tc := range cases {
		if got := tc.terrain.MovementCost(); got != tc.cost {
			t.Errorf("%s cost = %d, want %d", TerrainName(tc.terrain), got, tc.cost)
		}
	}
}

func TestOccupancyIndex(t *testing.T) {
	g := NewGrid(3)
	pos := HexCoord{1, -1}
	id := uuid.New()
	other := uuid.New()

	if g.IsOccupied(pos) {
		t.Error("fresh grid should have no occupants")
	}

	g.Occupy(pos, id)
	if !g.IsOccupied(pos) {
		t.Error("cell should be occupied after Occupy")
	}
	got, ok := g.OccupantAt(pos)
	if !ok || got != id {
		t.Errorf("OccupantAt = %v, want %v", got, id)
	}

	// Vacating with a stale handle is a no-op.
	g.Vacate(pos, other)
	if !g.IsOccupied(pos) {
		t.Error("stale Vacate must not clear another unit's cell")
	}

	g.Vacate(pos, id)
	if g.IsOccupied(pos) {
		t.Error("cell should be free after Vacate")
	}
}

func TestGenerateDeterministic(t *testing.T) {
	cfg := SmallTestConfig()
	g1 := Generate(cfg)
	g2 := Generate(cfg)

	if g1.CellCount() != g2.CellCount() {
		t.Fatalf("cell count mismatch: %d != %d", g1.CellCount(), g2.CellCount())
	}
	for coord, cell := range g1.Cells {
		otherCell := g2.Get(coord)
		if otherCell == nil {
			t.Fatalf("cell %v missing from second generation", coord)
		}
		if cell.Terrain != otherCell.Terrain {
			t.Errorf("terrain mismatch at %v: %s != %s",
				coord, TerrainName(cell.Terrain), TerrainName(otherCell.Terrain))
		}
	}
}

func TestGenerateSpawnAreaWalkable(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		cfg := SmallTestConfig()
		cfg.Seed = seed
		g := Generate(cfg)

		center := g.Get(HexCoord{})
		if center == nil || !center.IsWalkable() {
			t.Errorf("seed %d: center cell must be walkable", seed)
		}
		for _, n := range (HexCoord{}).Neighbors() {
			if cell := g.Get(n); cell == nil || !cell.IsWalkable() {
				t.Errorf("seed %d: spawn neighbor %v must be walkable", seed, n)
			}
		}
	}
}
