package pathfind

import (
	"reflect"
	"testing"

	"github.com/talgya/skirmish/internal/world"
)

// uniformGrid builds a grass-only grid of the given radius.
func uniformGrid(radius int) *world.Grid {
	g := world.NewGrid(radius)
	for q := -radius; q <= radius; q++ {
		for r := -radius; r <= radius; r++ {
			coord := world.HexCoord{Q: q, R: r}
			if g.InBounds(coord) {
				g.Set(&world.Cell{Coord: coord, Terrain: world.TerrainGrass})
			}
		}
	}
	return g
}

func TestFindPathUniformCost(t *testing.T) {
	g := uniformGrid(6)
	start := world.HexCoord{Q: 0, R: 0}

	// On a uniform cost-1 grid with no obstacles, a path between
	// coordinates at hex distance d has length d and cost d.
	goals := []world.HexCoord{
		{Q: 4, R: 0},
		{Q: 0, R: 5},
		{Q: 3, R: -5},
		{Q: -2, R: -2},
	}
	for _, goal := range goals {
		d := world.Distance(start, goal)
		p := FindPath(g, start, goal, 0)
		if p == nil {
			t.Fatalf("no path to %v", goal)
		}
		if len(p.Steps) != d {
			t.Errorf("path to %v has %d steps, want %d", goal, len(p.Steps), d)
		}
		if p.Cost != d {
			t.Errorf("path to %v costs %d, want %d", goal, p.Cost, d)
		}
		if dest, _ := p.Destination(); dest != goal {
			t.Errorf("path ends at %v, want %v", dest, goal)
		}
	}
}

func TestFindPathExcludesOrigin(t *testing.T) {
	g := uniformGrid(3)
	p := FindPath(g, world.HexCoord{Q: 0, R: 0}, world.HexCoord{Q: 2, R: 0}, 0)
	if p == nil {
		t.Fatal("expected a path")
	}
	for _, step := range p.Steps {
		if step == (world.HexCoord{Q: 0, R: 0}) {
			t.Error("path must exclude the origin")
		}
	}
}

func TestFindPathDeterministic(t *testing.T) {
	g := uniformGrid(6)
	start := world.HexCoord{Q: -3, R: 0}
	goal := world.HexCoord{Q: 3, R: 1}

	first := FindPath(g, start, goal, 0)
	if first == nil {
		t.Fatal("expected a path")
	}
	// Identical grid state and identical arguments must return the
	// identical path, not merely an equal-cost one.
	for i := 0; i < 10; i++ {
		again := FindPath(g, start, goal, 0)
		if again == nil {
			t.Fatal("expected a path on repeat query")
		}
		if !reflect.DeepEqual(first.Steps, again.Steps) {
			t.Fatalf("query %d returned a different path:\n%v\nvs\n%v", i, first.Steps, again.Steps)
		}
	}
}

func TestFindPathDegenerateInputs(t *testing.T) {
	g := uniformGrid(3)
	same := world.HexCoord{Q: 1, R: 1}

	if p := FindPath(g, same, same, 0); p != nil {
		t.Error("start == goal must return nil")
	}
	if p := FindPath(g, same, world.HexCoord{Q: 50, R: 50}, 0); p != nil {
		t.Error("absent goal cell must return nil")
	}
	if p := FindPath(g, world.HexCoord{Q: 50, R: 50}, same, 0); p != nil {
		t.Error("absent start cell must return nil")
	}
}

func TestFindPathAroundObstacles(t *testing.T) {
	g := uniformGrid(4)
	// Wall of rock across the direct line from (0,0) to (3,0).
	for _, coord := range []world.HexCoord{{Q: 1, R: -1}, {Q: 1, R: 0}, {Q: 1, R: 1}} {
		g.Set(&world.Cell{Coord: coord, Terrain: world.TerrainRock})
	}

	p := FindPath(g, world.HexCoord{Q: 0, R: 0}, world.HexCoord{Q: 3, R: 0}, 0)
	if p == nil {
		t.Fatal("expected a detour path")
	}
	if p.Cost <= 3 {
		t.Errorf("detour cost %d should exceed the blocked direct route", p.Cost)
	}
	for _, step := range p.Steps {
		if cell := g.Get(step); cell == nil || !cell.IsWalkable() {
			t.Errorf("path crosses impassable cell %v", step)
		}
	}
}

func TestFindPathNoRoute(t *testing.T) {
	g := uniformGrid(3)
	goal := world.HexCoord{Q: 2, R: 0}
	// Seal the goal behind rock on every side.
	for _, n := range goal.Neighbors() {
		g.Set(&world.Cell{Coord: n, Terrain: world.TerrainRock})
	}

	if p := FindPath(g, world.HexCoord{Q: 0, R: 0}, goal, 0); p != nil {
		t.Errorf("expected nil for sealed goal, got %v", p.Steps)
	}
}

func TestFindPathPrefersCheapTerrain(t *testing.T) {
	g := uniformGrid(4)
	// Swamp on the direct route; the search should walk around it.
	g.Set(&world.Cell{Coord: world.HexCoord{Q: 1, R: 0}, Terrain: world.TerrainSwamp})

	p := FindPath(g, world.HexCoord{Q: 0, R: 0}, world.HexCoord{Q: 2, R: 0}, 0)
	if p == nil {
		t.Fatal("expected a path")
	}
	if p.Cost != 3 {
		t.Errorf("cost = %d, want 3 (detour beats the 5-cost swamp route)", p.Cost)
	}
	for _, step := range p.Steps {
		if g.Get(step).Terrain == world.TerrainSwamp {
			t.Error("path should avoid the swamp cell")
		}
	}
}

func TestFindPathMaxCost(t *testing.T) {
	g := uniformGrid(5)
	start := world.HexCoord{Q: 0, R: 0}
	goal := world.HexCoord{Q: 4, R: 0}

	if p := FindPath(g, start, goal, 3); p != nil {
		t.Errorf("budget 3 cannot reach distance 4, got cost %d", p.Cost)
	}
	if p := FindPath(g, start, goal, 4); p == nil {
		t.Error("budget 4 should exactly reach distance 4")
	}
}

func TestPathCostAgreesWithSearch(t *testing.T) {
	cfg := world.SmallTestConfig()
	g := world.Generate(cfg)

	start := world.HexCoord{Q: 0, R: 0}
	found := 0
	for coord, cell := range g.Cells {
		if coord == start || !cell.IsWalkable() {
			continue
		}
		p := FindPath(g, start, coord, 0)
		if p == nil {
			continue
		}
		found++
		if recomputed := PathCost(g, p.Steps); recomputed != p.Cost {
			t.Errorf("path to %v: search cost %d, recomputed %d", coord, p.Cost, recomputed)
		}
	}
	if found == 0 {
		t.Fatal("generated battlefield produced no reachable cells")
	}
}
