package world

import "testing"

func TestDistance(t *testing.T) {
	cases := []struct {
		name string
		a, b HexCoord
		want int
	}{
		{"same cell", HexCoord{0, 0}, HexCoord{0, 0}, 0},
		{"adjacent east", HexCoord{0, 0}, HexCoord{1, 0}, 1},
		{"adjacent southeast", HexCoord{0, 0}, HexCoord{0, 1}, 1},
		{"straight line", HexCoord{0, 0}, HexCoord{3, 0}, 3},
		{"diagonal", HexCoord{0, 0}, HexCoord{2, -5}, 5},
		{"negative quadrant", HexCoord{-2, -3}, HexCoord{1, 1}, 7},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Distance(tc.a, tc.b); got != tc.want {
				t.Errorf("Distance(%v, %v) = %d, want %d", tc.a, tc.b, got, tc.want)
			}
			// Distance is symmetric.
			if got := Distance(tc.b, tc.a); got != tc.want {
				t.Errorf("Distance(%v, %v) = %d, want %d", tc.b, tc.a, got, tc.want)
			}
		})
	}
}

func TestNeighborsAreAdjacent(t *testing.T) {
	origin := HexCoord{Q: 3, R: -2}
	seen := make(map[HexCoord]bool)

	for _, n := range origin.Neighbors() {
		if d := Distance(origin, n); d != 1 {
			t.Errorf("neighbor %v at distance %d, want 1", n, d)
		}
		if seen[n] {
			t.Errorf("duplicate neighbor %v", n)
		}
		seen[n] = true
	}

	if len(seen) != 6 {
		t.Errorf("expected 6 distinct neighbors, got %d", len(seen))
	}
}

func TestCubeCoordinateSum(t *testing.T) {
	// q + r + s must always be zero.
	coords := []HexCoord{{0, 0}, {5, -3}, {-4, 7}, {12, 12}}
	for _, c := range coords {
		if c.Q+c.R+c.S() != 0 {
			t.Errorf("cube sum for %v is %d, want 0", c, c.Q+c.R+c.S())
		}
	}
}

func TestCellsFromWorld(t *testing.T) {
	if got := CellsFromWorld(10.0, 2.0); got != 5 {
		t.Errorf("CellsFromWorld(10, 2) = %d, want 5", got)
	}
	if got := CellsFromWorld(7.5, 2.5); got != 3 {
		t.Errorf("CellsFromWorld(7.5, 2.5) = %d, want 3", got)
	}
	// Degenerate hex size must not divide by zero.
	if got := CellsFromWorld(10.0, 0); got != 0 {
		t.Errorf("CellsFromWorld(10, 0) = %d, want 0", got)
	}
}
