// Battlefield generation using layered simplex noise.
// Generates elevation and moisture maps, then derives terrain and movement
// costs. Deterministic per seed so repeated runs produce identical fields.
package world

import (
	"math"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// GenConfig holds battlefield generation parameters.
type GenConfig struct {
	Radius     int     // Hex grid radius
	Seed       int64   // Random seed (0 = random)
	WaterLevel float64 // Elevation threshold for water (0.0–1.0)
	RockLevel  float64 // Elevation threshold for impassable rock (0.0–1.0)
}

// DefaultGenConfig returns a reasonable starting configuration.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Radius:     16,
		Seed:       0,
		WaterLevel: 0.22,
		RockLevel:  0.78,
	}
}

// SmallTestConfig returns a tiny battlefield for rapid iteration.
func SmallTestConfig() GenConfig {
	return GenConfig{
		Radius:     5,
		Seed:       42,
		WaterLevel: 0.20,
		RockLevel:  0.82,
	}
}

// Generate creates a complete battlefield grid with terrain.
func Generate(cfg GenConfig) *Grid {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}

	// Two noise generators for independent layers.
	elevNoise := opensimplex.NewNormalized(seed)
	moistNoise := opensimplex.NewNormalized(seed + 1)

	g := NewGrid(cfg.Radius)

	for q := -cfg.Radius; q <= cfg.Radius; q++ {
		for r := -cfg.Radius; r <= cfg.Radius; r++ {
			coord := HexCoord{Q: q, R: r}
			if !g.InBounds(coord) {
				continue
			}

			// Convert hex coords to continuous space for noise sampling.
			// Hex axial → cartesian: x = q + r*0.5, y = r * sqrt(3)/2
			x := float64(q) + float64(r)*0.5
			y := float64(r) * math.Sqrt(3.0) / 2.0

			elev := octaveNoise(elevNoise, x, y, 4, 0.10, 0.5)
			moist := octaveNoise(moistNoise, x, y, 3, 0.08, 0.5)

			g.Set(&Cell{
				Coord:   coord,
				Terrain: deriveTerrain(elev, moist, cfg),
			})
		}
	}

	// The spawn area in the middle of the field must be enterable; flatten
	// it to grass so generated battles always have somewhere to stand.
	center := g.Get(HexCoord{})
	if center != nil && !center.IsWalkable() {
		center.Terrain = TerrainGrass
	}
	for _, n := range (HexCoord{}).Neighbors() {
		if cell := g.Get(n); cell != nil && !cell.IsWalkable() {
			cell.Terrain = TerrainGrass
		}
	}

	return g
}

// deriveTerrain maps elevation and moisture to a terrain kind.
func deriveTerrain(elev, moist float64, cfg GenConfig) Terrain {
	switch {
	case elev < cfg.WaterLevel:
		return TerrainWater
	case elev > cfg.RockLevel:
		return TerrainRock
	case elev > cfg.RockLevel-0.12:
		return TerrainHill
	case moist > 0.72:
		return TerrainSwamp
	case moist > 0.48:
		return TerrainForest
	default:
		return TerrainGrass
	}
}

// TerrainCounts tallies cells by terrain kind.
func TerrainCounts(g *Grid) map[Terrain]int {
	counts := make(map[Terrain]int)
	for _, cell := range g.Cells {
		counts[cell.Terrain]++
	}
	return counts
}

// octaveNoise samples multi-octave noise for natural-looking terrain.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxValue := 0.0
	freq := frequency

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*freq, y*freq) * amplitude
		maxValue += amplitude
		amplitude *= persistence
		freq *= 2
	}

	return total / maxValue
}
