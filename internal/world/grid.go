package world

import (
	"fmt"
	"log/slog"
	"math/rand"
)

// Grid is the square tile field. It is shared mutable state: the tick engine
// serializes access through the resource lock, so the grid itself carries no
// locking.
type Grid struct {
	tiles [][]Tile
	size  int
	seed  int64
	gen   *generator

	Settlements []*Settlement
}

// Population thresholds at which the grid grows, and the side length each
// step unlocks.
var growthSteps = []struct {
	population int
	size       int
}{
	{90, 16},
	{60, 12},
	{35, 10},
}

// NewGrid generates a size×size world from the seed.
func NewGrid(size int, seed int64) *Grid {
	g := &Grid{size: size, seed: seed, gen: newGenerator(seed)}
	g.tiles = make([][]Tile, size)
	for r := range g.tiles {
		g.tiles[r] = make([]Tile, size)
		for c := range g.tiles[r] {
			g.tiles[r][c] = g.gen.tile(r, c)
		}
	}
	return g
}

// Size returns the current side length.
func (g *Grid) Size() int { return g.size }

// InBounds reports whether (r, c) is on the grid.
func (g *Grid) InBounds(r, c int) bool {
	return r >= 0 && r < g.size && c >= 0 && c < g.size
}

// Tile returns the tile at (r, c). Out-of-bounds access is a programming
// error and panics like a slice index would.
func (g *Grid) Tile(r, c int) *Tile {
	if !g.InBounds(r, c) {
		panic(fmt.Sprintf("world: tile (%d,%d) out of bounds for size %d", r, c, g.size))
	}
	return &g.tiles[r][c]
}

// Habitable returns the coordinates of every habitable tile in row-major
// order.
func (g *Grid) Habitable() []Coord {
	var out []Coord
	for r := 0; r < g.size; r++ {
		for c := 0; c < g.size; c++ {
			if g.tiles[r][c].Habitable {
				out = append(out, Coord{Row: r, Col: c})
			}
		}
	}
	return out
}

// NearestHabitable returns the habitable tile closest to (r, c) by Chebyshev
// distance, or (r, c) itself when nothing habitable exists.
func (g *Grid) NearestHabitable(r, c int) Coord {
	best := Coord{Row: r, Col: c}
	bestDist := -1
	for _, h := range g.Habitable() {
		d := absInt(h.Row - r)
		if dc := absInt(h.Col - c); dc > d {
			d = dc
		}
		if bestDist < 0 || d < bestDist {
			best, bestDist = h, d
		}
	}
	return best
}

// Regen regrows every tile's resources toward its biome cap at the given
// per-tick rate. Habitability is re-derived as food returns.
func (g *Grid) Regen(rate float64) {
	for r := range g.tiles {
		for c := range g.tiles[r] {
			t := &g.tiles[r][c]
			caps := BiomeCaps[t.Biome]
			for k := range t.Resources {
				if t.Resources[k] < caps[k] {
					t.Resources[k] += rate
					if t.Resources[k] > caps[k] {
						t.Resources[k] = caps[k]
					}
				}
			}
			t.refreshHabitability()
		}
	}
}

// SeedFood randomizes starting food across the grid: habitable tiles land
// between half-cap and cap, and one tile in eight is depleted outright so
// the early world has scarcity to react to.
func (g *Grid) SeedFood(rng *rand.Rand) {
	for r := range g.tiles {
		for c := range g.tiles[r] {
			t := &g.tiles[r][c]
			if t.Biome == BiomeSea {
				continue
			}
			ceiling := BiomeCaps[t.Biome][Food]
			t.Resources[Food] = ceiling * (0.5 + 0.5*rng.Float64())
			if rng.Intn(8) == 0 {
				t.Resources[Food] = 0
			}
			t.refreshHabitability()
		}
	}
}

// sizeForPopulation returns the side length the population warrants.
func (g *Grid) sizeForPopulation(pop int) int {
	for _, step := range growthSteps {
		if pop > step.population {
			return step.size
		}
	}
	return g.size
}

// GrowForPopulation expands the grid when the population crosses a growth
// threshold. New rows and columns come from the same noise fields, so the
// frontier continues the existing terrain. Existing coordinates never move.
func (g *Grid) GrowForPopulation(pop int) (oldSize, newSize int, grew bool) {
	target := g.sizeForPopulation(pop)
	if target <= g.size {
		return g.size, g.size, false
	}
	oldSize = g.size

	for r := 0; r < oldSize; r++ {
		for c := oldSize; c < target; c++ {
			g.tiles[r] = append(g.tiles[r], g.gen.tile(r, c))
		}
	}
	for r := oldSize; r < target; r++ {
		row := make([]Tile, target)
		for c := 0; c < target; c++ {
			row[c] = g.gen.tile(r, c)
		}
		g.tiles = append(g.tiles, row)
	}
	g.size = target

	slog.Info("world expanded", "from", oldSize, "to", target, "population", pop)
	return oldSize, target, true
}

// AdjustResource shifts a tile's resource by delta, clamped to [0, biome
// cap], and re-derives habitability. This is the only mutation path offered
// to the plugin boundary.
func (g *Grid) AdjustResource(r, c int, res Resource, delta float64) {
	if !g.InBounds(r, c) {
		return
	}
	t := &g.tiles[r][c]
	v := t.Resources[res] + delta
	if v < 0 {
		v = 0
	}
	if ceiling := BiomeCaps[t.Biome][res]; v > ceiling {
		v = ceiling
	}
	t.Resources[res] = v
	t.refreshHabitability()
}

// SettlementAt returns the active settlement covering (r, c), or nil. A tile
// whose settlement name has gone stale resolves to nil: no association.
func (g *Grid) SettlementAt(r, c int) *Settlement {
	name := g.Tile(r, c).Settlement
	if name == "" {
		return nil
	}
	for _, s := range g.Settlements {
		if s.Name == name && s.Active {
			return s
		}
	}
	return nil
}

// AddSettlement registers a settlement and stamps its name across the tiles
// in its zone.
func (g *Grid) AddSettlement(s *Settlement) {
	g.Settlements = append(g.Settlements, s)
	for r := s.Row - s.Radius; r <= s.Row+s.Radius; r++ {
		for c := s.Col - s.Radius; c <= s.Col+s.Radius; c++ {
			if g.InBounds(r, c) {
				g.tiles[r][c].Settlement = s.Name
			}
		}
	}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
