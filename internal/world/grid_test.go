package world

import (
	"math/rand"
	"testing"
)

func TestGenerationIsDeterministic(t *testing.T) {
	a := NewGrid(8, 42)
	b := NewGrid(8, 42)
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			if a.Tile(r, c).Biome != b.Tile(r, c).Biome {
				t.Fatalf("same seed produced different biomes at (%d,%d)", r, c)
			}
		}
	}
}

func TestGrowthPreservesExistingTiles(t *testing.T) {
	g := NewGrid(8, 42)
	before := make([]Biome, 0, 64)
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			before = append(before, g.Tile(r, c).Biome)
		}
	}

	oldSize, newSize, grew := g.GrowForPopulation(40)
	if !grew || oldSize != 8 || newSize != 10 {
		t.Fatalf("growth = (%d → %d, %v), want 8 → 10", oldSize, newSize, grew)
	}
	i := 0
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			if g.Tile(r, c).Biome != before[i] {
				t.Fatalf("growth disturbed existing tile (%d,%d)", r, c)
			}
			i++
		}
	}

	// The grid never shrinks.
	if _, _, grew := g.GrowForPopulation(0); grew {
		t.Fatalf("grid shrank for a falling population")
	}
}

func TestAdjustResourceClamps(t *testing.T) {
	g := NewGrid(8, 42)
	var land Coord
	found := false
	for r := 0; r < 8 && !found; r++ {
		for c := 0; c < 8; c++ {
			if g.Tile(r, c).Biome != BiomeSea {
				land, found = Coord{Row: r, Col: c}, true
				break
			}
		}
	}
	if !found {
		t.Skip("seed produced an all-sea grid")
	}

	g.AdjustResource(land.Row, land.Col, Food, -1000)
	tile := g.Tile(land.Row, land.Col)
	if tile.Resources[Food] != 0 {
		t.Fatalf("food = %.2f after drain, want 0", tile.Resources[Food])
	}
	if tile.Habitable {
		t.Fatalf("foodless land tile still habitable")
	}

	ceiling := BiomeCaps[tile.Biome][Food]
	g.AdjustResource(land.Row, land.Col, Food, 1000)
	if tile.Resources[Food] != ceiling {
		t.Fatalf("food = %.2f after flood, want biome cap %.2f", tile.Resources[Food], ceiling)
	}
	if ceiling > 0 && !tile.Habitable {
		t.Fatalf("fed land tile not habitable")
	}
}

func TestRegenStopsAtBiomeCap(t *testing.T) {
	g := NewGrid(8, 42)
	for i := 0; i < 1000; i++ {
		g.Regen(0.25)
	}
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			tile := g.Tile(r, c)
			caps := BiomeCaps[tile.Biome]
			for k := range tile.Resources {
				if tile.Resources[k] > caps[k] {
					t.Fatalf("tile (%d,%d) resource %d = %.2f above cap %.2f", r, c, k, tile.Resources[k], caps[k])
				}
			}
		}
	}
}

func TestSeedFoodStaysWithinCaps(t *testing.T) {
	g := NewGrid(8, 42)
	g.SeedFood(rand.New(rand.NewSource(7)))
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			tile := g.Tile(r, c)
			if tile.Resources[Food] > BiomeCaps[tile.Biome][Food] {
				t.Fatalf("seeded food above cap at (%d,%d)", r, c)
			}
		}
	}
}

func TestSettlementLookupMissIsNoAssociation(t *testing.T) {
	g := NewGrid(8, 42)
	s := &Settlement{Name: "Arin's Rest", Owner: "Kin of Arin", Row: 3, Col: 3, Radius: 1, Housing: 12, Active: true}
	g.AddSettlement(s)

	if got := g.SettlementAt(3, 4); got != s {
		t.Fatalf("in-zone lookup missed the settlement")
	}

	s.Active = false
	if got := g.SettlementAt(3, 4); got != nil {
		t.Fatalf("inactive settlement still resolves: %+v", got)
	}
}
