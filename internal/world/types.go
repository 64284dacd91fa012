// Package world holds the tile grid, its biomes and resources, and the
// settlement zones laid over it. It knows nothing about agents; occupancy
// lives in the spatial partition.
package world

// Coord addresses a tile by row and column.
type Coord struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Biome classifies a tile's terrain.
type Biome int

const (
	BiomeForest Biome = iota
	BiomePlains
	BiomeMountains
	BiomeDesert
	BiomeCoast
	BiomeSea
	NumBiomes
)

var biomeNames = [NumBiomes]string{"forest", "plains", "mountains", "desert", "coast", "sea"}

// BiomeName returns the lowercase name of a biome.
func BiomeName(b Biome) string {
	if b < 0 || b >= NumBiomes {
		return "unknown"
	}
	return biomeNames[b]
}

// BiomeFromName resolves a biome by name; the second result reports success.
func BiomeFromName(name string) (Biome, bool) {
	for i, n := range biomeNames {
		if n == name {
			return Biome(i), true
		}
	}
	return 0, false
}

// Resource indexes into a tile's resource set.
type Resource int

const (
	Food Resource = iota
	Wood
	Ore
	Stone
	Water
	NumResources
)

var resourceNames = [NumResources]string{"food", "wood", "ore", "stone", "water"}

// ResourceName returns the lowercase name of a resource.
func ResourceName(r Resource) string {
	if r < 0 || r >= NumResources {
		return "unknown"
	}
	return resourceNames[r]
}

// ResourceSet is a per-resource quantity vector.
type ResourceSet [NumResources]float64

// BiomeCaps is the regeneration ceiling per biome. Regrowth never pushes a
// tile past its biome's cap.
var BiomeCaps = [NumBiomes]ResourceSet{
	BiomeForest:    {Food: 10, Wood: 12, Ore: 0, Stone: 2, Water: 4},
	BiomePlains:    {Food: 8, Wood: 3, Ore: 0, Stone: 1, Water: 3},
	BiomeMountains: {Food: 2, Wood: 1, Ore: 8, Stone: 10, Water: 2},
	BiomeDesert:    {Food: 1, Wood: 0, Ore: 2, Stone: 4, Water: 0},
	BiomeCoast:     {Food: 6, Wood: 2, Ore: 0, Stone: 2, Water: 10},
	BiomeSea:       {Food: 4, Wood: 0, Ore: 0, Stone: 0, Water: 10},
}

// MoveCost is the relocation cost divisor per biome. Sea is effectively
// impassable without the sea-travel capability; the high cost keeps it at
// the bottom of every relocation ranking regardless.
var MoveCost = [NumBiomes]float64{
	BiomeForest:    1.5,
	BiomePlains:    1.0,
	BiomeMountains: 3.0,
	BiomeDesert:    2.0,
	BiomeCoast:     1.2,
	BiomeSea:       4.0,
}

// Tile is one cell of the grid.
type Tile struct {
	Biome     Biome       `json:"biome"`
	Resources ResourceSet `json:"resources"`
	Habitable bool        `json:"habitable"`

	// Settlement is a weak reference by name; stale names resolve to no
	// settlement.
	Settlement string `json:"settlement,omitempty"`
}

// refreshHabitability re-derives the habitable flag from terrain and food.
// Called whenever tile resources change.
func (t *Tile) refreshHabitability() {
	t.Habitable = t.Biome != BiomeSea && t.Resources[Food] > 0
}

// Settlement is a named zone of influence around a founding site.
type Settlement struct {
	Name    string `json:"name"`
	Owner   string `json:"owner"` // founding faction, weak reference
	Row     int    `json:"row"`
	Col     int    `json:"col"`
	Radius  int    `json:"radius"`
	Housing int    `json:"housing"` // population the settlement can shelter
	Active  bool   `json:"active"`
}

// InZone reports whether (r, c) falls inside the settlement's influence.
func (s *Settlement) InZone(r, c int) bool {
	return absInt(r-s.Row) <= s.Radius && absInt(c-s.Col) <= s.Radius
}
