// Terrain generation using layered simplex noise. Elevation and moisture
// fields are sampled per coordinate, so a grown grid extends seamlessly.
package world

import (
	opensimplex "github.com/ojrac/opensimplex-go"
)

// generator derives tiles from two independent noise layers.
type generator struct {
	elev  opensimplex.Noise
	moist opensimplex.Noise
}

func newGenerator(seed int64) *generator {
	return &generator{
		elev:  opensimplex.NewNormalized(seed),
		moist: opensimplex.NewNormalized(seed + 1),
	}
}

// tile generates the tile at (r, c) with biome-typical starting resources.
func (g *generator) tile(r, c int) Tile {
	x, y := float64(c), float64(r)
	elev := octaveNoise(g.elev, x, y, 4, 0.11, 0.5)
	moist := octaveNoise(g.moist, x, y, 3, 0.09, 0.5)

	t := Tile{Biome: deriveBiome(elev, moist)}
	caps := BiomeCaps[t.Biome]
	for k := range t.Resources {
		// Start between half-cap and cap, modulated by moisture so the
		// same seed always yields the same tile.
		t.Resources[k] = caps[k] * (0.5 + 0.5*moist)
	}
	t.refreshHabitability()
	return t
}

func deriveBiome(elev, moist float64) Biome {
	switch {
	case elev < 0.24:
		return BiomeSea
	case elev < 0.32:
		return BiomeCoast
	case elev > 0.78:
		return BiomeMountains
	case moist < 0.28:
		return BiomeDesert
	case moist > 0.60:
		return BiomeForest
	default:
		return BiomePlains
	}
}

// octaveNoise layers several noise frequencies for natural-looking terrain.
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
