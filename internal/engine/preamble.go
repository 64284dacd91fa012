package engine

import (
	"sort"

	"thalren.vale/internal/agent"
	"thalren.vale/internal/world"
)

// preamble is the serial phase that runs strictly before any parallel work:
// shuffle the processing order, reset per-tick flags, break up overcrowded
// tiles, and prune stale trust.
func (s *Simulation) preamble(tick uint64) {
	s.rng.Shuffle(len(s.Agents), func(i, j int) {
		s.Agents[i], s.Agents[j] = s.Agents[j], s.Agents[i]
	})

	for _, a := range s.Agents {
		a.WasRelocated = false
	}

	s.relieveOvercrowding(tick)

	for _, a := range s.Agents {
		a.PruneTrust(tick, trustPruneHorizon)
	}
}

// relieveOvercrowding force-relocates the excess occupants of any tile over
// the cap. The least-connected agents are pushed out first; the well-trusted
// keep their ground.
func (s *Simulation) relieveOvercrowding(tick uint64) {
	byTile := make(map[world.Coord][]*agent.Agent)
	for _, a := range s.Agents {
		c := world.Coord{Row: a.Row, Col: a.Col}
		byTile[c] = append(byTile[c], a)
	}

	// Sorted tile order keeps serial-phase decisions reproducible per seed.
	tiles := make([]world.Coord, 0, len(byTile))
	for c := range byTile {
		tiles = append(tiles, c)
	}
	sort.Slice(tiles, func(i, j int) bool {
		if tiles[i].Row != tiles[j].Row {
			return tiles[i].Row < tiles[j].Row
		}
		return tiles[i].Col < tiles[j].Col
	})

	for _, c := range tiles {
		occupants := byTile[c]
		if len(occupants) <= maxTileOccupancy {
			continue
		}
		sort.Slice(occupants, func(i, j int) bool {
			if ti, tj := occupants[i].TotalTrust(), occupants[j].TotalTrust(); ti != tj {
				return ti < tj
			}
			return occupants[i].Name < occupants[j].Name
		})
		for _, a := range occupants[:len(occupants)-maxTileOccupancy] {
			dest, ok := s.bestNeighborTile(a)
			if !ok {
				continue
			}
			s.Partition.Move(a, dest.Row, dest.Col)
			a.WasRelocated = true
			s.Chronicle.Append(tick, "relocation", "%s was pushed out of crowded (%d,%d)", a.Name, c.Row, c.Col)
		}
	}
}

// bestNeighborTile scores the 8 neighboring tiles by food scaled inversely
// by movement cost and returns the best reachable one. Sea tiles are
// unreachable without the sea-travel capability; with it, their cost is
// halved. Mountaineers cross mountains at half cost.
func (s *Simulation) bestNeighborTile(a *agent.Agent) (world.Coord, bool) {
	best := world.Coord{}
	bestScore := -1.0
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			r, c := a.Row+dr, a.Col+dc
			if !s.Grid.InBounds(r, c) {
				continue
			}
			t := s.Grid.Tile(r, c)
			cost := world.MoveCost[t.Biome]
			switch t.Biome {
			case world.BiomeSea:
				if !a.Has(agent.CapSeaTravel) {
					continue
				}
				cost /= 2
			case world.BiomeMountains:
				if a.Has(agent.CapMountaineer) {
					cost /= 2
				}
			}
			score := t.Resources[world.Food] / cost
			if score > bestScore {
				bestScore = score
				best = world.Coord{Row: r, Col: c}
			}
		}
	}
	return best, bestScore >= 0
}
