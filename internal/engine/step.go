package engine

import (
	"math/rand"

	"thalren.vale/internal/agent"
	"thalren.vale/internal/faction"
	"thalren.vale/internal/world"
)

// stepAgent is the full per-agent step, executed by pipeline workers. An
// agent only ever mutates its own fields here; everything shared goes
// through the resource lock, the trade lock, or the partition. Returns true
// when the agent died this step.
func (s *Simulation) stepAgent(a *agent.Agent, rng *rand.Rand, tick uint64) bool {
	a.Hunger += hungerPerTick
	if a.Hunger > starveThreshold {
		if a.MedicineBuffer > 0 {
			a.MedicineBuffer--
		} else {
			a.Health -= starveDamage
		}
	}

	localFood := s.tileFood(a.Row, a.Col)
	if localFood > 0 {
		a.Remember(world.Coord{Row: a.Row, Col: a.Col})
	}

	s.eat(a)

	// Scarce ground pushes the agent on; empty ground forces it. Agents
	// already displaced by the preamble stay put for the rest of the tick.
	if localFood < scarceFoodFloor && !a.WasRelocated {
		s.relocate(a)
		localFood = s.tileFood(a.Row, a.Col)
	}

	s.gather(a, rng)
	s.socialize(a, rng, tick)

	s.tradeMu.Lock()
	foodLeft := a.Inventory[world.Food]
	s.tradeMu.Unlock()
	if foodLeft == 0 {
		a.ZeroFoodTicks++
	} else {
		a.ZeroFoodTicks = 0
	}
	return a.Health <= 0
}

// tileFood reads a tile's food level under the resource lock.
func (s *Simulation) tileFood(r, c int) float64 {
	s.resourceMu.Lock()
	defer s.resourceMu.Unlock()
	return s.Grid.Tile(r, c).Resources[world.Food]
}

// eat consumes carried food: one meal always, a second when still very
// hungry afterwards. The whole meal sits under the trade lock because a
// co-located agent's worker may be pushing trade goods into this inventory
// at the same moment.
func (s *Simulation) eat(a *agent.Agent) {
	s.tradeMu.Lock()
	defer s.tradeMu.Unlock()
	if a.Inventory[world.Food] == 0 {
		return
	}
	a.Inventory[world.Food]--
	a.Hunger -= eatHungerRelief
	if a.Hunger > starveThreshold-hungerPerTick && a.Inventory[world.Food] > 0 {
		a.Inventory[world.Food]--
		a.Hunger -= eatHungerRelief
	}
	if a.Hunger < 0 {
		a.Hunger = 0
	}
}

// relocate moves the agent to the best-scoring reachable neighbor tile. The
// scoring read and the move decision sit under the resource lock so a
// concurrent gather cannot invalidate the choice mid-scan; the move itself
// goes through the partition.
func (s *Simulation) relocate(a *agent.Agent) {
	s.resourceMu.Lock()
	dest, ok := s.bestNeighborTile(a)
	s.resourceMu.Unlock()
	if !ok || (dest.Row == a.Row && dest.Col == a.Col) {
		return
	}
	s.Partition.Move(a, dest.Row, dest.Col)
}

// gather takes up to one food from the tile, clamped to what is there, plus
// an occasional find of the biome's secondary resource. Tile mutation happens
// under the resource lock; crediting the inventory happens under the trade
// lock, because a trading partner's worker may touch the same slots. The two
// locks are never held together.
func (s *Simulation) gather(a *agent.Agent, rng *rand.Rand) {
	gained, herbs := s.harvest(a, rng)
	a.MedicineBuffer += herbs

	s.tradeMu.Lock()
	defer s.tradeMu.Unlock()
	for r := world.Resource(0); r < world.NumResources; r++ {
		a.Inventory[r] += gained[r]
	}
}

// harvest removes what the agent collects from its tile and returns the
// haul: per-resource units plus any forest herbs.
func (s *Simulation) harvest(a *agent.Agent, rng *rand.Rand) (gained [world.NumResources]int, herbs int) {
	s.resourceMu.Lock()
	defer s.resourceMu.Unlock()

	t := s.Grid.Tile(a.Row, a.Col)
	if t.Resources[world.Food] >= 1 {
		s.Grid.AdjustResource(a.Row, a.Col, world.Food, -1)
		gained[world.Food]++
	}

	if rng.Float64() < gatherBonusChance {
		switch t.Biome {
		case world.BiomeForest:
			if rng.Float64() < 0.5 && t.Resources[world.Wood] >= 1 {
				s.Grid.AdjustResource(a.Row, a.Col, world.Wood, -1)
				gained[world.Wood]++
			} else {
				herbs++ // forest herbs
			}
		case world.BiomeMountains:
			if t.Resources[world.Ore] >= 1 {
				s.Grid.AdjustResource(a.Row, a.Col, world.Ore, -1)
				gained[world.Ore]++
			}
		case world.BiomeDesert:
			if t.Resources[world.Stone] >= 1 {
				s.Grid.AdjustResource(a.Row, a.Col, world.Stone, -1)
				gained[world.Stone]++
			}
		case world.BiomeCoast:
			if t.Resources[world.Water] >= 1 {
				s.Grid.AdjustResource(a.Row, a.Col, world.Water, -1)
				gained[world.Water]++
			}
		}
	}
	return gained, herbs
}

// socialize raises trust toward co-located agents and sometimes trades. An
// agent only writes its own trust map; mutuality emerges because the other
// side runs the same step. Inventory swaps are the one cross-agent mutation
// and sit entirely under the trade lock.
func (s *Simulation) socialize(a *agent.Agent, rng *rand.Rand, tick uint64) {
	// Kinship: one faction-mate a tick, wherever they are. Membership is
	// frozen for the duration of the parallel window, so the read is safe.
	if a.Faction != "" {
		if f := s.Factions.ByName(a.Faction); f != nil && len(f.Members) > 1 {
			if kin := f.Members[rng.Intn(len(f.Members))]; kin != a {
				a.RaiseTrust(kin.Name, 1, tick)
			}
		}
	}

	others := s.Partition.At(a.Row, a.Col)
	var partners []*agent.Agent
	for _, o := range others {
		if o == a {
			continue
		}
		a.RaiseTrust(o.Name, 1, tick)
		partners = append(partners, o)
	}
	if len(partners) == 0 || rng.Float64() >= tradeChance {
		return
	}
	s.trade(a, partners[rng.Intn(len(partners))], tick)
}

// trade swaps one surplus unit each way under the trade lock.
func (s *Simulation) trade(a, b *agent.Agent, tick uint64) {
	s.tradeMu.Lock()
	defer s.tradeMu.Unlock()

	give := surplusResource(a)
	get := surplusResource(b)
	if give < 0 || get < 0 || give == get {
		return
	}
	a.Inventory[give]--
	b.Inventory[give]++
	b.Inventory[get]--
	a.Inventory[get]++
	a.TradeCount++
	b.TradeCount++

	if a.Faction != "" && b.Faction != "" && a.Faction != b.Faction {
		s.tradeLinks[faction.Pair(a.Faction, b.Faction)] = tick
	}
}

// surplusResource returns a resource the agent holds at least two of, or -1.
func surplusResource(a *agent.Agent) world.Resource {
	for r := world.Resource(0); r < world.NumResources; r++ {
		if a.Inventory[r] >= 2 {
			return r
		}
	}
	return -1
}
