package engine

import (
	"fmt"
	"log/slog"
	"sort"

	"thalren.vale/internal/agent"
	"thalren.vale/internal/belief"
	"thalren.vale/internal/combat"
	"thalren.vale/internal/faction"
	"thalren.vale/internal/technology"
	"thalren.vale/internal/world"
)

const (
	factionMinGroup    = 3
	factionFormTrust   = 3
	foodPoolSurplus    = 4  // members pool food they hold beyond this
	settlementMembers  = 6  // faction size that founds a settlement
	settlementHousing  = 12
	researchInterval   = 20
	researchReserve    = 10.0
	contestedTensionUp = 2
)

// factionPhase runs the serial faction upkeep: periodic formation, food
// pooling, territory refresh, settlement founding, slow research, and
// tension accrual between rubbing factions.
func (s *Simulation) factionPhase(tick uint64) {
	if tick%factionInterval == 0 {
		s.formFactions(tick)
	}
	for _, f := range s.Factions.Active() {
		s.poolFood(f)
		f.UpdateTerritory()
		if len(f.Members) >= settlementMembers && f.Settlement == "" {
			s.foundSettlement(f, tick)
		}
	}
	if tick%researchInterval == 0 {
		s.research(tick)
	}
	s.accrueTension()
}

// formFactions turns tight-knit unaffiliated groups into factions: at least
// three agents on one tile with pairwise mutual trust.
func (s *Simulation) formFactions(tick uint64) {
	byTile := make(map[world.Coord][]*agent.Agent)
	for _, a := range s.Agents {
		if a.Faction != "" {
			continue
		}
		c := world.Coord{Row: a.Row, Col: a.Col}
		byTile[c] = append(byTile[c], a)
	}

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
		group := byTile[c]
		if len(group) < factionMinGroup {
			continue
		}
		bonded := mutualTrustGroup(group)
		if len(bonded) < factionMinGroup {
			continue
		}
		name := fmt.Sprintf("Kin of %s", bonded[0].Name)
		if s.Factions.ByName(name) != nil {
			continue
		}
		shared := sharedBeliefs(bonded)
		f := faction.New(name, bonded, shared, tick)
		s.Factions.Add(f)
		s.Chronicle.Append(tick, "faction", "%s formed with %d members", name, len(bonded))
		slog.Info("faction formed", "name", name, "members", len(bonded), "tick", tick)
	}
}

// mutualTrustGroup returns the largest prefix of the group whose members all
// trust each other enough to bind.
func mutualTrustGroup(group []*agent.Agent) []*agent.Agent {
	var bonded []*agent.Agent
	for _, candidate := range group {
		ok := true
		for _, member := range bonded {
			if candidate.TrustToward(member.Name) < factionFormTrust ||
				member.TrustToward(candidate.Name) < factionFormTrust {
				ok = false
				break
			}
		}
		if ok {
			bonded = append(bonded, candidate)
		}
	}
	return bonded
}

// sharedBeliefs collects belief cores held by at least half the group.
func sharedBeliefs(group []*agent.Agent) []string {
	counts := make(map[string]int)
	for _, a := range group {
		for core := range belief.Cores(a) {
			counts[core]++
		}
	}
	var out []string
	for core, n := range counts {
		if n*2 >= len(group) {
			out = append(out, core)
		}
	}
	return out
}

// poolFood moves member surplus into the faction reserve and feeds starving
// members back out of it.
func (s *Simulation) poolFood(f *faction.Faction) {
	for _, m := range f.Members {
		if surplus := m.Inventory[world.Food] - foodPoolSurplus; surplus > 0 {
			m.Inventory[world.Food] -= surplus
			f.FoodReserve += float64(surplus)
		}
	}
	for _, m := range f.Members {
		if m.Inventory[world.Food] == 0 && m.Hunger > starveThreshold && f.FoodReserve >= 1 {
			f.FoodReserve--
			m.Inventory[world.Food]++
		}
	}
}

// foundSettlement plants a settlement at the faction's center of gravity.
func (s *Simulation) foundSettlement(f *faction.Faction, tick uint64) {
	leader := f.Members[0]
	set := &world.Settlement{
		Name:    fmt.Sprintf("%s's Rest", leader.Name),
		Owner:   f.Name,
		Row:     leader.Row,
		Col:     leader.Col,
		Radius:  1,
		Housing: settlementHousing,
		Active:  true,
	}
	s.Grid.AddSettlement(set)
	f.Settlement = set.Name
	s.Chronicle.Append(tick, "faction", "%s founded %s at (%d,%d)", f.Name, set.Name, set.Row, set.Col)
}

// research is a slow military-technology ladder funded by the food reserve.
// The full research tree lives with an external collaborator; this keeps
// the combat multiplier alive in long runs.
func (s *Simulation) research(tick uint64) {
	for _, f := range s.Factions.Active() {
		if f.FoodReserve < researchReserve {
			continue
		}
		var next string
		switch {
		case !f.Techs[technology.Metalwork]:
			next = technology.Metalwork
		case !f.Techs[technology.Weapons]:
			next = technology.Weapons
		case !f.Techs[technology.Steel]:
			next = technology.Steel
		default:
			continue
		}
		f.FoodReserve -= researchReserve
		f.Techs[next] = true
		s.Chronicle.Append(tick, "faction", "%s mastered %s", f.Name, next)
	}
}

// accrueTension raises hostility between factions whose members stand on
// each other's ground. Contested territory is the engine's only native
// tension source; raids and insults arrive from external collaborators.
func (s *Simulation) accrueTension() {
	active := s.Factions.Active()
	for i, f := range active {
		claimed := make(map[world.Coord]bool, len(f.Territory))
		for _, c := range f.Territory {
			claimed[c] = true
		}
		for _, other := range active[i+1:] {
			contested := 0
			for _, c := range other.Territory {
				if claimed[c] {
					contested++
				}
			}
			if contested > 0 {
				s.Factions.Tension.Raise(f.Name, other.Name,
					contested*contestedTensionUp, combat.TensionCeiling)
			}
		}
	}
}
