// Package belief provides the bounded belief tags agents carry. Belief
// propagation content lives elsewhere; this package only defines the tags
// the tick engine and war machine read and write.
package belief

import "thalren.vale/internal/agent"

// Canonical belief keys referenced by the engine and the war machine.
const (
	EnduranceRewarded   = "endurance_rewarded"
	CommunitySustains   = "community_sustains"
	SelfReliance        = "self_reliance"
	LoyaltyAboveAll     = "loyalty_above_all"
	CrowdedLandsBreed   = "crowded_lands_breed_conflict"
	SufferingForges     = "suffering_forges_strength"
	TheStrongTake       = "the_strong_take"
	WarIsCostly         = "war_is_costly"
	VictoryProves       = "victory_proves_strength"
	SacrificeHasMeaning = "sacrifice_has_meaning"
	BattleForgesBonds   = "battle_forges_bonds"
	NeverAgain          = "never_again"

	TheForestShelters = "the_forest_shelters"
	TheSeaProvides    = "the_sea_provides"
	DesertForges      = "desert_forges_the_worthy"
	TheWildsProvide   = "the_wilds_provide"
	StoneStands       = "stone_stands_eternal"
)

// MaxBeliefs caps how many tags an agent carries; the oldest is evicted.
const MaxBeliefs = 8

// Core strips a heard-from prefix ("Arin:the_strong_take") down to the
// canonical key.
func Core(b string) string {
	for i := len(b) - 1; i >= 0; i-- {
		if b[i] == ':' {
			return b[i+1:]
		}
	}
	return b
}

// Cores returns the set of canonical keys the agent holds.
func Cores(a *agent.Agent) map[string]bool {
	out := make(map[string]bool, len(a.Beliefs))
	for _, b := range a.Beliefs {
		out[Core(b)] = true
	}
	return out
}

// Add appends a belief unless its core is already held, evicting the oldest
// past MaxBeliefs.
func Add(a *agent.Agent, key string) {
	if Cores(a)[Core(key)] {
		return
	}
	if len(a.Beliefs) >= MaxBeliefs {
		a.Beliefs = a.Beliefs[1:]
	}
	a.Beliefs = append(a.Beliefs, key)
}

// FactionCores unions the cores of every member in the list.
func FactionCores(members []*agent.Agent) map[string]bool {
	out := make(map[string]bool)
	for _, m := range members {
		for _, b := range m.Beliefs {
			out[Core(b)] = true
		}
	}
	return out
}
