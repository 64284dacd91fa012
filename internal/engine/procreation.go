package engine

import (
	"math/rand"

	"thalren.vale/internal/agent"
	"thalren.vale/internal/world"
)

// parentPair is one eligible couple found by the unlocked scan.
type parentPair struct {
	a, b *agent.Agent
}

// procreationPhase admits births after the pipeline has fully joined. The
// eligibility scan runs outside any lock; only the chosen pair is
// re-validated inside the critical section, so a pair that raced is simply
// abandoned and the next attempt proceeds. Nothing is born in winter.
func (s *Simulation) procreationPhase(tick uint64) {
	if winter(tick) {
		return
	}
	for attempt := 0; attempt < procreationAttempts; attempt++ {
		pairs := s.eligiblePairs()
		if len(pairs) == 0 {
			return
		}
		s.attemptBirth(pairs[s.rng.Intn(len(pairs))], tick, s.rng)
	}
}

// eligiblePairs scans for couples on the same tile with mutual trust, food
// in hand, neither starving nor already claimed. Deliberately unlocked; the
// critical section re-checks everything.
func (s *Simulation) eligiblePairs() []parentPair {
	var out []parentPair
	for i, a := range s.Agents {
		for _, b := range s.Agents[i+1:] {
			if pairEligible(a, b) {
				out = append(out, parentPair{a: a, b: b})
			}
		}
	}
	return out
}

func pairEligible(a, b *agent.Agent) bool {
	return a.Row == b.Row && a.Col == b.Col &&
		!a.Procreating && !b.Procreating &&
		a.Hunger <= starveThreshold && b.Hunger <= starveThreshold &&
		a.Inventory[world.Food] >= procreationFood &&
		b.Inventory[world.Food] >= procreationFood &&
		a.TrustToward(b.Name) >= procreationTrust &&
		b.TrustToward(a.Name) >= procreationTrust
}

// attemptBirth is the single serialized critical section of birth admission.
// It re-validates the pair, checks population headroom and settlement
// housing, claims both parents, and registers the child — all before the
// lock is released. The claims are released on every exit path.
func (s *Simulation) attemptBirth(p parentPair, tick uint64, rng *rand.Rand) bool {
	s.procreateMu.Lock()
	defer s.procreateMu.Unlock()

	if !pairEligible(p.a, p.b) {
		return false // the pair raced away between scan and claim
	}
	if len(s.Agents) >= s.cfg.PopulationCap {
		return false // expected backpressure, not an error
	}

	p.a.Procreating = true
	p.b.Procreating = true
	defer func() {
		p.a.Procreating = false
		p.b.Procreating = false
	}()

	// A full settlement suppresses the birth even after claiming; the
	// deferred release still runs.
	if set := s.Grid.SettlementAt(p.a.Row, p.a.Col); set != nil {
		if s.zonePopulation(set) >= set.Housing {
			return false
		}
	}

	name := agent.NextName(s.usedNames)
	if name == "" {
		return false
	}

	p.a.Inventory[world.Food] -= procreationFoodCost
	p.b.Inventory[world.Food] -= procreationFoodCost

	child := agent.New(name, p.a.Row, p.a.Col, tick)
	child.Beliefs = inheritBeliefs(p.a, p.b, rng)
	if p.a.Faction != "" && p.a.Faction == p.b.Faction {
		if f := s.Factions.ByName(p.a.Faction); f != nil {
			f.AddMember(child)
		}
	}
	child.RaiseTrust(p.a.Name, procreationTrust, tick)
	child.RaiseTrust(p.b.Name, procreationTrust, tick)
	p.a.RaiseTrust(name, procreationTrust, tick)
	p.b.RaiseTrust(name, procreationTrust, tick)

	s.register(child)
	s.Chronicle.Append(tick, "birth", "%s was born to %s and %s", name, p.a.Name, p.b.Name)
	return true
}

// zonePopulation counts living agents inside a settlement's zone.
func (s *Simulation) zonePopulation(set *world.Settlement) int {
	n := 0
	for _, a := range s.Agents {
		if set.InZone(a.Row, a.Col) {
			n++
		}
	}
	return n
}

// inheritBeliefs gives the child a random half of the union of its parents'
// beliefs.
func inheritBeliefs(a, b *agent.Agent, rng *rand.Rand) []string {
	seen := make(map[string]bool)
	var union []string
	for _, belief := range append(append([]string(nil), a.Beliefs...), b.Beliefs...) {
		if !seen[belief] {
			seen[belief] = true
			union = append(union, belief)
		}
	}
	rng.Shuffle(len(union), func(i, j int) { union[i], union[j] = union[j], union[i] })
	return union[:len(union)/2+len(union)%2]
}
