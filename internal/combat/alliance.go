package combat

import (
	"log/slog"

	"thalren.vale/internal/belief"
	"thalren.vale/internal/faction"
)

// Alliance join probabilities at declaration time.
const (
	joinAttackerTension    = 0.60 // shares a grudge with the defender
	joinAttackerRaided     = 0.70 // was raided by the defender
	joinAttackerAggressive = 0.40 // aggressive culture smells opportunity
	joinDefenderTension    = 0.80 // shares a grudge with the attacker
	joinDefenderTrade      = 0.50 // trades with the defender

	// Opportunistic joining mid-war.
	hostilityGapThreshold = 30.0 // avg-tension gap that pulls a bystander in
	loyaltyGapPenalty     = 30.0 // loyal cultures need a wider gap to commit
	allyTensionRelief     = 30   // joining relieves tension with the new ally

	grudgeTension = 30 // tension that counts as a grudge worth fighting over
)

// recruitAtDeclaration canvasses every uninvolved faction when a war opens.
// Attacker-side recruitment is unconditional; defender-side recruitment only
// happens when the defenders are outnumbered, so underdogs attract help.
func (m *Machine) recruitAtDeclaration(w *War, active []*faction.Faction, tick uint64) {
	for _, f := range active {
		if f == w.Attacker || f == w.Defender || m.AtWar(f.Name) {
			continue
		}
		if m.joinsAttacker(f, w) {
			m.join(w, f, true, tick)
			continue
		}
		if memberCount(w.AllDefenders()) < memberCount(w.AllAttackers()) && m.joinsDefender(f, w) {
			m.join(w, f, false, tick)
		}
	}
}

func (m *Machine) joinsAttacker(f *faction.Faction, w *War) bool {
	if m.Tension.Get(f.Name, w.Defender.Name) > grudgeTension {
		return m.rng.Float64() < joinAttackerTension
	}
	if m.Advisors.raidedBy(f.Name, w.Defender.Name) {
		return m.rng.Float64() < joinAttackerRaided
	}
	if belief.FactionCores(f.Members)[belief.TheStrongTake] {
		return m.rng.Float64() < joinAttackerAggressive
	}
	return false
}

func (m *Machine) joinsDefender(f *faction.Faction, w *War) bool {
	if m.Tension.Get(f.Name, w.Attacker.Name) > grudgeTension {
		return m.rng.Float64() < joinDefenderTension
	}
	if m.Advisors.tradeRoute(f.Name, w.Defender.Name) {
		return m.rng.Float64() < joinDefenderTrade
	}
	return false
}

// recruitOpportunistic runs periodically during a war. Bystanders re-run the
// declaration-time checks, and additionally weigh their average hostility
// toward each coalition: when the gap is wide enough they join against the
// side they resent more. Loyal cultures need a wider gap before switching
// from neutrality.
func (m *Machine) recruitOpportunistic(w *War, active []*faction.Faction, tick uint64) {
	for _, f := range active {
		if m.AtWar(f.Name) {
			continue
		}
		if m.joinsAttacker(f, w) {
			m.join(w, f, true, tick)
			continue
		}
		if memberCount(w.AllDefenders()) < memberCount(w.AllAttackers()) && m.joinsDefender(f, w) {
			m.join(w, f, false, tick)
			continue
		}

		towardAttackers := m.avgTension(f, w.AllAttackers())
		towardDefenders := m.avgTension(f, w.AllDefenders())
		needed := hostilityGapThreshold
		if belief.FactionCores(f.Members)[belief.LoyaltyAboveAll] {
			needed += loyaltyGapPenalty
		}
		switch {
		case towardAttackers-towardDefenders > needed:
			m.join(w, f, false, tick) // joins against the attackers
		case towardDefenders-towardAttackers > needed:
			m.join(w, f, true, tick)
		}
	}
}

// avgTension averages the faction's tension toward every faction on a side.
func (m *Machine) avgTension(f *faction.Faction, side []*faction.Faction) float64 {
	if len(side) == 0 {
		return 0
	}
	total := 0
	for _, other := range side {
		total += m.Tension.Get(f.Name, other.Name)
	}
	return float64(total) / float64(len(side))
}

// join adds a faction to one side of the war and settles it in with its new
// allies: tension toward the side's primary relaxes and members pick up the
// bonds-of-battle belief.
func (m *Machine) join(w *War, f *faction.Faction, attackerSide bool, tick uint64) {
	primary := w.Defender
	if attackerSide {
		primary = w.Attacker
		w.AlliesAttacker = append(w.AlliesAttacker, f)
	} else {
		w.AlliesDefender = append(w.AlliesDefender, f)
	}
	m.Tension.Relieve(f.Name, primary.Name, allyTensionRelief)
	for _, member := range f.Members {
		belief.Add(member, belief.BattleForgesBonds)
	}
	side := "defenders"
	if attackerSide {
		side = "attackers"
	}
	m.Log.Append(tick, "war", "%s joined the %s in the war of %s against %s",
		f.Name, side, w.Attacker.Name, w.Defender.Name)
	slog.Info("faction joined war", "faction", f.Name, "side", side,
		"attacker", w.Attacker.Name, "defender", w.Defender.Name)
}
