package combat

import (
	"log/slog"

	"thalren.vale/internal/agent"
	"thalren.vale/internal/belief"
	"thalren.vale/internal/faction"
)

// checkTermination decides whether the war ends this tick. Annihilation is
// checked before the minimum-duration floor: a side with nobody left
// surrenders immediately no matter how young the war is.
func (m *Machine) checkTermination(w *War) Outcome {
	attackers := memberCount(w.AllAttackers())
	defenders := memberCount(w.AllDefenders())

	if defenders == 0 {
		return OutcomeDefenderSurrender
	}
	if attackers == 0 {
		return OutcomeAttackerSurrender
	}
	if w.Ticks < MinWarTicks {
		return OutcomeOngoing
	}

	attLoss := 1 - float64(attackers)/float64(w.PreWarAttackers)
	defLoss := 1 - float64(defenders)/float64(w.PreWarDefenders)

	// Surrender outranks ceasefire: a bloodbath still has a loser when one
	// side is broken and outnumbered.
	if m.sideBroken(w.AllDefenders(), defLoss) && attackers > defenders {
		return OutcomeDefenderSurrender
	}
	if m.sideBroken(w.AllAttackers(), attLoss) && defenders > attackers {
		return OutcomeAttackerSurrender
	}
	if attLoss >= lossSurrenderFraction && defLoss >= lossSurrenderFraction {
		return OutcomeCeasefire
	}
	if w.Ticks >= MaxWarTicks {
		return OutcomeExhaustion
	}
	return OutcomeOngoing
}

// sideBroken reports whether a coalition is beaten enough to surrender:
// heavy losses or no territory left anywhere on the side. A desperate side,
// one where every faction is down to a couple of members, fights on.
func (m *Machine) sideBroken(side []*faction.Faction, loss float64) bool {
	if m.desperate(side) {
		return false
	}
	if loss >= lossSurrenderFraction {
		return true
	}
	for _, f := range side {
		if len(f.Territory) > 0 {
			return false
		}
	}
	return true
}

// desperate reports whether every faction on the side has two or fewer
// members. Cornered remnants do not surrender by attrition arithmetic.
func (m *Machine) desperate(side []*faction.Faction) bool {
	for _, f := range side {
		if len(f.Members) > 2 {
			return false
		}
	}
	return true
}

// endWar freezes the war and applies its consequences: tension relief,
// beliefs, reputation, territory transfer, tribute, and absorption of the
// beaten side's remnants when the outcome is decisive.
func (m *Machine) endWar(w *War, outcome Outcome, reg *faction.Registry, tick uint64) {
	w.Outcome = outcome
	w.Ended = true

	// Tension drains between every cross pair, not just the primaries.
	for _, a := range w.AllAttackers() {
		for _, d := range w.AllDefenders() {
			m.Tension.Relieve(a.Name, d.Name, tensionRelief)
		}
	}
	m.bondAllies(w, tick)

	winner, loser := m.decideVictor(w)

	switch outcome {
	case OutcomeCeasefire:
		for _, f := range w.Participants() {
			for _, member := range f.Members {
				belief.Add(member, belief.WarIsCostly)
			}
			m.Advisors.adjustReputation(f.Name, +5, "agreed to ceasefire", tick)
		}
		m.Log.Append(tick, "war", "%s and %s agreed to a ceasefire after %d ticks",
			w.Attacker.Name, w.Defender.Name, w.Ticks)
	case OutcomeExhaustion:
		for _, f := range w.Participants() {
			for _, member := range f.Members {
				belief.Add(member, belief.EnduranceRewarded)
				belief.Add(member, belief.WarIsCostly)
			}
		}
		m.Log.Append(tick, "war", "the war of %s against %s petered out after %d ticks",
			w.Attacker.Name, w.Defender.Name, w.Ticks)
		if winner != nil {
			m.settleVictory(w, winner, loser, reg, tick)
		}
	default: // one side surrendered
		m.settleVictory(w, winner, loser, reg, tick)
		m.Log.Append(tick, "war", "%s surrendered to %s after %d ticks",
			loser.Name, winner.Name, w.Ticks)
	}

	slog.Info("war ended",
		"attacker", w.Attacker.Name, "defender", w.Defender.Name,
		"outcome", string(outcome), "ticks", w.Ticks)
}

// decideVictor maps the outcome to winning and losing primary factions.
// Ceasefire and dead-even exhaustion have no victor.
func (m *Machine) decideVictor(w *War) (winner, loser *faction.Faction) {
	switch w.Outcome {
	case OutcomeDefenderSurrender:
		return w.Attacker, w.Defender
	case OutcomeAttackerSurrender:
		return w.Defender, w.Attacker
	case OutcomeExhaustion:
		attackers := memberCount(w.AllAttackers())
		defenders := memberCount(w.AllDefenders())
		switch {
		case attackers > defenders:
			return w.Attacker, w.Defender
		case defenders > attackers:
			return w.Defender, w.Attacker
		}
	}
	return nil, nil
}

// bondAllies raises trust between members of co-allied factions on each
// side. Shared hardship outlives the war.
func (m *Machine) bondAllies(w *War, tick uint64) {
	for _, side := range [][]*faction.Faction{w.AllAttackers(), w.AllDefenders()} {
		if len(side) < 2 {
			continue
		}
		for i, f := range side {
			for j, other := range side {
				if i == j {
					continue
				}
				for _, member := range f.Members {
					for _, comrade := range other.Members {
						member.RaiseTrust(comrade.Name, 2, tick)
					}
				}
			}
		}
	}
}

// settleVictory applies the victor's terms: a territory claim, scheduled
// tribute, victory and defeat beliefs, and the scattering of the loser's
// remaining members.
func (m *Machine) settleVictory(w *War, winner, loser *faction.Faction, reg *faction.Registry, tick uint64) {
	if len(loser.Territory) > 0 {
		claimed := loser.Territory[m.rng.Intn(len(loser.Territory))]
		winner.ClaimTerritory(claimed, loser)
		m.Log.Append(tick, "war", "%s claimed (%d,%d) from %s",
			winner.Name, claimed.Row, claimed.Col, loser.Name)
	}

	for _, member := range winner.Members {
		belief.Add(member, belief.VictoryProves)
	}
	for _, member := range loser.Members {
		belief.Add(member, belief.NeverAgain)
	}
	m.Advisors.adjustReputation(winner.Name, +15, "won war", tick)
	m.Advisors.adjustReputation(loser.Name, -15, "lost war", tick)

	m.scatterLosingSide(w, winner, loser, reg, tick)

	if loser.Alive() {
		w.Tribute = &Tribute{Payer: loser, Receiver: winner, Remaining: TributeTicks}
		m.Log.Append(tick, "war", "%s owes tribute to %s for %d ticks",
			loser.Name, winner.Name, TributeTicks)
	}
}

// scatterLosingSide resolves the fate of each surviving member of every
// faction on the losing side, allies included: absorbed into the victor,
// fled to a bystander faction, or kept their colors.
func (m *Machine) scatterLosingSide(w *War, winner, loser *faction.Faction, reg *faction.Registry, tick uint64) {
	losing := w.AllDefenders()
	if loser == w.Attacker {
		losing = w.AllAttackers()
	}
	engaged := make(map[string]bool, len(w.Participants()))
	for _, f := range w.Participants() {
		engaged[f.Name] = true
	}

	var bystanders []*faction.Faction
	for _, f := range reg.Active() {
		if !engaged[f.Name] && !m.AtWar(f.Name) {
			bystanders = append(bystanders, f)
		}
	}

	for _, lf := range losing {
		remaining := append([]*agent.Agent(nil), lf.Members...)
		for _, member := range remaining {
			roll := m.rng.Float64()
			switch {
			case roll < absorbChance:
				lf.RemoveMember(member)
				winner.AddMember(member)
				m.Log.Append(tick, "war", "%s was absorbed into %s", member.Name, winner.Name)
			case roll < absorbChance+fleeChance:
				lf.RemoveMember(member)
				if len(bystanders) > 0 {
					refuge := bystanders[m.rng.Intn(len(bystanders))]
					refuge.AddMember(member)
					m.Log.Append(tick, "war", "%s fled to %s", member.Name, refuge.Name)
				} else {
					m.Log.Append(tick, "war", "%s wanders factionless", member.Name)
				}
			}
		}
	}
	winner.UpdateTerritory()
}
