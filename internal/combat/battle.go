package combat

import (
	"log/slog"

	"thalren.vale/internal/belief"
	"thalren.vale/internal/faction"
	"thalren.vale/internal/world"
)

// Morale adjustments, summed per faction before strength is computed.
const (
	moraleHomeGround  = 0.20 // defenders fight on their own ground
	moraleWarlike     = 0.10 // per warlike belief held by the faction
	moralePriorDefeat = -0.20
	moraleWarWeary    = -0.10
	moraleNeverAgain  = -0.15
	holyWarBonus      = 1.60 // replaces a lesser technology multiplier
)

// sideStrength totals a coalition's fighting strength: headcount scaled by
// morale and the technology multiplier, with the defensive-structure bonus
// applied to the defending side.
func (m *Machine) sideStrength(side []*faction.Faction, attacking bool) float64 {
	total := 0.0
	for _, f := range side {
		if len(f.Members) == 0 {
			continue
		}
		strength := float64(len(f.Members)) * (1 + m.morale(f, attacking))

		bonus := m.Advisors.combatBonus(f)
		if m.Advisors.holyWarMember(f.Name) && bonus < holyWarBonus {
			bonus = holyWarBonus
		}
		strength *= bonus

		if !attacking {
			strength *= m.Advisors.defenseBonus(f)
		}
		total += strength
	}
	return total
}

// morale computes one faction's morale modifier from its culture and its
// history of defeats.
func (m *Machine) morale(f *faction.Faction, attacking bool) float64 {
	mor := 0.0
	if !attacking {
		mor += moraleHomeGround
	}
	cores := belief.FactionCores(f.Members)
	for _, warlike := range []string{belief.TheStrongTake, belief.EnduranceRewarded, belief.SufferingForges, belief.LoyaltyAboveAll} {
		if cores[warlike] {
			mor += moraleWarlike
		}
	}
	if cores[belief.WarIsCostly] {
		mor += moraleWarWeary
	}
	if cores[belief.NeverAgain] {
		mor += moraleNeverAgain
	}
	if m.lostBefore(f.Name) {
		mor += moralePriorDefeat
	}
	return mor
}

// lostBefore reports whether the faction carries a past defeat: the
// surrendering primary of any war, or the attacker of a campaign that
// petered out.
func (m *Machine) lostBefore(name string) bool {
	for _, w := range m.History {
		switch w.Outcome {
		case OutcomeDefenderSurrender:
			if w.Defender.Name == name {
				return true
			}
		case OutcomeAttackerSurrender, OutcomeExhaustion:
			if w.Attacker.Name == name {
				return true
			}
		}
	}
	return false
}

// resolveCombatTick runs one battle round. Every faction on the weaker
// coalition risks losing one member at the high rate, every faction on the
// stronger at the low rate; no faction loses more than one member per tick.
func (m *Machine) resolveCombatTick(w *War, tick uint64) {
	att := m.sideStrength(w.AllAttackers(), true)
	def := m.sideStrength(w.AllDefenders(), false)

	attChance, defChance := casualtyStrong, casualtyWeak
	if att < def {
		attChance, defChance = casualtyWeak, casualtyStrong
	}

	for _, f := range w.AllAttackers() {
		if len(f.Members) > 0 && m.rng.Float64() < attChance {
			m.inflictCasualty(w, f, tick)
		}
	}
	for _, f := range w.AllDefenders() {
		if len(f.Members) > 0 && m.rng.Float64() < defChance {
			m.inflictCasualty(w, f, tick)
		}
	}
}

// inflictCasualty removes one random member of the faction. The fallen
// become faction legends; their comrades carry the loss as belief.
func (m *Machine) inflictCasualty(w *War, f *faction.Faction, tick uint64) {
	if len(f.Members) == 0 {
		return
	}
	victim := f.Members[m.rng.Intn(len(f.Members))]

	f.Legends = append(f.Legends, faction.Legend{
		Name: victim.Name,
		At:   world.Coord{Row: victim.Row, Col: victim.Col},
		Tick: tick,
	})
	f.RemoveMember(victim)
	m.Roster.Kill(victim, tick, "fell in battle")

	for _, survivor := range f.Members {
		if survivor.TrustToward(victim.Name) > 0 {
			belief.Add(survivor, belief.SacrificeHasMeaning)
		}
	}

	m.Log.Append(tick, "war", "%s of %s fell in the war of %s against %s",
		victim.Name, f.Name, w.Attacker.Name, w.Defender.Name)
	slog.Debug("battle casualty", "agent", victim.Name, "faction", f.Name)
}
