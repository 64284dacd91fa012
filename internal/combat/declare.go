package combat

import (
	"log/slog"

	"thalren.vale/internal/belief"
	"thalren.vale/internal/faction"
)

// Belief-driven adjustments to the declaration threshold. A pacifist
// attacker needs far more provocation; an aggressive one needs less. Armed
// defenders deter; armed attackers embolden.
const (
	modAttackerPacifist   = +50
	modAttackerAggressive = -50
	modDefenderWeapons    = +60
	modDefenderMetalwork  = +40
	modAttackerWeapons    = -40
)

// effectiveThreshold returns the tension an attacker needs before declaring
// war on a defender, after belief and armament modifiers.
func (m *Machine) effectiveThreshold(attacker, defender *faction.Faction) int {
	threshold := WarThreshold

	cores := belief.FactionCores(attacker.Members)
	if cores[belief.WarIsCostly] || cores[belief.NeverAgain] {
		threshold += modAttackerPacifist
	}
	if cores[belief.TheStrongTake] {
		threshold += modAttackerAggressive
	}
	if defender.Techs["weapons"] {
		threshold += modDefenderWeapons
	} else if defender.Techs["metalwork"] {
		threshold += modDefenderMetalwork
	}
	if attacker.Techs["weapons"] {
		threshold += modAttackerWeapons
	}
	return threshold
}

// checkDeclarations scans every tension pair in deterministic order and
// opens at most one new war per eligible pair. A faction already engaged on
// any side of any war never declares and is never declared upon.
func (m *Machine) checkDeclarations(active []*faction.Faction, tick uint64) {
	byName := make(map[string]*faction.Faction, len(active))
	for _, f := range active {
		byName[f.Name] = f
	}

	for _, key := range m.Tension.Pairs() {
		a, b := byName[key.A], byName[key.B]
		if a == nil || b == nil {
			continue // stale pair, one side has dissolved
		}
		if m.AtWar(a.Name) || m.AtWar(b.Name) {
			continue
		}
		tension := m.Tension.Get(a.Name, b.Name)
		if tension < WarThreshold {
			continue // hard gate; belief modifiers only apply above it
		}

		// The more aggrieved side declares first; ordering is stable so
		// runs are reproducible for a fixed seed.
		if !m.tryDeclare(a, b, tension, active, tick) {
			m.tryDeclare(b, a, tension, active, tick)
		}
	}
}

// tryDeclare attempts a declaration by attacker against defender. Returns
// true when a war was opened.
func (m *Machine) tryDeclare(attacker, defender *faction.Faction, tension int, active []*faction.Faction, tick uint64) bool {
	threshold := m.effectiveThreshold(attacker, defender)
	if tension < threshold {
		return false
	}

	// Councils can hold a faction back from war, unless tension is so far
	// past the threshold that the leadership overrides the vote.
	if !m.Advisors.councilVote(attacker, "war", map[string]string{"target": defender.Name}) {
		if tension < threshold+councilOverrideMargin {
			slog.Debug("war vote failed", "faction", attacker.Name, "target", defender.Name, "tension", tension)
			return false
		}
	}

	cause := "tension"
	if m.Advisors.holyWarMember(attacker.Name) {
		cause = "holy war"
	} else if m.Advisors.raidedBy(defender.Name, attacker.Name) {
		cause = "retaliation"
	}

	w := &War{
		Attacker:     attacker,
		Defender:     defender,
		Cause:        cause,
		DeclaredTick: tick,
	}
	m.recruitAtDeclaration(w, active, tick)
	w.PreWarAttackers = memberCount(w.AllAttackers())
	w.PreWarDefenders = memberCount(w.AllDefenders())
	m.Active = append(m.Active, w)

	// Declaring locks the pair at no more than the ceiling.
	if tension > TensionCeiling {
		m.Tension.Set(attacker.Name, defender.Name, TensionCeiling)
	}

	m.Advisors.adjustReputation(attacker.Name, -10, "declared war", tick)
	m.Log.Append(tick, "war", "%s declared war on %s (%s, tension %d)",
		attacker.Name, defender.Name, cause, tension)
	slog.Info("war declared",
		"attacker", attacker.Name, "defender", defender.Name,
		"cause", cause, "tension", tension,
		"attackers", w.PreWarAttackers, "defenders", w.PreWarDefenders)
	return true
}
