// Package combat owns the multi-party war state machine: declarations,
// alliance recruitment, per-tick casualty resolution, termination, post-war
// consequences, and tribute. It consumes the faction directory and tension
// table and mutates membership and territory; diplomacy, technology,
// religion, and economy content arrive through the Advisors seam.
package combat

import (
	"math/rand"

	"thalren.vale/internal/agent"
	"thalren.vale/internal/chronicle"
	"thalren.vale/internal/faction"
)

// Tuning constants for the war lifecycle.
const (
	WarThreshold   = 200  // tension required to declare war
	TensionCeiling = 300  // declaration caps the pair's tension here
	MinWarTicks    = 5    // no surrender or ceasefire before this
	MaxWarTicks    = 40   // exhaustion after this many ticks
	TributeTicks   = 20   // post-war ticks the loser pays tribute
	TributeRate    = 0.30 // fraction of the payer's reserve per tick

	// Per-tick casualty probability for the weaker and stronger side.
	casualtyWeak   = 0.25
	casualtyStrong = 0.08

	// Council override: tension this far above the effective threshold
	// bypasses a failed vote.
	councilOverrideMargin = 80

	// recruitInterval is how often opportunistic alliance checks run.
	recruitInterval = 10

	lossSurrenderFraction = 0.50
	tensionRelief         = 60
	absorbChance          = 0.40 // loser joins the winning primary faction
	fleeChance            = 0.30 // loser flees to an uninvolved faction
)

// Outcome is a war's terminal state.
type Outcome string

const (
	OutcomeOngoing           Outcome = ""
	OutcomeAttackerSurrender Outcome = "attacker_surrender"
	OutcomeDefenderSurrender Outcome = "defender_surrender"
	OutcomeCeasefire         Outcome = "ceasefire"
	OutcomeExhaustion        Outcome = "exhaustion"
)

// Tribute is a scheduled recurring transfer from the defeated primary
// faction to its victor.
type Tribute struct {
	Payer     *faction.Faction
	Receiver  *faction.Faction
	Remaining int
}

// War tracks one conflict from declaration to resolution. Faction fields are
// non-owning references. Resolved wars are frozen and retained in history.
type War struct {
	Attacker *faction.Faction
	Defender *faction.Faction

	AlliesAttacker []*faction.Faction
	AlliesDefender []*faction.Faction

	Cause        string
	DeclaredTick uint64
	Ticks        int // ticks the war has been running

	PreWarAttackers int // combined member count at declaration
	PreWarDefenders int

	Outcome Outcome
	Ended   bool

	Tribute *Tribute
}

// AllAttackers returns the attacker coalition, primary first.
func (w *War) AllAttackers() []*faction.Faction {
	return append([]*faction.Faction{w.Attacker}, w.AlliesAttacker...)
}

// AllDefenders returns the defender coalition, primary first.
func (w *War) AllDefenders() []*faction.Faction {
	return append([]*faction.Faction{w.Defender}, w.AlliesDefender...)
}

// Participants returns every faction engaged on either side.
func (w *War) Participants() []*faction.Faction {
	return append(w.AllAttackers(), w.AllDefenders()...)
}

// memberCount sums living members across a coalition.
func memberCount(side []*faction.Faction) int {
	n := 0
	for _, f := range side {
		n += len(f.Members)
	}
	return n
}

// Roster lets the war machine destroy an agent: the implementation must
// remove it from the authoritative collection and the spatial partition and
// record it among the dead.
type Roster interface {
	Kill(a *agent.Agent, tick uint64, cause string)
}

// Advisors bundles the collaborator hooks the machine consumes. Nil fields
// fall back to neutral defaults, so tests can wire only what they exercise.
type Advisors struct {
	// CouncilVote decides whether a faction's members approve a topic.
	CouncilVote func(f *faction.Faction, topic string, context map[string]string) (bool, string)
	// CombatBonus is the technology strength multiplier.
	CombatBonus func(f *faction.Faction) float64
	// DefenseBonus is the defensive-structure multiplier applied to a
	// defending faction.
	DefenseBonus func(f *faction.Faction) float64
	// HolyWarMember reports whether a faction fights a holy war.
	HolyWarMember func(name string) bool
	// RaidedBy reports whether victim was previously raided by raider.
	RaidedBy func(victim, raider string) bool
	// TradeRoute reports an active trade relationship between two factions.
	TradeRoute func(a, b string) bool
	// AdjustReputation is notified on war start and resolution.
	AdjustReputation func(name string, delta int, reason string, tick uint64)
}

func (a Advisors) councilVote(f *faction.Faction, topic string, context map[string]string) bool {
	if a.CouncilVote == nil {
		return true
	}
	passed, _ := a.CouncilVote(f, topic, context)
	return passed
}

func (a Advisors) combatBonus(f *faction.Faction) float64 {
	if a.CombatBonus == nil {
		return 1.0
	}
	return a.CombatBonus(f)
}

func (a Advisors) defenseBonus(f *faction.Faction) float64 {
	if a.DefenseBonus == nil {
		return 1.0
	}
	return a.DefenseBonus(f)
}

func (a Advisors) holyWarMember(name string) bool {
	return a.HolyWarMember != nil && a.HolyWarMember(name)
}

func (a Advisors) raidedBy(victim, raider string) bool {
	return a.RaidedBy != nil && a.RaidedBy(victim, raider)
}

func (a Advisors) tradeRoute(x, y string) bool {
	return a.TradeRoute != nil && a.TradeRoute(x, y)
}

func (a Advisors) adjustReputation(name string, delta int, reason string, tick uint64) {
	if a.AdjustReputation != nil {
		a.AdjustReputation(name, delta, reason, tick)
	}
}

// Machine owns all active and historical wars. It runs strictly inside the
// serial combat phase, never concurrently with the agent pipeline.
type Machine struct {
	Active  []*War
	History []*War

	Tension  *faction.TensionTable
	Advisors Advisors
	Roster   Roster
	Log      *chronicle.Log

	rng *rand.Rand
}

// NewMachine creates a war machine over the given tension table.
func NewMachine(tension *faction.TensionTable, roster Roster, log *chronicle.Log, advisors Advisors, rng *rand.Rand) *Machine {
	return &Machine{
		Tension:  tension,
		Advisors: advisors,
		Roster:   roster,
		Log:      log,
		rng:      rng,
	}
}

// AtWar reports whether the faction participates in any active war.
func (m *Machine) AtWar(name string) bool {
	for _, w := range m.Active {
		for _, f := range w.Participants() {
			if f.Name == name {
				return true
			}
		}
	}
	return false
}

// Tick runs one full combat cycle: declarations, ongoing battles,
// termination checks, and tribute processing.
func (m *Machine) Tick(reg *faction.Registry, tick uint64) {
	active := reg.Active()

	m.checkDeclarations(active, tick)

	for _, w := range m.Active {
		if w.Ended {
			continue
		}
		w.Ticks++
		if w.Ticks%recruitInterval == 0 {
			m.recruitOpportunistic(w, active, tick)
		}
		m.resolveCombatTick(w, tick)
		if outcome := m.checkTermination(w); outcome != OutcomeOngoing {
			m.endWar(w, outcome, reg, tick)
		}
	}

	// Move completed wars to history.
	remaining := m.Active[:0]
	for _, w := range m.Active {
		if w.Ended {
			m.History = append(m.History, w)
		} else {
			remaining = append(remaining, w)
		}
	}
	m.Active = remaining

	m.processTribute(tick)
}
