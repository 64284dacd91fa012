package combat

import (
	"fmt"
	"math/rand"
	"testing"

	"thalren.vale/internal/agent"
	"thalren.vale/internal/belief"
	"thalren.vale/internal/chronicle"
	"thalren.vale/internal/faction"
)

type stubRoster struct {
	killed []string
}

func (r *stubRoster) Kill(a *agent.Agent, tick uint64, cause string) {
	r.killed = append(r.killed, a.Name)
}

// makeFaction builds a faction of n members spread along row r.
func makeFaction(name string, n, r int) *faction.Faction {
	var members []*agent.Agent
	for i := 0; i < n; i++ {
		members = append(members, agent.New(fmt.Sprintf("%s-%d", name, i), r, i, 0))
	}
	return faction.New(name, members, nil, 0)
}

func newTestMachine(reg *faction.Registry) (*Machine, *stubRoster) {
	roster := &stubRoster{}
	m := NewMachine(reg.Tension, roster, chronicle.New(nil), Advisors{}, rand.New(rand.NewSource(1)))
	return m, roster
}

func TestDeclarationAtThresholdCapsTension(t *testing.T) {
	reg := faction.NewRegistry()
	reg.Add(makeFaction("Ashfolk", 3, 0))
	reg.Add(makeFaction("Brineborn", 3, 2))
	reg.Tension.Set("Ashfolk", "Brineborn", 210)

	m, _ := newTestMachine(reg)
	m.Tick(reg, 1)

	if len(m.Active) != 1 {
		t.Fatalf("active wars = %d, want 1", len(m.Active))
	}
	if !m.AtWar("Ashfolk") || !m.AtWar("Brineborn") {
		t.Fatalf("both factions should be at war")
	}
	if got := reg.Tension.Get("Ashfolk", "Brineborn"); got > TensionCeiling || got != 210 {
		t.Fatalf("tension after declaration = %d, want 210 (and never above %d)", got, TensionCeiling)
	}
}

func TestDeclarationCapsRunawayTension(t *testing.T) {
	reg := faction.NewRegistry()
	reg.Add(makeFaction("Ashfolk", 3, 0))
	reg.Add(makeFaction("Brineborn", 3, 2))
	reg.Tension.Set("Ashfolk", "Brineborn", 350)

	m, _ := newTestMachine(reg)
	m.Tick(reg, 1)

	if got := reg.Tension.Get("Ashfolk", "Brineborn"); got != TensionCeiling {
		t.Fatalf("tension after declaration = %d, want capped at %d", got, TensionCeiling)
	}
}

func TestFactionInAtMostOneActiveWar(t *testing.T) {
	reg := faction.NewRegistry()
	reg.Add(makeFaction("Ashfolk", 3, 0))
	reg.Add(makeFaction("Brineborn", 3, 2))
	reg.Add(makeFaction("Cragkin", 3, 4))
	reg.Tension.Set("Ashfolk", "Brineborn", 250)
	reg.Tension.Set("Ashfolk", "Cragkin", 250)

	m, _ := newTestMachine(reg)
	m.Tick(reg, 1)

	if len(m.Active) != 1 {
		t.Fatalf("active wars = %d, want 1: an engaged faction must not open a second front", len(m.Active))
	}
	if m.AtWar("Cragkin") {
		t.Fatalf("Cragkin dragged into a war it had no part in")
	}

	// The untouched pair still simmers; the next tick must not open a war
	// involving the already-engaged faction either.
	m.Tick(reg, 2)
	count := 0
	for _, w := range m.Active {
		for _, f := range w.Participants() {
			if f.Name == "Ashfolk" {
				count++
			}
		}
	}
	if count > 1 {
		t.Fatalf("Ashfolk participates in %d active wars, want at most 1", count)
	}
}

func TestAnnihilationOverridesMinimumDuration(t *testing.T) {
	reg := faction.NewRegistry()
	att := makeFaction("Ashfolk", 3, 0)
	def := makeFaction("Brineborn", 2, 2)
	reg.Add(att)
	reg.Add(def)

	m, _ := newTestMachine(reg)
	w := &War{
		Attacker:        att,
		Defender:        def,
		DeclaredTick:    1,
		Ticks:           2, // well under the minimum-duration floor
		PreWarAttackers: 3,
		PreWarDefenders: 2,
	}
	m.Active = append(m.Active, w)

	def.Members = nil // every defender has fallen

	if got := m.checkTermination(w); got != OutcomeDefenderSurrender {
		t.Fatalf("outcome = %q, want %q: annihilation must override the floor", got, OutcomeDefenderSurrender)
	}

	m.Tick(reg, 3)
	if !w.Ended || w.Outcome != OutcomeDefenderSurrender {
		t.Fatalf("war not resolved: ended=%v outcome=%q", w.Ended, w.Outcome)
	}
	if len(m.Active) != 0 || len(m.History) != 1 {
		t.Fatalf("resolved war not moved to history: active=%d history=%d", len(m.Active), len(m.History))
	}
}

func TestTimeoutYieldsExhaustionWithMarginalWinner(t *testing.T) {
	reg := faction.NewRegistry()
	att := makeFaction("Ashfolk", 5, 0)
	def := makeFaction("Brineborn", 3, 2)
	reg.Add(att)
	reg.Add(def)

	m, _ := newTestMachine(reg)
	w := &War{
		Attacker:        att,
		Defender:        def,
		DeclaredTick:    1,
		Ticks:           MaxWarTicks - 1,
		PreWarAttackers: 5,
		PreWarDefenders: 3,
	}
	m.Active = append(m.Active, w)

	m.Tick(reg, uint64(MaxWarTicks + 1))

	if w.Outcome != OutcomeExhaustion {
		t.Fatalf("outcome = %q, want %q", w.Outcome, OutcomeExhaustion)
	}
	// The attacker ends the war with more members, so it is the marginal
	// winner and its members carry the victory.
	won := false
	for _, member := range att.Members {
		if belief.Cores(member)[belief.VictoryProves] {
			won = true
			break
		}
	}
	if !won {
		t.Fatalf("marginal winner's members carry no victory belief")
	}
}

func TestAggressionCannotDeclareBelowBaseThreshold(t *testing.T) {
	reg := faction.NewRegistry()
	att := makeFaction("Ashfolk", 3, 0)
	for _, member := range att.Members {
		belief.Add(member, belief.TheStrongTake)
	}
	reg.Add(att)
	reg.Add(makeFaction("Brineborn", 3, 2))
	reg.Tension.Set("Ashfolk", "Brineborn", 160)

	m, _ := newTestMachine(reg)
	m.Tick(reg, 1)

	if len(m.Active) != 0 {
		t.Fatalf("war declared at tension 160: belief modifiers only apply once the base gate is cleared")
	}
}

func TestMutualBloodbathWithOutnumberedSideEndsInSurrender(t *testing.T) {
	reg := faction.NewRegistry()
	att := makeFaction("Ashfolk", 5, 0)
	def := makeFaction("Brineborn", 4, 2)
	reg.Add(att)
	reg.Add(def)

	m, _ := newTestMachine(reg)
	w := &War{Attacker: att, Defender: def, Ticks: MinWarTicks, PreWarAttackers: 10, PreWarDefenders: 10}

	if got := m.checkTermination(w); got != OutcomeDefenderSurrender {
		t.Fatalf("outcome = %q, want %q: the broken and outnumbered side surrenders even when both bled past half strength", got, OutcomeDefenderSurrender)
	}

	// With nobody outnumbered the same losses stall into a ceasefire.
	evenAtt := makeFaction("Cragkin", 4, 4)
	evenDef := makeFaction("Dunefolk", 4, 6)
	even := &War{Attacker: evenAtt, Defender: evenDef, Ticks: MinWarTicks, PreWarAttackers: 10, PreWarDefenders: 10}
	if got := m.checkTermination(even); got != OutcomeCeasefire {
		t.Fatalf("outcome = %q, want %q for an even bloodbath", got, OutcomeCeasefire)
	}
}

func TestDefeatScattersWholeLosingCoalition(t *testing.T) {
	reg := faction.NewRegistry()
	att := makeFaction("Ashfolk", 6, 0)
	def := makeFaction("Brineborn", 4, 2)
	ally := makeFaction("Cragkin", 12, 4)
	neutral := makeFaction("Dunefolk", 3, 6)
	for _, f := range []*faction.Faction{att, def, ally, neutral} {
		reg.Add(f)
	}

	m, _ := newTestMachine(reg)
	w := &War{
		Attacker:        att,
		Defender:        def,
		AlliesDefender:  []*faction.Faction{ally},
		Ticks:           MinWarTicks,
		PreWarAttackers: 6,
		PreWarDefenders: 16,
	}
	m.endWar(w, OutcomeDefenderSurrender, reg, 10)

	if len(ally.Members) == 12 {
		t.Fatalf("allied survivors never scattered; the whole losing side shares the defeat")
	}
	if len(att.Members) == 6 && len(neutral.Members) == 3 {
		t.Fatalf("no survivor was absorbed or fled anywhere")
	}
	for _, f := range []*faction.Faction{att, def, ally, neutral} {
		for _, member := range f.Members {
			if member.Faction != f.Name {
				t.Fatalf("%s lists %s whose banner reads %q", f.Name, member.Name, member.Faction)
			}
		}
	}
	if total := len(att.Members) + len(def.Members) + len(ally.Members) + len(neutral.Members); total > 25 {
		t.Fatalf("scattering duplicated members: %d across factions, started with 25", total)
	}
}

func TestMoraleCountsLoyaltyAsWarlike(t *testing.T) {
	loyal := makeFaction("Ashfolk", 3, 0)
	for _, member := range loyal.Members {
		belief.Add(member, belief.LoyaltyAboveAll)
	}
	bonded := makeFaction("Brineborn", 3, 2)
	for _, member := range bonded.Members {
		belief.Add(member, belief.BattleForgesBonds)
	}

	m, _ := newTestMachine(faction.NewRegistry())
	if got := m.morale(loyal, true); got != moraleWarlike {
		t.Fatalf("loyalist morale = %v, want %v", got, moraleWarlike)
	}
	if got := m.morale(bonded, true); got != 0 {
		t.Fatalf("comradeship morale = %v, want 0: bonds comfort, they do not whet", got)
	}
}

func TestExhaustedCampaignCountsAsDefeat(t *testing.T) {
	att := makeFaction("Ashfolk", 3, 0)
	def := makeFaction("Brineborn", 3, 2)

	m, _ := newTestMachine(faction.NewRegistry())
	m.History = append(m.History, &War{Attacker: att, Defender: def, Outcome: OutcomeExhaustion, Ended: true})

	if !m.lostBefore("Ashfolk") {
		t.Fatalf("a campaign that peters out is a defeat for its attacker")
	}
	if m.lostBefore("Brineborn") {
		t.Fatalf("the defender outlasting an exhausted attacker carries no defeat")
	}
}

func TestNoWarReentersActive(t *testing.T) {
	reg := faction.NewRegistry()
	att := makeFaction("Ashfolk", 3, 0)
	def := makeFaction("Brineborn", 2, 2)
	reg.Add(att)
	reg.Add(def)

	m, _ := newTestMachine(reg)
	w := &War{Attacker: att, Defender: def, Ticks: 1, PreWarAttackers: 3, PreWarDefenders: 2}
	m.Active = append(m.Active, w)
	def.Members = nil
	m.Tick(reg, 2)

	for i := uint64(3); i < 10; i++ {
		m.Tick(reg, i)
	}
	if len(m.History) != 1 || m.History[0] != w || !w.Ended {
		t.Fatalf("resolved war resurfaced: history=%d ended=%v", len(m.History), w.Ended)
	}
}
