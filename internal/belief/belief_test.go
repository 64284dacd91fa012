package belief

import (
	"testing"

	"thalren.vale/internal/agent"
)

func TestCoreStripsHeardFromPrefix(t *testing.T) {
	if got := Core("Arin:" + TheStrongTake); got != TheStrongTake {
		t.Fatalf("core = %q, want %q", got, TheStrongTake)
	}
	if got := Core(WarIsCostly); got != WarIsCostly {
		t.Fatalf("core of a bare key = %q, want unchanged", got)
	}
}

func TestAddDeduplicatesByCore(t *testing.T) {
	a := agent.New("Arin", 0, 0, 0)
	Add(a, TheStrongTake)
	Add(a, "Brek:"+TheStrongTake) // same core, heard from someone else

	if len(a.Beliefs) != 1 {
		t.Fatalf("beliefs = %d, want 1 after core-duplicate add", len(a.Beliefs))
	}
}

func TestAddEvictsOldestPastCap(t *testing.T) {
	a := agent.New("Arin", 0, 0, 0)
	keys := []string{
		TheStrongTake, WarIsCostly, NeverAgain, VictoryProves, SacrificeHasMeaning,
		BattleForgesBonds, LoyaltyAboveAll, EnduranceRewarded, SufferingForges,
	}
	for _, k := range keys {
		Add(a, k)
	}
	if len(a.Beliefs) != MaxBeliefs {
		t.Fatalf("beliefs = %d, want cap %d", len(a.Beliefs), MaxBeliefs)
	}
	if Cores(a)[TheStrongTake] {
		t.Fatalf("oldest belief survived past the cap")
	}
	if !Cores(a)[SufferingForges] {
		t.Fatalf("newest belief missing")
	}
}
