// Package diplomacy provides the default council-vote and reputation
// collaborators the war machine consumes. Treaty content and surrender-term
// negotiation live outside the core.
package diplomacy

import (
	"log/slog"
	"math/rand"
	"sync"

	"thalren.vale/internal/belief"
	"thalren.vale/internal/faction"
)

// Vote thresholds per topic (yes fraction required).
var voteThreshold = map[string]float64{
	"war":      0.60,
	"alliance": 0.50,
}

var (
	voteWarYes = map[string]bool{
		belief.TheStrongTake:   true,
		belief.VictoryProves:   true,
		belief.SufferingForges: true,
	}
	voteWarNo = map[string]bool{
		belief.WarIsCostly: true,
		belief.NeverAgain:  true,
	}
)

// Council runs belief-weighted member votes for a faction.
type Council struct {
	rng *rand.Rand
}

// NewCouncil creates a council using the given random source.
func NewCouncil(rng *rand.Rand) *Council {
	return &Council{rng: rng}
}

// Vote runs an internal vote. Factions under three members have no council;
// the leader decides and the vote passes.
func (c *Council) Vote(f *faction.Faction, topic string, context map[string]string) (bool, string) {
	if len(f.Members) < 3 {
		return true, ""
	}

	leaderCores := belief.Cores(f.Members[0])
	yes, no := 0, 0
	for _, m := range f.Members {
		if c.castVote(belief.Cores(m), topic, leaderCores) {
			yes++
		} else {
			no++
		}
	}

	total := yes + no
	pct := float64(yes) / float64(total)
	threshold, ok := voteThreshold[topic]
	if !ok {
		threshold = 0.50
	}
	passed := pct >= threshold

	label := "FAILED"
	if passed {
		label = "PASSED"
	}
	desc := "council vote: " + topic + " — " + label
	slog.Debug("council vote", "faction", f.Name, "topic", topic, "yes", yes, "no", no, "passed", passed)
	return passed, desc
}

func (c *Council) castVote(cores map[string]bool, topic string, leaderCores map[string]bool) bool {
	if cores[belief.LoyaltyAboveAll] {
		if topic == "war" {
			return anyIn(leaderCores, voteWarYes)
		}
		return true
	}
	if topic == "war" {
		if anyIn(cores, voteWarYes) {
			return true
		}
		if anyIn(cores, voteWarNo) {
			return false
		}
		return c.rng.Float64() < 0.45 // slight peace bias
	}
	return c.rng.Float64() < 0.50
}

func anyIn(cores, set map[string]bool) bool {
	for k := range set {
		if cores[k] {
			return true
		}
	}
	return false
}

// Reputation is a simple honor ledger adjusted on war start and resolution.
type Reputation struct {
	mu     sync.Mutex
	scores map[string]int
}

// NewReputation returns an empty ledger.
func NewReputation() *Reputation {
	return &Reputation{scores: make(map[string]int)}
}

// Adjust shifts a faction's reputation.
func (r *Reputation) Adjust(name string, delta int, reason string, tick uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scores[name] += delta
	slog.Debug("reputation adjusted", "faction", name, "delta", delta, "reason", reason, "tick", tick)
}

// Get returns a faction's current reputation.
func (r *Reputation) Get(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.scores[name]
}
