// Package agent provides the inhabitant data model and the spatial
// partition tracking which agents stand on which tile.
package agent

import (
	"fmt"

	"thalren.vale/internal/world"
)

// Capability is an explicit trait attached at construction or through
// AddCapability, never injected ad hoc.
type Capability uint8

const (
	CapSeaTravel Capability = iota
	CapPlagueResistance
	CapMountaineer
)

// TrustEntry is one directed trust relationship.
type TrustEntry struct {
	Score    int    `json:"score"`
	LastTick uint64 `json:"last_tick"` // most recent interaction
}

// Inventory holds per-resource quantities carried by an agent.
type Inventory [world.NumResources]int

// Agent is one inhabitant. The authoritative collection owns agents; the
// partition and factions hold non-owning references.
type Agent struct {
	Name     string `json:"name"`
	Row, Col int    // always mutated through Partition.Move

	Health int `json:"health"` // 0–100
	Hunger int `json:"hunger"` // unbounded non-negative

	Inventory Inventory             `json:"inventory"`
	Beliefs   []string              `json:"beliefs"`
	Trust     map[string]TrustEntry `json:"trust"`
	Memory    []world.Coord         `json:"memory"` // tiles known to hold food

	Faction  string `json:"faction,omitempty"`  // weak reference by name
	Religion string `json:"religion,omitempty"` // weak reference by name

	// Procreating is the birth-claim flag. Only the procreation
	// coordinator's critical section sets or clears it.
	Procreating bool `json:"-"`

	// Per-tick transient flags, reset by the tick preamble.
	WasRelocated bool `json:"-"`

	MedicineBuffer int    `json:"-"` // ticks of starvation damage absorbed
	ZeroFoodTicks  int    `json:"-"`
	TradeCount     int    `json:"trade_count"`
	BornTick       uint64 `json:"born_tick"`

	capabilities map[Capability]bool
}

// New creates an agent at (r, c) with full health and a little food.
func New(name string, r, c int, bornTick uint64) *Agent {
	a := &Agent{
		Name:     name,
		Row:      r,
		Col:      c,
		Health:   100,
		BornTick: bornTick,
		Trust:    make(map[string]TrustEntry),
	}
	a.Inventory[world.Food] = 3
	return a
}

// AddCapability attaches a trait to the agent.
func (a *Agent) AddCapability(c Capability) {
	if a.capabilities == nil {
		a.capabilities = make(map[Capability]bool)
	}
	a.capabilities[c] = true
}

// Has reports whether the agent carries the capability.
func (a *Agent) Has(c Capability) bool {
	return a.capabilities[c]
}

// TotalTrust is the agent's social standing: the sum of all trust scores.
func (a *Agent) TotalTrust() int {
	total := 0
	for _, e := range a.Trust {
		total += e.Score
	}
	return total
}

// RaiseTrust bumps trust toward name and stamps the interaction tick.
func (a *Agent) RaiseTrust(name string, delta int, tick uint64) {
	e := a.Trust[name]
	e.Score += delta
	if e.Score > 100 {
		e.Score = 100
	}
	e.LastTick = tick
	a.Trust[name] = e
}

// TrustToward returns the trust score toward name, zero when unknown.
func (a *Agent) TrustToward(name string) int {
	return a.Trust[name].Score
}

// PruneTrust drops entries whose last interaction is older than horizon.
func (a *Agent) PruneTrust(tick, horizon uint64) {
	for name, e := range a.Trust {
		if e.LastTick+horizon < tick {
			delete(a.Trust, name)
		}
	}
}

// Remember records a food tile, bounded to the most recent entries.
func (a *Agent) Remember(c world.Coord) {
	for _, m := range a.Memory {
		if m == c {
			return
		}
	}
	a.Memory = append(a.Memory, c)
	if len(a.Memory) > 10 {
		a.Memory = a.Memory[len(a.Memory)-10:]
	}
}

// String identifies the agent and its tile for log lines.
func (a *Agent) String() string {
	return fmt.Sprintf("%s(%d,%d)", a.Name, a.Row, a.Col)
}
