// Package faction provides the faction directory and the inter-faction
// tension table. The war machine mutates membership and territory; faction
// economics and diplomacy content live with external collaborators.
package faction

import (
	"sort"

	"thalren.vale/internal/agent"
	"thalren.vale/internal/world"
)

// Legend records a member who fell in battle.
type Legend struct {
	Name string      `json:"name"`
	At   world.Coord `json:"at"`
	Tick uint64      `json:"tick"`
}

// Faction is a named group of agents with pooled food and claimed territory.
// Members are non-owning references; the authoritative collection owns the
// agents.
type Faction struct {
	Name          string         `json:"name"`
	Members       []*agent.Agent `json:"-"`
	SharedBeliefs []string       `json:"shared_beliefs"`
	FoundedTick   uint64         `json:"founded_tick"`

	// Territory is derived: the tiles members currently stand on plus any
	// war-claimed ground. It shrinks as members die or move on.
	Territory []world.Coord `json:"territory"`

	// Claimed is ground taken in war. It persists without occupation until
	// another war takes it back.
	Claimed []world.Coord `json:"claimed,omitempty"`

	// FoodReserve is the pooled stock, distinct from member inventories.
	FoodReserve float64 `json:"food_reserve"`

	// Techs is the faction's technology set, populated by the technology
	// collaborator and read during strength computation.
	Techs map[string]bool `json:"techs"`

	Legends []Legend `json:"legends"`

	Settlement string `json:"settlement,omitempty"` // weak reference by name
}

// New creates a faction and tags every member with its name.
func New(name string, members []*agent.Agent, beliefs []string, tick uint64) *Faction {
	f := &Faction{
		Name:          name,
		Members:       members,
		SharedBeliefs: beliefs,
		FoundedTick:   tick,
		Techs:         make(map[string]bool),
	}
	for _, m := range members {
		m.Faction = name
	}
	f.UpdateTerritory()
	return f
}

// Alive reports whether the faction still has members.
func (f *Faction) Alive() bool { return len(f.Members) > 0 }

// HasMember reports membership by identity.
func (f *Faction) HasMember(a *agent.Agent) bool {
	for _, m := range f.Members {
		if m == a {
			return true
		}
	}
	return false
}

// RemoveMember drops the agent from the member list and clears its weak
// faction reference when it still points here.
func (f *Faction) RemoveMember(a *agent.Agent) {
	for i, m := range f.Members {
		if m == a {
			f.Members = append(f.Members[:i], f.Members[i+1:]...)
			break
		}
	}
	if a.Faction == f.Name {
		a.Faction = ""
	}
}

// AddMember appends the agent and points its weak reference here.
func (f *Faction) AddMember(a *agent.Agent) {
	f.Members = append(f.Members, a)
	a.Faction = f.Name
}

// RemoveDead drops members whose names appear in deadNames.
func (f *Faction) RemoveDead(deadNames map[string]bool) {
	kept := f.Members[:0]
	for _, m := range f.Members {
		if !deadNames[m.Name] {
			kept = append(kept, m)
		}
	}
	f.Members = kept
}

// UpdateTerritory rebuilds territory from current member positions plus the
// war-claimed tiles. Ground members have walked away from is lost.
func (f *Faction) UpdateTerritory() {
	seen := make(map[world.Coord]bool, len(f.Members)+len(f.Claimed))
	f.Territory = f.Territory[:0]
	for _, m := range f.Members {
		c := world.Coord{Row: m.Row, Col: m.Col}
		if !seen[c] {
			seen[c] = true
			f.Territory = append(f.Territory, c)
		}
	}
	for _, c := range f.Claimed {
		if !seen[c] {
			seen[c] = true
			f.Territory = append(f.Territory, c)
		}
	}
}

// ClaimTerritory takes one tile from loser as a lasting claim.
func (f *Faction) ClaimTerritory(c world.Coord, from *Faction) {
	for i, tc := range from.Claimed {
		if tc == c {
			from.Claimed = append(from.Claimed[:i], from.Claimed[i+1:]...)
			break
		}
	}
	from.UpdateTerritory()

	for _, tc := range f.Claimed {
		if tc == c {
			return
		}
	}
	f.Claimed = append(f.Claimed, c)
	f.UpdateTerritory()
}

// PairKey canonicalizes an unordered faction-name pair.
type PairKey struct{ A, B string }

// Pair returns the canonical key for two faction names.
func Pair(a, b string) PairKey {
	if a > b {
		a, b = b, a
	}
	return PairKey{A: a, B: b}
}

// TensionTable accumulates hostility between faction pairs. It is explicit
// shared state owned by the simulation context; it is only mutated during
// serial phases, so no lock is carried.
type TensionTable struct {
	scores map[PairKey]int
}

// NewTensionTable returns an empty table.
func NewTensionTable() *TensionTable {
	return &TensionTable{scores: make(map[PairKey]int)}
}

// Get returns the tension between two factions, zero when untracked.
func (t *TensionTable) Get(a, b string) int { return t.scores[Pair(a, b)] }

// Set overwrites the tension between two factions.
func (t *TensionTable) Set(a, b string, v int) { t.scores[Pair(a, b)] = v }

// Raise adds delta, clamping at ceiling.
func (t *TensionTable) Raise(a, b string, delta, ceiling int) {
	key := Pair(a, b)
	v := t.scores[key] + delta
	if v > ceiling {
		v = ceiling
	}
	t.scores[key] = v
}

// Relieve subtracts delta, clamping at zero.
func (t *TensionTable) Relieve(a, b string, delta int) {
	key := Pair(a, b)
	v := t.scores[key] - delta
	if v < 0 {
		v = 0
	}
	t.scores[key] = v
}

// Pairs returns every tracked pair in deterministic order.
func (t *TensionTable) Pairs() []PairKey {
	out := make([]PairKey, 0, len(t.scores))
	for k := range t.scores {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].A != out[j].A {
			return out[i].A < out[j].A
		}
		return out[i].B < out[j].B
	})
	return out
}

// Peak returns the highest tracked tension.
func (t *TensionTable) Peak() int {
	peak := 0
	for _, v := range t.scores {
		if v > peak {
			peak = v
		}
	}
	return peak
}

// Registry is the faction directory: name → faction. Lookups by stale names
// miss cleanly; a miss is a defined "no association" state.
type Registry struct {
	Factions []*Faction
	Tension  *TensionTable
}

// NewRegistry returns an empty directory with a fresh tension table.
func NewRegistry() *Registry {
	return &Registry{Tension: NewTensionTable()}
}

// Add registers a faction.
func (r *Registry) Add(f *Faction) { r.Factions = append(r.Factions, f) }

// ByName returns the faction with the given name, or nil.
func (r *Registry) ByName(name string) *Faction {
	for _, f := range r.Factions {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// Active returns factions with at least one member.
func (r *Registry) Active() []*Faction {
	var out []*Faction
	for _, f := range r.Factions {
		if f.Alive() {
			out = append(out, f)
		}
	}
	return out
}
