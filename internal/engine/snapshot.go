package engine

import (
	"thalren.vale/internal/chronicle"
	"thalren.vale/internal/combat"
	"thalren.vale/internal/world"
)

// Status is the top-level run summary exposed to readers.
type Status struct {
	Tick        uint64 `json:"tick"`
	Population  int    `json:"population"`
	Factions    int    `json:"factions"`
	ActiveWars  int    `json:"active_wars"`
	PastWars    int    `json:"past_wars"`
	GridSize    int    `json:"grid_size"`
	Season      string `json:"season"`
	PeakTension int    `json:"peak_tension"`

	// RecentBirths counts births over the last statusWindow ticks; a long
	// stretch of zero signals a stagnant world.
	RecentBirths int `json:"recent_births"`
}

// statusWindow is the lookback for the status snapshot's recent counters.
const statusWindow = 50

// AgentView is the read-only projection of one agent.
type AgentView struct {
	Name       string `json:"name"`
	Row        int    `json:"row"`
	Col        int    `json:"col"`
	Health     int    `json:"health"`
	Hunger     int    `json:"hunger"`
	Food       int    `json:"food"`
	Faction    string `json:"faction,omitempty"`
	TradeCount int    `json:"trade_count"`
	BornTick   uint64 `json:"born_tick"`
}

// WarView is the read-only projection of one war.
type WarView struct {
	Attacker       string   `json:"attacker"`
	Defender       string   `json:"defender"`
	AlliesAttacker []string `json:"allies_attacker,omitempty"`
	AlliesDefender []string `json:"allies_defender,omitempty"`
	Cause          string   `json:"cause"`
	DeclaredTick   uint64   `json:"declared_tick"`
	Ticks          int      `json:"ticks"`
	Outcome        string   `json:"outcome,omitempty"`
	Ended          bool     `json:"ended"`
}

// StatusSnapshot returns the run summary. Safe to call while the simulation
// runs; readers block only at tick boundaries.
func (s *Simulation) StatusSnapshot() Status {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	season := "summer"
	if winter(s.Tick) {
		season = "winter"
	}
	since := uint64(0)
	if s.Tick > statusWindow {
		since = s.Tick - statusWindow
	}
	return Status{
		Tick:         s.Tick,
		Population:   len(s.Agents),
		Factions:     len(s.Factions.Active()),
		ActiveWars:   len(s.Wars.Active),
		PastWars:     len(s.Wars.History),
		GridSize:     s.Grid.Size(),
		Season:       season,
		PeakTension:  s.Factions.Tension.Peak(),
		RecentBirths: s.Chronicle.CountSince(since, "birth"),
	}
}

// AgentSnapshots returns a projection of every living agent.
func (s *Simulation) AgentSnapshots() []AgentView {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	out := make([]AgentView, 0, len(s.Agents))
	for _, a := range s.Agents {
		out = append(out, AgentView{
			Name:       a.Name,
			Row:        a.Row,
			Col:        a.Col,
			Health:     a.Health,
			Hunger:     a.Hunger,
			Food:       a.Inventory[world.Food],
			Faction:    a.Faction,
			TradeCount: a.TradeCount,
			BornTick:   a.BornTick,
		})
	}
	return out
}

// WarSnapshots returns projections of active wars followed by history.
func (s *Simulation) WarSnapshots() []WarView {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	out := make([]WarView, 0, len(s.Wars.Active)+len(s.Wars.History))
	for _, w := range s.Wars.Active {
		out = append(out, warView(w))
	}
	for _, w := range s.Wars.History {
		out = append(out, warView(w))
	}
	return out
}

func warView(w *combat.War) WarView {
	v := WarView{
		Attacker:     w.Attacker.Name,
		Defender:     w.Defender.Name,
		Cause:        w.Cause,
		DeclaredTick: w.DeclaredTick,
		Ticks:        w.Ticks,
		Outcome:      string(w.Outcome),
		Ended:        w.Ended,
	}
	for _, f := range w.AlliesAttacker {
		v.AlliesAttacker = append(v.AlliesAttacker, f.Name)
	}
	for _, f := range w.AlliesDefender {
		v.AlliesDefender = append(v.AlliesDefender, f.Name)
	}
	return v
}

// RecentEvents returns the newest n chronicle entries.
func (s *Simulation) RecentEvents(n int) []chronicle.Entry {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.Chronicle.Recent(n)
}
