package engine

import (
	"log/slog"

	"thalren.vale/internal/agent"
)

// travelerPhase tops up a dwindling world: every travelerInterval ticks,
// while the population sits under the floor, a small wave of travelers
// arrives at random habitable tiles.
func (s *Simulation) travelerPhase(tick uint64) {
	if tick%travelerInterval != 0 || len(s.Agents) >= travelerPopFloor {
		return
	}
	habitable := s.Grid.Habitable()
	if len(habitable) == 0 {
		return
	}
	wave := 2 + s.rng.Intn(3)
	arrived := 0
	for i := 0; i < wave && len(s.Agents) < s.cfg.PopulationCap; i++ {
		name := agent.NextName(s.usedNames)
		if name == "" {
			break
		}
		at := habitable[s.rng.Intn(len(habitable))]
		a := agent.New(name, at.Row, at.Col, tick)
		s.register(a)
		arrived++
	}
	if arrived > 0 {
		s.Chronicle.Append(tick, "arrival", "a wave of %d travelers arrived", arrived)
		slog.Info("travelers arrived", "count", arrived, "tick", tick)
	}
}
