package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Tuning constants for the tick loop and its serial phases.
const (
	// Per-agent step.
	hungerPerTick      = 7
	starveThreshold    = 40 // hunger above this causes damage and double meals
	starveDamage       = 10
	eatHungerRelief    = 7
	scarceFoodFloor    = 3.0 // tile food below this triggers relocation
	gatherBonusChance  = 0.30
	tradeChance        = 0.50
	maxTileOccupancy   = 5
	trustPruneHorizon  = 60
	tradeRouteHorizon  = 100

	// Procreation.
	procreationAttempts = 3
	procreationTrust    = 5
	procreationFood     = 2 // each parent must hold this much
	procreationFoodCost = 1 // and spends this much

	// Seasons: a fixed cycle with a winter window of lean regrowth and no
	// births.
	seasonCycle = 50
	winterStart = 25
	winterLen   = 8
	regenSummer = 0.25
	regenWinter = 0.125

	// Population maintenance.
	travelerInterval = 40
	travelerPopFloor = 20
	factionInterval  = 5
	growthInterval   = 25
	pruneInterval    = 50

	slowTickWarning = time.Second
)

// winter reports whether the tick falls inside the winter window.
func winter(tick uint64) bool {
	phase := tick % seasonCycle
	return phase >= winterStart && phase < winterStart+winterLen
}

// Run advances the simulation until the configured tick count, the context
// is cancelled, or a structural fault aborts the run. Cancellation is
// cooperative: the tick in flight always completes.
func (s *Simulation) Run(ctx context.Context) error {
	for s.Tick < uint64(s.cfg.Ticks) {
		select {
		case <-ctx.Done():
			slog.Info("interrupted, shutting down", "tick", s.Tick)
			s.Chronicle.Drain()
			return nil
		default:
		}
		if err := s.RunTick(); err != nil {
			s.Chronicle.Drain()
			return fmt.Errorf("tick %d: %w", s.Tick, err)
		}
	}
	s.Chronicle.Drain()
	return nil
}

// RunTick executes one full tick: the serial preamble, the parallel agent
// pipeline between join barriers, then the strictly ordered serial phases.
// The whole tick holds the state write lock, so API readers always observe
// tick boundaries.
func (s *Simulation) RunTick() error {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()

	start := time.Now()
	s.Tick++
	tick := s.Tick

	rate := regenSummer
	if winter(tick) {
		rate = regenWinter
	}
	s.Grid.Regen(rate)

	s.preamble(tick)
	s.runPipeline(tick)
	if err := s.Partition.Verify(s.Agents); err != nil {
		return fmt.Errorf("partition desynchronized after pipeline: %w", err)
	}

	s.procreationPhase(tick)
	s.factionPhase(tick)
	s.Wars.Tick(s.Factions, tick)
	s.travelerPhase(tick)
	s.pluginPhase(tick)

	if tick%growthInterval == 0 {
		s.Grid.GrowForPopulation(len(s.Agents))
	}
	if tick%pruneInterval == 0 {
		s.Chronicle.Prune()
	}

	if err := s.Partition.Verify(s.Agents); err != nil {
		return fmt.Errorf("partition desynchronized after serial phases: %w", err)
	}

	if elapsed := time.Since(start); elapsed > slowTickWarning {
		slog.Warn("slow tick", "tick", tick, "elapsed", elapsed, "population", len(s.Agents))
	}
	return nil
}
