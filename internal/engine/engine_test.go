package engine

import (
	"testing"

	"thalren.vale/internal/agent"
	"thalren.vale/internal/chronicle"
	"thalren.vale/internal/world"
)

func TestPopulationNeverExceedsCapAcrossWorkerCounts(t *testing.T) {
	for _, workers := range []int{1, 2, 4, 8} {
		cfg := testConfig(workers, 12, 15)
		cfg.GridSize = 8
		cfg.Seed = 11
		s := New(cfg, chronicle.New(nil))

		for i := 0; i < 60; i++ {
			if err := s.RunTick(); err != nil {
				t.Fatalf("workers=%d tick %d: %v", workers, i+1, err)
			}
			if got := len(s.Agents); got > cfg.PopulationCap {
				t.Fatalf("workers=%d tick %d: population %d exceeds cap %d", workers, i+1, got, cfg.PopulationCap)
			}
		}
		if err := s.Partition.Verify(s.Agents); err != nil {
			t.Fatalf("workers=%d: partition desynchronized: %v", workers, err)
		}
	}
}

func TestOvercrowdingRelief(t *testing.T) {
	s := New(testConfig(2, 0, 50), chronicle.New(nil))

	// Find a habitable tile with at least one land neighbor to push into.
	var home world.Coord
	found := false
	for _, c := range s.Grid.Habitable() {
		for dr := -1; dr <= 1 && !found; dr++ {
			for dc := -1; dc <= 1; dc++ {
				if dr == 0 && dc == 0 {
					continue
				}
				r2, c2 := c.Row+dr, c.Col+dc
				if s.Grid.InBounds(r2, c2) && s.Grid.Tile(r2, c2).Biome != world.BiomeSea {
					home, found = c, true
					break
				}
			}
		}
		if found {
			break
		}
	}
	if !found {
		t.Skip("generated grid has no habitable tile with a land neighbor")
	}

	for i := 0; i < maxTileOccupancy+3; i++ {
		s.register(agent.New(agent.BaseNames[i], home.Row, home.Col, 0))
	}

	s.preamble(1)

	if got := len(s.Partition.At(home.Row, home.Col)); got > maxTileOccupancy {
		t.Fatalf("tile still holds %d agents after relief, cap is %d", got, maxTileOccupancy)
	}
	relocated := 0
	for _, a := range s.Agents {
		if a.WasRelocated {
			relocated++
			if a.Row == home.Row && a.Col == home.Col {
				t.Fatalf("%s flagged relocated but still on the crowded tile", a.Name)
			}
		}
	}
	if relocated != 3 {
		t.Fatalf("relocated = %d agents, want 3", relocated)
	}
	if err := s.Partition.Verify(s.Agents); err != nil {
		t.Fatalf("partition desynchronized after relief: %v", err)
	}
}

func TestPipelineIsolatesPerAgentFaults(t *testing.T) {
	s := New(testConfig(2, 0, 50), chronicle.New(nil))
	habitable := s.Grid.Habitable()
	if len(habitable) == 0 {
		t.Skip("generated grid has no habitable tiles")
	}
	home := habitable[0]

	healthy := agent.New("Arin", home.Row, home.Col, 0)
	healthy.Inventory[world.Food] = 0
	healthy.Hunger = 10
	s.register(healthy)

	// Malformed state: coordinates off the grid make every tile access
	// panic. The worker must recover and carry on.
	rogue := agent.New("Brek", 99, 99, 0)
	s.register(rogue)

	s.runPipeline(1)

	if healthy.Hunger != 10+hungerPerTick {
		t.Fatalf("healthy agent hunger = %d, want %d: the step should have run despite the rogue", healthy.Hunger, 10+hungerPerTick)
	}
	if err := s.Partition.Verify(s.Agents); err != nil {
		t.Fatalf("partition desynchronized after a skipped agent: %v", err)
	}
}

func TestDeadRemovedFromCollectionAndPartition(t *testing.T) {
	s := New(testConfig(1, 0, 50), chronicle.New(nil))
	habitable := s.Grid.Habitable()
	if len(habitable) == 0 {
		t.Skip("generated grid has no habitable tiles")
	}
	home := habitable[0]

	doomed := agent.New("Arin", home.Row, home.Col, 0)
	doomed.Health = 5
	doomed.Hunger = 100 // starving, no food, no medicine
	s.register(doomed)

	s.runPipeline(1)

	if len(s.Agents) != 0 {
		t.Fatalf("dead agent still in the collection")
	}
	if got := s.Partition.Count(); got != 0 {
		t.Fatalf("dead agent still in the partition: count = %d", got)
	}
	if !s.Dead["Arin"] {
		t.Fatalf("death not recorded in the all-time dead set")
	}
}
