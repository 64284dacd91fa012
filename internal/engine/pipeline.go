package engine

import (
	"fmt"
	"log/slog"
	"math/rand"
	"sync"

	"thalren.vale/internal/agent"
)

// StepOutcome is the per-agent result a worker reports: a normal step, a
// death, or a skip caused by a recovered fault. Faults in one agent never
// abort the tick.
type StepOutcome struct {
	Agent *agent.Agent
	Died  bool
	Skip  string // non-empty when the step was abandoned
}

// runPipeline fans the shuffled agent collection out over the worker pool in
// contiguous chunks, joins, then applies deaths. Each worker keeps its own
// dead list and random source, so the only contention is on the three
// fine-grained locks and the partition's own lock.
func (s *Simulation) runPipeline(tick uint64) {
	n := len(s.Agents)
	if n == 0 {
		return
	}
	workers := s.workers
	if workers > n {
		workers = n
	}

	outcomes := make([][]StepOutcome, workers)
	chunk := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := lo + chunk
		if hi > n {
			hi = n
		}
		if lo >= hi {
			break
		}
		wg.Add(1)
		go func(w int, chunk []*agent.Agent) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(s.cfg.Seed + int64(tick)*1009 + int64(w)))
			for _, a := range chunk {
				outcomes[w] = append(outcomes[w], s.stepOne(a, rng, tick))
			}
		}(w, s.Agents[lo:hi])
	}
	wg.Wait()

	// Join barrier passed: merge the per-worker dead lists and remove each
	// casualty from the collection first, then the partition.
	for _, list := range outcomes {
		for _, out := range list {
			if out.Skip != "" {
				slog.Warn("agent step skipped", "agent", out.Agent.Name, "reason", out.Skip, "tick", tick)
				continue
			}
			if out.Died {
				s.Kill(out.Agent, tick, "starvation")
			}
		}
	}
}

// stepOne runs the full per-agent step, converting a panic into a skip
// outcome so one malformed agent cannot take the tick down.
func (s *Simulation) stepOne(a *agent.Agent, rng *rand.Rand, tick uint64) (out StepOutcome) {
	out.Agent = a
	defer func() {
		if r := recover(); r != nil {
			out.Skip = fmt.Sprintf("recovered: %v", r)
		}
	}()
	out.Died = s.stepAgent(a, rng, tick)
	return out
}
