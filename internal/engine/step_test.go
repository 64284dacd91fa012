package engine

import (
	"sync"
	"testing"

	"thalren.vale/internal/agent"
	"thalren.vale/internal/chronicle"
	"thalren.vale/internal/world"
)

// Trades push goods into the partner's inventory from another worker's
// goroutine, so meals and trades on the same agent must serialize. Run with
// the race detector to catch regressions in the locking.
func TestConcurrentTradesAndMealsKeepInventoriesIntact(t *testing.T) {
	s := New(testConfig(2, 0, 50), chronicle.New(nil))
	habitable := s.Grid.Habitable()
	if len(habitable) == 0 {
		t.Skip("generated grid has no habitable tiles")
	}
	home := habitable[0]

	a := agent.New("Arin", home.Row, home.Col, 0)
	b := agent.New("Brek", home.Row, home.Col, 0)
	a.Inventory[world.Wood] = 200
	b.Inventory[world.Food] = 200
	s.register(a)
	s.register(b)

	const rounds = 500
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			s.trade(a, b, 1)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			s.eat(b)
		}
	}()
	wg.Wait()

	// Meals never touch wood, so every unit must still be accounted for.
	if wood := a.Inventory[world.Wood] + b.Inventory[world.Wood]; wood != 200 {
		t.Fatalf("wood total = %d after concurrent trades, want 200", wood)
	}
	for _, ag := range []*agent.Agent{a, b} {
		for r := world.Resource(0); r < world.NumResources; r++ {
			if ag.Inventory[r] < 0 {
				t.Fatalf("%s holds %d of resource %d, inventories must never go negative", ag.Name, ag.Inventory[r], r)
			}
		}
	}
	if food := a.Inventory[world.Food] + b.Inventory[world.Food]; food > 200 {
		t.Fatalf("food total = %d after concurrent meals, meals and trades cannot mint food", food)
	}
}
