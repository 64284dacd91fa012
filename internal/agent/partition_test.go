package agent

import (
	"math/rand"
	"sync"
	"testing"
)

func TestMoveRoundTrip(t *testing.T) {
	p := NewPartition()
	a := New("Arin", 2, 2, 0)
	p.Add(a)

	p.Move(a, 4, 5)

	found := 0
	for _, occ := range p.At(4, 5) {
		if occ == a {
			found++
		}
	}
	if found != 1 {
		t.Fatalf("agent found %d times at new tile, want 1", found)
	}
	for _, occ := range p.At(2, 2) {
		if occ == a {
			t.Fatalf("agent still present at old tile after move")
		}
	}
	if a.Row != 4 || a.Col != 5 {
		t.Fatalf("coordinates not updated: got (%d,%d)", a.Row, a.Col)
	}
}

func TestRemoveAbsentIsNoop(t *testing.T) {
	p := NewPartition()
	a := New("Brek", 1, 1, 0)

	p.Remove(a) // never added
	p.Add(a)
	p.Remove(a)
	p.Remove(a) // already gone

	if got := p.Count(); got != 0 {
		t.Fatalf("count = %d after removals, want 0", got)
	}
}

func TestNeighborsSnapshot(t *testing.T) {
	p := NewPartition()
	center := New("Cael", 3, 3, 0)
	adjacent := New("Dova", 2, 4, 0)
	far := New("Esh", 0, 0, 0)
	p.Add(center)
	p.Add(adjacent)
	p.Add(far)

	got := p.Neighbors(3, 3)
	if len(got) != 2 {
		t.Fatalf("neighbors = %d agents, want 2", len(got))
	}
	for _, a := range got {
		if a == far {
			t.Fatalf("agent outside the 3x3 block returned as neighbor")
		}
	}
}

func TestVerifyDetectsDesync(t *testing.T) {
	p := NewPartition()
	a := New("Fenn", 1, 1, 0)
	p.Add(a)

	if err := p.Verify([]*Agent{a}); err != nil {
		t.Fatalf("verify on consistent state: %v", err)
	}

	// Bypass Move so the coordinate fields and bucket disagree.
	a.Row = 5
	if err := p.Verify([]*Agent{a}); err == nil {
		t.Fatalf("verify missed a desynchronized agent")
	}
}

func TestConcurrentMovesKeepInvariant(t *testing.T) {
	p := NewPartition()
	var agents []*Agent
	for i := 0; i < 32; i++ {
		a := New(BaseNames[i], i%6, i/6, 0)
		agents = append(agents, a)
		p.Add(a)
	}

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(int64(w)))
			for i := 0; i < 200; i++ {
				a := agents[w*4+i%4] // disjoint agents per goroutine
				p.Move(a, rng.Intn(6), rng.Intn(6))
			}
		}(w)
	}
	wg.Wait()

	if err := p.Verify(agents); err != nil {
		t.Fatalf("partition invariant broken after concurrent moves: %v", err)
	}
	if got := p.Count(); got != len(agents) {
		t.Fatalf("count = %d, want %d", got, len(agents))
	}
}
