package agent

import (
	"fmt"
	"sync"

	"thalren.vale/internal/world"
)

// Partition is the spatial index mapping tile coordinates to the agents
// standing there. It is the sole source of truth for "who is where": every
// position change goes through Move, so an agent's coordinate fields and its
// partition bucket always agree, even under concurrent mutation. All methods
// are safe for any number of concurrent callers; no external lock is needed.
type Partition struct {
	mu      sync.Mutex
	buckets map[world.Coord][]*Agent
}

// NewPartition returns an empty partition.
func NewPartition() *Partition {
	return &Partition{buckets: make(map[world.Coord][]*Agent)}
}

// Add registers the agent at its current coordinate.
func (p *Partition) Add(a *Agent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.addLocked(a)
}

func (p *Partition) addLocked(a *Agent) {
	key := world.Coord{Row: a.Row, Col: a.Col}
	p.buckets[key] = append(p.buckets[key], a)
}

// Remove deregisters the agent. Removing an agent already absent is a no-op.
func (p *Partition) Remove(a *Agent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.removeLocked(a)
}

func (p *Partition) removeLocked(a *Agent) {
	key := world.Coord{Row: a.Row, Col: a.Col}
	bucket := p.buckets[key]
	for i, occ := range bucket {
		if occ == a {
			p.buckets[key] = append(bucket[:i], bucket[i+1:]...)
			if len(p.buckets[key]) == 0 {
				delete(p.buckets, key)
			}
			return
		}
	}
}

// Move atomically deregisters the agent from its old bucket, updates its
// coordinate fields, and registers it at (r, c). No intermediate state is
// observable from outside the critical section.
func (p *Partition) Move(a *Agent, r, c int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.removeLocked(a)
	a.Row, a.Col = r, c
	p.addLocked(a)
}

// At returns a snapshot of the agents on tile (r, c), safe to iterate after
// the call returns.
func (p *Partition) At(r, c int) []*Agent {
	p.mu.Lock()
	defer p.mu.Unlock()
	bucket := p.buckets[world.Coord{Row: r, Col: c}]
	out := make([]*Agent, len(bucket))
	copy(out, bucket)
	return out
}

// Neighbors returns a snapshot of all agents in the 3×3 block centered on
// (r, c), including the center tile.
func (p *Partition) Neighbors(r, c int) []*Agent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []*Agent
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			out = append(out, p.buckets[world.Coord{Row: r + dr, Col: c + dc}]...)
		}
	}
	return out
}

// Count returns the number of registered agents.
func (p *Partition) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, bucket := range p.buckets {
		n += len(bucket)
	}
	return n
}

// Verify checks that the partition holds exactly the given collection: every
// agent present once, in the bucket matching its coordinates. A mismatch is
// a structural fault and the caller should abort the run.
func (p *Partition) Verify(agents []*Agent) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	total := 0
	for _, bucket := range p.buckets {
		total += len(bucket)
	}
	if total != len(agents) {
		return fmt.Errorf("partition holds %d agents, collection holds %d", total, len(agents))
	}
	for _, a := range agents {
		key := world.Coord{Row: a.Row, Col: a.Col}
		found := 0
		for _, occ := range p.buckets[key] {
			if occ == a {
				found++
			}
		}
		if found != 1 {
			return fmt.Errorf("agent %s appears %d times in bucket (%d,%d)", a.Name, found, a.Row, a.Col)
		}
	}
	return nil
}
