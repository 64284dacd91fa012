package plugin

import (
	"math/rand"

	"thalren.vale/internal/world"
)

// Drought periodically scorches a band of tiles, draining their food.
type Drought struct {
	rng *rand.Rand
}

// NewDrought creates a drought event source.
func NewDrought(rng *rand.Rand) *Drought { return &Drought{rng: rng} }

func (d *Drought) Name() string  { return "drought" }
func (d *Drought) Interval() int { return 75 }

func (d *Drought) Execute(snap Snapshot, cmd Commands) {
	if snap.GridSize == 0 {
		return
	}
	row := d.rng.Intn(snap.GridSize)
	for c := 0; c < snap.GridSize; c++ {
		cmd.AdjustResource(row, c, world.Food, -4)
	}
	cmd.Announce("a drought withers the land along row %d", row)
}

// Refugees lands a small group of outsiders when the world feels empty.
type Refugees struct {
	rng *rand.Rand
}

// NewRefugees creates a refugee event source.
func NewRefugees(rng *rand.Rand) *Refugees { return &Refugees{rng: rng} }

func (r *Refugees) Name() string  { return "refugees" }
func (r *Refugees) Interval() int { return 90 }

func (r *Refugees) Execute(snap Snapshot, cmd Commands) {
	if snap.Population >= 30 || snap.GridSize == 0 {
		return
	}
	row, col := r.rng.Intn(snap.GridSize), r.rng.Intn(snap.GridSize)
	if n := cmd.SpawnAgents(3, row, col, "Refugee"); n > 0 {
		cmd.Announce("%d refugees arrive from beyond the map", n)
	}
}
