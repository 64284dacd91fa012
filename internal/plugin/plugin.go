// Package plugin defines the bounded extension point for external event
// scripts. Plugins observe a read-only snapshot and request changes through
// a sealed command surface; the engine clamps every request before applying
// it through its own primitives, and a panicking plugin is disabled rather
// than taking the run down.
package plugin

import "thalren.vale/internal/world"

// MaxSpawnPerRequest caps how many agents one plugin request can add.
const MaxSpawnPerRequest = 20

// Snapshot is the read-only view handed to plugins.
type Snapshot struct {
	Tick       uint64
	Population int
	GridSize   int
	Factions   int
	ActiveWars int
}

// Commands is the sealed mutation surface. Implementations validate and
// clamp every request; plugins cannot reach the grid or agents directly.
type Commands interface {
	// SpawnAgents adds up to count agents near (r, c), falling back to the
	// nearest habitable tile. Returns how many were actually admitted.
	SpawnAgents(count, r, c int, namePrefix string) int
	// AdjustResource shifts a tile's resource by delta, clamped to
	// [0, biome cap]. Habitability is re-derived afterwards.
	AdjustResource(r, c int, res world.Resource, delta float64)
	// Announce appends a chronicle entry attributed to the plugin.
	Announce(format string, args ...any)
}

// Plugin is one external event script.
type Plugin interface {
	// Name identifies the plugin in logs and the chronicle.
	Name() string
	// Interval is how many ticks pass between Execute calls.
	Interval() int
	// Execute runs the plugin against the current world state.
	Execute(snap Snapshot, cmd Commands)
}
