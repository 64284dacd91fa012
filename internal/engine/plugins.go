package engine

import (
	"log/slog"

	"thalren.vale/internal/agent"
	"thalren.vale/internal/plugin"
	"thalren.vale/internal/world"
)

// pluginPhase runs due plugins against a read-only snapshot. A panicking
// plugin is logged and permanently disabled; the run continues.
func (s *Simulation) pluginPhase(tick uint64) {
	if len(s.plugins) == 0 {
		return
	}
	snap := plugin.Snapshot{
		Tick:       tick,
		Population: len(s.Agents),
		GridSize:   s.Grid.Size(),
		Factions:   len(s.Factions.Active()),
		ActiveWars: len(s.Wars.Active),
	}
	cmd := &pluginCommands{sim: s, tick: tick}
	for _, p := range s.plugins {
		if s.disabled[p.Name()] || p.Interval() <= 0 || tick%uint64(p.Interval()) != 0 {
			continue
		}
		s.runPlugin(p, snap, cmd)
	}
}

func (s *Simulation) runPlugin(p plugin.Plugin, snap plugin.Snapshot, cmd *pluginCommands) {
	defer func() {
		if r := recover(); r != nil {
			s.disabled[p.Name()] = true
			slog.Error("plugin panicked, disabling", "plugin", p.Name(), "panic", r)
		}
	}()
	cmd.name = p.Name()
	p.Execute(snap, cmd)
}

// pluginCommands is the sealed mutation surface handed to plugins. Every
// request is clamped and applied through the engine's own primitives.
type pluginCommands struct {
	sim  *Simulation
	tick uint64
	name string
}

func (c *pluginCommands) SpawnAgents(count, r, c2 int, namePrefix string) int {
	s := c.sim
	if count > plugin.MaxSpawnPerRequest {
		count = plugin.MaxSpawnPerRequest
	}
	spawned := 0
	for i := 0; i < count && len(s.Agents) < s.cfg.PopulationCap; i++ {
		at := world.Coord{Row: r, Col: c2}
		if !s.Grid.InBounds(at.Row, at.Col) || !s.Grid.Tile(at.Row, at.Col).Habitable {
			at = s.Grid.NearestHabitable(clampInt(at.Row, 0, s.Grid.Size()-1), clampInt(at.Col, 0, s.Grid.Size()-1))
		}
		if !s.Grid.Tile(at.Row, at.Col).Habitable {
			break // nowhere habitable at all
		}
		name := agent.NextName(s.usedNames)
		if namePrefix != "" {
			name = agent.PrefixedName(s.usedNames, namePrefix)
		}
		if name == "" {
			break
		}
		a := agent.New(name, at.Row, at.Col, c.tick)
		s.register(a)
		spawned++
	}
	return spawned
}

func (c *pluginCommands) AdjustResource(r, c2 int, res world.Resource, delta float64) {
	if res < 0 || res >= world.NumResources {
		return
	}
	c.sim.Grid.AdjustResource(r, c2, res, delta)
}

func (c *pluginCommands) Announce(format string, args ...any) {
	c.sim.Chronicle.Append(c.tick, "plugin", "["+c.name+"] "+format, args...)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
