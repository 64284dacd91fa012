// Package engine is the concurrent tick engine: it owns the authoritative
// agent collection, drives the serial and parallel tick phases in a fixed
// order, and wires the war machine to its collaborators.
package engine

import (
	"log/slog"
	"math/rand"
	"sync"

	"thalren.vale/internal/agent"
	"thalren.vale/internal/chronicle"
	"thalren.vale/internal/combat"
	"thalren.vale/internal/config"
	"thalren.vale/internal/diplomacy"
	"thalren.vale/internal/faction"
	"thalren.vale/internal/plugin"
	"thalren.vale/internal/technology"
	"thalren.vale/internal/world"
)

// Simulation is the simulation context: all shared mutable state lives here
// and is passed by handle to every phase. Constructed once per run.
type Simulation struct {
	cfg *config.Config
	rng *rand.Rand

	Grid      *world.Grid
	Agents    []*agent.Agent // authoritative living collection
	Partition *agent.Partition
	Factions  *faction.Registry
	Wars      *combat.Machine
	Chronicle *chronicle.Log

	Council    *diplomacy.Council
	Reputation *diplomacy.Reputation

	plugins  []plugin.Plugin
	disabled map[string]bool // plugins that panicked

	Tick uint64

	// Dead is every agent name that has ever died; usedNames additionally
	// covers the living, for child-name deduplication.
	Dead      map[string]bool
	usedNames map[string]bool

	// Collaborator ledgers consulted by the war machine.
	holyWars   map[string]bool
	raids      map[faction.PairKey]bool
	tradeLinks map[faction.PairKey]uint64 // last tick a cross-faction trade happened

	// Fine-grained locks for the parallel phase. resourceMu guards tile
	// resources; tradeMu guards every agent-inventory mutation inside the
	// parallel window, since trades write the partner's slots from another
	// worker's goroutine. The partition carries its own lock; the
	// procreation lock is only taken outside the parallel window; stateMu
	// fences whole ticks against API readers. tradeMu is never taken while
	// resourceMu is held.
	resourceMu  sync.Mutex
	tradeMu     sync.Mutex
	procreateMu sync.Mutex
	stateMu     sync.RWMutex

	workers int
}

// New builds a simulation from the configuration: generated grid, seeded
// food, and the initial population.
func New(cfg *config.Config, log *chronicle.Log) *Simulation {
	rng := rand.New(rand.NewSource(cfg.Seed))
	s := &Simulation{
		cfg:        cfg,
		rng:        rng,
		Grid:       world.NewGrid(cfg.GridSize, cfg.Seed),
		Partition:  agent.NewPartition(),
		Factions:   faction.NewRegistry(),
		Chronicle:  log,
		Council:    diplomacy.NewCouncil(rand.New(rand.NewSource(cfg.Seed + 2))),
		Reputation: diplomacy.NewReputation(),
		disabled:   make(map[string]bool),
		Dead:       make(map[string]bool),
		usedNames:  make(map[string]bool),
		holyWars:   make(map[string]bool),
		raids:      make(map[faction.PairKey]bool),
		tradeLinks: make(map[faction.PairKey]uint64),
		workers:    cfg.Workers,
	}

	s.Wars = combat.NewMachine(s.Factions.Tension, s, log, combat.Advisors{
		CouncilVote:      s.Council.Vote,
		CombatBonus:      technology.CombatBonus,
		DefenseBonus:     s.defenseBonus,
		HolyWarMember:    func(name string) bool { return s.holyWars[name] },
		RaidedBy:         func(victim, raider string) bool { return s.raids[faction.Pair(victim, raider)] },
		TradeRoute:       s.tradeRoute,
		AdjustReputation: s.Reputation.Adjust,
	}, rand.New(rand.NewSource(cfg.Seed+3)))

	s.Grid.SeedFood(rng)
	s.seedInitialAgents()
	return s
}

// AddPlugin registers an external event script.
func (s *Simulation) AddPlugin(p plugin.Plugin) {
	s.plugins = append(s.plugins, p)
}

// defenseBonus rewards a faction defending ground its settlement covers.
func (s *Simulation) defenseBonus(f *faction.Faction) float64 {
	if f.Settlement == "" {
		return 1.0
	}
	for _, set := range s.Grid.Settlements {
		if set.Name == f.Settlement && set.Active {
			return 1.10
		}
	}
	return 1.0
}

// tradeRoute reports a recent cross-faction trade between the two factions.
func (s *Simulation) tradeRoute(a, b string) bool {
	last, ok := s.tradeLinks[faction.Pair(a, b)]
	return ok && last+tradeRouteHorizon >= s.Tick
}

// SetHolyWar marks or clears a faction's holy-war status; called by the
// religion collaborator.
func (s *Simulation) SetHolyWar(name string, holy bool) {
	if holy {
		s.holyWars[name] = true
	} else {
		delete(s.holyWars, name)
	}
}

// RecordRaid records that raider raided victim; consulted by alliance
// recruitment. Called by the economy collaborator.
func (s *Simulation) RecordRaid(victim, raider string) {
	s.raids[faction.Pair(victim, raider)] = true
}

// register admits an agent into the authoritative collection and the
// partition. Callers have already placed it on a valid tile.
func (s *Simulation) register(a *agent.Agent) {
	s.Agents = append(s.Agents, a)
	s.Partition.Add(a)
	s.usedNames[a.Name] = true
}

// Kill removes an agent everywhere it is indexed: collection first, then
// partition, then its faction. Implements the war machine's roster.
func (s *Simulation) Kill(a *agent.Agent, tick uint64, cause string) {
	for i, living := range s.Agents {
		if living == a {
			s.Agents = append(s.Agents[:i], s.Agents[i+1:]...)
			break
		}
	}
	s.Partition.Remove(a)
	if a.Faction != "" {
		if f := s.Factions.ByName(a.Faction); f != nil {
			f.RemoveMember(a)
		}
	}
	s.Dead[a.Name] = true
	s.Chronicle.Append(tick, "death", "%s died: %s", a.Name, cause)
	slog.Debug("agent died", "agent", a.Name, "cause", cause, "tick", tick)
}

// Population returns the living agent count.
func (s *Simulation) Population() int { return len(s.Agents) }

// seedInitialAgents scatters the starting population over habitable tiles.
// Agents born on the coast may know boats; mountain-born may know the peaks.
func (s *Simulation) seedInitialAgents() {
	habitable := s.Grid.Habitable()
	if len(habitable) == 0 {
		return
	}
	for i := 0; i < s.cfg.InitialAgents; i++ {
		name := agent.NextName(s.usedNames)
		if name == "" {
			break
		}
		at := habitable[s.rng.Intn(len(habitable))]
		a := agent.New(name, at.Row, at.Col, 0)
		switch s.Grid.Tile(at.Row, at.Col).Biome {
		case world.BiomeCoast:
			if s.rng.Float64() < 0.3 {
				a.AddCapability(agent.CapSeaTravel)
			}
		case world.BiomeMountains:
			if s.rng.Float64() < 0.3 {
				a.AddCapability(agent.CapMountaineer)
			}
		}
		s.register(a)
	}
	slog.Info("world seeded", "agents", len(s.Agents), "grid", s.Grid.Size())
}
