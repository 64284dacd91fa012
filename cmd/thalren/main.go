// Command thalren runs the Thalren Vale simulation: a population of agents
// surviving, trading, and warring on a generated grid, archived to SQLite
// and observable over a read-only HTTP API.
package main

import (
	"context"
	"flag"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"

	"thalren.vale/internal/api"
	"thalren.vale/internal/chronicle"
	"thalren.vale/internal/config"
	"thalren.vale/internal/engine"
	"thalren.vale/internal/persistence"
	"thalren.vale/internal/plugin"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config (defaults apply when empty)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	store, err := persistence.Open(cfg.DBPath, cfg.Seed)
	if err != nil {
		slog.Error("open archive", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	log := chronicle.New(store.SaveEvents)
	sim := engine.New(cfg, log)

	pluginRng := rand.New(rand.NewSource(cfg.Seed + 7))
	sim.AddPlugin(plugin.NewDrought(pluginRng))
	sim.AddPlugin(plugin.NewRefugees(pluginRng))

	srv := &api.Server{Sim: sim, Addr: cfg.APIAddr}
	srv.Start()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.Info("simulation starting",
		"ticks", cfg.Ticks, "seed", cfg.Seed,
		"workers", cfg.Workers, "agents", humanize.Comma(int64(cfg.InitialAgents)))

	runErr := sim.Run(ctx)

	status := sim.StatusSnapshot()
	if err := store.SaveWars(sim.WarSnapshots()); err != nil {
		slog.Error("archive wars", "error", err)
	}
	if err := store.SaveFinalAgents(sim.AgentSnapshots()); err != nil {
		slog.Error("archive agents", "error", err)
	}
	if err := store.FinishRun(status.Tick, status.Population); err != nil {
		slog.Error("finish run", "error", err)
	}

	slog.Info("simulation finished",
		"tick", status.Tick,
		"population", humanize.Comma(int64(status.Population)),
		"factions", status.Factions,
		"wars_fought", status.PastWars,
		"run", store.RunID())

	for _, f := range sim.Factions.Factions {
		if len(f.Legends) > 0 {
			slog.Info("legends remembered", "faction", f.Name, "fallen", len(f.Legends))
		}
	}

	if runErr != nil {
		slog.Error("run aborted", "error", runErr)
		os.Exit(1)
	}
}

func logLevel(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
