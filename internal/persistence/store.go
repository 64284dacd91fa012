// Package persistence archives runs to SQLite: the chronicle as it is
// pruned, war summaries, and the final population. One row in runs ties a
// whole archive together.
package persistence

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"thalren.vale/internal/chronicle"
	"thalren.vale/internal/engine"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	seed INTEGER NOT NULL,
	started_at TEXT NOT NULL,
	finished_at TEXT,
	final_tick INTEGER,
	final_population INTEGER
);
CREATE TABLE IF NOT EXISTS events (
	run_id TEXT NOT NULL REFERENCES runs(id),
	tick INTEGER NOT NULL,
	category TEXT NOT NULL,
	description TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_events_run_tick ON events(run_id, tick);
CREATE TABLE IF NOT EXISTS wars (
	run_id TEXT NOT NULL REFERENCES runs(id),
	attacker TEXT NOT NULL,
	defender TEXT NOT NULL,
	cause TEXT NOT NULL,
	declared_tick INTEGER NOT NULL,
	duration_ticks INTEGER NOT NULL,
	outcome TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS agents_final (
	run_id TEXT NOT NULL REFERENCES runs(id),
	name TEXT NOT NULL,
	row INTEGER NOT NULL,
	col INTEGER NOT NULL,
	health INTEGER NOT NULL,
	faction TEXT,
	born_tick INTEGER NOT NULL,
	trade_count INTEGER NOT NULL
);
`

// Store is one run's archive handle.
type Store struct {
	db    *sqlx.DB
	runID string
}

// Open connects to (or creates) the archive database and starts a run row.
func Open(path string, seed int64) (*Store, error) {
	db, err := sqlx.Connect("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	s := &Store{db: db, runID: uuid.NewString()}
	_, err = db.Exec(`INSERT INTO runs (id, seed, started_at) VALUES (?, ?, ?)`,
		s.runID, seed, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("insert run: %w", err)
	}
	slog.Info("archive opened", "path", path, "run", s.runID)
	return s, nil
}

// RunID returns the archive identifier for this run.
func (s *Store) RunID() string { return s.runID }

// SaveEvents archives a batch of chronicle entries. Wired as the chronicle's
// flush callback; errors are logged, not fatal, so a full disk cannot stop
// the simulation.
func (s *Store) SaveEvents(entries []chronicle.Entry) {
	tx, err := s.db.Beginx()
	if err != nil {
		slog.Error("archive events begin", "err", err)
		return
	}
	for _, e := range entries {
		if _, err := tx.Exec(`INSERT INTO events (run_id, tick, category, description) VALUES (?, ?, ?, ?)`,
			s.runID, e.Tick, e.Category, e.Description); err != nil {
			slog.Error("archive event", "err", err)
			tx.Rollback()
			return
		}
	}
	if err := tx.Commit(); err != nil {
		slog.Error("archive events commit", "err", err)
	}
}

// SaveWars archives every war, active and historical, at end of run.
func (s *Store) SaveWars(wars []engine.WarView) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return fmt.Errorf("archive wars: %w", err)
	}
	for _, w := range wars {
		if _, err := tx.Exec(`INSERT INTO wars (run_id, attacker, defender, cause, declared_tick, duration_ticks, outcome)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			s.runID, w.Attacker, w.Defender, w.Cause, w.DeclaredTick, w.Ticks, w.Outcome); err != nil {
			tx.Rollback()
			return fmt.Errorf("archive war %s vs %s: %w", w.Attacker, w.Defender, err)
		}
	}
	return tx.Commit()
}

// SaveFinalAgents archives the surviving population at end of run.
func (s *Store) SaveFinalAgents(agents []engine.AgentView) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return fmt.Errorf("archive agents: %w", err)
	}
	for _, a := range agents {
		if _, err := tx.Exec(`INSERT INTO agents_final (run_id, name, row, col, health, faction, born_tick, trade_count)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			s.runID, a.Name, a.Row, a.Col, a.Health, a.Faction, a.BornTick, a.TradeCount); err != nil {
			tx.Rollback()
			return fmt.Errorf("archive agent %s: %w", a.Name, err)
		}
	}
	return tx.Commit()
}

// FinishRun stamps the run row with its final state.
func (s *Store) FinishRun(finalTick uint64, finalPopulation int) error {
	_, err := s.db.Exec(`UPDATE runs SET finished_at = ?, final_tick = ?, final_population = ? WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339), finalTick, finalPopulation, s.runID)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }
