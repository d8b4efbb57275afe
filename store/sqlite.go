package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/pthm-cable/affinity/game"
	"github.com/pthm-cable/affinity/traits"
)

// Compile-time check that SQLite implements Store.
var _ Store = (*SQLite)(nil)

var schema = []string{`
CREATE TABLE IF NOT EXISTS simulations(
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	seed INTEGER NOT NULL,
	config TEXT,
	created_at INTEGER NOT NULL
)`, `
CREATE TABLE IF NOT EXISTS steps(
	simulation_id INTEGER NOT NULL REFERENCES simulations(id),
	step INTEGER NOT NULL,
	organisms INTEGER NOT NULL,
	nutrients INTEGER NOT NULL,
	max_entity_id INTEGER NOT NULL DEFAULT 0,
	data BLOB NOT NULL,
	saved_at INTEGER NOT NULL,
	PRIMARY KEY(simulation_id, step)
)`,
}

// SQLite is a Store backed by a SQLite database file.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens or creates the database at path and ensures the schema.
// Use ":memory:" for a throwaway database.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	// ":memory:" is per connection, and writers must not contend for the file.
	db.SetMaxOpenConns(1)

	if path != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enabling WAL: %w", err)
		}
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating schema: %w", err)
		}
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) CreateSimulation(ctx context.Context, sim Simulation) (int64, error) {
	if sim.CreatedAt.IsZero() {
		sim.CreatedAt = time.Now()
	}
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO simulations(name, seed, config, created_at) VALUES(?, ?, ?, ?)",
		sim.Name, sim.Seed, string(sim.Config), sim.CreatedAt.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("creating simulation: %w", err)
	}
	return res.LastInsertId()
}

func (s *SQLite) SaveStep(ctx context.Context, simID int64, step game.SimulationStep) error {
	data, err := Marshal(step)
	if err != nil {
		return fmt.Errorf("encoding step %d: %w", step.Number, err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO steps(simulation_id, step, organisms, nutrients, max_entity_id, data, saved_at)
		SELECT ?, ?, ?, ?, ?, ?, ? WHERE EXISTS (SELECT 1 FROM simulations WHERE id = ?)
		ON CONFLICT(simulation_id, step) DO UPDATE SET
			organisms = excluded.organisms,
			nutrients = excluded.nutrients,
			max_entity_id = excluded.max_entity_id,
			data = excluded.data,
			saved_at = excluded.saved_at`,
		simID, step.Number,
		step.Count(traits.Organism), step.Count(traits.Nutrient), int64(step.MaxID()),
		data, time.Now().UnixMilli(), simID)
	if err != nil {
		return fmt.Errorf("saving step %d: %w", step.Number, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("simulation %d: %w", simID, ErrNotFound)
	}
	return nil
}

func (s *SQLite) LoadStep(ctx context.Context, simID, number int64) (game.SimulationStep, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT data FROM steps WHERE simulation_id = ? AND step = ?", simID, number).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return game.SimulationStep{}, fmt.Errorf("step %d of simulation %d: %w", number, simID, ErrNotFound)
	}
	if err != nil {
		return game.SimulationStep{}, fmt.Errorf("loading step %d: %w", number, err)
	}
	return Unmarshal(data)
}

func (s *SQLite) LoadRange(ctx context.Context, simID, from, to int64) ([]game.SimulationStep, error) {
	if err := s.checkSimulation(ctx, simID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT data FROM steps WHERE simulation_id = ? AND step BETWEEN ? AND ? ORDER BY step",
		simID, from, to)
	if err != nil {
		return nil, fmt.Errorf("loading steps %d-%d: %w", from, to, err)
	}
	defer rows.Close()

	var out []game.SimulationStep
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		step, err := Unmarshal(data)
		if err != nil {
			return nil, err
		}
		out = append(out, step)
	}
	return out, rows.Err()
}

func (s *SQLite) LatestStep(ctx context.Context, simID int64) (game.SimulationStep, error) {
	if err := s.checkSimulation(ctx, simID); err != nil {
		return game.SimulationStep{}, err
	}

	var data []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT data FROM steps WHERE simulation_id = ? ORDER BY step DESC LIMIT 1", simID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return game.SimulationStep{}, fmt.Errorf("steps of simulation %d: %w", simID, ErrNotFound)
	}
	if err != nil {
		return game.SimulationStep{}, fmt.Errorf("loading latest step: %w", err)
	}
	return Unmarshal(data)
}

func (s *SQLite) MaxEntityID(ctx context.Context, simID int64) (uint64, error) {
	if err := s.checkSimulation(ctx, simID); err != nil {
		return 0, err
	}

	var id int64
	err := s.db.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(max_entity_id), 0) FROM steps WHERE simulation_id = ?", simID).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("loading max entity id: %w", err)
	}
	return uint64(id), nil
}

func (s *SQLite) ListSimulations(ctx context.Context) ([]Simulation, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, seed, config, created_at FROM simulations ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("listing simulations: %w", err)
	}
	defer rows.Close()

	var out []Simulation
	for rows.Next() {
		var (
			sim     Simulation
			config  sql.NullString
			created int64
		)
		if err := rows.Scan(&sim.ID, &sim.Name, &sim.Seed, &config, &created); err != nil {
			return nil, err
		}
		sim.Config = []byte(config.String)
		sim.CreatedAt = time.UnixMilli(created)
		out = append(out, sim)
	}
	return out, rows.Err()
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) checkSimulation(ctx context.Context, simID int64) error {
	var one int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM simulations WHERE id = ?", simID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("simulation %d: %w", simID, ErrNotFound)
	}
	return err
}
