// Package storage provides SQLite-based persistence for save games,
// replays and run results. Uses the pure-Go modernc.org/sqlite driver to
// avoid CGO dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/dunesim/internal/stream"
)

// ErrNotFound is returned when a named save or replay does not exist.
var ErrNotFound = errors.New("storage: not found")

// Store manages the SQLite database connection.
type Store struct {
	db *sql.DB
}

// SaveInfo describes a stored save game.
type SaveInfo struct {
	ID        int64
	Name      string
	Scenario  string
	Tick      uint32
	Seed      uint32
	Hash      string
	Size      int // compressed size in bytes
	CreatedAt time.Time
}

// ReplayInfo describes a stored replay.
type ReplayInfo struct {
	ID        int64
	Name      string
	Scenario  string
	Seed      uint32
	Ticks     int
	FinalHash string
	Commands  int
	Size      int
	CreatedAt time.Time
}

// RunResult is the outcome of a headless run.
type RunResult struct {
	ID        int64
	Scenario  string
	Seed      uint32
	Ticks     int
	Hash      string
	Desync    bool
	Objects   int
	Kills     int
	Harvested int
	Duration  time.Duration
	CreatedAt time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS saves (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			scenario TEXT NOT NULL,
			tick INTEGER NOT NULL,
			seed INTEGER NOT NULL,
			hash TEXT NOT NULL,
			data BLOB NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_saves_scenario ON saves(scenario);

		CREATE TABLE IF NOT EXISTS replays (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			scenario TEXT NOT NULL,
			seed INTEGER NOT NULL,
			ticks INTEGER NOT NULL,
			final_hash TEXT NOT NULL,
			commands INTEGER NOT NULL DEFAULT 0,
			data BLOB NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_replays_scenario ON replays(scenario);

		CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			scenario TEXT NOT NULL,
			seed INTEGER NOT NULL,
			ticks INTEGER NOT NULL,
			hash TEXT NOT NULL,
			desync INTEGER NOT NULL DEFAULT 0,
			objects INTEGER NOT NULL DEFAULT 0,
			kills INTEGER NOT NULL DEFAULT 0,
			harvested INTEGER NOT NULL DEFAULT 0,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_runs_scenario ON runs(scenario, created_at DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// parseTime converts a DATETIME column, which the driver hands back either
// as time.Time or as text.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

// SaveGame stores the serialized world state under info.Name, replacing an
// existing save of the same name. The state is compressed before storing.
func (s *Store) SaveGame(info SaveInfo, state []byte) (int64, error) {
	data, err := stream.Compress(state)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot compress save: %w", err)
	}

	res, err := s.db.Exec(
		`INSERT INTO saves (name, scenario, tick, seed, hash, data)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET
		   scenario = excluded.scenario, tick = excluded.tick, seed = excluded.seed,
		   hash = excluded.hash, data = excluded.data, created_at = CURRENT_TIMESTAMP`,
		info.Name, info.Scenario, info.Tick, info.Seed, info.Hash, data,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save game: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

// LoadGame returns the metadata and decompressed state of a save.
func (s *Store) LoadGame(name string) (SaveInfo, []byte, error) {
	var info SaveInfo
	var data []byte
	var createdAt any

	err := s.db.QueryRow(
		`SELECT id, name, scenario, tick, seed, hash, data, created_at
		 FROM saves WHERE name = ?`,
		name,
	).Scan(&info.ID, &info.Name, &info.Scenario, &info.Tick, &info.Seed, &info.Hash, &data, &createdAt)

	if errors.Is(err, sql.ErrNoRows) {
		return SaveInfo{}, nil, fmt.Errorf("%w: save %q", ErrNotFound, name)
	}
	if err != nil {
		return SaveInfo{}, nil, fmt.Errorf("storage: cannot query save: %w", err)
	}
	info.Size = len(data)
	info.CreatedAt = parseTime(createdAt)

	state, err := stream.Decompress(data)
	if err != nil {
		return SaveInfo{}, nil, fmt.Errorf("storage: save %q: %w", name, err)
	}
	return info, state, nil
}

// ListSaves returns every save, newest first.
func (s *Store) ListSaves() ([]SaveInfo, error) {
	rows, err := s.db.Query(
		`SELECT id, name, scenario, tick, seed, hash, length(data), created_at
		 FROM saves
		 ORDER BY created_at DESC, id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query saves: %w", err)
	}
	defer rows.Close()

	var saves []SaveInfo
	for rows.Next() {
		var info SaveInfo
		var createdAt any
		if err := rows.Scan(&info.ID, &info.Name, &info.Scenario, &info.Tick, &info.Seed, &info.Hash, &info.Size, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		info.CreatedAt = parseTime(createdAt)
		saves = append(saves, info)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return saves, nil
}

// DeleteSave removes a save by name.
func (s *Store) DeleteSave(name string) error {
	res, err := s.db.Exec("DELETE FROM saves WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("storage: cannot delete save: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: save %q", ErrNotFound, name)
	}
	return nil
}

// SaveReplay stores an encoded replay under info.Name, replacing an
// existing replay of the same name.
func (s *Store) SaveReplay(info ReplayInfo, data []byte) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO replays (name, scenario, seed, ticks, final_hash, commands, data)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET
		   scenario = excluded.scenario, seed = excluded.seed, ticks = excluded.ticks,
		   final_hash = excluded.final_hash, commands = excluded.commands,
		   data = excluded.data, created_at = CURRENT_TIMESTAMP`,
		info.Name, info.Scenario, info.Seed, info.Ticks, info.FinalHash, info.Commands, data,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save replay: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

// LoadReplay returns the metadata and encoded data of a replay.
func (s *Store) LoadReplay(name string) (ReplayInfo, []byte, error) {
	var info ReplayInfo
	var data []byte
	var createdAt any

	err := s.db.QueryRow(
		`SELECT id, name, scenario, seed, ticks, final_hash, commands, data, created_at
		 FROM replays WHERE name = ?`,
		name,
	).Scan(&info.ID, &info.Name, &info.Scenario, &info.Seed, &info.Ticks, &info.FinalHash, &info.Commands, &data, &createdAt)

	if errors.Is(err, sql.ErrNoRows) {
		return ReplayInfo{}, nil, fmt.Errorf("%w: replay %q", ErrNotFound, name)
	}
	if err != nil {
		return ReplayInfo{}, nil, fmt.Errorf("storage: cannot query replay: %w", err)
	}
	info.Size = len(data)
	info.CreatedAt = parseTime(createdAt)
	return info, data, nil
}

// ListReplays returns the replays of a scenario, or of every scenario when
// scenario is empty, newest first.
func (s *Store) ListReplays(scenario string) ([]ReplayInfo, error) {
	query := `SELECT id, name, scenario, seed, ticks, final_hash, commands, length(data), created_at
		 FROM replays`
	var args []any
	if scenario != "" {
		query += " WHERE scenario = ?"
		args = append(args, scenario)
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query replays: %w", err)
	}
	defer rows.Close()

	var replays []ReplayInfo
	for rows.Next() {
		var info ReplayInfo
		var createdAt any
		if err := rows.Scan(&info.ID, &info.Name, &info.Scenario, &info.Seed, &info.Ticks,
			&info.FinalHash, &info.Commands, &info.Size, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		info.CreatedAt = parseTime(createdAt)
		replays = append(replays, info)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return replays, nil
}

// DeleteReplay removes a replay by name.
func (s *Store) DeleteReplay(name string) error {
	res, err := s.db.Exec("DELETE FROM replays WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("storage: cannot delete replay: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: replay %q", ErrNotFound, name)
	}
	return nil
}

// SaveRun records the outcome of a headless run.
// Returns the ID of the inserted record.
func (s *Store) SaveRun(r RunResult) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO runs (scenario, seed, ticks, hash, desync, objects, kills, harvested, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Scenario, r.Seed, r.Ticks, r.Hash, r.Desync, r.Objects, r.Kills, r.Harvested,
		r.Duration.Milliseconds(),
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save run: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

// RecentRuns retrieves the most recent runs of a scenario.
func (s *Store) RecentRuns(scenario string, limit int) ([]RunResult, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(
		`SELECT id, scenario, seed, ticks, hash, desync, objects, kills, harvested, duration_ms, created_at
		 FROM runs
		 WHERE scenario = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		scenario, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunResult
	for rows.Next() {
		var r RunResult
		var durationMS int64
		var createdAt any
		if err := rows.Scan(&r.ID, &r.Scenario, &r.Seed, &r.Ticks, &r.Hash, &r.Desync,
			&r.Objects, &r.Kills, &r.Harvested, &durationMS, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		r.Duration = time.Duration(durationMS) * time.Millisecond
		r.CreatedAt = parseTime(createdAt)
		runs = append(runs, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return runs, nil
}

// DistinctSeeds reports how many different seeds of a scenario produced
// each final hash. More than one hash per seed means a determinism bug.
func (s *Store) DistinctSeeds(scenario string) (map[uint32][]string, error) {
	rows, err := s.db.Query(
		`SELECT DISTINCT seed, hash FROM runs WHERE scenario = ? ORDER BY seed, hash`,
		scenario,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query runs: %w", err)
	}
	defer rows.Close()

	hashes := make(map[uint32][]string)
	for rows.Next() {
		var seed uint32
		var hash string
		if err := rows.Scan(&seed, &hash); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		hashes[seed] = append(hashes[seed], hash)
	}
	return hashes, rows.Err()
}
