// Package store persists run snapshots (best-known variable values and
// search statistics) to SQLite, keyed by run id, following
// ehrlich-b-wingthing's own SQLite persistence: a
// migration-driven schema over database/sql plus modernc.org/sqlite
// (SPEC_FULL.md §4.L). Nothing in spec.md requires persistence — this
// is additive, and Noop is the default sink when no database is
// configured.
package store

import (
	"database/sql"
	"embed"
	"fmt"
	"sort"
	"strings"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Sink is the narrow persistence surface cmd/slsctl and engine-owning
// callers write to; it never imports internal/engine to avoid a
// dependency cycle, so callers flatten RunStats into plain fields.
type Sink interface {
	SaveRun(runID, backend string, seed uint64) error
	SaveBestValues(runID string, values map[int]string) error
	SaveStats(runID string, steps, restarts, flips, movesTried, movesApplied int) error
	LoadBestValues(runID string) (map[int]string, error)
	LoadStats(runID string) (steps, restarts, flips, movesTried, movesApplied int, err error)
	Close() error
}

// Noop discards every write and returns zero values on every read; the
// default sink when slsctl isn't given a database path.
type Noop struct{}

func (Noop) SaveRun(string, string, uint64) error             { return nil }
func (Noop) SaveBestValues(string, map[int]string) error      { return nil }
func (Noop) SaveStats(string, int, int, int, int, int) error  { return nil }
func (Noop) LoadBestValues(string) (map[int]string, error)    { return nil, nil }
func (Noop) Close() error                                     { return nil }

func (Noop) LoadStats(string) (steps, restarts, flips, movesTried, movesApplied int, err error) {
	return 0, 0, 0, 0, 0, nil
}

// SQLiteSink is the real Sink, backed by a local SQLite file.
type SQLiteSink struct {
	db *sql.DB
}

// Open opens (creating if necessary) the SQLite database at dsn and
// runs every pending migration.
func Open(dsn string) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: enable foreign keys: %w", err)
	}
	s := &SQLiteSink{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteSink) Close() error { return s.db.Close() }

func (s *SQLiteSink) DB() *sql.DB { return s.db }

func (s *SQLiteSink) migrate() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version TEXT PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	for _, f := range files {
		var applied int
		err := s.db.QueryRow("SELECT COUNT(*) FROM schema_migrations WHERE version = ?", f).Scan(&applied)
		if err != nil {
			return fmt.Errorf("check migration %s: %w", f, err)
		}
		if applied > 0 {
			continue
		}
		content, err := migrationsFS.ReadFile("migrations/" + f)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", f, err)
		}
		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("begin tx for %s: %w", f, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("exec migration %s: %w", f, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", f); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %s: %w", f, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %s: %w", f, err)
		}
	}
	return nil
}

// SaveRun records a fresh run header, keyed by runID.
func (s *SQLiteSink) SaveRun(runID, backend string, seed uint64) error {
	_, err := s.db.Exec(`INSERT INTO runs (run_id, backend, seed) VALUES (?, ?, ?)
		ON CONFLICT(run_id) DO UPDATE SET backend = excluded.backend, seed = excluded.seed`,
		runID, backend, seed)
	if err != nil {
		return fmt.Errorf("store: save run: %w", err)
	}
	return nil
}

// SaveBestValues overwrites runID's best-value snapshot with values,
// keyed by variable id, each already formatted via Num.String().
func (s *SQLiteSink) SaveBestValues(runID string, values map[int]string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("store: save best values: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM best_values WHERE run_id = ?", runID); err != nil {
		tx.Rollback()
		return fmt.Errorf("store: clear best values: %w", err)
	}
	for varID, text := range values {
		if _, err := tx.Exec(`INSERT INTO best_values (run_id, var_id, value_text) VALUES (?, ?, ?)`,
			runID, varID, text); err != nil {
			tx.Rollback()
			return fmt.Errorf("store: insert best value: %w", err)
		}
	}
	return tx.Commit()
}

// SaveStats upserts runID's latest collect_statistics snapshot.
func (s *SQLiteSink) SaveStats(runID string, steps, restarts, flips, movesTried, movesApplied int) error {
	_, err := s.db.Exec(`INSERT INTO run_stats (run_id, steps, restarts, flips, moves_tried, moves_applied)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id) DO UPDATE SET
			steps = excluded.steps,
			restarts = excluded.restarts,
			flips = excluded.flips,
			moves_tried = excluded.moves_tried,
			moves_applied = excluded.moves_applied,
			updated_at = CURRENT_TIMESTAMP`,
		runID, steps, restarts, flips, movesTried, movesApplied)
	if err != nil {
		return fmt.Errorf("store: save stats: %w", err)
	}
	return nil
}

// LoadBestValues returns runID's persisted best-value snapshot, or an
// empty map if none was ever saved.
func (s *SQLiteSink) LoadBestValues(runID string) (map[int]string, error) {
	rows, err := s.db.Query("SELECT var_id, value_text FROM best_values WHERE run_id = ?", runID)
	if err != nil {
		return nil, fmt.Errorf("store: load best values: %w", err)
	}
	defer rows.Close()
	out := make(map[int]string)
	for rows.Next() {
		var varID int
		var text string
		if err := rows.Scan(&varID, &text); err != nil {
			return nil, fmt.Errorf("store: scan best value: %w", err)
		}
		out[varID] = text
	}
	return out, rows.Err()
}

// LoadStats returns runID's persisted statistics snapshot.
func (s *SQLiteSink) LoadStats(runID string) (steps, restarts, flips, movesTried, movesApplied int, err error) {
	row := s.db.QueryRow(`SELECT steps, restarts, flips, moves_tried, moves_applied
		FROM run_stats WHERE run_id = ?`, runID)
	if err := row.Scan(&steps, &restarts, &flips, &movesTried, &movesApplied); err != nil {
		if err == sql.ErrNoRows {
			return 0, 0, 0, 0, 0, nil
		}
		return 0, 0, 0, 0, 0, fmt.Errorf("store: load stats: %w", err)
	}
	return steps, restarts, flips, movesTried, movesApplied, nil
}
