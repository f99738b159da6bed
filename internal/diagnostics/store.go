package diagnostics

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id      TEXT PRIMARY KEY,
	command     TEXT NOT NULL,
	started_at  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS diagnostics (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id      TEXT NOT NULL,
	source      TEXT NOT NULL,
	line        INTEGER NOT NULL,
	reason      TEXT NOT NULL,
	created_at  TEXT NOT NULL,
	FOREIGN KEY (run_id) REFERENCES runs(run_id)
);

CREATE INDEX IF NOT EXISTS idx_diagnostics_run ON diagnostics(run_id);
`
// #endregion schema

// #region store-struct
// Store persists diagnostics per ingestion run in SQLite.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

// RunSummary is a run row plus its diagnostic count.
type RunSummary struct {
	RunID       string
	Command     string
	StartedAt   time.Time
	Diagnostics int
}
// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// Recorders are called from parallel indicator parses; SQLite has one writer.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db, logger: logger}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
// #endregion constructor

// #region begin-run
// BeginRun registers a new run and returns a Recorder bound to it.
func (s *Store) BeginRun(command string) (*Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()
	_, err := s.db.Exec(
		`INSERT INTO runs (run_id, command, started_at) VALUES (?, ?, ?)`,
		id, command, now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	return &Run{ID: id, store: s}, nil
}

// Run is a Recorder that appends to one run's diagnostics.
type Run struct {
	ID    string
	store *Store
}

func (r *Run) Record(d Diagnostic) {
	if err := r.store.insert(r.ID, d); err != nil {
		r.store.logger.Error("record diagnostic", zap.String("run_id", r.ID), zap.Error(err))
	}
}

func (s *Store) insert(runID string, d Diagnostic) error {
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.Exec(
		`INSERT INTO diagnostics (run_id, source, line, reason, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		runID, d.Source, d.Line, d.Reason, d.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert diagnostic: %w", err)
	}
	return nil
}
// #endregion begin-run

// #region list-runs
// ListRuns returns the most recent runs, newest first. limit <= 0 returns all.
func (s *Store) ListRuns(limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.Query(
		`SELECT r.run_id, r.command, r.started_at, COUNT(d.id)
		 FROM runs r LEFT JOIN diagnostics d ON d.run_id = r.run_id
		 GROUP BY r.run_id
		 ORDER BY r.started_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var rs RunSummary
		var startedStr string
		if err := rows.Scan(&rs.RunID, &rs.Command, &startedStr, &rs.Diagnostics); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		rs.StartedAt, _ = time.Parse(time.RFC3339Nano, startedStr)
		out = append(out, rs)
	}
	return out, rows.Err()
}
// #endregion list-runs

// #region list-diagnostics
// ListDiagnostics returns a run's diagnostics in insertion order.
func (s *Store) ListDiagnostics(runID string) ([]Diagnostic, error) {
	rows, err := s.db.Query(
		`SELECT source, line, reason, created_at FROM diagnostics
		 WHERE run_id = ? ORDER BY id ASC`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("list diagnostics: %w", err)
	}
	defer rows.Close()

	var out []Diagnostic
	for rows.Next() {
		var d Diagnostic
		var createdStr string
		if err := rows.Scan(&d.Source, &d.Line, &d.Reason, &createdStr); err != nil {
			return nil, fmt.Errorf("scan diagnostic: %w", err)
		}
		d.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		out = append(out, d)
	}
	return out, rows.Err()
}
// #endregion list-diagnostics
