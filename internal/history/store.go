// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history keeps an optional SQLite ledger of conversion runs and
// the files each run produced. Conversion never depends on it; it exists
// so users can answer "when was this PNG last regenerated, and from what".
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/ppmconv/pkg/types"
)

const dbFile = "history.db"

// Store manages the history database.
type Store struct {
	db         *sql.DB
	dir        string
	maxResults int
}

// RunInfo describes a run when it starts.
type RunInfo struct {
	Root         string
	Pattern      string
	TargetFormat string
	Backend      string
}

// Run is a stored run row.
type Run struct {
	ID           string    `json:"id" yaml:"id"`
	StartedAt    time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt   time.Time `json:"finished_at,omitempty" yaml:"finished_at,omitempty"`
	Root         string    `json:"root" yaml:"root"`
	Pattern      string    `json:"pattern" yaml:"pattern"`
	TargetFormat string    `json:"target_format" yaml:"target_format"`
	Backend      string    `json:"backend" yaml:"backend"`
	Converted    int       `json:"converted" yaml:"converted"`
	Error        string    `json:"error,omitempty" yaml:"error,omitempty"`
}

// Open opens or creates dir/history.db and its schema.
func Open(cfg types.HistoryConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	dbPath := filepath.Join(cfg.Dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 50
	}

	s := &Store{db: db, dir: cfg.Dir, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return filepath.Join(s.dir, dbFile)
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			finished_at TEXT,
			root TEXT,
			pattern TEXT,
			target_format TEXT,
			backend TEXT,
			converted INTEGER NOT NULL DEFAULT 0,
			error TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS conversions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT REFERENCES runs(id),
			source TEXT NOT NULL,
			output TEXT NOT NULL,
			width INTEGER,
			height INTEGER,
			source_format TEXT,
			target_format TEXT,
			replaced INTEGER NOT NULL DEFAULT 0,
			output_bytes INTEGER,
			duration_ns INTEGER,
			converted_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_conversions_source ON conversions(source)`,
		`CREATE INDEX IF NOT EXISTS idx_conversions_run_id ON conversions(run_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// BeginRun inserts a run row and returns its ID.
func (s *Store) BeginRun(ctx context.Context, info RunInfo) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, root, pattern, target_format, backend)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, formatTime(time.Now()), info.Root, info.Pattern, info.TargetFormat, info.Backend,
	)
	if err != nil {
		return "", fmt.Errorf("inserting run: %w", err)
	}
	return id, nil
}

// FinishRun stamps the run with its end time, count, and error (if any).
func (s *Store) FinishRun(ctx context.Context, id string, converted int, runErr error) error {
	var errText sql.NullString
	if runErr != nil {
		errText = sql.NullString{String: runErr.Error(), Valid: true}
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, converted = ?, error = ? WHERE id = ?`,
		formatTime(time.Now()), converted, errText, id,
	)
	if err != nil {
		return fmt.Errorf("finishing run %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("finishing run %s: no such run", id)
	}
	return nil
}

// Record stores one conversion. An empty RunID is stored as NULL.
func (s *Store) Record(ctx context.Context, c types.Conversion) error {
	var runID sql.NullString
	if c.RunID != "" {
		runID = sql.NullString{String: c.RunID, Valid: true}
	}
	convertedAt := c.ConvertedAt
	if convertedAt.IsZero() {
		convertedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO conversions (run_id, source, output, width, height, source_format,
			target_format, replaced, output_bytes, duration_ns, converted_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, c.Source, c.Output, c.Width, c.Height, c.SourceFormat,
		c.TargetFormat, c.Replaced, c.OutputBytes, int64(c.Duration), formatTime(convertedAt),
	)
	if err != nil {
		return fmt.Errorf("recording %s: %w", c.Source, err)
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}
