// Package store handles SQLite persistence of extraction runs.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/plminer/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// ErrNoRuns is returned when the store holds no runs yet.
var ErrNoRuns = errors.New("no runs recorded")

// Store wraps SQLite access for run history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			input_dir TEXT NOT NULL,
			scope TEXT NOT NULL,
			documents INTEGER NOT NULL,
			patterns INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS run_patterns (
			run_id TEXT NOT NULL,
			rank INTEGER NOT NULL,
			pattern TEXT NOT NULL,
			frequency INTEGER NOT NULL,
			length INTEGER NOT NULL,
			PRIMARY KEY (run_id, rank)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ended_at ON runs(ended_at);`,
		`CREATE INDEX IF NOT EXISTS idx_run_patterns_pattern ON run_patterns(pattern);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertRun stores a run and its ranked records in one transaction. A missing run ID is
// generated. The stored ID is returned.
func (s *Store) InsertRun(ctx context.Context, run model.Run, records []model.PatternRecord) (id string, err error) {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, ended_at, input_dir, scope, documents, patterns)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		run.EndedAt.UTC().Format(time.RFC3339Nano),
		run.InputDir,
		run.Scope,
		run.Documents,
		len(records),
	); err != nil {
		return "", err
	}

	if len(records) > 0 {
		var stmt *sql.Stmt
		stmt, err = tx.PrepareContext(ctx,
			`INSERT INTO run_patterns (run_id, rank, pattern, frequency, length)
			 VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return "", err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for i, r := range records {
			if _, err = stmt.ExecContext(ctx, run.ID, i+1, r.Pattern, r.Frequency, r.Length); err != nil {
				return "", err
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return "", err
	}
	return run.ID, nil
}

// ListRuns returns the most recent runs, newest first. A non-positive limit returns all runs.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]model.Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, ended_at, input_dir, scope, documents, patterns
		 FROM runs
		 ORDER BY ended_at DESC, rowid DESC
		 LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var runs []model.Run
	for rows.Next() {
		var run model.Run
		var startedAt, endedAt string
		if err := rows.Scan(&run.ID, &startedAt, &endedAt, &run.InputDir, &run.Scope, &run.Documents, &run.Patterns); err != nil {
			return nil, err
		}
		if run.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
			return nil, err
		}
		if run.EndedAt, err = time.Parse(time.RFC3339Nano, endedAt); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return runs, nil
}

// LatestRunID returns the ID of the most recently finished run, or ErrNoRuns.
func (s *Store) LatestRunID(ctx context.Context) (string, error) {
	runs, err := s.ListRuns(ctx, 1)
	if err != nil {
		return "", err
	}
	if len(runs) == 0 {
		return "", ErrNoRuns
	}
	return runs[0].ID, nil
}

// TopPatterns returns the highest ranked records of a run in rank order.
func (s *Store) TopPatterns(ctx context.Context, runID string, limit int) ([]model.PatternRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT pattern, frequency, length
		 FROM run_patterns
		 WHERE run_id = ?
		 ORDER BY rank ASC
		 LIMIT ?`, runID, limit)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var records []model.PatternRecord
	for rows.Next() {
		var r model.PatternRecord
		if err := rows.Scan(&r.Pattern, &r.Frequency, &r.Length); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// PatternHistory returns the frequency of pattern in each run that emitted it, oldest first.
func (s *Store) PatternHistory(ctx context.Context, pattern string) ([]model.PatternPoint, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT r.id, r.ended_at, p.frequency, p.rank
		 FROM run_patterns p
		 JOIN runs r ON r.id = p.run_id
		 WHERE p.pattern = ?
		 ORDER BY r.ended_at ASC`, pattern)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var points []model.PatternPoint
	for rows.Next() {
		var pt model.PatternPoint
		var endedAt string
		if err := rows.Scan(&pt.RunID, &endedAt, &pt.Frequency, &pt.Rank); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, endedAt)
		if err != nil {
			return nil, fmt.Errorf("run %s: %w", pt.RunID, err)
		}
		pt.EndedAt = parsed
		points = append(points, pt)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return points, nil
}
