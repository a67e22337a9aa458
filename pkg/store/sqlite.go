package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Store keeps run history and emitted recommendations in SQLite.
type Store struct {
	db *sql.DB
}

// NewStore initializes the SQLite database connection.
// It enables WAL mode for concurrency and durability.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping sqlite db: %w", err)
	}

	// Enable WAL mode (Write-Ahead Logging)
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON;"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &Store{db: db}

	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("schema migration failed: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the necessary tables if they don't exist.
func (s *Store) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		started_at DATETIME NOT NULL,
		finished_at DATETIME,
		input_path TEXT NOT NULL,
		output_path TEXT NOT NULL,
		threshold INTEGER NOT NULL,
		workers INTEGER NOT NULL,
		vertices INTEGER NOT NULL DEFAULT 0,
		edges INTEGER NOT NULL DEFAULT 0,
		recommendations INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL,
		error TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);

	CREATE TABLE IF NOT EXISTS recommendations (
		run_id TEXT NOT NULL REFERENCES runs(run_id),
		source_id TEXT NOT NULL,
		candidate_id TEXT NOT NULL
	);

	-- Common access pattern: all candidates for one user in one run
	CREATE INDEX IF NOT EXISTS idx_recommendations_run_source ON recommendations(run_id, source_id);
	`

	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	return nil
}

// BeginRun records a pipeline run in the running state.
func (s *Store) BeginRun(ctx context.Context, run Run) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (run_id, started_at, input_path, output_path, threshold, workers, status)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, run.StartedAt.UTC(), run.InputPath, run.OutputPath, run.Threshold, run.Workers, RunStatusRunning,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

// CompleteRun marks a run as succeeded and stores its counters.
func (s *Store) CompleteRun(ctx context.Context, runID string, vertices, edges, recommendations int) error {
	return s.finishRun(ctx, runID, RunStatusSucceeded, "", vertices, edges, recommendations)
}

// FailRun marks a run as failed with its error message.
func (s *Store) FailRun(ctx context.Context, runID string, runErr error) error {
	msg := ""
	if runErr != nil {
		msg = runErr.Error()
	}
	return s.finishRun(ctx, runID, RunStatusFailed, msg, 0, 0, 0)
}

func (s *Store) finishRun(ctx context.Context, runID string, status RunStatus, errMsg string, vertices, edges, recommendations int) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE runs
		SET finished_at = ?, status = ?, error = ?, vertices = ?, edges = ?, recommendations = ?
		WHERE run_id = ?`,
		time.Now().UTC(), status, errMsg, vertices, edges, recommendations, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("run not found: %s", runID)
	}
	return nil
}

// SaveRecommendations persists a run's records in one transaction.
func (s *Store) SaveRecommendations(ctx context.Context, runID string, recs []StoredRecommendation) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO recommendations (run_id, source_id, candidate_id) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range recs {
		if _, err := stmt.ExecContext(ctx, runID, r.SourceID, r.CandidateID); err != nil {
			return fmt.Errorf("failed to insert recommendation: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit recommendations: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, started_at, finished_at, input_path, output_path, threshold, workers,
		       vertices, edges, recommendations, status, error
		FROM runs
		ORDER BY started_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var finished sql.NullTime
		if err := rows.Scan(&r.RunID, &r.StartedAt, &finished, &r.InputPath, &r.OutputPath,
			&r.Threshold, &r.Workers, &r.Vertices, &r.Edges, &r.Recommendations, &r.Status, &r.Error); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if finished.Valid {
			t := finished.Time
			r.FinishedAt = &t
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// RecommendationsForSource returns one run's candidates for a source vertex.
func (s *Store) RecommendationsForSource(ctx context.Context, runID, sourceID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT candidate_id FROM recommendations
		WHERE run_id = ? AND source_id = ?`, runID, sourceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query recommendations: %w", err)
	}
	defer rows.Close()

	var candidates []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("failed to scan recommendation: %w", err)
		}
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}
