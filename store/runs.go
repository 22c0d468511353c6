package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Run is one archived analysis run.
type Run struct {
	ID         string    `json:"id"`
	Company    string    `json:"company"`
	Industry   string    `json:"industry"`
	Model      string    `json:"model"`
	Confidence float64   `json:"confidence"`
	Report     string    `json:"report"`
	StateJSON  string    `json:"state_json"`
	CreatedAt  time.Time `json:"created_at"`
}

// RunStore archives completed analysis runs in SQLite.
type RunStore struct {
	db *sql.DB
}

// NewRunStore opens (or creates) the run archive at path.
func NewRunStore(path string) (*RunStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}

	s := &RunStore{db: db}
	if err := s.initSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *RunStore) initSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS analysis_runs (
			id TEXT PRIMARY KEY,
			company TEXT NOT NULL,
			industry TEXT,
			model TEXT,
			confidence REAL,
			report TEXT,
			state TEXT NOT NULL,
			created_at DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_analysis_runs_company ON analysis_runs (company);
	`
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *RunStore) Close() error {
	return s.db.Close()
}

// Save archives a run.
func (s *RunStore) Save(ctx context.Context, run *Run) error {
	query := `
		INSERT INTO analysis_runs (id, company, industry, model, confidence, report, state, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		run.ID,
		run.Company,
		run.Industry,
		run.Model,
		run.Confidence,
		run.Report,
		run.StateJSON,
		run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

// Get retrieves a run by ID.
func (s *RunStore) Get(ctx context.Context, id string) (*Run, error) {
	query := `
		SELECT id, company, industry, model, confidence, report, state, created_at
		FROM analysis_runs
		WHERE id = ?
	`
	var run Run
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&run.ID,
		&run.Company,
		&run.Industry,
		&run.Model,
		&run.Confidence,
		&run.Report,
		&run.StateJSON,
		&run.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("run not found: %s", id)
		}
		return nil, fmt.Errorf("failed to load run: %w", err)
	}
	return &run, nil
}

// ListRecent returns the most recent runs, newest first.
func (s *RunStore) ListRecent(ctx context.Context, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 10
	}

	query := `
		SELECT id, company, industry, model, confidence, report, state, created_at
		FROM analysis_runs
		ORDER BY created_at DESC
		LIMIT ?
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(
			&run.ID,
			&run.Company,
			&run.Industry,
			&run.Model,
			&run.Confidence,
			&run.Report,
			&run.StateJSON,
			&run.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		runs = append(runs, &run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating run rows: %w", err)
	}

	return runs, nil
}
