package runstore

import (
	"database/sql"
	"fmt"
	"time"

	"liv8/ghlm/internal/database"
)

// Repository defines the persistence interface for plan runs.
type Repository interface {
	Save(run *PlanRun) error
	Get(id int64) (*PlanRun, error)
	ListRecent(limit int) ([]PlanRun, error)
	DeleteOlderThan(olderThan time.Duration) (int64, error)
	Close() error
}

// SQLiteRepository implements Repository backed by a local SQLite database.
type SQLiteRepository struct {
	db *sql.DB
}

// Open creates or opens the run repository at the default path.
func Open() (*SQLiteRepository, error) {
	path, err := database.DefaultPath()
	if err != nil {
		return nil, fmt.Errorf("runstore: %w", err)
	}
	return OpenAt(path)
}

// OpenAt creates or opens a SQLite database at the given path.
func OpenAt(path string) (*SQLiteRepository, error) {
	db, err := database.Open(path)
	if err != nil {
		return nil, fmt.Errorf("runstore: %w", err)
	}

	r := &SQLiteRepository{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return r, nil
}

func (r *SQLiteRepository) migrate() error {
	const ddl = `
        CREATE TABLE IF NOT EXISTS plan_runs (
            id              INTEGER PRIMARY KEY AUTOINCREMENT,
            plan_summary    TEXT    NOT NULL DEFAULT '',
            location_id     TEXT    NOT NULL DEFAULT '',
            risk_level      TEXT    NOT NULL DEFAULT '',
            status          TEXT    NOT NULL DEFAULT '',
            steps_total     INTEGER NOT NULL DEFAULT 0,
            steps_succeeded INTEGER NOT NULL DEFAULT 0,
            created_at      TEXT    NOT NULL,
            updated_at      TEXT    NOT NULL
        );
        CREATE INDEX IF NOT EXISTS idx_plan_runs_created ON plan_runs(created_at);
        CREATE INDEX IF NOT EXISTS idx_plan_runs_location ON plan_runs(location_id);
    `
	if _, err := r.db.Exec(ddl); err != nil {
		return fmt.Errorf("runstore: migrate: %w", err)
	}
	return nil
}

// Save inserts a new run, assigning its ID and timestamps.
func (r *SQLiteRepository) Save(run *PlanRun) error {
	now := time.Now().UTC()
	if run.CreatedAt.IsZero() {
		run.CreatedAt = now
	}
	run.UpdatedAt = now

	res, err := r.db.Exec(
		`INSERT INTO plan_runs
            (plan_summary, location_id, risk_level, status, steps_total, steps_succeeded, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.PlanSummary, run.LocationID, run.RiskLevel, run.Status,
		run.StepsTotal, run.StepsSucceeded,
		run.CreatedAt.Format(time.RFC3339Nano), run.UpdatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("runstore: save: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("runstore: save: %w", err)
	}
	run.ID = id
	return nil
}

// Get returns the run with the given ID, or sql.ErrNoRows wrapped when absent.
func (r *SQLiteRepository) Get(id int64) (*PlanRun, error) {
	row := r.db.QueryRow(
		`SELECT id, plan_summary, location_id, risk_level, status,
                steps_total, steps_succeeded, created_at, updated_at
         FROM plan_runs WHERE id = ?`, id)

	run, err := scanRun(row)
	if err != nil {
		return nil, fmt.Errorf("runstore: get %d: %w", id, err)
	}
	return run, nil
}

// ListRecent returns up to limit runs, newest first.
func (r *SQLiteRepository) ListRecent(limit int) ([]PlanRun, error) {
	rows, err := r.db.Query(
		`SELECT id, plan_summary, location_id, risk_level, status,
                steps_total, steps_succeeded, created_at, updated_at
         FROM plan_runs ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("runstore: list: %w", err)
	}
	defer rows.Close()

	var runs []PlanRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("runstore: list: %w", err)
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// DeleteOlderThan removes runs created before now minus olderThan and
// reports how many were removed.
func (r *SQLiteRepository) DeleteOlderThan(olderThan time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-olderThan).Format(time.RFC3339Nano)
	res, err := r.db.Exec(`DELETE FROM plan_runs WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("runstore: delete: %w", err)
	}
	return res.RowsAffected()
}

// Close closes the underlying database.
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*PlanRun, error) {
	var run PlanRun
	var created, updated string
	if err := s.Scan(
		&run.ID, &run.PlanSummary, &run.LocationID, &run.RiskLevel, &run.Status,
		&run.StepsTotal, &run.StepsSucceeded, &created, &updated,
	); err != nil {
		return nil, err
	}
	if t, err := time.Parse(time.RFC3339Nano, created); err == nil {
		run.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339Nano, updated); err == nil {
		run.UpdatedAt = t
	}
	return &run, nil
}
