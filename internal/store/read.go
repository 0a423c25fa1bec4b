package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/SenderoElectoral/covid-19-simulator/internal/engine"
)

// GetRun retrieves a single run by ID.
// Returns sql.ErrNoRows if not found.
func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, dataset_dir, seed, mode, speed, start_date, end_date, created_at
		FROM runs
		WHERE id = ?
	`, id)

	return scanRun(row.Scan)
}

// ListRuns returns all runs, newest first. UUIDv7 ids are time-ordered,
// so the id tiebreak keeps same-timestamp rows stable.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, dataset_dir, seed, mode, speed, start_date, end_date, created_at
		FROM runs
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows.Scan)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	if runs == nil {
		runs = []Run{}
	}

	return runs, nil
}

// Snapshots returns every persisted day of a run, ordered by day.
// Returns an empty slice (not nil) for an unknown run.
func (s *Store) Snapshots(ctx context.Context, runID string) ([]DayRecord, error) {
	return s.snapshotsWhere(ctx, `
		SELECT run_id, day, date, variant, total_cases, total_deaths, total_recovered,
		       active_cases, daily_cases, daily_deaths, countries
		FROM snapshots
		WHERE run_id = ?
		ORDER BY day ASC
	`, runID)
}

// SnapshotRange returns the persisted days of a run in [fromDay, toDay],
// ordered by day.
func (s *Store) SnapshotRange(ctx context.Context, runID string, fromDay, toDay int) ([]DayRecord, error) {
	return s.snapshotsWhere(ctx, `
		SELECT run_id, day, date, variant, total_cases, total_deaths, total_recovered,
		       active_cases, daily_cases, daily_deaths, countries
		FROM snapshots
		WHERE run_id = ? AND day BETWEEN ? AND ?
		ORDER BY day ASC
	`, runID, fromDay, toDay)
}

// LastSnapshot returns the most recent persisted day of a run.
// Returns sql.ErrNoRows if the run has no snapshots.
func (s *Store) LastSnapshot(ctx context.Context, runID string) (DayRecord, error) {
	records, err := s.snapshotsWhere(ctx, `
		SELECT run_id, day, date, variant, total_cases, total_deaths, total_recovered,
		       active_cases, daily_cases, daily_deaths, countries
		FROM snapshots
		WHERE run_id = ?
		ORDER BY day DESC
		LIMIT 1
	`, runID)
	if err != nil {
		return DayRecord{}, err
	}
	if len(records) == 0 {
		return DayRecord{}, sql.ErrNoRows
	}
	return records[0], nil
}

func (s *Store) snapshotsWhere(ctx context.Context, query string, args ...any) ([]DayRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	var records []DayRecord
	for rows.Next() {
		rec, err := scanDayRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}

	if records == nil {
		records = []DayRecord{}
	}

	return records, nil
}

func scanRun(scan func(dest ...any) error) (Run, error) {
	var run Run
	var startDate, endDate, createdAt string

	if err := scan(
		&run.ID, &run.DatasetDir, &run.Seed, &run.Mode, &run.Speed,
		&startDate, &endDate, &createdAt,
	); err != nil {
		return Run{}, err
	}

	var err error
	if run.StartDate, err = time.Parse(dateLayout, startDate); err != nil {
		return Run{}, fmt.Errorf("scan run: parse start_date: %w", err)
	}
	if run.EndDate, err = time.Parse(dateLayout, endDate); err != nil {
		return Run{}, fmt.Errorf("scan run: parse end_date: %w", err)
	}
	if run.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return Run{}, fmt.Errorf("scan run: parse created_at: %w", err)
	}

	return run, nil
}

func scanDayRecord(rows *sql.Rows) (DayRecord, error) {
	var rec DayRecord
	var date, countriesJSON string

	if err := rows.Scan(
		&rec.RunID, &rec.Day, &date, &rec.Variant,
		&rec.Global.TotalCases, &rec.Global.TotalDeaths, &rec.Global.TotalRecovered,
		&rec.Global.ActiveCases, &rec.Global.DailyCases, &rec.Global.DailyDeaths,
		&countriesJSON,
	); err != nil {
		return DayRecord{}, fmt.Errorf("scan snapshot: %w", err)
	}

	var err error
	if rec.Date, err = time.Parse(dateLayout, date); err != nil {
		return DayRecord{}, fmt.Errorf("scan snapshot: parse date: %w", err)
	}

	rec.Countries = make(map[string]*engine.Country)
	if err := json.Unmarshal([]byte(countriesJSON), &rec.Countries); err != nil {
		return DayRecord{}, fmt.Errorf("scan snapshot: unmarshal countries: %w", err)
	}

	return rec, nil
}
