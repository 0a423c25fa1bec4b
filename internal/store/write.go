package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/SenderoElectoral/covid-19-simulator/internal/engine"
)

// InsertRun inserts a run record.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - a run that was
// already registered (e.g. a retried launch) is silently ignored.
func (s *Store) InsertRun(ctx context.Context, run Run) error {
	createdAt := run.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs
		(id, dataset_dir, seed, mode, speed, start_date, end_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		run.ID,
		run.DatasetDir,
		run.Seed,
		run.Mode,
		run.Speed,
		run.StartDate.Format(dateLayout),
		run.EndDate.Format(dateLayout),
		createdAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	return nil
}

// InsertSnapshot persists one simulated day of a run.
// Uses ON CONFLICT(run_id, day) DO NOTHING for idempotency - a day can
// only be written once per run, replays of the same notification are
// silently ignored.
//
// Note: the run referenced by runID must exist (foreign key constraint).
func (s *Store) InsertSnapshot(ctx context.Context, runID string, snap *engine.Snapshot) error {
	countriesJSON, err := json.Marshal(snap.Countries)
	if err != nil {
		return fmt.Errorf("insert snapshot: marshal countries: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO snapshots
		(run_id, day, date, variant, total_cases, total_deaths, total_recovered,
		 active_cases, daily_cases, daily_deaths, countries)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, day) DO NOTHING
	`,
		runID,
		snap.Day,
		snap.Date.Format(dateLayout),
		snap.Variant,
		snap.GlobalStats.TotalCases,
		snap.GlobalStats.TotalDeaths,
		snap.GlobalStats.TotalRecovered,
		snap.GlobalStats.ActiveCases,
		snap.GlobalStats.DailyCases,
		snap.GlobalStats.DailyDeaths,
		string(countriesJSON),
	)
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}

	return nil
}
