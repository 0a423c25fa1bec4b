package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SenderoElectoral/covid-19-simulator/internal/engine"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testRun(id string) Run {
	return Run{
		ID:         id,
		DatasetDir: "data",
		Seed:       42,
		Mode:       "virus",
		Speed:      1,
		StartDate:  time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2022, 12, 31, 0, 0, 0, 0, time.UTC),
		CreatedAt:  time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
}

func testSnapshot(day int) *engine.Snapshot {
	return &engine.Snapshot{
		Date:    time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, day),
		Day:     day,
		Variant: "original",
		GlobalStats: engine.GlobalStats{
			TotalCases:  int64(day) * 10,
			ActiveCases: int64(day) * 3,
			DailyCases:  int64(day),
		},
		Countries: map[string]*engine.Country{
			"CHN": {Code: "CHN", Name: "China", Population: 1_400_000_000, Cases: int64(day) * 10},
		},
	}
}

func TestOpen_AppliesPragmas(t *testing.T) {
	s := openTestStore(t)

	assert.NoError(t, s.verifyPragma("journal_mode", "wal"))
	assert.NoError(t, s.verifyPragma("foreign_keys", "1"))
	assert.NoError(t, s.verifyPragma("busy_timeout", "5000"))
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")

	s1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s1.InsertRun(context.Background(), testRun("run-1")))
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	run, err := s2.GetRun(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, "data", run.DatasetDir)
}

func TestInsertRun_RoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	want := testRun("run-1")
	require.NoError(t, s.InsertRun(ctx, want))

	got, err := s.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestInsertRun_DuplicateIgnored(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first := testRun("run-1")
	require.NoError(t, s.InsertRun(ctx, first))

	second := testRun("run-1")
	second.Seed = 99
	require.NoError(t, s.InsertRun(ctx, second), "duplicate id is silently ignored")

	got, err := s.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, int64(42), got.Seed, "original row is kept")
}

func TestGetRun_NotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.GetRun(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestListRuns_NewestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	old := testRun("run-old")
	old.CreatedAt = time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	recent := testRun("run-new")
	recent.CreatedAt = time.Date(2026, 8, 2, 10, 0, 0, 0, time.UTC)

	require.NoError(t, s.InsertRun(ctx, old))
	require.NoError(t, s.InsertRun(ctx, recent))

	runs, err := s.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-new", runs[0].ID)
	assert.Equal(t, "run-old", runs[1].ID)
}

func TestListRuns_EmptyIsNotNil(t *testing.T) {
	s := openTestStore(t)

	runs, err := s.ListRuns(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, runs)
	assert.Empty(t, runs)
}

func TestInsertSnapshot_RoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.InsertRun(ctx, testRun("run-1")))
	require.NoError(t, s.InsertSnapshot(ctx, "run-1", testSnapshot(1)))
	require.NoError(t, s.InsertSnapshot(ctx, "run-1", testSnapshot(2)))

	records, err := s.Snapshots(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, 1, records[0].Day)
	assert.Equal(t, 2, records[1].Day)
	assert.Equal(t, "original", records[0].Variant)
	assert.Equal(t, int64(20), records[1].Global.TotalCases)
	require.Contains(t, records[1].Countries, "CHN")
	assert.Equal(t, int64(20), records[1].Countries["CHN"].Cases)
}

func TestInsertSnapshot_DuplicateDayIgnored(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.InsertRun(ctx, testRun("run-1")))
	require.NoError(t, s.InsertSnapshot(ctx, "run-1", testSnapshot(1)))

	replay := testSnapshot(1)
	replay.GlobalStats.TotalCases = 12345
	require.NoError(t, s.InsertSnapshot(ctx, "run-1", replay))

	records, err := s.Snapshots(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, int64(10), records[0].Global.TotalCases, "first write wins")
}

func TestInsertSnapshot_RequiresRun(t *testing.T) {
	s := openTestStore(t)

	err := s.InsertSnapshot(context.Background(), "no-such-run", testSnapshot(1))
	assert.Error(t, err, "foreign key constraint rejects orphan snapshots")
}

func TestSnapshotRange(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.InsertRun(ctx, testRun("run-1")))
	for day := 1; day <= 5; day++ {
		require.NoError(t, s.InsertSnapshot(ctx, "run-1", testSnapshot(day)))
	}

	records, err := s.SnapshotRange(ctx, "run-1", 2, 4)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, 2, records[0].Day)
	assert.Equal(t, 4, records[2].Day)
}

func TestLastSnapshot(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.InsertRun(ctx, testRun("run-1")))

	_, err := s.LastSnapshot(ctx, "run-1")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	for day := 1; day <= 3; day++ {
		require.NoError(t, s.InsertSnapshot(ctx, "run-1", testSnapshot(day)))
	}

	last, err := s.LastSnapshot(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, 3, last.Day)
}

func TestSnapshots_UnknownRunIsEmpty(t *testing.T) {
	s := openTestStore(t)

	records, err := s.Snapshots(context.Background(), "missing")
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}
