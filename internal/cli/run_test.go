package cli

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SenderoElectoral/covid-19-simulator/internal/store"
)

// runJSON executes the run command in JSON mode and returns the summary.
func runJSON(t *testing.T, args ...string) RunSummary {
	t.Helper()
	out, _, err := executeCommand(t, append([]string{"--format", "json", "run"}, args...)...)
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Equal(t, "ok", resp.Status)

	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var summary RunSummary
	require.NoError(t, json.Unmarshal(raw, &summary))
	return summary
}

func TestRun_Synchronous(t *testing.T) {
	summary := runJSON(t,
		"--data", "testdata/data",
		"--days", "10",
		"--seed", "42",
		"--start", "2023-01-01",
		"--end", "2023-12-31")

	assert.NotEmpty(t, summary.RunID)
	assert.Equal(t, 10, summary.Days)
	assert.Equal(t, "2023-01-10", summary.FinalDate)
	assert.GreaterOrEqual(t, summary.TotalCases, int64(1), "patient zero is always counted")
}

func TestRun_Deterministic(t *testing.T) {
	args := []string{
		"--data", "testdata/data",
		"--days", "30",
		"--seed", "7",
		"--start", "2023-01-01",
		"--end", "2023-12-31",
	}
	first := runJSON(t, args...)
	second := runJSON(t, args...)

	assert.Equal(t, first.TotalCases, second.TotalCases)
	assert.Equal(t, first.TotalDeaths, second.TotalDeaths)
	assert.Equal(t, first.ActiveCases, second.ActiveCases)
}

func TestRun_StopsAtEndDate(t *testing.T) {
	summary := runJSON(t,
		"--data", "testdata/data",
		"--days", "0",
		"--start", "2023-01-01",
		"--end", "2023-01-05")

	assert.Equal(t, 5, summary.Days)
	assert.Equal(t, "2023-01-05", summary.FinalDate)
}

func TestRun_PersistsToStore(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	summary := runJSON(t,
		"--data", "testdata/data",
		"--db", dbPath,
		"--days", "7",
		"--seed", "42",
		"--start", "2023-01-01",
		"--end", "2023-12-31")

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()
	ctx := context.Background()

	run, err := st.GetRun(ctx, summary.RunID)
	require.NoError(t, err)
	assert.Equal(t, int64(42), run.Seed)
	assert.Equal(t, "virus", run.Mode)
	assert.Equal(t, "2023-01-01", run.StartDate.Format("2006-01-02"))

	records, err := st.Snapshots(ctx, summary.RunID)
	require.NoError(t, err)
	require.Len(t, records, 7)
	assert.Equal(t, 1, records[0].Day)
	assert.Equal(t, 7, records[6].Day)
	assert.Equal(t, summary.TotalCases, records[6].Global.TotalCases)
	assert.Contains(t, records[6].Countries, "CHN")
}

func TestRun_ConfigFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(
		"seed: 11\ndays: 4\nstart: 2023-03-01\nend: 2023-12-31\n"), 0o644))

	summary := runJSON(t,
		"--data", "testdata/data",
		"--config", configPath)

	assert.Equal(t, 4, summary.Days)
	assert.Equal(t, "2023-03-04", summary.FinalDate)
}

func TestRun_FlagsOverrideConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(
		"days: 4\nstart: 2023-03-01\nend: 2023-12-31\n"), 0o644))

	summary := runJSON(t,
		"--data", "testdata/data",
		"--config", configPath,
		"--days", "2")

	assert.Equal(t, 2, summary.Days, "explicit flag wins over the config file")
}

func TestRun_BadMode(t *testing.T) {
	_, _, err := executeCommand(t, "run",
		"--data", "testdata/data",
		"--mode", "chaos")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRun_BadDataset(t *testing.T) {
	_, _, err := executeCommand(t, "run",
		"--data", t.TempDir(),
		"--days", "1")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}
