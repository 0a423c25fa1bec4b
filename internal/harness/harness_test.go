package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_ProceduralInvariants(t *testing.T) {
	scenario, err := LoadScenario(filepath.Join("testdata", "scenarios", "procedural_invariants.yaml"))
	require.NoError(t, err)

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Len(t, result.Trace, 60)
	assert.Len(t, result.Snapshots, 60)
}

func TestRun_StepsApplied(t *testing.T) {
	scenario := &Scenario{
		Name:        "steps",
		Description: "mid-run interventions take effect",
		Dataset:     filepath.Join("testdata", "datasets", "base"),
		Seed:        3,
		Start:       "2023-01-01",
		End:         "2023-12-31",
		Days:        10,
		Steps: []Step{
			{Day: 4, Action: StepSetParams, Params: map[string]float64{"mortality": 5, "incubation": 3}},
		},
		Assertions: []Assertion{
			{Type: AssertInvariant, Invariant: InvariantActiveIdentity},
		},
	}
	require.NoError(t, validateScenario(scenario))

	result, err := Run(scenario)
	require.NoError(t, err)
	require.True(t, result.Pass, "errors: %v", result.Errors)

	final := result.Snapshots[len(result.Snapshots)-1]
	assert.InDelta(t, 5.0, final.VirusParams.Mortality, 1e-12)
	assert.Equal(t, 3, final.VirusParams.Incubation)
}

func TestRun_FailingAssertionReported(t *testing.T) {
	scenario := &Scenario{
		Name:        "failing",
		Description: "an impossible expectation fails the run",
		Dataset:     filepath.Join("testdata", "datasets", "base"),
		Seed:        3,
		Start:       "2023-01-01",
		End:         "2023-12-31",
		Days:        5,
		Assertions: []Assertion{
			{Type: AssertGlobalStats, Expect: map[string]int64{"totalCases": -1}},
		},
	}
	require.NoError(t, validateScenario(scenario))

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[0], "Assertion failed")
}

func TestRun_StopsAtEndDate(t *testing.T) {
	scenario := &Scenario{
		Name:        "short-window",
		Description: "the run cannot advance past the configured end date",
		Dataset:     filepath.Join("testdata", "datasets", "base"),
		Start:       "2023-01-01",
		End:         "2023-01-05",
		Days:        30,
		Assertions: []Assertion{
			{Type: AssertInvariant, Invariant: InvariantActiveIdentity},
		},
	}
	require.NoError(t, validateScenario(scenario))

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.Len(t, result.Trace, 5, "only the five in-window days are advanced")
}

func TestRun_TraceDatesMatchProcessedDays(t *testing.T) {
	scenario := &Scenario{
		Name:        "dates",
		Description: "each trace day carries the date it processed",
		Dataset:     filepath.Join("testdata", "datasets", "base"),
		Start:       "2023-02-01",
		End:         "2023-12-31",
		Days:        3,
		Assertions: []Assertion{
			{Type: AssertInvariant, Invariant: InvariantActiveIdentity},
		},
	}
	require.NoError(t, validateScenario(scenario))

	result, err := Run(scenario)
	require.NoError(t, err)
	require.Len(t, result.Trace, 3)

	assert.Equal(t, 1, result.Trace[0].Day)
	assert.Equal(t, "2023-02-01", result.Trace[0].Date)
	assert.Equal(t, "2023-02-03", result.Trace[2].Date)
}
