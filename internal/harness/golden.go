package harness

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// TraceSnapshot captures the serialized trace of a scenario execution
// for golden comparison.
type TraceSnapshot struct {
	ScenarioName string     `json:"scenario_name"`
	Seed         int64      `json:"seed"`
	Trace        []TraceDay `json:"trace"`
}

// RunWithGolden executes a scenario, fails the test on assertion errors,
// and compares the per-day trace against testdata/golden/{name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}
	for _, msg := range result.Errors {
		t.Error(msg)
	}

	return AssertGolden(t, scenario, result)
}

// AssertGolden compares an already-obtained result's trace against the
// scenario's golden file.
func AssertGolden(t *testing.T, scenario *Scenario, result *Result) error {
	t.Helper()

	seed := scenario.Seed
	if seed == 0 {
		seed = 1
	}
	snapshot := TraceSnapshot{
		ScenarioName: scenario.Name,
		Seed:         seed,
		Trace:        result.Trace,
	}

	traceJSON, err := json.MarshalIndent(&snapshot, "", "  ")
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, traceJSON)

	return nil
}
