package harness

import (
	"fmt"
	"strings"

	"github.com/SenderoElectoral/covid-19-simulator/internal/engine"
)

// AssertionError is returned when an assertion fails. It includes the
// trailing trace for context.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Trace    []TraceDay
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nTrailing trace:\n")
	trace := e.Trace
	if len(trace) > 5 {
		trace = trace[len(trace)-5:]
	}
	for _, day := range trace {
		fmt.Fprintf(&buf, "  [%d] %s %s cases=%d deaths=%d recovered=%d active=%d\n",
			day.Day, day.Date, day.Variant,
			day.GlobalStats.TotalCases, day.GlobalStats.TotalDeaths,
			day.GlobalStats.TotalRecovered, day.GlobalStats.ActiveCases)
	}

	return buf.String()
}

// EvaluateAssertions checks every assertion against the result and
// returns the failure messages. An empty slice means all passed.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error
		switch assertion.Type {
		case AssertGlobalStats:
			err = assertGlobalStats(result, assertion)
		case AssertCountry:
			err = assertCountry(result, assertion)
		case AssertVariant:
			err = assertVariant(result, assertion)
		case AssertInvariant:
			err = assertInvariant(result, assertion)
		default:
			err = fmt.Errorf("unknown assertion type %q", assertion.Type)
		}
		if err != nil {
			errors = append(errors, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}

	return errors
}

// snapshotFor resolves the snapshot an assertion targets. Day 0 means
// the final advanced day.
func snapshotFor(result *Result, day int) (*engine.Snapshot, error) {
	if len(result.Snapshots) == 0 {
		return nil, fmt.Errorf("no days were advanced")
	}
	if day == 0 {
		return result.Snapshots[len(result.Snapshots)-1], nil
	}
	if day > len(result.Snapshots) {
		return nil, fmt.Errorf("day %d was never reached (run stopped after day %d)", day, len(result.Snapshots))
	}
	return result.Snapshots[day-1], nil
}

func assertGlobalStats(result *Result, assertion Assertion) error {
	snap, err := snapshotFor(result, assertion.Day)
	if err != nil {
		return err
	}

	actual := globalFields(snap.GlobalStats)
	for field, want := range assertion.Expect {
		got, ok := actual[field]
		if !ok {
			return fmt.Errorf("unknown global field %q", field)
		}
		if got != want {
			return &AssertionError{
				Type:     AssertGlobalStats,
				Expected: fmt.Sprintf("%s = %d on day %d", field, want, snap.Day),
				Actual:   fmt.Sprintf("%s = %d", field, got),
				Trace:    result.Trace,
			}
		}
	}
	return nil
}

func assertCountry(result *Result, assertion Assertion) error {
	snap, err := snapshotFor(result, assertion.Day)
	if err != nil {
		return err
	}

	c, ok := snap.Countries[assertion.Country]
	if !ok {
		return fmt.Errorf("unknown country %q", assertion.Country)
	}

	actual := countryFields(c)
	for field, want := range assertion.Expect {
		got, ok := actual[field]
		if !ok {
			return fmt.Errorf("unknown country field %q", field)
		}
		if got != want {
			return &AssertionError{
				Type:     AssertCountry,
				Expected: fmt.Sprintf("%s.%s = %d on day %d", assertion.Country, field, want, snap.Day),
				Actual:   fmt.Sprintf("%s.%s = %d", assertion.Country, field, got),
				Trace:    result.Trace,
			}
		}
	}
	return nil
}

func assertVariant(result *Result, assertion Assertion) error {
	snap, err := snapshotFor(result, assertion.Day)
	if err != nil {
		return err
	}

	if snap.Variant != assertion.Variant {
		return &AssertionError{
			Type:     AssertVariant,
			Expected: fmt.Sprintf("variant %q on day %d", assertion.Variant, snap.Day),
			Actual:   fmt.Sprintf("variant %q", snap.Variant),
			Trace:    result.Trace,
		}
	}
	return nil
}

func assertInvariant(result *Result, assertion Assertion) error {
	for _, snap := range result.Snapshots {
		switch assertion.Invariant {
		case InvariantActiveIdentity:
			for code, c := range snap.Countries {
				if c.Active != c.Cases-c.Deaths-c.Recovered {
					return &AssertionError{
						Type:     AssertInvariant,
						Expected: fmt.Sprintf("%s: active = cases - deaths - recovered on day %d", code, snap.Day),
						Actual: fmt.Sprintf("%s: active=%d cases=%d deaths=%d recovered=%d",
							code, c.Active, c.Cases, c.Deaths, c.Recovered),
						Trace: result.Trace,
					}
				}
			}

		case InvariantCasesWithinPopulation:
			for code, c := range snap.Countries {
				if c.Cases > c.Population {
					return &AssertionError{
						Type:     AssertInvariant,
						Expected: fmt.Sprintf("%s: cases within population on day %d", code, snap.Day),
						Actual:   fmt.Sprintf("%s: cases=%d population=%d", code, c.Cases, c.Population),
						Trace:    result.Trace,
					}
				}
			}
		}
	}

	if assertion.Invariant == InvariantMonotoneCases {
		var prev int64
		for _, day := range result.Trace {
			if day.GlobalStats.TotalCases < prev {
				return &AssertionError{
					Type:     AssertInvariant,
					Expected: "global cumulative cases never decrease",
					Actual:   fmt.Sprintf("day %d: %d < %d", day.Day, day.GlobalStats.TotalCases, prev),
					Trace:    result.Trace,
				}
			}
			prev = day.GlobalStats.TotalCases
		}
	}

	return nil
}

func globalFields(g engine.GlobalStats) map[string]int64 {
	return map[string]int64{
		"totalCases":     g.TotalCases,
		"activeCases":    g.ActiveCases,
		"totalDeaths":    g.TotalDeaths,
		"totalRecovered": g.TotalRecovered,
		"dailyCases":     g.DailyCases,
		"dailyDeaths":    g.DailyDeaths,
	}
}

func countryFields(c *engine.Country) map[string]int64 {
	return map[string]int64{
		"cases":       c.Cases,
		"deaths":      c.Deaths,
		"recovered":   c.Recovered,
		"active":      c.Active,
		"dailyCases":  c.DailyCases,
		"dailyDeaths": c.DailyDeaths,
		"population":  c.Population,
		"alertLevel":  int64(c.Response.AlertLevel),
	}
}
