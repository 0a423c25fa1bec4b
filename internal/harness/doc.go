// Package harness provides scenario-driven conformance testing for the
// simulation engine.
//
// Scenarios are YAML files: a dataset directory, an engine configuration,
// a number of days to advance, optional mid-run steps (parameter updates,
// manual measures, mode switches) and assertions over the resulting
// state. The harness advances the engine synchronously, day by day, so
// runs are fully reproducible for a given seed.
//
// # Scenario Format
//
//	name: wuhan_outbreak
//	description: "Early historical progression"
//	dataset: ../datasets/base
//	seed: 42
//	start: 2020-04-01
//	end: 2022-12-31
//	days: 30
//	steps:
//	  - day: 10
//	    action: apply_measure
//	    country: ESP
//	    measure: lockdown_full
//	assertions:
//	  - type: global_stats
//	    expect: { totalCases: 12345 }
//	  - type: country
//	    country: CHN
//	    expect: { cases: 99 }
//	  - type: variant
//	    variant: alpha
//	  - type: invariant
//	    invariant: active_identity
//
// # Assertion Types
//
//   - global_stats: compare global aggregate fields on a given day
//     (day 0 means the final day)
//   - country: compare one country's counters on a given day
//   - variant: check the active variant on a given day
//   - invariant: check a structural property over the whole run
//
// # Golden Traces
//
// RunWithGolden additionally serializes the per-day global series and
// compares it against testdata/golden/{name}.golden via goldie.
// Regenerate with:
//
//	go test ./internal/harness -update
package harness
