package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Scenario defines one conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario. Also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Dataset is the dataset directory, relative to the scenario file.
	Dataset string `yaml:"dataset"`

	// Seed is the deterministic RNG seed. Defaults to 1.
	Seed int64 `yaml:"seed,omitempty"`

	// Start and End bound the simulation window, as YYYY-MM-DD.
	// Empty values fall back to the engine defaults.
	Start string `yaml:"start,omitempty"`
	End   string `yaml:"end,omitempty"`

	// Days is the number of days to advance.
	Days int `yaml:"days"`

	// Mode selects the control mode: "virus" (default) or "government".
	Mode string `yaml:"mode,omitempty"`

	// Steps are mid-run operations, applied before the day they name.
	Steps []Step `yaml:"steps,omitempty"`

	// Assertions validate the resulting state.
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one mid-run operation. Day is 1-based: a step with day N runs
// before day N is advanced.
type Step struct {
	Day    int    `yaml:"day"`
	Action string `yaml:"action"`

	// apply_measure
	Country string `yaml:"country,omitempty"`
	Measure string `yaml:"measure,omitempty"`

	// set_params: subset of infectivity, severity, mortality,
	// incubation, infectious.
	Params map[string]float64 `yaml:"params,omitempty"`

	// set_mode
	Mode string `yaml:"mode,omitempty"`

	// set_speed
	Speed float64 `yaml:"speed,omitempty"`
}

// Assertion validates state after the run.
type Assertion struct {
	// Type is one of global_stats, country, variant, invariant.
	Type string `yaml:"type"`

	// Day selects the snapshot to assert on (1-based). Zero means the
	// final day. Ignored by invariant assertions, which span the run.
	Day int `yaml:"day,omitempty"`

	// Country is the ISO alpha-3 code (country assertions).
	Country string `yaml:"country,omitempty"`

	// Expect maps field names to expected integer values
	// (global_stats and country assertions).
	Expect map[string]int64 `yaml:"expect,omitempty"`

	// Variant is the expected active variant id (variant assertions).
	Variant string `yaml:"variant,omitempty"`

	// Invariant names the structural property to check
	// (invariant assertions).
	Invariant string `yaml:"invariant,omitempty"`
}

// Step action constants.
const (
	StepApplyMeasure = "apply_measure"
	StepSetParams    = "set_params"
	StepSetMode      = "set_mode"
	StepSetSpeed     = "set_speed"
)

// Assertion type constants.
const (
	AssertGlobalStats = "global_stats"
	AssertCountry     = "country"
	AssertVariant     = "variant"
	AssertInvariant   = "invariant"
)

// Invariant name constants.
const (
	// InvariantActiveIdentity: active = cases - deaths - recovered for
	// every country on every day.
	InvariantActiveIdentity = "active_identity"
	// InvariantCasesWithinPopulation: cases never exceed population.
	InvariantCasesWithinPopulation = "cases_within_population"
	// InvariantMonotoneCases: cumulative global cases never decrease.
	InvariantMonotoneCases = "monotone_cases"
)

const scenarioDateLayout = "2006-01-02"

// LoadScenario reads and parses a scenario YAML file. The dataset path
// is resolved relative to the scenario file. Returns an error on unknown
// fields (typos) or missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Dataset != "" && !filepath.IsAbs(scenario.Dataset) {
		scenario.Dataset = filepath.Join(filepath.Dir(path), scenario.Dataset)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Dataset == "" {
		return fmt.Errorf("dataset is required")
	}
	if _, err := os.Stat(s.Dataset); err != nil {
		return fmt.Errorf("dataset directory not found: %s", s.Dataset)
	}
	if s.Days <= 0 {
		return fmt.Errorf("days must be positive")
	}
	if s.Mode != "" && s.Mode != "virus" && s.Mode != "government" {
		return fmt.Errorf("unknown mode %q", s.Mode)
	}
	for _, field := range []struct{ name, value string }{
		{"start", s.Start},
		{"end", s.End},
	} {
		if field.value == "" {
			continue
		}
		if _, err := time.Parse(scenarioDateLayout, field.value); err != nil {
			return fmt.Errorf("%s: bad date %q (want YYYY-MM-DD)", field.name, field.value)
		}
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}
	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion, s.Days); err != nil {
			return err
		}
	}

	return nil
}

func validateStep(index int, step *Step) error {
	if step.Day <= 0 {
		return fmt.Errorf("steps[%d]: day must be positive", index)
	}

	switch step.Action {
	case StepApplyMeasure:
		if step.Country == "" || step.Measure == "" {
			return fmt.Errorf("steps[%d]: country and measure are required for apply_measure", index)
		}
	case StepSetParams:
		if len(step.Params) == 0 {
			return fmt.Errorf("steps[%d]: params is required for set_params", index)
		}
		for key := range step.Params {
			switch key {
			case "infectivity", "severity", "mortality", "incubation", "infectious":
			default:
				return fmt.Errorf("steps[%d]: unknown parameter %q", index, key)
			}
		}
	case StepSetMode:
		if step.Mode != "virus" && step.Mode != "government" {
			return fmt.Errorf("steps[%d]: unknown mode %q", index, step.Mode)
		}
	case StepSetSpeed:
		if step.Speed == 0 {
			return fmt.Errorf("steps[%d]: speed is required for set_speed", index)
		}
	case "":
		return fmt.Errorf("steps[%d]: action is required", index)
	default:
		return fmt.Errorf("steps[%d]: unknown action %q", index, step.Action)
	}

	return nil
}

func validateAssertion(index int, a *Assertion, days int) error {
	if a.Day < 0 || a.Day > days {
		return fmt.Errorf("assertions[%d]: day %d out of range [0, %d]", index, a.Day, days)
	}

	switch a.Type {
	case AssertGlobalStats:
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for global_stats", index)
		}
	case AssertCountry:
		if a.Country == "" {
			return fmt.Errorf("assertions[%d]: country is required for country", index)
		}
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for country", index)
		}
	case AssertVariant:
		if a.Variant == "" {
			return fmt.Errorf("assertions[%d]: variant is required for variant", index)
		}
	case AssertInvariant:
		switch a.Invariant {
		case InvariantActiveIdentity, InvariantCasesWithinPopulation, InvariantMonotoneCases:
		case "":
			return fmt.Errorf("assertions[%d]: invariant is required for invariant", index)
		default:
			return fmt.Errorf("assertions[%d]: unknown invariant %q", index, a.Invariant)
		}
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
