package harness

import (
	"fmt"
	"time"

	"github.com/SenderoElectoral/covid-19-simulator/internal/dataset"
	"github.com/SenderoElectoral/covid-19-simulator/internal/engine"
)

// TraceDay is one day of the golden trace: the global series plus the
// active variant. Field order fixes the serialized layout.
type TraceDay struct {
	Day         int                `json:"day"`
	Date        string             `json:"date"`
	Variant     string             `json:"variant"`
	GlobalStats engine.GlobalStats `json:"globalStats"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall success: every assertion held.
	Pass bool `json:"pass"`

	// Trace holds the per-day global series, in day order.
	Trace []TraceDay `json:"trace"`

	// Errors contains assertion failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Snapshots holds the full end-of-day snapshots, one per advanced
	// day, for state assertions. Not serialized into golden files.
	Snapshots []*engine.Snapshot `json:"-"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceDay{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Run executes a scenario and returns the result.
//
// The engine is advanced synchronously, one day at a time, never through
// the wall-clock scheduler, so a scenario with a fixed seed reproduces
// the same trace on every run. Steps scheduled for day N are applied
// before day N advances.
func Run(scenario *Scenario) (*Result, error) {
	ds, err := dataset.Load(scenario.Dataset)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}

	cfg, err := engineConfig(scenario)
	if err != nil {
		return nil, err
	}
	eng := engine.New(ds, cfg)

	result := NewResult()
	for day := 1; day <= scenario.Days; day++ {
		for _, step := range scenario.Steps {
			if step.Day == day {
				applyStep(eng, step)
			}
		}

		if !eng.AdvanceDay() {
			break
		}

		snap := drainTick(eng.Notifications())
		if snap == nil {
			return nil, fmt.Errorf("day %d produced no tick notification", day)
		}
		result.Snapshots = append(result.Snapshots, snap)
		result.Trace = append(result.Trace, TraceDay{
			Day:         snap.Day,
			Date:        snap.Date.Format(scenarioDateLayout),
			Variant:     snap.Variant,
			GlobalStats: snap.GlobalStats,
		})
	}

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}

	return result, nil
}

// drainTick empties the pending notifications and returns the day's tick
// snapshot. The tick carries the processed date, unlike Engine.State,
// which already points at the next day.
func drainTick(queue *engine.NotificationQueue) *engine.Snapshot {
	var snap *engine.Snapshot
	for {
		note, ok := queue.TryNext()
		if !ok {
			return snap
		}
		if note.Type == engine.NoteTick {
			snap = note.Snapshot
		}
	}
}

func engineConfig(scenario *Scenario) (engine.Config, error) {
	cfg := engine.Config{Seed: scenario.Seed}
	if cfg.Seed == 0 {
		cfg.Seed = 1
	}

	if scenario.Start != "" {
		start, err := time.Parse(scenarioDateLayout, scenario.Start)
		if err != nil {
			return engine.Config{}, fmt.Errorf("bad start date: %w", err)
		}
		cfg.Start = start
	}
	if scenario.End != "" {
		end, err := time.Parse(scenarioDateLayout, scenario.End)
		if err != nil {
			return engine.Config{}, fmt.Errorf("bad end date: %w", err)
		}
		cfg.End = end
	}
	if scenario.Mode == "government" {
		cfg.Mode = engine.ModeGovernment
	}

	return cfg, nil
}

func applyStep(eng *engine.Engine, step Step) {
	switch step.Action {
	case StepApplyMeasure:
		eng.ApplyGovernmentMeasure(step.Country, step.Measure)

	case StepSetParams:
		var update engine.VirusParamsUpdate
		for key, value := range step.Params {
			v := value
			switch key {
			case "infectivity":
				update.Infectivity = &v
			case "severity":
				update.Severity = &v
			case "mortality":
				update.Mortality = &v
			case "incubation":
				n := int(v)
				update.Incubation = &n
			case "infectious":
				n := int(v)
				update.Infectious = &n
			}
		}
		eng.UpdateVirusParams(update)

	case StepSetMode:
		if step.Mode == "government" {
			eng.SetMode(engine.ModeGovernment)
		} else {
			eng.SetMode(engine.ModeVirus)
		}

	case StepSetSpeed:
		eng.SetSpeed(step.Speed)
	}
}
