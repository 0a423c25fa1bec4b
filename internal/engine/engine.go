package engine

import (
	"log/slog"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/SenderoElectoral/covid-19-simulator/internal/dataset"
)

// Mode selects who drives government measures.
type Mode string

const (
	// ModeVirus applies measures automatically from alert levels.
	ModeVirus Mode = "virus"
	// ModeGovernment disables automatic measures; all changes come from
	// explicit ApplyGovernmentMeasure calls.
	ModeGovernment Mode = "government"
)

// Config parameterizes a simulation run.
type Config struct {
	// Start and End bound the simulated date range, inclusive.
	// Zero values default to 2020-01-01 and 2022-12-31.
	Start time.Time
	End   time.Time

	// Seed seeds the single random generator. The same seed reproduces
	// the same run, country traits included.
	Seed int64

	// Speed is the initial wall-clock speed multiplier, clamped to
	// [0.1, 5]. Defaults to 1.
	Speed float64

	// Mode is the initial measure mode. Defaults to ModeVirus.
	Mode Mode
}

func (c Config) withDefaults() Config {
	if c.Start.IsZero() {
		c.Start = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	if c.End.IsZero() {
		c.End = time.Date(2022, 12, 31, 0, 0, 0, 0, time.UTC)
	}
	if c.Speed == 0 {
		c.Speed = 1
	}
	c.Speed = clampSpeed(c.Speed)
	if c.Mode == "" {
		c.Mode = ModeVirus
	}
	return c
}

func clampSpeed(x float64) float64 {
	return math.Max(0.1, math.Min(5, x))
}

// Engine is the single-timeline simulation engine. Exactly one mutable
// world state exists; every exported method locks it, and the run loop
// advances it one whole day at a time.
type Engine struct {
	mu   sync.Mutex
	data *dataset.Dataset
	cfg  Config

	current    time.Time
	dayCounter int

	params    VirusParameters
	variantID string
	countries map[string]*Country
	global    GlobalStats
	processed map[string]bool // event dates already dispatched
	mode      Mode

	rng   *randSource
	notes *NotificationQueue

	speed   float64
	running bool
	paused  bool
	stop    func()
}

// New creates an engine over an immutable dataset. The world is fully
// initialized and ready to step; Start begins the wall-clock loop, or
// call AdvanceDay directly for headless stepping.
func New(data *dataset.Dataset, cfg Config) *Engine {
	cfg = cfg.withDefaults()
	e := &Engine{
		data:  data,
		cfg:   cfg,
		mode:  cfg.Mode,
		speed: cfg.Speed,
		notes: newNotificationQueue(),
	}
	e.setupLocked()
	return e
}

// setupLocked (re)builds all mutable state from the dataset and config.
// Reset calls it wholesale: countries are reconstructed, the generator is
// re-seeded, and the processed-event set is cleared.
func (e *Engine) setupLocked() {
	e.current = e.cfg.Start
	e.dayCounter = 0
	e.params = defaultVirusParameters()
	e.rng = newRandSource(e.cfg.Seed)
	e.processed = make(map[string]bool)
	e.global = GlobalStats{}

	e.variantID = ""
	if len(e.data.Schedule) > 0 {
		e.variantID = e.data.Schedule[0].VariantID
	}

	e.countries = make(map[string]*Country, len(e.data.Population))
	for _, code := range sortedKeys(e.data.Population) {
		e.countries[code] = &Country{
			Code:                 code,
			Name:                 dataset.CountryName(code),
			Population:           e.data.Population[code],
			ActiveMeasures:       make(map[string]bool),
			EffectiveInfectivity: e.params.Infectivity,
			Response: GovernmentResponse{
				Compliance:         0.6 + 0.4*e.rng.Float64(),
				MedicalCapacity:    0.5 + 0.5*e.rng.Float64(),
				PoliticalStability: 0.7 + 0.3*e.rng.Float64(),
			},
		}
	}

	// Patient zero: the outbreak starts in China the day before the
	// default simulation start.
	if chn, ok := e.countries["CHN"]; ok {
		first := time.Date(2019, 12, 31, 0, 0, 0, 0, time.UTC)
		chn.Cases = 1
		chn.Active = 1
		chn.Infected = true
		chn.FirstCaseDate = &first
		e.global.TotalCases = 1
		e.global.ActiveCases = 1
	}
}

// Notifications returns the outbound notification queue. The consumer
// owns draining it; the engine never blocks on it.
func (e *Engine) Notifications() *NotificationQueue {
	return e.notes
}

// AdvanceDay runs one full day pipeline and moves the simulated date
// forward one calendar day. It reports false, without advancing, once
// the date has passed the configured end.
func (e *Engine) AdvanceDay() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.advanceLocked()
}

func (e *Engine) advanceLocked() bool {
	if e.current.After(e.cfg.End) {
		return false
	}

	e.checkVariantChange()
	e.checkHistoricalEvents()
	e.updateSpread()
	e.updateGovernmentResponses()
	e.updateOutcomes()
	e.updateDailyGlobalStats()

	// The tick reports the processed day: counter already advanced, date
	// not yet.
	e.dayCounter++
	snap := e.snapshotLocked()
	e.notes.publish(Notification{Type: NoteTick, Snapshot: snap})

	e.current = e.current.AddDate(0, 0, 1)
	return true
}

// updateDailyGlobalStats recomputes the global daily counters by summing
// all countries. Runs at the end of every tick on both spread paths.
func (e *Engine) updateDailyGlobalStats() {
	var cases, deaths int64
	for _, c := range e.countries {
		cases += c.DailyCases
		deaths += c.DailyDeaths
	}
	e.global.DailyCases = cases
	e.global.DailyDeaths = deaths
}

// SetMode switches between automatic and manual measure modes. Unknown
// modes are ignored.
func (e *Engine) SetMode(mode Mode) {
	if mode != ModeVirus && mode != ModeGovernment {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.mode = mode
	slog.Debug("mode changed", "mode", mode)
}

// Mode returns the current measure mode.
func (e *Engine) Mode() Mode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mode
}

// UpdateVirusParams applies a partial update to the live parameters.
// Last writer wins; no validation beyond what the types enforce.
func (e *Engine) UpdateVirusParams(u VirusParamsUpdate) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if u.Infectivity != nil {
		e.params.Infectivity = *u.Infectivity
	}
	if u.Severity != nil {
		e.params.Severity = *u.Severity
	}
	if u.Mortality != nil {
		e.params.Mortality = *u.Mortality
	}
	if u.Incubation != nil {
		e.params.Incubation = *u.Incubation
	}
	if u.Infectious != nil {
		e.params.Infectious = *u.Infectious
	}
}

// VirusParams returns a copy of the live virus parameters.
func (e *Engine) VirusParams() VirusParameters {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.params
}

// CurrentDate returns the next date the engine will simulate.
func (e *Engine) CurrentDate() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}

// Done reports whether the simulated date has passed the configured end
// date. A done engine stops advancing but keeps answering state queries.
func (e *Engine) Done() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current.After(e.cfg.End)
}

// sortedCountryCodes returns all country codes in sorted order. Pipeline
// phases iterate in this order so random draws are reproducible.
func (e *Engine) sortedCountryCodes() []string {
	codes := make([]string, 0, len(e.countries))
	for code := range e.countries {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
