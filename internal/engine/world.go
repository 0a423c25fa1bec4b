package engine

import (
	"sort"
	"time"
)

// VirusParameters are the live virus parameters. Variant transitions and
// lockdown events scale them in place, so they drift from the defaults
// as the run progresses.
type VirusParameters struct {
	// Infectivity is the basic reproduction number R0, pre-measure.
	Infectivity float64 `json:"infectivity"`
	// Severity is the percentage of severe cases.
	Severity float64 `json:"severity"`
	// Mortality is the mortality rate percentage.
	Mortality float64 `json:"mortality"`
	// Incubation is the incubation period in days.
	Incubation int `json:"incubation"`
	// Infectious is the infectious period in days.
	Infectious int `json:"infectious"`
}

func defaultVirusParameters() VirusParameters {
	return VirusParameters{
		Infectivity: 2.5,
		Severity:    15,
		Mortality:   2,
		Incubation:  5,
		Infectious:  10,
	}
}

// VirusParamsUpdate is a partial update to the live virus parameters.
// Nil fields are left untouched.
type VirusParamsUpdate struct {
	Infectivity *float64
	Severity    *float64
	Mortality   *float64
	Incubation  *int
	Infectious  *int
}

// GovernmentResponse holds a country's response profile. Compliance,
// medical capacity and political stability are drawn once at creation
// and fixed for the life of the country record; the alert level only
// rises (until a full reset).
type GovernmentResponse struct {
	AlertLevel         int     `json:"alertLevel"`
	Compliance         float64 `json:"compliance"`
	MedicalCapacity    float64 `json:"medicalCapacity"`
	PoliticalStability float64 `json:"politicalStability"`
}

// Country is the per-country epidemic state.
type Country struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	Population int64  `json:"population"`

	Cases     int64 `json:"cases"`
	Deaths    int64 `json:"deaths"`
	Recovered int64 `json:"recovered"`
	Active    int64 `json:"active"`

	DailyCases     int64   `json:"dailyCases"`
	DailyDeaths    int64   `json:"dailyDeaths"`
	CasesPerCapita float64 `json:"casesPerCapita"`

	// ActiveMeasures is the set of measure ids currently in force.
	ActiveMeasures map[string]bool `json:"activeMeasures"`

	// EffectiveInfectivity is recomputed on every manual measure toggle.
	// It is observable state only: the spread formula re-derives its own
	// effective R0 from ActiveMeasures directly.
	EffectiveInfectivity float64 `json:"effectiveInfectivity"`

	LastMeasureDate *time.Time `json:"lastMeasureDate,omitempty"`
	Infected        bool       `json:"infected"`
	FirstCaseDate   *time.Time `json:"firstCaseDate,omitempty"`

	Response GovernmentResponse `json:"governmentResponse"`
}

// measuresSorted returns the active measure ids in sorted order, keeping
// iteration deterministic for a given state.
func (c *Country) measuresSorted() []string {
	ids := make([]string, 0, len(c.ActiveMeasures))
	for id := range c.ActiveMeasures {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// clone deep-copies a country for snapshot publication.
func (c *Country) clone() *Country {
	dup := *c
	dup.ActiveMeasures = make(map[string]bool, len(c.ActiveMeasures))
	for id, on := range c.ActiveMeasures {
		dup.ActiveMeasures[id] = on
	}
	if c.LastMeasureDate != nil {
		t := *c.LastMeasureDate
		dup.LastMeasureDate = &t
	}
	if c.FirstCaseDate != nil {
		t := *c.FirstCaseDate
		dup.FirstCaseDate = &t
	}
	return &dup
}

// GlobalStats is the world-level aggregate. The historical spread path
// overwrites it by summing country records; the procedural path
// accumulates it incrementally. Both strategies are kept as-is.
type GlobalStats struct {
	TotalCases     int64 `json:"totalCases"`
	ActiveCases    int64 `json:"activeCases"`
	TotalDeaths    int64 `json:"totalDeaths"`
	TotalRecovered int64 `json:"totalRecovered"`
	DailyCases     int64 `json:"dailyCases"`
	DailyDeaths    int64 `json:"dailyDeaths"`
}

// Measure describes one government measure in the static catalog.
type Measure struct {
	Effectiveness float64 `json:"effectiveness"`
	Cost          int     `json:"cost"`
}

// GovernmentMeasures is the static measure catalog: id → effectiveness
// and cost. Immutable.
var GovernmentMeasures = map[string]Measure{
	"border_closure":   {Effectiveness: 0.3, Cost: 50},
	"lockdown_partial": {Effectiveness: 0.5, Cost: 80},
	"lockdown_full":    {Effectiveness: 0.8, Cost: 100},
	"mask_mandate":     {Effectiveness: 0.2, Cost: 10},
	"event_ban":        {Effectiveness: 0.3, Cost: 30},
	"curfew":           {Effectiveness: 0.4, Cost: 40},
	"vaccine_program":  {Effectiveness: 0.9, Cost: 200},
}

// sameDay compares two instants by calendar day.
func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// daysBetween returns whole days from one UTC-midnight date to another.
func daysBetween(from, to time.Time) int {
	return int(to.Sub(from) / (24 * time.Hour))
}
