package engine

import (
	"sort"
	"time"
)

// Snapshot is the full world state published once per simulated day.
// Everything in it is deep-copied: a snapshot never aliases live engine
// state, so consumers may hold it across ticks.
type Snapshot struct {
	Running bool      `json:"isRunning"`
	Paused  bool      `json:"isPaused"`
	Date    time.Time `json:"date"`
	Day     int       `json:"dayCounter"`

	Variant     string          `json:"currentVariant"`
	VirusParams VirusParameters `json:"virusParams"`
	GlobalStats GlobalStats     `json:"globalStats"`

	Countries    map[string]*Country `json:"countries"`
	TopCountries []*Country          `json:"topCountries"`
}

// snapshotLocked builds a snapshot of the current state. Caller holds
// the engine mutex.
func (e *Engine) snapshotLocked() *Snapshot {
	countries := make(map[string]*Country, len(e.countries))
	for code, c := range e.countries {
		countries[code] = c.clone()
	}

	return &Snapshot{
		Running:      e.running,
		Paused:       e.paused,
		Date:         e.current,
		Day:          e.dayCounter,
		Variant:      e.variantID,
		VirusParams:  e.params,
		GlobalStats:  e.global,
		Countries:    countries,
		TopCountries: topCountries(countries, 10),
	}
}

// State returns a snapshot of the current world state on demand.
func (e *Engine) State() *Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// TopCountries returns the n countries with the most cumulative cases,
// descending. Countries without cases are excluded.
func (e *Engine) TopCountries(n int) []*Country {
	e.mu.Lock()
	defer e.mu.Unlock()

	countries := make(map[string]*Country, len(e.countries))
	for code, c := range e.countries {
		countries[code] = c.clone()
	}
	return topCountries(countries, n)
}

// topCountries ranks cloned countries by cases, ties broken by code so
// the ranking is stable.
func topCountries(countries map[string]*Country, n int) []*Country {
	ranked := make([]*Country, 0, len(countries))
	for _, c := range countries {
		if c.Cases > 0 {
			ranked = append(ranked, c)
		}
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Cases != ranked[j].Cases {
			return ranked[i].Cases > ranked[j].Cases
		}
		return ranked[i].Code < ranked[j].Code
	})
	if n < 0 {
		n = 0
	}
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
