// Package dataset loads and validates the simulator's input tables: the
// per-country population table, the historical COVID series (monthly
// presence + end-of-horizon totals), the variant catalog, and the
// historical event list.
//
// All inputs are JSON files validated against an embedded CUE schema
// before decoding. A Dataset is immutable once loaded; the engine never
// writes back into it.
package dataset

import (
	"sort"
	"time"
)

// EventType classifies a historical event.
type EventType string

const (
	// EventLockdown reduces global transmission for the rest of the run.
	EventLockdown EventType = "lockdown"
	// EventVaccine converts a share of each country's active cases to recovered.
	EventVaccine EventType = "vaccine"
	// EventVariant marks a variant emergence. The variant schedule handles
	// the actual parameter change; the event is informational.
	EventVariant EventType = "variant"
)

// Event is a one-off historical event applied at most once at its date.
type Event struct {
	Date        time.Time `json:"date"`
	Type        EventType `json:"type"`
	Description string    `json:"description"`
}

// Variant is a named multiplicative modifier set for the virus parameters,
// active from its first-detected date onward.
type Variant struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Transmissibility float64   `json:"transmissibility"`
	Severity         float64   `json:"severity"`
	FirstDetected    time.Time `json:"first_detected"`
}

// ScheduleEntry activates a variant the day the simulated date reaches it.
type ScheduleEntry struct {
	Date      time.Time `json:"date"`
	VariantID string    `json:"variant"`
}

// CountryTotals are the end-of-horizon cumulative totals for one country,
// used as blend targets by the historical spread model.
type CountryTotals struct {
	TotalCases     int64 `json:"total_cases"`
	TotalDeaths    int64 `json:"total_deaths"`
	TotalRecovered int64 `json:"total_recovered"`
}

// Dataset holds all loaded input tables. Read-only after Load returns.
type Dataset struct {
	// Population maps ISO-3166 alpha-3 code to population.
	Population map[string]int64

	// Months is the set of year-months ("2006-01" keys) covered by the
	// historical series. Presence selects the historical spread path.
	Months map[string]struct{}

	// Totals maps country code to its historical cumulative totals.
	Totals map[string]CountryTotals

	// Variants is the variant catalog keyed by variant id.
	Variants map[string]Variant

	// Schedule is the ordered variant activation schedule, derived from
	// the catalog's first-detected dates (ascending).
	Schedule []ScheduleEntry

	// Events is the historical event list, ordered by date.
	Events []Event
}

// HasMonth reports whether the historical series covers the month of t.
func (d *Dataset) HasMonth(t time.Time) bool {
	_, ok := d.Months[t.Format("2006-01")]
	return ok
}

// buildSchedule derives the variant activation schedule from the catalog.
// Entries are sorted by first-detected date, ties broken by id so the
// schedule is stable across loads.
func buildSchedule(variants map[string]Variant) []ScheduleEntry {
	entries := make([]ScheduleEntry, 0, len(variants))
	for id, v := range variants {
		entries = append(entries, ScheduleEntry{Date: v.FirstDetected, VariantID: id})
	}
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].Date.Equal(entries[j].Date) {
			return entries[i].Date.Before(entries[j].Date)
		}
		return entries[i].VariantID < entries[j].VariantID
	})
	return entries
}
