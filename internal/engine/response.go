package engine

import (
	"log/slog"
	"math"
)

// Alert-level thresholds on cases per 100k population.
func alertLevelFor(casesPerCapita float64) int {
	switch {
	case casesPerCapita > 1000:
		return 4
	case casesPerCapita > 500:
		return 3
	case casesPerCapita > 100:
		return 2
	case casesPerCapita > 10:
		return 1
	default:
		return 0
	}
}

// measureBundle is the fixed measure set adopted at each alert level.
func measureBundle(alertLevel int) []string {
	switch alertLevel {
	case 4:
		return []string{"lockdown_full", "border_closure", "mask_mandate", "event_ban", "curfew"}
	case 3:
		return []string{"lockdown_partial", "mask_mandate", "event_ban", "border_closure"}
	case 2:
		return []string{"mask_mandate", "event_ban"}
	case 1:
		return []string{"mask_mandate"}
	default:
		return nil
	}
}

// updateGovernmentResponses escalates alert levels from per-capita case
// counts and adopts the corresponding measure bundles. A no-op in
// government mode, where all measure changes come from explicit calls.
// Alert levels only ever rise here; measures are unioned in and never
// automatically removed.
func (e *Engine) updateGovernmentResponses() {
	if e.mode == ModeGovernment {
		return
	}

	for _, code := range e.sortedCountryCodes() {
		c := e.countries[code]
		if !c.Infected {
			continue
		}

		newLevel := alertLevelFor(c.CasesPerCapita)
		if newLevel > c.Response.AlertLevel {
			c.Response.AlertLevel = newLevel
			e.implementMeasures(c, newLevel)
		}
	}
}

// implementMeasures adopts the bundle for an alert level. Adoption is
// probabilistic: a politically stable government is more likely to act
// the day it escalates.
func (e *Engine) implementMeasures(c *Country, alertLevel int) {
	bundle := measureBundle(alertLevel)
	if e.rng.Float64() >= c.Response.PoliticalStability {
		return
	}

	for _, id := range bundle {
		c.ActiveMeasures[id] = true
	}
	stamp := e.current
	c.LastMeasureDate = &stamp

	slog.Debug("measures adopted",
		"country", c.Code,
		"alertLevel", alertLevel,
		"measures", bundle,
	)
}

// ApplyGovernmentMeasure toggles a measure for a country: active
// measures are removed, inactive ones added. Unknown country codes or
// measure ids are silent no-ops.
//
// After a toggle the country's effective infectivity is recomputed from
// the summed effectiveness of its active measures, capped at a 95%
// reduction. The field is informational; the spread formula derives its
// own effective R0 from the active set.
func (e *Engine) ApplyGovernmentMeasure(countryCode, measureID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	c, ok := e.countries[countryCode]
	if !ok {
		return
	}
	if _, ok := GovernmentMeasures[measureID]; !ok {
		return
	}

	if c.ActiveMeasures[measureID] {
		delete(c.ActiveMeasures, measureID)
	} else {
		c.ActiveMeasures[measureID] = true
	}

	var totalEffectiveness float64
	for _, id := range c.measuresSorted() {
		if m, ok := GovernmentMeasures[id]; ok {
			totalEffectiveness += m.Effectiveness
		}
	}
	totalEffectiveness = math.Min(totalEffectiveness, 0.95)
	c.EffectiveInfectivity = e.params.Infectivity * (1 - totalEffectiveness)
}

// MeasureActive reports whether a measure is currently in force for a
// country. Unknown codes report false.
func (e *Engine) MeasureActive(countryCode, measureID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	c, ok := e.countries[countryCode]
	if !ok {
		return false
	}
	return c.ActiveMeasures[measureID]
}
