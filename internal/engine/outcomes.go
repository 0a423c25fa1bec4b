package engine

import "math"

// updateOutcomes resolves active cases into recoveries and deaths. It
// only runs on procedural days: when the historical path handled the
// date, cumulative totals already embed the outcomes.
//
// Global totals accumulate incrementally here, matching the procedural
// spread path's aggregation strategy.
func (e *Engine) updateOutcomes() {
	if e.data.HasMonth(e.current) {
		return
	}

	recoveryRate := 1 / float64(e.params.Infectious+7)

	for _, code := range e.sortedCountryCodes() {
		c := e.countries[code]
		if c.Active == 0 {
			continue
		}

		newRecoveries := int64(math.Floor(float64(c.Active) * recoveryRate * 0.95))
		newDeaths := int64(math.Floor(float64(c.Active) * recoveryRate * e.params.Mortality / 100))

		// Guard against extreme parameter updates driving active negative.
		newRecoveries = minInt64(newRecoveries, c.Active)
		newDeaths = minInt64(newDeaths, c.Active-newRecoveries)

		c.Recovered += newRecoveries
		c.Deaths += newDeaths
		c.Active -= newRecoveries + newDeaths
		c.DailyDeaths = newDeaths

		e.global.TotalRecovered += newRecoveries
		e.global.TotalDeaths += newDeaths
		e.global.ActiveCases -= newRecoveries + newDeaths
	}
}
