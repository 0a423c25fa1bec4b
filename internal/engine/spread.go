package engine

import (
	"math"

	"github.com/SenderoElectoral/covid-19-simulator/internal/dataset"
)

// Early-phase growth constants for the historical-blended model.
const (
	earlyGrowthRate   = 1.15 // daily growth during the first 30 days
	slowerGrowthRate  = 1.08 // daily growth from day 30 to day 90
	earlyPhaseDays    = 30
	blendedPhaseDays  = 90
	worldPopulation   = 7.8e9
	seedScaleDivisor  = 1e6
	densityCapFactor  = 2
	growthFactorCap   = 3
)

// updateSpread runs one day of case growth. The path choice is global:
// if the historical series covers the current month, every country goes
// through the historical-blended model; otherwise all go procedural.
func (e *Engine) updateSpread() {
	if e.data.HasMonth(e.current) {
		e.updateFromHistoricalData()
	} else {
		e.simulateSpread()
	}
}

// updateFromHistoricalData advances all anchored countries along their
// blended curves, then rebuilds the global aggregate by summation.
// Overwrite semantics: the historical path never accumulates globals
// incrementally.
func (e *Engine) updateFromHistoricalData() {
	e.updateCountriesHistoricalProgression()
	e.recomputeGlobalStats()
}

// updateCountriesHistoricalProgression applies the blended growth curve
// to every country with historical totals and a documented first-case
// date.
//
// The curve has four phases by whole days d since the first case:
// d=0 pins exactly one case; d<30 grows 15% daily from that single case;
// d<90 grows 8% daily from the day-30 baseline; beyond that the curve
// interpolates linearly toward the dataset's end-of-horizon totals.
func (e *Engine) updateCountriesHistoricalProgression() {
	for _, code := range sortedKeys(e.data.Totals) {
		totals := e.data.Totals[code]
		c, ok := e.countries[code]
		if !ok {
			continue
		}
		firstCase, known := dataset.FirstCaseDate(code)
		if !known {
			continue
		}

		if e.current.Before(firstCase) {
			// Not yet arrived: force the whole record to zero, whatever
			// the prior state was.
			c.Cases = 0
			c.Deaths = 0
			c.Recovered = 0
			c.Active = 0
			c.CasesPerCapita = 0
			c.DailyCases = 0
			c.DailyDeaths = 0
			c.Infected = false
			continue
		}

		d := daysBetween(firstCase, e.current)

		var cases, deaths, recovered int64
		switch {
		case d == 0:
			cases, deaths, recovered = 1, 0, 0

		case d < earlyPhaseDays:
			cases = int64(math.Floor(math.Pow(earlyGrowthRate, float64(d))))
			deaths = int64(math.Floor(float64(cases) * 0.02))
			recovered = int64(math.Floor(float64(cases) * 0.1))

		case d < blendedPhaseDays:
			base := math.Floor(math.Pow(earlyGrowthRate, earlyPhaseDays))
			cases = int64(math.Floor(base * math.Pow(slowerGrowthRate, float64(d-earlyPhaseDays))))
			deaths = int64(math.Floor(float64(cases) * 0.03))
			recovered = int64(math.Floor(float64(cases) * 0.3))

		default:
			maxDays := daysBetween(firstCase, e.cfg.End)
			progression := math.Min(float64(d)/float64(maxDays), 1)
			cases = int64(math.Floor(float64(totals.TotalCases) * progression))
			deaths = int64(math.Floor(float64(totals.TotalDeaths) * progression))
			recovered = int64(math.Floor(float64(totals.TotalRecovered) * progression))
		}

		c.Cases = cases
		c.Deaths = deaths
		c.Recovered = recovered
		c.Active = maxInt64(0, cases-deaths-recovered)
		c.CasesPerCapita = perCapita(cases, c.Population)

		if c.Cases > 0 && !c.Infected {
			c.Infected = true
			fc := firstCase
			c.FirstCaseDate = &fc
		}

		// Daily figures are a fraction of the day's cumulative values,
		// not a day-over-day delta.
		if d < earlyPhaseDays {
			c.DailyCases = maxInt64(1, int64(math.Floor(float64(cases)*0.15)))
			c.DailyDeaths = int64(math.Floor(float64(deaths) * 0.1))
		} else {
			c.DailyCases = int64(math.Floor(float64(cases) * 0.02))
			c.DailyDeaths = int64(math.Floor(float64(deaths) * 0.01))
		}
	}
}

// recomputeGlobalStats overwrites the global aggregate with sums over
// all country records.
func (e *Engine) recomputeGlobalStats() {
	var g GlobalStats
	for _, c := range e.countries {
		g.TotalCases += c.Cases
		g.TotalDeaths += c.Deaths
		g.TotalRecovered += c.Recovered
		g.ActiveCases += c.Active
		g.DailyCases += c.DailyCases
		g.DailyDeaths += c.DailyDeaths
	}
	e.global = g
}

// simulateSpread runs the procedural model for one day. New case counts
// are computed for every country first, against the same pre-day state,
// then applied; global totals accumulate incrementally on this path.
func (e *Engine) simulateSpread() {
	type infection struct {
		code     string
		newCases int64
	}
	var infections []infection

	for _, code := range e.sortedCountryCodes() {
		c := e.countries[code]
		if c.Active > 0 || e.shouldSpreadTo(c) {
			n := e.calculateNewCases(c)
			infections = append(infections, infection{code: code, newCases: n})

			if n > 0 && !c.Infected {
				c.Infected = true
				first := e.current
				c.FirstCaseDate = &first
			}
		}
	}

	for _, inf := range infections {
		c := e.countries[inf.code]
		c.Cases += inf.newCases
		c.Active += inf.newCases
		c.DailyCases = inf.newCases
		c.CasesPerCapita = perCapita(c.Cases, c.Population)

		e.global.TotalCases += inf.newCases
		e.global.ActiveCases += inf.newCases
	}
}

// shouldSpreadTo decides whether the virus reaches an uninfected country
// today. Already infected countries always qualify.
func (e *Engine) shouldSpreadTo(c *Country) bool {
	if c.Infected {
		return true
	}
	globalInfectionRate := float64(e.global.ActiveCases) / worldPopulation
	probability := globalInfectionRate * e.params.Infectivity * 0.001
	return e.rng.Float64() < probability
}

// calculateNewCases computes one country's new cases for the day.
//
// A country with no active cases goes through the seeding path: a draw
// scaled by global total cases may plant 1-10 initial cases. An active
// country grows by its effective R0 (base infectivity discounted by each
// active measure and by compliance), scaled by population density,
// uniform jitter in [0.8, 1.2], and a growth factor that ramps over the
// first simulated year. The result never pushes cumulative cases past
// the population.
func (e *Engine) calculateNewCases(c *Country) int64 {
	maxPossible := c.Population - c.Cases
	if maxPossible < 0 {
		maxPossible = 0
	}

	if c.Active == 0 {
		globalSpreadFactor := float64(e.global.TotalCases) / seedScaleDivisor
		if e.rng.Float64() < 0.001*globalSpreadFactor {
			return minInt64(int64(e.rng.Intn(10))+1, maxPossible)
		}
		return 0
	}

	effectiveR0 := e.params.Infectivity
	for _, id := range c.measuresSorted() {
		if m, ok := GovernmentMeasures[id]; ok {
			effectiveR0 *= 1 - m.Effectiveness
		}
	}
	effectiveR0 *= c.Response.Compliance

	baseNewCases := float64(c.Active) * (effectiveR0 / float64(e.params.Infectious))

	populationDensityFactor := math.Min(float64(c.Population)/seedScaleDivisor, densityCapFactor)
	randomFactor := 0.8 + e.rng.Float64()*0.4
	daysSinceStart := daysBetween(e.cfg.Start, e.current)
	growthFactor := math.Min(1+float64(daysSinceStart)/365, growthFactorCap)

	newCases := int64(math.Floor(baseNewCases * populationDensityFactor * randomFactor * growthFactor))
	return minInt64(newCases, maxPossible)
}

func perCapita(cases, population int64) float64 {
	if population <= 0 {
		return 0
	}
	return float64(cases) / float64(population) * 100000
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

func minInt64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
