package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOutcomes_DefaultParamsArithmetic(t *testing.T) {
	// Infectious 10 gives a recovery rate of 1/17. Of 10000 active:
	// floor(10000/17 * 0.95) = 558 recover, floor(10000/17 * 0.02) = 11 die.
	e := newTestEngine(t, testDataset(), Config{Start: date(2023, 1, 1), End: date(2023, 12, 31)})

	e.mu.Lock()
	esp := e.countries["ESP"]
	esp.Cases = 10_000
	esp.Active = 10_000
	e.global = GlobalStats{TotalCases: 10_000, ActiveCases: 10_000}
	e.updateOutcomes()
	e.mu.Unlock()

	assert.Equal(t, int64(558), esp.Recovered)
	assert.Equal(t, int64(11), esp.Deaths)
	assert.Equal(t, int64(9_431), esp.Active)
	assert.Equal(t, int64(11), esp.DailyDeaths)

	assert.Equal(t, int64(558), e.global.TotalRecovered)
	assert.Equal(t, int64(11), e.global.TotalDeaths)
	assert.Equal(t, int64(9_431), e.global.ActiveCases)
}

func TestOutcomes_SkippedOnHistoricalDays(t *testing.T) {
	e := newTestEngine(t, testDataset("2020-01"), Config{Start: date(2020, 1, 15)})

	e.mu.Lock()
	chn := e.countries["CHN"]
	chn.Active = 10_000
	e.updateOutcomes()
	e.mu.Unlock()

	assert.Equal(t, int64(10_000), chn.Active, "historical days already embed outcomes")
	assert.Equal(t, int64(0), chn.Deaths)
}

func TestOutcomes_ZeroActiveSkipped(t *testing.T) {
	e := newTestEngine(t, testDataset(), Config{Start: date(2023, 1, 1)})

	e.mu.Lock()
	tha := e.countries["THA"]
	tha.Recovered = 7
	e.updateOutcomes()
	e.mu.Unlock()

	assert.Equal(t, int64(7), tha.Recovered)
	assert.Equal(t, int64(0), tha.Deaths)
}

func TestOutcomes_NeverDriveActiveNegative(t *testing.T) {
	e := newTestEngine(t, testDataset(), Config{Start: date(2023, 1, 1)})
	mortality := 10_000.0
	e.UpdateVirusParams(VirusParamsUpdate{Mortality: &mortality})

	e.mu.Lock()
	esp := e.countries["ESP"]
	esp.Cases = 10_000
	esp.Active = 10_000
	e.updateOutcomes()
	e.mu.Unlock()

	assert.Equal(t, int64(0), esp.Active)
	assert.Equal(t, int64(558), esp.Recovered)
	assert.Equal(t, int64(9_442), esp.Deaths, "deaths clamp to remaining active")
}
