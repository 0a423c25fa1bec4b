package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlertLevelFor_Thresholds(t *testing.T) {
	cases := []struct {
		perCapita float64
		want      int
	}{
		{0, 0},
		{10, 0},
		{10.5, 1},
		{100, 1},
		{101, 2},
		{500, 2},
		{501, 3},
		{1000, 3},
		{1001, 4},
		{250_000, 4},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, alertLevelFor(tc.perCapita), "perCapita=%v", tc.perCapita)
	}
}

func TestMeasureBundle_PerLevel(t *testing.T) {
	assert.Equal(t, []string{"mask_mandate"}, measureBundle(1))
	assert.Equal(t, []string{"mask_mandate", "event_ban"}, measureBundle(2))
	assert.Equal(t, []string{"lockdown_partial", "mask_mandate", "event_ban", "border_closure"}, measureBundle(3))
	assert.Equal(t, []string{"lockdown_full", "border_closure", "mask_mandate", "event_ban", "curfew"}, measureBundle(4))
	assert.Nil(t, measureBundle(0))
}

func TestGovernmentResponse_EscalatesAndAdopts(t *testing.T) {
	e := newTestEngine(t, testDataset(), Config{Start: date(2023, 1, 1), End: date(2023, 12, 31)})

	e.mu.Lock()
	esp := e.countries["ESP"]
	esp.Infected = true
	esp.CasesPerCapita = 2000
	esp.Response.PoliticalStability = 1.0 // adoption draw always succeeds
	e.updateGovernmentResponses()
	e.mu.Unlock()

	assert.Equal(t, 4, esp.Response.AlertLevel)
	for _, id := range measureBundle(4) {
		assert.True(t, esp.ActiveMeasures[id], "measure %s should be adopted", id)
	}
	require.NotNil(t, esp.LastMeasureDate)
	assert.Equal(t, date(2023, 1, 1), *esp.LastMeasureDate)
}

func TestGovernmentResponse_AlertLevelMonotone(t *testing.T) {
	e := newTestEngine(t, testDataset("2020-01", "2020-02", "2020-03", "2020-04", "2020-05"), Config{
		Start: date(2020, 1, 1),
		End:   date(2020, 12, 31),
	})

	prev := make(map[string]int)
	for i := 0; i < 150; i++ {
		require.True(t, e.AdvanceDay())
		for code, c := range e.State().Countries {
			assert.GreaterOrEqual(t, c.Response.AlertLevel, prev[code],
				"alert level decreased for %s", code)
			prev[code] = c.Response.AlertLevel
		}
	}
}

func TestGovernmentResponse_SkippedInGovernmentMode(t *testing.T) {
	e := newTestEngine(t, testDataset(), Config{
		Start: date(2023, 1, 1),
		End:   date(2023, 12, 31),
		Mode:  ModeGovernment,
	})

	e.mu.Lock()
	esp := e.countries["ESP"]
	esp.Infected = true
	esp.Cases = 1_000_000
	esp.Active = 500_000
	esp.CasesPerCapita = 2000
	e.mu.Unlock()

	require.True(t, e.AdvanceDay())

	esp = e.State().Countries["ESP"]
	assert.Equal(t, 0, esp.Response.AlertLevel, "no automatic escalation in government mode")
	assert.Empty(t, esp.ActiveMeasures)
}

func TestApplyGovernmentMeasure_ToggleRoundTrip(t *testing.T) {
	e := newTestEngine(t, testDataset(), Config{})
	base := e.VirusParams().Infectivity

	e.ApplyGovernmentMeasure("ESP", "lockdown_full")
	assert.True(t, e.MeasureActive("ESP", "lockdown_full"))
	esp := e.State().Countries["ESP"]
	assert.InDelta(t, base*(1-0.8), esp.EffectiveInfectivity, 1e-12)

	e.ApplyGovernmentMeasure("ESP", "lockdown_full")
	assert.False(t, e.MeasureActive("ESP", "lockdown_full"))
	esp = e.State().Countries["ESP"]
	assert.Empty(t, esp.ActiveMeasures, "toggle twice restores the pre-toggle set")
	assert.InDelta(t, base, esp.EffectiveInfectivity, 1e-12, "effective infectivity back to baseline")
}

func TestApplyGovernmentMeasure_EffectivenessSumCapped(t *testing.T) {
	e := newTestEngine(t, testDataset(), Config{})
	base := e.VirusParams().Infectivity

	// Sum of all seven measures is 3.1, far past the 0.95 cap.
	for id := range GovernmentMeasures {
		e.ApplyGovernmentMeasure("CHN", id)
	}

	chn := e.State().Countries["CHN"]
	assert.Len(t, chn.ActiveMeasures, len(GovernmentMeasures))
	assert.InDelta(t, base*0.05, chn.EffectiveInfectivity, 1e-12)
}

func TestApplyGovernmentMeasure_InvalidInputsAreNoOps(t *testing.T) {
	e := newTestEngine(t, testDataset(), Config{})

	e.ApplyGovernmentMeasure("XXX", "mask_mandate")
	e.ApplyGovernmentMeasure("ESP", "confetti_cannon")
	e.ApplyGovernmentMeasure("", "")

	esp := e.State().Countries["ESP"]
	assert.Empty(t, esp.ActiveMeasures)
}
