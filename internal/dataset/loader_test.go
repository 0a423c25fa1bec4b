package dataset

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Valid(t *testing.T) {
	ds, err := Load(filepath.Join("testdata", "valid"))
	require.NoError(t, err)

	assert.Equal(t, int64(1_400_000_000), ds.Population["CHN"])
	assert.Len(t, ds.Population, 4)

	// Historical month presence drives spread path selection.
	assert.True(t, ds.HasMonth(time.Date(2020, 1, 15, 0, 0, 0, 0, time.UTC)))
	assert.True(t, ds.HasMonth(time.Date(2020, 2, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, ds.HasMonth(time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC)))

	require.Contains(t, ds.Totals, "CHN")
	assert.Equal(t, int64(99_000_000), ds.Totals["CHN"].TotalCases)
	assert.Equal(t, int64(120_000), ds.Totals["CHN"].TotalDeaths)

	require.Len(t, ds.Variants, 4)
	assert.Equal(t, "Ómicron", ds.Variants["omicron"].Name)
	assert.InDelta(t, 3.2, ds.Variants["omicron"].Transmissibility, 1e-9)
}

func TestLoad_ScheduleOrderedByFirstDetected(t *testing.T) {
	ds, err := Load(filepath.Join("testdata", "valid"))
	require.NoError(t, err)

	require.Len(t, ds.Schedule, 4)
	var ids []string
	for _, entry := range ds.Schedule {
		ids = append(ids, entry.VariantID)
	}
	assert.Equal(t, []string{"original", "alpha", "delta", "omicron"}, ids)
	assert.Equal(t, time.Date(2020, 12, 20, 0, 0, 0, 0, time.UTC), ds.Schedule[1].Date)
}

func TestLoad_EventsSortedByDate(t *testing.T) {
	ds, err := Load(filepath.Join("testdata", "valid"))
	require.NoError(t, err)

	require.Len(t, ds.Events, 3)
	assert.Equal(t, EventLockdown, ds.Events[0].Type)
	assert.Equal(t, time.Date(2020, 3, 11, 0, 0, 0, 0, time.UTC), ds.Events[0].Date)
	for i := 1; i < len(ds.Events); i++ {
		assert.False(t, ds.Events[i].Date.Before(ds.Events[i-1].Date), "events out of order at %d", i)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join("testdata", "missing"))
	require.Error(t, err)

	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, ErrCodeMissingFile, loadErr.Code)
	assert.Equal(t, EventsFile, loadErr.File)
}

func TestLoad_BadJSON(t *testing.T) {
	_, err := Load(filepath.Join("testdata", "bad-json"))
	require.Error(t, err)

	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, ErrCodeBadJSON, loadErr.Code)
	assert.Equal(t, CovidDataFile, loadErr.File)
}

func TestLoad_SchemaViolation(t *testing.T) {
	_, err := Load(filepath.Join("testdata", "bad-schema"))
	require.Error(t, err)

	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, ErrCodeSchema, loadErr.Code)
	assert.Equal(t, PopulationFile, loadErr.File)
}

func TestLoad_NonexistentDir(t *testing.T) {
	_, err := Load(filepath.Join("testdata", "no-such-dir"))
	require.Error(t, err)

	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, ErrCodeMissingFile, loadErr.Code)
}

func TestFirstCaseDate(t *testing.T) {
	chn, ok := FirstCaseDate("CHN")
	require.True(t, ok)
	assert.Equal(t, time.Date(2019, 12, 31, 0, 0, 0, 0, time.UTC), chn)

	tha, ok := FirstCaseDate("THA")
	require.True(t, ok)
	assert.Equal(t, time.Date(2020, 1, 13, 0, 0, 0, 0, time.UTC), tha)

	_, ok = FirstCaseDate("XXX")
	assert.False(t, ok)
}

func TestCountryName(t *testing.T) {
	assert.Equal(t, "España", CountryName("ESP"))
	assert.Equal(t, "Corea del Sur", CountryName("KOR"))
	assert.Equal(t, "ZZZ", CountryName("ZZZ"))
}
