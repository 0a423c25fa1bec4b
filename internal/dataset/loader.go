package dataset

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	cuejson "cuelang.org/go/encoding/json"
)

//go:embed schema.cue
var schemaSource string

// Input file names inside a data directory.
const (
	PopulationFile = "country_population.json"
	CovidDataFile  = "covid_data.json"
	EventsFile     = "events.json"
)

// Load error codes.
const (
	ErrCodeMissingFile = "MISSING_FILE"
	ErrCodeBadJSON     = "BAD_JSON"
	ErrCodeSchema      = "SCHEMA_VIOLATION"
	ErrCodeBadData     = "BAD_DATA"
)

// LoadError is a structured dataset load failure. Any LoadError is fatal
// to initialization: the engine must not start on a partially loaded
// dataset.
type LoadError struct {
	Code    string
	File    string
	Message string
}

func (e *LoadError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s: %s: %s", e.File, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Raw file shapes. Dates stay strings here; conversion happens after the
// CUE schema has guaranteed the format.
type rawVariant struct {
	Name             string  `json:"name"`
	Transmissibility float64 `json:"transmissibility"`
	Severity         float64 `json:"severity"`
	FirstDetected    string  `json:"first_detected"`
}

type rawCovidData struct {
	MonthlyData map[string]json.RawMessage `json:"monthly_data"`
	Countries   map[string]CountryTotals   `json:"countries"`
	Variants    map[string]rawVariant      `json:"variants"`
}

type rawEvent struct {
	Date        string `json:"date"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

type rawEvents struct {
	Events []rawEvent `json:"events"`
}

// Load reads and validates all input tables from dir.
//
// Each file is validated against the embedded CUE schema before decoding;
// the first failure aborts the load. The returned Dataset is complete:
// population, historical series, variant catalog (with derived schedule),
// and event list.
func Load(dir string) (*Dataset, error) {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile embedded schema: %w", err)
	}

	var population map[string]int64
	if err := loadFile(ctx, schema, dir, PopulationFile, "#Population", &population); err != nil {
		return nil, err
	}

	var covid rawCovidData
	if err := loadFile(ctx, schema, dir, CovidDataFile, "#CovidData", &covid); err != nil {
		return nil, err
	}

	var events rawEvents
	if err := loadFile(ctx, schema, dir, EventsFile, "#Events", &events); err != nil {
		return nil, err
	}

	ds := &Dataset{
		Population: population,
		Months:     make(map[string]struct{}, len(covid.MonthlyData)),
		Totals:     covid.Countries,
		Variants:   make(map[string]Variant, len(covid.Variants)),
	}
	for month := range covid.MonthlyData {
		ds.Months[month] = struct{}{}
	}

	for id, rv := range covid.Variants {
		detected, err := parseDate(rv.FirstDetected)
		if err != nil {
			return nil, &LoadError{
				Code:    ErrCodeBadData,
				File:    CovidDataFile,
				Message: fmt.Sprintf("variant %s: invalid first_detected %q", id, rv.FirstDetected),
			}
		}
		ds.Variants[id] = Variant{
			ID:               id,
			Name:             rv.Name,
			Transmissibility: rv.Transmissibility,
			Severity:         rv.Severity,
			FirstDetected:    detected,
		}
	}
	ds.Schedule = buildSchedule(ds.Variants)

	ds.Events = make([]Event, 0, len(events.Events))
	for _, re := range events.Events {
		date, err := parseDate(re.Date)
		if err != nil {
			return nil, &LoadError{
				Code:    ErrCodeBadData,
				File:    EventsFile,
				Message: fmt.Sprintf("event %q: invalid date %q", re.Description, re.Date),
			}
		}
		ds.Events = append(ds.Events, Event{
			Date:        date,
			Type:        EventType(re.Type),
			Description: re.Description,
		})
	}
	sort.SliceStable(ds.Events, func(i, j int) bool { return ds.Events[i].Date.Before(ds.Events[j].Date) })

	slog.Debug("dataset loaded",
		"dir", dir,
		"countries", len(ds.Population),
		"months", len(ds.Months),
		"variants", len(ds.Variants),
		"events", len(ds.Events),
	)

	return ds, nil
}

// loadFile reads one JSON input, unifies it with the named schema
// definition, and decodes it into target on success.
func loadFile(ctx *cue.Context, schema cue.Value, dir, name, definition string, target any) error {
	path := filepath.Join(dir, name)
	raw, err := os.ReadFile(path)
	if err != nil {
		return &LoadError{Code: ErrCodeMissingFile, File: name, Message: err.Error()}
	}

	expr, err := cuejson.Extract(name, raw)
	if err != nil {
		return &LoadError{Code: ErrCodeBadJSON, File: name, Message: err.Error()}
	}

	def := schema.LookupPath(cue.ParsePath(definition))
	if err := def.Err(); err != nil {
		return fmt.Errorf("lookup schema definition %s: %w", definition, err)
	}

	unified := def.Unify(ctx.BuildExpr(expr))
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return &LoadError{
			Code:    ErrCodeSchema,
			File:    name,
			Message: cueerrors.Details(err, nil),
		}
	}

	if err := json.Unmarshal(raw, target); err != nil {
		return &LoadError{Code: ErrCodeBadJSON, File: name, Message: err.Error()}
	}

	return nil
}

// parseDate parses a YYYY-MM-DD date at UTC midnight.
func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}
