package store

import (
	"time"

	"github.com/SenderoElectoral/covid-19-simulator/internal/engine"
)

// Run is one row of the runs table: the parameters a simulation was
// launched with. ID is a UUIDv7 so lexicographic order matches launch
// order.
type Run struct {
	ID         string
	DatasetDir string
	Seed       int64
	Mode       string
	Speed      float64
	StartDate  time.Time
	EndDate    time.Time
	CreatedAt  time.Time
}

// DayRecord is one persisted day of a run: the global series columns
// plus the per-country breakdown.
type DayRecord struct {
	RunID   string
	Day     int
	Date    time.Time
	Variant string

	Global    engine.GlobalStats
	Countries map[string]*engine.Country
}

const dateLayout = "2006-01-02"
