package cli

import (
	"context"
	"database/sql"
	"errors"

	"github.com/spf13/cobra"

	"github.com/SenderoElectoral/covid-19-simulator/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	RunID    string
	FromDay  int
	ToDay    int
}

// TraceDayOut is one day of the serialized trace.
type TraceDayOut struct {
	Day            int    `json:"day"`
	Date           string `json:"date"`
	Variant        string `json:"variant"`
	TotalCases     int64  `json:"total_cases"`
	TotalDeaths    int64  `json:"total_deaths"`
	TotalRecovered int64  `json:"total_recovered"`
	ActiveCases    int64  `json:"active_cases"`
	DailyCases     int64  `json:"daily_cases"`
	DailyDeaths    int64  `json:"daily_deaths"`
}

// TraceResult holds the complete trace output for one run.
type TraceResult struct {
	RunID string        `json:"run_id"`
	Seed  int64         `json:"seed"`
	Mode  string        `json:"mode"`
	Days  []TraceDayOut `json:"days"`
}

// RunListEntry is one run in the listing printed when no run is named.
type RunListEntry struct {
	RunID     string `json:"run_id"`
	CreatedAt string `json:"created_at"`
	Dataset   string `json:"dataset"`
	Seed      int64  `json:"seed"`
	Mode      string `json:"mode"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Inspect persisted runs",
		Long: `Print the daily global series of a persisted run.

Without --run, lists the runs stored in the database, newest first.

Examples:
  covidsim trace --db ./runs.db
  covidsim trace --db ./runs.db --run 01921f33-...
  covidsim trace --db ./runs.db --run 01921f33-... --from 30 --to 60
  covidsim trace --db ./runs.db --run 01921f33-... --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "run id to trace")
	cmd.Flags().IntVar(&opts.FromDay, "from", 0, "first day to print (1-based)")
	cmd.Flags().IntVar(&opts.ToDay, "to", 0, "last day to print (0 = last persisted)")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	if opts.RunID == "" {
		return listRuns(ctx, st, formatter)
	}
	return traceRun(ctx, st, opts, formatter)
}

func listRuns(ctx context.Context, st *store.Store, formatter *OutputFormatter) error {
	runs, err := st.ListRuns(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}

	entries := make([]RunListEntry, 0, len(runs))
	for _, run := range runs {
		entries = append(entries, RunListEntry{
			RunID:     run.ID,
			CreatedAt: run.CreatedAt.Format("2006-01-02 15:04:05"),
			Dataset:   run.DatasetDir,
			Seed:      run.Seed,
			Mode:      run.Mode,
		})
	}

	if formatter.Format == "json" {
		return formatter.Success("", entries)
	}

	if len(entries) == 0 {
		return formatter.Success("No runs stored.", entries)
	}
	p := formatter.Printer()
	for _, e := range entries {
		p.Fprintf(formatter.Writer, "%s  %s  dataset=%s seed=%d mode=%s\n",
			e.RunID, e.CreatedAt, e.Dataset, e.Seed, e.Mode)
	}
	return nil
}

func traceRun(ctx context.Context, st *store.Store, opts *TraceOptions, formatter *OutputFormatter) error {
	run, err := st.GetRun(ctx, opts.RunID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return NewExitError(ExitCommandError, "run not found: "+opts.RunID)
		}
		return WrapExitError(ExitCommandError, "failed to read run", err)
	}

	var records []store.DayRecord
	if opts.FromDay > 0 || opts.ToDay > 0 {
		from := opts.FromDay
		if from <= 0 {
			from = 1
		}
		to := opts.ToDay
		if to <= 0 {
			last, err := st.LastSnapshot(ctx, run.ID)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to read snapshots", err)
			}
			to = last.Day
		}
		records, err = st.SnapshotRange(ctx, run.ID, from, to)
	} else {
		records, err = st.Snapshots(ctx, run.ID)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read snapshots", err)
	}

	result := TraceResult{
		RunID: run.ID,
		Seed:  run.Seed,
		Mode:  run.Mode,
		Days:  make([]TraceDayOut, 0, len(records)),
	}
	for _, rec := range records {
		result.Days = append(result.Days, TraceDayOut{
			Day:            rec.Day,
			Date:           rec.Date.Format("2006-01-02"),
			Variant:        rec.Variant,
			TotalCases:     rec.Global.TotalCases,
			TotalDeaths:    rec.Global.TotalDeaths,
			TotalRecovered: rec.Global.TotalRecovered,
			ActiveCases:    rec.Global.ActiveCases,
			DailyCases:     rec.Global.DailyCases,
			DailyDeaths:    rec.Global.DailyDeaths,
		})
	}

	if formatter.Format == "json" {
		return formatter.Success("", result)
	}

	p := formatter.Printer()
	p.Fprintf(formatter.Writer, "Run %s (seed %d, mode %s)\n", result.RunID, result.Seed, result.Mode)
	for _, day := range result.Days {
		p.Fprintf(formatter.Writer, "  day %4d  %s  %-10s cases %d (+%d)  deaths %d (+%d)  recovered %d  active %d\n",
			day.Day, day.Date, day.Variant,
			day.TotalCases, day.DailyCases,
			day.TotalDeaths, day.DailyDeaths,
			day.TotalRecovered, day.ActiveCases)
	}
	return nil
}
