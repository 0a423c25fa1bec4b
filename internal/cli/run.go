package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/SenderoElectoral/covid-19-simulator/internal/dataset"
	"github.com/SenderoElectoral/covid-19-simulator/internal/engine"
	"github.com/SenderoElectoral/covid-19-simulator/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	DataDir  string
	Database string
	Config   string
	Days     int
	Seed     int64
	Speed    float64
	Mode     string
	Start    string
	End      string
	Realtime bool
}

// RunConfig is the optional YAML run configuration. Explicitly set
// flags override its values.
type RunConfig struct {
	Seed  int64   `yaml:"seed,omitempty"`
	Speed float64 `yaml:"speed,omitempty"`
	Mode  string  `yaml:"mode,omitempty"`
	Start string  `yaml:"start,omitempty"`
	End   string  `yaml:"end,omitempty"`
	Days  int     `yaml:"days,omitempty"`
}

// RunSummary is the JSON payload printed after a completed run.
type RunSummary struct {
	RunID          string `json:"run_id"`
	Days           int    `json:"days"`
	FinalDate      string `json:"final_date"`
	TotalCases     int64  `json:"total_cases"`
	TotalDeaths    int64  `json:"total_deaths"`
	TotalRecovered int64  `json:"total_recovered"`
	ActiveCases    int64  `json:"active_cases"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a simulation",
		Long: `Run a day-stepped epidemic simulation over a dataset.

By default the simulation advances synchronously as fast as possible.
With --realtime the wall-clock scheduler paces the run at one simulated
day per second divided by --speed, until the day budget or Ctrl-C.

When --db is given, the run and every daily snapshot are persisted and
can be inspected later with the trace command.

Examples:
  covidsim run --data ./data --days 365 --seed 42
  covidsim run --data ./data --db ./runs.db --days 90 --mode government
  covidsim run --data ./data --realtime --speed 2
  covidsim run --data ./data --config run.yaml`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulation(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DataDir, "data", "", "dataset directory (required)")
	_ = cmd.MarkFlagRequired("data")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database for run persistence")
	cmd.Flags().StringVar(&opts.Config, "config", "", "YAML run configuration file")
	cmd.Flags().IntVar(&opts.Days, "days", 0, "number of days to simulate (0 = until end date)")
	cmd.Flags().Int64Var(&opts.Seed, "seed", 1, "deterministic RNG seed")
	cmd.Flags().Float64Var(&opts.Speed, "speed", 1, "speed multiplier, clamped to [0.1, 5]")
	cmd.Flags().StringVar(&opts.Mode, "mode", "virus", "control mode (virus|government)")
	cmd.Flags().StringVar(&opts.Start, "start", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.End, "end", "", "end date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&opts.Realtime, "realtime", false, "pace the run on the wall clock")

	return cmd
}

func runSimulation(opts *RunOptions, cmd *cobra.Command) error {
	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: logLevel,
	})))

	if opts.Config != "" {
		if err := applyRunConfig(opts, cmd); err != nil {
			return err
		}
	}

	cfg, err := buildEngineConfig(opts)
	if err != nil {
		return err
	}

	slog.Info("loading dataset", "dir", opts.DataDir)
	ds, err := dataset.Load(opts.DataDir)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to load dataset", err)
	}
	slog.Info("dataset loaded",
		"countries", len(ds.Population),
		"months", len(ds.Months),
		"variants", len(ds.Variants),
		"events", len(ds.Events))

	eng := engine.New(ds, cfg)
	eng.SetSpeed(opts.Speed)

	var st *store.Store
	runID := uuid.Must(uuid.NewV7()).String()
	if opts.Database != "" {
		st, err = store.Open(opts.Database)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				slog.Error("error closing database", "error", closeErr)
			}
		}()

		run := store.Run{
			ID:         runID,
			DatasetDir: opts.DataDir,
			Seed:       cfg.Seed,
			Mode:       opts.Mode,
			Speed:      eng.Speed(),
			StartDate:  eng.CurrentDate(),
			EndDate:    cfg.End,
		}
		if err := st.InsertRun(cmd.Context(), run); err != nil {
			return WrapExitError(ExitCommandError, "failed to register run", err)
		}
		slog.Info("run registered", "run_id", runID, "db", opts.Database)
	}

	var final *engine.Snapshot
	if opts.Realtime {
		final, err = runRealtime(opts, cmd, eng, st, runID)
	} else {
		final, err = runSynchronous(opts, cmd, eng, st, runID)
	}
	if err != nil {
		return err
	}
	if final == nil {
		return NewExitError(ExitFailure, "simulation produced no days")
	}

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	summary := RunSummary{
		RunID:          runID,
		Days:           final.Day,
		FinalDate:      final.Date.Format("2006-01-02"),
		TotalCases:     final.GlobalStats.TotalCases,
		TotalDeaths:    final.GlobalStats.TotalDeaths,
		TotalRecovered: final.GlobalStats.TotalRecovered,
		ActiveCases:    final.GlobalStats.ActiveCases,
	}
	text := formatter.Printer().Sprintf(
		"Run %s: %d days to %s\n  cases %d, deaths %d, recovered %d, active %d",
		summary.RunID, summary.Days, summary.FinalDate,
		summary.TotalCases, summary.TotalDeaths, summary.TotalRecovered, summary.ActiveCases)
	return formatter.Success(text, summary)
}

// applyRunConfig merges the YAML configuration into opts. Flags the user
// set explicitly win over the file.
func applyRunConfig(opts *RunOptions, cmd *cobra.Command) error {
	data, err := os.ReadFile(opts.Config)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read config", err)
	}
	var cfg RunConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return WrapExitError(ExitCommandError, "failed to parse config", err)
	}

	flags := cmd.Flags()
	if cfg.Seed != 0 && !flags.Changed("seed") {
		opts.Seed = cfg.Seed
	}
	if cfg.Speed != 0 && !flags.Changed("speed") {
		opts.Speed = cfg.Speed
	}
	if cfg.Mode != "" && !flags.Changed("mode") {
		opts.Mode = cfg.Mode
	}
	if cfg.Start != "" && !flags.Changed("start") {
		opts.Start = cfg.Start
	}
	if cfg.End != "" && !flags.Changed("end") {
		opts.End = cfg.End
	}
	if cfg.Days != 0 && !flags.Changed("days") {
		opts.Days = cfg.Days
	}
	return nil
}

func buildEngineConfig(opts *RunOptions) (engine.Config, error) {
	cfg := engine.Config{Seed: opts.Seed, Speed: opts.Speed}

	switch opts.Mode {
	case "virus", "":
		cfg.Mode = engine.ModeVirus
	case "government":
		cfg.Mode = engine.ModeGovernment
	default:
		return engine.Config{}, NewExitError(ExitCommandError, fmt.Sprintf("unknown mode %q", opts.Mode))
	}

	if opts.Start != "" {
		start, err := time.Parse("2006-01-02", opts.Start)
		if err != nil {
			return engine.Config{}, WrapExitError(ExitCommandError, "bad start date", err)
		}
		cfg.Start = start
	}
	if opts.End != "" {
		end, err := time.Parse("2006-01-02", opts.End)
		if err != nil {
			return engine.Config{}, WrapExitError(ExitCommandError, "bad end date", err)
		}
		cfg.End = end
	}
	if opts.Days < 0 {
		return engine.Config{}, NewExitError(ExitCommandError, "days must not be negative")
	}

	return cfg, nil
}

// runSynchronous advances the engine as fast as possible, persisting
// every tick when a store is attached. Returns the final tick snapshot.
func runSynchronous(opts *RunOptions, cmd *cobra.Command, eng *engine.Engine, st *store.Store, runID string) (*engine.Snapshot, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var final *engine.Snapshot
	for day := 0; opts.Days == 0 || day < opts.Days; day++ {
		if ctx.Err() != nil {
			break
		}
		if !eng.AdvanceDay() {
			break
		}
		snap, err := drainNotifications(ctx, eng, st, runID)
		if err != nil {
			return nil, err
		}
		if snap != nil {
			final = snap
		}
	}
	return final, nil
}

// runRealtime paces the run on the wall-clock scheduler until the day
// budget is exhausted, the end date passes, or a signal arrives.
func runRealtime(opts *RunOptions, cmd *cobra.Command, eng *engine.Engine, st *store.Store, runID string) (*engine.Snapshot, error) {
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	eng.Start()
	defer eng.Stop()
	fmt.Fprintln(cmd.OutOrStdout(), "Simulation started. Press Ctrl-C to stop.")

	queue := eng.Notifications()
	var final *engine.Snapshot
	for {
		select {
		case <-ctx.Done():
			return final, nil
		case <-queue.Wait():
		}

		snap, err := drainNotifications(ctx, eng, st, runID)
		if err != nil {
			return nil, err
		}
		if snap != nil {
			final = snap
			if opts.Days > 0 && snap.Day >= opts.Days {
				return final, nil
			}
		}
		if eng.Done() {
			return final, nil
		}
	}
}

// drainNotifications empties the queue, persisting ticks and logging
// events. Returns the newest tick snapshot seen, if any.
func drainNotifications(ctx context.Context, eng *engine.Engine, st *store.Store, runID string) (*engine.Snapshot, error) {
	var last *engine.Snapshot
	queue := eng.Notifications()
	for {
		note, ok := queue.TryNext()
		if !ok {
			return last, nil
		}

		switch note.Type {
		case engine.NoteTick:
			last = note.Snapshot
			if st != nil {
				if err := st.InsertSnapshot(ctx, runID, note.Snapshot); err != nil {
					return nil, WrapExitError(ExitCommandError, "failed to persist snapshot", err)
				}
			}

		case engine.NoteHistoricalEvent:
			slog.Info("historical event",
				"date", note.Event.Date.Format("2006-01-02"),
				"type", note.Event.Type,
				"description", note.Event.Description)

		case engine.NoteVariantChanged:
			slog.Info("variant changed", "variant", note.VariantID)
		}
	}
}
