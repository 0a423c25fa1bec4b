package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/SenderoElectoral/covid-19-simulator/internal/dataset"
)

// ValidationResult holds validation results for a dataset directory.
type ValidationResult struct {
	Valid     bool   `json:"valid"`
	Countries int    `json:"countries,omitempty"`
	Months    int    `json:"months,omitempty"`
	Variants  int    `json:"variants,omitempty"`
	Events    int    `json:"events,omitempty"`
	Code      string `json:"code,omitempty"`
	File      string `json:"file,omitempty"`
	Message   string `json:"message,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <dataset-dir>",
		Short: "Validate a dataset directory",
		Long: `Validate the JSON dataset files without starting a simulation.

Checks that country_population.json, covid_data.json and events.json
exist, parse, and satisfy their schemas.

Examples:
  covidsim validate ./data
  covidsim validate ./data --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, dir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	ds, err := dataset.Load(dir)
	if err != nil {
		var loadErr *dataset.LoadError
		if errors.As(err, &loadErr) {
			_ = formatter.Error(loadErr.Code, loadErr.Message, ValidationResult{
				Valid:   false,
				Code:    loadErr.Code,
				File:    loadErr.File,
				Message: loadErr.Message,
			})
			return NewExitError(ExitFailure, "dataset validation failed")
		}
		return WrapExitError(ExitCommandError, "failed to load dataset", err)
	}

	result := ValidationResult{
		Valid:     true,
		Countries: len(ds.Population),
		Months:    len(ds.Months),
		Variants:  len(ds.Variants),
		Events:    len(ds.Events),
	}
	text := formatter.Printer().Sprintf("Dataset OK: %d countries, %d historical months, %d variants, %d events",
		result.Countries, result.Months, result.Variants, result.Events)
	return formatter.Success(text, result)
}
