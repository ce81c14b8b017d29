package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/yanqian/runplanner/internal/domain/planner"
	"github.com/yanqian/runplanner/internal/infra/runstore"
	"github.com/yanqian/runplanner/internal/output"
	"github.com/yanqian/runplanner/pkg/logger"
)

// The journal holds a single athlete.
const localAthleteID int64 = 1

type rootOptions struct {
	dbPath  string
	noColor bool
	json    bool
	verbose bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "runplan",
		Short: "Weather-aware weekly running schedules",
		Long: `runplan places a week's long run and easy runs on the days with the best
forecast, honouring rest days, your weather limits and runs you already did.

Examples:
  runplan suggest --forecast week.json --prefs prefs.yaml
  runplan accept --date 2024-07-06 --type long_run --distance 14
  runplan import-fit morning.fit
  runplan runs --from 2024-07-01`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			output.SetNoColor(!output.ColorEnabled(cmd.OutOrStdout(), opts.noColor))
		},
	}
	cmd.PersistentFlags().StringVar(&opts.dbPath, "db", runstore.DefaultPath(), "Path to the run journal")
	cmd.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "Disable colored output")
	cmd.PersistentFlags().BoolVar(&opts.json, "json", false, "Output as JSON")
	cmd.PersistentFlags().BoolVar(&opts.verbose, "verbose", false, "Log debug output to stderr")

	cmd.AddCommand(
		newSuggestCmd(opts),
		newAcceptCmd(opts),
		newRunsCmd(opts),
		newImportFitCmd(opts),
	)
	return cmd
}

func (o *rootOptions) logger(cmd *cobra.Command) *slog.Logger {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = "warn"
	}
	if o.verbose {
		level = "debug"
	}
	return logger.NewWithWriter(cmd.ErrOrStderr(), level)
}

// openService opens the journal and builds a planner over it. Callers close the DB.
func (o *rootOptions) openService(cmd *cobra.Command, cfg planner.Config, forecast planner.ForecastProvider) (planner.Service, *runstore.DB, error) {
	db, err := runstore.Open(o.dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening journal: %w", err)
	}
	svc := planner.NewService(cfg, forecast, nil, db, nil, o.logger(cmd))
	return svc, db, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func readYAML(path string, dst any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}
