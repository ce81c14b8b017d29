package main

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/yanqian/runplanner/internal/domain/planner"
	"github.com/yanqian/runplanner/internal/domain/schedule"
	"github.com/yanqian/runplanner/internal/infra/fitimport"
	"github.com/yanqian/runplanner/internal/infra/runstore"
)

func newImportFitCmd(root *rootOptions) *cobra.Command {
	var threshold float64
	cmd := &cobra.Command{
		Use:   "import-fit <file.fit>...",
		Short: "Import FIT activities as completed runs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := runstore.Open(root.dbPath)
			if err != nil {
				return fmt.Errorf("opening journal: %w", err)
			}
			defer func() { _ = db.Close() }()
			log := root.logger(cmd)

			var imported int
			for _, path := range args {
				activity, err := fitimport.DecodeFile(path)
				if err != nil {
					log.Warn("skipping FIT file", "path", path, "error", err)
					continue
				}
				run, err := fitimport.ToRun(activity, localAthleteID, uuid.NewString(), threshold)
				if err != nil {
					log.Warn("skipping FIT file", "path", path, "error", err)
					continue
				}
				if _, err := db.CreateRun(cmd.Context(), run); err != nil {
					if errors.Is(err, planner.ErrRunConflict) {
						fmt.Fprintf(cmd.OutOrStdout(), "%s: a run is already recorded on %s\n", path, schedule.DateKey(run.Date))
						continue
					}
					return err
				}
				imported++
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s %.1f km on %s\n", path, run.RunType, run.Distance, schedule.DateKey(run.Date))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d of %d files.\n", imported, len(args))
			return nil
		},
	}
	cmd.Flags().Float64Var(&threshold, "long-threshold", schedule.WeekendPolicy().DefaultLongRun, "Distance in km from which an activity counts as a long run")
	return cmd
}
