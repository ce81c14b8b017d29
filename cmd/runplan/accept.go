package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yanqian/runplanner/internal/domain/planner"
	"github.com/yanqian/runplanner/internal/domain/schedule"
)

func newAcceptCmd(root *rootOptions) *cobra.Command {
	var req planner.AcceptRequest
	var runType string
	cmd := &cobra.Command{
		Use:   "accept",
		Short: "Record a run in the journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req.RunType = schedule.RunType(runType)
			svc, db, err := root.openService(cmd, planner.Config{}, nil)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			run, err := svc.Accept(cmd.Context(), localAthleteID, req)
			if err != nil {
				return err
			}
			if root.json {
				return writeJSON(cmd.OutOrStdout(), run)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s of %.1f km on %s.\n", run.RunType, run.Distance, run.Date.Format("Mon 2006-01-02"))
			return err
		},
	}
	cmd.Flags().StringVar(&req.Date, "date", "", "Run date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&runType, "type", string(schedule.RunTypeEasy), "Run type: long_run, easy_run, tempo, interval, recovery")
	cmd.Flags().Float64Var(&req.Distance, "distance", 0, "Distance in km")
	cmd.Flags().StringVar(&req.Source, "source", planner.SourceSuggestion, "Where the run came from: suggestion or manual")
	_ = cmd.MarkFlagRequired("date")
	_ = cmd.MarkFlagRequired("distance")
	return cmd
}
