package main

import (
	"github.com/spf13/cobra"

	"github.com/yanqian/runplanner/internal/domain/planner"
	"github.com/yanqian/runplanner/internal/output"
)

func newRunsCmd(root *rootOptions) *cobra.Command {
	var req planner.ListRunsRequest
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded runs (default: this week)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, db, err := root.openService(cmd, planner.Config{}, nil)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			runs, err := svc.ListRuns(cmd.Context(), localAthleteID, req)
			if err != nil {
				return err
			}
			if root.json {
				return writeJSON(cmd.OutOrStdout(), runs)
			}
			return output.WriteRuns(cmd.OutOrStdout(), runs)
		},
	}
	cmd.Flags().StringVar(&req.From, "from", "", "First date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&req.To, "to", "", "Last date (YYYY-MM-DD, default from+6)")
	return cmd
}
