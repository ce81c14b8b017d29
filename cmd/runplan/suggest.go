package main

import (
	"github.com/spf13/cobra"

	"github.com/yanqian/runplanner/internal/domain/planner"
	"github.com/yanqian/runplanner/internal/output"
)

type suggestOptions struct {
	forecastPath string
	prefsPath    string
	planPath     string
	policy       string
	date         string
	location     string
}

func newSuggestCmd(root *rootOptions) *cobra.Command {
	opts := &suggestOptions{}
	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Suggest this week's runs from a forecast file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSuggest(cmd, root, opts)
		},
	}
	cmd.Flags().StringVar(&opts.forecastPath, "forecast", "", "JSON forecast file (array of daily samples)")
	cmd.Flags().StringVar(&opts.prefsPath, "prefs", "", "YAML weather preferences to store before planning")
	cmd.Flags().StringVar(&opts.planPath, "plan", "", "YAML training-plan week to store before planning")
	cmd.Flags().StringVar(&opts.policy, "policy", "", "Scheduling policy (default weekend-v1)")
	cmd.Flags().StringVar(&opts.date, "date", "", "First day to plan (default: first forecast day)")
	cmd.Flags().StringVar(&opts.location, "location", "local", "Label for the forecast location")
	_ = cmd.MarkFlagRequired("forecast")
	return cmd
}

func runSuggest(cmd *cobra.Command, root *rootOptions, opts *suggestOptions) error {
	forecast, err := loadForecastFile(opts.forecastPath)
	if err != nil {
		return err
	}
	svc, db, err := root.openService(cmd, planner.Config{
		Location:     opts.location,
		ForecastDays: len(forecast.samples),
	}, forecast)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	ctx := cmd.Context()
	if opts.prefsPath != "" {
		var prefs planner.Preferences
		if err := readYAML(opts.prefsPath, &prefs); err != nil {
			return err
		}
		if _, err := svc.SavePreferences(ctx, localAthleteID, prefs); err != nil {
			return err
		}
	}
	if opts.planPath != "" {
		var week planner.PlanWeekRequest
		if err := readYAML(opts.planPath, &week); err != nil {
			return err
		}
		if _, err := svc.SavePlanWeek(ctx, localAthleteID, week); err != nil {
			return err
		}
	}

	date := opts.date
	if date == "" {
		date = forecast.firstDate()
	}
	resp, err := svc.Suggest(ctx, localAthleteID, planner.SuggestRequest{
		Date:   date,
		Policy: opts.policy,
	})
	if err != nil {
		return err
	}
	if root.json {
		return writeJSON(cmd.OutOrStdout(), resp)
	}
	return output.WriteSchedule(cmd.OutOrStdout(), resp)
}
