package runstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/yanqian/runplanner/internal/domain/planner"
	"github.com/yanqian/runplanner/internal/domain/schedule"
	"github.com/yanqian/runplanner/pkg/util"
)

// CreateRun inserts a run; a second run on the same date yields planner.ErrRunConflict.
func (db *DB) CreateRun(ctx context.Context, run planner.Run) (planner.Run, error) {
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	result, err := db.conn.ExecContext(ctx, `
		INSERT INTO runs (id, athlete_id, run_date, run_type, distance_km, source, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (athlete_id, run_date) DO NOTHING
	`, run.ID, run.AthleteID, run.Date.Format(util.DateLayout), string(run.RunType), run.Distance, run.Source,
		run.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return planner.Run{}, fmt.Errorf("insert run: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return planner.Run{}, err
	}
	if affected == 0 {
		return planner.Run{}, planner.ErrRunConflict
	}
	run.Date = truncateDay(run.Date)
	run.CreatedAt = run.CreatedAt.UTC().Truncate(time.Second)
	return run, nil
}

// ListRuns returns the athlete's runs in [from, to] ordered by date.
func (db *DB) ListRuns(ctx context.Context, athleteID int64, from, to time.Time) ([]planner.Run, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, athlete_id, run_date, run_type, distance_km, source, created_at
		FROM runs
		WHERE athlete_id = ? AND run_date BETWEEN ? AND ?
		ORDER BY run_date
	`, athleteID, from.Format(util.DateLayout), to.Format(util.DateLayout))
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := make([]planner.Run, 0)
	for rows.Next() {
		var (
			run     planner.Run
			date    string
			runType string
			created string
		)
		if err := rows.Scan(&run.ID, &run.AthleteID, &date, &runType, &run.Distance, &run.Source, &created); err != nil {
			return nil, err
		}
		run.Date, err = util.ParseDate(date)
		if err != nil {
			return nil, fmt.Errorf("run %s: %w", run.ID, err)
		}
		run.RunType = schedule.RunType(runType)
		run.CreatedAt, _ = time.Parse(time.RFC3339, created)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetPreferences loads the JSON encoded thresholds.
func (db *DB) GetPreferences(ctx context.Context, athleteID int64) ([]schedule.Thresholds, bool, error) {
	var payload string
	err := db.conn.QueryRowContext(ctx, "SELECT thresholds FROM preferences WHERE athlete_id = ?", athleteID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var thresholds []schedule.Thresholds
	if err := json.Unmarshal([]byte(payload), &thresholds); err != nil {
		return nil, false, fmt.Errorf("decode thresholds: %w", err)
	}
	return thresholds, true, nil
}

// SavePreferences upserts the thresholds document.
func (db *DB) SavePreferences(ctx context.Context, athleteID int64, thresholds []schedule.Thresholds) error {
	payload, err := json.Marshal(thresholds)
	if err != nil {
		return fmt.Errorf("encode thresholds: %w", err)
	}
	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO preferences (athlete_id, thresholds, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (athlete_id) DO UPDATE SET thresholds = excluded.thresholds, updated_at = excluded.updated_at
	`, athleteID, string(payload), time.Now().UTC().Format(time.RFC3339))
	return err
}

// GetPlanWeek fetches the plan week keyed by the Monday of weekStart.
func (db *DB) GetPlanWeek(ctx context.Context, athleteID int64, weekStart time.Time) (schedule.PlanWeek, bool, error) {
	var (
		week       schedule.PlanWeek
		start, end string
	)
	err := db.conn.QueryRowContext(ctx, `
		SELECT phase, week_number, start_date, end_date, long_run_target_km, weekly_target_km
		FROM plan_weeks
		WHERE athlete_id = ? AND week_start = ?
	`, athleteID, util.WeekStart(weekStart).Format(util.DateLayout)).
		Scan(&week.Phase, &week.WeekNumber, &start, &end, &week.LongRunTarget, &week.WeeklyMileageTarget)
	if errors.Is(err, sql.ErrNoRows) {
		return schedule.PlanWeek{}, false, nil
	}
	if err != nil {
		return schedule.PlanWeek{}, false, err
	}
	if week.StartDate, err = util.ParseDate(start); err != nil {
		return schedule.PlanWeek{}, false, err
	}
	if week.EndDate, err = util.ParseDate(end); err != nil {
		return schedule.PlanWeek{}, false, err
	}
	return week, true, nil
}

// SavePlanWeek upserts a plan week.
func (db *DB) SavePlanWeek(ctx context.Context, athleteID int64, week schedule.PlanWeek) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO plan_weeks (athlete_id, week_start, phase, week_number, start_date, end_date, long_run_target_km, weekly_target_km)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (athlete_id, week_start) DO UPDATE SET
			phase = excluded.phase,
			week_number = excluded.week_number,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			long_run_target_km = excluded.long_run_target_km,
			weekly_target_km = excluded.weekly_target_km
	`, athleteID, util.WeekStart(week.StartDate).Format(util.DateLayout), week.Phase, week.WeekNumber,
		week.StartDate.Format(util.DateLayout), week.EndDate.Format(util.DateLayout),
		week.LongRunTarget, week.WeeklyMileageTarget)
	return err
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

var _ planner.Repository = (*DB)(nil)
