package trainingrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/runplanner/internal/domain/planner"
	"github.com/yanqian/runplanner/internal/domain/schedule"
	"github.com/yanqian/runplanner/pkg/util"
)

const uniqueViolation = "23505"

// PostgresRepository implements planner.Repository using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs the repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// CreateRun inserts a run row; the (athlete_id, run_date) unique key maps to planner.ErrRunConflict.
func (r *PostgresRepository) CreateRun(ctx context.Context, run planner.Run) (planner.Run, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO runs (id, athlete_id, run_date, run_type, distance_km, source)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, athlete_id, run_date, run_type, distance_km, source, created_at
	`, run.ID, run.AthleteID, run.Date, string(run.RunType), run.Distance, run.Source)
	created, err := scanRun(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return planner.Run{}, planner.ErrRunConflict
		}
		return planner.Run{}, err
	}
	return created, nil
}

// ListRuns returns the athlete's runs in [from, to] ordered by date.
func (r *PostgresRepository) ListRuns(ctx context.Context, athleteID int64, from, to time.Time) ([]planner.Run, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, athlete_id, run_date, run_type, distance_km, source, created_at
		FROM runs
		WHERE athlete_id = $1 AND run_date BETWEEN $2 AND $3
		ORDER BY run_date
	`, athleteID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	runs := make([]planner.Run, 0)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetPreferences loads the JSON encoded thresholds.
func (r *PostgresRepository) GetPreferences(ctx context.Context, athleteID int64) ([]schedule.Thresholds, bool, error) {
	var payload []byte
	err := r.pool.QueryRow(ctx, `
		SELECT thresholds FROM preferences WHERE athlete_id = $1
	`, athleteID).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var thresholds []schedule.Thresholds
	if err := json.Unmarshal(payload, &thresholds); err != nil {
		return nil, false, fmt.Errorf("decode thresholds: %w", err)
	}
	return thresholds, true, nil
}

// SavePreferences upserts the thresholds document.
func (r *PostgresRepository) SavePreferences(ctx context.Context, athleteID int64, thresholds []schedule.Thresholds) error {
	payload, err := json.Marshal(thresholds)
	if err != nil {
		return fmt.Errorf("encode thresholds: %w", err)
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO preferences (athlete_id, thresholds, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (athlete_id) DO UPDATE SET thresholds = EXCLUDED.thresholds, updated_at = NOW()
	`, athleteID, payload)
	return err
}

// GetPlanWeek fetches the plan week keyed by the Monday of weekStart.
func (r *PostgresRepository) GetPlanWeek(ctx context.Context, athleteID int64, weekStart time.Time) (schedule.PlanWeek, bool, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT phase, week_number, start_date, end_date, long_run_target_km, weekly_target_km
		FROM plan_weeks
		WHERE athlete_id = $1 AND week_start = $2
	`, athleteID, util.WeekStart(weekStart))
	week, err := scanPlanWeek(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return schedule.PlanWeek{}, false, nil
	}
	if err != nil {
		return schedule.PlanWeek{}, false, err
	}
	return week, true, nil
}

// SavePlanWeek upserts a plan week.
func (r *PostgresRepository) SavePlanWeek(ctx context.Context, athleteID int64, week schedule.PlanWeek) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO plan_weeks (athlete_id, week_start, phase, week_number, start_date, end_date, long_run_target_km, weekly_target_km)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (athlete_id, week_start) DO UPDATE SET
			phase = EXCLUDED.phase,
			week_number = EXCLUDED.week_number,
			start_date = EXCLUDED.start_date,
			end_date = EXCLUDED.end_date,
			long_run_target_km = EXCLUDED.long_run_target_km,
			weekly_target_km = EXCLUDED.weekly_target_km
	`, athleteID, util.WeekStart(week.StartDate), week.Phase, week.WeekNumber, week.StartDate, week.EndDate, week.LongRunTarget, week.WeeklyMileageTarget)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (planner.Run, error) {
	var (
		run     planner.Run
		runType string
		date    time.Time
		created time.Time
	)
	if err := row.Scan(&run.ID, &run.AthleteID, &date, &runType, &run.Distance, &run.Source, &created); err != nil {
		return planner.Run{}, err
	}
	run.Date = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	run.RunType = schedule.RunType(runType)
	run.CreatedAt = created.UTC()
	return run, nil
}

func scanPlanWeek(row rowScanner) (schedule.PlanWeek, error) {
	var week schedule.PlanWeek
	var start, end time.Time
	if err := row.Scan(&week.Phase, &week.WeekNumber, &start, &end, &week.LongRunTarget, &week.WeeklyMileageTarget); err != nil {
		return schedule.PlanWeek{}, err
	}
	week.StartDate = start.UTC()
	week.EndDate = end.UTC()
	return week, nil
}

var _ planner.Repository = (*PostgresRepository)(nil)
