package planner

import (
	"context"
	"errors"
	"time"

	"github.com/yanqian/runplanner/internal/domain/schedule"
)

// ErrRunConflict is returned by repositories when the athlete already has a
// run on the date.
var ErrRunConflict = errors.New("run already exists on date")

// ForecastProvider fetches a multi-day forecast for a location.
type ForecastProvider interface {
	Forecast(ctx context.Context, location string, days int) ([]schedule.WeatherSample, error)
}

// ForecastCache memoizes provider responses.
type ForecastCache interface {
	Get(ctx context.Context, key string) ([]schedule.WeatherSample, bool, error)
	Set(ctx context.Context, key string, samples []schedule.WeatherSample, ttl time.Duration) error
}

// RunRepository persists committed runs.
type RunRepository interface {
	CreateRun(ctx context.Context, run Run) (Run, error)
	ListRuns(ctx context.Context, athleteID int64, from, to time.Time) ([]Run, error)
}

// PreferenceRepository persists per-run-type thresholds.
type PreferenceRepository interface {
	GetPreferences(ctx context.Context, athleteID int64) ([]schedule.Thresholds, bool, error)
	SavePreferences(ctx context.Context, athleteID int64, thresholds []schedule.Thresholds) error
}

// PlanRepository persists training-plan weeks keyed by their Monday.
type PlanRepository interface {
	GetPlanWeek(ctx context.Context, athleteID int64, weekStart time.Time) (schedule.PlanWeek, bool, error)
	SavePlanWeek(ctx context.Context, athleteID int64, week schedule.PlanWeek) error
}

// Repository groups the training persistence the planner needs.
type Repository interface {
	RunRepository
	PreferenceRepository
	PlanRepository
}

// Archive stores generated schedule snapshots.
type Archive interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
}
