package trainingrepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/yanqian/runplanner/internal/domain/planner"
	"github.com/yanqian/runplanner/internal/domain/schedule"
	"github.com/yanqian/runplanner/pkg/util"
)

type planKey struct {
	athleteID int64
	weekStart string
}

type runKey struct {
	athleteID int64
	date      string
}

// MemoryRepository keeps runs, preferences and plan weeks in memory for tests/dev.
type MemoryRepository struct {
	mu    sync.RWMutex
	runs  map[runKey]planner.Run
	prefs map[int64][]schedule.Thresholds
	plans map[planKey]schedule.PlanWeek
}

// NewMemoryRepository constructs an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		runs:  make(map[runKey]planner.Run),
		prefs: make(map[int64][]schedule.Thresholds),
		plans: make(map[planKey]schedule.PlanWeek),
	}
}

// CreateRun stores the run, enforcing one run per athlete per date.
func (r *MemoryRepository) CreateRun(_ context.Context, run planner.Run) (planner.Run, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := runKey{athleteID: run.AthleteID, date: schedule.DateKey(run.Date)}
	if _, exists := r.runs[key]; exists {
		return planner.Run{}, planner.ErrRunConflict
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	r.runs[key] = run
	return run, nil
}

// ListRuns returns the athlete's runs between from and to inclusive, in date order.
func (r *MemoryRepository) ListRuns(_ context.Context, athleteID int64, from, to time.Time) ([]planner.Run, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fromKey, toKey := schedule.DateKey(from), schedule.DateKey(to)
	out := make([]planner.Run, 0)
	for key, run := range r.runs {
		if key.athleteID != athleteID || key.date < fromKey || key.date > toKey {
			continue
		}
		out = append(out, run)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// GetPreferences returns the stored thresholds.
func (r *MemoryRepository) GetPreferences(_ context.Context, athleteID int64) ([]schedule.Thresholds, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	prefs, ok := r.prefs[athleteID]
	if !ok {
		return nil, false, nil
	}
	return append([]schedule.Thresholds(nil), prefs...), true, nil
}

// SavePreferences replaces the athlete's thresholds.
func (r *MemoryRepository) SavePreferences(_ context.Context, athleteID int64, thresholds []schedule.Thresholds) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prefs[athleteID] = append([]schedule.Thresholds(nil), thresholds...)
	return nil
}

// GetPlanWeek returns the plan week starting on weekStart's Monday.
func (r *MemoryRepository) GetPlanWeek(_ context.Context, athleteID int64, weekStart time.Time) (schedule.PlanWeek, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	week, ok := r.plans[planKey{athleteID: athleteID, weekStart: schedule.DateKey(util.WeekStart(weekStart))}]
	return week, ok, nil
}

// SavePlanWeek upserts the plan week keyed by the Monday of its start date.
func (r *MemoryRepository) SavePlanWeek(_ context.Context, athleteID int64, week schedule.PlanWeek) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.plans[planKey{athleteID: athleteID, weekStart: schedule.DateKey(util.WeekStart(week.StartDate))}] = week
	return nil
}

var _ planner.Repository = (*MemoryRepository)(nil)
