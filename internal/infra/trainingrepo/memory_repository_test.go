package trainingrepo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/runplanner/internal/domain/planner"
	"github.com/yanqian/runplanner/internal/domain/schedule"
)

func date(day int) time.Time {
	return time.Date(2024, 7, day, 0, 0, 0, 0, time.UTC)
}

func TestMemoryRepositoryRuns(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	for _, d := range []int{5, 2, 9} {
		_, err := repo.CreateRun(ctx, planner.Run{ID: "r", AthleteID: 1, Date: date(d), RunType: schedule.RunTypeEasy, Distance: 5})
		require.NoError(t, err)
	}
	_, err := repo.CreateRun(ctx, planner.Run{AthleteID: 1, Date: date(5).Add(6 * time.Hour), RunType: schedule.RunTypeLong})
	require.ErrorIs(t, err, planner.ErrRunConflict)

	_, err = repo.CreateRun(ctx, planner.Run{AthleteID: 2, Date: date(5), RunType: schedule.RunTypeLong})
	require.NoError(t, err)

	runs, err := repo.ListRuns(ctx, 1, date(1), date(7))
	require.NoError(t, err)
	require.Len(t, runs, 2)
	require.Equal(t, date(2), runs[0].Date)
	require.Equal(t, date(5), runs[1].Date)
	require.False(t, runs[0].CreatedAt.IsZero())
}

func TestMemoryRepositoryPreferencesAndPlans(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	_, found, err := repo.GetPreferences(ctx, 1)
	require.NoError(t, err)
	require.False(t, found)

	prefs := []schedule.Thresholds{{RunType: schedule.RunTypeLong, MaxPrecipitation: 25}}
	require.NoError(t, repo.SavePreferences(ctx, 1, prefs))
	got, found, err := repo.GetPreferences(ctx, 1)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, prefs, got)

	week := schedule.PlanWeek{Phase: "peak", WeekNumber: 9, StartDate: date(3), EndDate: date(9), LongRunTarget: 20, WeeklyMileageTarget: 45}
	require.NoError(t, repo.SavePlanWeek(ctx, 1, week))

	stored, found, err := repo.GetPlanWeek(ctx, 1, date(7))
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, week, stored)

	_, found, err = repo.GetPlanWeek(ctx, 1, date(8))
	require.NoError(t, err)
	require.False(t, found)
}
