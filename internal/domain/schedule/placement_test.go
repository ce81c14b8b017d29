package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPlaceLongRunPicksHighestAllowedDay(t *testing.T) {
	days := []ScoredDay{
		scoredDay(t, "2024-07-03", 95, true),
		scoredDay(t, "2024-07-06", 70, true),
		scoredDay(t, "2024-07-07", 85, true),
	}
	got, ok := PlaceLongRun(days, NewDateSet(), NewDateSet(), WeekendPolicy().LongRunDays)
	require.True(t, ok)
	require.Equal(t, "2024-07-07", got.Key)
}

func TestPlaceLongRunPrefersWeekendOnTie(t *testing.T) {
	days := []ScoredDay{
		scoredDay(t, "2024-07-03", 80, true),
		scoredDay(t, "2024-07-06", 80, true),
	}
	got, ok := PlaceLongRun(days, NewDateSet(), NewDateSet(), nil)
	require.True(t, ok)
	require.Equal(t, "2024-07-06", got.Key)
}

func TestPlaceLongRunPrefersAcceptableDay(t *testing.T) {
	days := []ScoredDay{
		scoredDay(t, "2024-07-06", 75, false),
		scoredDay(t, "2024-07-07", 65, true),
	}
	got, ok := PlaceLongRun(days, NewDateSet(), NewDateSet(), WeekendPolicy().LongRunDays)
	require.True(t, ok)
	require.Equal(t, "2024-07-07", got.Key)
}

func TestPlaceLongRunSkipsExcludedAndClaimed(t *testing.T) {
	days := []ScoredDay{
		scoredDay(t, "2024-07-06", 90, true),
		scoredDay(t, "2024-07-07", 60, true),
	}
	excluded := NewDateSet(mustDate(t, "2024-07-06"))
	got, ok := PlaceLongRun(days, excluded, NewDateSet(), WeekendPolicy().LongRunDays)
	require.True(t, ok)
	require.Equal(t, "2024-07-07", got.Key)

	claimed := NewDateSet(mustDate(t, "2024-07-07"))
	_, ok = PlaceLongRun(days, excluded, claimed, WeekendPolicy().LongRunDays)
	require.False(t, ok)
}

func TestPlaceLongRunNeverForcesDisallowedWeekday(t *testing.T) {
	days := []ScoredDay{scoredDay(t, "2024-07-03", 100, true)}
	_, ok := PlaceLongRun(days, NewDateSet(), NewDateSet(), WeekendPolicy().LongRunDays)
	require.False(t, ok)
}

func TestPlaceEasyRunsRespectsRestDays(t *testing.T) {
	var days []ScoredDay
	scores := []int{50, 60, 70, 40, 65, 99, 98}
	for i, date := range weekDates() {
		days = append(days, scoredDay(t, date, scores[i], true))
	}
	long := mustDate(t, "2024-07-06")

	got := PlaceEasyRuns(days, &long, 1, NewDateSet(), NewDateSet(), 3)
	require.Equal(t, []string{"2024-07-03", "2024-07-05", "2024-07-02"}, keys(got))

	got = PlaceEasyRuns(days, &long, 2, NewDateSet(), NewDateSet(), 3)
	require.NotContains(t, keys(got), "2024-07-07")
}

func TestPlaceEasyRunsReturnsWhatIsAvailable(t *testing.T) {
	days := []ScoredDay{
		scoredDay(t, "2024-07-01", 30, false),
		scoredDay(t, "2024-07-02", 90, true),
	}
	claimed := NewDateSet(mustDate(t, "2024-07-02"))
	got := PlaceEasyRuns(days, nil, 1, NewDateSet(), claimed, 3)
	require.Equal(t, []string{"2024-07-01"}, keys(got))

	require.Empty(t, PlaceEasyRuns(days, nil, 1, NewDateSet(), NewDateSet(), 0))
}

func TestPlaceEasyRunsOrdersTiesByDate(t *testing.T) {
	days := []ScoredDay{
		scoredDay(t, "2024-07-03", 70, true),
		scoredDay(t, "2024-07-01", 70, true),
		scoredDay(t, "2024-07-02", 70, false),
	}
	got := PlaceEasyRuns(days, nil, 0, NewDateSet(), NewDateSet(), 2)
	require.Equal(t, []string{"2024-07-01", "2024-07-03"}, keys(got))
}

func TestRestWindow(t *testing.T) {
	set := restWindow(time.Date(2024, 7, 7, 0, 0, 0, 0, time.UTC), 2)
	require.True(t, set.Has("2024-07-07"))
	require.True(t, set.Has("2024-07-08"))
	require.True(t, set.Has("2024-07-09"))
	require.False(t, set.Has("2024-07-10"))
}

func keys(days []ScoredDay) []string {
	out := make([]string, 0, len(days))
	for _, d := range days {
		out = append(out, d.Key)
	}
	return out
}
