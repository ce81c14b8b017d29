package fitimport

import (
	"bytes"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/runplanner/internal/domain/planner"
	"github.com/yanqian/runplanner/internal/domain/schedule"
)

func TestClassify(t *testing.T) {
	require.Equal(t, schedule.RunTypeLong, Classify(16, 16))
	require.Equal(t, schedule.RunTypeLong, Classify(21.1, 16))
	require.Equal(t, schedule.RunTypeEasy, Classify(15.9, 16))
	require.Equal(t, schedule.RunTypeEasy, Classify(30, 0))
}

func TestToRun(t *testing.T) {
	start := time.Date(2024, 7, 6, 22, 30, 0, 0, time.FixedZone("CEST", 2*3600))
	run, err := ToRun(Activity{StartTime: start.UTC(), DistanceKm: 18.04, Running: true}, 3, "run-1", 16)
	require.NoError(t, err)
	require.Equal(t, planner.Run{
		ID:        "run-1",
		AthleteID: 3,
		Date:      time.Date(2024, 7, 6, 0, 0, 0, 0, time.UTC),
		RunType:   schedule.RunTypeLong,
		Distance:  18,
		Source:    planner.SourceFIT,
	}, run)

	_, err = ToRun(Activity{StartTime: start, DistanceKm: 40, Running: false}, 3, "run-2", 16)
	require.ErrorContains(t, err, "not a run")

	_, err = ToRun(Activity{StartTime: start, Running: true}, 3, "run-3", 16)
	require.ErrorContains(t, err, "no distance")
}

func TestDecode_RejectsGarbage(t *testing.T) {
	_, err := Decode(bytes.NewReader([]byte("definitely not a fit file")))
	require.ErrorContains(t, err, "decode FIT file")
}

func TestPositive(t *testing.T) {
	require.Equal(t, 0.0, positive(math.NaN()))
	require.Equal(t, 0.0, positive(math.Inf(1)))
	require.Equal(t, 0.0, positive(-3))
	require.Equal(t, 4.2, positive(4.2))
}
