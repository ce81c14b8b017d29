// Package fitimport turns FIT activity files into committed runs.
package fitimport

import (
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/tormoder/fit"

	"github.com/yanqian/runplanner/internal/domain/planner"
	"github.com/yanqian/runplanner/internal/domain/schedule"
)

// Activity is the part of a FIT session the planner cares about.
type Activity struct {
	StartTime      time.Time
	DistanceKm     float64
	ElapsedSeconds float64
	Running        bool
}

// DecodeFile decodes an activity FIT file from disk.
func DecodeFile(path string) (Activity, error) {
	f, err := os.Open(path)
	if err != nil {
		return Activity{}, fmt.Errorf("open FIT file: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode reads the first session of an activity FIT stream.
func Decode(r io.Reader) (Activity, error) {
	decoded, err := fit.Decode(r)
	if err != nil {
		return Activity{}, fmt.Errorf("decode FIT file: %w", err)
	}
	activity, err := decoded.Activity()
	if err != nil {
		return Activity{}, fmt.Errorf("activity FIT expected: %w", err)
	}
	if len(activity.Sessions) == 0 {
		return Activity{}, fmt.Errorf("activity file has no session message")
	}
	session := activity.Sessions[0]

	start := session.StartTime
	if start.IsZero() || fit.IsBaseTime(start) {
		start = session.Timestamp
	}
	if start.IsZero() || fit.IsBaseTime(start) {
		return Activity{}, fmt.Errorf("activity has no start time")
	}
	return Activity{
		StartTime:      start.UTC(),
		DistanceKm:     positive(session.GetTotalDistanceScaled()) / 1000,
		ElapsedSeconds: positive(session.GetTotalTimerTimeScaled()),
		Running:        session.Sport == fit.SportRunning,
	}, nil
}

// Classify marks a run long when it reaches the long-run threshold.
func Classify(distanceKm, longRunThresholdKm float64) schedule.RunType {
	if longRunThresholdKm > 0 && distanceKm >= longRunThresholdKm {
		return schedule.RunTypeLong
	}
	return schedule.RunTypeEasy
}

// ToRun converts an activity into a run sourced from a FIT import.
func ToRun(a Activity, athleteID int64, id string, longRunThresholdKm float64) (planner.Run, error) {
	if !a.Running {
		return planner.Run{}, fmt.Errorf("activity on %s is not a run", a.StartTime.Format("2006-01-02"))
	}
	if a.DistanceKm <= 0 {
		return planner.Run{}, fmt.Errorf("activity on %s has no distance", a.StartTime.Format("2006-01-02"))
	}
	day := time.Date(a.StartTime.Year(), a.StartTime.Month(), a.StartTime.Day(), 0, 0, 0, 0, time.UTC)
	return planner.Run{
		ID:        id,
		AthleteID: athleteID,
		Date:      day,
		RunType:   Classify(a.DistanceKm, longRunThresholdKm),
		Distance:  math.Round(a.DistanceKm*10) / 10,
		Source:    planner.SourceFIT,
	}, nil
}

func positive(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0
	}
	return v
}
