package planner

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yanqian/runplanner/internal/domain/schedule"
	"github.com/yanqian/runplanner/pkg/util"
)

// ValidatePreferences checks each threshold entry and rejects duplicate run types.
func ValidatePreferences(prefs Preferences) error {
	seen := make(map[schedule.RunType]struct{}, len(prefs.Thresholds))
	for _, t := range prefs.Thresholds {
		if !t.RunType.Valid() {
			return fmt.Errorf("unknown run type %q", t.RunType)
		}
		if _, dup := seen[t.RunType]; dup {
			return fmt.Errorf("duplicate thresholds for %s", t.RunType)
		}
		seen[t.RunType] = struct{}{}
		if t.MaxPrecipitation < 0 || t.MaxPrecipitation > 100 {
			return fmt.Errorf("%s: maxPrecipitation must be between 0 and 100", t.RunType)
		}
		if t.MaxWindSpeed != nil && *t.MaxWindSpeed < 0 {
			return fmt.Errorf("%s: maxWindSpeed cannot be negative", t.RunType)
		}
		if t.MinTemperature != nil && t.MaxTemperature != nil && *t.MinTemperature > *t.MaxTemperature {
			return fmt.Errorf("%s: minTemperature cannot exceed maxTemperature", t.RunType)
		}
	}
	return nil
}

// ParsePlanWeek validates a plan week payload. The end date defaults to six
// days after the start.
func ParsePlanWeek(req PlanWeekRequest) (schedule.PlanWeek, error) {
	start, err := util.ParseDate(req.StartDate)
	if err != nil {
		return schedule.PlanWeek{}, errors.New("startDate must be formatted as YYYY-MM-DD")
	}
	end := start.AddDate(0, 0, 6)
	if strings.TrimSpace(req.EndDate) != "" {
		if end, err = util.ParseDate(req.EndDate); err != nil {
			return schedule.PlanWeek{}, errors.New("endDate must be formatted as YYYY-MM-DD")
		}
	}
	if end.Before(start) {
		return schedule.PlanWeek{}, errors.New("endDate cannot be before startDate")
	}
	if req.WeekNumber < 0 {
		return schedule.PlanWeek{}, errors.New("weekNumber cannot be negative")
	}
	if req.LongRunTarget < 0 || req.WeeklyMileageTarget < 0 {
		return schedule.PlanWeek{}, errors.New("targets cannot be negative")
	}
	if req.LongRunTarget > 0 && req.WeeklyMileageTarget > 0 && req.LongRunTarget > req.WeeklyMileageTarget {
		return schedule.PlanWeek{}, errors.New("longRunTarget cannot exceed weeklyMileageTarget")
	}
	return schedule.PlanWeek{
		Phase:               strings.TrimSpace(req.Phase),
		WeekNumber:          req.WeekNumber,
		StartDate:           start,
		EndDate:             end,
		LongRunTarget:       req.LongRunTarget,
		WeeklyMileageTarget: req.WeeklyMileageTarget,
	}, nil
}
