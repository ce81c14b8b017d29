package schedule

import (
	"fmt"
	"strings"
)

// Reason explains in one sentence why the suggestion landed on its day.
func Reason(s Suggestion, day ScoredDay) string {
	desc := describeWeather(day.Weather)
	weekday := day.Date.Weekday().String()

	var b strings.Builder
	switch {
	case s.Placement == PlacementGapFill:
		fmt.Fprintf(&b, "Scheduled on %s for training consistency, to avoid a 4+ day gap without running", weekday)
		if day.Acceptable {
			fmt.Fprintf(&b, " — %s (%s).", desc, day.Quality)
		} else {
			fmt.Fprintf(&b, ". Conditions will be challenging — %s, so keep it short and easy.", desc)
		}
	case s.RunType == RunTypeLong && !day.Acceptable:
		fmt.Fprintf(&b, "Long run placed despite challenging conditions — %s. No day this week meets your preferences, so this is the least-bad option.", desc)
	case s.RunType == RunTypeLong:
		fmt.Fprintf(&b, "Best weather of the week — %s (%s conditions).", desc, day.Quality)
	case !day.Acceptable:
		fmt.Fprintf(&b, "Challenging conditions on %s — %s. Keep the effort easy and adjust pace to the weather.", weekday, desc)
	default:
		fmt.Fprintf(&b, "%s weather on %s — %s.", capitalize(string(day.Quality)), weekday, desc)
	}
	if s.Window != nil {
		fmt.Fprintf(&b, " Best window %s-%s.", s.Window.Start.Format("15:04"), s.Window.End.Format("15:04"))
	}
	return b.String()
}

func describeWeather(w WeatherSample) string {
	condition := strings.TrimSpace(w.Condition)
	if condition == "" {
		condition = "Unknown conditions"
	}
	return fmt.Sprintf("%s, %d°C", condition, whole(w.TemperatureC))
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
