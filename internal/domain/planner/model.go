package planner

import (
	"time"

	"github.com/yanqian/runplanner/internal/domain/schedule"
	"github.com/yanqian/runplanner/pkg/metrics"
)

// Run sources.
const (
	SourceSuggestion = "suggestion"
	SourceManual     = "manual"
	SourceFIT        = "fit"
)

// Run is a run committed to an athlete's calendar.
type Run struct {
	ID        string           `json:"id"`
	AthleteID int64            `json:"athleteId"`
	Date      time.Time        `json:"date"`
	RunType   schedule.RunType `json:"runType"`
	Distance  float64          `json:"distance"`
	Source    string           `json:"source"`
	CreatedAt time.Time        `json:"createdAt"`
}

// SuggestRequest is the payload accepted by Suggest. Empty fields fall back
// to today, the configured location and the configured policy.
type SuggestRequest struct {
	Date     string `json:"date"`
	Location string `json:"location"`
	Policy   string `json:"policy"`
}

// SuggestResponse is serialized back to API consumers and archived.
type SuggestResponse struct {
	ID          string                `json:"id"`
	WeekStart   string                `json:"weekStart"`
	Location    string                `json:"location"`
	Policy      string                `json:"policy"`
	Distances   schedule.Distances    `json:"distances"`
	Suggestions []schedule.Suggestion `json:"suggestions"`
	Days        []schedule.DayReport  `json:"days"`
	Forecast    metrics.ForecastUsage `json:"forecast"`
	GeneratedAt time.Time             `json:"generatedAt"`
}

// AcceptRequest commits a suggestion (or a manual entry) as a run.
type AcceptRequest struct {
	Date     string           `json:"date"`
	RunType  schedule.RunType `json:"runType"`
	Distance float64          `json:"distance"`
	Source   string           `json:"source"`
}

// ListRunsRequest bounds a run listing. Both dates are inclusive.
type ListRunsRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Preferences are an athlete's per-run-type weather tolerances.
type Preferences struct {
	Thresholds []schedule.Thresholds `json:"thresholds" yaml:"thresholds"`
}

// PlanWeekRequest upserts one training-plan week.
type PlanWeekRequest struct {
	Phase               string  `json:"phase" yaml:"phase"`
	WeekNumber          int     `json:"weekNumber" yaml:"weekNumber"`
	StartDate           string  `json:"startDate" yaml:"startDate"`
	EndDate             string  `json:"endDate" yaml:"endDate"`
	LongRunTarget       float64 `json:"longRunTarget" yaml:"longRunTarget"`
	WeeklyMileageTarget float64 `json:"weeklyMileageTarget" yaml:"weeklyMileageTarget"`
}

// Config wires runtime settings for the planner domain.
type Config struct {
	Location     string
	ForecastDays int
	CacheTTL     time.Duration
	Policy       string
	// DefaultLongRun and DefaultWeeklyMileage override the configured
	// policy's defaults when positive.
	DefaultLongRun       float64
	DefaultWeeklyMileage float64
	Weights              *schedule.Weights
}

// DefaultPreferences are used until an athlete stores their own.
func DefaultPreferences() Preferences {
	return Preferences{Thresholds: []schedule.Thresholds{
		{
			RunType:          schedule.RunTypeLong,
			MaxPrecipitation: 40,
			MaxWindSpeed:     float64Ptr(30),
			MinTemperature:   float64Ptr(0),
			MaxTemperature:   float64Ptr(26),
			AvoidConditions:  []string{"thunder", "snow", "sleet", "blizzard"},
		},
		{
			RunType:          schedule.RunTypeEasy,
			MaxPrecipitation: 60,
			MaxWindSpeed:     float64Ptr(35),
			MinTemperature:   float64Ptr(-5),
			MaxTemperature:   float64Ptr(30),
			AvoidConditions:  []string{"thunder", "blizzard"},
		},
	}}
}

func float64Ptr(v float64) *float64 {
	return &v
}
