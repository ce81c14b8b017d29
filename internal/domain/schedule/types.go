package schedule

import "time"

// RunType identifies the kind of session placed on the calendar.
type RunType string

const (
	RunTypeLong     RunType = "long_run"
	RunTypeEasy     RunType = "easy_run"
	RunTypeTempo    RunType = "tempo"
	RunTypeInterval RunType = "interval"
	RunTypeRecovery RunType = "recovery"
)

// Intensity classifies how demanding a run type is.
type Intensity string

const (
	IntensityHard Intensity = "hard"
	IntensityEasy Intensity = "easy"
)

var runIntensity = map[RunType]Intensity{
	RunTypeLong:     IntensityHard,
	RunTypeTempo:    IntensityHard,
	RunTypeInterval: IntensityHard,
	RunTypeEasy:     IntensityEasy,
	RunTypeRecovery: IntensityEasy,
}

// IntensityOf reports the classification of a run type. Unknown types are easy.
func IntensityOf(rt RunType) Intensity {
	if in, ok := runIntensity[rt]; ok {
		return in
	}
	return IntensityEasy
}

// IsHard reports whether two runs of this type must not land on adjacent days.
func IsHard(rt RunType) bool {
	return IntensityOf(rt) == IntensityHard
}

// Valid reports whether the run type is known.
func (rt RunType) Valid() bool {
	_, ok := runIntensity[rt]
	return ok
}

// WeatherSample is one forecast reading. Daily samples may carry 24 hourly readings.
type WeatherSample struct {
	Time                time.Time       `json:"time"`
	Condition           string          `json:"condition"`
	TemperatureC        float64         `json:"temperatureC"`
	FeelsLikeC          float64         `json:"feelsLikeC"`
	PrecipitationChance float64         `json:"precipitationChance"`
	Humidity            float64         `json:"humidity"`
	WindSpeedKph        float64         `json:"windSpeedKph"`
	Hourly              []WeatherSample `json:"hourly,omitempty"`
}

// Thresholds are an athlete's weather tolerances for one run type.
// Nil pointers mean no limit.
type Thresholds struct {
	RunType          RunType  `json:"runType" yaml:"runType"`
	MaxPrecipitation float64  `json:"maxPrecipitation" yaml:"maxPrecipitation"`
	MaxWindSpeed     *float64 `json:"maxWindSpeed,omitempty" yaml:"maxWindSpeed,omitempty"`
	MinTemperature   *float64 `json:"minTemperature,omitempty" yaml:"minTemperature,omitempty"`
	MaxTemperature   *float64 `json:"maxTemperature,omitempty" yaml:"maxTemperature,omitempty"`
	AvoidConditions  []string `json:"avoidConditions,omitempty" yaml:"avoidConditions,omitempty"`
}

// PlanWeek is the training plan's view of the week being scheduled.
type PlanWeek struct {
	Phase               string    `json:"phase" yaml:"phase"`
	WeekNumber          int       `json:"weekNumber" yaml:"weekNumber"`
	StartDate           time.Time `json:"startDate" yaml:"startDate"`
	EndDate             time.Time `json:"endDate" yaml:"endDate"`
	LongRunTarget       float64   `json:"longRunTarget" yaml:"longRunTarget"`
	WeeklyMileageTarget float64   `json:"weeklyMileageTarget" yaml:"weeklyMileageTarget"`
}

// ExistingRun is a run already committed to the calendar.
type ExistingRun struct {
	Date    time.Time `json:"date"`
	RunType RunType   `json:"runType"`
}

// Quality is the tier derived from a weather score.
type Quality string

const (
	QualityExcellent Quality = "excellent"
	QualityGood      Quality = "good"
	QualityFair      Quality = "fair"
	QualityPoor      Quality = "poor"
)

// TimeWindow is a suggested start/end inside a day.
type TimeWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// ScoredDay is a forecast day scored for one run type.
type ScoredDay struct {
	Date       time.Time
	Key        string
	Score      int
	Quality    Quality
	Acceptable bool
	Weather    WeatherSample
	Window     *TimeWindow
}

// Placement records why a suggestion landed on its date.
type Placement string

const (
	PlacementWeather Placement = "weather"
	PlacementGapFill Placement = "gap_fill"
)

// Suggestion is a proposed run on a specific date.
type Suggestion struct {
	Date         time.Time     `json:"date"`
	RunType      RunType       `json:"runType"`
	Distance     float64       `json:"distance"`
	WeatherScore int           `json:"weatherScore"`
	IsOptimal    bool          `json:"isOptimal"`
	Reason       string        `json:"reason"`
	Weather      WeatherSample `json:"weather"`
	Window       *TimeWindow   `json:"window,omitempty"`
	Placement    Placement     `json:"placement"`
}

// Input bundles everything the assembler needs for one invocation.
type Input struct {
	Forecast     []WeatherSample
	Plan         *PlanWeek
	Preferences  []Thresholds
	ExistingRuns []ExistingRun
}

const dateKeyLayout = "2006-01-02"

// DateKey returns the calendar date of t in its own location.
func DateKey(t time.Time) string {
	return t.Format(dateKeyLayout)
}

// civil truncates t to midnight UTC of its own calendar date so day arithmetic
// is immune to zone offsets and DST.
func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the whole calendar days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(civil(b).Sub(civil(a)).Hours() / 24)
}

func isWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// DateSet is a set of calendar date keys.
type DateSet map[string]struct{}

// NewDateSet builds a set holding the calendar dates of times.
func NewDateSet(times ...time.Time) DateSet {
	s := make(DateSet, len(times))
	for _, t := range times {
		s.Add(t)
	}
	return s
}

// Add inserts the calendar date of t.
func (s DateSet) Add(t time.Time) {
	s[DateKey(t)] = struct{}{}
}

// Has reports whether key is present.
func (s DateSet) Has(key string) bool {
	_, ok := s[key]
	return ok
}

func (s DateSet) merge(other DateSet) DateSet {
	out := make(DateSet, len(s)+len(other))
	for k := range s {
		out[k] = struct{}{}
	}
	for k := range other {
		out[k] = struct{}{}
	}
	return out
}
