package schedule

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"
)

// IdealTemperatureC is the temperature at which no temperature penalty applies.
const IdealTemperatureC = 12.5

// Weights is the penalty table used by the scorer. The four weights must sum to 100.
type Weights struct {
	Precipitation float64 `json:"precipitation" yaml:"precipitation"`
	Wind          float64 `json:"wind" yaml:"wind"`
	Temperature   float64 `json:"temperature" yaml:"temperature"`
	Condition     float64 `json:"condition" yaml:"condition"`
	// PerDegree is the temperature penalty per °C away from IdealTemperatureC.
	PerDegree float64 `json:"perDegree" yaml:"perDegree"`
}

// Validate checks the table is usable.
func (w Weights) Validate() error {
	for name, v := range map[string]float64{
		"precipitation": w.Precipitation,
		"wind":          w.Wind,
		"temperature":   w.Temperature,
		"condition":     w.Condition,
		"perDegree":     w.PerDegree,
	} {
		if v < 0 {
			return fmt.Errorf("weight %s cannot be negative", name)
		}
	}
	sum := w.Precipitation + w.Wind + w.Temperature + w.Condition
	if math.Abs(sum-100) > 1e-9 {
		return fmt.Errorf("weights must sum to 100, got %g", sum)
	}
	return nil
}

// Daypart restricts time-window scoring to [StartHour, EndHour).
type Daypart struct {
	StartHour    int     `json:"startHour"`
	EndHour      int     `json:"endHour"`
	PaceMinPerKm float64 `json:"paceMinPerKm"`
}

// WindowHours is the number of whole hours a run of distance km occupies.
func (d Daypart) WindowHours(distance float64) int {
	hours := int(math.Ceil(distance * d.PaceMinPerKm / 60))
	if hours < 1 {
		hours = 1
	}
	if span := d.EndHour - d.StartHour; hours > span {
		hours = span
	}
	return hours
}

// Policy is one generation of scheduling rules.
type Policy struct {
	Name                 string         `json:"name"`
	LongRunDays          []time.Weekday `json:"longRunDays"`
	RestDays             int            `json:"restDays"`
	Weights              Weights        `json:"weights"`
	DefaultLongRun       float64        `json:"defaultLongRun"`
	DefaultWeeklyMileage float64        `json:"defaultWeeklyMileage"`
	// EasySplitThreshold is the remaining weekly distance at or above which three easy runs are planned.
	EasySplitThreshold float64  `json:"easySplitThreshold"`
	MinEasyDistance    float64  `json:"minEasyDistance"`
	MaxGapDays         int      `json:"maxGapDays"`
	Daypart            *Daypart `json:"daypart,omitempty"`
}

// Validate rejects policies the generator cannot run.
func (p Policy) Validate() error {
	if p.Name == "" {
		return errors.New("policy name cannot be empty")
	}
	if len(p.LongRunDays) == 0 {
		return errors.New("policy needs at least one long-run weekday")
	}
	if p.RestDays < 0 {
		return errors.New("rest days cannot be negative")
	}
	if p.MaxGapDays < 1 {
		return errors.New("max gap days must be positive")
	}
	if p.DefaultLongRun <= 0 || p.DefaultWeeklyMileage <= 0 {
		return errors.New("default distances must be positive")
	}
	if p.Daypart != nil {
		if p.Daypart.StartHour < 0 || p.Daypart.EndHour > 24 || p.Daypart.StartHour >= p.Daypart.EndHour {
			return fmt.Errorf("invalid daypart %02d:00-%02d:00", p.Daypart.StartHour, p.Daypart.EndHour)
		}
		if p.Daypart.PaceMinPerKm <= 0 {
			return errors.New("daypart pace must be positive")
		}
	}
	return p.Weights.Validate()
}

func (p Policy) allowsLongRunOn(wd time.Weekday) bool {
	for _, d := range p.LongRunDays {
		if d == wd {
			return true
		}
	}
	return false
}

const (
	PolicyWeekendV1      = "weekend-v1"
	PolicySundayMondayV2 = "sunday-monday-v2"
)

// WeekendPolicy is the canonical rule set: long run on Saturday or Sunday,
// one rest day after it, flat daily scoring.
func WeekendPolicy() Policy {
	return Policy{
		Name:        PolicyWeekendV1,
		LongRunDays: []time.Weekday{time.Saturday, time.Sunday},
		RestDays:    1,
		Weights: Weights{
			Precipitation: 40,
			Wind:          25,
			Temperature:   20,
			Condition:     15,
			PerDegree:     2,
		},
		DefaultLongRun:       10,
		DefaultWeeklyMileage: 25,
		EasySplitThreshold:   15,
		MinEasyDistance:      3,
		MaxGapDays:           4,
	}
}

// SundayMondayPolicy is the second rule generation: long run on Sunday or
// Monday, two rest days, hourly scoring inside an early-morning daypart.
func SundayMondayPolicy() Policy {
	return Policy{
		Name:        PolicySundayMondayV2,
		LongRunDays: []time.Weekday{time.Sunday, time.Monday},
		RestDays:    2,
		Weights: Weights{
			Precipitation: 60,
			Wind:          30,
			Temperature:   5,
			Condition:     5,
			PerDegree:     0.5,
		},
		DefaultLongRun:       12,
		DefaultWeeklyMileage: 30,
		EasySplitThreshold:   15,
		MinEasyDistance:      3,
		MaxGapDays:           4,
		Daypart: &Daypart{
			StartHour:    6,
			EndHour:      10,
			PaceMinPerKm: 6,
		},
	}
}

var policies = map[string]func() Policy{
	PolicyWeekendV1:      WeekendPolicy,
	PolicySundayMondayV2: SundayMondayPolicy,
}

// PolicyByName resolves a registered policy. An empty name yields the default.
func PolicyByName(name string) (Policy, bool) {
	if name == "" {
		return WeekendPolicy(), true
	}
	build, ok := policies[name]
	if !ok {
		return Policy{}, false
	}
	return build(), true
}

// Policies lists every registered policy ordered by name.
func Policies() []Policy {
	names := make([]string, 0, len(policies))
	for name := range policies {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]Policy, 0, len(names))
	for _, name := range names {
		out = append(out, policies[name]())
	}
	return out
}
