package schedule

import (
	"testing"
	"time"
)

func mustDate(t *testing.T, value string) time.Time {
	t.Helper()
	d, err := time.Parse(dateKeyLayout, value)
	if err != nil {
		t.Fatalf("parse %q: %v", value, err)
	}
	return d
}

func sample(t *testing.T, date, condition string, temp, precip, wind float64) WeatherSample {
	t.Helper()
	return WeatherSample{
		Time:                mustDate(t, date),
		Condition:           condition,
		TemperatureC:        temp,
		FeelsLikeC:          temp,
		PrecipitationChance: precip,
		Humidity:            60,
		WindSpeedKph:        wind,
	}
}

func ptr(v float64) *float64 {
	return &v
}

func runnerThresholds(rt RunType) Thresholds {
	return Thresholds{
		RunType:          rt,
		MaxPrecipitation: 30,
		MaxWindSpeed:     ptr(25),
		MinTemperature:   ptr(5),
		MaxTemperature:   ptr(25),
		AvoidConditions:  []string{"thunder", "snow"},
	}
}

func defaultPrefs() []Thresholds {
	return []Thresholds{runnerThresholds(RunTypeLong), runnerThresholds(RunTypeEasy)}
}

// week starting Monday 2024-07-01.
func weekDates() []string {
	return []string{"2024-07-01", "2024-07-02", "2024-07-03", "2024-07-04", "2024-07-05", "2024-07-06", "2024-07-07"}
}

func scoredDay(t *testing.T, date string, score int, acceptable bool) ScoredDay {
	t.Helper()
	d := mustDate(t, date)
	return ScoredDay{
		Date:       d,
		Key:        DateKey(d),
		Score:      score,
		Quality:    QualityFor(score),
		Acceptable: acceptable,
	}
}
