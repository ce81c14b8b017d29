package schedule

import (
	"sort"
	"time"
)

// NeutralScore is given to every day when no thresholds exist for a run type.
const NeutralScore = 50

// DayScorer applies a Scorer across a forecast horizon.
type DayScorer struct {
	scorer  Scorer
	daypart *Daypart
}

// NewDayScorer builds a DayScorer. A nil daypart scores the daily sample only.
func NewDayScorer(scorer Scorer, daypart *Daypart) DayScorer {
	return DayScorer{scorer: scorer, daypart: daypart}
}

// ScoreDays scores every forecast day for a run of the given distance.
// Missing thresholds degrade to a neutral fair score.
func (d DayScorer) ScoreDays(forecast []WeatherSample, t *Thresholds, distance float64) []ScoredDay {
	days := make([]ScoredDay, 0, len(forecast))
	for _, sample := range forecast {
		day := ScoredDay{
			Date:    sample.Time,
			Key:     DateKey(sample.Time),
			Weather: sample,
		}
		if t == nil {
			day.Score = NeutralScore
			day.Quality = QualityFair
			day.Acceptable = true
			day.Window = d.defaultWindow(sample, distance)
			days = append(days, day)
			continue
		}
		if score, ok, window := d.bestWindow(sample, *t, distance); window != nil {
			day.Score, day.Acceptable, day.Window = score, ok, window
		} else {
			day.Score = d.scorer.Score(sample, *t)
			day.Acceptable = IsAcceptable(sample, *t)
		}
		day.Quality = QualityFor(day.Score)
		days = append(days, day)
	}
	return days
}

// bestWindow finds the contiguous block of hours inside the daypart with the
// highest mean score. Ties keep the earliest block. It returns a nil window
// when the sample lacks the hourly readings to fill any block.
func (d DayScorer) bestWindow(sample WeatherSample, t Thresholds, distance float64) (int, bool, *TimeWindow) {
	if d.daypart == nil || len(sample.Hourly) == 0 {
		return 0, false, nil
	}
	byHour := hourlyIndex(sample.Hourly)
	hours := d.daypart.WindowHours(distance)

	var (
		best       *TimeWindow
		bestScore  = -1.0
		acceptable bool
	)
	for start := d.daypart.StartHour; start+hours <= d.daypart.EndHour; start++ {
		total := 0.0
		allOK := true
		complete := true
		for h := start; h < start+hours; h++ {
			hs, ok := byHour[h]
			if !ok {
				complete = false
				break
			}
			total += float64(d.scorer.Score(hs, t))
			allOK = allOK && IsAcceptable(hs, t)
		}
		if !complete {
			continue
		}
		mean := total / float64(hours)
		if mean > bestScore {
			bestScore = mean
			acceptable = allOK
			first := byHour[start].Time
			best = &TimeWindow{Start: first, End: first.Add(time.Duration(hours) * time.Hour)}
		}
	}
	if best == nil {
		return 0, false, nil
	}
	return clampScore(bestScore), acceptable, best
}

func (d DayScorer) defaultWindow(sample WeatherSample, distance float64) *TimeWindow {
	if d.daypart == nil || len(sample.Hourly) == 0 {
		return nil
	}
	hs, ok := hourlyIndex(sample.Hourly)[d.daypart.StartHour]
	if !ok {
		return nil
	}
	hours := d.daypart.WindowHours(distance)
	return &TimeWindow{Start: hs.Time, End: hs.Time.Add(time.Duration(hours) * time.Hour)}
}

func hourlyIndex(hourly []WeatherSample) map[int]WeatherSample {
	byHour := make(map[int]WeatherSample, len(hourly))
	for _, hs := range hourly {
		h := hs.Time.Hour()
		if _, seen := byHour[h]; !seen {
			byHour[h] = hs
		}
	}
	return byHour
}

// normalizeForecast orders samples by date and keeps the first sample per calendar date.
func normalizeForecast(forecast []WeatherSample) []WeatherSample {
	out := make([]WeatherSample, 0, len(forecast))
	seen := NewDateSet()
	for _, s := range forecast {
		if s.Time.IsZero() {
			continue
		}
		key := DateKey(s.Time)
		if seen.Has(key) {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return civil(out[i].Time).Before(civil(out[j].Time))
	})
	return out
}
