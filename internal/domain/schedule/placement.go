package schedule

import (
	"sort"
	"time"
)

// PlaceLongRun picks the single best eligible day for the long run. Days that
// pass the hard weather filter win over days that fail it; among those the
// highest score wins, then a weekend day, then the earliest date. It returns
// false when no day is eligible.
func PlaceLongRun(days []ScoredDay, excluded, claimed DateSet, allowed []time.Weekday) (ScoredDay, bool) {
	var (
		best  ScoredDay
		found bool
	)
	for _, day := range days {
		if excluded.Has(day.Key) || claimed.Has(day.Key) || !weekdayAllowed(day.Date.Weekday(), allowed) {
			continue
		}
		if !found || betterLongRun(day, best) {
			best = day
			found = true
		}
	}
	return best, found
}

func betterLongRun(a, b ScoredDay) bool {
	if a.Acceptable != b.Acceptable {
		return a.Acceptable
	}
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if isWeekend(a.Date) != isWeekend(b.Date) {
		return isWeekend(a.Date)
	}
	return civil(a.Date).Before(civil(b.Date))
}

func weekdayAllowed(wd time.Weekday, allowed []time.Weekday) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if a == wd {
			return true
		}
	}
	return false
}

// PlaceEasyRuns greedily takes the n best eligible days, skipping the long-run
// date and the rest days after it. Fewer than n days are returned when the
// horizon runs out.
func PlaceEasyRuns(days []ScoredDay, longRun *time.Time, restDays int, excluded, claimed DateSet, n int) []ScoredDay {
	if n <= 0 {
		return nil
	}
	blocked := NewDateSet()
	if longRun != nil {
		blocked = restWindow(*longRun, restDays)
	}
	candidates := make([]ScoredDay, 0, len(days))
	for _, day := range days {
		if excluded.Has(day.Key) || claimed.Has(day.Key) || blocked.Has(day.Key) {
			continue
		}
		candidates = append(candidates, day)
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Acceptable != b.Acceptable {
			return a.Acceptable
		}
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		return civil(a.Date).Before(civil(b.Date))
	})
	if len(candidates) > n {
		candidates = candidates[:n]
	}
	return candidates
}

// restWindow returns the run date plus the rest days that follow it.
func restWindow(date time.Time, restDays int) DateSet {
	set := NewDateSet(date)
	for i := 1; i <= restDays; i++ {
		set.Add(date.AddDate(0, 0, i))
	}
	return set
}
