package schedule

import (
	"sort"
	"time"
)

// DefaultMaxGapDays is the largest allowed day difference between consecutive runs.
const DefaultMaxGapDays = 4

// ValidateNoLargeGaps reports whether consecutive suggestions are never more
// than DefaultMaxGapDays apart.
func ValidateNoLargeGaps(suggestions []Suggestion) bool {
	return validateGaps(suggestions, DefaultMaxGapDays)
}

func validateGaps(suggestions []Suggestion, maxGap int) bool {
	dates := sortedDates(suggestions)
	for i := 1; i < len(dates); i++ {
		if DaysBetween(dates[i-1], dates[i]) > maxGap {
			return false
		}
	}
	return true
}

// ValidateNoBackToBackHardDays reports whether no two hard runs sit on
// adjacent calendar days.
func ValidateNoBackToBackHardDays(suggestions []Suggestion) bool {
	hard := make([]time.Time, 0, len(suggestions))
	for _, s := range suggestions {
		if IsHard(s.RunType) {
			hard = append(hard, s.Date)
		}
	}
	sortTimes(hard)
	for i := 1; i < len(hard); i++ {
		if DaysBetween(hard[i-1], hard[i]) <= 1 {
			return false
		}
	}
	return true
}

func sortedDates(suggestions []Suggestion) []time.Time {
	dates := make([]time.Time, 0, len(suggestions))
	for _, s := range suggestions {
		dates = append(dates, s.Date)
	}
	sortTimes(dates)
	return dates
}

func sortTimes(ts []time.Time) {
	sort.SliceStable(ts, func(i, j int) bool {
		return civil(ts[i]).Before(civil(ts[j]))
	})
}

// streak is an inclusive range of run-free day offsets.
type streak struct {
	from, to int
}

func (s streak) length() int {
	return s.to - s.from + 1
}

// runFreeStreaks lists the run-free stretches of the horizon [0, span].
// Occupied offsets outside the horizon bound the first and last stretch;
// without them the horizon edges do.
func runFreeStreaks(occupied []int, span int) []streak {
	left, right := -1, span+1
	seenBefore := false
	inner := make([]int, 0, len(occupied))
	for _, p := range occupied {
		switch {
		case p < 0:
			if !seenBefore || p > left {
				left = p
				seenBefore = true
			}
		case p > span:
			right = min(right, p)
		default:
			inner = append(inner, p)
		}
	}
	sort.Ints(inner)

	var streaks []streak
	prev := left
	for _, p := range inner {
		if p == prev {
			continue
		}
		if p-prev > 1 {
			streaks = append(streaks, streak{from: prev + 1, to: p - 1})
		}
		prev = p
	}
	if right-prev > 1 {
		streaks = append(streaks, streak{from: prev + 1, to: right - 1})
	}
	return streaks
}

// fillGaps forces runs into every run-free stretch of maxGap or more days,
// preferring a day that splits the stretch into allowed pieces, then the best
// weather. Stretches with no available day are left alone.
func fillGaps(days []ScoredDay, occupied []time.Time, unavailable DateSet, maxGap int) []ScoredDay {
	if len(days) == 0 || maxGap < 1 {
		return nil
	}
	origin := days[0].Date
	span := DaysBetween(origin, days[len(days)-1].Date)
	byOffset := make(map[int]ScoredDay, len(days))
	for _, d := range days {
		byOffset[DaysBetween(origin, d.Date)] = d
	}
	offsets := make([]int, 0, len(occupied))
	for _, t := range occupied {
		offsets = append(offsets, DaysBetween(origin, t))
	}

	var added []ScoredDay
	for {
		filled := false
		for _, st := range runFreeStreaks(offsets, span) {
			if st.length() < maxGap {
				continue
			}
			day, ok := pickGapDay(st, byOffset, unavailable, maxGap)
			if !ok {
				continue
			}
			added = append(added, day)
			offsets = append(offsets, DaysBetween(origin, day.Date))
			filled = true
			break
		}
		if !filled {
			return added
		}
	}
}

func pickGapDay(st streak, byOffset map[int]ScoredDay, unavailable DateSet, maxGap int) (ScoredDay, bool) {
	var candidates, splitting []ScoredDay
	for p := st.from; p <= st.to; p++ {
		day, ok := byOffset[p]
		if !ok || unavailable.Has(day.Key) {
			continue
		}
		candidates = append(candidates, day)
		if p-st.from < maxGap && st.to-p < maxGap {
			splitting = append(splitting, day)
		}
	}
	pool := splitting
	if len(pool) == 0 {
		pool = candidates
	}
	if len(pool) == 0 {
		return ScoredDay{}, false
	}
	best := pool[0]
	for _, day := range pool[1:] {
		if day.Acceptable != best.Acceptable {
			if day.Acceptable {
				best = day
			}
			continue
		}
		if day.Score > best.Score {
			best = day
		}
	}
	return best, true
}
