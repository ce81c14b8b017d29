package schedule

import (
	"math"
	"sort"
	"time"
)

const (
	// OptimalScore is the lowest weather score flagged as optimal.
	OptimalScore = 80
	// minEasyHorizon is the shortest forecast that gets easy or gap-fill runs;
	// a single day can only hold the week's long run.
	minEasyHorizon = 2
)

// Distances is the resolved weekly volume split.
type Distances struct {
	LongRun   float64 `json:"longRun"`
	EasyRun   float64 `json:"easyRun"`
	EasyCount int     `json:"easyCount"`
}

// ResolveDistances derives the long-run distance and the easy-run split from
// the plan week, falling back to the policy defaults.
func ResolveDistances(plan *PlanWeek, p Policy) Distances {
	long := p.DefaultLongRun
	weekly := p.DefaultWeeklyMileage
	if plan != nil {
		if plan.LongRunTarget > 0 {
			long = plan.LongRunTarget
		}
		if plan.WeeklyMileageTarget > 0 {
			weekly = plan.WeeklyMileageTarget
		}
	}
	remaining := weekly - long
	count := 2
	if remaining >= p.EasySplitThreshold {
		count = 3
	}
	easy := math.Round(remaining/float64(count)*10) / 10
	if easy < p.MinEasyDistance {
		easy = p.MinEasyDistance
	}
	return Distances{LongRun: long, EasyRun: easy, EasyCount: count}
}

// Generator assembles a week's suggestions under one policy.
type Generator struct {
	policy Policy
	days   DayScorer
}

// NewGenerator builds a Generator for the policy.
func NewGenerator(p Policy) Generator {
	return Generator{
		policy: p,
		days:   NewDayScorer(NewScorer(p.Weights), p.Daypart),
	}
}

// GenerateSuggestions is shorthand for NewGenerator(p).Generate(in).
func GenerateSuggestions(in Input, p Policy) []Suggestion {
	return NewGenerator(p).Generate(in)
}

type placedDay struct {
	day       ScoredDay
	runType   RunType
	distance  float64
	placement Placement
}

// Generate places the long run, the easy runs and any gap-filling runs and
// returns them ordered by date. It never fails: missing inputs degrade to
// defaults or to an empty result.
func (g Generator) Generate(in Input) []Suggestion {
	forecast := normalizeForecast(in.Forecast)
	if len(forecast) == 0 {
		return []Suggestion{}
	}
	p := g.policy
	dist := ResolveDistances(in.Plan, p)
	prefs := indexThresholds(in.Preferences)

	longDays := g.days.ScoreDays(forecast, prefs[RunTypeLong], dist.LongRun)
	easyDays := g.days.ScoreDays(forecast, prefs[RunTypeEasy], dist.EasyRun)

	excluded := NewDateSet()
	restBlocked := NewDateSet()
	hardAdjacent := NewDateSet()
	var occupied []time.Time
	for _, r := range in.ExistingRuns {
		if r.Date.IsZero() {
			continue
		}
		excluded.Add(r.Date)
		occupied = append(occupied, r.Date)
		if r.RunType == RunTypeLong {
			restBlocked = restBlocked.merge(restWindow(r.Date, p.RestDays))
		}
		if IsHard(r.RunType) {
			hardAdjacent.Add(r.Date.AddDate(0, 0, -1))
			hardAdjacent.Add(r.Date.AddDate(0, 0, 1))
		}
	}

	claimed := NewDateSet()
	var placed []placedDay

	var longDate *time.Time
	if day, ok := PlaceLongRun(longDays, excluded.merge(hardAdjacent), claimed, p.LongRunDays); ok {
		claimed.Add(day.Date)
		date := day.Date
		longDate = &date
		placed = append(placed, placedDay{day: day, runType: RunTypeLong, distance: dist.LongRun, placement: PlacementWeather})
	}

	if len(forecast) >= minEasyHorizon {
		for _, day := range PlaceEasyRuns(easyDays, longDate, p.RestDays, excluded.merge(restBlocked), claimed, dist.EasyCount) {
			claimed.Add(day.Date)
			placed = append(placed, placedDay{day: day, runType: RunTypeEasy, distance: dist.EasyRun, placement: PlacementWeather})
		}

		unavailable := excluded.merge(restBlocked).merge(claimed)
		if longDate != nil {
			unavailable = unavailable.merge(restWindow(*longDate, p.RestDays))
		}
		for _, pd := range placed {
			occupied = append(occupied, pd.day.Date)
		}
		for _, day := range fillGaps(easyDays, occupied, unavailable, p.MaxGapDays) {
			placed = append(placed, placedDay{day: day, runType: RunTypeEasy, distance: dist.EasyRun, placement: PlacementGapFill})
		}
	}

	suggestions := make([]Suggestion, 0, len(placed))
	for _, pd := range placed {
		s := Suggestion{
			Date:         pd.day.Date,
			RunType:      pd.runType,
			Distance:     pd.distance,
			WeatherScore: pd.day.Score,
			IsOptimal:    pd.day.Score >= OptimalScore,
			Weather:      pd.day.Weather,
			Window:       pd.day.Window,
			Placement:    pd.placement,
		}
		s.Reason = Reason(s, pd.day)
		suggestions = append(suggestions, s)
	}
	sort.SliceStable(suggestions, func(i, j int) bool {
		return civil(suggestions[i].Date).Before(civil(suggestions[j].Date))
	})
	return suggestions
}

// indexThresholds keys thresholds by run type; the first entry per type wins.
func indexThresholds(prefs []Thresholds) map[RunType]*Thresholds {
	out := make(map[RunType]*Thresholds, len(prefs))
	for i := range prefs {
		if _, ok := out[prefs[i].RunType]; ok {
			continue
		}
		out[prefs[i].RunType] = &prefs[i]
	}
	return out
}
