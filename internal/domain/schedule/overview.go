package schedule

import "time"

// DayReport summarizes how one forecast day scores for the long run.
type DayReport struct {
	Date       time.Time `json:"date"`
	Score      int       `json:"score"`
	Quality    Quality   `json:"quality"`
	Acceptable bool      `json:"acceptable"`
	Rejections []string  `json:"rejections,omitempty"`
}

// Overview scores every forecast day against the long-run thresholds and
// lists the hard constraints each day fails.
func (g Generator) Overview(in Input) []DayReport {
	forecast := normalizeForecast(in.Forecast)
	dist := ResolveDistances(in.Plan, g.policy)
	t := indexThresholds(in.Preferences)[RunTypeLong]

	days := g.days.ScoreDays(forecast, t, dist.LongRun)
	reports := make([]DayReport, 0, len(days))
	for _, d := range days {
		report := DayReport{
			Date:       d.Date,
			Score:      d.Score,
			Quality:    d.Quality,
			Acceptable: d.Acceptable,
		}
		if t != nil {
			report.Rejections = RejectionReasons(d.Weather, *t)
		}
		reports = append(reports, report)
	}
	return reports
}
