package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/yanqian/runplanner/internal/domain/planner"
	"github.com/yanqian/runplanner/internal/domain/schedule"
)

const dateLayout = "Mon 2006-01-02"

// WriteSchedule prints the suggestions followed by the day overview.
func WriteSchedule(w io.Writer, resp planner.SuggestResponse) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s  week of %s · %s · %s\n\n",
		StyleHeader.Render("Running schedule"), resp.WeekStart, resp.Location, StyleMuted.Render(resp.Policy))

	if len(resp.Suggestions) == 0 {
		sb.WriteString(StyleMuted.Render("No runs to suggest for this forecast."))
		sb.WriteString("\n")
	} else {
		table := NewTable("DATE", "RUN", "KM", "SCORE", "WINDOW", "REASON")
		for _, s := range resp.Suggestions {
			table.AddRow(
				s.Date.Format(dateLayout),
				runLabel(s),
				formatKm(s.Distance),
				QualityStyle(schedule.QualityFor(s.WeatherScore)).Render(strconv.Itoa(s.WeatherScore)),
				windowLabel(s.Window),
				s.Reason,
			)
		}
		sb.WriteString(table.Render())
	}

	if len(resp.Days) > 0 {
		sb.WriteString("\n")
		days := NewTable("DATE", "SCORE", "TIER", "LONG-RUN OK", "WHY NOT")
		for _, d := range resp.Days {
			ok := StyleSuccess.Render("yes")
			if !d.Acceptable {
				ok = StyleError.Render("no")
			}
			days.AddRow(
				d.Date.Format(dateLayout),
				strconv.Itoa(d.Score),
				QualityStyle(d.Quality).Render(string(d.Quality)),
				ok,
				strings.Join(d.Rejections, "; "),
			)
		}
		sb.WriteString(days.Render())
	}

	if !resp.Forecast.IsZero() {
		line := fmt.Sprintf("Forecast: %d days from %s", resp.Forecast.Days, resp.Forecast.Source)
		fmt.Fprintf(&sb, "\n%s\n", StyleMuted.Render(line))
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// WriteRuns prints committed runs.
func WriteRuns(w io.Writer, runs []planner.Run) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, StyleMuted.Render("No runs recorded."))
		return err
	}
	table := NewTable("DATE", "RUN", "KM", "SOURCE")
	var total float64
	for _, r := range runs {
		total += r.Distance
		table.AddRow(r.Date.Format(dateLayout), string(r.RunType), formatKm(r.Distance), r.Source)
	}
	_, err := fmt.Fprintf(w, "%s%s %s km\n", table.Render(), StyleBold.Render("Total"), formatKm(total))
	return err
}

func runLabel(s schedule.Suggestion) string {
	label := string(s.RunType)
	if s.Placement == schedule.PlacementGapFill {
		label += " (gap fill)"
	}
	if s.RunType == schedule.RunTypeLong {
		return StyleBold.Render(label)
	}
	return label
}

func windowLabel(w *schedule.TimeWindow) string {
	if w == nil {
		return "-"
	}
	return w.Start.Format("15:04") + "-" + w.End.Format("15:04")
}

func formatKm(km float64) string {
	return strconv.FormatFloat(km, 'f', 1, 64)
}
