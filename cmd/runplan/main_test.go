package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/runplanner/internal/domain/planner"
	"github.com/yanqian/runplanner/internal/domain/schedule"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeForecast(t *testing.T, dir string) string {
	t.Helper()
	start := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	samples := make([]schedule.WeatherSample, 0, 7)
	for i := 0; i < 7; i++ {
		s := schedule.WeatherSample{
			Time:                start.AddDate(0, 0, i),
			Condition:           "Partly cloudy",
			TemperatureC:        15,
			PrecipitationChance: 10,
			WindSpeedKph:        10,
		}
		if i == 5 {
			s.Condition = "Sunny"
			s.TemperatureC = 12.5
			s.PrecipitationChance = 0
			s.WindSpeedKph = 5
		}
		samples = append(samples, s)
	}
	data, err := json.Marshal(samples)
	require.NoError(t, err)
	path := filepath.Join(dir, "forecast.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestSuggestAcceptAndList(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "runplan.db")
	forecast := writeForecast(t, dir)

	out, err := runCLI(t, "suggest", "--forecast", forecast, "--db", db, "--json")
	require.NoError(t, err)
	var resp planner.SuggestResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Equal(t, "2024-07-01", resp.WeekStart)
	require.Equal(t, schedule.PolicyWeekendV1, resp.Policy)
	require.Len(t, resp.Days, 7)

	var long *schedule.Suggestion
	for i := range resp.Suggestions {
		if resp.Suggestions[i].RunType == schedule.RunTypeLong {
			long = &resp.Suggestions[i]
		}
	}
	require.NotNil(t, long)
	require.Equal(t, "2024-07-06", schedule.DateKey(long.Date))

	out, err = runCLI(t, "accept", "--db", db, "--date", "2024-07-06", "--type", "long_run", "--distance", "10")
	require.NoError(t, err)
	require.Contains(t, out, "Recorded long_run of 10.0 km on Sat 2024-07-06.")

	_, err = runCLI(t, "accept", "--db", db, "--date", "2024-07-06", "--type", "easy_run", "--distance", "5")
	require.ErrorContains(t, err, "already scheduled")

	out, err = runCLI(t, "runs", "--db", db, "--from", "2024-07-01", "--json")
	require.NoError(t, err)
	var runs []planner.Run
	require.NoError(t, json.Unmarshal([]byte(out), &runs))
	require.Len(t, runs, 1)
	require.Equal(t, schedule.RunTypeLong, runs[0].RunType)

	// The recorded long run now occupies Saturday.
	out, err = runCLI(t, "suggest", "--forecast", forecast, "--db", db, "--json")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	for _, s := range resp.Suggestions {
		require.NotEqual(t, "2024-07-06", schedule.DateKey(s.Date))
	}
}

func TestSuggestWithPrefsAndPlanFiles(t *testing.T) {
	dir := t.TempDir()
	forecast := writeForecast(t, dir)
	prefs := filepath.Join(dir, "prefs.yaml")
	require.NoError(t, os.WriteFile(prefs, []byte(`
thresholds:
  - runType: long_run
    maxPrecipitation: 5
  - runType: easy_run
    maxPrecipitation: 60
`), 0o600))
	plan := filepath.Join(dir, "plan.yaml")
	require.NoError(t, os.WriteFile(plan, []byte(`
phase: build
weekNumber: 3
startDate: "2024-07-01"
longRunTarget: 16
weeklyMileageTarget: 40
`), 0o600))

	out, err := runCLI(t, "suggest", "--forecast", forecast, "--prefs", prefs, "--plan", plan, "--db", filepath.Join(dir, "j.db"), "--json")
	require.NoError(t, err)
	var resp planner.SuggestResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Equal(t, schedule.Distances{LongRun: 16, EasyRun: 8, EasyCount: 3}, resp.Distances)

	var rejected int
	for _, d := range resp.Days {
		if !d.Acceptable {
			rejected++
		}
	}
	// Only the dry Saturday passes a 5% precipitation limit.
	require.Equal(t, 6, rejected)
}

func TestSuggestTableOutput(t *testing.T) {
	dir := t.TempDir()
	out, err := runCLI(t, "suggest", "--forecast", writeForecast(t, dir), "--db", filepath.Join(dir, "j.db"), "--policy", schedule.PolicySundayMondayV2)
	require.NoError(t, err)
	require.Contains(t, out, "Running schedule")
	require.Contains(t, out, "sunday-monday-v2")
	require.Contains(t, out, "LONG-RUN OK")
}

func TestSuggestErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := runCLI(t, "suggest", "--db", filepath.Join(dir, "j.db"))
	require.Error(t, err)

	_, err = runCLI(t, "suggest", "--forecast", filepath.Join(dir, "missing.json"), "--db", filepath.Join(dir, "j.db"))
	require.ErrorContains(t, err, "read forecast")

	_, err = runCLI(t, "suggest", "--forecast", writeForecast(t, dir), "--db", filepath.Join(dir, "j.db"), "--policy", "midweek")
	require.ErrorContains(t, err, `unknown policy "midweek"`)
}

func TestImportFitSkipsUnreadableFiles(t *testing.T) {
	dir := t.TempDir()
	bogus := filepath.Join(dir, "bogus.fit")
	require.NoError(t, os.WriteFile(bogus, []byte("nope"), 0o600))

	out, err := runCLI(t, "import-fit", bogus, "--db", filepath.Join(dir, "j.db"))
	require.NoError(t, err)
	require.Contains(t, out, fmt.Sprintf("Imported 0 of %d files.", 1))
}
