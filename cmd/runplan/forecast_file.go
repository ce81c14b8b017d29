package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/yanqian/runplanner/internal/domain/planner"
	"github.com/yanqian/runplanner/internal/domain/schedule"
)

// fileForecast serves a forecast saved as a JSON array of daily samples.
type fileForecast struct {
	path    string
	samples []schedule.WeatherSample
}

func loadForecastFile(path string) (*fileForecast, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read forecast: %w", err)
	}
	var samples []schedule.WeatherSample
	if err := json.Unmarshal(data, &samples); err != nil {
		return nil, fmt.Errorf("parse forecast %s: %w", path, err)
	}
	sort.SliceStable(samples, func(i, j int) bool { return samples[i].Time.Before(samples[j].Time) })
	return &fileForecast{path: path, samples: samples}, nil
}

// Forecast ignores location; the file already is one place's forecast.
func (f *fileForecast) Forecast(_ context.Context, _ string, days int) ([]schedule.WeatherSample, error) {
	if days > 0 && days < len(f.samples) {
		return f.samples[:days], nil
	}
	return f.samples, nil
}

// firstDate is the forecast's first calendar day, or "" when empty.
func (f *fileForecast) firstDate() string {
	if len(f.samples) == 0 {
		return ""
	}
	return schedule.DateKey(f.samples[0].Time)
}

var _ planner.ForecastProvider = (*fileForecast)(nil)
