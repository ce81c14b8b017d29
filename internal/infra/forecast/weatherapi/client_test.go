package weatherapi

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "github.com/yanqian/runplanner/pkg/errors"
)

const sampleBody = `{
  "location": {"name": "Amsterdam", "country": "Netherlands", "tz_id": "Europe/Amsterdam"},
  "forecast": {"forecastday": [
    {
      "date": "2024-07-06",
      "day": {"maxtemp_c": 19.0, "mintemp_c": 11.0, "avgtemp_c": 15.2, "maxwind_kph": 18.4, "avghumidity": 71,
              "daily_chance_of_rain": 20, "daily_chance_of_snow": 0, "condition": {"text": "Partly cloudy "}},
      "hour": [
        {"time": "2024-07-06 07:00", "temp_c": 12.0, "feelslike_c": 11.0, "wind_kph": 8.0, "humidity": 80, "chance_of_rain": 0, "chance_of_snow": 0, "condition": {"text": "Clear"}},
        {"time": "2024-07-06 06:00", "temp_c": 11.0, "feelslike_c": 10.0, "wind_kph": 6.0, "humidity": 82, "chance_of_rain": 10, "chance_of_snow": 0, "condition": {"text": "Clear"}}
      ]
    },
    {
      "date": "not-a-date",
      "day": {"avgtemp_c": 10, "condition": {"text": "Rain"}},
      "hour": []
    },
    {
      "date": "2024-07-07",
      "day": {"avgtemp_c": 3.0, "maxwind_kph": 10, "avghumidity": 90, "daily_chance_of_rain": 10, "daily_chance_of_snow": 70, "condition": {"text": "Light snow"}},
      "hour": []
    }
  ]}
}`

func TestClientForecastSuccess(t *testing.T) {
	var gotPath string
	var gotQuery url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleBody))
	}))
	defer server.Close()

	client := newTestClient(server.URL, Config{})
	samples, err := client.Forecast(context.Background(), " Amsterdam ", 7)
	require.NoError(t, err)
	require.Equal(t, "/forecast.json", gotPath)
	require.Equal(t, "secret", gotQuery.Get("key"))
	require.Equal(t, "Amsterdam", gotQuery.Get("q"))
	require.Equal(t, "7", gotQuery.Get("days"))
	require.Len(t, samples, 2)

	sat := samples[0]
	require.Equal(t, time.Date(2024, 7, 6, 0, 0, 0, 0, time.UTC), sat.Time)
	require.Equal(t, "Partly cloudy", sat.Condition)
	require.Equal(t, 15.2, sat.TemperatureC)
	require.Equal(t, 10.5, sat.FeelsLikeC)
	require.Equal(t, 20.0, sat.PrecipitationChance)
	require.Equal(t, 18.4, sat.WindSpeedKph)
	require.Len(t, sat.Hourly, 2)
	require.Equal(t, 6, sat.Hourly[0].Time.Hour())
	require.Equal(t, 7, sat.Hourly[1].Time.Hour())

	sun := samples[1]
	require.Equal(t, 70.0, sun.PrecipitationChance)
	require.Equal(t, 3.0, sun.FeelsLikeC)
	require.Empty(t, sun.Hourly)
}

func TestClientForecastErrorTaxonomy(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		code   string
	}{
		{"unauthorized", http.StatusUnauthorized, `{"error":{"code":2006,"message":"API key is invalid."}}`, "invalid_api_key"},
		{"forbidden", http.StatusForbidden, `{"error":{"code":2007,"message":"quota exceeded"}}`, "invalid_api_key"},
		{"unknown location", http.StatusBadRequest, `{"error":{"code":1006,"message":"No matching location found."}}`, "location_not_found"},
		{"bad request", http.StatusBadRequest, `{"error":{"code":1003,"message":"Parameter q is missing."}}`, "forecast_error"},
		{"throttled", http.StatusTooManyRequests, ``, "rate_limit_exceeded"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var calls int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&calls, 1)
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer server.Close()

			client := newTestClient(server.URL, Config{MaxRetries: 3})
			_, err := client.Forecast(context.Background(), "Nowhere", 3)
			require.Error(t, err)
			require.True(t, apperrors.IsCode(err, tc.code), err.Error())
			require.Equal(t, int32(1), atomic.LoadInt32(&calls), "4xx responses are not retried")
		})
	}
}

func TestClientForecastRetriesServerErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(sampleBody))
	}))
	defer server.Close()

	client := newTestClient(server.URL, Config{MaxRetries: 3})
	var delays []time.Duration
	client.sleep = func(_ context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	}

	samples, err := client.Forecast(context.Background(), "Amsterdam", 3)
	require.NoError(t, err)
	require.Len(t, samples, 2)
	require.Equal(t, int32(3), atomic.LoadInt32(&calls))
	require.Equal(t, []time.Duration{time.Second, 2 * time.Second}, delays)
}

func TestClientForecastGivesUpAfterMaxRetries(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := newTestClient(server.URL, Config{MaxRetries: 3})
	_, err := client.Forecast(context.Background(), "Amsterdam", 3)
	require.True(t, apperrors.IsCode(err, "service_unavailable"))
	require.Equal(t, int32(4), atomic.LoadInt32(&calls))
}

func TestClientForecastDailyQuota(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(sampleBody))
	}))
	defer server.Close()

	now := time.Date(2024, 7, 6, 22, 0, 0, 0, time.UTC)
	client := NewClient(Config{APIKey: "secret", BaseURL: server.URL, RequestsPerDay: 1}, func() time.Time { return now }, newTestLogger())

	_, err := client.Forecast(context.Background(), "Amsterdam", 3)
	require.NoError(t, err)
	require.Equal(t, 0, client.Remaining())

	_, err = client.Forecast(context.Background(), "Amsterdam", 3)
	require.True(t, apperrors.IsCode(err, "rate_limit_exceeded"))
	require.Equal(t, int32(1), atomic.LoadInt32(&calls))

	now = now.Add(3 * time.Hour)
	_, err = client.Forecast(context.Background(), "Amsterdam", 3)
	require.NoError(t, err)
}

func TestClientForecastValidatesInput(t *testing.T) {
	client := newTestClient("http://127.0.0.1:1", Config{})
	_, err := client.Forecast(context.Background(), "  ", 3)
	require.True(t, apperrors.IsCode(err, "invalid_input"))

	client = NewClient(Config{BaseURL: "http://127.0.0.1:1"}, nil, newTestLogger())
	_, err = client.Forecast(context.Background(), "Amsterdam", 3)
	require.True(t, apperrors.IsCode(err, "invalid_api_key"))
}

func newTestClient(baseURL string, cfg Config) *Client {
	cfg.APIKey = "secret"
	cfg.BaseURL = baseURL
	client := NewClient(cfg, nil, newTestLogger())
	client.sleep = func(context.Context, time.Duration) error { return nil }
	return client
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
