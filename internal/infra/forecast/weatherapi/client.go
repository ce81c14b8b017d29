package weatherapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/yanqian/runplanner/internal/domain/schedule"
	apperrors "github.com/yanqian/runplanner/pkg/errors"
	"github.com/yanqian/runplanner/pkg/ratelimit"
)

const (
	defaultBaseURL = "https://api.weatherapi.com/v1"
	maxDays        = 14

	codeLocationNotFound = 1006
)

// Config holds the provider credentials and the client's retry and quota policy.
type Config struct {
	APIKey            string
	BaseURL           string
	MaxRetries        int
	BaseBackoff       time.Duration
	RequestsPerMinute int
	RequestsPerDay    int
}

// Client fetches daily and hourly forecasts from a WeatherAPI.com compatible endpoint.
type Client struct {
	cfg        Config
	baseURL    string
	httpClient *http.Client
	limiter    *ratelimit.Limiter
	quota      *ratelimit.Quota
	sleep      func(ctx context.Context, d time.Duration) error
	logger     *slog.Logger
}

// NewClient builds an API client. now drives the local quota accounting and may be nil.
func NewClient(cfg Config, now ratelimit.Clock, logger *slog.Logger) *Client {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = defaultBaseURL
	}
	if cfg.BaseBackoff <= 0 {
		cfg.BaseBackoff = time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	c := &Client{
		cfg:     cfg,
		baseURL: strings.TrimRight(base, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		quota:  ratelimit.NewQuota(cfg.RequestsPerDay, now),
		sleep:  sleepContext,
		logger: logger.With("component", "forecast.weatherapi"),
	}
	if cfg.RequestsPerMinute > 0 {
		c.limiter = ratelimit.New(cfg.RequestsPerMinute, cfg.RequestsPerMinute, ratelimit.WithClock(now))
	}
	return c
}

// Forecast returns one sample per forecast day, each carrying its hourly samples.
func (c *Client) Forecast(ctx context.Context, location string, days int) ([]schedule.WeatherSample, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, apperrors.Wrap("invalid_input", "location is required", nil)
	}
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return nil, apperrors.Wrap("invalid_api_key", "forecast api key is not configured", nil)
	}
	days = min(max(days, 1), maxDays)

	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := c.cfg.BaseBackoff * time.Duration(1<<(attempt-1))
			c.logger.Warn("forecast request failed, retrying", "attempt", attempt, "delay", delay.String(), "error", lastErr)
			if err := c.sleep(ctx, delay); err != nil {
				return nil, apperrors.Wrap("service_unavailable", "forecast request cancelled", err)
			}
		}
		if err := c.reserve(); err != nil {
			return nil, err
		}
		samples, err := c.fetch(ctx, location, days)
		if err == nil {
			c.logger.Info("forecast fetched", "location", location, "days", len(samples), "attempts", attempt+1)
			return samples, nil
		}
		lastErr = err
		if !retryable(err) {
			return nil, err
		}
	}
	return nil, lastErr
}

// Remaining reports provider calls left today, or -1 when unlimited.
func (c *Client) Remaining() int {
	return c.quota.Remaining()
}

func (c *Client) reserve() error {
	if c.limiter != nil && !c.limiter.Allow("forecast") {
		return apperrors.Wrap("rate_limit_exceeded", "forecast requests per minute exhausted", nil)
	}
	if !c.quota.Take() {
		return apperrors.Wrap("rate_limit_exceeded", "daily forecast quota exhausted", nil)
	}
	return nil
}

func (c *Client) fetch(ctx context.Context, location string, days int) ([]schedule.WeatherSample, error) {
	query := url.Values{}
	query.Set("key", c.cfg.APIKey)
	query.Set("q", location)
	query.Set("days", strconv.Itoa(days))
	query.Set("aqi", "no")
	query.Set("alerts", "no")
	endpoint := c.baseURL + "/forecast.json?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, apperrors.Wrap("forecast_error", "build forecast request", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.Wrap("service_unavailable", "forecast provider unreachable", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, apperrors.Wrap("service_unavailable", "read forecast response", err)
	}
	if resp.StatusCode >= 300 {
		return nil, classifyStatus(resp.StatusCode, body)
	}

	var raw apiResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, apperrors.Wrap("forecast_error", "decode forecast response", err)
	}
	return normalizeForecast(raw.Forecast.ForecastDay), nil
}

func classifyStatus(status int, body []byte) error {
	var payload apiErrorBody
	_ = json.Unmarshal(body, &payload)
	detail := fmt.Errorf("status=%d provider_code=%d message=%s", status, payload.Error.Code, payload.Error.Message)

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return apperrors.Wrap("invalid_api_key", "forecast api key rejected", detail)
	case status == http.StatusBadRequest && payload.Error.Code == codeLocationNotFound:
		return apperrors.Wrap("location_not_found", "no matching location found", detail)
	case status == http.StatusTooManyRequests:
		return apperrors.Wrap("rate_limit_exceeded", "forecast provider rate limit reached", detail)
	case status >= http.StatusInternalServerError:
		return apperrors.Wrap("service_unavailable", "forecast provider unavailable", detail)
	default:
		return apperrors.Wrap("forecast_error", "forecast request rejected", detail)
	}
}

func retryable(err error) bool {
	return apperrors.IsCode(err, "service_unavailable")
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type apiResponse struct {
	Location apiLocation `json:"location"`
	Forecast struct {
		ForecastDay []forecastDay `json:"forecastday"`
	} `json:"forecast"`
}

type apiLocation struct {
	Name    string `json:"name"`
	Country string `json:"country"`
	TzID    string `json:"tz_id"`
}

type apiErrorBody struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type condition struct {
	Text string `json:"text"`
}

type forecastDay struct {
	Date string `json:"date"`
	Day  struct {
		MaxTempC     float64   `json:"maxtemp_c"`
		MinTempC     float64   `json:"mintemp_c"`
		AvgTempC     float64   `json:"avgtemp_c"`
		MaxWindKph   float64   `json:"maxwind_kph"`
		AvgHumidity  float64   `json:"avghumidity"`
		ChanceOfRain float64   `json:"daily_chance_of_rain"`
		ChanceOfSnow float64   `json:"daily_chance_of_snow"`
		Condition    condition `json:"condition"`
	} `json:"day"`
	Hour []forecastHour `json:"hour"`
}

type forecastHour struct {
	Time         string    `json:"time"`
	TempC        float64   `json:"temp_c"`
	FeelsLikeC   float64   `json:"feelslike_c"`
	WindKph      float64   `json:"wind_kph"`
	Humidity     float64   `json:"humidity"`
	ChanceOfRain float64   `json:"chance_of_rain"`
	ChanceOfSnow float64   `json:"chance_of_snow"`
	Condition    condition `json:"condition"`
}

// normalizeForecast maps provider days onto samples. Local wall-clock times
// are kept as UTC so hour-of-day comparisons stay in the location's frame.
// Days with an unparsable date are skipped.
func normalizeForecast(days []forecastDay) []schedule.WeatherSample {
	out := make([]schedule.WeatherSample, 0, len(days))
	for _, d := range days {
		date, err := time.Parse("2006-01-02", d.Date)
		if err != nil {
			continue
		}
		sample := schedule.WeatherSample{
			Time:                date,
			Condition:           strings.TrimSpace(d.Day.Condition.Text),
			TemperatureC:        d.Day.AvgTempC,
			FeelsLikeC:          d.Day.AvgTempC,
			PrecipitationChance: math.Max(d.Day.ChanceOfRain, d.Day.ChanceOfSnow),
			Humidity:            d.Day.AvgHumidity,
			WindSpeedKph:        d.Day.MaxWindKph,
		}
		var feelsSum float64
		for _, h := range d.Hour {
			ts, err := time.Parse("2006-01-02 15:04", h.Time)
			if err != nil {
				continue
			}
			sample.Hourly = append(sample.Hourly, schedule.WeatherSample{
				Time:                ts,
				Condition:           strings.TrimSpace(h.Condition.Text),
				TemperatureC:        h.TempC,
				FeelsLikeC:          h.FeelsLikeC,
				PrecipitationChance: math.Max(h.ChanceOfRain, h.ChanceOfSnow),
				Humidity:            h.Humidity,
				WindSpeedKph:        h.WindKph,
			})
			feelsSum += h.FeelsLikeC
		}
		if n := len(sample.Hourly); n > 0 {
			sample.FeelsLikeC = math.Round(feelsSum/float64(n)*10) / 10
			sort.Slice(sample.Hourly, func(i, j int) bool {
				return sample.Hourly[i].Time.Before(sample.Hourly[j].Time)
			})
		}
		out = append(out, sample)
	}
	return out
}
