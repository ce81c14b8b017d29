package planner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yanqian/runplanner/internal/domain/schedule"
	apperrors "github.com/yanqian/runplanner/pkg/errors"
	"github.com/yanqian/runplanner/pkg/metrics"
	"github.com/yanqian/runplanner/pkg/util"
)

const maxRunDistance = 100

// Service exposes weekly schedule planning around the scheduling core.
type Service interface {
	Suggest(ctx context.Context, athleteID int64, req SuggestRequest) (SuggestResponse, error)
	Accept(ctx context.Context, athleteID int64, req AcceptRequest) (Run, error)
	ListRuns(ctx context.Context, athleteID int64, req ListRunsRequest) ([]Run, error)
	Preferences(ctx context.Context, athleteID int64) (Preferences, error)
	SavePreferences(ctx context.Context, athleteID int64, prefs Preferences) (Preferences, error)
	SavePlanWeek(ctx context.Context, athleteID int64, req PlanWeekRequest) (schedule.PlanWeek, error)
	Policies() []schedule.Policy
}

type service struct {
	cfg      Config
	forecast ForecastProvider
	cache    ForecastCache
	repo     Repository
	archive  Archive
	logger   *slog.Logger
	now      func() time.Time
	newID    func() string
}

// NewService wires up the planner domain. cache and archive may be nil.
func NewService(cfg Config, forecast ForecastProvider, cache ForecastCache, repo Repository, archive Archive, logger *slog.Logger) Service {
	if cfg.ForecastDays <= 0 {
		cfg.ForecastDays = 7
	}
	return &service{
		cfg:      cfg,
		forecast: forecast,
		cache:    cache,
		repo:     repo,
		archive:  archive,
		logger:   logger.With("component", "planner.service"),
		now:      util.NowUTC,
		newID:    func() string { return uuid.NewString() },
	}
}

func (s *service) Suggest(ctx context.Context, athleteID int64, req SuggestRequest) (SuggestResponse, error) {
	start, err := s.resolveDate(req.Date)
	if err != nil {
		return SuggestResponse{}, apperrors.Wrap("invalid_input", "date must be formatted as YYYY-MM-DD", err)
	}
	location := firstNonEmpty(req.Location, s.cfg.Location)
	if location == "" {
		return SuggestResponse{}, apperrors.Wrap("invalid_input", "location is required", nil)
	}
	policy, err := s.resolvePolicy(req.Policy)
	if err != nil {
		return SuggestResponse{}, err
	}

	forecast, usage, err := s.loadForecast(ctx, location, start)
	if err != nil {
		return SuggestResponse{}, err
	}
	forecast = fromDate(forecast, start)

	thresholds, err := s.loadThresholds(ctx, athleteID)
	if err != nil {
		return SuggestResponse{}, err
	}
	weekStart := util.WeekStart(start)
	var plan *schedule.PlanWeek
	week, found, err := s.repo.GetPlanWeek(ctx, athleteID, weekStart)
	if err != nil {
		return SuggestResponse{}, apperrors.Wrap("storage_error", "failed to load plan week", err)
	}
	if found {
		plan = &week
	}

	horizonEnd := start.AddDate(0, 0, s.cfg.ForecastDays)
	if n := len(forecast); n > 0 {
		horizonEnd = forecast[n-1].Time
	}
	existing, err := s.repo.ListRuns(ctx, athleteID, start.AddDate(0, 0, -policy.MaxGapDays), horizonEnd)
	if err != nil {
		return SuggestResponse{}, apperrors.Wrap("storage_error", "failed to load existing runs", err)
	}

	in := schedule.Input{
		Forecast:     forecast,
		Plan:         plan,
		Preferences:  thresholds,
		ExistingRuns: toExistingRuns(existing),
	}
	gen := schedule.NewGenerator(policy)
	resp := SuggestResponse{
		ID:          s.newID(),
		WeekStart:   weekStart.Format(util.DateLayout),
		Location:    location,
		Policy:      policy.Name,
		Distances:   schedule.ResolveDistances(plan, policy),
		Suggestions: gen.Generate(in),
		Days:        gen.Overview(in),
		Forecast:    usage,
		GeneratedAt: s.now(),
	}
	s.logger.Info("schedule generated",
		"athlete_id", athleteID,
		"policy", policy.Name,
		"forecast_days", len(forecast),
		"existing_runs", len(existing),
		"suggestions", len(resp.Suggestions),
		"cache_hit", usage.CacheHit,
	)

	s.archiveSchedule(ctx, athleteID, resp)
	return resp, nil
}

func (s *service) Accept(ctx context.Context, athleteID int64, req AcceptRequest) (Run, error) {
	date, err := util.ParseDate(req.Date)
	if err != nil {
		return Run{}, apperrors.Wrap("invalid_input", "date must be formatted as YYYY-MM-DD", err)
	}
	if !req.RunType.Valid() {
		return Run{}, apperrors.Wrap("invalid_input", fmt.Sprintf("unknown run type %q", req.RunType), nil)
	}
	if req.Distance <= 0 || req.Distance > maxRunDistance {
		return Run{}, apperrors.Wrap("invalid_input", fmt.Sprintf("distance must be between 0 and %d km", maxRunDistance), nil)
	}
	source := strings.TrimSpace(req.Source)
	switch source {
	case "":
		source = SourceSuggestion
	case SourceSuggestion, SourceManual, SourceFIT:
	default:
		return Run{}, apperrors.Wrap("invalid_input", fmt.Sprintf("unknown run source %q", source), nil)
	}

	run, err := s.repo.CreateRun(ctx, Run{
		ID:        s.newID(),
		AthleteID: athleteID,
		Date:      date,
		RunType:   req.RunType,
		Distance:  req.Distance,
		Source:    source,
		CreatedAt: s.now(),
	})
	if err != nil {
		if errors.Is(err, ErrRunConflict) {
			return Run{}, apperrors.Wrap("run_conflict", "a run is already scheduled on "+req.Date, err)
		}
		return Run{}, apperrors.Wrap("storage_error", "failed to store run", err)
	}
	s.logger.Info("run accepted", "athlete_id", athleteID, "date", req.Date, "run_type", req.RunType, "source", source)
	return run, nil
}

func (s *service) ListRuns(ctx context.Context, athleteID int64, req ListRunsRequest) ([]Run, error) {
	from := util.WeekStart(s.now())
	to := from.AddDate(0, 0, 6)
	if strings.TrimSpace(req.From) != "" {
		parsed, err := util.ParseDate(req.From)
		if err != nil {
			return nil, apperrors.Wrap("invalid_input", "from must be formatted as YYYY-MM-DD", err)
		}
		from = parsed
		if strings.TrimSpace(req.To) == "" {
			to = from.AddDate(0, 0, 6)
		}
	}
	if strings.TrimSpace(req.To) != "" {
		parsed, err := util.ParseDate(req.To)
		if err != nil {
			return nil, apperrors.Wrap("invalid_input", "to must be formatted as YYYY-MM-DD", err)
		}
		to = parsed
	}
	if to.Before(from) {
		return nil, apperrors.Wrap("invalid_input", "to must not be before from", nil)
	}
	runs, err := s.repo.ListRuns(ctx, athleteID, from, to)
	if err != nil {
		return nil, apperrors.Wrap("storage_error", "failed to list runs", err)
	}
	sort.SliceStable(runs, func(i, j int) bool { return runs[i].Date.Before(runs[j].Date) })
	return runs, nil
}

func (s *service) Preferences(ctx context.Context, athleteID int64) (Preferences, error) {
	thresholds, err := s.loadThresholds(ctx, athleteID)
	if err != nil {
		return Preferences{}, err
	}
	return Preferences{Thresholds: thresholds}, nil
}

func (s *service) SavePreferences(ctx context.Context, athleteID int64, prefs Preferences) (Preferences, error) {
	if err := ValidatePreferences(prefs); err != nil {
		return Preferences{}, apperrors.Wrap("invalid_input", err.Error(), nil)
	}
	if err := s.repo.SavePreferences(ctx, athleteID, prefs.Thresholds); err != nil {
		return Preferences{}, apperrors.Wrap("storage_error", "failed to save preferences", err)
	}
	return prefs, nil
}

func (s *service) SavePlanWeek(ctx context.Context, athleteID int64, req PlanWeekRequest) (schedule.PlanWeek, error) {
	week, err := ParsePlanWeek(req)
	if err != nil {
		return schedule.PlanWeek{}, apperrors.Wrap("invalid_input", err.Error(), nil)
	}
	if err := s.repo.SavePlanWeek(ctx, athleteID, week); err != nil {
		return schedule.PlanWeek{}, apperrors.Wrap("storage_error", "failed to save plan week", err)
	}
	return week, nil
}

func (s *service) Policies() []schedule.Policy {
	return schedule.Policies()
}

func (s *service) resolveDate(input string) (time.Time, error) {
	if strings.TrimSpace(input) == "" {
		now := s.now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return util.ParseDate(input)
}

func (s *service) resolvePolicy(name string) (schedule.Policy, error) {
	name = strings.TrimSpace(name)
	configured := name == "" || name == s.cfg.Policy
	if name == "" {
		name = s.cfg.Policy
	}
	policy, ok := schedule.PolicyByName(name)
	if !ok {
		return schedule.Policy{}, apperrors.Wrap("invalid_input", fmt.Sprintf("unknown policy %q", name), nil)
	}
	if configured {
		policy = ApplyOverrides(policy, s.cfg)
	}
	return policy, nil
}

// ApplyOverrides layers the configured distance and weight overrides onto a policy.
func ApplyOverrides(p schedule.Policy, cfg Config) schedule.Policy {
	if cfg.DefaultLongRun > 0 {
		p.DefaultLongRun = cfg.DefaultLongRun
	}
	if cfg.DefaultWeeklyMileage > 0 {
		p.DefaultWeeklyMileage = cfg.DefaultWeeklyMileage
	}
	if cfg.Weights != nil {
		p.Weights = *cfg.Weights
	}
	return p
}

func (s *service) loadForecast(ctx context.Context, location string, start time.Time) ([]schedule.WeatherSample, metrics.ForecastUsage, error) {
	key := cacheKey(location, start)
	if s.cache != nil {
		samples, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			s.logger.Warn("forecast cache read failed", "key", key, "error", err)
		} else if ok {
			return samples, metrics.ForecastUsage{Source: "cache", Days: len(samples), CacheHit: true}, nil
		}
	}

	samples, err := s.forecast.Forecast(ctx, location, s.cfg.ForecastDays)
	if err != nil {
		if apperrors.CodeOf(err) != "" {
			return nil, metrics.ForecastUsage{}, err
		}
		return nil, metrics.ForecastUsage{}, apperrors.Wrap("forecast_error", "failed to fetch forecast", err)
	}
	if s.cache != nil && len(samples) > 0 {
		if err := s.cache.Set(ctx, key, samples, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("forecast cache write failed", "key", key, "error", err)
		}
	}
	return samples, metrics.ForecastUsage{Source: "provider", Days: len(samples)}, nil
}

func (s *service) loadThresholds(ctx context.Context, athleteID int64) ([]schedule.Thresholds, error) {
	thresholds, found, err := s.repo.GetPreferences(ctx, athleteID)
	if err != nil {
		return nil, apperrors.Wrap("storage_error", "failed to load preferences", err)
	}
	if !found || len(thresholds) == 0 {
		return DefaultPreferences().Thresholds, nil
	}
	return thresholds, nil
}

func (s *service) archiveSchedule(ctx context.Context, athleteID int64, resp SuggestResponse) {
	if s.archive == nil {
		return
	}
	payload, err := json.Marshal(resp)
	if err != nil {
		s.logger.Error("marshal schedule snapshot failed", "error", err)
		return
	}
	key := ArchiveKey(athleteID, resp.WeekStart, resp.ID)
	if err := s.archive.Put(ctx, key, payload, "application/json"); err != nil {
		s.logger.Warn("schedule archive failed", "key", key, "error", err)
	}
}

// ArchiveKey is the object key a schedule snapshot is stored under.
func ArchiveKey(athleteID int64, weekStart, id string) string {
	return fmt.Sprintf("schedules/%d/%s/%s.json", athleteID, weekStart, id)
}

func cacheKey(location string, start time.Time) string {
	return fmt.Sprintf("forecast:%s:%s", strings.ToLower(strings.TrimSpace(location)), start.Format(util.DateLayout))
}

func fromDate(forecast []schedule.WeatherSample, start time.Time) []schedule.WeatherSample {
	startKey := start.Format(util.DateLayout)
	out := make([]schedule.WeatherSample, 0, len(forecast))
	for _, sample := range forecast {
		if schedule.DateKey(sample.Time) >= startKey {
			out = append(out, sample)
		}
	}
	return out
}

func toExistingRuns(runs []Run) []schedule.ExistingRun {
	out := make([]schedule.ExistingRun, 0, len(runs))
	for _, r := range runs {
		out = append(out, schedule.ExistingRun{Date: r.Date, RunType: r.RunType})
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
