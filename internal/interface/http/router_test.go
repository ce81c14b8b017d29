package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/yanqian/runplanner/internal/domain/auth"
	"github.com/yanqian/runplanner/internal/domain/planner"
	"github.com/yanqian/runplanner/internal/domain/schedule"
	"github.com/yanqian/runplanner/internal/infra/config"
	apperrors "github.com/yanqian/runplanner/pkg/errors"
)

const testToken = "good-token"

func TestRouter_ListPoliciesIsPublic(t *testing.T) {
	server := newRouterUnderTest(t, &stubPlanner{}, &stubAuth{}, nil)

	rec := performRequest(server, http.MethodGet, "/api/v1/policies", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Policies []policyResponse `json:"policies"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Policies, 2)
	require.Equal(t, schedule.PolicySundayMondayV2, body.Policies[0].Name)
	require.Equal(t, []string{"Sunday", "Monday"}, body.Policies[0].LongRunDays)
	require.Equal(t, schedule.PolicyWeekendV1, body.Policies[1].Name)
	require.Nil(t, body.Policies[1].Daypart)
}

func TestRouter_SuggestRequiresToken(t *testing.T) {
	server := newRouterUnderTest(t, &stubPlanner{}, &stubAuth{}, nil)

	rec := performRequest(server, http.MethodPost, "/api/v1/schedule/suggestions", `{}`, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "unauthorized", decodeErrorBody(t, rec.Body.Bytes())["error"]["code"])

	rec = performRequest(server, http.MethodPost, "/api/v1/schedule/suggestions", `{}`, "expired")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "invalid_token", decodeErrorBody(t, rec.Body.Bytes())["error"]["code"])
}

func TestRouter_SuggestUsesProfileLocation(t *testing.T) {
	plannerSvc := &stubPlanner{
		suggestFn: func(_ context.Context, athleteID int64, req planner.SuggestRequest) (planner.SuggestResponse, error) {
			require.Equal(t, int64(7), athleteID)
			require.Equal(t, "Utrecht", req.Location)
			require.Equal(t, "2024-07-01", req.Date)
			return planner.SuggestResponse{
				ID:        "sched-1",
				WeekStart: "2024-07-01",
				Location:  req.Location,
				Policy:    schedule.PolicyWeekendV1,
				Suggestions: []schedule.Suggestion{
					{RunType: schedule.RunTypeLong, Distance: 10, Reason: "Best weather of the week"},
				},
			}, nil
		},
	}
	server := newRouterUnderTest(t, plannerSvc, &stubAuth{location: "Utrecht"}, nil)

	rec := performRequest(server, http.MethodPost, "/api/v1/schedule/suggestions", `{"date":"2024-07-01"}`, testToken)
	require.Equal(t, http.StatusOK, rec.Code)

	var got planner.SuggestResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, "sched-1", got.ID)
	require.Len(t, got.Suggestions, 1)
	require.Equal(t, schedule.RunTypeLong, got.Suggestions[0].RunType)
}

func TestRouter_SuggestEmptyBodyAndErrorMapping(t *testing.T) {
	cases := []struct {
		code   string
		status int
	}{
		{code: "invalid_input", status: http.StatusBadRequest},
		{code: "location_not_found", status: http.StatusNotFound},
		{code: "rate_limit_exceeded", status: http.StatusTooManyRequests},
		{code: "invalid_api_key", status: http.StatusBadGateway},
		{code: "service_unavailable", status: http.StatusServiceUnavailable},
		{code: "storage_error", status: http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			plannerSvc := &stubPlanner{
				suggestFn: func(_ context.Context, _ int64, req planner.SuggestRequest) (planner.SuggestResponse, error) {
					require.Empty(t, req.Date)
					return planner.SuggestResponse{}, apperrors.Wrap(tc.code, "boom", nil)
				},
			}
			server := newRouterUnderTest(t, plannerSvc, &stubAuth{}, nil)

			rec := performRequest(server, http.MethodPost, "/api/v1/schedule/suggestions", "", testToken)
			require.Equal(t, tc.status, rec.Code)
			body := decodeErrorBody(t, rec.Body.Bytes())
			if tc.status == http.StatusInternalServerError {
				require.Equal(t, "schedule_failed", body["error"]["code"])
			} else {
				require.Equal(t, tc.code, body["error"]["code"])
			}
			require.Equal(t, "boom", body["error"]["message"])
		})
	}
}

func TestRouter_AcceptAndListRuns(t *testing.T) {
	date := time.Date(2024, 7, 6, 0, 0, 0, 0, time.UTC)
	plannerSvc := &stubPlanner{
		acceptFn: func(_ context.Context, athleteID int64, req planner.AcceptRequest) (planner.Run, error) {
			if req.Date == "2024-07-07" {
				return planner.Run{}, apperrors.Wrap("run_conflict", "a run is already scheduled on 2024-07-07", planner.ErrRunConflict)
			}
			return planner.Run{ID: "run-1", AthleteID: athleteID, Date: date, RunType: req.RunType, Distance: req.Distance, Source: planner.SourceSuggestion}, nil
		},
		listFn: func(_ context.Context, _ int64, req planner.ListRunsRequest) ([]planner.Run, error) {
			require.Equal(t, planner.ListRunsRequest{From: "2024-07-01", To: "2024-07-07"}, req)
			return []planner.Run{{ID: "run-1", Date: date, RunType: schedule.RunTypeLong, Distance: 10, Source: planner.SourceSuggestion}}, nil
		},
	}
	server := newRouterUnderTest(t, plannerSvc, &stubAuth{}, nil)

	rec := performRequest(server, http.MethodPost, "/api/v1/runs", `{"date":"2024-07-06","runType":"long_run","distance":10}`, testToken)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created runResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.Equal(t, "2024-07-06", created.Date)
	require.Equal(t, schedule.RunTypeLong, created.RunType)

	rec = performRequest(server, http.MethodPost, "/api/v1/runs", `{"date":"2024-07-07","runType":"easy_run","distance":5}`, testToken)
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "run_conflict", decodeErrorBody(t, rec.Body.Bytes())["error"]["code"])

	rec = performRequest(server, http.MethodGet, "/api/v1/runs?from=2024-07-01&to=2024-07-07", "", testToken)
	require.Equal(t, http.StatusOK, rec.Code)
	var listed struct {
		Runs []runResponse `json:"runs"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed.Runs, 1)
	require.Equal(t, "run-1", listed.Runs[0].ID)
}

func TestRouter_PreferencesAndPlanWeek(t *testing.T) {
	var saved planner.Preferences
	plannerSvc := &stubPlanner{
		savePrefsFn: func(_ context.Context, _ int64, prefs planner.Preferences) (planner.Preferences, error) {
			saved = prefs
			return prefs, nil
		},
		planFn: func(_ context.Context, _ int64, req planner.PlanWeekRequest) (schedule.PlanWeek, error) {
			if req.LongRunTarget > req.WeeklyMileageTarget {
				return schedule.PlanWeek{}, apperrors.Wrap("invalid_input", "long run target cannot exceed weekly target", nil)
			}
			return schedule.PlanWeek{
				Phase:               req.Phase,
				StartDate:           time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
				EndDate:             time.Date(2024, 7, 7, 0, 0, 0, 0, time.UTC),
				LongRunTarget:       req.LongRunTarget,
				WeeklyMileageTarget: req.WeeklyMileageTarget,
			}, nil
		},
	}
	server := newRouterUnderTest(t, plannerSvc, &stubAuth{}, nil)

	rec := performRequest(server, http.MethodPut, "/api/v1/preferences", `{"thresholds":[{"runType":"long_run","maxPrecipitation":30}]}`, testToken)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, saved.Thresholds, 1)
	require.Equal(t, 30.0, saved.Thresholds[0].MaxPrecipitation)

	rec = performRequest(server, http.MethodGet, "/api/v1/preferences", "", testToken)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = performRequest(server, http.MethodPut, "/api/v1/plan/week", `{"phase":"build","startDate":"2024-07-01","longRunTarget":14,"weeklyMileageTarget":30}`, testToken)
	require.Equal(t, http.StatusOK, rec.Code)
	var week planWeekResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &week))
	require.Equal(t, "2024-07-07", week.EndDate)

	rec = performRequest(server, http.MethodPut, "/api/v1/plan/week", `{"startDate":"2024-07-01","longRunTarget":40,"weeklyMileageTarget":30}`, testToken)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_AuthEndpoints(t *testing.T) {
	authSvc := &stubAuth{
		registerFn: func(_ context.Context, req auth.RegisterRequest) (auth.AthleteView, error) {
			if req.Email == "taken@example.com" {
				return auth.AthleteView{}, apperrors.Wrap("email_exists", "email already registered", nil)
			}
			return auth.AthleteView{ID: 1, Email: req.Email, Name: req.Name}, nil
		},
		loginFn: func(_ context.Context, req auth.LoginRequest) (auth.LoginResponse, error) {
			if req.Password != "pass1234" {
				return auth.LoginResponse{}, apperrors.Wrap("invalid_credentials", "invalid email or password", nil)
			}
			return auth.LoginResponse{Token: testToken, RefreshToken: "refresh"}, nil
		},
	}
	server := newRouterUnderTest(t, &stubPlanner{}, authSvc, nil)

	rec := performRequest(server, http.MethodPost, "/api/v1/auth/register", `{"email":"new@example.com","password":"pass1234","name":"Kip"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = performRequest(server, http.MethodPost, "/api/v1/auth/register", `{"email":"taken@example.com","password":"pass1234","name":"Kip"}`, "")
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "email_exists", decodeErrorBody(t, rec.Body.Bytes())["error"]["code"])

	rec = performRequest(server, http.MethodPost, "/api/v1/auth/login", `{"email":"new@example.com","password":"nope"}`, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = performRequest(server, http.MethodPost, "/api/v1/auth/login", `{"email":"new@example.com","password":"pass1234"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = performRequest(server, http.MethodGet, "/api/v1/auth/me", "", testToken)
	require.Equal(t, http.StatusOK, rec.Code)
	var me auth.AthleteView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
	require.Equal(t, int64(7), me.ID)
}

func TestRouter_RateLimit(t *testing.T) {
	server := newRouterUnderTest(t, &stubPlanner{}, &stubAuth{}, func(cfg *config.Config) {
		cfg.HTTP.RateLimit = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 1, Burst: 1}
	})

	rec := performRequest(server, http.MethodGet, "/api/v1/policies", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	rec = performRequest(server, http.MethodGet, "/api/v1/policies", "", "")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Equal(t, "rate_limit_exceeded", decodeErrorBody(t, rec.Body.Bytes())["error"]["code"])
}

func TestRouter_RetriesTransientFailures(t *testing.T) {
	calls := 0
	plannerSvc := &stubPlanner{
		acceptFn: func(_ context.Context, _ int64, req planner.AcceptRequest) (planner.Run, error) {
			calls++
			if calls == 1 {
				return planner.Run{}, apperrors.Wrap("storage_error", "failed to store run", nil)
			}
			return planner.Run{ID: "run-2", RunType: req.RunType, Distance: req.Distance}, nil
		},
	}
	server := newRouterUnderTest(t, plannerSvc, &stubAuth{}, func(cfg *config.Config) {
		cfg.HTTP.Retry = config.RetryConfig{Enabled: true, MaxAttempts: 3, BaseBackoff: time.Millisecond}
	})

	rec := performRequest(server, http.MethodPost, "/api/v1/runs", `{"date":"2024-07-02","runType":"easy_run","distance":5}`, testToken)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, 2, calls)
}

func TestRouter_CORSPreflight(t *testing.T) {
	server := newRouterUnderTest(t, &stubPlanner{}, &stubAuth{}, func(cfg *config.Config) {
		cfg.HTTP.AllowedOrigins = []string{"https://runs.example.com"}
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/policies", nil)
	req.Header.Set("Origin", "https://runs.example.com")
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "https://runs.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}

func performRequest(server *http.Server, method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)
	return rec
}

func newRouterUnderTest(t *testing.T, plannerSvc planner.Service, authSvc auth.Service, mutate func(*config.Config)) *http.Server {
	t.Helper()
	cfg := &config.Config{
		HTTP: config.HTTPConfig{
			Address:      ":0",
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
		},
	}
	if mutate != nil {
		mutate(cfg)
	}
	handler := NewHandler(plannerSvc, authSvc, newTestLogger())
	return NewRouter(cfg, handler, authSvc)
}

func newTestLogger() *slog.Logger {
	handler := slog.NewTextHandler(io.Discard, nil)
	return slog.New(handler)
}

func decodeErrorBody(t *testing.T, raw []byte) map[string]map[string]string {
	t.Helper()
	var body map[string]map[string]string
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}

type stubPlanner struct {
	suggestFn   func(ctx context.Context, athleteID int64, req planner.SuggestRequest) (planner.SuggestResponse, error)
	acceptFn    func(ctx context.Context, athleteID int64, req planner.AcceptRequest) (planner.Run, error)
	listFn      func(ctx context.Context, athleteID int64, req planner.ListRunsRequest) ([]planner.Run, error)
	savePrefsFn func(ctx context.Context, athleteID int64, prefs planner.Preferences) (planner.Preferences, error)
	planFn      func(ctx context.Context, athleteID int64, req planner.PlanWeekRequest) (schedule.PlanWeek, error)
}

func (s *stubPlanner) Suggest(ctx context.Context, athleteID int64, req planner.SuggestRequest) (planner.SuggestResponse, error) {
	if s.suggestFn != nil {
		return s.suggestFn(ctx, athleteID, req)
	}
	return planner.SuggestResponse{}, nil
}

func (s *stubPlanner) Accept(ctx context.Context, athleteID int64, req planner.AcceptRequest) (planner.Run, error) {
	if s.acceptFn != nil {
		return s.acceptFn(ctx, athleteID, req)
	}
	return planner.Run{}, nil
}

func (s *stubPlanner) ListRuns(ctx context.Context, athleteID int64, req planner.ListRunsRequest) ([]planner.Run, error) {
	if s.listFn != nil {
		return s.listFn(ctx, athleteID, req)
	}
	return nil, nil
}

func (s *stubPlanner) Preferences(context.Context, int64) (planner.Preferences, error) {
	return planner.DefaultPreferences(), nil
}

func (s *stubPlanner) SavePreferences(ctx context.Context, athleteID int64, prefs planner.Preferences) (planner.Preferences, error) {
	if s.savePrefsFn != nil {
		return s.savePrefsFn(ctx, athleteID, prefs)
	}
	return prefs, nil
}

func (s *stubPlanner) SavePlanWeek(ctx context.Context, athleteID int64, req planner.PlanWeekRequest) (schedule.PlanWeek, error) {
	if s.planFn != nil {
		return s.planFn(ctx, athleteID, req)
	}
	return schedule.PlanWeek{}, nil
}

func (s *stubPlanner) Policies() []schedule.Policy {
	return schedule.Policies()
}

type stubAuth struct {
	location   string
	registerFn func(ctx context.Context, req auth.RegisterRequest) (auth.AthleteView, error)
	loginFn    func(ctx context.Context, req auth.LoginRequest) (auth.LoginResponse, error)
}

func (s *stubAuth) Register(ctx context.Context, req auth.RegisterRequest) (auth.AthleteView, error) {
	if s.registerFn != nil {
		return s.registerFn(ctx, req)
	}
	return auth.AthleteView{}, nil
}

func (s *stubAuth) Login(ctx context.Context, req auth.LoginRequest) (auth.LoginResponse, error) {
	if s.loginFn != nil {
		return s.loginFn(ctx, req)
	}
	return auth.LoginResponse{}, nil
}

func (s *stubAuth) ValidateToken(_ context.Context, token string) (auth.Claims, error) {
	if token != testToken {
		return auth.Claims{}, apperrors.Wrap("invalid_token", "token validation failed", nil)
	}
	return auth.Claims{AthleteID: 7, Email: "runner@example.com", TokenType: "access"}, nil
}

func (s *stubAuth) Refresh(context.Context, string) (auth.LoginResponse, error) {
	return auth.LoginResponse{}, nil
}

func (s *stubAuth) Profile(_ context.Context, athleteID int64) (auth.AthleteView, error) {
	return auth.AthleteView{ID: athleteID, Email: "runner@example.com", Location: s.location}, nil
}

func (s *stubAuth) UpdateProfile(_ context.Context, athleteID int64, update auth.ProfileUpdate) (auth.AthleteView, error) {
	if update.Location != nil {
		s.location = *update.Location
	}
	return auth.AthleteView{ID: athleteID, Email: "runner@example.com", Location: s.location}, nil
}

func TestRouter_CORSUnknownOrigin(t *testing.T) {
	server := newRouterUnderTest(t, &stubPlanner{}, &stubAuth{}, func(cfg *config.Config) {
		cfg.HTTP.AllowedOrigins = []string{"https://runs.example.com"}
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/policies", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_UpdateMeChangesSuggestLocation(t *testing.T) {
	var gotLocation string
	plannerSvc := &stubPlanner{
		suggestFn: func(_ context.Context, _ int64, req planner.SuggestRequest) (planner.SuggestResponse, error) {
			gotLocation = req.Location
			return planner.SuggestResponse{}, nil
		},
	}
	server := newRouterUnderTest(t, plannerSvc, &stubAuth{location: "Utrecht"}, nil)

	rec := performRequest(server, http.MethodPut, "/api/v1/auth/me", `{"location":"Rotterdam"}`, testToken)
	require.Equal(t, http.StatusOK, rec.Code)
	var profile auth.AthleteView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &profile))
	require.Equal(t, "Rotterdam", profile.Location)

	rec = performRequest(server, http.MethodPost, "/api/v1/schedule/suggestions", "", testToken)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Rotterdam", gotLocation)
}

func TestRouter_RequestID(t *testing.T) {
	server := newRouterUnderTest(t, &stubPlanner{}, &stubAuth{}, nil)

	rec := performRequest(server, http.MethodGet, "/healthz", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	generated := rec.Header().Get("X-Request-ID")
	_, err := uuid.Parse(generated)
	require.NoError(t, err)

	inbound := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", inbound)
	rec = httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)
	require.Equal(t, inbound, rec.Header().Get("X-Request-ID"))

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "not-a-uuid")
	rec = httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)
	require.NotEqual(t, "not-a-uuid", rec.Header().Get("X-Request-ID"))
}
