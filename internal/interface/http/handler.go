package http

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/runplanner/internal/domain/auth"
	"github.com/yanqian/runplanner/internal/domain/planner"
	"github.com/yanqian/runplanner/internal/domain/schedule"
)

// Handler wires the HTTP transport to domain services.
type Handler struct {
	plannerSvc planner.Service
	authSvc    auth.Service
	logger     *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(plannerSvc planner.Service, authSvc auth.Service, logger *slog.Logger) *Handler {
	return &Handler{
		plannerSvc: plannerSvc,
		authSvc:    authSvc,
		logger:     logger.With("component", "http.handler"),
	}
}

// SuggestSchedule computes the week's running schedule for the caller.
func (h *Handler) SuggestSchedule(c *gin.Context) {
	id, ok := athleteID(c)
	if !ok {
		return
	}
	var req planner.SuggestRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	if strings.TrimSpace(req.Location) == "" {
		// The athlete's home location beats the service default.
		if profile, err := h.authSvc.Profile(c.Request.Context(), id); err == nil {
			req.Location = profile.Location
		} else {
			h.logger.Warn("profile lookup failed, using default location", "athlete_id", id, "error", err)
		}
	}

	resp, err := h.plannerSvc.Suggest(c.Request.Context(), id, req)
	if err != nil {
		abortWithError(c, fromAppError(err, "schedule_failed"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AcceptRun commits a suggested (or manual) run to the calendar.
func (h *Handler) AcceptRun(c *gin.Context) {
	id, ok := athleteID(c)
	if !ok {
		return
	}
	var req planner.AcceptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	run, err := h.plannerSvc.Accept(c.Request.Context(), id, req)
	if err != nil {
		abortWithError(c, fromAppError(err, "accept_failed"))
		return
	}
	c.JSON(http.StatusCreated, runView(run))
}

// ListRuns returns committed runs between ?from and ?to.
func (h *Handler) ListRuns(c *gin.Context) {
	id, ok := athleteID(c)
	if !ok {
		return
	}
	runs, err := h.plannerSvc.ListRuns(c.Request.Context(), id, planner.ListRunsRequest{
		From: c.Query("from"),
		To:   c.Query("to"),
	})
	if err != nil {
		abortWithError(c, fromAppError(err, "runs_failed"))
		return
	}
	views := make([]runResponse, 0, len(runs))
	for _, run := range runs {
		views = append(views, runView(run))
	}
	c.JSON(http.StatusOK, gin.H{"runs": views})
}

// GetPreferences returns stored thresholds, or the defaults.
func (h *Handler) GetPreferences(c *gin.Context) {
	id, ok := athleteID(c)
	if !ok {
		return
	}
	prefs, err := h.plannerSvc.Preferences(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, fromAppError(err, "preferences_failed"))
		return
	}
	c.JSON(http.StatusOK, prefs)
}

// SavePreferences replaces the caller's thresholds.
func (h *Handler) SavePreferences(c *gin.Context) {
	id, ok := athleteID(c)
	if !ok {
		return
	}
	var req planner.Preferences
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	prefs, err := h.plannerSvc.SavePreferences(c.Request.Context(), id, req)
	if err != nil {
		abortWithError(c, fromAppError(err, "preferences_failed"))
		return
	}
	c.JSON(http.StatusOK, prefs)
}

// SavePlanWeek upserts one training-plan week.
func (h *Handler) SavePlanWeek(c *gin.Context) {
	id, ok := athleteID(c)
	if !ok {
		return
	}
	var req planner.PlanWeekRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	week, err := h.plannerSvc.SavePlanWeek(c.Request.Context(), id, req)
	if err != nil {
		abortWithError(c, fromAppError(err, "plan_failed"))
		return
	}
	c.JSON(http.StatusOK, planWeekView(week))
}

// ListPolicies describes the registered scheduling policies.
func (h *Handler) ListPolicies(c *gin.Context) {
	policies := h.plannerSvc.Policies()
	views := make([]policyResponse, 0, len(policies))
	for _, p := range policies {
		views = append(views, policyView(p))
	}
	c.JSON(http.StatusOK, gin.H{"policies": views})
}

// bindOptionalJSON accepts an empty body as the zero value.
func bindOptionalJSON(c *gin.Context, dst any) error {
	if c.Request.ContentLength == 0 {
		return nil
	}
	return c.ShouldBindJSON(dst)
}

type runResponse struct {
	ID        string           `json:"id"`
	Date      string           `json:"date"`
	RunType   schedule.RunType `json:"runType"`
	Distance  float64          `json:"distance"`
	Source    string           `json:"source"`
	CreatedAt time.Time        `json:"createdAt"`
}

func runView(run planner.Run) runResponse {
	return runResponse{
		ID:        run.ID,
		Date:      run.Date.Format(time.DateOnly),
		RunType:   run.RunType,
		Distance:  run.Distance,
		Source:    run.Source,
		CreatedAt: run.CreatedAt,
	}
}

type planWeekResponse struct {
	Phase               string  `json:"phase"`
	WeekNumber          int     `json:"weekNumber"`
	StartDate           string  `json:"startDate"`
	EndDate             string  `json:"endDate"`
	LongRunTarget       float64 `json:"longRunTarget"`
	WeeklyMileageTarget float64 `json:"weeklyMileageTarget"`
}

func planWeekView(week schedule.PlanWeek) planWeekResponse {
	return planWeekResponse{
		Phase:               week.Phase,
		WeekNumber:          week.WeekNumber,
		StartDate:           week.StartDate.Format(time.DateOnly),
		EndDate:             week.EndDate.Format(time.DateOnly),
		LongRunTarget:       week.LongRunTarget,
		WeeklyMileageTarget: week.WeeklyMileageTarget,
	}
}

type policyResponse struct {
	Name                 string            `json:"name"`
	LongRunDays          []string          `json:"longRunDays"`
	RestDays             int               `json:"restDays"`
	Weights              schedule.Weights  `json:"weights"`
	DefaultLongRun       float64           `json:"defaultLongRun"`
	DefaultWeeklyMileage float64           `json:"defaultWeeklyMileage"`
	Daypart              *schedule.Daypart `json:"daypart,omitempty"`
}

func policyView(p schedule.Policy) policyResponse {
	days := make([]string, 0, len(p.LongRunDays))
	for _, d := range p.LongRunDays {
		days = append(days, d.String())
	}
	return policyResponse{
		Name:                 p.Name,
		LongRunDays:          days,
		RestDays:             p.RestDays,
		Weights:              p.Weights,
		DefaultLongRun:       p.DefaultLongRun,
		DefaultWeeklyMileage: p.DefaultWeeklyMileage,
		Daypart:              p.Daypart,
	}
}
