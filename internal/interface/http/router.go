package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/runplanner/internal/domain/auth"
	"github.com/yanqian/runplanner/internal/infra/config"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
func NewRouter(cfg *config.Config, handler *Handler, authSvc auth.Service) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestID(),
		requestLogger(handler.logger),
		corsMiddleware(cfg.HTTP.AllowedOrigins),
		errorHandlingMiddleware(handler.logger),
		rateLimitMiddleware(cfg.HTTP.RateLimit, time.Now, handler.logger),
	)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")
	{
		api.POST("/auth/register", handler.Register)
		api.POST("/auth/login", handler.Login)
		api.POST("/auth/refresh", handler.Refresh)
		api.GET("/policies", handler.ListPolicies)
	}

	secured := api.Group("")
	secured.Use(authMiddleware(authSvc))
	{
		secured.GET("/auth/me", handler.Me)
		secured.PUT("/auth/me", handler.UpdateMe)
		secured.GET("/preferences", handler.GetPreferences)
		secured.PUT("/preferences", handler.SavePreferences)
		secured.PUT("/plan/week", handler.SavePlanWeek)
		secured.POST("/schedule/suggestions", handler.SuggestSchedule)
		secured.POST("/runs", handler.AcceptRun)
		secured.GET("/runs", handler.ListRuns)
	}

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        withRetry(router, cfg.HTTP.Retry, handler.logger),
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}
