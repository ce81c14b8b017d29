package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/runplanner/internal/domain/auth"
	"github.com/yanqian/runplanner/internal/domain/planner"
	"github.com/yanqian/runplanner/internal/infra/archive"
	"github.com/yanqian/runplanner/internal/infra/athleterepo"
	"github.com/yanqian/runplanner/internal/infra/config"
	"github.com/yanqian/runplanner/internal/infra/forecast/weatherapi"
	"github.com/yanqian/runplanner/internal/infra/forecastcache"
	"github.com/yanqian/runplanner/internal/infra/trainingrepo"
)

func provideAuthConfig(cfg *config.Config) auth.Config {
	return auth.Config{
		Secret:          cfg.Auth.Secret,
		TokenTTL:        cfg.Auth.TokenTTL,
		RefreshTokenTTL: cfg.Auth.RefreshTokenTTL,
	}
}

func providePlannerConfig(cfg *config.Config) planner.Config {
	return planner.Config{
		Location:             cfg.Forecast.Location,
		ForecastDays:         cfg.Forecast.Days,
		CacheTTL:             cfg.Forecast.CacheTTL,
		Policy:               cfg.Schedule.Policy,
		DefaultLongRun:       cfg.Schedule.DefaultLongRun,
		DefaultWeeklyMileage: cfg.Schedule.DefaultWeeklyMileage,
		Weights:              cfg.Schedule.Weights,
	}
}

func provideForecastClient(cfg *config.Config, logger *slog.Logger) *weatherapi.Client {
	return weatherapi.NewClient(weatherapi.Config{
		APIKey:            cfg.Forecast.APIKey,
		BaseURL:           cfg.Forecast.BaseURL,
		MaxRetries:        cfg.Forecast.MaxRetries,
		BaseBackoff:       cfg.Forecast.BaseBackoff,
		RequestsPerMinute: cfg.Forecast.RequestsPerMinute,
		RequestsPerDay:    cfg.Forecast.RequestsPerDay,
	}, time.Now, logger)
}

// providePostgresPool returns a nil pool when Postgres is not configured or
// unreachable; repositories then fall back to memory.
func providePostgresPool(cfg *config.Config, logger *slog.Logger) (*pgxpool.Pool, func()) {
	noop := func() {}
	dsn := strings.TrimSpace(cfg.Storage.Postgres.DSN)
	if dsn == "" {
		logger.Info("postgres dsn not set, using memory repositories")
		return nil, noop
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn, using memory repositories", "error", err)
		return nil, noop
	}
	if cfg.Storage.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = cfg.Storage.Postgres.MaxConns
	}
	if cfg.Storage.Postgres.MinConns > 0 {
		poolConfig.MinConns = cfg.Storage.Postgres.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool, using memory repositories", "error", err)
		return nil, noop
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, using memory repositories", "error", err)
		pool.Close()
		return nil, noop
	}
	logger.Info("postgres repositories enabled")
	return pool, pool.Close
}

func provideTrainingRepository(pool *pgxpool.Pool) planner.Repository {
	if pool == nil {
		return trainingrepo.NewMemoryRepository()
	}
	return trainingrepo.NewPostgresRepository(pool)
}

func provideAthleteRepository(pool *pgxpool.Pool) auth.Repository {
	if pool == nil {
		return athleterepo.NewMemoryRepository()
	}
	return athleterepo.NewPostgresRepository(pool)
}

func provideForecastCache(cfg *config.Config, logger *slog.Logger) (planner.ForecastCache, func()) {
	noop := func() {}
	if !cfg.Storage.Valkey.Enabled {
		return forecastcache.NewMemoryCache(), noop
	}
	opt, err := buildValkeyOptions(cfg.Storage.Valkey.Addr)
	if err != nil {
		logger.Error("invalid valkey configuration, falling back to memory cache", "error", err)
		return forecastcache.NewMemoryCache(), noop
	}
	client, err := valkey.NewClient(opt)
	if err != nil {
		logger.Error("failed to create valkey client, falling back to memory cache", "error", err)
		return forecastcache.NewMemoryCache(), noop
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		logger.Error("valkey ping failed, falling back to memory cache", "error", err)
		client.Close()
		return forecastcache.NewMemoryCache(), noop
	}
	logger.Info("valkey forecast cache enabled", "addr", cfg.Storage.Valkey.Addr)
	return forecastcache.NewValkeyCache(client, cfg.Storage.Valkey.Prefix), client.Close
}

func buildValkeyOptions(addr string) (valkey.ClientOption, error) {
	if strings.Contains(addr, "://") {
		return valkey.ParseURL(addr)
	}
	return valkey.ClientOption{InitAddress: []string{addr}}, nil
}

// provideArchive returns nil when archiving is disabled; the planner skips it.
func provideArchive(cfg *config.Config, logger *slog.Logger) planner.Archive {
	ac := cfg.Storage.Archive
	if !ac.Enabled {
		return nil
	}
	store, err := archive.NewS3Archive(archive.S3Config{
		Endpoint:  ac.Endpoint,
		AccessKey: ac.AccessKey,
		SecretKey: ac.SecretKey,
		Bucket:    ac.Bucket,
		Region:    ac.Region,
	}, logger)
	if err != nil {
		logger.Error("failed to initialize schedule archive, keeping snapshots in memory", "error", err)
		return archive.NewMemoryArchive()
	}
	logger.Info("schedule archive enabled", "bucket", ac.Bucket)
	return store
}
