//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/runplanner/internal/bootstrap"
	"github.com/yanqian/runplanner/internal/domain/auth"
	"github.com/yanqian/runplanner/internal/domain/planner"
	"github.com/yanqian/runplanner/internal/infra/config"
	"github.com/yanqian/runplanner/internal/infra/forecast/weatherapi"
	httpiface "github.com/yanqian/runplanner/internal/interface/http"
	"github.com/yanqian/runplanner/pkg/logger"
)

func initializeApp() (*bootstrap.App, func(), error) {
	wire.Build(
		config.Load,
		logger.New,
		provideAuthConfig,
		providePlannerConfig,
		provideForecastClient,
		providePostgresPool,
		provideTrainingRepository,
		provideAthleteRepository,
		provideForecastCache,
		provideArchive,
		planner.NewService,
		auth.NewService,
		wire.Bind(new(planner.ForecastProvider), new(*weatherapi.Client)),
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil, nil
}
