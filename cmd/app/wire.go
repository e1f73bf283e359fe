//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/skycast/internal/bootstrap"
	"github.com/yanqian/skycast/internal/domain/session"
	"github.com/yanqian/skycast/internal/domain/view"
	"github.com/yanqian/skycast/internal/domain/weather"
	"github.com/yanqian/skycast/internal/infra/config"
	"github.com/yanqian/skycast/internal/infra/openweather"
	httpiface "github.com/yanqian/skycast/internal/interface/http"
	"github.com/yanqian/skycast/pkg/logger"
)

func initializeApp() (*bootstrap.App, func(), error) {
	wire.Build(
		config.Load,
		logger.New,
		provideWeatherClient,
		provideFetcher,
		provideSessionConfig,
		provideViewConfig,
		provideIdentityProvider,
		provideIdentityRepository,
		provideSessionStore,
		weather.NewService,
		session.NewFactory,
		session.NewTokenIssuer,
		view.NewRegistry,
		wire.Bind(new(weather.Provider), new(*openweather.Client)),
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil, nil
}
