//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/preburn-dashboard/internal/bootstrap"
	"github.com/yanqian/preburn-dashboard/internal/domain/dashboard"
	"github.com/yanqian/preburn-dashboard/internal/infra/burnoutapi"
	"github.com/yanqian/preburn-dashboard/internal/infra/config"
	httpiface "github.com/yanqian/preburn-dashboard/internal/interface/http"
	"github.com/yanqian/preburn-dashboard/pkg/logger"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		provideDashboardConfig,
		provideBurnoutClient,
		provideUpstreamProxy,
		provideMetricsCollector,
		provideRecorder,
		provideInteractionLog,
		provideViewStore,
		dashboard.NewService,
		wire.Bind(new(dashboard.Fetcher), new(*burnoutapi.Client)),
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
