package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/preburn-dashboard/internal/domain/dashboard"
	"github.com/yanqian/preburn-dashboard/internal/infra/burnoutapi"
	"github.com/yanqian/preburn-dashboard/internal/infra/config"
	"github.com/yanqian/preburn-dashboard/internal/infra/interactionlog"
	"github.com/yanqian/preburn-dashboard/internal/infra/viewstore"
	httpiface "github.com/yanqian/preburn-dashboard/internal/interface/http"
	"github.com/yanqian/preburn-dashboard/pkg/metrics"
)

func provideDashboardConfig(cfg *config.Config) dashboard.Config {
	return dashboard.Config{
		SessionTTL:  cfg.Dashboard.SessionTTL,
		MaxSessions: cfg.Dashboard.MaxSessions,
	}
}

func provideBurnoutClient(cfg *config.Config) *burnoutapi.Client {
	return burnoutapi.NewClient(cfg.Upstream.BaseURL, cfg.Upstream.Timeout)
}

func provideUpstreamProxy(cfg *config.Config, logger *slog.Logger) (*httpiface.UpstreamProxy, error) {
	return httpiface.NewUpstreamProxy(cfg, logger)
}

func provideMetricsCollector() (*metrics.Collector, error) {
	return metrics.NewCollector()
}

func provideRecorder(collector *metrics.Collector) dashboard.Recorder {
	return collector
}

func provideInteractionLog(cfg *config.Config, logger *slog.Logger) dashboard.InteractionLog {
	fallback := interactionlog.NewMemoryLog(0)
	pg := cfg.Dashboard.InteractionLog.Postgres
	dsn := strings.TrimSpace(pg.DSN)
	if dsn == "" {
		logger.Info("dashboard postgres dsn not set, using memory interaction log")
		return fallback
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn, using memory interaction log", "error", err)
		return fallback
	}
	if pg.MaxConns > 0 {
		poolConfig.MaxConns = pg.MaxConns
	}
	if pg.MinConns > 0 {
		poolConfig.MinConns = pg.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool, using memory interaction log", "error", err)
		return fallback
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, using memory interaction log", "error", err)
		pool.Close()
		return fallback
	}
	store := interactionlog.NewPostgresLog(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		logger.Error("failed to create interaction table, using memory interaction log", "error", err)
		pool.Close()
		return fallback
	}
	logger.Info("dashboard postgres interaction log enabled")
	return store
}

func provideViewStore(cfg *config.Config, logger *slog.Logger) dashboard.ViewStore {
	vs := cfg.Dashboard.ViewStore
	if vs.Valkey.Enabled {
		opt, err := buildValkeyOptions(vs.Valkey.Addr)
		if err != nil {
			logger.Error("invalid valkey configuration, falling back to memory view store", "error", err)
			return viewstore.NewMemoryStore()
		}
		client, err := valkey.NewClient(opt)
		if err != nil {
			logger.Error("failed to create valkey client, falling back to memory view store", "error", err)
			return viewstore.NewMemoryStore()
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
			logger.Error("valkey ping failed, falling back to memory view store", "error", err)
			client.Close()
		} else {
			logger.Info("dashboard valkey view store enabled", "addr", vs.Valkey.Addr)
			return viewstore.NewValkeyStore(client, vs.Prefix)
		}
	}
	return viewstore.NewMemoryStore()
}

func buildValkeyOptions(addr string) (valkey.ClientOption, error) {
	var (
		opt valkey.ClientOption
		err error
	)
	if strings.Contains(addr, "://") {
		opt, err = valkey.ParseURL(addr)
	} else {
		opt = valkey.ClientOption{InitAddress: []string{addr}}
	}
	if err != nil {
		return valkey.ClientOption{}, err
	}
	return opt, nil
}
