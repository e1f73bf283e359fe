package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/skycast/internal/domain/session"
	"github.com/yanqian/skycast/internal/domain/view"
	"github.com/yanqian/skycast/internal/domain/weather"
	"github.com/yanqian/skycast/internal/infra/config"
	"github.com/yanqian/skycast/internal/infra/identity/google"
	"github.com/yanqian/skycast/internal/infra/identityrepo"
	"github.com/yanqian/skycast/internal/infra/openweather"
	"github.com/yanqian/skycast/internal/infra/sessionstore"
)

func provideWeatherClient(cfg *config.Config) *openweather.Client {
	return openweather.NewClient(openweather.Config{
		BaseURL:            cfg.Weather.BaseURL,
		APIKey:             cfg.Weather.APIKey,
		Timeout:            cfg.Weather.Timeout,
		BreakerMaxFailures: cfg.Weather.Breaker.MaxFailures,
		BreakerOpenTimeout: cfg.Weather.Breaker.OpenTimeout,
	})
}

func provideFetcher(svc weather.Service) view.Fetcher {
	return svc
}

func provideSessionConfig(cfg *config.Config) session.Config {
	return session.Config{
		Secret:             cfg.Auth.JWTSecret,
		TokenTTL:           cfg.Auth.TokenTTL,
		SessionTTL:         cfg.Auth.SessionTTL,
		TokenEncryptionKey: cfg.Auth.TokenEncryptionKey,
	}
}

func provideViewConfig(cfg *config.Config) view.Config {
	return view.Config{
		ProtectedDelay: cfg.View.ProtectedDelay,
		ClientIdleTTL:  cfg.View.ClientIdleTTL,
		SweepInterval:  cfg.View.SweepInterval,
	}
}

func provideIdentityProvider(cfg *config.Config, logger *slog.Logger) session.IdentityProvider {
	if strings.TrimSpace(cfg.Auth.Google.ClientID) == "" {
		logger.Warn("google client id not set, sign-in will be unavailable")
	}
	return google.New(google.Config{
		ClientID:     cfg.Auth.Google.ClientID,
		ClientSecret: cfg.Auth.Google.ClientSecret,
		RedirectURL:  cfg.Auth.Google.RedirectURL,
		IssuerURL:    cfg.Auth.Google.IssuerURL,
		RevokeURL:    cfg.Auth.Google.RevokeURL,
	}, logger)
}

func provideIdentityRepository(cfg *config.Config, logger *slog.Logger) (session.IdentityRepository, func()) {
	fallback := identityrepo.NewMemoryRepository()
	noop := func() {}
	dsn := strings.TrimSpace(cfg.Postgres.DSN)
	if dsn == "" {
		logger.Info("postgres dsn not set, using memory identity repository")
		return fallback, noop
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn, using memory identity repository", "error", err)
		return fallback, noop
	}
	if cfg.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = cfg.Postgres.MaxConns
	}
	if cfg.Postgres.MinConns > 0 {
		poolConfig.MinConns = cfg.Postgres.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool, using memory identity repository", "error", err)
		return fallback, noop
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, using memory identity repository", "error", err)
		pool.Close()
		return fallback, noop
	}
	logger.Info("postgres identity repository enabled")
	return identityrepo.NewPostgresRepository(pool), pool.Close
}

func provideSessionStore(cfg *config.Config, logger *slog.Logger) (session.Store, func()) {
	noop := func() {}
	if !cfg.Valkey.Enabled {
		return sessionstore.NewMemoryStore(), noop
	}
	opt, err := buildValkeyOptions(cfg.Valkey.Addr)
	if err != nil {
		logger.Error("invalid valkey configuration, falling back to memory store", "error", err)
		return sessionstore.NewMemoryStore(), noop
	}
	client, err := valkey.NewClient(opt)
	if err != nil {
		logger.Error("failed to create valkey client, falling back to memory store", "error", err)
		return sessionstore.NewMemoryStore(), noop
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		logger.Error("valkey ping failed, falling back to memory store", "error", err)
		client.Close()
		return sessionstore.NewMemoryStore(), noop
	}
	logger.Info("valkey session store enabled", "addr", cfg.Valkey.Addr)
	return sessionstore.NewValkeyStore(client, cfg.Valkey.Prefix), client.Close
}

func buildValkeyOptions(addr string) (valkey.ClientOption, error) {
	if strings.Contains(addr, "://") {
		return valkey.ParseURL(addr)
	}
	return valkey.ClientOption{InitAddress: []string{addr}}, nil
}
