package ratelimit

import (
	"context"
	"log/slog"

	"students/config"
	"students/internal/infra/metrics"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// Params holds dependencies for the store, injected by Fx.
type Params struct {
	fx.In
	fx.Lifecycle

	Config  *config.Config
	Metrics *metrics.Metrics
	Logger  *slog.Logger
}

// New builds the fixed-window store from the rateLimit section and ties its
// sweeper to the application lifecycle.
func New(params Params) (Store, error) {
	cfg := params.Config.RateLimit
	if cfg == nil {
		return nil, errors.New("rate limit configuration is missing")
	}
	if cfg.MaxRequests <= 0 || cfg.Window <= 0 {
		return nil, errors.Errorf("invalid rate limit: %d requests per %s", cfg.MaxRequests, cfg.Window)
	}

	store := NewFixedWindowStore(cfg.MaxRequests, cfg.Window, cfg.SweepInterval,
		WithClientsGauge(params.Metrics.RateLimitClients),
	)

	params.Lifecycle.Append(fx.Hook{
		OnStart: func(context.Context) error {
			store.Start()
			params.Logger.Info("Rate limit store started",
				slog.Int("max_requests", cfg.MaxRequests),
				slog.Duration("window", cfg.Window),
				slog.Duration("sweep_interval", cfg.SweepInterval),
			)

			return nil
		},
		OnStop: func(context.Context) error {
			store.Close()

			return nil
		},
	})

	return store, nil
}
