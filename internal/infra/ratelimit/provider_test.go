package ratelimit

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"students/config"
	"students/internal/infra/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
)

func TestNew_StartsAndStopsWithLifecycle(t *testing.T) {
	lc := fxtest.NewLifecycle(t)
	cfg := &config.Config{RateLimit: &config.RateLimitConfig{
		Enabled:       true,
		Window:        time.Minute,
		MaxRequests:   2,
		SweepInterval: time.Hour,
	}}

	store, err := New(Params{
		Lifecycle: lc,
		Config:    cfg,
		Metrics:   metrics.New(),
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)

	lc.RequireStart()

	allowed, err := store.Allow("10.0.0.1")
	require.NoError(t, err)
	assert.True(t, allowed)

	lc.RequireStop()
}

func TestNew_RejectsBadConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  *config.RateLimitConfig
	}{
		{name: "missing section", cfg: nil},
		{name: "zero requests", cfg: &config.RateLimitConfig{Window: time.Minute}},
		{name: "zero window", cfg: &config.RateLimitConfig{MaxRequests: 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(Params{
				Lifecycle: fxtest.NewLifecycle(t),
				Config:    &config.Config{RateLimit: tt.cfg},
				Metrics:   metrics.New(),
				Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
			})
			assert.Error(t, err)
		})
	}
}
