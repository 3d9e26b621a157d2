package middleware

import (
	"log/slog"
	"strings"

	"students/config"
	"students/internal/delivery/api/response"
	deliverycontext "students/internal/delivery/context"
	"students/internal/infra/metrics"
	"students/internal/infra/ratelimit"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/fx"
)

// MetricsPath is served by the router and never counted by the limiter.
const MetricsPath = "/metrics"

// RateLimitMiddlewareParams holds dependencies for RateLimitMiddleware, injected by Fx.
type RateLimitMiddlewareParams struct {
	fx.In

	Store   ratelimit.Store
	Config  *config.Config
	Metrics *metrics.Metrics
	Logger  *slog.Logger
}

// RateLimitMiddleware limits requests per client IP with a fixed window.
type RateLimitMiddleware struct {
	store   ratelimit.Store
	enabled bool
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewRateLimitMiddleware creates the limiter. It is a no-op in development
// or when rateLimit.enabled is false.
func NewRateLimitMiddleware(params RateLimitMiddlewareParams) *RateLimitMiddleware {
	enabled := params.Config.RateLimit != nil &&
		params.Config.RateLimit.Enabled &&
		!strings.EqualFold(params.Config.Env.Env, config.EnvDevelopment)

	return &RateLimitMiddleware{
		store:   params.Store,
		enabled: enabled,
		metrics: params.Metrics,
		logger:  params.Logger,
	}
}

// Handler returns the echo middleware.
func (m *RateLimitMiddleware) Handler() echo.MiddlewareFunc {
	return echomiddleware.RateLimiterWithConfig(echomiddleware.RateLimiterConfig{
		Skipper: m.skip,
		Store:   m.store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		DenyHandler: m.deny,
	})
}

func (m *RateLimitMiddleware) skip(c echo.Context) bool {
	return !m.enabled || c.Request().URL.Path == MetricsPath
}

func (m *RateLimitMiddleware) deny(c echo.Context, identifier string, _ error) error {
	m.metrics.RateLimitedTotal.Inc()
	deliverycontext.GetLoggerOrDefault(c.Request().Context(), m.logger).
		Warn("Rate limit exceeded", slog.String("client", identifier))

	return response.TooManyRequests(c, m.store.RetryAfter(identifier))
}
