package middleware

import (
	"log/slog"
	"strings"

	deliverycontext "students/internal/delivery/context"
	"students/internal/domain/entity"
	domainerrors "students/internal/domain/errors"
	"students/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

const bearerScheme = "Bearer"

// AuthMiddlewareParams holds dependencies for AuthMiddleware, injected by Fx.
type AuthMiddlewareParams struct {
	fx.In

	AuthUC usecase.AuthUsecase
	Logger *slog.Logger
}

// AuthMiddleware rejects requests without a valid bearer token and attaches
// the resolved identity to the ones it lets through.
type AuthMiddleware struct {
	authUC usecase.AuthUsecase
	logger *slog.Logger
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(params AuthMiddlewareParams) *AuthMiddleware {
	return &AuthMiddleware{
		authUC: params.AuthUC,
		logger: params.Logger,
	}
}

// Authenticate validates the Authorization header.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
		if authHeader == "" {
			return domainerrors.ErrTokenMissing
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], bearerScheme) {
			return domainerrors.ErrTokenFormat
		}

		ctx := c.Request().Context()
		identity, err := m.authUC.ResolveIdentity(ctx, parts[1])
		if err != nil {
			// The underlying token error stays in the logs only.
			deliverycontext.GetLoggerOrDefault(ctx, m.logger).Debug("Rejected bearer token", slog.Any("error", err))

			return domainerrors.ErrAuthenticationFailed
		}

		deliverycontext.SetIdentity(c, identity)

		return next(c)
	}
}

// GetIdentity extracts the authenticated identity from the context
func GetIdentity(c echo.Context) (*entity.IdentityClaim, bool) {
	return deliverycontext.GetIdentity(c)
}
