package context

import (
	"context"

	"students/internal/domain/entity"

	"github.com/labstack/echo/v4"
)

// SetIdentity attaches the resolved identity to both the echo context and the
// request's context.Context.
func SetIdentity(c echo.Context, claim *entity.IdentityClaim) {
	c.Set(string(KeyIdentity), claim)

	req := c.Request()
	c.SetRequest(req.WithContext(WithIdentity(req.Context(), claim)))
}

// GetIdentity returns the identity attached by the auth gate.
func GetIdentity(c echo.Context) (*entity.IdentityClaim, bool) {
	claim, ok := c.Get(string(KeyIdentity)).(*entity.IdentityClaim)

	return claim, ok && claim != nil
}

// WithIdentity returns a new context carrying claim.
func WithIdentity(ctx context.Context, claim *entity.IdentityClaim) context.Context {
	return context.WithValue(ctx, KeyIdentity, claim)
}

// IdentityFromContext returns the identity carried by ctx.
func IdentityFromContext(ctx context.Context) (*entity.IdentityClaim, bool) {
	claim, ok := ctx.Value(KeyIdentity).(*entity.IdentityClaim)

	return claim, ok && claim != nil
}
