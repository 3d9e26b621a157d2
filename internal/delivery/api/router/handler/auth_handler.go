package handler

import (
	"log/slog"
	"net/http"

	"students/internal/delivery/api/middleware"
	"students/internal/delivery/api/response"
	domainerrors "students/internal/domain/errors"
	"students/internal/infra/metrics"
	"students/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// AuthHandlerParams holds dependencies for AuthHandler, injected by Fx.
type AuthHandlerParams struct {
	fx.In

	AuthUC  usecase.AuthUsecase
	Metrics *metrics.Metrics
	Logger  *slog.Logger
}

// AuthHandler serves login and identity lookups.
type AuthHandler struct {
	authUC  usecase.AuthUsecase
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewAuthHandler is the constructor for AuthHandler
func NewAuthHandler(params AuthHandlerParams) *AuthHandler {
	return &AuthHandler{
		authUC:  params.AuthUC,
		metrics: params.Metrics,
		logger:  params.Logger,
	}
}

// Login exchanges credentials for a session token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return domainerrors.ErrInvalidInput.WrapMessage(err.Error())
	}

	if err := c.Validate(&req); err != nil {
		h.metrics.RecordLogin(metrics.LoginRejected)

		return err
	}

	output, err := h.authUC.Login(c.Request().Context(), &usecase.LoginInput{
		AccessUsername: req.AccessUsername,
		Secret:         req.Secret,
	})
	if err != nil {
		h.metrics.RecordLogin(loginOutcome(err))

		return errors.WithStack(err)
	}
	h.metrics.RecordLogin(metrics.LoginSucceeded)

	return response.Success(c, http.StatusOK, LoginResponse{
		Account: toAccountResponse(output.Account),
		Token:   output.Token,
	}, "login successful")
}

// Me returns the identity resolved from the bearer token.
func (h *AuthHandler) Me(c echo.Context) error {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		return domainerrors.ErrAuthenticationFailed
	}

	return response.Success(c, http.StatusOK, identity, "")
}

func loginOutcome(err error) string {
	switch domainerrors.KindOf(err) {
	case domainerrors.KindBadRequest, domainerrors.KindUnauthorized:
		return metrics.LoginRejected
	default:
		return metrics.LoginFailed
	}
}
