package middleware

import (
	"fmt"
	"log/slog"
	"net/http"

	"students/config"
	"students/internal/delivery/api/response"
	deliverycontext "students/internal/delivery/context"
	domainerrors "students/internal/domain/errors"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// ErrorMiddleware handles errors in the HTTP pipeline
type ErrorMiddleware struct {
	logger     *slog.Logger
	production bool
}

// NewErrorMiddleware creates a new error handling middleware
func NewErrorMiddleware(logger *slog.Logger, cfg *config.Config) *ErrorMiddleware {
	return &ErrorMiddleware{
		logger:     logger,
		production: cfg.IsProduction(),
	}
}

// HandleHTTPError handles errors as Echo's HTTPErrorHandler
func (m *ErrorMiddleware) HandleHTTPError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, message, fields := m.classify(err, c)
	if status >= http.StatusInternalServerError {
		m.log(c).Error("Request failed",
			slog.Any("error", err),
			slog.Int("status", status),
			slog.String("path", c.Request().URL.Path),
			slog.String("method", c.Request().Method),
		)
	}

	var stack string
	if !m.production && status >= http.StatusInternalServerError {
		stack = fmt.Sprintf("%+v", err)
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(status)

		return
	}
	_ = response.Error(c, status, message, fields, stack)
}

func (m *ErrorMiddleware) classify(err error, c echo.Context) (int, string, []string) {
	var appErr domainerrors.AppError
	if errors.As(err, &appErr) {
		var fields []string
		var validationErr *domainerrors.ValidationError
		if errors.As(err, &validationErr) {
			fields = validationErr.Fields()
		}

		return appErr.HTTPCode(), appErr.Message(), fields
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		switch httpErr.Code {
		case http.StatusNotFound:
			return http.StatusNotFound, fmt.Sprintf("route not found: %s %s", c.Request().Method, c.Request().URL.Path), nil
		case http.StatusInternalServerError:
			return http.StatusInternalServerError, domainerrors.ErrInternalError.Message(), nil
		}

		message := http.StatusText(httpErr.Code)
		if msg, ok := httpErr.Message.(string); ok && msg != "" {
			message = msg
		}

		return httpErr.Code, message, nil
	}

	return http.StatusInternalServerError, domainerrors.ErrInternalError.Message(), nil
}

func (m *ErrorMiddleware) log(c echo.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(c.Request().Context(), m.logger)
}
