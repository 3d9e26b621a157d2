// Package response writes the JSON envelopes every endpoint answers with.
package response

import (
	"math"
	"net/http"
	"strconv"
	"time"

	domainerrors "students/internal/domain/errors"

	"github.com/labstack/echo/v4"
)

// Response is the success envelope.
type Response struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message,omitempty"`
	Data       any         `json:"data,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// Pagination describes one page of a list response.
type Pagination struct {
	Total   int64 `json:"total"`
	Limit   int   `json:"limit"`
	Offset  int   `json:"offset"`
	HasMore bool  `json:"hasMore"`
}

// ErrorResponse is the failure envelope.
type ErrorResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
	Stack   string   `json:"stack,omitempty"`
}

// AvailabilityResponse answers username and email availability checks.
type AvailabilityResponse struct {
	Success   bool   `json:"success"`
	Available bool   `json:"available"`
	Message   string `json:"message"`
}

// RateLimitResponse is returned with 429 responses.
type RateLimitResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	RetryAfter int64  `json:"retryAfter"`
}

// Success writes a success envelope. message may be empty.
func Success(c echo.Context, statusCode int, data any, message string) error {
	return c.JSON(statusCode, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Page writes a list envelope with pagination metadata.
func Page(c echo.Context, data any, pagination Pagination) error {
	return c.JSON(http.StatusOK, Response{
		Success:    true,
		Data:       data,
		Pagination: &pagination,
	})
}

// Message writes a success envelope without data.
func Message(c echo.Context, statusCode int, message string) error {
	return c.JSON(statusCode, Response{
		Success: true,
		Message: message,
	})
}

// Availability writes the result of an availability check.
func Availability(c echo.Context, available bool, message string) error {
	return c.JSON(http.StatusOK, AvailabilityResponse{
		Success:   true,
		Available: available,
		Message:   message,
	})
}

// Error writes a failure envelope.
func Error(c echo.Context, statusCode int, message string, fieldErrors []string, stack string) error {
	if message == "" {
		message = http.StatusText(statusCode)
	}

	return c.JSON(statusCode, ErrorResponse{
		Success: false,
		Message: message,
		Errors:  fieldErrors,
		Stack:   stack,
	})
}

// TooManyRequests writes a 429 with a Retry-After header in whole seconds.
func TooManyRequests(c echo.Context, retryAfter time.Duration) error {
	seconds := int64(math.Ceil(retryAfter.Seconds()))
	if seconds < 0 {
		seconds = 0
	}
	c.Response().Header().Set("Retry-After", strconv.FormatInt(seconds, 10))

	return c.JSON(http.StatusTooManyRequests, RateLimitResponse{
		Success:    false,
		Message:    domainerrors.ErrRateLimited.Message(),
		RetryAfter: seconds,
	})
}
