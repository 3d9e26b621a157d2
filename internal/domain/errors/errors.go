package errors

import (
	"net/http"

	"github.com/pkg/errors"
)

// AppError defines the interface for application-specific errors
type AppError interface {
	error
	Kind() Kind        // Taxonomy bucket
	HTTPCode() int     // HTTP status code
	ErrorCode() string // Business error code
	Message() string   // User-friendly error message
	Details() string   // Detailed error information (optional)
}

// BaseError is a basic error structure that implements the AppError interface
type BaseError struct {
	kind      Kind
	errorCode string
	message   string
	details   string
}

// NewBaseError creates a new base error
func NewBaseError(kind Kind, errorCode, message, details string) *BaseError {
	return &BaseError{
		kind:      kind,
		errorCode: errorCode,
		message:   message,
		details:   details,
	}
}

// Error implements the error interface
func (e *BaseError) Error() string {
	return e.message
}

// WrapMessage wraps the error with additional context message
func (e *BaseError) WrapMessage(message string) error {
	return errors.Wrap(e, message)
}

// Kind returns the taxonomy bucket of the error
func (e *BaseError) Kind() Kind {
	return e.kind
}

// HTTPCode returns the HTTP status code
func (e *BaseError) HTTPCode() int {
	return e.kind.HTTPStatus()
}

// ErrorCode returns the business error code
func (e *BaseError) ErrorCode() string {
	return e.errorCode
}

// Message returns the user-friendly error message
func (e *BaseError) Message() string {
	return e.message
}

// Details returns detailed error information
func (e *BaseError) Details() string {
	return e.details
}

// WithDetails adds detailed error information
func (e *BaseError) WithDetails(details string) *BaseError {
	return &BaseError{
		kind:      e.kind,
		errorCode: e.errorCode,
		message:   e.message,
		details:   details,
	}
}

// Is matches on error code so copies made by WithDetails still satisfy errors.Is
// against the predefined sentinel.
func (e *BaseError) Is(target error) bool {
	t, ok := target.(*BaseError)
	if !ok {
		return false
	}

	return e.errorCode == t.errorCode
}

// Predefined error types
var (
	// Account-related errors
	ErrAccountNotFound = NewBaseError(
		KindNotFound,
		"ACCOUNT_NOT_FOUND",
		"student not found",
		"",
	)

	ErrUsernameTaken = NewBaseError(
		KindConflict,
		"USERNAME_TAKEN",
		"access username is already in use",
		"",
	)

	ErrEmailTaken = NewBaseError(
		KindConflict,
		"EMAIL_TAKEN",
		"email is already in use",
		"",
	)

	ErrAccountConflict = NewBaseError(
		KindConflict,
		"ACCOUNT_CONFLICT",
		"access username or email is already in use",
		"",
	)

	ErrNotAccountOwner = NewBaseError(
		KindForbidden,
		"NOT_ACCOUNT_OWNER",
		"you can only modify your own account",
		"",
	)

	ErrNoFieldsToUpdate = NewBaseError(
		KindBadRequest,
		"NO_FIELDS_TO_UPDATE",
		"no fields to update",
		"",
	)

	ErrInvalidPagination = NewBaseError(
		KindBadRequest,
		"INVALID_PAGINATION",
		"limit must be between 1 and 100 and offset must be greater than or equal to 0",
		"",
	)

	// Authentication-related errors
	ErrInvalidCredentials = NewBaseError(
		KindUnauthorized,
		"INVALID_CREDENTIALS",
		"incorrect username or password",
		"",
	)

	ErrTokenExpired = NewBaseError(
		KindUnauthorized,
		"TOKEN_EXPIRED",
		"token expired",
		"",
	)

	ErrTokenMalformed = NewBaseError(
		KindUnauthorized,
		"TOKEN_MALFORMED",
		"token malformed",
		"",
	)

	ErrTokenInvalid = NewBaseError(
		KindUnauthorized,
		"TOKEN_INVALID",
		"token invalid",
		"",
	)

	ErrTokenMissing = NewBaseError(
		KindUnauthorized,
		"TOKEN_MISSING",
		"authentication token not provided",
		"",
	)

	ErrTokenFormat = NewBaseError(
		KindUnauthorized,
		"TOKEN_FORMAT_INVALID",
		"invalid token format, expected: Bearer <token>",
		"",
	)

	ErrAuthenticationFailed = NewBaseError(
		KindUnauthorized,
		"AUTHENTICATION_FAILED",
		"authentication failed",
		"",
	)

	ErrPasswordHashFailed = NewBaseError(
		KindInternal,
		"PASSWORD_HASH_FAILED",
		"failed to process password",
		"",
	)

	ErrTokenSigningFailed = NewBaseError(
		KindInternal,
		"TOKEN_SIGNING_FAILED",
		"failed to issue token",
		"",
	)

	// Validation-related errors
	ErrValidationFailed = NewBaseError(
		KindBadRequest,
		"VALIDATION_FAILED",
		"invalid data",
		"",
	)

	ErrInvalidAccountID = NewBaseError(
		KindBadRequest,
		"INVALID_ID",
		"invalid id",
		"",
	)

	ErrInvalidInput = NewBaseError(
		KindBadRequest,
		"INVALID_INPUT",
		"invalid request body",
		"",
	)

	ErrRateLimited = NewBaseError(
		KindTooManyRequests,
		"RATE_LIMITED",
		"too many requests, please try again later",
		"",
	)

	// General errors
	ErrInternalError = NewBaseError(
		KindInternal,
		"INTERNAL_ERROR",
		"internal server error",
		"",
	)
)

// ValidationError reports every field rule a request broke.
type ValidationError struct {
	*BaseError
	fields []string
}

// NewValidationError creates a BadRequest error carrying per-field messages
func NewValidationError(fields []string) *ValidationError {
	return &ValidationError{
		BaseError: ErrValidationFailed,
		fields:    fields,
	}
}

// Fields returns the per-field messages
func (e *ValidationError) Fields() []string {
	return e.fields
}

// DatabaseExecuteError represents a database execution error, implementing the AppError interface
type DatabaseExecuteError struct {
	err     error
	details string
}

// NewDatabaseExecuteError creates a database-related error
func NewDatabaseExecuteError(err error, details string) AppError {
	return &DatabaseExecuteError{
		err:     err,
		details: details,
	}
}

// Error implements the error interface
func (e *DatabaseExecuteError) Error() string {
	return errors.Wrap(e.err, "database execution failed").Error()
}

// Unwrap exposes the driver error for logging
func (e *DatabaseExecuteError) Unwrap() error {
	return e.err
}

// Kind returns the taxonomy bucket of the error
func (e *DatabaseExecuteError) Kind() Kind {
	return KindInternal
}

// HTTPCode returns the HTTP status code
func (e *DatabaseExecuteError) HTTPCode() int {
	return http.StatusInternalServerError
}

// ErrorCode returns the business error code
func (e *DatabaseExecuteError) ErrorCode() string {
	return "DATABASE_EXECUTE_FAILED"
}

// Message returns the user-friendly error message
func (e *DatabaseExecuteError) Message() string {
	return "database operation failed"
}

// Details returns detailed error information
func (e *DatabaseExecuteError) Details() string {
	return e.details
}

// KindOf returns the taxonomy bucket of err, or KindInternal for errors
// that did not originate from this package.
func KindOf(err error) Kind {
	var appErr AppError
	if errors.As(err, &appErr) {
		return appErr.Kind()
	}

	return KindInternal
}
