package errors

import (
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestKind_HTTPStatus(t *testing.T) {
	cases := map[Kind]int{
		KindBadRequest:      http.StatusBadRequest,
		KindUnauthorized:    http.StatusUnauthorized,
		KindForbidden:       http.StatusForbidden,
		KindNotFound:        http.StatusNotFound,
		KindConflict:        http.StatusConflict,
		KindTooManyRequests: http.StatusTooManyRequests,
		KindInternal:        http.StatusInternalServerError,
		Kind(99):            http.StatusInternalServerError,
	}

	for kind, status := range cases {
		assert.Equal(t, status, kind.HTTPStatus(), kind.String())
	}
}

func TestBaseError_IsSurvivesWrappingAndDetails(t *testing.T) {
	err := errors.Wrap(ErrUsernameTaken.WithDetails("ana_s"), "create account")

	assert.True(t, errors.Is(err, ErrUsernameTaken))
	assert.False(t, errors.Is(err, ErrEmailTaken))
	assert.Equal(t, KindConflict, KindOf(err))
}

func TestKindOf_ForeignErrorIsInternal(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.Equal(t, KindInternal, KindOf(NewDatabaseExecuteError(errors.New("conn reset"), "find account")))
}

func TestValidationError_CarriesFields(t *testing.T) {
	err := NewValidationError([]string{"full_name must be between 3 and 150 characters"})

	var appErr AppError
	assert.True(t, errors.As(err, &appErr))
	assert.Equal(t, http.StatusBadRequest, appErr.HTTPCode())
	assert.Equal(t, []string{"full_name must be between 3 and 150 characters"}, err.Fields())
}
