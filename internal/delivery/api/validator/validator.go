// Package validator adapts the account validation rules to echo.Validator.
package validator

import (
	"students/internal/validation"

	"github.com/go-playground/validator/v10"
)

// CustomValidator lets handlers call c.Validate on request bodies.
type CustomValidator struct {
	validate *validator.Validate
}

// New wraps v, or a fresh validation.New() when v is nil.
func New(v *validator.Validate) *CustomValidator {
	if v == nil {
		v = validation.New()
	}

	return &CustomValidator{validate: v}
}

// Validate returns a *domainerrors.ValidationError for rule violations.
func (cv *CustomValidator) Validate(i any) error {
	return validation.Struct(cv.validate, i)
}
