package http

import (
	"github.com/go-playground/validator/v10"
)

// RequestValidator adapts go-playground/validator to echo.Validator.
type RequestValidator struct {
	validate *validator.Validate
}

// NewRequestValidator creates a validator reading the `validate` struct tags.
func NewRequestValidator() *RequestValidator {
	return &RequestValidator{validate: validator.New(validator.WithRequiredStructEnabled())}
}

// Validate validates a bound request struct.
func (v *RequestValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}
