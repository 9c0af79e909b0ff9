// Package services holds the write paths that span several tables: logging
// coneys, unlocking achievements, leaderboards, the clicker and exports.
package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/coney-counter/coney-counter-api/internal/models"
	"github.com/go-playground/validator/v10"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrNotApproved  = errors.New("account is waiting for approval")
	ErrBanned       = errors.New("account is banned")
	ErrBusy         = errors.New("another request is in progress")
)

// NewValidator returns a validator with the "brand" tag registered.
func NewValidator() *validator.Validate {
	v := validator.New()
	//nolint:errcheck
	v.RegisterValidation("brand", func(fl validator.FieldLevel) bool {
		return models.IsBrand(fl.Field().String())
	})
	return v
}

// validationError flattens validator errors into ErrInvalidInput.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	parts := make([]string, 0, len(verrs))
	for _, ve := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed %s", ve.Field(), ve.Tag()))
	}
	return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(parts, ", "))
}
