package handlers

import (
	"errors"
	"strings"

	"github.com/coney-counter/coney-counter-api/internal/clicker"
	"github.com/coney-counter/coney-counter-api/internal/logging"
	"github.com/coney-counter/coney-counter-api/internal/services"
	"github.com/danielgtaylor/huma/v2"
	"github.com/sirupsen/logrus"
)

// serviceError maps service and domain errors to HTTP errors. Anything
// unrecognised is logged and reported as a 500.
func serviceError(logger *logrus.Logger, funcName string, err error) error {
	var se huma.StatusError
	switch {
	case errors.As(err, &se):
		return err
	case errors.Is(err, services.ErrInvalidInput):
		return huma.Error422UnprocessableEntity(detail(err, services.ErrInvalidInput))
	case errors.Is(err, services.ErrNotFound):
		return huma.Error404NotFound("Not found")
	case errors.Is(err, services.ErrForbidden):
		return huma.Error403Forbidden("You cannot change this resource")
	case errors.Is(err, services.ErrNotApproved):
		return huma.Error403Forbidden("Your account is waiting for approval")
	case errors.Is(err, services.ErrBanned):
		return huma.Error403Forbidden("This account has been banned")
	case errors.Is(err, services.ErrBusy):
		return huma.Error409Conflict("Another request is still being processed, try again")
	case errors.Is(err, clicker.ErrUnknownUpgrade):
		return huma.Error404NotFound("Unknown upgrade")
	case errors.Is(err, clicker.ErrLocked):
		return huma.Error409Conflict("Upgrade is still locked")
	case errors.Is(err, clicker.ErrAlreadyOwned):
		return huma.Error409Conflict("Upgrade already owned")
	case errors.Is(err, clicker.ErrInsufficientFunds):
		return huma.Error400BadRequest("Not enough coneys")
	}
	logging.LogError(logger, "handlers", funcName, "unexpected error", nil, err)
	return huma.Error500InternalServerError("Internal server error")
}

// detail strips the sentinel prefix from a wrapped error message.
func detail(err, sentinel error) string {
	msg := strings.TrimPrefix(err.Error(), sentinel.Error())
	msg = strings.TrimPrefix(msg, ": ")
	if msg == "" {
		return sentinel.Error()
	}
	return msg
}
