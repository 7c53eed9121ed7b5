package server

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"
)

// Error is the JSON body of a failed request.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"error"`
}

func (e Error) Error() string {
	return e.Message
}

// NewError creates an Error with the given status code.
func NewError(code int, msg string) Error {
	return Error{
		Code:    code,
		Message: msg,
	}
}

// ErrBadRequest is returned for bodies that cannot be decoded.
func ErrBadRequest() Error {
	return NewError(fiber.StatusBadRequest, "invalid JSON request")
}

// ValidationError lists the fields of a request that failed validation.
type ValidationError struct {
	Status int               `json:"status"`
	Errors map[string]string `json:"errors"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %d field(s)", len(e.Errors))
}

// NewValidationError wraps field failures with a 422 status.
func NewValidationError(fields map[string]string) ValidationError {
	return ValidationError{
		Status: fiber.StatusUnprocessableEntity,
		Errors: fields,
	}
}

// errorHandler renders every error returned by a handler as JSON.
func errorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var (
			apiErr   Error
			valErr   ValidationError
			fiberErr *fiber.Error
		)
		switch {
		case errors.As(err, &apiErr):
		case errors.As(err, &valErr):
			return c.Status(valErr.Status).JSON(valErr)
		case errors.As(err, &fiberErr):
			apiErr = NewError(fiberErr.Code, fiberErr.Message)
		default:
			apiErr = NewError(fiber.StatusInternalServerError, "internal server error")
		}

		if apiErr.Code >= fiber.StatusInternalServerError {
			logger.Error("request failed", "path", c.Path(), "code", apiErr.Code, "err", err)
		} else {
			logger.Debug("request rejected", "path", c.Path(), "code", apiErr.Code, "err", err)
		}
		return c.Status(apiErr.Code).JSON(apiErr)
	}
}
