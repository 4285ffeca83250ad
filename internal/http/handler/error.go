package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"peopleapi/internal/http/middleware"
	"peopleapi/internal/repository"
	"peopleapi/internal/validation"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string                  `json:"code"`
	Message string                  `json:"message"`
	Details []validation.FieldError `json:"details,omitempty"`
}

// writeError writes a standardized JSON error response without leaking internal errors.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "INVALID_ID", "NOT_FOUND", "INTERNAL_ERROR")
// - message: human-readable safe message (no internal details)
func writeError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(errorPayload{
		RequestID: middleware.GetRequestID(c),
		Error:     errorEnvelope{Code: code, Message: message},
	})
}

func writeValidationError(c *fiber.Ctx, errs validation.Errors) error {
	return c.Status(fiber.StatusBadRequest).JSON(errorPayload{
		RequestID: middleware.GetRequestID(c),
		Error: errorEnvelope{
			Code:    "VALIDATION_FAILED",
			Message: "request validation failed",
			Details: errs,
		},
	})
}

// writeServiceError logs err with the request id and maps its repository kind
// to a status: not found 404, invalid argument 400, anything else 500.
func writeServiceError(c *fiber.Ctx, log zerolog.Logger, op string, err error) error {
	ev := log.Error()
	status, code, msg := fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error"

	switch {
	case repository.IsNotFound(err):
		ev = log.Info()
		status, code, msg = fiber.StatusNotFound, "NOT_FOUND", "resource not found"
	case repository.IsInvalidArgument(err):
		ev = log.Warn()
		status, code, msg = fiber.StatusBadRequest, "INVALID_ARGUMENT", "invalid argument"
	}

	ev.Err(err).
		Str("request_id", middleware.GetRequestID(c)).
		Str("op", op).
		Int("status", status).
		Msg("request failed")

	return writeError(c, status, code, msg)
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, status, "PAYLOAD_TOO_LARGE", "request body too large")
		case fiber.StatusServiceUnavailable:
			return writeError(c, status, "SERVICE_UNAVAILABLE", "service unavailable")
		default:
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}
