package serverutils

import (
	"errors"
	"net/http"

	"whisper-client/internal/pkg/logger"
	"whisper-client/internal/pkg/validation"
	"whisper-client/internal/service"
	"whisper-client/pkg/backend"

	"github.com/gofiber/fiber/v2"
)

// StatusFor maps an error returned by a handler to an HTTP status.
func StatusFor(err error) int {
	var validationErr *validation.Error
	var apiErr *backend.APIError
	var fiberErr *fiber.Error

	switch {
	case errors.As(err, &validationErr):
		return fiber.StatusBadRequest
	case errors.As(err, &apiErr):
		if apiErr.StatusCode == 0 {
			return fiber.StatusBadGateway
		}
		return apiErr.StatusCode
	case errors.As(err, &fiberErr):
		return fiberErr.Code
	case errors.Is(err, service.ErrSessionNotFound), errors.Is(err, service.ErrTranscriptionNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, service.ErrNotAuthenticated):
		return fiber.StatusUnauthorized
	case errors.Is(err, service.ErrAlreadyRecording),
		errors.Is(err, service.ErrTranscriptionInProgress),
		errors.Is(err, service.ErrServiceClosed):
		return fiber.StatusConflict
	case errors.Is(err, service.ErrNoActiveSession),
		errors.Is(err, service.ErrNotRecording),
		errors.Is(err, service.ErrInvalidSessionData):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorHandlerMiddleware turns errors escaping a handler into the standard
// JSON envelope. Server errors are logged; their text is not sent back.
func ErrorHandlerMiddleware(log logger.ILogger) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		code := StatusFor(err)
		message := err.Error()
		var apiErr *backend.APIError
		if errors.As(err, &apiErr) {
			message = apiErr.Detail
		}
		if code >= fiber.StatusInternalServerError && code != fiber.StatusBadGateway {
			log.Error("HTTP", "Request failed", map[string]interface{}{
				"method": ctx.Method(),
				"path":   ctx.Path(),
				"error":  err.Error(),
			})
			message = http.StatusText(code)
		}

		return ctx.Status(code).JSON(ErrorResponse(code, message))
	}
}
