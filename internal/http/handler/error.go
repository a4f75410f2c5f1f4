package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"handoc/internal/http/middleware"
	"handoc/internal/service"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// messageResponse is the body of endpoints that only confirm an action.
type messageResponse struct {
	Message string `json:"message"`
}

// writeError writes a standardized JSON error response without leaking internal errors.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "INVALID_ID", "NOT_FOUND", "INTERNAL_ERROR")
// - message: human-readable safe message (no internal details)
func writeError(c *fiber.Ctx, status int, code, message string) error {
	res := errorPayload{
		RequestID: middleware.RequestIDFrom(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
		},
	}
	return c.Status(status).JSON(res)
}

func writeInternal(c *fiber.Ctx) error {
	return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
}

type errorMapping struct {
	target error
	status int
	code   string
}

// serviceErrors is checked in order with errors.Is; the error text is the message.
var serviceErrors = []errorMapping{
	{service.ErrIDRequired, fiber.StatusBadRequest, "INVALID_ID"},
	{service.ErrReaderNil, fiber.StatusBadRequest, "FILE_REQUIRED"},
	{service.ErrInvalidFileType, fiber.StatusBadRequest, "INVALID_FILE_TYPE"},
	{service.ErrFileTooLarge, fiber.StatusRequestEntityTooLarge, "FILE_TOO_LARGE"},
	{service.ErrUploadLimit, fiber.StatusTooManyRequests, "UPLOAD_LIMIT_EXCEEDED"},
	{service.ErrInvalidPDF, fiber.StatusBadRequest, "INVALID_PDF"},
	{service.ErrAlreadyProcessing, fiber.StatusBadRequest, "ALREADY_PROCESSING"},
	{service.ErrNotCompleted, fiber.StatusBadRequest, "DOCUMENT_NOT_COMPLETED"},
	{service.ErrQueueUnavailable, fiber.StatusServiceUnavailable, "QUEUE_UNAVAILABLE"},
	{service.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{service.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN"},
	{service.ErrEmailTaken, fiber.StatusBadRequest, "EMAIL_TAKEN"},
	{service.ErrUsernameTaken, fiber.StatusBadRequest, "USERNAME_TAKEN"},
	{service.ErrInvalidCredentials, fiber.StatusUnauthorized, "INVALID_CREDENTIALS"},
	{service.ErrInvalidToken, fiber.StatusUnauthorized, "UNAUTHORIZED"},
	{service.ErrInactiveUser, fiber.StatusBadRequest, "INACTIVE_USER"},
	{service.ErrInvalidResetToken, fiber.StatusBadRequest, "INVALID_RESET_TOKEN"},
}

// writeServiceError translates a service error into the standard envelope.
// Unknown errors become 500 INTERNAL_ERROR.
func writeServiceError(c *fiber.Ctx, err error) error {
	var ve *service.ValidationError
	if errors.As(err, &ve) {
		return writeError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", ve.Error())
	}

	for _, m := range serviceErrors {
		if !errors.Is(err, m.target) {
			continue
		}
		if m.status == fiber.StatusUnauthorized {
			c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
		}
		return writeError(c, m.status, m.code, err.Error())
	}

	return writeInternal(c)
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		message := ""
		if e, ok := err.(*fiber.Error); ok {
			status = e.Code
			message = e.Message
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", orMessage(message, "bad request"))
		case fiber.StatusUnauthorized:
			return writeError(c, status, "UNAUTHORIZED", orMessage(message, "unauthorized"))
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, status, "FILE_TOO_LARGE", service.ErrFileTooLarge.Error())
		case fiber.StatusTooManyRequests:
			return writeError(c, status, "RATE_LIMITED", "요청이 너무 많습니다. 잠시 후 다시 시도해주세요")
		case fiber.StatusServiceUnavailable:
			return writeError(c, status, "SERVICE_UNAVAILABLE", "service unavailable")
		default:
			return writeInternal(c)
		}
	}
}

func orMessage(msg, def string) string {
	if msg == "" {
		return def
	}
	return msg
}
