package api

import (
	"errors"

	domain "github.com/example/task-board/domain/task"
	"github.com/example/task-board/modules/auth"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/fiber/v2"
)

// Error codes returned in ErrorResponse.Error.
const (
	CodeUnauthorized      = "unauthorized"
	CodeValidation        = "validation_error"
	CodeInvalidRequest    = "invalid_request"
	CodeNotFound          = "not_found"
	CodeForbidden         = "forbidden"
	CodeInvalidTransition = "invalid_transition"
	CodeConflict          = "conflict"
	CodeInternal          = "internal_error"
)

func errorJSON(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(ErrorResponse{
		Error:   code,
		Message: message,
	})
}

// writeError maps service errors onto HTTP responses. Unknown errors are
// logged and answered with a generic 500.
func writeError(c *fiber.Ctx, logger types.Logger, err error) error {
	switch {
	case errors.Is(err, domain.ErrTaskNotFound):
		return errorJSON(c, fiber.StatusNotFound, CodeNotFound, domain.ErrTaskNotFound.Error())
	case errors.Is(err, domain.ErrForbidden):
		return errorJSON(c, fiber.StatusForbidden, CodeForbidden, domain.ErrForbidden.Error())
	case errors.Is(err, domain.ErrInvalidTransition):
		return errorJSON(c, fiber.StatusBadRequest, CodeInvalidTransition, err.Error())
	case errors.Is(err, domain.ErrValidation):
		return errorJSON(c, fiber.StatusBadRequest, CodeValidation, err.Error())
	case errors.Is(err, auth.ErrUserExists):
		return errorJSON(c, fiber.StatusConflict, CodeConflict, auth.ErrUserExists.Error())
	case errors.Is(err, auth.ErrInvalidCredentials):
		return errorJSON(c, fiber.StatusUnauthorized, CodeUnauthorized, auth.ErrInvalidCredentials.Error())
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrExpiredToken):
		return errorJSON(c, fiber.StatusUnauthorized, CodeUnauthorized, "Invalid or expired token")
	case errors.Is(err, auth.ErrInvalidEmail),
		errors.Is(err, auth.ErrInvalidUsername),
		errors.Is(err, auth.ErrWeakPassword),
		errors.Is(err, auth.ErrPasswordTooLong):
		return errorJSON(c, fiber.StatusBadRequest, CodeValidation, err.Error())
	default:
		logger.Error("Internal error", "method", c.Method(), "path", c.Path(), "error", err)
		return errorJSON(c, fiber.StatusInternalServerError, CodeInternal, "An internal error occurred")
	}
}

// customErrorHandler handles errors fiber raises itself, such as unknown routes.
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"
	errCode := CodeInternal

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
		switch code {
		case fiber.StatusNotFound:
			errCode = CodeNotFound
		case fiber.StatusBadRequest, fiber.StatusMethodNotAllowed, fiber.StatusRequestEntityTooLarge, fiber.StatusUpgradeRequired:
			errCode = CodeInvalidRequest
		}
	}

	return errorJSON(c, code, errCode, message)
}
