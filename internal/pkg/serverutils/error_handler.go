package serverutils

import (
	"errors"

	"electrician-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// NewErrorHandler renders every error returned by a handler as a BaseResponse.
// Internal details are logged, never sent.
func NewErrorHandler(log logger.ILogger) fiber.ErrorHandler {
	return func(ctx *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		message := "Internal server error"

		var appErr *AppError
		var fiberErr *fiber.Error
		switch {
		case errors.As(err, &appErr):
			status = appErr.Status
			message = appErr.Message
		case errors.As(err, &fiberErr):
			status = fiberErr.Code
			message = fiberErr.Message
		}

		if status >= fiber.StatusInternalServerError {
			log.Error("HTTP", "Request failed", map[string]interface{}{
				"method": ctx.Method(),
				"path":   ctx.Path(),
				"error":  err.Error(),
			})
		}

		return ctx.Status(status).JSON(ErrorResponse(status, message))
	}
}
