package serverutils

import (
	"errors"

	"loghive-be/internal/pkg/apperror"
	"loghive-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// ErrorHandlerMiddleware translates errors escaping the handlers into the
// envelope the clients expect. AppError kinds choose the status; anything
// unclassified is a 500 logged with a correlation id.
func ErrorHandlerMiddleware(log logger.ILogger) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			status := appErr.Status()
			if status >= fiber.StatusInternalServerError {
				log.Error("http", "request failed", map[string]interface{}{
					"path":  ctx.Path(),
					"error": appErr.Error(),
				})
			}
			return ctx.Status(status).JSON(ErrorResponse(status, appErr.Message))
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))
		}

		errorId := uuid.NewString()
		log.Error("http", "unhandled error", map[string]interface{}{
			"error_id": errorId,
			"path":     ctx.Path(),
			"error":    err.Error(),
		})
		return ctx.Status(fiber.StatusInternalServerError).
			JSON(ErrorResponse(fiber.StatusInternalServerError, "internal server error (ref "+errorId+")"))
	}
}
