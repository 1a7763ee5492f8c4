package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/ocpp-csms/internal/domain"
)

// ErrorHandler maps domain sentinel errors to HTTP statuses. Anything
// unrecognized is a 500 and gets logged.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError

		switch {
		case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrIncomplete):
			code = fiber.StatusNotFound
		case errors.Is(err, domain.ErrValidation):
			code = fiber.StatusBadRequest
		case errors.Is(err, domain.ErrConflict):
			code = fiber.StatusConflict
		default:
			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				code = fiberErr.Code
			}
		}

		if code == fiber.StatusInternalServerError {
			log.Error("Internal Server Error", zap.Error(err), zap.String("path", c.Path()))
		}

		return c.Status(code).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
}
