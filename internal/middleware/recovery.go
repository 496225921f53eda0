package middleware

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Recover turns handler panics into a 500 JSON response.
func Recover(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered",
					zap.String("request_id", c.GetRespHeader(fiber.HeaderXRequestID)),
					zap.String("method", c.Method()),
					zap.String("path", c.Path()),
					zap.Any("error", r),
				)
				err = c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error": "Internal server error",
				})
			}
		}()
		return c.Next()
	}
}

// ErrorHandler reports errors returned by handlers. Fiber errors below 500
// keep their code and message; everything else becomes a generic 500.
func ErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal server error"
		if e, ok := err.(*fiber.Error); ok && e.Code < fiber.StatusInternalServerError {
			code = e.Code
			message = e.Message
		}

		if code >= fiber.StatusInternalServerError {
			logger.Error("unhandled error",
				zap.String("request_id", c.GetRespHeader(fiber.HeaderXRequestID)),
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Error(err),
			)
		}
		return c.Status(code).JSON(fiber.Map{"error": message})
	}
}
