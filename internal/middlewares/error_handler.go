package middlewares

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandler turns uncaught errors into the Google JSON API error envelope.
func ErrorHandler(ctx *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	} else {
		slog.Error("unhandled error", "path", ctx.Path(), "error", err)
	}
	return ctx.Status(code).JSON(fiber.Map{
		"apiVersion": "1.0",
		"error": fiber.Map{
			"code":    code,
			"message": message,
		},
	})
}
