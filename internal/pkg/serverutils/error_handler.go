package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// StatusMapper maps a domain error to an HTTP status, or 0 when it has no opinion.
type StatusMapper func(err error) int

// ErrorHandlerMiddleware turns handler errors into the JSON error envelope.
func ErrorHandlerMiddleware(mapStatus StatusMapper) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		code := fiber.StatusInternalServerError
		message := err.Error()

		var fiberErr *fiber.Error
		var validationErr *ValidationError
		switch {
		case errors.As(err, &fiberErr):
			code = fiberErr.Code
			message = fiberErr.Message
		case errors.As(err, &validationErr):
			code = fiber.StatusBadRequest
		default:
			if mapStatus != nil {
				if mapped := mapStatus(err); mapped != 0 {
					code = mapped
				}
			}
		}

		if code == fiber.StatusInternalServerError {
			message = "internal server error"
		}
		return ctx.Status(code).JSON(ErrorResponse(code, message))
	}
}
