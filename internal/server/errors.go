package server

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/cartera-app/cartera_backend/internal/apperr"
)

const maskedMessage = "An internal server error occurred."

// NewErrorHandler translates errors to HTTP responses at one place. Typed
// gateway errors map through their kind; anything else is a 500. Internal
// detail is only exposed in development.
func NewErrorHandler(development bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var ae *apperr.Error
		if errors.As(err, &ae) {
			status := ae.HTTPStatus()
			message := ae.Message
			if status == http.StatusInternalServerError && ae.Kind == apperr.Internal && !development {
				message = maskedMessage
			}

			body := fiber.Map{"error": message}
			if ae.Details != "" {
				body["details"] = ae.Details
			}
			if development && ae.Err != nil {
				body["cause"] = ae.Err.Error()
			}
			return c.Status(status).JSON(body)
		}

		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
		}

		body := fiber.Map{"error": maskedMessage}
		if development {
			body["details"] = err.Error()
		}
		return c.Status(http.StatusInternalServerError).JSON(body)
	}
}
