package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/cartera-app/cartera_backend/internal/webhook"
)

// RegisterStripeRoutes wires the processor webhook endpoint. It is
// deliberately outside the auth gate: authenticity comes from the payload
// signature, not a bearer token.
func RegisterStripeRoutes(r fiber.Router, h *webhook.Handler) {
	r.Post("/stripe/webhook", h.Handle)
}
