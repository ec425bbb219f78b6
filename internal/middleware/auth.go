package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/cartera-app/cartera_backend/internal/apperr"
	"github.com/cartera-app/cartera_backend/internal/auth"
)

const identityLocal = "auth_identity"

// Auth returns the bearer-token gate. It extracts the token from the
// Authorization header, verifies it against the shared secret and stores the
// resulting identity in request locals for downstream handlers.
//
// Status mapping: no token 401, secret unconfigured 500, verification
// failure of any sort 403, verified token without subject 401.
func Auth(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authz := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			return apperr.New(apperr.Unauthorized, "access token not provided")
		}
		token := strings.TrimSpace(authz[len("Bearer "):])
		if token == "" {
			return apperr.New(apperr.Unauthorized, "access token not provided")
		}

		if secret == "" {
			return apperr.New(apperr.Config, "server authentication is not configured")
		}

		ident, err := auth.VerifyToken(token, []byte(secret))
		if err != nil {
			if errors.Is(err, auth.ErrMissingSubject) {
				return apperr.New(apperr.Unauthorized, "invalid token: subject (user ID) not found")
			}
			return apperr.Wrap(apperr.Forbidden, "invalid or expired token", err)
		}

		c.Locals(identityLocal, ident)
		return c.Next()
	}
}

// Identity returns the verified caller identity attached by Auth.
func Identity(c *fiber.Ctx) (auth.Identity, bool) {
	ident, ok := c.Locals(identityLocal).(auth.Identity)
	return ident, ok
}
