package middleware

import "github.com/gofiber/fiber/v2"

const (
	// UserIDHeader carries the authenticated user's ID. It is set by the
	// upstream authentication gateway, which owns session/token handling.
	UserIDHeader = "X-User-ID"
	// UserIDLocalKey is the key used to store the user ID in Fiber's context locals.
	UserIDLocalKey = "user_id"
)

// Auth requires an authenticated identity on the request. It reads the
// gateway-provided X-User-ID header, stores it in context locals for
// handlers, and rejects the request with 401 when it is absent.
func Auth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		uid := c.Get(UserIDHeader)
		if uid == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "user not authenticated")
		}

		c.Locals(UserIDLocalKey, uid)

		return c.Next()
	}
}
