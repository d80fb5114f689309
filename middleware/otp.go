package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// OTP blocks tokens issued before the second factor was validated. The otp
// claim is set by the signin flow when 2FA is enabled for the account.
func OTP() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := c.Locals("user").(*jwt.Token)
		claims := user.Claims.(jwt.MapClaims)

		if pending, ok := claims["otp"].(bool); ok && pending {
			return reject(c, fiber.StatusBadRequest, "2FA required")
		}

		return c.Next()
	}
}
