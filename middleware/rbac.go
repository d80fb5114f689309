package middleware

import (
	"qchat-service/database"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

func RBAC() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := c.Locals("user").(*jwt.Token)
		claims := user.Claims.(jwt.MapClaims)

		enforcer := database.Casbin()

		// Casbin enforces policy
		accepted, err := enforcer.Enforce(claims["userId"].(string), c.OriginalURL(), c.Method())
		if err != nil {
			return reject(c, fiber.StatusInternalServerError, "Internal server error")
		}

		if !accepted {
			return reject(c, fiber.StatusForbidden, "Unauthorized")
		}

		return c.Next()
	}
}
