package middleware

import (
	"qchat-service/config"

	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
)

// reject writes the service-wide error envelope. Middleware never returns a
// data payload.
func reject(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"status":  "error",
		"message": message,
		"data":    nil,
	})
}

// JWT guards a route group with the HS512 access token. A missing token is a
// client mistake and reports 400; a present but unverifiable one reports 401.
func JWT() fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{
			JWTAlg: "HS512",
			Key:    []byte(config.Config("JWT_ACCESS_KEY")),
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if err.Error() == "Missing or malformed JWT" {
				return reject(c, fiber.StatusBadRequest, "Missing or malformed JWT")
			}
			return reject(c, fiber.StatusUnauthorized, "Invalid or expired JWT")
		},
	})
}
