package router

import (
	"qchat-service/controller"
	"qchat-service/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func Rest(app *fiber.App) {
	api := app.Group("/v1", logger.New())

	// Auth
	auth := api.Group("/auth")
	auth.Post("/signup", controller.AuthSignup)
	auth.Post("/signin", controller.AuthSignin)
	auth.Post("/token/renew", controller.AuthTokenRenew)
	auth.Post("/2fa/secret", middleware.JWT(), middleware.OTP(), controller.AuthOtpSecret)
	auth.Post("/2fa/verify", middleware.JWT(), middleware.OTP(), controller.AuthOtpVerify)
	auth.Post("/2fa/validate", middleware.JWT(), controller.AuthOtpValidate)
	auth.Post("/2fa/disable", middleware.JWT(), middleware.OTP(), controller.AuthOtpDisable)

	// User
	user := api.Group("/user", middleware.JWT(), middleware.OTP())
	user.Get("/profile", controller.UserProfile)
	user.Get("/all", controller.UserAll)

	// Group
	group := api.Group("/group", middleware.JWT(), middleware.OTP())
	group.Post("/create", controller.GroupCreate)
	group.Get("/all", controller.GroupAll)
	group.Get("/:id", controller.GroupByID)
	group.Post("/join/:id", controller.GroupJoin)
	group.Delete("/:id", controller.GroupDelete)

	// File upload boundary consumed by the chat client before sendMessage
	file := api.Group("/file")
	file.Post("/upload", middleware.JWT(), middleware.OTP(), controller.FileUpload)
	file.Get("/:id/:name", controller.FileDownload)
	file.Get("/:id", controller.FileDownload)

	// Admin
	admin := api.Group("/admin", middleware.JWT(), middleware.OTP(), middleware.RBAC())
	admin.Get("/users", controller.AdminUsers)
}
