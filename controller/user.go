package controller

import (
	"qchat-service/database"
	"qchat-service/model"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func UserProfile(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return internalError(c)
	}

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": nil,
		"data": fiber.Map{
			"id":             user.ID.Hex(),
			"created":        user.CreatedAt.Unix(),
			"name":           user.Name,
			"email":          user.Email,
			"profilePicture": user.ProfilePicture,
			"status":         user.Status,
			"lastSeen":       user.LastSeen,
			"role":           user.Role,
			"otp":            user.OtpEnabled,
		},
	})
}

// UserAll lists every user's public profile for the chat sidebar.
func UserAll(c *fiber.Ctx) error {
	cursor, err := database.Mongo.Collection("users").Find(
		c.Context(),
		bson.M{},
		options.Find().SetProjection(bson.M{
			"name":           1,
			"profilePicture": 1,
			"status":         1,
			"lastSeen":       1,
		}),
	)
	if err != nil {
		return internalError(c)
	}

	users := []model.User{}
	if err := cursor.All(c.Context(), &users); err != nil {
		return internalError(c)
	}

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": nil,
		"data":    users,
	})
}

// AdminUsers returns full user documents, RBAC-gated to platform admins.
func AdminUsers(c *fiber.Ctx) error {
	cursor, err := database.Mongo.Collection("users").Find(c.Context(), bson.M{})
	if err != nil {
		return internalError(c)
	}

	users := []model.User{}
	if err := cursor.All(c.Context(), &users); err != nil {
		return internalError(c)
	}

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": nil,
		"data":    users,
	})
}
