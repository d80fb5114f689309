package controller

import (
	"time"

	"qchat-service/database"
	"qchat-service/model"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GroupCreate makes a new named room. The creator becomes the admin and
// the sole initial member. An icon may be attached as multipart content.
func GroupCreate(c *fiber.Ctx) error {
	name := c.FormValue("name")
	if name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Group name is required",
			"data":    nil,
		})
	}

	user, err := currentUser(c)
	if err != nil {
		return internalError(c)
	}

	groups := database.Mongo.Collection("groups")

	if err := groups.FindOne(c.Context(), bson.M{"name": name}).Err(); err == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Group name is already taken",
			"data":    nil,
		})
	}

	icon := ""
	if file, err := c.FormFile("groupIcon"); err == nil {
		icon, err = storeUpload(c, file)
		if err != nil {
			return internalError(c)
		}
	}

	now := time.Now()
	group := &model.Group{
		Name:      name,
		Admin:     user.ID,
		Members:   []primitive.ObjectID{user.ID},
		GroupIcon: icon,
		CreatedAt: now,
		UpdatedAt: now,
	}

	res, err := groups.InsertOne(c.Context(), group)
	if err != nil {
		return internalError(c)
	}
	group.ID = res.InsertedID.(primitive.ObjectID)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"status":  "success",
		"message": "Group created",
		"data":    group,
	})
}

func GroupAll(c *fiber.Ctx) error {
	cursor, err := database.Mongo.Collection("groups").Find(c.Context(), bson.M{})
	if err != nil {
		return internalError(c)
	}

	groups := []model.Group{}
	if err := cursor.All(c.Context(), &groups); err != nil {
		return internalError(c)
	}

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": nil,
		"data":    groups,
	})
}

func GroupByID(c *fiber.Ctx) error {
	oid, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return groupNotFound(c)
	}

	group := new(model.Group)
	if err := database.Mongo.Collection("groups").FindOne(c.Context(), bson.M{"_id": oid}).Decode(group); err != nil {
		return groupNotFound(c)
	}

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": nil,
		"data":    group,
	})
}

// GroupJoin adds the authenticated user to the member set. Join is open;
// re-joining is a no-op.
func GroupJoin(c *fiber.Ctx) error {
	gid, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return groupNotFound(c)
	}

	user, err := currentUser(c)
	if err != nil {
		return internalError(c)
	}

	res, err := database.Mongo.Collection("groups").UpdateOne(c.Context(), bson.M{"_id": gid}, bson.M{
		"$addToSet": bson.M{"members": user.ID},
		"$set":      bson.M{"updatedAt": time.Now()},
	})
	if err != nil {
		return internalError(c)
	}
	if res.MatchedCount == 0 {
		return groupNotFound(c)
	}

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "Joined group",
		"data":    nil,
	})
}

// GroupDelete removes a group. Allowed for the group admin or a platform
// admin.
func GroupDelete(c *fiber.Ctx) error {
	gid, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return groupNotFound(c)
	}

	user, err := currentUser(c)
	if err != nil {
		return internalError(c)
	}

	group := new(model.Group)
	groups := database.Mongo.Collection("groups")
	if err := groups.FindOne(c.Context(), bson.M{"_id": gid}).Decode(group); err != nil {
		return groupNotFound(c)
	}

	if group.Admin != user.ID && user.Role != model.RoleAdmin {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"status":  "error",
			"message": "Unauthorized to delete this group",
			"data":    nil,
		})
	}

	if _, err := groups.DeleteOne(c.Context(), bson.M{"_id": gid}); err != nil {
		return internalError(c)
	}

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "Group deleted",
		"data":    nil,
	})
}

func groupNotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"status":  "error",
		"message": "Group not found",
		"data":    nil,
	})
}
