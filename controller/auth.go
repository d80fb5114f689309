package controller

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"qchat-service/config"
	"qchat-service/database"
	"qchat-service/model"
	"qchat-service/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/pquerna/otp/totp"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

type AuthSignupInput struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	Age            int    `json:"age"`
	Phone          string `json:"phone"`
	Address        string `json:"address"`
	ProfilePicture string `json:"profilePicture"`
}

type AuthLoginInput struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type AuthRenewTokenInput struct {
	RefreshToken string `json:"refresh_token"`
}

type AuthOtpSecretInput struct {
	Password string `json:"password"`
}

type AuthOtpVerifyInput struct {
	Token string `json:"token"`
}

type AuthOtpValidateInput struct {
	Token string `json:"token"`
}

type AuthOtpDisableInput struct {
	Password string `json:"password"`
	Token    string `json:"token"`
}

func AuthSignup(c *fiber.Ctx) error {
	input := new(AuthSignupInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Review your input",
			"data":    nil,
		})
	}

	if input.Name == "" || input.Email == "" || input.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Name, email and password are required",
			"data":    nil,
		})
	}

	users := database.Mongo.Collection("users")

	// If existed email is found, return error
	if err := users.FindOne(c.Context(), bson.M{"email": input.Email}).Err(); err == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Email is already registered",
			"data":    nil,
		})
	}

	// If existed name is found, return error
	if err := users.FindOne(c.Context(), bson.M{"name": input.Name}).Err(); err == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Name is already registered",
			"data":    nil,
		})
	}

	// Generate hash from password.
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), 14)
	if err != nil {
		return internalError(c)
	}

	// Generate OTP secret
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      config.Config("OTP_ISSUER"),
		AccountName: input.Email,
		SecretSize:  15,
	})
	if err != nil {
		return internalError(c)
	}

	now := time.Now()
	user := &model.User{
		Name:           input.Name,
		Email:          input.Email,
		Password:       string(hash),
		Age:            input.Age,
		Phone:          input.Phone,
		Address:        input.Address,
		ProfilePicture: input.ProfilePicture,
		Status:         model.StatusOffline,
		Role:           model.RoleMember,
		OtpSecret:      key.Secret(),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	res, err := users.InsertOne(c.Context(), user)
	if err != nil {
		return internalError(c)
	}
	id := res.InsertedID.(primitive.ObjectID)

	// Add casbin grouping policy
	enforcer := database.Casbin()
	enforcer.AddGroupingPolicy(id.Hex(), user.Role)
	enforcer.SavePolicy()

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": nil,
		"data": fiber.Map{
			"id": id.Hex(),
		},
	})
}

func AuthSignin(c *fiber.Ctx) error {
	input := new(AuthLoginInput)
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Review your input",
			"data":    nil,
		})
	}

	users := database.Mongo.Collection("users")

	filter := bson.M{"name": input.Login}
	if _, errParse := mail.ParseAddress(input.Login); errParse == nil {
		filter = bson.M{"email": input.Login}
	}

	user := new(model.User)
	if err := users.FindOne(c.Context(), filter).Decode(user); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"status":  "error",
			"message": "Invalid login or password",
			"data":    nil,
		})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"status":  "error",
			"message": "Invalid login or password",
			"data":    nil,
		})
	}

	id := user.ID.Hex()

	// Generate JWT Access & Refresh tokens
	tokens, err := utils.GenerateTokens(id, user.OtpEnabled)
	if err != nil {
		return internalError(c)
	}

	if err := database.Redis.Set(context.Background(), id, tokens.Refresh, 0).Err(); err != nil {
		return internalError(c)
	}

	// Mark the user online; the socket layer keeps it current from here.
	users.UpdateOne(c.Context(), bson.M{"_id": user.ID}, bson.M{
		"$set": bson.M{"status": model.StatusOnline, "updatedAt": time.Now()},
	})

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": nil,
		"data": fiber.Map{
			"access":  tokens.Access,
			"refresh": tokens.Refresh,
			"2fa":     user.OtpEnabled,
		},
	})
}

func AuthTokenRenew(c *fiber.Ctx) error {
	renew := &AuthRenewTokenInput{}
	if err := c.BodyParser(renew); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Review your input",
			"data":    nil,
		})
	}

	claims, err := utils.CheckAndExtractTokenMetadata(renew.RefreshToken, "JWT_REFRESH_KEY")
	if err != nil {
		return c.JSON(fiber.Map{
			"status":  "error",
			"message": "Invalid token",
			"data":    nil,
		})
	}

	userToken, err := database.Redis.Get(context.Background(), claims.UserID).Result()
	if err != nil {
		return internalError(c)
	}

	if userToken != renew.RefreshToken {
		return c.JSON(fiber.Map{
			"status":  "error",
			"message": "Unauthorized, your refresh token was already used",
			"data":    nil,
		})
	}

	// Generate JWT Access & Refresh tokens
	tokens, err := utils.GenerateTokens(claims.UserID, claims.Otp)
	if err != nil {
		return internalError(c)
	}

	// Save refresh token to Redis
	if err := database.Redis.Set(context.Background(), claims.UserID, tokens.Refresh, 0).Err(); err != nil {
		return internalError(c)
	}

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": nil,
		"data": fiber.Map{
			"access":  tokens.Access,
			"refresh": tokens.Refresh,
			"2fa":     claims.Otp,
		},
	})
}

func AuthOtpSecret(c *fiber.Ctx) error {
	secret := &AuthOtpSecretInput{}
	if err := c.BodyParser(secret); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Review your input",
			"data":    nil,
		})
	}

	user, err := currentUser(c)
	if err != nil {
		return internalError(c)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(secret.Password)); err != nil {
		return c.JSON(fiber.Map{
			"status":  "error",
			"message": "Invalid password",
			"data":    nil,
		})
	}

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": nil,
		"data": fiber.Map{
			"secret": user.OtpSecret,
			"url": fmt.Sprintf("otpauth://totp/%s:%s?algorithm=SHA1&digits=6&issuer=%s&period=30&secret=%s",
				config.Config("OTP_ISSUER"),
				user.Email,
				config.Config("OTP_ISSUER"),
				user.OtpSecret,
			),
		},
	})
}

func AuthOtpVerify(c *fiber.Ctx) error {
	verify := &AuthOtpVerifyInput{}
	if err := c.BodyParser(verify); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Review your input",
			"data":    nil,
		})
	}

	user, err := currentUser(c)
	if err != nil {
		return internalError(c)
	}

	if user.OtpEnabled {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"status":  "error",
			"message": "Verification has already been performed earlier",
			"data":    nil,
		})
	}

	if !totp.Validate(verify.Token, user.OtpSecret) {
		return c.JSON(fiber.Map{
			"status":  "error",
			"message": "Invalid token",
			"data":    nil,
		})
	}

	if err := setOtpEnabled(c, user.ID, true); err != nil {
		return internalError(c)
	}

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": nil,
		"data":    nil,
	})
}

func AuthOtpValidate(c *fiber.Ctx) error {
	validate := &AuthOtpValidateInput{}
	if err := c.BodyParser(validate); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Review your input",
			"data":    nil,
		})
	}

	user, err := currentUser(c)
	if err != nil {
		return internalError(c)
	}

	if !user.OtpEnabled {
		return c.JSON(fiber.Map{
			"status":  "error",
			"message": "2FA has been disabled",
			"data":    nil,
		})
	}

	if !totp.Validate(validate.Token, user.OtpSecret) {
		return c.JSON(fiber.Map{
			"status":  "error",
			"message": "Invalid token",
			"data":    nil,
		})
	}

	id := user.ID.Hex()

	// Generate JWT Access & Refresh tokens
	tokens, err := utils.GenerateTokens(id, false)
	if err != nil {
		return internalError(c)
	}

	// Save refresh token to Redis
	if err := database.Redis.Set(context.Background(), id, tokens.Refresh, 0).Err(); err != nil {
		return internalError(c)
	}

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": nil,
		"data": fiber.Map{
			"access":  tokens.Access,
			"refresh": tokens.Refresh,
		},
	})
}

func AuthOtpDisable(c *fiber.Ctx) error {
	disable := &AuthOtpDisableInput{}
	if err := c.BodyParser(disable); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Review your input",
			"data":    nil,
		})
	}

	user, err := currentUser(c)
	if err != nil {
		return internalError(c)
	}

	if !user.OtpEnabled {
		return c.JSON(fiber.Map{
			"status":  "error",
			"message": "2FA not enabled",
			"data":    nil,
		})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(disable.Password)); err != nil {
		return c.JSON(fiber.Map{
			"status":  "error",
			"message": "Invalid password",
			"data":    nil,
		})
	}

	if !totp.Validate(disable.Token, user.OtpSecret) {
		return c.JSON(fiber.Map{
			"status":  "error",
			"message": "Invalid token",
			"data":    nil,
		})
	}

	if err := setOtpEnabled(c, user.ID, false); err != nil {
		return internalError(c)
	}

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": nil,
		"data":    nil,
	})
}

// currentUser resolves the authenticated JWT against the user collection.
func currentUser(c *fiber.Ctx) (*model.User, error) {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)

	id, ok := claims["userId"].(string)
	if !ok {
		return nil, errors.New("missing userId claim")
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	user := new(model.User)
	if err := database.Mongo.Collection("users").FindOne(c.Context(), bson.M{"_id": oid}).Decode(user); err != nil {
		return nil, err
	}
	return user, nil
}

func setOtpEnabled(c *fiber.Ctx, id primitive.ObjectID, enabled bool) error {
	_, err := database.Mongo.Collection("users").UpdateOne(c.Context(), bson.M{"_id": id}, bson.M{
		"$set": bson.M{"otpEnabled": enabled, "updatedAt": time.Now()},
	})
	return err
}

func internalError(c *fiber.Ctx) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"status":  "error",
		"message": "Internal server error",
		"data":    nil,
	})
}
