package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User statuses persisted on the user document.
const (
	StatusOnline  = "online"
	StatusOffline = "offline"
	StatusAway    = "away"
)

// User roles.
const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

// User is shared with the rest of the application; the messaging core reads
// profile fields and writes status/lastSeen on disconnect.
type User struct {
	ID             primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	Name           string               `bson:"name" json:"name"`
	Email          string               `bson:"email" json:"email"`
	Password       string               `bson:"password" json:"-"`
	Age            int                  `bson:"age,omitempty" json:"age,omitempty"`
	Phone          string               `bson:"phone,omitempty" json:"phone,omitempty"`
	Address        string               `bson:"address,omitempty" json:"address,omitempty"`
	ProfilePicture string               `bson:"profilePicture,omitempty" json:"profilePicture,omitempty"`
	Status         string               `bson:"status" json:"status"`
	LastSeen       time.Time            `bson:"lastSeen,omitempty" json:"lastSeen,omitempty"`
	Role           string               `bson:"role" json:"role"`
	Friends        []primitive.ObjectID `bson:"friends,omitempty" json:"friends,omitempty"`
	BlockedUsers   []primitive.ObjectID `bson:"blockedUsers,omitempty" json:"blockedUsers,omitempty"`
	OtpEnabled     bool                 `bson:"otpEnabled" json:"-"`
	OtpSecret      string               `bson:"otpSecret,omitempty" json:"-"`
	CreatedAt      time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time            `bson:"updatedAt" json:"updatedAt"`
}
