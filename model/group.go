package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Group is a named multi-member room. Members always contains the admin.
// Messages is a projection of message ids sent to the group room, appended
// by the message pipeline.
type Group struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	Name      string               `bson:"name" json:"name"`
	Admin     primitive.ObjectID   `bson:"admin" json:"admin"`
	Members   []primitive.ObjectID `bson:"members" json:"members"`
	GroupIcon string               `bson:"groupIcon,omitempty" json:"groupIcon,omitempty"`
	Messages  []primitive.ObjectID `bson:"messages,omitempty" json:"messages,omitempty"`
	CreatedAt time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time            `bson:"updatedAt" json:"updatedAt"`
}
