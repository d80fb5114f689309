package store

import (
	"context"
	"fmt"
	"time"

	"qchat-service/chat"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type GroupStore struct {
	col *mongo.Collection
}

func NewGroupStore(db *mongo.Database) *GroupStore {
	return &GroupStore{col: db.Collection("groups")}
}

// Exists reports whether the group is known, as a wrapped chat.ErrNotFound
// when it is not.
func (s *GroupStore) Exists(ctx context.Context, groupID string) error {
	gid, err := primitive.ObjectIDFromHex(groupID)
	if err != nil {
		return fmt.Errorf("%w: group %s", chat.ErrNotFound, groupID)
	}

	n, err := s.col.CountDocuments(ctx, bson.M{"_id": gid})
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: group %s", chat.ErrNotFound, groupID)
	}
	return nil
}

// AppendMessage adds a message id to the group's message projection and
// bumps updatedAt.
func (s *GroupStore) AppendMessage(ctx context.Context, groupID string, messageID string) error {
	gid, err := primitive.ObjectIDFromHex(groupID)
	if err != nil {
		return fmt.Errorf("%w: group %s", chat.ErrNotFound, groupID)
	}
	mid, err := primitive.ObjectIDFromHex(messageID)
	if err != nil {
		return fmt.Errorf("malformed message id %q", messageID)
	}

	res, err := s.col.UpdateOne(ctx, bson.M{"_id": gid}, bson.M{
		"$push": bson.M{"messages": mid},
		"$set":  bson.M{"updatedAt": time.Now()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: group %s", chat.ErrNotFound, groupID)
	}
	return nil
}
