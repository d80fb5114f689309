// Package store provides the MongoDB implementations of the chat core's
// store interfaces.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"qchat-service/chat"
	"qchat-service/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type UserStore struct {
	col *mongo.Collection
}

func NewUserStore(db *mongo.Database) *UserStore {
	return &UserStore{col: db.Collection("users")}
}

func (s *UserStore) FindByID(ctx context.Context, id string) (*model.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: user %s", chat.ErrNotFound, id)
	}

	var user model.User
	if err := s.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: user %s", chat.ErrNotFound, id)
		}
		return nil, err
	}
	return &user, nil
}

func (s *UserStore) FindByIDs(ctx context.Context, ids []string) (map[string]model.User, error) {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			oids = append(oids, oid)
		}
	}

	users := make(map[string]model.User, len(oids))
	if len(oids) == 0 {
		return users, nil
	}

	cursor, err := s.col.Find(ctx, bson.M{"_id": bson.M{"$in": oids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var user model.User
		if err := cursor.Decode(&user); err != nil {
			return nil, err
		}
		users[user.ID.Hex()] = user
	}
	return users, cursor.Err()
}

func (s *UserStore) SetPresence(ctx context.Context, id string, status string, lastSeen time.Time) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: user %s", chat.ErrNotFound, id)
	}

	_, err = s.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{
		"$set": bson.M{
			"status":    status,
			"lastSeen":  lastSeen,
			"updatedAt": time.Now(),
		},
	})
	return err
}
