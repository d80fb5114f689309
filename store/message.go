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
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MessageStore struct {
	col *mongo.Collection
}

func NewMessageStore(db *mongo.Database) *MessageStore {
	return &MessageStore{col: db.Collection("messages")}
}

func (s *MessageStore) Insert(ctx context.Context, m *model.Message) error {
	res, err := s.col.InsertOne(ctx, m)
	if err != nil {
		return err
	}
	m.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (s *MessageStore) FindByID(ctx context.Context, id string) (*model.Message, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: message %s", chat.ErrNotFound, id)
	}

	var m model.Message
	if err := s.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&m); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: message %s", chat.ErrNotFound, id)
		}
		return nil, err
	}
	return &m, nil
}

func (s *MessageStore) FindByRoom(ctx context.Context, roomID string) ([]model.Message, error) {
	return s.find(ctx, bson.M{"roomId": roomID})
}

// FindDirect matches the room id and, defensively, the two valid
// (sender, receiver) orderings for the participants.
func (s *MessageStore) FindDirect(ctx context.Context, roomID string, userA string, userB string) ([]model.Message, error) {
	a, errA := primitive.ObjectIDFromHex(userA)
	b, errB := primitive.ObjectIDFromHex(userB)
	if errA != nil || errB != nil {
		return nil, fmt.Errorf("malformed participant id in room %q", roomID)
	}

	return s.find(ctx, bson.M{
		"roomId": roomID,
		"$or": bson.A{
			bson.M{"sender": a, "receiver": b},
			bson.M{"sender": b, "receiver": a},
		},
	})
}

func (s *MessageStore) find(ctx context.Context, filter bson.M) ([]model.Message, error) {
	cursor, err := s.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	messages := []model.Message{}
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

func (s *MessageStore) ApplyEdit(ctx context.Context, id string, content string, editedAt time.Time) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: message %s", chat.ErrNotFound, id)
	}

	res, err := s.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{
		"$set": bson.M{
			"content":  content,
			"isEdited": true,
			"editedAt": editedAt,
		},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: message %s", chat.ErrNotFound, id)
	}
	return nil
}

func (s *MessageStore) MarkDeleted(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: message %s", chat.ErrNotFound, id)
	}

	res, err := s.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{
		"$set": bson.M{"isDeleted": true},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: message %s", chat.ErrNotFound, id)
	}
	return nil
}
