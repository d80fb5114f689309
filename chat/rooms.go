package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"qchat-service/model"
)

// RoomSeparator joins the two participant ids of a direct room. Its presence
// in a room id is what distinguishes direct rooms from group rooms, so
// identities containing it are rejected outright.
const RoomSeparator = "-"

// DirectRoomID derives the deterministic id of a direct conversation:
// the two identities sorted lexicographically and joined with the separator.
// Commutative: DirectRoomID(a, b) == DirectRoomID(b, a).
func DirectRoomID(userA, userB string) (string, error) {
	if userA == "" || userB == "" || userA == userB {
		return "", fmt.Errorf("%w: direct room needs two distinct participants", ErrValidation)
	}
	if strings.Contains(userA, RoomSeparator) || strings.Contains(userB, RoomSeparator) {
		return "", fmt.Errorf("%w: identity must not contain %q", ErrValidation, RoomSeparator)
	}
	if userA > userB {
		userA, userB = userB, userA
	}
	return userA + RoomSeparator + userB, nil
}

// IsDirectRoom reports whether a room id names a direct conversation.
func IsDirectRoom(roomID string) bool {
	return strings.Contains(roomID, RoomSeparator)
}

// DirectParticipants splits a direct room id into its two identities.
func DirectParticipants(roomID string) (string, string, bool) {
	a, b, found := strings.Cut(roomID, RoomSeparator)
	if !found || a == "" || b == "" || strings.Contains(b, RoomSeparator) {
		return "", "", false
	}
	return a, b, true
}

// OtherParticipant returns the participant of a direct room that is not id.
func OtherParticipant(roomID, id string) (string, bool) {
	a, b, ok := DirectParticipants(roomID)
	if !ok {
		return "", false
	}
	switch id {
	case a:
		return b, true
	case b:
		return a, true
	}
	return "", false
}

// RoomRouter loads conversation history for a room, sender profiles
// populated, ascending by creation time.
type RoomRouter struct {
	messages MessageStore
	users    UserStore
}

func NewRoomRouter(messages MessageStore, users UserStore) *RoomRouter {
	return &RoomRouter{messages: messages, users: users}
}

// LoadHistory returns the ordered message history of a room. Direct rooms
// additionally match messages on the two valid (sender, receiver) orderings,
// guarding against room id collisions beyond the roomId match itself.
func (r *RoomRouter) LoadHistory(ctx context.Context, roomID string) ([]MessageView, error) {
	if roomID == "" {
		return nil, fmt.Errorf("%w: room id is required", ErrValidation)
	}

	var (
		raw []model.Message
		err error
	)
	if IsDirectRoom(roomID) {
		userA, userB, ok := DirectParticipants(roomID)
		if !ok {
			return nil, fmt.Errorf("%w: malformed room id %q", ErrValidation, roomID)
		}
		raw, err = r.messages.FindDirect(ctx, roomID, userA, userB)
	} else {
		raw, err = r.messages.FindByRoom(ctx, roomID)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: loading message history: %v", ErrPersistence, err)
	}

	return r.populate(ctx, raw)
}

// populate resolves sender profiles in one batch and builds the transmitted
// views, blanking soft-deleted content.
func (r *RoomRouter) populate(ctx context.Context, raw []model.Message) ([]MessageView, error) {
	ids := make([]string, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for i := range raw {
		id := raw[i].Sender.Hex()
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	senders, err := r.users.FindByIDs(ctx, ids)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("%w: resolving senders: %v", ErrPersistence, err)
	}

	views := make([]MessageView, 0, len(raw))
	for i := range raw {
		sender := Profile{ID: raw[i].Sender.Hex()}
		if u, ok := senders[raw[i].Sender.Hex()]; ok {
			sender = ProfileOf(&u)
		}
		views = append(views, viewOf(&raw[i], sender))
	}
	return views, nil
}
