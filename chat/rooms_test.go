package chat

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectRoomIDCommutative(t *testing.T) {
	ab, err := DirectRoomID(aliceID, bobID)
	require.NoError(t, err)
	ba, err := DirectRoomID(bobID, aliceID)
	require.NoError(t, err)

	assert.Equal(t, ab, ba)
	assert.Equal(t, aliceID+RoomSeparator+bobID, ab)
}

func TestDirectRoomIDRejectsBadIdentities(t *testing.T) {
	tests := []struct {
		name  string
		userA string
		userB string
	}{
		{"empty first", "", bobID},
		{"empty second", aliceID, ""},
		{"same identity", aliceID, aliceID},
		{"separator in identity", "u1-x", bobID},
		{"separator in second identity", aliceID, "u2-y"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DirectRoomID(tt.userA, tt.userB)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestOtherParticipant(t *testing.T) {
	room, _ := DirectRoomID(aliceID, bobID)

	other, ok := OtherParticipant(room, aliceID)
	require.True(t, ok)
	assert.Equal(t, bobID, other)

	other, ok = OtherParticipant(room, bobID)
	require.True(t, ok)
	assert.Equal(t, aliceID, other)

	_, ok = OtherParticipant(room, carolID)
	assert.False(t, ok)
}

func TestLoadHistoryDirectRoom(t *testing.T) {
	r := newRig()
	ctx := context.Background()
	room, _ := DirectRoomID(aliceID, bobID)

	// Messages in both sender/receiver orderings, plus noise that shares
	// neither the room nor the participant pair.
	require.NoError(t, r.pipeline.Send(ctx, aliceID, room, "first", ""))
	time.Sleep(time.Millisecond)
	require.NoError(t, r.pipeline.Send(ctx, bobID, room, "second", ""))
	otherRoom, _ := DirectRoomID(bobID, carolID)
	require.NoError(t, r.pipeline.Send(ctx, carolID, otherRoom, "noise", ""))

	history, err := r.rooms.LoadHistory(ctx, room)
	require.NoError(t, err)
	require.Len(t, history, 2)

	assert.Equal(t, "first", history[0].Content)
	assert.Equal(t, aliceID, history[0].Sender.ID)
	assert.Equal(t, "Alice", history[0].Sender.Name)
	assert.Equal(t, "second", history[1].Content)
	assert.Equal(t, bobID, history[1].Sender.ID)
	assert.True(t, !history[1].CreatedAt.Before(history[0].CreatedAt))
}

func TestLoadHistoryIgnoresRoomIDCollision(t *testing.T) {
	r := newRig()
	ctx := context.Background()
	room, _ := DirectRoomID(aliceID, bobID)

	require.NoError(t, r.pipeline.Send(ctx, aliceID, room, "legit", ""))

	// A forged document matching the room id but not the participant pair
	// must not leak into the history.
	forged, _ := DirectRoomID(aliceID, carolID)
	require.NoError(t, r.pipeline.Send(ctx, carolID, forged, "forged", ""))
	r.messages.stored(r.messages.docs[1].ID.Hex()).RoomID = room

	history, err := r.rooms.LoadHistory(ctx, room)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "legit", history[0].Content)
}

func TestLoadHistoryMalformedRoomID(t *testing.T) {
	r := newRig()

	_, err := r.rooms.LoadHistory(context.Background(), "")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = r.rooms.LoadHistory(context.Background(), "-dangling")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestLoadHistoryPersistenceError(t *testing.T) {
	r := newRig()
	r.messages.err = assert.AnError

	_, err := r.rooms.LoadHistory(context.Background(), "grouproom")
	assert.ErrorIs(t, err, ErrPersistence)
}
