// Package chat implements the real-time messaging core: presence tracking,
// room resolution, message history and the send/edit/delete pipeline. The
// transport and the persistent store are injected behind small interfaces so
// the core is testable without a socket server or a live database.
package chat

import (
	"context"
	"time"

	"qchat-service/model"
)

// Server → client event vocabulary.
const (
	EventUpdatedUsers   = "updated_users"
	EventMessageHistory = "messageHistory"
	EventReceiveMessage = "receiveMessage"
	EventMessageUpdated = "messageUpdated"
	EventMessageDeleted = "messageDeleted"
	EventError          = "error"
)

// Emitter fans events out to connected sockets. Implemented by the socketio
// package; replaced with a recorder in tests.
type Emitter interface {
	// Broadcast sends an event to every connected client.
	Broadcast(event string, message any)
	// Emit sends an event to every socket joined to the room.
	Emit(room string, event string, message any)
}

// EventPublisher records audit events for out-of-process consumers.
// Publishing is best-effort; implementations must not fail the operation.
type EventPublisher interface {
	Publish(action string, data any)
}

// UserStore is the slice of the user collection the messaging core needs.
type UserStore interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByIDs(ctx context.Context, ids []string) (map[string]model.User, error)
	SetPresence(ctx context.Context, id string, status string, lastSeen time.Time) error
}

// MessageStore persists and queries messages.
type MessageStore interface {
	Insert(ctx context.Context, m *model.Message) error
	FindByID(ctx context.Context, id string) (*model.Message, error)
	FindByRoom(ctx context.Context, roomID string) ([]model.Message, error)
	FindDirect(ctx context.Context, roomID string, userA string, userB string) ([]model.Message, error)
	ApplyEdit(ctx context.Context, id string, content string, editedAt time.Time) error
	MarkDeleted(ctx context.Context, id string) error
}

// GroupStore maintains the group-side projection of room messages.
type GroupStore interface {
	Exists(ctx context.Context, groupID string) error
	AppendMessage(ctx context.Context, groupID string, messageID string) error
}

// Profile is the lightweight public projection of a user carried in presence
// snapshots and populated message payloads.
type Profile struct {
	ID             string `json:"_id"`
	Name           string `json:"name"`
	ProfilePicture string `json:"profilePicture,omitempty"`
}

// ProfileOf projects a user document.
func ProfileOf(u *model.User) Profile {
	return Profile{
		ID:             u.ID.Hex(),
		Name:           u.Name,
		ProfilePicture: u.ProfilePicture,
	}
}

// MessageView is the transmitted form of a message, sender populated.
// Deleted messages carry blanked content; the stored document keeps it.
type MessageView struct {
	ID        string    `json:"_id"`
	RoomID    string    `json:"roomId"`
	Content   string    `json:"content"`
	Sender    Profile   `json:"sender"`
	Receiver  string    `json:"receiver,omitempty"`
	File      string    `json:"file,omitempty"`
	FileType  string    `json:"fileType,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	EditedAt  time.Time `json:"editedAt"`
	IsDeleted bool      `json:"isDeleted"`
	IsEdited  bool      `json:"isEdited"`
}

// MessageUpdate is the delta broadcast after an edit.
type MessageUpdate struct {
	MessageID string    `json:"messageId"`
	Content   string    `json:"content"`
	EditedAt  time.Time `json:"editedAt"`
	IsEdited  bool      `json:"isEdited"`
}

// MessageDeleted is the notification broadcast after a soft delete.
type MessageDeleted struct {
	ID string `json:"id"`
}

// ErrorPayload is sent only to the socket that triggered a failing operation.
type ErrorPayload struct {
	Message string `json:"message"`
}

func viewOf(m *model.Message, sender Profile) MessageView {
	v := MessageView{
		ID:        m.ID.Hex(),
		RoomID:    m.RoomID,
		Content:   m.Content,
		Sender:    sender,
		File:      m.File,
		FileType:  m.FileType,
		CreatedAt: m.CreatedAt,
		EditedAt:  m.EditedAt,
		IsDeleted: m.IsDeleted,
		IsEdited:  m.IsEdited,
	}
	if !m.Receiver.IsZero() {
		v.Receiver = m.Receiver.Hex()
	}
	if m.IsDeleted {
		v.Content = ""
	}
	return v
}
