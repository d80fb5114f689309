package chat

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"qchat-service/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Pipeline validates, classifies, persists and fans out message mutations.
// The sender identity is always the authenticated socket identity; payload
// supplied sender fields are never consulted.
type Pipeline struct {
	messages MessageStore
	groups   GroupStore
	users    UserStore
	emitter  Emitter
	events   EventPublisher
}

func NewPipeline(messages MessageStore, groups GroupStore, users UserStore, emitter Emitter, events EventPublisher) *Pipeline {
	return &Pipeline{
		messages: messages,
		groups:   groups,
		users:    users,
		emitter:  emitter,
		events:   events,
	}
}

// FileKind classifies an attachment reference by its extension,
// case-insensitively. Unknown extensions classify as "other".
func FileKind(file string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(file)), ".")
	switch ext {
	case "png", "jpg", "jpeg", "gif":
		return model.FileKindImage
	case "mp4", "mov", "avi":
		return model.FileKindVideo
	case "mp3", "wav", "ogg":
		return model.FileKindAudio
	case "pdf":
		return model.FileKindDocument
	default:
		return model.FileKindOther
	}
}

// Send persists a new message and broadcasts it, sender populated, to every
// socket joined to the room. The sender receives it through the same
// broadcast. Group rooms additionally get the message id appended to the
// group's message projection.
func (p *Pipeline) Send(ctx context.Context, senderID, roomID, content, file string) error {
	content = strings.TrimSpace(content)
	if content == "" && file == "" {
		return fmt.Errorf("%w: message content or attachment is required", ErrValidation)
	}
	if roomID == "" {
		return fmt.Errorf("%w: room id is required", ErrValidation)
	}

	senderOID, err := primitive.ObjectIDFromHex(senderID)
	if err != nil {
		return fmt.Errorf("%w: malformed sender id", ErrValidation)
	}

	now := time.Now()
	msg := &model.Message{
		RoomID:    roomID,
		Content:   content,
		Sender:    senderOID,
		CreatedAt: now,
		EditedAt:  now,
	}

	if file != "" {
		msg.File = file
		msg.FileType = FileKind(file)
	}

	if IsDirectRoom(roomID) {
		other, ok := OtherParticipant(roomID, senderID)
		if !ok {
			return fmt.Errorf("%w: sender is not a participant of room %q", ErrValidation, roomID)
		}
		receiverOID, err := primitive.ObjectIDFromHex(other)
		if err != nil {
			return fmt.Errorf("%w: malformed room id %q", ErrValidation, roomID)
		}
		msg.Receiver = receiverOID
	} else {
		// The group must exist before anything persists; a send to an
		// unknown room mutates no state.
		if err := p.groups.Exists(ctx, roomID); err != nil {
			if errors.Is(err, ErrNotFound) {
				return err
			}
			return fmt.Errorf("%w: checking group: %v", ErrPersistence, err)
		}
	}

	if err := p.messages.Insert(ctx, msg); err != nil {
		return fmt.Errorf("%w: saving message: %v", ErrPersistence, err)
	}

	if !IsDirectRoom(roomID) {
		if err := p.groups.AppendMessage(ctx, roomID, msg.ID.Hex()); err != nil {
			return fmt.Errorf("%w: updating group: %v", ErrPersistence, err)
		}
	}

	view, err := p.populatedView(ctx, msg.ID.Hex())
	if err != nil {
		return err
	}

	p.emitter.Emit(roomID, EventReceiveMessage, view)
	p.events.Publish("message_sent", view)
	return nil
}

// Edit replaces the content of the requester's own message and broadcasts a
// delta to the room. Only the sender may edit, and a deleted message cannot
// be edited.
func (p *Pipeline) Edit(ctx context.Context, requesterID, messageID, content string) error {
	content = strings.TrimSpace(content)
	if messageID == "" || content == "" {
		return fmt.Errorf("%w: message id and content are required", ErrValidation)
	}

	msg, err := p.load(ctx, messageID)
	if err != nil {
		return err
	}
	if msg.IsDeleted {
		return fmt.Errorf("%w: message %s is deleted", ErrValidation, messageID)
	}
	if msg.Sender.Hex() != requesterID {
		return fmt.Errorf("%w: only the sender can edit this message", ErrAuthorization)
	}

	editedAt := time.Now()
	if err := p.messages.ApplyEdit(ctx, messageID, content, editedAt); err != nil {
		return fmt.Errorf("%w: updating message: %v", ErrPersistence, err)
	}

	update := MessageUpdate{
		MessageID: messageID,
		Content:   content,
		EditedAt:  editedAt,
		IsEdited:  true,
	}
	p.emitter.Emit(msg.RoomID, EventMessageUpdated, update)
	p.events.Publish("message_updated", update)
	return nil
}

// SoftDelete marks a message deleted and broadcasts the id to its room.
// The stored document keeps its content for audit; every subsequent read
// blanks it. Allowed for the sender or a platform admin.
func (p *Pipeline) SoftDelete(ctx context.Context, requesterID, messageID string) error {
	if messageID == "" {
		return fmt.Errorf("%w: message id is required", ErrValidation)
	}

	msg, err := p.load(ctx, messageID)
	if err != nil {
		return err
	}
	if msg.Sender.Hex() != requesterID {
		requester, err := p.users.FindByID(ctx, requesterID)
		if err != nil || requester.Role != model.RoleAdmin {
			return fmt.Errorf("%w: only the sender or an admin can delete this message", ErrAuthorization)
		}
	}

	if err := p.messages.MarkDeleted(ctx, messageID); err != nil {
		return fmt.Errorf("%w: deleting message: %v", ErrPersistence, err)
	}

	deleted := MessageDeleted{ID: messageID}
	p.emitter.Emit(msg.RoomID, EventMessageDeleted, deleted)
	p.events.Publish("message_deleted", deleted)
	return nil
}

func (p *Pipeline) load(ctx context.Context, messageID string) (*model.Message, error) {
	msg, err := p.messages.FindByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%w: message %s", ErrNotFound, messageID)
		}
		return nil, fmt.Errorf("%w: loading message: %v", ErrPersistence, err)
	}
	return msg, nil
}

// populatedView re-reads the stored message and resolves the sender profile,
// mirroring what history loads transmit.
func (p *Pipeline) populatedView(ctx context.Context, messageID string) (MessageView, error) {
	msg, err := p.load(ctx, messageID)
	if err != nil {
		return MessageView{}, err
	}

	sender := Profile{ID: msg.Sender.Hex()}
	if u, err := p.users.FindByID(ctx, msg.Sender.Hex()); err == nil {
		sender = ProfileOf(u)
	}
	return viewOf(msg, sender), nil
}
