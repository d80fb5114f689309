package router

import (
	"context"
	"log"
	"time"

	"qchat-service/chat"
	"qchat-service/socketio"
	"qchat-service/utils"

	"github.com/zishang520/socket.io/v2/socket"
)

// SocketDeps is everything the connection gateway routes events to.
type SocketDeps struct {
	Presence chat.PresenceRegistry
	Rooms    *chat.RoomRouter
	Pipeline *chat.Pipeline
	Users    chat.UserStore
	Events   chat.EventPublisher
}

const eventTimeout = 10 * time.Second

// Socket wires the connection lifecycle and the inbound event vocabulary.
// The authenticated identity from the handshake is the trusted sender for
// every operation; sender fields in payloads are ignored.
func Socket(server *socketio.Server, deps SocketDeps) {
	server.IO().On("connection", func(clients ...any) {
		client := clients[0].(*socket.Socket)

		claims, ok := client.Data().(*utils.TokenMetadata)
		if !ok {
			// Middleware rejects unauthenticated handshakes; this is a
			// failsafe, not a path.
			client.Disconnect(true)
			return
		}
		userID := claims.UserID

		ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
		user, err := deps.Users.FindByID(ctx, userID)
		cancel()
		if err != nil {
			log.Printf("socket: loading user %s: %v", userID, err)
		} else {
			deps.Presence.Register(userID, chat.ProfileOf(user))
			deps.Events.Publish("user_connected", chat.ProfileOf(user))
		}

		client.On("joinRoom", func(args ...any) {
			roomID, ok := stringArg(args, 0)
			if !ok || roomID == "" {
				emitError(client, chat.ErrValidation)
				return
			}

			// A socket occupies at most one logical room; switching
			// conversations leaves the previous one. The socket's own id
			// room stays.
			for _, room := range client.Rooms().Keys() {
				if room != socket.Room(client.Id()) {
					client.Leave(room)
				}
			}
			client.Join(socket.Room(roomID))

			ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
			defer cancel()

			history, err := deps.Rooms.LoadHistory(ctx, roomID)
			if err != nil {
				emitError(client, err)
				return
			}
			client.Emit(chat.EventMessageHistory, history)
		})

		client.On("sendMessage", func(args ...any) {
			payload, ok := mapArg(args, 0)
			if !ok {
				emitError(client, chat.ErrValidation)
				return
			}
			roomID, _ := payload["roomId"].(string)
			content, _ := payload["content"].(string)
			file, _ := payload["file"].(string)

			ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
			defer cancel()

			if err := deps.Pipeline.Send(ctx, userID, roomID, content, file); err != nil {
				emitError(client, err)
			}
		})

		client.On("updateMessage", func(args ...any) {
			payload, ok := mapArg(args, 0)
			if !ok {
				emitError(client, chat.ErrValidation)
				return
			}
			messageID, _ := payload["messageId"].(string)
			content, _ := payload["content"].(string)

			ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
			defer cancel()

			if err := deps.Pipeline.Edit(ctx, userID, messageID, content); err != nil {
				emitError(client, err)
			}
		})

		client.On("deleteMessage", func(args ...any) {
			messageID, ok := stringArg(args, 0)
			if !ok {
				emitError(client, chat.ErrValidation)
				return
			}

			ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
			defer cancel()

			if err := deps.Pipeline.SoftDelete(ctx, userID, messageID); err != nil {
				emitError(client, err)
			}
		})

		client.On("disconnect", func(...any) {
			ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
			defer cancel()

			deps.Presence.Unregister(ctx, userID)
			deps.Events.Publish("user_disconnected", chat.Profile{ID: userID})
		})
	})
}

// emitError reports a failure to the originating socket only. Failures never
// escape a handler; the connection stays open.
func emitError(client *socket.Socket, err error) {
	client.Emit(chat.EventError, chat.ErrorPayload{Message: err.Error()})
}

func stringArg(args []any, i int) (string, bool) {
	if len(args) <= i {
		return "", false
	}
	s, ok := args[i].(string)
	return s, ok
}

func mapArg(args []any, i int) (map[string]any, bool) {
	if len(args) <= i {
		return nil, false
	}
	m, ok := args[i].(map[string]any)
	return m, ok
}
