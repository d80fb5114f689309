package socketio

import (
	"time"

	"qchat-service/chat"
	"qchat-service/config"
	"qchat-service/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/zishang520/engine.io/v2/log"
	"github.com/zishang520/socket.io/v2/socket"
)

// Server wraps the socket.io server and implements the chat.Emitter fan-out
// contract. Connection state is held in this process only.
type Server struct {
	io *socket.Server
}

func Init(app *fiber.App) *Server {
	log.DEBUG = config.Config("SOCKET_DEBUG") == "true"

	options := socket.DefaultServerOptions()
	options.SetServeClient(true)
	options.SetAllowEIO3(true)
	options.SetPingInterval(25 * time.Second)
	options.SetPingTimeout(20 * time.Second)
	options.SetMaxHttpBufferSize(100000000)
	options.SetConnectTimeout(10 * time.Second)

	io := socket.NewServer(nil, nil)

	// Handshake authentication. A missing, malformed or expired token gets
	// the same rejection; the connection never reaches the event handlers.
	io.Use(func(client *socket.Socket, next func(*socket.ExtendedError)) {
		token, ok := client.Conn().Request().Query().Get("token")
		if !ok || token == "" {
			next(socket.NewExtendedError(chat.ErrAuthentication.Error(), nil))
			return
		}

		claims, err := utils.CheckAndExtractTokenMetadata(token, "JWT_ACCESS_KEY")
		if err != nil || claims.Otp {
			next(socket.NewExtendedError(chat.ErrAuthentication.Error(), nil))
			return
		}

		client.SetData(claims)
		next(nil)
	})

	app.Get("/socket.io/", adaptor.HTTPHandler(io.ServeHandler(options)))
	app.Post("/socket.io/", adaptor.HTTPHandler(io.ServeHandler(options)))

	return &Server{io: io}
}

// IO exposes the underlying server for connection handling.
func (s *Server) IO() *socket.Server {
	return s.io
}

// Broadcast emits an event to every connected socket.
func (s *Server) Broadcast(event string, message any) {
	s.io.FetchSockets()(func(sockets []*socket.RemoteSocket, _ error) {
		for _, client := range sockets {
			client.Emit(event, message)
		}
	})
}

// Emit sends an event to every socket joined to a room.
func (s *Server) Emit(room string, event string, message any) {
	s.io.To(socket.Room(room)).Emit(event, message)
}

func (s *Server) Close() {
	s.io.Close(nil)
}
