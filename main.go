package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"qchat-service/chat"
	"qchat-service/config"
	"qchat-service/database"
	"qchat-service/event"
	"qchat-service/router"
	"qchat-service/socketio"
	"qchat-service/store"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	log.SetPrefix("qchat-service: ")

	rest := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		StrictRouting:         true,
		AppName:               "qchat-service",
	})

	rest.Use(cors.New())

	database.RedisConnect()
	database.MongoConnect()

	events := event.Connect()

	socket := socketio.Init(rest)

	users := store.NewUserStore(database.Mongo)
	messages := store.NewMessageStore(database.Mongo)
	groups := store.NewGroupStore(database.Mongo)

	presence := chat.NewPresence(socket, users)
	rooms := chat.NewRoomRouter(messages, users)
	pipeline := chat.NewPipeline(messages, groups, users, socket, events)

	router.Rest(rest)
	router.Socket(socket, router.SocketDeps{
		Presence: presence,
		Rooms:    rooms,
		Pipeline: pipeline,
		Users:    users,
		Events:   events,
	})

	go rest.Listen(fmt.Sprintf(":%s", config.Config("SERVER_PORT")))

	exit := make(chan struct{})
	SignalC := make(chan os.Signal, 1)

	signal.Notify(SignalC, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		for s := range SignalC {
			switch s {
			case syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT:
				close(exit)
				return
			}
		}
	}()

	<-exit
	socket.Close()
	events.Close()
	database.MongoDisconnect()
	os.Exit(0)
}
