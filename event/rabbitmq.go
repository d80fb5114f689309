// Package event publishes audit events to RabbitMQ for out-of-process
// consumers (notification and audit-log services). Publishing is strictly
// best-effort: a broker failure is logged, never propagated, so persisted
// chat state is never rolled back over a notification problem.
package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"qchat-service/config"

	amqp "github.com/rabbitmq/amqp091-go"
)

type LogData struct {
	Time    int64  `json:"time"`
	Service string `json:"service"`
	Action  string `json:"action"`
	Data    string `json:"data"`
}

const ActionHeader string = "x-action"
const OutLogFile string = "log/out.log"

const auditQueue = "audit"

// Publisher writes chat audit events to the audit queue and mirrors them to
// a local JSON log file.
type Publisher struct {
	connection *amqp.Connection
	channel    *amqp.Channel
	outLog     *os.File
}

func Connect() *Publisher {
	connection, err := amqp.Dial(fmt.Sprintf(
		"amqp://%s:%s@%s:%s/",
		config.Config("RABBITMQ_USER"),
		config.Config("RABBITMQ_PASSWORD"),
		config.Config("RABBITMQ_HOST"),
		config.Config("RABBITMQ_PORT"),
	))
	if err != nil {
		panic("failed to connect to RabbitMQ")
	}
	log.Printf("Connection opened to RabbitMQ")

	channel, err := connection.Channel()
	if err != nil {
		panic("failed to open a RabbitMQ channel")
	}

	if _, err := channel.QueueDeclare(
		auditQueue, // name
		true,       // durable
		false,      // delete when unused
		false,      // exclusive
		false,      // no-wait
		nil,        // arguments
	); err != nil {
		panic("failed to declare the audit queue")
	}

	os.MkdirAll("log", 0700)
	outLog, err := os.OpenFile(OutLogFile, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0600)
	if err != nil {
		panic(err)
	}

	return &Publisher{
		connection: connection,
		channel:    channel,
		outLog:     outLog,
	}
}

// Publish sends one event to the audit queue. Failures are logged and
// swallowed.
func (p *Publisher) Publish(action string, data any) {
	body, err := json.Marshal(data)
	if err != nil {
		log.Printf("event: marshalling %s: %v", action, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := p.channel.PublishWithContext(
		ctx,
		"",         // exchange
		auditQueue, // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Headers: amqp.Table{
				ActionHeader: action,
			},
			Body: body,
		},
	); err != nil {
		log.Printf("event: publishing %s: %v", action, err)
		return
	}

	if config.Config("EVENT_MODE") != "DISABLE" {
		p.outLogWrite(LogData{
			Time:    time.Now().UnixMicro(),
			Service: auditQueue,
			Action:  action,
			Data:    string(body),
		})
	}
}

func (p *Publisher) outLogWrite(data LogData) {
	eventJson, _ := json.Marshal(data)
	if _, err := p.outLog.WriteString(string(eventJson) + "\n"); err != nil {
		log.Printf("event: writing out log: %v", err)
	}
}

func (p *Publisher) Close() {
	p.channel.Close()
	p.connection.Close()
	p.outLog.Close()
}
