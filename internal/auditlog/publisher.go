package auditlog

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const auditQueue = "audit.actions"

// Entry is the queue-side shape of one audit record.
type Entry struct {
	ProjectID string `json:"project_id"`
	UserID    string `json:"user_id"`
	Action    string `json:"action"`
	Details   string `json:"details"`
}

// Publisher pushes audit entries to a durable RabbitMQ queue. A connection
// is dialed per publish; the audit path is low-volume and the broker may
// come and go independently of the auction.
type Publisher struct {
	url string
}

func NewPublisher(url string) *Publisher {
	return &Publisher{url: url}
}

func (p *Publisher) Publish(ctx context.Context, entry Entry) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(auditQueue, true, false, false, false, nil); err != nil {
		return err
	}

	body, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return ch.PublishWithContext(ctx, "", auditQueue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
}
