package queue

import (
	"context"
	"encoding/json"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/tracktroop/backend/internal/domain"
)

const MailQueueName = "mail_queue"

// MailQueue publishes transactional mail messages to RabbitMQ. The mail
// worker (cmd/mail) consumes them.
type MailQueue struct {
	ch *amqp.Channel
}

func NewMailQueue(conn *amqp.Connection) (*MailQueue, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}

	if _, err := ch.QueueDeclare(
		MailQueueName,
		true,  // durable
		false, // do not auto-delete while there is no consumer
		false, // not exclusive
		false, // wait for the broker to confirm the declaration
		nil,
	); err != nil {
		ch.Close()
		return nil, err
	}

	return &MailQueue{ch: ch}, nil
}

func (q *MailQueue) Publish(ctx context.Context, msg domain.MailMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	return q.ch.PublishWithContext(
		ctx,
		"",
		MailQueueName,
		true,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}

func (q *MailQueue) Close() error {
	return q.ch.Close()
}
