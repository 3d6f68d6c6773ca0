package queue

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/social-media-api/internal/logging"
)

const dialTimeout = 2 * time.Second

// Publisher sends events to QueueName. A connection is dialed per publish;
// event traffic is one message per successful write request.
type Publisher struct {
	URL string
	log logging.Logger
}

func NewPublisher(url string, log logging.Logger) *Publisher {
	if log == nil {
		log = logging.Nop()
	}
	return &Publisher{URL: url, log: log.With("component", "publisher")}
}

// Publish delivers ev as a persistent JSON message. Errors are logged and
// returned so the caller can choose to ignore them.
func (p *Publisher) Publish(ctx context.Context, ev Event) error {
	conn, err := amqp.DialConfig(p.URL, amqp.Config{Dial: amqp.DefaultDial(dialTimeout)})
	if err != nil {
		p.log.Warn(ctx, "rabbitmq dial failed", "err", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.log.Warn(ctx, "rabbitmq channel open failed", "err", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	if err := declare(ch); err != nil {
		p.log.Warn(ctx, "rabbitmq queue declare failed", "err", err)
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.ID,
		Type:         ev.Type,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", QueueName, false, false, pub); err != nil {
		p.log.Warn(ctx, "rabbitmq publish failed", "err", err, "event", ev.Type)
		return err
	}
	return nil
}

// declare makes sure the durable queue exists. Safe to call repeatedly.
func declare(ch *amqp.Channel) error {
	_, err := ch.QueueDeclare(
		QueueName,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	)
	return err
}
