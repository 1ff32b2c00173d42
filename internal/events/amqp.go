package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"feedesk/pkg/logger"
)

// AMQPForwarder republishes bus events to a RabbitMQ topic exchange, routed
// by event topic.
type AMQPForwarder struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

func NewAMQPForwarder(url, exchange string) (*AMQPForwarder, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	return &AMQPForwarder{conn: conn, channel: channel, exchange: exchange}, nil
}

// Attach subscribes the forwarder to topics on bus.
func (f *AMQPForwarder) Attach(bus Bus, topics ...Topic) {
	for _, topic := range topics {
		bus.Subscribe(topic, f.Forward)
	}
}

// Forward publishes e as a persistent JSON message. Failures are logged; the
// in-process delivery of the event is unaffected.
func (f *AMQPForwarder) Forward(ctx context.Context, e Event) {
	body, err := json.Marshal(e)
	if err != nil {
		logger.GetLogger().WithError(err).WithField("topic", e.Topic).Error("Failed to marshal event")
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	err = f.channel.PublishWithContext(
		ctx,
		f.exchange,      // exchange
		string(e.Topic), // routing key
		false,           // mandatory
		false,           // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    e.OccurredAt,
			Body:         body,
		},
	)
	if err != nil {
		logger.GetLogger().WithError(err).WithField("topic", e.Topic).Error("Failed to forward event to AMQP")
		return
	}

	logger.GetLogger().WithFields(map[string]interface{}{
		"topic":    e.Topic,
		"exchange": f.exchange,
	}).Debug("Forwarded event")
}

func (f *AMQPForwarder) Close() error {
	if err := f.channel.Close(); err != nil {
		f.conn.Close()
		return err
	}
	return f.conn.Close()
}
