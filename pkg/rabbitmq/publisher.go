// Package rabbitmq предоставляет публикацию JSON сообщений в очередь RabbitMQ.
package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"authcore/pkg/logger"
)

const (
	logConnecting = "connecting to RabbitMQ"
	logConnected  = "successfully connected to RabbitMQ"
	logClosing    = "closing RabbitMQ connection"

	errDial         = "failed to dial RabbitMQ"
	errOpenChannel  = "failed to open channel"
	errDeclareQueue = "failed to declare queue"
	errMarshal      = "failed to marshal message"
	errPublish      = "failed to publish message"
)

// Channel - подмножество amqp.Channel, используемое издателем.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher публикует сообщения в durable очередь через default exchange.
type Publisher struct {
	conn  *amqp.Connection
	ch    Channel
	queue string
}

// NewPublisher подключается к брокеру и объявляет durable очередь.
func NewPublisher(ctx context.Context, url, queue string) (*Publisher, error) {
	log := logger.Log(ctx).With(zap.String("queue", queue))
	log.Info(ctx, logConnecting)

	conn, err := amqp.Dial(url)
	if err != nil {
		log.Error(ctx, errDial, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errDial, err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		log.Error(ctx, errOpenChannel, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errOpenChannel, err)
	}

	if _, err := ch.QueueDeclare(
		queue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		log.Error(ctx, errDeclareQueue, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errDeclareQueue, err)
	}

	log.Info(ctx, logConnected)
	return &Publisher{conn: conn, ch: ch, queue: queue}, nil
}

// NewPublisherWithChannel создает издателя поверх готового канала.
func NewPublisherWithChannel(ch Channel, queue string) *Publisher {
	return &Publisher{ch: ch, queue: queue}
}

// PublishJSON сериализует body и публикует его как persistent сообщение.
func (p *Publisher) PublishJSON(ctx context.Context, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%s: %w", errMarshal, err)
	}

	if err := p.ch.PublishWithContext(ctx,
		"",      // default exchange
		p.queue, // routing key = queue
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         payload,
		},
	); err != nil {
		return fmt.Errorf("%s: %w", errPublish, err)
	}

	return nil
}

// Close закрывает канал и соединение.
func (p *Publisher) Close(ctx context.Context) error {
	if p == nil {
		return nil
	}
	logger.Log(ctx).Info(ctx, logClosing)

	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
