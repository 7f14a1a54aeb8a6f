package mq

import (
	"context"
	"crypto/tls"
	"errors"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/eternalmoments/backend/internal/config"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// DialFunc opens a RabbitMQ connection; used for both the initial
// connection and reconnects.
type DialFunc func() (*amqp.Connection, error)

// NewDialFunc builds a DialFunc from config, upgrading to TLS when the
// config or the URL scheme asks for it.
func NewDialFunc(cfg *config.Config) DialFunc {
	return func() (*amqp.Connection, error) {
		useTLS := cfg.RabbitMQ.EnableTLS || strings.HasPrefix(cfg.RabbitMQ.URL, "amqps://")
		if useTLS {
			tlsConfig := &tls.Config{
				MinVersion: tls.VersionTLS12,
			}
			url := cfg.RabbitMQ.URL
			if strings.HasPrefix(url, "amqp://") {
				url = strings.Replace(url, "amqp://", "amqps://", 1)
			}
			return amqp.DialTLS(url, tlsConfig)
		}
		return amqp.Dial(cfg.RabbitMQ.URL)
	}
}

type Publisher struct {
	ch  *amqp.Channel
	log *zap.Logger
	cfg *config.Config
}

func NewPublisher(conn *amqp.Connection, log *zap.Logger, cfg *config.Config) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}
	if err := ch.ExchangeDeclare(cfg.RabbitMQ.EventExchange, "topic", true, false, false, false, nil); err != nil {
		return nil, err
	}
	return &Publisher{ch: ch, log: log, cfg: cfg}, nil
}

func (p *Publisher) Close() error { return p.ch.Close() }

// PublishJSON publishes body as a persistent JSON message on the event
// exchange.
func (p *Publisher) PublishJSON(ctx context.Context, routingKey string, body any) error {
	b, err := sonic.Marshal(body)
	if err != nil {
		return err
	}

	publishing := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         b,
	}

	return p.ch.PublishWithContext(ctx, p.cfg.RabbitMQ.EventExchange, routingKey, false, false, publishing)
}

type Consumer struct {
	ch  *amqp.Channel
	q   amqp.Queue
	log *zap.Logger
}

// NewConsumer binds a durable queue to the event exchange under the
// given routing key. Downstream workers (e.g. release feed builders)
// consume from it.
func NewConsumer(conn *amqp.Connection, cfg *config.Config, queueName, routingKey string, prefetch int, log *zap.Logger) (*Consumer, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}
	if prefetch <= 0 {
		prefetch = 10
	}
	if err := ch.Qos(prefetch, 0, false); err != nil {
		return nil, err
	}
	q, err := ch.QueueDeclare(queueName, true, false, false, false, nil)
	if err != nil {
		return nil, err
	}
	if err := ch.QueueBind(q.Name, routingKey, cfg.RabbitMQ.EventExchange, false, nil); err != nil {
		return nil, err
	}
	return &Consumer{ch: ch, q: q, log: log}, nil
}

func (c *Consumer) Close() error { return c.ch.Close() }

// Handle consumes until ctx ends, Nacking with requeue when the handler
// returns an error.
func (c *Consumer) Handle(ctx context.Context, handler func([]byte) error) error {
	msgs, err := c.ch.Consume(c.q.Name, "", false, false, false, false, nil)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-msgs:
			if !ok {
				return errors.New("consumer channel closed")
			}
			if err := handler(m.Body); err != nil {
				_ = m.Nack(false, true) // Processing failed, requeue.
				c.log.Sugar().Errorw("consume error", "err", err)
				continue
			}
			_ = m.Ack(false)
		}
	}
}
