package messaging

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/alchemorsel/recipebook/internal/ports/outbound"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// RabbitMQConfig holds the broker settings
type RabbitMQConfig struct {
	URL            string
	Exchange       string
	ReconnectDelay time.Duration
}

type subscription struct {
	ctx     context.Context
	topic   string
	handler outbound.MessageHandler
}

// RabbitMQBus publishes messages to a durable topic exchange using the topic
// as routing key
type RabbitMQBus struct {
	cfg    RabbitMQConfig
	logger *zap.Logger

	mu      sync.RWMutex
	conn    *amqp.Connection
	channel *amqp.Channel
	subs    []subscription

	done      chan struct{}
	closeOnce sync.Once
}

// NewRabbitMQBus connects to the broker and declares the exchange
func NewRabbitMQBus(cfg RabbitMQConfig, logger *zap.Logger) (*RabbitMQBus, error) {
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = 5 * time.Second
	}

	b := &RabbitMQBus{
		cfg:    cfg,
		logger: logger.Named("rabbitmq"),
		done:   make(chan struct{}),
	}

	conn, channel, err := b.dial()
	if err != nil {
		return nil, err
	}
	b.conn = conn
	b.channel = channel

	go b.handleReconnect(conn)

	b.logger.Info("RabbitMQ bus initialized", zap.String("exchange", cfg.Exchange))
	return b, nil
}

func (b *RabbitMQBus) dial() (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(b.cfg.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		b.cfg.Exchange, // name
		"topic",        // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	return conn, channel, nil
}

// Publish sends message to the exchange with topic as routing key
func (b *RabbitMQBus) Publish(ctx context.Context, topic string, message outbound.Message) error {
	b.mu.RLock()
	channel := b.channel
	b.mu.RUnlock()

	select {
	case <-b.done:
		return ErrBusClosed
	default:
	}
	if channel == nil || channel.IsClosed() {
		return fmt.Errorf("RabbitMQ channel is not available")
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := channel.PublishWithContext(
		ctx,
		b.cfg.Exchange, // exchange
		topic,          // routing key
		false,          // mandatory
		false,          // immediate
		toPublishing(message),
	)
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	b.logger.Debug("Message published to RabbitMQ",
		zap.String("routing_key", topic),
		zap.String("message_id", message.ID),
		zap.Int("body_size", len(message.Payload)),
	)
	return nil
}

// Subscribe binds an exclusive queue to topic and runs handler for each
// delivery until ctx is done. Subscriptions are restored after a reconnect.
func (b *RabbitMQBus) Subscribe(ctx context.Context, topic string, handler outbound.MessageHandler) error {
	sub := subscription{ctx: ctx, topic: topic, handler: handler}

	b.mu.Lock()
	conn := b.conn
	b.subs = append(b.subs, sub)
	b.mu.Unlock()

	return b.consume(conn, sub)
}

func (b *RabbitMQBus) consume(conn *amqp.Connection, sub subscription) error {
	channel, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}

	q, err := channel.QueueDeclare(
		"",    // name
		false, // durable
		true,  // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		channel.Close()
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	if err := channel.QueueBind(q.Name, sub.topic, b.cfg.Exchange, false, nil); err != nil {
		channel.Close()
		return fmt.Errorf("failed to bind queue to %s: %w", sub.topic, err)
	}

	deliveries, err := channel.Consume(
		q.Name, // queue
		"",     // consumer tag
		false,  // auto-ack
		true,   // exclusive
		false,  // no-local
		false,  // no-wait
		nil,    // args
	)
	if err != nil {
		channel.Close()
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	go b.consumeLoop(channel, sub, deliveries)
	return nil
}

func (b *RabbitMQBus) consumeLoop(channel *amqp.Channel, sub subscription, deliveries <-chan amqp.Delivery) {
	defer channel.Close()

	for {
		select {
		case <-sub.ctx.Done():
			return
		case <-b.done:
			return
		case d, ok := <-deliveries:
			if !ok {
				return
			}
			if err := sub.handler(sub.ctx, fromDelivery(d)); err != nil {
				b.logger.Error("Message handler failed",
					zap.String("routing_key", d.RoutingKey),
					zap.String("message_id", d.MessageId),
					zap.Error(err),
				)
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// handleReconnect redials after the broker drops the connection and restores
// live subscriptions
func (b *RabbitMQBus) handleReconnect(conn *amqp.Connection) {
	for {
		closeChan := conn.NotifyClose(make(chan *amqp.Error, 1))

		select {
		case <-b.done:
			return
		case closeErr, ok := <-closeChan:
			if !ok || closeErr == nil {
				return
			}
			b.logger.Error("RabbitMQ connection closed, attempting to reconnect", zap.Error(closeErr))
		}

		for {
			select {
			case <-b.done:
				return
			case <-time.After(b.cfg.ReconnectDelay):
			}

			newConn, channel, err := b.dial()
			if err != nil {
				b.logger.Error("Failed to reconnect to RabbitMQ", zap.Error(err))
				continue
			}

			b.mu.Lock()
			b.conn = newConn
			b.channel = channel
			subs := b.liveSubscriptions()
			b.subs = subs
			b.mu.Unlock()

			for _, sub := range subs {
				if err := b.consume(newConn, sub); err != nil {
					b.logger.Error("Failed to restore subscription", zap.String("topic", sub.topic), zap.Error(err))
				}
			}

			b.logger.Info("Successfully reconnected to RabbitMQ")
			conn = newConn
			break
		}
	}
}

func (b *RabbitMQBus) liveSubscriptions() []subscription {
	live := b.subs[:0]
	for _, s := range b.subs {
		if s.ctx.Err() == nil {
			live = append(live, s)
		}
	}
	return live
}

// HealthCheck verifies the RabbitMQ connection
func (b *RabbitMQBus) HealthCheck(ctx context.Context) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.conn == nil || b.conn.IsClosed() {
		return fmt.Errorf("RabbitMQ connection is closed")
	}
	if b.channel == nil || b.channel.IsClosed() {
		return fmt.Errorf("RabbitMQ channel is closed")
	}
	return nil
}

// Close closes the channel and connection
func (b *RabbitMQBus) Close() error {
	var err error
	b.closeOnce.Do(func() {
		close(b.done)

		b.mu.Lock()
		defer b.mu.Unlock()
		if b.channel != nil {
			if cerr := b.channel.Close(); cerr != nil {
				b.logger.Error("Failed to close RabbitMQ channel", zap.Error(cerr))
			}
		}
		if b.conn != nil {
			err = b.conn.Close()
		}
		b.logger.Info("RabbitMQ bus closed")
	})
	return err
}

func toPublishing(m outbound.Message) amqp.Publishing {
	headers := amqp.Table{}
	for k, v := range m.Metadata {
		headers[k] = v
	}

	contentType := m.Metadata["content_type"]
	if contentType == "" {
		contentType = "application/json"
	}

	return amqp.Publishing{
		ContentType:  contentType,
		DeliveryMode: amqp.Persistent,
		Headers:      headers,
		MessageId:    m.ID,
		Type:         m.Type,
		Timestamp:    m.Timestamp,
		Body:         m.Payload,
	}
}

func fromDelivery(d amqp.Delivery) outbound.Message {
	metadata := make(map[string]string, len(d.Headers))
	for k, v := range d.Headers {
		if s, ok := v.(string); ok {
			metadata[k] = s
		}
	}

	return outbound.Message{
		ID:        d.MessageId,
		Type:      d.Type,
		Payload:   d.Body,
		Metadata:  metadata,
		Timestamp: d.Timestamp,
	}
}

var _ outbound.MessageBus = (*RabbitMQBus)(nil)
