// Package messaging provides outbound.MessageBus implementations: an
// in-process bus that logs every message and a RabbitMQ topic exchange.
package messaging

import (
	"context"
	"errors"
	"sync"

	"github.com/alchemorsel/recipebook/internal/ports/outbound"
	"go.uber.org/zap"
)

// ErrBusClosed is returned by Publish and Subscribe after Close
var ErrBusClosed = errors.New("message bus closed")

// LocalBus delivers messages synchronously to in-process subscribers
type LocalBus struct {
	mu       sync.RWMutex
	handlers map[string][]outbound.MessageHandler
	closed   bool
	logger   *zap.Logger
}

// NewLocalBus creates a new in-process message bus
func NewLocalBus(logger *zap.Logger) *LocalBus {
	return &LocalBus{
		handlers: make(map[string][]outbound.MessageHandler),
		logger:   logger.Named("local-bus"),
	}
}

// Publish logs the message and hands it to every subscriber of topic.
// Handler failures are logged and do not fail the publish.
func (b *LocalBus) Publish(ctx context.Context, topic string, message outbound.Message) error {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return ErrBusClosed
	}
	handlers := append([]outbound.MessageHandler(nil), b.handlers[topic]...)
	b.mu.RUnlock()

	b.logger.Info("Message published",
		zap.String("topic", topic),
		zap.String("message_id", message.ID),
		zap.String("type", message.Type),
		zap.ByteString("payload", message.Payload),
	)

	for _, h := range handlers {
		if err := h(ctx, message); err != nil {
			b.logger.Warn("Message handler failed",
				zap.String("topic", topic),
				zap.String("message_id", message.ID),
				zap.Error(err),
			)
		}
	}
	return nil
}

// Subscribe registers handler for topic
func (b *LocalBus) Subscribe(ctx context.Context, topic string, handler outbound.MessageHandler) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrBusClosed
	}
	b.handlers[topic] = append(b.handlers[topic], handler)
	return nil
}

// Close drops all subscribers
func (b *LocalBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.handlers = nil
	return nil
}

var _ outbound.MessageBus = (*LocalBus)(nil)
