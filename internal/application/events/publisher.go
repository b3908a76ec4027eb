// Package events publishes domain events onto the message bus.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/alchemorsel/recipebook/internal/domain/shared"
	"github.com/alchemorsel/recipebook/internal/ports/outbound"
	"github.com/google/uuid"
)

// Publisher serializes domain events and publishes each one on the topic
// named after the event.
type Publisher struct {
	bus outbound.MessageBus
}

// NewPublisher creates a new event publisher
func NewPublisher(bus outbound.MessageBus) *Publisher {
	return &Publisher{bus: bus}
}

// Publish implements shared.EventPublisher
func (p *Publisher) Publish(ctx context.Context, event shared.DomainEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", event.EventName(), err)
	}

	msg := outbound.Message{
		ID:        uuid.NewString(),
		Type:      event.EventName(),
		Payload:   payload,
		Metadata:  map[string]string{"content_type": "application/json"},
		Timestamp: event.OccurredAt(),
	}

	if err := p.bus.Publish(ctx, event.EventName(), msg); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", event.EventName(), err)
	}
	return nil
}

var _ shared.EventPublisher = (*Publisher)(nil)
