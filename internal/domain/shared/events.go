package shared

import (
	"context"
	"time"
)

// DomainEvent represents an event that has occurred in the domain
type DomainEvent interface {
	EventName() string
	OccurredAt() time.Time
}

// EventPublisher publishes domain events to interested parties
type EventPublisher interface {
	Publish(ctx context.Context, event DomainEvent) error
}

// EventHandler handles domain events
type EventHandler func(ctx context.Context, event DomainEvent) error
