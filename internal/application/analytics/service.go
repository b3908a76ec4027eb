// Package analytics forwards client page views and UI events to the message bus
package analytics

import (
	"context"
	"encoding/json"
	"time"

	"github.com/alchemorsel/recipebook/internal/ports/inbound"
	"github.com/alchemorsel/recipebook/internal/ports/outbound"
	"github.com/alchemorsel/recipebook/pkg/errors"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Topics analytics messages are published on
const (
	TopicPageview = "analytics.pageview"
	TopicEvent    = "analytics.event"
)

// Config controls analytics forwarding
type Config struct {
	Enabled    bool
	TrackingID string
}

// Service implements the analytics use cases
type Service struct {
	cfg      Config
	bus      outbound.MessageBus
	metrics  outbound.Metrics
	validate *validator.Validate
	logger   *zap.Logger
	now      func() time.Time
}

// NewService creates a new analytics service
func NewService(cfg Config, bus outbound.MessageBus, metrics outbound.Metrics, logger *zap.Logger) *Service {
	return &Service{
		cfg:      cfg,
		bus:      bus,
		metrics:  metrics,
		validate: validator.New(),
		logger:   logger.Named("analytics-service"),
		now:      time.Now,
	}
}

type pageviewPayload struct {
	TrackingID string    `json:"trackingId"`
	Path       string    `json:"path"`
	Title      string    `json:"title"`
	SentAt     time.Time `json:"sentAt"`
}

type eventPayload struct {
	TrackingID string    `json:"trackingId"`
	Action     string    `json:"action"`
	Category   string    `json:"category"`
	Label      string    `json:"label,omitempty"`
	Value      *int      `json:"value,omitempty"`
	SentAt     time.Time `json:"sentAt"`
}

// TrackPageview publishes a page view
func (s *Service) TrackPageview(ctx context.Context, req inbound.PageviewRequest) error {
	if err := s.validate.Struct(req); err != nil {
		return errors.FromValidation(err)
	}

	return s.publish(ctx, TopicPageview, "pageview", pageviewPayload{
		TrackingID: s.cfg.TrackingID,
		Path:       req.Path,
		Title:      req.Title,
		SentAt:     s.now().UTC(),
	})
}

// TrackEvent publishes a UI event
func (s *Service) TrackEvent(ctx context.Context, req inbound.EventRequest) error {
	if err := s.validate.Struct(req); err != nil {
		return errors.FromValidation(err)
	}

	return s.publish(ctx, TopicEvent, "event", eventPayload{
		TrackingID: s.cfg.TrackingID,
		Action:     req.Action,
		Category:   req.Category,
		Label:      req.Label,
		Value:      req.Value,
		SentAt:     s.now().UTC(),
	})
}

func (s *Service) publish(ctx context.Context, topic, kind string, payload interface{}) error {
	if !s.cfg.Enabled {
		s.logger.Debug("Analytics disabled, dropping message", zap.String("kind", kind))
		s.metrics.RecordAnalyticsMessage(kind, true)
		return nil
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "failed to encode analytics message")
	}

	msg := outbound.Message{
		ID:        uuid.NewString(),
		Type:      topic,
		Payload:   data,
		Metadata:  map[string]string{"content_type": "application/json"},
		Timestamp: s.now().UTC(),
	}

	if err := s.bus.Publish(ctx, topic, msg); err != nil {
		s.metrics.RecordAnalyticsMessage(kind, true)
		s.logger.Error("Failed to publish analytics message", zap.String("topic", topic), zap.Error(err))
		return errors.NewExternalServiceError("message bus", err)
	}

	s.metrics.RecordAnalyticsMessage(kind, false)
	return nil
}

var _ inbound.AnalyticsService = (*Service)(nil)
