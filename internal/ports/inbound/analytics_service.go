package inbound

import "context"

// AnalyticsService accepts page views and UI events from clients
type AnalyticsService interface {
	TrackPageview(ctx context.Context, req PageviewRequest) error
	TrackEvent(ctx context.Context, req EventRequest) error
}

// PageviewRequest records a page view
type PageviewRequest struct {
	Path  string `json:"path" validate:"required"`
	Title string `json:"title"`
}

// EventRequest records a UI interaction
type EventRequest struct {
	Action   string `json:"action" validate:"required"`
	Category string `json:"category"`
	Label    string `json:"label,omitempty"`
	Value    *int   `json:"value,omitempty"`
}
