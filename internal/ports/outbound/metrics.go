package outbound

import "time"

// Metrics records business metrics emitted by the application services
type Metrics interface {
	ObserveFilterRequest(resultCount int, duration time.Duration)
	SetCatalogSize(count int)
	RecordCatalogReload(success bool)
	RecordImageGenerated(source string, duration time.Duration)
	RecordAnalyticsMessage(kind string, dropped bool)
}
