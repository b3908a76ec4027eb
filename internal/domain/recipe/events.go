package recipe

import "time"

// Domain Events - Events that occur within the recipe catalog

// CatalogReloadedEvent is raised after a new catalog snapshot is installed
type CatalogReloadedEvent struct {
	Source      string
	RecipeCount int
	Skipped     int
	LoadedAt    time.Time
}

func (e CatalogReloadedEvent) EventName() string {
	return "catalog.reloaded"
}

func (e CatalogReloadedEvent) OccurredAt() time.Time {
	return e.LoadedAt
}

// CatalogReloadFailedEvent is raised when a reload is rejected and the
// previous snapshot stays active
type CatalogReloadFailedEvent struct {
	Source   string
	Reason   string
	FailedAt time.Time
}

func (e CatalogReloadFailedEvent) EventName() string {
	return "catalog.reload_failed"
}

func (e CatalogReloadFailedEvent) OccurredAt() time.Time {
	return e.FailedAt
}
