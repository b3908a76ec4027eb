// Package testutils provides mock implementations for testing
package testutils

import (
	"context"
	"sync"

	"github.com/alchemorsel/recipebook/internal/domain/image"
	"github.com/alchemorsel/recipebook/internal/domain/recipe"
	"github.com/alchemorsel/recipebook/internal/domain/shared"
	"github.com/alchemorsel/recipebook/internal/ports/inbound"
	"github.com/alchemorsel/recipebook/internal/infrastructure/monitoring"
	"github.com/alchemorsel/recipebook/internal/ports/outbound"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/mock"
)

// NewTestMetrics creates metrics on a private registry
func NewTestMetrics() *monitoring.Metrics {
	return monitoring.NewMetrics(prometheus.NewRegistry())
}

// MockRecipeSource provides a mock implementation of RecipeSource
type MockRecipeSource struct {
	mock.Mock
}

// Load loads the dataset
func (m *MockRecipeSource) Load(ctx context.Context) (*outbound.LoadResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*outbound.LoadResult), args.Error(1)
}

// Location returns the dataset location
func (m *MockRecipeSource) Location() string {
	return "mock://recipes"
}

// MockImageRepository provides a mock implementation of ImageRepository
type MockImageRepository struct {
	mock.Mock
}

// Save stores an image
func (m *MockImageRepository) Save(ctx context.Context, img *image.GeneratedImage) error {
	args := m.Called(ctx, img)
	return args.Error(0)
}

// FindByRecipeID finds the image of a recipe
func (m *MockImageRepository) FindByRecipeID(ctx context.Context, recipeID int) (*image.GeneratedImage, error) {
	args := m.Called(ctx, recipeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*image.GeneratedImage), args.Error(1)
}

// FindAll lists every image
func (m *MockImageRepository) FindAll(ctx context.Context) ([]*image.GeneratedImage, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*image.GeneratedImage), args.Error(1)
}

// ExistingRecipeIDs lists the recipes that already have an image
func (m *MockImageRepository) ExistingRecipeIDs(ctx context.Context) (map[int]struct{}, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int]struct{}), args.Error(1)
}

// Ping checks the store
func (m *MockImageRepository) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockImageGenerator provides a mock implementation of ImageGenerator
type MockImageGenerator struct {
	mock.Mock
}

// GenerateImage returns an image URL for prompt
func (m *MockImageGenerator) GenerateImage(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

// Configured reports whether an API key is present
func (m *MockImageGenerator) Configured() bool {
	args := m.Called()
	return args.Bool(0)
}

// RecordingBus is an in-memory MessageBus that keeps every published message
type RecordingBus struct {
	mu       sync.Mutex
	messages map[string][]outbound.Message
	err      error
}

// NewRecordingBus creates a new recording bus
func NewRecordingBus() *RecordingBus {
	return &RecordingBus{messages: make(map[string][]outbound.Message)}
}

// FailWith makes subsequent publishes return err
func (b *RecordingBus) FailWith(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.err = err
}

// Publish records the message
func (b *RecordingBus) Publish(ctx context.Context, topic string, message outbound.Message) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return b.err
	}
	b.messages[topic] = append(b.messages[topic], message)
	return nil
}

// Subscribe is a no-op
func (b *RecordingBus) Subscribe(ctx context.Context, topic string, handler outbound.MessageHandler) error {
	return nil
}

// Close is a no-op
func (b *RecordingBus) Close() error {
	return nil
}

// Messages returns the messages published on topic
func (b *RecordingBus) Messages(topic string) []outbound.Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]outbound.Message(nil), b.messages[topic]...)
}

// MockEventPublisher provides a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

// Publish publishes a domain event
func (m *MockEventPublisher) Publish(ctx context.Context, event shared.DomainEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// MockRecipeService provides a mock implementation of inbound.RecipeService
type MockRecipeService struct {
	mock.Mock
}

// Load reloads the catalog
func (m *MockRecipeService) Load(ctx context.Context) (*inbound.ReloadResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inbound.ReloadResult), args.Error(1)
}

// ListRecipes lists recipes
func (m *MockRecipeService) ListRecipes(ctx context.Context, query inbound.RecipeQuery) (*inbound.RecipeList, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inbound.RecipeList), args.Error(1)
}

// GetRecipe returns a recipe
func (m *MockRecipeService) GetRecipe(ctx context.Context, recipeID int) (*recipe.Recipe, error) {
	args := m.Called(ctx, recipeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*recipe.Recipe), args.Error(1)
}

// GetFilterOptions returns the vocabularies
func (m *MockRecipeService) GetFilterOptions(ctx context.Context) (*inbound.FilterOptions, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inbound.FilterOptions), args.Error(1)
}

// Stats returns catalog stats
func (m *MockRecipeService) Stats() inbound.CatalogStats {
	args := m.Called()
	return args.Get(0).(inbound.CatalogStats)
}

// MockImageService provides a mock implementation of inbound.ImageService
type MockImageService struct {
	mock.Mock
}

// GenerateForRecipe generates an image for one recipe
func (m *MockImageService) GenerateForRecipe(ctx context.Context, recipeID int, usePlaceholder bool) (*image.GeneratedImage, error) {
	args := m.Called(ctx, recipeID, usePlaceholder)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*image.GeneratedImage), args.Error(1)
}

// GenerateAll generates images for the catalog
func (m *MockImageService) GenerateAll(ctx context.Context, usePlaceholders bool) (*inbound.BatchResult, error) {
	args := m.Called(ctx, usePlaceholders)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inbound.BatchResult), args.Error(1)
}

// GetImage returns a stored image
func (m *MockImageService) GetImage(ctx context.Context, recipeID int) (*image.GeneratedImage, error) {
	args := m.Called(ctx, recipeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*image.GeneratedImage), args.Error(1)
}

// ListImages lists stored images
func (m *MockImageService) ListImages(ctx context.Context) ([]*image.GeneratedImage, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*image.GeneratedImage), args.Error(1)
}

// MockAnalyticsService provides a mock implementation of inbound.AnalyticsService
type MockAnalyticsService struct {
	mock.Mock
}

// TrackPageview records a page view
func (m *MockAnalyticsService) TrackPageview(ctx context.Context, req inbound.PageviewRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

// TrackEvent records a UI event
func (m *MockAnalyticsService) TrackEvent(ctx context.Context, req inbound.EventRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}
