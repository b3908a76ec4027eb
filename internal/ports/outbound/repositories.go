// Package outbound defines the interfaces for outbound ports (secondary/driven adapters)
// These are the interfaces that the application uses to interact with external systems
package outbound

import (
	"context"
	"errors"
	"time"

	"github.com/alchemorsel/recipebook/internal/domain/image"
	"github.com/alchemorsel/recipebook/internal/domain/recipe"
)

// ErrCacheMiss is returned by CacheRepository.Get for absent or expired keys
var ErrCacheMiss = errors.New("cache miss")

// RecipeSource reads the recipe dataset
type RecipeSource interface {
	Load(ctx context.Context) (*LoadResult, error)
	Location() string
}

// LoadResult is the decoded dataset together with the number of rejected records
type LoadResult struct {
	Recipes []recipe.Recipe
	Skipped int
}

// ImageRepository persists generated images, one per recipe
type ImageRepository interface {
	Save(ctx context.Context, img *image.GeneratedImage) error
	FindByRecipeID(ctx context.Context, recipeID int) (*image.GeneratedImage, error)
	FindAll(ctx context.Context) ([]*image.GeneratedImage, error)
	ExistingRecipeIDs(ctx context.Context) (map[int]struct{}, error)
	Ping(ctx context.Context) error
}

// CacheRepository defines the interface for caching
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// ImageGenerator turns a prompt into a hosted image URL
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) (string, error)
	Configured() bool
}

// MessageBus defines the interface for publishing messages
type MessageBus interface {
	Publish(ctx context.Context, topic string, message Message) error
	Subscribe(ctx context.Context, topic string, handler MessageHandler) error
	Close() error
}

// Message represents a message to be published
type Message struct {
	ID        string
	Type      string
	Payload   []byte
	Metadata  map[string]string
	Timestamp time.Time
}

// MessageHandler handles incoming messages
type MessageHandler func(ctx context.Context, message Message) error
