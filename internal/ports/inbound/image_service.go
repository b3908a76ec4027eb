package inbound

import (
	"context"

	"github.com/alchemorsel/recipebook/internal/domain/image"
)

// ImageService defines the image generation use cases
type ImageService interface {
	GenerateForRecipe(ctx context.Context, recipeID int, usePlaceholder bool) (*image.GeneratedImage, error)
	GenerateAll(ctx context.Context, usePlaceholders bool) (*BatchResult, error)
	GetImage(ctx context.Context, recipeID int) (*image.GeneratedImage, error)
	ListImages(ctx context.Context) ([]*image.GeneratedImage, error)
}

// BatchResult reports the outcome of a batch generation run
type BatchResult struct {
	Generated []*image.GeneratedImage `json:"generated"`
	Skipped   int                     `json:"skipped"`
}
