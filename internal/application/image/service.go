// Package image provides the image generation use cases
package image

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/alchemorsel/recipebook/internal/domain/image"
	"github.com/alchemorsel/recipebook/internal/domain/recipe"
	"github.com/alchemorsel/recipebook/internal/domain/shared"
	"github.com/alchemorsel/recipebook/internal/ports/inbound"
	"github.com/alchemorsel/recipebook/internal/ports/outbound"
	"github.com/alchemorsel/recipebook/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Config controls image generation pacing and caching
type Config struct {
	// Delay is the fixed pause between consecutive image API calls.
	Delay    time.Duration
	CacheTTL time.Duration
}

// Service implements the image generation use cases
type Service struct {
	catalog   inbound.RecipeService
	repo      outbound.ImageRepository
	cache     outbound.CacheRepository
	generator outbound.ImageGenerator
	events    shared.EventPublisher
	metrics   outbound.Metrics
	logger    *zap.Logger

	limiter  *rate.Limiter
	cacheTTL time.Duration
	running  atomic.Bool
	now      func() time.Time
}

// NewService creates a new image service
func NewService(
	cfg Config,
	catalog inbound.RecipeService,
	repo outbound.ImageRepository,
	cache outbound.CacheRepository,
	generator outbound.ImageGenerator,
	events shared.EventPublisher,
	metrics outbound.Metrics,
	logger *zap.Logger,
) *Service {
	limit := rate.Inf
	if cfg.Delay > 0 {
		limit = rate.Every(cfg.Delay)
	}

	return &Service{
		catalog:   catalog,
		repo:      repo,
		cache:     cache,
		generator: generator,
		events:    events,
		metrics:   metrics,
		logger:    logger.Named("image-service"),
		limiter:   rate.NewLimiter(limit, 1),
		cacheTTL:  cfg.CacheTTL,
		now:       time.Now,
	}
}

// GenerateForRecipe returns the stored image of a recipe, generating and
// storing one first when none exists.
func (s *Service) GenerateForRecipe(ctx context.Context, recipeID int, usePlaceholder bool) (*image.GeneratedImage, error) {
	r, err := s.catalog.GetRecipe(ctx, recipeID)
	if err != nil {
		return nil, err
	}

	existing, err := s.GetImage(ctx, recipeID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, errors.CodeImageNotFound) {
		return nil, err
	}

	return s.generateAndStore(ctx, *r, usePlaceholder)
}

// GenerateAll walks the catalog in order and generates an image for every
// recipe that has none. API calls are spaced by the configured delay. Only
// one batch runs at a time.
func (s *Service) GenerateAll(ctx context.Context, usePlaceholders bool) (*inbound.BatchResult, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, errors.NewConflictError("image generation batch already running")
	}
	defer s.running.Store(false)

	list, err := s.catalog.ListRecipes(ctx, inbound.RecipeQuery{Page: 1})
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.ExistingRecipeIDs(ctx)
	if err != nil {
		return nil, errors.NewDatabaseError("list generated images", err)
	}

	s.logger.Info("Starting image generation batch",
		zap.Int("recipes", len(list.Recipes)),
		zap.Int("existing", len(existing)),
		zap.Bool("placeholders", usePlaceholders),
	)

	result := &inbound.BatchResult{Generated: []*image.GeneratedImage{}}
	for _, r := range list.Recipes {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		if _, ok := existing[r.ID]; ok {
			result.Skipped++
			continue
		}

		img, err := s.generateAndStore(ctx, r, usePlaceholders)
		if err != nil {
			return result, err
		}
		result.Generated = append(result.Generated, img)
	}

	s.logger.Info("Image generation batch finished",
		zap.Int("generated", len(result.Generated)),
		zap.Int("skipped", result.Skipped),
	)

	return result, nil
}

// GetImage returns the stored image of a recipe
func (s *Service) GetImage(ctx context.Context, recipeID int) (*image.GeneratedImage, error) {
	if img, ok := s.getCached(ctx, recipeID); ok {
		return img, nil
	}

	img, err := s.repo.FindByRecipeID(ctx, recipeID)
	if err != nil {
		if stderrors.Is(err, image.ErrImageNotFound) {
			return nil, errors.NewImageNotFoundError(recipeID)
		}
		return nil, errors.NewDatabaseError("find generated image", err)
	}

	s.setCached(ctx, img)
	return img, nil
}

// ListImages returns every stored image ordered by recipe id
func (s *Service) ListImages(ctx context.Context) ([]*image.GeneratedImage, error) {
	images, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, errors.NewDatabaseError("list generated images", err)
	}
	return images, nil
}

func (s *Service) generateAndStore(ctx context.Context, r recipe.Recipe, usePlaceholder bool) (*image.GeneratedImage, error) {
	start := time.Now()

	img, err := s.generate(ctx, r, usePlaceholder)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, img); err != nil {
		return nil, errors.NewDatabaseError("save generated image", err)
	}
	s.setCached(ctx, img)

	s.metrics.RecordImageGenerated(string(img.Source), time.Since(start))
	s.logger.Info("Image generated",
		zap.Int("recipe_id", img.RecipeID),
		zap.String("source", string(img.Source)),
		zap.String("url", img.ImageURL),
	)

	event := image.ImageGeneratedEvent{RecipeID: img.RecipeID, Source: img.Source, GeneratedAt: img.CreatedAt}
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Error("Failed to publish event",
			zap.String("event", event.EventName()),
			zap.Error(err),
		)
	}

	return img, nil
}

// generate calls the image API once and falls back to a placeholder on any
// failure other than cancellation.
func (s *Service) generate(ctx context.Context, r recipe.Recipe, usePlaceholder bool) (*image.GeneratedImage, error) {
	if usePlaceholder || !s.generator.Configured() {
		return image.Placeholder(r, s.now()), nil
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	prompt := image.BuildPrompt(r)
	url, err := s.generator.GenerateImage(ctx, prompt)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		s.logger.Warn("Image API call failed, using placeholder",
			zap.Int("recipe_id", r.ID),
			zap.Error(err),
		)
		return image.Placeholder(r, s.now()), nil
	}

	return image.New(r, url, prompt, s.now()), nil
}

func cacheKey(recipeID int) string {
	return fmt.Sprintf("image:%d", recipeID)
}

func (s *Service) getCached(ctx context.Context, recipeID int) (*image.GeneratedImage, bool) {
	data, err := s.cache.Get(ctx, cacheKey(recipeID))
	if err != nil {
		if !stderrors.Is(err, outbound.ErrCacheMiss) {
			s.logger.Warn("Image cache read failed", zap.Int("recipe_id", recipeID), zap.Error(err))
		}
		return nil, false
	}

	var img image.GeneratedImage
	if err := json.Unmarshal(data, &img); err != nil {
		s.logger.Warn("Discarding corrupt cached image", zap.Int("recipe_id", recipeID), zap.Error(err))
		return nil, false
	}
	return &img, true
}

func (s *Service) setCached(ctx context.Context, img *image.GeneratedImage) {
	data, err := json.Marshal(img)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, cacheKey(img.RecipeID), data, s.cacheTTL); err != nil {
		s.logger.Warn("Image cache write failed", zap.Int("recipe_id", img.RecipeID), zap.Error(err))
	}
}

var _ inbound.ImageService = (*Service)(nil)
