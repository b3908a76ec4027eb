package gorm

import (
	"context"
	"errors"
	"fmt"

	"github.com/alchemorsel/recipebook/internal/domain/image"
	"github.com/alchemorsel/recipebook/internal/ports/outbound"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ImageRepository implements outbound.ImageRepository using GORM
type ImageRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewImageRepository creates a new GORM image repository
func NewImageRepository(db *gorm.DB, logger *zap.Logger) *ImageRepository {
	return &ImageRepository{
		db:     db,
		logger: logger.Named("image-repository"),
	}
}

// Save inserts the image or replaces the stored image of the same recipe
func (r *ImageRepository) Save(ctx context.Context, img *image.GeneratedImage) error {
	model := toImageModel(img)

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "recipe_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"recipe_name", "image_url", "prompt", "source", "created_at", "updated_at"}),
		}).
		Create(model).Error
	if err != nil {
		return fmt.Errorf("failed to save image for recipe %d: %w", img.RecipeID, err)
	}

	r.logger.Debug("Image saved", zap.Int("recipe_id", img.RecipeID))
	return nil
}

// FindByRecipeID finds the image of a recipe
func (r *ImageRepository) FindByRecipeID(ctx context.Context, recipeID int) (*image.GeneratedImage, error) {
	var model GeneratedImageModel

	err := r.db.WithContext(ctx).First(&model, "recipe_id = ?", recipeID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, image.ErrImageNotFound
		}
		return nil, fmt.Errorf("failed to find image for recipe %d: %w", recipeID, err)
	}

	return toImageDomain(&model), nil
}

// FindAll returns every image ordered by recipe id
func (r *ImageRepository) FindAll(ctx context.Context) ([]*image.GeneratedImage, error) {
	var models []GeneratedImageModel

	if err := r.db.WithContext(ctx).Order("recipe_id").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}

	images := make([]*image.GeneratedImage, 0, len(models))
	for i := range models {
		images = append(images, toImageDomain(&models[i]))
	}
	return images, nil
}

// ExistingRecipeIDs returns the ids of recipes that already have an image
func (r *ImageRepository) ExistingRecipeIDs(ctx context.Context) (map[int]struct{}, error) {
	var ids []int

	if err := r.db.WithContext(ctx).Model(&GeneratedImageModel{}).Pluck("recipe_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to list image recipe ids: %w", err)
	}

	existing := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		existing[id] = struct{}{}
	}
	return existing, nil
}

// Ping checks the database connection
func (r *ImageRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

var _ outbound.ImageRepository = (*ImageRepository)(nil)
