package gorm

import (
	"github.com/alchemorsel/recipebook/internal/domain/image"
)

// toImageModel converts a domain image to its GORM model
func toImageModel(img *image.GeneratedImage) *GeneratedImageModel {
	return &GeneratedImageModel{
		RecipeID:   img.RecipeID,
		RecipeName: img.RecipeName,
		ImageURL:   img.ImageURL,
		Prompt:     img.Prompt,
		Source:     string(img.Source),
		CreatedAt:  img.CreatedAt,
	}
}

// toImageDomain converts a GORM model to the domain image
func toImageDomain(m *GeneratedImageModel) *image.GeneratedImage {
	return &image.GeneratedImage{
		RecipeID:   m.RecipeID,
		RecipeName: m.RecipeName,
		ImageURL:   m.ImageURL,
		Prompt:     m.Prompt,
		Source:     image.Source(m.Source),
		CreatedAt:  m.CreatedAt.UTC(),
	}
}
