// Package inbound defines the interfaces for inbound ports (primary/driving adapters)
// These are the interfaces that the application exposes to the outside world
package inbound

import (
	"context"
	"time"

	"github.com/alchemorsel/recipebook/internal/domain/recipe"
)

// RecipeService defines the use cases of the recipe catalog
// This is the primary port that HTTP handlers and other driving adapters will use
type RecipeService interface {
	// Commands
	Load(ctx context.Context) (*ReloadResult, error)

	// Queries
	ListRecipes(ctx context.Context, query RecipeQuery) (*RecipeList, error)
	GetRecipe(ctx context.Context, recipeID int) (*recipe.Recipe, error)
	GetFilterOptions(ctx context.Context) (*FilterOptions, error)
	Stats() CatalogStats
}

// RecipeQuery combines the filter selection, the search term and paging.
// PageSize 0 returns every matching recipe.
type RecipeQuery struct {
	Filter   recipe.FilterRequest
	Search   string
	Page     int
	PageSize int
}

// RecipeList represents a paginated list of recipes
type RecipeList struct {
	Recipes    []recipe.Recipe `json:"recipes"`
	Total      int             `json:"total"`
	Page       int             `json:"page"`
	PageSize   int             `json:"pageSize"`
	TotalPages int             `json:"totalPages"`
}

// FilterOptions holds the vocabularies offered by the filter panel
type FilterOptions struct {
	Cuisines []recipe.CuisineOption `json:"cuisines"`
	Tags     []recipe.TagOption     `json:"tags"`
}

// ReloadResult summarises a catalog load
type ReloadResult struct {
	RecipeCount int       `json:"recipeCount"`
	Skipped     int       `json:"skipped"`
	LoadedAt    time.Time `json:"loadedAt"`
}

// CatalogStats describes the active snapshot
type CatalogStats struct {
	Loaded      bool      `json:"loaded"`
	RecipeCount int       `json:"recipeCount"`
	LoadedAt    time.Time `json:"loadedAt"`
	Source      string    `json:"source"`
}
