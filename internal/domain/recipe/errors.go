package recipe

import "errors"

// Domain errors for recipe operations

var (
	ErrRecipeNotFound   = errors.New("recipe not found")
	ErrInvalidRecipe    = errors.New("invalid recipe record")
	ErrDuplicateRecipe  = errors.New("duplicate recipe id")
	ErrCatalogNotLoaded = errors.New("recipe catalog not loaded")
	ErrMalformedDataset = errors.New("malformed recipe dataset")
	ErrReloadInProgress = errors.New("catalog reload already in progress")
)
