// Package jsonfile reads the recipe dataset from a JSON file
package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/alchemorsel/recipebook/internal/domain/recipe"
	"github.com/alchemorsel/recipebook/internal/ports/outbound"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Options controls how records are accepted
type Options struct {
	// Strict fails the whole load on the first invalid or duplicate record.
	Strict bool
}

// Source implements outbound.RecipeSource on top of a JSON file
type Source struct {
	path     string
	opts     Options
	validate *validator.Validate
	logger   *zap.Logger
}

// NewSource creates a new JSON file source
func NewSource(path string, opts Options, logger *zap.Logger) *Source {
	return &Source{
		path:     path,
		opts:     opts,
		validate: validator.New(),
		logger:   logger.Named("recipe-source"),
	}
}

// Location returns the dataset path
func (s *Source) Location() string {
	return s.path
}

// Load reads and validates the dataset
func (s *Source) Load(ctx context.Context) (*outbound.LoadResult, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read recipe dataset %s: %w", s.path, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return s.Decode(data)
}

// Decode parses a dataset. A top-level array yields its records, a single
// object yields one record and any other JSON value yields no records.
func (s *Source) Decode(data []byte) (*outbound.LoadResult, error) {
	records, err := splitRecords(data)
	if err != nil {
		return nil, err
	}

	result := &outbound.LoadResult{Recipes: make([]recipe.Recipe, 0, len(records))}
	seen := make(map[int]struct{}, len(records))

	for i, raw := range records {
		var r recipe.Recipe
		if err := json.Unmarshal(raw, &r); err != nil {
			if err := s.reject(result, i, fmt.Errorf("%w: %v", recipe.ErrInvalidRecipe, err)); err != nil {
				return nil, err
			}
			continue
		}

		if err := s.validate.Struct(r); err != nil {
			if err := s.reject(result, i, fmt.Errorf("%w: recipe %d: %v", recipe.ErrInvalidRecipe, r.ID, err)); err != nil {
				return nil, err
			}
			continue
		}

		if _, dup := seen[r.ID]; dup {
			if err := s.reject(result, i, fmt.Errorf("%w: %d", recipe.ErrDuplicateRecipe, r.ID)); err != nil {
				return nil, err
			}
			continue
		}
		seen[r.ID] = struct{}{}

		normalize(&r)
		result.Recipes = append(result.Recipes, r)
	}

	return result, nil
}

func (s *Source) reject(result *outbound.LoadResult, index int, err error) error {
	if s.opts.Strict {
		return fmt.Errorf("record %d: %w", index, err)
	}

	result.Skipped++
	s.logger.Warn("Skipping recipe record",
		zap.String("source", s.path),
		zap.Int("index", index),
		zap.Error(err),
	)
	return nil
}

func splitRecords(data []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}

	switch trimmed[0] {
	case '[':
		var records []json.RawMessage
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, fmt.Errorf("%w: %v", recipe.ErrMalformedDataset, err)
		}
		return records, nil
	case '{':
		if !json.Valid(trimmed) {
			return nil, fmt.Errorf("%w: invalid JSON object", recipe.ErrMalformedDataset)
		}
		return []json.RawMessage{trimmed}, nil
	default:
		if !json.Valid(trimmed) {
			return nil, fmt.Errorf("%w: invalid JSON", recipe.ErrMalformedDataset)
		}
		return nil, nil
	}
}

// normalize replaces absent lists with empty ones
func normalize(r *recipe.Recipe) {
	if r.Images == nil {
		r.Images = []string{}
	}
	if r.Cuisines == nil {
		r.Cuisines = []recipe.Cuisine{}
	}
	if r.Ingredients == nil {
		r.Ingredients = []recipe.RecipeIngredient{}
	}
	if r.Steps == nil {
		r.Steps = []recipe.RecipeStep{}
	}
	if r.Tags == nil {
		r.Tags = []recipe.Tag{}
	}
}

var _ outbound.RecipeSource = (*Source)(nil)
