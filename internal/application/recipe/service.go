// Package recipe provides the application layer for the recipe catalog
// This implements the use cases defined in the inbound ports
package recipe

import (
	"context"
	stderrors "errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alchemorsel/recipebook/internal/domain/recipe"
	"github.com/alchemorsel/recipebook/internal/domain/shared"
	"github.com/alchemorsel/recipebook/internal/ports/inbound"
	"github.com/alchemorsel/recipebook/internal/ports/outbound"
	"github.com/alchemorsel/recipebook/pkg/errors"
	"go.uber.org/zap"
)

// snapshot is an immutable view of one loaded dataset. Vocabularies are
// derived once when the snapshot is built.
type snapshot struct {
	recipes  []recipe.Recipe
	byID     map[int]int
	cuisines []recipe.CuisineOption
	tags     []recipe.TagOption
	loadedAt time.Time
}

func newSnapshot(recipes []recipe.Recipe, loadedAt time.Time) *snapshot {
	byID := make(map[int]int, len(recipes))
	for i, r := range recipes {
		if _, dup := byID[r.ID]; !dup {
			byID[r.ID] = i
		}
	}

	return &snapshot{
		recipes:  recipes,
		byID:     byID,
		cuisines: recipe.ExtractCuisines(recipes),
		tags:     recipe.ExtractTags(recipes),
		loadedAt: loadedAt,
	}
}

// CatalogService implements the recipe catalog use cases. Readers work on
// the current snapshot without locking; loads are serialized.
type CatalogService struct {
	source  outbound.RecipeSource
	events  shared.EventPublisher
	metrics outbound.Metrics
	logger  *zap.Logger

	current  atomic.Pointer[snapshot]
	reloadMu sync.Mutex
	now      func() time.Time
}

// NewCatalogService creates a new catalog service
func NewCatalogService(
	source outbound.RecipeSource,
	events shared.EventPublisher,
	metrics outbound.Metrics,
	logger *zap.Logger,
) *CatalogService {
	return &CatalogService{
		source:  source,
		events:  events,
		metrics: metrics,
		logger:  logger.Named("catalog-service"),
		now:     time.Now,
	}
}

// Load reads the dataset and installs it as the current snapshot. On failure
// the previous snapshot stays active.
func (s *CatalogService) Load(ctx context.Context) (*inbound.ReloadResult, error) {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	s.logger.Info("Loading recipe catalog", zap.String("source", s.source.Location()))

	result, err := s.source.Load(ctx)
	if err != nil {
		s.metrics.RecordCatalogReload(false)
		s.logger.Error("Failed to load recipe catalog",
			zap.String("source", s.source.Location()),
			zap.Error(err),
		)
		s.publishEvent(ctx, recipe.CatalogReloadFailedEvent{
			Source:   s.source.Location(),
			Reason:   err.Error(),
			FailedAt: s.now(),
		})
		return nil, toLoadError(err)
	}

	snap := newSnapshot(result.Recipes, s.now())
	s.current.Store(snap)

	s.metrics.RecordCatalogReload(true)
	s.metrics.SetCatalogSize(len(snap.recipes))

	s.logger.Info("Recipe catalog loaded",
		zap.Int("recipes", len(snap.recipes)),
		zap.Int("skipped", result.Skipped),
		zap.Int("cuisines", len(snap.cuisines)),
		zap.Int("tags", len(snap.tags)),
	)

	s.publishEvent(ctx, recipe.CatalogReloadedEvent{
		Source:      s.source.Location(),
		RecipeCount: len(snap.recipes),
		Skipped:     result.Skipped,
		LoadedAt:    snap.loadedAt,
	})

	return &inbound.ReloadResult{
		RecipeCount: len(snap.recipes),
		Skipped:     result.Skipped,
		LoadedAt:    snap.loadedAt,
	}, nil
}

// ListRecipes filters, searches and paginates the current snapshot
func (s *CatalogService) ListRecipes(ctx context.Context, query inbound.RecipeQuery) (*inbound.RecipeList, error) {
	snap := s.current.Load()
	if snap == nil {
		return nil, errors.NewCatalogUnavailableError()
	}
	if query.PageSize < 0 {
		return nil, errors.NewBadRequestError("page_size must not be negative")
	}
	if query.Page < 1 {
		query.Page = 1
	}

	start := time.Now()
	matched := recipe.ApplyFilters(snap.recipes, query.Filter, query.Search)
	s.metrics.ObserveFilterRequest(len(matched), time.Since(start))

	s.logger.Debug("Filtered recipes",
		zap.Ints("cuisines", query.Filter.Cuisines),
		zap.Strings("tags", query.Filter.Tags),
		zap.String("search", query.Search),
		zap.Int("matched", len(matched)),
	)

	return paginate(matched, query.Page, query.PageSize), nil
}

func paginate(matched []recipe.Recipe, page, pageSize int) *inbound.RecipeList {
	total := len(matched)
	list := &inbound.RecipeList{
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}

	if pageSize == 0 {
		list.Recipes = matched
		if total > 0 {
			list.TotalPages = 1
		}
		return list
	}

	// Division first so huge page or pageSize values cannot overflow.
	list.TotalPages = total / pageSize
	if total%pageSize != 0 {
		list.TotalPages++
	}

	if page > list.TotalPages {
		list.Recipes = []recipe.Recipe{}
		return list
	}

	offset := (page - 1) * pageSize
	end := total
	if pageSize < total-offset {
		end = offset + pageSize
	}
	list.Recipes = matched[offset:end]
	return list
}

// GetRecipe returns a copy of the recipe with the given id
func (s *CatalogService) GetRecipe(ctx context.Context, recipeID int) (*recipe.Recipe, error) {
	snap := s.current.Load()
	if snap == nil {
		return nil, errors.NewCatalogUnavailableError()
	}

	i, ok := snap.byID[recipeID]
	if !ok {
		return nil, errors.NewRecipeNotFoundError(recipeID)
	}

	r := snap.recipes[i]
	return &r, nil
}

// GetFilterOptions returns the vocabularies of the current snapshot
func (s *CatalogService) GetFilterOptions(ctx context.Context) (*inbound.FilterOptions, error) {
	snap := s.current.Load()
	if snap == nil {
		return nil, errors.NewCatalogUnavailableError()
	}

	return &inbound.FilterOptions{
		Cuisines: snap.cuisines,
		Tags:     snap.tags,
	}, nil
}

// Stats describes the current snapshot
func (s *CatalogService) Stats() inbound.CatalogStats {
	stats := inbound.CatalogStats{Source: s.source.Location()}

	snap := s.current.Load()
	if snap == nil {
		return stats
	}

	stats.Loaded = true
	stats.RecipeCount = len(snap.recipes)
	stats.LoadedAt = snap.loadedAt
	return stats
}

func (s *CatalogService) publishEvent(ctx context.Context, event shared.DomainEvent) {
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Error("Failed to publish event",
			zap.String("event", event.EventName()),
			zap.Error(err),
		)
	}
}

func toLoadError(err error) error {
	switch {
	case stderrors.Is(err, recipe.ErrInvalidRecipe), stderrors.Is(err, recipe.ErrMalformedDataset):
		return errors.NewValidationError(err.Error()).WithCause(err)
	case stderrors.Is(err, recipe.ErrDuplicateRecipe):
		return errors.NewConflictError(err.Error()).WithCause(err)
	default:
		return errors.Wrap(err, "failed to load recipe catalog")
	}
}

var _ inbound.RecipeService = (*CatalogService)(nil)
