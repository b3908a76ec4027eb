// Package handlers provides HTTP handlers for the REST API
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/alchemorsel/recipebook/internal/infrastructure/http/middleware"
	"github.com/alchemorsel/recipebook/internal/ports/inbound"
	"github.com/alchemorsel/recipebook/pkg/errors"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

const maxBodyBytes = 64 << 10

// APIHandlers handles REST API requests
type APIHandlers struct {
	recipeService    inbound.RecipeService
	imageService     inbound.ImageService
	analyticsService inbound.AnalyticsService
	logger           *zap.Logger

	requestTimeout    time.Duration
	generationTimeout time.Duration
}

// NewAPIHandlers creates a new API handlers instance
func NewAPIHandlers(
	recipeService inbound.RecipeService,
	imageService inbound.ImageService,
	analyticsService inbound.AnalyticsService,
	logger *zap.Logger,
) *APIHandlers {
	return &APIHandlers{
		recipeService:    recipeService,
		imageService:     imageService,
		analyticsService: analyticsService,
		logger:           logger.Named("api"),
	}
}

// WithTimeouts bounds request handling. Image generation routes get their own
// budget since they wait on the image API. Zero disables a timeout.
func (h *APIHandlers) WithTimeouts(request, generation time.Duration) *APIHandlers {
	h.requestTimeout = request
	h.generationTimeout = generation
	return h
}

func timeout(d time.Duration) func(http.Handler) http.Handler {
	if d <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return chimiddleware.Timeout(d)
}

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// Routes mounts the API endpoints on r
func (h *APIHandlers) Routes(r chi.Router) {
	std := timeout(h.requestTimeout)
	gen := timeout(h.generationTimeout)

	r.Route("/recipes", func(r chi.Router) {
		r.With(std).Get("/", h.ListRecipes)
		r.With(std).Get("/{id}", h.GetRecipe)
		r.With(std).Get("/{id}/image", h.GetRecipeImage)
		r.With(gen).Post("/{id}/image", h.GenerateRecipeImage)
	})

	r.With(std).Get("/filters", h.GetFilters)

	r.Route("/images", func(r chi.Router) {
		r.With(std).Get("/", h.ListImages)
		r.With(gen).Post("/generate", h.GenerateImages)
	})

	r.Route("/analytics", func(r chi.Router) {
		r.Use(std)
		r.Post("/pageview", h.TrackPageview)
		r.Post("/events", h.TrackEvent)
	})

	r.Route("/catalog", func(r chi.Router) {
		r.Use(std)
		r.Get("/", h.CatalogStats)
		r.Post("/reload", h.ReloadCatalog)
	})
}

// ListRecipes handles GET /api/v1/recipes
func (h *APIHandlers) ListRecipes(w http.ResponseWriter, r *http.Request) {
	query, appErr := parseRecipeQuery(r.URL.Query())
	if appErr != nil {
		h.writeError(w, r, appErr)
		return
	}

	list, err := h.recipeService.ListRecipes(r.Context(), query)
	if err != nil {
		h.writeError(w, r, errors.Wrap(err, "failed to list recipes"))
		return
	}

	h.writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: list})
}

// GetRecipe handles GET /api/v1/recipes/{id}
func (h *APIHandlers) GetRecipe(w http.ResponseWriter, r *http.Request) {
	id, appErr := recipeIDParam(r)
	if appErr != nil {
		h.writeError(w, r, appErr)
		return
	}

	rec, err := h.recipeService.GetRecipe(r.Context(), id)
	if err != nil {
		h.writeError(w, r, errors.Wrap(err, "failed to get recipe"))
		return
	}

	h.writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: rec})
}

// GetFilters handles GET /api/v1/filters
func (h *APIHandlers) GetFilters(w http.ResponseWriter, r *http.Request) {
	options, err := h.recipeService.GetFilterOptions(r.Context())
	if err != nil {
		h.writeError(w, r, errors.Wrap(err, "failed to get filter options"))
		return
	}

	h.writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: options})
}

// GetRecipeImage handles GET /api/v1/recipes/{id}/image
func (h *APIHandlers) GetRecipeImage(w http.ResponseWriter, r *http.Request) {
	id, appErr := recipeIDParam(r)
	if appErr != nil {
		h.writeError(w, r, appErr)
		return
	}

	img, err := h.imageService.GetImage(r.Context(), id)
	if err != nil {
		h.writeError(w, r, errors.Wrap(err, "failed to get image"))
		return
	}

	h.writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: img})
}

// GenerateRecipeImage handles POST /api/v1/recipes/{id}/image
func (h *APIHandlers) GenerateRecipeImage(w http.ResponseWriter, r *http.Request) {
	id, appErr := recipeIDParam(r)
	if appErr != nil {
		h.writeError(w, r, appErr)
		return
	}

	placeholder, appErr := boolParam(r.URL.Query(), "placeholder")
	if appErr != nil {
		h.writeError(w, r, appErr)
		return
	}

	img, err := h.imageService.GenerateForRecipe(r.Context(), id, placeholder)
	if err != nil {
		h.writeError(w, r, errors.Wrap(err, "failed to generate image"))
		return
	}

	h.writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: img})
}

// ListImages handles GET /api/v1/images
func (h *APIHandlers) ListImages(w http.ResponseWriter, r *http.Request) {
	images, err := h.imageService.ListImages(r.Context())
	if err != nil {
		h.writeError(w, r, errors.Wrap(err, "failed to list images"))
		return
	}

	h.writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: images})
}

// GenerateImages handles POST /api/v1/images/generate
func (h *APIHandlers) GenerateImages(w http.ResponseWriter, r *http.Request) {
	placeholder, appErr := boolParam(r.URL.Query(), "placeholder")
	if appErr != nil {
		h.writeError(w, r, appErr)
		return
	}

	result, err := h.imageService.GenerateAll(r.Context(), placeholder)
	if err != nil {
		h.writeError(w, r, errors.Wrap(err, "failed to generate images"))
		return
	}

	h.writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: result})
}

// TrackPageview handles POST /api/v1/analytics/pageview
func (h *APIHandlers) TrackPageview(w http.ResponseWriter, r *http.Request) {
	var req inbound.PageviewRequest
	if appErr := decodeJSON(w, r, &req); appErr != nil {
		h.writeError(w, r, appErr)
		return
	}

	if err := h.analyticsService.TrackPageview(r.Context(), req); err != nil {
		h.writeError(w, r, errors.Wrap(err, "failed to track pageview"))
		return
	}

	h.writeJSON(w, http.StatusAccepted, APIResponse{Success: true, Message: "Pageview accepted"})
}

// TrackEvent handles POST /api/v1/analytics/events
func (h *APIHandlers) TrackEvent(w http.ResponseWriter, r *http.Request) {
	var req inbound.EventRequest
	if appErr := decodeJSON(w, r, &req); appErr != nil {
		h.writeError(w, r, appErr)
		return
	}

	if err := h.analyticsService.TrackEvent(r.Context(), req); err != nil {
		h.writeError(w, r, errors.Wrap(err, "failed to track event"))
		return
	}

	h.writeJSON(w, http.StatusAccepted, APIResponse{Success: true, Message: "Event accepted"})
}

// CatalogStats handles GET /api/v1/catalog
func (h *APIHandlers) CatalogStats(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: h.recipeService.Stats()})
}

// ReloadCatalog handles POST /api/v1/catalog/reload
func (h *APIHandlers) ReloadCatalog(w http.ResponseWriter, r *http.Request) {
	result, err := h.recipeService.Load(r.Context())
	if err != nil {
		h.writeError(w, r, errors.Wrap(err, "failed to reload catalog"))
		return
	}

	h.writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: result, Message: "Catalog reloaded"})
}

func recipeIDParam(r *http.Request) (int, *errors.AppError) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return 0, errors.NewBadRequestError("recipe id must be a positive integer").
			WithMetadata("id", raw)
	}
	return id, nil
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) *errors.AppError {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errors.NewBadRequestError("request body must be valid JSON").WithCause(err)
	}
	return nil
}

// writeJSON writes a JSON response
func (h *APIHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode JSON response", zap.Error(err))
	}
}

func (h *APIHandlers) writeError(w http.ResponseWriter, r *http.Request, err *errors.AppError) {
	if err.StatusCode() >= http.StatusInternalServerError {
		h.logger.Error("Request failed",
			zap.String("request_id", middleware.GetRequestID(r.Context())),
			zap.String("code", string(err.Code)),
			zap.String("details", err.Details),
			zap.Error(err.Cause),
		)
	}
	middleware.WriteError(w, r, err)
}
