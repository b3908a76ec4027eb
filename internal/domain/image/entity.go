// Package image models illustrative images generated for catalog recipes.
package image

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/alchemorsel/recipebook/internal/domain/recipe"
)

// Source tells where an image URL came from.
type Source string

const (
	SourceAPI         Source = "api"
	SourcePlaceholder Source = "placeholder"
)

// PlaceholderBaseURL is the base of every placeholder image URL.
const PlaceholderBaseURL = "https://placehold.co/600x400/orange/white"

// promptIngredientLimit bounds how many ingredients are mentioned in a prompt.
const promptIngredientLimit = 3

// GeneratedImage is the image produced for a single recipe.
type GeneratedImage struct {
	RecipeID   int       `json:"recipeId"`
	RecipeName string    `json:"recipeName"`
	ImageURL   string    `json:"imageUrl"`
	Prompt     string    `json:"prompt"`
	Source     Source    `json:"source"`
	CreatedAt  time.Time `json:"createdAt"`
}

// IsPlaceholder reports whether the image is a placeholder.
func (g *GeneratedImage) IsPlaceholder() bool {
	return g.Source == SourcePlaceholder
}

// BuildPrompt describes the recipe for a food photography model.
func BuildPrompt(r recipe.Recipe) string {
	var b strings.Builder

	fmt.Fprintf(&b, "A professional food photograph of %s, a %s to prepare", r.NameEn, r.Difficulty)
	if r.Vegetarian {
		b.WriteString(" vegetarian")
	}
	if r.Vegan {
		b.WriteString(" vegan")
	}
	b.WriteString(" dish.")

	descs := make([]string, 0, promptIngredientLimit)
	for _, ing := range r.Ingredients {
		if len(descs) == promptIngredientLimit {
			break
		}
		descs = append(descs, ing.Ingredient.DescEn)
	}
	fmt.Fprintf(&b, " The dish contains ingredients like %s.", strings.Join(descs, ", "))

	return b.String()
}

// Placeholder builds the fallback image used when no image API is available.
func Placeholder(r recipe.Recipe, now time.Time) *GeneratedImage {
	name := r.DisplayName()

	promptName := "recipe"
	if r.NameEn != "" || r.NameGr != "" {
		promptName = name
	}

	return &GeneratedImage{
		RecipeID:   r.ID,
		RecipeName: name,
		ImageURL:   PlaceholderBaseURL + "?text=" + encodeText(name),
		Prompt:     "Placeholder for " + promptName,
		Source:     SourcePlaceholder,
		CreatedAt:  now.UTC(),
	}
}

// New records an image returned by the image API.
func New(r recipe.Recipe, imageURL, prompt string, now time.Time) *GeneratedImage {
	return &GeneratedImage{
		RecipeID:   r.ID,
		RecipeName: r.DisplayName(),
		ImageURL:   imageURL,
		Prompt:     prompt,
		Source:     SourceAPI,
		CreatedAt:  now.UTC(),
	}
}

// textUnescaper turns QueryEscape output into encodeURIComponent output:
// spaces as %20 and the marks ! ' ( ) * left as is.
var textUnescaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

func encodeText(s string) string {
	return textUnescaper.Replace(url.QueryEscape(s))
}

// ErrImageNotFound is returned when no image is stored for a recipe.
var ErrImageNotFound = errors.New("image not found")

// ImageGeneratedEvent is raised after an image is stored for a recipe
type ImageGeneratedEvent struct {
	RecipeID    int
	Source      Source
	GeneratedAt time.Time
}

func (e ImageGeneratedEvent) EventName() string {
	return "image.generated"
}

func (e ImageGeneratedEvent) OccurredAt() time.Time {
	return e.GeneratedAt
}
