// Package recipe contains the core domain model of the bilingual recipe catalog
// and the filter engine that narrows a collection of recipes.
package recipe

import "strings"

// Recipe is a single catalog record. Records are read-only once loaded;
// the id is the only equality key used by list operations.
type Recipe struct {
	ID         int             `json:"recipeId" validate:"gt=0"`
	NameEn     string          `json:"recipeNameEn" validate:"required_without=NameGr"`
	NameGr     string          `json:"recipeNameGr" validate:"required_without=NameEn"`
	PrepTime   int             `json:"prepTime" validate:"gte=0"`
	CookTime   int             `json:"cookTime" validate:"gte=0"`
	TotalTime  int             `json:"totalTime" validate:"gte=0"`
	Servings   int             `json:"servings" validate:"gte=0"`
	Vegan      bool            `json:"vegan"`
	Vegetarian bool            `json:"vegetarian"`
	Difficulty DifficultyLevel `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`

	Images      []string           `json:"images"`
	Cuisines    []Cuisine          `json:"cuisines" validate:"dive"`
	Ingredients []RecipeIngredient `json:"ingredients" validate:"dive"`
	Steps       []RecipeStep       `json:"steps" validate:"dive"`
	Nutrition   NutritionalInfo    `json:"nutritionalInfo"`
	Tags        []Tag              `json:"tags" validate:"dive"`

	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// DisplayName returns the English name, falling back to the Greek one and
// finally to a generic label.
func (r Recipe) DisplayName() string {
	if r.NameEn != "" {
		return r.NameEn
	}
	if r.NameGr != "" {
		return r.NameGr
	}
	return "Recipe"
}

// HasCuisine reports whether any of the recipe's cuisines is in ids.
func (r Recipe) HasCuisine(ids map[int]struct{}) bool {
	for _, c := range r.Cuisines {
		if _, ok := ids[c.ID]; ok {
			return true
		}
	}
	return false
}

// HasTag reports whether the recipe carries a tag whose English or Greek text
// equals tag, ignoring case.
func (r Recipe) HasTag(tag string) bool {
	for _, t := range r.Tags {
		if t.Matches(tag) {
			return true
		}
	}
	return false
}

// NameContains reports whether the already case-folded term occurs in either
// display name.
func (r Recipe) NameContains(foldedTerm string) bool {
	return strings.Contains(strings.ToLower(r.NameEn), foldedTerm) ||
		strings.Contains(strings.ToLower(r.NameGr), foldedTerm)
}

// Cuisine is a bilingual cuisine reference. Many recipes may share an id.
type Cuisine struct {
	ID     int    `json:"cuisineId" validate:"gt=0"`
	NameEn string `json:"cuisineNameEn"`
	NameGr string `json:"cuisineNameGr"`
}

// Tag is a bilingual tag. The lower-cased English text identifies it in the
// tag vocabulary.
type Tag struct {
	En string `json:"tagEn" validate:"required"`
	Gr string `json:"tagGr"`
}

// Key returns the vocabulary key of the tag.
func (t Tag) Key() string {
	return strings.ToLower(t.En)
}

// Matches reports whether either language text equals s case-insensitively.
func (t Tag) Matches(s string) bool {
	folded := strings.ToLower(s)
	return strings.ToLower(t.En) == folded || strings.ToLower(t.Gr) == folded
}

// RecipeIngredient is one ingredient line of a recipe.
type RecipeIngredient struct {
	Ingredient  Ingredient  `json:"ingredient"`
	Measurement Measurement `json:"measurement"`
	Quantity    float64     `json:"quantity" validate:"gte=0"`
	Optional    bool        `json:"optional"`
}

// Ingredient describes an ingredient in both languages.
type Ingredient struct {
	ID     int    `json:"ingredientId"`
	DescEn string `json:"ingredientDescEn"`
	DescGr string `json:"ingredientDescGr"`
}

// Measurement describes a unit of measurement in both languages.
type Measurement struct {
	ID     int    `json:"measurementTypeId"`
	DescEn string `json:"measurementTypeDescEn"`
	DescGr string `json:"measurementTypeDescGr"`
}

// RecipeStep is one ordered preparation step.
type RecipeStep struct {
	Number int    `json:"stepNumber" validate:"gte=0"`
	StepEn string `json:"stepEn"`
	StepGr string `json:"stepGr"`
	Time   int    `json:"time" validate:"gte=0"`
}

// NutritionalInfo summarises a serving.
type NutritionalInfo struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// DifficultyLevel represents recipe difficulty
type DifficultyLevel string

const (
	DifficultyLevelEasy   DifficultyLevel = "easy"
	DifficultyLevelMedium DifficultyLevel = "medium"
	DifficultyLevelHard   DifficultyLevel = "hard"
)

// IsValid reports whether d is one of the known levels.
func (d DifficultyLevel) IsValid() bool {
	switch d {
	case DifficultyLevelEasy, DifficultyLevelMedium, DifficultyLevelHard:
		return true
	}
	return false
}
