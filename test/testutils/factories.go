// Package testutils provides test data factories for consistent test data generation
package testutils

import (
	"time"

	"github.com/alchemorsel/recipebook/internal/domain/recipe"
	"github.com/brianvoe/gofakeit/v6"
)

// RecipeBuilder provides a fluent interface for building test recipes
type RecipeBuilder struct {
	r recipe.Recipe
}

// NewRecipeBuilder creates a recipe builder seeded with random but valid data
func NewRecipeBuilder() *RecipeBuilder {
	faker := gofakeit.New(time.Now().UnixNano())

	prep := faker.Number(5, 30)
	cook := faker.Number(0, 90)

	return &RecipeBuilder{r: recipe.Recipe{
		ID:          faker.Number(1000, 999999),
		NameEn:      faker.Dessert(),
		NameGr:      faker.Dinner(),
		PrepTime:    prep,
		CookTime:    cook,
		TotalTime:   prep + cook,
		Servings:    faker.Number(1, 8),
		Difficulty:  recipe.DifficultyLevelMedium,
		Images:      []string{},
		Cuisines:    []recipe.Cuisine{},
		Ingredients: []recipe.RecipeIngredient{},
		Steps: []recipe.RecipeStep{
			{Number: 1, StepEn: faker.Sentence(6), StepGr: faker.Sentence(6), Time: prep},
		},
		Nutrition: recipe.NutritionalInfo{
			Calories: faker.Float64Range(100, 900),
			Protein:  faker.Float64Range(1, 60),
			Carbs:    faker.Float64Range(1, 120),
			Fat:      faker.Float64Range(1, 50),
		},
		Tags:      []recipe.Tag{},
		CreatedAt: faker.Date().Format(time.RFC3339),
		UpdatedAt: faker.Date().Format(time.RFC3339),
	}}
}

// WithID sets the recipe id
func (rb *RecipeBuilder) WithID(id int) *RecipeBuilder {
	rb.r.ID = id
	return rb
}

// WithNames sets the English and Greek names
func (rb *RecipeBuilder) WithNames(en, gr string) *RecipeBuilder {
	rb.r.NameEn = en
	rb.r.NameGr = gr
	return rb
}

// WithDifficulty sets the recipe difficulty
func (rb *RecipeBuilder) WithDifficulty(difficulty recipe.DifficultyLevel) *RecipeBuilder {
	rb.r.Difficulty = difficulty
	return rb
}

// WithDiet sets the vegetarian and vegan flags
func (rb *RecipeBuilder) WithDiet(vegetarian, vegan bool) *RecipeBuilder {
	rb.r.Vegetarian = vegetarian
	rb.r.Vegan = vegan
	return rb
}

// WithCuisine appends a cuisine
func (rb *RecipeBuilder) WithCuisine(id int, en, gr string) *RecipeBuilder {
	rb.r.Cuisines = append(rb.r.Cuisines, recipe.Cuisine{ID: id, NameEn: en, NameGr: gr})
	return rb
}

// WithTag appends a tag
func (rb *RecipeBuilder) WithTag(en, gr string) *RecipeBuilder {
	rb.r.Tags = append(rb.r.Tags, recipe.Tag{En: en, Gr: gr})
	return rb
}

// WithIngredient appends an ingredient line
func (rb *RecipeBuilder) WithIngredient(en, gr string, quantity float64) *RecipeBuilder {
	rb.r.Ingredients = append(rb.r.Ingredients, recipe.RecipeIngredient{
		Ingredient: recipe.Ingredient{
			ID:     len(rb.r.Ingredients) + 1,
			DescEn: en,
			DescGr: gr,
		},
		Measurement: recipe.Measurement{ID: 1, DescEn: "gram", DescGr: "γραμμάριο"},
		Quantity:    quantity,
	})
	return rb
}

// Build returns the recipe
func (rb *RecipeBuilder) Build() recipe.Recipe {
	return rb.r
}

// Shared cuisines of the fixtures
var (
	CuisineItalian = recipe.Cuisine{ID: 1, NameEn: "Italian", NameGr: "Ιταλική"}
	CuisineGreek   = recipe.Cuisine{ID: 4, NameEn: "Greek", NameGr: "Ελληνική"}
	CuisineMexican = recipe.Cuisine{ID: 6, NameEn: "Mexican", NameGr: "Μεξικάνικη"}
)

func withCuisine(rb *RecipeBuilder, c recipe.Cuisine) *RecipeBuilder {
	return rb.WithCuisine(c.ID, c.NameEn, c.NameGr)
}

// FilterFixture returns four recipes covering three cuisines and nine
// distinct tags.
func FilterFixture() []recipe.Recipe {
	return []recipe.Recipe{
		withCuisine(NewRecipeBuilder().WithID(1).WithNames("Greek Salad", "Ελληνική Σαλάτα"), CuisineGreek).
			WithDifficulty(recipe.DifficultyLevelEasy).
			WithDiet(true, true).
			WithTag("salad", "σαλάτα").
			WithTag("vegetarian", "χορτοφαγικό").
			WithTag("vegan", "βίγκαν").
			WithTag("healthy", "υγιεινό").
			WithIngredient("tomato", "ντομάτα", 200).
			WithIngredient("cucumber", "αγγούρι", 150).
			WithIngredient("olive oil", "ελαιόλαδο", 30).
			WithIngredient("oregano", "ρίγανη", 2).
			Build(),
		withCuisine(NewRecipeBuilder().WithID(2).WithNames("Spaghetti Carbonara", "Σπαγγέτι Καρμπονάρα"), CuisineItalian).
			WithDifficulty(recipe.DifficultyLevelMedium).
			WithTag("pasta", "ζυμαρικά").
			WithTag("dinner", "βραδινό").
			WithTag("quick", "γρήγορο").
			WithIngredient("spaghetti", "σπαγγέτι", 400).
			WithIngredient("guanciale", "γκουαντσιάλε", 150).
			Build(),
		withCuisine(NewRecipeBuilder().WithID(3).WithNames("Chicken Tacos", "Τάκος με Κοτόπουλο"), CuisineMexican).
			WithDifficulty(recipe.DifficultyLevelEasy).
			WithTag("chicken", "κοτόπουλο").
			WithTag("dinner", "βραδινό").
			WithTag("quick", "γρήγορο").
			WithIngredient("chicken breast", "στήθος κοτόπουλο", 500).
			Build(),
		withCuisine(NewRecipeBuilder().WithID(4).WithNames("Margherita Pizza", "Πίτσα Μαργαρίτα"), CuisineItalian).
			WithDifficulty(recipe.DifficultyLevelHard).
			WithDiet(true, false).
			WithTag("pizza", "πίτσα").
			WithTag("vegetarian", "χορτοφαγικό").
			WithTag("dinner", "βραδινό").
			WithIngredient("flour", "αλεύρι", 500).
			WithIngredient("mozzarella", "μοτσαρέλα", 250).
			Build(),
	}
}

// SearchFixture returns three recipes for search tests. The third belongs to
// both the Greek and Italian cuisines.
func SearchFixture() []recipe.Recipe {
	return []recipe.Recipe{
		withCuisine(NewRecipeBuilder().WithID(1).WithNames("Greek Salad", "Ελληνική Σαλάτα"), CuisineGreek).
			WithDiet(true, true).
			WithTag("salad", "σαλάτα").
			WithTag("vegetarian", "χορτοφαγικό").
			Build(),
		withCuisine(NewRecipeBuilder().WithID(2).WithNames("Spaghetti Carbonara", "Σπαγγέτι Καρμπονάρα"), CuisineItalian).
			WithTag("pasta", "ζυμαρικά").
			Build(),
		withCuisine(withCuisine(NewRecipeBuilder().WithID(3).WithNames("Greek Pizza", "Ελληνική Πίτσα"), CuisineGreek), CuisineItalian).
			WithDiet(true, false).
			WithTag("pizza", "πίτσα").
			WithTag("vegetarian", "χορτοφαγικό").
			Build(),
	}
}

// RecipeIDs returns the ids of recipes in order
func RecipeIDs(recipes []recipe.Recipe) []int {
	ids := make([]int, 0, len(recipes))
	for _, r := range recipes {
		ids = append(ids, r.ID)
	}
	return ids
}
