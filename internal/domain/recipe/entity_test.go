package recipe_test

import (
	"encoding/json"
	"testing"

	"github.com/alchemorsel/recipebook/internal/domain/recipe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagMatches(t *testing.T) {
	tag := recipe.Tag{En: "Vegetarian", Gr: "Χορτοφαγικό"}

	assert.True(t, tag.Matches("vegetarian"))
	assert.True(t, tag.Matches("VEGETARIAN"))
	assert.True(t, tag.Matches("χορτοφαγικό"))
	assert.False(t, tag.Matches("vegetarian "))
	assert.False(t, tag.Matches("vegan"))
	assert.Equal(t, "vegetarian", tag.Key())
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Moussaka", recipe.Recipe{NameEn: "Moussaka", NameGr: "Μουσακάς"}.DisplayName())
	assert.Equal(t, "Μουσακάς", recipe.Recipe{NameGr: "Μουσακάς"}.DisplayName())
	assert.Equal(t, "Recipe", recipe.Recipe{}.DisplayName())
}

func TestDifficultyLevelIsValid(t *testing.T) {
	assert.True(t, recipe.DifficultyLevelEasy.IsValid())
	assert.True(t, recipe.DifficultyLevelHard.IsValid())
	assert.False(t, recipe.DifficultyLevel("extreme").IsValid())
}

func TestRecipeDecodesWireNames(t *testing.T) {
	raw := `{
		"recipeId": 7,
		"recipeNameEn": "Moussaka",
		"recipeNameGr": "Μουσακάς",
		"difficulty": "hard",
		"vegetarian": false,
		"cuisines": [{"cuisineId": 4, "cuisineNameEn": "Greek", "cuisineNameGr": "Ελληνική"}],
		"ingredients": [{
			"ingredient": {"ingredientId": 3, "ingredientDescEn": "eggplant", "ingredientDescGr": "μελιτζάνα"},
			"measurement": {"measurementTypeId": 2, "measurementTypeDescEn": "piece", "measurementTypeDescGr": "τεμάχιο"},
			"quantity": 2,
			"optional": false
		}],
		"steps": [{"stepNumber": 1, "stepEn": "Slice", "stepGr": "Κόψτε", "time": 10}],
		"nutritionalInfo": {"calories": 520, "protein": 21, "carbs": 30, "fat": 35},
		"tags": [{"tagEn": "baked", "tagGr": "φούρνου"}]
	}`

	var r recipe.Recipe
	require.NoError(t, json.Unmarshal([]byte(raw), &r))

	assert.Equal(t, 7, r.ID)
	assert.Equal(t, recipe.DifficultyLevelHard, r.Difficulty)
	assert.Equal(t, 4, r.Cuisines[0].ID)
	assert.Equal(t, "eggplant", r.Ingredients[0].Ingredient.DescEn)
	assert.Equal(t, "piece", r.Ingredients[0].Measurement.DescEn)
	assert.Equal(t, 10, r.Steps[0].Time)
	assert.Equal(t, 520.0, r.Nutrition.Calories)
	assert.Equal(t, recipe.Tag{En: "baked", Gr: "φούρνου"}, r.Tags[0])
}
