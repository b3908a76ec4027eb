package jsonfile

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/alchemorsel/recipebook/internal/domain/recipe"
	"github.com/alchemorsel/recipebook/test/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newSource(strict bool) *Source {
	return NewSource("test.json", Options{Strict: strict}, zap.NewNop())
}

func TestDecodeArray(t *testing.T) {
	data, err := json.Marshal(testutils.FilterFixture())
	require.NoError(t, err)

	result, err := newSource(false).Decode(data)

	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4}, testutils.RecipeIDs(result.Recipes))
	assert.Zero(t, result.Skipped)
	assert.Equal(t, "Ελληνική Σαλάτα", result.Recipes[0].NameGr)
}

func TestDecodeSingleObject(t *testing.T) {
	result, err := newSource(false).Decode([]byte(`{"recipeId": 5, "recipeNameEn": "Moussaka"}`))

	require.NoError(t, err)
	require.Len(t, result.Recipes, 1)
	assert.Equal(t, 5, result.Recipes[0].ID)
	assert.NotNil(t, result.Recipes[0].Cuisines)
	assert.NotNil(t, result.Recipes[0].Tags)
}

func TestDecodeOtherValuesYieldEmpty(t *testing.T) {
	for _, input := range []string{"null", "42", `"recipes"`, "", "   "} {
		result, err := newSource(false).Decode([]byte(input))
		require.NoError(t, err, input)
		assert.Empty(t, result.Recipes, input)
	}
}

func TestDecodeMalformed(t *testing.T) {
	_, err := newSource(false).Decode([]byte(`[{"recipeId": 1,`))
	assert.ErrorIs(t, err, recipe.ErrMalformedDataset)
}

func TestDecodeSkipsInvalidRecords(t *testing.T) {
	input := `[
		{"recipeId": 1, "recipeNameEn": "Greek Salad"},
		{"recipeId": 0, "recipeNameEn": "No id"},
		{"recipeId": 2},
		{"recipeId": 3, "recipeNameEn": "Pie", "difficulty": "extreme"},
		{"recipeId": "four"},
		{"recipeId": 1, "recipeNameEn": "Duplicate"},
		{"recipeId": 6, "recipeNameGr": "Φασολάδα", "difficulty": "easy"}
	]`

	result, err := newSource(false).Decode([]byte(input))

	require.NoError(t, err)
	assert.Equal(t, []int{1, 6}, testutils.RecipeIDs(result.Recipes))
	assert.Equal(t, 5, result.Skipped)
	assert.Equal(t, "Greek Salad", result.Recipes[0].NameEn)
}

func TestDecodeStrict(t *testing.T) {
	_, err := newSource(true).Decode([]byte(`[{"recipeId": 1, "recipeNameEn": "A"}, {"recipeId": 0, "recipeNameEn": "B"}]`))
	assert.ErrorIs(t, err, recipe.ErrInvalidRecipe)

	_, err = newSource(true).Decode([]byte(`[{"recipeId": 1, "recipeNameEn": "A"}, {"recipeId": 1, "recipeNameEn": "B"}]`))
	assert.ErrorIs(t, err, recipe.ErrDuplicateRecipe)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recipes.json")
	data, err := json.Marshal(testutils.SearchFixture())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	source := NewSource(path, Options{}, zap.NewNop())
	result, err := source.Load(context.Background())

	require.NoError(t, err)
	assert.Len(t, result.Recipes, 3)
	assert.Equal(t, path, source.Location())
}

func TestLoadMissingFile(t *testing.T) {
	source := NewSource(filepath.Join(t.TempDir(), "missing.json"), Options{}, zap.NewNop())
	_, err := source.Load(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)
}
