package recipe_test

import (
	"testing"

	"github.com/alchemorsel/recipebook/internal/domain/recipe"
	"github.com/alchemorsel/recipebook/test/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type FilterTestSuite struct {
	suite.Suite
	recipes []recipe.Recipe
}

func (s *FilterTestSuite) SetupTest() {
	s.recipes = testutils.FilterFixture()
}

func (s *FilterTestSuite) filterIDs(req recipe.FilterRequest) []int {
	return testutils.RecipeIDs(recipe.FilterRecipes(s.recipes, req))
}

func (s *FilterTestSuite) TestNoSelectionReturnsInputUnchanged() {
	result := recipe.FilterRecipes(s.recipes, recipe.FilterRequest{})

	s.Require().Len(result, len(s.recipes))
	s.Equal(s.recipes, result)
	s.Same(&s.recipes[0], &result[0])
}

func (s *FilterTestSuite) TestSingleCuisine() {
	s.Equal([]int{2, 4}, s.filterIDs(recipe.FilterRequest{Cuisines: []int{1}}))
}

func (s *FilterTestSuite) TestCuisinesAreOred() {
	s.Equal([]int{1, 3}, s.filterIDs(recipe.FilterRequest{Cuisines: []int{4, 6}}))
}

func (s *FilterTestSuite) TestUnknownCuisineMatchesNothing() {
	result := recipe.FilterRecipes(s.recipes, recipe.FilterRequest{Cuisines: []int{5}})
	s.NotNil(result)
	s.Empty(result)
}

func (s *FilterTestSuite) TestTagMatchesEitherLanguage() {
	for _, tag := range []string{"vegetarian", "χορτοφαγικό", "VEGETARIAN"} {
		s.Equal([]int{1, 4}, s.filterIDs(recipe.FilterRequest{Tags: []string{tag}}), tag)
	}
}

func (s *FilterTestSuite) TestTagsAreAnded() {
	s.Equal([]int{1}, s.filterIDs(recipe.FilterRequest{Tags: []string{"vegetarian", "vegan"}}))
}

func (s *FilterTestSuite) TestCuisineAndTagCombined() {
	s.Equal([]int{4}, s.filterIDs(recipe.FilterRequest{Cuisines: []int{1}, Tags: []string{"vegetarian"}}))
}

func (s *FilterTestSuite) TestFilteringDoesNotMutateInput() {
	before := testutils.RecipeIDs(s.recipes)
	_ = recipe.FilterRecipes(s.recipes, recipe.FilterRequest{Cuisines: []int{1}, Tags: []string{"dinner"}})
	s.Equal(before, testutils.RecipeIDs(s.recipes))
}

func (s *FilterTestSuite) TestExtractCuisines() {
	cuisines := recipe.ExtractCuisines(s.recipes)

	s.Require().Len(cuisines, 3)
	s.Equal(recipe.CuisineOption{ID: 1, NameEn: "Italian", NameGr: "Ιταλική"}, findCuisine(cuisines, 1))
	s.Equal([]int{4, 1, 6}, cuisineIDs(cuisines))
}

func (s *FilterTestSuite) TestExtractTags() {
	tags := recipe.ExtractTags(s.recipes)

	s.Require().Len(tags, 9)
	s.Equal(recipe.TagOption{TagEn: "vegetarian", TagGr: "χορτοφαγικό"}, findTag(tags, "vegetarian"))
	s.Equal("salad", tags[0].TagEn)
}

func (s *FilterTestSuite) TestExtractTagsLastWriteWins() {
	extra := testutils.NewRecipeBuilder().
		WithID(5).
		WithNames("Veggie Bowl", "Μπολ Λαχανικών").
		WithTag("VEGETARIAN", "ΧΟΡΤΟΦΑΓΙΚΌ").
		WithTag("new tag", "νέα ετικέτα").
		Build()

	tags := recipe.ExtractTags(append(s.recipes, extra))

	s.Require().Len(tags, 10)
	s.Equal(recipe.TagOption{TagEn: "VEGETARIAN", TagGr: "ΧΟΡΤΟΦΑΓΙΚΌ"}, tags[1])
	s.Equal("new tag", tags[9].TagEn)
}

func TestFilterTestSuite(t *testing.T) {
	suite.Run(t, new(FilterTestSuite))
}

func TestApplyFilters(t *testing.T) {
	recipes := testutils.SearchFixture()

	tests := []struct {
		name   string
		req    recipe.FilterRequest
		search string
		want   []int
	}{
		{name: "english name", search: "pizza", want: []int{3}},
		{name: "greek name", search: "Σαλάτα", want: []int{1}},
		{name: "case insensitive", search: "PIZZA", want: []int{3}},
		{name: "partial word", search: "paghet", want: []int{2}},
		{name: "cuisine and search", req: recipe.FilterRequest{Cuisines: []int{4}}, search: "pizza", want: []int{3}},
		{
			name:   "cuisine tag and search",
			req:    recipe.FilterRequest{Cuisines: []int{1}, Tags: []string{"vegetarian"}},
			search: "greek",
			want:   []int{3},
		},
		{
			name:   "no match",
			req:    recipe.FilterRequest{Cuisines: []int{1}, Tags: []string{"salad"}},
			search: "lasagna",
			want:   []int{},
		},
		{name: "blank term", search: "   ", want: []int{1, 2, 3}},
		{name: "empty term with filter", req: recipe.FilterRequest{Tags: []string{"vegetarian"}}, want: []int{1, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := recipe.ApplyFilters(recipes, tt.req, tt.search)
			assert.Equal(t, tt.want, testutils.RecipeIDs(got))
		})
	}
}

func TestApplyFiltersSearchNarrowsFilterResult(t *testing.T) {
	recipes := testutils.SearchFixture()
	req := recipe.FilterRequest{Cuisines: []int{1}}

	filtered := recipe.FilterRecipes(recipes, req)
	searched := recipe.ApplyFilters(recipes, req, "greek")

	require.NotEmpty(t, searched)
	for _, r := range searched {
		assert.Contains(t, testutils.RecipeIDs(filtered), r.ID)
	}
}

func TestEmptyInput(t *testing.T) {
	assert.Empty(t, recipe.FilterRecipes(nil, recipe.FilterRequest{Cuisines: []int{1}}))
	assert.Empty(t, recipe.ApplyFilters([]recipe.Recipe{}, recipe.FilterRequest{}, "pizza"))

	cuisines := recipe.ExtractCuisines(nil)
	assert.NotNil(t, cuisines)
	assert.Empty(t, cuisines)

	tags := recipe.ExtractTags(nil)
	assert.NotNil(t, tags)
	assert.Empty(t, tags)
}

func TestMissingListsNeverMatchSelection(t *testing.T) {
	bare := recipe.Recipe{ID: 9, NameEn: "Plain Rice"}

	assert.Empty(t, recipe.FilterRecipes([]recipe.Recipe{bare}, recipe.FilterRequest{Cuisines: []int{1}}))
	assert.Empty(t, recipe.FilterRecipes([]recipe.Recipe{bare}, recipe.FilterRequest{Tags: []string{"quick"}}))
	assert.Len(t, recipe.FilterRecipes([]recipe.Recipe{bare}, recipe.FilterRequest{}), 1)
}

func findCuisine(options []recipe.CuisineOption, id int) recipe.CuisineOption {
	for _, o := range options {
		if o.ID == id {
			return o
		}
	}
	return recipe.CuisineOption{}
}

func cuisineIDs(options []recipe.CuisineOption) []int {
	ids := make([]int, 0, len(options))
	for _, o := range options {
		ids = append(ids, o.ID)
	}
	return ids
}

func findTag(options []recipe.TagOption, en string) recipe.TagOption {
	for _, o := range options {
		if o.TagEn == en {
			return o
		}
	}
	return recipe.TagOption{}
}
