package model_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/arcosphere/internal/model"
	"github.com/roach88/arcosphere/internal/space"
)

func mustSet(t *testing.T, f *model.Family, text string) model.Set {
	t.Helper()
	s, err := f.ParseSet(text)
	require.NoError(t, err)
	return s
}

func TestExplorationFamilyShape(t *testing.T) {
	f := space.Exploration()

	assert.Equal(t, space.Name, f.Name())
	assert.Equal(t, 8, f.Dimension())
	assert.True(t, f.Polarized())
	assert.Equal(t, 10, f.RecipeCount())
	assert.Len(t, f.Foldings(), 8)
	assert.Len(t, f.Inversions(), 2)

	for i, r := range f.Recipes() {
		assert.Equal(t, i, r.Index)
		assert.Equal(t, r, f.Recipe(i))
	}
}

func TestRecipesPreserveCardinality(t *testing.T) {
	for _, r := range space.Exploration().Recipes() {
		assert.Equal(t, r.Input.Len(), r.Output.Len(), "recipe %d", r.Index)
	}
}

func TestRecipePolarities(t *testing.T) {
	f := space.Exploration()

	for _, r := range f.Foldings() {
		assert.Equal(t, f.CountNegatives(r.Input), f.CountNegatives(r.Output), "folding %d", r.Index)
		assert.Equal(t, f.CountPositives(r.Input), f.CountPositives(r.Output), "folding %d", r.Index)
		assert.False(t, r.IsInversion())
	}
	for _, r := range f.Inversions() {
		assert.Equal(t, f.CountNegatives(r.Input), f.CountPositives(r.Output), "inversion %d", r.Index)
		assert.Equal(t, f.CountPositives(r.Input), f.CountNegatives(r.Output), "inversion %d", r.Index)
		assert.True(t, r.IsInversion())
	}
}

func TestFindRecipe(t *testing.T) {
	f := space.Exploration()

	r, err := f.FindRecipe(mustSet(t, f, "EO"), mustSet(t, f, "LG"))
	require.NoError(t, err)
	assert.Equal(t, 2, r.Index)
	assert.Equal(t, model.Folding, r.Kind)
	assert.True(t, f.Contains(r))

	_, err = f.FindRecipe(mustSet(t, f, "LG"), mustSet(t, f, "EO"))
	assert.ErrorIs(t, err, model.ErrUnknownRecipe)
}

func TestContainsRejectsForeignRecipe(t *testing.T) {
	f := space.Exploration()
	r := f.Recipe(2)
	r.Output = mustSet(t, f, "XX")
	assert.False(t, f.Contains(r))

	assert.False(t, f.Contains(model.Recipe{Index: 42}))
}

func TestCountPolarities(t *testing.T) {
	f := space.Exploration()
	s := mustSet(t, f, "EEGLZ")
	assert.Equal(t, 3, f.CountNegatives(s))
	assert.Equal(t, 2, f.CountPositives(s))
}

func TestNewFamilyValidation(t *testing.T) {
	tokens := []model.Arcosphere{
		{Abbr: 'A', Name: "Alpha"},
		{Abbr: 'B', Name: "Beta"},
	}

	tests := []struct {
		name    string
		tokens  []model.Arcosphere
		recipes []model.RecipeSpec
		field   string
	}{
		{
			name:   "no arcospheres",
			tokens: nil,
			field:  "arcospheres",
		},
		{
			name:   "duplicate abbreviation",
			tokens: []model.Arcosphere{{Abbr: 'A'}, {Abbr: 'A'}},
			field:  "arcospheres",
		},
		{
			name:   "reserved abbreviation",
			tokens: []model.Arcosphere{{Abbr: '|'}},
			field:  "arcospheres",
		},
		{
			name:   "digit abbreviation",
			tokens: []model.Arcosphere{{Abbr: '7'}},
			field:  "arcospheres",
		},
		{
			name:   "mixed polarities",
			tokens: []model.Arcosphere{{Abbr: 'A', Polarity: model.Negative}, {Abbr: 'B'}},
			field:  "arcospheres",
		},
		{
			name:    "unknown token in recipe",
			tokens:  tokens,
			recipes: []model.RecipeSpec{{Input: "AC", Output: "BB"}},
			field:   "recipes[0].input",
		},
		{
			name:    "cardinality",
			tokens:  tokens,
			recipes: []model.RecipeSpec{{Input: "A", Output: "BB"}},
			field:   "recipes[0]",
		},
		{
			name:    "duplicate recipe",
			tokens:  tokens,
			recipes: []model.RecipeSpec{{Input: "A", Output: "B"}, {Input: "A", Output: "B"}},
			field:   "recipes[1]",
		},
		{
			name: "neither folding nor inversion",
			tokens: []model.Arcosphere{
				{Abbr: 'A', Polarity: model.Negative},
				{Abbr: 'B', Polarity: model.Positive},
			},
			recipes: []model.RecipeSpec{{Input: "AB", Output: "AA"}},
			field:   "recipes[0]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := model.NewFamily("test", tt.tokens, tt.recipes)
			require.Error(t, err)

			var fe *model.FamilyError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, tt.field, fe.Field)
			assert.Equal(t, "test", fe.Family)
		})
	}
}

func TestNewFamilyWithoutPolarityOnlyHasFoldings(t *testing.T) {
	f, err := model.NewFamily("plain", []model.Arcosphere{{Abbr: 'a'}, {Abbr: 'b'}}, []model.RecipeSpec{
		{Input: "a", Output: "b"},
		{Input: "bb", Output: "aa"},
	})
	require.NoError(t, err)

	assert.False(t, f.Polarized())
	assert.Len(t, f.Foldings(), 2)
	assert.Empty(t, f.Inversions())
}

func TestTooManyArcospheres(t *testing.T) {
	tokens := make([]model.Arcosphere, model.MaxTokens+1)
	for i := range tokens {
		tokens[i] = model.Arcosphere{Abbr: rune('a' + i)}
	}
	_, err := model.NewFamily("wide", tokens, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at most 16")
}
