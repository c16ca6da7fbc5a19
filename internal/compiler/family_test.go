package compiler

import (
	"testing"

	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/arcosphere/internal/model"
	"github.com/roach88/arcosphere/internal/space"
)

func TestCompileFamilyBasic(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`
		family: "demo"
		arcospheres: [
			{abbr: "a", name: "Anion", polarity: "negative"},
			{abbr: "c", name: "Cation", fancy: "ç", polarity: "positive"},
		]
		recipes: [
			"c -> a",
			{input: "cc", output: "aa"},
		]
	`)
	require.NoError(t, v.Err())

	f, err := CompileFamily(v)
	require.NoError(t, err)

	assert.Equal(t, "demo", f.Name())
	assert.Equal(t, 2, f.Dimension())
	assert.True(t, f.Polarized())
	assert.Equal(t, "Anion", f.Token(0).Glyph())
	assert.Equal(t, "ç", f.Token(1).Glyph())
	require.Equal(t, 2, f.RecipeCount())
	assert.Equal(t, "c -> a", f.FormatRecipe(f.Recipe(0)))
	assert.Equal(t, "cc -> aa", f.FormatRecipe(f.Recipe(1)))
	assert.Len(t, f.Inversions(), 2)
}

func TestCompileFamilyDefaults(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`
		family: "plain"
		arcospheres: [{abbr: "x"}, {abbr: "y"}]
		recipes: ["xx -> yy"]
	`)
	require.NoError(t, v.Err())

	f, err := CompileFamily(v)
	require.NoError(t, err)

	assert.False(t, f.Polarized())
	assert.Equal(t, "x", f.Token(0).Name)
	assert.Equal(t, model.Neutral, f.Token(0).Polarity)
	assert.Len(t, f.Foldings(), 1)
}

func TestCompileFamilyNormalizesAbbreviations(t *testing.T) {
	ctx := cuecontext.New()
	// "e" followed by a combining acute accent composes into a single rune.
	v := ctx.CompileString(`
		family: "accents"
		arcospheres: [{abbr: "e\u0301"}, {abbr: "a"}]
		recipes: ["é -> a"]
	`)
	require.NoError(t, v.Err())

	f, err := CompileFamily(v)
	require.NoError(t, err)

	tok, ok := f.Lookup('\u00e9')
	require.True(t, ok)
	assert.Equal(t, model.Token(0), tok)
}

func TestCompileFamilyErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{
			name:   "unknown field",
			source: `family: "x", arcospheres: [{abbr: "a"}], recipes: [], colour: "red"`,
			want:   "colour",
		},
		{
			name:   "missing family name",
			source: `arcospheres: [{abbr: "a"}], recipes: []`,
			want:   "family",
		},
		{
			name:   "bad polarity",
			source: `family: "x", arcospheres: [{abbr: "a", polarity: "up"}], recipes: []`,
			want:   "polarity",
		},
		{
			name:   "long abbreviation",
			source: `family: "x", arcospheres: [{abbr: "ab"}], recipes: []`,
			want:   "single character",
		},
		{
			name:   "short recipe without arrow",
			source: `family: "x", arcospheres: [{abbr: "a"}, {abbr: "b"}], recipes: ["a b"]`,
			want:   "INPUT -> OUTPUT",
		},
		{
			name:   "inconsistent recipe",
			source: `family: "x", arcospheres: [{abbr: "a"}, {abbr: "b"}], recipes: ["a -> bb"]`,
			want:   "does not preserve",
		},
		{
			name:   "duplicate abbreviation",
			source: `family: "x", arcospheres: [{abbr: "a"}, {abbr: "a"}], recipes: []`,
			want:   "duplicate abbreviation",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := cuecontext.New()
			v := ctx.CompileString(tt.source)

			_, err := CompileFamily(v)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestCompileErrorHasPosition(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`family: "x"
arcospheres: [{abbr: "ab"}]
recipes: []
`)

	_, err := CompileFamily(v)
	require.Error(t, err)

	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "arcospheres.abbr", ce.Field)
	assert.True(t, ce.Pos.IsValid())
	assert.Equal(t, 2, ce.Pos.Line())
}

func TestLoadFamilyFileMatchesBuiltin(t *testing.T) {
	f, err := LoadFamily("testdata/space.cue")
	require.NoError(t, err)

	builtin := space.Exploration()
	assert.Equal(t, builtin.Name(), f.Name())
	assert.Equal(t, builtin.Tokens(), f.Tokens())
	assert.Equal(t, builtin.Recipes(), f.Recipes())
}

func TestLoadFamilyDirectory(t *testing.T) {
	f, err := LoadFamily("testdata/polar")
	require.NoError(t, err)

	assert.Equal(t, "polar", f.Name())
	assert.Equal(t, 2, f.Dimension())
	assert.Equal(t, "cc -> aa", f.FormatRecipe(f.Recipe(0)))
}

func TestLoadFamilyMissing(t *testing.T) {
	_, err := LoadFamily("testdata/nope.cue")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading family")
}
