package model_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/arcosphere/internal/model"
	"github.com/roach88/arcosphere/internal/space"
)

func mustRecipe(t *testing.T, f *model.Family, text string) model.Recipe {
	t.Helper()
	r, err := f.ParseRecipe(text)
	require.NoError(t, err)
	return r
}

func TestParseSetCanonicalOrder(t *testing.T) {
	f := space.Exploration()

	s := mustSet(t, f, "ZEE")
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, 2, s.Count(space.Epsilon))
	assert.Equal(t, 1, s.Count(space.Zeta))
	assert.Equal(t, "EEZ", f.FormatSet(s))
	assert.Equal(t, "εεζ", f.FormatFancy(s))

	empty := mustSet(t, f, "  ")
	assert.True(t, empty.IsEmpty())
	assert.Equal(t, "", f.FormatSet(empty))
}

func TestParseSetUnknownToken(t *testing.T) {
	_, err := space.Exploration().ParseSet("EQ")
	require.Error(t, err)

	var pe *model.ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, model.ParseUnknownToken, pe.Code)
	assert.Equal(t, 'Q', pe.Rune)
}

func TestParseRecipe(t *testing.T) {
	f := space.Exploration()

	r := mustRecipe(t, f, "EO -> LG")
	assert.Equal(t, f.Recipe(2), r)
	assert.Equal(t, "EO -> LG", f.FormatRecipe(r))

	r = mustRecipe(t, f, "OE->GL")
	assert.Equal(t, f.Recipe(2), r, "order and whitespace are irrelevant")

	_, err := f.ParseRecipe("LG -> EO")
	assert.ErrorIs(t, err, model.ErrUnknownRecipe)

	_, err = f.ParseRecipe("EO -> LGG")
	var pe *model.ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, model.ParsePreservation, pe.Code)

	_, err = f.ParseRecipe("EO LG")
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, model.ParseIllFormatted, pe.Code)
}

func TestParseStagedPath(t *testing.T) {
	f := space.Exploration()

	sp, err := f.ParseStagedPath("EP -> LX x2 + G => PG -> XO | EO -> LG")
	require.NoError(t, err)

	assert.Equal(t, mustSet(t, f, "EP"), sp.Source)
	assert.Equal(t, mustSet(t, f, "LX"), sp.Target)
	assert.Equal(t, 2, sp.Count)
	assert.Equal(t, mustSet(t, f, "G"), sp.Catalysts)
	assert.Equal(t, []model.Recipe{mustRecipe(t, f, "PG -> XO"), mustRecipe(t, f, "EO -> LG")}, sp.Recipes)
	assert.Equal(t, []int{1}, sp.Boundaries)
	assert.Equal(t, 2, sp.StageCount())
}

func TestParseStagedPathCompactWhitespace(t *testing.T) {
	f := space.Exploration()

	canonical, err := f.ParseStagedPath("EP -> LX + G => PG -> XO | EO -> LG")
	require.NoError(t, err)
	compact, err := f.ParseStagedPath("EP->LX+G=>PG->XO|EO->LG")
	require.NoError(t, err)

	assert.True(t, canonical.Equal(compact))
}

func TestParseStagedPathSortsWithinStage(t *testing.T) {
	f := space.Exploration()

	written, err := f.ParseStagedPath("EGOP -> GLOX => PG -> XO // EO -> LG")
	require.NoError(t, err)
	sorted, err := f.ParseStagedPath("EGOP -> GLOX => EO -> LG // PG -> XO")
	require.NoError(t, err)

	assert.True(t, written.Equal(sorted))
	assert.Equal(t, "EGOP -> GLOX => EO -> LG // PG -> XO", f.FormatStagedPath(written))
	assert.Equal(t, []model.Recipe{mustRecipe(t, f, "EO -> LG"), mustRecipe(t, f, "PG -> XO")}, written.Recipes)
}

func TestStagedPathRoundTrip(t *testing.T) {
	f := space.Exploration()

	inputs := []string{
		"EL -> EL =>",
		"EO -> LG => EO -> LG",
		"EP -> LX + G => PG -> XO | EO -> LG",
		"EP -> LX x2 + G => PG -> XO | EO -> LG",
		"EGOP -> GLOX => EO -> LG // PG -> XO",
		"EP -> LX x3 =>",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			sp, err := f.ParseStagedPath(input)
			require.NoError(t, err)
			assert.Equal(t, input, f.FormatStagedPath(sp))

			again, err := f.ParseStagedPath(f.FormatStagedPath(sp))
			require.NoError(t, err)
			assert.True(t, sp.Equal(again))
		})
	}
}

func TestPathRoundTrip(t *testing.T) {
	f := space.Exploration()

	input := "EP -> LX + O => EO -> LG | PG -> XO"
	p, err := f.ParsePath(input)
	require.NoError(t, err)
	assert.Len(t, p.Recipes, 2)
	assert.Equal(t, input, f.FormatPath(p))

	again, err := f.ParsePath(f.FormatPath(p))
	require.NoError(t, err)
	assert.True(t, p.Equal(again))
}

func TestParsePathRejectsParallelStages(t *testing.T) {
	_, err := space.Exploration().ParsePath("EGOP -> GLOX => EO -> LG // PG -> XO")
	var pe *model.ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, model.ParseIllFormatted, pe.Code)
}

func TestParsePathErrors(t *testing.T) {
	tests := []struct {
		input string
		code  model.ParseErrorCode
	}{
		{"EP -> LX", model.ParseIllFormatted},
		{"EP LX =>", model.ParseIllFormatted},
		{"EP -> LX x0 =>", model.ParseIllFormatted},
		{"EP -> LX x256 =>", model.ParseIllFormatted},
		{"EP -> LX + =>", model.ParseIllFormatted},
		{"EP -> LX => EO -> LG |", model.ParseIllFormatted},
		{"EP -> LX LX =>", model.ParseIllFormatted},
		{"EQ -> LX =>", model.ParseUnknownToken},
		{"EP -> LX + Q =>", model.ParseUnknownToken},
		{"E -> LX =>", model.ParsePreservation},
		{"EP -> LX => EP -> LX", model.ParseUnknownRecipe},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := space.Exploration().ParseStagedPath(tt.input)
			require.Error(t, err)

			var pe *model.ParseError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, tt.code, pe.Code)
		})
	}
}
