package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const polarFamily = "testdata/polar.cue"

func TestFamily_BuiltinText(t *testing.T) {
	stdout, _, err := execute(t, "family")
	require.NoError(t, err)

	assert.Contains(t, stdout, "Family: space-exploration\n")
	assert.Contains(t, stdout, "Arcospheres (8):\n")
	assert.Contains(t, stdout, "  E  Epsilon (ε) negative\n")
	assert.Contains(t, stdout, "  Z  Zeta (ζ) positive\n")
	assert.Contains(t, stdout, "Recipes (10):\n")
	assert.Contains(t, stdout, "   0  GOTZ -> ELPX  inversion\n")
	assert.Contains(t, stdout, "   2  EO -> LG  folding\n")
}

func TestFamily_CUEJSON(t *testing.T) {
	stdout, _, err := execute(t, "family", "--family", polarFamily, "--format", "json")
	require.NoError(t, err)

	var result FamilyResult
	resp := decodeResponse(t, stdout, &result)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "polar", result.Name)
	assert.True(t, result.Polarized)
	assert.Equal(t, []ArcosphereEntry{
		{Abbr: "a", Name: "anion", Glyph: "α", Polarity: "negative"},
		{Abbr: "c", Name: "cation", Glyph: "cation", Polarity: "positive"},
	}, result.Arcospheres)
	assert.Equal(t, []RecipeEntry{{Index: 0, Recipe: "cc -> aa", Kind: "inversion"}}, result.Recipes)
}

func TestFamily_FromConfig(t *testing.T) {
	stdout, _, err := execute(t, "family", "--config", "testdata/polar.yaml")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Family: polar\n")
	assert.Contains(t, stdout, "  a  anion (α) negative\n")
}

func TestFamily_NotFound(t *testing.T) {
	stdout, _, err := execute(t, "family", "--family", "testdata/missing.cue", "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	resp := decodeResponse(t, stdout, nil)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeNotFound, resp.Error.Code)
}

func TestFamily_Invalid(t *testing.T) {
	stdout, _, err := execute(t, "family", "--family", "testdata/broken.cue", "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	resp := decodeResponse(t, stdout, nil)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeArcospheres, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "single character")
}
