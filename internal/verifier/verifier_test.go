package verifier

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/arcosphere/internal/model"
	"github.com/roach88/arcosphere/internal/space"
)

func parseStaged(t *testing.T, text string) model.StagedPath {
	t.Helper()
	sp, err := space.Exploration().ParseStagedPath(text)
	require.NoError(t, err)
	return sp
}

func parsePath(t *testing.T, text string) model.Path {
	t.Helper()
	p, err := space.Exploration().ParsePath(text)
	require.NoError(t, err)
	return p
}

func requireCode(t *testing.T, err error, code ErrorCode) *VerificationError {
	t.Helper()
	require.Error(t, err)
	var ve *VerificationError
	require.ErrorAs(t, err, &ve)
	require.Equal(t, code, ve.Code, ve.Error())
	return ve
}

func TestVerifyValidPaths(t *testing.T) {
	v := New(space.Exploration())

	for _, text := range []string{
		"EL -> EL =>",
		"EO -> LG => EO -> LG",
		"EP -> LX + G => PG -> XO | EO -> LG",
		"EP -> LX + O => EO -> LG | PG -> XO",
	} {
		t.Run(text, func(t *testing.T) {
			assert.NoError(t, v.VerifyPath(parsePath(t, text)))
			assert.NoError(t, v.VerifyStaged(parseStaged(t, text)))
		})
	}
}

func TestVerifyParallelStage(t *testing.T) {
	v := New(space.Exploration())
	sp := parseStaged(t, "EGOP -> GLOX => EO -> LG // PG -> XO")

	assert.NoError(t, v.VerifyStaged(sp))
	assert.NoError(t, v.VerifyPath(sp.Path))
}

func TestVerifyFailedApplicationNamesStep(t *testing.T) {
	v := New(space.Exploration())

	err := v.VerifyPath(parsePath(t, "EP -> LX + O => EO -> LG | EO -> LG"))
	ve := requireCode(t, err, ErrCodeFailedApplication)
	assert.Equal(t, 1, ve.Index)
	assert.Equal(t, "GLP", space.Exploration().FormatSet(ve.State))
	assert.Equal(t, "EO", space.Exploration().FormatSet(ve.Required))
	assert.Contains(t, ve.Error(), "recipe 1")
}

func TestVerifyFailedApplicationAtFirstStep(t *testing.T) {
	v := New(space.Exploration())

	err := v.VerifyPath(parsePath(t, "EP -> LX + G => EO -> LG | PG -> XO"))
	ve := requireCode(t, err, ErrCodeFailedApplication)
	assert.Equal(t, 0, ve.Index)
}

func TestVerifyStagedRejectsSiblingDependency(t *testing.T) {
	v := New(space.Exploration())

	sp := parseStaged(t, "EP -> LX + G => PG -> XO // EO -> LG")
	assert.NoError(t, v.VerifyPath(parsePath(t, "EP -> LX + G => PG -> XO | EO -> LG")), "valid when applied one by one")

	ve := requireCode(t, v.VerifyStaged(sp), ErrCodeFailedApplication)
	assert.Equal(t, 0, ve.Index)
	assert.Contains(t, ve.Error(), "stage 0")
}

func TestVerifyFailedTarget(t *testing.T) {
	v := New(space.Exploration())

	ve := requireCode(t, v.VerifyPath(parsePath(t, "EP -> LX + G => PG -> XO")), ErrCodeFailedTarget)
	assert.Equal(t, "EOX", space.Exploration().FormatSet(ve.State))
}

func TestVerifyFailedCatalysts(t *testing.T) {
	v := New(space.Exploration())

	ve := requireCode(t, v.VerifyPath(parsePath(t, "EE -> LG + O => EO -> LG")), ErrCodeFailedCatalysts)
	assert.Equal(t, "E", space.Exploration().FormatSet(ve.State))
}

func TestVerifyUnknownRecipe(t *testing.T) {
	f := space.Exploration()
	v := New(f)

	p := parsePath(t, "EP -> LX + G => PG -> XO | EO -> LG")
	forged := p.Recipes[1]
	forged.Output = forged.Input
	p.Recipes[1] = forged

	ve := requireCode(t, v.VerifyPath(p), ErrCodeUnknownRecipe)
	assert.Equal(t, 1, ve.Index)
}

func TestVerifyInvalidBoundaries(t *testing.T) {
	v := New(space.Exploration())

	sp := parseStaged(t, "EP -> LX + G => PG -> XO | EO -> LG")
	sp.Boundaries = []int{0}
	requireCode(t, v.VerifyStaged(sp), ErrCodeInvalidStages)

	sp.Boundaries = []int{2}
	requireCode(t, v.VerifyStaged(sp), ErrCodeInvalidStages)
}

func TestVerifyOverflow(t *testing.T) {
	f := space.Exploration()
	v := New(f)

	source, err := f.ParseSet("E")
	require.NoError(t, err)
	target, err := f.ParseSet("E")
	require.NoError(t, err)
	catalysts, err := f.ParseSet(strings.Repeat("E", 60))
	require.NoError(t, err)

	p := model.Path{Source: source, Target: target, Count: 200, Catalysts: catalysts}
	requireCode(t, v.VerifyPath(p), ErrCodeOverflow)
}

func TestIsVerificationError(t *testing.T) {
	v := New(space.Exploration())
	err := v.VerifyPath(parsePath(t, "EP -> LX + G => PG -> XO"))

	assert.True(t, IsVerificationError(err, ErrCodeFailedTarget))
	assert.False(t, IsVerificationError(err, ErrCodeFailedCatalysts))
	assert.False(t, IsVerificationError(nil, ErrCodeFailedTarget))
}
