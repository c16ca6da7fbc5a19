package compiler

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/arcosphere/internal/model"
)

//go:embed schema.cue
var schemaSource string

// CompileFamily turns a CUE value into a Family.
//
// The value is unified with the #Family schema first, so unknown fields and
// wrongly typed values are reported with their CUE position:
//
//	family: "demo"
//	arcospheres: [
//		{abbr: "a", name: "Anion", polarity: "negative"},
//		{abbr: "c", name: "Cation", polarity: "positive"},
//	]
//	recipes: ["c -> a", {input: "cc", output: "aa"}]
//
// Abbreviations, names and glyphs are NFC-normalized.
func CompileFamily(v cue.Value) (*model.Family, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	schema := v.Context().CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compiling family schema: %w", err)
	}

	v = schema.LookupPath(cue.ParsePath("#Family")).Unify(v)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	name, err := v.LookupPath(cue.ParsePath("family")).String()
	if err != nil {
		return nil, formatCUEError(err)
	}

	tokens, err := parseArcospheres(v.LookupPath(cue.ParsePath("arcospheres")))
	if err != nil {
		return nil, err
	}

	recipes, err := parseRecipes(v.LookupPath(cue.ParsePath("recipes")))
	if err != nil {
		return nil, err
	}

	family, err := model.NewFamily(normalize(name), tokens, recipes)
	if err != nil {
		return nil, &CompileError{Field: "family", Message: err.Error(), Pos: v.Pos()}
	}
	return family, nil
}

func parseArcospheres(v cue.Value) ([]model.Arcosphere, error) {
	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var tokens []model.Arcosphere
	for iter.Next() {
		item := iter.Value()

		abbr, err := stringField(item, "abbr")
		if err != nil {
			return nil, err
		}
		r, size := utf8.DecodeRuneInString(abbr)
		if size != len(abbr) {
			return nil, &CompileError{
				Field:   "arcospheres.abbr",
				Message: fmt.Sprintf("abbreviation %q must be a single character", abbr),
				Pos:     item.Pos(),
			}
		}

		name, err := stringField(item, "name")
		if err != nil {
			return nil, err
		}
		fancy, err := stringField(item, "fancy")
		if err != nil {
			return nil, err
		}
		polarityName, err := stringField(item, "polarity")
		if err != nil {
			return nil, err
		}
		polarity, err := model.ParsePolarity(polarityName)
		if err != nil {
			return nil, &CompileError{Field: "arcospheres.polarity", Message: err.Error(), Pos: item.Pos()}
		}

		tokens = append(tokens, model.Arcosphere{
			Abbr:     r,
			Name:     name,
			Fancy:    fancy,
			Polarity: polarity,
		})
	}
	return tokens, nil
}

func parseRecipes(v cue.Value) ([]model.RecipeSpec, error) {
	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var recipes []model.RecipeSpec
	for iter.Next() {
		item := iter.Value()

		// Short form: "EO -> LG"
		if text, err := item.String(); err == nil {
			in, out, ok := strings.Cut(text, "->")
			if !ok {
				return nil, &CompileError{
					Field:   "recipes",
					Message: fmt.Sprintf("recipe %q must read INPUT -> OUTPUT", text),
					Pos:     item.Pos(),
				}
			}
			recipes = append(recipes, model.RecipeSpec{
				Input:  normalize(strings.TrimSpace(in)),
				Output: normalize(strings.TrimSpace(out)),
			})
			continue
		}

		in, err := stringField(item, "input")
		if err != nil {
			return nil, err
		}
		out, err := stringField(item, "output")
		if err != nil {
			return nil, err
		}
		recipes = append(recipes, model.RecipeSpec{Input: in, Output: out})
	}
	return recipes, nil
}

// stringField reads a string field, NFC-normalized.
func stringField(v cue.Value, field string) (string, error) {
	s, err := v.LookupPath(cue.ParsePath(field)).String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return normalize(s), nil
}

func normalize(s string) string {
	return norm.NFC.String(s)
}

// LoadFamily compiles the family defined in a .cue file, or in the CUE
// package of a directory.
func LoadFamily(path string) (*model.Family, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("loading family: %w", err)
	}

	ctx := cuecontext.New()

	var v cue.Value
	if info.IsDir() {
		instances := load.Instances([]string{"."}, &load.Config{Dir: path})
		if len(instances) == 0 {
			return nil, fmt.Errorf("loading family: no CUE instance in %s", path)
		}
		if err := instances[0].Err; err != nil {
			return nil, formatCUEError(err)
		}
		v = ctx.BuildInstance(instances[0])
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading family: %w", err)
		}
		v = ctx.CompileBytes(data, cue.Filename(path))
	}

	return CompileFamily(v)
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
