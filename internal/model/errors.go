package model

import (
	"errors"
	"fmt"
)

// ErrUnknownRecipe is returned when no recipe of the family matches an
// (input, output) pair.
var ErrUnknownRecipe = errors.New("unknown recipe")

// InvariantError reports a multiset arithmetic overflow or underflow.
//
// It is never caused by user input: it signals that a subset check or a
// bound was skipped upstream. Set arithmetic panics with it; the solver
// recovers it at task boundaries and returns it as an error.
type InvariantError struct {
	Op    string
	Token Token
	Left  int
	Right int
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("set invariant violated: %s of %d and %d on token %d", e.Op, e.Left, e.Right, e.Token)
}

// IsInvariantError reports whether err is an *InvariantError.
func IsInvariantError(err error) bool {
	var ie *InvariantError
	return errors.As(err, &ie)
}

// ParseErrorCode categorizes parse failures.
type ParseErrorCode string

const (
	// ParseIllFormatted indicates the text does not follow the grammar.
	ParseIllFormatted ParseErrorCode = "ILL_FORMATTED"

	// ParseUnknownToken indicates a rune which is not an abbreviation of the family.
	ParseUnknownToken ParseErrorCode = "UNKNOWN_TOKEN"

	// ParseUnknownRecipe indicates a well-formed recipe the family does not define.
	ParseUnknownRecipe ParseErrorCode = "UNKNOWN_RECIPE"

	// ParsePreservation indicates a recipe whose input and output sizes differ.
	ParsePreservation ParseErrorCode = "PRESERVATION"
)

// ParseError is returned by every Family.Parse* method.
type ParseError struct {
	Code    ParseErrorCode
	Input   string
	Message string
	// Rune is the offending rune for ParseUnknownToken.
	Rune rune
}

func (e *ParseError) Error() string {
	if e.Code == ParseUnknownToken {
		return fmt.Sprintf("%s: unknown arcosphere %q in %q", e.Code, e.Rune, e.Input)
	}
	return fmt.Sprintf("%s: %s in %q", e.Code, e.Message, e.Input)
}

// Is allows errors.Is(err, ErrUnknownRecipe) on unknown recipe parse errors.
func (e *ParseError) Is(target error) bool {
	return target == ErrUnknownRecipe && e.Code == ParseUnknownRecipe
}

// FamilyError is returned by NewFamily when a definition is inconsistent.
type FamilyError struct {
	Family  string
	Field   string
	Message string
}

func (e *FamilyError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("family %s: %s: %s", e.Family, e.Field, e.Message)
	}
	return fmt.Sprintf("family %s: %s", e.Family, e.Message)
}

// StagingError is returned by NewStagedPath when a recipe cannot be applied
// to the state reached by the recipes before it.
type StagingError struct {
	Index int
	State Set
	Input Set
}

func (e *StagingError) Error() string {
	return fmt.Sprintf("cannot stage recipe %d: input is not available", e.Index)
}
