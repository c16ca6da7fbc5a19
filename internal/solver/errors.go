package solver

import (
	"errors"
	"fmt"
)

// ResolutionError reports why Solve found no path.
//
// Definitive errors mean no configuration can ever succeed for the request.
// Retryable errors mean the configured bounds were too tight: widening the
// catalysts, the count or the number of recipes may help.
type ResolutionError struct {
	// Code identifies the error category.
	Code ResolutionErrorCode

	// Message is a human-readable description.
	Message string
}

// ResolutionErrorCode categorizes resolution errors.
type ResolutionErrorCode string

const (
	// ErrCodePreservation indicates source and target differ in size.
	ErrCodePreservation ResolutionErrorCode = "PRESERVATION"

	// ErrCodeNotWithInversions indicates no inversion goes in the needed direction.
	ErrCodeNotWithInversions ResolutionErrorCode = "NOT_WITH_INVERSIONS"

	// ErrCodeNotWithFoldings indicates the family has no folding at all.
	ErrCodeNotWithFoldings ResolutionErrorCode = "NOT_WITH_FOLDINGS"

	// ErrCodeOutsideCatalysts indicates no path exists with the explored catalysts.
	ErrCodeOutsideCatalysts ResolutionErrorCode = "OUTSIDE_CATALYSTS"

	// ErrCodeOutsideCount indicates no repetition count within bounds balances the inversions.
	ErrCodeOutsideCount ResolutionErrorCode = "OUTSIDE_COUNT"

	// ErrCodeOutsideRecipes indicates the search ran out of recipe budget.
	ErrCodeOutsideRecipes ResolutionErrorCode = "OUTSIDE_RECIPES"
)

// Error implements the error interface.
func (e *ResolutionError) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Definitive reports whether retrying with wider bounds cannot help.
func (e *ResolutionError) Definitive() bool {
	switch e.Code {
	case ErrCodePreservation, ErrCodeNotWithInversions, ErrCodeNotWithFoldings:
		return true
	default:
		return false
	}
}

// rank orders retryable errors from least to most specific.
func (e *ResolutionError) rank() int {
	switch e.Code {
	case ErrCodeOutsideCatalysts:
		return 1
	case ErrCodeOutsideCount:
		return 2
	case ErrCodeOutsideRecipes:
		return 3
	default:
		return 0
	}
}

func newResolutionError(code ResolutionErrorCode, format string, args ...any) *ResolutionError {
	return &ResolutionError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// IsDefinitive returns true if err is a definitive resolution error.
// Uses errors.As to handle wrapped errors.
func IsDefinitive(err error) bool {
	var re *ResolutionError
	if errors.As(err, &re) {
		return re.Definitive()
	}
	return false
}

// IsRetryable returns true if err is a resolution error which wider bounds may fix.
// Uses errors.As to handle wrapped errors.
func IsRetryable(err error) bool {
	var re *ResolutionError
	if errors.As(err, &re) {
		return !re.Definitive()
	}
	return false
}

// HasCode returns true if err is a resolution error with the given code.
func HasCode(err error, code ResolutionErrorCode) bool {
	var re *ResolutionError
	if errors.As(err, &re) {
		return re.Code == code
	}
	return false
}
