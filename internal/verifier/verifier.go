// Package verifier replays paths to check that they are legitimate.
//
// A path is legitimate if every recipe belongs to the family, every recipe
// (or, for a staged path, every stage) only consumes what is available, and
// the final state is exactly count·target + catalysts.
package verifier

import (
	"errors"
	"fmt"

	"github.com/roach88/arcosphere/internal/model"
)

// ErrorCode categorizes verification failures.
type ErrorCode string

const (
	// ErrCodeUnknownRecipe indicates a recipe the family does not define.
	ErrCodeUnknownRecipe ErrorCode = "UNKNOWN_RECIPE"

	// ErrCodeInvalidStages indicates boundaries which do not partition the recipes.
	ErrCodeInvalidStages ErrorCode = "INVALID_STAGES"

	// ErrCodeFailedApplication indicates a step whose input is not available.
	ErrCodeFailedApplication ErrorCode = "FAILED_APPLICATION"

	// ErrCodeFailedTarget indicates the final state does not hold count·target.
	ErrCodeFailedTarget ErrorCode = "FAILED_TARGET"

	// ErrCodeFailedCatalysts indicates the final state minus count·target is
	// not exactly the catalysts.
	ErrCodeFailedCatalysts ErrorCode = "FAILED_CATALYSTS"

	// ErrCodeOverflow indicates more than 255 arcospheres of one kind.
	ErrCodeOverflow ErrorCode = "OVERFLOW"
)

// VerificationError localizes the first violation found.
type VerificationError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Index is the recipe index for unstaged paths and UNKNOWN_RECIPE,
	// the stage index for staged paths.
	Index int

	// State is the state the step was applied to for FAILED_APPLICATION,
	// the final state for FAILED_TARGET, and the leftover for FAILED_CATALYSTS.
	State model.Set

	// Required is the input of the failed step.
	Required model.Set

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *VerificationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsVerificationError returns true if err is a *VerificationError with code.
// Uses errors.As to handle wrapped errors.
func IsVerificationError(err error, code ErrorCode) bool {
	var ve *VerificationError
	if errors.As(err, &ve) {
		return ve.Code == code
	}
	return false
}

// Verifier checks paths of one family.
type Verifier struct {
	family *model.Family
}

// New returns a verifier for family.
func New(family *model.Family) *Verifier {
	return &Verifier{family: family}
}

// step is one replay unit: a recipe, or the sum of a stage.
type step struct {
	input, output model.Set
}

// VerifyPath replays the recipes of p one by one.
func (v *Verifier) VerifyPath(p model.Path) error {
	if err := v.checkMembership(p.Recipes); err != nil {
		return err
	}

	steps := make([]step, len(p.Recipes))
	for i, r := range p.Recipes {
		steps[i] = step{input: r.Input, output: r.Output}
	}
	return v.replay(p, steps, "recipe")
}

// VerifyStaged replays sp stage by stage: each stage consumes its combined
// input from the state left by the previous stage, so a recipe may not use
// the output of another recipe of the same stage.
func (v *Verifier) VerifyStaged(sp model.StagedPath) error {
	if err := v.checkMembership(sp.Recipes); err != nil {
		return err
	}
	if err := checkBoundaries(sp); err != nil {
		return err
	}

	stages := sp.Stages()
	steps := make([]step, len(stages))
	for i, stage := range stages {
		steps[i] = step{input: stage.Input(), output: stage.Output()}
	}
	return v.replay(sp.Path, steps, "stage")
}

func (v *Verifier) checkMembership(recipes []model.Recipe) error {
	for i, r := range recipes {
		if !v.family.Contains(r) {
			return &VerificationError{
				Code:    ErrCodeUnknownRecipe,
				Index:   i,
				Message: fmt.Sprintf("recipe %d (%s) is not a recipe of %s", i, v.family.FormatRecipe(r), v.family.Name()),
			}
		}
	}
	return nil
}

func checkBoundaries(sp model.StagedPath) error {
	if sp.ValidBoundaries() {
		return nil
	}
	return &VerificationError{
		Code:    ErrCodeInvalidStages,
		Message: fmt.Sprintf("boundaries %v do not partition %d recipes", sp.Boundaries, len(sp.Recipes)),
	}
}

func (v *Verifier) replay(p model.Path, steps []step, unit string) error {
	count := max(p.Count, 1)
	start, err := scaleAdd(p.Source, count, p.Catalysts)
	if err != nil {
		return v.overflow(err)
	}
	goal, err := p.Target.CheckedScale(count)
	if err != nil {
		return v.overflow(err)
	}

	state := start
	for i, st := range steps {
		if !st.input.IsSubsetOf(state) {
			return &VerificationError{
				Code:     ErrCodeFailedApplication,
				Index:    i,
				State:    state,
				Required: st.input,
				Message:  fmt.Sprintf("failed to apply %s %d on %s: required %s",
					unit, i, v.family.FormatSet(state), v.family.FormatSet(st.input)),
			}
		}
		if state, err = state.Sub(st.input).CheckedAdd(st.output); err != nil {
			return v.overflow(err)
		}
	}

	if !goal.IsSubsetOf(state) {
		return &VerificationError{
			Code:    ErrCodeFailedTarget,
			Index:   len(steps),
			State:   state,
			Message: fmt.Sprintf("result %s does not contain target %s", v.family.FormatSet(state), v.family.FormatSet(goal)),
		}
	}

	if remainder := state.Sub(goal); remainder != p.Catalysts {
		return &VerificationError{
			Code:    ErrCodeFailedCatalysts,
			Index:   len(steps),
			State:   remainder,
			Message: fmt.Sprintf("remainder %s is not catalysts %s", v.family.FormatSet(remainder), v.family.FormatSet(p.Catalysts)),
		}
	}

	return nil
}

func (v *Verifier) overflow(err error) error {
	return &VerificationError{Code: ErrCodeOverflow, Message: err.Error()}
}

func scaleAdd(s model.Set, n int, extra model.Set) (model.Set, error) {
	scaled, err := s.CheckedScale(n)
	if err != nil {
		return model.Set{}, err
	}
	return scaled.CheckedAdd(extra)
}
