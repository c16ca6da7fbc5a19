// Package planner describes how arcospheres flow through the stages of a
// staged path.
//
// For each stage the plan lists the remainder, the arcospheres available
// entering the stage and not consumed by it, and the extracted arcospheres,
// those already set aside as part of the final target or catalysts. The sum
// of remainder, stage input and extracted has the same size at every stage.
package planner

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/arcosphere/internal/model"
)

// ErrorCode categorizes planning failures.
type ErrorCode string

const (
	// ErrCodeInvalidStages indicates boundaries which do not partition the recipes.
	ErrCodeInvalidStages ErrorCode = "INVALID_STAGES"

	// ErrCodeFailedApplication indicates a stage whose input is not available.
	ErrCodeFailedApplication ErrorCode = "FAILED_APPLICATION"

	// ErrCodeFailedTarget indicates the final state does not hold count·target.
	ErrCodeFailedTarget ErrorCode = "FAILED_TARGET"

	// ErrCodeFailedCatalysts indicates the leftover is not exactly the catalysts.
	ErrCodeFailedCatalysts ErrorCode = "FAILED_CATALYSTS"

	// ErrCodeOverflow indicates more than 255 arcospheres of one kind.
	ErrCodeOverflow ErrorCode = "OVERFLOW"
)

// PlanningError reports why a staged path cannot be planned.
type PlanningError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Index is the failing stage for FAILED_APPLICATION.
	Index int

	// Available is the state entering the failing stage, the final state for
	// FAILED_TARGET, or the leftover for FAILED_CATALYSTS.
	Available model.Set

	// Required is the input of the failing stage.
	Required model.Set

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *PlanningError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsPlanningError returns true if err is a *PlanningError with code.
func IsPlanningError(err error, code ErrorCode) bool {
	var pe *PlanningError
	if errors.As(err, &pe) {
		return pe.Code == code
	}
	return false
}

// StageDescription is the flow of arcospheres around one stage.
type StageDescription struct {
	Remainder model.Set
	Extracted model.Set
}

// Plan pairs a staged path with the description of each of its stages.
type Plan struct {
	Path   model.StagedPath
	Stages []StageDescription
}

// Width returns the number of arcospheres in flight at every stage: the
// remainder, input and extracted of any stage add up to it.
func (p *Plan) Width() int {
	return p.Path.Start().Len()
}

// Format renders one line per stage: "[remainder] + [input] + [extracted] | recipes".
func (p *Plan) Format(f *model.Family) string {
	var b strings.Builder
	for i, stage := range p.Path.Stages() {
		desc := p.Stages[i]
		fmt.Fprintf(&b, "[%s] + [%s] + [%s] | %s\n",
			f.FormatSet(desc.Remainder),
			f.FormatSet(stage.Input()),
			f.FormatSet(desc.Extracted),
			f.FormatStage(stage))
	}
	return b.String()
}

// Planner plans staged paths of one family.
type Planner struct {
	family *model.Family
}

// New returns a planner for family.
func New(family *model.Family) *Planner {
	return &Planner{family: family}
}

// Plan validates staged and computes its stage descriptions.
func (p *Planner) Plan(staged model.StagedPath) (*Plan, error) {
	if !staged.ValidBoundaries() {
		return nil, &PlanningError{
			Code:    ErrCodeInvalidStages,
			Message: fmt.Sprintf("boundaries %v do not partition %d recipes", staged.Boundaries, len(staged.Recipes)),
		}
	}

	remainders, err := p.remainders(staged)
	if err != nil {
		return nil, err
	}

	extracted := extract(remainders, staged.Goal())

	stages := make([]StageDescription, len(remainders))
	for i := range remainders {
		stages[i] = StageDescription{Remainder: remainders[i], Extracted: extracted[i]}
	}
	return &Plan{Path: staged, Stages: stages}, nil
}

// remainders replays the stages, recording what each stage leaves untouched.
func (p *Planner) remainders(staged model.StagedPath) ([]model.Set, error) {
	stages := staged.Stages()
	remainders := make([]model.Set, 0, len(stages))

	count := max(staged.Count, 1)
	state, err := staged.Source.CheckedScale(count)
	if err == nil {
		state, err = state.CheckedAdd(staged.Catalysts)
	}
	if err != nil {
		return nil, &PlanningError{Code: ErrCodeOverflow, Message: err.Error()}
	}

	for i, stage := range stages {
		input := stage.Input()
		if !input.IsSubsetOf(state) {
			return nil, &PlanningError{
				Code:      ErrCodeFailedApplication,
				Index:     i,
				Available: state,
				Required:  input,
				Message:   fmt.Sprintf("failed to apply stage %d on %s: required %s",
					i, p.family.FormatSet(state), p.family.FormatSet(input)),
			}
		}
		remainders = append(remainders, state.Sub(input))
		if state, err = state.Sub(input).CheckedAdd(stage.Output()); err != nil {
			return nil, &PlanningError{Code: ErrCodeOverflow, Index: i, Message: err.Error()}
		}
	}

	target, err := staged.Target.CheckedScale(count)
	if err != nil {
		return nil, &PlanningError{Code: ErrCodeOverflow, Message: err.Error()}
	}
	if !target.IsSubsetOf(state) {
		return nil, &PlanningError{
			Code:      ErrCodeFailedTarget,
			Index:     len(stages),
			Available: state,
			Message:   fmt.Sprintf("result %s does not contain target %s", p.family.FormatSet(state), p.family.FormatSet(target)),
		}
	}
	if leftover := state.Sub(target); leftover != staged.Catalysts {
		return nil, &PlanningError{
			Code:      ErrCodeFailedCatalysts,
			Index:     len(stages),
			Available: leftover,
			Message:   fmt.Sprintf("remainder %s is not catalysts %s", p.family.FormatSet(leftover), p.family.FormatSet(staged.Catalysts)),
		}
	}

	return remainders, nil
}

// extract assigns every arcosphere of output to the stage right after the
// last stage whose remainder lacks it, and moves it from remainder to
// extracted from that stage on. remainders is updated in place.
func extract(remainders []model.Set, output model.Set) []model.Set {
	extracted := make([]model.Set, len(remainders))

	for _, token := range output.Tokens() {
		earliest := 0
		for i := len(remainders) - 1; i >= 0; i-- {
			if !remainders[i].Contains(token) {
				earliest = i + 1
				break
			}
		}
		for i := earliest; i < len(remainders); i++ {
			extracted[i].Insert(token)
			remainders[i].Remove(token)
		}
	}

	return extracted
}
