package harness

import (
	"errors"

	"github.com/roach88/arcosphere/internal/model"
	"github.com/roach88/arcosphere/internal/planner"
	"github.com/roach88/arcosphere/internal/solver"
	"github.com/roach88/arcosphere/internal/verifier"
)

// Step actions.
const (
	ActionSolve  = "solve"
	ActionVerify = "verify"
	ActionPlan   = "plan"
)

// TraceEvent records one executed step.
type TraceEvent struct {
	Step   int      `json:"step"`
	Action string   `json:"action"`
	Input  string   `json:"input"`
	Output []string `json:"output,omitempty"`
	Error  string   `json:"error,omitempty"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if all expect clauses match.
	Pass bool `json:"pass"`

	// Trace contains one event per step, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// ErrorCode returns the category code of err, or "ERROR" for errors which
// carry none. It returns "" for nil.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}

	var (
		re *solver.ResolutionError
		ve *verifier.VerificationError
		pe *planner.PlanningError
		me *model.ParseError
		se *model.StagingError
	)
	switch {
	case errors.As(err, &re):
		return string(re.Code)
	case errors.As(err, &ve):
		return string(ve.Code)
	case errors.As(err, &pe):
		return string(pe.Code)
	case errors.As(err, &me):
		return string(me.Code)
	case errors.As(err, &se):
		return "STAGING"
	default:
		return "ERROR"
	}
}
