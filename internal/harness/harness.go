package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/roach88/arcosphere/internal/compiler"
	"github.com/roach88/arcosphere/internal/config"
	"github.com/roach88/arcosphere/internal/executor"
	"github.com/roach88/arcosphere/internal/model"
	"github.com/roach88/arcosphere/internal/planner"
	"github.com/roach88/arcosphere/internal/solver"
	"github.com/roach88/arcosphere/internal/space"
	"github.com/roach88/arcosphere/internal/verifier"
)

// ValidOutput is the trace output of a successful verification.
const ValidOutput = "valid"

// Harness is the test execution engine.
// It runs every step of a scenario against one family.
type Harness struct {
	family   *model.Family
	solver   *solver.Solver
	verifier *verifier.Verifier
	planner  *planner.Planner
	logger   *slog.Logger
}

// Run executes a test scenario and returns the result.
//
// Step failures are recorded in the result; an error is only returned when
// the scenario itself cannot run (family or configuration invalid).
//
// Execution flow:
// 1. Load the family (CUE file, or the built-in Space Exploration family)
// 2. Resolve the solver bounds over the defaults
// 3. Execute steps in order, checking expectations
// 4. Return result with pass/fail, trace, and errors
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	family := space.Exploration()
	if scenario.Family != "" {
		var err error
		if family, err = compiler.LoadFamily(scenario.Family); err != nil {
			return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
		}
	}

	cfg, err := config.File{Solver: scenario.Config}.Resolve()
	if err != nil {
		return nil, fmt.Errorf("scenario %s: config: %w", scenario.Name, err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // Suppress logs in tests

	// Sequential execution keeps the trace independent of scheduling.
	s, err := solver.New(family, cfg.Solver,
		solver.WithExecutor(executor.NewSequential()),
		solver.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	h := &Harness{
		family:   family,
		solver:   s,
		verifier: verifier.New(family),
		planner:  planner.New(family),
		logger:   logger,
	}

	result := NewResult()
	for i, step := range scenario.Steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		event := h.executeStep(ctx, i, step, result)
		result.Trace = append(result.Trace, event)

		if step.Expect != nil {
			for _, msg := range checkExpect(event, *step.Expect) {
				result.AddError(fmt.Sprintf("steps[%d] %s: %s", i, event.Action, msg))
			}
		}
	}

	return result, nil
}

// executeStep runs one step and records its outcome as a trace event.
func (h *Harness) executeStep(ctx context.Context, index int, step Step, result *Result) TraceEvent {
	event := TraceEvent{Step: index, Action: step.Action()}

	switch event.Action {
	case ActionSolve:
		event.Input = step.Solve.Source + " -> " + step.Solve.Target
		paths, err := h.solve(ctx, step.Solve)
		if err != nil {
			event.Error = ErrorCode(err)
			h.logger.Debug("solve failed", "step", index, "error", err)
			break
		}
		for _, p := range paths {
			event.Output = append(event.Output, h.family.FormatStagedPath(p))
			// Every solution must replay.
			if err := h.verifier.VerifyStaged(p); err != nil {
				result.AddError(fmt.Sprintf("steps[%d] solve: result %q does not verify: %v",
					index, h.family.FormatStagedPath(p), err))
			}
		}

	case ActionVerify:
		event.Input = step.Verify
		sp, err := h.family.ParseStagedPath(step.Verify)
		if err == nil {
			err = h.verifier.VerifyStaged(sp)
		}
		if err != nil {
			event.Error = ErrorCode(err)
			break
		}
		event.Output = []string{ValidOutput}

	case ActionPlan:
		event.Input = step.Plan
		sp, err := h.family.ParseStagedPath(step.Plan)
		if err != nil {
			event.Error = ErrorCode(err)
			break
		}
		plan, err := h.planner.Plan(sp)
		if err != nil {
			event.Error = ErrorCode(err)
			break
		}
		event.Output = strings.Split(strings.TrimSuffix(plan.Format(h.family), "\n"), "\n")
	}

	return event
}

func (h *Harness) solve(ctx context.Context, step *SolveStep) ([]model.StagedPath, error) {
	source, err := h.family.ParseSet(step.Source)
	if err != nil {
		return nil, err
	}
	target, err := h.family.ParseSet(step.Target)
	if err != nil {
		return nil, err
	}
	return h.solver.Solve(ctx, source, target)
}
