package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/arcosphere/internal/config"
)

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Family is an optional CUE family definition.
	// Paths are relative to the scenario file location.
	Family string `yaml:"family,omitempty"`

	// Config overrides the default solver bounds.
	Config config.SolverSection `yaml:"config,omitempty"`

	// Steps run in order.
	Steps []Step `yaml:"steps"`
}

// Step runs one of solve, verify or plan.
type Step struct {
	Solve  *SolveStep `yaml:"solve,omitempty"`
	Verify string     `yaml:"verify,omitempty"`
	Plan   string     `yaml:"plan,omitempty"`

	// Expect is validated against the step's outcome when present.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Action returns the action the step runs.
func (s Step) Action() string {
	switch {
	case s.Solve != nil:
		return ActionSolve
	case s.Verify != "":
		return ActionVerify
	default:
		return ActionPlan
	}
}

// SolveStep is a solve request.
type SolveStep struct {
	Source string `yaml:"source"`
	Target string `yaml:"target"`
}

// Expect specifies the expected outcome of a step.
type Expect struct {
	// Paths are the exact solve results, in order.
	Paths []string `yaml:"paths,omitempty"`

	// Count is the expected number of solve results.
	Count *int `yaml:"count,omitempty"`

	// Plan is the expected plan, one line per stage.
	Plan []string `yaml:"plan,omitempty"`

	// Error is the expected error code. Empty means success is expected.
	Error string `yaml:"error,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
//
// The family path is resolved relative to the scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Parse YAML with strict field validation (catches typos like "step:" vs "steps:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Family != "" && !filepath.IsAbs(scenario.Family) {
		scenario.Family = filepath.Join(filepath.Dir(path), scenario.Family)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	if s.Family != "" {
		if _, err := os.Stat(s.Family); os.IsNotExist(err) {
			return fmt.Errorf("family file not found: %s", s.Family)
		}
	}

	for i, step := range s.Steps {
		if err := validateStep(i, step); err != nil {
			return err
		}
	}

	return nil
}

// validateStep checks that a step runs exactly one action and that its
// expectations fit that action.
func validateStep(index int, step Step) error {
	actions := 0
	if step.Solve != nil {
		actions++
	}
	if step.Verify != "" {
		actions++
	}
	if step.Plan != "" {
		actions++
	}
	if actions != 1 {
		return fmt.Errorf("steps[%d]: exactly one of solve, verify or plan is required", index)
	}

	if step.Solve != nil && step.Solve.Source == "" && step.Solve.Target == "" {
		return fmt.Errorf("steps[%d].solve: source or target is required", index)
	}

	if step.Expect == nil {
		return nil
	}

	e := step.Expect
	if e.Error != "" && (len(e.Paths) > 0 || e.Count != nil || len(e.Plan) > 0) {
		return fmt.Errorf("steps[%d].expect: error excludes paths, count and plan", index)
	}
	if step.Action() != ActionSolve && (len(e.Paths) > 0 || e.Count != nil) {
		return fmt.Errorf("steps[%d].expect: paths and count are only valid for solve", index)
	}
	if step.Action() != ActionPlan && len(e.Plan) > 0 {
		return fmt.Errorf("steps[%d].expect: plan is only valid for plan", index)
	}
	return nil
}
