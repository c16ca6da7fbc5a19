// Package harness runs conformance scenarios against the solver, the
// verifier and the planner.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	family: families/polar.cue   # optional, defaults to Space Exploration
//	config:                      # optional solver overrides
//	  maximum_catalysts: 1
//	steps:
//	  - solve: {source: EP, target: LX}
//	    expect:
//	      paths:
//	        - "EP -> LX + G => PG -> XO | EO -> LG"
//	  - verify: "EO -> LG => PG -> XO"
//	    expect:
//	      error: FAILED_APPLICATION
//	  - plan: "EP -> LX + G => PG -> XO | EO -> LG"
//	    expect:
//	      plan:
//	        - "[E] + [GP] + [] | PG -> XO"
//	        - "[] + [EO] + [X] | EO -> LG"
//
// Each step runs exactly one action. Expectations are optional: a step
// without them only contributes to the trace.
//
// # Golden Files
//
// RunWithGolden compares the trace of a scenario against
// testdata/golden/{name}.golden. Regenerate with:
//
//	go test ./internal/harness -update
package harness
