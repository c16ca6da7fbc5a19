package harness

import (
	"fmt"
	"slices"
	"strings"
)

// checkExpect compares a step's outcome against its expectations and
// returns one message per mismatch.
func checkExpect(event TraceEvent, expect Expect) []string {
	var failures []string

	if event.Error != expect.Error {
		switch {
		case expect.Error == "":
			failures = append(failures, fmt.Sprintf("expected success, got %s", event.Error))
		case event.Error == "":
			failures = append(failures, fmt.Sprintf("expected %s, got success", expect.Error))
		default:
			failures = append(failures, fmt.Sprintf("expected %s, got %s", expect.Error, event.Error))
		}
		return failures
	}

	if len(expect.Paths) > 0 && !slices.Equal(expect.Paths, event.Output) {
		failures = append(failures, fmt.Sprintf("expected paths\n    %s\ngot\n    %s",
			strings.Join(expect.Paths, "\n    "), strings.Join(event.Output, "\n    ")))
	}

	if expect.Count != nil && *expect.Count != len(event.Output) {
		failures = append(failures, fmt.Sprintf("expected %d paths, got %d", *expect.Count, len(event.Output)))
	}

	if len(expect.Plan) > 0 && !slices.Equal(expect.Plan, event.Output) {
		failures = append(failures, fmt.Sprintf("expected plan\n    %s\ngot\n    %s",
			strings.Join(expect.Plan, "\n    "), strings.Join(event.Output, "\n    ")))
	}

	return failures
}
