package store

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a run does not exist.
var ErrNotFound = errors.New("not found")

// RunStatus is the outcome of a solve run.
type RunStatus string

const (
	// RunSolved means at least one path was found.
	RunSolved RunStatus = "solved"
	// RunFailed means the solver returned an error.
	RunFailed RunStatus = "failed"
)

// Run is an archived solve request and its outcome.
type Run struct {
	ID          string
	Seq         int64
	RequestHash string
	Family      string
	Source      string
	Target      string
	// Config is the JSON form of the solver configuration.
	Config       string
	Status       RunStatus
	ErrorCode    string
	ErrorMessage string
	Duration     time.Duration
	Results      []Result
}

// Result is one staged path of a run, in display form.
type Result struct {
	Path    string
	Stages  int
	Recipes int
}

// Verification is an archived verify request.
type Verification struct {
	Seq       int64
	Family    string
	Path      string
	Valid     bool
	ErrorCode string
	Message   string
}
