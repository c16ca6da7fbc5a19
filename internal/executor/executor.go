// Package executor runs independent solver tasks, either sequentially or on
// a bounded pool of goroutines.
//
// Executors never reorder results: Outcome i always belongs to Task i, so
// callers may merge results without regard for completion order.
package executor

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/arcosphere/internal/model"
)

// Task is one independent search. Tasks must not share mutable state.
type Task func(ctx context.Context) ([]model.StagedPath, error)

// Outcome is the result of one Task.
type Outcome struct {
	Paths []model.StagedPath
	Err   error
}

// Executor runs a batch of tasks and returns their outcomes in submission order.
type Executor interface {
	Execute(ctx context.Context, tasks []Task) []Outcome
}

// PanicError wraps a value recovered from a panicking task.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("task panicked: %v", e.Value)
}

// Unwrap exposes the panic value when it is itself an error, so that
// errors.As can find eg. a *model.InvariantError.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// run executes task, converting a panic into an error.
func run(ctx context.Context, task Task) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = Outcome{Err: &PanicError{Value: r}}
		}
	}()

	if err := ctx.Err(); err != nil {
		return Outcome{Err: err}
	}
	paths, err := task(ctx)
	return Outcome{Paths: paths, Err: err}
}

// Sequential runs tasks one after the other on the calling goroutine.
type Sequential struct{}

// NewSequential returns a sequential executor.
func NewSequential() Sequential {
	return Sequential{}
}

// Execute implements Executor.
func (Sequential) Execute(ctx context.Context, tasks []Task) []Outcome {
	outcomes := make([]Outcome, len(tasks))
	for i, task := range tasks {
		outcomes[i] = run(ctx, task)
	}
	return outcomes
}

// Parallel runs tasks on at most Workers goroutines.
type Parallel struct {
	workers int
}

// NewParallel returns a parallel executor with the given number of workers.
// A non-positive count uses runtime.GOMAXPROCS(0).
func NewParallel(workers int) *Parallel {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Parallel{workers: workers}
}

// Workers returns the pool size.
func (p *Parallel) Workers() int {
	return p.workers
}

// Execute implements Executor.
//
// A failing task does not cancel its siblings: each task's error is
// reported in its own Outcome.
func (p *Parallel) Execute(ctx context.Context, tasks []Task) []Outcome {
	outcomes := make([]Outcome, len(tasks))

	var g errgroup.Group
	g.SetLimit(p.workers)
	for i, task := range tasks {
		g.Go(func() error {
			outcomes[i] = run(ctx, task)
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

// New returns a Parallel executor when workers is not 1, else Sequential.
func New(workers int) Executor {
	if workers == 1 {
		return Sequential{}
	}
	return NewParallel(workers)
}
