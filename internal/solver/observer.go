package solver

import (
	"time"

	"github.com/roach88/arcosphere/internal/model"
)

// TaskReport describes one completed (catalysts, count) search.
type TaskReport struct {
	Catalysts  model.Set
	Count      int
	Paths      int
	HalfRounds int
	States     int
	Duration   time.Duration
	Err        error
}

// Observer is notified as the exploration progresses.
//
// Calls are made from the goroutine running Solve, after each batch of tasks
// completed, so implementations need no locking of their own.
type Observer interface {
	TaskCompleted(report TaskReport)
	SizeExplored(size, tasks, found int)
}

// NopObserver ignores every notification.
type NopObserver struct{}

// TaskCompleted implements Observer.
func (NopObserver) TaskCompleted(TaskReport) {}

// SizeExplored implements Observer.
func (NopObserver) SizeExplored(int, int, int) {}
