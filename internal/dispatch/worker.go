package dispatch

import "ptsched/internal/domain"

// Worker executes test classes one at a time. Implementations typically wrap
// an external process; Stop releases whatever the worker holds.
type Worker interface {
	Execute(class domain.ClassName) domain.TestResult
	Stop() error
}

// Factory creates the worker for one slot. It is called lazily: a slot that
// never receives a class never creates a worker, and recycling calls it again
// mid-run after the previous instance was stopped.
type Factory func(slot int) (Worker, error)
