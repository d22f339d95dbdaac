package dispatch

import (
	"fmt"

	"ptsched/internal/domain"
)

// Recycler wraps one slot's worker and restarts it after restartEvery
// executed classes, bounding resource growth in long-lived workers. Zero
// disables recycling. Worker creation is lazy: nothing starts until the first
// class arrives.
type Recycler struct {
	slot         int
	restartEvery int
	factory      Factory
	current      Worker
	executed     int
}

// NewRecycler creates a recycling wrapper for one slot.
func NewRecycler(slot, restartEvery int, factory Factory) *Recycler {
	return &Recycler{
		slot:         slot,
		restartEvery: restartEvery,
		factory:      factory,
	}
}

// Execute runs one class through the current worker, creating a fresh one
// first when none is live. The returned error reports a worker that could not
// be started; the class was then never executed.
func (r *Recycler) Execute(class domain.ClassName) (domain.TestResult, error) {
	if r.current == nil {
		w, err := r.factory(r.slot)
		if err != nil {
			return domain.TestResult{}, fmt.Errorf("start worker for slot %d: %w", r.slot, err)
		}
		r.current = w
		r.executed = 0
	}
	result := r.current.Execute(class)
	r.executed++
	if r.restartEvery > 0 && r.executed >= r.restartEvery {
		// tear down now; the successor is created lazily by the next class
		r.Stop()
	}
	return result, nil
}

// Stop tears down the current worker, if any.
func (r *Recycler) Stop() {
	if r.current == nil {
		return
	}
	_ = r.current.Stop()
	r.current = nil
	r.executed = 0
}
