package dispatch

import (
	"sync"

	"ptsched/internal/domain"
)

// Config wires a Dispatcher for one run.
type Config struct {
	// Slots is the number of parallel execution lanes, clamped to at least 1.
	Slots int
	// RestartEvery recycles a slot's worker after that many classes; 0 never.
	RestartEvery int
	// Workers creates the worker behind each slot.
	Workers Factory
	// Assign maps a class to a slot index. Called on the submitting
	// goroutine, never concurrently.
	Assign func(domain.ClassName) int
	// OnResult, when set, observes every delivered result. Called from slot
	// goroutines.
	OnResult func(domain.TestResult)
}

// Dispatcher routes assigned classes onto per-slot FIFO queues and executes
// the slots concurrently. Within a slot order is strict FIFO; across slots
// there is none.
type Dispatcher struct {
	slots    []*slot
	assign   func(domain.ClassName) int
	onResult func(domain.TestResult)

	mu           sync.Mutex
	started      bool
	draining     bool
	cancelled    bool
	results      []domain.TestResult
	undispatched []domain.ClassFailure
	wg           sync.WaitGroup
}

// New creates a Dispatcher with cfg.Slots independent lanes.
func New(cfg Config) *Dispatcher {
	n := cfg.Slots
	if n < 1 {
		n = 1
	}
	d := &Dispatcher{
		assign:   cfg.Assign,
		onResult: cfg.OnResult,
	}
	for i := 0; i < n; i++ {
		d.slots = append(d.slots, newSlot(i, NewRecycler(i, cfg.RestartEvery, cfg.Workers), d))
	}
	return d
}

// Start launches one goroutine per slot. Workers stay unstarted until their
// slot receives a class. A cancelled dispatcher does not start.
func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started || d.cancelled {
		return
	}
	d.started = true
	for _, s := range d.slots {
		d.wg.Add(1)
		go s.loop(&d.wg)
	}
}

// Submit assigns the class to a slot and enqueues it there. The assignment
// runs on the caller's goroutine; slot indexes outside the valid range are
// clamped so no class is dropped.
func (d *Dispatcher) Submit(class domain.ClassName) {
	d.mu.Lock()
	if !d.started || d.draining || d.cancelled {
		d.mu.Unlock()
		return
	}
	d.mu.Unlock()
	index := d.assign(class)
	if index < 0 {
		index = 0
	} else if index >= len(d.slots) {
		index = len(d.slots) - 1
	}
	d.slots[index].enqueue(class)
}

// Drain stops intake, lets every slot finish its queued classes and returns
// once all slots have completed. This is the only blocking join point.
func (d *Dispatcher) Drain() {
	d.mu.Lock()
	if !d.started || d.draining {
		d.mu.Unlock()
		return
	}
	d.draining = true
	d.mu.Unlock()
	for _, s := range d.slots {
		s.close()
	}
	d.wg.Wait()
}

// Cancel abandons queued-but-not-started classes in every slot. In-flight
// execution is not interrupted. Safe at any point of the lifecycle, including
// before Start and after Drain completed.
func (d *Dispatcher) Cancel() {
	d.mu.Lock()
	already := d.cancelled
	d.cancelled = true
	started := d.started
	d.mu.Unlock()
	if already || !started {
		return
	}
	for _, s := range d.slots {
		s.cancel()
	}
}

// Results returns the delivered results so far. Stable after Drain.
func (d *Dispatcher) Results() []domain.TestResult {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]domain.TestResult, len(d.results))
	copy(out, d.results)
	return out
}

// Undispatched returns the classes that were accepted but never handed to a
// worker, with the reason, attributed per class.
func (d *Dispatcher) Undispatched() []domain.ClassFailure {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]domain.ClassFailure, len(d.undispatched))
	copy(out, d.undispatched)
	return out
}

// Cancelled reports whether Cancel was observed.
func (d *Dispatcher) Cancelled() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cancelled
}

func (d *Dispatcher) deliver(result domain.TestResult) {
	d.mu.Lock()
	d.results = append(d.results, result)
	d.mu.Unlock()
	if d.onResult != nil {
		d.onResult(result)
	}
}

func (d *Dispatcher) abandon(slotIndex int, classes []domain.ClassName, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, class := range classes {
		d.undispatched = append(d.undispatched, domain.ClassFailure{Class: class, Slot: slotIndex, Err: err})
	}
}
