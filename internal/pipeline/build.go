package pipeline

import (
	"ptsched/internal/dispatch"
	"ptsched/internal/domain"
	"ptsched/internal/schedule"
)

// Options configure one scheduling pipeline for one run.
type Options struct {
	// Pattern filters submitted classes by file name; empty keeps all.
	Pattern string
	// Failed is the set of previously failed classes, run first.
	Failed map[domain.ClassName]struct{}
	// Strategy builds the sort-and-assign strategy. Nil, or a factory
	// producing nil, falls back to round-robin.
	Strategy schedule.Factory
	// Slots is the effective parallelism, clamped to at least 1.
	Slots int
	// RestartEvery recycles a slot's worker after that many classes; 0 never.
	RestartEvery int
	// Workers creates the worker behind each slot.
	Workers dispatch.Factory
	// OnResult, when set, observes every delivered result.
	OnResult func(domain.TestResult)
}

// Pipeline is the assembled stage chain together with the terminal
// dispatcher's accessors. Constructed once per run and discarded afterwards.
type Pipeline struct {
	head       Stage
	dispatcher *dispatch.Dispatcher
	strategy   schedule.Strategy
}

// Build composes the fixed chain: pattern filter → failed-first prioritizer
// (strategy sort at drain) → parallel dispatcher (strategy assignment) →
// per-slot recycling workers. A missing or unusable strategy degrades to
// round-robin and never fails the run; a sequential run (one slot) also runs
// round-robin since sorting and balancing buy nothing there.
func Build(opts Options) *Pipeline {
	slots := opts.Slots
	if slots < 1 {
		slots = 1
	}

	var strategy schedule.Strategy
	if opts.Strategy != nil {
		strategy = opts.Strategy()
	}
	if strategy == nil || (slots == 1 && !schedule.IsFallback(strategy)) {
		strategy = schedule.NewRoundRobin()
	}
	strategy.Configure(slots)

	dispatcher := dispatch.New(dispatch.Config{
		Slots:        slots,
		RestartEvery: opts.RestartEvery,
		Workers:      opts.Workers,
		Assign:       strategy.Assign,
		OnResult:     opts.OnResult,
	})

	head := NewPatternFilter(opts.Pattern, NewFailedFirst(opts.Failed, strategy, dispatcher))
	return &Pipeline{
		head:       head,
		dispatcher: dispatcher,
		strategy:   strategy,
	}
}

// Start propagates the run start through every stage.
func (p *Pipeline) Start() { p.head.Start() }

// Submit feeds one discovered class into the chain.
func (p *Pipeline) Submit(class domain.ClassName) { p.head.Submit(class) }

// Drain completes the run: buffered classes are sorted, assigned, dispatched
// and executed; returns once every slot has finished.
func (p *Pipeline) Drain() { p.head.Drain() }

// Cancel abandons buffered and queued work. Safe at any time.
func (p *Pipeline) Cancel() { p.head.Cancel() }

// Results returns the delivered results. Stable after Drain.
func (p *Pipeline) Results() []domain.TestResult { return p.dispatcher.Results() }

// Undispatched returns classes that were accepted but never reached a worker.
func (p *Pipeline) Undispatched() []domain.ClassFailure { return p.dispatcher.Undispatched() }

// Cancelled reports whether the run was cancelled.
func (p *Pipeline) Cancelled() bool { return p.dispatcher.Cancelled() }

// UsingFallback reports whether the run degraded to plain round-robin.
func (p *Pipeline) UsingFallback() bool { return schedule.IsFallback(p.strategy) }
