package schedule

import (
	"time"

	"ptsched/internal/domain"
)

// Sorter reports whether class a should be dispatched before class b when a
// buffered batch is pre-sorted.
type Sorter func(a, b domain.ClassName) bool

// Strategy decides how a batch of test classes is ordered and which worker
// slot each class runs on. Implementations own their per-run state; a fresh
// StartRun makes a strategy reusable across runs.
type Strategy interface {
	// Configure sets the number of worker slots, clamped to at least 1, and
	// (re)initializes any per-slot state.
	Configure(slots int)

	// StartRun resets per-run state (cursors, slot loads). Called once per
	// run, before any Assign.
	StartRun()

	// Sorter returns the batch pre-sort order. ok is false when no pre-sort
	// is wanted; submission order is then preserved.
	Sorter() (sorter Sorter, ok bool)

	// Assign returns the zero-based slot index for the class. Deterministic
	// given the prior Assign calls of the current run.
	Assign(class domain.ClassName) int
}

// Kind names a well-known strategy.
type Kind string

const (
	KindRoundRobin     Kind = "round-robin"
	KindDurationGreedy Kind = "duration-greedy"
)

// Factory builds a fresh strategy for one run. A factory may return nil when
// the requested configuration cannot be honored; callers fall back to
// round-robin instead of failing the run.
type Factory func() Strategy

// ForKind returns a factory for the named strategy kind. The duration-greedy
// kind uses the given per-class duration estimates. Unknown kinds yield a
// nil-producing factory.
func ForKind(kind Kind, durations map[domain.ClassName]time.Duration) Factory {
	switch kind {
	case KindRoundRobin:
		return func() Strategy { return NewRoundRobin() }
	case KindDurationGreedy:
		return func() Strategy { return NewDurationGreedy(durations) }
	default:
		return func() Strategy { return nil }
	}
}

// IsFallback reports whether s is the plain round-robin strategy, which is
// the one substituted when a factory produces nothing usable.
func IsFallback(s Strategy) bool {
	_, ok := s.(*RoundRobin)
	return ok
}
