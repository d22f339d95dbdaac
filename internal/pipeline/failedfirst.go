package pipeline

import (
	"sort"
	"sync"

	"ptsched/internal/domain"
	"ptsched/internal/schedule"
)

// FailedFirst buffers submitted classes into two ordered, duplicate-free
// groups and, at drain, forwards previously failed classes strictly before
// all others, so broken classes report first. Within each group the active
// strategy's sorter decides the order; without one, submission order holds.
// Cancel may arrive from another goroutine at any point, so the buffers are
// mutex-guarded.
type FailedFirst struct {
	failed   map[domain.ClassName]struct{}
	strategy schedule.Strategy
	next     Stage

	mu          sync.Mutex
	cancelled   bool
	prioritized orderedSet
	other       orderedSet
}

// NewFailedFirst creates the prioritizer stage. failed is the set of class
// names that failed on a previous run; it is read-only for this run.
func NewFailedFirst(failed map[domain.ClassName]struct{}, strategy schedule.Strategy, next Stage) *FailedFirst {
	return &FailedFirst{
		failed:   failed,
		strategy: strategy,
		next:     next,
	}
}

func (ff *FailedFirst) Start() {
	ff.strategy.StartRun()
	ff.next.Start()
}

// Submit buffers the class. Resubmitting a buffered identity is a no-op, as
// is submitting after Cancel.
func (ff *FailedFirst) Submit(class domain.ClassName) {
	ff.mu.Lock()
	defer ff.mu.Unlock()
	if ff.cancelled {
		return
	}
	if _, ok := ff.failed[class]; ok {
		ff.prioritized.add(class)
	} else {
		ff.other.add(class)
	}
}

// Drain forwards the prioritized group, then the other group, each in sorter
// order, and drains downstream.
func (ff *FailedFirst) Drain() {
	ff.mu.Lock()
	prioritized := ff.prioritized.items
	other := ff.other.items
	ff.prioritized = orderedSet{}
	ff.other = orderedSet{}
	ff.mu.Unlock()

	for _, class := range ff.sorted(prioritized) {
		ff.next.Submit(class)
	}
	for _, class := range ff.sorted(other) {
		ff.next.Submit(class)
	}
	ff.next.Drain()
}

// Cancel discards both buffers without forwarding anything. Safe to call from
// another goroutine while Submit or Drain is running.
func (ff *FailedFirst) Cancel() {
	ff.mu.Lock()
	ff.cancelled = true
	ff.prioritized = orderedSet{}
	ff.other = orderedSet{}
	ff.mu.Unlock()
	ff.next.Cancel()
}

func (ff *FailedFirst) sorted(classes []domain.ClassName) []domain.ClassName {
	sorter, ok := ff.strategy.Sorter()
	if !ok || len(classes) == 0 {
		return classes
	}
	out := make([]domain.ClassName, len(classes))
	copy(out, classes)
	sort.SliceStable(out, func(i, j int) bool { return sorter(out[i], out[j]) })
	return out
}

// orderedSet is an insertion-ordered set of class names.
type orderedSet struct {
	items []domain.ClassName
	seen  map[domain.ClassName]struct{}
}

func (s *orderedSet) add(class domain.ClassName) {
	if s.seen == nil {
		s.seen = make(map[domain.ClassName]struct{})
	}
	if _, dup := s.seen[class]; dup {
		return
	}
	s.seen[class] = struct{}{}
	s.items = append(s.items, class)
}
