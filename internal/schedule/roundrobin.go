package schedule

import "ptsched/internal/domain"

// RoundRobin assigns classes to slots in rotation, keeping submission order.
type RoundRobin struct {
	slots  int
	cursor int
}

// NewRoundRobin creates a round-robin strategy for a single slot; Configure
// widens it.
func NewRoundRobin() *RoundRobin {
	return &RoundRobin{slots: 1, cursor: -1}
}

// Configure sets the slot count, clamped to at least 1.
func (r *RoundRobin) Configure(slots int) {
	if slots < 1 {
		slots = 1
	}
	r.slots = slots
}

// StartRun rewinds the cursor to before the first slot.
func (r *RoundRobin) StartRun() {
	r.cursor = -1
}

// Sorter returns no order: classes dispatch in submission order.
func (r *RoundRobin) Sorter() (Sorter, bool) {
	return nil, false
}

// Assign advances the cursor and returns it, wrapping at the slot count.
func (r *RoundRobin) Assign(domain.ClassName) int {
	r.cursor = (r.cursor + 1) % r.slots
	return r.cursor
}
