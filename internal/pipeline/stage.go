package pipeline

import "ptsched/internal/domain"

// Stage is one link in the scheduling chain. Stages compose by holding the
// next stage; lifecycle signals travel the chain in composition order, each
// stage finishing its local work before forwarding downstream.
type Stage interface {
	// Start prepares the stage and everything downstream for a new run.
	Start()

	// Submit hands one discovered class to the stage.
	Submit(class domain.ClassName)

	// Drain stops intake, flushes buffered work downstream and returns once
	// the terminal stage has finished all accepted work.
	Drain()

	// Cancel abandons buffered, not-yet-started work and propagates
	// downstream. Best-effort: in-flight execution is not interrupted.
	Cancel()
}
