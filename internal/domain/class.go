package domain

// ClassName identifies one schedulable unit of work: a test class, addressed
// by its test file path. Equality and ordering are name-based.
type ClassName string

func (c ClassName) String() string { return string(c) }

// DispatchEvent records a class being routed to a worker slot.
type DispatchEvent struct {
	Class ClassName
	Slot  int
}

// ClassFailure marks a class that was never successfully handed to a worker,
// either because its slot's worker could not be started or because the run
// was cancelled before the class left its queue.
type ClassFailure struct {
	Class ClassName
	Slot  int
	Err   error
}
