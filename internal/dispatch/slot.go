package dispatch

import (
	"errors"
	"sync"

	"ptsched/internal/domain"
)

var errRunCancelled = errors.New("run cancelled")

// slot is one execution lane: a FIFO queue drained by a single goroutine
// through a recycling worker.
type slot struct {
	index  int
	worker *Recycler
	owner  *Dispatcher

	mu        sync.Mutex
	cond      *sync.Cond
	queue     []domain.ClassName
	closed    bool
	cancelled bool
	failed    error
}

func newSlot(index int, worker *Recycler, owner *Dispatcher) *slot {
	s := &slot{index: index, worker: worker, owner: owner}
	s.cond = sync.NewCond(&s.mu)
	return s
}

func (s *slot) enqueue(class domain.ClassName) {
	s.mu.Lock()
	if s.failed != nil || s.cancelled {
		// the loop is gone or about to abandon the queue; report rather
		// than let the class vanish
		err := s.failed
		if err == nil {
			err = errRunCancelled
		}
		s.mu.Unlock()
		s.owner.abandon(s.index, []domain.ClassName{class}, err)
		return
	}
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.queue = append(s.queue, class)
	s.mu.Unlock()
	s.cond.Signal()
}

// close stops intake; the loop exits once the queue is empty.
func (s *slot) close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.cond.Broadcast()
}

// cancel makes the loop abandon everything still queued. The class currently
// executing is not interrupted.
func (s *slot) cancel() {
	s.mu.Lock()
	s.cancelled = true
	s.mu.Unlock()
	s.cond.Broadcast()
}

func (s *slot) loop(wg *sync.WaitGroup) {
	defer wg.Done()
	defer s.worker.Stop()
	for {
		s.mu.Lock()
		for len(s.queue) == 0 && !s.closed && !s.cancelled {
			s.cond.Wait()
		}
		if s.cancelled {
			abandoned := s.queue
			s.queue = nil
			s.mu.Unlock()
			if len(abandoned) > 0 {
				s.owner.abandon(s.index, abandoned, errRunCancelled)
			}
			return
		}
		if len(s.queue) == 0 {
			// closed and fully drained
			s.mu.Unlock()
			return
		}
		class := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()

		result, err := s.worker.Execute(class)
		if err != nil {
			// the worker never came up: this class and everything still
			// queued here is surfaced as undispatched, other slots proceed
			s.mu.Lock()
			s.failed = err
			rest := s.queue
			s.queue = nil
			s.mu.Unlock()
			s.owner.abandon(s.index, append([]domain.ClassName{class}, rest...), err)
			return
		}
		s.owner.deliver(result)
	}
}
