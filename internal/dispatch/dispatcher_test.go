package dispatch

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ptsched/internal/domain"
)

// recorder collects per-slot execution order across worker instances.
type recorder struct {
	mu      sync.Mutex
	perSlot map[int][]domain.ClassName
}

func newRecorder() *recorder {
	return &recorder{perSlot: make(map[int][]domain.ClassName)}
}

func (r *recorder) factory() Factory {
	return func(slot int) (Worker, error) {
		return &recorderWorker{rec: r, slot: slot}, nil
	}
}

func (r *recorder) record(slot int, class domain.ClassName) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.perSlot[slot] = append(r.perSlot[slot], class)
}

func (r *recorder) slot(slot int) []domain.ClassName {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.ClassName(nil), r.perSlot[slot]...)
}

type recorderWorker struct {
	rec  *recorder
	slot int
}

func (w *recorderWorker) Execute(class domain.ClassName) domain.TestResult {
	w.rec.record(w.slot, class)
	return domain.TestResult{Class: class, Slot: w.slot, Success: true}
}

func (w *recorderWorker) Stop() error { return nil }

// prefixAssign routes classes starting with "b" to slot 1, the rest to slot 0.
func prefixAssign(class domain.ClassName) int {
	if strings.HasPrefix(string(class), "b") {
		return 1
	}
	return 0
}

func TestDispatcher_FIFOWithinSlot(t *testing.T) {
	rec := newRecorder()
	d := New(Config{Slots: 2, Workers: rec.factory(), Assign: prefixAssign})

	d.Start()
	for _, class := range []domain.ClassName{"a1", "b1", "a2", "b2", "a3"} {
		d.Submit(class)
	}
	d.Drain()

	assert.Equal(t, []domain.ClassName{"a1", "a2", "a3"}, rec.slot(0))
	assert.Equal(t, []domain.ClassName{"b1", "b2"}, rec.slot(1))
	assert.Len(t, d.Results(), 5)
	assert.Empty(t, d.Undispatched())
	assert.False(t, d.Cancelled())
}

func TestDispatcher_ClampsAssignedIndex(t *testing.T) {
	rec := newRecorder()
	assignments := []int{-3, 7}
	i := 0
	d := New(Config{
		Slots:   2,
		Workers: rec.factory(),
		Assign: func(domain.ClassName) int {
			idx := assignments[i]
			i++
			return idx
		},
	})

	d.Start()
	d.Submit("low")
	d.Submit("high")
	d.Drain()

	assert.Equal(t, []domain.ClassName{"low"}, rec.slot(0))
	assert.Equal(t, []domain.ClassName{"high"}, rec.slot(1))
}

func TestDispatcher_CancelBeforeStart(t *testing.T) {
	rec := newRecorder()
	d := New(Config{Slots: 2, Workers: rec.factory(), Assign: prefixAssign})

	d.Cancel()
	d.Start()
	d.Submit("a1")
	d.Drain()

	assert.Empty(t, d.Results(), "no dispatch events after early cancel")
	assert.True(t, d.Cancelled())
}

func TestDispatcher_CancelAfterDrainIsNoop(t *testing.T) {
	rec := newRecorder()
	d := New(Config{Slots: 1, Workers: rec.factory(), Assign: func(domain.ClassName) int { return 0 }})

	d.Start()
	d.Submit("a1")
	d.Drain()
	d.Cancel()
	d.Cancel()

	assert.Len(t, d.Results(), 1)
}

func TestDispatcher_CancelAbandonsQueuedWork(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	rec := newRecorder()
	factory := func(slot int) (Worker, error) {
		return &gateWorker{rec: rec, slot: slot, started: started, release: release}, nil
	}
	d := New(Config{Slots: 1, Workers: factory, Assign: func(domain.ClassName) int { return 0 }})

	d.Start()
	d.Submit("a1")
	d.Submit("a2")
	d.Submit("a3")

	<-started // a1 is in flight
	d.Cancel()
	close(release)
	d.Drain()

	require.Len(t, d.Results(), 1, "only the in-flight class finishes")
	assert.Equal(t, domain.ClassName("a1"), d.Results()[0].Class)

	undispatched := d.Undispatched()
	require.Len(t, undispatched, 2)
	for _, failure := range undispatched {
		assert.ErrorIs(t, failure.Err, errRunCancelled)
	}
}

// gateWorker signals when its first execution starts and waits for release.
type gateWorker struct {
	rec     *recorder
	slot    int
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (w *gateWorker) Execute(class domain.ClassName) domain.TestResult {
	w.once.Do(func() { close(w.started) })
	<-w.release
	w.rec.record(w.slot, class)
	return domain.TestResult{Class: class, Slot: w.slot, Success: true}
}

func (w *gateWorker) Stop() error { return nil }

func TestDispatcher_WorkerStartupFailureIsolatedToSlot(t *testing.T) {
	rec := newRecorder()
	bootErr := errors.New("fork failed")
	factory := func(slot int) (Worker, error) {
		if slot == 1 {
			return nil, bootErr
		}
		return &recorderWorker{rec: rec, slot: slot}, nil
	}
	d := New(Config{Slots: 2, Workers: factory, Assign: prefixAssign})

	d.Start()
	for _, class := range []domain.ClassName{"b1", "b2", "a1", "a2"} {
		d.Submit(class)
	}
	d.Drain()

	assert.Equal(t, []domain.ClassName{"a1", "a2"}, rec.slot(0), "healthy slot proceeds")

	undispatched := d.Undispatched()
	require.Len(t, undispatched, 2)
	seen := map[domain.ClassName]bool{}
	for _, failure := range undispatched {
		assert.Equal(t, 1, failure.Slot)
		assert.ErrorIs(t, failure.Err, bootErr)
		seen[failure.Class] = true
	}
	assert.True(t, seen["b1"] && seen["b2"], "every queued class is accounted for")
}

func TestDispatcher_SubmitBeforeStartOrAfterDrain(t *testing.T) {
	rec := newRecorder()
	d := New(Config{Slots: 1, Workers: rec.factory(), Assign: func(domain.ClassName) int { return 0 }})

	d.Submit("ignored-before-start")
	d.Start()
	d.Submit("a1")
	d.Drain()
	d.Submit("ignored-after-drain")

	assert.Len(t, d.Results(), 1)
}
