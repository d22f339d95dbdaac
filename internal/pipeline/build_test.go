package pipeline

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ptsched/internal/dispatch"
	"ptsched/internal/domain"
	"ptsched/internal/schedule"
)

// orderLog records executed classes across all fake workers.
type orderLog struct {
	mu      sync.Mutex
	classes []domain.ClassName
}

func (l *orderLog) factory() dispatch.Factory {
	return func(slot int) (dispatch.Worker, error) {
		return &orderWorker{log: l, slot: slot}, nil
	}
}

func (l *orderLog) executed() []domain.ClassName {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]domain.ClassName(nil), l.classes...)
}

type orderWorker struct {
	log  *orderLog
	slot int
}

func (w *orderWorker) Execute(class domain.ClassName) domain.TestResult {
	w.log.mu.Lock()
	w.log.classes = append(w.log.classes, class)
	w.log.mu.Unlock()
	return domain.TestResult{Class: class, Slot: w.slot, Success: true}
}

func (w *orderWorker) Stop() error { return nil }

func TestBuild_EndToEndFailedFirstOrdering(t *testing.T) {
	log := &orderLog{}
	p := Build(Options{
		Failed:  failedSet("tests/BrokenTest.php"),
		Slots:   1, // single slot makes the global execution order deterministic
		Workers: log.factory(),
	})

	p.Start()
	for _, class := range []domain.ClassName{"tests/SlowTest.php", "tests/BrokenTest.php", "tests/FastTest.php"} {
		p.Submit(class)
	}
	p.Drain()

	assert.Equal(t, []domain.ClassName{
		"tests/BrokenTest.php",
		"tests/SlowTest.php",
		"tests/FastTest.php",
	}, log.executed())
	assert.Len(t, p.Results(), 3)
	assert.Empty(t, p.Undispatched())
	assert.False(t, p.Cancelled())
}

func TestBuild_PatternFilterInFront(t *testing.T) {
	log := &orderLog{}
	p := Build(Options{
		Pattern: "*UserTest.php",
		Slots:   1,
		Workers: log.factory(),
	})

	p.Start()
	p.Submit("tests/UserTest.php")
	p.Submit("tests/PaymentTest.php")
	p.Drain()

	assert.Equal(t, []domain.ClassName{"tests/UserTest.php"}, log.executed())
}

func TestBuild_NilStrategyFallsBackToRoundRobin(t *testing.T) {
	log := &orderLog{}
	p := Build(Options{
		Strategy: func() schedule.Strategy { return nil },
		Slots:    2,
		Workers:  log.factory(),
	})

	assert.True(t, p.UsingFallback(), "missing strategy must degrade, not fail")

	p.Start()
	p.Submit("tests/ATest.php")
	p.Submit("tests/BTest.php")
	p.Drain()
	assert.Len(t, p.Results(), 2)
}

func TestBuild_SequentialRunForcesRoundRobin(t *testing.T) {
	log := &orderLog{}
	p := Build(Options{
		Strategy: schedule.ForKind(schedule.KindDurationGreedy, map[domain.ClassName]time.Duration{
			"tests/ATest.php": time.Second,
		}),
		Slots:   1,
		Workers: log.factory(),
	})
	assert.True(t, p.UsingFallback(), "one slot needs no sorting or balancing")
}

func TestBuild_GreedyStrategyBalancesSlots(t *testing.T) {
	log := &orderLog{}
	hints := map[domain.ClassName]time.Duration{
		"tests/OneTest.php":   1 * time.Second,
		"tests/TwoTest.php":   2 * time.Second,
		"tests/ThreeTest.php": 3 * time.Second,
	}
	p := Build(Options{
		Strategy: schedule.ForKind(schedule.KindDurationGreedy, hints),
		Slots:    2,
		Workers:  log.factory(),
	})
	require.False(t, p.UsingFallback())

	p.Start()
	for _, class := range []domain.ClassName{"tests/OneTest.php", "tests/TwoTest.php", "tests/ThreeTest.php"} {
		p.Submit(class)
	}
	p.Drain()

	// drain pre-sorts longest-first, so Three lands alone on slot 0 and
	// Two+One share slot 1
	bySlot := map[int][]domain.ClassName{}
	for _, r := range p.Results() {
		bySlot[r.Slot] = append(bySlot[r.Slot], r.Class)
	}
	assert.ElementsMatch(t, []domain.ClassName{"tests/ThreeTest.php"}, bySlot[0])
	assert.ElementsMatch(t, []domain.ClassName{"tests/TwoTest.php", "tests/OneTest.php"}, bySlot[1])
}

func TestBuild_CancelBeforeSubmitIsClean(t *testing.T) {
	log := &orderLog{}
	p := Build(Options{Slots: 2, Workers: log.factory()})

	p.Start()
	p.Cancel()
	p.Submit("tests/ATest.php")
	p.Drain()

	assert.Empty(t, p.Results(), "no dispatch events")
	assert.Empty(t, log.executed())
	assert.True(t, p.Cancelled())
}

func TestBuild_CancelIsSafeDuringSubmitAndDrain(t *testing.T) {
	// the run command cancels from a signal-watcher goroutine while the main
	// goroutine is still submitting; that must never corrupt the buffers
	log := &orderLog{}
	p := Build(Options{
		Failed:  failedSet("tests/Class0Test.php", "tests/Class7Test.php"),
		Slots:   2,
		Workers: log.factory(),
	})

	p.Start()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		p.Cancel()
	}()

	classes := make([]domain.ClassName, 0, 200)
	for i := 0; i < 200; i++ {
		classes = append(classes, domain.ClassName(fmt.Sprintf("tests/Class%dTest.php", i)))
	}
	for _, class := range classes {
		p.Submit(class)
	}
	p.Drain()
	wg.Wait()

	assert.True(t, p.Cancelled())
	// every class is either executed, reported undispatched, or was rejected
	// at the prioritizer after the cancel — never lost to a partial buffer
	seen := make(map[domain.ClassName]int)
	for _, r := range p.Results() {
		seen[r.Class]++
	}
	for _, u := range p.Undispatched() {
		seen[u.Class]++
	}
	assert.LessOrEqual(t, len(seen), len(classes))
	for class, n := range seen {
		assert.Equalf(t, 1, n, "class %s accounted for more than once", class)
	}
}

func TestBuild_ClampsSlotCount(t *testing.T) {
	log := &orderLog{}
	p := Build(Options{Slots: 0, Workers: log.factory()})

	p.Start()
	p.Submit("tests/ATest.php")
	p.Drain()
	require.Len(t, p.Results(), 1)
	assert.Equal(t, 0, p.Results()[0].Slot)
}
