package dispatch

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ptsched/internal/domain"
)

// lifecycleLog records worker creations, executions and teardowns in order.
type lifecycleLog struct {
	events    []string
	instances int
}

func (l *lifecycleLog) factory() Factory {
	return func(slot int) (Worker, error) {
		l.instances++
		id := l.instances
		l.events = append(l.events, fmt.Sprintf("create %d", id))
		return &lifecycleWorker{id: id, log: l}, nil
	}
}

type lifecycleWorker struct {
	id  int
	log *lifecycleLog
}

func (w *lifecycleWorker) Execute(class domain.ClassName) domain.TestResult {
	w.log.events = append(w.log.events, fmt.Sprintf("exec %d %s", w.id, class))
	return domain.TestResult{Class: class, Success: true}
}

func (w *lifecycleWorker) Stop() error {
	w.log.events = append(w.log.events, fmt.Sprintf("stop %d", w.id))
	return nil
}

func TestRecycler_RestartEveryTwo(t *testing.T) {
	log := &lifecycleLog{}
	r := NewRecycler(0, 2, log.factory())

	for _, class := range []domain.ClassName{"c1", "c2", "c3", "c4"} {
		_, err := r.Execute(class)
		require.NoError(t, err)
	}

	assert.Equal(t, []string{
		"create 1",
		"exec 1 c1",
		"exec 1 c2",
		"stop 1", // instance 1 is gone before instance 2 exists
		"create 2",
		"exec 2 c3",
		"exec 2 c4",
		"stop 2",
	}, log.events)
}

func TestRecycler_ZeroNeverRestarts(t *testing.T) {
	log := &lifecycleLog{}
	r := NewRecycler(0, 0, log.factory())

	for _, class := range []domain.ClassName{"c1", "c2", "c3"} {
		_, err := r.Execute(class)
		require.NoError(t, err)
	}
	r.Stop()

	assert.Equal(t, 1, log.instances)
	assert.Equal(t, "stop 1", log.events[len(log.events)-1])
}

func TestRecycler_LazyCreation(t *testing.T) {
	log := &lifecycleLog{}
	r := NewRecycler(0, 3, log.factory())

	r.Stop() // nothing created yet, nothing to stop
	assert.Zero(t, log.instances)
	assert.Empty(t, log.events)
}

func TestRecycler_FactoryError(t *testing.T) {
	bootErr := errors.New("no classpath")
	r := NewRecycler(3, 0, func(slot int) (Worker, error) {
		return nil, bootErr
	})

	_, err := r.Execute("c1")
	require.Error(t, err)
	assert.ErrorIs(t, err, bootErr)
	assert.Contains(t, err.Error(), "slot 3")
}
