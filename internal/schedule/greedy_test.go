package schedule

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ptsched/internal/domain"
)

func greedyFixture() *DurationGreedy {
	return NewDurationGreedy(map[domain.ClassName]time.Duration{
		"TestClassOne":   1 * time.Second,
		"TestClassTwo":   2 * time.Second,
		"TestClassThree": 3 * time.Second,
	})
}

func TestDurationGreedy_AssignInterleavedUnknowns(t *testing.T) {
	g := greedyFixture()
	g.Configure(2)
	g.StartRun()

	// Unknowns round-robin onto slots 0 and 1; Three(3s) loads slot 0, so
	// Two(2s) and One(1s) both land on slot 1, ending with loads [3s, 3s].
	var got []int
	for _, class := range []domain.ClassName{"A", "TestClassThree", "B", "TestClassTwo", "TestClassOne"} {
		got = append(got, g.Assign(class))
	}
	assert.Equal(t, []int{0, 0, 1, 1, 1}, got)
}

func TestDurationGreedy_TieBreakLowestIndex(t *testing.T) {
	g := NewDurationGreedy(map[domain.ClassName]time.Duration{
		"a": time.Second,
		"b": time.Second,
		"c": time.Second,
	})
	g.Configure(3)
	g.StartRun()

	// all loads equal at every step, so assignment walks the indexes upward
	assert.Equal(t, 0, g.Assign("a"))
	assert.Equal(t, 1, g.Assign("b"))
	assert.Equal(t, 2, g.Assign("c"))
}

func TestDurationGreedy_SorterOrder(t *testing.T) {
	g := greedyFixture()
	sorter, ok := g.Sorter()
	require.True(t, ok)

	classes := []domain.ClassName{"TestClassOne", "TestClassTwo", "Unknown", "TestClassThree"}
	sort.SliceStable(classes, func(i, j int) bool { return sorter(classes[i], classes[j]) })

	assert.Equal(t,
		[]domain.ClassName{"Unknown", "TestClassThree", "TestClassTwo", "TestClassOne"},
		classes, "unknown durations first, then descending duration")
}

func TestDurationGreedy_SorterStableForUnknowns(t *testing.T) {
	g := NewDurationGreedy(nil)
	sorter, ok := g.Sorter()
	require.True(t, ok)

	classes := []domain.ClassName{"c", "a", "b"}
	sort.SliceStable(classes, func(i, j int) bool { return sorter(classes[i], classes[j]) })
	assert.Equal(t, []domain.ClassName{"c", "a", "b"}, classes, "all-unknown batch keeps submission order")
}

func TestDurationGreedy_NonPositiveDurationIsUnknown(t *testing.T) {
	g := NewDurationGreedy(map[domain.ClassName]time.Duration{
		"zero":     0,
		"negative": -time.Second,
		"known":    time.Second,
	})
	g.Configure(2)
	g.StartRun()

	// zero and negative delegate to round-robin: slots 0 then 1
	assert.Equal(t, 0, g.Assign("zero"))
	assert.Equal(t, 1, g.Assign("negative"))
	// known goes least-loaded, which is still slot 0 (fallback charges nothing)
	assert.Equal(t, 0, g.Assign("known"))
}

func TestDurationGreedy_StartRunResetsLoadsAndFallback(t *testing.T) {
	g := greedyFixture()
	g.Configure(2)
	g.StartRun()

	g.Assign("unknown-1")      // fallback slot 0
	g.Assign("TestClassThree") // slot 0, load 3s

	g.StartRun()
	assert.Equal(t, 0, g.Assign("unknown-2"), "fallback cursor reset")
	assert.Equal(t, 0, g.Assign("TestClassOne"), "loads reset, slot 0 least loaded again")
}

func TestForKind(t *testing.T) {
	tests := []struct {
		name     string
		kind     Kind
		fallback bool
		nilOut   bool
	}{
		{name: "round robin", kind: KindRoundRobin, fallback: true},
		{name: "duration greedy", kind: KindDurationGreedy},
		{name: "unknown kind", kind: Kind("lpt-exact"), nilOut: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := ForKind(tt.kind, nil)()
			if tt.nilOut {
				assert.Nil(t, s)
				return
			}
			require.NotNil(t, s)
			assert.Equal(t, tt.fallback, IsFallback(s))
		})
	}
}
