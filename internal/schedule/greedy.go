package schedule

import (
	"time"

	"ptsched/internal/domain"
)

// DurationGreedy sorts known-duration classes longest-first and assigns each
// to the currently least-loaded slot (lowest index on ties). Classes without
// a usable duration estimate sort ahead of all known ones and fall back to an
// embedded round-robin so they spread evenly across slots during warm-up.
type DurationGreedy struct {
	durations map[domain.ClassName]time.Duration
	fallback  *RoundRobin
	loads     []time.Duration
}

// NewDurationGreedy creates a duration-greedy strategy from per-class
// duration estimates. Missing or non-positive entries count as unknown.
func NewDurationGreedy(durations map[domain.ClassName]time.Duration) *DurationGreedy {
	g := &DurationGreedy{
		durations: durations,
		fallback:  NewRoundRobin(),
	}
	g.Configure(1)
	return g
}

// Configure sets the slot count (clamped to at least 1) on both the greedy
// load table and the embedded fallback, which shares the slot space but keeps
// its own cursor.
func (g *DurationGreedy) Configure(slots int) {
	if slots < 1 {
		slots = 1
	}
	g.fallback.Configure(slots)
	g.loads = make([]time.Duration, slots)
}

// StartRun zeroes the per-slot loads and rewinds the fallback cursor.
func (g *DurationGreedy) StartRun() {
	g.fallback.StartRun()
	for i := range g.loads {
		g.loads[i] = 0
	}
}

// Sorter orders unknown-duration classes first, then known ones by descending
// duration. Equal estimates keep their submission order (stable sort).
func (g *DurationGreedy) Sorter() (Sorter, bool) {
	return func(a, b domain.ClassName) bool {
		da, aKnown := g.estimate(a)
		db, bKnown := g.estimate(b)
		switch {
		case aKnown && bKnown:
			return da > db
		case !aKnown && bKnown:
			return true
		default:
			return false
		}
	}, true
}

// Assign places a known-duration class on the slot with the strictly smallest
// accumulated load, ties broken by lowest slot index, and charges the class's
// estimate to that slot. Unknown classes delegate to the fallback.
func (g *DurationGreedy) Assign(class domain.ClassName) int {
	d, known := g.estimate(class)
	if !known {
		return g.fallback.Assign(class)
	}
	index := 0
	currMin := g.loads[0]
	for i := 1; i < len(g.loads); i++ {
		if g.loads[i] < currMin {
			currMin = g.loads[i]
			index = i
		}
	}
	g.loads[index] += d
	return index
}

func (g *DurationGreedy) estimate(class domain.ClassName) (time.Duration, bool) {
	d, ok := g.durations[class]
	if !ok || d <= 0 {
		return 0, false
	}
	return d, true
}
