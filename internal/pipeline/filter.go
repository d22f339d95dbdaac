package pipeline

import (
	"ptsched/internal/discovery"
	"ptsched/internal/domain"
)

// PatternFilter forwards only classes whose name matches the configured
// wildcard pattern. An empty pattern passes everything through.
type PatternFilter struct {
	pattern string
	matcher *discovery.Filter
	next    Stage
}

// NewPatternFilter creates a filter stage in front of next.
func NewPatternFilter(pattern string, next Stage) *PatternFilter {
	return &PatternFilter{
		pattern: pattern,
		matcher: discovery.NewFilter(),
		next:    next,
	}
}

func (pf *PatternFilter) Start() {
	pf.next.Start()
}

func (pf *PatternFilter) Submit(class domain.ClassName) {
	if pf.matcher.Matches(class, pf.pattern) {
		pf.next.Submit(class)
	}
}

func (pf *PatternFilter) Drain() {
	pf.next.Drain()
}

func (pf *PatternFilter) Cancel() {
	pf.next.Cancel()
}
