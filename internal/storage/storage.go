package storage

import (
	"time"

	"ptsched/internal/config"
	"ptsched/internal/domain"
)

// RunMeta describes how a run was scheduled, persisted alongside its results.
type RunMeta struct {
	Slots        int
	RestartEvery int
	Strategy     string
	Cancelled    bool
}

// Storage persists and loads test run results. The saved run also feeds the
// next run's scheduling: its failures become the failed-first set and its
// per-class durations become the duration-greedy estimates.
type Storage interface {
	Save(results []domain.TestResult, failures []domain.TestFailure, duration time.Duration, meta RunMeta) error
	Load() (*domain.TestResultsOutput, error)
	// SaveOutput writes the full output (e.g. after partial re-run updates).
	SaveOutput(output *domain.TestResultsOutput) error
	// FailedClasses returns the classes that failed in the last saved run.
	FailedClasses() map[domain.ClassName]struct{}
	// DurationHints returns per-class duration estimates from the last run.
	DurationHints() map[domain.ClassName]time.Duration
}

// JSONStorage stores results in a JSON file under the configured output path.
type JSONStorage struct {
	cfg *config.Config
}

// NewJSONStorage returns a Storage that reads/writes the config's output JSON path.
func NewJSONStorage(cfg *config.Config) *JSONStorage {
	return &JSONStorage{cfg: cfg}
}
