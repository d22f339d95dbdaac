package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"ptsched/internal/domain"
)

// Save writes test results and failures to the configured JSON output file.
func (s *JSONStorage) Save(results []domain.TestResult, failures []domain.TestFailure, duration time.Duration, meta RunMeta) error {
	passed := 0
	failed := 0
	classes := make([]domain.ClassRecord, 0, len(results))
	for _, r := range results {
		if r.Success {
			passed++
		} else {
			failed++
		}
		classes = append(classes, domain.ClassRecord{
			Name:       r.Class.String(),
			Success:    r.Success,
			DurationMS: r.Duration.Milliseconds(),
		})
	}

	output := domain.TestResultsOutput{
		Meta: domain.TestResultsMeta{
			TotalTestFiles:  len(results),
			FailedTestFiles: failed,
			PassedTestFiles: passed,
			FailedTestCases: len(failures),
			Duration:        duration.String(),
			DurationSeconds: duration.Seconds(),
			Slots:           meta.Slots,
			RestartEvery:    meta.RestartEvery,
			Strategy:        meta.Strategy,
			Cancelled:       meta.Cancelled,
			Timestamp:       time.Now().Format(time.RFC3339),
		},
		Classes: classes,
		Details: failures,
	}

	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}

	path := s.cfg.GetOutputPath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	return nil
}

// Load reads the last test results from the configured JSON output file.
func (s *JSONStorage) Load() (*domain.TestResultsOutput, error) {
	path := s.cfg.GetOutputPath()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read results file: %w", err)
	}
	var output domain.TestResultsOutput
	if err := json.Unmarshal(data, &output); err != nil {
		return nil, fmt.Errorf("parse results: %w", err)
	}
	return &output, nil
}

// SaveOutput writes the full output to the configured JSON file (e.g. after re-running selected tests).
func (s *JSONStorage) SaveOutput(output *domain.TestResultsOutput) error {
	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	path := s.cfg.GetOutputPath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// FailedClasses returns the classes that failed in the last saved run. A
// missing or unreadable results file yields an empty set: the first run
// simply has nothing to prioritize.
func (s *JSONStorage) FailedClasses() map[domain.ClassName]struct{} {
	failed := make(map[domain.ClassName]struct{})
	output, err := s.Load()
	if err != nil {
		return failed
	}
	for _, class := range output.Classes {
		if !class.Success {
			failed[domain.ClassName(class.Name)] = struct{}{}
		}
	}
	return failed
}

// DurationHints returns per-class duration estimates from the last saved run.
// Classes without a positive recorded duration are omitted, which the
// duration-greedy strategy treats as unknown.
func (s *JSONStorage) DurationHints() map[domain.ClassName]time.Duration {
	hints := make(map[domain.ClassName]time.Duration)
	output, err := s.Load()
	if err != nil {
		return hints
	}
	for _, class := range output.Classes {
		if class.DurationMS > 0 {
			hints[domain.ClassName(class.Name)] = time.Duration(class.DurationMS) * time.Millisecond
		}
	}
	return hints
}
