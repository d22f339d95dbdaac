package domain

import "time"

// TestResult represents the result of executing a test class
type TestResult struct {
	Class    ClassName     // Test class that was executed
	Slot     int           // Worker slot that executed it
	Success  bool          // Whether the test passed
	Output   string        // Raw output from PHPUnit
	Err      error         // Error if execution failed
	Duration time.Duration // Time taken to execute
}

// ClassRecord is the persisted per-class outcome of a run. Durations feed the
// duration-greedy strategy on the next run, failures feed the failed-first
// prioritizer.
type ClassRecord struct {
	Name       string `json:"name"`
	Success    bool   `json:"success"`
	DurationMS int64  `json:"duration_ms"`
}

// TestResultsMeta contains metadata about a test run
type TestResultsMeta struct {
	TotalTestFiles  int     `json:"total_test_files"`
	FailedTestFiles int     `json:"failed_test_files"`
	PassedTestFiles int     `json:"passed_test_files"`
	FailedTestCases int     `json:"failed_test_cases"`
	Duration        string  `json:"duration"`
	DurationSeconds float64 `json:"duration_seconds"`
	Slots           int     `json:"slots"`
	RestartEvery    int     `json:"restart_every,omitempty"`
	Strategy        string  `json:"strategy,omitempty"`
	Cancelled       bool    `json:"cancelled,omitempty"`
	Timestamp       string  `json:"timestamp"`
}

// TestResultsOutput is the complete output structure for test results
type TestResultsOutput struct {
	Meta    TestResultsMeta `json:"meta"`
	Classes []ClassRecord   `json:"classes"`
	Details []TestFailure   `json:"details"`
}
