package config

import "runtime"

const (
	// DefaultProjectPath is the default project path
	DefaultProjectPath = "."
	// DefaultTestPath is the default test path
	DefaultTestPath = "."
	// DefaultOutputJSONFile is the default output JSON file name
	DefaultOutputJSONFile = "test-results.json"
	// DefaultOutputJSONDir is the default output directory
	DefaultOutputJSONDir = "storage"
	// DefaultSlots is the default number of parallel worker slots
	DefaultSlots = 4
	// DefaultRestartEvery disables worker recycling
	DefaultRestartEvery = 0
	// DefaultStrategy is the default scheduling strategy
	DefaultStrategy = "round-robin"
)

// DefaultMaxSlots is the default ceiling for the slot count.
func DefaultMaxSlots() int {
	return runtime.NumCPU()
}

// DefaultPathsToIgnore are the default directories to ignore when scanning for tests
var DefaultPathsToIgnore = []string{
	"vendor",
	"node_modules",
	"public",
	"storage",
	"bootstrap",
	"config",
	"database",
	"resources",
	"routes",
}
