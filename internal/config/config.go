package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Config holds all configuration for the application
type Config struct {
	// Project settings
	ProjectPath string
	TestPath    string

	// Output settings
	OutputJSONFile string
	OutputJSONDir  string

	// Scheduling settings
	SlotCount    int    // requested parallel worker slots
	MaxSlots     int    // ceiling for SlotCount, defaults to the CPU count
	RestartEvery int    // recycle a slot's worker after this many classes, 0 never
	Strategy     string // "round-robin" or "duration-greedy"

	// Paths to ignore when scanning
	PathsToIgnore []string

	// Command flags
	Flags Flags
}

// Flags holds command-line flags
type Flags struct {
	Slots        int
	RestartEvery int
	Strategy     string
	Filter       string
	Migrate      bool
	NoFresh      bool
	TestPath     string
	NameFilter   string
	TestCases    bool
	OnlyFailed   bool
}

// New creates a new Config with defaults
func New() *Config {
	cfg := &Config{
		ProjectPath:    DefaultProjectPath,
		TestPath:       DefaultTestPath,
		OutputJSONFile: DefaultOutputJSONFile,
		OutputJSONDir:  DefaultOutputJSONDir,
		SlotCount:      DefaultSlots,
		MaxSlots:       DefaultMaxSlots(),
		RestartEvery:   DefaultRestartEvery,
		Strategy:       DefaultStrategy,
		Flags:          Flags{Slots: DefaultSlots},
	}
	cfg.PathsToIgnore = make([]string, len(DefaultPathsToIgnore))
	copy(cfg.PathsToIgnore, DefaultPathsToIgnore)
	return cfg
}

// Load creates a config and applies flags
func Load(flags Flags) *Config {
	cfg := New()
	cfg.Flags = flags

	if flags.Slots > 0 {
		cfg.SlotCount = flags.Slots
	}
	if flags.RestartEvery > 0 {
		cfg.RestartEvery = flags.RestartEvery
	}
	if flags.Strategy != "" {
		cfg.Strategy = flags.Strategy
	}

	return cfg
}

// EffectiveSlots returns the slot count clamped to [1, MaxSlots]. A bad value
// is corrected, never an error.
func (c *Config) EffectiveSlots() int {
	slots := c.SlotCount
	if slots < 1 {
		slots = 1
	}
	if c.MaxSlots > 0 && slots > c.MaxSlots {
		slots = c.MaxSlots
	}
	return slots
}

// GetTestPath returns the test path, using flag if provided
func (c *Config) GetTestPath() string {
	if c.Flags.TestPath != "" {
		if filepath.IsAbs(c.Flags.TestPath) {
			return c.Flags.TestPath
		}
		return filepath.Join(c.ProjectPath, c.Flags.TestPath)
	}
	return filepath.Join(c.ProjectPath, c.TestPath)
}

// GetOutputPath returns the full path to the output JSON file (under project
// so run and faills use the same file). Resolves to an absolute path so both
// always read/write the same file regardless of cwd.
func (c *Config) GetOutputPath() string {
	p := filepath.Join(c.ProjectPath, c.OutputJSONDir, c.OutputJSONFile)
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

// GetPHPUnitPath returns the path to PHPUnit binary
func (c *Config) GetPHPUnitPath() string {
	return filepath.Join(c.ProjectPath, "vendor", "bin", "phpunit")
}

// GetDatabaseName returns the test database name for a zero-based slot index
func (c *Config) GetDatabaseName(slot int) string {
	prefix := os.Getenv("DB_DATABASE_PREFIX")
	if prefix == "" {
		prefix = "testing"
	}
	return fmt.Sprintf("%s_%d", prefix, slot+1)
}
