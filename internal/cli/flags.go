package cli

import "ptsched/internal/config"

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

// ToConfigFlags converts CLI flags to config flags
func (f *Flags) ToConfigFlags() config.Flags {
	return config.Flags{
		Slots:        f.Slots,
		RestartEvery: f.RestartEvery,
		Strategy:     f.Strategy,
		Filter:       f.Filter,
		Migrate:      f.Migrate,
		NoFresh:      f.NoFresh,
		TestPath:     f.TestPath,
		NameFilter:   f.NameFilter,
		TestCases:    f.TestCases,
		OnlyFailed:   f.OnlyFailed,
	}
}
