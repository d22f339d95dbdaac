package discovery

import (
	"path/filepath"
	"strings"

	"ptsched/internal/domain"
)

// Filter matches test classes by name pattern
type Filter struct{}

// NewFilter creates a new Filter
func NewFilter() *Filter {
	return &Filter{}
}

// Matches reports whether the class's file name matches the pattern.
// Supports wildcard patterns like "*UserTest.php" or "*Payment*"; a pattern
// without wildcards is a plain substring match. The empty pattern matches
// everything.
func (f *Filter) Matches(class domain.ClassName, pattern string) bool {
	if pattern == "" {
		return true
	}

	name := filepath.Base(string(class))

	if matched, err := filepath.Match(pattern, name); err == nil && matched {
		return true
	}

	if strings.ContainsAny(pattern, "*?") {
		// flexible fallback for patterns like "*Payment*": every literal
		// fragment must appear in the file name
		parts := strings.Split(pattern, "*")
		any := false
		for _, part := range parts {
			if part == "" {
				continue
			}
			any = true
			if !strings.Contains(name, part) {
				return false
			}
		}
		return any
	}

	return strings.Contains(name, pattern)
}

// Apply keeps only the classes whose file name matches the pattern.
func (f *Filter) Apply(classes []domain.ClassName, pattern string) []domain.ClassName {
	if pattern == "" {
		return classes
	}
	var filtered []domain.ClassName
	for _, class := range classes {
		if f.Matches(class, pattern) {
			filtered = append(filtered, class)
		}
	}
	return filtered
}
