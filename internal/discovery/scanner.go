package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ptsched/internal/domain"
)

// Scanner discovers test classes under a directory tree
type Scanner struct {
	skipDirs map[string]bool
}

// NewScanner creates a new Scanner with the given directories to skip
func NewScanner(skipDirs []string) *Scanner {
	skipMap := make(map[string]bool)
	for _, dir := range skipDirs {
		skipMap[dir] = true
	}
	return &Scanner{skipDirs: skipMap}
}

// Scan finds all test classes in the given root directory. Identities are
// the test file paths; the resulting sequence is the pipeline's input stream.
func (s *Scanner) Scan(root string) ([]domain.ClassName, error) {
	var classes []domain.ClassName

	root = filepath.Clean(root)
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("test path does not exist: %s", root)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("test path is not a directory: %s", root)
	}

	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			name := d.Name()
			// Skip hidden directories (starting with .)
			if strings.HasPrefix(name, ".") && name != "." && name != ".." {
				return filepath.SkipDir
			}
			if s.skipDirs[name] {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasSuffix(d.Name(), "Test.php") {
			classes = append(classes, domain.ClassName(path))
		}
		return nil
	})

	return classes, err
}
