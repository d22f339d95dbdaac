package discovery

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"ptsched/internal/domain"
)

// Parser extracts test case names from PHP test classes
type Parser struct{}

// NewParser creates a new Parser
func NewParser() *Parser {
	return &Parser{}
}

var (
	// public function testCreateUser(), function test_user_login(),
	// final protected static function testSomething(), ...
	testMethodPattern = regexp.MustCompile(`(?m)^\s*(?:(?:public|protected|private|static|final)\s+)*(?:public|protected|private)?\s*function\s+(test\w+)\s*\(`)

	// methods marked with a @test annotation, inline or in a docblock
	annotatedPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?m)@test\s*\n\s*(?:/\*\*.*?\*/)?\s*(?:(?:public|protected|private|static|final)\s+)*(?:public|protected|private)?\s*function\s+(\w+)\s*\(`),
		regexp.MustCompile(`(?m)/\*\*[\s\S]*?@test[\s\S]*?\*/\s*(?:(?:public|protected|private|static|final)\s+)*(?:public|protected|private)?\s*function\s+(\w+)\s*\(`),
		regexp.MustCompile(`(?m)@test.*?function\s+(\w+)\s*\(`),
	}
)

// FindTestCases lists the test methods declared in the class: methods named
// test* plus methods carrying a @test annotation. Output is sorted and
// duplicate-free.
func (p *Parser) FindTestCases(class domain.ClassName) ([]string, error) {
	content, err := os.ReadFile(string(class))
	if err != nil {
		return nil, fmt.Errorf("error reading file %s: %w", class, err)
	}
	text := string(content)

	seen := make(map[string]bool)
	for _, match := range testMethodPattern.FindAllStringSubmatch(text, -1) {
		seen[match[1]] = true
	}
	for _, pattern := range annotatedPatterns {
		for _, match := range pattern.FindAllStringSubmatch(text, -1) {
			// test* methods were already caught by the name pattern
			if !strings.HasPrefix(match[1], "test") {
				seen[match[1]] = true
			}
		}
	}

	cases := make([]string, 0, len(seen))
	for name := range seen {
		cases = append(cases, name)
	}
	sort.Strings(cases)
	return cases, nil
}
