package parser

import (
	"fmt"
	"regexp"
	"strings"

	"ptsched/internal/domain"
)

// PHPUnitParser parses PHPUnit test output
type PHPUnitParser struct{}

// NewPHPUnitParser creates a new PHPUnitParser
func NewPHPUnitParser() *PHPUnitParser {
	return &PHPUnitParser{}
}

var (
	okPattern       = regexp.MustCompile(`OK\s*\(\s*(\d+)\s+tests`)
	testsPattern    = regexp.MustCompile(`Tests:\s*(\d+)`)
	failuresPattern = regexp.MustCompile(`Failures:\s*(\d+)`)
	errorsPattern   = regexp.MustCompile(`Errors:\s*(\d+)`)
)

// ParseTestCounts extracts passed and failed test case counts from PHPUnit
// output. When the summary line is missing it falls back to one case per
// class: (1,0) on success, (0,1) on failure.
func (p *PHPUnitParser) ParseTestCounts(result domain.TestResult) (passed, failed int) {
	output := result.Output

	if match := okPattern.FindStringSubmatch(output); len(match) >= 2 {
		var total int
		fmt.Sscanf(match[1], "%d", &total)
		return total, 0
	}

	var total, failures, errors int
	if match := testsPattern.FindStringSubmatch(output); len(match) >= 2 {
		fmt.Sscanf(match[1], "%d", &total)
	}
	if match := failuresPattern.FindStringSubmatch(output); len(match) >= 2 {
		fmt.Sscanf(match[1], "%d", &failures)
	}
	if match := errorsPattern.FindStringSubmatch(output); len(match) >= 2 {
		fmt.Sscanf(match[1], "%d", &errors)
	}
	failed = failures + errors
	if total >= failed {
		passed = total - failed
	}
	if passed > 0 || failed > 0 {
		return passed, failed
	}

	if result.Success {
		return 1, 0
	}
	return 0, 1
}

// ParseFailure extracts the individual failed test cases from a failed
// class's PHPUnit output.
func (p *PHPUnitParser) ParseFailure(result domain.TestResult) []domain.TestFailure {
	var failures []domain.TestFailure
	lines := strings.Split(result.Output, "\n")

	// PHPUnit prints failed cases as Namespaced\Class::caseName
	className := strings.TrimSuffix(result.Class.String(), ".php")
	className = strings.ReplaceAll(className, "/", "\\") + "::"
	caseLine := regexp.MustCompile("(?i)" + regexp.QuoteMeta(className))

	for i := range lines {
		if caseLine.MatchString(lines[i]) {
			failures = append(failures, p.parseFailureCase(i, lines, caseLine))
		}
	}
	return failures
}

func (p *PHPUnitParser) parseFailureCase(start int, lines []string, caseLine *regexp.Regexp) domain.TestFailure {
	filePath, name := splitCaseLine(lines[start])
	failure := domain.TestFailure{
		TestName:   name,
		FilePath:   filePath,
		StackTrace: []string{},
	}

	var messageLines, jsonLines, stackTrace []string
	inJSON := false
	jsonDone := false
	braces := 0

	for i := start + 1; i < len(lines); i++ {
		line := lines[i]
		trimmed := strings.TrimSpace(line)

		if caseLine.MatchString(line) {
			break
		}

		if trimmed == "{" && !inJSON {
			inJSON = true
			braces = 1
			jsonLines = append(jsonLines, line)
			continue
		}
		if inJSON {
			jsonLines = append(jsonLines, line)
			braces += strings.Count(line, "{") - strings.Count(line, "}")
			if braces == 0 {
				failure.ErrorDetails = strings.Join(jsonLines, "\n")
				inJSON = false
				jsonDone = true
			}
			continue
		}

		if jsonDone {
			// stack trace lines look like /path/to/file.php:123
			if strings.Contains(line, ".php:") && (strings.HasPrefix(line, "/") || strings.Contains(line, "tests/")) {
				stackTrace = append(stackTrace, line)
				if strings.Contains(line, "tests/") && failure.File == "" {
					parts := strings.Split(line, ":")
					if len(parts) >= 2 {
						failure.File = parts[0]
						fmt.Sscanf(parts[len(parts)-1], "%d", &failure.Line)
					}
				}
			}
			continue
		}

		if len(messageLines) == 0 && trimmed == "" {
			continue
		}
		messageLines = append(messageLines, line)
	}

	for len(messageLines) > 0 && strings.TrimSpace(messageLines[len(messageLines)-1]) == "" {
		messageLines = messageLines[:len(messageLines)-1]
	}
	failure.Message = strings.Join(messageLines, "\n")
	failure.StackTrace = stackTrace
	return failure
}

// splitCaseLine splits "N) Namespaced\Class::caseName" into the class's file
// path and the case name.
func splitCaseLine(line string) (filePath, name string) {
	split := strings.SplitN(line, "::", 2)
	if len(split) < 2 {
		return strings.TrimSpace(line), ""
	}

	cls := split[0]
	if idx := strings.Index(cls, ")"); idx >= 0 {
		cls = cls[idx+1:]
	}
	cls = strings.TrimSpace(cls)
	cls = strings.ReplaceAll(cls, "\\", "/")

	return cls, split[1]
}
