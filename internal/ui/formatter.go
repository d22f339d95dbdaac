package ui

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fatih/color"
	"ptsched/internal/config"
	"ptsched/internal/discovery"
	"ptsched/internal/domain"
	"ptsched/internal/storage"
)

// Formatter formats and displays output
type Formatter struct {
	config  *config.Config
	parser  *discovery.Parser
	storage storage.Storage
}

// NewFormatter creates a new Formatter
func NewFormatter(cfg *config.Config, parser *discovery.Parser, st storage.Storage) *Formatter {
	return &Formatter{
		config:  cfg,
		parser:  parser,
		storage: st,
	}
}

// PrintMetaStats reads and displays statistics from the last saved run
func (f *Formatter) PrintMetaStats() error {
	// Clear terminal screen
	fmt.Print("\033[2J\033[H")

	output, err := f.storage.Load()
	if err != nil {
		return err
	}
	meta := output.Meta

	fmt.Print("\n")
	color.Cyan("╔═══════════════════════════════════════════════════════════════╗")
	color.Cyan("║                    Test Execution Statistics                  ║")
	color.Cyan("╚═══════════════════════════════════════════════════════════════╝\n")

	fmt.Println("┌─────────────────────────────────┬─────────────────────────────┐")

	fmt.Printf("│ %-31s │ ", "Total Test Files")
	color.White("%-27d │\n", meta.TotalTestFiles)
	fmt.Println("├─────────────────────────────────┼─────────────────────────────┤")

	fmt.Printf("│ %-31s │ ", "Passed Test Files")
	color.Green("%-27d │\n", meta.PassedTestFiles)
	fmt.Println("├─────────────────────────────────┼─────────────────────────────┤")

	fmt.Printf("│ %-31s │ ", "Failed Test Files")
	color.Red("%-27d │\n", meta.FailedTestFiles)
	fmt.Println("├─────────────────────────────────┼─────────────────────────────┤")

	fmt.Printf("│ %-31s │ ", "Failed Test Cases")
	color.Red("%-27d │\n", meta.FailedTestCases)
	fmt.Println("├─────────────────────────────────┼─────────────────────────────┤")

	fmt.Printf("│ %-31s │ ", "Duration")
	durationStr := fmt.Sprintf("%.2fs", meta.DurationSeconds)
	color.White("%-27s │\n", durationStr)
	fmt.Println("├─────────────────────────────────┼─────────────────────────────┤")

	fmt.Printf("│ %-31s │ ", "Slots")
	color.White("%-27d │\n", meta.Slots)
	fmt.Println("├─────────────────────────────────┼─────────────────────────────┤")

	fmt.Printf("│ %-31s │ ", "Strategy")
	color.White("%-27s │\n", meta.Strategy)
	fmt.Println("├─────────────────────────────────┼─────────────────────────────┤")

	fmt.Printf("│ %-31s │ ", "Timestamp")
	color.White("%-27s │\n", meta.Timestamp)

	fmt.Println("└─────────────────────────────────┴─────────────────────────────┘")

	fmt.Println()
	if meta.Cancelled {
		color.Yellow("⚠ Run was cancelled before all classes finished")
	}
	if meta.FailedTestFiles == 0 {
		color.Green("✓ All tests passed!")
	} else {
		color.Red("✗ %d test file(s) failed with %d test case failure(s)", meta.FailedTestFiles, meta.FailedTestCases)
		fmt.Println()
		f.printFailedTestsTree(output.Details)
	}

	return nil
}

// PrintUndispatched reports classes that were accepted but never reached a
// worker, grouped by the reason they were abandoned.
func (f *Formatter) PrintUndispatched(failures []domain.ClassFailure) {
	if len(failures) == 0 {
		return
	}

	fmt.Println()
	color.Red("✗ %d class(es) never ran:", len(failures))
	for _, failure := range failures {
		reason := "unknown reason"
		if failure.Err != nil {
			reason = failure.Err.Error()
		}
		color.Yellow("  ├── %s", failure.Class)
		fmt.Printf("  │     slot %d: %s\n", failure.Slot, reason)
	}
}

// TreeNode represents a node in the file tree structure
type TreeNode struct {
	Name     string
	Children map[string]*TreeNode
	Failures []domain.TestFailure
	IsFile   bool
}

// printFailedTestsTree prints a tree structure of failed tests
func (f *Formatter) printFailedTestsTree(failures []domain.TestFailure) {
	if len(failures) == 0 {
		return
	}

	fileMap := make(map[string][]domain.TestFailure)
	for _, failure := range failures {
		fileMap[failure.FilePath] = append(fileMap[failure.FilePath], failure)
	}

	root := &TreeNode{
		Name:     "",
		Children: make(map[string]*TreeNode),
		IsFile:   false,
	}

	for filePath, fileFailures := range fileMap {
		parts := strings.Split(strings.TrimPrefix(filePath, "./"), "/")
		current := root

		for i, part := range parts {
			if part == "" {
				continue
			}

			if current.Children[part] == nil {
				current.Children[part] = &TreeNode{
					Name:     part,
					Children: make(map[string]*TreeNode),
					IsFile:   i == len(parts)-1,
				}
			}

			current = current.Children[part]

			if i == len(parts)-1 {
				current.Failures = fileFailures
			}
		}
	}

	f.printTreeNode(root, "", true, true)
}

func (f *Formatter) printTreeNode(node *TreeNode, prefix string, isLast bool, isRoot bool) {
	var keys []string
	for key := range node.Children {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for i, key := range keys {
		child := node.Children[key]
		isLastChild := i == len(keys)-1

		var connector string
		if isRoot {
			connector = ""
		} else if isLastChild {
			connector = prefix + "   |_"
		} else {
			connector = prefix + "  |_"
		}

		if child.IsFile {
			color.Yellow("%s%s", connector, child.Name)
		} else {
			color.Cyan("%s%s", connector, child.Name)
		}

		if child.IsFile && len(child.Failures) > 0 {
			for j, failure := range child.Failures {
				isLastCase := j == len(child.Failures)-1
				var casePrefix string
				if isLastChild {
					if isLastCase {
						casePrefix = strings.ReplaceAll(prefix, "|", " ") + "        |_"
					} else {
						casePrefix = prefix + "  |        |_"
					}
				} else {
					if isLastCase {
						casePrefix = prefix + "  |        |_"
					} else {
						casePrefix = prefix + "  |  |     |_"
					}
				}
				color.Red("%s%s", casePrefix, failure.TestName)
			}
		}

		var newPrefix string
		if isRoot {
			newPrefix = "  "
		} else if isLastChild {
			newPrefix = strings.ReplaceAll(prefix, "|", " ") + "  "
		} else {
			newPrefix = prefix + "  |"
		}
		f.printTreeNode(child, newPrefix, isLastChild, false)
	}
}

// CountTestCases returns the total number of test cases across the given test classes.
func (f *Formatter) CountTestCases(classes []domain.ClassName) (int, error) {
	var total int
	for _, class := range classes {
		cases, err := f.parser.FindTestCases(class)
		if err != nil {
			return 0, err
		}
		total += len(cases)
	}
	return total, nil
}

// PrintTestList prints a list of test classes, optionally with test cases.
// failed is optional; classes in this set are marked with [F] in red (from last run).
func (f *Formatter) PrintTestList(classes []domain.ClassName, showTestCases bool, failed map[domain.ClassName]struct{}) error {
	if showTestCases {
		color.Green("Found %d test file(s) with test cases:\n", len(classes))

		for i, class := range classes {
			testCases, err := f.parser.FindTestCases(class)
			if err != nil {
				color.Red("Error reading test file %s: %v", class, err)
				continue
			}

			isLastFile := i == len(classes)-1
			f.printListEntry(class, isLastFile, failed)

			if len(testCases) == 0 {
				var prefix string
				if isLastFile {
					prefix = "    └── "
				} else {
					prefix = "│   └── "
				}
				fmt.Printf("%s%s\n", prefix, color.RedString("(no test cases found)"))
			} else {
				for j, testCase := range testCases {
					isLastCase := j == len(testCases)-1

					var prefix string
					if isLastFile {
						if isLastCase {
							prefix = "    └── "
						} else {
							prefix = "    ├── "
						}
					} else {
						if isLastCase {
							prefix = "│   └── "
						} else {
							prefix = "│   ├── "
						}
					}

					fmt.Printf("%s%s\n", prefix, color.YellowString(testCase))
				}
			}

			if i < len(classes)-1 {
				fmt.Println()
			}
		}
	} else {
		color.Green("Found %d test file(s):\n", len(classes))

		for i, class := range classes {
			f.printListEntry(class, i == len(classes)-1, failed)
		}
	}

	return nil
}

func (f *Formatter) printListEntry(class domain.ClassName, isLast bool, failed map[domain.ClassName]struct{}) {
	relPath, err := filepath.Rel(f.config.ProjectPath, class.String())
	if err != nil {
		relPath = class.String()
	}

	failMarker := ""
	if _, ok := failed[class]; ok {
		failMarker = " " + color.RedString("[F]")
	}

	if isLast {
		color.Cyan("└── %s%s", relPath, failMarker)
	} else {
		color.Cyan("├── %s%s", relPath, failMarker)
	}
}
