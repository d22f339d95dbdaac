package commands

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"ptsched/internal/config"
	"ptsched/internal/discovery"
	"ptsched/internal/storage"
	"ptsched/internal/ui"
)

// ListCommand handles the list command
type ListCommand struct {
	config    *config.Config
	scanner   *discovery.Scanner
	filter    *discovery.Filter
	storage   storage.Storage
	formatter *ui.Formatter
}

// NewListCommand creates a new ListCommand
func NewListCommand(
	cfg *config.Config,
	scanner *discovery.Scanner,
	filter *discovery.Filter,
	st storage.Storage,
	formatter *ui.Formatter,
) *ListCommand {
	return &ListCommand{
		config:    cfg,
		scanner:   scanner,
		filter:    filter,
		storage:   st,
		formatter: formatter,
	}
}

// Execute runs the command
func (lc *ListCommand) Execute(cmd *cobra.Command, args []string) error {
	classes, err := lc.scanner.Scan(lc.config.GetTestPath())
	if err != nil {
		return err
	}

	classes = lc.filter.Apply(classes, lc.config.Flags.NameFilter)

	if len(classes) == 0 {
		color.Yellow("No tests found")
		return nil
	}

	return lc.formatter.PrintTestList(classes, lc.config.Flags.TestCases, lc.storage.FailedClasses())
}
