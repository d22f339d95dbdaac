package commands

import (
	"context"
	"fmt"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"ptsched/internal/config"
	"ptsched/internal/discovery"
	"ptsched/internal/domain"
	"ptsched/internal/execution"
	"ptsched/internal/migration"
	"ptsched/internal/parser"
	"ptsched/internal/pipeline"
	"ptsched/internal/schedule"
	"ptsched/internal/storage"
	"ptsched/internal/ui"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// RunCommand handles the run command
type RunCommand struct {
	config    *config.Config
	scanner   *discovery.Scanner
	parser    *parser.PHPUnitParser
	storage   storage.Storage
	formatter *ui.Formatter
	migrator  migration.Migrator
}

// NewRunCommand creates a new RunCommand
func NewRunCommand(
	cfg *config.Config,
	scanner *discovery.Scanner,
	phpunitParser *parser.PHPUnitParser,
	st storage.Storage,
	formatter *ui.Formatter,
	migrator migration.Migrator,
) *RunCommand {
	return &RunCommand{
		config:    cfg,
		scanner:   scanner,
		parser:    phpunitParser,
		storage:   st,
		formatter: formatter,
		migrator:  migrator,
	}
}

// Execute runs the command
func (rc *RunCommand) Execute(cmd *cobra.Command, args []string) error {
	config.LoadEnv(rc.config.ProjectPath)

	slots := rc.config.EffectiveSlots()

	if rc.config.Flags.Migrate {
		if err := rc.migrator.Run(slots, rc.config.Flags.NoFresh); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		fmt.Println()
	}

	classes, err := rc.scanner.Scan(rc.config.GetTestPath())
	if err != nil {
		return err
	}

	// Last run's outcome drives this run's scheduling
	failed := rc.storage.FailedClasses()
	durations := rc.storage.DurationHints()

	if rc.config.Flags.OnlyFailed {
		classes = keepFailed(classes, failed)
		if len(classes) == 0 {
			color.Green("✓ No failed tests from the last run")
			return nil
		}
	}

	if len(classes) == 0 {
		color.Yellow("No tests to execute")
		return nil
	}

	// SIGINT/SIGTERM cancel the run: queued classes are abandoned and
	// in-flight phpunit processes are killed through ctx.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	progressBar := ui.NewProgressBar(len(classes))
	var progressMu sync.Mutex
	var completed, passedCases, failedCases int

	p := pipeline.Build(pipeline.Options{
		Pattern:      rc.config.Flags.Filter,
		Failed:       failed,
		Strategy:     schedule.ForKind(schedule.Kind(rc.config.Strategy), durations),
		Slots:        slots,
		RestartEvery: rc.config.RestartEvery,
		Workers:      execution.NewFactory(ctx, rc.config),
		OnResult: func(result domain.TestResult) {
			casePassed, caseFailed := rc.parser.ParseTestCounts(result)
			progressMu.Lock()
			completed++
			passedCases += casePassed
			failedCases += caseFailed
			progressBar.Update(completed, passedCases, failedCases)
			progressMu.Unlock()
		},
	})

	startTime := time.Now()
	p.Start()

	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			p.Cancel()
		case <-done:
		}
	}()

	for _, class := range classes {
		p.Submit(class)
	}
	p.Drain()
	close(done)
	progressBar.Finish()

	duration := time.Since(startTime)
	results := p.Results()

	var failures []domain.TestFailure
	for _, result := range results {
		if !result.Success {
			failures = append(failures, rc.parser.ParseFailure(result)...)
		}
	}

	strategyName := rc.config.Strategy
	if p.UsingFallback() {
		strategyName = string(schedule.KindRoundRobin)
	}
	meta := storage.RunMeta{
		Slots:        slots,
		RestartEvery: rc.config.RestartEvery,
		Strategy:     strategyName,
		Cancelled:    p.Cancelled(),
	}
	if err := rc.storage.Save(results, failures, duration, meta); err != nil {
		return fmt.Errorf("failed to save test results: %w", err)
	}

	if err := rc.formatter.PrintMetaStats(); err != nil {
		return err
	}
	rc.formatter.PrintUndispatched(p.Undispatched())

	return nil
}

// keepFailed restricts the discovered classes to those in the failed set.
func keepFailed(classes []domain.ClassName, failed map[domain.ClassName]struct{}) []domain.ClassName {
	var kept []domain.ClassName
	for _, class := range classes {
		if _, ok := failed[class]; ok {
			kept = append(kept, class)
		}
	}
	return kept
}
