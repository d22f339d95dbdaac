package migration

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"ptsched/internal/config"
	"ptsched/internal/domain"
)

// LaravelMigrator implements Migrator for Laravel migrations
type LaravelMigrator struct {
	config          *config.Config
	databaseManager *DatabaseManager
}

// NewLaravelMigrator creates a new LaravelMigrator
func NewLaravelMigrator(cfg *config.Config, dbManager *DatabaseManager) *LaravelMigrator {
	return &LaravelMigrator{
		config:          cfg,
		databaseManager: dbManager,
	}
}

// Run migrates every slot's database in parallel
func (lm *LaravelMigrator) Run(slots int, noFresh bool) error {
	color.Cyan("\n╔════════════════════════════════════════════════════════════╗")
	color.Cyan("║               Running Database Migrations                  ║")
	color.Cyan("╚════════════════════════════════════════════════════════════╝\n")

	ready, err := lm.databaseManager.CheckAndCreateDatabases(slots)
	if err != nil {
		return fmt.Errorf("failed to check databases: %w", err)
	}
	if len(ready) == 0 {
		return fmt.Errorf("no test databases available")
	}

	migrationFiles, err := lm.findMigrationFiles()
	if err != nil {
		return fmt.Errorf("failed to find migration files: %w", err)
	}

	total := len(ready) * len(migrationFiles)
	color.White("Slots: %d | Migration files: %d | Total progress: %d\n\n", len(ready), len(migrationFiles), total)

	progress := newMigrationProgress(total)

	var wg sync.WaitGroup
	results := make(chan domain.MigrationResult, len(ready))
	startTime := time.Now()

	for _, slot := range ready {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			results <- lm.migrateSlot(slot, progress, noFresh)
		}(slot)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var failed []domain.MigrationResult
	for result := range results {
		if !result.Success {
			failed = append(failed, result)
		}
	}

	progress.finish()
	duration := time.Since(startTime)

	fmt.Print("\n")
	if len(failed) > 0 {
		color.Red("✗ Migration failed for %d slot(s)\n", len(failed))
		for _, result := range failed {
			color.Red("  Slot %d (DB: %s): %v\n", result.Slot, lm.config.GetDatabaseName(result.Slot), result.Error)
		}
		return fmt.Errorf("migration failed for %d slot(s)", len(failed))
	}

	color.Green("✓ Migrations completed successfully for all %d slot(s)\n", len(ready))
	color.White("Duration: %s\n", duration.Round(time.Millisecond))
	return nil
}

// findMigrationFiles discovers all migration files in database/migrations
func (lm *LaravelMigrator) findMigrationFiles() ([]string, error) {
	migrationsPath := filepath.Join(lm.config.ProjectPath, "database", "migrations")
	var migrationFiles []string

	err := filepath.WalkDir(migrationsPath, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(d.Name(), ".php") {
			migrationFiles = append(migrationFiles, path)
		}
		return nil
	})

	return migrationFiles, err
}

// migrateSlot runs migrate or migrate:fresh against one slot's database,
// streaming artisan output into the shared progress bar.
func (lm *LaravelMigrator) migrateSlot(slot int, progress *migrationProgress, noFresh bool) domain.MigrationResult {
	fail := func(err error) domain.MigrationResult {
		return domain.MigrationResult{Slot: slot, Success: false, Error: err}
	}

	projectAbsPath, err := filepath.Abs(lm.config.ProjectPath)
	if err != nil {
		return fail(fmt.Errorf("failed to get absolute project path: %w", err))
	}

	migrateCmd := "migrate:fresh"
	if noFresh {
		migrateCmd = "migrate"
	}

	artisanPath := filepath.Join(projectAbsPath, "artisan")
	cmd := exec.Command("php", artisanPath, migrateCmd, "--env=testing", "--force")
	cmd.Dir = projectAbsPath
	cmd.Env = append(os.Environ(), fmt.Sprintf("DB_DATABASE=%s", lm.config.GetDatabaseName(slot)))

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fail(fmt.Errorf("failed to create stdout pipe: %w", err))
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fail(fmt.Errorf("failed to create stderr pipe: %w", err))
	}

	if err := cmd.Start(); err != nil {
		return fail(fmt.Errorf("failed to start command: %w", err))
	}

	var outputMu sync.Mutex
	var outputBuilder strings.Builder
	var scanWg sync.WaitGroup

	stream := func(r io.Reader) {
		defer scanWg.Done()
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			line := scanner.Text()
			outputMu.Lock()
			outputBuilder.WriteString(line)
			outputBuilder.WriteString("\n")
			outputMu.Unlock()
			progress.observe(line)
		}
	}

	scanWg.Add(2)
	go stream(stdout)
	go stream(stderr)

	err = cmd.Wait()
	scanWg.Wait()

	return domain.MigrationResult{
		Slot:    slot,
		Success: err == nil,
		Output:  outputBuilder.String(),
		Error:   err,
	}
}

// migrationProgress tracks per-migration-file progress across all slots
type migrationProgress struct {
	mu        sync.Mutex
	completed int
	bar       *progressbar.ProgressBar
}

func newMigrationProgress(total int) *migrationProgress {
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetDescription(
			color.CyanString("Migrating: ")+
				color.GreenString("[completed: 0/%d]", total),
		),
		progressbar.OptionSetWidth(50),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        color.CyanString("█"),
			SaucerHead:    color.CyanString("█"),
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(os.Stderr, "\n")
		}),
		progressbar.OptionSetRenderBlankState(true),
	)
	return &migrationProgress{bar: bar}
}

// observe counts an artisan output line as one migration step, skipping the
// chatter that isn't per-file progress.
func (mp *migrationProgress) observe(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}

	skipPatterns := []string{"Dropping all tables", "Dropped all tables", "Nothing to migrate", "Migration table created"}
	for _, skip := range skipPatterns {
		if strings.Contains(line, skip) {
			return
		}
	}

	mp.mu.Lock()
	mp.completed++
	current := mp.completed
	mp.mu.Unlock()

	mp.bar.Set(current)
	mp.bar.Describe(color.CyanString("Migrating: ") +
		color.GreenString("[completed: %d/%d]", current, mp.bar.GetMax()))
}

func (mp *migrationProgress) finish() {
	mp.bar.Finish()
}
