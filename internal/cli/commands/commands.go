package commands

import (
	"ptsched/internal/cli"
	"ptsched/internal/config"
	"ptsched/internal/discovery"
	"ptsched/internal/migration"
	"ptsched/internal/parser"
	"ptsched/internal/storage"
	"ptsched/internal/ui"

	"github.com/spf13/cobra"
)

// Commands holds all CLI commands
type Commands struct {
	Run     *RunCommand
	List    *ListCommand
	Migrate *MigrateCommand
	Faills  *FaillsCommand
}

// NewCommands creates all commands with dependencies
func NewCommands(cfg *config.Config) *Commands {
	scanner := discovery.NewScanner(cfg.PathsToIgnore)
	filter := discovery.NewFilter()
	testCaseParser := discovery.NewParser()
	phpunitParser := parser.NewPHPUnitParser()
	jsonStorage := storage.NewJSONStorage(cfg)
	formatter := ui.NewFormatter(cfg, testCaseParser, jsonStorage)
	dbManager := migration.NewDatabaseManager(cfg)
	migrator := migration.NewLaravelMigrator(cfg, dbManager)
	errorViewer := ui.NewErrorViewer(jsonStorage)

	return &Commands{
		Run:     NewRunCommand(cfg, scanner, phpunitParser, jsonStorage, formatter, migrator),
		List:    NewListCommand(cfg, scanner, filter, jsonStorage, formatter),
		Migrate: NewMigrateCommand(cfg, migrator),
		Faills:  NewFaillsCommand(jsonStorage, errorViewer),
	}
}

// Register registers all commands with cobra
func (c *Commands) Register(rootCmd *cobra.Command, flags *cli.Flags, cfg *config.Config) {
	applyFlags := func(cmd *cobra.Command, args []string) error {
		cfg.Flags = flags.ToConfigFlags()
		if flags.Slots > 0 {
			cfg.SlotCount = flags.Slots
		}
		if flags.RestartEvery > 0 {
			cfg.RestartEvery = flags.RestartEvery
		}
		if flags.Strategy != "" {
			cfg.Strategy = flags.Strategy
		}
		return nil
	}

	// Run command
	runCmd := &cobra.Command{
		Use:     "run",
		Short:   "Run PHPUnit tests in parallel",
		Long:    "Discover PHPUnit tests and execute them across parallel worker slots",
		RunE:    c.Run.Execute,
		PreRunE: applyFlags,
	}
	runCmd.Flags().IntVarP(&flags.Slots, "slots", "p", config.DefaultSlots, "Number of parallel worker slots")
	runCmd.Flags().IntVarP(&flags.RestartEvery, "restart-every", "r", config.DefaultRestartEvery, "Recycle a slot's worker after this many classes (0 keeps workers for the whole run)")
	runCmd.Flags().StringVarP(&flags.Strategy, "strategy", "s", config.DefaultStrategy, "Scheduling strategy: round-robin or duration-greedy")
	runCmd.Flags().StringVarP(&flags.Filter, "filter", "f", "", "Filter tests by name pattern (supports wildcards, e.g., '*UserTest.php' or '*Payment*')")
	runCmd.Flags().BoolVarP(&flags.Migrate, "migrate", "m", false, "Run migrations before executing tests")
	runCmd.Flags().BoolVar(&flags.NoFresh, "no-fresh", false, "Run migrations without fresh (only pending migrations)")
	runCmd.Flags().StringVarP(&flags.TestPath, "test-path", "t", "", "Path to the folder where test detection should start")
	runCmd.Flags().BoolVar(&flags.OnlyFailed, "failed", false, "Run only tests that failed in the last run")
	rootCmd.AddCommand(runCmd)

	// List command
	listCmd := &cobra.Command{
		Use:     "list",
		Short:   "List discovered tests",
		Long:    "Scan and list all PHPUnit tests without executing them",
		RunE:    c.List.Execute,
		PreRunE: applyFlags,
	}
	listCmd.Flags().StringVarP(&flags.NameFilter, "filter", "f", "", "Filter tests by name pattern (supports wildcards, e.g., '*UserTest.php' or '*Payment*')")
	listCmd.Flags().StringVarP(&flags.TestPath, "test-path", "t", "", "Path to the folder where test detection should start")
	listCmd.Flags().BoolVarP(&flags.TestCases, "test-cases", "c", false, "List test cases instead of test files")
	rootCmd.AddCommand(listCmd)

	// Migrate command
	migrateCmd := &cobra.Command{
		Use:     "migrate",
		Short:   "Run database migrations for all test databases",
		Long:    "Execute migrations in parallel for every slot's test database",
		RunE:    c.Migrate.Execute,
		PreRunE: applyFlags,
	}
	migrateCmd.Flags().IntVarP(&flags.Slots, "slots", "p", config.DefaultSlots, "Number of slots to prepare databases for")
	migrateCmd.Flags().BoolVar(&flags.NoFresh, "no-fresh", false, "Run migrations without fresh (only pending migrations)")
	rootCmd.AddCommand(migrateCmd)

	// Faills command
	faillsCmd := &cobra.Command{
		Use:   "faills",
		Short: "View test failures interactively",
		Long:  "Display test failures from the last test run in an interactive viewer",
		RunE:  c.Faills.Execute,
	}
	rootCmd.AddCommand(faillsCmd)
}
