package main

import (
	"fmt"
	"os"

	"ptsched/internal/cli"
	"ptsched/internal/cli/commands"
	"ptsched/internal/config"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:     "ptsched",
		Short:   "Parallel PHPUnit test scheduler",
		Long:    `A parallel scheduler and runner for PHPUnit tests. Orders test classes by previous failures and durations, balances them across worker slots and executes them in parallel to cut test suite wall time.`,
		Version: version,
	}

	cfg := config.New()

	var flags cli.Flags

	cmds := commands.NewCommands(cfg)
	cmds.Register(rootCmd, &flags, cfg)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
