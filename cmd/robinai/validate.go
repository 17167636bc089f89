package main

import (
	"fmt"
	"os"

	"github.com/robinsondorm/robinai/adapters/sqlite"
	"github.com/robinsondorm/robinai/config"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration before deployment",
	Long: `Validate the Robin AI configuration file.

Checks:
  - YAML syntax is valid
  - Required fields are present
  - Database is writable (optional)

Examples:
  robinai validate
  robinai validate --config /etc/robinai/config.yaml`,
	RunE: runValidate,
}

var (
	validateCheckDatabase bool
)

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().BoolVar(&validateCheckDatabase, "check-database", false, "check if database is writable")
}

func runValidate(cmd *cobra.Command, args []string) error {
	fmt.Printf("Validating %s...\n\n", cfgFile)

	// Check file exists
	if _, err := os.Stat(cfgFile); os.IsNotExist(err) {
		fmt.Printf("  %s Config file exists\n", crossMark)
		return fmt.Errorf("config file not found: %s", cfgFile)
	}
	fmt.Printf("  %s Config file exists\n", checkMark)

	// Load and validate config
	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Printf("  %s Config syntax valid\n", crossMark)
		return fmt.Errorf("config error: %w", err)
	}
	fmt.Printf("  %s Config syntax valid\n", checkMark)

	// Show config summary
	fmt.Printf("  %s Model: %s\n", checkMark, cfg.OpenAI.Model)
	fmt.Printf("  %s Bot name: %s\n", checkMark, cfg.GroupMe.BotName)
	fmt.Printf("  %s Daily token limit: %d\n", checkMark, cfg.Budget.DailyLimit)
	fmt.Printf("  %s Database: %s\n", checkMark, cfg.Database.DSN)
	fmt.Printf("  %s Mention gating: %v\n", checkMark, cfg.Bot.RequireMentionEnabled())

	// Optional: check database
	if validateCheckDatabase {
		if err := checkDatabaseWritable(cfg.Database.DSN); err != nil {
			fmt.Printf("  %s Database writable\n", crossMark)
			fmt.Printf("      Error: %v\n", err)
		} else {
			fmt.Printf("  %s Database writable\n", checkMark)
		}
	}

	fmt.Println()
	fmt.Println("Configuration is valid.")
	return nil
}

func checkDatabaseWritable(dsn string) error {
	db, err := sqlite.Open(dsn)
	if err != nil {
		return err
	}
	defer db.Close()
	return nil
}

const (
	checkMark = "\033[32m✓\033[0m"
	crossMark = "\033[31m✗\033[0m"
)
