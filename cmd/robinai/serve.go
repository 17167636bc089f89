package main

import (
	"fmt"
	"os"

	"github.com/robinsondorm/robinai/bootstrap"
	"github.com/robinsondorm/robinai/config"
	"github.com/spf13/cobra"
)

var (
	hotReload bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the webhook server",
	Long: `Start the Robin AI webhook server.

The server will:
  - Load configuration from robinai.yaml (or --config)
  - Or load configuration from ROBINAI_* environment variables
  - Open the usage log database
  - Receive GroupMe callbacks on /webhook and post AI replies

Environment variables (for Docker deployments):
  ROBINAI_OPENAI_API_KEY     - OpenAI API key (required)
  ROBINAI_GROUPME_BOT_ID     - GroupMe bot ID (required)
  ROBINAI_BUDGET_DAILY_LIMIT - Daily token cap (default: 50000)
  ROBINAI_DATABASE_DSN       - Usage log path (default: robinai.db)
  ROBINAI_SERVER_PORT        - Server port (default: 8080)
  ROBINAI_LOG_LEVEL          - Log level: debug, info, warn, error

Examples:
  robinai serve
  robinai serve --config /etc/robinai/config.yaml
  robinai serve --hot-reload=false

  # Docker (env vars only):
  ROBINAI_OPENAI_API_KEY=sk-... ROBINAI_GROUPME_BOT_ID=... robinai serve`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().BoolVar(&hotReload, "hot-reload", true, "enable hot reload of configuration")
}

func runServe(cmd *cobra.Command, args []string) error {
	hasConfigFile := false
	if _, err := os.Stat(cfgFile); err == nil {
		hasConfigFile = true
	}

	hasEnvConfig := config.HasEnvConfig()

	// No configuration at all
	if !hasConfigFile && !hasEnvConfig {
		fmt.Println("No configuration found.")
		fmt.Println()
		fmt.Printf("Option 1: Create %s with openai.api_key and groupme.bot_id\n", cfgFile)
		fmt.Println("Option 2: Set ROBINAI_OPENAI_API_KEY and ROBINAI_GROUPME_BOT_ID")
		fmt.Println()
		fmt.Println("Example (env vars):")
		fmt.Println("  ROBINAI_OPENAI_API_KEY=sk-... ROBINAI_GROUPME_BOT_ID=... robinai serve")
		return nil
	}

	// Create application
	var app *bootstrap.App
	var err error

	if hasConfigFile && hotReload {
		// Hot reload only works with config file
		app, err = bootstrap.NewWithHotReload(cfgFile)
	} else {
		// Load config (file with env overrides, or env-only)
		cfg, loadErr := config.LoadWithFallback(cfgFile)
		if loadErr != nil {
			return fmt.Errorf("error loading config: %w", loadErr)
		}

		if !hasConfigFile {
			fmt.Println("Running with environment variables (no config file)")
		}

		app, err = bootstrap.New(cfg)
	}

	if err != nil {
		return fmt.Errorf("error initializing: %w", err)
	}

	// Run (blocks until shutdown)
	return app.Run()
}
