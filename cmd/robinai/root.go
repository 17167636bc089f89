package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "robinai",
	Short: "AI residential assistant bot for GroupMe",
	Long: `Robin AI is a webhook-driven chat responder for a dorm GroupMe group.

It receives message callbacks from GroupMe, answers student questions
through the OpenAI completion API in a fixed RA persona, and posts the
reply back to the group. A daily token budget caps spend.

Quick start:
  robinai serve     # Start the webhook server
  robinai validate  # Validate configuration`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "robinai.yaml", "config file path")
}
