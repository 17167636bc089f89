package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/robinsondorm/robinai/adapters/sqlite"
	"github.com/robinsondorm/robinai/config"
	"github.com/robinsondorm/robinai/domain/budget"
	"github.com/spf13/cobra"
)

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "View token usage statistics",
	Long: `View daily token usage recorded by the responder.

Examples:
  robinai usage today
  robinai usage history --days=14`,
}

var usageTodayCmd = &cobra.Command{
	Use:   "today",
	Short: "Show today's token usage",
	RunE:  runUsageToday,
}

var usageHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show daily usage history",
	RunE:  runUsageHistory,
}

var (
	usageDays int
)

func init() {
	rootCmd.AddCommand(usageCmd)

	usageCmd.AddCommand(usageTodayCmd)
	usageCmd.AddCommand(usageHistoryCmd)

	usageHistoryCmd.Flags().IntVar(&usageDays, "days", 7, "number of days to show")
}

func openDatabase() (*sqlite.DB, *config.Config, error) {
	cfg, err := config.LoadWithFallback(cfgFile)
	if err != nil {
		return nil, nil, err
	}
	db, err := sqlite.Open(cfg.Database.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	return db, cfg, nil
}

func runUsageToday(cmd *cobra.Command, args []string) error {
	db, cfg, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	store := sqlite.NewUsageStore(db)
	today := budget.Day(time.Now())

	used, err := store.TokensOnDay(context.Background(), today)
	if err != nil {
		return fmt.Errorf("failed to get usage: %w", err)
	}

	remaining := cfg.Budget.DailyLimit - used
	if remaining < 0 {
		remaining = 0
	}

	fmt.Printf("Token usage for %s\n\n", today)
	fmt.Printf("Used:      %d\n", used)
	fmt.Printf("Limit:     %d\n", cfg.Budget.DailyLimit)
	fmt.Printf("Remaining: %d\n", remaining)

	return nil
}

func runUsageHistory(cmd *cobra.Command, args []string) error {
	db, _, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	store := sqlite.NewUsageStore(db)
	summaries, err := store.DailySummaries(context.Background(), usageDays)
	if err != nil {
		return fmt.Errorf("failed to get usage history: %w", err)
	}

	if len(summaries) == 0 {
		fmt.Println("No usage history found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DAY\tREPLIES\tTOKENS")
	fmt.Fprintln(w, "---\t-------\t------")

	for _, s := range summaries {
		fmt.Fprintf(w, "%s\t%d\t%d\n", s.Day, s.ReplyCount, s.Tokens)
	}

	w.Flush()
	return nil
}
