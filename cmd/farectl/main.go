package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "farectl",
		Short:         "Inspect and seed the fare insight database",
		Long:          "farectl seeds sample fares and prints the same summaries and alerts the API serves.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("db", "", "SQLite database path (default: $DATABASE_PATH)")
	root.PersistentFlags().String("log-level", "error", "log level (debug, info, warn, error)")

	root.AddCommand(seedCmd())
	root.AddCommand(summaryCmd())
	root.AddCommand(alertsCmd())
	root.AddCommand(routeStatsCmd())
	return root
}

func main() {
	_ = godotenv.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	cancel()

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
