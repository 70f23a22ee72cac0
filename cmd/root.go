package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "calsweep",
	Short: "Bulk-deletes Google Calendar events matching a filter",
	Long: `calsweep removes unwanted events from a Google Calendar in bulk.

Events are selected by a title keyword and an optional date range, then
deleted in rate-limited batches. Deletions on read-only calendars are
never attempted, and every run ends with a report of what succeeded,
what failed, and which failures are worth retrying.`,
	SilenceUsage: true,
}

// version is injected via SetVersion before Execute runs
var version = "dev"

// SetVersion records the build version on the root command.
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "calsweep version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newCalendarsCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newPurgeCmd())
	rootCmd.AddCommand(newVersionCmd())
}
