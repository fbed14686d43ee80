// reminders runs reminder sweeps outside the HTTP server, for cron jobs and for
// previewing what a sweep would send.
//
// Usage:
//
//	reminders sweep
//	reminders sweep --dry-run
//	reminders sweep --now 2024-06-10T09:00:00Z --dry-run
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "reminders",
		Short: "Send sponsor deliverable reminders",
		Long: `reminders sends due-date reminders to deliverable assignees and overdue
digests to organization admins, using the same configuration as the API server.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(sweepCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
