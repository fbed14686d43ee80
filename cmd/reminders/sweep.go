package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/yukikurage/sponsor-deliverables-api/internal/clock"
	"github.com/yukikurage/sponsor-deliverables-api/internal/config"
	"github.com/yukikurage/sponsor-deliverables-api/internal/database"
	"github.com/yukikurage/sponsor-deliverables-api/internal/logger"
	"github.com/yukikurage/sponsor-deliverables-api/internal/mailer"
	"github.com/yukikurage/sponsor-deliverables-api/internal/reminder"
	"github.com/yukikurage/sponsor-deliverables-api/internal/repository"
	"go.uber.org/zap"
)

type sweepOptions struct {
	now    string
	dryRun bool
}

func sweepCmd() *cobra.Command {
	opts := &sweepOptions{}

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run one reminder sweep and print the result as JSON",
		Long: `Run one reminder sweep against the configured database.

Examples:
  # Send everything that is due now
  reminders sweep

  # Show what would be sent tomorrow morning without sending or recording anything
  reminders sweep --now 2024-06-11T08:00:00Z --dry-run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSweep(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.now, "now", "", "Sweep as of this RFC3339 instant instead of the current time")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Log messages instead of sending them and leave last_notified_at untouched")

	return cmd
}

func runSweep(cmd *cobra.Command, opts *sweepOptions) error {
	now, err := parseNow(opts.now, opts.dryRun, clock.NewSystem())
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.Must(cfg.LogLevel, cfg.LogEncoding)
	defer log.Sync()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	if err := database.Connect(cfg, log); err != nil {
		return err
	}
	db := database.GetDB()

	var transport mailer.Transport
	if opts.dryRun {
		transport = mailer.NewDryRunTransport(log)
	} else {
		transport = mailer.FromConfig(cfg, log)
	}

	dispatcher := reminder.NewDispatcher(
		repository.NewDeliverableRepository(db),
		repository.NewProfileRepository(db),
		transport,
		reminder.Options{
			Location:      loc,
			LookaheadDays: cfg.ReminderLookaheadDays,
			Concurrency:   cfg.ReminderConcurrency,
			AppURL:        cfg.AppURL,
			DryRun:        opts.dryRun,
		},
		log,
	)

	res, sweepErr := dispatcher.Run(cmd.Context(), now)
	if sweepErr != nil {
		log.Error("Reminder sweep failed", zap.Error(sweepErr))
	}
	if err := printResult(cmd.OutOrStdout(), res); err != nil {
		return err
	}
	return sweepErr
}

// parseNow returns the instant given by raw, or the clock's time when raw is empty.
// A future instant needs dryRun: recorded notifications are never moved back, so a
// real sweep from the future would silence reminders until that time.
func parseNow(raw string, dryRun bool, clk clock.Clock) (time.Time, error) {
	current := clk.Now()
	if raw == "" {
		return current, nil
	}
	now, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --now %q: expected RFC3339", raw)
	}
	if now.After(current) && !dryRun {
		return time.Time{}, fmt.Errorf("--now %s is in the future: use --dry-run", raw)
	}
	return now, nil
}

func printResult(w io.Writer, res reminder.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
