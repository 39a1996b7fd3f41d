package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run a single check and exit",
	Long: `Fetch the schedule once, print any bookable slots and send the
notification, then exit. Useful from cron or to try a config.

Fetch and notification failures are logged; the exit code is non-zero only
for configuration errors.

Example:
  slotwatch check -c slotwatch.yaml`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().StringP("config", "c", "", "path to config file (optional)")
}

func runCheck(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	w, err := newWatcher(cmd, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	report := w.Check(ctx)
	logger.Info("check complete",
		"slots", len(report.Slots),
		"notified", report.Notified,
		"duration_ms", report.Duration.Milliseconds(),
	)
	return nil
}
