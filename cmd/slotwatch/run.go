package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/slotwatch"
	"github.com/jpalmerr/slotwatch/config"
	"github.com/jpalmerr/slotwatch/internal/logging"
)

const shutdownTimeout = 15 * time.Second

// newLogger writes "[time] [LEVEL] message" lines to stdout.
func newLogger() *slog.Logger {
	return logging.New(os.Stdout, slog.LevelInfo)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start monitoring",
	Long: `Check the appointment API immediately and then once per interval,
notifying whenever bookable slots are found.

Runs until interrupted (Ctrl+C) or it receives SIGTERM.

Example:
  slotwatch run
  slotwatch run -c /etc/slotwatch/slotwatch.yaml`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringP("config", "c", "", "path to config file (optional)")
}

// loadConfig reads the file named by --config, or the defaults when unset.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// newWatcher builds a Watcher from the command's config.
func newWatcher(cmd *cobra.Command, logger *slog.Logger) (*slotwatch.Watcher, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	opts, err := config.BuildOptions(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build options: %w", err)
	}
	opts = append(opts, slotwatch.WithLogger(logger))

	w, err := slotwatch.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	if cfg.PushPlus.Token == "" {
		logger.Warn("pushplus token not set, notifications will be skipped")
	}
	return w, nil
}

func runRun(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	w, err := newWatcher(cmd, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 1)
	go func() {
		errChan <- w.Start(ctx)
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		// a check in flight finishes within its request timeouts
		select {
		case err := <-errChan:
			return err
		case <-time.After(shutdownTimeout):
			logger.Warn("shutdown timed out", "timeout", shutdownTimeout.String())
			return nil
		}
	}
}
