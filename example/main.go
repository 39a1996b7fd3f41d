package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jpalmerr/slotwatch"
	"github.com/jpalmerr/slotwatch/internal/logging"
	"github.com/jpalmerr/slotwatch/schedule"
)

// consoleNotifier prints matches instead of calling PushPlus.
type consoleNotifier struct{}

func (consoleNotifier) Notify(_ context.Context, slots []schedule.Slot) error {
	fmt.Printf("  >> would notify about %d slot(s)\n", len(slots))
	return nil
}

func main() {
	logger := logging.New(os.Stdout, nil)

	// start mock server (see mock_server.go)
	go StartMockHospitalServer(":9999")
	time.Sleep(100 * time.Millisecond)

	src := slotwatch.DefaultSource()
	src.URL = "http://localhost:9999/schedule"
	delete(src.Headers, "Host")

	// the mock reports today's date, so push the cutoff to the end of the year
	rules := schedule.DefaultRules()
	rules.CutoffMonth, rules.CutoffDay = time.December, 31

	w, err := slotwatch.New(
		slotwatch.WithSource(src),
		slotwatch.WithRules(rules),
		slotwatch.WithInterval(5*time.Second),
		slotwatch.WithNotifier(consoleNotifier{}),
		slotwatch.WithStatusPort(8080),
		slotwatch.WithLogger(logger),
	)
	if err != nil {
		logger.Error("failed to create watcher", "error", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("  slotwatch demo")
	fmt.Println("  mock hospital API on http://localhost:9999/schedule")
	fmt.Println("  status page on       http://localhost:8080")
	fmt.Println("  Press Ctrl+C to stop")
	fmt.Println()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := w.Start(ctx); err != nil {
		logger.Error("watcher error", "error", err)
		os.Exit(1)
	}
}
