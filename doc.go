// Package slotwatch monitors a hospital appointment API for bookable slots
// and pushes a notification when matching slots appear.
//
// A [Watcher] runs one check cycle immediately and then once per interval:
//
//	fetch payload -> filter with schedule.Evaluator -> notify if non-empty
//
// Cycles never overlap and share no state; each one works from a freshly
// fetched payload. Failures (network, decode, malformed data) are logged and
// end the cycle early but never stop the watcher.
//
// # Quick Start
//
//	w, err := slotwatch.New(
//	    slotwatch.WithPushPlus(slotwatch.PushPlus{Token: os.Getenv("PUSHPLUS_TOKEN")}),
//	)
//	if err != nil {
//	    slog.Error("failed to create watcher", "error", err)
//	    os.Exit(1)
//	}
//
//	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer stop()
//
//	w.Start(ctx) // blocks until ctx is cancelled
//
// # Architecture
//
//   - schedule: the filtering rules and the Slot type
//   - internal/poller: fixed-cadence loop and HTTP client
//   - internal/notify: HTML rendering and PushPlus delivery
//   - internal/store, internal/server: optional read-only view of the last cycle
//   - internal/logging: "[timestamp] [LEVEL] message" console lines
package slotwatch
