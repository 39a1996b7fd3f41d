package slotwatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/jpalmerr/slotwatch/schedule"
)

// Notifier delivers a non-empty list of slots somewhere a human will see it.
type Notifier interface {
	Notify(ctx context.Context, slots []schedule.Slot) error
}

// wConfig holds mutable state during Watcher construction.
type wConfig struct {
	source          Source
	interval        time.Duration
	rules           schedule.Rules
	pushPlus        PushPlus
	notifier        Notifier
	statusPort      int
	logger          *slog.Logger
	reportCallbacks []func(Report)
}

// Option configures a [Watcher] during construction.
// Options return an error if validation fails.
type Option func(*wConfig) error

// WithSource sets the appointment API request.
//
// Returns an error if the URL is not an absolute http(s) URL.
func WithSource(s Source) Option {
	return func(cfg *wConfig) error {
		u, err := url.Parse(s.URL)
		if err != nil {
			return fmt.Errorf("invalid source url: %w", err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("source url scheme must be http or https, got %q", u.Scheme)
		}
		if s.Timeout < 0 {
			return errors.New("source timeout cannot be negative")
		}
		cfg.source = s
		return nil
	}
}

// WithInterval sets how often the API is checked. Defaults to one minute.
//
// Returns an error if the duration is zero or negative.
func WithInterval(d time.Duration) Option {
	return func(cfg *wConfig) error {
		if d <= 0 {
			return errors.New("interval must be positive")
		}
		cfg.interval = d
		return nil
	}
}

// WithRules sets the filter rules. Defaults to [schedule.DefaultRules].
//
// Returns an error if the cutoff month/day does not name a real date.
func WithRules(r schedule.Rules) Option {
	return func(cfg *wConfig) error {
		if r.CutoffMonth < time.January || r.CutoffMonth > time.December {
			return fmt.Errorf("cutoff month out of range: %d", r.CutoffMonth)
		}
		// Feb 29 is valid in leap years, so check against one
		if d := time.Date(2024, r.CutoffMonth, r.CutoffDay, 0, 0, 0, 0, time.UTC); d.Day() != r.CutoffDay {
			return fmt.Errorf("cutoff day %d invalid for %s", r.CutoffDay, r.CutoffMonth)
		}
		cfg.rules = r
		return nil
	}
}

// WithPushPlus configures the PushPlus notifier. Ignored when [WithNotifier]
// is also given.
func WithPushPlus(p PushPlus) Option {
	return func(cfg *wConfig) error {
		if p.URL != "" {
			if u, err := url.Parse(p.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
				return fmt.Errorf("invalid pushplus url %q", p.URL)
			}
		}
		cfg.pushPlus = p
		return nil
	}
}

// WithNotifier replaces the PushPlus notifier with n.
//
// Returns an error if n is nil.
func WithNotifier(n Notifier) Option {
	return func(cfg *wConfig) error {
		if n == nil {
			return errors.New("notifier cannot be nil")
		}
		cfg.notifier = n
		return nil
	}
}

// WithStatusPort serves the last cycle's report on port. Zero (the default)
// disables the status server.
//
// Returns an error if the port is outside 0-65535.
func WithStatusPort(port int) Option {
	return func(cfg *wConfig) error {
		if port < 0 || port > 65535 {
			return errors.New("status port must be between 0 and 65535")
		}
		cfg.statusPort = port
		return nil
	}
}

// WithLogger sets the logger. If not specified, [slog.Default] is used.
//
// Returns an error if the logger is nil.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *wConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithReportCallback registers a function called after every cycle.
//
// Callbacks run synchronously on the check loop, in registration order;
// a slow callback delays the next cycle. Panics are recovered and logged.
// Nil callbacks are silently ignored.
func WithReportCallback(cb func(Report)) Option {
	return func(cfg *wConfig) error {
		if cb == nil {
			return nil
		}
		cfg.reportCallbacks = append(cfg.reportCallbacks, cb)
		return nil
	}
}
