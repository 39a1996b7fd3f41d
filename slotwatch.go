package slotwatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jpalmerr/slotwatch/dashboard"
	"github.com/jpalmerr/slotwatch/internal/logging"
	"github.com/jpalmerr/slotwatch/internal/notify"
	"github.com/jpalmerr/slotwatch/internal/poller"
	"github.com/jpalmerr/slotwatch/internal/server"
	"github.com/jpalmerr/slotwatch/internal/store"
	"github.com/jpalmerr/slotwatch/schedule"
)

// ErrNoData means the API produced nothing to evaluate this tick.
var ErrNoData = errors.New("no data")

// Watcher runs the fetch, filter and notify cycle on a fixed cadence.
//
// The typical lifecycle is:
//
//	w, err := slotwatch.New(opts...)
//	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer cancel()
//	w.Start(ctx) // blocks until ctx is cancelled
type Watcher struct {
	source          Source
	interval        time.Duration
	statusPort      int
	client          *poller.Client
	evaluator       *schedule.Evaluator
	notifier        Notifier
	store           *store.MemoryStore
	logger          *slog.Logger
	reportCallbacks []func(Report)
}

// New creates a [Watcher] with the given options.
//
// Defaults: [DefaultSource], one-minute interval, [schedule.DefaultRules],
// PushPlus without a token (delivery skipped), no status server.
func New(opts ...Option) (*Watcher, error) {
	cfg := &wConfig{
		source:   DefaultSource(),
		interval: DefaultInterval,
		rules:    schedule.DefaultRules(),
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	client := poller.NewClient()

	notifier := cfg.notifier
	if notifier == nil {
		var nopts []notify.Option
		if cfg.pushPlus.URL != "" {
			nopts = append(nopts, notify.WithURL(cfg.pushPlus.URL))
		}
		if cfg.pushPlus.TitleSuffix != "" {
			nopts = append(nopts, notify.WithTitleSuffix(cfg.pushPlus.TitleSuffix))
		}
		nopts = append(nopts, notify.WithTimeout(cfg.pushPlus.Timeout))
		notifier = notify.NewPushPlus(client, cfg.pushPlus.Token, logger, nopts...)
	}

	return &Watcher{
		source:          cfg.source,
		interval:        cfg.interval,
		statusPort:      cfg.statusPort,
		client:          client,
		evaluator:       schedule.NewEvaluator(cfg.rules, logger),
		notifier:        notifier,
		store:           store.NewMemoryStore(),
		logger:          logger,
		reportCallbacks: cfg.reportCallbacks,
	}, nil
}

// Interval returns the configured check interval.
func (w *Watcher) Interval() time.Duration {
	return w.interval
}

// Source returns the configured API request.
func (w *Watcher) Source() Source {
	return w.source
}

// Rules returns the filter rules in effect.
func (w *Watcher) Rules() schedule.Rules {
	return w.evaluator.Rules()
}

// Start runs a check immediately and then every interval until ctx is
// cancelled. It blocks for the watcher's lifetime.
//
// Returns nil on graceful shutdown. Returns an error only if the status
// server cannot bind its port.
func (w *Watcher) Start(ctx context.Context) error {
	w.logger.Info("号源监控已启动...", "interval", w.interval.String())

	if ctx.Err() != nil {
		return nil
	}

	if w.statusPort != 0 {
		srv := server.NewServer(w.store, w.statusPort, dashboard.Assets, w.logger)
		if err := srv.Start(ctx); err != nil {
			return fmt.Errorf("failed to start status server: %w", err)
		}
		w.logger.Info("status server listening", "port", srv.Port())
	}

	scheduler := poller.NewScheduler(w.interval, func(ctx context.Context) {
		w.Check(ctx)
	}, w.logger)
	scheduler.Start(ctx)

	<-ctx.Done()
	scheduler.Stop()
	w.client.Close()

	w.logger.Info("监控已手动停止")
	return nil
}

// Check runs one cycle: fetch, filter and, when slots are found, notify.
//
// Check never returns an error; failures are logged and recorded in the
// returned [Report].
func (w *Watcher) Check(ctx context.Context) Report {
	report := Report{
		ID:        uuid.NewString(),
		StartedAt: time.Now(),
	}

	w.runCycle(ctx, &report)

	report.Duration = time.Since(report.StartedAt)
	w.publish(report)
	return report
}

func (w *Watcher) runCycle(ctx context.Context, report *Report) {
	w.logger.Info("开始检查号源...")
	w.logger.Info("current_time:" + report.StartedAt.Format("2006-01-02 15:04"))

	payload, err := w.fetch(ctx)
	if err != nil {
		report.Err = err
		return
	}
	report.Fetched = true

	report.Slots = w.evaluator.Filter(payload)
	if len(report.Slots) == 0 {
		w.logger.Info("当前没有符合要求的号源")
		return
	}

	logging.Success(w.logger, fmt.Sprintf("发现 %d 个可用号源！", len(report.Slots)))

	switch err := w.notifier.Notify(ctx, report.Slots); {
	case err == nil:
		report.Notified = true
		logging.Success(w.logger, "微信通知发送成功")
	case errors.Is(err, notify.ErrSkipped):
		w.logger.Info("微信通知已跳过: 未配置 token")
	default:
		report.Err = err
		w.logger.Warn("微信通知发送失败")
	}

	for _, s := range report.Slots {
		w.logger.Info(fmt.Sprintf("[可用号源] %s %s %s | %s | 诊室: %s",
			s.Department, s.Date, s.TimeRange, s.State, s.Address))
	}
}

// fetch requests the schedule payload and decodes it.
//
// Any failure is logged at ERROR and reported as [ErrNoData]. A decoded
// payload that is falsy (null, false, 0, "", [], {}) also counts as no data.
func (w *Watcher) fetch(ctx context.Context) (any, error) {
	resp := w.client.Fetch(ctx, poller.Request{
		URL:     w.source.URL,
		Headers: w.source.Headers,
		Query:   w.source.Query,
		Timeout: w.source.Timeout,
	})
	if err := resp.Err(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", ErrNoData, ctx.Err())
		}
		w.logger.Error("请求失败: "+err.Error(), "latency_ms", resp.Latency.Milliseconds())
		return nil, fmt.Errorf("%w: %v", ErrNoData, err)
	}

	var payload any
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		w.logger.Error("JSON解析失败: " + err.Error())
		return nil, fmt.Errorf("%w: decode: %v", ErrNoData, err)
	}

	if isEmpty(payload) {
		return nil, ErrNoData
	}
	return payload, nil
}

// isEmpty reports whether a decoded payload is falsy: null, false, 0, "",
// [] or {}.
func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case bool:
		return !t
	case float64:
		return t == 0
	case string:
		return t == ""
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	default:
		return false
	}
}

// publish stores the report and runs callbacks.
func (w *Watcher) publish(r Report) {
	w.store.Update(r.toStore())
	for _, cb := range w.reportCallbacks {
		invokeCallbackSafe(cb, r, w.logger)
	}
}

// invokeCallbackSafe calls a report callback with panic recovery.
func invokeCallbackSafe(cb func(Report), r Report, logger *slog.Logger) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("report callback panicked", "panic", fmt.Sprint(rec), "cycle", r.ID)
		}
	}()
	cb(r)
}
