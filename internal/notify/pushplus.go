package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jpalmerr/slotwatch/internal/poller"
	"github.com/jpalmerr/slotwatch/schedule"
)

// Defaults for the PushPlus webhook.
const (
	DefaultURL         = "https://www.pushplus.plus/send"
	DefaultTitleSuffix = "号源监控"
	DefaultTimeout     = 10 * time.Second

	titleLayout = "2006-01-02 15:04"
)

var (
	// ErrNotifyFailed wraps every delivery failure.
	ErrNotifyFailed = errors.New("notification failed")

	// ErrSkipped is returned when no token is configured.
	ErrSkipped = errors.New("notification skipped: no token configured")
)

// Fetcher performs one outbound HTTP call; *poller.Client satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context, r poller.Request) poller.Response
}

// PushPlus delivers slot tables to the PushPlus "send" endpoint.
type PushPlus struct {
	client      Fetcher
	url         string
	token       string
	titleSuffix string
	timeout     time.Duration
	logger      *slog.Logger
	now         func() time.Time
}

// Option configures a [PushPlus] notifier.
type Option func(*PushPlus)

// WithURL overrides the webhook endpoint.
func WithURL(u string) Option {
	return func(p *PushPlus) { p.url = u }
}

// WithTitleSuffix overrides the text appended to the timestamp in the title.
func WithTitleSuffix(s string) Option {
	return func(p *PushPlus) { p.titleSuffix = s }
}

// WithTimeout overrides the request timeout.
func WithTimeout(d time.Duration) Option {
	return func(p *PushPlus) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithClock overrides the clock used for the title timestamp.
func WithClock(now func() time.Time) Option {
	return func(p *PushPlus) { p.now = now }
}

// NewPushPlus creates a notifier that authenticates with token.
func NewPushPlus(client Fetcher, token string, logger *slog.Logger, opts ...Option) *PushPlus {
	if logger == nil {
		logger = slog.Default()
	}
	p := &PushPlus{
		client:      client,
		url:         DefaultURL,
		token:       token,
		titleSuffix: DefaultTitleSuffix,
		timeout:     DefaultTimeout,
		logger:      logger,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Title returns the message title for the current local time.
func (p *PushPlus) Title() string {
	return p.now().Format(titleLayout) + p.titleSuffix
}

// Notify renders slots and submits them as a single GET request.
//
// An empty slot list is a no-op. Without a token Notify returns [ErrSkipped]
// and sends nothing. Every delivery failure wraps [ErrNotifyFailed] and is
// logged at ERROR.
func (p *PushPlus) Notify(ctx context.Context, slots []schedule.Slot) error {
	if len(slots) == 0 {
		return nil
	}
	if p.token == "" {
		return ErrSkipped
	}

	body, err := RenderHTML(slots)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotifyFailed, err)
	}

	title := p.Title()
	resp := p.client.Fetch(ctx, poller.Request{
		URL: p.url,
		Query: map[string]string{
			"token":    p.token,
			"title":    title,
			"content":  title + body,
			"template": "html",
		},
		Timeout: p.timeout,
	})
	if err := resp.Err(); err != nil {
		p.logger.Error("微信通知发送失败: "+err.Error(), "latency_ms", resp.Latency.Milliseconds())
		return fmt.Errorf("%w: %v", ErrNotifyFailed, err)
	}

	return nil
}
