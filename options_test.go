package slotwatch

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpalmerr/slotwatch/schedule"
)

func TestNew_Defaults(t *testing.T) {
	w, err := New()
	require.NoError(t, err)

	assert.Equal(t, DefaultInterval, w.Interval())
	assert.Equal(t, DefaultSourceURL, w.Source().URL)
	assert.Equal(t, schedule.DefaultRules(), w.Rules())
	assert.Zero(t, w.statusPort)
}

func TestOptions_Validation(t *testing.T) {
	tests := []struct {
		name    string
		opt     Option
		wantErr bool
	}{
		{"interval ok", WithInterval(30 * time.Second), false},
		{"interval zero", WithInterval(0), true},
		{"interval negative", WithInterval(-time.Second), true},
		{"source ok", WithSource(Source{URL: "https://example.com/api"}), false},
		{"source no scheme", WithSource(Source{URL: "example.com/api"}), true},
		{"source ftp", WithSource(Source{URL: "ftp://example.com"}), true},
		{"source negative timeout", WithSource(Source{URL: "https://example.com", Timeout: -1}), true},
		{"rules ok", WithRules(schedule.DefaultRules()), false},
		{"rules leap day", WithRules(schedule.Rules{CutoffMonth: time.February, CutoffDay: 29}), false},
		{"rules bad day", WithRules(schedule.Rules{CutoffMonth: time.February, CutoffDay: 30}), true},
		{"rules bad month", WithRules(schedule.Rules{CutoffMonth: 13, CutoffDay: 1}), true},
		{"pushplus ok", WithPushPlus(PushPlus{Token: "t"}), false},
		{"pushplus bad url", WithPushPlus(PushPlus{URL: "not a url"}), true},
		{"notifier nil", WithNotifier(nil), true},
		{"status port ok", WithStatusPort(9090), false},
		{"status port disabled", WithStatusPort(0), false},
		{"status port too high", WithStatusPort(70000), true},
		{"logger nil", WithLogger(nil), true},
		{"logger ok", WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))), false},
		{"nil callback ignored", WithReportCallback(nil), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.opt)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestWithRules_Applied(t *testing.T) {
	rules := schedule.Rules{Cost: 25, CutoffMonth: time.April, CutoffDay: 1, FullMarker: "满"}

	w, err := New(WithRules(rules))
	require.NoError(t, err)

	assert.Equal(t, rules, w.Rules())
}
