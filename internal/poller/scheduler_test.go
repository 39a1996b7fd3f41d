package poller

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testLogger returns a logger that discards all output for clean test output.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func noopJob(context.Context) {}

// TestScheduler_StopBeforeStart verifies that calling Stop() on a scheduler
// that was never started does not panic and closes Done.
func TestScheduler_StopBeforeStart(t *testing.T) {
	scheduler := NewScheduler(time.Minute, noopJob, testLogger())

	scheduler.Stop()

	select {
	case <-scheduler.Done():
	case <-time.After(time.Second):
		t.Error("Done() not closed after Stop()")
	}
}

// TestScheduler_StopTwice verifies that Stop() is idempotent.
func TestScheduler_StopTwice(t *testing.T) {
	scheduler := NewScheduler(time.Minute, noopJob, testLogger())
	scheduler.Start(context.Background())

	assert.NotPanics(t, func() {
		scheduler.Stop()
		scheduler.Stop()
	})
}

// TestScheduler_ImmediateRunOnStart verifies the first run happens without
// waiting for the interval.
func TestScheduler_ImmediateRunOnStart(t *testing.T) {
	ran := make(chan struct{}, 1)
	scheduler := NewScheduler(time.Hour, func(context.Context) {
		select {
		case ran <- struct{}{}:
		default:
		}
	}, testLogger())
	scheduler.Start(context.Background())
	defer scheduler.Stop()

	select {
	case <-ran:
	case <-time.After(500 * time.Millisecond):
		t.Error("timeout waiting for immediate run")
	}
}

// TestScheduler_RunsRepeatedly verifies the job runs again on later ticks.
func TestScheduler_RunsRepeatedly(t *testing.T) {
	var count atomic.Int32
	scheduler := NewScheduler(20*time.Millisecond, func(context.Context) {
		count.Add(1)
	}, testLogger())
	scheduler.Start(context.Background())

	time.Sleep(150 * time.Millisecond)
	scheduler.Stop()

	assert.GreaterOrEqual(t, count.Load(), int32(3), "runs in 150ms at 20ms interval")
	assert.Equal(t, int(count.Load()), scheduler.Runs())
}

// TestScheduler_RunsNeverOverlap verifies a slow job is never re-entered.
func TestScheduler_RunsNeverOverlap(t *testing.T) {
	var active, maxActive atomic.Int32
	scheduler := NewScheduler(10*time.Millisecond, func(context.Context) {
		n := active.Add(1)
		for {
			m := maxActive.Load()
			if n <= m || maxActive.CompareAndSwap(m, n) {
				break
			}
		}
		time.Sleep(35 * time.Millisecond)
		active.Add(-1)
	}, testLogger())
	scheduler.Start(context.Background())

	time.Sleep(200 * time.Millisecond)
	scheduler.Stop()

	assert.Equal(t, int32(1), maxActive.Load(), "max concurrent runs")
	// a 35ms job at a 10ms interval cannot run more than ~6 times in 200ms
	assert.LessOrEqual(t, scheduler.Runs(), 7)
}

// TestScheduler_ConcurrentStartStop verifies that calling Start() and Stop()
// concurrently does not cause a race condition or panic.
func TestScheduler_ConcurrentStartStop(t *testing.T) {
	for i := 0; i < 100; i++ {
		scheduler := NewScheduler(time.Minute, noopJob, testLogger())

		var wg sync.WaitGroup
		wg.Add(2)

		go func() {
			defer wg.Done()
			scheduler.Start(context.Background())
		}()

		go func() {
			defer wg.Done()
			scheduler.Stop()
		}()

		wg.Wait()
		scheduler.Stop()
		<-scheduler.Done()
	}
}

// TestScheduler_StartTwice verifies that Start() is idempotent.
func TestScheduler_StartTwice(t *testing.T) {
	var count atomic.Int32
	scheduler := NewScheduler(time.Hour, func(context.Context) { count.Add(1) }, testLogger())

	scheduler.Start(context.Background())
	scheduler.Start(context.Background()) // second call should be no-op

	time.Sleep(50 * time.Millisecond)
	scheduler.Stop()

	assert.Equal(t, int32(1), count.Load())
}

// TestScheduler_StopBeforeStartThenStart verifies that a Start() after Stop()
// is a no-op.
func TestScheduler_StopBeforeStartThenStart(t *testing.T) {
	var count atomic.Int32
	scheduler := NewScheduler(time.Minute, func(context.Context) { count.Add(1) }, testLogger())

	scheduler.Stop()
	scheduler.Start(context.TODO())
	time.Sleep(20 * time.Millisecond)
	scheduler.Stop()

	assert.Zero(t, count.Load(), "job ran after Stop")
}

// TestScheduler_ContextCancellation verifies that cancelling the parent context
// stops the loop and closes Done.
func TestScheduler_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	scheduler := NewScheduler(time.Minute, noopJob, testLogger())
	scheduler.Start(ctx)

	cancel()

	select {
	case <-scheduler.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("Done() not closed after parent context cancellation")
	}
	scheduler.Stop()
}

// TestScheduler_JobSeesCancellation verifies the job's context is cancelled
// by Stop so in-flight requests can return.
func TestScheduler_JobSeesCancellation(t *testing.T) {
	entered := make(chan struct{})
	scheduler := NewScheduler(time.Hour, func(ctx context.Context) {
		close(entered)
		<-ctx.Done()
	}, testLogger())
	scheduler.Start(context.Background())

	<-entered

	done := make(chan struct{})
	go func() {
		scheduler.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop() did not return while job was blocked on ctx")
	}
}

// TestScheduler_PanicRecovery verifies that a panicking job does not crash
// the loop and later runs still happen.
func TestScheduler_PanicRecovery(t *testing.T) {
	var count atomic.Int32
	scheduler := NewScheduler(10*time.Millisecond, func(context.Context) {
		if count.Add(1) == 1 {
			panic("simulated failure")
		}
	}, testLogger())
	scheduler.Start(context.Background())

	time.Sleep(100 * time.Millisecond)
	scheduler.Stop()

	assert.GreaterOrEqual(t, count.Load(), int32(2), "loop should survive the panic")
}

func TestScheduler_SafeRunReturnsCorrelationID(t *testing.T) {
	scheduler := NewScheduler(time.Minute, func(context.Context) { panic(nil) }, testLogger())

	err := scheduler.safeRun(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "correlation_id")
}

func TestNewScheduler_Resolution(t *testing.T) {
	tests := []struct {
		interval time.Duration
		want     time.Duration
	}{
		{time.Minute, time.Second},
		{time.Second, time.Second},
		{200 * time.Millisecond, 200 * time.Millisecond},
	}

	for _, tt := range tests {
		s := NewScheduler(tt.interval, noopJob, testLogger())
		assert.Equal(t, tt.want, s.resolution, "interval %v", tt.interval)
	}
}
