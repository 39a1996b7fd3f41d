package poller

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
)

// maxResolution is how often the loop wakes up to check whether a run is due.
const maxResolution = time.Second

// Job is one check cycle. It runs to completion before the next is considered.
type Job func(ctx context.Context)

// Scheduler runs a [Job] once immediately, then once per interval.
//
// Runs are anchored to the time the previous run STARTED, so the cadence
// follows the wall clock rather than run completion. Runs never overlap: the
// loop executes the job synchronously, and a run that is due while another is
// still executing happens on the first wake-up after it finishes.
//
// All lifecycle methods (Start, Stop) are safe for concurrent use.
type Scheduler struct {
	interval   time.Duration
	resolution time.Duration
	job        Job
	logger     *slog.Logger
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup

	mu        sync.Mutex
	started   bool
	stopped   bool
	lastRunAt time.Time
	runs      int
	done      chan struct{}
	closeOnce sync.Once
}

// NewScheduler creates a new [Scheduler].
//
// The loop wakes every second (or every interval, when shorter) and runs the
// job when at least interval has elapsed since the previous run began.
func NewScheduler(interval time.Duration, job Job, logger *slog.Logger) *Scheduler {
	resolution := maxResolution
	if interval > 0 && interval < resolution {
		resolution = interval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		interval:   interval,
		resolution: resolution,
		job:        job,
		logger:     logger,
		done:       make(chan struct{}),
	}
}

// Start begins the loop in a background goroutine.
//
// Start is non-blocking. The scheduler runs the job immediately, then keeps
// running it every interval until [Scheduler.Stop] is called or ctx is
// cancelled. If ctx is nil, context.Background() is used.
// Start is idempotent; if Stop was called before Start, Start is a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started || s.stopped {
		s.mu.Unlock()
		return
	}
	s.started = true

	if ctx == nil {
		ctx = context.Background()
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	runCtx := s.ctx // capture under lock to avoid race
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		defer s.closeDone()

		s.runDue(runCtx, time.Now(), true)

		ticker := time.NewTicker(s.resolution)
		defer ticker.Stop()

		for {
			select {
			case <-runCtx.Done():
				return
			case now := <-ticker.C:
				s.runDue(runCtx, now, false)
			}
		}
	}()
}

// Stop halts the scheduler and waits for the in-flight run to return.
//
// Stop is idempotent and safe to call multiple times. Calling Stop before
// Start is a safe no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.stopped {
		s.stopped = true
		if s.cancel != nil {
			s.cancel()
		}
	}
	s.mu.Unlock()

	s.wg.Wait()

	// ensure Done is closed even if Start() was never called
	s.closeDone()
}

// Done is closed once the loop has exited.
func (s *Scheduler) Done() <-chan struct{} {
	return s.done
}

// Runs returns how many times the job has been started.
func (s *Scheduler) Runs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs
}

func (s *Scheduler) closeDone() {
	s.closeOnce.Do(func() { close(s.done) })
}

// runDue runs the job if it is due. If immediate is true the job runs
// regardless of timing.
//
// TIMING SEMANTIC: lastRunAt is updated when a run STARTS, not when it
// completes.
func (s *Scheduler) runDue(ctx context.Context, now time.Time, immediate bool) {
	if ctx.Err() != nil {
		return
	}

	s.mu.Lock()
	// half a wake-up of slack absorbs ticker jitter
	due := immediate || now.Sub(s.lastRunAt) >= s.interval-s.resolution/2
	if due {
		s.lastRunAt = now
		s.runs++
	}
	s.mu.Unlock()

	if !due {
		return
	}

	if err := s.safeRun(ctx); err != nil {
		s.logger.Error("check cycle aborted", "error", err.Error())
	}
}

// safeRun calls the job with panic recovery.
// If the job panics, the full stack trace is logged with a correlation ID
// and an error containing the ID is returned.
func (s *Scheduler) safeRun(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			correlationID := uuid.NewString()
			stack := debug.Stack()

			s.logger.Error("check cycle panic",
				"correlation_id", correlationID,
				"panic", fmt.Sprintf("%v", r),
				"stack", string(stack),
			)

			err = fmt.Errorf("cycle panic (correlation_id: %s)", correlationID)
		}
	}()
	s.job(ctx)
	return nil
}
