package slotwatch

import (
	"time"

	"github.com/jpalmerr/slotwatch/internal/store"
	"github.com/jpalmerr/slotwatch/schedule"
)

// Report is the outcome of one check cycle.
type Report struct {
	// ID correlates the cycle's log lines.
	ID string

	// StartedAt is when the cycle began.
	StartedAt time.Time

	// Duration is how long the cycle took.
	Duration time.Duration

	// Fetched is false when the API produced no usable data this tick.
	Fetched bool

	// Slots are the matches, in payload order.
	Slots []schedule.Slot

	// Notified is true when a notification was delivered.
	Notified bool

	// Err is the fetch or notify failure, if any.
	Err error
}

func (r Report) toStore() store.Report {
	var errStr *string
	if r.Err != nil {
		s := r.Err.Error()
		errStr = &s
	}
	return store.Report{
		ID:         r.ID,
		StartedAt:  r.StartedAt,
		DurationMs: r.Duration.Milliseconds(),
		Fetched:    r.Fetched,
		Slots:      append([]schedule.Slot(nil), r.Slots...),
		Notified:   r.Notified,
		Error:      errStr,
	}
}
