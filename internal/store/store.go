package store

import (
	"time"

	"github.com/jpalmerr/slotwatch/schedule"
)

// Report is the storage representation of one check cycle, shaped for JSON.
type Report struct {
	// ID identifies the cycle in log lines.
	ID string `json:"id"`

	// StartedAt is when the cycle began.
	StartedAt time.Time `json:"started_at"`

	// DurationMs is how long the cycle took.
	DurationMs int64 `json:"duration_ms"`

	// Fetched is false when the API produced no usable data.
	Fetched bool `json:"fetched"`

	// Slots are the matches found in this cycle.
	Slots []schedule.Slot `json:"slots"`

	// Notified is true when a notification was delivered.
	Notified bool `json:"notified"`

	// Error holds the fetch or notify failure, if any.
	Error *string `json:"error"`
}

// Store defines storage and subscription for cycle reports.
//
// Implementations must be safe for concurrent access.
type Store interface {
	// Update replaces the latest report and notifies all subscribers.
	Update(r Report)

	// Latest returns the most recent report and whether one exists.
	Latest() (Report, bool)

	// Subscribe returns a channel that receives every new report.
	// Caller must call Unsubscribe when done to prevent resource leaks.
	Subscribe() <-chan Report

	// Unsubscribe removes a subscription and closes the channel.
	// Safe to call with a channel that was already unsubscribed.
	Unsubscribe(ch <-chan Report)
}
