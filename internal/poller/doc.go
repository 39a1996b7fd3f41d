// Package poller provides the fixed-cadence check loop and the HTTP client
// used by slotwatch.
//
// The main components are:
//
//   - [Client]: HTTP client wrapper with per-request timeouts and a body size limit
//   - [Scheduler]: runs a [Job] immediately, then every interval, never overlapping
//
// Users of the slotwatch package should not need to interact with this
// package directly. Configuration is done through the main slotwatch package.
package poller
