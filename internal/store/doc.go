// Package store keeps the outcome of the most recent check cycle and fans
// it out to subscribers.
//
// Only the latest [Report] is retained; there is no history and no record of
// previously seen slots. Subscribers receive updates via channels with
// non-blocking sends (slow subscribers miss updates rather than block the
// check loop).
package store
