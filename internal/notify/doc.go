// Package notify renders matched slots as an HTML table and delivers them
// through the PushPlus webhook.
//
// Delivery is a single GET per call with no retry or queuing; callers log
// the outcome and move on.
package notify
