// Package metrics provides Prometheus metrics and the health endpoint.
//
// Key metrics:
//   - Per-source fetch outcomes (ok or absent)
//   - Cycle count, failures and duration
//   - Time of the last successful cycle
//   - Scheduler state
//   - Mirror sink write failures
package metrics
