// Package poller implements the fetch orchestrator and the scheduler loop.
//
// Each cycle:
//   - Fetches all seven sources concurrently and waits for every one
//   - Merges the results with aggregator.Combine
//   - Hands the snapshot to a Sink
//   - Sleeps a fixed interval measured from the end of the cycle
//
// A failing source only leaves its entry empty. A failing sink or a panic
// fails the cycle, which is logged; the loop keeps going.
package poller
