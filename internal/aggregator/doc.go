// Package aggregator merges per-source fetch results into a model.Snapshot.
//
// Combine is pure: the same inputs, commission table and timestamp always
// produce the same snapshot. Native prices are in TON; when a reference price
// is known each native value is also converted to USD. All arithmetic is
// decimal and rounds to 2 places, half away from zero.
package aggregator
