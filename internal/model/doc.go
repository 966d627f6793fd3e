// Package model defines the records passed between the source clients, the
// aggregator and the snapshot writers.
//
// Conventions:
//   - Prices: shopspring decimals, rounded to 2 places half away from zero
//   - Native unit: TON. Fiat unit: USDT (via the reference TON price)
//   - Absent values are nil pointers, never zero values
package model
