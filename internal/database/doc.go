// Package database manages the optional PostgreSQL pool that mirrors the
// latest snapshot.
//
// The schema is a single table keyed by collection address:
//
//	latest_snapshot(collection TEXT PRIMARY KEY, snapshot JSONB, updated_at TIMESTAMPTZ)
//
// Rows are replaced every cycle; no history is kept.
package database
