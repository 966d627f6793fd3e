// Package writer persists merged snapshots.
//
// Sinks:
//   - FileSink: the snapshot JSON file, replaced atomically every cycle
//   - PostgresSink: one upserted row per collection (JSONB)
//   - RedisSink: one key per collection with a TTL
//
// Fanout combines them: the primary sink's error fails the write, mirror
// errors are logged and counted only. Every sink replaces the previous
// snapshot; nothing keeps history.
package writer
