// Package history provides host-side changeset logs and replay.
//
// A Log stores the changesets a txn.Shared commits, ordered by version.
// Two implementations ship: an in-memory log for transient use and
// tests, and a SQLite-backed log that persists one row per committed
// version together with the stream identity of the producing store.
//
// Replay drives lib/replicate over every stored version in order; for a
// log produced by commits v1..vn, replaying into a fresh store yields a
// group equal to the source at vn.
package history
