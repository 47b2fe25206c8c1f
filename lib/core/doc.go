// Package core implements the in-memory columnar object store the
// replication layer operates on: an ordered Group of typed Tables with
// dense row indices, Link/LinkList columns with implicit backlink
// bookkeeping, and the cascade engine that enforces strong ownership.
//
// Data model:
//
//   - A Group holds an ordered sequence of uniquely named Tables.
//   - A Table holds an ordered sequence of Columns and a row count.
//     Every column stores exactly one typed cell per row; nullable
//     columns default to null, others to the zero value.
//   - Link and LinkList columns reference rows of a fixed target table.
//     For every such column the target maintains a reverse index (the
//     backlinks), kept in sync by every mutation.
//   - Rows are dense: removal swaps in the last row (move-last-over)
//     and truncates.
//
// Mutation recording:
//
// A write transaction installs a Recorder on the group. Every
// user-level mutation calls its hook after validating arguments and
// before touching memory, so a refused hook aborts the mutation
// cleanly. Implicit work — backlink maintenance, the nullifications
// caused by row removal, cascade deletions — is never recorded; the
// applier re-derives it deterministically.
//
// Strong ownership:
//
// A Link or LinkList column with strength LinkStrong owns its targets.
// When a row loses its last incoming strong reference (references it
// holds to itself do not count), the cascade engine deletes it, which
// can break further strong references; the engine iterates to a fixed
// point. See cascade.go.
package core
