// Package replicate implements the applier side of changeset
// replication: it parses the instruction stream produced by a source
// store's recorder and drives the mutation API of a target store so
// that replaying all committed changesets reproduces the source state
// exactly — table order, schema, cell values, and backlink bookkeeping.
//
// Application model:
//
//   - Instructions within a changeset are applied strictly in stream
//     order; each one is complete (including the cascade fixed point it
//     triggers) before the next starts.
//
//   - Cascade deletions are never part of the stream. The target store
//     re-derives them from the same instruction under the same schema,
//     which keeps replicas convergent without encoding implicit work.
//
//   - Any parse or semantic error aborts the apply; the transaction
//     layer owning the target store rolls it back, so partial
//     application is never observable.
//
// The Config options mirror the host-facing knobs: the policy for
// instructions without a mapping, a cascade switch for schemas without
// strong columns, and a non-atomic rebuild mode that silences accessor
// notifications while the host rebuilds its handles from scratch.
package replicate
