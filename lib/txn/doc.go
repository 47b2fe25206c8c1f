// Package txn binds the recorder to a transaction lifecycle: a Shared
// store serializes write transactions on its group, freezes each
// transaction's instruction stream into a versioned changeset at
// commit, and hands it to the host's handler for durable storage or
// transport (see lib/history for ready-made handlers).
//
// Versions increase monotonically by one per commit. An aborted
// transaction discards its buffered stream; no partial changeset is
// ever observable.
package txn
