// Package cmd implements the command-line interface for the tabular
// object store. It provides a hierarchical command structure around the
// changeset tooling of the repository.
//
// The package is organized into several subpackages:
//
//   - inspect: Decode a changeset file into a readable instruction listing
//   - replay: Replay a persisted changeset log into a fresh store
//   - perf: Measure encode, parse and apply throughput
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// See tabular -help for a list of all commands.
package cmd
