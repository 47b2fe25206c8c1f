// Package transact defines the changeset wire format: the instruction
// set, the Recorder that encodes store mutations from inside a write
// transaction, and the Parser that decodes a changeset back into typed
// instructions.
//
// Wire format:
//
// A changeset is a plain concatenation of instructions, no framing
// header and no checksum (the host wraps it). Every instruction is a
// one-byte opcode followed by its operands:
//
//   - unsigned integers: little-endian ULEB128
//   - signed integers: zigzag over ULEB128
//   - strings and binaries: ULEB128 byte length + raw bytes
//   - floats: ULEB128 of the IEEE-754 bit pattern
//   - booleans: one byte, 0 or 1
//   - row references: ULEB128, with 2^64-1 as the null sentinel —
//     including link values inside Mixed cells
//
// Session state:
//
// For compactness the stream carries a selection context. SelectTable
// picks the table all schema, row and cell instructions address;
// SelectDescriptor walks into a subtable descriptor for schema edits;
// SelectLinkList binds the list instructions to one cell. Recorder and
// Parser run the same state machine: group-level instructions drop the
// whole selection, schema and row instructions drop the link-list
// selection, SelectTable resets the descriptor to the table root.
//
// The encoding is deterministic: the same mutation sequence always
// yields byte-identical output, which the golden test pins down.
package transact
