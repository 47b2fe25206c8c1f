package core

// Recorder is the hook interface a write transaction installs on a Group
// to capture its mutations as an instruction stream. Each hook is called
// once per user-level mutation, after argument validation and before the
// mutation takes effect in memory; a hook returning an error aborts the
// mutation without touching the store.
//
// Implicit work — cascade deletions, backlink maintenance, the
// nullifications caused by row removal — is never reported to the
// Recorder. The applier re-derives it from the explicit instruction.
//
// Tables and columns are identified by their current indices; path
// addresses a subtable descriptor by column indices (empty for the table
// itself).
type Recorder interface {
	// group level
	AddTable(name string) error
	EraseTable(tbl int) error
	RenameTable(tbl int, name string) error
	MoveTable(from, to int) error

	// schema
	InsertColumn(tbl int, path []int, col int, typ DataType, name string, nullable bool) error
	InsertLinkColumn(tbl, col int, typ DataType, name string, target int, strength LinkStrength) error
	EraseColumn(tbl int, path []int, col int) error
	RenameColumn(tbl int, path []int, col int, name string) error
	MoveColumn(tbl int, path []int, from, to int) error
	AddSearchIndex(tbl, col int) error
	RemoveSearchIndex(tbl, col int) error

	// rows
	InsertEmptyRow(tbl, at, count int) error
	AddEmptyRow(tbl, count int) error
	MoveLastOver(tbl, row int) error
	ClearTable(tbl int) error
	MergeRows(tbl, from, to int) error
	AddRowWithKey(tbl, col int, key int64) error

	// cells
	SetInt(tbl, col, row int, v int64) error
	SetBool(tbl, col, row int, v bool) error
	SetFloat(tbl, col, row int, v float32) error
	SetDouble(tbl, col, row int, v float64) error
	SetString(tbl, col, row int, v string) error
	SetBinary(tbl, col, row int, v []byte) error
	SetOldDateTime(tbl, col, row int, v int64) error
	SetTimestamp(tbl, col, row int, ts Timestamp) error
	SetNull(tbl, col, row int) error
	SetMixed(tbl, col, row int, v Mixed) error
	SetIntUnique(tbl, col, row int, v int64) error
	SetStringUnique(tbl, col, row int, v string) error
	SetNullUnique(tbl, col, row int) error

	// string edits
	InsertSubstring(tbl, col, row, pos int, s string) error
	RemoveSubstring(tbl, col, row, pos, length int) error

	// links
	SetLink(tbl, col, row int, target int64) error
	NullifyLink(tbl, col, row int) error

	// link lists
	LinkListSet(tbl, col, row, idx int, target int64) error
	LinkListInsert(tbl, col, row, idx int, target int64) error
	LinkListAdd(tbl, col, row int, target int64) error
	LinkListMove(tbl, col, row, from, to int) error
	LinkListSwap(tbl, col, row, a, b int) error
	LinkListErase(tbl, col, row, idx int) error
	LinkListClear(tbl, col, row int) error
	LinkListNullify(tbl, col, row, idx int) error
}
