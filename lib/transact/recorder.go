package transact

import (
	"fmt"

	"github.com/tabulardb/tabular/lib/core"
)

// selState is the session state shared between Recorder and Parser: the
// currently selected table, descriptor path and link list. Both sides
// follow the same invalidation rules, so the parser re-derives the
// recorder's context from the Select instructions alone:
//
//   - group-level instructions invalidate the whole selection
//   - schema and row instructions invalidate the link-list selection
//   - SelectTable resets the descriptor to the table root and clears
//     the link-list selection
type selState struct {
	table   int
	path    []int
	hasList bool
	listCol int
	listRow int
}

func initialSelState() selState {
	return selState{table: -1}
}

func pathEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// --------------------------------------------------------------------------
// Recorder
// --------------------------------------------------------------------------

// Recorder implements core.Recorder by encoding every hook into the
// instruction stream. It belongs to exactly one write transaction; at
// commit the buffered stream is frozen into a Changeset.
//
// Every hook builds the full byte run of its instruction (including any
// Select instructions the session state requires) before touching the
// buffer, so a refused append leaves neither a partial record nor a
// desynchronized session state.
type Recorder struct {
	buf     []byte
	scratch []byte
	limit   int
	cur     selState
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{cur: initialSelState()}
}

// SetLimit bounds the encoded changeset size in bytes; 0 means
// unlimited. A hook that would exceed the limit fails with
// AllocationFailure before the mutation takes effect.
func (r *Recorder) SetLimit(n int) { r.limit = n }

// Len returns the number of buffered bytes.
func (r *Recorder) Len() int { return len(r.buf) }

// Reset discards the buffered stream and session state.
func (r *Recorder) Reset() {
	r.buf = r.buf[:0]
	r.cur = initialSelState()
}

// Freeze seals the buffered stream into an immutable Changeset carrying
// the given commit version and resets the recorder.
func (r *Recorder) Freeze(version uint64) *Changeset {
	data := make([]byte, len(r.buf))
	copy(data, r.buf)
	r.Reset()
	return &Changeset{Version: version, Data: data}
}

// commit appends the staged byte run and adopts the staged session
// state. It is the only place the buffer grows.
func (r *Recorder) commit(w []byte, st selState) error {
	if r.limit > 0 && len(r.buf)+len(w) > r.limit {
		return core.NewError(core.RetCAllocationFailure,
			fmt.Sprintf("changeset limit of %d bytes exceeded", r.limit))
	}
	r.buf = append(r.buf, w...)
	r.scratch = w[:0]
	r.cur = st
	return nil
}

func (r *Recorder) begin() []byte {
	return r.scratch[:0]
}

// selection helpers; pure with respect to the recorder, the staged
// state is adopted in commit

func selTable(w []byte, st selState, tbl int) ([]byte, selState) {
	if st.table != tbl {
		w = append(w, byte(OpSelectTable))
		w = appendUvarint(w, uint64(tbl))
		st.table = tbl
		st.path = nil
		st.hasList = false
	}
	return w, st
}

func selDescriptor(w []byte, st selState, tbl int, path []int) ([]byte, selState) {
	w, st = selTable(w, st, tbl)
	if !pathEqual(st.path, path) {
		w = append(w, byte(OpSelectDescriptor))
		w = appendUvarint(w, uint64(len(path)))
		for _, p := range path {
			w = appendUvarint(w, uint64(p))
		}
		st.path = append([]int(nil), path...)
	}
	return w, st
}

func selLinkList(w []byte, st selState, tbl, col, row int) ([]byte, selState) {
	w, st = selTable(w, st, tbl)
	if !st.hasList || st.listCol != col || st.listRow != row {
		w = append(w, byte(OpSelectLinkList))
		w = appendUvarint(w, uint64(col))
		w = appendUvarint(w, uint64(row))
		st.hasList = true
		st.listCol = col
		st.listRow = row
	}
	return w, st
}

// --------------------------------------------------------------------------
// Group Hooks
// --------------------------------------------------------------------------

func (r *Recorder) AddTable(name string) error {
	w := append(r.begin(), byte(OpAddTable))
	w = appendString(w, name)
	return r.commit(w, initialSelState())
}

func (r *Recorder) EraseTable(tbl int) error {
	w := append(r.begin(), byte(OpEraseTable))
	w = appendUvarint(w, uint64(tbl))
	return r.commit(w, initialSelState())
}

func (r *Recorder) RenameTable(tbl int, name string) error {
	w := append(r.begin(), byte(OpRenameTable))
	w = appendUvarint(w, uint64(tbl))
	w = appendString(w, name)
	return r.commit(w, initialSelState())
}

func (r *Recorder) MoveTable(from, to int) error {
	w := append(r.begin(), byte(OpMoveTable))
	w = appendUvarint(w, uint64(from))
	w = appendUvarint(w, uint64(to))
	return r.commit(w, initialSelState())
}

// --------------------------------------------------------------------------
// Schema Hooks
// --------------------------------------------------------------------------

func (r *Recorder) InsertColumn(tbl int, path []int, col int, typ core.DataType, name string, nullable bool) error {
	w, st := selDescriptor(r.begin(), r.cur, tbl, path)
	w = append(w, byte(OpInsertColumn))
	w = appendUvarint(w, uint64(col))
	w = append(w, byte(typ))
	w = appendString(w, name)
	w = appendBool(w, nullable)
	st.hasList = false
	return r.commit(w, st)
}

func (r *Recorder) InsertLinkColumn(tbl, col int, typ core.DataType, name string, target int, strength core.LinkStrength) error {
	w, st := selDescriptor(r.begin(), r.cur, tbl, nil)
	w = append(w, byte(OpInsertLinkColumn))
	w = appendUvarint(w, uint64(col))
	w = append(w, byte(typ))
	w = appendString(w, name)
	w = appendUvarint(w, uint64(target))
	w = append(w, byte(strength))
	st.hasList = false
	return r.commit(w, st)
}

func (r *Recorder) EraseColumn(tbl int, path []int, col int) error {
	w, st := selDescriptor(r.begin(), r.cur, tbl, path)
	w = append(w, byte(OpEraseColumn))
	w = appendUvarint(w, uint64(col))
	st.hasList = false
	return r.commit(w, st)
}

func (r *Recorder) RenameColumn(tbl int, path []int, col int, name string) error {
	w, st := selDescriptor(r.begin(), r.cur, tbl, path)
	w = append(w, byte(OpRenameColumn))
	w = appendUvarint(w, uint64(col))
	w = appendString(w, name)
	st.hasList = false
	return r.commit(w, st)
}

func (r *Recorder) MoveColumn(tbl int, path []int, from, to int) error {
	w, st := selDescriptor(r.begin(), r.cur, tbl, path)
	w = append(w, byte(OpMoveColumn))
	w = appendUvarint(w, uint64(from))
	w = appendUvarint(w, uint64(to))
	st.hasList = false
	return r.commit(w, st)
}

func (r *Recorder) AddSearchIndex(tbl, col int) error {
	w, st := selTable(r.begin(), r.cur, tbl)
	w = append(w, byte(OpAddSearchIndex))
	w = appendUvarint(w, uint64(col))
	st.hasList = false
	return r.commit(w, st)
}

func (r *Recorder) RemoveSearchIndex(tbl, col int) error {
	w, st := selTable(r.begin(), r.cur, tbl)
	w = append(w, byte(OpRemoveSearchIndex))
	w = appendUvarint(w, uint64(col))
	st.hasList = false
	return r.commit(w, st)
}

// --------------------------------------------------------------------------
// Row Hooks
// --------------------------------------------------------------------------

func (r *Recorder) InsertEmptyRow(tbl, at, count int) error {
	w, st := selTable(r.begin(), r.cur, tbl)
	w = append(w, byte(OpInsertEmptyRow))
	w = appendUvarint(w, uint64(at))
	w = appendUvarint(w, uint64(count))
	st.hasList = false
	return r.commit(w, st)
}

func (r *Recorder) AddEmptyRow(tbl, count int) error {
	w, st := selTable(r.begin(), r.cur, tbl)
	w = append(w, byte(OpAddEmptyRow))
	w = appendUvarint(w, uint64(count))
	st.hasList = false
	return r.commit(w, st)
}

func (r *Recorder) MoveLastOver(tbl, row int) error {
	w, st := selTable(r.begin(), r.cur, tbl)
	w = append(w, byte(OpMoveLastOver))
	w = appendUvarint(w, uint64(row))
	st.hasList = false
	return r.commit(w, st)
}

func (r *Recorder) ClearTable(tbl int) error {
	w, st := selTable(r.begin(), r.cur, tbl)
	w = append(w, byte(OpClearTable))
	st.hasList = false
	return r.commit(w, st)
}

func (r *Recorder) MergeRows(tbl, from, to int) error {
	w, st := selTable(r.begin(), r.cur, tbl)
	w = append(w, byte(OpMergeRows))
	w = appendUvarint(w, uint64(from))
	w = appendUvarint(w, uint64(to))
	st.hasList = false
	return r.commit(w, st)
}

func (r *Recorder) AddRowWithKey(tbl, col int, key int64) error {
	w, st := selTable(r.begin(), r.cur, tbl)
	w = append(w, byte(OpAddRowWithKey))
	w = appendUvarint(w, uint64(col))
	w = appendSvarint(w, key)
	st.hasList = false
	return r.commit(w, st)
}

// --------------------------------------------------------------------------
// Cell Hooks
// --------------------------------------------------------------------------

func (r *Recorder) cellOp(op Opcode, tbl, col, row int) ([]byte, selState) {
	w, st := selTable(r.begin(), r.cur, tbl)
	w = append(w, byte(op))
	w = appendUvarint(w, uint64(col))
	w = appendUvarint(w, uint64(row))
	return w, st
}

func (r *Recorder) SetInt(tbl, col, row int, v int64) error {
	w, st := r.cellOp(OpSetInt, tbl, col, row)
	return r.commit(appendSvarint(w, v), st)
}

func (r *Recorder) SetBool(tbl, col, row int, v bool) error {
	w, st := r.cellOp(OpSetBool, tbl, col, row)
	return r.commit(appendBool(w, v), st)
}

func (r *Recorder) SetFloat(tbl, col, row int, v float32) error {
	w, st := r.cellOp(OpSetFloat, tbl, col, row)
	return r.commit(appendFloat(w, v), st)
}

func (r *Recorder) SetDouble(tbl, col, row int, v float64) error {
	w, st := r.cellOp(OpSetDouble, tbl, col, row)
	return r.commit(appendDouble(w, v), st)
}

func (r *Recorder) SetString(tbl, col, row int, v string) error {
	w, st := r.cellOp(OpSetString, tbl, col, row)
	return r.commit(appendString(w, v), st)
}

func (r *Recorder) SetBinary(tbl, col, row int, v []byte) error {
	w, st := r.cellOp(OpSetBinary, tbl, col, row)
	return r.commit(appendBytes(w, v), st)
}

func (r *Recorder) SetOldDateTime(tbl, col, row int, v int64) error {
	w, st := r.cellOp(OpSetOldDateTime, tbl, col, row)
	return r.commit(appendSvarint(w, v), st)
}

func (r *Recorder) SetTimestamp(tbl, col, row int, ts core.Timestamp) error {
	w, st := r.cellOp(OpSetTimestamp, tbl, col, row)
	w = appendSvarint(w, ts.Sec)
	w = appendSvarint(w, int64(ts.Nsec))
	return r.commit(w, st)
}

func (r *Recorder) SetNull(tbl, col, row int) error {
	w, st := r.cellOp(OpSetNull, tbl, col, row)
	return r.commit(w, st)
}

func (r *Recorder) SetMixed(tbl, col, row int, v core.Mixed) error {
	w, st := r.cellOp(OpSetMixed, tbl, col, row)
	return r.commit(appendMixed(w, v), st)
}

func (r *Recorder) SetIntUnique(tbl, col, row int, v int64) error {
	w, st := r.cellOp(OpSetIntUnique, tbl, col, row)
	return r.commit(appendSvarint(w, v), st)
}

func (r *Recorder) SetStringUnique(tbl, col, row int, v string) error {
	w, st := r.cellOp(OpSetStringUnique, tbl, col, row)
	return r.commit(appendString(w, v), st)
}

func (r *Recorder) SetNullUnique(tbl, col, row int) error {
	w, st := r.cellOp(OpSetNullUnique, tbl, col, row)
	return r.commit(w, st)
}

func (r *Recorder) InsertSubstring(tbl, col, row, pos int, s string) error {
	w, st := r.cellOp(OpInsertSubstring, tbl, col, row)
	w = appendUvarint(w, uint64(pos))
	return r.commit(appendString(w, s), st)
}

func (r *Recorder) RemoveSubstring(tbl, col, row, pos, length int) error {
	w, st := r.cellOp(OpRemoveSubstring, tbl, col, row)
	w = appendUvarint(w, uint64(pos))
	return r.commit(appendUvarint(w, uint64(length)), st)
}

func (r *Recorder) SetLink(tbl, col, row int, target int64) error {
	w, st := r.cellOp(OpSetLink, tbl, col, row)
	return r.commit(appendRowRef(w, target), st)
}

func (r *Recorder) NullifyLink(tbl, col, row int) error {
	w, st := r.cellOp(OpNullifyLink, tbl, col, row)
	return r.commit(w, st)
}

// --------------------------------------------------------------------------
// Link List Hooks
// --------------------------------------------------------------------------

func (r *Recorder) LinkListSet(tbl, col, row, idx int, target int64) error {
	w, st := selLinkList(r.begin(), r.cur, tbl, col, row)
	w = append(w, byte(OpLinkListSet))
	w = appendUvarint(w, uint64(idx))
	return r.commit(appendRowRef(w, target), st)
}

func (r *Recorder) LinkListInsert(tbl, col, row, idx int, target int64) error {
	w, st := selLinkList(r.begin(), r.cur, tbl, col, row)
	w = append(w, byte(OpLinkListInsert))
	w = appendUvarint(w, uint64(idx))
	return r.commit(appendRowRef(w, target), st)
}

func (r *Recorder) LinkListAdd(tbl, col, row int, target int64) error {
	w, st := selLinkList(r.begin(), r.cur, tbl, col, row)
	w = append(w, byte(OpLinkListAdd))
	return r.commit(appendRowRef(w, target), st)
}

func (r *Recorder) LinkListMove(tbl, col, row, from, to int) error {
	w, st := selLinkList(r.begin(), r.cur, tbl, col, row)
	w = append(w, byte(OpLinkListMove))
	w = appendUvarint(w, uint64(from))
	return r.commit(appendUvarint(w, uint64(to)), st)
}

func (r *Recorder) LinkListSwap(tbl, col, row, a, b int) error {
	w, st := selLinkList(r.begin(), r.cur, tbl, col, row)
	w = append(w, byte(OpLinkListSwap))
	w = appendUvarint(w, uint64(a))
	return r.commit(appendUvarint(w, uint64(b)), st)
}

func (r *Recorder) LinkListErase(tbl, col, row, idx int) error {
	w, st := selLinkList(r.begin(), r.cur, tbl, col, row)
	w = append(w, byte(OpLinkListErase))
	return r.commit(appendUvarint(w, uint64(idx)), st)
}

func (r *Recorder) LinkListClear(tbl, col, row int) error {
	w, st := selLinkList(r.begin(), r.cur, tbl, col, row)
	w = append(w, byte(OpLinkListClear))
	return r.commit(w, st)
}

func (r *Recorder) LinkListNullify(tbl, col, row, idx int) error {
	w, st := selLinkList(r.begin(), r.cur, tbl, col, row)
	w = append(w, byte(OpLinkListNullify))
	return r.commit(appendUvarint(w, uint64(idx)), st)
}

// compile-time interface check
var _ core.Recorder = (*Recorder)(nil)
