package core

// backlinkColumn is the implicit reverse index a table maintains for one
// incoming Link or LinkList column. rows holds, per target row, the
// origin row indices referencing it through that column; LinkList
// contributions appear with multiplicity.
type backlinkColumn struct {
	origin *Table
	col    *Column
	rows   [][]int64
}

func (bl *backlinkColumn) insertRows(at, n int) {
	bl.rows = sliceInsert(bl.rows, at, n, nil)
}

func (bl *backlinkColumn) moveLastOver(row int) {
	bl.rows = sliceMoveLastOver(bl.rows, row)
}

// add registers one occurrence of originRow referencing targetRow.
func (bl *backlinkColumn) add(targetRow int, originRow int64) {
	bl.rows[targetRow] = append(bl.rows[targetRow], originRow)
}

// remove drops one occurrence of originRow from targetRow's entry.
func (bl *backlinkColumn) remove(targetRow int, originRow int64) {
	entries := bl.rows[targetRow]
	for i, o := range entries {
		if o == originRow {
			bl.rows[targetRow] = append(entries[:i], entries[i+1:]...)
			return
		}
	}
}

// rebaseOrigin rewrites every occurrence of oldRow to newRow across all
// target rows. Used when the origin table moves its last row into a
// freed slot.
func (bl *backlinkColumn) rebaseOrigin(oldRow, newRow int64) {
	for _, entries := range bl.rows {
		for i, o := range entries {
			if o == oldRow {
				entries[i] = newRow
			}
		}
	}
}

// count returns the number of occurrences referencing targetRow.
func (bl *backlinkColumn) count(targetRow int) int {
	return len(bl.rows[targetRow])
}

// backlinkFor finds the reverse index this table keeps for the given
// origin column, nil if none is registered.
func (t *Table) backlinkFor(col *Column) *backlinkColumn {
	for _, bl := range t.backlinks {
		if bl.col == col {
			return bl
		}
	}
	return nil
}

// registerBacklinkColumn creates the reverse index for a new incoming
// link column.
func (t *Table) registerBacklinkColumn(origin *Table, col *Column) {
	t.backlinks = append(t.backlinks, &backlinkColumn{
		origin: origin,
		col:    col,
		rows:   make([][]int64, t.size),
	})
}

// unregisterBacklinkColumn drops the reverse index of an erased incoming
// link column.
func (t *Table) unregisterBacklinkColumn(col *Column) {
	for i, bl := range t.backlinks {
		if bl.col == col {
			t.backlinks = append(t.backlinks[:i], t.backlinks[i+1:]...)
			return
		}
	}
}

// strongRefCount returns the number of incoming strong references to
// row, not counting references the row holds to itself.
func (t *Table) strongRefCount(row int) int {
	n := 0
	for _, bl := range t.backlinks {
		if bl.col.strength != LinkStrong {
			continue
		}
		for _, o := range bl.rows[row] {
			if bl.origin == t && o == int64(row) {
				continue // self reference keeps nobody alive
			}
			n++
		}
	}
	return n
}

// incomingRefCount returns the total number of incoming references
// (weak and strong) to any row of the table.
func (t *Table) incomingRefCount() int {
	n := 0
	for _, bl := range t.backlinks {
		for _, entries := range bl.rows {
			n += len(entries)
		}
	}
	return n
}
