package core

// LinkList is an accessor handle bound to one LinkList cell, identified
// by (origin table, column, row). Handles stay valid across row and
// column motion — the group rebases their indices — and detach when the
// cell they point at is removed.
type LinkList struct {
	table    *Table
	col      *Column
	colIdx   int
	row      int
	attached bool
}

// LinkList returns a handle to the LinkList cell at (col, row).
func (t *Table) LinkList(col, row int) (*LinkList, error) {
	c, err := t.colOfType(col, TypeLinkList)
	if err != nil {
		return nil, err
	}
	if err := t.rowCheck(row); err != nil {
		return nil, err
	}
	h := &LinkList{table: t, col: c, colIdx: col, row: row, attached: true}
	t.handles = append(t.handles, h)
	return h, nil
}

// IsAttached reports whether the handle still points at a live cell.
func (l *LinkList) IsAttached() bool { return l.attached }

// Row returns the current origin row index of the handle.
func (l *LinkList) Row() int { return l.row }

// Size returns the number of entries in the list.
func (l *LinkList) Size() (int, error) {
	if err := l.check(); err != nil {
		return 0, err
	}
	return len(l.col.linkLists().v[l.row]), nil
}

// Get returns the target row index of the entry at idx.
func (l *LinkList) Get(idx int) (int64, error) {
	if err := l.check(); err != nil {
		return 0, err
	}
	if err := l.idxCheck(idx, false); err != nil {
		return 0, err
	}
	return l.col.linkLists().v[l.row][idx], nil
}

func (l *LinkList) check() error {
	if !l.attached {
		return schemaErrf("link list handle is detached")
	}
	return nil
}

func (l *LinkList) idxCheck(idx int, insert bool) error {
	n := len(l.col.linkLists().v[l.row])
	max := n
	if !insert {
		max = n - 1
	}
	if idx < 0 || idx > max {
		return schemaErrf("table %q: link list index %d out of range (%d entries)", l.table.name, idx, n)
	}
	return nil
}

func (l *LinkList) targetCheck(target int64) error {
	if target < 0 || target >= int64(l.col.target.size) {
		return schemaErrf("table %q: link list target row %d out of range (target table %q has %d rows)",
			l.table.name, target, l.col.target.name, l.col.target.size)
	}
	return nil
}

// Set replaces the entry at idx with target. Setting the current value
// is a no-op and does not cascade.
func (l *LinkList) Set(idx int, target int64) error {
	if err := l.check(); err != nil {
		return err
	}
	if err := l.idxCheck(idx, false); err != nil {
		return err
	}
	if err := l.targetCheck(target); err != nil {
		return err
	}
	if r := l.table.group.recorder; r != nil {
		if err := r.LinkListSet(l.table.Index(), l.colIdx, l.row, idx, target); err != nil {
			return err
		}
	}
	cands := l.table.listSetInternal(l.col, l.row, idx, target)
	l.table.group.runCascade(cands)
	return nil
}

// Insert inserts target at position idx.
func (l *LinkList) Insert(idx int, target int64) error {
	if err := l.check(); err != nil {
		return err
	}
	if err := l.idxCheck(idx, true); err != nil {
		return err
	}
	if err := l.targetCheck(target); err != nil {
		return err
	}
	if r := l.table.group.recorder; r != nil {
		if err := r.LinkListInsert(l.table.Index(), l.colIdx, l.row, idx, target); err != nil {
			return err
		}
	}
	l.table.listInsertInternal(l.col, l.row, idx, target)
	return nil
}

// Add appends target to the list.
func (l *LinkList) Add(target int64) error {
	if err := l.check(); err != nil {
		return err
	}
	if err := l.targetCheck(target); err != nil {
		return err
	}
	if r := l.table.group.recorder; r != nil {
		if err := r.LinkListAdd(l.table.Index(), l.colIdx, l.row, target); err != nil {
			return err
		}
	}
	l.table.listInsertInternal(l.col, l.row, len(l.col.linkLists().v[l.row]), target)
	return nil
}

// Move moves the entry at from to position to.
func (l *LinkList) Move(from, to int) error {
	if err := l.check(); err != nil {
		return err
	}
	if err := l.idxCheck(from, false); err != nil {
		return err
	}
	if err := l.idxCheck(to, false); err != nil {
		return err
	}
	if r := l.table.group.recorder; r != nil {
		if err := r.LinkListMove(l.table.Index(), l.colIdx, l.row, from, to); err != nil {
			return err
		}
	}
	l.table.listMoveInternal(l.col, l.row, from, to)
	return nil
}

// Swap exchanges the entries at a and b. Swapping an entry with itself
// is a no-op.
func (l *LinkList) Swap(a, b int) error {
	if err := l.check(); err != nil {
		return err
	}
	if err := l.idxCheck(a, false); err != nil {
		return err
	}
	if err := l.idxCheck(b, false); err != nil {
		return err
	}
	if r := l.table.group.recorder; r != nil {
		if err := r.LinkListSwap(l.table.Index(), l.colIdx, l.row, a, b); err != nil {
			return err
		}
	}
	l.table.listSwapInternal(l.col, l.row, a, b)
	return nil
}

// Erase removes the entry at idx. Removing the last strong reference to
// its target cascades.
func (l *LinkList) Erase(idx int) error {
	if err := l.check(); err != nil {
		return err
	}
	if err := l.idxCheck(idx, false); err != nil {
		return err
	}
	if r := l.table.group.recorder; r != nil {
		if err := r.LinkListErase(l.table.Index(), l.colIdx, l.row, idx); err != nil {
			return err
		}
	}
	cands := l.table.listEraseInternal(l.col, l.row, idx)
	l.table.group.runCascade(cands)
	return nil
}

// Clear removes every entry. Strong targets that lose their last
// reference cascade.
func (l *LinkList) Clear() error {
	if err := l.check(); err != nil {
		return err
	}
	if r := l.table.group.recorder; r != nil {
		if err := r.LinkListClear(l.table.Index(), l.colIdx, l.row); err != nil {
			return err
		}
	}
	cands := l.table.listClearInternal(l.col, l.row)
	l.table.group.runCascade(cands)
	return nil
}

// Nullify removes the entry at idx. It is recorded distinctly from
// Erase but applies the same mutation.
func (l *LinkList) Nullify(idx int) error {
	if err := l.check(); err != nil {
		return err
	}
	if err := l.idxCheck(idx, false); err != nil {
		return err
	}
	if r := l.table.group.recorder; r != nil {
		if err := r.LinkListNullify(l.table.Index(), l.colIdx, l.row, idx); err != nil {
			return err
		}
	}
	cands := l.table.listEraseInternal(l.col, l.row, idx)
	l.table.group.runCascade(cands)
	return nil
}
