package core

// --------------------------------------------------------------------------
// Link Cell Operations
// --------------------------------------------------------------------------

// SetLink points the Link cell at target, NullRow for null. Overwriting
// the last strong reference to the previous target cascades.
func (t *Table) SetLink(col, row int, target int64) error {
	c, err := t.colOfType(col, TypeLink)
	if err != nil {
		return err
	}
	if err := t.rowCheck(row); err != nil {
		return err
	}
	if err := t.targetRowCheck(c, target); err != nil {
		return err
	}
	if r := t.group.recorder; r != nil {
		if err := r.SetLink(t.Index(), col, row, target); err != nil {
			return err
		}
	}
	cands := t.setLinkInternal(c, row, target)
	t.group.runCascade(cands)
	return nil
}

// NullifyLink clears the Link cell. Removing the last strong reference
// to the previous target cascades.
func (t *Table) NullifyLink(col, row int) error {
	c, err := t.colOfType(col, TypeLink)
	if err != nil {
		return err
	}
	if err := t.rowCheck(row); err != nil {
		return err
	}
	if r := t.group.recorder; r != nil {
		if err := r.NullifyLink(t.Index(), col, row); err != nil {
			return err
		}
	}
	cands := t.setLinkInternal(c, row, NullRow)
	t.group.runCascade(cands)
	return nil
}

// setLinkInternal rewires a Link cell without recording and returns the
// cascade candidates of the broken reference. Setting the current value
// again is a no-op.
func (t *Table) setLinkInternal(c *Column, row int, target int64) []rowRef {
	d := c.links()
	old := d.v[row]
	if old == target {
		return nil
	}
	bl := c.target.backlinkFor(c)
	var cands []rowRef
	if old != NullRow {
		bl.remove(int(old), int64(row))
		if c.strength == LinkStrong {
			cands = append(cands, rowRef{table: c.target, row: int(old)})
		}
	}
	if target != NullRow {
		bl.add(int(target), int64(row))
	}
	d.v[row] = target
	return cands
}

// GetLink reads a Link cell: the target row index, NullRow for null.
func (t *Table) GetLink(col, row int) (int64, error) {
	c, err := t.colOfType(col, TypeLink)
	if err != nil {
		return NullRow, err
	}
	if err := t.rowCheck(row); err != nil {
		return NullRow, err
	}
	return c.links().v[row], nil
}

// IsNullLink reports whether a Link cell holds no target.
func (t *Table) IsNullLink(col, row int) (bool, error) {
	v, err := t.GetLink(col, row)
	if err != nil {
		return false, err
	}
	return v == NullRow, nil
}

// BacklinkCount returns how many references row receives through the
// given column of the origin table. LinkList references count with
// multiplicity.
func (t *Table) BacklinkCount(row int, origin *Table, originCol int) (int, error) {
	if err := t.rowCheck(row); err != nil {
		return 0, err
	}
	c, err := origin.colAt(originCol)
	if err != nil {
		return 0, err
	}
	if !c.typ.IsLinkType() || c.target != t {
		return 0, schemaErrf("table %q: column %d of table %q is not a link column targeting it", t.name, originCol, origin.name)
	}
	bl := t.backlinkFor(c)
	if bl == nil {
		return 0, nil
	}
	return bl.count(row), nil
}

// --------------------------------------------------------------------------
// LinkList Internal Operations
// --------------------------------------------------------------------------
//
// The recorded entry points live on the LinkList handle (linklist.go);
// these helpers mutate storage and backlinks and report cascade
// candidates.

func (t *Table) listSetInternal(c *Column, row, idx int, target int64) []rowRef {
	l := c.linkLists().v[row]
	old := l[idx]
	if old == target {
		// no-op: in particular the old target must not cascade
		return nil
	}
	bl := c.target.backlinkFor(c)
	bl.remove(int(old), int64(row))
	bl.add(int(target), int64(row))
	l[idx] = target
	if c.strength == LinkStrong {
		return []rowRef{{table: c.target, row: int(old)}}
	}
	return nil
}

func (t *Table) listInsertInternal(c *Column, row, idx int, target int64) {
	d := c.linkLists()
	d.v[row] = sliceInsert(d.v[row], idx, 1, target)
	c.target.backlinkFor(c).add(int(target), int64(row))
}

func (t *Table) listEraseInternal(c *Column, row, idx int) []rowRef {
	d := c.linkLists()
	old := d.v[row][idx]
	d.v[row] = append(d.v[row][:idx], d.v[row][idx+1:]...)
	c.target.backlinkFor(c).remove(int(old), int64(row))
	if c.strength == LinkStrong {
		return []rowRef{{table: c.target, row: int(old)}}
	}
	return nil
}

func (t *Table) listMoveInternal(c *Column, row, from, to int) {
	if from == to {
		return
	}
	l := c.linkLists().v[row]
	v := l[from]
	l = append(l[:from], l[from+1:]...)
	l = sliceInsert(l, to, 1, v)
	c.linkLists().v[row] = l
}

func (t *Table) listSwapInternal(c *Column, row, a, b int) {
	l := c.linkLists().v[row]
	l[a], l[b] = l[b], l[a]
}

func (t *Table) listClearInternal(c *Column, row int) []rowRef {
	d := c.linkLists()
	bl := c.target.backlinkFor(c)
	var cands []rowRef
	for _, old := range d.v[row] {
		bl.remove(int(old), int64(row))
		if c.strength == LinkStrong {
			cands = append(cands, rowRef{table: c.target, row: int(old)})
		}
	}
	d.v[row] = nil
	return cands
}
