package core

// Table is an ordered sequence of columns plus a row count. Tables are
// created and owned by a Group; their identity is stable across renames
// and moves.
type Table struct {
	name    string
	group   *Group
	columns []*Column
	size    int

	// one reverse index per incoming link column
	backlinks []*backlinkColumn

	// live LinkList handles, rebased or detached on row/column motion
	handles []*LinkList
}

// Name returns the table name.
func (t *Table) Name() string { return t.name }

// Size returns the number of rows.
func (t *Table) Size() int { return t.size }

// ColumnCount returns the number of columns.
func (t *Table) ColumnCount() int { return len(t.columns) }

// Column returns the column at idx.
func (t *Table) Column(idx int) (*Column, error) {
	return t.colAt(idx)
}

// ColumnByName returns the index of the named column, -1 if absent.
func (t *Table) ColumnByName(name string) int {
	for i, c := range t.columns {
		if c.name == name {
			return i
		}
	}
	return -1
}

// Index returns the table's current position in its group.
func (t *Table) Index() int { return t.group.IndexOf(t) }

// --------------------------------------------------------------------------
// Validation Helpers
// --------------------------------------------------------------------------

func (t *Table) colAt(idx int) (*Column, error) {
	if idx < 0 || idx >= len(t.columns) {
		return nil, schemaErrf("table %q: column index %d out of range (%d columns)", t.name, idx, len(t.columns))
	}
	return t.columns[idx], nil
}

func (t *Table) colOfType(idx int, typ DataType) (*Column, error) {
	c, err := t.colAt(idx)
	if err != nil {
		return nil, err
	}
	if c.typ != typ {
		return nil, schemaErrf("table %q: column %d is of type %s, expected %s", t.name, idx, c.typ, typ)
	}
	return c, nil
}

func (t *Table) rowCheck(row int) error {
	if row < 0 || row >= t.size {
		return schemaErrf("table %q: row index %d out of range (%d rows)", t.name, row, t.size)
	}
	return nil
}

func (t *Table) targetRowCheck(c *Column, target int64) error {
	if target == NullRow {
		return nil
	}
	if target < 0 || target >= int64(c.target.size) {
		return schemaErrf("table %q: link target row %d out of range (target table %q has %d rows)",
			t.name, target, c.target.name, c.target.size)
	}
	return nil
}

// --------------------------------------------------------------------------
// Schema Operations
// --------------------------------------------------------------------------

// AddColumn appends a non-link column and returns its index. Link
// columns are added with AddColumnLink.
func (t *Table) AddColumn(typ DataType, name string, nullable bool) (int, error) {
	return t.insertColumn(len(t.columns), typ, name, nullable)
}

// InsertColumn inserts a non-link column at position at.
func (t *Table) InsertColumn(at int, typ DataType, name string, nullable bool) error {
	_, err := t.insertColumn(at, typ, name, nullable)
	return err
}

func (t *Table) insertColumn(at int, typ DataType, name string, nullable bool) (int, error) {
	if typ.IsLinkType() {
		return 0, schemaErrf("table %q: link columns require AddColumnLink", t.name)
	}
	if !typ.IsValid() {
		return 0, schemaErrf("table %q: invalid column type %d", t.name, uint8(typ))
	}
	if at < 0 || at > len(t.columns) {
		return 0, schemaErrf("table %q: column index %d out of range for insert (%d columns)", t.name, at, len(t.columns))
	}
	if r := t.group.recorder; r != nil {
		if err := r.InsertColumn(t.Index(), nil, at, typ, name, nullable); err != nil {
			return 0, err
		}
	}
	t.insertColumnInternal(at, newColumn(typ, name, nullable))
	return at, nil
}

// AddColumnLink appends a Link or LinkList column referencing target and
// returns its index. The target table gains the paired backlink
// bookkeeping in the same step.
func (t *Table) AddColumnLink(typ DataType, name string, target *Table, strength LinkStrength) (int, error) {
	return t.insertColumnLink(len(t.columns), typ, name, target, strength)
}

// InsertColumnLink inserts a Link or LinkList column at position at.
func (t *Table) InsertColumnLink(at int, typ DataType, name string, target *Table, strength LinkStrength) error {
	_, err := t.insertColumnLink(at, typ, name, target, strength)
	return err
}

func (t *Table) insertColumnLink(at int, typ DataType, name string, target *Table, strength LinkStrength) (int, error) {
	if !typ.IsLinkType() {
		return 0, schemaErrf("table %q: column type %s is not a link type", t.name, typ)
	}
	if at < 0 || at > len(t.columns) {
		return 0, schemaErrf("table %q: column index %d out of range for insert (%d columns)", t.name, at, len(t.columns))
	}
	if target == nil || target.group != t.group {
		return 0, schemaErrf("table %q: link target table must belong to the same group", t.name)
	}
	if r := t.group.recorder; r != nil {
		if err := r.InsertLinkColumn(t.Index(), at, typ, name, target.Index(), strength); err != nil {
			return 0, err
		}
	}
	col := newLinkColumn(typ, name, target, strength)
	t.insertColumnInternal(at, col)
	target.registerBacklinkColumn(t, col)
	return at, nil
}

func (t *Table) insertColumnInternal(at int, col *Column) {
	col.data.insertRows(0, t.size)
	t.columns = sliceInsert(t.columns, at, 1, nil)
	t.columns[at] = col
	for _, h := range t.handles {
		if h.col != nil && h.attached && h.colIdx >= at {
			h.colIdx++
		}
	}
}

// EraseColumn removes the column at idx. Erasing a link column also
// removes the paired backlink bookkeeping on the target; the forward
// links it held are dropped without cascade. Removing the last column
// empties the table.
func (t *Table) EraseColumn(idx int) error {
	if _, err := t.colAt(idx); err != nil {
		return err
	}
	if r := t.group.recorder; r != nil {
		if err := r.EraseColumn(t.Index(), nil, idx); err != nil {
			return err
		}
	}
	t.eraseColumnInternal(idx)
	return nil
}

func (t *Table) eraseColumnInternal(idx int) {
	col := t.columns[idx]
	if col.typ.IsLinkType() {
		col.target.unregisterBacklinkColumn(col)
	}
	t.columns = append(t.columns[:idx], t.columns[idx+1:]...)

	for _, h := range t.handles {
		if !h.attached {
			continue
		}
		if h.colIdx == idx {
			h.attached = false
		} else if h.colIdx > idx {
			h.colIdx--
		}
	}

	if len(t.columns) == 0 && t.size > 0 {
		// the last column takes the rows with it
		t.nullifyIncoming()
		for _, bl := range t.backlinks {
			bl.rows = nil
		}
		t.size = 0
		t.detachAllHandles()
	}
	t.group.notifyColumnErased(t.Index(), idx)
}

// RenameColumn changes the name of the column at idx.
func (t *Table) RenameColumn(idx int, name string) error {
	c, err := t.colAt(idx)
	if err != nil {
		return err
	}
	if r := t.group.recorder; r != nil {
		if err := r.RenameColumn(t.Index(), nil, idx, name); err != nil {
			return err
		}
	}
	c.name = name
	return nil
}

// MoveColumn moves the column at from to position to.
func (t *Table) MoveColumn(from, to int) error {
	if _, err := t.colAt(from); err != nil {
		return err
	}
	if _, err := t.colAt(to); err != nil {
		return err
	}
	if r := t.group.recorder; r != nil {
		if err := r.MoveColumn(t.Index(), nil, from, to); err != nil {
			return err
		}
	}
	t.moveColumnInternal(from, to)
	return nil
}

func (t *Table) moveColumnInternal(from, to int) {
	if from == to {
		return
	}
	col := t.columns[from]
	t.columns = append(t.columns[:from], t.columns[from+1:]...)
	t.columns = sliceInsert(t.columns, to, 1, nil)
	t.columns[to] = col

	for _, h := range t.handles {
		if !h.attached {
			continue
		}
		switch {
		case h.colIdx == from:
			h.colIdx = to
		case from < h.colIdx && h.colIdx <= to:
			h.colIdx--
		case to <= h.colIdx && h.colIdx < from:
			h.colIdx++
		}
	}
	t.group.notifyColumnMoved(t.Index(), from, to)
}

// AddSearchIndex declares a search index on the column at idx.
func (t *Table) AddSearchIndex(idx int) error {
	c, err := t.colAt(idx)
	if err != nil {
		return err
	}
	if r := t.group.recorder; r != nil {
		if err := r.AddSearchIndex(t.Index(), idx); err != nil {
			return err
		}
	}
	c.searchIndex = true
	return nil
}

// RemoveSearchIndex removes the search index declaration of the column at idx.
func (t *Table) RemoveSearchIndex(idx int) error {
	c, err := t.colAt(idx)
	if err != nil {
		return err
	}
	if r := t.group.recorder; r != nil {
		if err := r.RemoveSearchIndex(t.Index(), idx); err != nil {
			return err
		}
	}
	c.searchIndex = false
	return nil
}

// SubDescriptor resolves a subtable descriptor by column-index path. The
// first path element names a TypeTable column of this table, further
// elements walk nested descriptors. An empty path is invalid here; the
// table's own schema is addressed directly.
func (t *Table) SubDescriptor(path []int) (*Descriptor, error) {
	if len(path) == 0 {
		return nil, schemaErrf("table %q: empty descriptor path", t.name)
	}
	c, err := t.colOfType(path[0], TypeTable)
	if err != nil {
		return nil, err
	}
	return c.subdesc.subDescriptor(path[1:])
}

// InsertDescriptorColumn inserts a column into the subtable descriptor
// addressed by path.
func (t *Table) InsertDescriptorColumn(path []int, at int, typ DataType, name string, nullable bool) error {
	d, err := t.SubDescriptor(path)
	if err != nil {
		return err
	}
	// validate before recording
	if at < 0 || at > d.ColumnCount() {
		return schemaErrf("table %q: descriptor column index %d out of range for insert", t.name, at)
	}
	if typ.IsLinkType() || !typ.IsValid() {
		return schemaErrf("table %q: column type %s is not permitted in a subtable descriptor", t.name, typ)
	}
	if r := t.group.recorder; r != nil {
		if err := r.InsertColumn(t.Index(), path, at, typ, name, nullable); err != nil {
			return err
		}
	}
	_, err = d.insertColumn(at, typ, name, nullable)
	return err
}

// EraseDescriptorColumn removes a column from the subtable descriptor
// addressed by path.
func (t *Table) EraseDescriptorColumn(path []int, at int) error {
	d, err := t.SubDescriptor(path)
	if err != nil {
		return err
	}
	if at < 0 || at >= d.ColumnCount() {
		return schemaErrf("table %q: descriptor column index %d out of range", t.name, at)
	}
	if r := t.group.recorder; r != nil {
		if err := r.EraseColumn(t.Index(), path, at); err != nil {
			return err
		}
	}
	return d.eraseColumn(at)
}

// RenameDescriptorColumn renames a column of the subtable descriptor
// addressed by path.
func (t *Table) RenameDescriptorColumn(path []int, at int, name string) error {
	d, err := t.SubDescriptor(path)
	if err != nil {
		return err
	}
	if at < 0 || at >= d.ColumnCount() {
		return schemaErrf("table %q: descriptor column index %d out of range", t.name, at)
	}
	if r := t.group.recorder; r != nil {
		if err := r.RenameColumn(t.Index(), path, at, name); err != nil {
			return err
		}
	}
	return d.renameColumn(at, name)
}

// MoveDescriptorColumn moves a column of the subtable descriptor
// addressed by path.
func (t *Table) MoveDescriptorColumn(path []int, from, to int) error {
	d, err := t.SubDescriptor(path)
	if err != nil {
		return err
	}
	if from < 0 || from >= d.ColumnCount() || to < 0 || to >= d.ColumnCount() {
		return schemaErrf("table %q: descriptor column move %d -> %d out of range", t.name, from, to)
	}
	if r := t.group.recorder; r != nil {
		if err := r.MoveColumn(t.Index(), path, from, to); err != nil {
			return err
		}
	}
	return d.moveColumn(from, to)
}

// --------------------------------------------------------------------------
// Row Operations
// --------------------------------------------------------------------------

// AddEmptyRow appends n empty rows and returns the index of the first.
func (t *Table) AddEmptyRow(n int) (int, error) {
	if n < 0 {
		return 0, schemaErrf("table %q: negative row count %d", t.name, n)
	}
	if len(t.columns) == 0 {
		return 0, invariantErrf("table %q: cannot add rows to a table without columns", t.name)
	}
	if r := t.group.recorder; r != nil {
		if err := r.AddEmptyRow(t.Index(), n); err != nil {
			return 0, err
		}
	}
	first := t.size
	t.insertRowsInternal(first, n)
	return first, nil
}

// InsertEmptyRow inserts n empty rows at position at, shifting
// subsequent rows up.
func (t *Table) InsertEmptyRow(at, n int) error {
	if n < 0 {
		return schemaErrf("table %q: negative row count %d", t.name, n)
	}
	if at < 0 || at > t.size {
		return schemaErrf("table %q: row index %d out of range for insert (%d rows)", t.name, at, t.size)
	}
	if len(t.columns) == 0 {
		return invariantErrf("table %q: cannot add rows to a table without columns", t.name)
	}
	if r := t.group.recorder; r != nil {
		if err := r.InsertEmptyRow(t.Index(), at, n); err != nil {
			return err
		}
	}
	t.insertRowsInternal(at, n)
	return nil
}

func (t *Table) insertRowsInternal(at, n int) {
	if n == 0 {
		return
	}
	for _, c := range t.columns {
		c.data.insertRows(at, n)
	}
	for _, bl := range t.backlinks {
		bl.insertRows(at, n)
	}
	if at < t.size {
		// rows at and above shifted up: rebase incoming and outgoing refs
		t.rebaseRowsAfterInsert(at, n)
	}
	t.size += n
	for _, h := range t.handles {
		if h.attached && h.row >= at {
			h.row += n
		}
	}
	t.group.notifyRowsInserted(t.Index(), at, n)
}

// rebaseRowsAfterInsert rewrites row references after rows [at, oldSize)
// moved up by n: forward links into this table and the origin indices
// recorded in other tables' reverse indexes.
func (t *Table) rebaseRowsAfterInsert(at, n int) {
	// incoming: origins referencing rows >= at now reference row+n
	for _, bl := range t.backlinks {
		col := bl.col
		switch col.typ {
		case TypeLink:
			d := col.links()
			for o := range d.v {
				if d.v[o] >= int64(at) && d.v[o] != NullRow {
					d.v[o] += int64(n)
				}
			}
		case TypeLinkList:
			d := col.linkLists()
			for o := range d.v {
				for i, e := range d.v[o] {
					if e >= int64(at) {
						d.v[o][i] += int64(n)
					}
				}
			}
		}
	}
	// outgoing: reverse indexes elsewhere record our origin rows
	for _, c := range t.columns {
		if !c.typ.IsLinkType() {
			continue
		}
		if bl := c.target.backlinkFor(c); bl != nil {
			for _, entries := range bl.rows {
				for i, o := range entries {
					if o >= int64(at) {
						entries[i] = o + int64(n)
					}
				}
			}
		}
	}
}

// MoveLastOver removes the row at position row by swapping in the last
// row and truncating. Incoming references to the removed row are
// nullified; outgoing strong references cascade.
func (t *Table) MoveLastOver(row int) error {
	if err := t.rowCheck(row); err != nil {
		return err
	}
	if r := t.group.recorder; r != nil {
		if err := r.MoveLastOver(t.Index(), row); err != nil {
			return err
		}
	}
	cands, _ := t.moveLastOverInternal(row)
	t.group.runCascade(cands)
	return nil
}

// moveLastOverInternal performs the swap-remove without recording. It
// returns the strong-cascade candidates produced by the removed row's
// outgoing references, and the pre-removal index of the row that moved
// into the freed slot (== row when the removed row was the last).
func (t *Table) moveLastOverInternal(row int) ([]rowRef, int) {
	last := t.size - 1

	// outgoing references of the dying row: drop reverse entries, gather
	// strong candidates
	var cands []rowRef
	for _, c := range t.columns {
		if !c.typ.IsLinkType() {
			continue
		}
		bl := c.target.backlinkFor(c)
		switch c.typ {
		case TypeLink:
			v := c.links().v[row]
			if v != NullRow {
				bl.remove(int(v), int64(row))
				if c.strength == LinkStrong {
					cands = append(cands, rowRef{table: c.target, row: int(v)})
				}
			}
		case TypeLinkList:
			for _, v := range c.linkLists().v[row] {
				bl.remove(int(v), int64(row))
				if c.strength == LinkStrong {
					cands = append(cands, rowRef{table: c.target, row: int(v)})
				}
			}
		}
	}

	// incoming references to the dying row: nullify the origin cells
	for _, bl := range t.backlinks {
		for _, o := range bl.rows[row] {
			switch bl.col.typ {
			case TypeLink:
				bl.col.links().v[o] = NullRow
			case TypeLinkList:
				removeOneListEntry(bl.col.linkLists().v, int(o), int64(row))
			}
		}
		bl.rows[row] = nil
	}

	if row != last {
		// the last row moves into the freed slot; rewrite references to
		// it first (the origin indices in bl.rows[last] are still the
		// pre-move ones), then rebase the reverse entries that record
		// the moving row as an origin
		for _, bl := range t.backlinks {
			for _, o := range bl.rows[last] {
				switch bl.col.typ {
				case TypeLink:
					bl.col.links().v[o] = int64(row)
				case TypeLinkList:
					replaceListEntries(bl.col.linkLists().v, int(o), int64(last), int64(row))
				}
			}
		}
		for _, c := range t.columns {
			if !c.typ.IsLinkType() {
				continue
			}
			if bl := c.target.backlinkFor(c); bl != nil {
				bl.rebaseOrigin(int64(last), int64(row))
			}
		}
	}

	for _, c := range t.columns {
		c.data.moveLastOver(row)
	}
	for _, bl := range t.backlinks {
		bl.moveLastOver(row)
	}
	t.size--

	// candidates referencing the moved or removed row of this table
	cands = rebaseRefs(cands, t, row, last)

	for _, h := range t.handles {
		if !h.attached {
			continue
		}
		if h.row == row {
			h.attached = false
		} else if h.row == last {
			h.row = row
		}
	}
	t.group.notifyRowMovedOver(t.Index(), row, last)
	return cands, last
}

// Clear removes every row of the table. Incoming references are
// nullified; outgoing strong references cascade.
func (t *Table) Clear() error {
	if r := t.group.recorder; r != nil {
		if err := r.ClearTable(t.Index()); err != nil {
			return err
		}
	}
	cands := t.clearInternal()
	t.group.runCascade(cands)
	return nil
}

func (t *Table) clearInternal() []rowRef {
	// outgoing strong references into other tables become cascade
	// candidates; references into this table die with it
	var cands []rowRef
	for _, c := range t.columns {
		if !c.typ.IsLinkType() {
			continue
		}
		if c.strength == LinkStrong && c.target != t {
			switch c.typ {
			case TypeLink:
				for _, v := range c.links().v {
					if v != NullRow {
						cands = append(cands, rowRef{table: c.target, row: int(v)})
					}
				}
			case TypeLinkList:
				for _, l := range c.linkLists().v {
					for _, v := range l {
						cands = append(cands, rowRef{table: c.target, row: int(v)})
					}
				}
			}
		}
		// drop all reverse entries this table contributed
		if bl := c.target.backlinkFor(c); bl != nil && c.target != t {
			for i := range bl.rows {
				bl.rows[i] = nil
			}
		}
	}

	t.nullifyIncoming()

	for _, c := range t.columns {
		c.data.clear()
	}
	for _, bl := range t.backlinks {
		bl.rows = nil
	}
	t.size = 0
	t.detachAllHandles()
	t.group.notifyTableCleared(t.Index())
	return cands
}

// nullifyIncoming nullifies every forward reference other tables hold
// into this table. References this table holds into itself are skipped;
// they disappear with the rows.
func (t *Table) nullifyIncoming() {
	for _, bl := range t.backlinks {
		if bl.origin == t {
			continue
		}
		switch bl.col.typ {
		case TypeLink:
			d := bl.col.links()
			for o := range d.v {
				d.v[o] = NullRow
			}
		case TypeLinkList:
			d := bl.col.linkLists()
			for o := range d.v {
				d.v[o] = nil
			}
		}
	}
}

func (t *Table) detachAllHandles() {
	for _, h := range t.handles {
		h.attached = false
	}
	t.handles = nil
}

// MergeRows re-points every incoming reference from row from to row to,
// then deletes from. Cell values of to are untouched.
func (t *Table) MergeRows(from, to int) error {
	if err := t.rowCheck(from); err != nil {
		return err
	}
	if err := t.rowCheck(to); err != nil {
		return err
	}
	if from == to {
		return schemaErrf("table %q: cannot merge row %d with itself", t.name, from)
	}
	if r := t.group.recorder; r != nil {
		if err := r.MergeRows(t.Index(), from, to); err != nil {
			return err
		}
	}
	cands := t.mergeRowsInternal(from, to)
	t.group.runCascade(cands)
	return nil
}

func (t *Table) mergeRowsInternal(from, to int) []rowRef {
	for _, bl := range t.backlinks {
		for _, o := range bl.rows[from] {
			switch bl.col.typ {
			case TypeLink:
				bl.col.links().v[o] = int64(to)
			case TypeLinkList:
				replaceOneListEntry(bl.col.linkLists().v, int(o), int64(from), int64(to))
			}
			bl.rows[to] = append(bl.rows[to], o)
		}
		bl.rows[from] = nil
	}
	cands, _ := t.moveLastOverInternal(from)
	return cands
}

// --------------------------------------------------------------------------
// List Entry Helpers
// --------------------------------------------------------------------------

// removeOneListEntry removes the first occurrence of v from lists[row].
func removeOneListEntry(lists [][]int64, row int, v int64) {
	l := lists[row]
	for i, e := range l {
		if e == v {
			lists[row] = append(l[:i], l[i+1:]...)
			return
		}
	}
}

// replaceOneListEntry replaces the first occurrence of old in lists[row]
// with new.
func replaceOneListEntry(lists [][]int64, row int, old, new int64) {
	l := lists[row]
	for i, e := range l {
		if e == old {
			l[i] = new
			return
		}
	}
}

// replaceListEntries replaces every occurrence of old in lists[row] with new.
func replaceListEntries(lists [][]int64, row int, old, new int64) {
	l := lists[row]
	for i, e := range l {
		if e == old {
			l[i] = new
		}
	}
}
