package core

// Group is an ordered collection of uniquely named tables. It is the
// root object of the store; all mutations pass through it or through
// its tables, so it is also where the recorder and observer attach.
//
// A Group is not safe for concurrent use. The transaction layer
// serializes access.
type Group struct {
	tables          []*Table
	recorder        Recorder
	observer        Observer
	cascadeDisabled bool
}

// NewGroup creates an empty group.
func NewGroup() *Group {
	return &Group{}
}

// SetRecorder installs the mutation recorder, nil to stop recording.
func (g *Group) SetRecorder(r Recorder) { g.recorder = r }

// SetObserver installs the change observer, nil to silence notifications.
func (g *Group) SetObserver(o Observer) { g.observer = o }

// Observer returns the currently installed observer, nil if none.
func (g *Group) Observer() Observer { return g.observer }

// SetCascadeEnabled toggles the cascade engine. Disabling it is only
// sound while no strong link columns exist; see HasStrongColumns.
func (g *Group) SetCascadeEnabled(enabled bool) { g.cascadeDisabled = !enabled }

// HasStrongColumns reports whether any table carries a strong Link or
// LinkList column.
func (g *Group) HasStrongColumns() bool {
	for _, t := range g.tables {
		for _, c := range t.columns {
			if c.typ.IsLinkType() && c.strength == LinkStrong {
				return true
			}
		}
	}
	return false
}

// Size returns the number of tables.
func (g *Group) Size() int { return len(g.tables) }

// Table returns the table at idx.
func (g *Group) Table(idx int) (*Table, error) {
	if idx < 0 || idx >= len(g.tables) {
		return nil, schemaErrf("group: table index %d out of range (%d tables)", idx, len(g.tables))
	}
	return g.tables[idx], nil
}

// TableByName returns the named table, or false.
func (g *Group) TableByName(name string) (*Table, bool) {
	for _, t := range g.tables {
		if t.name == name {
			return t, true
		}
	}
	return nil, false
}

// IndexOf returns the current position of t in the group, -1 if t does
// not belong to it.
func (g *Group) IndexOf(t *Table) int {
	for i, x := range g.tables {
		if x == t {
			return i
		}
	}
	return -1
}

// AddTable appends a new empty table with a unique name.
func (g *Group) AddTable(name string) (*Table, error) {
	if _, ok := g.TableByName(name); ok {
		return nil, schemaErrf("group: table %q already exists", name)
	}
	if g.recorder != nil {
		if err := g.recorder.AddTable(name); err != nil {
			return nil, err
		}
	}
	t := &Table{name: name, group: g}
	g.tables = append(g.tables, t)
	return t, nil
}

// EraseTable removes the table at idx. A table that currently receives
// references through any Link or LinkList cell cannot be removed; an
// empty table always can. Link columns in other tables that target the
// erased table are dropped with it.
func (g *Group) EraseTable(idx int) error {
	t, err := g.Table(idx)
	if err != nil {
		return err
	}
	if t.incomingRefCount() > 0 {
		return invariantErrf("group: table %q is the target of live links and cannot be removed", t.name)
	}
	if g.recorder != nil {
		if err := g.recorder.EraseTable(idx); err != nil {
			return err
		}
	}
	g.eraseTableInternal(idx)
	return nil
}

func (g *Group) eraseTableInternal(idx int) {
	t := g.tables[idx]

	// drop link columns elsewhere that target the dying table; they are
	// known to hold no references
	for _, o := range g.tables {
		if o == t {
			continue
		}
		for {
			found := -1
			for ci, c := range o.columns {
				if c.typ.IsLinkType() && c.target == t {
					found = ci
					break
				}
			}
			if found < 0 {
				break
			}
			o.eraseColumnInternal(found)
		}
	}

	// withdraw the dying table's own reverse entries at its targets
	for _, c := range t.columns {
		if c.typ.IsLinkType() && c.target != t {
			c.target.unregisterBacklinkColumn(c)
		}
	}

	t.detachAllHandles()
	g.tables = append(g.tables[:idx], g.tables[idx+1:]...)
	if g.observer != nil {
		g.observer.TableErased(idx)
	}
}

// RenameTable changes the name of the table at idx.
func (g *Group) RenameTable(idx int, name string) error {
	t, err := g.Table(idx)
	if err != nil {
		return err
	}
	if other, ok := g.TableByName(name); ok && other != t {
		return schemaErrf("group: table %q already exists", name)
	}
	if g.recorder != nil {
		if err := g.recorder.RenameTable(idx, name); err != nil {
			return err
		}
	}
	t.name = name
	return nil
}

// MoveTable moves the table at from to position to.
func (g *Group) MoveTable(from, to int) error {
	if _, err := g.Table(from); err != nil {
		return err
	}
	if _, err := g.Table(to); err != nil {
		return err
	}
	if g.recorder != nil {
		if err := g.recorder.MoveTable(from, to); err != nil {
			return err
		}
	}
	g.moveTableInternal(from, to)
	return nil
}

func (g *Group) moveTableInternal(from, to int) {
	if from == to {
		return
	}
	t := g.tables[from]
	g.tables = append(g.tables[:from], g.tables[from+1:]...)
	g.tables = sliceInsert(g.tables, to, 1, nil)
	g.tables[to] = t
	if g.observer != nil {
		g.observer.TableMoved(from, to)
	}
}

// --------------------------------------------------------------------------
// Observer Dispatch
// --------------------------------------------------------------------------

func (g *Group) notifyColumnErased(tbl, col int) {
	if g.observer != nil {
		g.observer.ColumnErased(tbl, col)
	}
}

func (g *Group) notifyColumnMoved(tbl, from, to int) {
	if g.observer != nil {
		g.observer.ColumnMoved(tbl, from, to)
	}
}

func (g *Group) notifyRowsInserted(tbl, at, count int) {
	if g.observer != nil {
		g.observer.RowsInserted(tbl, at, count)
	}
}

func (g *Group) notifyRowMovedOver(tbl, removed, movedFrom int) {
	if g.observer != nil {
		g.observer.RowMovedOver(tbl, removed, movedFrom)
	}
}

func (g *Group) notifyTableCleared(tbl int) {
	if g.observer != nil {
		g.observer.TableCleared(tbl)
	}
}
