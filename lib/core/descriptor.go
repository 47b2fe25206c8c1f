package core

// --------------------------------------------------------------------------
// Subtable Descriptors
// --------------------------------------------------------------------------

// DescColumn is one column of a subtable descriptor. Columns of type
// Table carry a nested descriptor of their own.
type DescColumn struct {
	Name     string
	Type     DataType
	Nullable bool
	Sub      *Descriptor
}

// Descriptor is the shared schema of the subtables stored in a column of
// type Table. Descriptors form a tree rooted at the owning table; they
// are addressed by a path of column indices (see Table.SubDescriptor).
//
// Link-type columns are not permitted inside subtable descriptors.
type Descriptor struct {
	cols []DescColumn
}

// ColumnCount returns the number of columns in the descriptor.
func (d *Descriptor) ColumnCount() int { return len(d.cols) }

// Column returns the descriptor column at idx.
func (d *Descriptor) Column(idx int) (DescColumn, error) {
	if idx < 0 || idx >= len(d.cols) {
		return DescColumn{}, schemaErrf("descriptor column index %d out of range (%d columns)", idx, len(d.cols))
	}
	return d.cols[idx], nil
}

// insertColumn inserts a column at idx. For TypeTable a fresh nested
// descriptor is created and returned.
func (d *Descriptor) insertColumn(idx int, typ DataType, name string, nullable bool) (*Descriptor, error) {
	if idx < 0 || idx > len(d.cols) {
		return nil, schemaErrf("descriptor column index %d out of range for insert (%d columns)", idx, len(d.cols))
	}
	if typ.IsLinkType() {
		return nil, schemaErrf("column type %s is not permitted in a subtable descriptor", typ)
	}
	if !typ.IsValid() {
		return nil, schemaErrf("invalid column type %d", uint8(typ))
	}
	col := DescColumn{Name: name, Type: typ, Nullable: nullable}
	if typ == TypeTable {
		col.Sub = &Descriptor{}
	}
	d.cols = sliceInsert(d.cols, idx, 1, DescColumn{})
	d.cols[idx] = col
	return col.Sub, nil
}

func (d *Descriptor) eraseColumn(idx int) error {
	if idx < 0 || idx >= len(d.cols) {
		return schemaErrf("descriptor column index %d out of range (%d columns)", idx, len(d.cols))
	}
	d.cols = append(d.cols[:idx], d.cols[idx+1:]...)
	return nil
}

func (d *Descriptor) renameColumn(idx int, name string) error {
	if idx < 0 || idx >= len(d.cols) {
		return schemaErrf("descriptor column index %d out of range (%d columns)", idx, len(d.cols))
	}
	d.cols[idx].Name = name
	return nil
}

func (d *Descriptor) moveColumn(from, to int) error {
	if from < 0 || from >= len(d.cols) || to < 0 || to >= len(d.cols) {
		return schemaErrf("descriptor column move %d -> %d out of range (%d columns)", from, to, len(d.cols))
	}
	if from == to {
		return nil
	}
	col := d.cols[from]
	d.cols = append(d.cols[:from], d.cols[from+1:]...)
	d.cols = sliceInsert(d.cols, to, 1, DescColumn{})
	d.cols[to] = col
	return nil
}

// subDescriptor walks the descriptor tree by column-index path.
func (d *Descriptor) subDescriptor(path []int) (*Descriptor, error) {
	cur := d
	for _, idx := range path {
		if idx < 0 || idx >= len(cur.cols) {
			return nil, schemaErrf("descriptor path element %d out of range (%d columns)", idx, len(cur.cols))
		}
		c := cur.cols[idx]
		if c.Type != TypeTable {
			return nil, schemaErrf("descriptor path element %d is a %s column, expected Table", idx, c.Type)
		}
		cur = c.Sub
	}
	return cur, nil
}

// equal compares two descriptor trees structurally.
func (d *Descriptor) equal(o *Descriptor) bool {
	if len(d.cols) != len(o.cols) {
		return false
	}
	for i := range d.cols {
		a, b := d.cols[i], o.cols[i]
		if a.Name != b.Name || a.Type != b.Type || a.Nullable != b.Nullable {
			return false
		}
		if a.Type == TypeTable && !a.Sub.equal(b.Sub) {
			return false
		}
	}
	return true
}
