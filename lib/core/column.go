package core

// Column is the schema entry plus cell storage of one table column. The
// struct identity of a Column is stable across renames and moves, which
// is what backlink bookkeeping keys on.
type Column struct {
	name        string
	typ         DataType
	nullable    bool
	searchIndex bool

	// link columns only
	target   *Table
	strength LinkStrength

	// TypeTable columns only
	subdesc *Descriptor

	data columnData
}

func newColumn(typ DataType, name string, nullable bool) *Column {
	c := &Column{
		name:     name,
		typ:      typ,
		nullable: nullable,
		data:     newColumnData(typ, nullable),
	}
	if typ == TypeTable {
		c.subdesc = &Descriptor{}
	}
	return c
}

func newLinkColumn(typ DataType, name string, target *Table, strength LinkStrength) *Column {
	return &Column{
		name:     name,
		typ:      typ,
		target:   target,
		strength: strength,
		data:     newColumnData(typ, false),
	}
}

// Name returns the column name.
func (c *Column) Name() string { return c.name }

// Type returns the column data type.
func (c *Column) Type() DataType { return c.typ }

// Nullable reports whether cells of this column may hold null.
func (c *Column) Nullable() bool { return c.nullable }

// HasSearchIndex reports whether a search index is declared on the column.
func (c *Column) HasSearchIndex() bool { return c.searchIndex }

// Target returns the link target table, nil for non-link columns.
func (c *Column) Target() *Table { return c.target }

// Strength returns the ownership attribute of a link column.
func (c *Column) Strength() LinkStrength { return c.strength }

// SubDescriptor returns the descriptor of a TypeTable column, nil otherwise.
func (c *Column) SubDescriptor() *Descriptor { return c.subdesc }

// typed storage accessors; callers have verified the column type

func (c *Column) ints() *scalarData[int64]      { return c.data.(*scalarData[int64]) }
func (c *Column) bools() *scalarData[bool]      { return c.data.(*scalarData[bool]) }
func (c *Column) floats() *scalarData[float32]  { return c.data.(*scalarData[float32]) }
func (c *Column) doubles() *scalarData[float64] { return c.data.(*scalarData[float64]) }
func (c *Column) strings() *scalarData[string]  { return c.data.(*scalarData[string]) }
func (c *Column) binaries() *scalarData[[]byte] { return c.data.(*scalarData[[]byte]) }
func (c *Column) timestamps() *timestampData    { return c.data.(*timestampData) }
func (c *Column) mixeds() *scalarData[Mixed]    { return c.data.(*scalarData[Mixed]) }
func (c *Column) links() *linkData              { return c.data.(*linkData) }
func (c *Column) linkLists() *linkListData      { return c.data.(*linkListData) }
