package core

// --------------------------------------------------------------------------
// Scalar Cell Operations
// --------------------------------------------------------------------------

// SetInt sets an Int cell.
func (t *Table) SetInt(col, row int, v int64) error {
	c, err := t.colOfType(col, TypeInt)
	if err != nil {
		return err
	}
	if err := t.rowCheck(row); err != nil {
		return err
	}
	if r := t.group.recorder; r != nil {
		if err := r.SetInt(t.Index(), col, row, v); err != nil {
			return err
		}
	}
	c.ints().set(row, v)
	return nil
}

// GetInt reads an Int cell; null cells read as 0.
func (t *Table) GetInt(col, row int) (int64, error) {
	c, err := t.colOfType(col, TypeInt)
	if err != nil {
		return 0, err
	}
	if err := t.rowCheck(row); err != nil {
		return 0, err
	}
	return c.ints().get(row), nil
}

// SetBool sets a Bool cell.
func (t *Table) SetBool(col, row int, v bool) error {
	c, err := t.colOfType(col, TypeBool)
	if err != nil {
		return err
	}
	if err := t.rowCheck(row); err != nil {
		return err
	}
	if r := t.group.recorder; r != nil {
		if err := r.SetBool(t.Index(), col, row, v); err != nil {
			return err
		}
	}
	c.bools().set(row, v)
	return nil
}

// GetBool reads a Bool cell.
func (t *Table) GetBool(col, row int) (bool, error) {
	c, err := t.colOfType(col, TypeBool)
	if err != nil {
		return false, err
	}
	if err := t.rowCheck(row); err != nil {
		return false, err
	}
	return c.bools().get(row), nil
}

// SetFloat sets a Float cell.
func (t *Table) SetFloat(col, row int, v float32) error {
	c, err := t.colOfType(col, TypeFloat)
	if err != nil {
		return err
	}
	if err := t.rowCheck(row); err != nil {
		return err
	}
	if r := t.group.recorder; r != nil {
		if err := r.SetFloat(t.Index(), col, row, v); err != nil {
			return err
		}
	}
	c.floats().set(row, v)
	return nil
}

// GetFloat reads a Float cell.
func (t *Table) GetFloat(col, row int) (float32, error) {
	c, err := t.colOfType(col, TypeFloat)
	if err != nil {
		return 0, err
	}
	if err := t.rowCheck(row); err != nil {
		return 0, err
	}
	return c.floats().get(row), nil
}

// SetDouble sets a Double cell.
func (t *Table) SetDouble(col, row int, v float64) error {
	c, err := t.colOfType(col, TypeDouble)
	if err != nil {
		return err
	}
	if err := t.rowCheck(row); err != nil {
		return err
	}
	if r := t.group.recorder; r != nil {
		if err := r.SetDouble(t.Index(), col, row, v); err != nil {
			return err
		}
	}
	c.doubles().set(row, v)
	return nil
}

// GetDouble reads a Double cell.
func (t *Table) GetDouble(col, row int) (float64, error) {
	c, err := t.colOfType(col, TypeDouble)
	if err != nil {
		return 0, err
	}
	if err := t.rowCheck(row); err != nil {
		return 0, err
	}
	return c.doubles().get(row), nil
}

// SetString sets a String cell to a non-null value. The empty string is
// a value, distinct from null.
func (t *Table) SetString(col, row int, v string) error {
	c, err := t.colOfType(col, TypeString)
	if err != nil {
		return err
	}
	if err := t.rowCheck(row); err != nil {
		return err
	}
	if r := t.group.recorder; r != nil {
		if err := r.SetString(t.Index(), col, row, v); err != nil {
			return err
		}
	}
	c.strings().set(row, v)
	return nil
}

// GetString reads a String cell; null cells read as "".
func (t *Table) GetString(col, row int) (string, error) {
	c, err := t.colOfType(col, TypeString)
	if err != nil {
		return "", err
	}
	if err := t.rowCheck(row); err != nil {
		return "", err
	}
	return c.strings().get(row), nil
}

// SetBinary sets a Binary cell to a non-null value. An empty slice is a
// value, distinct from null.
func (t *Table) SetBinary(col, row int, v []byte) error {
	c, err := t.colOfType(col, TypeBinary)
	if err != nil {
		return err
	}
	if err := t.rowCheck(row); err != nil {
		return err
	}
	if r := t.group.recorder; r != nil {
		if err := r.SetBinary(t.Index(), col, row, v); err != nil {
			return err
		}
	}
	buf := make([]byte, len(v))
	copy(buf, v)
	c.binaries().set(row, buf)
	return nil
}

// GetBinary reads a Binary cell; null cells read as nil.
func (t *Table) GetBinary(col, row int) ([]byte, error) {
	c, err := t.colOfType(col, TypeBinary)
	if err != nil {
		return nil, err
	}
	if err := t.rowCheck(row); err != nil {
		return nil, err
	}
	return c.binaries().get(row), nil
}

// SetOldDateTime sets an OldDateTime cell (seconds since the epoch).
func (t *Table) SetOldDateTime(col, row int, v int64) error {
	c, err := t.colOfType(col, TypeOldDateTime)
	if err != nil {
		return err
	}
	if err := t.rowCheck(row); err != nil {
		return err
	}
	if r := t.group.recorder; r != nil {
		if err := r.SetOldDateTime(t.Index(), col, row, v); err != nil {
			return err
		}
	}
	c.ints().set(row, v)
	return nil
}

// GetOldDateTime reads an OldDateTime cell.
func (t *Table) GetOldDateTime(col, row int) (int64, error) {
	c, err := t.colOfType(col, TypeOldDateTime)
	if err != nil {
		return 0, err
	}
	if err := t.rowCheck(row); err != nil {
		return 0, err
	}
	return c.ints().get(row), nil
}

// SetTimestamp sets a Timestamp cell to a non-null value.
func (t *Table) SetTimestamp(col, row int, ts Timestamp) error {
	c, err := t.colOfType(col, TypeTimestamp)
	if err != nil {
		return err
	}
	if err := t.rowCheck(row); err != nil {
		return err
	}
	if r := t.group.recorder; r != nil {
		if err := r.SetTimestamp(t.Index(), col, row, ts); err != nil {
			return err
		}
	}
	c.timestamps().set(row, ts)
	return nil
}

// GetTimestamp reads a Timestamp cell; null cells read as the zero
// Timestamp.
func (t *Table) GetTimestamp(col, row int) (Timestamp, error) {
	c, err := t.colOfType(col, TypeTimestamp)
	if err != nil {
		return Timestamp{}, err
	}
	if err := t.rowCheck(row); err != nil {
		return Timestamp{}, err
	}
	return c.timestamps().get(row), nil
}

// SetMixed sets a Mixed cell. The value's type tag must be a scalar type
// or TypeLink.
func (t *Table) SetMixed(col, row int, v Mixed) error {
	c, err := t.colOfType(col, TypeMixed)
	if err != nil {
		return err
	}
	if err := t.rowCheck(row); err != nil {
		return err
	}
	if v.Type == TypeTable || v.Type == TypeMixed || v.Type == TypeLinkList || !v.Type.IsValid() {
		return schemaErrf("table %q: %s is not a valid Mixed value type", t.name, v.Type)
	}
	if r := t.group.recorder; r != nil {
		if err := r.SetMixed(t.Index(), col, row, v); err != nil {
			return err
		}
	}
	c.mixeds().set(row, v)
	return nil
}

// GetMixed reads a Mixed cell; the second return value reports nullness.
func (t *Table) GetMixed(col, row int) (Mixed, bool, error) {
	c, err := t.colOfType(col, TypeMixed)
	if err != nil {
		return Mixed{}, false, err
	}
	if err := t.rowCheck(row); err != nil {
		return Mixed{}, false, err
	}
	return c.mixeds().get(row), c.mixeds().isNull(row), nil
}

// SetNull sets a cell of any nullable column to null. This is distinct
// from setting a zero or empty value.
func (t *Table) SetNull(col, row int) error {
	c, err := t.colAt(col)
	if err != nil {
		return err
	}
	if err := t.rowCheck(row); err != nil {
		return err
	}
	if !t.cellNullable(c) {
		return schemaErrf("table %q: column %q (%s) is not nullable", t.name, c.name, c.typ)
	}
	if r := t.group.recorder; r != nil {
		if err := r.SetNull(t.Index(), col, row); err != nil {
			return err
		}
	}
	t.setNullInternal(c, row)
	return nil
}

func (t *Table) cellNullable(c *Column) bool {
	return c.nullable || c.typ == TypeMixed
}

func (t *Table) setNullInternal(c *Column, row int) {
	switch c.typ {
	case TypeInt, TypeOldDateTime:
		c.ints().setNull(row)
	case TypeBool:
		c.bools().setNull(row)
	case TypeFloat:
		c.floats().setNull(row)
	case TypeDouble:
		c.doubles().setNull(row)
	case TypeString:
		c.strings().setNull(row)
	case TypeBinary:
		c.binaries().setNull(row)
	case TypeTimestamp:
		c.timestamps().setNull(row)
	case TypeMixed:
		c.mixeds().setNull(row)
	}
}

// IsNull reports whether the cell is null. Link cells are null when they
// hold no target.
func (t *Table) IsNull(col, row int) (bool, error) {
	c, err := t.colAt(col)
	if err != nil {
		return false, err
	}
	if err := t.rowCheck(row); err != nil {
		return false, err
	}
	switch c.typ {
	case TypeInt, TypeOldDateTime:
		return c.ints().isNull(row), nil
	case TypeBool:
		return c.bools().isNull(row), nil
	case TypeFloat:
		return c.floats().isNull(row), nil
	case TypeDouble:
		return c.doubles().isNull(row), nil
	case TypeString:
		return c.strings().isNull(row), nil
	case TypeBinary:
		return c.binaries().isNull(row), nil
	case TypeTimestamp:
		return c.timestamps().isNull(row), nil
	case TypeMixed:
		return c.mixeds().isNull(row), nil
	case TypeLink:
		return c.links().v[row] == NullRow, nil
	default:
		return false, schemaErrf("table %q: column %q (%s) has no null representation", t.name, c.name, c.typ)
	}
}

// --------------------------------------------------------------------------
// Unique Cell Operations
// --------------------------------------------------------------------------

// SetIntUnique enforces uniqueness of v in the column. If another row
// already holds v, that row wins and the freshly inserted row is removed
// via move-last-over; otherwise the cell is set. The caller contract is
// that row was just added and its other cells are still at their
// defaults.
func (t *Table) SetIntUnique(col, row int, v int64) error {
	c, err := t.colOfType(col, TypeInt)
	if err != nil {
		return err
	}
	if err := t.rowCheck(row); err != nil {
		return err
	}
	if r := t.group.recorder; r != nil {
		if err := r.SetIntUnique(t.Index(), col, row, v); err != nil {
			return err
		}
	}
	t.setIntUniqueInternal(c, col, row, v)
	return nil
}

func (t *Table) setIntUniqueInternal(c *Column, col, row int, v int64) {
	d := c.ints()
	for r2 := 0; r2 < t.size; r2++ {
		if r2 != row && !d.isNull(r2) && d.get(r2) == v {
			cands, _ := t.moveLastOverInternal(row)
			t.group.runCascade(cands)
			return
		}
	}
	d.set(row, v)
}

// SetStringUnique enforces uniqueness of v in the column; see
// SetIntUnique for the duplicate-resolution contract.
func (t *Table) SetStringUnique(col, row int, v string) error {
	c, err := t.colOfType(col, TypeString)
	if err != nil {
		return err
	}
	if err := t.rowCheck(row); err != nil {
		return err
	}
	if r := t.group.recorder; r != nil {
		if err := r.SetStringUnique(t.Index(), col, row, v); err != nil {
			return err
		}
	}
	d := c.strings()
	for r2 := 0; r2 < t.size; r2++ {
		if r2 != row && !d.isNull(r2) && d.get(r2) == v {
			cands, _ := t.moveLastOverInternal(row)
			t.group.runCascade(cands)
			return nil
		}
	}
	d.set(row, v)
	return nil
}

// SetNullUnique enforces uniqueness of null in the column; see
// SetIntUnique for the duplicate-resolution contract.
func (t *Table) SetNullUnique(col, row int) error {
	c, err := t.colAt(col)
	if err != nil {
		return err
	}
	if err := t.rowCheck(row); err != nil {
		return err
	}
	if !t.cellNullable(c) {
		return schemaErrf("table %q: column %q (%s) is not nullable", t.name, c.name, c.typ)
	}
	if c.typ != TypeInt && c.typ != TypeString {
		return schemaErrf("table %q: unique null is only supported on Int and String columns, not %s", t.name, c.typ)
	}
	if r := t.group.recorder; r != nil {
		if err := r.SetNullUnique(t.Index(), col, row); err != nil {
			return err
		}
	}
	for r2 := 0; r2 < t.size; r2++ {
		if r2 == row {
			continue
		}
		null, _ := t.IsNull(col, r2)
		if null {
			cands, _ := t.moveLastOverInternal(row)
			t.group.runCascade(cands)
			return nil
		}
	}
	t.setNullInternal(c, row)
	return nil
}

// AddRowWithKey appends one row and sets its unique Int key in a single
// step. If the key exists the fresh row is removed again and the
// existing row wins.
func (t *Table) AddRowWithKey(col int, key int64) error {
	c, err := t.colOfType(col, TypeInt)
	if err != nil {
		return err
	}
	if len(t.columns) == 0 {
		return invariantErrf("table %q: cannot add rows to a table without columns", t.name)
	}
	if r := t.group.recorder; r != nil {
		if err := r.AddRowWithKey(t.Index(), col, key); err != nil {
			return err
		}
	}
	row := t.size
	t.insertRowsInternal(row, 1)
	t.setIntUniqueInternal(c, col, row, key)
	return nil
}

// --------------------------------------------------------------------------
// Substring Edits
// --------------------------------------------------------------------------

// InsertSubstring splices s into the current string value at byte
// position pos. pos must lie within [0, len].
func (t *Table) InsertSubstring(col, row, pos int, s string) error {
	c, err := t.colOfType(col, TypeString)
	if err != nil {
		return err
	}
	if err := t.rowCheck(row); err != nil {
		return err
	}
	d := c.strings()
	if d.isNull(row) {
		return schemaErrf("table %q: cannot edit a null string", t.name)
	}
	cur := d.get(row)
	if pos < 0 || pos > len(cur) {
		return invariantErrf("table %q: substring position %d out of range [0, %d]", t.name, pos, len(cur))
	}
	if r := t.group.recorder; r != nil {
		if err := r.InsertSubstring(t.Index(), col, row, pos, s); err != nil {
			return err
		}
	}
	d.set(row, cur[:pos]+s+cur[pos:])
	return nil
}

// RemoveSubstring removes length bytes of the current string value
// starting at byte position pos. pos must lie within [0, len]; the
// removed range is clamped to the end of the string.
func (t *Table) RemoveSubstring(col, row, pos, length int) error {
	c, err := t.colOfType(col, TypeString)
	if err != nil {
		return err
	}
	if err := t.rowCheck(row); err != nil {
		return err
	}
	d := c.strings()
	if d.isNull(row) {
		return schemaErrf("table %q: cannot edit a null string", t.name)
	}
	cur := d.get(row)
	if pos < 0 || pos > len(cur) || length < 0 {
		return invariantErrf("table %q: substring position %d out of range [0, %d]", t.name, pos, len(cur))
	}
	end := pos + length
	if end > len(cur) {
		end = len(cur)
	}
	if r := t.group.recorder; r != nil {
		if err := r.RemoveSubstring(t.Index(), col, row, pos, length); err != nil {
			return err
		}
	}
	d.set(row, cur[:pos]+cur[end:])
	return nil
}
