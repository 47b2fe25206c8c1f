package core

import "fmt"

// Verify checks every store invariant and returns the first violation
// found, nil when the group is consistent:
//
//   - table names are unique
//   - every column holds exactly one cell per row
//   - every Link cell is null or an in-range target row
//   - every LinkList entry is an in-range target row
//   - a table without columns has no rows
//   - the reverse indexes match the forward references exactly,
//     counting LinkList contributions with multiplicity
func (g *Group) Verify() error {
	names := map[string]bool{}
	for _, t := range g.tables {
		if names[t.name] {
			return invariantErrf("verify: duplicate table name %q", t.name)
		}
		names[t.name] = true
	}

	for _, t := range g.tables {
		if len(t.columns) == 0 && t.size != 0 {
			return invariantErrf("verify: table %q has %d rows but no columns", t.name, t.size)
		}
		for ci, c := range t.columns {
			if c.data.size() != t.size {
				return invariantErrf("verify: table %q column %d holds %d cells for %d rows", t.name, ci, c.data.size(), t.size)
			}
			switch c.typ {
			case TypeLink:
				for r, v := range c.links().v {
					if v != NullRow && (v < 0 || v >= int64(c.target.size)) {
						return invariantErrf("verify: table %q link cell (%d, %d) -> %d out of range", t.name, ci, r, v)
					}
				}
			case TypeLinkList:
				for r, l := range c.linkLists().v {
					for _, v := range l {
						if v < 0 || v >= int64(c.target.size) {
							return invariantErrf("verify: table %q link list entry (%d, %d) -> %d out of range", t.name, ci, r, v)
						}
					}
				}
			}
		}
	}

	// reverse indexes must mirror the forward references
	for _, t := range g.tables {
		for _, bl := range t.backlinks {
			if len(bl.rows) != t.size {
				return invariantErrf("verify: table %q reverse index holds %d rows for %d", t.name, len(bl.rows), t.size)
			}
			expected := make(map[int]map[int64]int) // target row -> origin row -> count
			switch bl.col.typ {
			case TypeLink:
				for o, v := range bl.col.links().v {
					if v == NullRow {
						continue
					}
					if expected[int(v)] == nil {
						expected[int(v)] = map[int64]int{}
					}
					expected[int(v)][int64(o)]++
				}
			case TypeLinkList:
				for o, l := range bl.col.linkLists().v {
					for _, v := range l {
						if expected[int(v)] == nil {
							expected[int(v)] = map[int64]int{}
						}
						expected[int(v)][int64(o)]++
					}
				}
			}
			for r, entries := range bl.rows {
				got := map[int64]int{}
				for _, o := range entries {
					got[o]++
				}
				want := expected[r]
				if len(got) != len(want) {
					return invariantErrf("verify: table %q row %d backlink mismatch via %q.%q: %v != %v",
						t.name, r, bl.origin.name, bl.col.name, got, want)
				}
				for o, n := range want {
					if got[o] != n {
						return invariantErrf("verify: table %q row %d backlink count %d != %d for origin row %d",
							t.name, r, got[o], n, o)
					}
				}
			}
		}

		// every incoming link column must have a reverse index
		for _, o := range g.tables {
			for ci, c := range o.columns {
				if c.typ.IsLinkType() && c.target == t && t.backlinkFor(c) == nil {
					return invariantErrf("verify: table %q misses the reverse index for %q column %d", t.name, o.name, ci)
				}
			}
		}
	}
	return nil
}

// Equal reports whether two groups hold the same schema and data. Link
// targets are compared by table position, so two groups built through
// the same mutation sequence compare equal.
func (g *Group) Equal(o *Group) bool {
	if len(g.tables) != len(o.tables) {
		return false
	}
	for i := range g.tables {
		if !tableEqual(g, o, g.tables[i], o.tables[i]) {
			return false
		}
	}
	return true
}

func tableEqual(ga, gb *Group, a, b *Table) bool {
	if a.name != b.name || a.size != b.size || len(a.columns) != len(b.columns) {
		return false
	}
	for i := range a.columns {
		ca, cb := a.columns[i], b.columns[i]
		if ca.name != cb.name || ca.typ != cb.typ || ca.nullable != cb.nullable || ca.searchIndex != cb.searchIndex {
			return false
		}
		if ca.typ.IsLinkType() {
			if ca.strength != cb.strength || ga.IndexOf(ca.target) != gb.IndexOf(cb.target) {
				return false
			}
		}
		if ca.typ == TypeTable && !ca.subdesc.equal(cb.subdesc) {
			return false
		}
		if !columnDataEqual(ca, cb) {
			return false
		}
	}
	return true
}

func columnDataEqual(a, b *Column) bool {
	switch a.typ {
	case TypeInt, TypeOldDateTime:
		return scalarEqual(a.ints(), b.ints(), func(x, y int64) bool { return x == y })
	case TypeBool:
		return scalarEqual(a.bools(), b.bools(), func(x, y bool) bool { return x == y })
	case TypeFloat:
		return scalarEqual(a.floats(), b.floats(), func(x, y float32) bool { return x == y })
	case TypeDouble:
		return scalarEqual(a.doubles(), b.doubles(), func(x, y float64) bool { return x == y })
	case TypeString:
		return scalarEqual(a.strings(), b.strings(), func(x, y string) bool { return x == y })
	case TypeBinary:
		return scalarEqual(a.binaries(), b.binaries(), bytesEqual)
	case TypeTimestamp:
		da, db := a.timestamps(), b.timestamps()
		for i := range da.sec {
			if da.null[i] != db.null[i] {
				return false
			}
			if !da.null[i] && (da.sec[i] != db.sec[i] || da.nsec[i] != db.nsec[i]) {
				return false
			}
		}
		return true
	case TypeMixed:
		return scalarEqual(a.mixeds(), b.mixeds(), mixedEqual)
	case TypeTable:
		return true
	case TypeLink:
		da, db := a.links(), b.links()
		for i := range da.v {
			if da.v[i] != db.v[i] {
				return false
			}
		}
		return true
	case TypeLinkList:
		da, db := a.linkLists(), b.linkLists()
		for i := range da.v {
			if len(da.v[i]) != len(db.v[i]) {
				return false
			}
			for j := range da.v[i] {
				if da.v[i][j] != db.v[i][j] {
					return false
				}
			}
		}
		return true
	default:
		return false
	}
}

func scalarEqual[T any](a, b *scalarData[T], eq func(T, T) bool) bool {
	for i := range a.v {
		if a.null[i] != b.null[i] {
			return false
		}
		if !a.null[i] && !eq(a.v[i], b.v[i]) {
			return false
		}
	}
	return true
}

// Dump renders a compact human-readable description of the group, used
// by error messages and the CLI.
func (g *Group) Dump() string {
	out := ""
	for i, t := range g.tables {
		out += fmt.Sprintf("table %d %q: %d columns, %d rows\n", i, t.name, len(t.columns), t.size)
	}
	return out
}
