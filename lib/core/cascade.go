package core

import "sort"

// rowRef identifies one row as a cascade candidate. Candidates are
// gathered when a strong reference breaks and rebased whenever
// move-last-over shifts rows underneath them.
type rowRef struct {
	table *Table
	row   int
}

// rebaseRefs drops references to the removed row of t and rewrites
// references to the row that moved into its place.
func rebaseRefs(refs []rowRef, t *Table, removed, movedFrom int) []rowRef {
	out := refs[:0]
	for _, r := range refs {
		if r.table == t {
			if r.row == removed {
				continue
			}
			if r.row == movedFrom {
				r.row = removed
			}
		}
		out = append(out, r)
	}
	return out
}

// runCascade deletes every row whose last incoming strong reference was
// just removed, repeating until a fixed point: each deletion breaks the
// dying row's own outgoing strong references, which feeds the worklist.
//
// The worklist is an explicit queue with a per-candidate recount; rows
// are never deleted while they still have an incoming strong reference
// (self references excluded). Removing the last external reference to a
// strong cycle therefore deletes none of its rows, since each still has
// an incoming strong reference from inside the cycle; breaking an edge
// inside the cycle unwinds it. Deletions happen in (table index
// ascending, row index descending) order to keep move-last-over indices
// coherent.
//
// Cascade deletions are implicit: they are not recorded and the applier
// re-derives them from the same instruction.
func (g *Group) runCascade(work []rowRef) {
	if g.cascadeDisabled {
		return
	}
	for len(work) > 0 {
		// schedule every candidate whose strong reference count reached zero
		var batch []rowRef
		var rest []rowRef
		seen := map[rowRef]bool{}
		for _, c := range work {
			if seen[c] {
				continue
			}
			seen[c] = true
			if c.row >= c.table.size {
				continue
			}
			if c.table.strongRefCount(c.row) == 0 {
				batch = append(batch, c)
			} else {
				rest = append(rest, c)
			}
		}
		if len(batch) == 0 {
			return
		}
		sort.Slice(batch, func(i, j int) bool {
			ti, tj := g.IndexOf(batch[i].table), g.IndexOf(batch[j].table)
			if ti != tj {
				return ti < tj
			}
			return batch[i].row > batch[j].row
		})

		work = rest
		for len(batch) > 0 {
			d := batch[0]
			batch = batch[1:]
			if d.row >= d.table.size {
				continue
			}
			more, movedFrom := d.table.moveLastOverInternal(d.row)
			batch = rebaseRefs(batch, d.table, d.row, movedFrom)
			work = rebaseRefs(work, d.table, d.row, movedFrom)
			work = append(work, more...)
		}
	}
}
