package replicate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tabulardb/tabular/lib/core"
	"github.com/tabulardb/tabular/lib/replicate"
	"github.com/tabulardb/tabular/lib/transact"
	"github.com/tabulardb/tabular/lib/txn"
)

// source wraps a recording store and keeps every committed changeset.
type source struct {
	store *txn.Shared
	css   []*transact.Changeset
}

func newSource() *source {
	s := &source{store: txn.NewShared()}
	s.store.SetHandler(func(cs *transact.Changeset) error {
		s.css = append(s.css, cs)
		return nil
	})
	return s
}

// write runs one write transaction against the source store.
func (s *source) write(t *testing.T, fn func(g *core.Group) error) {
	t.Helper()
	wt := s.store.BeginWrite()
	if err := fn(wt.Group()); err != nil {
		wt.Abort()
		t.Fatalf("Write transaction failed: %v", err)
	}
	if _, err := wt.Commit(); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
}

// replay applies every committed changeset to a fresh group and
// verifies it matches the source exactly.
func (s *source) replay(t *testing.T) *core.Group {
	t.Helper()
	g := core.NewGroup()
	applier := replicate.NewApplier(replicate.Config{})
	require.NoError(t, applier.ApplyAll(g, s.css))
	require.NoError(t, g.Verify(), "replayed store failed verification")
	require.NoError(t, s.store.ReadGroup().Verify(), "source store failed verification")
	require.True(t, g.Equal(s.store.ReadGroup()), "replayed store diverged from the source")
	return g
}

func table(t *testing.T, g *core.Group, name string) *core.Table {
	t.Helper()
	tbl, ok := g.TableByName(name)
	require.True(t, ok, "table %s missing", name)
	return tbl
}

// TestBasicReplay is scenario S1: scalar writes and move-last-over.
func TestBasicReplay(t *testing.T) {
	s := newSource()
	s.write(t, func(g *core.Group) error {
		tbl, err := g.AddTable("t")
		if err != nil {
			return err
		}
		if _, err := tbl.AddColumn(core.TypeInt, "v", false); err != nil {
			return err
		}
		if _, err := tbl.AddEmptyRow(3); err != nil {
			return err
		}
		if err := tbl.SetInt(0, 0, 10); err != nil {
			return err
		}
		if err := tbl.SetInt(0, 2, 3); err != nil {
			return err
		}
		return tbl.MoveLastOver(1)
	})

	g := s.replay(t)
	tbl := table(t, g, "t")
	require.Equal(t, 2, tbl.Size())
	v, err := tbl.GetInt(0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(10), v)
	v, err = tbl.GetInt(0, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), v, "the former last row moved into slot 1")
}

// TestTimestampNullVsValue is scenario S2: overwriting non-null with
// null must replay as null, not as a zero timestamp.
func TestTimestampNullVsValue(t *testing.T) {
	s := newSource()
	s.write(t, func(g *core.Group) error {
		tbl, err := g.AddTable("t")
		if err != nil {
			return err
		}
		if _, err := tbl.AddColumn(core.TypeTimestamp, "ts", true); err != nil {
			return err
		}
		if _, err := tbl.AddEmptyRow(3); err != nil {
			return err
		}
		if err := tbl.SetTimestamp(0, 1, core.Timestamp{Sec: 5, Nsec: 6}); err != nil {
			return err
		}
		return tbl.SetTimestamp(0, 2, core.Timestamp{Sec: 1, Nsec: 2})
	})
	s.write(t, func(g *core.Group) error {
		tbl, _ := g.TableByName("t")
		if err := tbl.SetNull(0, 1); err != nil {
			return err
		}
		return tbl.SetTimestamp(0, 2, core.Timestamp{Sec: 3, Nsec: 4})
	})
	s.write(t, func(g *core.Group) error {
		tbl, _ := g.TableByName("t")
		return tbl.MoveLastOver(0)
	})

	g := s.replay(t)
	tbl := table(t, g, "t")
	require.Equal(t, 2, tbl.Size())
	ts, err := tbl.GetTimestamp(0, 0)
	require.NoError(t, err)
	assert.Equal(t, core.Timestamp{Sec: 3, Nsec: 4}, ts)
	null, err := tbl.IsNull(0, 1)
	require.NoError(t, err)
	assert.True(t, null)
}

// TestLinkRetargetUnderStrong is scenario S3: the replica re-derives
// the cascade deletion the changeset never encodes.
func TestLinkRetargetUnderStrong(t *testing.T) {
	s := newSource()
	s.write(t, func(g *core.Group) error {
		target, err := g.AddTable("target")
		if err != nil {
			return err
		}
		if _, err := target.AddColumn(core.TypeInt, "v", false); err != nil {
			return err
		}
		origin, err := g.AddTable("origin")
		if err != nil {
			return err
		}
		if _, err := origin.AddColumnLink(core.TypeLink, "l", target, core.LinkStrong); err != nil {
			return err
		}
		if _, err := target.AddEmptyRow(2); err != nil {
			return err
		}
		if _, err := origin.AddEmptyRow(2); err != nil {
			return err
		}
		if err := origin.SetLink(0, 0, 0); err != nil {
			return err
		}
		return origin.SetLink(0, 1, 1)
	})
	s.write(t, func(g *core.Group) error {
		origin, _ := g.TableByName("origin")
		return origin.SetLink(0, 1, 0)
	})

	g := s.replay(t)
	target := table(t, g, "target")
	origin := table(t, g, "origin")
	require.Equal(t, 1, target.Size(), "the orphaned strong target cascaded")
	l, err := origin.GetLink(0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), l)
	l, err = origin.GetLink(0, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), l)
}

// TestNullStringsVsEmpty is scenario S4 for String and Binary.
func TestNullStringsVsEmpty(t *testing.T) {
	s := newSource()
	s.write(t, func(g *core.Group) error {
		tbl, err := g.AddTable("t")
		if err != nil {
			return err
		}
		if _, err := tbl.AddColumn(core.TypeString, "s", true); err != nil {
			return err
		}
		if _, err := tbl.AddColumn(core.TypeBinary, "b", true); err != nil {
			return err
		}
		if _, err := tbl.AddEmptyRow(3); err != nil {
			return err
		}
		if err := tbl.SetString(0, 1, ""); err != nil {
			return err
		}
		if err := tbl.SetNull(0, 2); err != nil {
			return err
		}
		if err := tbl.SetBinary(1, 1, []byte{}); err != nil {
			return err
		}
		return tbl.SetNull(1, 2)
	})

	g := s.replay(t)
	tbl := table(t, g, "t")
	for col := 0; col < 2; col++ {
		null, err := tbl.IsNull(col, 0)
		require.NoError(t, err)
		assert.True(t, null, "col %d row 0: untouched nullable cell stays null", col)
		null, err = tbl.IsNull(col, 1)
		require.NoError(t, err)
		assert.False(t, null, "col %d row 1: empty is a value", col)
		null, err = tbl.IsNull(col, 2)
		require.NoError(t, err)
		assert.True(t, null, "col %d row 2: explicit null", col)
	}
	sv, err := tbl.GetString(0, 1)
	require.NoError(t, err)
	assert.Equal(t, "", sv)
}

// TestSetUniqueDeletesCurrentRow is scenario S5.
func TestSetUniqueDeletesCurrentRow(t *testing.T) {
	s := newSource()
	s.write(t, func(g *core.Group) error {
		tbl, err := g.AddTable("t")
		if err != nil {
			return err
		}
		if _, err := tbl.AddColumn(core.TypeInt, "key", false); err != nil {
			return err
		}
		if _, err := tbl.AddEmptyRow(1); err != nil {
			return err
		}
		if err := tbl.SetIntUnique(0, 0, 123); err != nil {
			return err
		}
		if _, err := tbl.AddEmptyRow(1); err != nil {
			return err
		}
		return tbl.SetIntUnique(0, 1, 123)
	})

	g := s.replay(t)
	tbl := table(t, g, "t")
	require.Equal(t, 1, tbl.Size())
	v, err := tbl.GetInt(0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(123), v)
}

// TestLinkListSetNoOpDoesNotCascadeOnReplay is scenario S6.
func TestLinkListSetNoOpDoesNotCascadeOnReplay(t *testing.T) {
	s := newSource()
	s.write(t, func(g *core.Group) error {
		target, err := g.AddTable("target")
		if err != nil {
			return err
		}
		if _, err := target.AddColumn(core.TypeInt, "v", false); err != nil {
			return err
		}
		origin, err := g.AddTable("origin")
		if err != nil {
			return err
		}
		if _, err := origin.AddColumnLink(core.TypeLinkList, "ll", target, core.LinkStrong); err != nil {
			return err
		}
		if _, err := target.AddEmptyRow(2); err != nil {
			return err
		}
		if _, err := origin.AddEmptyRow(1); err != nil {
			return err
		}
		list, err := origin.LinkList(0, 0)
		if err != nil {
			return err
		}
		if err := list.Add(0); err != nil {
			return err
		}
		return list.Add(1)
	})

	s.write(t, func(g *core.Group) error {
		origin, _ := g.TableByName("origin")
		list, err := origin.LinkList(0, 0)
		if err != nil {
			return err
		}
		return list.Set(1, 1) // no-op, must not cascade
	})
	g := s.replay(t)
	require.Equal(t, 2, table(t, g, "target").Size())

	s.write(t, func(g *core.Group) error {
		origin, _ := g.TableByName("origin")
		list, err := origin.LinkList(0, 0)
		if err != nil {
			return err
		}
		return list.Set(1, 0) // row 1 loses its only strong ref
	})
	g = s.replay(t)
	require.Equal(t, 1, table(t, g, "target").Size())
}

// TestReplayIsAssociative is round-trip law 3: applying the
// concatenation of two changesets equals applying them in sequence.
func TestReplayIsAssociative(t *testing.T) {
	s := newSource()
	s.write(t, func(g *core.Group) error {
		tbl, err := g.AddTable("t")
		if err != nil {
			return err
		}
		if _, err := tbl.AddColumn(core.TypeInt, "v", false); err != nil {
			return err
		}
		_, err = tbl.AddEmptyRow(2)
		return err
	})
	s.write(t, func(g *core.Group) error {
		tbl, _ := g.TableByName("t")
		if err := tbl.SetInt(0, 0, 1); err != nil {
			return err
		}
		return tbl.MoveLastOver(1)
	})
	require.Len(t, s.css, 2)

	sequential := s.replay(t)

	concat := &transact.Changeset{
		Version: 1,
		Data:    append(append([]byte{}, s.css[0].Data...), s.css[1].Data...),
	}
	merged := core.NewGroup()
	require.NoError(t, replicate.NewApplier(replicate.Config{}).Apply(merged, concat))
	require.True(t, merged.Equal(sequential))
}

// TestEmptyChangesetIsZeroOp verifies an empty commit applies cleanly.
func TestEmptyChangesetIsZeroOp(t *testing.T) {
	s := newSource()
	s.write(t, func(g *core.Group) error { return nil })
	require.Len(t, s.css, 1)
	require.True(t, s.css[0].Empty())

	g := core.NewGroup()
	require.NoError(t, replicate.NewApplier(replicate.Config{}).Apply(g, s.css[0]))
	require.Equal(t, 0, g.Size())
}

// TestSchemaEvolutionReplay covers renames, moves, link columns and
// search indexes across several commits.
func TestSchemaEvolutionReplay(t *testing.T) {
	s := newSource()
	s.write(t, func(g *core.Group) error {
		t1, err := g.AddTable("origin_1")
		if err != nil {
			return err
		}
		t2, err := g.AddTable("target_1")
		if err != nil {
			return err
		}
		if _, err := t2.AddColumn(core.TypeInt, "t_1", false); err != nil {
			return err
		}
		if _, err := t1.AddColumnLink(core.TypeLinkList, "ll", t2, core.LinkWeak); err != nil {
			return err
		}
		if err := t1.InsertColumn(0, core.TypeInt, "f", false); err != nil {
			return err
		}
		if _, err := t2.AddEmptyRow(2); err != nil {
			return err
		}
		_, err = t1.AddEmptyRow(2)
		return err
	})
	s.write(t, func(g *core.Group) error {
		t1, _ := g.TableByName("origin_1")
		list, err := t1.LinkList(1, 0)
		if err != nil {
			return err
		}
		if err := list.Add(1); err != nil {
			return err
		}
		if err := list.Insert(0, 0); err != nil {
			return err
		}
		if err := list.Move(0, 1); err != nil {
			return err
		}
		if err := list.Swap(0, 1); err != nil {
			return err
		}
		if err := t1.RenameColumn(0, "renamed"); err != nil {
			return err
		}
		if err := t1.AddSearchIndex(0); err != nil {
			return err
		}
		return g.RenameTable(0, "origin_renamed")
	})
	s.write(t, func(g *core.Group) error {
		if err := g.MoveTable(0, 1); err != nil {
			return err
		}
		t1, _ := g.TableByName("origin_renamed")
		return t1.MoveColumn(0, 1)
	})

	s.replay(t)
}

// TestMixedAndScalarReplay covers every scalar cell family in one pass.
func TestMixedAndScalarReplay(t *testing.T) {
	s := newSource()
	s.write(t, func(g *core.Group) error {
		tbl, err := g.AddTable("t")
		if err != nil {
			return err
		}
		cols := []struct {
			typ      core.DataType
			name     string
			nullable bool
		}{
			{core.TypeInt, "i", false},
			{core.TypeBool, "b", false},
			{core.TypeFloat, "f", false},
			{core.TypeDouble, "d", false},
			{core.TypeString, "s", true},
			{core.TypeBinary, "bin", true},
			{core.TypeOldDateTime, "odt", false},
			{core.TypeTimestamp, "ts", true},
			{core.TypeMixed, "m", false},
		}
		for _, c := range cols {
			if _, err := tbl.AddColumn(c.typ, c.name, c.nullable); err != nil {
				return err
			}
		}
		if _, err := tbl.AddEmptyRow(2); err != nil {
			return err
		}
		if err := tbl.SetInt(0, 0, -42); err != nil {
			return err
		}
		if err := tbl.SetBool(1, 0, true); err != nil {
			return err
		}
		if err := tbl.SetFloat(2, 0, 2.5); err != nil {
			return err
		}
		if err := tbl.SetDouble(3, 0, -0.125); err != nil {
			return err
		}
		if err := tbl.SetString(4, 0, "xx"); err != nil {
			return err
		}
		if err := tbl.SetBinary(5, 0, []byte{9, 8}); err != nil {
			return err
		}
		if err := tbl.SetOldDateTime(6, 0, 728); err != nil {
			return err
		}
		if err := tbl.SetTimestamp(7, 0, core.Timestamp{Sec: -1, Nsec: 999}); err != nil {
			return err
		}
		if err := tbl.SetMixed(8, 0, core.MixedInt(1)); err != nil {
			return err
		}
		if err := tbl.SetMixed(8, 1, core.MixedTimestamp(core.Timestamp{Sec: 7, Nsec: 8})); err != nil {
			return err
		}
		if err := tbl.InsertSubstring(4, 0, 1, "yz"); err != nil {
			return err
		}
		return tbl.RemoveSubstring(4, 0, 0, 1)
	})

	g := s.replay(t)
	tbl := table(t, g, "t")
	sv, err := tbl.GetString(4, 0)
	require.NoError(t, err)
	assert.Equal(t, "yzx", sv)
	m, null, err := tbl.GetMixed(8, 1)
	require.NoError(t, err)
	require.False(t, null)
	assert.Equal(t, core.Timestamp{Sec: 7, Nsec: 8}, m.Ts)
}

// TestMergeRowsReplay verifies MergeRows re-points incoming links and
// deletes the merged row on the replica.
func TestMergeRowsReplay(t *testing.T) {
	s := newSource()
	s.write(t, func(g *core.Group) error {
		target, err := g.AddTable("target")
		if err != nil {
			return err
		}
		if _, err := target.AddColumn(core.TypeInt, "v", false); err != nil {
			return err
		}
		origin, err := g.AddTable("origin")
		if err != nil {
			return err
		}
		if _, err := origin.AddColumnLink(core.TypeLink, "l", target, core.LinkWeak); err != nil {
			return err
		}
		if _, err := target.AddEmptyRow(2); err != nil {
			return err
		}
		if _, err := origin.AddEmptyRow(1); err != nil {
			return err
		}
		if err := origin.SetLink(0, 0, 0); err != nil {
			return err
		}
		if err := target.SetInt(0, 1, 5); err != nil {
			return err
		}
		return target.MergeRows(0, 1)
	})

	g := s.replay(t)
	target := table(t, g, "target")
	origin := table(t, g, "origin")
	require.Equal(t, 1, target.Size())
	l, err := origin.GetLink(0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), l)
	v, err := target.GetInt(0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(5), v)
}

// TestCascadeDisabledRejectedWithStrongSchema checks the config guard.
func TestCascadeDisabledRejectedWithStrongSchema(t *testing.T) {
	s := newSource()
	s.write(t, func(g *core.Group) error {
		target, err := g.AddTable("target")
		if err != nil {
			return err
		}
		if _, err := target.AddColumn(core.TypeInt, "v", false); err != nil {
			return err
		}
		origin, err := g.AddTable("origin")
		if err != nil {
			return err
		}
		_, err = origin.AddColumnLink(core.TypeLink, "l", target, core.LinkStrong)
		return err
	})

	// first build the strong schema on the replica, then try a
	// cascade-disabled apply on top of it
	g := core.NewGroup()
	require.NoError(t, replicate.NewApplier(replicate.Config{}).Apply(g, s.css[0]))

	err := replicate.NewApplier(replicate.Config{Cascade: replicate.CascadeDisabled}).
		Apply(g, &transact.Changeset{Version: 2})
	require.Error(t, err)
	assert.Equal(t, core.RetCInvariantViolation, core.CodeOf(err))
}

// TestApplyErrorCarriesOffset verifies semantic failures report the
// byte offset and instruction description.
func TestApplyErrorCarriesOffset(t *testing.T) {
	// a stream addressing a table that does not exist on the target
	r := transact.NewRecorder()
	require.NoError(t, r.SetInt(3, 0, 0, 1))
	cs := r.Freeze(1)

	err := replicate.NewApplier(replicate.Config{}).Apply(core.NewGroup(), cs)
	require.Error(t, err)
	applyErr, ok := err.(*replicate.ApplyError)
	require.True(t, ok, "expected *replicate.ApplyError, got %T", err)
	assert.Equal(t, 0, applyErr.Offset)
	assert.Contains(t, applyErr.Instr, "SelectTable")
}

// countingObserver counts notifications to verify apply modes.
type countingObserver struct {
	n int
}

func (o *countingObserver) TableErased(int)           { o.n++ }
func (o *countingObserver) TableMoved(int, int)       { o.n++ }
func (o *countingObserver) ColumnErased(int, int)     { o.n++ }
func (o *countingObserver) ColumnMoved(int, int, int) { o.n++ }
func (o *countingObserver) RowsInserted(int, int, int) {
	o.n++
}
func (o *countingObserver) RowMovedOver(int, int, int) {
	o.n++
}
func (o *countingObserver) TableCleared(int) { o.n++ }

// TestNonatomicRebuildSuppressesNotifications verifies the rebuild
// apply mode silences the attachment-discipline signals and restores
// the observer afterwards.
func TestNonatomicRebuildSuppressesNotifications(t *testing.T) {
	s := newSource()
	s.write(t, func(g *core.Group) error {
		tbl, err := g.AddTable("t")
		if err != nil {
			return err
		}
		if _, err := tbl.AddColumn(core.TypeInt, "v", false); err != nil {
			return err
		}
		if _, err := tbl.AddEmptyRow(2); err != nil {
			return err
		}
		return tbl.MoveLastOver(0)
	})

	g := core.NewGroup()
	obs := &countingObserver{}
	g.SetObserver(obs)

	require.NoError(t, replicate.NewApplier(replicate.Config{Mode: replicate.ModeNonatomicRebuild}).
		Apply(g, s.css[0]))
	assert.Zero(t, obs.n, "rebuild mode must not deliver notifications")

	// the observer is back in place for normal applies
	g2 := core.NewGroup()
	g2.SetObserver(obs)
	require.NoError(t, replicate.NewApplier(replicate.Config{}).Apply(g2, s.css[0]))
	assert.NotZero(t, obs.n)
}

// TestNonMonotonicVersionsRejected verifies ApplyAll enforces the
// version ordering.
func TestNonMonotonicVersionsRejected(t *testing.T) {
	css := []*transact.Changeset{
		{Version: 2},
		{Version: 2},
	}
	err := replicate.NewApplier(replicate.Config{}).ApplyAll(core.NewGroup(), css)
	require.Error(t, err)
	assert.Equal(t, core.RetCInvariantViolation, core.CodeOf(err))
}

// TestEraseTableReplay verifies table removal round-trips, including
// the implicit drop of dangling link columns.
func TestEraseTableReplay(t *testing.T) {
	s := newSource()
	s.write(t, func(g *core.Group) error {
		target, err := g.AddTable("target")
		if err != nil {
			return err
		}
		if _, err := target.AddColumn(core.TypeInt, "v", false); err != nil {
			return err
		}
		origin, err := g.AddTable("origin")
		if err != nil {
			return err
		}
		if _, err := origin.AddColumnLink(core.TypeLink, "l", target, core.LinkWeak); err != nil {
			return err
		}
		_, err = origin.AddEmptyRow(1)
		return err
	})
	s.write(t, func(g *core.Group) error {
		// no live references: the erase is legal and drops origin's column
		return g.EraseTable(0)
	})

	g := s.replay(t)
	require.Equal(t, 1, g.Size())
	origin := table(t, g, "origin")
	require.Equal(t, 0, origin.ColumnCount())
}
