package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// linkedPair builds origin -> target with one Link column of the given
// strength and one Int column on the target.
func linkedPair(t *testing.T, strength LinkStrength) (*Group, *Table, *Table) {
	t.Helper()
	g := NewGroup()
	target := mustTable(t, g, "target")
	origin := mustTable(t, g, "origin")
	_, err := target.AddColumn(TypeInt, "v", false)
	require.NoError(t, err)
	_, err = origin.AddColumnLink(TypeLink, "l", target, strength)
	require.NoError(t, err)
	return g, origin, target
}

func TestRetargetCascadesOldStrongTarget(t *testing.T) {
	g, origin, target := linkedPair(t, LinkStrong)
	_, err := target.AddEmptyRow(2)
	require.NoError(t, err)
	_, err = origin.AddEmptyRow(2)
	require.NoError(t, err)

	require.NoError(t, origin.SetLink(0, 0, 0))
	require.NoError(t, origin.SetLink(0, 1, 1))

	// retargeting row 1 onto target row 0 orphans target row 1
	require.NoError(t, origin.SetLink(0, 1, 0))

	require.Equal(t, 1, target.Size())
	l, err := origin.GetLink(0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), l)
	l, err = origin.GetLink(0, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), l)
	require.NoError(t, g.Verify())
}

func TestWeakLinksNeverCascade(t *testing.T) {
	g, origin, target := linkedPair(t, LinkWeak)
	_, err := target.AddEmptyRow(2)
	require.NoError(t, err)
	_, err = origin.AddEmptyRow(1)
	require.NoError(t, err)

	require.NoError(t, origin.SetLink(0, 0, 1))
	require.NoError(t, origin.NullifyLink(0, 0))

	require.Equal(t, 2, target.Size())
	require.NoError(t, g.Verify())
}

func TestNullifyCascadesLastStrongRef(t *testing.T) {
	g, origin, target := linkedPair(t, LinkStrong)
	_, err := target.AddEmptyRow(1)
	require.NoError(t, err)
	_, err = origin.AddEmptyRow(2)
	require.NoError(t, err)

	// two strong refs to the same row: dropping one keeps it alive
	require.NoError(t, origin.SetLink(0, 0, 0))
	require.NoError(t, origin.SetLink(0, 1, 0))
	require.NoError(t, origin.NullifyLink(0, 0))
	require.Equal(t, 1, target.Size())

	require.NoError(t, origin.NullifyLink(0, 1))
	require.Equal(t, 0, target.Size())
	require.NoError(t, g.Verify())
}

func TestLinkListSetNoOpDoesNotCascade(t *testing.T) {
	g := NewGroup()
	target := mustTable(t, g, "target")
	origin := mustTable(t, g, "origin")
	_, err := target.AddColumn(TypeInt, "v", false)
	require.NoError(t, err)
	_, err = origin.AddColumnLink(TypeLinkList, "ll", target, LinkStrong)
	require.NoError(t, err)

	_, err = target.AddEmptyRow(2)
	require.NoError(t, err)
	_, err = origin.AddEmptyRow(1)
	require.NoError(t, err)

	list, err := origin.LinkList(0, 0)
	require.NoError(t, err)
	require.NoError(t, list.Add(0))
	require.NoError(t, list.Add(1))

	// set(1, 1): the entry already holds 1, nothing may cascade
	require.NoError(t, list.Set(1, 1))
	require.Equal(t, 2, target.Size())

	// set(1, 0): target row 1 loses its only strong ref
	require.NoError(t, list.Set(1, 0))
	require.Equal(t, 1, target.Size())

	n, err := list.Size()
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.NoError(t, g.Verify())
}

func TestLinkListSwapWithItselfIsValid(t *testing.T) {
	g := NewGroup()
	target := mustTable(t, g, "target")
	origin := mustTable(t, g, "origin")
	_, err := target.AddColumn(TypeInt, "v", false)
	require.NoError(t, err)
	_, err = origin.AddColumnLink(TypeLinkList, "ll", target, LinkStrong)
	require.NoError(t, err)
	_, err = target.AddEmptyRow(1)
	require.NoError(t, err)
	_, err = origin.AddEmptyRow(1)
	require.NoError(t, err)

	list, err := origin.LinkList(0, 0)
	require.NoError(t, err)
	require.NoError(t, list.Add(0))
	require.NoError(t, list.Swap(0, 0))
	require.Equal(t, 1, target.Size())
	require.NoError(t, g.Verify())
}

func TestSelfLinkDoesNotKeepRowAlive(t *testing.T) {
	g := NewGroup()
	tbl := mustTable(t, g, "t")
	_, err := tbl.AddColumnLink(TypeLink, "self", tbl, LinkStrong)
	require.NoError(t, err)
	_, err = tbl.AddColumnLink(TypeLink, "other", tbl, LinkStrong)
	require.NoError(t, err)

	_, err = tbl.AddEmptyRow(2)
	require.NoError(t, err)

	// row 1 links to itself and is owned by row 0
	require.NoError(t, tbl.SetLink(0, 1, 1))
	require.NoError(t, tbl.SetLink(1, 0, 1))

	// dropping the external ref deletes row 1 despite its self link
	require.NoError(t, tbl.NullifyLink(1, 0))
	require.Equal(t, 1, tbl.Size())
	require.NoError(t, g.Verify())
}

func TestStrongCycleUnwindsWhenCycleEdgeBreaks(t *testing.T) {
	g := NewGroup()
	tbl := mustTable(t, g, "t")
	_, err := tbl.AddColumnLink(TypeLink, "next", tbl, LinkStrong)
	require.NoError(t, err)
	holder := mustTable(t, g, "holder")
	_, err = holder.AddColumnLink(TypeLink, "head", tbl, LinkStrong)
	require.NoError(t, err)

	_, err = tbl.AddEmptyRow(2)
	require.NoError(t, err)
	_, err = holder.AddEmptyRow(1)
	require.NoError(t, err)

	// 0 -> 1 -> 0 cycle, held alive from the outside through row 0
	require.NoError(t, tbl.SetLink(0, 0, 1))
	require.NoError(t, tbl.SetLink(0, 1, 0))
	require.NoError(t, holder.SetLink(0, 0, 0))

	// the cycle keeps itself alive while the external ref exists
	require.Equal(t, 2, tbl.Size())

	// cutting the external edge must not delete anything: both rows
	// still hold one incoming strong ref from inside the cycle
	require.NoError(t, holder.NullifyLink(0, 0))
	require.Equal(t, 2, tbl.Size())

	// breaking one cycle edge unwinds the whole cycle
	require.NoError(t, tbl.NullifyLink(0, 0))
	require.Equal(t, 0, tbl.Size())
	require.NoError(t, g.Verify())
}

func TestMoveLastOverCascadesOutgoingStrongRefs(t *testing.T) {
	g, origin, target := linkedPair(t, LinkStrong)
	_, err := target.AddEmptyRow(2)
	require.NoError(t, err)
	_, err = origin.AddEmptyRow(2)
	require.NoError(t, err)
	require.NoError(t, target.SetInt(0, 0, 100))
	require.NoError(t, target.SetInt(0, 1, 200))

	require.NoError(t, origin.SetLink(0, 0, 0))
	require.NoError(t, origin.SetLink(0, 1, 1))

	// removing origin row 0 orphans target row 0
	require.NoError(t, origin.MoveLastOver(0))

	require.Equal(t, 1, origin.Size())
	require.Equal(t, 1, target.Size())
	v, err := target.GetInt(0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(200), v)

	// the moved origin row still points at the surviving target row
	l, err := origin.GetLink(0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), l)
	require.NoError(t, g.Verify())
}

func TestClearTargetNullifiesWeakIncoming(t *testing.T) {
	g := NewGroup()
	target := mustTable(t, g, "target")
	origin := mustTable(t, g, "origin")
	_, err := target.AddColumn(TypeInt, "v", false)
	require.NoError(t, err)
	_, err = origin.AddColumnLink(TypeLink, "l", target, LinkWeak)
	require.NoError(t, err)
	_, err = origin.AddColumnLink(TypeLinkList, "ll", target, LinkWeak)
	require.NoError(t, err)

	_, err = target.AddEmptyRow(2)
	require.NoError(t, err)
	_, err = origin.AddEmptyRow(2)
	require.NoError(t, err)
	require.NoError(t, origin.SetLink(0, 0, 1))
	list, err := origin.LinkList(1, 1)
	require.NoError(t, err)
	require.NoError(t, list.Add(0))
	require.NoError(t, list.Add(1))

	require.NoError(t, target.Clear())

	require.Equal(t, 0, target.Size())
	require.Equal(t, 2, origin.Size(), "clearing a weak target must not delete origin rows")
	null, err := origin.IsNullLink(0, 0)
	require.NoError(t, err)
	assert.True(t, null)
	list2, err := origin.LinkList(1, 1)
	require.NoError(t, err)
	n, err := list2.Size()
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	require.NoError(t, g.Verify())
}

func TestClearOriginCascadesStrongTargets(t *testing.T) {
	g, origin, target := linkedPair(t, LinkStrong)
	_, err := target.AddEmptyRow(3)
	require.NoError(t, err)
	_, err = origin.AddEmptyRow(2)
	require.NoError(t, err)
	require.NoError(t, origin.SetLink(0, 0, 0))
	require.NoError(t, origin.SetLink(0, 1, 2))

	require.NoError(t, origin.Clear())

	require.Equal(t, 0, origin.Size())
	require.Equal(t, 1, target.Size(), "only the unreferenced target row survives")
	require.NoError(t, g.Verify())
}

func TestLinkListClearCascades(t *testing.T) {
	g := NewGroup()
	target := mustTable(t, g, "target")
	origin := mustTable(t, g, "origin")
	_, err := target.AddColumn(TypeInt, "v", false)
	require.NoError(t, err)
	_, err = origin.AddColumnLink(TypeLinkList, "ll", target, LinkStrong)
	require.NoError(t, err)
	_, err = target.AddEmptyRow(3)
	require.NoError(t, err)
	_, err = origin.AddEmptyRow(1)
	require.NoError(t, err)

	list, err := origin.LinkList(0, 0)
	require.NoError(t, err)
	require.NoError(t, list.Add(0))
	require.NoError(t, list.Add(1))
	require.NoError(t, list.Add(1))

	require.NoError(t, list.Clear())
	require.Equal(t, 1, target.Size(), "both referenced rows cascade, the third survives")
	require.NoError(t, g.Verify())
}

func TestEraseColumnDropsLinksWithoutCascade(t *testing.T) {
	g, origin, target := linkedPair(t, LinkStrong)
	_, err := target.AddEmptyRow(2)
	require.NoError(t, err)
	_, err = origin.AddEmptyRow(2)
	require.NoError(t, err)
	require.NoError(t, origin.SetLink(0, 0, 0))
	require.NoError(t, origin.SetLink(0, 1, 1))

	require.NoError(t, origin.EraseColumn(0))

	require.Equal(t, 2, target.Size(), "erasing a strong column must not cascade")
	require.NoError(t, g.Verify())
}

func TestEraseTableWithIncomingLinksFails(t *testing.T) {
	g, origin, target := linkedPair(t, LinkWeak)
	_, err := target.AddEmptyRow(1)
	require.NoError(t, err)
	_, err = origin.AddEmptyRow(1)
	require.NoError(t, err)
	require.NoError(t, origin.SetLink(0, 0, 0))

	err = g.EraseTable(target.Index())
	require.Error(t, err)
	assert.Equal(t, RetCInvariantViolation, CodeOf(err))

	// losing the incoming reference makes the table erasable
	require.NoError(t, origin.NullifyLink(0, 0))
	require.NoError(t, g.EraseTable(target.Index()))
	require.Equal(t, 1, g.Size())
	require.Equal(t, 0, origin.ColumnCount(), "dangling link columns go with the erased table")
	require.NoError(t, g.Verify())
}

func TestBacklinkCountsMatchForwardRefs(t *testing.T) {
	g := NewGroup()
	target := mustTable(t, g, "target")
	origin := mustTable(t, g, "origin")
	_, err := target.AddColumn(TypeInt, "v", false)
	require.NoError(t, err)
	_, err = origin.AddColumnLink(TypeLink, "l", target, LinkWeak)
	require.NoError(t, err)
	_, err = origin.AddColumnLink(TypeLinkList, "ll", target, LinkWeak)
	require.NoError(t, err)

	_, err = target.AddEmptyRow(2)
	require.NoError(t, err)
	_, err = origin.AddEmptyRow(2)
	require.NoError(t, err)

	require.NoError(t, origin.SetLink(0, 0, 1))
	require.NoError(t, origin.SetLink(0, 1, 1))
	list, err := origin.LinkList(1, 0)
	require.NoError(t, err)
	require.NoError(t, list.Add(0))
	require.NoError(t, list.Add(1))
	require.NoError(t, list.Add(1))

	n, err := target.BacklinkCount(1, origin, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	n, err = target.BacklinkCount(1, origin, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, n, "list contributions count with multiplicity")
	n, err = target.BacklinkCount(0, origin, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.NoError(t, g.Verify())
}
