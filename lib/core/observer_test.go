package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingObserver collects every notification for assertions.
type recordingObserver struct {
	events []string
}

func (o *recordingObserver) TableErased(tbl int) { o.events = append(o.events, "tableErased") }
func (o *recordingObserver) TableMoved(from, to int) {
	o.events = append(o.events, "tableMoved")
}
func (o *recordingObserver) ColumnErased(tbl, col int) {
	o.events = append(o.events, "columnErased")
}
func (o *recordingObserver) ColumnMoved(tbl, from, to int) {
	o.events = append(o.events, "columnMoved")
}
func (o *recordingObserver) RowsInserted(tbl, at, count int) {
	o.events = append(o.events, "rowsInserted")
}
func (o *recordingObserver) RowMovedOver(tbl, removed, movedFrom int) {
	o.events = append(o.events, "rowMovedOver")
}
func (o *recordingObserver) TableCleared(tbl int) {
	o.events = append(o.events, "tableCleared")
}

func TestObserverSeesImplicitCascadeMotion(t *testing.T) {
	g, origin, target := linkedPair(t, LinkStrong)
	obs := &recordingObserver{}
	g.SetObserver(obs)

	_, err := target.AddEmptyRow(2)
	require.NoError(t, err)
	_, err = origin.AddEmptyRow(1)
	require.NoError(t, err)
	require.NoError(t, origin.SetLink(0, 0, 1))

	obs.events = nil
	// nullify drops target row 1 through cascade; the observer must see
	// the implicit row motion
	require.NoError(t, origin.NullifyLink(0, 0))
	assert.Contains(t, obs.events, "rowMovedOver")
}

func TestLinkListHandleRebaseAndDetach(t *testing.T) {
	g := NewGroup()
	target := mustTable(t, g, "target")
	origin := mustTable(t, g, "origin")
	_, err := target.AddColumn(TypeInt, "v", false)
	require.NoError(t, err)
	_, err = origin.AddColumnLink(TypeLinkList, "ll", target, LinkWeak)
	require.NoError(t, err)

	_, err = target.AddEmptyRow(1)
	require.NoError(t, err)
	_, err = origin.AddEmptyRow(3)
	require.NoError(t, err)

	h0, err := origin.LinkList(0, 0)
	require.NoError(t, err)
	h2, err := origin.LinkList(0, 2)
	require.NoError(t, err)
	require.NoError(t, h2.Add(0))

	// removing row 0 moves row 2 into its place: h0 detaches, h2 rebases
	require.NoError(t, origin.MoveLastOver(0))
	assert.False(t, h0.IsAttached())
	require.True(t, h2.IsAttached())
	assert.Equal(t, 0, h2.Row())
	n, err := h2.Size()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// clearing the table detaches every surviving handle
	require.NoError(t, origin.Clear())
	assert.False(t, h2.IsAttached())
	_, err = h2.Size()
	require.Error(t, err)
}

func TestGroupEqualAndVerifyOnDivergence(t *testing.T) {
	build := func(v int64) *Group {
		g := NewGroup()
		tbl := mustTable(t, g, "t")
		_, err := tbl.AddColumn(TypeInt, "x", false)
		require.NoError(t, err)
		_, err = tbl.AddEmptyRow(1)
		require.NoError(t, err)
		require.NoError(t, tbl.SetInt(0, 0, v))
		return g
	}

	a, b := build(1), build(1)
	assert.True(t, a.Equal(b))
	c := build(2)
	assert.False(t, a.Equal(c))
}
