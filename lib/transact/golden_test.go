package transact

import (
	"bytes"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/tabulardb/tabular/lib/core"
)

// encodeBasicScenario produces the reference stream: create a table
// with one Int column, add two rows, set both, remove the first one.
func encodeBasicScenario(t *testing.T) []byte {
	t.Helper()
	r := NewRecorder()
	steps := []func() error{
		func() error { return r.AddTable("t") },
		func() error { return r.InsertColumn(0, nil, 0, core.TypeInt, "v", false) },
		func() error { return r.AddEmptyRow(0, 2) },
		func() error { return r.SetInt(0, 0, 0, 10) },
		func() error { return r.SetInt(0, 0, 1, -3) },
		func() error { return r.MoveLastOver(0, 0) },
	}
	for i, step := range steps {
		if err := step(); err != nil {
			t.Fatalf("Step %d failed: %v", i, err)
		}
	}
	return r.Freeze(1).Data
}

// TestEncodingIsStable pins the exact byte sequence of the reference
// scenario: the changeset format is persisted state, any drift here is
// a breaking change.
func TestEncodingIsStable(t *testing.T) {
	want := []byte{
		0x07, 0x01, 't', // AddTable "t"
		0x01, 0x00, // SelectTable 0
		0x10, 0x00, 0x00, 0x01, 'v', 0x00, // InsertColumn 0 Int "v" not-null
		0x21, 0x02, // AddEmptyRow 2
		0x30, 0x00, 0x00, 0x14, // SetInt (0,0) = 10
		0x30, 0x00, 0x01, 0x05, // SetInt (0,1) = -3
		0x22, 0x00, // MoveLastOver 0
	}
	got := encodeBasicScenario(t)
	if !bytes.Equal(got, want) {
		t.Errorf("Encoding drifted:\n got %x\nwant %x", got, want)
	}
}

// TestEncodingGolden compares the reference scenario against the golden
// fixture. Regenerate with: go test ./lib/transact -update
func TestEncodingGolden(t *testing.T) {
	g := goldie.New(t, goldie.WithNameSuffix(".golden"))
	g.Assert(t, "basic_scenario", encodeBasicScenario(t))
}

// TestDeterministicEncoding verifies two identical mutation sequences
// produce byte-identical output.
func TestDeterministicEncoding(t *testing.T) {
	a := encodeBasicScenario(t)
	b := encodeBasicScenario(t)
	if !bytes.Equal(a, b) {
		t.Error("Identical mutation sequences encoded differently")
	}
}
