package transact

import (
	"testing"

	"github.com/tabulardb/tabular/lib/core"
)

// benchStream builds a representative stream of n cell writes.
func benchStream(n int) []byte {
	r := NewRecorder()
	_ = r.AddTable("t")
	_ = r.InsertColumn(0, nil, 0, core.TypeInt, "v", false)
	_ = r.AddEmptyRow(0, n)
	for i := 0; i < n; i++ {
		_ = r.SetInt(0, 0, i, int64(i))
	}
	return r.Freeze(1).Data
}

func BenchmarkRecorderSetInt(b *testing.B) {
	r := NewRecorder()
	_ = r.AddTable("t")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = r.SetInt(0, 0, i, int64(i))
	}
}

func BenchmarkParse(b *testing.B) {
	data := benchStream(1000)
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p := NewParser(data)
		for {
			in, err := p.Next()
			if err != nil {
				b.Fatal(err)
			}
			if in == nil {
				break
			}
		}
	}
}
