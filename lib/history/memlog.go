package history

import (
	"fmt"
	"sort"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/tabulardb/tabular/lib/core"
	"github.com/tabulardb/tabular/lib/transact"
)

// memLog keeps the changeset log in memory. Reads are lock-free; the
// monotonicity check on append serializes on the head counter.
type memLog struct {
	entries *xsync.MapOf[uint64, *transact.Changeset]
	head    atomic.Uint64
}

// NewMemLog creates an empty in-memory changeset log.
func NewMemLog() Log {
	return &memLog{
		entries: xsync.NewMapOf[uint64, *transact.Changeset](),
	}
}

func (l *memLog) Append(cs *transact.Changeset) error {
	for {
		head := l.head.Load()
		if cs.Version <= head {
			return core.NewError(core.RetCInvariantViolation,
				fmt.Sprintf("changeset version %d is not above the log head %d", cs.Version, head))
		}
		if l.head.CompareAndSwap(head, cs.Version) {
			l.entries.Store(cs.Version, cs)
			return nil
		}
	}
}

func (l *memLog) Get(version uint64) (*transact.Changeset, bool, error) {
	cs, ok := l.entries.Load(version)
	return cs, ok, nil
}

func (l *memLog) Versions() ([]uint64, error) {
	var versions []uint64
	l.entries.Range(func(v uint64, _ *transact.Changeset) bool {
		versions = append(versions, v)
		return true
	})
	sort.Slice(versions, func(i, j int) bool { return versions[i] < versions[j] })
	return versions, nil
}

func (l *memLog) Close() error { return nil }
