package history

import (
	"github.com/tabulardb/tabular/lib/core"
	"github.com/tabulardb/tabular/lib/replicate"
	"github.com/tabulardb/tabular/lib/transact"
	"github.com/tabulardb/tabular/lib/txn"
)

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// Log is a host-side store for committed changesets, ordered by
// version. Implementations must reject non-monotonic appends so a
// replay always sees the commit order.
type Log interface {
	// Append stores a changeset. Its version must be greater than every
	// version already stored.
	Append(cs *transact.Changeset) error
	// Get returns the changeset of a version; the boolean reports
	// whether it exists.
	Get(version uint64) (*transact.Changeset, bool, error)
	// Versions returns all stored versions in ascending order.
	Versions() ([]uint64, error)
	// Close releases the log's resources.
	Close() error
}

// Handler adapts a Log into the commit handler of a txn.Shared: every
// committed changeset is appended before the commit is acknowledged,
// which is the reserve-then-commit step of the durability contract.
func Handler(l Log) txn.ChangesetHandler {
	return func(cs *transact.Changeset) error {
		return l.Append(cs)
	}
}

// Replay applies every changeset of the log, in version order, to the
// target group.
func Replay(l Log, g *core.Group, cfg replicate.Config) error {
	versions, err := l.Versions()
	if err != nil {
		return err
	}
	applier := replicate.NewApplier(cfg)
	for _, v := range versions {
		cs, ok, err := l.Get(v)
		if err != nil {
			return err
		}
		if !ok {
			return core.NewError(core.RetCInternalError, "log advertised a version it cannot load")
		}
		if err := applier.Apply(g, cs); err != nil {
			return err
		}
	}
	return nil
}

// ReplayInto is a convenience that replays the log into a fresh store
// and returns it.
func ReplayInto(l Log, cfg replicate.Config) (*txn.Shared, error) {
	target := txn.NewShared()
	wt := target.BeginWrite()
	// replayed instructions must not be re-recorded into the target's own log
	wt.Group().SetRecorder(nil)
	if err := Replay(l, wt.Group(), cfg); err != nil {
		wt.Abort()
		return nil, err
	}
	if _, err := wt.Commit(); err != nil {
		return nil, err
	}
	return target, nil
}
