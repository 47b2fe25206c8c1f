package txn

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/tabulardb/tabular/lib/core"
	"github.com/tabulardb/tabular/lib/logger"
	"github.com/tabulardb/tabular/lib/transact"
)

var log = logger.GetLogger("txn")

// ChangesetHandler receives the frozen changeset of every committed
// write transaction, before the commit is acknowledged to the caller. A
// handler that returns an error fails the commit; the transaction's
// mutations stay in memory but the host must treat the store as
// poisoned and discard it (the handler is the durability step, so a
// half-acknowledged commit must not survive).
type ChangesetHandler func(cs *transact.Changeset) error

// Shared owns a Group and serializes write transactions against it.
// Each committed transaction freezes its recorded instruction stream
// into a Changeset carrying the next version number and hands it to the
// installed handler.
type Shared struct {
	mu      sync.Mutex
	group   *core.Group
	version atomic.Uint64
	handler ChangesetHandler
	ident   uuid.UUID
}

// NewShared creates a store around an empty group.
func NewShared() *Shared {
	return &Shared{
		group: core.NewGroup(),
		ident: uuid.New(),
	}
}

// Ident returns the stream identity stamped on this store at creation.
// Hosts persist it alongside the changeset log to tell streams apart.
func (s *Shared) Ident() uuid.UUID { return s.ident }

// Version returns the version of the last committed transaction.
func (s *Shared) Version() uint64 { return s.version.Load() }

// SetHandler installs the commit handler, nil to drop changesets.
func (s *Shared) SetHandler(h ChangesetHandler) { s.handler = h }

// SetObserver installs the accessor-rebase observer on the group.
func (s *Shared) SetObserver(o core.Observer) { s.group.SetObserver(o) }

// ReadGroup grants read access to the group outside a write
// transaction. The caller must not mutate through it.
func (s *Shared) ReadGroup() *core.Group { return s.group }

// --------------------------------------------------------------------------
// Write Transactions
// --------------------------------------------------------------------------

// WriteTransaction is one exclusive mutation scope. Exactly one of
// Commit or Abort must be called; both release the store.
type WriteTransaction struct {
	shared   *Shared
	recorder *transact.Recorder
	done     bool
}

// BeginWrite blocks until the store is free and opens a write
// transaction with a fresh recorder bound to it.
func (s *Shared) BeginWrite() *WriteTransaction {
	s.mu.Lock()
	rec := transact.NewRecorder()
	s.group.SetRecorder(rec)
	return &WriteTransaction{shared: s, recorder: rec}
}

// Group returns the mutable group. Valid until Commit or Abort.
func (wt *WriteTransaction) Group() *core.Group {
	return wt.shared.group
}

// Recorder exposes the transaction's recorder, e.g. to bound the
// changeset size.
func (wt *WriteTransaction) Recorder() *transact.Recorder {
	return wt.recorder
}

// Commit freezes the recorded instruction stream into a changeset with
// the next version and hands it to the handler. An error from the
// handler is returned and the commit is not acknowledged.
func (wt *WriteTransaction) Commit() (*transact.Changeset, error) {
	if wt.done {
		return nil, core.NewError(core.RetCInternalError, "transaction already finished")
	}
	s := wt.shared
	version := s.version.Load() + 1
	cs := wt.recorder.Freeze(version)
	if s.handler != nil {
		if err := s.handler(cs); err != nil {
			wt.finish()
			return nil, err
		}
	}
	s.version.Store(version)
	log.Debugf("committed version %d (%d bytes)", version, cs.Size())
	wt.finish()
	return cs, nil
}

// Abort discards the transaction's recorded stream. The in-memory
// mutations of the transaction are the caller's to discard with the
// store; no partial changeset is ever observable.
func (wt *WriteTransaction) Abort() {
	if wt.done {
		return
	}
	wt.recorder.Reset()
	wt.finish()
}

func (wt *WriteTransaction) finish() {
	wt.done = true
	wt.shared.group.SetRecorder(nil)
	wt.shared.mu.Unlock()
}
