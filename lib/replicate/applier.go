package replicate

import (
	"fmt"

	"github.com/VictoriaMetrics/metrics"

	"github.com/tabulardb/tabular/lib/core"
	"github.com/tabulardb/tabular/lib/logger"
	"github.com/tabulardb/tabular/lib/transact"
)

var (
	log = logger.GetLogger("replicate")

	changesetsApplied   = metrics.NewCounter(`tabular_changesets_applied_total`)
	instructionsApplied = metrics.NewCounter(`tabular_instructions_applied_total`)
	applyErrors         = metrics.NewCounter(`tabular_apply_errors_total`)
)

// ApplyError wraps the failure of one instruction with its byte offset
// and a human-readable description.
type ApplyError struct {
	Offset int
	Instr  string
	Err    error
}

func (e *ApplyError) Error() string {
	return fmt.Sprintf("apply failed at byte %d (%s): %v", e.Offset, e.Instr, e.Err)
}

func (e *ApplyError) Unwrap() error { return e.Err }

// Applier consumes changesets and drives the mutation API of a target
// store so it reaches a state observably equal to the source. Implicit
// work the changeset does not encode — cascade deletions in particular
// — is re-derived by the target store under the same schema.
//
// The Applier holds the target's write context exclusively for the
// duration of an Apply call; instructions are applied in stream order
// and any error aborts without hiding partial application from the
// caller (the transaction layer rolls the target back).
type Applier struct {
	cfg Config
}

// NewApplier creates an applier with the given configuration. The zero
// Config is the default.
func NewApplier(cfg Config) *Applier {
	return &Applier{cfg: cfg}
}

// Apply replays one changeset into the target group.
func (a *Applier) Apply(g *core.Group, cs *transact.Changeset) error {
	if a.cfg.Cascade == CascadeDisabled {
		if g.HasStrongColumns() {
			return core.NewError(core.RetCInvariantViolation,
				"cascade cannot be disabled while the schema has strong link columns")
		}
		g.SetCascadeEnabled(false)
		defer g.SetCascadeEnabled(true)
	}
	if a.cfg.Mode == ModeNonatomicRebuild {
		saved := g.Observer()
		g.SetObserver(nil)
		defer g.SetObserver(saved)
	}

	p := transact.NewParser(cs.Data)
	n := 0
	var list *core.LinkList
	var listTbl, listCol, listRow int
	for {
		offset := p.Offset()
		in, err := p.Next()
		if err != nil {
			applyErrors.Inc()
			return err
		}
		if in == nil {
			break
		}
		// list instructions resolve through a cached handle bound to the
		// selected cell; any other instruction may move rows or columns
		// underneath it, so the cache is dropped aggressively
		switch in.Op {
		case transact.OpLinkListSet, transact.OpLinkListInsert, transact.OpLinkListAdd,
			transact.OpLinkListMove, transact.OpLinkListSwap, transact.OpLinkListErase,
			transact.OpLinkListClear, transact.OpLinkListNullify, transact.OpSelectLinkList:
			if list == nil || !list.IsAttached() || listTbl != in.Table || listCol != in.Col || listRow != in.Row {
				t, err := g.Table(in.Table)
				if err == nil {
					list, err = t.LinkList(in.Col, in.Row)
				}
				if err != nil {
					applyErrors.Inc()
					return &ApplyError{Offset: offset, Instr: in.String(), Err: err}
				}
				listTbl, listCol, listRow = in.Table, in.Col, in.Row
			}
		default:
			list = nil
		}

		if err := a.applyOne(g, in, list); err != nil {
			applyErrors.Inc()
			return &ApplyError{Offset: offset, Instr: in.String(), Err: err}
		}
		instructionsApplied.Inc()
		n++
	}
	changesetsApplied.Inc()
	log.Debugf("applied changeset version %d: %d instructions, %d bytes", cs.Version, n, len(cs.Data))
	return nil
}

// ApplyAll replays a sequence of changesets in order, requiring their
// versions to increase monotonically.
func (a *Applier) ApplyAll(g *core.Group, css []*transact.Changeset) error {
	var last uint64
	for i, cs := range css {
		if i > 0 && cs.Version <= last {
			return core.NewError(core.RetCInvariantViolation,
				fmt.Sprintf("changeset versions must increase: %d after %d", cs.Version, last))
		}
		last = cs.Version
		if err := a.Apply(g, cs); err != nil {
			return err
		}
	}
	return nil
}

// applyOne dispatches one decoded instruction to the store API.
func (a *Applier) applyOne(g *core.Group, in *transact.Instruction, list *core.LinkList) error {
	// instructions on the selected table
	tableOf := func() (*core.Table, error) { return g.Table(in.Table) }

	switch in.Op {

	// session: the parser already validated and tracked the selection;
	// resolving it against the store happens on use
	case transact.OpSelectTable:
		_, err := g.Table(in.Table)
		return err
	case transact.OpSelectDescriptor:
		t, err := tableOf()
		if err != nil {
			return err
		}
		if len(in.Path) == 0 {
			return nil
		}
		_, err = t.SubDescriptor(in.Path)
		return err
	case transact.OpSelectLinkList:
		// the caller resolved the handle already
		return nil

	// group
	case transact.OpAddTable:
		_, err := g.AddTable(in.Name)
		return err
	case transact.OpEraseTable:
		return g.EraseTable(in.Table)
	case transact.OpRenameTable:
		return g.RenameTable(in.Table, in.Name)
	case transact.OpMoveTable:
		return g.MoveTable(in.From, in.To)

	// schema
	case transact.OpInsertColumn:
		t, err := tableOf()
		if err != nil {
			return err
		}
		if len(in.Path) > 0 {
			return t.InsertDescriptorColumn(in.Path, in.Col, in.Type, in.Name, in.Nullable)
		}
		return t.InsertColumn(in.Col, in.Type, in.Name, in.Nullable)
	case transact.OpInsertLinkColumn:
		t, err := tableOf()
		if err != nil {
			return err
		}
		target, err := g.Table(in.TargetTable)
		if err != nil {
			return err
		}
		return t.InsertColumnLink(in.Col, in.Type, in.Name, target, in.Strength)
	case transact.OpEraseColumn:
		t, err := tableOf()
		if err != nil {
			return err
		}
		if len(in.Path) > 0 {
			return t.EraseDescriptorColumn(in.Path, in.Col)
		}
		return t.EraseColumn(in.Col)
	case transact.OpRenameColumn:
		t, err := tableOf()
		if err != nil {
			return err
		}
		if len(in.Path) > 0 {
			return t.RenameDescriptorColumn(in.Path, in.Col, in.Name)
		}
		return t.RenameColumn(in.Col, in.Name)
	case transact.OpMoveColumn:
		t, err := tableOf()
		if err != nil {
			return err
		}
		if len(in.Path) > 0 {
			return t.MoveDescriptorColumn(in.Path, in.From, in.To)
		}
		return t.MoveColumn(in.From, in.To)
	case transact.OpAddSearchIndex:
		t, err := tableOf()
		if err != nil {
			return err
		}
		return t.AddSearchIndex(in.Col)
	case transact.OpRemoveSearchIndex:
		t, err := tableOf()
		if err != nil {
			return err
		}
		return t.RemoveSearchIndex(in.Col)

	// rows
	case transact.OpInsertEmptyRow:
		t, err := tableOf()
		if err != nil {
			return err
		}
		return t.InsertEmptyRow(in.Idx, in.Count)
	case transact.OpAddEmptyRow:
		t, err := tableOf()
		if err != nil {
			return err
		}
		_, err = t.AddEmptyRow(in.Count)
		return err
	case transact.OpMoveLastOver:
		t, err := tableOf()
		if err != nil {
			return err
		}
		return t.MoveLastOver(in.Row)
	case transact.OpClearTable:
		t, err := tableOf()
		if err != nil {
			return err
		}
		return t.Clear()
	case transact.OpMergeRows:
		t, err := tableOf()
		if err != nil {
			return err
		}
		return t.MergeRows(in.From, in.To)
	case transact.OpAddRowWithKey:
		t, err := tableOf()
		if err != nil {
			return err
		}
		return t.AddRowWithKey(in.Col, in.IntVal)

	// cells
	case transact.OpSetInt:
		t, err := tableOf()
		if err != nil {
			return err
		}
		return t.SetInt(in.Col, in.Row, in.IntVal)
	case transact.OpSetBool:
		t, err := tableOf()
		if err != nil {
			return err
		}
		return t.SetBool(in.Col, in.Row, in.BoolVal)
	case transact.OpSetFloat:
		t, err := tableOf()
		if err != nil {
			return err
		}
		return t.SetFloat(in.Col, in.Row, in.FloatVal)
	case transact.OpSetDouble:
		t, err := tableOf()
		if err != nil {
			return err
		}
		return t.SetDouble(in.Col, in.Row, in.DoubleVal)
	case transact.OpSetString:
		t, err := tableOf()
		if err != nil {
			return err
		}
		return t.SetString(in.Col, in.Row, in.StrVal)
	case transact.OpSetBinary:
		t, err := tableOf()
		if err != nil {
			return err
		}
		return t.SetBinary(in.Col, in.Row, in.BinVal)
	case transact.OpSetOldDateTime:
		t, err := tableOf()
		if err != nil {
			return err
		}
		return t.SetOldDateTime(in.Col, in.Row, in.IntVal)
	case transact.OpSetTimestamp:
		t, err := tableOf()
		if err != nil {
			return err
		}
		return t.SetTimestamp(in.Col, in.Row, in.TsVal)
	case transact.OpSetNull:
		t, err := tableOf()
		if err != nil {
			return err
		}
		return t.SetNull(in.Col, in.Row)
	case transact.OpSetMixed:
		t, err := tableOf()
		if err != nil {
			return err
		}
		return t.SetMixed(in.Col, in.Row, in.MixedVal)
	case transact.OpSetIntUnique:
		t, err := tableOf()
		if err != nil {
			return err
		}
		return t.SetIntUnique(in.Col, in.Row, in.IntVal)
	case transact.OpSetStringUnique:
		t, err := tableOf()
		if err != nil {
			return err
		}
		return t.SetStringUnique(in.Col, in.Row, in.StrVal)
	case transact.OpSetNullUnique:
		t, err := tableOf()
		if err != nil {
			return err
		}
		return t.SetNullUnique(in.Col, in.Row)

	// string edits
	case transact.OpInsertSubstring:
		t, err := tableOf()
		if err != nil {
			return err
		}
		return t.InsertSubstring(in.Col, in.Row, in.Pos, in.StrVal)
	case transact.OpRemoveSubstring:
		t, err := tableOf()
		if err != nil {
			return err
		}
		return t.RemoveSubstring(in.Col, in.Row, in.Pos, in.Length)

	// links
	case transact.OpSetLink:
		t, err := tableOf()
		if err != nil {
			return err
		}
		return t.SetLink(in.Col, in.Row, in.Target)
	case transact.OpNullifyLink:
		t, err := tableOf()
		if err != nil {
			return err
		}
		return t.NullifyLink(in.Col, in.Row)

	// link lists
	case transact.OpLinkListSet:
		return list.Set(in.Idx, in.Target)
	case transact.OpLinkListInsert:
		return list.Insert(in.Idx, in.Target)
	case transact.OpLinkListAdd:
		return list.Add(in.Target)
	case transact.OpLinkListMove:
		return list.Move(in.From, in.To)
	case transact.OpLinkListSwap:
		return list.Swap(in.From, in.To)
	case transact.OpLinkListErase:
		return list.Erase(in.Idx)
	case transact.OpLinkListClear:
		return list.Clear()
	case transact.OpLinkListNullify:
		return list.Nullify(in.Idx)

	default:
		if a.cfg.UnknownOpcode == SkipUnknown {
			log.Warningf("skipping unmapped instruction %s", in.Op)
			return nil
		}
		return core.NewError(core.RetCParseError, fmt.Sprintf("no mapping for instruction %s", in.Op))
	}
}
