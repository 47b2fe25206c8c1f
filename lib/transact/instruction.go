package transact

import (
	"fmt"

	"github.com/tabulardb/tabular/lib/core"
)

// Instruction is one decoded changeset entry. Op selects which fields
// are meaningful; the Parser resolves the session state, so
// table-scoped instructions carry the selected table in Table (and list
// instructions additionally carry Col and Row of the selected list).
type Instruction struct {
	Op Opcode

	Table int   // selected or addressed table index
	Path  []int // selected descriptor path (schema instructions)
	Col   int
	Row   int

	Idx    int // list position / insert position
	From   int
	To     int
	Count  int
	Pos    int // substring position
	Length int // substring removal length

	Name     string
	Type     core.DataType
	Nullable bool
	Strength core.LinkStrength
	// TargetTable is the link target for InsertLinkColumn, and the
	// second operand of MoveTable-style group instructions is in To.
	TargetTable int

	IntVal    int64
	BoolVal   bool
	FloatVal  float32
	DoubleVal float64
	StrVal    string
	BinVal    []byte
	TsVal     core.Timestamp
	MixedVal  core.Mixed
	Target    int64 // link target row, core.NullRow for null
}

// String renders a human-readable one-line description, used by error
// reports and the inspect command.
func (in *Instruction) String() string {
	switch in.Op {
	case OpSelectTable:
		return fmt.Sprintf("SelectTable(%d)", in.Table)
	case OpSelectDescriptor:
		return fmt.Sprintf("SelectDescriptor(%v)", in.Path)
	case OpSelectLinkList:
		return fmt.Sprintf("SelectLinkList(col=%d, row=%d)", in.Col, in.Row)
	case OpAddTable:
		return fmt.Sprintf("AddTable(%q)", in.Name)
	case OpEraseTable:
		return fmt.Sprintf("EraseTable(%d)", in.Table)
	case OpRenameTable:
		return fmt.Sprintf("RenameTable(%d, %q)", in.Table, in.Name)
	case OpMoveTable:
		return fmt.Sprintf("MoveTable(%d, %d)", in.From, in.To)
	case OpInsertColumn:
		return fmt.Sprintf("InsertColumn(tbl=%d, col=%d, %s, %q, nullable=%v)", in.Table, in.Col, in.Type, in.Name, in.Nullable)
	case OpInsertLinkColumn:
		return fmt.Sprintf("InsertLinkColumn(tbl=%d, col=%d, %s, %q, target=%d, %s)", in.Table, in.Col, in.Type, in.Name, in.TargetTable, in.Strength)
	case OpEraseColumn:
		return fmt.Sprintf("EraseColumn(tbl=%d, col=%d)", in.Table, in.Col)
	case OpRenameColumn:
		return fmt.Sprintf("RenameColumn(tbl=%d, col=%d, %q)", in.Table, in.Col, in.Name)
	case OpMoveColumn:
		return fmt.Sprintf("MoveColumn(tbl=%d, %d -> %d)", in.Table, in.From, in.To)
	case OpAddSearchIndex:
		return fmt.Sprintf("AddSearchIndex(tbl=%d, col=%d)", in.Table, in.Col)
	case OpRemoveSearchIndex:
		return fmt.Sprintf("RemoveSearchIndex(tbl=%d, col=%d)", in.Table, in.Col)
	case OpInsertEmptyRow:
		return fmt.Sprintf("InsertEmptyRow(tbl=%d, at=%d, count=%d)", in.Table, in.Idx, in.Count)
	case OpAddEmptyRow:
		return fmt.Sprintf("AddEmptyRow(tbl=%d, count=%d)", in.Table, in.Count)
	case OpMoveLastOver:
		return fmt.Sprintf("MoveLastOver(tbl=%d, row=%d)", in.Table, in.Row)
	case OpClearTable:
		return fmt.Sprintf("Clear(tbl=%d)", in.Table)
	case OpMergeRows:
		return fmt.Sprintf("MergeRows(tbl=%d, %d -> %d)", in.Table, in.From, in.To)
	case OpAddRowWithKey:
		return fmt.Sprintf("AddRowWithKey(tbl=%d, col=%d, key=%d)", in.Table, in.Col, in.IntVal)
	case OpSetInt:
		return fmt.Sprintf("SetInt(tbl=%d, col=%d, row=%d, %d)", in.Table, in.Col, in.Row, in.IntVal)
	case OpSetBool:
		return fmt.Sprintf("SetBool(tbl=%d, col=%d, row=%d, %v)", in.Table, in.Col, in.Row, in.BoolVal)
	case OpSetFloat:
		return fmt.Sprintf("SetFloat(tbl=%d, col=%d, row=%d, %g)", in.Table, in.Col, in.Row, in.FloatVal)
	case OpSetDouble:
		return fmt.Sprintf("SetDouble(tbl=%d, col=%d, row=%d, %g)", in.Table, in.Col, in.Row, in.DoubleVal)
	case OpSetString:
		return fmt.Sprintf("SetString(tbl=%d, col=%d, row=%d, %q)", in.Table, in.Col, in.Row, in.StrVal)
	case OpSetBinary:
		return fmt.Sprintf("SetBinary(tbl=%d, col=%d, row=%d, %d bytes)", in.Table, in.Col, in.Row, len(in.BinVal))
	case OpSetOldDateTime:
		return fmt.Sprintf("SetOldDateTime(tbl=%d, col=%d, row=%d, %d)", in.Table, in.Col, in.Row, in.IntVal)
	case OpSetTimestamp:
		return fmt.Sprintf("SetTimestamp(tbl=%d, col=%d, row=%d, %d.%09d)", in.Table, in.Col, in.Row, in.TsVal.Sec, in.TsVal.Nsec)
	case OpSetNull:
		return fmt.Sprintf("SetNull(tbl=%d, col=%d, row=%d)", in.Table, in.Col, in.Row)
	case OpSetMixed:
		return fmt.Sprintf("SetMixed(tbl=%d, col=%d, row=%d, %s)", in.Table, in.Col, in.Row, in.MixedVal.Type)
	case OpSetIntUnique:
		return fmt.Sprintf("SetIntUnique(tbl=%d, col=%d, row=%d, %d)", in.Table, in.Col, in.Row, in.IntVal)
	case OpSetStringUnique:
		return fmt.Sprintf("SetStringUnique(tbl=%d, col=%d, row=%d, %q)", in.Table, in.Col, in.Row, in.StrVal)
	case OpSetNullUnique:
		return fmt.Sprintf("SetNullUnique(tbl=%d, col=%d, row=%d)", in.Table, in.Col, in.Row)
	case OpInsertSubstring:
		return fmt.Sprintf("InsertSubstring(tbl=%d, col=%d, row=%d, pos=%d, %q)", in.Table, in.Col, in.Row, in.Pos, in.StrVal)
	case OpRemoveSubstring:
		return fmt.Sprintf("RemoveSubstring(tbl=%d, col=%d, row=%d, pos=%d, len=%d)", in.Table, in.Col, in.Row, in.Pos, in.Length)
	case OpSetLink:
		return fmt.Sprintf("SetLink(tbl=%d, col=%d, row=%d, target=%d)", in.Table, in.Col, in.Row, in.Target)
	case OpNullifyLink:
		return fmt.Sprintf("NullifyLink(tbl=%d, col=%d, row=%d)", in.Table, in.Col, in.Row)
	case OpLinkListSet:
		return fmt.Sprintf("LinkListSet(tbl=%d, col=%d, row=%d, idx=%d, target=%d)", in.Table, in.Col, in.Row, in.Idx, in.Target)
	case OpLinkListInsert:
		return fmt.Sprintf("LinkListInsert(tbl=%d, col=%d, row=%d, idx=%d, target=%d)", in.Table, in.Col, in.Row, in.Idx, in.Target)
	case OpLinkListAdd:
		return fmt.Sprintf("LinkListAdd(tbl=%d, col=%d, row=%d, target=%d)", in.Table, in.Col, in.Row, in.Target)
	case OpLinkListMove:
		return fmt.Sprintf("LinkListMove(tbl=%d, col=%d, row=%d, %d -> %d)", in.Table, in.Col, in.Row, in.From, in.To)
	case OpLinkListSwap:
		return fmt.Sprintf("LinkListSwap(tbl=%d, col=%d, row=%d, %d <-> %d)", in.Table, in.Col, in.Row, in.From, in.To)
	case OpLinkListErase:
		return fmt.Sprintf("LinkListErase(tbl=%d, col=%d, row=%d, idx=%d)", in.Table, in.Col, in.Row, in.Idx)
	case OpLinkListClear:
		return fmt.Sprintf("LinkListClear(tbl=%d, col=%d, row=%d)", in.Table, in.Col, in.Row)
	case OpLinkListNullify:
		return fmt.Sprintf("LinkListNullify(tbl=%d, col=%d, row=%d, idx=%d)", in.Table, in.Col, in.Row, in.Idx)
	default:
		return in.Op.String()
	}
}
