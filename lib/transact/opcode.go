package transact

import "fmt"

// Opcode is the one-byte discriminator that starts every instruction.
// The values are part of the persisted changeset format and must never
// be reassigned.
type Opcode byte

const (
	// session
	OpSelectTable      Opcode = 0x01
	OpSelectDescriptor Opcode = 0x02
	OpSelectLinkList   Opcode = 0x03

	// group
	OpAddTable    Opcode = 0x07
	OpEraseTable  Opcode = 0x08
	OpRenameTable Opcode = 0x09
	OpMoveTable   Opcode = 0x0A

	// schema
	OpInsertColumn      Opcode = 0x10
	OpInsertLinkColumn  Opcode = 0x11
	OpEraseColumn       Opcode = 0x12
	OpRenameColumn      Opcode = 0x13
	OpMoveColumn        Opcode = 0x14
	OpAddSearchIndex    Opcode = 0x15
	OpRemoveSearchIndex Opcode = 0x16

	// rows
	OpInsertEmptyRow Opcode = 0x20
	OpAddEmptyRow    Opcode = 0x21
	OpMoveLastOver   Opcode = 0x22
	OpClearTable     Opcode = 0x23
	OpMergeRows      Opcode = 0x24
	OpAddRowWithKey  Opcode = 0x25

	// cells
	OpSetInt          Opcode = 0x30
	OpSetBool         Opcode = 0x31
	OpSetFloat        Opcode = 0x32
	OpSetDouble       Opcode = 0x33
	OpSetString       Opcode = 0x34
	OpSetBinary       Opcode = 0x35
	OpSetOldDateTime  Opcode = 0x36
	OpSetTimestamp    Opcode = 0x37
	OpSetNull         Opcode = 0x38
	OpSetMixed        Opcode = 0x39
	OpSetIntUnique    Opcode = 0x3A
	OpSetStringUnique Opcode = 0x3B
	OpSetNullUnique   Opcode = 0x3C

	// string edits
	OpInsertSubstring Opcode = 0x40
	OpRemoveSubstring Opcode = 0x41

	// links
	OpSetLink     Opcode = 0x48
	OpNullifyLink Opcode = 0x49

	// link lists
	OpLinkListSet     Opcode = 0x50
	OpLinkListInsert  Opcode = 0x51
	OpLinkListAdd     Opcode = 0x52
	OpLinkListMove    Opcode = 0x53
	OpLinkListSwap    Opcode = 0x54
	OpLinkListErase   Opcode = 0x55
	OpLinkListClear   Opcode = 0x56
	OpLinkListNullify Opcode = 0x57
)

func (op Opcode) String() string {
	switch op {
	case OpSelectTable:
		return "SelectTable"
	case OpSelectDescriptor:
		return "SelectDescriptor"
	case OpSelectLinkList:
		return "SelectLinkList"
	case OpAddTable:
		return "AddTable"
	case OpEraseTable:
		return "EraseTable"
	case OpRenameTable:
		return "RenameTable"
	case OpMoveTable:
		return "MoveTable"
	case OpInsertColumn:
		return "InsertColumn"
	case OpInsertLinkColumn:
		return "InsertLinkColumn"
	case OpEraseColumn:
		return "EraseColumn"
	case OpRenameColumn:
		return "RenameColumn"
	case OpMoveColumn:
		return "MoveColumn"
	case OpAddSearchIndex:
		return "AddSearchIndex"
	case OpRemoveSearchIndex:
		return "RemoveSearchIndex"
	case OpInsertEmptyRow:
		return "InsertEmptyRow"
	case OpAddEmptyRow:
		return "AddEmptyRow"
	case OpMoveLastOver:
		return "MoveLastOver"
	case OpClearTable:
		return "Clear"
	case OpMergeRows:
		return "MergeRows"
	case OpAddRowWithKey:
		return "AddRowWithKey"
	case OpSetInt:
		return "SetInt"
	case OpSetBool:
		return "SetBool"
	case OpSetFloat:
		return "SetFloat"
	case OpSetDouble:
		return "SetDouble"
	case OpSetString:
		return "SetString"
	case OpSetBinary:
		return "SetBinary"
	case OpSetOldDateTime:
		return "SetOldDateTime"
	case OpSetTimestamp:
		return "SetTimestamp"
	case OpSetNull:
		return "SetNull"
	case OpSetMixed:
		return "SetMixed"
	case OpSetIntUnique:
		return "SetIntUnique"
	case OpSetStringUnique:
		return "SetStringUnique"
	case OpSetNullUnique:
		return "SetNullUnique"
	case OpInsertSubstring:
		return "InsertSubstring"
	case OpRemoveSubstring:
		return "RemoveSubstring"
	case OpSetLink:
		return "SetLink"
	case OpNullifyLink:
		return "NullifyLink"
	case OpLinkListSet:
		return "LinkListSet"
	case OpLinkListInsert:
		return "LinkListInsert"
	case OpLinkListAdd:
		return "LinkListAdd"
	case OpLinkListMove:
		return "LinkListMove"
	case OpLinkListSwap:
		return "LinkListSwap"
	case OpLinkListErase:
		return "LinkListErase"
	case OpLinkListClear:
		return "LinkListClear"
	case OpLinkListNullify:
		return "LinkListNullify"
	default:
		return fmt.Sprintf("Unknown(0x%02X)", byte(op))
	}
}
