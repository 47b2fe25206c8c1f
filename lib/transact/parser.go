package transact

import (
	"fmt"
	"math"

	"github.com/tabulardb/tabular/lib/core"
)

// ParseError is the fatal error reported for a malformed instruction
// stream. Offset is the byte position where the failing instruction or,
// for a malformed operand, that operand starts.
type ParseError struct {
	Offset int
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at byte %d: %s", e.Offset, e.Msg)
}

// Parser decodes a changeset into typed instructions. It is a pure
// iterator: it never touches a store. Within one changeset it tracks
// the session state established by the Select instructions, so every
// yielded instruction carries its resolved table (and, for list
// instructions, column and row) context.
type Parser struct {
	data []byte
	pos  int
	st   selState
}

// NewParser creates a parser over one changeset.
func NewParser(data []byte) *Parser {
	return &Parser{data: data, st: initialSelState()}
}

// Offset returns the current byte position.
func (p *Parser) Offset() int { return p.pos }

func (p *Parser) errf(offset int, format string, args ...interface{}) *ParseError {
	return &ParseError{Offset: offset, Msg: fmt.Sprintf(format, args...)}
}

// --------------------------------------------------------------------------
// Primitive Readers
// --------------------------------------------------------------------------

func (p *Parser) readByte() (byte, error) {
	if p.pos >= len(p.data) {
		return 0, p.errf(p.pos, "unexpected end of stream")
	}
	b := p.data[p.pos]
	p.pos++
	return b, nil
}

func (p *Parser) readUvarint() (uint64, error) {
	var v uint64
	var shift uint
	start := p.pos
	for {
		if p.pos >= len(p.data) {
			return 0, p.errf(start, "truncated integer")
		}
		b := p.data[p.pos]
		p.pos++
		if shift == 63 && b > 1 {
			return 0, p.errf(start, "integer overflows 64 bits")
		}
		v |= uint64(b&0x7F) << shift
		if b < 0x80 {
			return v, nil
		}
		shift += 7
		if shift > 63 {
			return 0, p.errf(start, "integer overflows 64 bits")
		}
	}
}

func (p *Parser) readSvarint() (int64, error) {
	u, err := p.readUvarint()
	if err != nil {
		return 0, err
	}
	return int64(u>>1) ^ -int64(u&1), nil
}

// readInt reads an unsigned operand that must fit a table/column/row
// index.
func (p *Parser) readInt() (int, error) {
	start := p.pos
	u, err := p.readUvarint()
	if err != nil {
		return 0, err
	}
	if u > uint64(math.MaxInt32) {
		return 0, p.errf(start, "index %d out of range", u)
	}
	return int(u), nil
}

func (p *Parser) readBool() (bool, error) {
	b, err := p.readByte()
	if err != nil {
		return false, err
	}
	switch b {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, p.errf(p.pos-1, "invalid boolean byte 0x%02X", b)
	}
}

func (p *Parser) readString() (string, error) {
	start := p.pos
	n, err := p.readUvarint()
	if err != nil {
		return "", err
	}
	if n > uint64(len(p.data)-p.pos) {
		return "", p.errf(start, "string of %d bytes exceeds remaining stream", n)
	}
	s := string(p.data[p.pos : p.pos+int(n)])
	p.pos += int(n)
	return s, nil
}

func (p *Parser) readBytes() ([]byte, error) {
	start := p.pos
	n, err := p.readUvarint()
	if err != nil {
		return nil, err
	}
	if n > uint64(len(p.data)-p.pos) {
		return nil, p.errf(start, "payload of %d bytes exceeds remaining stream", n)
	}
	b := make([]byte, n)
	copy(b, p.data[p.pos:p.pos+int(n)])
	p.pos += int(n)
	return b, nil
}

func (p *Parser) readFloat() (float32, error) {
	start := p.pos
	u, err := p.readUvarint()
	if err != nil {
		return 0, err
	}
	if u > uint64(math.MaxUint32) {
		return 0, p.errf(start, "float bit pattern exceeds 32 bits")
	}
	return math.Float32frombits(uint32(u)), nil
}

func (p *Parser) readDouble() (float64, error) {
	u, err := p.readUvarint()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(u), nil
}

func (p *Parser) readRowRef() (int64, error) {
	start := p.pos
	u, err := p.readUvarint()
	if err != nil {
		return 0, err
	}
	if u == nullRowWire {
		return core.NullRow, nil
	}
	if u > uint64(math.MaxInt32) {
		return 0, p.errf(start, "row reference %d out of range", u)
	}
	return int64(u), nil
}

func (p *Parser) readMixed() (core.Mixed, error) {
	start := p.pos
	tag, err := p.readByte()
	if err != nil {
		return core.Mixed{}, err
	}
	typ := core.DataType(tag)
	switch typ {
	case core.TypeInt, core.TypeOldDateTime:
		v, err := p.readSvarint()
		if err != nil {
			return core.Mixed{}, err
		}
		return core.Mixed{Type: typ, Int: v}, nil
	case core.TypeBool:
		v, err := p.readBool()
		if err != nil {
			return core.Mixed{}, err
		}
		return core.Mixed{Type: typ, Bool: v}, nil
	case core.TypeFloat:
		v, err := p.readFloat()
		if err != nil {
			return core.Mixed{}, err
		}
		return core.Mixed{Type: typ, Float: v}, nil
	case core.TypeDouble:
		v, err := p.readDouble()
		if err != nil {
			return core.Mixed{}, err
		}
		return core.Mixed{Type: typ, Double: v}, nil
	case core.TypeString:
		v, err := p.readString()
		if err != nil {
			return core.Mixed{}, err
		}
		return core.Mixed{Type: typ, Str: v}, nil
	case core.TypeBinary:
		v, err := p.readBytes()
		if err != nil {
			return core.Mixed{}, err
		}
		return core.Mixed{Type: typ, Bin: v}, nil
	case core.TypeTimestamp:
		sec, err := p.readSvarint()
		if err != nil {
			return core.Mixed{}, err
		}
		nsec, err := p.readSvarint()
		if err != nil {
			return core.Mixed{}, err
		}
		return core.Mixed{Type: typ, Ts: core.Timestamp{Sec: sec, Nsec: int32(nsec)}}, nil
	case core.TypeLink:
		v, err := p.readRowRef()
		if err != nil {
			return core.Mixed{}, err
		}
		return core.Mixed{Type: typ, Target: v}, nil
	default:
		return core.Mixed{}, p.errf(start, "invalid Mixed type tag 0x%02X", tag)
	}
}

// --------------------------------------------------------------------------
// Instruction Iterator
// --------------------------------------------------------------------------

// Next decodes the next instruction. It returns (nil, nil) at the end
// of the stream; any error is fatal for the whole changeset.
func (p *Parser) Next() (*Instruction, error) {
	if p.pos >= len(p.data) {
		return nil, nil
	}
	start := p.pos
	opByte, _ := p.readByte()
	op := Opcode(opByte)
	in := &Instruction{Op: op}

	// helpers bound to this call
	needTable := func() error {
		if p.st.table < 0 {
			return p.errf(start, "%s requires a selected table", op)
		}
		in.Table = p.st.table
		in.Path = p.st.path
		return nil
	}
	needList := func() error {
		if err := needTable(); err != nil {
			return err
		}
		if !p.st.hasList {
			return p.errf(start, "%s requires a selected link list", op)
		}
		in.Col = p.st.listCol
		in.Row = p.st.listRow
		return nil
	}

	var err error
	switch op {

	// session
	case OpSelectTable:
		if in.Table, err = p.readInt(); err != nil {
			return nil, err
		}
		p.st = selState{table: in.Table}
	case OpSelectDescriptor:
		if err = needTable(); err != nil {
			return nil, err
		}
		var depth int
		if depth, err = p.readInt(); err != nil {
			return nil, err
		}
		path := make([]int, depth)
		for i := 0; i < depth; i++ {
			if path[i], err = p.readInt(); err != nil {
				return nil, err
			}
		}
		in.Path = path
		p.st.path = path
	case OpSelectLinkList:
		if err = needTable(); err != nil {
			return nil, err
		}
		if in.Col, err = p.readInt(); err != nil {
			return nil, err
		}
		if in.Row, err = p.readInt(); err != nil {
			return nil, err
		}
		p.st.hasList = true
		p.st.listCol = in.Col
		p.st.listRow = in.Row

	// group
	case OpAddTable:
		if in.Name, err = p.readString(); err != nil {
			return nil, err
		}
		p.st = initialSelState()
	case OpEraseTable:
		if in.Table, err = p.readInt(); err != nil {
			return nil, err
		}
		p.st = initialSelState()
	case OpRenameTable:
		if in.Table, err = p.readInt(); err != nil {
			return nil, err
		}
		if in.Name, err = p.readString(); err != nil {
			return nil, err
		}
		p.st = initialSelState()
	case OpMoveTable:
		if in.From, err = p.readInt(); err != nil {
			return nil, err
		}
		if in.To, err = p.readInt(); err != nil {
			return nil, err
		}
		p.st = initialSelState()

	// schema
	case OpInsertColumn:
		if err = needTable(); err != nil {
			return nil, err
		}
		if in.Col, err = p.readInt(); err != nil {
			return nil, err
		}
		var tb byte
		if tb, err = p.readByte(); err != nil {
			return nil, err
		}
		in.Type = core.DataType(tb)
		if !in.Type.IsValid() || in.Type.IsLinkType() {
			return nil, p.errf(start, "invalid column type 0x%02X for InsertColumn", tb)
		}
		if in.Name, err = p.readString(); err != nil {
			return nil, err
		}
		if in.Nullable, err = p.readBool(); err != nil {
			return nil, err
		}
		p.st.hasList = false
	case OpInsertLinkColumn:
		if err = needTable(); err != nil {
			return nil, err
		}
		if in.Col, err = p.readInt(); err != nil {
			return nil, err
		}
		var tb byte
		if tb, err = p.readByte(); err != nil {
			return nil, err
		}
		in.Type = core.DataType(tb)
		if !in.Type.IsLinkType() {
			return nil, p.errf(start, "invalid column type 0x%02X for InsertLinkColumn", tb)
		}
		if in.Name, err = p.readString(); err != nil {
			return nil, err
		}
		if in.TargetTable, err = p.readInt(); err != nil {
			return nil, err
		}
		var sb byte
		if sb, err = p.readByte(); err != nil {
			return nil, err
		}
		in.Strength = core.LinkStrength(sb)
		if in.Strength != core.LinkWeak && in.Strength != core.LinkStrong {
			return nil, p.errf(start, "invalid link strength 0x%02X", sb)
		}
		p.st.hasList = false
	case OpEraseColumn:
		if err = needTable(); err != nil {
			return nil, err
		}
		if in.Col, err = p.readInt(); err != nil {
			return nil, err
		}
		p.st.hasList = false
	case OpRenameColumn:
		if err = needTable(); err != nil {
			return nil, err
		}
		if in.Col, err = p.readInt(); err != nil {
			return nil, err
		}
		if in.Name, err = p.readString(); err != nil {
			return nil, err
		}
		p.st.hasList = false
	case OpMoveColumn:
		if err = needTable(); err != nil {
			return nil, err
		}
		if in.From, err = p.readInt(); err != nil {
			return nil, err
		}
		if in.To, err = p.readInt(); err != nil {
			return nil, err
		}
		p.st.hasList = false
	case OpAddSearchIndex, OpRemoveSearchIndex:
		if err = needTable(); err != nil {
			return nil, err
		}
		if in.Col, err = p.readInt(); err != nil {
			return nil, err
		}
		p.st.hasList = false

	// rows
	case OpInsertEmptyRow:
		if err = needTable(); err != nil {
			return nil, err
		}
		if in.Idx, err = p.readInt(); err != nil {
			return nil, err
		}
		if in.Count, err = p.readInt(); err != nil {
			return nil, err
		}
		p.st.hasList = false
	case OpAddEmptyRow:
		if err = needTable(); err != nil {
			return nil, err
		}
		if in.Count, err = p.readInt(); err != nil {
			return nil, err
		}
		p.st.hasList = false
	case OpMoveLastOver:
		if err = needTable(); err != nil {
			return nil, err
		}
		if in.Row, err = p.readInt(); err != nil {
			return nil, err
		}
		p.st.hasList = false
	case OpClearTable:
		if err = needTable(); err != nil {
			return nil, err
		}
		p.st.hasList = false
	case OpMergeRows:
		if err = needTable(); err != nil {
			return nil, err
		}
		if in.From, err = p.readInt(); err != nil {
			return nil, err
		}
		if in.To, err = p.readInt(); err != nil {
			return nil, err
		}
		p.st.hasList = false
	case OpAddRowWithKey:
		if err = needTable(); err != nil {
			return nil, err
		}
		if in.Col, err = p.readInt(); err != nil {
			return nil, err
		}
		if in.IntVal, err = p.readSvarint(); err != nil {
			return nil, err
		}
		p.st.hasList = false

	// cells
	case OpSetInt, OpSetIntUnique, OpSetOldDateTime:
		if err = p.readCell(in); err != nil {
			return nil, err
		}
		if in.IntVal, err = p.readSvarint(); err != nil {
			return nil, err
		}
	case OpSetBool:
		if err = p.readCell(in); err != nil {
			return nil, err
		}
		if in.BoolVal, err = p.readBool(); err != nil {
			return nil, err
		}
	case OpSetFloat:
		if err = p.readCell(in); err != nil {
			return nil, err
		}
		if in.FloatVal, err = p.readFloat(); err != nil {
			return nil, err
		}
	case OpSetDouble:
		if err = p.readCell(in); err != nil {
			return nil, err
		}
		if in.DoubleVal, err = p.readDouble(); err != nil {
			return nil, err
		}
	case OpSetString, OpSetStringUnique:
		if err = p.readCell(in); err != nil {
			return nil, err
		}
		if in.StrVal, err = p.readString(); err != nil {
			return nil, err
		}
	case OpSetBinary:
		if err = p.readCell(in); err != nil {
			return nil, err
		}
		if in.BinVal, err = p.readBytes(); err != nil {
			return nil, err
		}
	case OpSetTimestamp:
		if err = p.readCell(in); err != nil {
			return nil, err
		}
		var sec, nsec int64
		if sec, err = p.readSvarint(); err != nil {
			return nil, err
		}
		if nsec, err = p.readSvarint(); err != nil {
			return nil, err
		}
		in.TsVal = core.Timestamp{Sec: sec, Nsec: int32(nsec)}
	case OpSetNull, OpSetNullUnique, OpNullifyLink:
		if err = p.readCell(in); err != nil {
			return nil, err
		}
	case OpSetMixed:
		if err = p.readCell(in); err != nil {
			return nil, err
		}
		if in.MixedVal, err = p.readMixed(); err != nil {
			return nil, err
		}
	case OpInsertSubstring:
		if err = p.readCell(in); err != nil {
			return nil, err
		}
		if in.Pos, err = p.readInt(); err != nil {
			return nil, err
		}
		if in.StrVal, err = p.readString(); err != nil {
			return nil, err
		}
	case OpRemoveSubstring:
		if err = p.readCell(in); err != nil {
			return nil, err
		}
		if in.Pos, err = p.readInt(); err != nil {
			return nil, err
		}
		if in.Length, err = p.readInt(); err != nil {
			return nil, err
		}
	case OpSetLink:
		if err = p.readCell(in); err != nil {
			return nil, err
		}
		if in.Target, err = p.readRowRef(); err != nil {
			return nil, err
		}

	// link lists
	case OpLinkListSet, OpLinkListInsert:
		if err = needList(); err != nil {
			return nil, err
		}
		if in.Idx, err = p.readInt(); err != nil {
			return nil, err
		}
		if in.Target, err = p.readRowRef(); err != nil {
			return nil, err
		}
	case OpLinkListAdd:
		if err = needList(); err != nil {
			return nil, err
		}
		if in.Target, err = p.readRowRef(); err != nil {
			return nil, err
		}
	case OpLinkListMove, OpLinkListSwap:
		if err = needList(); err != nil {
			return nil, err
		}
		if in.From, err = p.readInt(); err != nil {
			return nil, err
		}
		if in.To, err = p.readInt(); err != nil {
			return nil, err
		}
	case OpLinkListErase, OpLinkListNullify:
		if err = needList(); err != nil {
			return nil, err
		}
		if in.Idx, err = p.readInt(); err != nil {
			return nil, err
		}
	case OpLinkListClear:
		if err = needList(); err != nil {
			return nil, err
		}

	default:
		return nil, p.errf(start, "unknown opcode 0x%02X", opByte)
	}
	return in, nil
}

// readCell resolves the selection and reads the (col, row) operands
// shared by every cell instruction.
func (p *Parser) readCell(in *Instruction) error {
	if p.st.table < 0 {
		return p.errf(p.pos-1, "%s requires a selected table", in.Op)
	}
	in.Table = p.st.table
	var err error
	if in.Col, err = p.readInt(); err != nil {
		return err
	}
	in.Row, err = p.readInt()
	return err
}
