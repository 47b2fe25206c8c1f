package core

import "fmt"

// --------------------------------------------------------------------------
// Column Data Types
// --------------------------------------------------------------------------

// DataType identifies the scalar or structural type of a column.
type DataType uint8

const (
	TypeInt DataType = iota
	TypeBool
	TypeFloat
	TypeDouble
	TypeString
	TypeBinary
	TypeOldDateTime
	TypeTimestamp
	TypeMixed
	TypeTable
	TypeLink
	TypeLinkList
)

func (t DataType) String() string {
	switch t {
	case TypeInt:
		return "Int"
	case TypeBool:
		return "Bool"
	case TypeFloat:
		return "Float"
	case TypeDouble:
		return "Double"
	case TypeString:
		return "String"
	case TypeBinary:
		return "Binary"
	case TypeOldDateTime:
		return "OldDateTime"
	case TypeTimestamp:
		return "Timestamp"
	case TypeMixed:
		return "Mixed"
	case TypeTable:
		return "Table"
	case TypeLink:
		return "Link"
	case TypeLinkList:
		return "LinkList"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(t))
	}
}

// IsLinkType reports whether columns of this type reference rows of a
// target table and therefore carry backlink bookkeeping.
func (t DataType) IsLinkType() bool {
	return t == TypeLink || t == TypeLinkList
}

// IsValid reports whether t is one of the defined column types.
func (t DataType) IsValid() bool {
	return t <= TypeLinkList
}

// --------------------------------------------------------------------------
// Link Strength
// --------------------------------------------------------------------------

// LinkStrength is the ownership attribute of a Link or LinkList column.
// Strong columns own their targets: a target row whose last incoming
// strong reference is removed is deleted (see cascade.go).
type LinkStrength uint8

const (
	LinkWeak LinkStrength = iota
	LinkStrong
)

func (s LinkStrength) String() string {
	switch s {
	case LinkWeak:
		return "Weak"
	case LinkStrong:
		return "Strong"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(s))
	}
}

// --------------------------------------------------------------------------
// Cell Value Types
// --------------------------------------------------------------------------

// NullRow is the in-memory representation of a null row reference in a
// Link cell or a Mixed link value. On the wire it is encoded as 2^64-1.
const NullRow int64 = -1

// Timestamp is a point in time with nanosecond precision. Nullability is
// a property of the cell, not of the value.
type Timestamp struct {
	Sec  int64
	Nsec int32
}

// Mixed is a dynamically typed cell value. Type selects which value field
// is meaningful and must be one of the scalar types or TypeLink. A Mixed
// holding TypeLink stores the target row in Target, NullRow for null
// (subtable values inside Mixed cells are not supported).
type Mixed struct {
	Type   DataType
	Int    int64 // TypeInt and TypeOldDateTime
	Bool   bool
	Float  float32
	Double float64
	Str    string
	Bin    []byte
	Ts     Timestamp
	Target int64 // TypeLink
}

// MixedInt, MixedBool etc. construct Mixed values of the given type.

func MixedInt(v int64) Mixed         { return Mixed{Type: TypeInt, Int: v} }
func MixedBool(v bool) Mixed         { return Mixed{Type: TypeBool, Bool: v} }
func MixedFloat(v float32) Mixed     { return Mixed{Type: TypeFloat, Float: v} }
func MixedDouble(v float64) Mixed    { return Mixed{Type: TypeDouble, Double: v} }
func MixedString(v string) Mixed     { return Mixed{Type: TypeString, Str: v} }
func MixedBinary(v []byte) Mixed     { return Mixed{Type: TypeBinary, Bin: v} }
func MixedOldDateTime(v int64) Mixed { return Mixed{Type: TypeOldDateTime, Int: v} }
func MixedTimestamp(ts Timestamp) Mixed {
	return Mixed{Type: TypeTimestamp, Ts: ts}
}
func MixedLink(target int64) Mixed { return Mixed{Type: TypeLink, Target: target} }

// mixedEqual compares two Mixed values including their type tag.
func mixedEqual(a, b Mixed) bool {
	if a.Type != b.Type {
		return false
	}
	switch a.Type {
	case TypeInt, TypeOldDateTime:
		return a.Int == b.Int
	case TypeBool:
		return a.Bool == b.Bool
	case TypeFloat:
		return a.Float == b.Float
	case TypeDouble:
		return a.Double == b.Double
	case TypeString:
		return a.Str == b.Str
	case TypeBinary:
		return bytesEqual(a.Bin, b.Bin)
	case TypeTimestamp:
		return a.Ts == b.Ts
	case TypeLink:
		return a.Target == b.Target
	default:
		return false
	}
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
