package transact

import (
	"math"

	"github.com/tabulardb/tabular/lib/core"
)

// Primitive wire encoding. Unsigned integers use little-endian ULEB128,
// signed integers zigzag over ULEB128, strings and binaries a ULEB128
// byte length followed by the raw bytes, floats the ULEB128 of their
// IEEE-754 bit pattern. A null row reference in a link operand is the
// sentinel 2^64-1.

// nullRowWire is the on-wire encoding of a null link target.
const nullRowWire = ^uint64(0)

func appendUvarint(b []byte, v uint64) []byte {
	for v >= 0x80 {
		b = append(b, byte(v)|0x80)
		v >>= 7
	}
	return append(b, byte(v))
}

func appendSvarint(b []byte, v int64) []byte {
	// zigzag
	return appendUvarint(b, uint64(v<<1)^uint64(v>>63))
}

func appendBool(b []byte, v bool) []byte {
	if v {
		return append(b, 1)
	}
	return append(b, 0)
}

func appendString(b []byte, s string) []byte {
	b = appendUvarint(b, uint64(len(s)))
	return append(b, s...)
}

func appendBytes(b []byte, v []byte) []byte {
	b = appendUvarint(b, uint64(len(v)))
	return append(b, v...)
}

func appendFloat(b []byte, v float32) []byte {
	return appendUvarint(b, uint64(math.Float32bits(v)))
}

func appendDouble(b []byte, v float64) []byte {
	return appendUvarint(b, math.Float64bits(v))
}

func appendRowRef(b []byte, target int64) []byte {
	if target == core.NullRow {
		return appendUvarint(b, nullRowWire)
	}
	return appendUvarint(b, uint64(target))
}

func appendMixed(b []byte, v core.Mixed) []byte {
	b = append(b, byte(v.Type))
	switch v.Type {
	case core.TypeInt, core.TypeOldDateTime:
		return appendSvarint(b, v.Int)
	case core.TypeBool:
		return appendBool(b, v.Bool)
	case core.TypeFloat:
		return appendFloat(b, v.Float)
	case core.TypeDouble:
		return appendDouble(b, v.Double)
	case core.TypeString:
		return appendString(b, v.Str)
	case core.TypeBinary:
		return appendBytes(b, v.Bin)
	case core.TypeTimestamp:
		b = appendSvarint(b, v.Ts.Sec)
		return appendSvarint(b, int64(v.Ts.Nsec))
	case core.TypeLink:
		// null links inside Mixed use the same sentinel as Link columns
		return appendRowRef(b, v.Target)
	default:
		// SetMixed validates the tag before recording
		panic("transact: unencodable Mixed type " + v.Type.String())
	}
}
