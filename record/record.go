// Package record decodes SQLite records: the serial-type-driven payload
// format shared by table rows and index entries.
//
// A record is a header followed by a body. The header starts with a varint
// giving the total header length in bytes (including that varint), followed
// by one serial-type varint per column. The body holds the column values in
// order, each encoded as its serial type dictates.
package record

import (
	"encoding/binary"
	"math"

	"rawlite/dberr"
)

// Serial type codes below 12 have fixed meanings; 12 and up encode
// blob (even) and text (odd) lengths.
const (
	serialNull  = 0
	serialInt8  = 1
	serialInt16 = 2
	serialInt24 = 3
	serialInt32 = 4
	serialInt48 = 5
	serialInt64 = 6
	serialFloat = 7
	serialZero  = 8
	serialOne   = 9
)

// GetVarint reads a variable-length integer from p: up to 8 bytes of 7-bit
// big-endian groups with a continuation bit, then a 9th byte taken verbatim
// as the low 8 bits. Returns the value and the number of bytes consumed.
// Fails if p is exhausted before a terminating byte.
func GetVarint(p []byte) (uint64, int, error) {
	var v uint64
	for i := 0; i < 9; i++ {
		if i >= len(p) {
			return 0, 0, dberr.Formatf(0, "truncated varint")
		}
		b := p[i]
		if i == 8 {
			// 9th byte contributes all 8 bits, no continuation check
			return (v << 8) | uint64(b), 9, nil
		}
		v = (v << 7) | uint64(b&0x7f)
		if b&0x80 == 0 {
			return v, i + 1, nil
		}
	}
	return 0, 0, dberr.Formatf(0, "varint longer than 9 bytes")
}

// SerialTypeLen returns the number of body bytes a serial type occupies.
func SerialTypeLen(st uint64) int {
	switch st {
	case serialNull, serialZero, serialOne:
		return 0
	case serialInt8:
		return 1
	case serialInt16:
		return 2
	case serialInt24:
		return 3
	case serialInt32:
		return 4
	case serialInt48:
		return 6
	case serialInt64, serialFloat:
		return 8
	}
	if st >= 12 {
		if st%2 == 0 {
			return int((st - 12) / 2)
		}
		return int((st - 13) / 2)
	}
	return 0
}

// Decode decodes a record payload into its serial types and column values.
//
// The declared header size must be covered exactly by the header-size varint
// plus the serial-type varints; any mismatch is a format error. A body that
// extends past the payload means the row needs an overflow page chain, which
// is reported as dberr.ErrOverflow rather than decoded partially.
func Decode(payload []byte) ([]uint64, []Value, error) {
	if len(payload) == 0 {
		return nil, nil, dberr.Formatf(0, "empty record")
	}

	headerSize, n, err := GetVarint(payload)
	if err != nil {
		return nil, nil, err
	}
	if headerSize < uint64(n) {
		return nil, nil, dberr.Formatf(0, "record header size %d smaller than its own varint", headerSize)
	}
	if headerSize > uint64(len(payload)) {
		return nil, nil, &dberr.FormatError{
			Detail: "record header spills past local payload",
			Err:    dberr.ErrOverflow,
		}
	}

	// Consume serial types until exactly headerSize bytes of header are used.
	var serialTypes []uint64
	offset := n
	for uint64(offset) < headerSize {
		st, m, err := GetVarint(payload[offset:])
		if err != nil {
			return nil, nil, err
		}
		offset += m
		if uint64(offset) > headerSize {
			return nil, nil, dberr.Formatf(0, "record header size mismatch: serial types overrun header by %d bytes", uint64(offset)-headerSize)
		}
		serialTypes = append(serialTypes, st)
	}

	values := make([]Value, len(serialTypes))
	for i, st := range serialTypes {
		v, m, err := decodeValue(payload[offset:], st)
		if err != nil {
			return nil, nil, err
		}
		values[i] = v
		offset += m
	}

	return serialTypes, values, nil
}

// decodeValue decodes a single column value from the front of body.
func decodeValue(body []byte, st uint64) (Value, int, error) {
	length := SerialTypeLen(st)
	if length > len(body) {
		return Value{}, 0, &dberr.FormatError{
			Detail: "column payload spills past local payload",
			Err:    dberr.ErrOverflow,
		}
	}

	switch st {
	case serialNull:
		return Null(), 0, nil

	case serialZero:
		return Integer(0), 0, nil

	case serialOne:
		return Integer(1), 0, nil

	case serialInt8:
		return Integer(int64(int8(body[0]))), 1, nil

	case serialInt16:
		return Integer(int64(int16(binary.BigEndian.Uint16(body)))), 2, nil

	case serialInt24:
		v := int32(body[0])<<16 | int32(body[1])<<8 | int32(body[2])
		if v&0x800000 != 0 {
			v |= ^int32(0xffffff) // Sign extend
		}
		return Integer(int64(v)), 3, nil

	case serialInt32:
		return Integer(int64(int32(binary.BigEndian.Uint32(body)))), 4, nil

	case serialInt48:
		v := int64(body[0])<<40 | int64(body[1])<<32 |
			int64(body[2])<<24 | int64(body[3])<<16 |
			int64(body[4])<<8 | int64(body[5])
		if v&0x800000000000 != 0 {
			v |= ^int64(0xffffffffffff) // Sign extend
		}
		return Integer(v), 6, nil

	case serialInt64:
		return Integer(int64(binary.BigEndian.Uint64(body))), 8, nil

	case serialFloat:
		return Real(math.Float64frombits(binary.BigEndian.Uint64(body))), 8, nil

	case 10, 11:
		return Value{}, 0, dberr.Formatf(0, "reserved serial type %d", st)
	}

	if st < 12 {
		return Value{}, 0, dberr.Formatf(0, "invalid serial type %d", st)
	}

	b := make([]byte, length)
	copy(b, body[:length])
	if st%2 == 0 {
		return Value{Kind: KindBlob, Bytes: b}, length, nil
	}
	return Value{Kind: KindText, Bytes: b}, length, nil
}
