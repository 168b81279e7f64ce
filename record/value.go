package record

import (
	"bytes"
	"strconv"
)

// Kind identifies the storage class of a decoded column value.
type Kind int

const (
	// KindNull is the SQL NULL value.
	KindNull Kind = iota
	// KindInteger is a 64-bit signed integer.
	KindInteger
	// KindReal is a 64-bit IEEE-754 float.
	KindReal
	// KindText is a text value. The stored bytes are exposed as-is,
	// without encoding validation or repair.
	KindText
	// KindBlob is a raw byte string.
	KindBlob
)

// Value is a decoded column value. It is a closed tagged variant: exactly
// one of the payload fields is meaningful, selected by Kind.
type Value struct {
	Kind  Kind
	Int   int64   // KindInteger
	Real  float64 // KindReal
	Bytes []byte  // KindText, KindBlob
}

// Null returns the NULL value.
func Null() Value {
	return Value{Kind: KindNull}
}

// Integer returns an integer value.
func Integer(v int64) Value {
	return Value{Kind: KindInteger, Int: v}
}

// Real returns a real value.
func Real(v float64) Value {
	return Value{Kind: KindReal, Real: v}
}

// Text returns a text value holding s.
func Text(s string) Value {
	return Value{Kind: KindText, Bytes: []byte(s)}
}

// Blob returns a blob value holding b.
func Blob(b []byte) Value {
	return Value{Kind: KindBlob, Bytes: b}
}

// IsNull reports whether v is the NULL value.
func (v Value) IsNull() bool {
	return v.Kind == KindNull
}

// String renders the value for display. NULL renders as the empty string;
// text and blob render their raw bytes.
func (v Value) String() string {
	switch v.Kind {
	case KindNull:
		return ""
	case KindInteger:
		return strconv.FormatInt(v.Int, 10)
	case KindReal:
		return strconv.FormatFloat(v.Real, 'g', -1, 64)
	default:
		return string(v.Bytes)
	}
}

// Storage class ranks for cross-type comparison: NULL < numeric < text < blob.
func classRank(k Kind) int {
	switch k {
	case KindNull:
		return 0
	case KindInteger, KindReal:
		return 1
	case KindText:
		return 2
	default:
		return 3
	}
}

// Compare orders two values the way SQLite orders index keys:
// NULL sorts before everything, integers and reals compare numerically
// across types, text compares byte-wise, blobs compare byte-wise, and
// values of different storage classes order by class. The result is
// negative, zero, or positive.
func Compare(a, b Value) int {
	ra, rb := classRank(a.Kind), classRank(b.Kind)
	if ra != rb {
		return ra - rb
	}

	switch ra {
	case 0: // both NULL
		return 0
	case 1: // numeric
		af, bf := a.numeric(), b.numeric()
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	default: // text or blob
		return bytes.Compare(a.Bytes, b.Bytes)
	}
}

// Equal reports whether a and b compare equal. NULL never equals anything,
// including another NULL, matching SQL equality semantics.
func Equal(a, b Value) bool {
	if a.Kind == KindNull || b.Kind == KindNull {
		return false
	}
	return Compare(a, b) == 0
}

func (v Value) numeric() float64 {
	if v.Kind == KindInteger {
		return float64(v.Int)
	}
	return v.Real
}
