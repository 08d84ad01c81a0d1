// Package model defines the core domain models used throughout the application.
package model

import (
	"math"
	"strconv"
)

// Kind identifies which variant a Value holds.
type Kind uint8

// Value kinds.
const (
	KindAbsent Kind = iota
	KindString
	KindNumber
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	default:
		return "absent"
	}
}

// Value is a single table cell: absent, a raw string, or a number.
// The zero Value is absent.
type Value struct {
	str  string
	num  float64
	kind Kind
}

// Absent returns the canonical "no value".
func Absent() Value {
	return Value{}
}

// String wraps a raw string. Empty strings stay strings until the
// text cleaner folds them into Absent.
func String(s string) Value {
	return Value{kind: KindString, str: s}
}

// Number wraps a numeric cell. NaN and infinities have no meaning in a
// catalog and become Absent.
func Number(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Absent()
	}
	return Value{kind: KindNumber, num: f}
}

// Kind reports the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsAbsent reports whether v is the canonical absent value.
func (v Value) IsAbsent() bool { return v.kind == KindAbsent }

// IsString reports whether v holds a string.
func (v Value) IsString() bool { return v.kind == KindString }

// IsNumber reports whether v holds a number.
func (v Value) IsNumber() bool { return v.kind == KindNumber }

// Str returns the string payload, or "" for other kinds.
func (v Value) Str() string { return v.str }

// Num returns the numeric payload, or 0 for other kinds.
func (v Value) Num() float64 { return v.num }

// Equal compares kind and payload.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == o.str
	case KindNumber:
		return v.num == o.num
	default:
		return true
	}
}

// Interface returns nil, a string or a float64, suitable for encoding/json.
func (v Value) Interface() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return v.num
	default:
		return nil
	}
}

// Text renders the value for display. Absent renders as "".
func (v Value) Text() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	default:
		return ""
	}
}

// GoString implements fmt.GoStringer so test failures are readable.
func (v Value) GoString() string {
	switch v.kind {
	case KindString:
		return strconv.Quote(v.str)
	case KindNumber:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	default:
		return "<absent>"
	}
}
