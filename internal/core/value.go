package core

import (
	"strconv"
	"strings"
)

// ValueKind classifies a raw cell value as read from the source document.
type ValueKind uint8

const (
	KindEmpty ValueKind = iota
	KindString
	KindNumber
	KindBool
	KindDate
)

// Value is a raw cell value. Text holds the stored value in text form (not
// the formatted display text); Kind records whether the document stored it
// as a string or as a typed scalar.
//
// Value is comparable so it can key the duplicate-detection set directly.
type Value struct {
	Kind ValueKind
	Text string
}

// Empty is the value of a blank cell.
var Empty = Value{}

// String returns a string cell value. An empty string is still a string cell.
func String(s string) Value {
	return Value{Kind: KindString, Text: s}
}

// Number returns a numeric cell value carrying its stored text.
func Number(text string) Value {
	return Value{Kind: KindNumber, Text: text}
}

// IsEmpty reports whether the cell held no value at all.
func (v Value) IsEmpty() bool {
	return v.Kind == KindEmpty
}

// IsString reports whether the cell held text.
func (v Value) IsString() bool {
	return v.Kind == KindString
}

// IsFalsy reports whether the value counts as blank for identifier checks:
// no value, an empty string, numeric zero, or boolean false.
func (v Value) IsFalsy() bool {
	switch v.Kind {
	case KindEmpty:
		return true
	case KindString:
		return v.Text == ""
	case KindNumber:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.Text), 64)
		return err == nil && f == 0
	case KindBool:
		b, err := strconv.ParseBool(strings.TrimSpace(v.Text))
		return err == nil && !b
	default:
		return false
	}
}

func (v Value) String() string {
	return v.Text
}

// cellAt returns the value at col, or Empty when the row is shorter.
func cellAt(row []Value, col int) Value {
	if col < 0 || col >= len(row) {
		return Empty
	}
	return row[col]
}
