package models

import "strconv"

// ValueKind classifies a cell value.
type ValueKind int

const (
	// KindEmpty is an absent cell.
	KindEmpty ValueKind = iota
	KindString
	KindNumber
	KindBool
)

// Value is a typed cell value. The zero Value is empty.
type Value struct {
	Kind ValueKind
	Str  string
	Num  float64
	Bool bool
}

// StringValue returns a text value. Text is kept verbatim.
func StringValue(s string) Value {
	if s == "" {
		return Value{}
	}
	return Value{Kind: KindString, Str: s}
}

// NumberValue returns a numeric value.
func NumberValue(f float64) Value {
	return Value{Kind: KindNumber, Num: f}
}

// BoolValue returns a boolean value.
func BoolValue(b bool) Value {
	return Value{Kind: KindBool, Bool: b}
}

// IsEmpty reports whether the value is absent.
func (v Value) IsEmpty() bool {
	return v.Kind == KindEmpty
}

// Any returns the value as string, float64 or bool, or nil when empty.
func (v Value) Any() any {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindNumber:
		return v.Num
	case KindBool:
		return v.Bool
	default:
		return nil
	}
}

// Text renders the value the way a spreadsheet displays it in a header cell.
func (v Value) Text() string {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case KindBool:
		if v.Bool {
			return "TRUE"
		}
		return "FALSE"
	default:
		return ""
	}
}
