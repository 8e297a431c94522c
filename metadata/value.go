package metadata

import "fmt"

// Kind discriminates the payload of a Value.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindNull
	KindBool
	KindInt
	KindFloat
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	default:
		return "invalid"
	}
}

// Value is a scalar metadata field. Only the slot selected by Kind is
// meaningful; the rest stay at their zero value so artifacts serialize
// compactly.
type Value struct {
	Kind Kind    `json:"k"`
	B    bool    `json:"b,omitempty"`
	I64  int64   `json:"i,omitempty"`
	F64  float64 `json:"f,omitempty"`
	S    string  `json:"s,omitempty"`
}

func Null() Value           { return Value{Kind: KindNull} }
func Bool(b bool) Value     { return Value{Kind: KindBool, B: b} }
func Int(i int64) Value     { return Value{Kind: KindInt, I64: i} }
func Float(f float64) Value { return Value{Kind: KindFloat, F64: f} }
func String(s string) Value { return Value{Kind: KindString, S: s} }

// FromAny converts a dynamically typed scalar into a Value. Numeric
// inputs map onto KindInt or KindFloat depending on their Go type.
func FromAny(v any) (Value, error) {
	switch x := v.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(x), nil
	case int:
		return Int(int64(x)), nil
	case int32:
		return Int(int64(x)), nil
	case int64:
		return Int(x), nil
	case float32:
		return Float(float64(x)), nil
	case float64:
		return Float(x), nil
	case string:
		return String(x), nil
	default:
		return Value{}, fmt.Errorf("unsupported metadata type %T", v)
	}
}

// Any returns the dynamically typed payload of v.
func (v Value) Any() any {
	switch v.Kind {
	case KindBool:
		return v.B
	case KindInt:
		return v.I64
	case KindFloat:
		return v.F64
	case KindString:
		return v.S
	default:
		return nil
	}
}

// Equal reports whether two values compare equal. Int and Float values
// compare across kinds by numeric value, because JSON round trips turn
// integral fields into floats.
func (v Value) Equal(o Value) bool {
	if v.Kind == o.Kind {
		switch v.Kind {
		case KindNull:
			return true
		case KindBool:
			return v.B == o.B
		case KindInt:
			return v.I64 == o.I64
		case KindFloat:
			return v.F64 == o.F64
		case KindString:
			return v.S == o.S
		default:
			return false
		}
	}

	if v.Kind == KindInt && o.Kind == KindFloat {
		return float64(v.I64) == o.F64
	}
	if v.Kind == KindFloat && o.Kind == KindInt {
		return v.F64 == float64(o.I64)
	}

	return false
}
