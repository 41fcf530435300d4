// Package value defines Value, the in-memory tree that treeblob artifacts are
// encoded from and decoded into, together with bridges to Go values, JSON,
// YAML and CBOR.
//
// A Value is exactly one of eight kinds: Null, Bool, Int64, Float64, String,
// Bytes, Object or Array. The zero Value is "undefined": it reports
// TypeInvalid, is never produced by decoding, and is dropped when encountered
// inside a container during encoding.
//
// Object and Array values are reference-like, much as Go maps are: copies of
// a container Value share the same members, so Set and Append through any
// copy are visible through all of them.
package value

import (
	"bytes"
	"math"

	"github.com/arloliu/treeblob/format"
)

// Value is a tagged union over the eight treeblob value kinds.
type Value struct {
	typ format.Type
	num uint64 // Bool (0/1), Int64 bits or Float64 bits
	str string
	raw []byte
	obj *object
	arr *array
}

// Member is one key/value pair of an Object.
type Member struct {
	Key   string
	Value Value
}

// Null returns the null value.
func Null() Value {
	return Value{typ: format.TypeNull}
}

// Bool returns a boolean value.
func Bool(b bool) Value {
	v := Value{typ: format.TypeBool}
	if b {
		v.num = 1
	}

	return v
}

// Int64 returns an integer value.
func Int64(i int64) Value {
	return Value{typ: format.TypeInt64, num: uint64(i)} //nolint:gosec
}

// Float64 returns a double value.
func Float64(f float64) Value {
	return Value{typ: format.TypeFloat64, num: math.Float64bits(f)}
}

// String returns a string value.
func String(s string) Value {
	return Value{typ: format.TypeString, str: s}
}

// Bytes returns a byte blob value. The slice is retained, not copied.
func Bytes(b []byte) Value {
	if b == nil {
		b = []byte{}
	}

	return Value{typ: format.TypeBytes, raw: b}
}

// Type returns the kind of v; the zero Value reports TypeInvalid.
func (v Value) Type() format.Type {
	return v.typ
}

// IsValid reports whether v is one of the eight kinds.
func (v Value) IsValid() bool {
	return v.typ.IsValid()
}

// IsNull reports whether v is null.
func (v Value) IsNull() bool {
	return v.typ == format.TypeNull
}

// IsContainer reports whether v is an Object or an Array.
func (v Value) IsContainer() bool {
	return v.typ.IsContainer()
}

// AsBool returns the boolean held by v.
func (v Value) AsBool() (bool, bool) {
	return v.num != 0, v.typ == format.TypeBool
}

// AsInt64 returns the integer held by v.
func (v Value) AsInt64() (int64, bool) {
	if v.typ != format.TypeInt64 {
		return 0, false
	}

	return int64(v.num), true //nolint:gosec
}

// AsFloat64 returns the double held by v.
func (v Value) AsFloat64() (float64, bool) {
	if v.typ != format.TypeFloat64 {
		return 0, false
	}

	return math.Float64frombits(v.num), true
}

// AsNumber returns v as a float64 for either numeric kind.
func (v Value) AsNumber() (float64, bool) {
	switch v.typ { //nolint:exhaustive
	case format.TypeInt64:
		return float64(int64(v.num)), true //nolint:gosec
	case format.TypeFloat64:
		return math.Float64frombits(v.num), true
	default:
		return 0, false
	}
}

// AsString returns the string held by v.
func (v Value) AsString() (string, bool) {
	return v.str, v.typ == format.TypeString
}

// AsBytes returns the byte blob held by v without copying.
func (v Value) AsBytes() ([]byte, bool) {
	return v.raw, v.typ == format.TypeBytes
}

// Equal reports whether v and other are structurally identical.
//
// Member order matters, Int64 and Float64 never compare equal to each other,
// and doubles are compared by bit pattern so NaN equals itself.
func (v Value) Equal(other Value) bool {
	if v.typ != other.typ {
		return false
	}

	switch v.typ {
	case format.TypeInvalid, format.TypeNull:
		return true
	case format.TypeBool, format.TypeInt64, format.TypeFloat64:
		return v.num == other.num
	case format.TypeString:
		return v.str == other.str
	case format.TypeBytes:
		return bytes.Equal(v.raw, other.raw)
	case format.TypeObject:
		if v.obj == other.obj {
			return true
		}
		if len(v.obj.members) != len(other.obj.members) {
			return false
		}
		for i, m := range v.obj.members {
			om := other.obj.members[i]
			if m.Key != om.Key || !m.Value.Equal(om.Value) {
				return false
			}
		}

		return true
	case format.TypeArray:
		if v.arr == other.arr {
			return true
		}
		if len(v.arr.elems) != len(other.arr.elems) {
			return false
		}
		for i, e := range v.arr.elems {
			if !e.Equal(other.arr.elems[i]) {
				return false
			}
		}

		return true
	default:
		return false
	}
}

// String renders v as JSON for debugging. Undefined renders as "undefined".
func (v Value) String() string {
	if !v.IsValid() {
		return format.NameUndefined
	}

	var buf bytes.Buffer
	if err := writeJSON(&buf, v); err != nil {
		return "<" + err.Error() + ">"
	}

	return buf.String()
}
