package value

import (
	"encoding"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"slices"
	"strings"

	"github.com/arloliu/treeblob/errs"
	"github.com/arloliu/treeblob/format"
)

var (
	valueType         = reflect.TypeFor[Value]()
	textMarshalerType = reflect.TypeFor[encoding.TextMarshaler]()
	jsonNumberType    = reflect.TypeFor[json.Number]()
)

// FromAny converts a Go value into a Value.
//
// Conversion rules:
//   - nil, nil pointers, nil maps and nil slices become Null
//   - bool becomes Bool; string and json.Number keep their natural kinds
//   - signed integers, and unsigned integers up to math.MaxInt64, become Int64
//   - float32 and float64 become Float64
//   - []byte becomes Bytes (copied)
//   - maps with string keys become Objects with keys in sorted order
//   - slices and arrays become Arrays
//   - structs become Objects with exported fields in declaration order,
//     honoring `json` tag names, "-" and omitempty
//   - encoding.TextMarshaler implementations become Strings
//
// Values that fit none of the rules (functions, channels, complex numbers,
// maps with non-string keys, unsigned integers above math.MaxInt64) are left
// undefined inside containers and rejected with ErrUnsupportedType at the top level.
func FromAny(v any) (Value, error) {
	if v == nil {
		return Null(), nil
	}

	out := fromReflect(reflect.ValueOf(v))
	if !out.IsValid() {
		return Value{}, fmt.Errorf("%w: %T", errs.ErrUnsupportedType, v)
	}

	return out, nil
}

// MustFromAny is like FromAny but panics on unsupported input.
func MustFromAny(v any) Value {
	out, err := FromAny(v)
	if err != nil {
		panic(err)
	}

	return out
}

func fromReflect(rv reflect.Value) Value {
	if !rv.IsValid() {
		return Null()
	}

	t := rv.Type()
	if t == valueType && rv.CanInterface() {
		return rv.Interface().(Value) //nolint:forcetypeassert
	}

	if t == jsonNumberType {
		return fromNumberLiteral(rv.String())
	}

	switch rv.Kind() { //nolint:exhaustive
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Null()
		}
	}

	if t.Implements(textMarshalerType) && rv.Kind() != reflect.Interface && rv.CanInterface() {
		text, err := rv.Interface().(encoding.TextMarshaler).MarshalText() //nolint:forcetypeassert
		if err != nil {
			return Value{}
		}

		return String(string(text))
	}

	switch rv.Kind() { //nolint:exhaustive
	case reflect.Pointer, reflect.Interface:
		return fromReflect(rv.Elem())
	case reflect.Bool:
		return Bool(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int64(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return Value{}
		}

		return Int64(int64(u))
	case reflect.Float32, reflect.Float64:
		return Float64(rv.Float())
	case reflect.String:
		return String(rv.String())
	case reflect.Slice:
		if rv.IsNil() {
			return Null()
		}
		if t.Elem().Kind() == reflect.Uint8 {
			return Bytes(slices.Clone(rv.Bytes()))
		}

		return fromList(rv)
	case reflect.Array:
		return fromList(rv)
	case reflect.Map:
		if t.Key().Kind() != reflect.String {
			return Value{}
		}
		if rv.IsNil() {
			return Null()
		}

		return fromMap(rv)
	case reflect.Struct:
		obj := NewObject()
		addStructFields(obj, rv)

		return obj
	default:
		return Value{}
	}
}

func fromList(rv reflect.Value) Value {
	elems := make([]Value, rv.Len())
	for i := range elems {
		elems[i] = fromReflect(rv.Index(i))
	}

	return Value{typ: format.TypeArray, arr: &array{elems: elems}}
}

func fromMap(rv reflect.Value) Value {
	keys := rv.MapKeys()
	slices.SortFunc(keys, func(a, b reflect.Value) int {
		return strings.Compare(a.String(), b.String())
	})

	obj := NewObject()
	for _, k := range keys {
		if k.String() == "" {
			continue
		}
		_ = obj.Set(k.String(), fromReflect(rv.MapIndex(k)))
	}

	return obj
}

// addStructFields copies the exported fields of rv into obj, flattening
// untagged embedded structs the way encoding/json does.
func addStructFields(obj Value, rv reflect.Value) {
	t := rv.Type()
	for i := range t.NumField() {
		field := t.Field(i)
		name, omitEmpty, skip := parseTag(field)
		if skip {
			continue
		}

		fv := rv.Field(i)
		if field.Anonymous && name == "" {
			ft := field.Type
			if ft.Kind() == reflect.Pointer {
				if fv.IsNil() {
					continue
				}
				ft, fv = ft.Elem(), fv.Elem()
			}
			if ft.Kind() == reflect.Struct {
				addStructFields(obj, fv)
				continue
			}
		}

		if !field.IsExported() {
			continue
		}

		if omitEmpty && isEmptyValue(fv) {
			continue
		}

		if name == "" {
			name = field.Name
		}
		_ = obj.Set(name, fromReflect(fv))
	}
}

func parseTag(field reflect.StructField) (name string, omitEmpty bool, skip bool) {
	tag, ok := field.Tag.Lookup("json")
	if !ok {
		return "", false, false
	}

	if tag == "-" {
		return "", false, true
	}

	name, opts, _ := strings.Cut(tag, ",")
	for opt := range strings.SplitSeq(opts, ",") {
		if opt == "omitempty" {
			omitEmpty = true
		}
	}

	return name, omitEmpty, false
}

func isEmptyValue(v reflect.Value) bool {
	switch v.Kind() { //nolint:exhaustive
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64,
		reflect.Interface, reflect.Pointer:
		return v.IsZero()
	default:
		return false
	}
}

// Interface converts v into plain Go values: nil, bool, int64, float64,
// string, []byte, map[string]any and []any. Undefined values become nil at
// the top level and are omitted inside containers.
func (v Value) Interface() any {
	switch v.typ {
	case format.TypeBool:
		return v.num != 0
	case format.TypeInt64:
		return int64(v.num) //nolint:gosec
	case format.TypeFloat64:
		return math.Float64frombits(v.num)
	case format.TypeString:
		return v.str
	case format.TypeBytes:
		return v.raw
	case format.TypeObject:
		m := make(map[string]any, len(v.obj.members))
		for _, member := range v.obj.members {
			if member.Value.IsValid() {
				m[member.Key] = member.Value.Interface()
			}
		}

		return m
	case format.TypeArray:
		s := make([]any, 0, len(v.arr.elems))
		for _, e := range v.arr.elems {
			if e.IsValid() {
				s = append(s, e.Interface())
			}
		}

		return s
	default:
		return nil
	}
}
