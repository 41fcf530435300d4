package value

import (
	"fmt"
	"iter"
	"slices"

	"github.com/arloliu/treeblob/errs"
	"github.com/arloliu/treeblob/format"
)

type object struct {
	members []Member
	index   map[string]int
}

type array struct {
	elems []Value
}

// NewObject returns an empty object.
func NewObject() Value {
	return Value{typ: format.TypeObject, obj: &object{index: make(map[string]int)}}
}

// NewArray returns an empty array.
func NewArray() Value {
	return Value{typ: format.TypeArray, arr: &array{}}
}

// ObjectOf returns an object holding members in order. A repeated key
// replaces the earlier value at the earlier position. Members with an empty
// key are skipped.
func ObjectOf(members ...Member) Value {
	v := NewObject()
	for _, m := range members {
		_ = v.Set(m.Key, m.Value)
	}

	return v
}

// ArrayOf returns an array holding elems in order.
func ArrayOf(elems ...Value) Value {
	return Value{typ: format.TypeArray, arr: &array{elems: slices.Clone(elems)}}
}

// Set stores val under key. An existing key keeps its position.
func (v Value) Set(key string, val Value) error {
	if v.typ != format.TypeObject {
		return fmt.Errorf("%w: Set on %s", errs.ErrTypeMismatch, v.typ)
	}

	if key == "" {
		return errs.ErrInvalidKey
	}

	if i, ok := v.obj.index[key]; ok {
		v.obj.members[i].Value = val
		return nil
	}

	v.obj.index[key] = len(v.obj.members)
	v.obj.members = append(v.obj.members, Member{Key: key, Value: val})

	return nil
}

// Get returns the value stored under key.
func (v Value) Get(key string) (Value, bool) {
	if v.typ != format.TypeObject {
		return Value{}, false
	}

	i, ok := v.obj.index[key]
	if !ok {
		return Value{}, false
	}

	return v.obj.members[i].Value, true
}

// Has reports whether the object holds key.
func (v Value) Has(key string) bool {
	_, ok := v.Get(key)
	return ok
}

// Keys returns the object keys in insertion order.
func (v Value) Keys() []string {
	if v.typ != format.TypeObject {
		return nil
	}

	keys := make([]string, len(v.obj.members))
	for i, m := range v.obj.members {
		keys[i] = m.Key
	}

	return keys
}

// Members returns a copy of the object members in insertion order.
func (v Value) Members() []Member {
	if v.typ != format.TypeObject {
		return nil
	}

	return slices.Clone(v.obj.members)
}

// All iterates over object members in insertion order.
func (v Value) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		if v.typ != format.TypeObject {
			return
		}
		for _, m := range v.obj.members {
			if !yield(m.Key, m.Value) {
				return
			}
		}
	}
}

// Append adds val to the end of the array.
func (v Value) Append(val Value) error {
	if v.typ != format.TypeArray {
		return fmt.Errorf("%w: Append on %s", errs.ErrTypeMismatch, v.typ)
	}

	v.arr.elems = append(v.arr.elems, val)

	return nil
}

// Index returns element i of the array.
func (v Value) Index(i int) (Value, bool) {
	if v.typ != format.TypeArray || i < 0 || i >= len(v.arr.elems) {
		return Value{}, false
	}

	return v.arr.elems[i], true
}

// Elements returns a copy of the array elements.
func (v Value) Elements() []Value {
	if v.typ != format.TypeArray {
		return nil
	}

	return slices.Clone(v.arr.elems)
}

// Len returns the number of members or elements of a container, and zero
// for every other kind.
func (v Value) Len() int {
	switch v.typ { //nolint:exhaustive
	case format.TypeObject:
		return len(v.obj.members)
	case format.TypeArray:
		return len(v.arr.elems)
	default:
		return 0
	}
}
