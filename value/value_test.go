package value

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/treeblob/errs"
	"github.com/arloliu/treeblob/format"
)

func TestScalars(t *testing.T) {
	var undefined Value
	assert.Equal(t, format.TypeInvalid, undefined.Type())
	assert.False(t, undefined.IsValid())
	assert.Equal(t, "undefined", undefined.String())

	assert.True(t, Null().IsNull())
	assert.Equal(t, format.TypeNull, Null().Type())

	b, ok := Bool(true).AsBool()
	assert.True(t, ok)
	assert.True(t, b)

	i, ok := Int64(math.MaxInt64).AsInt64()
	assert.True(t, ok)
	assert.Equal(t, int64(math.MaxInt64), i)

	f, ok := Float64(-0.25).AsFloat64()
	assert.True(t, ok)
	assert.InDelta(t, -0.25, f, 0)

	s, ok := String("héllo").AsString()
	assert.True(t, ok)
	assert.Equal(t, "héllo", s)

	raw, ok := Bytes(nil).AsBytes()
	assert.True(t, ok)
	assert.NotNil(t, raw)
	assert.Empty(t, raw)
}

func TestAccessorKindMismatch(t *testing.T) {
	v := Int64(1)

	_, ok := v.AsFloat64()
	assert.False(t, ok)
	_, ok = v.AsString()
	assert.False(t, ok)
	_, ok = v.AsBool()
	assert.False(t, ok)
	_, ok = v.AsBytes()
	assert.False(t, ok)

	n, ok := v.AsNumber()
	assert.True(t, ok)
	assert.InDelta(t, 1.0, n, 0)

	_, ok = String("1").AsNumber()
	assert.False(t, ok)
}

func TestObject(t *testing.T) {
	obj := NewObject()
	require.NoError(t, obj.Set("z", Int64(1)))
	require.NoError(t, obj.Set("a", Int64(2)))
	require.NoError(t, obj.Set("m", Int64(3)))
	require.NoError(t, obj.Set("z", String("again")))

	assert.Equal(t, []string{"z", "a", "m"}, obj.Keys())
	assert.Equal(t, 3, obj.Len())

	got, ok := obj.Get("z")
	require.True(t, ok)
	assert.True(t, got.Equal(String("again")))

	_, ok = obj.Get("missing")
	assert.False(t, ok)
	assert.True(t, obj.Has("a"))

	require.ErrorIs(t, obj.Set("", Null()), errs.ErrInvalidKey)
	require.ErrorIs(t, obj.Append(Null()), errs.ErrTypeMismatch)

	var keys []string
	for k := range obj.All() {
		keys = append(keys, k)
		if len(keys) == 2 {
			break
		}
	}
	assert.Equal(t, []string{"z", "a"}, keys)

	members := obj.Members()
	members[0].Key = "mutated"
	assert.Equal(t, "z", obj.Keys()[0])
}

func TestObjectSharesMembersAcrossCopies(t *testing.T) {
	obj := NewObject()
	alias := obj
	require.NoError(t, alias.Set("k", Bool(true)))

	assert.True(t, obj.Has("k"))
}

func TestArray(t *testing.T) {
	arr := ArrayOf(Int64(1), String("two"))
	require.NoError(t, arr.Append(Null()))

	assert.Equal(t, 3, arr.Len())

	e, ok := arr.Index(1)
	require.True(t, ok)
	assert.True(t, e.Equal(String("two")))

	_, ok = arr.Index(3)
	assert.False(t, ok)
	_, ok = arr.Index(-1)
	assert.False(t, ok)

	require.ErrorIs(t, arr.Set("k", Null()), errs.ErrTypeMismatch)
	assert.Nil(t, arr.Keys())
	assert.Zero(t, Int64(1).Len())
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name  string
		a, b  Value
		equal bool
	}{
		{"int vs float", Int64(1), Float64(1), false},
		{"nan", Float64(math.NaN()), Float64(math.NaN()), true},
		{"bytes", Bytes([]byte{1}), Bytes([]byte{1}), true},
		{"undefined", Value{}, Value{}, true},
		{"null vs undefined", Null(), Value{}, false},
		{
			"member order",
			ObjectOf(Member{"a", Int64(1)}, Member{"b", Int64(2)}),
			ObjectOf(Member{"b", Int64(2)}, Member{"a", Int64(1)}),
			false,
		},
		{
			"nested",
			ObjectOf(Member{"a", ArrayOf(Int64(1), ObjectOf())}),
			ObjectOf(Member{"a", ArrayOf(Int64(1), ObjectOf())}),
			true,
		},
		{"array length", ArrayOf(Null()), ArrayOf(Null(), Null()), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.equal, tt.a.Equal(tt.b))
			assert.Equal(t, tt.equal, tt.b.Equal(tt.a))
		})
	}
}

func TestString(t *testing.T) {
	v := ObjectOf(
		Member{"a", Int64(1)},
		Member{"b", ArrayOf(Float64(1.5), Bool(false), Null())},
		Member{"skip", Value{}},
	)

	assert.Equal(t, `{"a":1,"b":[1.5,false,null]}`, v.String())
}
