package store

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/treeblob/errs"
	"github.com/arloliu/treeblob/format"
)

func TestIterator_Object(t *testing.T) {
	ctx := newObjectContext(t, WithBlockCapacity(2))

	require.NoError(t, ctx.SetString(Root, "s", "v"))
	require.NoError(t, ctx.SetInt64(Root, "i", 3))
	child, err := ctx.SetArray(Root, "arr")
	require.NoError(t, err)
	require.NoError(t, ctx.SetNull(Root, "n"))

	it, err := ctx.Iter(Root)
	require.NoError(t, err)

	var items []Item
	for it.Next() {
		items = append(items, it.Item())
	}
	require.NoError(t, it.Err())
	require.Len(t, items, 4)

	require.Equal(t, "s", items[0].Key)
	require.Equal(t, format.TypeString, items[0].Type)
	s, err := ctx.EntryString(items[0].Entry)
	require.NoError(t, err)
	require.Equal(t, "v", s)

	require.Equal(t, "i", items[1].Key)
	require.Equal(t, 1, items[1].Index)
	n, err := ctx.EntryInt64(items[1].Entry)
	require.NoError(t, err)
	require.Equal(t, int64(3), n)

	require.Equal(t, "arr", items[2].Key)
	require.Equal(t, format.TypeArray, items[2].Type)
	require.Equal(t, child, items[2].Offset)

	require.Equal(t, "n", items[3].Key)
	require.Equal(t, format.TypeNull, items[3].Type)
	require.Zero(t, items[3].Offset)

	_, err = ctx.EntryBool(items[0].Entry)
	require.ErrorIs(t, err, errs.ErrTypeMismatch)
}

func TestIterator_Array(t *testing.T) {
	ctx := newArrayContext(t, WithBlockCapacity(4))
	for i := range 10 {
		require.NoError(t, ctx.AppendFloat64(Root, float64(i)/2))
	}

	idx := 0
	for item, err := range ctx.All(Root) {
		require.NoError(t, err)
		require.Empty(t, item.Key)
		require.Equal(t, idx, item.Index)

		f, err := ctx.EntryFloat64(item.Entry)
		require.NoError(t, err)
		require.InDelta(t, float64(idx)/2, f, 0)
		idx++
	}
	require.Equal(t, 10, idx)

	keys, err := ctx.Keys(Root)
	require.NoError(t, err)
	require.Empty(t, keys)
}

func TestAll_EarlyBreak(t *testing.T) {
	ctx := newArrayContext(t)
	for i := range 5 {
		require.NoError(t, ctx.AppendInt64(Root, int64(i)))
	}

	seen := 0
	for range ctx.All(Root) {
		seen++
		if seen == 2 {
			break
		}
	}
	require.Equal(t, 2, seen)
}

func TestAll_Error(t *testing.T) {
	ctx := newArrayContext(t)

	var gotErr error
	for _, err := range ctx.All(Offset(9999)) {
		gotErr = err
	}
	require.ErrorIs(t, gotErr, errs.ErrInvalidContext)
}

func TestIterator_ReleasedMidway(t *testing.T) {
	ctx, err := NewContext()
	require.NoError(t, err)
	require.NoError(t, ctx.InitArray())
	require.NoError(t, ctx.AppendBool(Root, true))
	require.NoError(t, ctx.AppendBool(Root, false))

	it, err := ctx.Iter(Root)
	require.NoError(t, err)
	require.True(t, it.Next())

	ctx.Release()
	require.False(t, it.Next())
	require.ErrorIs(t, it.Err(), errs.ErrInvalidContext)
}

// ==============================================================================
// Benchmarks
// ==============================================================================

func BenchmarkObject_GetInt64(b *testing.B) {
	ctx, err := NewContext()
	require.NoError(b, err)
	defer ctx.Release()
	require.NoError(b, ctx.InitObject())

	keys := make([]string, 64)
	for i := range keys {
		keys[i] = fmt.Sprintf("field_%d", i)
		require.NoError(b, ctx.SetInt64(Root, keys[i], int64(i)))
	}

	b.ReportAllocs()
	i := 0
	for b.Loop() {
		_, _ = ctx.GetInt64(Root, keys[i&63])
		i++
	}
}

func BenchmarkArray_Append(b *testing.B) {
	b.ReportAllocs()
	for b.Loop() {
		ctx, _ := NewContext()
		_ = ctx.InitArray()
		for i := range 256 {
			_ = ctx.AppendInt64(Root, int64(i))
		}
		ctx.Release()
	}
}
