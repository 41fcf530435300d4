package store

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/treeblob/errs"
	"github.com/arloliu/treeblob/format"
	"github.com/arloliu/treeblob/section"
)

func newObjectContext(t *testing.T, opts ...ContextOption) *Context {
	t.Helper()

	ctx, err := NewContext(opts...)
	require.NoError(t, err)
	require.NoError(t, ctx.InitObject())
	t.Cleanup(ctx.Release)

	return ctx
}

func newArrayContext(t *testing.T, opts ...ContextOption) *Context {
	t.Helper()

	ctx, err := NewContext(opts...)
	require.NoError(t, err)
	require.NoError(t, ctx.InitArray())
	t.Cleanup(ctx.Release)

	return ctx
}

// ==============================================================================
// Lifecycle
// ==============================================================================

func TestNewContext_Options(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		ctx, err := NewContext()
		require.NoError(t, err)
		defer ctx.Release()

		require.False(t, ctx.ReadOnly())
		require.False(t, ctx.BigEndian())
		require.Equal(t, section.DefaultBlockCapacity, ctx.BlockCapacity())
		require.Equal(t, format.TypeInvalid, ctx.RootType())
		require.Equal(t, 0, ctx.Len())
	})

	t.Run("invalid block capacity", func(t *testing.T) {
		_, err := NewContext(WithBlockCapacity(0))
		require.ErrorIs(t, err, errs.ErrInvalidOption)

		_, err = NewContext(WithBlockCapacity(section.MaxBlockCapacity + 1))
		require.ErrorIs(t, err, errs.ErrInvalidOption)
	})

	t.Run("invalid max size", func(t *testing.T) {
		_, err := NewContext(WithMaxSize(4))
		require.ErrorIs(t, err, errs.ErrInvalidOption)
	})

	t.Run("invalid initial size", func(t *testing.T) {
		_, err := NewContext(WithInitialSize(-1))
		require.ErrorIs(t, err, errs.ErrInvalidOption)
	})

	t.Run("initial size", func(t *testing.T) {
		ctx, err := NewContext(WithInitialSize(64 * 1024))
		require.NoError(t, err)
		defer ctx.Release()

		require.GreaterOrEqual(t, ctx.buf.Cap(), 64*1024)
	})
}

func TestContext_InitRoot(t *testing.T) {
	ctx, err := NewContext()
	require.NoError(t, err)
	defer ctx.Release()

	require.ErrorIs(t, ctx.SetInt64(Root, "a", 1), errs.ErrNotInitialized)

	require.NoError(t, ctx.InitArray())
	require.Equal(t, format.TypeArray, ctx.RootType())
	require.Equal(t, section.ContainerHeaderSize, ctx.Len())

	require.ErrorIs(t, ctx.InitObject(), errs.ErrAlreadyInitialized)
	require.ErrorIs(t, ctx.InitArray(), errs.ErrAlreadyInitialized)
}

func TestContext_Finish(t *testing.T) {
	t.Run("uninitialized", func(t *testing.T) {
		ctx, err := NewContext()
		require.NoError(t, err)
		defer ctx.Release()

		_, err = ctx.Finish()
		require.ErrorIs(t, err, errs.ErrNotInitialized)
	})

	t.Run("copies and releases", func(t *testing.T) {
		ctx, err := NewContext()
		require.NoError(t, err)
		require.NoError(t, ctx.InitObject())
		require.NoError(t, ctx.SetString(Root, "k", "v"))

		data, err := ctx.Finish()
		require.NoError(t, err)
		require.Equal(t, byte(format.TypeObject), data[0])

		require.Nil(t, ctx.Bytes())
		_, err = ctx.GetString(Root, "k")
		require.ErrorIs(t, err, errs.ErrInvalidContext)

		_, err = ctx.Finish()
		require.ErrorIs(t, err, errs.ErrInvalidContext)
	})
}

func TestContext_Release(t *testing.T) {
	ctx, err := NewContext()
	require.NoError(t, err)
	require.NoError(t, ctx.InitObject())

	ctx.Release()
	ctx.Release()

	require.Equal(t, format.TypeInvalid, ctx.RootType())
	require.ErrorIs(t, ctx.SetNull(Root, "a"), errs.ErrInvalidContext)
	_, err = ctx.Count(Root)
	require.ErrorIs(t, err, errs.ErrInvalidContext)
	_, err = ctx.Iter(Root)
	require.ErrorIs(t, err, errs.ErrInvalidContext)
}

func TestContext_WriteTo(t *testing.T) {
	ctx := newObjectContext(t)
	require.NoError(t, ctx.SetString(Root, "k", "v"))

	var buf bytes.Buffer
	n, err := ctx.WriteTo(&buf)
	require.NoError(t, err)
	require.Equal(t, int64(ctx.Len()), n)
	require.Equal(t, ctx.Bytes(), buf.Bytes())

	ro, err := NewContextFromBuffer(buf.Bytes())
	require.NoError(t, err)

	var out bytes.Buffer
	_, err = ro.WriteTo(&out)
	require.NoError(t, err)
	require.Equal(t, buf.Bytes(), out.Bytes())

	ro.Release()
	_, err = ro.WriteTo(&out)
	require.ErrorIs(t, err, errs.ErrInvalidContext)
}

// ==============================================================================
// Read-only contexts
// ==============================================================================

func TestNewContextFromBuffer(t *testing.T) {
	ctx := newObjectContext(t, WithBigEndian(), WithBlockCapacity(3))
	require.NoError(t, ctx.SetInt64(Root, "n", 42))
	data, err := ctx.Finish()
	require.NoError(t, err)

	ro, err := NewContextFromBuffer(data)
	require.NoError(t, err)
	defer ro.Release()

	require.True(t, ro.ReadOnly())
	require.True(t, ro.BigEndian())
	require.Equal(t, 3, ro.BlockCapacity())
	require.Equal(t, format.TypeObject, ro.RootType())

	n, err := ro.GetInt64(Root, "n")
	require.NoError(t, err)
	require.Equal(t, int64(42), n)

	require.ErrorIs(t, ro.SetInt64(Root, "n", 1), errs.ErrReadOnlyContext)
	require.ErrorIs(t, ro.InitObject(), errs.ErrReadOnlyContext)
	_, err = ro.AppendObject(Root)
	require.ErrorIs(t, err, errs.ErrReadOnlyContext)
}

func TestNewContextFromBuffer_Malformed(t *testing.T) {
	validHeader := func(typ format.Type) []byte {
		h := section.NewContainerHeader(typ, 0, section.DefaultBlockCapacity)
		return h.Bytes()
	}

	tests := []struct {
		name  string
		data  []byte
		extra error
	}{
		{name: "empty", data: nil, extra: errs.ErrEmptyBuffer},
		{name: "short", data: []byte{byte(format.TypeObject), 0, 8}},
		{name: "scalar root", data: validHeader(format.TypeString), extra: errs.ErrNotAContainer},
		{name: "unknown tag", data: append([]byte{0x7F}, validHeader(format.TypeObject)[1:]...), extra: errs.ErrNotAContainer},
		{name: "reserved flag", data: func() []byte {
			b := validHeader(format.TypeObject)
			b[1] = 0x02
			return b
		}()},
		{name: "zero capacity", data: func() []byte {
			b := validHeader(format.TypeArray)
			b[2], b[3] = 0, 0
			return b
		}()},
		{name: "count without blocks", data: func() []byte {
			b := validHeader(format.TypeArray)
			b[4] = 1
			return b
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, err := NewContextFromBuffer(tt.data)
			require.Nil(t, ctx)
			require.ErrorIs(t, err, errs.ErrInvalidContext)
			if tt.extra != nil {
				require.ErrorIs(t, err, tt.extra)
			}
		})
	}
}

func TestReadOnlyContext_DoesNotWrite(t *testing.T) {
	ctx := newObjectContext(t)
	require.NoError(t, ctx.SetString(Root, "a", "b"))
	arr, err := ctx.SetArray(Root, "list")
	require.NoError(t, err)
	require.NoError(t, ctx.AppendInt64(arr, 7))

	data, err := ctx.Finish()
	require.NoError(t, err)
	snapshot := append([]byte(nil), data...)

	ro, err := NewContextFromBuffer(data)
	require.NoError(t, err)
	for range ro.All(Root) {
	}
	_, _ = ro.GetString(Root, "a")
	_, _ = ro.ArrGetInt64(arr, 0)
	ro.Release()

	require.Equal(t, snapshot, data)
}
