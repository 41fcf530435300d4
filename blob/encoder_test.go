package blob

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/treeblob/errs"
	"github.com/arloliu/treeblob/format"
	"github.com/arloliu/treeblob/value"
)

func obj(members ...value.Member) value.Value {
	return value.ObjectOf(members...)
}

func m(key string, v value.Value) value.Member {
	return value.Member{Key: key, Value: v}
}

func encode(t *testing.T, v value.Value, opts ...EncoderOption) []byte {
	t.Helper()

	encoder, err := NewEncoder(opts...)
	require.NoError(t, err)

	data, err := encoder.Encode(v)
	require.NoError(t, err)

	return data
}

func decode(t *testing.T, data []byte, opts ...DecoderOption) value.Value {
	t.Helper()

	decoder, err := NewDecoder(data, opts...)
	require.NoError(t, err)

	v, err := decoder.Decode()
	require.NoError(t, err)

	return v
}

// ==============================================================================
// Options
// ==============================================================================

func TestNewEncoder_InvalidOptions(t *testing.T) {
	for _, opt := range []EncoderOption{
		WithBlockCapacity(0),
		WithBlockCapacity(1 << 16),
		WithMaxSize(8),
		WithInitialSize(-1),
		WithCompression(format.CompressionType(42)),
	} {
		_, err := NewEncoder(opt)
		require.ErrorIs(t, err, errs.ErrInvalidOption)
	}
}

// ==============================================================================
// Encode
// ==============================================================================

func TestEncode_RootMustBeContainer(t *testing.T) {
	encoder, err := NewEncoder()
	require.NoError(t, err)

	for _, v := range []value.Value{{}, value.Null(), value.Int64(1), value.String("s"), value.Bytes([]byte{1})} {
		_, err := encoder.Encode(v)
		require.ErrorIs(t, err, errs.ErrUnsupportedType, v.Type().String())
	}
}

func TestEncode_RootTypeByte(t *testing.T) {
	require.Equal(t, byte(format.TypeObject), encode(t, obj())[0])
	require.Equal(t, byte(format.TypeArray), encode(t, value.ArrayOf())[0])
}

func TestEncode_DropsUndefined(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	in := obj(
		m("keep", value.Int64(1)),
		m("drop", value.Value{}),
		m("list", value.ArrayOf(value.String("a"), value.Value{}, value.String("b"))),
	)

	data := encode(t, in, WithLogger(logger))
	out := decode(t, data)

	want := obj(
		m("keep", value.Int64(1)),
		m("list", value.ArrayOf(value.String("a"), value.String("b"))),
	)
	assert.True(t, want.Equal(out), "got %s", out)

	assert.Equal(t, 2, strings.Count(logs.String(), "skipping undefined value"))
	assert.Contains(t, logs.String(), "key=drop")
	assert.Contains(t, logs.String(), "index=1")
}

func TestEncode_AllocationCeiling(t *testing.T) {
	encoder, err := NewEncoder(WithMaxSize(128), WithBlockCapacity(1))
	require.NoError(t, err)

	_, err = encoder.Encode(obj(m("big", value.String(strings.Repeat("x", 256)))))
	require.ErrorIs(t, err, errs.ErrAllocationFailure)

	data, err := encoder.Encode(obj(m("small", value.Int64(1))))
	require.NoError(t, err)
	require.LessOrEqual(t, len(data), 128)
}

func TestEncodeAny(t *testing.T) {
	encoder, err := NewEncoder()
	require.NoError(t, err)

	data, err := encoder.EncodeAny(map[string]any{"b": []int{1, 2}, "a": "x"})
	require.NoError(t, err)

	out := decode(t, data)
	assert.Equal(t, []string{"a", "b"}, out.Keys())

	_, err = encoder.EncodeAny(42)
	require.ErrorIs(t, err, errs.ErrUnsupportedType)

	_, err = encoder.EncodeAny(make(chan int))
	require.ErrorIs(t, err, errs.ErrUnsupportedType)
}

func TestEncodeTo(t *testing.T) {
	tree := obj(m("a", value.Int64(1)), m("b", value.ArrayOf(value.String("x"))))

	for _, comp := range []format.CompressionType{format.CompressionNone, format.CompressionS2} {
		t.Run(comp.String(), func(t *testing.T) {
			encoder, err := NewEncoder(WithCompression(comp))
			require.NoError(t, err)

			want, err := encoder.Encode(tree)
			require.NoError(t, err)

			var buf bytes.Buffer
			n, err := encoder.EncodeTo(&buf, tree)
			require.NoError(t, err)
			require.Equal(t, int64(len(want)), n)
			require.Equal(t, want, buf.Bytes())
		})
	}

	encoder, err := NewEncoder()
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = encoder.EncodeTo(&buf, value.Int64(1))
	require.ErrorIs(t, err, errs.ErrUnsupportedType)
	require.Zero(t, buf.Len())
}

// ==============================================================================
// Benchmarks
// ==============================================================================

func benchTree() value.Value {
	items := value.NewArray()
	for i := range 100 {
		_ = items.Append(obj(
			m("id", value.Int64(int64(i))),
			m("name", value.String("item")),
			m("price", value.Float64(float64(i)*1.25)),
			m("tags", value.ArrayOf(value.String("a"), value.String("b"))),
			m("active", value.Bool(i%2 == 0)),
		))
	}

	return obj(m("items", items), m("total", value.Int64(100)))
}

func BenchmarkEncode(b *testing.B) {
	encoder, err := NewEncoder()
	require.NoError(b, err)
	tree := benchTree()

	b.ReportAllocs()
	for b.Loop() {
		_, _ = encoder.Encode(tree)
	}
}

func BenchmarkDecode(b *testing.B) {
	encoder, err := NewEncoder()
	require.NoError(b, err)
	data, err := encoder.Encode(benchTree())
	require.NoError(b, err)

	b.ReportAllocs()
	for b.Loop() {
		decoder, _ := NewDecoder(data)
		_, _ = decoder.Decode()
	}
}
