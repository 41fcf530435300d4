package treeblob

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/treeblob/blob"
	"github.com/arloliu/treeblob/errs"
	"github.com/arloliu/treeblob/format"
	"github.com/arloliu/treeblob/proxy"
	"github.com/arloliu/treeblob/store"
	"github.com/arloliu/treeblob/value"
)

func TestEncodeDecode_NumberKinds(t *testing.T) {
	tests := []struct {
		name string
		in   value.Value
		kind format.Type
	}{
		{"integer", value.Int64(1), format.TypeInt64},
		{"double", value.Float64(1.5), format.TypeFloat64},
		{"integral double", value.Float64(2), format.TypeFloat64},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := Encode(value.ObjectOf(value.Member{Key: "a", Value: tt.in}))
			require.NoError(t, err)

			out, err := Decode(data)
			require.NoError(t, err)

			got, ok := out.Get("a")
			require.True(t, ok)
			require.Equal(t, tt.kind, got.Type())
			require.True(t, tt.in.Equal(got))
		})
	}
}

func TestEncode_RejectsScalarRoot(t *testing.T) {
	for _, v := range []value.Value{value.Int64(42), value.String("s"), value.Null(), {}} {
		_, err := Encode(v)
		require.ErrorIs(t, err, errs.ErrUnsupportedType)
	}

	_, err := Marshal("plain string")
	require.ErrorIs(t, err, errs.ErrUnsupportedType)
}

func TestMarshalUnmarshal(t *testing.T) {
	type reading struct {
		Sensor  string    `json:"sensor"`
		Values  []float64 `json:"values"`
		Enabled bool      `json:"enabled"`
		Notify  func()    `json:"notify"`
		Note    string    `json:"note,omitempty"`
	}

	data, err := Marshal(reading{Sensor: "s1", Values: []float64{0.5, 2}, Enabled: true})
	require.NoError(t, err)

	out, err := Unmarshal(data)
	require.NoError(t, err)
	require.Equal(t, map[string]any{
		"sensor":  "s1",
		"values":  []any{0.5, float64(2)},
		"enabled": true,
	}, out)
}

func TestEncodeJSON_PreservesOrder(t *testing.T) {
	doc := []byte(`{
		// sensor reading
		"zeta": 1,
		"alpha": {"y": [1, 2.5, "three", null, false]},
		"mid": [],
	}`)

	data, err := EncodeJSON(doc)
	require.NoError(t, err)

	out, err := DecodeJSON(data)
	require.NoError(t, err)
	require.JSONEq(t, `{"zeta":1,"alpha":{"y":[1,2.5,"three",null,false]},"mid":[]}`, string(out))
	require.Equal(t, `{"zeta":1,"alpha":{"y":[1,2.5,"three",null,false]},"mid":[]}`, string(out))

	_, err = EncodeJSON([]byte(`{"a":`))
	require.Error(t, err)
}

func TestCompressedRoundTrip(t *testing.T) {
	data, err := Marshal(map[string]any{"a": []int{1, 2, 3}}, blob.WithCompression(format.CompressionS2))
	require.NoError(t, err)
	require.True(t, IsCompressed(data))

	out, err := Unmarshal(data)
	require.NoError(t, err)
	require.Equal(t, map[string]any{"a": []any{int64(1), int64(2), int64(3)}}, out)

	raw, err := Decompress(data)
	require.NoError(t, err)
	require.False(t, IsCompressed(raw))

	again, err := Compress(raw, format.CompressionLZ4)
	require.NoError(t, err)

	dec, err := NewDecoder(again)
	require.NoError(t, err)
	require.Equal(t, format.TypeObject, dec.RootType())
}

func TestOpenMatchesProxy(t *testing.T) {
	data, err := EncodeJSON([]byte(`{"x":{"y":[1,2,3]}}`))
	require.NoError(t, err)

	root, err := Open(data)
	require.NoError(t, err)

	x, err := root.Get("x")
	require.NoError(t, err)
	y, err := x.Node().Get("y")
	require.NoError(t, err)

	o1, err := proxy.ChildOffset(data, store.Root, "x")
	require.NoError(t, err)
	o2, err := proxy.ChildOffset(data, o1, "y")
	require.NoError(t, err)

	require.Equal(t, o1, x.Node().Offset())
	require.Equal(t, o2, y.Node().Offset())
}

func TestNewEncoder_Options(t *testing.T) {
	_, err := NewEncoder(blob.WithBlockCapacity(0))
	require.ErrorIs(t, err, errs.ErrInvalidOption)

	enc, err := NewEncoder(blob.WithBigEndian(), blob.WithBlockCapacity(2))
	require.NoError(t, err)

	data, err := enc.Encode(value.ArrayOf(value.Bool(true), value.Null(), value.Int64(-1)))
	require.NoError(t, err)

	out, err := Unmarshal(data)
	require.NoError(t, err)
	require.Equal(t, []any{true, nil, int64(-1)}, out)
}
