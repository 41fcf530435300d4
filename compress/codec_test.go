package compress

import (
	"bytes"
	"crypto/rand"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/treeblob/format"
)

func allCodecs() []Codec {
	return []Codec{NewNoneCodec(), NewZstdCodec(), NewS2Codec(), NewLZ4Codec()}
}

func sampleData() map[string][]byte {
	random := make([]byte, 4096)
	_, _ = rand.Read(random)

	return map[string][]byte{
		"empty":      {},
		"single":     {0x07},
		"repetitive": bytes.Repeat([]byte(`{"name":"widget","tags":["a","b"]}`), 200),
		"random":     random,
	}
}

func TestGetCodec(t *testing.T) {
	for _, typ := range []format.CompressionType{
		format.CompressionNone, format.CompressionZstd, format.CompressionS2, format.CompressionLZ4,
	} {
		codec, err := GetCodec(typ)
		require.NoError(t, err)
		require.Equal(t, typ, codec.Type())
	}

	_, err := GetCodec(format.CompressionType(0))
	require.Error(t, err)
	_, err = GetCodec(format.CompressionType(99))
	require.Error(t, err)
}

func TestCodec_RoundTrip(t *testing.T) {
	for _, codec := range allCodecs() {
		for name, data := range sampleData() {
			t.Run(codec.Type().String()+"/"+name, func(t *testing.T) {
				compressed, err := codec.Compress(data)
				require.NoError(t, err)

				out, err := codec.Decompress(compressed, len(data))
				require.NoError(t, err)
				require.Len(t, out, len(data))
				if len(data) > 0 {
					require.Equal(t, data, out)
				}
			})
		}
	}
}

func TestCodec_Compresses(t *testing.T) {
	data := sampleData()["repetitive"]
	for _, codec := range []Codec{NewZstdCodec(), NewS2Codec(), NewLZ4Codec()} {
		compressed, err := codec.Compress(data)
		require.NoError(t, err)
		require.Less(t, len(compressed), len(data)/4, codec.Type().String())
	}
}

func TestCodec_SizeMismatch(t *testing.T) {
	data := sampleData()["repetitive"]
	for _, codec := range allCodecs() {
		t.Run(codec.Type().String(), func(t *testing.T) {
			compressed, err := codec.Compress(data)
			require.NoError(t, err)

			_, err = codec.Decompress(compressed, len(data)+1)
			require.Error(t, err)
		})
	}
}

func TestCodec_ExpansionBoundedByRawSize(t *testing.T) {
	const (
		expanded = 64 << 20
		rawSize  = 1024
		budget   = 16 << 20
	)

	data := make([]byte, expanded)
	for _, codec := range allCodecs() {
		t.Run(codec.Type().String(), func(t *testing.T) {
			compressed, err := codec.Compress(data)
			require.NoError(t, err)

			warm, err := codec.Compress(data[:rawSize])
			require.NoError(t, err)
			_, err = codec.Decompress(warm, rawSize)
			require.NoError(t, err)

			var before, after runtime.MemStats
			runtime.ReadMemStats(&before)
			_, err = codec.Decompress(compressed, rawSize)
			runtime.ReadMemStats(&after)

			require.Error(t, err)
			require.Less(t, after.TotalAlloc-before.TotalAlloc, uint64(budget))
		})
	}
}

func TestCodec_InvalidRawSize(t *testing.T) {
	for _, codec := range []Codec{NewZstdCodec(), NewS2Codec(), NewLZ4Codec()} {
		_, err := codec.Decompress([]byte{1, 2, 3}, -1)
		require.Error(t, err, codec.Type().String())
	}
}

func TestCodec_Corrupted(t *testing.T) {
	garbage := []byte{0xde, 0xad, 0xbe, 0xef, 0x00, 0x11, 0x22, 0x33}
	for _, codec := range []Codec{NewZstdCodec(), NewS2Codec()} {
		_, err := codec.Decompress(garbage, 64)
		require.Error(t, err, codec.Type().String())
	}
}

func TestNoneCodec_Aliases(t *testing.T) {
	data := []byte("abc")
	out, err := NewNoneCodec().Compress(data)
	require.NoError(t, err)
	require.Same(t, &data[0], &out[0])
}
