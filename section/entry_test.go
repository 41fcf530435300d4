package section

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/treeblob/endian"
	"github.com/arloliu/treeblob/errs"
	"github.com/arloliu/treeblob/format"
)

func TestEntry_RoundTrip(t *testing.T) {
	engines := []endian.EndianEngine{endian.GetLittleEndianEngine(), endian.GetBigEndianEngine()}
	for _, engine := range engines {
		e := Entry{
			Type:      format.TypeString,
			KeyHash:   0xDEADBEEF,
			KeyOffset: 42,
			Payload:   DataPayload(128, 5),
		}

		b := make([]byte, EntrySize)
		e.Put(b, engine)

		var parsed Entry
		require.NoError(t, parsed.Parse(b, engine))
		require.Equal(t, e, parsed)

		off, length := parsed.DataRef()
		require.Equal(t, uint32(128), off)
		require.Equal(t, uint32(5), length)
	}
}

func TestEntry_Payloads(t *testing.T) {
	e := Entry{Payload: Int64Payload(-7)}
	require.Equal(t, int64(-7), e.Int64())

	e.Payload = Int64Payload(math.MinInt64)
	require.Equal(t, int64(math.MinInt64), e.Int64())

	e.Payload = Float64Payload(1.5)
	require.InDelta(t, 1.5, e.Float64(), 0)

	e.Payload = Float64Payload(math.Inf(-1))
	require.True(t, math.IsInf(e.Float64(), -1))

	e.Payload = BoolPayload(true)
	require.True(t, e.Bool())
	e.Payload = BoolPayload(false)
	require.False(t, e.Bool())

	e.Payload = uint64(4096)
	require.Equal(t, uint32(4096), e.Child())
}

func TestEntry_ParseShort(t *testing.T) {
	var e Entry
	err := e.Parse(make([]byte, EntrySize-1), endian.GetLittleEndianEngine())
	require.ErrorIs(t, err, errs.ErrInvalidContext)
}

func TestKey_RoundTrip(t *testing.T) {
	keys := []string{"a", "name", "ключ", string(make([]byte, 300))}
	for _, key := range keys {
		b := make([]byte, 3+KeySize(key))
		n := PutKey(b[3:], key)
		require.Equal(t, KeySize(key), n)

		got, err := ReadKey(b, 3)
		require.NoError(t, err)
		require.Equal(t, key, got)
	}
}

func TestReadKey_Malformed(t *testing.T) {
	t.Run("offset outside buffer", func(t *testing.T) {
		_, err := ReadKey([]byte{1, 'a'}, 2)
		require.ErrorIs(t, err, errs.ErrInvalidContext)
	})

	t.Run("length overruns buffer", func(t *testing.T) {
		_, err := ReadKey([]byte{10, 'a', 'b'}, 0)
		require.ErrorIs(t, err, errs.ErrInvalidContext)
	})

	t.Run("truncated varint", func(t *testing.T) {
		_, err := ReadKey([]byte{0x80}, 0)
		require.ErrorIs(t, err, errs.ErrInvalidContext)
	})
}
