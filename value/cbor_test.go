package value

import (
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/treeblob/errs"
)

func TestCBOR_RoundTrip(t *testing.T) {
	v := ObjectOf(
		Member{"b", Int64(-3)},
		Member{"a", Bytes([]byte("hi"))},
		Member{"c", ArrayOf(Float64(1.5), String("x"), Bool(true), Null(), Int64(5))},
	)

	out, err := ToCBOR(v)
	require.NoError(t, err)

	back, err := FromCBOR(out)
	require.NoError(t, err)

	// maps come back in sorted key order
	want := ObjectOf(
		Member{"a", Bytes([]byte("hi"))},
		Member{"b", Int64(-3)},
		Member{"c", ArrayOf(Float64(1.5), String("x"), Bool(true), Null(), Int64(5))},
	)
	assert.True(t, want.Equal(back), "got %s", back)
}

func TestCBOR_Deterministic(t *testing.T) {
	v1 := ObjectOf(Member{"x", Int64(1)}, Member{"y", Int64(2)})
	v2 := ObjectOf(Member{"y", Int64(2)}, Member{"x", Int64(1)})

	b1, err := ToCBOR(v1)
	require.NoError(t, err)
	b2, err := ToCBOR(v2)
	require.NoError(t, err)
	assert.Equal(t, b1, b2)
}

func TestFromCBOR_Errors(t *testing.T) {
	_, err := FromCBOR([]byte{0xFF})
	require.Error(t, err)

	big, err := cbor.Marshal(uint64(1) << 63)
	require.NoError(t, err)
	_, err = FromCBOR(big)
	require.ErrorIs(t, err, errs.ErrUnsupportedType)

	_, err = ToCBOR(Value{})
	require.ErrorIs(t, err, errs.ErrUnsupportedType)
}
