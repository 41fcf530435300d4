package compress

import "github.com/arloliu/treeblob/format"

// NoneCodec stores data uncompressed.
type NoneCodec struct{}

var _ Codec = NoneCodec{}

// NewNoneCodec returns the passthrough codec.
func NewNoneCodec() NoneCodec {
	return NoneCodec{}
}

func (NoneCodec) Type() format.CompressionType {
	return format.CompressionNone
}

// Compress returns data itself without copying.
func (NoneCodec) Compress(data []byte) ([]byte, error) {
	return data, nil
}

// Decompress returns data itself without copying.
func (NoneCodec) Decompress(data []byte, rawSize int) ([]byte, error) {
	if len(data) != rawSize {
		return nil, sizeMismatch(format.CompressionNone, len(data), rawSize)
	}

	return data, nil
}
