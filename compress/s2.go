package compress

import (
	"github.com/klauspost/compress/s2"

	"github.com/arloliu/treeblob/format"
)

// S2Codec compresses with S2, the Snappy-compatible format from klauspost/compress.
type S2Codec struct{}

var _ Codec = S2Codec{}

// NewS2Codec returns the S2 codec.
func NewS2Codec() S2Codec {
	return S2Codec{}
}

func (S2Codec) Type() format.CompressionType {
	return format.CompressionS2
}

func (S2Codec) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return s2.Encode(nil, data), nil
}

// Decompress checks the length recorded in the S2 block header against
// rawSize before allocating.
func (S2Codec) Decompress(data []byte, rawSize int) ([]byte, error) {
	if err := checkRawSize(rawSize); err != nil {
		return nil, err
	}

	if len(data) == 0 {
		if rawSize != 0 {
			return nil, sizeMismatch(format.CompressionS2, 0, rawSize)
		}

		return []byte{}, nil
	}

	n, err := s2.DecodedLen(data)
	if err != nil {
		return nil, err
	}

	if n != rawSize {
		return nil, sizeMismatch(format.CompressionS2, n, rawSize)
	}

	return s2.Decode(make([]byte, rawSize), data)
}
