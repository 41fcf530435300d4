package compress

import (
	"sync"

	"github.com/pierrec/lz4/v4"

	"github.com/arloliu/treeblob/format"
)

// lz4CompressorPool pools lz4.Compressor hash tables between calls.
var lz4CompressorPool = sync.Pool{
	New: func() any {
		return &lz4.Compressor{}
	},
}

// LZ4Codec compresses with raw LZ4 blocks.
type LZ4Codec struct{}

var _ Codec = LZ4Codec{}

// NewLZ4Codec returns the LZ4 codec.
func NewLZ4Codec() LZ4Codec {
	return LZ4Codec{}
}

func (LZ4Codec) Type() format.CompressionType {
	return format.CompressionLZ4
}

// Compress returns a single LZ4 block. Incompressible input still yields a
// valid block slightly larger than the input.
func (LZ4Codec) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	dst := make([]byte, lz4.CompressBlockBound(len(data)))

	lc, _ := lz4CompressorPool.Get().(*lz4.Compressor)
	defer lz4CompressorPool.Put(lc)

	n, err := lc.CompressBlock(data, dst)
	if err != nil {
		return nil, err
	}

	return dst[:n], nil
}

// Decompress uncompresses a block into a buffer of exactly rawSize bytes.
// LZ4 blocks carry no length, so the envelope's raw size is the only bound.
func (LZ4Codec) Decompress(data []byte, rawSize int) ([]byte, error) {
	if err := checkRawSize(rawSize); err != nil {
		return nil, err
	}

	if len(data) == 0 {
		if rawSize != 0 {
			return nil, sizeMismatch(format.CompressionLZ4, 0, rawSize)
		}

		return []byte{}, nil
	}

	buf := make([]byte, rawSize)
	n, err := lz4.UncompressBlock(data, buf)
	if err != nil {
		return nil, err
	}

	if n != rawSize {
		return nil, sizeMismatch(format.CompressionLZ4, n, rawSize)
	}

	return buf, nil
}
