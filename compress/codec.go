package compress

import (
	"fmt"

	"github.com/arloliu/treeblob/format"
)

// MaxDecompressedSize bounds the raw size a codec will allocate for. It
// matches the largest buffer addressable by 32-bit offsets.
const MaxDecompressedSize = 1<<32 - 1

// Codec compresses and decompresses whole treeblob buffers.
type Codec interface {
	// Type returns the compression type recorded in envelopes.
	Type() format.CompressionType

	// Compress returns the compressed form of data. The input is not
	// modified; the result may alias it only for the None codec.
	Compress(data []byte) ([]byte, error)

	// Decompress restores data that expands to exactly rawSize bytes.
	// A payload that decodes to any other size is an error.
	Decompress(data []byte, rawSize int) ([]byte, error)
}

var builtinCodecs = map[format.CompressionType]Codec{
	format.CompressionNone: NewNoneCodec(),
	format.CompressionZstd: NewZstdCodec(),
	format.CompressionS2:   NewS2Codec(),
	format.CompressionLZ4:  NewLZ4Codec(),
}

// GetCodec returns the built-in codec for compressionType.
func GetCodec(compressionType format.CompressionType) (Codec, error) {
	if codec, ok := builtinCodecs[compressionType]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("unsupported compression type: %s (%d)", compressionType, uint8(compressionType))
}

func checkRawSize(rawSize int) error {
	if rawSize < 0 || uint64(rawSize) > MaxDecompressedSize {
		return fmt.Errorf("raw size %d out of range", rawSize)
	}

	return nil
}

func sizeMismatch(codec format.CompressionType, got, want int) error {
	return fmt.Errorf("%s payload expands to %d bytes, want %d", codec, got, want)
}
