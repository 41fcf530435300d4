package blob

import (
	"fmt"

	"github.com/arloliu/treeblob/compress"
	"github.com/arloliu/treeblob/endian"
	"github.com/arloliu/treeblob/errs"
	"github.com/arloliu/treeblob/format"
	"github.com/arloliu/treeblob/internal/hash"
	"github.com/arloliu/treeblob/section"
)

// Envelope layout constants.
//
// A compressed envelope wraps one finished buffer:
//
//	Bytes  | Field       | Type   | Description
//	-------|-------------|--------|------------------------------------
//	0      | Magic       | uint8  | EnvelopeMagic
//	1      | Compression | uint8  | format.CompressionType
//	2-5    | RawSize     | uint32 | uncompressed size, little endian
//	6-13   | Checksum    | uint64 | xxHash64 of the raw buffer, little endian
//	14-    | Payload     |        | codec output
//
// Raw buffers always start with a container tag, which never equals
// EnvelopeMagic, so the two are distinguished by their first byte.
const (
	EnvelopeMagic      = 0xB7
	EnvelopeHeaderSize = 14
)

// envelopeEngine encodes the envelope header, which is little endian
// regardless of the byte order of the wrapped buffer.
var envelopeEngine = endian.GetLittleEndianEngine()

// IsCompressed reports whether data starts with an envelope header.
func IsCompressed(data []byte) bool {
	return len(data) >= EnvelopeHeaderSize && data[0] == EnvelopeMagic
}

// Compress wraps a finished buffer in an envelope compressed with comp.
//
// Returns:
//   - []byte: Envelope bytes
//   - error: ErrInvalidOption for an unknown codec, ErrEmptyBuffer for empty input
func Compress(data []byte, comp format.CompressionType) ([]byte, error) {
	if len(data) == 0 {
		return nil, errs.ErrEmptyBuffer
	}

	if uint64(len(data)) > section.MaxBufferSize {
		return nil, fmt.Errorf("%w: buffer of %d bytes", errs.ErrAllocationFailure, len(data))
	}

	codec, err := compress.GetCodec(comp)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrInvalidOption, err)
	}

	payload, err := codec.Compress(data)
	if err != nil {
		return nil, fmt.Errorf("%s compression failed: %w", comp, err)
	}

	out := make([]byte, EnvelopeHeaderSize, EnvelopeHeaderSize+len(payload))
	out[0] = EnvelopeMagic
	out[1] = byte(comp)
	envelopeEngine.PutUint32(out[2:], uint32(len(data))) //nolint:gosec
	envelopeEngine.PutUint64(out[6:], hash.Sum64(data))

	return append(out, payload...), nil
}

// Decompress unwraps an envelope produced by Compress.
//
// Returns ErrInvalidEnvelope for a bad header, an unknown codec or a payload
// that does not expand to the recorded size, and ErrChecksumMismatch when the
// restored bytes differ from what was compressed.
func Decompress(data []byte) ([]byte, error) {
	return decompressLimit(data, section.MaxBufferSize)
}

// decompressLimit is Decompress with a cap on the recorded raw size.
func decompressLimit(data []byte, limit uint64) ([]byte, error) {
	if !IsCompressed(data) {
		return nil, fmt.Errorf("%w: missing envelope header", errs.ErrInvalidEnvelope)
	}

	comp := format.CompressionType(data[1])
	rawSize := envelopeEngine.Uint32(data[2:])
	checksum := envelopeEngine.Uint64(data[6:])

	if uint64(rawSize) > limit {
		return nil, fmt.Errorf("%w: raw size %d exceeds limit %d", errs.ErrInvalidEnvelope, rawSize, limit)
	}

	codec, err := compress.GetCodec(comp)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrInvalidEnvelope, err)
	}

	raw, err := codec.Decompress(data[EnvelopeHeaderSize:], int(rawSize))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrInvalidEnvelope, err)
	}

	if hash.Sum64(raw) != checksum {
		return nil, errs.ErrChecksumMismatch
	}

	return raw, nil
}
