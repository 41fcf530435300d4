package section

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/arloliu/treeblob/endian"
	"github.com/arloliu/treeblob/errs"
	"github.com/arloliu/treeblob/format"
)

// Entry is one 20-byte slot of an entry block.
//
// Layout:
//
//	Bytes  | Field     | Type   | Description
//	-------|-----------|--------|------------------------------------------
//	0      | Type      | uint8  | value tag
//	1-3    | reserved  |        | zero
//	4-7    | KeyHash   | uint32 | key fingerprint, 0 for array elements
//	8-11   | KeyOffset | uint32 | offset of the encoded key, 0 for array elements
//	12-19  | Payload   | uint64 | value, data reference or child offset
//
// Payload interpretation by type:
//   - Int64, Float64 (IEEE bits), Bool (0 or 1): the value itself
//   - String, Bytes: data offset in the low 32 bits, length in the high 32 bits
//   - Object, Array: child container offset
//   - Null: zero
type Entry struct {
	Type      format.Type
	KeyHash   uint32
	KeyOffset uint32
	Payload   uint64
}

// Parse decodes an entry slot from data.
func (e *Entry) Parse(data []byte, engine endian.EndianEngine) error {
	if len(data) < EntrySize {
		return fmt.Errorf("%w: entry needs %d bytes, got %d", errs.ErrInvalidContext, EntrySize, len(data))
	}

	e.Type = format.Type(data[entryTypeOffset])
	e.KeyHash = engine.Uint32(data[entryKeyHashOffset:])
	e.KeyOffset = engine.Uint32(data[entryKeyOffsetOffset:])
	e.Payload = engine.Uint64(data[entryPayloadOffset:])

	return nil
}

// Put writes the entry into b, which must hold at least EntrySize bytes.
func (e *Entry) Put(b []byte, engine endian.EndianEngine) {
	b[entryTypeOffset] = uint8(e.Type)
	b[1], b[2], b[3] = 0, 0, 0
	engine.PutUint32(b[entryKeyHashOffset:], e.KeyHash)
	engine.PutUint32(b[entryKeyOffsetOffset:], e.KeyOffset)
	engine.PutUint64(b[entryPayloadOffset:], e.Payload)
}

// DataRef splits a String/Bytes payload into its data offset and length.
func (e *Entry) DataRef() (offset uint32, length uint32) {
	return uint32(e.Payload), uint32(e.Payload >> 32) //nolint:gosec
}

// Child returns the child container offset of an Object/Array payload.
func (e *Entry) Child() uint32 {
	return uint32(e.Payload) //nolint:gosec
}

// Int64 returns the payload as a signed integer.
func (e *Entry) Int64() int64 {
	return int64(e.Payload) //nolint:gosec
}

// Float64 returns the payload as an IEEE 754 double.
func (e *Entry) Float64() float64 {
	return math.Float64frombits(e.Payload)
}

// Bool returns the payload as a boolean.
func (e *Entry) Bool() bool {
	return e.Payload != 0
}

// DataPayload packs a data reference into a payload.
func DataPayload(offset, length uint32) uint64 {
	return uint64(offset) | uint64(length)<<32
}

// Int64Payload packs a signed integer into a payload.
func Int64Payload(v int64) uint64 {
	return uint64(v) //nolint:gosec
}

// Float64Payload packs a double into a payload.
func Float64Payload(v float64) uint64 {
	return math.Float64bits(v)
}

// BoolPayload packs a boolean into a payload.
func BoolPayload(v bool) uint64 {
	if v {
		return 1
	}

	return 0
}

// KeySize returns the encoded size of key: uvarint length followed by the bytes.
func KeySize(key string) int {
	var tmp [binary.MaxVarintLen64]byte
	return binary.PutUvarint(tmp[:], uint64(len(key))) + len(key)
}

// PutKey encodes key into b, which must hold at least KeySize(key) bytes.
func PutKey(b []byte, key string) int {
	n := binary.PutUvarint(b, uint64(len(key)))
	n += copy(b[n:], key)

	return n
}

// ReadKey decodes the key stored at offset in data.
func ReadKey(data []byte, offset uint32) (string, error) {
	raw, err := KeyBytes(data, offset)
	if err != nil {
		return "", err
	}

	return string(raw), nil
}

// KeyBytes returns the raw bytes of the key stored at offset in data without copying.
func KeyBytes(data []byte, offset uint32) ([]byte, error) {
	if uint64(offset) >= uint64(len(data)) {
		return nil, fmt.Errorf("%w: key offset %d outside buffer of %d bytes", errs.ErrInvalidContext, offset, len(data))
	}

	length, n := binary.Uvarint(data[offset:])
	if n <= 0 {
		return nil, fmt.Errorf("%w: malformed key length at %d", errs.ErrInvalidContext, offset)
	}

	start := uint64(offset) + uint64(n)
	end := start + length
	if length > uint64(len(data)) || end > uint64(len(data)) {
		return nil, fmt.Errorf("%w: key at %d overruns buffer", errs.ErrInvalidContext, offset)
	}

	return data[start:end], nil
}
