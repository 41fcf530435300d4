// Package treeblob provides a compact binary encoding for tree-shaped values
// with two ways of reading it back: eager decoding into an in-memory tree,
// and lazy proxy queries that answer one field at a time straight from the
// buffer.
//
// # Core Features
//
//   - Objects, arrays, strings, int64, float64, booleans, null and byte blobs
//   - Insertion order of object members preserved end to end
//   - Hashed key lookups without decoding siblings or unrelated subtrees
//   - Offset addressing of nested containers for proxy queries
//   - Optional compressed envelopes (None, Zstd, S2, LZ4) with xxHash64 checksums
//   - Bridges from Go values, JSON/JSONC, YAML and CBOR
//
// # Basic Usage
//
// Encoding a Go value:
//
//	data, err := treeblob.Marshal(map[string]any{
//	    "name": "sensor-7",
//	    "x":    map[string]any{"y": []int{1, 2, 3}},
//	})
//
// Decoding it again:
//
//	tree, err := treeblob.Decode(data)
//	name, _ := tree.Get("name")
//
// Querying a single element without decoding:
//
//	x, _ := proxy.ChildOffset(data, 0, "x")
//	y, _ := proxy.ChildOffset(data, x, "y")
//	v, _ := proxy.ArrayElement(data, y, 1) // 2
//
// # Package Structure
//
// This package provides top-level wrappers for the common cases. The blob
// package holds the encoder, decoder and compressed envelope, proxy holds the
// query layer, value holds the in-memory tree and its bridges, and store
// exposes the binary store directly.
package treeblob

import (
	"github.com/arloliu/treeblob/blob"
	"github.com/arloliu/treeblob/format"
	"github.com/arloliu/treeblob/proxy"
	"github.com/arloliu/treeblob/value"
)

// NewEncoder creates an encoder with custom options.
//
// Available options:
//   - blob.WithLittleEndian() / blob.WithBigEndian()
//   - blob.WithBlockCapacity(n)
//   - blob.WithMaxSize(n) / blob.WithInitialSize(n)
//   - blob.WithCompression(format.CompressionNone|Zstd|S2|LZ4)
//   - blob.WithLogger(logger)
func NewEncoder(opts ...blob.EncoderOption) (*blob.Encoder, error) {
	return blob.NewEncoder(opts...)
}

// NewDecoder opens data for decoding. Compressed envelopes are unwrapped.
func NewDecoder(data []byte, opts ...blob.DecoderOption) (*blob.Decoder, error) {
	return blob.NewDecoder(data, opts...)
}

// Encode encodes a value tree. The root must be an object or an array.
//
// Example:
//
//	data, err := treeblob.Encode(value.ObjectOf(
//	    value.Member{Key: "a", Value: value.Int64(1)},
//	))
func Encode(v value.Value, opts ...blob.EncoderOption) ([]byte, error) {
	enc, err := blob.NewEncoder(opts...)
	if err != nil {
		return nil, err
	}

	return enc.Encode(v)
}

// Marshal converts v with value.FromAny and encodes the result.
func Marshal(v any, opts ...blob.EncoderOption) ([]byte, error) {
	enc, err := blob.NewEncoder(opts...)
	if err != nil {
		return nil, err
	}

	return enc.EncodeAny(v)
}

// EncodeJSON encodes a JSON (or JSONC) document whose top level is an object
// or an array.
func EncodeJSON(doc []byte, opts ...blob.EncoderOption) ([]byte, error) {
	v, err := value.FromJSON(doc)
	if err != nil {
		return nil, err
	}

	return Encode(v, opts...)
}

// Decode reconstructs the whole tree stored in data.
func Decode(data []byte, opts ...blob.DecoderOption) (value.Value, error) {
	dec, err := blob.NewDecoder(data, opts...)
	if err != nil {
		return value.Value{}, err
	}

	return dec.Decode()
}

// Unmarshal decodes data into plain Go values: map[string]any, []any,
// string, int64, float64, bool, []byte and nil.
func Unmarshal(data []byte, opts ...blob.DecoderOption) (any, error) {
	v, err := Decode(data, opts...)
	if err != nil {
		return nil, err
	}

	return v.Interface(), nil
}

// DecodeJSON decodes data and renders the tree as JSON, preserving member
// order.
func DecodeJSON(data []byte, opts ...blob.DecoderOption) ([]byte, error) {
	v, err := Decode(data, opts...)
	if err != nil {
		return nil, err
	}

	return v.MarshalJSON()
}

// Open returns a lazy Node over data. See proxy.Node.
func Open(data []byte) (*proxy.Node, error) {
	return proxy.Open(data)
}

// Compress wraps an encoded buffer in a compressed envelope.
func Compress(data []byte, comp format.CompressionType) ([]byte, error) {
	return blob.Compress(data, comp)
}

// Decompress unwraps a compressed envelope and verifies its checksum.
func Decompress(data []byte) ([]byte, error) {
	return blob.Decompress(data)
}

// IsCompressed reports whether data is a compressed envelope.
func IsCompressed(data []byte) bool {
	return blob.IsCompressed(data)
}
