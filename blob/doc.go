// Package blob encodes value trees into treeblob buffers and decodes them back.
//
// # Encoding
//
// An Encoder walks a value.Value tree depth first and writes it into a fresh
// binary store context. The root must be an Object or an Array:
//
//	encoder, _ := blob.NewEncoder(blob.WithBlockCapacity(16))
//	data, err := encoder.Encode(value.ObjectOf(
//	    value.Member{Key: "name", Value: value.String("widget")},
//	    value.Member{Key: "count", Value: value.Int64(3)},
//	))
//
// Undefined values (the zero value.Value) inside containers are skipped and
// reported to the configured slog.Logger at debug level.
//
// # Decoding
//
// A Decoder reads the root kind from the first byte of the buffer and
// rebuilds the tree, or any container subtree via DecodeAt:
//
//	decoder, err := blob.NewDecoder(data)
//	tree, err := decoder.Decode()
//
// Bytes values are rejected with errs.ErrUnsupportedType unless the decoder
// is created with WithBytes.
//
// # Compression
//
// WithCompression, or Compress on a finished buffer, wraps the buffer in a
// small envelope that records the codec, the raw size and an xxHash64
// checksum of the raw bytes. NewDecoder unwraps envelopes transparently.
// Proxy queries operate on raw buffers only; call Decompress first.
package blob
