// Package compress provides the codecs used by compressed treeblob envelopes.
//
// A finished treeblob buffer is already compact, but keys and strings repeat
// across large trees, so general-purpose compression still pays off for
// storage and transport. Four codecs are available:
//
//   - None: passthrough
//   - Zstd: best ratio, moderate speed
//   - S2: balanced ratio and speed
//   - LZ4: fastest decompression
//
// The envelope records the uncompressed size, so every Decompress call
// receives it and can allocate the output exactly once and reject payloads
// that expand to anything else.
//
// Zstd is implemented with github.com/klauspost/compress/zstd by default.
// Building with the gozstd tag (and cgo enabled) switches to the cgo binding
// github.com/valyala/gozstd.
//
// All codecs are stateless values backed by pooled encoders and decoders and
// are safe for concurrent use.
package compress
