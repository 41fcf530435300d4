package compress

import "github.com/arloliu/treeblob/format"

// ZstdCodec compresses with Zstandard.
//
// The implementation is selected at build time; see the package documentation.
type ZstdCodec struct{}

var _ Codec = ZstdCodec{}

// NewZstdCodec returns the Zstandard codec.
func NewZstdCodec() ZstdCodec {
	return ZstdCodec{}
}

func (ZstdCodec) Type() format.CompressionType {
	return format.CompressionZstd
}
