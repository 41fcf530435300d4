//go:build gozstd && cgo

package compress

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/valyala/gozstd"

	"github.com/arloliu/treeblob/format"
)

const gozstdLevel = 3

func (ZstdCodec) Compress(data []byte) ([]byte, error) {
	return gozstd.CompressLevel(nil, data, gozstdLevel), nil
}

// Decompress streams the payload into a buffer of exactly rawSize bytes and
// fails as soon as the stream would produce more.
func (ZstdCodec) Decompress(data []byte, rawSize int) ([]byte, error) {
	if err := checkRawSize(rawSize); err != nil {
		return nil, err
	}

	zr := gozstd.NewReader(bytes.NewReader(data))
	defer zr.Release()

	out := make([]byte, rawSize)
	n, err := io.ReadFull(zr, out)
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, sizeMismatch(format.CompressionZstd, n, rawSize)
	}
	if err != nil {
		return nil, fmt.Errorf("zstd decompression failed: %w", err)
	}

	var extra [1]byte
	if m, _ := zr.Read(extra[:]); m > 0 {
		return nil, sizeMismatch(format.CompressionZstd, rawSize+m, rawSize)
	}

	return out, nil
}
