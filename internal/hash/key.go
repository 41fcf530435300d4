package hash

import "github.com/cespare/xxhash/v2"

// Key returns the 32-bit key fingerprint stored in object entry slots.
//
// It is the low half of the key's xxHash64; lookups compare the fingerprint
// first and only then the key bytes.
func Key(key string) uint32 {
	return uint32(xxhash.Sum64String(key)) //nolint:gosec
}

// Sum64 computes the xxHash64 of data.
func Sum64(data []byte) uint64 {
	return xxhash.Sum64(data)
}
