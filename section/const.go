package section

import "math"

// Fixed sizes of the on-buffer structures, in bytes.
const (
	ContainerHeaderSize = 16 // container header at every container offset
	BlockLinkSize       = 4  // next-block link at the start of each entry block
	EntrySize           = 20 // one entry slot inside a block
)

// Header field positions inside a container header.
const (
	headerTypeOffset       = 0
	headerFlagsOffset      = 1
	headerCapacityOffset   = 2
	headerCountOffset      = 4
	headerFirstBlockOffset = 8
	headerLastBlockOffset  = 12
)

// Entry field positions inside an entry slot.
const (
	entryTypeOffset      = 0
	entryKeyHashOffset   = 4
	entryKeyOffsetOffset = 8
	entryPayloadOffset   = 12
)

const (
	// DefaultBlockCapacity is the number of entry slots per block unless configured otherwise.
	DefaultBlockCapacity = 8
	// MaxBlockCapacity is the largest block capacity the header can record.
	MaxBlockCapacity = math.MaxUint16
	// MaxBufferSize is the largest buffer addressable by 32-bit offsets.
	MaxBufferSize = math.MaxUint32
)

// Container header flag bits.
const (
	FlagBigEndian    = 0x01 // 0=little, 1=big
	FlagReservedMask = 0xFE // must be zero
)

// BlockSize returns the byte size of an entry block holding capacity slots.
func BlockSize(capacity int) int {
	return BlockLinkSize + capacity*EntrySize
}

// SlotOffset returns the position of slot within the block starting at block.
func SlotOffset(block uint32, slot int) uint32 {
	return block + BlockLinkSize + uint32(slot*EntrySize) //nolint:gosec
}
