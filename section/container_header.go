package section

import (
	"fmt"

	"github.com/arloliu/treeblob/endian"
	"github.com/arloliu/treeblob/errs"
	"github.com/arloliu/treeblob/format"
)

// ContainerHeader is the fixed 16-byte header found at every container offset.
//
// Layout:
//
//	Bytes  | Field         | Type   | Description
//	-------|---------------|--------|--------------------------------------
//	0      | Type          | uint8  | TypeObject or TypeArray
//	1      | Flags         | uint8  | bit 0: big endian, others reserved
//	2-3    | BlockCapacity | uint16 | entry slots per block
//	4-7    | Count         | uint32 | number of members/elements
//	8-11   | FirstBlock    | uint32 | offset of the first entry block, 0 if none
//	12-15  | LastBlock     | uint32 | offset of the last entry block, 0 if none
//
// Byte 0 of the root header is byte 0 of the buffer, which is how the root
// type is read without parsing anything else.
type ContainerHeader struct {
	Type          format.Type
	Flags         uint8
	BlockCapacity uint16
	Count         uint32
	FirstBlock    uint32
	LastBlock     uint32
}

// NewContainerHeader returns an empty header for a container of type typ.
func NewContainerHeader(typ format.Type, flags uint8, blockCapacity uint16) ContainerHeader {
	return ContainerHeader{
		Type:          typ,
		Flags:         flags,
		BlockCapacity: blockCapacity,
	}
}

// Engine returns the byte order selected by the header flags.
func (h *ContainerHeader) Engine() endian.EndianEngine {
	return endian.Select(h.Flags&FlagBigEndian != 0)
}

// Parse decodes a header from data.
//
// The flags byte is read first because it selects the byte order of the
// remaining fields.
func (h *ContainerHeader) Parse(data []byte) error {
	if len(data) < ContainerHeaderSize {
		return fmt.Errorf("%w: container header needs %d bytes, got %d", errs.ErrInvalidContext, ContainerHeaderSize, len(data))
	}

	h.Type = format.Type(data[headerTypeOffset])
	h.Flags = data[headerFlagsOffset]

	engine := h.Engine()
	h.BlockCapacity = engine.Uint16(data[headerCapacityOffset:])
	h.Count = engine.Uint32(data[headerCountOffset:])
	h.FirstBlock = engine.Uint32(data[headerFirstBlockOffset:])
	h.LastBlock = engine.Uint32(data[headerLastBlockOffset:])

	return nil
}

// Validate checks the structural invariants of a parsed header.
//
// A header whose type byte is not a container kind yields ErrNotAContainer;
// every other violation is ErrInvalidContext.
func (h *ContainerHeader) Validate() error {
	if !h.Type.IsContainer() {
		return fmt.Errorf("%w: tag %s", errs.ErrNotAContainer, h.Type)
	}

	if h.Flags&FlagReservedMask != 0 {
		return fmt.Errorf("%w: reserved header flags 0x%02x", errs.ErrInvalidContext, h.Flags)
	}

	if h.BlockCapacity == 0 {
		return fmt.Errorf("%w: zero block capacity", errs.ErrInvalidContext)
	}

	if h.Count > 0 && (h.FirstBlock == 0 || h.LastBlock == 0) {
		return fmt.Errorf("%w: %d entries without blocks", errs.ErrInvalidContext, h.Count)
	}

	return nil
}

// Put writes the header into b, which must hold at least ContainerHeaderSize bytes.
func (h *ContainerHeader) Put(b []byte) {
	engine := h.Engine()

	b[headerTypeOffset] = uint8(h.Type)
	b[headerFlagsOffset] = h.Flags
	engine.PutUint16(b[headerCapacityOffset:], h.BlockCapacity)
	engine.PutUint32(b[headerCountOffset:], h.Count)
	engine.PutUint32(b[headerFirstBlockOffset:], h.FirstBlock)
	engine.PutUint32(b[headerLastBlockOffset:], h.LastBlock)
}

// Bytes serializes the header into a new slice.
func (h *ContainerHeader) Bytes() []byte {
	b := make([]byte, ContainerHeaderSize)
	h.Put(b)

	return b
}

// PeekType returns the type tag at the start of data without parsing the header.
// An empty slice yields TypeInvalid.
func PeekType(data []byte) format.Type {
	if len(data) == 0 {
		return format.TypeInvalid
	}

	return format.Type(data[headerTypeOffset])
}
