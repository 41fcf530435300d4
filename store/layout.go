package store

import (
	"fmt"
	"math"

	"github.com/arloliu/treeblob/errs"
	"github.com/arloliu/treeblob/format"
	"github.com/arloliu/treeblob/internal/hash"
	"github.com/arloliu/treeblob/section"
)

// reserve checks that n more bytes fit under the size ceiling and returns
// the offset they will start at.
func (c *Context) reserve(n int) (uint32, error) {
	used := uint64(c.buf.Len())
	if used+uint64(n) > c.maxSize { //nolint:gosec
		return 0, fmt.Errorf("%w: need %d bytes with %d of %d in use", errs.ErrAllocationFailure, n, used, c.maxSize)
	}

	return uint32(used), nil
}

// alloc appends n zero bytes to the buffer and returns their offset.
func (c *Context) alloc(n int) (uint32, error) {
	off, err := c.reserve(n)
	if err != nil {
		return 0, err
	}
	c.buf.AppendZeros(n)

	return off, nil
}

// allocData copies p into the buffer and returns its payload reference.
// Empty data takes no space and points at the current end of the buffer.
func (c *Context) allocData(p []byte) (uint64, error) {
	off, err := c.reserve(len(p))
	if err != nil {
		return 0, err
	}
	c.buf.MustWrite(p)

	return section.DataPayload(off, uint32(len(p))), nil //nolint:gosec
}

func (c *Context) allocString(s string) (uint64, error) {
	off, err := c.reserve(len(s))
	if err != nil {
		return 0, err
	}
	c.buf.MustWriteString(s)

	return section.DataPayload(off, uint32(len(s))), nil //nolint:gosec
}

func (c *Context) allocKey(key string) (uint32, error) {
	off, err := c.alloc(section.KeySize(key))
	if err != nil {
		return 0, err
	}
	section.PutKey(c.buf.B[off:], key)

	return off, nil
}

// allocContainer appends an empty container header.
func (c *Context) allocContainer(typ format.Type) (Offset, error) {
	off, err := c.alloc(section.ContainerHeaderSize)
	if err != nil {
		return 0, err
	}

	hdr := section.NewContainerHeader(typ, c.flags, c.blockCap)
	hdr.Put(c.buf.B[off:])

	return Offset(off), nil
}

// readHeader parses and validates the container header at ofs.
func (c *Context) readHeader(ofs Offset) (section.ContainerHeader, error) {
	var hdr section.ContainerHeader

	data := c.bytes()
	if uint64(ofs)+section.ContainerHeaderSize > uint64(len(data)) {
		return hdr, fmt.Errorf("%w: container offset %d outside buffer of %d bytes", errs.ErrInvalidContext, ofs, len(data))
	}

	if err := hdr.Parse(data[ofs:]); err != nil {
		return hdr, err
	}

	if err := hdr.Validate(); err != nil {
		return hdr, fmt.Errorf("offset %d: %w", ofs, err)
	}

	if hdr.Flags != c.flags || hdr.BlockCapacity != c.blockCap {
		return hdr, fmt.Errorf("%w: container at %d disagrees with root layout", errs.ErrInvalidContext, ofs)
	}

	if hdr.Count > 0 && (hdr.FirstBlock <= uint32(ofs) || hdr.LastBlock < hdr.FirstBlock) {
		return hdr, fmt.Errorf("%w: container at %d has misplaced blocks", errs.ErrInvalidContext, ofs)
	}

	if uint64(hdr.Count) > uint64(len(data))/section.EntrySize {
		return hdr, fmt.Errorf("%w: container at %d claims %d entries", errs.ErrInvalidContext, ofs, hdr.Count)
	}

	return hdr, nil
}

// containerHeader reads the header at ofs and requires it to be of type want.
func (c *Context) containerHeader(ofs Offset, want format.Type) (section.ContainerHeader, error) {
	hdr, err := c.readHeader(ofs)
	if err != nil {
		return hdr, err
	}

	if hdr.Type != want {
		return hdr, fmt.Errorf("%w: %s at offset %d, want %s", errs.ErrTypeMismatch, hdr.Type, ofs, want)
	}

	return hdr, nil
}

func (c *Context) writeHeader(ofs Offset, hdr *section.ContainerHeader) {
	hdr.Put(c.buf.B[ofs:])
}

func (c *Context) readEntry(slot uint32) (section.Entry, error) {
	var e section.Entry

	data := c.bytes()
	if uint64(slot)+section.EntrySize > uint64(len(data)) {
		return e, fmt.Errorf("%w: entry offset %d outside buffer of %d bytes", errs.ErrInvalidContext, slot, len(data))
	}

	err := e.Parse(data[slot:], c.engine)

	return e, err
}

func (c *Context) writeEntry(slot uint32, e *section.Entry) {
	e.Put(c.buf.B[slot:], c.engine)
}

// readData returns the String/Bytes data referenced by e without copying.
func (c *Context) readData(e *section.Entry) ([]byte, error) {
	data := c.bytes()
	off, length := e.DataRef()

	end := uint64(off) + uint64(length)
	if end > uint64(len(data)) {
		return nil, fmt.Errorf("%w: data [%d, %d) outside buffer of %d bytes", errs.ErrInvalidContext, off, end, len(data))
	}

	return data[off:end], nil
}

// childOf extracts the child container offset of a container entry held by
// the container at parent. Children are always written after their parent,
// so a child offset that does not lie beyond the parent is corrupt; this
// also guarantees that recursive walks terminate.
func (c *Context) childOf(parent Offset, e *section.Entry) (Offset, error) {
	child := e.Child()
	if child <= uint32(parent) {
		return 0, fmt.Errorf("%w: child offset %d not after parent %d", errs.ErrInvalidContext, child, parent)
	}

	return Offset(child), nil
}

// checkBlock verifies that a whole entry block starting at block fits the buffer.
func (c *Context) checkBlock(block uint32) error {
	data := c.bytes()
	if block == 0 || uint64(block)+uint64(section.BlockSize(int(c.blockCap))) > uint64(len(data)) {
		return fmt.Errorf("%w: entry block %d outside buffer of %d bytes", errs.ErrInvalidContext, block, len(data))
	}

	return nil
}

// slotWalker visits the entry slots of one container in order.
type slotWalker struct {
	c        *Context
	capacity int
	count    int
	next     int
	block    uint32
}

func (c *Context) walker(hdr *section.ContainerHeader) slotWalker {
	return slotWalker{
		c:        c,
		capacity: int(hdr.BlockCapacity),
		count:    int(hdr.Count),
		block:    hdr.FirstBlock,
	}
}

// advance returns the offset of the next slot, or false once every slot was visited.
func (w *slotWalker) advance() (uint32, bool, error) {
	if w.next >= w.count {
		return 0, false, nil
	}

	pos := w.next % w.capacity
	if pos == 0 {
		if w.next > 0 {
			next, err := w.c.nextBlock(w.block)
			if err != nil {
				return 0, false, err
			}
			w.block = next
		}
		if err := w.c.checkBlock(w.block); err != nil {
			return 0, false, err
		}
	}

	slot := section.SlotOffset(w.block, pos)
	w.next++

	return slot, true, nil
}

// nextBlock follows the link of a block that already passed checkBlock.
// Blocks are only ever appended, so a link that does not point forward is
// corrupt; rejecting it rules out cycles.
func (c *Context) nextBlock(block uint32) (uint32, error) {
	next := c.engine.Uint32(c.bytes()[block:])
	if next <= block {
		return 0, fmt.Errorf("%w: block link %d -> %d does not point forward", errs.ErrInvalidContext, block, next)
	}

	return next, nil
}

// slotAt returns the offset of entry slot idx in the container described by hdr.
func (c *Context) slotAt(hdr *section.ContainerHeader, idx int) (uint32, error) {
	if idx < 0 || idx >= int(hdr.Count) {
		return 0, fmt.Errorf("%w: index %d, length %d", errs.ErrIndexOutOfRange, idx, hdr.Count)
	}

	capacity := int(hdr.BlockCapacity)
	block := hdr.FirstBlock
	for range idx / capacity {
		if err := c.checkBlock(block); err != nil {
			return 0, err
		}
		next, err := c.nextBlock(block)
		if err != nil {
			return 0, err
		}
		block = next
	}

	if err := c.checkBlock(block); err != nil {
		return 0, err
	}

	return section.SlotOffset(block, idx%capacity), nil
}

// findKey scans the object described by hdr for key. Slots are compared by
// key hash first and by key bytes only on a hash match.
func (c *Context) findKey(hdr *section.ContainerHeader, key string) (uint32, bool, error) {
	want := hash.Key(key)
	data := c.bytes()
	w := c.walker(hdr)

	for {
		slot, ok, err := w.advance()
		if err != nil || !ok {
			return 0, false, err
		}

		var e section.Entry
		if err := e.Parse(data[slot:], c.engine); err != nil {
			return 0, false, err
		}

		if e.KeyHash != want {
			continue
		}

		raw, err := section.KeyBytes(data, e.KeyOffset)
		if err != nil {
			return 0, false, err
		}

		if string(raw) == key {
			return slot, true, nil
		}
	}
}

// appendSlot reserves the next entry slot of the container at ofs, linking a
// fresh block when the last one is full, and stores the updated header.
func (c *Context) appendSlot(ofs Offset, hdr *section.ContainerHeader) (uint32, error) {
	if hdr.Count == math.MaxUint32 {
		return 0, fmt.Errorf("%w: container at %d is full", errs.ErrAllocationFailure, ofs)
	}

	capacity := int(hdr.BlockCapacity)
	pos := int(hdr.Count) % capacity
	if pos == 0 {
		block, err := c.alloc(section.BlockSize(capacity))
		if err != nil {
			return 0, err
		}

		if hdr.LastBlock != 0 {
			c.engine.PutUint32(c.buf.B[hdr.LastBlock:], block)
		} else {
			hdr.FirstBlock = block
		}
		hdr.LastBlock = block
	}

	hdr.Count++
	c.writeHeader(ofs, hdr)

	return section.SlotOffset(hdr.LastBlock, pos), nil
}
