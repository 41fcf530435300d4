package store

import (
	"fmt"
	"io"
	"slices"

	"github.com/arloliu/treeblob/endian"
	"github.com/arloliu/treeblob/errs"
	"github.com/arloliu/treeblob/format"
	"github.com/arloliu/treeblob/internal/options"
	"github.com/arloliu/treeblob/internal/pool"
	"github.com/arloliu/treeblob/section"
)

// Offset addresses a container inside the buffer of the Context that produced it.
type Offset uint32

// Root is the offset of the root container.
const Root Offset = 0

// Context is a handle to one binary store buffer.
//
// A writable Context (NewContext) is not safe for concurrent use. A read-only
// Context (NewContextFromBuffer) never modifies its buffer, so any number of
// them may share one buffer across goroutines.
type Context struct {
	buf      *pool.ByteBuffer // writable contexts only
	data     []byte           // read-only contexts only
	engine   endian.EndianEngine
	flags    uint8
	blockCap uint16
	maxSize  uint64
	readOnly bool
	released bool
}

// NewContext creates an empty writable context.
//
// The root container does not exist until InitObject or InitArray is called.
func NewContext(opts ...ContextOption) (*Context, error) {
	cfg := defaultContextConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	var flags uint8
	if cfg.bigEndian {
		flags |= section.FlagBigEndian
	}

	buf := pool.GetContextBuffer()
	if cfg.initialSize > 0 {
		buf.Grow(cfg.initialSize)
	}

	return &Context{
		buf:      buf,
		engine:   endian.Select(cfg.bigEndian),
		flags:    flags,
		blockCap: uint16(cfg.blockCapacity), //nolint:gosec
		maxSize:  cfg.maxSize,
	}, nil
}

// NewContextFromBuffer creates a read-only context over data.
//
// The root header is parsed and validated up front; byte order and block
// capacity are taken from it. data is not copied and must not be modified
// while the context is in use.
//
// Returns ErrInvalidContext for empty, truncated or malformed buffers.
func NewContextFromBuffer(data []byte) (*Context, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %w", errs.ErrInvalidContext, errs.ErrEmptyBuffer)
	}

	if uint64(len(data)) > section.MaxBufferSize {
		return nil, fmt.Errorf("%w: buffer of %d bytes exceeds 32-bit offsets", errs.ErrInvalidContext, len(data))
	}

	var hdr section.ContainerHeader
	if err := hdr.Parse(data); err != nil {
		return nil, err
	}

	if err := hdr.Validate(); err != nil {
		return nil, fmt.Errorf("%w: root: %w", errs.ErrInvalidContext, err)
	}

	return &Context{
		data:     data,
		engine:   hdr.Engine(),
		flags:    hdr.Flags,
		blockCap: hdr.BlockCapacity,
		maxSize:  uint64(len(data)),
		readOnly: true,
	}, nil
}

// Release invalidates the context and returns a writable buffer to the pool.
// Using the context afterwards yields ErrInvalidContext. Calling Release
// more than once is harmless.
func (c *Context) Release() {
	if c.released {
		return
	}
	c.released = true

	if c.buf != nil {
		pool.PutContextBuffer(c.buf)
		c.buf = nil
	}
	c.data = nil
}

// Finish returns a copy of the finished buffer and releases the context.
func (c *Context) Finish() ([]byte, error) {
	if err := c.check(); err != nil {
		return nil, err
	}

	if len(c.bytes()) == 0 {
		return nil, errs.ErrNotInitialized
	}

	out := slices.Clone(c.bytes())
	c.Release()

	return out, nil
}

// Bytes returns the current buffer contents without copying.
//
// For writable contexts the slice is only valid until the next mutation or
// Release.
func (c *Context) Bytes() []byte {
	if c.released {
		return nil
	}

	return c.bytes()
}

// WriteTo writes the current buffer contents to w.
func (c *Context) WriteTo(w io.Writer) (int64, error) {
	if err := c.check(); err != nil {
		return 0, err
	}

	if c.buf != nil {
		return c.buf.WriteTo(w)
	}

	n, err := w.Write(c.data)

	return int64(n), err
}

// Len returns the number of bytes in use.
func (c *Context) Len() int {
	return len(c.Bytes())
}

// RootType returns the type tag of the root container, or TypeInvalid
// before the root is initialized.
func (c *Context) RootType() format.Type {
	return section.PeekType(c.Bytes())
}

// ReadOnly reports whether the context wraps a caller-supplied buffer.
func (c *Context) ReadOnly() bool {
	return c.readOnly
}

// BigEndian reports whether the buffer stores fields most significant byte first.
func (c *Context) BigEndian() bool {
	return c.flags&section.FlagBigEndian != 0
}

// BlockCapacity returns the number of entry slots per block.
func (c *Context) BlockCapacity() int {
	return int(c.blockCap)
}

// InitObject primes the root container as an empty object.
func (c *Context) InitObject() error {
	return c.initRoot(format.TypeObject)
}

// InitArray primes the root container as an empty array.
func (c *Context) InitArray() error {
	return c.initRoot(format.TypeArray)
}

func (c *Context) initRoot(typ format.Type) error {
	if err := c.check(); err != nil {
		return err
	}

	if c.readOnly {
		return errs.ErrReadOnlyContext
	}

	if c.buf.Len() != 0 {
		return errs.ErrAlreadyInitialized
	}

	_, err := c.allocContainer(typ)

	return err
}

func (c *Context) bytes() []byte {
	if c.readOnly {
		return c.data
	}

	return c.buf.Bytes()
}

// check rejects use after Release.
func (c *Context) check() error {
	if c.released {
		return fmt.Errorf("%w: context released", errs.ErrInvalidContext)
	}

	return nil
}

// checkWritable rejects mutations on released, read-only or unprimed contexts.
func (c *Context) checkWritable() error {
	if err := c.check(); err != nil {
		return err
	}

	if c.readOnly {
		return errs.ErrReadOnlyContext
	}

	if c.buf.Len() == 0 {
		return errs.ErrNotInitialized
	}

	return nil
}
