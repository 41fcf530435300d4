package store

import (
	"fmt"

	"github.com/arloliu/treeblob/errs"
	"github.com/arloliu/treeblob/internal/options"
	"github.com/arloliu/treeblob/section"
)

// ContextConfig holds the settings applied to a new writable Context.
type ContextConfig struct {
	bigEndian     bool
	blockCapacity int
	maxSize       uint64
	initialSize   int
}

// ContextOption configures a writable Context.
type ContextOption = options.Option[*ContextConfig]

func defaultContextConfig() *ContextConfig {
	return &ContextConfig{
		blockCapacity: section.DefaultBlockCapacity,
		maxSize:       section.MaxBufferSize,
	}
}

// WithLittleEndian stores fixed-width fields least significant byte first. This is the default.
func WithLittleEndian() ContextOption {
	return options.NoError(func(c *ContextConfig) {
		c.bigEndian = false
	})
}

// WithBigEndian stores fixed-width fields most significant byte first.
func WithBigEndian() ContextOption {
	return options.NoError(func(c *ContextConfig) {
		c.bigEndian = true
	})
}

// WithBlockCapacity sets the number of entry slots allocated per block.
//
// Small capacities waste less space on sparse containers; large ones make
// positional access and iteration follow fewer links. Valid range is 1..65535.
func WithBlockCapacity(n int) ContextOption {
	return options.New(func(c *ContextConfig) error {
		if n < 1 || n > section.MaxBlockCapacity {
			return fmt.Errorf("%w: block capacity %d outside [1, %d]", errs.ErrInvalidOption, n, section.MaxBlockCapacity)
		}
		c.blockCapacity = n

		return nil
	})
}

// WithMaxSize caps the buffer size in bytes. Growth beyond it fails with
// ErrAllocationFailure. The cap cannot exceed section.MaxBufferSize.
func WithMaxSize(n uint64) ContextOption {
	return options.New(func(c *ContextConfig) error {
		if n < section.ContainerHeaderSize || n > section.MaxBufferSize {
			return fmt.Errorf("%w: max size %d outside [%d, %d]", errs.ErrInvalidOption, n, section.ContainerHeaderSize, uint64(section.MaxBufferSize))
		}
		c.maxSize = n

		return nil
	})
}

// WithInitialSize preallocates n bytes of buffer capacity.
func WithInitialSize(n int) ContextOption {
	return options.New(func(c *ContextConfig) error {
		if n < 0 {
			return fmt.Errorf("%w: negative initial size %d", errs.ErrInvalidOption, n)
		}
		c.initialSize = n

		return nil
	})
}
