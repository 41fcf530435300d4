package blob

import (
	"fmt"
	"log/slog"

	"github.com/arloliu/treeblob/errs"
	"github.com/arloliu/treeblob/format"
	"github.com/arloliu/treeblob/internal/options"
	"github.com/arloliu/treeblob/section"
	"github.com/arloliu/treeblob/store"
)

// EncoderConfig holds the settings of an Encoder.
type EncoderConfig struct {
	bigEndian     bool
	blockCapacity int
	maxSize       uint64
	initialSize   int
	compression   format.CompressionType
	logger        *slog.Logger
}

// EncoderOption configures an Encoder.
type EncoderOption = options.Option[*EncoderConfig]

func defaultEncoderConfig() *EncoderConfig {
	return &EncoderConfig{
		blockCapacity: section.DefaultBlockCapacity,
		maxSize:       section.MaxBufferSize,
		compression:   format.CompressionNone,
		logger:        discardLogger,
	}
}

// storeOptions translates the config into binary store options.
func (c *EncoderConfig) storeOptions() []store.ContextOption {
	opts := []store.ContextOption{
		store.WithBlockCapacity(c.blockCapacity),
		store.WithMaxSize(c.maxSize),
		store.WithInitialSize(c.initialSize),
	}

	if c.bigEndian {
		opts = append(opts, store.WithBigEndian())
	} else {
		opts = append(opts, store.WithLittleEndian())
	}

	return opts
}

// WithLittleEndian writes fixed-width fields least significant byte first. This is the default.
func WithLittleEndian() EncoderOption {
	return options.NoError(func(c *EncoderConfig) {
		c.bigEndian = false
	})
}

// WithBigEndian writes fixed-width fields most significant byte first.
func WithBigEndian() EncoderOption {
	return options.NoError(func(c *EncoderConfig) {
		c.bigEndian = true
	})
}

// WithBlockCapacity sets the number of entry slots per container block (1..65535, default 8).
//
// Larger blocks favor wide objects and long arrays; smaller ones keep sparse
// trees compact.
func WithBlockCapacity(n int) EncoderOption {
	return options.New(func(c *EncoderConfig) error {
		if n < 1 || n > section.MaxBlockCapacity {
			return fmt.Errorf("%w: block capacity %d outside [1, %d]", errs.ErrInvalidOption, n, section.MaxBlockCapacity)
		}
		c.blockCapacity = n

		return nil
	})
}

// WithMaxSize caps the encoded buffer size in bytes. Trees that do not fit
// fail with ErrAllocationFailure.
func WithMaxSize(n uint64) EncoderOption {
	return options.New(func(c *EncoderConfig) error {
		if n < section.ContainerHeaderSize || n > section.MaxBufferSize {
			return fmt.Errorf("%w: max size %d outside [%d, %d]", errs.ErrInvalidOption, n, section.ContainerHeaderSize, uint64(section.MaxBufferSize))
		}
		c.maxSize = n

		return nil
	})
}

// WithInitialSize preallocates the working buffer, avoiding regrowth when
// the approximate output size is known.
func WithInitialSize(n int) EncoderOption {
	return options.New(func(c *EncoderConfig) error {
		if n < 0 {
			return fmt.Errorf("%w: negative initial size %d", errs.ErrInvalidOption, n)
		}
		c.initialSize = n

		return nil
	})
}

// WithCompression wraps encoded buffers in a compressed envelope.
// CompressionNone, the default, emits the raw buffer.
func WithCompression(comp format.CompressionType) EncoderOption {
	return options.New(func(c *EncoderConfig) error {
		switch comp {
		case format.CompressionNone, format.CompressionZstd, format.CompressionS2, format.CompressionLZ4:
			c.compression = comp
			return nil
		default:
			return fmt.Errorf("%w: compression %s", errs.ErrInvalidOption, comp)
		}
	})
}

// WithLogger sets the logger that receives debug records about skipped
// values. Encoders are silent by default.
func WithLogger(logger *slog.Logger) EncoderOption {
	return options.NoError(func(c *EncoderConfig) {
		if logger == nil {
			logger = discardLogger
		}
		c.logger = logger
	})
}

var discardLogger = slog.New(slog.DiscardHandler)
