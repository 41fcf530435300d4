package blob

import (
	"fmt"
	"slices"

	"github.com/arloliu/treeblob/errs"
	"github.com/arloliu/treeblob/format"
	"github.com/arloliu/treeblob/internal/options"
	"github.com/arloliu/treeblob/section"
	"github.com/arloliu/treeblob/store"
	"github.com/arloliu/treeblob/value"
)

// DecoderConfig holds the settings of a Decoder.
type DecoderConfig struct {
	allowBytes          bool
	maxDecompressedSize uint64
}

// DecoderOption configures a Decoder.
type DecoderOption = options.Option[*DecoderConfig]

// WithBytes makes the decoder materialize Bytes values instead of rejecting
// them with ErrUnsupportedType.
func WithBytes() DecoderOption {
	return options.NoError(func(c *DecoderConfig) {
		c.allowBytes = true
	})
}

// WithMaxDecompressedSize caps the raw size a compressed envelope may
// declare. The default is the largest addressable buffer.
func WithMaxDecompressedSize(n uint64) DecoderOption {
	return options.New(func(c *DecoderConfig) error {
		if n < section.ContainerHeaderSize || n > section.MaxBufferSize {
			return fmt.Errorf("%w: max decompressed size %d", errs.ErrInvalidOption, n)
		}
		c.maxDecompressedSize = n

		return nil
	})
}

// Decoder reconstructs value trees from treeblob buffers.
//
// A Decoder wraps a read-only store context and can decode the whole tree or
// any container subtree any number of times. It never writes to the buffer,
// and concurrent calls on one Decoder are safe.
type Decoder struct {
	ctx *store.Context
	cfg *DecoderConfig
}

// NewDecoder opens data for decoding.
//
// Compressed envelopes are unwrapped and verified first; raw buffers are used
// in place without copying and must not be modified while the decoder is in use.
//
// Returns:
//   - *Decoder: Decoder bound to the buffer
//   - error: ErrInvalidContext for malformed buffers, envelope errors for
//     damaged compressed input
func NewDecoder(data []byte, opts ...DecoderOption) (*Decoder, error) {
	cfg := &DecoderConfig{maxDecompressedSize: section.MaxBufferSize}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	if IsCompressed(data) {
		raw, err := decompressLimit(data, cfg.maxDecompressedSize)
		if err != nil {
			return nil, err
		}
		data = raw
	}

	ctx, err := store.NewContextFromBuffer(data)
	if err != nil {
		return nil, err
	}

	return &Decoder{ctx: ctx, cfg: cfg}, nil
}

// Bytes returns the raw (decompressed) buffer the decoder reads from.
func (d *Decoder) Bytes() []byte {
	return d.ctx.Bytes()
}

// RootType returns the root container kind, TypeObject or TypeArray.
func (d *Decoder) RootType() format.Type {
	return d.ctx.RootType()
}

// Decode reconstructs the whole tree, starting from the actual root kind.
func (d *Decoder) Decode() (value.Value, error) {
	return d.DecodeAt(store.Root)
}

// DecodeAt reconstructs the container subtree at ofs.
//
// The walk visits only entries reachable from ofs. A Bytes value (unless
// WithBytes is set) or an unknown tag aborts the whole decode with
// ErrUnsupportedType; no partial tree is returned.
func (d *Decoder) DecodeAt(ofs store.Offset) (value.Value, error) {
	typ, err := d.ctx.ContainerType(ofs)
	if err != nil {
		return value.Value{}, err
	}

	var seen containerSet
	seen.add(ofs)

	return d.decodeContainer(&seen, ofs, typ)
}

func (d *Decoder) decodeContainer(seen *containerSet, ofs store.Offset, typ format.Type) (value.Value, error) {
	it, err := d.ctx.Iter(ofs)
	if err != nil {
		return value.Value{}, err
	}

	out := value.NewArray()
	if typ == format.TypeObject {
		out = value.NewObject()
	}

	for it.Next() {
		item := it.Item()

		v, err := d.decodeItem(seen, item)
		if err != nil {
			if typ == format.TypeObject {
				return value.Value{}, fmt.Errorf("key %q: %w", item.Key, err)
			}

			return value.Value{}, fmt.Errorf("index %d: %w", item.Index, err)
		}

		if typ == format.TypeObject {
			err = out.Set(item.Key, v)
		} else {
			err = out.Append(v)
		}
		if err != nil {
			return value.Value{}, fmt.Errorf("%w: %w", errs.ErrInvalidContext, err)
		}
	}

	if err := it.Err(); err != nil {
		return value.Value{}, err
	}

	return out, nil
}

func (d *Decoder) decodeItem(seen *containerSet, item store.Item) (value.Value, error) {
	switch item.Type {
	case format.TypeNull:
		return value.Null(), nil
	case format.TypeBool:
		b, err := d.ctx.EntryBool(item.Entry)
		return value.Bool(b), err
	case format.TypeInt64:
		i, err := d.ctx.EntryInt64(item.Entry)
		return value.Int64(i), err
	case format.TypeFloat64:
		f, err := d.ctx.EntryFloat64(item.Entry)
		return value.Float64(f), err
	case format.TypeString:
		s, err := d.ctx.EntryString(item.Entry)
		return value.String(s), err
	case format.TypeBytes:
		if !d.cfg.allowBytes {
			return value.Value{}, fmt.Errorf("%w: bytes", errs.ErrUnsupportedType)
		}
		raw, err := d.ctx.EntryBytes(item.Entry)

		return value.Bytes(raw), err
	case format.TypeObject, format.TypeArray:
		childType, err := d.ctx.ContainerType(item.Offset)
		if err != nil {
			return value.Value{}, err
		}

		if childType != item.Type {
			return value.Value{}, fmt.Errorf("%w: entry tagged %s points at %s", errs.ErrInvalidContext, item.Type, childType)
		}

		if !seen.add(item.Offset) {
			return value.Value{}, fmt.Errorf("%w: container at %d referenced more than once", errs.ErrInvalidContext, item.Offset)
		}

		return d.decodeContainer(seen, item.Offset, item.Type)
	default:
		return value.Value{}, fmt.Errorf("%w: tag 0x%02x", errs.ErrUnsupportedType, uint8(item.Type))
	}
}

// containerSet records the containers visited by one decode.
//
// Every container is referenced by exactly one entry, so meeting a container
// twice means the buffer is corrupt. Offsets seen in increasing order, the
// layout the encoder produces, are kept in a sorted slice and the rest in a
// map.
type containerSet struct {
	ordered []store.Offset
	other   map[store.Offset]struct{}
}

// add records ofs and reports whether it was not present before.
func (s *containerSet) add(ofs store.Offset) bool {
	if n := len(s.ordered); n == 0 || ofs > s.ordered[n-1] {
		s.ordered = append(s.ordered, ofs)
		return true
	}

	if _, found := slices.BinarySearch(s.ordered, ofs); found {
		return false
	}

	if _, found := s.other[ofs]; found {
		return false
	}

	if s.other == nil {
		s.other = make(map[store.Offset]struct{})
	}
	s.other[ofs] = struct{}{}

	return true
}
