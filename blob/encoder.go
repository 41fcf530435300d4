package blob

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/arloliu/treeblob/errs"
	"github.com/arloliu/treeblob/format"
	"github.com/arloliu/treeblob/internal/options"
	"github.com/arloliu/treeblob/store"
	"github.com/arloliu/treeblob/value"
)

// Encoder serializes value trees into treeblob buffers.
//
// An Encoder holds only configuration, so one instance may be shared by
// many goroutines; every Encode call works on its own store context.
type Encoder struct {
	cfg *EncoderConfig
}

// NewEncoder creates an Encoder.
//
// Parameters:
//   - opts: Encoder options (byte order, block capacity, size limit, compression, logger)
//
// Returns:
//   - *Encoder: Encoder ready for use
//   - error: ErrInvalidOption if an option is out of range
func NewEncoder(opts ...EncoderOption) (*Encoder, error) {
	cfg := defaultEncoderConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return &Encoder{cfg: cfg}, nil
}

// Encode serializes v, which must be an Object or an Array.
//
// The tree is written depth first in pre-order: object members in insertion
// order, array elements by index. Undefined members and elements are
// skipped. Any store failure aborts the encode and no partial buffer is
// returned.
//
// Returns:
//   - []byte: The finished buffer, or a compressed envelope when WithCompression is set
//   - error: ErrUnsupportedType for a non-container root, ErrAllocationFailure
//     when the size limit is exceeded
func (e *Encoder) Encode(v value.Value) ([]byte, error) {
	ctx, err := e.build(v)
	if err != nil {
		return nil, err
	}

	data, err := ctx.Finish()
	if err != nil {
		return nil, err
	}

	if e.cfg.compression == format.CompressionNone {
		return data, nil
	}

	return Compress(data, e.cfg.compression)
}

// EncodeTo serializes v like Encode and writes the result to w. Without
// compression the buffer is written straight from the encoding context,
// skipping the copy Encode makes.
func (e *Encoder) EncodeTo(w io.Writer, v value.Value) (int64, error) {
	if e.cfg.compression != format.CompressionNone {
		data, err := e.Encode(v)
		if err != nil {
			return 0, err
		}

		n, err := w.Write(data)

		return int64(n), err
	}

	ctx, err := e.build(v)
	if err != nil {
		return 0, err
	}
	defer ctx.Release()

	return ctx.WriteTo(w)
}

// build encodes v into a fresh context. The context is released on failure.
func (e *Encoder) build(v value.Value) (*store.Context, error) {
	if !v.IsContainer() {
		return nil, fmt.Errorf("%w: root must be an object or array, got %s", errs.ErrUnsupportedType, v.Type().Name())
	}

	ctx, err := store.NewContext(e.cfg.storeOptions()...)
	if err != nil {
		return nil, err
	}

	if err := e.encodeRoot(ctx, v); err != nil {
		ctx.Release()
		return nil, err
	}

	return ctx, nil
}

// EncodeAny converts v with value.FromAny and encodes the result.
func (e *Encoder) EncodeAny(v any) ([]byte, error) {
	tree, err := value.FromAny(v)
	if err != nil {
		return nil, err
	}

	return e.Encode(tree)
}

func (e *Encoder) encodeRoot(ctx *store.Context, v value.Value) error {
	if v.Type() == format.TypeObject {
		if err := ctx.InitObject(); err != nil {
			return err
		}

		return e.encodeObject(ctx, store.Root, v)
	}

	if err := ctx.InitArray(); err != nil {
		return err
	}

	return e.encodeArray(ctx, store.Root, v)
}

func (e *Encoder) encodeObject(ctx *store.Context, ofs store.Offset, obj value.Value) error {
	for key, member := range obj.All() {
		if err := e.setMember(ctx, ofs, key, member); err != nil {
			return fmt.Errorf("key %q: %w", key, err)
		}
	}

	return nil
}

func (e *Encoder) setMember(ctx *store.Context, ofs store.Offset, key string, v value.Value) error {
	switch v.Type() {
	case format.TypeNull:
		return ctx.SetNull(ofs, key)
	case format.TypeBool:
		b, _ := v.AsBool()
		return ctx.SetBool(ofs, key, b)
	case format.TypeInt64:
		i, _ := v.AsInt64()
		return ctx.SetInt64(ofs, key, i)
	case format.TypeFloat64:
		f, _ := v.AsFloat64()
		return ctx.SetFloat64(ofs, key, f)
	case format.TypeString:
		s, _ := v.AsString()
		return ctx.SetString(ofs, key, s)
	case format.TypeBytes:
		raw, _ := v.AsBytes()
		return ctx.SetBytes(ofs, key, raw)
	case format.TypeObject:
		child, err := ctx.SetObject(ofs, key)
		if err != nil {
			return err
		}

		return e.encodeObject(ctx, child, v)
	case format.TypeArray:
		child, err := ctx.SetArray(ofs, key)
		if err != nil {
			return err
		}

		return e.encodeArray(ctx, child, v)
	default:
		e.skipped(slog.String("key", key), uint32(ofs))
		return nil
	}
}

func (e *Encoder) encodeArray(ctx *store.Context, ofs store.Offset, arr value.Value) error {
	for i, elem := range arr.Elements() {
		if err := e.appendElement(ctx, ofs, i, elem); err != nil {
			return fmt.Errorf("index %d: %w", i, err)
		}
	}

	return nil
}

func (e *Encoder) appendElement(ctx *store.Context, ofs store.Offset, idx int, v value.Value) error {
	switch v.Type() {
	case format.TypeNull:
		return ctx.AppendNull(ofs)
	case format.TypeBool:
		b, _ := v.AsBool()
		return ctx.AppendBool(ofs, b)
	case format.TypeInt64:
		i, _ := v.AsInt64()
		return ctx.AppendInt64(ofs, i)
	case format.TypeFloat64:
		f, _ := v.AsFloat64()
		return ctx.AppendFloat64(ofs, f)
	case format.TypeString:
		s, _ := v.AsString()
		return ctx.AppendString(ofs, s)
	case format.TypeBytes:
		raw, _ := v.AsBytes()
		return ctx.AppendBytes(ofs, raw)
	case format.TypeObject:
		child, err := ctx.AppendObject(ofs)
		if err != nil {
			return err
		}

		return e.encodeObject(ctx, child, v)
	case format.TypeArray:
		child, err := ctx.AppendArray(ofs)
		if err != nil {
			return err
		}

		return e.encodeArray(ctx, child, v)
	default:
		e.skipped(slog.Int("index", idx), uint32(ofs))
		return nil
	}
}

func (e *Encoder) skipped(where slog.Attr, ofs uint32) {
	e.cfg.logger.LogAttrs(context.Background(), slog.LevelDebug, "skipping undefined value",
		where, slog.Uint64("container", uint64(ofs)))
}
