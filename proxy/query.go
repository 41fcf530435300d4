package proxy

import (
	"errors"
	"fmt"

	"github.com/arloliu/treeblob/errs"
	"github.com/arloliu/treeblob/format"
	"github.com/arloliu/treeblob/section"
	"github.com/arloliu/treeblob/store"
	"github.com/arloliu/treeblob/value"
)

// withContext runs fn against a transient read-only context over buf.
func withContext[T any](buf []byte, fn func(ctx *store.Context) (T, error)) (T, error) {
	ctx, err := store.NewContextFromBuffer(buf)
	if err != nil {
		var zero T
		return zero, err
	}
	defer ctx.Release()

	return fn(ctx)
}

// RootType returns the type name of the root container.
//
// Only the first byte is inspected; the buffer is not validated.
// Returns ErrEmptyBuffer for an empty buffer.
func RootType(buf []byte) (string, error) {
	if len(buf) == 0 {
		return format.NameUndefined, errs.ErrEmptyBuffer
	}

	return section.PeekType(buf).Name(), nil
}

// Type returns the type name of the member key of the object at ofs, or
// "undefined" when the object has no such key.
func Type(buf []byte, ofs store.Offset, key string) (string, error) {
	typ, err := withContext(buf, func(ctx *store.Context) (format.Type, error) {
		return ctx.Type(ofs, key)
	})

	return typ.Name(), err
}

// ArrayType returns the type name of element idx of the array at ofs.
// Returns ErrIndexOutOfRange for idx outside [0, length).
func ArrayType(buf []byte, ofs store.Offset, idx int) (string, error) {
	typ, err := withContext(buf, func(ctx *store.Context) (format.Type, error) {
		return ctx.ArrType(ofs, idx)
	})

	return typ.Name(), err
}

// Value returns the member key of the object at ofs.
//
// Scalars are returned as they are stored, with Bytes included. A container
// member is returned as its offset, an Int64, to be used with the other
// queries. A missing key yields the zero (undefined) Value and no error.
func Value(buf []byte, ofs store.Offset, key string) (value.Value, error) {
	return withContext(buf, func(ctx *store.Context) (value.Value, error) {
		entry, err := ctx.GetEntry(ofs, key)
		if errors.Is(err, errs.ErrKeyNotFound) {
			return value.Value{}, nil
		}
		if err != nil {
			return value.Value{}, err
		}

		return entryValue(ctx, ofs, entry)
	})
}

// ArrayElement returns element idx of the array at ofs, with the same
// conventions as Value. Returns ErrIndexOutOfRange for idx outside
// [0, length).
func ArrayElement(buf []byte, ofs store.Offset, idx int) (value.Value, error) {
	return withContext(buf, func(ctx *store.Context) (value.Value, error) {
		entry, err := ctx.ArrGetEntry(ofs, idx)
		if err != nil {
			return value.Value{}, err
		}

		return entryValue(ctx, ofs, entry)
	})
}

// ChildOffset returns the offset of the container stored under key in the
// object at ofs. Returns ErrNotAContainer for a scalar member and
// ErrKeyNotFound for a missing one.
func ChildOffset(buf []byte, ofs store.Offset, key string) (store.Offset, error) {
	return withContext(buf, func(ctx *store.Context) (store.Offset, error) {
		child, _, err := ctx.GetChild(ofs, key)
		return child, err
	})
}

// ArrayChildOffset returns the offset of the container at index idx of the
// array at ofs.
func ArrayChildOffset(buf []byte, ofs store.Offset, idx int) (store.Offset, error) {
	return withContext(buf, func(ctx *store.Context) (store.Offset, error) {
		child, _, err := ctx.ArrGetChild(ofs, idx)
		return child, err
	})
}

// Keys returns the member keys of the object at ofs in insertion order.
// Arrays have no keys.
func Keys(buf []byte, ofs store.Offset) ([]string, error) {
	return withContext(buf, func(ctx *store.Context) ([]string, error) {
		return ctx.Keys(ofs)
	})
}

// Length returns the number of members or elements of the container at ofs.
// An offset that does not address a container yields ErrNotAContainer.
func Length(buf []byte, ofs store.Offset) (int, error) {
	return withContext(buf, func(ctx *store.Context) (int, error) {
		n, err := ctx.Count(ofs)
		if err != nil && !errors.Is(err, errs.ErrNotAContainer) {
			return 0, fmt.Errorf("%w: offset %d: %w", errs.ErrNotAContainer, ofs, err)
		}

		return n, err
	})
}

// HasKey reports whether the object at ofs holds key. Malformed buffers and
// bad offsets read as false.
func HasKey(buf []byte, ofs store.Offset, key string) bool {
	ctx, err := store.NewContextFromBuffer(buf)
	if err != nil {
		return false
	}
	defer ctx.Release()

	return ctx.Has(ofs, key)
}

// entryValue materializes the entry slot at entry, a member of the container
// at parent.
func entryValue(ctx *store.Context, parent, entry store.Offset) (value.Value, error) {
	typ, err := ctx.EntryType(entry)
	if err != nil {
		return value.Value{}, err
	}

	switch typ {
	case format.TypeNull:
		return value.Null(), nil
	case format.TypeBool:
		b, err := ctx.EntryBool(entry)
		return value.Bool(b), err
	case format.TypeInt64:
		i, err := ctx.EntryInt64(entry)
		return value.Int64(i), err
	case format.TypeFloat64:
		f, err := ctx.EntryFloat64(entry)
		return value.Float64(f), err
	case format.TypeString:
		s, err := ctx.EntryString(entry)
		return value.String(s), err
	case format.TypeBytes:
		b, err := ctx.EntryBytes(entry)
		return value.Bytes(b), err
	case format.TypeObject, format.TypeArray:
		child, _, err := ctx.EntryChild(parent, entry)
		return value.Int64(int64(child)), err
	default:
		return value.Value{}, fmt.Errorf("%w: tag 0x%02x", errs.ErrUnsupportedType, uint8(typ))
	}
}
