package store

import (
	"fmt"
	"slices"

	"github.com/arloliu/treeblob/errs"
	"github.com/arloliu/treeblob/format"
	"github.com/arloliu/treeblob/section"
)

// lookup returns the slot holding key in the object at ofs.
func (c *Context) lookup(ofs Offset, key string) (uint32, error) {
	if err := c.check(); err != nil {
		return 0, err
	}

	hdr, err := c.containerHeader(ofs, format.TypeObject)
	if err != nil {
		return 0, err
	}

	slot, found, err := c.findKey(&hdr, key)
	if err != nil {
		return 0, err
	}

	if !found {
		return 0, fmt.Errorf("%w: %q", errs.ErrKeyNotFound, key)
	}

	return slot, nil
}

// index returns slot idx of the array at ofs.
func (c *Context) index(ofs Offset, idx int) (uint32, error) {
	if err := c.check(); err != nil {
		return 0, err
	}

	hdr, err := c.containerHeader(ofs, format.TypeArray)
	if err != nil {
		return 0, err
	}

	return c.slotAt(&hdr, idx)
}

// entryOf reads the slot at entry and requires its tag to be want.
func (c *Context) entryOf(entry Offset, want format.Type) (section.Entry, error) {
	if err := c.check(); err != nil {
		return section.Entry{}, err
	}

	e, err := c.readEntry(uint32(entry))
	if err != nil {
		return e, err
	}

	if e.Type != want {
		return e, fmt.Errorf("%w: stored %s, requested %s", errs.ErrTypeMismatch, e.Type, want)
	}

	return e, nil
}

// childEntry reads the slot of a member of parent and returns the child
// container it references, which must be of type want.
func (c *Context) childEntry(parent Offset, slot uint32, want format.Type) (Offset, error) {
	e, err := c.entryOf(Offset(slot), want)
	if err != nil {
		return 0, err
	}

	return c.childOf(parent, &e)
}

// anyChild is childEntry accepting either container kind.
func (c *Context) anyChild(parent Offset, slot uint32) (Offset, format.Type, error) {
	e, err := c.readEntry(slot)
	if err != nil {
		return 0, format.TypeInvalid, err
	}

	if !e.Type.IsContainer() {
		return 0, e.Type, fmt.Errorf("%w: %s", errs.ErrNotAContainer, e.Type)
	}

	child, err := c.childOf(parent, &e)

	return child, e.Type, err
}

// EntryString returns the string held by the entry slot at entry.
// Entry offsets come from Item.Entry.
func (c *Context) EntryString(entry Offset) (string, error) {
	e, err := c.entryOf(entry, format.TypeString)
	if err != nil {
		return "", err
	}

	raw, err := c.readData(&e)
	if err != nil {
		return "", err
	}

	return string(raw), nil
}

// EntryBytes returns a copy of the byte blob held by the entry slot at entry.
func (c *Context) EntryBytes(entry Offset) ([]byte, error) {
	e, err := c.entryOf(entry, format.TypeBytes)
	if err != nil {
		return nil, err
	}

	raw, err := c.readData(&e)
	if err != nil {
		return nil, err
	}

	if raw == nil {
		return []byte{}, nil
	}

	return slices.Clone(raw), nil
}

// EntryInt64 returns the integer held by the entry slot at entry.
func (c *Context) EntryInt64(entry Offset) (int64, error) {
	e, err := c.entryOf(entry, format.TypeInt64)
	if err != nil {
		return 0, err
	}

	return e.Int64(), nil
}

// EntryFloat64 returns the double held by the entry slot at entry.
func (c *Context) EntryFloat64(entry Offset) (float64, error) {
	e, err := c.entryOf(entry, format.TypeFloat64)
	if err != nil {
		return 0, err
	}

	return e.Float64(), nil
}

// EntryBool returns the boolean held by the entry slot at entry.
func (c *Context) EntryBool(entry Offset) (bool, error) {
	e, err := c.entryOf(entry, format.TypeBool)
	if err != nil {
		return false, err
	}

	return e.Bool(), nil
}

// EntryType returns the tag of the entry slot at entry.
func (c *Context) EntryType(entry Offset) (format.Type, error) {
	if err := c.check(); err != nil {
		return format.TypeInvalid, err
	}

	e, err := c.readEntry(uint32(entry))

	return e.Type, err
}

// EntryChild returns the offset and kind of the container referenced by the
// entry slot at entry, which must belong to the container at parent.
// A scalar entry yields ErrNotAContainer.
func (c *Context) EntryChild(parent, entry Offset) (Offset, format.Type, error) {
	if err := c.check(); err != nil {
		return 0, format.TypeInvalid, err
	}

	return c.anyChild(parent, uint32(entry))
}

// GetString returns the string stored under key in the object at ofs.
func (c *Context) GetString(ofs Offset, key string) (string, error) {
	slot, err := c.lookup(ofs, key)
	if err != nil {
		return "", err
	}

	return c.EntryString(Offset(slot))
}

// GetBytes returns a copy of the byte blob stored under key in the object at ofs.
func (c *Context) GetBytes(ofs Offset, key string) ([]byte, error) {
	slot, err := c.lookup(ofs, key)
	if err != nil {
		return nil, err
	}

	return c.EntryBytes(Offset(slot))
}

// GetInt64 returns the integer stored under key in the object at ofs.
func (c *Context) GetInt64(ofs Offset, key string) (int64, error) {
	slot, err := c.lookup(ofs, key)
	if err != nil {
		return 0, err
	}

	return c.EntryInt64(Offset(slot))
}

// GetFloat64 returns the double stored under key in the object at ofs.
func (c *Context) GetFloat64(ofs Offset, key string) (float64, error) {
	slot, err := c.lookup(ofs, key)
	if err != nil {
		return 0, err
	}

	return c.EntryFloat64(Offset(slot))
}

// GetBool returns the boolean stored under key in the object at ofs.
func (c *Context) GetBool(ofs Offset, key string) (bool, error) {
	slot, err := c.lookup(ofs, key)
	if err != nil {
		return false, err
	}

	return c.EntryBool(Offset(slot))
}

// GetObject returns the offset of the object stored under key in the object at ofs.
func (c *Context) GetObject(ofs Offset, key string) (Offset, error) {
	slot, err := c.lookup(ofs, key)
	if err != nil {
		return 0, err
	}

	return c.childEntry(ofs, slot, format.TypeObject)
}

// GetArray returns the offset of the array stored under key in the object at ofs.
func (c *Context) GetArray(ofs Offset, key string) (Offset, error) {
	slot, err := c.lookup(ofs, key)
	if err != nil {
		return 0, err
	}

	return c.childEntry(ofs, slot, format.TypeArray)
}

// GetChild returns the offset and kind of the container stored under key in
// the object at ofs. A scalar member yields ErrNotAContainer.
func (c *Context) GetChild(ofs Offset, key string) (Offset, format.Type, error) {
	slot, err := c.lookup(ofs, key)
	if err != nil {
		return 0, format.TypeInvalid, err
	}

	return c.anyChild(ofs, slot)
}

// GetEntry returns the entry slot offset of key in the object at ofs, for use
// with the Entry accessors.
func (c *Context) GetEntry(ofs Offset, key string) (Offset, error) {
	slot, err := c.lookup(ofs, key)

	return Offset(slot), err
}

// Type returns the tag stored under key in the object at ofs.
// A missing key yields TypeInvalid and no error.
func (c *Context) Type(ofs Offset, key string) (format.Type, error) {
	if err := c.check(); err != nil {
		return format.TypeInvalid, err
	}

	hdr, err := c.containerHeader(ofs, format.TypeObject)
	if err != nil {
		return format.TypeInvalid, err
	}

	slot, found, err := c.findKey(&hdr, key)
	if err != nil || !found {
		return format.TypeInvalid, err
	}

	e, err := c.readEntry(slot)

	return e.Type, err
}

// Has reports whether the object at ofs holds key. Any error reads as false.
func (c *Context) Has(ofs Offset, key string) bool {
	typ, err := c.Type(ofs, key)
	return err == nil && typ != format.TypeInvalid
}

// ArrGetString returns the string at index idx of the array at ofs.
func (c *Context) ArrGetString(ofs Offset, idx int) (string, error) {
	slot, err := c.index(ofs, idx)
	if err != nil {
		return "", err
	}

	return c.EntryString(Offset(slot))
}

// ArrGetBytes returns a copy of the byte blob at index idx of the array at ofs.
func (c *Context) ArrGetBytes(ofs Offset, idx int) ([]byte, error) {
	slot, err := c.index(ofs, idx)
	if err != nil {
		return nil, err
	}

	return c.EntryBytes(Offset(slot))
}

// ArrGetInt64 returns the integer at index idx of the array at ofs.
func (c *Context) ArrGetInt64(ofs Offset, idx int) (int64, error) {
	slot, err := c.index(ofs, idx)
	if err != nil {
		return 0, err
	}

	return c.EntryInt64(Offset(slot))
}

// ArrGetFloat64 returns the double at index idx of the array at ofs.
func (c *Context) ArrGetFloat64(ofs Offset, idx int) (float64, error) {
	slot, err := c.index(ofs, idx)
	if err != nil {
		return 0, err
	}

	return c.EntryFloat64(Offset(slot))
}

// ArrGetBool returns the boolean at index idx of the array at ofs.
func (c *Context) ArrGetBool(ofs Offset, idx int) (bool, error) {
	slot, err := c.index(ofs, idx)
	if err != nil {
		return false, err
	}

	return c.EntryBool(Offset(slot))
}

// ArrGetObject returns the offset of the object at index idx of the array at ofs.
func (c *Context) ArrGetObject(ofs Offset, idx int) (Offset, error) {
	slot, err := c.index(ofs, idx)
	if err != nil {
		return 0, err
	}

	return c.childEntry(ofs, slot, format.TypeObject)
}

// ArrGetArray returns the offset of the array at index idx of the array at ofs.
func (c *Context) ArrGetArray(ofs Offset, idx int) (Offset, error) {
	slot, err := c.index(ofs, idx)
	if err != nil {
		return 0, err
	}

	return c.childEntry(ofs, slot, format.TypeArray)
}

// ArrGetChild returns the offset and kind of the container at index idx of
// the array at ofs. A scalar element yields ErrNotAContainer.
func (c *Context) ArrGetChild(ofs Offset, idx int) (Offset, format.Type, error) {
	slot, err := c.index(ofs, idx)
	if err != nil {
		return 0, format.TypeInvalid, err
	}

	return c.anyChild(ofs, slot)
}

// ArrGetEntry returns the entry slot offset of index idx in the array at ofs.
func (c *Context) ArrGetEntry(ofs Offset, idx int) (Offset, error) {
	slot, err := c.index(ofs, idx)

	return Offset(slot), err
}

// ArrType returns the tag at index idx of the array at ofs.
func (c *Context) ArrType(ofs Offset, idx int) (format.Type, error) {
	slot, err := c.index(ofs, idx)
	if err != nil {
		return format.TypeInvalid, err
	}

	e, err := c.readEntry(slot)

	return e.Type, err
}

// Count returns the number of members or elements of the container at ofs.
func (c *Context) Count(ofs Offset) (int, error) {
	if err := c.check(); err != nil {
		return 0, err
	}

	hdr, err := c.readHeader(ofs)
	if err != nil {
		return 0, err
	}

	return int(hdr.Count), nil
}

// ContainerType returns TypeObject or TypeArray for the container at ofs.
func (c *Context) ContainerType(ofs Offset) (format.Type, error) {
	if err := c.check(); err != nil {
		return format.TypeInvalid, err
	}

	hdr, err := c.readHeader(ofs)
	if err != nil {
		return format.TypeInvalid, err
	}

	return hdr.Type, nil
}
