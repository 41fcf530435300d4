package store

import (
	"github.com/arloliu/treeblob/errs"
	"github.com/arloliu/treeblob/format"
	"github.com/arloliu/treeblob/internal/hash"
	"github.com/arloliu/treeblob/section"
)

// payloadFunc allocates whatever a value needs outside its entry slot and
// returns the slot payload.
type payloadFunc func() (uint64, error)

func inline(payload uint64) payloadFunc {
	return func() (uint64, error) { return payload, nil }
}

// setEntry stores a member of type typ under key in the object at ofs.
//
// An existing member keeps its slot, key and position; only its tag and
// payload are overwritten. Data owned by the replaced value stays in the
// buffer unreferenced.
func (c *Context) setEntry(ofs Offset, key string, typ format.Type, payload payloadFunc) error {
	if err := c.checkWritable(); err != nil {
		return err
	}

	if key == "" {
		return errs.ErrInvalidKey
	}

	hdr, err := c.containerHeader(ofs, format.TypeObject)
	if err != nil {
		return err
	}

	slot, found, err := c.findKey(&hdr, key)
	if err != nil {
		return err
	}

	p, err := payload()
	if err != nil {
		return err
	}

	if found {
		e, err := c.readEntry(slot)
		if err != nil {
			return err
		}
		e.Type = typ
		e.Payload = p
		c.writeEntry(slot, &e)

		return nil
	}

	keyOff, err := c.allocKey(key)
	if err != nil {
		return err
	}

	slot, err = c.appendSlot(ofs, &hdr)
	if err != nil {
		return err
	}

	e := section.Entry{
		Type:      typ,
		KeyHash:   hash.Key(key),
		KeyOffset: keyOff,
		Payload:   p,
	}
	c.writeEntry(slot, &e)

	return nil
}

// appendEntry stores an element of type typ at the end of the array at ofs.
func (c *Context) appendEntry(ofs Offset, typ format.Type, payload payloadFunc) error {
	if err := c.checkWritable(); err != nil {
		return err
	}

	hdr, err := c.containerHeader(ofs, format.TypeArray)
	if err != nil {
		return err
	}

	p, err := payload()
	if err != nil {
		return err
	}

	slot, err := c.appendSlot(ofs, &hdr)
	if err != nil {
		return err
	}

	e := section.Entry{Type: typ, Payload: p}
	c.writeEntry(slot, &e)

	return nil
}

func (c *Context) childPayload(typ format.Type, child *Offset) payloadFunc {
	return func() (uint64, error) {
		ofs, err := c.allocContainer(typ)
		if err != nil {
			return 0, err
		}
		*child = ofs

		return uint64(ofs), nil
	}
}

// SetString sets key in the object at ofs to the string v.
func (c *Context) SetString(ofs Offset, key string, v string) error {
	return c.setEntry(ofs, key, format.TypeString, func() (uint64, error) { return c.allocString(v) })
}

// SetBytes sets key in the object at ofs to a copy of v.
func (c *Context) SetBytes(ofs Offset, key string, v []byte) error {
	return c.setEntry(ofs, key, format.TypeBytes, func() (uint64, error) { return c.allocData(v) })
}

// SetInt64 sets key in the object at ofs to the integer v.
func (c *Context) SetInt64(ofs Offset, key string, v int64) error {
	return c.setEntry(ofs, key, format.TypeInt64, inline(section.Int64Payload(v)))
}

// SetFloat64 sets key in the object at ofs to the double v.
func (c *Context) SetFloat64(ofs Offset, key string, v float64) error {
	return c.setEntry(ofs, key, format.TypeFloat64, inline(section.Float64Payload(v)))
}

// SetBool sets key in the object at ofs to the boolean v.
func (c *Context) SetBool(ofs Offset, key string, v bool) error {
	return c.setEntry(ofs, key, format.TypeBool, inline(section.BoolPayload(v)))
}

// SetNull sets key in the object at ofs to null.
func (c *Context) SetNull(ofs Offset, key string) error {
	return c.setEntry(ofs, key, format.TypeNull, inline(0))
}

// SetObject sets key in the object at ofs to a new empty object and returns its offset.
func (c *Context) SetObject(ofs Offset, key string) (Offset, error) {
	var child Offset
	if err := c.setEntry(ofs, key, format.TypeObject, c.childPayload(format.TypeObject, &child)); err != nil {
		return 0, err
	}

	return child, nil
}

// SetArray sets key in the object at ofs to a new empty array and returns its offset.
func (c *Context) SetArray(ofs Offset, key string) (Offset, error) {
	var child Offset
	if err := c.setEntry(ofs, key, format.TypeArray, c.childPayload(format.TypeArray, &child)); err != nil {
		return 0, err
	}

	return child, nil
}

// AppendString appends the string v to the array at ofs.
func (c *Context) AppendString(ofs Offset, v string) error {
	return c.appendEntry(ofs, format.TypeString, func() (uint64, error) { return c.allocString(v) })
}

// AppendBytes appends a copy of v to the array at ofs.
func (c *Context) AppendBytes(ofs Offset, v []byte) error {
	return c.appendEntry(ofs, format.TypeBytes, func() (uint64, error) { return c.allocData(v) })
}

// AppendInt64 appends the integer v to the array at ofs.
func (c *Context) AppendInt64(ofs Offset, v int64) error {
	return c.appendEntry(ofs, format.TypeInt64, inline(section.Int64Payload(v)))
}

// AppendFloat64 appends the double v to the array at ofs.
func (c *Context) AppendFloat64(ofs Offset, v float64) error {
	return c.appendEntry(ofs, format.TypeFloat64, inline(section.Float64Payload(v)))
}

// AppendBool appends the boolean v to the array at ofs.
func (c *Context) AppendBool(ofs Offset, v bool) error {
	return c.appendEntry(ofs, format.TypeBool, inline(section.BoolPayload(v)))
}

// AppendNull appends null to the array at ofs.
func (c *Context) AppendNull(ofs Offset) error {
	return c.appendEntry(ofs, format.TypeNull, inline(0))
}

// AppendObject appends a new empty object to the array at ofs and returns its offset.
func (c *Context) AppendObject(ofs Offset) (Offset, error) {
	var child Offset
	if err := c.appendEntry(ofs, format.TypeObject, c.childPayload(format.TypeObject, &child)); err != nil {
		return 0, err
	}

	return child, nil
}

// AppendArray appends a new empty array to the array at ofs and returns its offset.
func (c *Context) AppendArray(ofs Offset) (Offset, error) {
	var child Offset
	if err := c.appendEntry(ofs, format.TypeArray, c.childPayload(format.TypeArray, &child)); err != nil {
		return 0, err
	}

	return child, nil
}
