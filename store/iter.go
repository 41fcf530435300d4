package store

import (
	"iter"

	"github.com/arloliu/treeblob/format"
	"github.com/arloliu/treeblob/section"
)

// Item describes one member or element produced by an Iterator.
type Item struct {
	// Key is the member key; empty for array elements.
	Key string
	// Index is the zero-based position within the container.
	Index int
	// Type is the stored value tag.
	Type format.Type
	// Offset is the child container offset for Object and Array items, zero otherwise.
	Offset Offset
	// Entry is the entry slot offset, usable with the Entry accessors.
	Entry Offset
}

// Iterator walks the members of one container in insertion order.
//
// The container must not be modified while it is being iterated.
type Iterator struct {
	ctx    *Context
	parent Offset
	object bool
	walker slotWalker
	item   Item
	err    error
}

// Iter returns an iterator over the container at ofs.
func (c *Context) Iter(ofs Offset) (*Iterator, error) {
	if err := c.check(); err != nil {
		return nil, err
	}

	hdr, err := c.readHeader(ofs)
	if err != nil {
		return nil, err
	}

	return &Iterator{
		ctx:    c,
		parent: ofs,
		object: hdr.Type == format.TypeObject,
		walker: c.walker(&hdr),
	}, nil
}

// Next advances to the next item. It returns false when the container is
// exhausted or an error occurred; check Err afterwards.
func (it *Iterator) Next() bool {
	if it.err != nil {
		return false
	}

	if err := it.ctx.check(); err != nil {
		it.err = err
		return false
	}

	idx := it.walker.next
	slot, ok, err := it.walker.advance()
	if err != nil {
		it.err = err
		return false
	}
	if !ok {
		return false
	}

	e, err := it.ctx.readEntry(slot)
	if err != nil {
		it.err = err
		return false
	}

	item := Item{
		Index: idx,
		Type:  e.Type,
		Entry: Offset(slot),
	}

	if it.object {
		item.Key, err = section.ReadKey(it.ctx.bytes(), e.KeyOffset)
		if err != nil {
			it.err = err
			return false
		}
	}

	if e.Type.IsContainer() {
		item.Offset, err = it.ctx.childOf(it.parent, &e)
		if err != nil {
			it.err = err
			return false
		}
	}

	it.item = item

	return true
}

// Item returns the current item. It is only valid after Next returned true.
func (it *Iterator) Item() Item {
	return it.item
}

// Err returns the error that stopped iteration, if any.
func (it *Iterator) Err() error {
	return it.err
}

// All returns a range-over-func sequence over the container at ofs.
//
// An error ends the sequence and is yielded together with a zero Item.
func (c *Context) All(ofs Offset) iter.Seq2[Item, error] {
	return func(yield func(Item, error) bool) {
		it, err := c.Iter(ofs)
		if err != nil {
			yield(Item{}, err)
			return
		}

		for it.Next() {
			if !yield(it.Item(), nil) {
				return
			}
		}

		if err := it.Err(); err != nil {
			yield(Item{}, err)
		}
	}
}

// Keys returns the member keys of the object at ofs in insertion order.
// Arrays yield an empty slice.
func (c *Context) Keys(ofs Offset) ([]string, error) {
	it, err := c.Iter(ofs)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, it.walker.count)
	for it.Next() {
		if it.object {
			keys = append(keys, it.item.Key)
		}
	}

	if err := it.Err(); err != nil {
		return nil, err
	}

	return keys, nil
}
