package proxy

import (
	"errors"
	"fmt"
	"iter"
	"sync"

	"github.com/arloliu/treeblob/blob"
	"github.com/arloliu/treeblob/errs"
	"github.com/arloliu/treeblob/format"
	"github.com/arloliu/treeblob/store"
	"github.com/arloliu/treeblob/value"
)

// Node is a lazy handle on one container of a treeblob buffer.
//
// Members are read from the buffer on demand. Container members are handed
// out as child Nodes, and a parent returns the same *Node every time the
// same member is requested. All Nodes opened from one buffer share a single
// read-only view of it; they are safe for concurrent use as long as the
// buffer is not modified.
type Node struct {
	ctx   *store.Context
	tree  *nodeTree
	ofs   store.Offset
	typ   format.Type
	count int

	mu       sync.Mutex
	children map[store.Offset]*Node // keyed by entry slot
}

// nodeTree is the state shared by every Node opened from one buffer.
type nodeTree struct {
	mu     sync.Mutex
	owners map[store.Offset]store.Offset // child container -> entry slot referencing it
}

// claim records that entry references the container at child. Every
// container has exactly one referencing entry; a second one means the buffer
// is corrupt.
func (t *nodeTree) claim(child, entry store.Offset) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if owner, ok := t.owners[child]; ok && owner != entry {
		return fmt.Errorf("%w: container at %d referenced by entries %d and %d", errs.ErrInvalidContext, child, owner, entry)
	}

	if t.owners == nil {
		t.owners = make(map[store.Offset]store.Offset)
	}
	t.owners[child] = entry

	return nil
}

// Elem is one member or element of a Node: either a child Node for
// containers or a scalar Value. The zero Elem stands for a missing member.
type Elem struct {
	node *Node
	val  value.Value
}

// Open returns the root Node of buf. Compressed envelopes are unwrapped
// first; raw buffers are used in place and must outlive the Node.
//
// Returns ErrInvalidContext for malformed buffers, and the envelope errors
// of blob.Decompress for damaged compressed input.
func Open(buf []byte) (*Node, error) {
	if blob.IsCompressed(buf) {
		raw, err := blob.Decompress(buf)
		if err != nil {
			return nil, err
		}
		buf = raw
	}

	ctx, err := store.NewContextFromBuffer(buf)
	if err != nil {
		return nil, err
	}

	return newNode(ctx, &nodeTree{}, store.Root, ctx.RootType())
}

// FromValue encodes v and returns the root Node of the result.
func FromValue(v value.Value, opts ...blob.EncoderOption) (*Node, error) {
	enc, err := blob.NewEncoder(opts...)
	if err != nil {
		return nil, err
	}

	data, err := enc.Encode(v)
	if err != nil {
		return nil, err
	}

	return Open(data)
}

func newNode(ctx *store.Context, tree *nodeTree, ofs store.Offset, want format.Type) (*Node, error) {
	typ, err := ctx.ContainerType(ofs)
	if err != nil {
		return nil, err
	}

	if typ != want {
		return nil, fmt.Errorf("%w: entry tagged %s points at %s", errs.ErrInvalidContext, want, typ)
	}

	count, err := ctx.Count(ofs)
	if err != nil {
		return nil, err
	}

	return &Node{ctx: ctx, tree: tree, ofs: ofs, typ: typ, count: count}, nil
}

// IsNode reports whether x is a *Node or an Elem holding one.
func IsNode(x any) bool {
	switch t := x.(type) {
	case *Node:
		return t != nil
	case Elem:
		return t.node != nil
	default:
		return false
	}
}

// Type returns TypeObject or TypeArray.
func (n *Node) Type() format.Type {
	return n.typ
}

// Offset returns the container offset, usable with the query functions.
func (n *Node) Offset() store.Offset {
	return n.ofs
}

// Bytes returns the whole raw buffer the Node reads from.
func (n *Node) Bytes() []byte {
	return n.ctx.Bytes()
}

// Len returns the number of members or elements.
func (n *Node) Len() int {
	return n.count
}

// Keys returns the member keys in insertion order; nil for arrays.
func (n *Node) Keys() ([]string, error) {
	if n.typ != format.TypeObject {
		return nil, nil
	}

	return n.ctx.Keys(n.ofs)
}

// Has reports whether the object holds key. Always false for arrays.
func (n *Node) Has(key string) bool {
	return n.ctx.Has(n.ofs, key)
}

// Get returns member key of an object Node. A missing key yields the zero
// Elem and no error; an array Node yields ErrTypeMismatch.
func (n *Node) Get(key string) (Elem, error) {
	entry, err := n.ctx.GetEntry(n.ofs, key)
	if errors.Is(err, errs.ErrKeyNotFound) {
		return Elem{}, nil
	}
	if err != nil {
		return Elem{}, err
	}

	return n.elem(entry)
}

// At returns element i of an array Node. A negative i counts back from the
// end, so At(-1) is the last element.
//
// Returns ErrIndexOutOfRange when i falls outside the array and
// ErrTypeMismatch for object Nodes.
func (n *Node) At(i int) (Elem, error) {
	if i < 0 {
		i += n.count
	}

	entry, err := n.ctx.ArrGetEntry(n.ofs, i)
	if err != nil {
		return Elem{}, err
	}

	return n.elem(entry)
}

// Range calls fn for each member or element in order until fn returns
// false. key is empty for array elements.
func (n *Node) Range(fn func(i int, key string, e Elem) bool) error {
	for item, err := range n.ctx.All(n.ofs) {
		if err != nil {
			return err
		}

		e, err := n.elem(item.Entry)
		if err != nil {
			return err
		}

		if !fn(item.Index, item.Key, e) {
			return nil
		}
	}

	return nil
}

// Elems returns an iterator over the members or elements in order. A read
// failure is yielded once as a non-nil error, after which iteration stops.
func (n *Node) Elems() iter.Seq2[Elem, error] {
	return func(yield func(Elem, error) bool) {
		err := n.Range(func(_ int, _ string, e Elem) bool {
			return yield(e, nil)
		})
		if err != nil {
			yield(Elem{}, err)
		}
	}
}

// Slice returns elements [start, end) of an array Node. Negative bounds
// count back from the end and both bounds are clamped to the array, so an
// empty range yields an empty slice rather than an error.
func (n *Node) Slice(start, end int) ([]Elem, error) {
	if n.typ != format.TypeArray {
		return nil, fmt.Errorf("%w: slice of %s", errs.ErrTypeMismatch, n.typ)
	}

	start = clampIndex(start, n.count)
	end = clampIndex(end, n.count)
	if start >= end {
		return []Elem{}, nil
	}

	out := make([]Elem, 0, end-start)
	for i := start; i < end; i++ {
		e, err := n.At(i)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}

	return out, nil
}

func clampIndex(i, n int) int {
	if i < 0 {
		i += n
	}

	return min(max(i, 0), n)
}

// Decode materializes the subtree rooted at this Node.
func (n *Node) Decode(opts ...blob.DecoderOption) (value.Value, error) {
	dec, err := blob.NewDecoder(n.ctx.Bytes(), opts...)
	if err != nil {
		return value.Value{}, err
	}

	return dec.DecodeAt(n.ofs)
}

// DecodeAll materializes the whole buffer this Node belongs to.
func (n *Node) DecodeAll(opts ...blob.DecoderOption) (value.Value, error) {
	dec, err := blob.NewDecoder(n.ctx.Bytes(), opts...)
	if err != nil {
		return value.Value{}, err
	}

	return dec.Decode()
}

// elem resolves the entry slot at entry into a child Node or a scalar.
func (n *Node) elem(entry store.Offset) (Elem, error) {
	typ, err := n.ctx.EntryType(entry)
	if err != nil {
		return Elem{}, err
	}

	if !typ.IsContainer() {
		v, err := entryValue(n.ctx, n.ofs, entry)
		if err != nil {
			return Elem{}, err
		}

		return Elem{val: v}, nil
	}

	child, err := n.child(entry)
	if err != nil {
		return Elem{}, err
	}

	return Elem{node: child}, nil
}

func (n *Node) child(entry store.Offset) (*Node, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if c, ok := n.children[entry]; ok {
		return c, nil
	}

	ofs, typ, err := n.ctx.EntryChild(n.ofs, entry)
	if err != nil {
		return nil, err
	}

	if err := n.tree.claim(ofs, entry); err != nil {
		return nil, err
	}

	c, err := newNode(n.ctx, n.tree, ofs, typ)
	if err != nil {
		return nil, err
	}

	if n.children == nil {
		n.children = make(map[store.Offset]*Node)
	}
	n.children[entry] = c

	return c, nil
}

// IsNode reports whether e holds a child Node.
func (e Elem) IsNode() bool {
	return e.node != nil
}

// IsValid reports whether e holds anything; false for a missing member.
func (e Elem) IsValid() bool {
	return e.node != nil || e.val.IsValid()
}

// Node returns the child Node, or nil for scalars.
func (e Elem) Node() *Node {
	return e.node
}

// Value returns the scalar, or the zero Value for child Nodes.
func (e Elem) Value() value.Value {
	return e.val
}

// Type returns the stored kind of e, TypeInvalid for a missing member.
func (e Elem) Type() format.Type {
	if e.node != nil {
		return e.node.typ
	}

	return e.val.Type()
}
