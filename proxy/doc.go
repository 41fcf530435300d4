// Package proxy answers single-field and single-element queries directly
// against a finished treeblob buffer, without decoding the tree.
//
// Values are addressed by (buffer, offset, key) for objects and
// (buffer, offset, index) for arrays. Offset 0 is the root container; the
// offsets of nested containers come from ChildOffset, ArrayChildOffset or
// Value, which reports a container member as its offset:
//
//	x, _ := proxy.ChildOffset(buf, 0, "x")
//	y, _ := proxy.ChildOffset(buf, x, "y")
//	v, _ := proxy.ArrayElement(buf, y, 1)
//
// Each query function is independent. It opens a read-only view of the
// buffer, performs one bounded lookup and returns; nothing is retained
// between calls, so concurrent queries against one buffer are safe as long
// as the buffer is not modified.
//
// Node offers the same access as a lazily materialized tree of handles that
// share one view of the buffer and cache the child handles they hand out.
//
// Proxy queries require raw buffers; Open unwraps compressed envelopes
// first.
package proxy
