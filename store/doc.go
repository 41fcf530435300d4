// Package store implements the binary store that backs every treeblob artifact.
//
// A Context owns one contiguous byte buffer holding a tree of objects and
// arrays. Containers are addressed by Offset; offset 0 is always the root.
// Scalars live inside entry slots of their parent and have no offset of their
// own, so they are addressed as (container offset, key) or
// (container offset, index).
//
// Writable contexts grow a pooled buffer by appending; nothing is ever moved,
// so offsets returned by SetObject, AppendArray and friends stay valid for the
// life of the buffer. Read-only contexts wrap a caller-supplied buffer, never
// write to it, and check every reference against its bounds, so they are safe
// to use on untrusted input and from many goroutines at once.
//
// Usage:
//
//	ctx, err := store.NewContext()
//	if err != nil { ... }
//	defer ctx.Release()
//
//	_ = ctx.InitObject()
//	_ = ctx.SetString(store.Root, "name", "widget")
//	tags, _ := ctx.SetArray(store.Root, "tags")
//	_ = ctx.AppendString(tags, "a")
//
//	data, err := ctx.Finish()
package store
