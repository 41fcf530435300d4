// Package section defines the fixed-size binary structures of a treeblob buffer.
//
// A buffer is a graph of containers addressed by 32-bit offsets. Offset 0 is
// always the root container. Every container starts with a ContainerHeader;
// its members live in a singly linked chain of entry blocks, each holding
// BlockCapacity Entry slots:
//
//	┌──────────────────────────────┐
//	│ ContainerHeader (16 bytes)   │──first──┐      ┌──last──┐
//	└──────────────────────────────┘         ▼      │        ▼
//	                        ┌─────────────────────┐ │ ┌─────────────────────┐
//	                        │ next │ slot 0..cap-1 │─┴▶│ next=0 │ slot 0..n   │
//	                        └─────────────────────┘   └─────────────────────┘
//
// Keys, string data, byte data, child containers and further blocks are all
// appended to the end of the buffer as construction proceeds, so a parent's
// blocks are interleaved with the subtrees written between them. Lookups
// follow the links; nothing depends on physical adjacency.
//
// Entry slot N of a container lives in block N / BlockCapacity at slot
// N % BlockCapacity, which gives positional access in O(N / BlockCapacity)
// link hops. Keyed access scans slots comparing a 32-bit xxHash fingerprint
// before comparing key bytes.
//
// All multi-byte fields use the byte order selected by the FlagBigEndian bit
// of the container headers; a buffer uses one byte order throughout.
package section
