// Package buddy implements a binary buddy memory allocator over a single
// contiguous region of caller-supplied memory.
//
// It is built for freestanding and bare-metal use: every operation is
// synchronous, bounded, and non-reentrant, performs no I/O, and never
// panics on a caller-observable condition. The allocator does not own the
// backing storage — the caller supplies a []byte region at construction
// and retains ownership of it for as long as the Heap is used.
package buddy
