// Package pmm implements a persistent memory manager: a free-list
// allocator over a caller-supplied contiguous byte region whose entire
// state, metadata and user data alike, lives inside that region. A region
// can be written to a file and later reloaded at a different host
// address; every internal reference is a byte offset, not a pointer, so
// it survives the move untouched.
//
// manager:
//
// Owns the region, binds/unbinds the process-wide singleton, serializes
// every mutating call behind a single lock.
//
// layout:
//
// On-disk/in-region byte shapes: region header, block descriptor, chunk
// header.
//
// alloc:
//
// The free-list allocator itself: allocate, deallocate, reallocate,
// split, coalesce, validate.
//
// filelock:
//
// Cross-process advisory lock guarding image files during save/load.
//
// pptr.go (this package):
//
// PPtr[T], the relocation-safe offset pointer.
package pmm
