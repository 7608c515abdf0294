package pmm

import "unsafe"

// AllocateTyped reserves room for count contiguous values of T (count<1
// is treated as 1) and returns a PPtr[T] to the first one, the generic
// counterpart of spec.md §4.1's "allocate_typed<T>(count=1)".
func AllocateTyped[T any](m *Manager, count int) (PPtr[T], error) {
	off, err := m.Allocate(typedSize[T](count))
	if err != nil {
		return NullPPtr[T](), err
	}
	return PPtrFromOffset[T](off), nil
}

// DeallocateTyped frees p's allocation. A null p is a no-op.
func DeallocateTyped[T any](m *Manager, p PPtr[T]) {
	if p.IsNull() {
		return
	}
	m.Deallocate(p.Offset())
}

// ReallocateTyped resizes p's allocation to hold count values of T
// (count<1 is treated as 1), following the same null/zero rules as
// Manager.Reallocate.
func ReallocateTyped[T any](m *Manager, p PPtr[T], count int) (PPtr[T], error) {
	off, err := m.Reallocate(p.Offset(), typedSize[T](count))
	if err != nil {
		return NullPPtr[T](), err
	}
	return PPtrFromOffset[T](off), nil
}

func typedSize[T any](count int) uint64 {
	if count < 1 {
		count = 1
	}
	var zero T
	return uint64(count) * uint64(unsafe.Sizeof(zero))
}
