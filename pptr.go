package pmm

import "unsafe"

// PPtr[T] is a relocation-safe reference to a T-typed payload: a byte
// offset from the region base, phantom-typed by T. Its zero value is the
// null pointer (offset 0 — the header always occupies offset 0, so no
// valid payload ever lives there). Size equals one host pointer.
//
// Two PPtr[T] values built from the same offset are indistinguishable,
// and an offset saved to disk resolves to the same payload after Save
// and Load even when the host base differs — the whole point of the
// design (spec.md §9, "Cyclic relocation vs. offset pointers").
type PPtr[T any] struct {
	off uint64
}

// NullPPtr returns the null PPtr[T]; equivalent to the zero value.
func NullPPtr[T any]() PPtr[T] {
	return PPtr[T]{}
}

// PPtrFromOffset constructs a PPtr[T] from a raw offset with no
// validation, matching spec.md §4.1's "construct from offset o: stores
// o; no validation."
func PPtrFromOffset[T any](offset uint64) PPtr[T] {
	return PPtr[T]{off: offset}
}

// IsNull reports whether p is the null pointer.
func (p PPtr[T]) IsNull() bool {
	return p.off == 0
}

// Offset returns the raw byte offset p carries.
func (p PPtr[T]) Offset() uint64 {
	return p.off
}

// Equal compares two PPtr[T] by offset only.
func (p PPtr[T]) Equal(o PPtr[T]) bool {
	return p.off == o.off
}

// Resolve converts p to a host pointer by adding m's current region
// base, or nil if p is null or m is nil/unbound. This is the unchecked
// fast path named in spec.md §4.1/§9: no bounds check is performed here;
// use ResolveChecked from tests, as the design note recommends.
func (p PPtr[T]) Resolve(m *Manager) *T {
	if p.off == 0 {
		return nil
	}
	base, ok := m.baseAddr()
	if !ok {
		return nil
	}
	return (*T)(unsafe.Pointer(base + uintptr(p.off)))
}

// ResolveAt returns Resolve(m) advanced by i elements of T, or nil if
// Resolve(m) is nil.
func (p PPtr[T]) ResolveAt(m *Manager, i int) *T {
	base := p.Resolve(m)
	if base == nil {
		return nil
	}
	var zero T
	return (*T)(unsafe.Pointer(uintptr(unsafe.Pointer(base)) + uintptr(i)*unsafe.Sizeof(zero)))
}

// ResolveChecked is the bounds-checked variant spec.md §9 recommends for
// tests: it verifies p's offset lies within the bound region and that
// the chunk it points at is currently USED before resolving, returning
// ok=false instead of an out-of-range host pointer.
func (p PPtr[T]) ResolveChecked(m *Manager) (ptr *T, ok bool) {
	if p.off == 0 {
		return nil, false
	}
	if !m.offsetInUse(p.off) {
		return nil, false
	}
	return p.Resolve(m), true
}
