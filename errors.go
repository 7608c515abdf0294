package pmm

import "errors"

// Sentinel errors surfaced by the public API, named after spec.md §7's
// error kinds, the way the teacher's errors.go names package-level
// sentinels for its own failure modes.
var (
	// ErrInvalidRegion: Create/Load called with a nil region, a region
	// smaller than layout.MinRegionSize, or a misaligned base address.
	ErrInvalidRegion = errors.New("pmm: invalid region")

	// ErrImageMismatch: Load/LoadFromFile saw a magic, version or
	// region-size that doesn't match the supplied buffer.
	ErrImageMismatch = errors.New("pmm: image mismatch")

	// ErrOutOfMemory: Allocate/Reallocate could not find or make room
	// for a fitting chunk in any block.
	ErrOutOfMemory = errors.New("pmm: out of memory")

	// ErrAlreadyBound: Create/Load attempted while another manager is
	// already bound in this process.
	ErrAlreadyBound = errors.New("pmm: another manager is already bound")

	// ErrUnbound: a mutating call was made against a manager that is
	// UNBOUND (never created/loaded, or already destroyed).
	ErrUnbound = errors.New("pmm: manager is not bound")

	// ErrIO: Save or LoadFromFile failed to read or write the file.
	ErrIO = errors.New("pmm: i/o failure")
)
