package pmm

import (
	"errors"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"unsafe"

	humanize "github.com/dustin/go-humanize"

	"github.com/konard/netkeep80-PersistMemoryManager/alloc"
	"github.com/konard/netkeep80-PersistMemoryManager/filelock"
	"github.com/konard/netkeep80-PersistMemoryManager/layout"
)

// Manager binds exactly one caller-supplied region and serves allocate/
// deallocate/reallocate/validate against it, the UNBOUND->BOUND state
// machine spec.md §5 describes. Only one Manager may be bound per
// process at a time (process-wide singleton, spec.md §5/§9's
// "process-wide lock" design note).
//
// mu serializes every mutating and read operation except resolving a
// PPtr: base and bound are read through atomics from Resolve/ResolveAt
// so those two stay the lock-free pure-arithmetic operations spec.md
// §4.1 requires, at the cost of being the caller's job to keep a
// Manager alive (not concurrently Destroy'd) across a Resolve call.
type Manager struct {
	mu    sync.RWMutex
	bound atomic.Bool
	base  atomic.Uintptr

	region   []byte
	header   layout.Header
	settings Settings
}

var (
	singletonMu sync.Mutex
	singleton   *Manager
)

// Create binds a brand-new region: lays out a fresh header, a single
// block and a single free chunk spanning it, and returns the bound
// Manager. region must be at least layout.MinRegionSize bytes and its
// first byte Alignment-aligned; it is used in place, never copied.
func Create(region []byte, settings Settings) (*Manager, error) {
	if err := checkRegion(region); err != nil {
		return nil, err
	}
	settings.normalize()

	singletonMu.Lock()
	defer singletonMu.Unlock()
	if singleton != nil {
		return nil, ErrAlreadyBound
	}

	header := alloc.Initialize(region)
	header.Encode(region)

	m := bind(region, header, settings)
	singleton = m
	settings.Logger.Infof("region created: size=%s free=%s", humanize.Bytes(header.RegionSize), humanize.Bytes(header.FreeSize))
	return m, nil
}

// Load binds an existing region that already holds a valid image: it
// decodes and validates the header (magic, version, size, and, if
// settings.ChecksumEnabled, the checksum) before binding, per spec.md
// §3 "Load".
func Load(region []byte, settings Settings) (*Manager, error) {
	if err := checkRegion(region); err != nil {
		return nil, err
	}
	header, ok := layout.DecodeHeader(region)
	if !ok {
		return nil, ErrInvalidRegion
	}
	if !header.MagicOK() || header.Version != layout.FormatVersion || header.RegionSize != uint64(len(region)) {
		return nil, ErrImageMismatch
	}
	settings.normalize()
	if settings.ChecksumEnabled && !header.ChecksumOK(region) {
		return nil, ErrImageMismatch
	}

	singletonMu.Lock()
	defer singletonMu.Unlock()
	if singleton != nil {
		return nil, ErrAlreadyBound
	}

	m := bind(region, header, settings)
	singleton = m
	settings.Logger.Infof("region loaded: size=%s free=%s", humanize.Bytes(header.RegionSize), humanize.Bytes(header.FreeSize))
	return m, nil
}

// LoadFromFile reads path's contents into region (which must already be
// sized for the image; LoadFromFile never resizes it) under a
// cross-process shared lock, then behaves as Load. A file shorter than
// region is reported as ErrImageMismatch rather than ErrIO: it cannot
// be this region's image.
func LoadFromFile(path string, region []byte, settings Settings) (*Manager, error) {
	if region == nil {
		return nil, ErrInvalidRegion
	}

	readErr := filelock.WithShared(path, func(f *os.File) error {
		_, err := io.ReadFull(f, region)
		return err
	})
	if readErr != nil {
		if errors.Is(readErr, io.ErrUnexpectedEOF) || errors.Is(readErr, io.EOF) {
			return nil, ErrImageMismatch
		}
		return nil, ErrIO
	}
	return Load(region, settings)
}

// checkRegion validates the preconditions Create and Load place on a
// region: non-nil, large enough for the smallest possible layout, its
// total length a multiple of Alignment (so the single initial chunk
// Initialize lays out has an aligned size, per spec.md §4.3's
// "misaligned" rejection), and its base address itself aligned so every
// offset layout computes from it lands on a real Alignment boundary.
func checkRegion(region []byte) error {
	if region == nil || uint64(len(region)) < layout.MinRegionSize {
		return ErrInvalidRegion
	}
	if uint64(len(region))%layout.Alignment != 0 {
		return ErrInvalidRegion
	}
	if uintptr(unsafe.Pointer(&region[0]))%layout.Alignment != 0 {
		return ErrInvalidRegion
	}
	return nil
}

func bind(region []byte, header layout.Header, settings Settings) *Manager {
	m := &Manager{region: region, header: header, settings: settings}
	m.base.Store(uintptr(unsafe.Pointer(&region[0])))
	m.bound.Store(true)
	return m
}

// Destroy unbinds m, freeing the process-wide singleton slot for a
// future Create/Load. It does not touch region's contents; the caller
// remains the owner of that memory. Destroy on an already-unbound or
// nil Manager is a no-op, per spec.md §5's "Destroy... idempotent".
func (m *Manager) Destroy() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.bound.Load() {
		return
	}
	m.bound.Store(false)
	m.base.Store(0)

	singletonMu.Lock()
	if singleton == m {
		singleton = nil
	}
	singletonMu.Unlock()
	m.settings.Logger.Infof("region destroyed")
}

// Save writes region[:header.RegionSize] to path under a cross-process
// exclusive lock, truncating/creating the file as needed.
func (m *Manager) Save(path string) error {
	if m == nil {
		return ErrUnbound
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.bound.Load() {
		return ErrUnbound
	}

	err := filelock.WithExclusive(path, func(f *os.File) error {
		if err := f.Truncate(0); err != nil {
			return err
		}
		_, err := f.WriteAt(m.region[:m.header.RegionSize], 0)
		return err
	})
	if err != nil {
		m.settings.Logger.Errorf("save %s: %v", path, err)
		return ErrIO
	}
	return nil
}

// Allocate reserves at least size contiguous payload bytes and returns
// their offset from the region base, or ErrOutOfMemory if no block has
// room (spec.md §4.2).
func (m *Manager) Allocate(size uint64) (uint64, error) {
	if m == nil {
		return 0, ErrUnbound
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.bound.Load() {
		return 0, ErrUnbound
	}

	off, ok := alloc.Allocate(m.region, &m.header, size)
	if !ok {
		m.settings.Logger.Warnf("allocate(%s): out of memory, free=%s", humanize.Bytes(size), humanize.Bytes(m.header.FreeSize))
		return 0, ErrOutOfMemory
	}
	m.persistHeader()
	return off, nil
}

// Deallocate frees the allocation at offset, coalescing it with any
// adjacent free chunks. offset==0 is a no-op (spec.md §7).
func (m *Manager) Deallocate(offset uint64) {
	if m == nil || offset == 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.bound.Load() {
		return
	}

	alloc.Deallocate(m.region, &m.header, offset)
	m.persistHeader()
}

// Reallocate resizes the allocation at offset to hold newSize payload
// bytes, per spec.md §4.2's policy (null offset behaves as Allocate,
// newSize 0 behaves as Deallocate, shrink/grow-in-place before
// allocate+copy+free).
func (m *Manager) Reallocate(offset, newSize uint64) (uint64, error) {
	if m == nil {
		return 0, ErrUnbound
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.bound.Load() {
		return 0, ErrUnbound
	}

	off, ok := alloc.Reallocate(m.region, &m.header, offset, newSize)
	if !ok {
		m.settings.Logger.Warnf("reallocate(%d, %s): out of memory", offset, humanize.Bytes(newSize))
		return 0, ErrOutOfMemory
	}
	m.persistHeader()
	return off, nil
}

// persistHeader writes m.header into m.region unconditionally: every
// mutation changes FreeSize and/or AllocatedBlocks, and those must
// survive a Save/Load round trip regardless of settings. Only the
// cost of the checksum pass is gated by ChecksumEnabled.
func (m *Manager) persistHeader() {
	if m.settings.ChecksumEnabled {
		m.header.Encode(m.region)
	} else {
		m.header.EncodeFields(m.region)
	}
}

// Validate walks the whole region's layout and returns whether every
// invariant in spec.md §4.5 holds, logging each violation found.
func (m *Manager) Validate() bool {
	rpt, ok := m.ValidateReport()
	if !ok {
		return false
	}
	return rpt.OK()
}

// ValidateReport is Validate's non-boolean form: the full alloc.Report,
// for callers (and tests) that want the individual problems, not just a
// pass/fail. ok is false iff m is nil or unbound, in which case Report
// is the zero value.
func (m *Manager) ValidateReport() (alloc.Report, bool) {
	if m == nil {
		return alloc.Report{}, false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.bound.Load() {
		return alloc.Report{}, false
	}

	rpt := alloc.Validate(m.region, &m.header)
	for _, p := range rpt.Problems {
		m.settings.Logger.Errorf("validate: block %d: %s", p.Block, p.Msg)
	}
	return rpt, true
}

// FreeSize returns the total payload bytes currently free across all
// blocks, or 0 if m is nil or unbound.
func (m *Manager) FreeSize() uint64 {
	if m == nil {
		return 0
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.bound.Load() {
		return 0
	}
	return m.header.FreeSize
}

// RegionSize returns the bound region's total size in bytes, or 0 if m
// is nil or unbound.
func (m *Manager) RegionSize() uint64 {
	if m == nil {
		return 0
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.bound.Load() {
		return 0
	}
	return m.header.RegionSize
}

// AllocatedBlocks returns the number of currently-live allocations, or 0
// if m is nil or unbound.
func (m *Manager) AllocatedBlocks() uint64 {
	if m == nil {
		return 0
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.bound.Load() {
		return 0
	}
	return m.header.AllocatedBlocks
}

// baseAddr returns m's region base address, lock-free (spec.md §4.1's
// "resolve... does not lock"): bound and base are read through atomics
// set by bind (before m is handed out) and cleared by Destroy under mu,
// not protected by mu itself. A nil
// Manager or an unbound one reports ok=false.
func (m *Manager) baseAddr() (uintptr, bool) {
	if m == nil || !m.bound.Load() {
		return 0, false
	}
	return m.base.Load(), true
}

// offsetInUse reports whether offset names the payload of a currently
// USED chunk, for PPtr.ResolveChecked. Unlike baseAddr, this does take
// mu: it reads chunk headers out of region, which Allocate/Deallocate/
// Reallocate mutate under the same lock.
func (m *Manager) offsetInUse(offset uint64) bool {
	if m == nil {
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.bound.Load() {
		return false
	}
	if offset < layout.ChunkHeaderSize || offset >= uint64(len(m.region)) {
		return false
	}
	chunkOff := layout.HeaderOffset(offset)
	if chunkOff+layout.ChunkHeaderSize > uint64(len(m.region)) {
		return false
	}
	ch := layout.DecodeChunkHeader(m.region, chunkOff)
	return ch.State == layout.ChunkUsed
}
