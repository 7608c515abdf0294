package pmm

import "os"
import "path/filepath"
import "sync"
import "testing"

import "github.com/stretchr/testify/assert"
import "github.com/stretchr/testify/require"

func TestCreateRejectsUndersizedRegion(t *testing.T) {
	_, err := Create(make([]byte, 8), DefaultSettings())
	assert.ErrorIs(t, err, ErrInvalidRegion)
}

func TestCreateRejectsNilRegion(t *testing.T) {
	_, err := Create(nil, DefaultSettings())
	assert.ErrorIs(t, err, ErrInvalidRegion)
}

func TestCreateRejectsMisalignedLength(t *testing.T) {
	// Large enough to clear MinRegionSize, but not a multiple of
	// layout.Alignment: would otherwise hand alloc.Initialize a dynamic
	// area whose Size is itself unaligned.
	_, err := Create(make([]byte, 1<<16+3), DefaultSettings())
	assert.ErrorIs(t, err, ErrInvalidRegion)
}

func TestOnlyOneManagerBoundAtATime(t *testing.T) {
	m := newTestManager(t, 1<<16)

	_, err := Create(make([]byte, 1<<16), DefaultSettings())
	assert.ErrorIs(t, err, ErrAlreadyBound)

	m.Destroy()
	m2, err := Create(make([]byte, 1<<16), DefaultSettings())
	require.NoError(t, err)
	m2.Destroy()
}

func TestDestroyIsIdempotent(t *testing.T) {
	m := newTestManager(t, 1<<16)
	m.Destroy()
	m.Destroy() // must not panic or double-free the singleton slot

	_, err := m.Allocate(8)
	assert.ErrorIs(t, err, ErrUnbound)
}

func TestDestroyOnNilManagerIsNoop(t *testing.T) {
	var m *Manager
	m.Destroy()
}

func TestLoadRejectsForeignBuffer(t *testing.T) {
	garbage := make([]byte, 1<<16)
	for i := range garbage {
		garbage[i] = 0xAA
	}
	_, err := Load(garbage, DefaultSettings())
	assert.ErrorIs(t, err, ErrImageMismatch)
}

func TestLoadRejectsSizeMismatch(t *testing.T) {
	region := make([]byte, 1<<16)
	m, err := Create(region, DefaultSettings())
	require.NoError(t, err)
	m.Destroy()

	shorter := make([]byte, len(region)-8)
	copy(shorter, region)
	_, err = Load(shorter, DefaultSettings())
	assert.ErrorIs(t, err, ErrImageMismatch)
}

func TestSaveAndLoadFromFileRoundtrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "image.pmm")

	region := make([]byte, 1<<16)
	m, err := Create(region, DefaultSettings())
	require.NoError(t, err)

	p, err := AllocateTyped[record](m, 1)
	require.NoError(t, err)
	p.Resolve(m).A = 55
	require.NoError(t, m.Save(path))
	m.Destroy()

	loaded := make([]byte, 1<<16)
	m2, err := LoadFromFile(path, loaded, DefaultSettings())
	require.NoError(t, err)
	t.Cleanup(m2.Destroy)

	p2 := PPtrFromOffset[record](p.Offset())
	require.NotNil(t, p2.Resolve(m2))
	assert.Equal(t, int64(55), p2.Resolve(m2).A)
}

func TestSaveAndLoadFromFileRoundtripWithChecksumDisabled(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nochecksum.pmm")
	settings := Settings{ChecksumEnabled: false}

	region := make([]byte, 1<<16)
	m, err := Create(region, settings)
	require.NoError(t, err)

	_, err = AllocateTyped[record](m, 1)
	require.NoError(t, err)
	_, err = AllocateTyped[record](m, 1)
	require.NoError(t, err)
	freeBefore := m.FreeSize()
	blocksBefore := m.AllocatedBlocks()

	require.NoError(t, m.Save(path))
	m.Destroy()

	loaded := make([]byte, 1<<16)
	m2, err := LoadFromFile(path, loaded, settings)
	require.NoError(t, err)
	t.Cleanup(m2.Destroy)

	assert.True(t, m2.Validate(), "reloaded region must validate even with checksums disabled")
	assert.Equal(t, freeBefore, m2.FreeSize())
	assert.Equal(t, blocksBefore, m2.AllocatedBlocks())
}

func TestLoadFromFileRejectsTruncatedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "short.pmm")
	require.NoError(t, os.WriteFile(path, make([]byte, 8), 0644))

	_, err := LoadFromFile(path, make([]byte, 1<<16), DefaultSettings())
	assert.ErrorIs(t, err, ErrImageMismatch)
}

func TestValidateReflectsManagerState(t *testing.T) {
	m := newTestManager(t, 1<<16)
	assert.True(t, m.Validate())

	_, err := AllocateTyped[record](m, 1)
	require.NoError(t, err)
	assert.True(t, m.Validate())

	var unbound *Manager
	assert.False(t, unbound.Validate())
}

func TestFreeSizeRegionSizeAllocatedBlocks(t *testing.T) {
	m := newTestManager(t, 1<<16)
	regionSize := m.RegionSize()
	freeBefore := m.FreeSize()

	_, err := AllocateTyped[record](m, 1)
	require.NoError(t, err)

	assert.Equal(t, regionSize, m.RegionSize())
	assert.Less(t, m.FreeSize(), freeBefore)
	assert.Equal(t, uint64(1), m.AllocatedBlocks())
}

func TestDiagnosticReportSummarizesCleanRegion(t *testing.T) {
	m := newTestManager(t, 1<<16)
	lines := m.DiagnosticReport()
	require.Len(t, lines, 1, "a clean region should report only the summary line")
	assert.Contains(t, lines[0], "free=")
}

func TestConcurrentAllocateDeallocate(t *testing.T) {
	m := newTestManager(t, 1<<20)

	const n = 64
	var wg sync.WaitGroup
	offsets := make([]uint64, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			off, err := m.Allocate(128)
			require.NoError(t, err)
			offsets[i] = off
		}(i)
	}
	wg.Wait()

	seen := make(map[uint64]bool, n)
	for _, off := range offsets {
		assert.False(t, seen[off], "two goroutines received the same offset")
		seen[off] = true
	}
	assert.True(t, m.Validate())

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m.Deallocate(offsets[i])
		}(i)
	}
	wg.Wait()
	assert.True(t, m.Validate())
	assert.Equal(t, uint64(0), m.AllocatedBlocks())
}
