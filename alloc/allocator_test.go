package alloc

import "testing"

import "github.com/konard/netkeep80-PersistMemoryManager/layout"

func newRegion(t *testing.T, size uint64) ([]byte, layout.Header) {
	t.Helper()
	region := make([]byte, size)
	header := Initialize(region)
	return region, header
}

func TestInitializeLayout(t *testing.T) {
	region, header := newRegion(t, 4096)
	if header.BlockCount != 1 {
		t.Errorf("expected 1 block, got %v", header.BlockCount)
	}
	if header.AllocatedBlocks != 0 {
		t.Errorf("expected 0 allocated blocks, got %v", header.AllocatedBlocks)
	}
	if rpt := Validate(region, &header); !rpt.OK() {
		t.Errorf("fresh region fails validation: %+v", rpt.Problems)
	}
}

func TestAllocateDeallocateRoundtrip(t *testing.T) {
	region, header := newRegion(t, 4096)
	freeBefore := header.FreeSize

	off, ok := Allocate(region, &header, 100)
	if !ok {
		t.Fatalf("allocate(100) failed on a fresh 4096-byte region")
	}
	if off == 0 {
		t.Errorf("allocate returned the null offset")
	}
	if header.AllocatedBlocks != 1 {
		t.Errorf("expected 1 allocated block, got %v", header.AllocatedBlocks)
	}
	if header.FreeSize >= freeBefore {
		t.Errorf("expected free size to shrink, was %v now %v", freeBefore, header.FreeSize)
	}

	Deallocate(region, &header, off)
	if header.AllocatedBlocks != 0 {
		t.Errorf("expected 0 allocated blocks after deallocate, got %v", header.AllocatedBlocks)
	}
	if header.FreeSize != freeBefore {
		t.Errorf("expected free size to return to %v, got %v", freeBefore, header.FreeSize)
	}
	if rpt := Validate(region, &header); !rpt.OK() {
		t.Errorf("region fails validation after round trip: %+v", rpt.Problems)
	}
}

func TestDeallocateNullIsNoop(t *testing.T) {
	region, header := newRegion(t, 4096)
	before := header
	Deallocate(region, &header, 0)
	if header != before {
		t.Errorf("expected header unchanged after deallocating null, got %+v want %+v", header, before)
	}
}

func TestAllocateExhaustsAndReportsOOM(t *testing.T) {
	region, header := newRegion(t, 4096)
	var offs []uint64
	for {
		off, ok := Allocate(region, &header, 64)
		if !ok {
			break
		}
		offs = append(offs, off)
	}
	if len(offs) == 0 {
		t.Fatalf("expected at least one allocation to succeed before OOM")
	}
	if rpt := Validate(region, &header); !rpt.OK() {
		t.Errorf("region fails validation once full: %+v", rpt.Problems)
	}
	if _, ok := Allocate(region, &header, 1<<30); ok {
		t.Errorf("expected an oversized allocation on a full region to fail")
	}
}

func TestCoalesceAdjacentFreeChunks(t *testing.T) {
	region, header := newRegion(t, 4096)
	freeBefore := header.FreeSize

	a, ok := Allocate(region, &header, 64)
	if !ok {
		t.Fatalf("allocate a failed")
	}
	b, ok := Allocate(region, &header, 64)
	if !ok {
		t.Fatalf("allocate b failed")
	}
	c, ok := Allocate(region, &header, 64)
	if !ok {
		t.Fatalf("allocate c failed")
	}

	// Free the middle, then the edges, exercising both forward and
	// backward coalescing paths.
	Deallocate(region, &header, b)
	Deallocate(region, &header, a)
	Deallocate(region, &header, c)

	if header.FreeSize != freeBefore {
		t.Errorf("expected free size to fully recover to %v, got %v", freeBefore, header.FreeSize)
	}
	if rpt := Validate(region, &header); !rpt.OK() {
		t.Errorf("region fails validation after coalescing: %+v", rpt.Problems)
	}

	// A single allocation the size of the whole freed run should now
	// succeed without OOM, proving the chunks actually merged into one.
	if _, ok := Allocate(region, &header, freeBefore-8); !ok {
		t.Errorf("expected a near-full allocation to succeed after full coalescing")
	}
}

func TestReallocateNullIsAllocate(t *testing.T) {
	region, header := newRegion(t, 4096)
	off, ok := Reallocate(region, &header, 0, 64)
	if !ok {
		t.Fatalf("reallocate(0, 64) failed")
	}
	if off == 0 {
		t.Errorf("expected a non-null offset")
	}
}

func TestReallocateZeroIsDeallocate(t *testing.T) {
	region, header := newRegion(t, 4096)
	freeBefore := header.FreeSize
	off, _ := Allocate(region, &header, 64)

	if _, ok := Reallocate(region, &header, off, 0); !ok {
		t.Fatalf("reallocate(off, 0) reported failure")
	}
	if header.FreeSize != freeBefore {
		t.Errorf("expected free size to recover to %v, got %v", freeBefore, header.FreeSize)
	}
}

func TestReallocateShrinkThenGrowBack(t *testing.T) {
	region, header := newRegion(t, 4096)
	off, ok := Allocate(region, &header, 256)
	if !ok {
		t.Fatalf("allocate(256) failed")
	}

	shrunk, ok := Reallocate(region, &header, off, 32)
	if !ok {
		t.Fatalf("shrink reallocate failed")
	}
	if shrunk != off {
		t.Errorf("expected shrink-in-place to keep the same offset")
	}
	if rpt := Validate(region, &header); !rpt.OK() {
		t.Errorf("region fails validation after shrink: %+v", rpt.Problems)
	}

	grown, ok := Reallocate(region, &header, shrunk, 200)
	if !ok {
		t.Fatalf("grow reallocate failed")
	}
	if grown != off {
		t.Errorf("expected grow-in-place (absorbing the just-freed tail) to keep the same offset, got %v want %v", grown, off)
	}
}

func TestReallocateMoveWhenNoRoomToGrow(t *testing.T) {
	region, header := newRegion(t, 4096)
	_, ok := Allocate(region, &header, 64)
	if !ok {
		t.Fatalf("allocate a failed")
	}
	b, ok := Allocate(region, &header, 64)
	if !ok {
		t.Fatalf("allocate b failed")
	}
	c, ok := Allocate(region, &header, 64)
	if !ok {
		t.Fatalf("allocate c failed")
	}
	_ = c // keeps the chunk right after b USED, forcing growth to move

	payload := []byte("0123456789abcdef")
	copy(region[b:], payload)

	moved, ok := Reallocate(region, &header, b, 256)
	if !ok {
		t.Fatalf("reallocate-move failed unexpectedly")
	}
	if moved == b {
		t.Errorf("expected the allocation to move, since its physical neighbor (c) is still live")
	}
	if got := string(region[moved : moved+uint64(len(payload))]); got != string(payload) {
		t.Errorf("payload not preserved across move: got %q", got)
	}
}
