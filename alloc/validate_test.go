package alloc

import "testing"

import "github.com/konard/netkeep80-PersistMemoryManager/layout"

func TestValidateCatchesSizeMismatch(t *testing.T) {
	region, header := newRegion(t, 4096)

	block := readBlock(region, &header, 0)
	ch := layout.DecodeChunkHeader(region, block.BaseOffset)
	ch.Size -= layout.Alignment // now the chunk run no longer sums to the block size
	layout.EncodeChunkHeader(region, block.BaseOffset, ch)

	rpt := Validate(region, &header)
	if rpt.OK() {
		t.Errorf("expected Validate to catch the truncated chunk run")
	}
}

func TestValidateCatchesFreeSizeMismatch(t *testing.T) {
	region, header := newRegion(t, 4096)
	header.FreeSize += 1000 // desync the header's cached free-size from reality

	rpt := Validate(region, &header)
	if rpt.OK() {
		t.Errorf("expected Validate to catch the free-size mismatch")
	}
}

func TestValidateCatchesFooterMismatch(t *testing.T) {
	region, header := newRegion(t, 4096)

	block := readBlock(region, &header, 0)
	// A chunk starting Alignment bytes later with Alignment bytes less size
	// ends where the block's single chunk ends, so this overwrites that
	// chunk's real footer (its last 8 bytes) with a wrong size.
	layout.WriteFooter(region, block.BaseOffset+layout.Alignment, block.Size-layout.Alignment)

	rpt := Validate(region, &header)
	if rpt.OK() {
		t.Errorf("expected Validate to catch the footer/header size mismatch")
	}
}
