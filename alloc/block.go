package alloc

import "github.com/konard/netkeep80-PersistMemoryManager/layout"

func blockDescOffset(header *layout.Header, i uint64) uint64 {
	return header.FirstBlockDescOff + i*layout.BlockDescSize
}

func readBlock(region []byte, header *layout.Header, i uint64) layout.BlockDesc {
	return layout.DecodeBlockDesc(region, blockDescOffset(header, i))
}

func writeBlock(region []byte, header *layout.Header, i uint64, desc layout.BlockDesc) {
	layout.EncodeBlockDesc(region, blockDescOffset(header, i), desc)
}

// blockIndexFor returns the index of the block containing chunkOff. Every
// valid offset produced by this package belongs to exactly one block; an
// offset that doesn't is caller misuse (stale/foreign PPtr), which spec.md
// documents as undefined behavior, so we panic rather than guess.
func blockIndexFor(region []byte, header *layout.Header, chunkOff uint64) uint64 {
	for i := uint64(0); i < uint64(header.BlockCount); i++ {
		b := readBlock(region, header, i)
		if chunkOff >= b.BaseOffset && chunkOff < b.BaseOffset+b.Size {
			return i
		}
	}
	panic("alloc: offset does not belong to any block")
}

// chunkSizeFor returns the Alignment-rounded total chunk size (overhead
// included) needed to hold a payload of want bytes.
func chunkSizeFor(want uint64) uint64 {
	return layout.AlignUp(layout.ChunkOverhead + want)
}
