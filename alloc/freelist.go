package alloc

import "github.com/konard/netkeep80-PersistMemoryManager/layout"

// markUsed writes a USED chunk header (and its footer) of the given size
// at chunkOff. It does not touch the free list.
func markUsed(region []byte, chunkOff, size uint64) {
	layout.EncodeChunkHeader(region, chunkOff, layout.ChunkHeader{Size: size, State: layout.ChunkUsed})
	layout.WriteFooter(region, chunkOff, size)
}

// unlinkFree removes the chunk at chunkOff (already decoded as ch) from
// block's free list, patching its neighbors' links. It does not alter the
// chunk's own header or its state.
func unlinkFree(region []byte, block *layout.BlockDesc, chunkOff uint64, ch layout.ChunkHeader) {
	if ch.PrevFree != 0 {
		prev := layout.DecodeChunkHeader(region, ch.PrevFree)
		prev.NextFree = ch.NextFree
		layout.EncodeChunkHeader(region, ch.PrevFree, prev)
	} else {
		block.FreeListHead = ch.NextFree
	}
	if ch.NextFree != 0 {
		next := layout.DecodeChunkHeader(region, ch.NextFree)
		next.PrevFree = ch.PrevFree
		layout.EncodeChunkHeader(region, ch.NextFree, next)
	}
}

// insertFree marks the chunk at chunkOff FREE with the given size, writes
// its footer, and splices it into block's free list in offset order.
func insertFree(region []byte, block *layout.BlockDesc, chunkOff, size uint64) {
	var prevOff uint64
	cur := block.FreeListHead
	for cur != 0 && cur < chunkOff {
		prevOff = cur
		cur = layout.DecodeChunkHeader(region, cur).NextFree
	}

	hdr := layout.ChunkHeader{Size: size, State: layout.ChunkFree, PrevFree: prevOff, NextFree: cur}
	layout.EncodeChunkHeader(region, chunkOff, hdr)
	layout.WriteFooter(region, chunkOff, size)

	if prevOff != 0 {
		prev := layout.DecodeChunkHeader(region, prevOff)
		prev.NextFree = chunkOff
		layout.EncodeChunkHeader(region, prevOff, prev)
	} else {
		block.FreeListHead = chunkOff
	}
	if cur != 0 {
		next := layout.DecodeChunkHeader(region, cur)
		next.PrevFree = chunkOff
		layout.EncodeChunkHeader(region, cur, next)
	}
}
