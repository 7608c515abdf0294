package alloc

import "github.com/konard/netkeep80-PersistMemoryManager/layout"

// Initialize lays out a fresh header + single block + single free chunk
// spanning region's full length, the way spec.md §3 "Create" describes
// it, writing directly into the caller-supplied region. Callers
// (pmm.Manager) have already checked len(region) against
// layout.MinRegionSize.
func Initialize(region []byte) layout.Header {
	regionSize := uint64(len(region))
	blockBase := uint64(layout.HeaderSize + layout.BlockDescSize)
	dynamicSize := regionSize - blockBase

	header := layout.NewHeader(regionSize, layout.PayloadCapacity(dynamicSize))

	block := layout.BlockDesc{BaseOffset: blockBase, Size: dynamicSize, FreeListHead: blockBase}
	writeBlock(region, &header, 0, block)

	chunkHdr := layout.ChunkHeader{Size: dynamicSize, State: layout.ChunkFree}
	layout.EncodeChunkHeader(region, blockBase, chunkHdr)
	layout.WriteFooter(region, blockBase, dynamicSize)

	return header
}

// Allocate services a request for want payload bytes, first-fit across
// blocks in creation order and first-fit within each block's free list.
// Returns the payload offset, or (0, false) if no free chunk anywhere
// fits — spec.md §4.2's OOM path. header is mutated in place on success.
func Allocate(region []byte, header *layout.Header, want uint64) (uint64, bool) {
	need := chunkSizeFor(want)

	for bi := uint64(0); bi < uint64(header.BlockCount); bi++ {
		block := readBlock(region, header, bi)

		cur := block.FreeListHead
		for cur != 0 {
			ch := layout.DecodeChunkHeader(region, cur)
			if ch.Size < need {
				cur = ch.NextFree
				continue
			}

			unlinkFree(region, &block, cur, ch)
			remaining := ch.Size - need
			if remaining >= layout.MinChunkSize {
				markUsed(region, cur, need)
				insertFree(region, &block, cur+need, remaining)
				header.FreeSize -= need
			} else {
				markUsed(region, cur, ch.Size)
				header.FreeSize -= layout.PayloadCapacity(ch.Size)
			}
			header.AllocatedBlocks++
			writeBlock(region, header, bi, block)
			return layout.PayloadOffset(cur), true
		}
	}
	return 0, false
}

// Deallocate marks the chunk at offset free and coalesces it with any
// immediately-adjacent free physical neighbors. offset==0 is a no-op, per
// spec.md §7 ("deallocate of a null offset is a no-op").
func Deallocate(region []byte, header *layout.Header, offset uint64) {
	if offset == 0 {
		return
	}
	chunkOff := layout.HeaderOffset(offset)
	bi := blockIndexFor(region, header, chunkOff)
	block := readBlock(region, header, bi)

	ch := layout.DecodeChunkHeader(region, chunkOff)
	size := ch.Size
	var removed uint64

	if nextOff := chunkOff + size; nextOff < block.BaseOffset+block.Size {
		nch := layout.DecodeChunkHeader(region, nextOff)
		if nch.State == layout.ChunkFree {
			unlinkFree(region, &block, nextOff, nch)
			removed += layout.PayloadCapacity(nch.Size)
			size += nch.Size
		}
	}
	if chunkOff > block.BaseOffset {
		predSize := layout.FooterBefore(region, chunkOff)
		predOff := chunkOff - predSize
		pch := layout.DecodeChunkHeader(region, predOff)
		if pch.State == layout.ChunkFree {
			unlinkFree(region, &block, predOff, pch)
			removed += layout.PayloadCapacity(pch.Size)
			size += pch.Size
			chunkOff = predOff
		}
	}

	insertFree(region, &block, chunkOff, size)
	header.FreeSize += layout.PayloadCapacity(size) - removed
	header.AllocatedBlocks--
	writeBlock(region, header, bi, block)
}

// Reallocate resizes the allocation at offset to hold newSize payload
// bytes, following spec.md §4.2's policy: null offset behaves as
// Allocate, newSize==0 behaves as Deallocate, a fit (grow or shrink)
// within capacity is served without moving, an in-place grow absorbs a
// trailing free neighbor when possible, and only then does it fall back
// to allocate+copy+free. Returns (0, false) only when the fallback
// allocation itself fails; the original allocation is left untouched in
// that case.
func Reallocate(region []byte, header *layout.Header, offset, newSize uint64) (uint64, bool) {
	if offset == 0 {
		return Allocate(region, header, newSize)
	}
	if newSize == 0 {
		Deallocate(region, header, offset)
		return 0, true
	}

	chunkOff := layout.HeaderOffset(offset)
	ch := layout.DecodeChunkHeader(region, chunkOff)
	need := chunkSizeFor(newSize)

	if need <= ch.Size {
		shrinkInPlace(region, header, chunkOff, ch.Size, need)
		return offset, true
	}

	bi := blockIndexFor(region, header, chunkOff)
	block := readBlock(region, header, bi)
	nextOff := chunkOff + ch.Size
	if nextOff < block.BaseOffset+block.Size {
		nch := layout.DecodeChunkHeader(region, nextOff)
		if nch.State == layout.ChunkFree && ch.Size+nch.Size >= need {
			unlinkFree(region, &block, nextOff, nch)
			combined := ch.Size + nch.Size
			removed := layout.PayloadCapacity(nch.Size)
			if remaining := combined - need; remaining >= layout.MinChunkSize {
				markUsed(region, chunkOff, need)
				insertFree(region, &block, chunkOff+need, remaining)
				header.FreeSize += layout.PayloadCapacity(remaining) - removed
			} else {
				markUsed(region, chunkOff, combined)
				header.FreeSize -= removed
			}
			writeBlock(region, header, bi, block)
			return offset, true
		}
	}

	newOff, ok := Allocate(region, header, newSize)
	if !ok {
		return 0, false
	}
	oldCap := layout.PayloadCapacity(ch.Size)
	copyLen := oldCap
	if newSize < copyLen {
		copyLen = newSize
	}
	copy(region[newOff:newOff+copyLen], region[offset:offset+copyLen])
	Deallocate(region, header, offset)
	return newOff, true
}

// shrinkInPlace keeps the chunk at chunkOff at offset, splitting off a
// trailing free chunk when the saved space is worth a new chunk header.
func shrinkInPlace(region []byte, header *layout.Header, chunkOff, oldSize, need uint64) {
	remaining := oldSize - need
	if remaining < layout.MinChunkSize {
		return
	}
	bi := blockIndexFor(region, header, chunkOff)
	block := readBlock(region, header, bi)
	markUsed(region, chunkOff, need)
	insertFree(region, &block, chunkOff+need, remaining)
	header.FreeSize += layout.PayloadCapacity(remaining)
	writeBlock(region, header, bi, block)
}
