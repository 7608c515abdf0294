package alloc

import (
	"fmt"

	"github.com/konard/netkeep80-PersistMemoryManager/layout"
)

// Problem is one invariant violation found by Validate.
type Problem struct {
	Block uint64
	Msg   string
}

// Report is the result of walking every block; OK is true iff Problems
// is empty, matching spec.md §4.5's "Returns true iff all hold".
type Report struct {
	Problems        []Problem
	FreeSize        uint64 // recomputed from the walk, for comparison against header.FreeSize
	AllocatedChunks uint64 // recomputed USED chunk count
}

func (r Report) OK() bool {
	return len(r.Problems) == 0
}

// Validate walks every block, verifying spec.md §4.5 (a)-(f): chunk sizes
// are positive and aligned, chunks sum exactly to block size, state is
// FREE or USED, the free-list forms a correct doubly-linked list in
// offset order containing exactly the FREE chunks, free-size matches,
// and allocated-block-count matches.
func Validate(region []byte, header *layout.Header) Report {
	var rpt Report

	for bi := uint64(0); bi < uint64(header.BlockCount); bi++ {
		block := readBlock(region, header, bi)
		walked := make(map[uint64]layout.ChunkHeader)

		off := block.BaseOffset
		end := block.BaseOffset + block.Size
		for off < end {
			if off+layout.ChunkHeaderSize > end {
				rpt.Problems = append(rpt.Problems, Problem{bi, fmt.Sprintf("chunk at %d has no room for a header before block end %d", off, end)})
				break
			}
			ch := layout.DecodeChunkHeader(region, off)
			if ch.Size == 0 || ch.Size%layout.Alignment != 0 {
				rpt.Problems = append(rpt.Problems, Problem{bi, fmt.Sprintf("chunk at %d has invalid size %d", off, ch.Size)})
				break
			}
			if ch.Size > end-off {
				rpt.Problems = append(rpt.Problems, Problem{bi, fmt.Sprintf("chunk at %d of size %d runs past block end %d", off, ch.Size, end)})
				break
			}
			if ch.State != layout.ChunkFree && ch.State != layout.ChunkUsed {
				rpt.Problems = append(rpt.Problems, Problem{bi, fmt.Sprintf("chunk at %d has invalid state %d", off, ch.State)})
			}
			if foot := layout.FooterBefore(region, off+ch.Size); foot != ch.Size {
				rpt.Problems = append(rpt.Problems, Problem{bi, fmt.Sprintf("chunk at %d footer mismatch: header=%d footer=%d", off, ch.Size, foot)})
			}
			walked[off] = ch
			if ch.State == layout.ChunkUsed {
				rpt.AllocatedChunks++
			}
			off += ch.Size
		}
		if off != end {
			rpt.Problems = append(rpt.Problems, Problem{bi, fmt.Sprintf("chunks sum to %d, expected block size %d", off-block.BaseOffset, block.Size)})
		}

		seen := make(map[uint64]bool)
		var freeSum uint64
		cur := block.FreeListHead
		prevOff := uint64(0)
		for cur != 0 {
			ch, known := walked[cur]
			if !known {
				rpt.Problems = append(rpt.Problems, Problem{bi, fmt.Sprintf("free list references offset %d outside the block walk", cur)})
				break
			}
			if ch.State != layout.ChunkFree {
				rpt.Problems = append(rpt.Problems, Problem{bi, fmt.Sprintf("free list references USED chunk at %d", cur)})
			}
			if ch.PrevFree != prevOff {
				rpt.Problems = append(rpt.Problems, Problem{bi, fmt.Sprintf("free chunk at %d has broken prev link", cur)})
			}
			if prevOff != 0 && cur <= prevOff {
				rpt.Problems = append(rpt.Problems, Problem{bi, fmt.Sprintf("free list out of offset order at %d", cur)})
			}
			seen[cur] = true
			freeSum += layout.PayloadCapacity(ch.Size)
			prevOff = cur
			cur = ch.NextFree
		}
		for off, ch := range walked {
			if ch.State == layout.ChunkFree && !seen[off] {
				rpt.Problems = append(rpt.Problems, Problem{bi, fmt.Sprintf("FREE chunk at %d missing from free list", off)})
			}
		}
		rpt.FreeSize += freeSum
	}

	if rpt.FreeSize != header.FreeSize {
		rpt.Problems = append(rpt.Problems, Problem{0, fmt.Sprintf("header free-size %d does not match walked free-size %d", header.FreeSize, rpt.FreeSize)})
	}
	if rpt.AllocatedChunks != header.AllocatedBlocks {
		rpt.Problems = append(rpt.Problems, Problem{0, fmt.Sprintf("header allocated-block-count %d does not match walked count %d", header.AllocatedBlocks, rpt.AllocatedChunks)})
	}

	return rpt
}
