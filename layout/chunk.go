package layout

import "encoding/binary"

// ChunkHeader is prepended to every user allocation and every free chunk.
// Size includes the header itself. The payload begins immediately after
// the header, at an Alignment-aligned offset.
type ChunkHeader struct {
	Size     uint64
	State    uint8
	NextFree uint64
	PrevFree uint64
}

// EncodeChunkHeader writes hdr at region[off:off+ChunkHeaderSize].
func EncodeChunkHeader(region []byte, off uint64, hdr ChunkHeader) {
	buf := region[off : off+ChunkHeaderSize]
	binary.LittleEndian.PutUint64(buf[0:8], hdr.Size)
	buf[8] = hdr.State
	// buf[9:16] is padding, left zero.
	binary.LittleEndian.PutUint64(buf[16:24], hdr.NextFree)
	binary.LittleEndian.PutUint64(buf[24:32], hdr.PrevFree)
}

// DecodeChunkHeader reads a ChunkHeader out of region[off:off+ChunkHeaderSize].
func DecodeChunkHeader(region []byte, off uint64) ChunkHeader {
	buf := region[off : off+ChunkHeaderSize]
	return ChunkHeader{
		Size:     binary.LittleEndian.Uint64(buf[0:8]),
		State:    buf[8],
		NextFree: binary.LittleEndian.Uint64(buf[16:24]),
		PrevFree: binary.LittleEndian.Uint64(buf[24:32]),
	}
}

// WriteFooter writes the trailing boundary tag for a chunk of the given
// size starting at chunkOff: a duplicate of size, in its last 8 bytes.
func WriteFooter(region []byte, chunkOff, size uint64) {
	binary.LittleEndian.PutUint64(region[chunkOff+size-FooterSize:chunkOff+size], size)
}

// FooterBefore reads the footer (i.e. the size of the physical
// predecessor chunk) immediately preceding chunkOff, if chunkOff is not
// the first chunk in its block. Callers must check bounds first.
func FooterBefore(region []byte, chunkOff uint64) uint64 {
	return binary.LittleEndian.Uint64(region[chunkOff-FooterSize : chunkOff])
}

// PayloadOffset returns the offset of the user payload for a chunk whose
// header starts at chunkOff.
func PayloadOffset(chunkOff uint64) uint64 {
	return chunkOff + ChunkHeaderSize
}

// HeaderOffset recovers a chunk's header offset from a payload offset.
func HeaderOffset(payloadOff uint64) uint64 {
	return payloadOff - ChunkHeaderSize
}

// PayloadCapacity returns the number of bytes usable by the caller in a
// chunk of the given total size.
func PayloadCapacity(chunkSize uint64) uint64 {
	return chunkSize - ChunkOverhead
}
