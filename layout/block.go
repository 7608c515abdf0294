package layout

import "encoding/binary"

// BlockDesc describes one contiguous sub-arena of the region's dynamic
// area. Blocks never overlap and are kept in increasing BaseOffset order.
type BlockDesc struct {
	BaseOffset   uint64
	Size         uint64
	FreeListHead uint64 // offset of first free chunk's header, 0 = empty
}

// EncodeBlockDesc writes desc into region[off:off+BlockDescSize].
func EncodeBlockDesc(region []byte, off uint64, desc BlockDesc) {
	buf := region[off : off+BlockDescSize]
	binary.LittleEndian.PutUint64(buf[0:8], desc.BaseOffset)
	binary.LittleEndian.PutUint64(buf[8:16], desc.Size)
	binary.LittleEndian.PutUint64(buf[16:24], desc.FreeListHead)
}

// DecodeBlockDesc reads a BlockDesc out of region[off:off+BlockDescSize].
func DecodeBlockDesc(region []byte, off uint64) BlockDesc {
	buf := region[off : off+BlockDescSize]
	return BlockDesc{
		BaseOffset:   binary.LittleEndian.Uint64(buf[0:8]),
		Size:         binary.LittleEndian.Uint64(buf[8:16]),
		FreeListHead: binary.LittleEndian.Uint64(buf[16:24]),
	}
}
