package layout

// Alignment all chunk headers and payload offsets are multiples of this.
const Alignment = 8

// MagicBytes identifies a PersistMemoryManager image. Written verbatim at
// offset 0 of every region.
const MagicBytes = "PMMIMG01"

// FormatVersion of the region header layout. Bumped on incompatible change.
const FormatVersion = uint16(1)

// HeaderSize is the fixed, Alignment-rounded size of regionHeader on disk.
const HeaderSize = 64

// BlockDescSize is the fixed size of a blockDescriptor on disk.
const BlockDescSize = 24

// ChunkHeaderSize is the fixed size of a chunkHeader on disk.
const ChunkHeaderSize = 32

// FooterSize is the trailing boundary tag written as the last 8 bytes of
// every chunk (a duplicate of its size), used to find a chunk's physical
// predecessor in O(1) during coalescing.
const FooterSize = 8

// ChunkOverhead is the total non-payload size of a chunk: header + footer.
const ChunkOverhead = ChunkHeaderSize + FooterSize

// MinChunkSize is the smallest chunk the allocator will ever create,
// overhead included. Splitting a free chunk is only worthwhile if the
// remainder is at least this big.
const MinChunkSize = ChunkOverhead + Alignment

// MinRegionSize is the smallest region create() will accept: header,
// one block descriptor and one empty free chunk spanning the block.
const MinRegionSize = HeaderSize + BlockDescSize + MinChunkSize

// chunk states.
const (
	ChunkFree = uint8(0)
	ChunkUsed = uint8(1)
)

// AlignUp rounds n up to the next multiple of Alignment.
func AlignUp(n uint64) uint64 {
	return (n + Alignment - 1) &^ (Alignment - 1)
}
