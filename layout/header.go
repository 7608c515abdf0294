package layout

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// Header is the region header, always at offset 0 of the region. All
// multi-byte integers are little-endian, matching spec.md's wire format.
type Header struct {
	Magic             [8]byte
	Version           uint16
	HeaderSize        uint16
	RegionSize        uint64
	FreeSize          uint64
	AllocatedBlocks   uint64
	BlockCount        uint32
	FirstBlockDescOff uint64
	Checksum          uint64
}

// NewHeader builds a header for a freshly created region of regionSize
// bytes with a single block of freeSize free bytes.
func NewHeader(regionSize, freeSize uint64) Header {
	h := Header{
		Version:           FormatVersion,
		HeaderSize:        HeaderSize,
		RegionSize:        regionSize,
		FreeSize:          freeSize,
		AllocatedBlocks:   0,
		BlockCount:        1,
		FirstBlockDescOff: HeaderSize,
	}
	copy(h.Magic[:], MagicBytes)
	return h
}

// Encode writes the header, checksum included, into region[0:HeaderSize].
func (h *Header) Encode(region []byte) {
	h.Checksum = h.checksumOf(region)
	h.encodeInto(region)
}

// EncodeFields writes every header field without recomputing the
// checksum: h.Checksum is left as it is and written back to the region's
// checksum slot unchanged. Callers
// that run with checksum maintenance disabled still need FreeSize and
// AllocatedBlocks persisted after every mutation; this is the cheap
// path for that, skipping the xxhash pass Encode would otherwise do.
func (h *Header) EncodeFields(region []byte) {
	h.encodeInto(region)
}

// encodeInto writes the header fields without recomputing the checksum;
// used both by Encode (after computing it) and by checksumOf (with a
// zeroed checksum field) to avoid a second buffer allocation.
func (h *Header) encodeInto(region []byte) {
	buf := region[:HeaderSize]
	copy(buf[0:8], h.Magic[:])
	binary.LittleEndian.PutUint16(buf[8:10], h.Version)
	binary.LittleEndian.PutUint16(buf[10:12], h.HeaderSize)
	binary.LittleEndian.PutUint64(buf[12:20], h.RegionSize)
	binary.LittleEndian.PutUint64(buf[20:28], h.FreeSize)
	binary.LittleEndian.PutUint64(buf[28:36], h.AllocatedBlocks)
	binary.LittleEndian.PutUint32(buf[36:40], h.BlockCount)
	binary.LittleEndian.PutUint64(buf[40:48], h.FirstBlockDescOff)
	binary.LittleEndian.PutUint64(buf[48:56], h.Checksum)
}

// checksumOf computes the xxhash64 of the header bytes with the checksum
// field zeroed, so Encode/Decode round-trip regardless of what Checksum
// held beforehand. The region's checksum slot is set back to h.Checksum
// afterwards, so ChecksumOK leaves a loaded image's stored checksum intact.
func (h *Header) checksumOf(region []byte) uint64 {
	saved := h.Checksum
	h.Checksum = 0
	h.encodeInto(region)
	sum := xxhash.Sum64(region[:HeaderSize])
	h.Checksum = saved
	binary.LittleEndian.PutUint64(region[48:56], saved)
	return sum
}

// DecodeHeader reads a header out of region[0:HeaderSize]. ok is false if
// region is too small to contain a header at all (caller should treat
// that as ErrInvalidRegion, not ErrImageMismatch).
func DecodeHeader(region []byte) (h Header, ok bool) {
	if len(region) < HeaderSize {
		return Header{}, false
	}
	buf := region[:HeaderSize]
	copy(h.Magic[:], buf[0:8])
	h.Version = binary.LittleEndian.Uint16(buf[8:10])
	h.HeaderSize = binary.LittleEndian.Uint16(buf[10:12])
	h.RegionSize = binary.LittleEndian.Uint64(buf[12:20])
	h.FreeSize = binary.LittleEndian.Uint64(buf[20:28])
	h.AllocatedBlocks = binary.LittleEndian.Uint64(buf[28:36])
	h.BlockCount = binary.LittleEndian.Uint32(buf[36:40])
	h.FirstBlockDescOff = binary.LittleEndian.Uint64(buf[40:48])
	h.Checksum = binary.LittleEndian.Uint64(buf[48:56])
	return h, true
}

// MagicOK reports whether h.Magic matches MagicBytes.
func (h *Header) MagicOK() bool {
	return string(h.Magic[:]) == MagicBytes
}

// ChecksumOK recomputes the checksum over region and compares it against
// the stored one. Called after DecodeHeader, before trusting the region.
func (h *Header) ChecksumOK(region []byte) bool {
	return h.checksumOf(region) == h.Checksum
}
