// Package format houses the low-level layout helpers shared by the heap
// allocator: alignment arithmetic and little-endian field codecs for the
// in-place free-region headers. The goal is to keep this layer focused and
// allocation-free so the hot allocator paths stay cheap.
package format

import "encoding/binary"

// Free-region header layout (little-endian), occupying the first alignment
// granule of every free span:
//
//	Offset  Size  Description
//	0x00    4     Total region length in bytes, multiple of the granule.
//	0x04    4     Offset of the next free region, or the end-of-list sentinel.
const (
	// HeaderSize is the number of bytes of a free-region header. The
	// alignment granule must be at least this large so the header always
	// fits inside the region it describes.
	HeaderSize = 8

	// headerNextField is the byte offset of the next-offset field.
	headerNextField = 4
)

// PutU32 writes a uint32 value to the buffer at the specified offset in
// little-endian format.
//
// Implementation note: encoding/binary.LittleEndian is already compiled to
// single moves on little-endian hosts; unsafe variants measured no faster.
func PutU32(b []byte, off int, v uint32) {
	binary.LittleEndian.PutUint32(b[off:off+4], v)
}

// ReadU32 reads a uint32 value from the buffer at the specified offset in
// little-endian format.
func ReadU32(b []byte, off int) uint32 {
	return binary.LittleEndian.Uint32(b[off : off+4])
}

// PutRegionHeader writes a free-region header at off.
func PutRegionHeader(b []byte, off int, size, next uint32) {
	PutU32(b, off, size)
	PutU32(b, off+headerNextField, next)
}

// RegionSize reads the size field of the free-region header at off.
func RegionSize(b []byte, off int) uint32 {
	return ReadU32(b, off)
}

// RegionNext reads the next-offset field of the free-region header at off.
func RegionNext(b []byte, off int) uint32 {
	return ReadU32(b, off+headerNextField)
}

// SetRegionSize rewrites only the size field of the header at off.
func SetRegionSize(b []byte, off int, size uint32) {
	PutU32(b, off, size)
}

// SetRegionNext rewrites only the next-offset field of the header at off.
func SetRegionNext(b []byte, off int, next uint32) {
	PutU32(b, off+headerNextField, next)
}
