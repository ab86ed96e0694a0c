package arena

import "encoding/binary"

const (
	// Alignment is the boundary every payload size is rounded up to.
	Alignment = 8
	// headerSize is the number of bytes each chunk header occupies inside the
	// arena, immediately before the chunk's payload. It is a multiple of
	// Alignment so that payloads stay aligned.
	headerSize = 16
)

// Byte offsets of the header fields within a chunk header.
const (
	fieldSize  = 0  // uint32 payload size in bytes, always a multiple of Alignment
	fieldFlags = 4  // uint32 flag bits
	fieldNext  = 8  // uint32 offset of the successor header, nextNone for the last chunk
	fieldMagic = 12 // uint32 canary, always headerMagic while the header is live
)

const (
	flagInUse uint32 = 1 << 0

	nextNone uint32 = ^uint32(0)

	headerMagic uint32 = 0x48504b31
)

// Handle identifies a single allocation within an Arena. It is the offset of
// the allocation's payload within the arena's backing block, so recovering the
// chunk header from it is pointer arithmetic rather than a lookup. Handles are
// only meaningful to the Arena that returned them.
type Handle int

// NilHandle is the zero Handle. No allocation can have a payload at offset 0
// (the first chunk header lives there), so it is unambiguous.
const NilHandle Handle = 0

// chunk is a decoded view of one inline chunk header. Mutations are staged on
// the view and written back with writeChunk.
type chunk struct {
	offset int // offset of the header within the backing block
	size   int // payload size in bytes
	inUse  bool
	next   int // header offset of the successor, -1 if this is the last chunk
	magic  uint32
}

// payload returns the offset of the first payload byte.
func (c chunk) payload() int {
	return c.offset + headerSize
}

// end returns the offset one past the last payload byte, which is also the
// header offset of the successor chunk when one exists.
func (c chunk) end() int {
	return c.offset + headerSize + c.size
}

func (a *Arena) readChunk(offset int) chunk {
	h := a.buf[offset : offset+headerSize]

	next := -1
	if rawNext := binary.LittleEndian.Uint32(h[fieldNext:]); rawNext != nextNone {
		next = int(rawNext)
	}

	return chunk{
		offset: offset,
		size:   int(binary.LittleEndian.Uint32(h[fieldSize:])),
		inUse:  binary.LittleEndian.Uint32(h[fieldFlags:])&flagInUse != 0,
		next:   next,
		magic:  binary.LittleEndian.Uint32(h[fieldMagic:]),
	}
}

func (a *Arena) writeChunk(c chunk) {
	h := a.buf[c.offset : c.offset+headerSize]

	binary.LittleEndian.PutUint32(h[fieldSize:], uint32(c.size))

	var flags uint32
	if c.inUse {
		flags |= flagInUse
	}
	binary.LittleEndian.PutUint32(h[fieldFlags:], flags)

	next := nextNone
	if c.next >= 0 {
		next = uint32(c.next)
	}
	binary.LittleEndian.PutUint32(h[fieldNext:], next)

	binary.LittleEndian.PutUint32(h[fieldMagic:], headerMagic)
}
