package arena

import (
	"math"

	cerrors "github.com/cockroachdb/errors"
	"github.com/heapkit/heapkit/memutils"
)

// Arena is a fixed-size first-fit allocator over a caller-supplied block of
// memory. The block is subdivided into a chain of chunks ordered by ascending
// offset, each one a 16-byte header followed by its payload. All allocator
// state except the cached free-byte count lives inline in the block itself.
//
// An Arena is not safe for concurrent use. Every method mutates or reads the
// chunk chain without locking, so access from multiple goroutines must be
// serialized externally, or each goroutine must be given its own Arena.
type Arena struct {
	buf  []byte
	size int // number of managed bytes; the chain always partitions buf[:size]

	// avail caches the sum of payload sizes over free chunks. It is recomputed
	// from a full chain walk after every mutation rather than adjusted
	// incrementally; Validate cross-checks it against the chain.
	avail int

	tracker handleTracker
}

var _ memutils.Validatable = (*Arena)(nil)

// New wraps block in a ready-to-use Arena holding a single free chunk that
// spans the whole block. The block must be large enough to hold at least one
// chunk header and no larger than 4 GiB; New panics otherwise. The caller
// retains ownership of the block's lifetime but must not touch its contents
// directly while the Arena is in use.
func New(block []byte) *Arena {
	a := &Arena{}
	a.Init(block)
	return a
}

// Init resets the Arena onto block, discarding any previous state. It installs
// a single free chunk covering everything past the first header. If the block
// length is not a multiple of Alignment the trailing remainder is left
// unmanaged.
func (a *Arena) Init(block []byte) {
	memutils.DebugCheckPow2(uint(Alignment), "Alignment")

	if len(block) < headerSize {
		panic("arena: block is too small to hold a chunk header")
	}
	if len(block) > math.MaxUint32 {
		panic("arena: block exceeds the 4 GiB chunk addressing limit")
	}

	initialSize := memutils.AlignDown(len(block)-headerSize, Alignment)

	a.buf = block
	a.size = headerSize + initialSize
	a.tracker.init()
	a.writeChunk(chunk{
		offset: 0,
		size:   initialSize,
		inUse:  false,
		next:   -1,
	})
	a.avail = initialSize
}

// Alloc hands out a payload of at least size bytes, rounded up to the next
// multiple of Alignment. The chain is scanned in offset order and the first
// free chunk large enough is taken. When the chosen chunk has enough surplus
// to host another header plus one alignment unit it is split, with the
// residual staying free; otherwise the whole chunk is handed out and the extra
// capacity is internal fragmentation.
//
// Alloc returns an error wrapping memutils.ErrOutOfMemory when no free chunk
// can satisfy the request. The arena is not modified on failure and remains
// usable.
func (a *Arena) Alloc(size int) (Handle, error) {
	memutils.DebugValidate(a)

	if size <= 0 {
		return NilHandle, cerrors.Errorf("allocation size must be greater than 0, not %d", size)
	}

	aligned := memutils.AlignUp(size, Alignment)
	if aligned < size {
		// Rounding up wrapped around.
		return NilHandle, cerrors.Wrapf(memutils.ErrOutOfMemory, "requested %d bytes", size)
	}

	for offset := 0; offset != -1; {
		c := a.readChunk(offset)
		if c.inUse || c.size < aligned {
			offset = c.next
			continue
		}

		if c.size >= aligned+headerSize+Alignment {
			// Enough surplus to carve out a usable residual chunk after the
			// payload we hand out.
			residual := chunk{
				offset: c.offset + headerSize + aligned,
				size:   c.size - aligned - headerSize,
				inUse:  false,
				next:   c.next,
			}
			a.writeChunk(residual)

			c.size = aligned
			c.next = residual.offset
		}

		c.inUse = true
		a.writeChunk(c)
		a.avail = a.computeFreeBytes()

		h := Handle(c.payload())
		a.tracker.add(h, c.size)

		memutils.DebugValidate(a)
		return h, nil
	}

	return NilHandle, cerrors.Wrapf(memutils.ErrOutOfMemory, "no free chunk of at least %d bytes", aligned)
}

// Free returns the allocation behind h to the arena. Freeing NilHandle is a
// no-op. After the chunk is marked free, one forward pass merges every run of
// adjacent free chunks into a single chunk, so no two neighbors are ever both
// free once Free returns. Handles not produced by this arena's Alloc, Realloc
// or Calloc are a contract violation with undefined results.
func (a *Arena) Free(h Handle) {
	if h == NilHandle {
		return
	}
	memutils.DebugValidate(a)
	a.tracker.remove(h)

	c := a.readChunk(int(h) - headerSize)
	c.inUse = false
	a.writeChunk(c)

	// Coalesce. After a merge the same position is examined again, so a run of
	// three or more free chunks collapses into one in a single pass.
	for offset := 0; offset != -1; {
		cur := a.readChunk(offset)
		if !cur.inUse && cur.next != -1 {
			next := a.readChunk(cur.next)
			if !next.inUse {
				cur.size += headerSize + next.size
				cur.next = next.next
				a.writeChunk(cur)
				continue
			}
		}
		offset = cur.next
	}

	a.avail = a.computeFreeBytes()
	memutils.DebugValidate(a)
}

// SizeOf reports the payload capacity behind h, which may exceed the size
// originally requested. It reads the chunk header directly and never walks the
// chain. SizeOf of NilHandle is 0.
func (a *Arena) SizeOf(h Handle) int {
	if h == NilHandle {
		return 0
	}
	return a.readChunk(int(h) - headerSize).size
}

// Bytes returns the payload behind h as a slice of length and capacity
// SizeOf(h). The slice aliases the arena's backing block; it is valid until
// the allocation is freed or resized.
func (a *Arena) Bytes(h Handle) []byte {
	c := a.readChunk(int(h) - headerSize)
	return a.buf[c.payload():c.end():c.end()]
}

// Size returns the number of bytes the arena manages, including chunk headers.
func (a *Arena) Size() int {
	return a.size
}

// SumFreeSize returns the cached number of payload bytes currently free. It is
// always equal to the freshly recomputed sum over free chunks.
func (a *Arena) SumFreeSize() int {
	return a.avail
}

// AllocationCount walks the chain and returns the number of live allocations.
func (a *Arena) AllocationCount() int {
	var count int
	for offset := 0; offset != -1; {
		c := a.readChunk(offset)
		if c.inUse {
			count++
		}
		offset = c.next
	}
	return count
}

// FreeRegionsCount walks the chain and returns the number of free chunks.
// Because coalescing is exhaustive, this is also the number of maximal free
// regions.
func (a *Arena) FreeRegionsCount() int {
	var count int
	for offset := 0; offset != -1; {
		c := a.readChunk(offset)
		if !c.inUse {
			count++
		}
		offset = c.next
	}
	return count
}

// IsEmpty returns true when the arena has no live allocations.
func (a *Arena) IsEmpty() bool {
	return a.AllocationCount() == 0
}

// Clear instantly frees every allocation, resetting the arena to a single free
// chunk. Outstanding handles become invalid.
func (a *Arena) Clear() {
	a.tracker.init()
	a.writeChunk(chunk{
		offset: 0,
		size:   a.size - headerSize,
		inUse:  false,
		next:   -1,
	})
	a.avail = a.size - headerSize
}

// VisitAllChunks calls visit once per chunk in offset order, passing the
// handle its payload would have, the header offset, the payload size, and
// whether the chunk is free. Visiting stops at the first error, which is
// returned. The chain must not be mutated from inside visit.
func (a *Arena) VisitAllChunks(visit func(h Handle, offset, size int, free bool) error) error {
	for offset := 0; offset != -1; {
		c := a.readChunk(offset)
		err := visit(Handle(c.payload()), c.offset, c.size, !c.inUse)
		if err != nil {
			return err
		}
		offset = c.next
	}
	return nil
}

func (a *Arena) computeFreeBytes() int {
	var free int
	for offset := 0; offset != -1; {
		c := a.readChunk(offset)
		if !c.inUse {
			free += c.size
		}
		offset = c.next
	}
	return free
}
