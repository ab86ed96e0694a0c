package arena

import (
	"math"
	"math/bits"

	cerrors "github.com/cockroachdb/errors"
	"github.com/heapkit/heapkit/memutils"
)

// Realloc resizes the allocation behind h to at least size bytes.
//
// Realloc(NilHandle, size) behaves exactly like Alloc(size), and
// Realloc(h, 0) behaves exactly like Free(h), returning NilHandle. When the
// chunk behind h already has enough capacity, h is returned unchanged; excess
// capacity is never given back. Otherwise a new chunk is taken from this same
// arena, the old payload is copied into it, and the old chunk is freed.
//
// On an out-of-memory failure the allocation behind h is left intact and still
// owned by the caller.
func (a *Arena) Realloc(h Handle, size int) (Handle, error) {
	if h == NilHandle {
		return a.Alloc(size)
	}
	if size == 0 {
		a.Free(h)
		return NilHandle, nil
	}

	aligned := memutils.AlignUp(size, Alignment)
	c := a.readChunk(int(h) - headerSize)
	if size > 0 && aligned >= size && c.size >= aligned {
		return h, nil
	}

	moved, err := a.Alloc(size)
	if err != nil {
		return NilHandle, err
	}
	copy(a.Bytes(moved), a.buf[c.payload():c.end()])
	a.Free(h)
	return moved, nil
}

// Calloc allocates room for count elements of elemSize bytes each and
// zero-fills exactly count*elemSize bytes of the payload before returning it.
// It returns an error wrapping memutils.ErrOverflow, without touching the
// arena, when the total does not fit in the size type.
func (a *Arena) Calloc(count, elemSize int) (Handle, error) {
	if count < 0 || elemSize < 0 {
		return NilHandle, cerrors.Wrapf(memutils.ErrOverflow, "%d elements of %d bytes", count, elemSize)
	}

	hi, lo := bits.Mul64(uint64(count), uint64(elemSize))
	if hi != 0 || lo > math.MaxInt {
		return NilHandle, cerrors.Wrapf(memutils.ErrOverflow, "%d elements of %d bytes", count, elemSize)
	}
	total := int(lo)

	h, err := a.Alloc(total)
	if err != nil {
		return NilHandle, err
	}

	payload := a.Bytes(h)[:total]
	for i := range payload {
		payload[i] = 0
	}
	return h, nil
}
