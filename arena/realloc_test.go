package arena_test

import (
	"math"
	"testing"

	"github.com/heapkit/heapkit/arena"
	"github.com/heapkit/heapkit/memutils"
	"github.com/heapkit/heapkit/region"
	"github.com/stretchr/testify/require"
)

func TestReallocNilHandleBehavesLikeAlloc(t *testing.T) {
	a := arena.New(region.Slice(1024))

	h, err := a.Realloc(arena.NilHandle, 100)
	require.NoError(t, err)
	require.NoError(t, a.Validate())
	require.Equal(t, 104, a.SizeOf(h))
	require.Equal(t, 1, a.AllocationCount())
}

func TestReallocZeroSizeFrees(t *testing.T) {
	a := arena.New(region.Slice(1024))

	h, err := a.Alloc(100)
	require.NoError(t, err)

	got, err := a.Realloc(h, 0)
	require.NoError(t, err)
	require.Equal(t, arena.NilHandle, got)
	require.NoError(t, a.Validate())
	require.True(t, a.IsEmpty())
	require.Equal(t, 1008, a.SumFreeSize())
}

func TestReallocInPlaceWhenCapacitySuffices(t *testing.T) {
	a := arena.New(region.Slice(1024))

	h, err := a.Alloc(100)
	require.NoError(t, err)
	require.Equal(t, 104, a.SizeOf(h))

	// Growing within the rounded-up capacity keeps the handle.
	grown, err := a.Realloc(h, 104)
	require.NoError(t, err)
	require.Equal(t, h, grown)

	// Shrinking never gives capacity back.
	shrunk, err := a.Realloc(h, 8)
	require.NoError(t, err)
	require.Equal(t, h, shrunk)
	require.Equal(t, 104, a.SizeOf(h))
	require.NoError(t, a.Validate())

	// Negative sizes are rejected and leave the allocation alone.
	_, err = a.Realloc(h, -1)
	require.Error(t, err)
	require.Equal(t, 104, a.SizeOf(h))
	require.NoError(t, a.Validate())
}

func TestReallocMovePreservesData(t *testing.T) {
	a := arena.New(region.Slice(1024))

	h, err := a.Alloc(64)
	require.NoError(t, err)

	payload := a.Bytes(h)
	for i := range payload {
		payload[i] = byte(i * 3)
	}

	moved, err := a.Realloc(h, 200)
	require.NoError(t, err)
	require.NoError(t, a.Validate())
	require.NotEqual(t, h, moved)
	require.Equal(t, 200, a.SizeOf(moved))

	movedPayload := a.Bytes(moved)
	for i := 0; i < 64; i++ {
		require.Equal(t, byte(i*3), movedPayload[i])
	}

	// The old chunk went back to the free list.
	require.Equal(t, 1, a.AllocationCount())
	require.Equal(t, 64+712, a.SumFreeSize())
}

func TestReallocOutOfMemoryKeepsOriginal(t *testing.T) {
	a := arena.New(region.Slice(256))

	h, err := a.Alloc(240)
	require.NoError(t, err)

	payload := a.Bytes(h)
	for i := range payload {
		payload[i] = byte(i)
	}

	got, err := a.Realloc(h, 400)
	require.ErrorIs(t, err, memutils.ErrOutOfMemory)
	require.Equal(t, arena.NilHandle, got)

	// The original allocation survives the failure untouched.
	require.NoError(t, a.Validate())
	require.Equal(t, 240, a.SizeOf(h))
	for i, b := range a.Bytes(h) {
		require.Equal(t, byte(i), b)
	}
}

func TestCallocZeroFills(t *testing.T) {
	a := arena.New(region.Slice(512))

	// Dirty a chunk, free it, then calloc over the same bytes.
	h, err := a.Alloc(64)
	require.NoError(t, err)
	payload := a.Bytes(h)
	for i := range payload {
		payload[i] = 0xAA
	}
	a.Free(h)

	zeroed, err := a.Calloc(8, 8)
	require.NoError(t, err)
	require.NoError(t, a.Validate())
	require.Equal(t, h, zeroed)

	for _, b := range a.Bytes(zeroed) {
		require.Zero(t, b)
	}
}

func TestCallocZeroFillsExactTotal(t *testing.T) {
	a := arena.New(region.Slice(512))

	h, err := a.Calloc(3, 5)
	require.NoError(t, err)

	// 15 bytes requested, 16 granted; only the requested 15 are guaranteed
	// zero.
	require.Equal(t, 16, a.SizeOf(h))
	for _, b := range a.Bytes(h)[:15] {
		require.Zero(t, b)
	}
}

func TestCallocOverflowGuard(t *testing.T) {
	a := arena.New(region.Slice(512))

	_, err := a.Calloc(math.MaxInt, 2)
	require.ErrorIs(t, err, memutils.ErrOverflow)

	_, err = a.Calloc(math.MaxInt, math.MaxInt)
	require.ErrorIs(t, err, memutils.ErrOverflow)

	_, err = a.Calloc(-1, 8)
	require.ErrorIs(t, err, memutils.ErrOverflow)

	// The guard fires before any allocation is attempted.
	require.NoError(t, a.Validate())
	require.True(t, a.IsEmpty())
	require.Equal(t, 496, a.SumFreeSize())
}

func TestCallocOutOfMemory(t *testing.T) {
	a := arena.New(region.Slice(256))

	_, err := a.Calloc(100, 100)
	require.ErrorIs(t, err, memutils.ErrOutOfMemory)
	require.NoError(t, a.Validate())
}
