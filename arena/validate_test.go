package arena_test

import (
	"encoding/binary"
	"math/rand"
	"testing"

	"github.com/heapkit/heapkit/arena"
	"github.com/heapkit/heapkit/memutils"
	"github.com/heapkit/heapkit/region"
	"github.com/stretchr/testify/require"
)

func TestValidateFreshArena(t *testing.T) {
	a := arena.New(region.Slice(4096))
	require.NoError(t, a.Validate())
	require.NoError(t, a.CheckCorruption())
}

func TestValidateDetectsMissedCoalescing(t *testing.T) {
	block := region.Slice(1024)
	a := arena.New(block)

	h1, err := a.Alloc(32)
	require.NoError(t, err)
	_, err = a.Alloc(32)
	require.NoError(t, err)
	a.Free(h1)
	require.NoError(t, a.Validate())

	// Clear the second chunk's in-use flag behind the arena's back, producing
	// two adjacent free chunks that no coalescing pass has seen.
	binary.LittleEndian.PutUint32(block[48+4:], 0)

	err = a.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "both free")
}

func TestValidateDetectsBrokenCanary(t *testing.T) {
	block := region.Slice(1024)
	a := arena.New(block)

	_, err := a.Alloc(32)
	require.NoError(t, err)

	// Stomp the second header's canary, as a caller writing past the end of
	// the first payload would.
	binary.LittleEndian.PutUint32(block[48+12:], 0xDEADBEEF)

	require.Error(t, a.Validate())
	require.Error(t, a.CheckCorruption())
}

func TestInvariantsAcrossOperationSequences(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	a := arena.New(region.Slice(1 << 16))

	var live []arena.Handle
	for i := 0; i < 2000; i++ {
		switch op := rng.Intn(4); {
		case op == 0 || len(live) == 0:
			h, err := a.Alloc(1 + rng.Intn(500))
			if err != nil {
				require.ErrorIs(t, err, memutils.ErrOutOfMemory)
			} else {
				live = append(live, h)
			}
		case op == 1:
			victim := rng.Intn(len(live))
			a.Free(live[victim])
			live = append(live[:victim], live[victim+1:]...)
		case op == 2:
			victim := rng.Intn(len(live))
			h, err := a.Realloc(live[victim], 1+rng.Intn(800))
			if err != nil {
				require.ErrorIs(t, err, memutils.ErrOutOfMemory)
			} else {
				live[victim] = h
			}
		default:
			h, err := a.Calloc(1+rng.Intn(20), 8)
			if err != nil {
				require.ErrorIs(t, err, memutils.ErrOutOfMemory)
			} else {
				live = append(live, h)
			}
		}

		require.NoError(t, a.Validate())
	}

	require.NoError(t, a.CheckCorruption())

	for _, h := range live {
		a.Free(h)
	}
	require.NoError(t, a.Validate())
	require.True(t, a.IsEmpty())
	require.Equal(t, 1, a.FreeRegionsCount())
	require.Equal(t, (1<<16)-16, a.SumFreeSize())
}
