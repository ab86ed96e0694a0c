//go:build debug_mem_utils

package arena

import (
	"fmt"

	"github.com/dolthub/swiss"
)

// handleTracker records every outstanding handle so that freeing or resizing a
// handle this arena never produced fails loudly instead of corrupting the
// chain. It only exists under the debug_mem_utils build tag; release builds
// carry the no-op version and trust the caller, per the allocator's contract.
type handleTracker struct {
	live *swiss.Map[Handle, int]
}

func (t *handleTracker) init() {
	t.live = swiss.NewMap[Handle, int](16)
}

func (t *handleTracker) add(h Handle, size int) {
	if t.live.Has(h) {
		panic(fmt.Sprintf("arena: handle %d handed out twice", h))
	}
	t.live.Put(h, size)
}

func (t *handleTracker) remove(h Handle) {
	if !t.live.Has(h) {
		panic(fmt.Sprintf("arena: freeing handle %d that this arena did not allocate", h))
	}
	t.live.Delete(h)
}
