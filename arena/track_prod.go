//go:build !debug_mem_utils

package arena

// handleTracker is a no-op in release builds. The debug_mem_utils build tag
// swaps in a version that tracks outstanding handles and panics on misuse.
type handleTracker struct{}

func (handleTracker) init() {}

func (handleTracker) add(h Handle, size int) {}

func (handleTracker) remove(h Handle) {}
