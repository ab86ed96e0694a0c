//go:build !unix

package region

// Map returns a heap-backed region on platforms without anonymous memory
// mapping support.
func Map(size int) ([]byte, error) {
	return make([]byte, size), nil
}

// Unmap releases a block acquired with Map. Heap-backed regions are reclaimed
// by the garbage collector, so this is a no-op.
func Unmap(block []byte) error {
	return nil
}
