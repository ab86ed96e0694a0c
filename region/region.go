// Package region acquires and releases the raw memory blocks that arenas
// manage. Map and Unmap go through the operating system's anonymous memory
// mapping on unix platforms and fall back to heap-backed slices elsewhere;
// Slice always allocates from the Go heap, which is the right choice for
// tests and for embedders that already own a buffer.
package region

// Slice returns a zero-initialized heap-backed region of size bytes.
func Slice(size int) []byte {
	return make([]byte, size)
}
