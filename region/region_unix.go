//go:build unix

package region

import (
	cerrors "github.com/cockroachdb/errors"
	"golang.org/x/sys/unix"
)

// Map acquires a private, anonymous, zero-initialized mapping of size bytes
// from the operating system with read/write access.
func Map(size int) ([]byte, error) {
	block, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, cerrors.Wrapf(err, "mapping %d anonymous bytes", size)
	}
	return block, nil
}

// Unmap returns a block acquired with Map to the operating system. The block,
// and any arena built on it, must not be used afterward.
func Unmap(block []byte) error {
	err := unix.Munmap(block)
	if err != nil {
		return cerrors.Wrapf(err, "unmapping %d bytes", len(block))
	}
	return nil
}
