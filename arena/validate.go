package arena

import (
	cerrors "github.com/cockroachdb/errors"
	"github.com/pkg/errors"
)

// Validate performs internal consistency checks over the whole chunk chain.
// When the allocator is functioning correctly it cannot return an error. It
// is invoked automatically at mutation entry points under the debug_mem_utils
// build tag.
//
// It verifies that the chain is a contiguous partition of the managed block,
// that every payload size is a multiple of Alignment, that no two adjacent
// chunks are both free, that every live header carries its canary, and that
// the cached free-byte count matches a fresh recount.
func (a *Arena) Validate() error {
	var freeBytes int
	prevFree := false

	for offset := 0; offset != -1; {
		if offset+headerSize > a.size {
			return cerrors.Errorf("chunk header at offset %d extends past the managed %d bytes", offset, a.size)
		}

		c := a.readChunk(offset)

		if c.magic != headerMagic {
			return cerrors.Errorf("chunk header at offset %d has canary %#x, want %#x", offset, c.magic, headerMagic)
		}
		if c.size%Alignment != 0 {
			return cerrors.Errorf("chunk at offset %d has size %d, which is not a multiple of %d", offset, c.size, Alignment)
		}
		if c.next != -1 && c.next != c.end() {
			return cerrors.Errorf("chunk at offset %d ends at %d but its successor is at offset %d", offset, c.end(), c.next)
		}
		if c.next == -1 && c.end() != a.size {
			return cerrors.Errorf("chain ends at offset %d, but the arena manages %d bytes", c.end(), a.size)
		}

		if !c.inUse {
			if prevFree {
				return cerrors.Errorf("chunk at offset %d and its predecessor are both free; coalescing missed them", offset)
			}
			freeBytes += c.size
		}
		prevFree = !c.inUse

		offset = c.next
	}

	if freeBytes != a.avail {
		return cerrors.Errorf("cached available bytes is %d, but a fresh walk counts %d", a.avail, freeBytes)
	}

	return nil
}

// CheckCorruption sweeps every chunk header and reports an error if any canary
// has been overwritten, which indicates that a caller wrote past the end of a
// payload. It never mutates the arena.
func (a *Arena) CheckCorruption() error {
	for offset := 0; offset != -1; {
		c := a.readChunk(offset)
		if c.magic != headerMagic {
			return errors.New("MEMORY CORRUPTION DETECTED IN CHUNK HEADER!")
		}
		if c.next != -1 && (c.next <= offset || c.next+headerSize > a.size) {
			// The canary is intact but the link no longer makes sense, so stop
			// before following it anywhere dangerous.
			return errors.New("MEMORY CORRUPTION DETECTED IN CHUNK CHAIN!")
		}
		offset = c.next
	}
	return nil
}
