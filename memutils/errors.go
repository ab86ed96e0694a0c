package memutils

import "github.com/pkg/errors"

// ErrNotPowerOfTwo is the error returned from CheckPow2 or other methods if the number
// being tested is not a power of two
var ErrNotPowerOfTwo error = errors.New("number must be a power of two")

// ErrOutOfMemory is returned from allocating methods when no free region large enough
// to satisfy the request exists in the managed memory. The memory itself remains valid
// and usable after this error is returned.
var ErrOutOfMemory error = errors.New("out of memory")

// ErrOverflow is returned from counted allocating methods when the element count
// multiplied by the element size does not fit in the size type. It is detected before
// any allocation is attempted.
var ErrOverflow error = errors.New("allocation size overflows")
