// Package arena implements a fixed-size, single-owner memory arena with an
// explicit free list of variable-size chunks.
//
// An Arena takes a contiguous []byte block (see the region package for
// acquiring one from the operating system) and serves sub-allocations from it
// using a first-fit scan over an address-ordered chunk chain. Chunk headers
// live inline in the block, immediately before each payload, and adjacent free
// chunks are merged eagerly on every Free. Allocations are identified by typed
// Handles rather than raw pointers, and payloads are accessed through
// Arena.Bytes, so header bytes are never exposed to callers.
//
// Arenas are not safe for concurrent use; see the Arena type for the access
// discipline.
package arena
