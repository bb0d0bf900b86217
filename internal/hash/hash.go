package hash

import "github.com/cespare/xxhash/v2"

// Sum64String computes the xxHash64 of the given string.
//
// The type registry uses it to fingerprint canonical type signatures, and the
// compressed envelope uses Sum64 over the raw stream as an integrity check.
func Sum64String(data string) uint64 {
	return xxhash.Sum64String(data)
}

// Sum64 computes the xxHash64 of the given bytes.
func Sum64(data []byte) uint64 {
	return xxhash.Sum64(data)
}
