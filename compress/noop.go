package compress

// NoOpCompressor provides a no-operation codec that passes data through
// without compression.
//
// This codec is useful for:
//   - Testing and benchmarking scenarios measuring overhead without compression
//   - Streams that are too small for compression to pay off
//   - Data that is already compressed or incompressible
type NoOpCompressor struct{}

var _ Codec = (*NoOpCompressor)(nil)

// NewNoOpCompressor creates a new no-operation codec.
func NewNoOpCompressor() NoOpCompressor {
	return NoOpCompressor{}
}

// Compress returns the input data as-is without copying.
//
// The returned slice shares the same underlying memory as the input.
// Callers should not modify the input data after calling this method if
// they plan to use the returned slice.
func (c NoOpCompressor) Compress(data []byte) ([]byte, error) {
	return data, nil
}

// Decompress returns the input data as-is without copying.
//
// The returned slice shares the same underlying memory as the input.
// Callers should not modify the input data after calling this method if
// they plan to use the returned slice.
func (c NoOpCompressor) Decompress(data []byte) ([]byte, error) {
	return data, nil
}
