package compress

// ZstdCompressor provides Zstandard compression for encoded streams.
//
// Zstd gives the best compression ratio of the supported algorithms and is
// the right choice when streams are stored or shipped over constrained
// links and decompression happens less often than encoding.
//
// The implementation is selected at build time: a cgo binding to libzstd
// when cgo is available, and a pure Go implementation otherwise. Frames
// produced by either are readable by both.
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a new Zstd codec with default settings.
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}
