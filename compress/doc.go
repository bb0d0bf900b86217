// Package compress provides compression and decompression codecs for
// encoded message streams.
//
// A serialized stream already removes most structural redundancy (zero
// fields are omitted, integers use a variable-length encoding), but streams
// carrying many values of the same type still repeat field deltas and small
// integer patterns that general-purpose compressors handle well. Compression
// is applied to the complete stream, after encoding, and recorded in the
// envelope header so the decoder can pick the matching codec.
//
// # Supported Algorithms
//
//   - None: no compression, data passes through unchanged
//   - Zstd: best compression ratio, moderate speed
//   - S2: balanced compression and speed
//   - LZ4: fastest decompression, moderate compression
//
// The Zstd codec has two implementations selected at build time: a cgo
// binding (valyala/gozstd) when cgo is available, and a pure Go fallback
// (klauspost/compress/zstd) otherwise. Both produce interoperable frames.
//
// # Usage
//
//	codec, err := compress.GetCodec(format.CompressionZstd)
//	if err != nil {
//	    return err
//	}
//	compressed, err := codec.Compress(stream)
//
// All built-in codecs are stateless values and safe for concurrent use.
package compress
