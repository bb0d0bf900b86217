// Package format defines the on-the-wire constants shared by the codec and
// the compressed envelope: compression type tags and the envelope header
// layout.
package format

// CompressionType identifies the compression codec applied to an envelope
// payload.
type CompressionType uint8

const (
	CompressionNone CompressionType = 0x1 // CompressionNone represents no compression.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents LZ4 compression.
)

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

// Valid reports whether c is one of the defined compression types.
func (c CompressionType) Valid() bool {
	return c >= CompressionNone && c <= CompressionLZ4
}

// Envelope header layout. The envelope wraps a complete message stream:
//
//	offset 0: magic byte (EnvelopeMagic)
//	offset 1: compression type (CompressionType)
//	offset 2: payload length, uint32 little-endian (compressed size)
//	offset 6: xxHash64 of the uncompressed stream, little-endian
//	offset 14: payload
const (
	// EnvelopeMagic is the first byte of every envelope. It is outside the
	// ASCII range so an envelope can never be confused with a bare stream,
	// whose first byte is a small varint length.
	EnvelopeMagic byte = 0xE5

	// EnvelopeHeaderSize is the fixed byte size of the envelope header.
	EnvelopeHeaderSize = 1 + 1 + 4 + 8
)
