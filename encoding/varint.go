package encoding

import (
	"fmt"
	"io"
	"math"
	"math/bits"

	"github.com/arloliu/gobwire/errs"
	"github.com/arloliu/gobwire/internal/pool"
)

const (
	uint64Size = 8

	// MaxUintBytes is the worst-case encoded size of a 64-bit integer:
	// one length byte plus eight value bytes.
	MaxUintBytes = uint64Size + 1
)

// WriteUint appends the variable-length encoding of v to buf.
//
// Values below 128 occupy a single byte. Larger values occupy one length
// byte (256 minus the byte count) followed by the minimal big-endian
// representation, at most MaxUintBytes in total.
func WriteUint(buf *pool.ByteBuffer, v uint64) {
	if v <= 0x7f {
		_ = buf.WriteByte(byte(v))
		return
	}

	var scratch [uint64Size]byte
	i := uint64Size
	for v > 0 {
		i--
		scratch[i] = byte(v)
		v >>= 8
	}
	_ = buf.WriteByte(byte(i - uint64Size)) // 256 - byteCount, mod 256
	buf.MustWrite(scratch[i:])
}

// AppendUint appends the variable-length encoding of v to dst and returns
// the extended slice. It is the slice-based twin of WriteUint, used for
// message length prefixes written ahead of a pooled body buffer.
func AppendUint(dst []byte, v uint64) []byte {
	if v <= 0x7f {
		return append(dst, byte(v))
	}

	var scratch [uint64Size]byte
	i := uint64Size
	for v > 0 {
		i--
		scratch[i] = byte(v)
		v >>= 8
	}
	dst = append(dst, byte(i-uint64Size))

	return append(dst, scratch[i:]...)
}

// WriteInt appends the variable-length encoding of i to buf.
//
// The sign is folded into the low bit: non-negative i encodes as i<<1,
// negative i as ^i<<1|1, so -1 and 1 are both single-byte values.
func WriteInt(buf *pool.ByteBuffer, i int64) {
	WriteUint(buf, foldInt(i))
}

// WriteBool appends the encoding of b to buf: 1 for true, 0 for false,
// using the unsigned integer codec.
func WriteBool(buf *pool.ByteBuffer, b bool) {
	if b {
		_ = buf.WriteByte(1)
	} else {
		_ = buf.WriteByte(0)
	}
}

// WriteFloat64 appends the encoding of f to buf: the IEEE-754 bit pattern,
// byte-reversed, encoded as an unsigned integer. The reversal moves the
// exponent to the low bytes so common values encode short.
func WriteFloat64(buf *pool.ByteBuffer, f float64) {
	WriteUint(buf, bits.ReverseBytes64(math.Float64bits(f)))
}

// WriteBytes appends the length-prefixed encoding of p to buf.
func WriteBytes(buf *pool.ByteBuffer, p []byte) {
	WriteUint(buf, uint64(len(p)))
	buf.MustWrite(p)
}

// WriteString appends the length-prefixed encoding of s to buf.
func WriteString(buf *pool.ByteBuffer, s string) {
	WriteUint(buf, uint64(len(s)))
	buf.WriteString(s)
}

// foldInt maps a signed integer onto the unsigned codec.
func foldInt(i int64) uint64 {
	if i < 0 {
		return (^uint64(i) << 1) | 1
	}

	return uint64(i) << 1
}

// unfoldInt is the inverse of foldInt.
func unfoldInt(u uint64) int64 {
	i := int64(u >> 1)
	if u&1 != 0 {
		i = ^i
	}

	return i
}

// ReadUintFrom decodes one variable-length unsigned integer directly from r.
//
// It reads exactly the bytes the encoding occupies, never ahead, so it is
// safe for reading the length prefix of a framed message from a shared
// stream. A clean end of stream before the first byte returns io.EOF; an end
// of stream inside the encoding returns ErrTruncatedStream.
func ReadUintFrom(r io.Reader) (uint64, error) {
	var scratch [uint64Size]byte

	if _, err := io.ReadFull(r, scratch[:1]); err != nil {
		if err == io.EOF {
			return 0, io.EOF
		}

		return 0, fmt.Errorf("%w: reading varint: %w", errs.ErrTruncatedStream, err)
	}

	b := scratch[0]
	if b <= 0x7f {
		return uint64(b), nil
	}

	n := 0x100 - int(b)
	if n > uint64Size {
		return 0, fmt.Errorf("%w: length byte 0x%02x claims %d bytes", errs.ErrInvalidLength, b, n)
	}
	if _, err := io.ReadFull(r, scratch[:n]); err != nil {
		return 0, fmt.Errorf("%w: varint needs %d more bytes: %w", errs.ErrTruncatedStream, n, err)
	}

	var v uint64
	for _, c := range scratch[:n] {
		v = v<<8 | uint64(c)
	}

	return v, nil
}
