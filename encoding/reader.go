package encoding

import (
	"fmt"
	"math"
	"math/bits"

	"github.com/arloliu/gobwire/errs"
)

// Reader decodes primitive values from a byte slice, advancing through it
// with strict bounds checking. It is the decode-side twin of the Write
// functions and operates on one already-framed message body at a time.
//
// A Reader does not copy its input; returned byte slices alias the input
// buffer unless documented otherwise.
type Reader struct {
	data []byte
	pos  int
}

// NewReader creates a Reader over data.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Len returns the number of unread bytes.
func (r *Reader) Len() int {
	return len(r.data) - r.pos
}

// Pos returns the number of bytes consumed so far.
func (r *Reader) Pos() int {
	return r.pos
}

// Empty reports whether every byte has been consumed.
func (r *Reader) Empty() bool {
	return r.pos >= len(r.data)
}

// ReadByte returns the next raw byte.
func (r *Reader) ReadByte() (byte, error) {
	if r.pos >= len(r.data) {
		return 0, fmt.Errorf("%w: at offset %d", errs.ErrTruncatedStream, r.pos)
	}
	b := r.data[r.pos]
	r.pos++

	return b, nil
}

// ReadUint decodes one variable-length unsigned integer.
func (r *Reader) ReadUint() (uint64, error) {
	b, err := r.ReadByte()
	if err != nil {
		return 0, err
	}
	if b <= 0x7f {
		return uint64(b), nil
	}

	n := 0x100 - int(b)
	if n > uint64Size {
		return 0, fmt.Errorf("%w: length byte 0x%02x claims %d bytes", errs.ErrInvalidLength, b, n)
	}
	if r.Len() < n {
		return 0, fmt.Errorf("%w: varint needs %d bytes, %d remain", errs.ErrTruncatedStream, n, r.Len())
	}

	var v uint64
	for _, c := range r.data[r.pos : r.pos+n] {
		v = v<<8 | uint64(c)
	}
	r.pos += n

	return v, nil
}

// ReadInt decodes one variable-length signed integer.
func (r *Reader) ReadInt() (int64, error) {
	u, err := r.ReadUint()
	if err != nil {
		return 0, err
	}

	return unfoldInt(u), nil
}

// ReadBool decodes one boolean. Any non-zero encoding is true.
func (r *Reader) ReadBool() (bool, error) {
	u, err := r.ReadUint()
	if err != nil {
		return false, err
	}

	return u != 0, nil
}

// ReadFloat64 decodes one byte-reversed IEEE-754 float.
func (r *Reader) ReadFloat64() (float64, error) {
	u, err := r.ReadUint()
	if err != nil {
		return 0, err
	}

	return math.Float64frombits(bits.ReverseBytes64(u)), nil
}

// ReadBytes decodes one length-prefixed byte string. The returned slice
// aliases the Reader's input.
func (r *Reader) ReadBytes() ([]byte, error) {
	n, err := r.readLength()
	if err != nil {
		return nil, err
	}
	p := r.data[r.pos : r.pos+n]
	r.pos += n

	return p, nil
}

// ReadString decodes one length-prefixed string.
func (r *Reader) ReadString() (string, error) {
	p, err := r.ReadBytes()
	if err != nil {
		return "", err
	}

	return string(p), nil
}

// readLength decodes a length prefix and validates it against the unread
// remainder, so a hostile prefix cannot drive an out-of-range slice.
func (r *Reader) readLength() (int, error) {
	u, err := r.ReadUint()
	if err != nil {
		return 0, err
	}
	if u > uint64(r.Len()) {
		return 0, fmt.Errorf("%w: length %d exceeds %d remaining bytes", errs.ErrTruncatedStream, u, r.Len())
	}

	return int(u), nil
}
