package stream

import (
	"fmt"
	"io"

	"github.com/arloliu/gobwire/encoding"
	"github.com/arloliu/gobwire/errs"
	"github.com/arloliu/gobwire/internal/options"
	"github.com/arloliu/gobwire/internal/pool"
	"github.com/arloliu/gobwire/wire"
)

// DefaultMaxMessageSize bounds a single message's declared byte length.
// A hostile length prefix is rejected before any allocation.
const DefaultMaxMessageSize = 1 << 30 // 1GiB

// Decoder consumes length-prefixed messages from one byte stream, applying
// type-definition messages to its registry and turning value messages into
// generic Values.
//
// A Decoder owns its registry and read buffer and must not be shared across
// concurrent callers. After any error other than a clean io.EOF the Decoder
// is poisoned: the registry may hold partially applied definitions, so every
// later Decode returns the first error. Discard the instance and establish a
// new session.
type Decoder struct {
	r   io.Reader
	reg *typeRegistry
	buf *pool.ByteBuffer
	max uint64
	err error
}

// DecoderOption customizes a Decoder.
type DecoderOption = options.Option[*Decoder]

// WithMaxMessageSize overrides DefaultMaxMessageSize. A zero limit is
// rejected, since it would make every message oversized.
func WithMaxMessageSize(n uint64) DecoderOption {
	return options.New(func(d *Decoder) error {
		if n == 0 {
			return fmt.Errorf("%w: max message size must be positive", errs.ErrInvalidValue)
		}
		d.max = n

		return nil
	})
}

// NewDecoder creates a Decoder reading from r with a fresh type registry.
// An invalid option poisons the Decoder; the error surfaces on the first
// Decode call.
func NewDecoder(r io.Reader, opts ...DecoderOption) *Decoder {
	d := &Decoder{
		r:   r,
		reg: newTypeRegistry(),
		buf: pool.GetMessageBuffer(),
		max: DefaultMaxMessageSize,
	}
	if err := options.Apply(d, opts...); err != nil {
		d.err = err
	}

	return d
}

// Decode reads messages until one value message has been consumed, applying
// any type-definition messages encountered on the way, and returns the
// decoded value.
//
// When want is non-nil the value's wire type must be structurally equal to
// it, otherwise ErrTypeMismatch is returned. A nil want accepts any type.
//
// A clean end of stream between messages returns io.EOF; an end of stream
// inside a message returns ErrTruncatedStream.
func (d *Decoder) Decode(want *wire.Type) (Value, error) {
	if d.err != nil {
		return nil, d.err
	}

	for {
		body, err := d.readMessage()
		if err != nil {
			if err == io.EOF {
				return nil, io.EOF
			}

			return nil, d.poison(err)
		}

		rd := encoding.NewReader(body)
		id, err := rd.ReadInt()
		if err != nil {
			return nil, d.poison(err)
		}

		if id < 0 {
			// Type-definition message: the body defines the type bound to -id.
			if err := d.applyDefinition(wire.TypeID(-id), rd); err != nil {
				return nil, d.poison(err)
			}

			continue
		}
		if id == 0 {
			return nil, d.poison(fmt.Errorf("%w: message with type id 0", errs.ErrInvalidValue))
		}

		v, err := d.decodeBody(wire.TypeID(id), rd, want)
		if err != nil {
			return nil, d.poison(err)
		}

		return v, nil
	}
}

// Close releases the Decoder's pooled buffer. The Decoder must not be used
// afterwards.
func (d *Decoder) Close() {
	if d.buf != nil {
		pool.PutMessageBuffer(d.buf)
		d.buf = nil
	}
	if d.err == nil {
		d.err = fmt.Errorf("%w: decoder closed", errs.ErrInvalidValue)
	}
}

func (d *Decoder) poison(err error) error {
	if err != nil && d.err == nil {
		d.err = err
	}

	return err
}

// readMessage reads one length prefix and body. It reads exactly the bytes
// the message occupies. The returned slice is valid until the next call.
func (d *Decoder) readMessage() ([]byte, error) {
	n, err := encoding.ReadUintFrom(d.r)
	if err != nil {
		return nil, err
	}
	if n > d.max {
		return nil, fmt.Errorf("%w: %d bytes, limit %d", errs.ErrMessageTooLarge, n, d.max)
	}

	d.buf.Reset()
	d.buf.Grow(int(n))
	body := d.buf.B[:n]
	if _, err := io.ReadFull(d.r, body); err != nil {
		return nil, fmt.Errorf("%w: message claims %d bytes: %w", errs.ErrTruncatedStream, n, err)
	}

	return body, nil
}

// applyDefinition parses a WireType meta-struct body and binds it to id.
func (d *Decoder) applyDefinition(id wire.TypeID, rd *encoding.Reader) error {
	v, err := decodeValue(rd, metaWireType)
	if err != nil {
		return fmt.Errorf("%w: in definition of type %d", err, id)
	}
	if !rd.Empty() {
		return fmt.Errorf("%w: %d trailing bytes in definition of type %d", errs.ErrInvalidTypeDef, rd.Len(), id)
	}

	def, err := typeDefFromRecord(id, v.(Record))
	if err != nil {
		return err
	}

	return d.reg.accept(id, def)
}

// decodeBody decodes one value message body of the given type id.
func (d *Decoder) decodeBody(id wire.TypeID, rd *encoding.Reader, want *wire.Type) (Value, error) {
	typ, err := d.reg.lookup(id)
	if err != nil {
		return nil, err
	}
	if want != nil && !want.Equal(typ) {
		return nil, fmt.Errorf("%w: stream carries %s, caller wants %s", errs.ErrTypeMismatch, typ, want)
	}

	if typ.Kind != wire.Struct {
		// Top-level singletons carry one zero byte standing in for a field
		// delta, per the published format.
		delta, err := rd.ReadByte()
		if err != nil {
			return nil, err
		}
		if delta != 0 {
			return nil, fmt.Errorf("%w: illegal delta 0x%02x for singleton", errs.ErrInvalidValue, delta)
		}
	}

	v, err := decodeValue(rd, typ)
	if err != nil {
		return nil, err
	}
	if !rd.Empty() {
		return nil, fmt.Errorf("%w: %d trailing bytes in value message", errs.ErrInvalidValue, rd.Len())
	}

	return v, nil
}

// decodeValue decodes one value body of shape t.
func decodeValue(rd *encoding.Reader, t *wire.Type) (Value, error) {
	switch t.Kind {
	case wire.Bool:
		b, err := rd.ReadBool()
		if err != nil {
			return nil, err
		}

		return Bool(b), nil
	case wire.Int:
		i, err := rd.ReadInt()
		if err != nil {
			return nil, err
		}

		return Int(i), nil
	case wire.Uint:
		u, err := rd.ReadUint()
		if err != nil {
			return nil, err
		}

		return Uint(u), nil
	case wire.Float:
		f, err := rd.ReadFloat64()
		if err != nil {
			return nil, err
		}

		return Float(f), nil
	case wire.Complex:
		re, err := rd.ReadFloat64()
		if err != nil {
			return nil, err
		}
		im, err := rd.ReadFloat64()
		if err != nil {
			return nil, err
		}

		return Complex(complex(re, im)), nil
	case wire.String:
		s, err := rd.ReadString()
		if err != nil {
			return nil, err
		}

		return String(s), nil
	case wire.Bytes:
		p, err := rd.ReadBytes()
		if err != nil {
			return nil, err
		}
		// The reader aliases the reusable message buffer; decoded values
		// must survive the next message.
		return Bytes(append([]byte(nil), p...)), nil
	case wire.Array, wire.Slice:
		return decodeElements(rd, t)
	case wire.Struct:
		return decodeStruct(rd, t)
	default:
		return nil, fmt.Errorf("%w: %s", errs.ErrUnsupportedKind, t.Kind)
	}
}

// decodeElements decodes the element count then that many elements. For
// arrays the count must equal the declared length.
func decodeElements(rd *encoding.Reader, t *wire.Type) (Value, error) {
	count, err := rd.ReadUint()
	if err != nil {
		return nil, err
	}
	if t.Kind == wire.Array && count != uint64(t.Len) {
		return nil, fmt.Errorf("%w: array %s declares %d elements, message carries %d",
			errs.ErrInvalidValue, t, t.Len, count)
	}
	// Each element occupies at least one byte, so a count beyond the unread
	// remainder is malformed regardless of element type.
	if count > uint64(rd.Len()) {
		return nil, fmt.Errorf("%w: %d elements in %d remaining bytes", errs.ErrInvalidValue, count, rd.Len())
	}

	seq := make(Sequence, 0, count)
	for i := uint64(0); i < count; i++ {
		ev, err := decodeValue(rd, t.Elem)
		if err != nil {
			return nil, fmt.Errorf("%w: element %d", err, i)
		}
		seq = append(seq, ev)
	}

	return seq, nil
}

// decodeStruct decodes the sparse field list, then fills absent fields with
// their zero values.
func decodeStruct(rd *encoding.Reader, t *wire.Type) (Value, error) {
	rec := make(Record, len(t.Fields))
	prev := -1
	for {
		delta, err := rd.ReadUint()
		if err != nil {
			return nil, err
		}
		if delta == 0 {
			break
		}
		idx := prev + int(delta)
		if delta > uint64(len(t.Fields)) || idx >= len(t.Fields) {
			return nil, fmt.Errorf("%w: field delta %d lands outside struct %s", errs.ErrInvalidValue, delta, t)
		}
		f := t.Fields[idx]
		fv, err := decodeValue(rd, f.Type)
		if err != nil {
			return nil, fmt.Errorf("%w: field %q", err, f.Name)
		}
		rec[f.Name] = fv
		prev = idx
	}

	for _, f := range t.Fields {
		if _, ok := rec[f.Name]; !ok {
			rec[f.Name] = zeroValue(f.Type)
		}
	}

	return rec, nil
}
