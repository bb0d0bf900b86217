package stream

import (
	"fmt"
	"io"

	"github.com/arloliu/gobwire/encoding"
	"github.com/arloliu/gobwire/errs"
	"github.com/arloliu/gobwire/internal/pool"
	"github.com/arloliu/gobwire/wire"
)

// Encoder serializes values onto one byte stream as length-prefixed
// messages. The first time a composite shape is encoded in a session, the
// Encoder emits type-definition messages for it and its children,
// depth-first, before the value message.
//
// An Encoder owns its type registry and message buffer and must not be
// shared across concurrent callers. After a write error the Encoder is
// poisoned and every later Encode returns the same error; discard it and
// establish a new session.
type Encoder struct {
	w   io.Writer
	reg *typeRegistry
	buf *pool.ByteBuffer
	err error
}

// NewEncoder creates an Encoder writing to w with a fresh type registry.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{
		w:   w,
		reg: newTypeRegistry(),
		buf: pool.GetMessageBuffer(),
	}
}

// Encode writes one value of shape t, preceded by any type-definition
// messages the session still needs. A nil t is accepted for scalar values,
// whose shape is implied by the Value kind; sequences and records always
// need an explicit shape.
//
// Output is deterministic: byte-identical for the same value, shape and
// registry state.
func (e *Encoder) Encode(v Value, t *wire.Type) error {
	if e.err != nil {
		return e.err
	}
	if v == nil {
		return fmt.Errorf("%w: nil value", errs.ErrTypeMismatch)
	}
	if t == nil {
		var err error
		if t, err = inferType(v); err != nil {
			return err
		}
	}

	id, err := e.defineType(t)
	if err != nil {
		return e.poison(err)
	}

	e.buf.Reset()
	encoding.WriteInt(e.buf, int64(id))
	if t.Kind != wire.Struct {
		// Top-level singletons carry one zero byte standing in for a field
		// delta, per the published format.
		_ = e.buf.WriteByte(0)
	}
	if err := encodeValue(e.buf, v, t); err != nil {
		return e.poison(err)
	}

	return e.poison(e.writeMessage())
}

// Close releases the Encoder's pooled buffer. The Encoder must not be used
// afterwards.
func (e *Encoder) Close() {
	if e.buf != nil {
		pool.PutMessageBuffer(e.buf)
		e.buf = nil
	}
	if e.err == nil {
		e.err = fmt.Errorf("%w: encoder closed", errs.ErrInvalidValue)
	}
}

func (e *Encoder) poison(err error) error {
	if err != nil && e.err == nil {
		e.err = err
	}

	return err
}

// defineType resolves t to its session id, minting the id and emitting
// definition messages for t and its composite children on first use.
// Children are defined before the parent; a recursive reference back to a
// shape already being defined reuses the reserved id without re-emitting.
func (e *Encoder) defineType(t *wire.Type) (wire.TypeID, error) {
	if id, ok := t.BuiltinID(); ok {
		return id, nil
	}
	if id, ok := e.reg.findID(t); ok {
		return id, nil
	}
	if err := t.Validate(); err != nil {
		return 0, err
	}

	// Reserve the id before walking children so self-reference terminates.
	id, _ := e.reg.register(t)

	// Only declared names travel; synthesized display names (WireName) stay
	// local. encoding/gob likewise sends empty names for unnamed composites.
	def := &typeDef{kind: t.Kind, name: t.Name, len: t.Len}
	switch t.Kind {
	case wire.Array, wire.Slice:
		elemID, err := e.defineType(t.Elem)
		if err != nil {
			return 0, err
		}
		def.elem = elemID
	case wire.Struct:
		def.fields = make([]fieldDef, 0, len(t.Fields))
		for _, f := range t.Fields {
			fieldID, err := e.defineType(f.Type)
			if err != nil {
				return 0, err
			}
			def.fields = append(def.fields, fieldDef{name: f.Name, id: fieldID})
		}
	default:
		return 0, fmt.Errorf("%w: cannot define %s", errs.ErrUnsupportedKind, t.Kind)
	}

	e.buf.Reset()
	encoding.WriteInt(e.buf, int64(-id))
	if err := encodeValue(e.buf, def.record(id), metaWireType); err != nil {
		return 0, err
	}
	if err := e.writeMessage(); err != nil {
		return 0, err
	}

	return id, nil
}

// writeMessage frames the buffered body with its varint byte length and
// writes both to the underlying stream.
func (e *Encoder) writeMessage() error {
	var scratch [encoding.MaxUintBytes]byte
	prefix := encoding.AppendUint(scratch[:0], uint64(e.buf.Len()))
	if _, err := e.w.Write(prefix); err != nil {
		return fmt.Errorf("writing message length: %w", err)
	}
	if _, err := e.buf.WriteTo(e.w); err != nil {
		return fmt.Errorf("writing message body: %w", err)
	}

	return nil
}

// inferType maps a scalar value to its builtin shape.
func inferType(v Value) (*wire.Type, error) {
	switch v.(type) {
	case Bool:
		return wire.BoolType, nil
	case Int:
		return wire.IntType, nil
	case Uint:
		return wire.UintType, nil
	case Float:
		return wire.FloatType, nil
	case Complex:
		return wire.ComplexType, nil
	case String:
		return wire.StringType, nil
	case Bytes:
		return wire.BytesType, nil
	default:
		return nil, fmt.Errorf("%w: %s values need an explicit shape", errs.ErrTypeMismatch, v.Kind())
	}
}

// encodeValue appends the body encoding of v as shape t.
func encodeValue(buf *pool.ByteBuffer, v Value, t *wire.Type) error {
	switch t.Kind {
	case wire.Bool:
		b, ok := v.(Bool)
		if !ok {
			return mismatch(v, t)
		}
		encoding.WriteBool(buf, bool(b))
	case wire.Int:
		i, ok := v.(Int)
		if !ok {
			return mismatch(v, t)
		}
		encoding.WriteInt(buf, int64(i))
	case wire.Uint:
		u, ok := v.(Uint)
		if !ok {
			return mismatch(v, t)
		}
		encoding.WriteUint(buf, uint64(u))
	case wire.Float:
		f, ok := v.(Float)
		if !ok {
			return mismatch(v, t)
		}
		encoding.WriteFloat64(buf, float64(f))
	case wire.Complex:
		c, ok := v.(Complex)
		if !ok {
			return mismatch(v, t)
		}
		encoding.WriteFloat64(buf, real(complex128(c)))
		encoding.WriteFloat64(buf, imag(complex128(c)))
	case wire.String:
		s, ok := v.(String)
		if !ok {
			return mismatch(v, t)
		}
		encoding.WriteString(buf, string(s))
	case wire.Bytes:
		p, ok := v.(Bytes)
		if !ok {
			return mismatch(v, t)
		}
		encoding.WriteBytes(buf, p)
	case wire.Array:
		seq, ok := v.(Sequence)
		if !ok {
			return mismatch(v, t)
		}
		if len(seq) != t.Len {
			return fmt.Errorf("%w: array %s wants %d elements, value has %d",
				errs.ErrTypeMismatch, t, t.Len, len(seq))
		}

		return encodeElements(buf, seq, t.Elem)
	case wire.Slice:
		seq, ok := v.(Sequence)
		if !ok {
			return mismatch(v, t)
		}

		return encodeElements(buf, seq, t.Elem)
	case wire.Struct:
		rec, ok := v.(Record)
		if !ok {
			return mismatch(v, t)
		}

		return encodeStruct(buf, rec, t)
	default:
		return fmt.Errorf("%w: %s", errs.ErrUnsupportedKind, t.Kind)
	}

	return nil
}

// encodeElements writes the element count then each element in order.
// Arrays carry their count too; the decoder checks it against the type.
func encodeElements(buf *pool.ByteBuffer, seq Sequence, elem *wire.Type) error {
	encoding.WriteUint(buf, uint64(len(seq)))
	for i, ev := range seq {
		if ev == nil {
			ev = zeroValue(elem)
		}
		if err := encodeValue(buf, ev, elem); err != nil {
			return fmt.Errorf("%w: element %d", err, i)
		}
	}

	return nil
}

// encodeStruct writes the sparse field list: for each field not equal to its
// shape's zero value, in ascending index order, the index delta from the
// previously written field (starting from -1) then the field body,
// terminated by a zero delta.
func encodeStruct(buf *pool.ByteBuffer, rec Record, t *wire.Type) error {
	for name := range rec {
		if !t.HasField(name) {
			return fmt.Errorf("%w: struct %s has no field %q", errs.ErrTypeMismatch, t, name)
		}
	}

	prev := -1
	for i, f := range t.Fields {
		fv, present := rec[f.Name]
		if !present || fv == nil || isZeroForWire(f.Type, fv) {
			continue
		}
		encoding.WriteUint(buf, uint64(i-prev))
		if err := encodeValue(buf, fv, f.Type); err != nil {
			return fmt.Errorf("%w: field %q", err, f.Name)
		}
		prev = i
	}
	encoding.WriteUint(buf, 0)

	return nil
}

// isZeroForWire reports whether v encodes as the zero value of shape t. The
// test follows the published format's omission rules, which are shape-driven:
// a slice or byte string is zero only when empty, an array when every element
// is zero, a struct when every field is. A non-empty slice of zeros is NOT
// zero and must travel, or the receiver would see nil.
func isZeroForWire(t *wire.Type, v Value) bool {
	switch t.Kind {
	case wire.Slice:
		seq, ok := v.(Sequence)
		return ok && len(seq) == 0
	case wire.Array:
		seq, ok := v.(Sequence)
		if !ok {
			return false
		}
		for _, e := range seq {
			// A nil element encodes as the element type's zero value.
			if e != nil && !isZeroForWire(t.Elem, e) {
				return false
			}
		}

		return true
	case wire.Struct:
		rec, ok := v.(Record)
		if !ok {
			return false
		}
		for _, f := range t.Fields {
			if fv := rec[f.Name]; fv != nil && !isZeroForWire(f.Type, fv) {
				return false
			}
		}

		return true
	default:
		return v.IsZero()
	}
}

func mismatch(v Value, t *wire.Type) error {
	return fmt.Errorf("%w: cannot encode %s value as %s", errs.ErrTypeMismatch, v.Kind(), t)
}
