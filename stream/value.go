package stream

import "github.com/arloliu/gobwire/wire"

// Value is a generic decoded value: the codec's view of data, mirroring the
// wire kinds. Encoders consume Values alongside a wire.Type shape; decoders
// produce them. Hydration into concrete caller types is a thin external
// mapping over this set.
type Value interface {
	// Kind returns the wire kind this value belongs to.
	Kind() wire.Kind

	// IsZero reports whether the value equals its kind's intrinsic zero.
	// Struct-field omission on the wire is decided against the field's
	// declared shape, not this method alone: a non-empty slice of zero
	// elements is not a zero slice.
	IsZero() bool
}

type (
	// Bool is a boolean value.
	Bool bool
	// Int is a signed integer value.
	Int int64
	// Uint is an unsigned integer value.
	Uint uint64
	// Float is a 64-bit floating point value.
	Float float64
	// Complex is a 128-bit complex value, encoded as two floats.
	Complex complex128
	// String is a string value.
	String string
	// Bytes is a raw byte sequence value.
	Bytes []byte
	// Sequence is an ordered list of element values, backing both fixed
	// arrays and variable-length slices.
	Sequence []Value
	// Record is a struct value: a mapping from field name to field value.
	// Absent fields are zero-valued; the empty Record is the zero struct.
	Record map[string]Value
)

func (Bool) Kind() wire.Kind     { return wire.Bool }
func (Int) Kind() wire.Kind      { return wire.Int }
func (Uint) Kind() wire.Kind     { return wire.Uint }
func (Float) Kind() wire.Kind    { return wire.Float }
func (Complex) Kind() wire.Kind  { return wire.Complex }
func (String) Kind() wire.Kind   { return wire.String }
func (Bytes) Kind() wire.Kind    { return wire.Bytes }
func (Sequence) Kind() wire.Kind { return wire.Slice }
func (Record) Kind() wire.Kind   { return wire.Struct }

func (v Bool) IsZero() bool    { return !bool(v) }
func (v Int) IsZero() bool     { return v == 0 }
func (v Uint) IsZero() bool    { return v == 0 }
func (v Float) IsZero() bool   { return v == 0 }
func (v Complex) IsZero() bool { return v == 0 }
func (v String) IsZero() bool  { return v == "" }
func (v Bytes) IsZero() bool   { return len(v) == 0 }

// IsZero reports whether every element is zero; the empty sequence is zero.
// This is the fixed-array rule. Slice-shaped values are zero only when empty,
// which the encoder decides from the declared shape.
func (v Sequence) IsZero() bool {
	for _, e := range v {
		if e == nil || !e.IsZero() {
			return false
		}
	}

	return true
}

// IsZero reports whether every present field is zero; absent fields are
// zero by definition, so the empty Record is the zero struct.
func (v Record) IsZero() bool {
	for _, e := range v {
		if e == nil || !e.IsZero() {
			return false
		}
	}

	return true
}

// zeroValue returns the zero Value of type t. Recursive struct types bottom
// out at the empty Record, which is the zero struct by definition.
func zeroValue(t *wire.Type) Value {
	return zeroValueSeen(t, make(map[*wire.Type]bool))
}

func zeroValueSeen(t *wire.Type, seen map[*wire.Type]bool) Value {
	switch t.Kind {
	case wire.Bool:
		return Bool(false)
	case wire.Int:
		return Int(0)
	case wire.Uint:
		return Uint(0)
	case wire.Float:
		return Float(0)
	case wire.Complex:
		return Complex(0)
	case wire.String:
		return String("")
	case wire.Bytes:
		return Bytes(nil)
	case wire.Slice:
		return Sequence(nil)
	case wire.Array:
		seq := make(Sequence, t.Len)
		for i := range seq {
			seq[i] = zeroValueSeen(t.Elem, seen)
		}

		return seq
	case wire.Struct:
		if seen[t] {
			return Record{}
		}
		seen[t] = true
		rec := make(Record, len(t.Fields))
		for _, f := range t.Fields {
			rec[f.Name] = zeroValueSeen(f.Type, seen)
		}
		delete(seen, t)

		return rec
	default:
		return nil
	}
}
