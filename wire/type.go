// Package wire models the type layer of the stream: the closed set of wire
// kinds, the published builtin type-id table, and the Type shape tree callers
// use to describe values to the codec.
//
// A Type is a plain tree (or, for recursive structs, a graph) built from the
// scalar singletons and the ArrayOf, SliceOf and StructOf constructors:
//
//	point := wire.StructOf("Point",
//	    wire.F("X", wire.IntType),
//	    wire.F("Y", wire.IntType),
//	)
//
// Shapes carry no type ids. Ids are session state, assigned per stream by the
// encoder's registry and accepted from the wire by the decoder's registry.
package wire

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/arloliu/gobwire/errs"
)

// TypeID identifies a type within one stream's registry. Positive in value
// message headers and lookups, negated in definition message headers.
type TypeID int64

// Builtin type ids, fixed by the published format. Both ends of a stream
// agree on them without any definition messages.
const (
	BoolID    TypeID = 1
	IntID     TypeID = 2
	UintID    TypeID = 3
	FloatID   TypeID = 4
	BytesID   TypeID = 5
	StringID  TypeID = 6
	ComplexID TypeID = 7

	// Meta type ids describe the bodies of type-definition messages.
	// They are bootstrap state and never defined on the wire themselves.
	WireTypeID       TypeID = 16
	ArrayTypeID      TypeID = 17
	CommonTypeID     TypeID = 18
	SliceTypeID      TypeID = 19
	StructTypeID     TypeID = 20
	FieldTypeID      TypeID = 21
	FieldTypeSliceID TypeID = 22
	MapTypeID        TypeID = 23

	// FirstUserID is the lowest id a definition message may bind; everything
	// below is reserved for builtins. This encoder assigns from FirstUserID+1
	// upward; the exact ids an encoder picks are session state that travels in
	// the definitions, so peers starting at FirstUserID interoperate.
	FirstUserID TypeID = 64
)

// Kind is the wire-level category of a Type.
type Kind uint8

const (
	Invalid Kind = iota
	Bool
	Int
	Uint
	Float
	Complex
	String
	Bytes
	Array
	Slice
	Struct
)

func (k Kind) String() string {
	switch k {
	case Bool:
		return "bool"
	case Int:
		return "int"
	case Uint:
		return "uint"
	case Float:
		return "float"
	case Complex:
		return "complex"
	case String:
		return "string"
	case Bytes:
		return "bytes"
	case Array:
		return "array"
	case Slice:
		return "slice"
	case Struct:
		return "struct"
	default:
		return "invalid"
	}
}

// Scalar reports whether k is a non-composite kind.
func (k Kind) Scalar() bool {
	return k >= Bool && k <= Bytes
}

// Type describes the shape of a value. Exactly the fields relevant to Kind
// are meaningful: Elem for Array and Slice, Len for Array, Fields for Struct,
// Name for Struct (optional, sent on the wire when present).
type Type struct {
	Kind   Kind
	Name   string
	Elem   *Type
	Len    int
	Fields []Field
}

// Field is one struct field: a name plus the field's type. Field order is
// significant; it fixes the field indexes used by the sparse delta encoding.
type Field struct {
	Name string
	Type *Type
}

// Scalar type singletons. Using the singletons keeps shape comparisons cheap
// and registry fingerprinting stable.
var (
	BoolType    = &Type{Kind: Bool}
	IntType     = &Type{Kind: Int}
	UintType    = &Type{Kind: Uint}
	FloatType   = &Type{Kind: Float}
	ComplexType = &Type{Kind: Complex}
	StringType  = &Type{Kind: String}
	BytesType   = &Type{Kind: Bytes}
)

// ArrayOf returns the type of a fixed-length array of n elements of elem.
func ArrayOf(n int, elem *Type) *Type {
	return &Type{Kind: Array, Len: n, Elem: elem}
}

// SliceOf returns the type of a variable-length sequence of elem.
func SliceOf(elem *Type) *Type {
	return &Type{Kind: Slice, Elem: elem}
}

// StructOf returns a struct type with the given name and fields.
// Recursive structs are built by mutating Fields after construction:
//
//	node := wire.StructOf("Node")
//	node.Fields = append(node.Fields,
//	    wire.F("Value", wire.IntType),
//	    wire.F("Next", node),
//	)
func StructOf(name string, fields ...Field) *Type {
	return &Type{Kind: Struct, Name: name, Fields: fields}
}

// F is shorthand for constructing a Field.
func F(name string, t *Type) Field {
	return Field{Name: name, Type: t}
}

// BuiltinID returns the builtin type id for t and true, or 0 and false when
// t is composite and needs a session-assigned id.
func (t *Type) BuiltinID() (TypeID, bool) {
	switch t.Kind {
	case Bool:
		return BoolID, true
	case Int:
		return IntID, true
	case Uint:
		return UintID, true
	case Float:
		return FloatID, true
	case Complex:
		return ComplexID, true
	case String:
		return StringID, true
	case Bytes:
		return BytesID, true
	default:
		return 0, false
	}
}

// BuiltinType returns the scalar singleton bound to a builtin id, or nil.
func BuiltinType(id TypeID) *Type {
	switch id {
	case BoolID:
		return BoolType
	case IntID:
		return IntType
	case UintID:
		return UintType
	case FloatID:
		return FloatType
	case ComplexID:
		return ComplexType
	case StringID:
		return StringType
	case BytesID:
		return BytesType
	default:
		return nil
	}
}

// Composite reports whether t requires a type-definition message.
func (t *Type) Composite() bool {
	_, builtin := t.BuiltinID()
	return !builtin
}

// WireName is the name sent in a definition's CommonType: the declared Name
// when set, otherwise a synthesized type literal such as "[]int" or "[3]Point".
func (t *Type) WireName() string {
	if t.Name != "" {
		return t.Name
	}

	switch t.Kind {
	case Array:
		return "[" + strconv.Itoa(t.Len) + "]" + t.Elem.WireName()
	case Slice:
		return "[]" + t.Elem.WireName()
	case Struct:
		return "" // anonymous structs are sent nameless
	default:
		return t.Kind.String()
	}
}

func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	if t.Kind == Struct && t.Name != "" {
		return t.Name
	}
	if name := t.WireName(); name != "" {
		return name
	}

	return "struct"
}

// HasField reports whether a Struct type declares a field with the given name.
func (t *Type) HasField(name string) bool {
	for _, f := range t.Fields {
		if f.Name == name {
			return true
		}
	}

	return false
}

// Validate checks that t is structurally well-formed: element types present,
// non-negative array lengths, named fields with non-nil types, and cycles
// only through struct types (a struct's id is reserved before its fields are
// derived, so self-reference through a struct is representable on the wire;
// any other cycle is not).
func (t *Type) Validate() error {
	return validate(t, make(map[*Type]int))
}

const (
	visiting = 1
	visited  = 2
)

func validate(t *Type, state map[*Type]int) error {
	if t == nil {
		return fmt.Errorf("%w: nil type", errs.ErrInvalidTypeDef)
	}
	switch state[t] {
	case visited:
		return nil
	case visiting:
		if t.Kind != Struct {
			return fmt.Errorf("%w: recursive %s type does not pass through a struct", errs.ErrInvalidTypeDef, t.Kind)
		}

		return nil
	}
	state[t] = visiting
	defer func() { state[t] = visited }()

	switch t.Kind {
	case Bool, Int, Uint, Float, Complex, String, Bytes:
		return nil
	case Array:
		if t.Len < 0 {
			return fmt.Errorf("%w: negative array length %d", errs.ErrInvalidTypeDef, t.Len)
		}

		return validate(t.Elem, state)
	case Slice:
		return validate(t.Elem, state)
	case Struct:
		seen := make(map[string]struct{}, len(t.Fields))
		for i, f := range t.Fields {
			if f.Name == "" {
				return fmt.Errorf("%w: struct %q field %d has no name", errs.ErrInvalidTypeDef, t.Name, i)
			}
			if _, dup := seen[f.Name]; dup {
				return fmt.Errorf("%w: struct %q has duplicate field %q", errs.ErrInvalidTypeDef, t.Name, f.Name)
			}
			seen[f.Name] = struct{}{}
			if err := validate(f.Type, state); err != nil {
				return err
			}
		}

		return nil
	default:
		return fmt.Errorf("%w: kind %d", errs.ErrUnsupportedKind, t.Kind)
	}
}

// Signature returns a canonical string for t. Two types are materially equal
// exactly when their signatures are equal; the registry deduplicates and
// detects redefinition conflicts through it. Recursive references render as
// back-references to the enclosing struct's visit index, keeping the
// signature finite.
func (t *Type) Signature() string {
	var sb strings.Builder
	signature(t, &sb, make(map[*Type]int))

	return sb.String()
}

func signature(t *Type, sb *strings.Builder, order map[*Type]int) {
	if t == nil {
		sb.WriteString("<nil>")
		return
	}
	if idx, ok := order[t]; ok {
		sb.WriteByte('@')
		sb.WriteString(strconv.Itoa(idx))

		return
	}

	switch t.Kind {
	case Array:
		sb.WriteByte('[')
		sb.WriteString(strconv.Itoa(t.Len))
		sb.WriteByte(']')
		signature(t.Elem, sb, order)
	case Slice:
		sb.WriteString("[]")
		signature(t.Elem, sb, order)
	case Struct:
		order[t] = len(order)
		sb.WriteString("struct ")
		sb.WriteString(t.Name)
		sb.WriteByte('{')
		for i, f := range t.Fields {
			if i > 0 {
				sb.WriteByte(';')
			}
			sb.WriteString(f.Name)
			sb.WriteByte(' ')
			signature(f.Type, sb, order)
		}
		sb.WriteByte('}')
	default:
		sb.WriteString(t.Kind.String())
	}
}

// Equal reports whether t and other are materially the same type.
func (t *Type) Equal(other *Type) bool {
	if t == other {
		return true
	}
	if t == nil || other == nil {
		return false
	}

	return t.Signature() == other.Signature()
}
