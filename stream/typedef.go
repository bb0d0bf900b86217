package stream

import (
	"fmt"
	"math"

	"github.com/arloliu/gobwire/errs"
	"github.com/arloliu/gobwire/wire"
)

// The bodies of type-definition messages are themselves struct values,
// encoded by the ordinary struct machinery against the fixed meta shapes
// below. Both ends know the meta shapes ahead of time, bootstrapping the
// protocol.
//
// Field order fixes the wire deltas and must match the published format:
// WireType selects exactly one of ArrayT (index 0), SliceT (1), StructT (2)
// or MapT (3); maps are outside this codec's scope and only parsed far
// enough to be rejected cleanly.
var (
	metaCommonType = wire.StructOf("CommonType",
		wire.F("Name", wire.StringType),
		wire.F("Id", wire.IntType),
	)
	metaArrayType = wire.StructOf("ArrayType",
		wire.F("CommonType", metaCommonType),
		wire.F("Elem", wire.IntType),
		wire.F("Len", wire.IntType),
	)
	metaSliceType = wire.StructOf("SliceType",
		wire.F("CommonType", metaCommonType),
		wire.F("Elem", wire.IntType),
	)
	metaFieldType = wire.StructOf("FieldType",
		wire.F("Name", wire.StringType),
		wire.F("Id", wire.IntType),
	)
	metaStructType = wire.StructOf("StructType",
		wire.F("CommonType", metaCommonType),
		wire.F("Field", wire.SliceOf(metaFieldType)),
	)
	metaMapType = wire.StructOf("MapType",
		wire.F("CommonType", metaCommonType),
		wire.F("Key", wire.IntType),
		wire.F("Elem", wire.IntType),
	)
	metaWireType = wire.StructOf("WireType",
		wire.F("ArrayT", metaArrayType),
		wire.F("SliceT", metaSliceType),
		wire.F("StructT", metaStructType),
		wire.F("MapT", metaMapType),
	)
)

// typeDef is the parsed form of one type-definition message: the shape of a
// composite type expressed through type ids instead of resolved types.
type typeDef struct {
	kind   wire.Kind // Array, Slice or Struct
	name   string
	elem   wire.TypeID // Array, Slice
	len    int         // Array
	fields []fieldDef  // Struct
}

type fieldDef struct {
	name string
	id   wire.TypeID
}

// signature returns a canonical string for conflict detection: re-defining
// an id with a different signature is a protocol violation.
func (d *typeDef) signature() string {
	switch d.kind {
	case wire.Array:
		return fmt.Sprintf("array %q elem=%d len=%d", d.name, d.elem, d.len)
	case wire.Slice:
		return fmt.Sprintf("slice %q elem=%d", d.name, d.elem)
	default:
		sig := fmt.Sprintf("struct %q", d.name)
		for _, f := range d.fields {
			sig += fmt.Sprintf(" %s=%d", f.name, f.id)
		}

		return sig
	}
}

// record renders the definition as a WireType meta-struct value ready for
// the ordinary struct encoder.
func (d *typeDef) record(id wire.TypeID) Record {
	common := Record{"Name": String(d.name), "Id": Int(id)}

	switch d.kind {
	case wire.Array:
		return Record{"ArrayT": Record{
			"CommonType": common,
			"Elem":       Int(d.elem),
			"Len":        Int(d.len),
		}}
	case wire.Slice:
		return Record{"SliceT": Record{
			"CommonType": common,
			"Elem":       Int(d.elem),
		}}
	default:
		fields := make(Sequence, len(d.fields))
		for i, f := range d.fields {
			fields[i] = Record{"Name": String(f.name), "Id": Int(f.id)}
		}

		return Record{"StructT": Record{
			"CommonType": common,
			"Field":      fields,
		}}
	}
}

// typeDefFromRecord interprets a decoded WireType meta-struct. The id is the
// negated definition-message header, cross-checked against the embedded
// CommonType.Id when present.
func typeDefFromRecord(id wire.TypeID, rec Record) (*typeDef, error) {
	if mv := rec["MapT"]; mv != nil && !mv.IsZero() {
		return nil, fmt.Errorf("%w: map type definition for id %d", errs.ErrUnsupportedKind, id)
	}

	var (
		def    *typeDef
		common Record
	)
	switch {
	case rec["ArrayT"] != nil && !rec["ArrayT"].IsZero():
		at, ok := rec["ArrayT"].(Record)
		if !ok {
			return nil, fmt.Errorf("%w: malformed ArrayT", errs.ErrInvalidTypeDef)
		}
		length := asInt(at["Len"])
		if length > math.MaxInt32 {
			return nil, fmt.Errorf("%w: array length %d in definition %d", errs.ErrOverflow, length, id)
		}
		def = &typeDef{
			kind: wire.Array,
			elem: wire.TypeID(asInt(at["Elem"])),
			len:  int(length),
		}
		common, _ = at["CommonType"].(Record)
	case rec["SliceT"] != nil && !rec["SliceT"].IsZero():
		st, ok := rec["SliceT"].(Record)
		if !ok {
			return nil, fmt.Errorf("%w: malformed SliceT", errs.ErrInvalidTypeDef)
		}
		def = &typeDef{
			kind: wire.Slice,
			elem: wire.TypeID(asInt(st["Elem"])),
		}
		common, _ = st["CommonType"].(Record)
	case rec["StructT"] != nil && !rec["StructT"].IsZero():
		st, ok := rec["StructT"].(Record)
		if !ok {
			return nil, fmt.Errorf("%w: malformed StructT", errs.ErrInvalidTypeDef)
		}
		def = &typeDef{kind: wire.Struct}
		if seq, ok := st["Field"].(Sequence); ok {
			def.fields = make([]fieldDef, 0, len(seq))
			for _, fv := range seq {
				fr, ok := fv.(Record)
				if !ok {
					return nil, fmt.Errorf("%w: malformed field descriptor", errs.ErrInvalidTypeDef)
				}
				name, _ := fr["Name"].(String)
				if name == "" {
					return nil, fmt.Errorf("%w: unnamed field in struct definition %d", errs.ErrInvalidTypeDef, id)
				}
				def.fields = append(def.fields, fieldDef{name: string(name), id: wire.TypeID(asInt(fr["Id"]))})
			}
		}
		common, _ = st["CommonType"].(Record)
	default:
		return nil, fmt.Errorf("%w: definition %d selects no type", errs.ErrInvalidTypeDef, id)
	}

	if common != nil {
		if name, ok := common["Name"].(String); ok {
			def.name = string(name)
		}
		if embedded := asInt(common["Id"]); embedded != 0 && embedded != int64(id) {
			return nil, fmt.Errorf("%w: header id %d disagrees with embedded id %d", errs.ErrInvalidTypeDef, id, embedded)
		}
	}

	if (def.kind == wire.Array || def.kind == wire.Slice) && def.elem == 0 {
		return nil, fmt.Errorf("%w: definition %d has no element type", errs.ErrInvalidTypeDef, id)
	}
	if def.kind == wire.Array && def.len < 0 {
		return nil, fmt.Errorf("%w: definition %d has negative length", errs.ErrInvalidTypeDef, id)
	}

	return def, nil
}

func asInt(v Value) int64 {
	if i, ok := v.(Int); ok {
		return int64(i)
	}

	return 0
}
