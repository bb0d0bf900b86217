package stream

import (
	"fmt"

	"github.com/arloliu/gobwire/errs"
	"github.com/arloliu/gobwire/internal/hash"
	"github.com/arloliu/gobwire/wire"
)

// typeRegistry is the session-scoped mapping from type id to wire type.
// Each Encoder and each Decoder owns one; they are never shared. The
// registry is append-only: within a session an id's binding never changes
// once observed.
//
// The encode side mints ids with register, deduplicating structurally equal
// shapes through xxhash fingerprints of their canonical signatures. The
// decode side binds ids with accept and resolves definitions into shape
// trees lazily, so definitions may reference each other in any order the
// sender's depth-first walk produces, including mutual recursion.
type typeRegistry struct {
	entries map[wire.TypeID]*regEntry
	bySig   map[uint64][]wire.TypeID
	next    wire.TypeID
}

type regEntry struct {
	typ *wire.Type // resolved shape; nil while a decoder-side def is pending
	def *typeDef   // decoder-side wire form, kept for conflict checks
}

func newTypeRegistry() *typeRegistry {
	reg := &typeRegistry{
		entries: make(map[wire.TypeID]*regEntry),
		bySig:   make(map[uint64][]wire.TypeID),
		next:    wire.FirstUserID,
	}
	for id := wire.BoolID; id <= wire.ComplexID; id++ {
		reg.entries[id] = &regEntry{typ: wire.BuiltinType(id)}
	}

	return reg
}

// lookup returns the shape bound to id, resolving a pending definition on
// first use.
func (reg *typeRegistry) lookup(id wire.TypeID) (*wire.Type, error) {
	e := reg.entries[id]
	if e == nil {
		return nil, fmt.Errorf("%w: id %d", errs.ErrUnknownTypeID, id)
	}
	if e.typ == nil {
		if err := reg.resolve(id, e); err != nil {
			return nil, err
		}
	}

	return e.typ, nil
}

// findID returns the id already assigned to a structurally equal shape.
func (reg *typeRegistry) findID(t *wire.Type) (wire.TypeID, bool) {
	if id, ok := t.BuiltinID(); ok {
		return id, true
	}
	sig := t.Signature()
	for _, id := range reg.bySig[hash.Sum64String(sig)] {
		if e := reg.entries[id]; e != nil && e.typ != nil && e.typ.Signature() == sig {
			return id, true
		}
	}

	return 0, false
}

// register mints an id for a composite shape not yet present, or returns the
// existing id of a structurally equal shape. The id is bound before the
// caller walks t's children, so recursive shapes find their own id.
func (reg *typeRegistry) register(t *wire.Type) (id wire.TypeID, isNew bool) {
	if id, ok := reg.findID(t); ok {
		return id, false
	}

	reg.next++
	id = reg.next
	fp := hash.Sum64String(t.Signature())
	reg.entries[id] = &regEntry{typ: t}
	reg.bySig[fp] = append(reg.bySig[fp], id)

	return id, true
}

// accept binds id to a received definition. Re-binding an id to a different
// definition fails with ErrTypeIDConflict; an identical re-definition is a
// no-op, so a sender may repeat definitions on a resumed stream.
func (reg *typeRegistry) accept(id wire.TypeID, def *typeDef) error {
	if id < wire.FirstUserID {
		return fmt.Errorf("%w: definition for reserved id %d", errs.ErrInvalidTypeDef, id)
	}
	if e := reg.entries[id]; e != nil {
		if e.def != nil && e.def.signature() == def.signature() {
			return nil
		}

		return fmt.Errorf("%w: id %d already bound", errs.ErrTypeIDConflict, id)
	}
	reg.entries[id] = &regEntry{def: def}

	return nil
}

// resolve materializes a pending definition into a shape tree. The shell is
// bound before child ids resolve, so self- and mutually-recursive structs
// terminate; a child id with no definition fails with ErrUnknownTypeID.
func (reg *typeRegistry) resolve(id wire.TypeID, e *regEntry) error {
	def := e.def

	switch def.kind {
	case wire.Array:
		shell := &wire.Type{Kind: wire.Array, Len: def.len}
		e.typ = shell
		elem, err := reg.lookup(def.elem)
		if err != nil {
			e.typ = nil
			return fmt.Errorf("%w: resolving element of type %d", err, id)
		}
		shell.Elem = elem
	case wire.Slice:
		shell := &wire.Type{Kind: wire.Slice}
		e.typ = shell
		elem, err := reg.lookup(def.elem)
		if err != nil {
			e.typ = nil
			return fmt.Errorf("%w: resolving element of type %d", err, id)
		}
		shell.Elem = elem
	case wire.Struct:
		shell := &wire.Type{Kind: wire.Struct, Name: def.name}
		e.typ = shell
		fields := make([]wire.Field, 0, len(def.fields))
		for _, f := range def.fields {
			ft, err := reg.lookup(f.id)
			if err != nil {
				e.typ = nil
				return fmt.Errorf("%w: resolving field %q of type %d", err, f.name, id)
			}
			fields = append(fields, wire.F(f.name, ft))
		}
		shell.Fields = fields
	default:
		return fmt.Errorf("%w: definition kind %s", errs.ErrUnsupportedKind, def.kind)
	}

	return nil
}
