// Package stream implements the self-describing message codec: the tagged
// Value model, the per-session type registry, and the Encoder and Decoder
// that exchange length-prefixed type-definition and value messages over a
// byte stream.
//
// Every message is a varint byte length followed by the message body. A body
// starting with a negative type id defines the wire type bound to the
// negated id; a positive type id announces one value of an already-known
// type. Composite types (arrays, slices, structs) are defined once per
// session, depth-first, before the first value that uses them; the builtin
// scalar types need no definitions.
//
// An Encoder and a Decoder each own an independent registry seeded with the
// builtins. Instances are single-owner: they must not be shared across
// concurrent callers, and after any decode error the instance must be
// discarded, since the registry may hold partially applied definitions.
//
// Basic usage:
//
//	var buf bytes.Buffer
//	enc := stream.NewEncoder(&buf)
//	point := wire.StructOf("Point", wire.F("X", wire.IntType), wire.F("Y", wire.IntType))
//	err := enc.Encode(stream.Record{"X": stream.Int(3), "Y": stream.Int(4)}, point)
//
//	dec := stream.NewDecoder(&buf)
//	v, err := dec.Decode(point) // or Decode(nil) to accept any type
package stream
