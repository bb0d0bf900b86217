// Package encoding implements the primitive byte-level codec the message
// stream is built from: variable-length unsigned and signed integers,
// byte-reversed IEEE-754 floats, booleans, and length-prefixed byte strings.
//
// The integer encoding is two-state. An unsigned value below 128 is written
// verbatim as a single byte. Anything larger is written as one length byte
// holding 256 minus the count of following bytes, then the value's minimal
// big-endian representation:
//
//	127  -> 0x7F
//	128  -> 0xFF 0x80
//	256  -> 0xFE 0x01 0x00
//
// Signed integers fold their sign into the low bit (negative i becomes
// ^i<<1|1) so small magnitudes of either sign stay small on the wire, and
// share the unsigned codec. Floats reverse the bytes of the IEEE-754 bit
// pattern before unsigned encoding, which turns values with short mantissas
// into small integers.
//
// Writers append to a pool.ByteBuffer; Reader decodes from a byte slice with
// strict bounds checking, returning errs sentinels on malformed input.
package encoding
