// Package endian provides byte order utilities for fixed-width binary fields.
//
// The gob-style message stream itself is byte-order free (its integers are
// varint encoded), but the compressed envelope header carries fixed-width
// little-endian fields. This package combines ByteOrder and AppendByteOrder
// from encoding/binary into a single interface so header writers can use the
// faster append-style API:
//
//	engine := endian.GetLittleEndianEngine()
//	buf = engine.AppendUint32(buf, payloadLen)
//	buf = engine.AppendUint64(buf, checksum)
//
// The returned engines are the stateless binary.LittleEndian and
// binary.BigEndian values and are safe for concurrent use.
package endian

import "encoding/binary"

// EndianEngine combines ByteOrder and AppendByteOrder interfaces from
// encoding/binary into a single interface for convenient byte order
// operations.
//
// This interface is satisfied by binary.LittleEndian and binary.BigEndian
// from the standard library, making it fully compatible with existing Go
// code while providing access to both read/write and append operations.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// GetLittleEndianEngine returns the little-endian engine.
//
// Little-endian is the byte order used by the gobwire envelope header.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// GetBigEndianEngine returns the big-endian engine.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}
