// Package gobwire implements a self-describing binary codec compatible with
// the wire format of Go's encoding/gob.
//
// A stream is a sequence of length-prefixed messages. Before a value of a
// composite type is sent, the encoder transmits a definition of that type as
// a message of its own, so every stream carries enough information to decode
// itself without any out-of-band schema. Values are modeled explicitly
// through the stream.Value interface instead of reflection, which makes the
// codec usable for schema-driven tooling, protocol inspection, and talking
// to gob peers from systems that cannot use encoding/gob directly.
//
// # Basic Usage
//
// Encoding a struct value:
//
//	import (
//	    "github.com/arloliu/gobwire"
//	    "github.com/arloliu/gobwire/stream"
//	    "github.com/arloliu/gobwire/wire"
//	)
//
//	point := wire.StructOf("Point",
//	    wire.F("X", wire.IntType),
//	    wire.F("Y", wire.IntType),
//	)
//	data, err := gobwire.Marshal(stream.Record{"X": stream.Int(3), "Y": stream.Int(4)}, point)
//
// Decoding it back:
//
//	v, err := gobwire.Unmarshal(data, point)
//
// For incremental work on an io.Writer/io.Reader pair, use stream.Encoder
// and stream.Decoder directly; multiple values of mixed types can share one
// session and each composite type is defined exactly once.
//
// # Compressed Envelopes
//
// MarshalCompressed wraps a complete stream in a small envelope carrying a
// compression tag and an xxHash64 integrity checksum:
//
//	data, err := gobwire.MarshalCompressed(v, point, format.CompressionZstd)
//	v, err = gobwire.UnmarshalCompressed(data, point)
//
// The envelope is not part of the gob wire format; peers expecting a bare
// stream should use Marshal.
package gobwire

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/arloliu/gobwire/compress"
	"github.com/arloliu/gobwire/endian"
	"github.com/arloliu/gobwire/errs"
	"github.com/arloliu/gobwire/format"
	"github.com/arloliu/gobwire/internal/hash"
	"github.com/arloliu/gobwire/internal/pool"
	"github.com/arloliu/gobwire/stream"
	"github.com/arloliu/gobwire/wire"
)

// Value is the interface satisfied by every decoded or encodable value.
// It is an alias for stream.Value; see that package for the concrete kinds.
type Value = stream.Value

// envelopeEngine fixes the byte order of the envelope header fields.
var envelopeEngine = endian.GetLittleEndianEngine()

// Marshal encodes a single value as a complete self-describing stream.
//
// The shape t describes the value's wire type. It may be nil for scalar
// values, in which case the type is inferred from the concrete kind of v;
// composite values always require an explicit shape.
func Marshal(v Value, t *wire.Type) ([]byte, error) {
	var buf bytes.Buffer

	enc := stream.NewEncoder(&buf)
	defer enc.Close()

	if err := enc.Encode(v, t); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Unmarshal decodes a stream holding exactly one value.
//
// The want shape, when non-nil, is checked against the type the stream
// declares; a mismatch fails with errs.ErrTypeMismatch. Data remaining
// after the first value fails with errs.ErrTrailingData; use UnmarshalAll
// for streams carrying several values.
func Unmarshal(data []byte, want *wire.Type) (Value, error) {
	r := bytes.NewReader(data)

	dec := stream.NewDecoder(r)
	defer dec.Close()

	v, err := dec.Decode(want)
	if err != nil {
		return nil, err
	}
	if n := r.Len(); n > 0 {
		return nil, fmt.Errorf("%w: %d bytes after value", errs.ErrTrailingData, n)
	}

	return v, nil
}

// UnmarshalAll decodes every value in the stream until EOF.
//
// All values must share the shape want when it is non-nil. A stream ending
// cleanly after zero values yields an empty slice.
func UnmarshalAll(data []byte, want *wire.Type) ([]Value, error) {
	dec := stream.NewDecoder(bytes.NewReader(data))
	defer dec.Close()

	var values []Value
	for {
		v, err := dec.Decode(want)
		if errors.Is(err, io.EOF) {
			return values, nil
		}
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
}

// MarshalCompressed encodes a single value and wraps the resulting stream in
// a compressed envelope.
//
// The envelope header records the compression type and an xxHash64 checksum
// of the uncompressed stream, validated by UnmarshalCompressed.
func MarshalCompressed(v Value, t *wire.Type, ct format.CompressionType) ([]byte, error) {
	raw, err := Marshal(v, t)
	if err != nil {
		return nil, err
	}

	codec, err := compress.GetCodec(ct)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", errs.ErrInvalidEnvelope, err)
	}

	payload, err := codec.Compress(raw)
	if err != nil {
		return nil, err
	}

	buf := pool.GetMessageBuffer()
	defer pool.PutMessageBuffer(buf)

	buf.MustWrite([]byte{format.EnvelopeMagic, byte(ct)})
	buf.B = envelopeEngine.AppendUint32(buf.B, uint32(len(payload)))
	buf.B = envelopeEngine.AppendUint64(buf.B, hash.Sum64(raw))
	buf.MustWrite(payload)

	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())

	return out, nil
}

// UnmarshalCompressed opens an envelope produced by MarshalCompressed and
// decodes the single value inside.
//
// The header is validated strictly: the magic byte, the compression tag, the
// payload length, and the checksum of the decompressed stream must all
// match, otherwise errs.ErrInvalidEnvelope or errs.ErrChecksumMismatch is
// returned.
func UnmarshalCompressed(data []byte, want *wire.Type) (Value, error) {
	if len(data) < format.EnvelopeHeaderSize {
		return nil, fmt.Errorf("%w: %d bytes, header needs %d",
			errs.ErrInvalidEnvelope, len(data), format.EnvelopeHeaderSize)
	}
	if data[0] != format.EnvelopeMagic {
		return nil, fmt.Errorf("%w: bad magic 0x%02x", errs.ErrInvalidEnvelope, data[0])
	}

	ct := format.CompressionType(data[1])
	if !ct.Valid() {
		return nil, fmt.Errorf("%w: unknown compression tag 0x%02x", errs.ErrInvalidEnvelope, data[1])
	}

	payloadLen := envelopeEngine.Uint32(data[2:6])
	sum := envelopeEngine.Uint64(data[6:14])

	payload := data[format.EnvelopeHeaderSize:]
	if uint32(len(payload)) != payloadLen {
		return nil, fmt.Errorf("%w: payload is %d bytes, header claims %d",
			errs.ErrInvalidEnvelope, len(payload), payloadLen)
	}

	codec, err := compress.GetCodec(ct)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", errs.ErrInvalidEnvelope, err)
	}

	raw, err := codec.Decompress(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", errs.ErrInvalidEnvelope, err)
	}
	if got := hash.Sum64(raw); got != sum {
		return nil, fmt.Errorf("%w: got 0x%016x, header claims 0x%016x",
			errs.ErrChecksumMismatch, got, sum)
	}

	return Unmarshal(raw, want)
}
