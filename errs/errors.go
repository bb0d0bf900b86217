// Package errs defines the sentinel errors shared by all gobwire packages.
//
// Errors are wrapped with context at the call site using fmt.Errorf and the
// %w verb, so callers can match them with errors.Is:
//
//	value, err := dec.Decode(nil)
//	if errors.Is(err, errs.ErrTruncatedStream) {
//	    // wait for more input
//	}
package errs

import "errors"

var (
	// ErrTruncatedStream indicates the input ended in the middle of a message
	// or of a length-prefixed field. In a streaming context the caller may
	// retry after more input arrives; in a one-shot decode it is fatal.
	ErrTruncatedStream = errors.New("gobwire: truncated stream")

	// ErrInvalidLength indicates a varint length byte that claims more bytes
	// than a 64-bit integer can hold.
	ErrInvalidLength = errors.New("gobwire: invalid varint length")

	// ErrOverflow indicates a decoded integer does not fit the caller's width.
	ErrOverflow = errors.New("gobwire: integer overflow")

	// ErrUnknownTypeID indicates a value message referenced a type id that was
	// never defined on the stream.
	ErrUnknownTypeID = errors.New("gobwire: unknown type id")

	// ErrTypeIDConflict indicates a type-definition message tried to re-bind
	// an id to a structurally different type.
	ErrTypeIDConflict = errors.New("gobwire: type id conflict")

	// ErrTypeMismatch indicates the caller's target shape is structurally
	// incompatible with the type decoded from the wire.
	ErrTypeMismatch = errors.New("gobwire: type mismatch")

	// ErrUnsupportedKind indicates a wire construct outside the supported set
	// (maps, interfaces and channels are not part of this codec).
	ErrUnsupportedKind = errors.New("gobwire: unsupported kind")

	// ErrInvalidTypeDef indicates a malformed type-definition message body.
	ErrInvalidTypeDef = errors.New("gobwire: invalid type definition")

	// ErrInvalidValue indicates a malformed value message body, such as a bad
	// field delta or an element count that contradicts the declared type.
	ErrInvalidValue = errors.New("gobwire: invalid value message")

	// ErrMessageTooLarge indicates a message length prefix above the decoder's
	// configured limit.
	ErrMessageTooLarge = errors.New("gobwire: message too large")

	// ErrTrailingData indicates leftover bytes after a one-shot decode.
	ErrTrailingData = errors.New("gobwire: trailing data")

	// ErrInvalidEnvelope indicates a compressed envelope with a bad magic
	// byte, compression tag or header length.
	ErrInvalidEnvelope = errors.New("gobwire: invalid envelope")

	// ErrChecksumMismatch indicates envelope payload corruption.
	ErrChecksumMismatch = errors.New("gobwire: checksum mismatch")
)
