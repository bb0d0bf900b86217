package stream

import (
	"bytes"
	"io"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/gobwire/errs"
	"github.com/arloliu/gobwire/wire"
)

func decodeOne(t *testing.T, data []byte, want *wire.Type) (Value, error) {
	t.Helper()

	dec := NewDecoder(bytes.NewReader(data))
	defer dec.Close()

	return dec.Decode(want)
}

func TestDecoder_Scalars(t *testing.T) {
	// Byte vectors from the published format.
	tests := []struct {
		name string
		data []byte
		want Value
	}{
		{"uint 1", []byte{3, 6, 0, 1}, Uint(1)},
		{"uint 255", []byte{4, 6, 0, 255, 255}, Uint(255)},
		{"uint 256", []byte{5, 6, 0, 254, 1, 0}, Uint(256)},
		{"uint 257", []byte{5, 6, 0, 254, 1, 1}, Uint(257)},
		{"int -3", []byte{3, 4, 0, 5}, Int(-3)},
		{"int 0", []byte{3, 4, 0, 0}, Int(0)},
		{"int 3", []byte{3, 4, 0, 6}, Int(3)},
		{"int -256", []byte{5, 4, 0, 254, 1, 255}, Int(-256)},
		{"int 256", []byte{5, 4, 0, 254, 2, 0}, Int(256)},
		{"bool true", []byte{3, 2, 0, 1}, Bool(true)},
		{"bool false", []byte{3, 2, 0, 0}, Bool(false)},
		{"float 0", []byte{3, 8, 0, 0}, Float(0)},
		{"float 1", []byte{5, 8, 0, 254, 240, 63}, Float(1)},
		{"float -2", []byte{4, 8, 0, 255, 192}, Float(-2)},
		{"float pi", []byte{11, 8, 0, 248, 122, 0, 139, 252, 250, 33, 9, 64}, Float(3.141592)},
		{"float +inf", []byte{5, 8, 0, 254, 240, 127}, Float(math.Inf(1))},
		{"float -inf", []byte{5, 8, 0, 254, 240, 255}, Float(math.Inf(-1))},
		{"bytes empty", []byte{3, 10, 0, 0}, Bytes(nil)},
		{"bytes abc", []byte{6, 10, 0, 3, 'a', 'b', 'c'}, Bytes("abc")},
		{"string ab", []byte{5, 12, 0, 2, 'a', 'b'}, String("ab")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := decodeOne(t, tt.data, nil)
			require.NoError(t, err)
			require.Equal(t, tt.want, v)
		})
	}
}

func TestDecoder_FloatNaN(t *testing.T) {
	v, err := decodeOne(t, []byte{11, 8, 0, 248, 1, 0, 0, 0, 0, 0, 248, 127}, wire.FloatType)
	require.NoError(t, err)
	require.True(t, math.IsNaN(float64(v.(Float))))
}

func TestDecoder_SequentialValues(t *testing.T) {
	// Three ints then a bool and a byte slice on one stream.
	data := []byte{
		3, 4, 0, 2, 3, 4, 0, 4, 3, 4, 0, 6,
		3, 2, 0, 1,
		4, 10, 0, 1, '!',
	}
	dec := NewDecoder(bytes.NewReader(data))
	defer dec.Close()

	for _, want := range []Value{Int(1), Int(2), Int(3), Bool(true), Bytes("!")} {
		v, err := dec.Decode(nil)
		require.NoError(t, err)
		require.Equal(t, want, v)
	}

	_, err := dec.Decode(nil)
	require.ErrorIs(t, err, io.EOF)
}

// TestDecoder_GobStructStream replays a stream captured from encoding/gob:
// a definition of struct Point at id 66 followed by the values Point{0, 0}
// and Point{3, 4}.
func TestDecoder_GobStructStream(t *testing.T) {
	data := []byte{
		31, 255, 131, 3, 1, 1, 5, 'P', 'o', 'i', 'n', 't', 1, 255, 132, 0,
		1, 2, 1, 1, 'X', 1, 4, 0, 1, 1, 'Y', 1, 4, 0, 0, 0,
		3, 255, 132, 0,
		7, 255, 132, 1, 6, 1, 8, 0,
	}
	dec := NewDecoder(bytes.NewReader(data))
	defer dec.Close()

	v, err := dec.Decode(nil)
	require.NoError(t, err)
	require.Equal(t, Record{"X": Int(0), "Y": Int(0)}, v)

	v, err = dec.Decode(nil)
	require.NoError(t, err)
	require.Equal(t, Record{"X": Int(3), "Y": Int(4)}, v)

	_, err = dec.Decode(nil)
	require.ErrorIs(t, err, io.EOF)
}

func TestDecoder_WantShapeChecked(t *testing.T) {
	_, err := decodeOne(t, []byte{3, 6, 0, 1}, wire.BoolType)
	require.ErrorIs(t, err, errs.ErrTypeMismatch)

	v, err := decodeOne(t, []byte{3, 6, 0, 1}, wire.UintType)
	require.NoError(t, err)
	require.Equal(t, Uint(1), v)
}

func TestDecoder_AcceptsFirstUserID(t *testing.T) {
	// A fresh encoding/gob process mints id 64 first; this encoder starts at
	// 65. Ids travel in the definitions, so a 64-first stream must decode.
	data := []byte{
		// definition of []int bound to id 64 (header 127 = -64 sign-folded)
		6, 127, 2, 2, 4, 0, 0,
		// value message for id 64: [1]
		5, 255, 128, 0, 1, 2,
	}
	v, err := decodeOne(t, data, wire.SliceOf(wire.IntType))
	require.NoError(t, err)
	require.Equal(t, Sequence{Int(1)}, v)
}

func TestDecoder_UnknownTypeID(t *testing.T) {
	// A value message for id 66 with no definition on this stream.
	_, err := decodeOne(t, []byte{3, 255, 132, 0}, nil)
	require.ErrorIs(t, err, errs.ErrUnknownTypeID)
}

func TestDecoder_TypeIDZero(t *testing.T) {
	_, err := decodeOne(t, []byte{2, 0, 0}, nil)
	require.ErrorIs(t, err, errs.ErrInvalidValue)
}

func TestDecoder_IllegalSingletonDelta(t *testing.T) {
	_, err := decodeOne(t, []byte{3, 6, 1, 1}, nil)
	require.ErrorIs(t, err, errs.ErrInvalidValue)
}

func TestDecoder_TruncatedMessage(t *testing.T) {
	// Length prefix claims five bytes, two follow.
	_, err := decodeOne(t, []byte{5, 6, 0}, nil)
	require.ErrorIs(t, err, errs.ErrTruncatedStream)
}

func TestDecoder_TruncatedBetweenValues(t *testing.T) {
	dec := NewDecoder(bytes.NewReader([]byte{3, 4, 0, 2, 3, 4}))
	defer dec.Close()

	v, err := dec.Decode(nil)
	require.NoError(t, err)
	require.Equal(t, Int(1), v)

	_, err = dec.Decode(nil)
	require.ErrorIs(t, err, errs.ErrTruncatedStream)

	// The decoder stays poisoned.
	_, err = dec.Decode(nil)
	require.ErrorIs(t, err, errs.ErrTruncatedStream)
}

func TestDecoder_TrailingBytesInMessage(t *testing.T) {
	_, err := decodeOne(t, []byte{4, 6, 0, 1, 9}, nil)
	require.ErrorIs(t, err, errs.ErrInvalidValue)
}

func TestDecoder_MessageTooLarge(t *testing.T) {
	dec := NewDecoder(bytes.NewReader([]byte{100, 6, 0, 1}), WithMaxMessageSize(16))
	defer dec.Close()

	_, err := dec.Decode(nil)
	require.ErrorIs(t, err, errs.ErrMessageTooLarge)
}

func TestDecoder_InvalidOptionPoisons(t *testing.T) {
	dec := NewDecoder(bytes.NewReader([]byte{3, 6, 0, 1}), WithMaxMessageSize(0))
	defer dec.Close()

	_, err := dec.Decode(nil)
	require.ErrorIs(t, err, errs.ErrInvalidValue)
}

func TestDecoder_DefinitionConflict(t *testing.T) {
	// Two independent encoders both assign id 65, one to []int and one to
	// []string. Splicing their streams together re-binds the id.
	var a, b bytes.Buffer

	encA := NewEncoder(&a)
	defer encA.Close()
	require.NoError(t, encA.Encode(Sequence{Int(1)}, wire.SliceOf(wire.IntType)))

	encB := NewEncoder(&b)
	defer encB.Close()
	require.NoError(t, encB.Encode(Sequence{String("x")}, wire.SliceOf(wire.StringType)))

	dec := NewDecoder(io.MultiReader(bytes.NewReader(a.Bytes()), bytes.NewReader(b.Bytes())))
	defer dec.Close()

	_, err := dec.Decode(nil)
	require.NoError(t, err)
	_, err = dec.Decode(nil)
	require.ErrorIs(t, err, errs.ErrTypeIDConflict)
}

func TestDecoder_RepeatedDefinitionIsNoOp(t *testing.T) {
	var out bytes.Buffer
	enc := NewEncoder(&out)
	defer enc.Close()
	require.NoError(t, enc.Encode(Sequence{Int(7)}, wire.SliceOf(wire.IntType)))

	// The same session replayed twice repeats the definition verbatim.
	doubled := append(append([]byte{}, out.Bytes()...), out.Bytes()...)
	dec := NewDecoder(bytes.NewReader(doubled))
	defer dec.Close()

	for i := 0; i < 2; i++ {
		v, err := dec.Decode(nil)
		require.NoError(t, err)
		require.Equal(t, Sequence{Int(7)}, v)
	}
}

func TestDecoder_MapDefinitionRejected(t *testing.T) {
	// A hand-built definition selecting the MapT meta-field.
	data := []byte{
		14, 255, 129, 4, 1, 2, 255, 130, 0, 1, 4, 1, 4, 0, 0,
	}
	_, err := decodeOne(t, data, nil)
	require.ErrorIs(t, err, errs.ErrUnsupportedKind)
}

func TestDecoder_ArrayCountMismatch(t *testing.T) {
	var out bytes.Buffer
	enc := NewEncoder(&out)
	defer enc.Close()
	require.NoError(t, enc.Encode(Sequence{Uint(1), Uint(2)}, wire.ArrayOf(2, wire.UintType)))

	// Corrupt the element count inside the value message (count byte 2 -> 3).
	data := out.Bytes()
	data[len(data)-3] = 3

	_, err := decodeOne(t, data, nil)
	require.ErrorIs(t, err, errs.ErrInvalidValue)
}

func TestDecoder_ElementCountBeyondMessage(t *testing.T) {
	// A []int value message claiming 200 elements in a 2-byte remainder.
	var out bytes.Buffer
	enc := NewEncoder(&out)
	defer enc.Close()
	require.NoError(t, enc.Encode(Sequence{Int(1)}, wire.SliceOf(wire.IntType)))

	stream := out.Bytes()
	def := stream[:13]
	bad := append(append([]byte{}, def...), 5, 255, 130, 0, 200, 2)
	_, err := decodeOne(t, bad, nil)
	require.ErrorIs(t, err, errs.ErrInvalidValue)
}
