package stream

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/gobwire/wire"
)

func TestValue_Kinds(t *testing.T) {
	require.Equal(t, wire.Bool, Bool(true).Kind())
	require.Equal(t, wire.Int, Int(-1).Kind())
	require.Equal(t, wire.Uint, Uint(1).Kind())
	require.Equal(t, wire.Float, Float(1.5).Kind())
	require.Equal(t, wire.Complex, Complex(1+2i).Kind())
	require.Equal(t, wire.String, String("x").Kind())
	require.Equal(t, wire.Bytes, Bytes{1}.Kind())
	require.Equal(t, wire.Slice, Sequence{}.Kind())
	require.Equal(t, wire.Struct, Record{}.Kind())
}

func TestValue_IsZero(t *testing.T) {
	require.True(t, Bool(false).IsZero())
	require.False(t, Bool(true).IsZero())
	require.True(t, Int(0).IsZero())
	require.False(t, Int(-1).IsZero())
	require.True(t, Uint(0).IsZero())
	require.True(t, Float(0).IsZero())
	require.False(t, Float(0.1).IsZero())
	require.True(t, Complex(0).IsZero())
	require.False(t, Complex(1i).IsZero())
	require.True(t, String("").IsZero())
	require.True(t, Bytes(nil).IsZero())
	require.True(t, Bytes{}.IsZero())
	require.False(t, Bytes{0}.IsZero())
}

func TestValue_SequenceIsZero(t *testing.T) {
	require.True(t, Sequence(nil).IsZero())
	require.True(t, Sequence{Int(0), Int(0)}.IsZero()) // all-zero fixed array
	require.False(t, Sequence{Int(0), Int(1)}.IsZero())
	require.False(t, Sequence{nil}.IsZero())
}

func TestValue_RecordIsZero(t *testing.T) {
	require.True(t, Record{}.IsZero())
	require.True(t, Record{"A": Int(0)}.IsZero())
	require.False(t, Record{"A": Int(7)}.IsZero())
}

func TestZeroValue(t *testing.T) {
	require.Equal(t, Bool(false), zeroValue(wire.BoolType))
	require.Equal(t, Int(0), zeroValue(wire.IntType))
	require.Equal(t, Bytes(nil), zeroValue(wire.BytesType))
	require.Equal(t, Sequence(nil), zeroValue(wire.SliceOf(wire.IntType)))
	require.Equal(t, Sequence{Int(0), Int(0)}, zeroValue(wire.ArrayOf(2, wire.IntType)))

	point := wire.StructOf("Point", wire.F("X", wire.IntType), wire.F("Y", wire.IntType))
	require.Equal(t, Record{"X": Int(0), "Y": Int(0)}, zeroValue(point))
}

func TestZeroValue_RecursiveTerminates(t *testing.T) {
	node := wire.StructOf("Node")
	node.Fields = append(node.Fields, wire.F("Value", wire.IntType), wire.F("Next", node))

	v := zeroValue(node)
	rec, ok := v.(Record)
	require.True(t, ok)
	require.Equal(t, Int(0), rec["Value"])
	require.Equal(t, Record{}, rec["Next"]) // cycle bottoms out at the empty record
	require.True(t, rec.IsZero())
}
