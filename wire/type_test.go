package wire

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/gobwire/errs"
)

func TestBuiltinID(t *testing.T) {
	tests := []struct {
		typ *Type
		id  TypeID
	}{
		{BoolType, BoolID},
		{IntType, IntID},
		{UintType, UintID},
		{FloatType, FloatID},
		{ComplexType, ComplexID},
		{StringType, StringID},
		{BytesType, BytesID},
	}
	for _, tt := range tests {
		id, ok := tt.typ.BuiltinID()
		require.True(t, ok)
		require.Equal(t, tt.id, id)
		require.False(t, tt.typ.Composite())
		require.Same(t, tt.typ, BuiltinType(tt.id))
	}

	_, ok := SliceOf(IntType).BuiltinID()
	require.False(t, ok)
	require.Nil(t, BuiltinType(FirstUserID))
}

func TestWireName(t *testing.T) {
	require.Equal(t, "[]int", SliceOf(IntType).WireName())
	require.Equal(t, "[3]bool", ArrayOf(3, BoolType).WireName())
	require.Equal(t, "[][]string", SliceOf(SliceOf(StringType)).WireName())
	require.Equal(t, "Point", StructOf("Point").WireName())
	require.Equal(t, "", StructOf("").WireName())
	require.Equal(t, "[]Point", SliceOf(StructOf("Point")).WireName())
}

func TestValidate_OK(t *testing.T) {
	point := StructOf("Point", F("X", IntType), F("Y", IntType))
	require.NoError(t, point.Validate())
	require.NoError(t, SliceOf(point).Validate())
	require.NoError(t, ArrayOf(0, UintType).Validate())

	// Recursion through a struct is allowed.
	node := StructOf("Node")
	node.Fields = append(node.Fields, F("Value", IntType), F("Next", node))
	require.NoError(t, node.Validate())

	tree := StructOf("Tree")
	tree.Fields = append(tree.Fields, F("Children", SliceOf(tree)))
	require.NoError(t, tree.Validate())
}

func TestValidate_Errors(t *testing.T) {
	require.ErrorIs(t, SliceOf(nil).Validate(), errs.ErrInvalidTypeDef)
	require.ErrorIs(t, ArrayOf(-1, IntType).Validate(), errs.ErrInvalidTypeDef)
	require.ErrorIs(t, StructOf("S", F("", IntType)).Validate(), errs.ErrInvalidTypeDef)
	require.ErrorIs(t, StructOf("S", F("A", IntType), F("A", BoolType)).Validate(), errs.ErrInvalidTypeDef)
	require.ErrorIs(t, (&Type{Kind: Kind(99)}).Validate(), errs.ErrUnsupportedKind)

	// A cycle that never passes through a struct is not representable.
	loop := &Type{Kind: Slice}
	loop.Elem = loop
	require.ErrorIs(t, loop.Validate(), errs.ErrInvalidTypeDef)
}

func TestSignature(t *testing.T) {
	a := StructOf("Point", F("X", IntType), F("Y", IntType))
	b := StructOf("Point", F("X", IntType), F("Y", IntType))
	require.Equal(t, a.Signature(), b.Signature())
	require.True(t, a.Equal(b))

	// Field order matters.
	c := StructOf("Point", F("Y", IntType), F("X", IntType))
	require.False(t, a.Equal(c))

	// Name matters.
	d := StructOf("Punkt", F("X", IntType), F("Y", IntType))
	require.False(t, a.Equal(d))

	require.NotEqual(t, SliceOf(IntType).Signature(), ArrayOf(1, IntType).Signature())
	require.NotEqual(t, BytesType.Signature(), SliceOf(UintType).Signature())
}

func TestSignature_Recursive(t *testing.T) {
	mk := func() *Type {
		n := StructOf("Node")
		n.Fields = append(n.Fields, F("Next", n))

		return n
	}
	a, b := mk(), mk()
	require.Equal(t, a.Signature(), b.Signature())
	require.True(t, a.Equal(b))

	// The signature terminates despite the cycle.
	require.Contains(t, a.Signature(), "@0")
}
