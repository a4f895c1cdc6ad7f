package csgen

import (
	"testing"

	"github.com/mkosieradzki/protogen/internal/ir"

	"github.com/stretchr/testify/require"
)

func TestFieldTag(t *testing.T) {
	tests := []struct {
		name  string
		field ir.Field
		tag   uint32
		bytes string
		size  int
	}{
		{
			name:  "int32 field 1",
			field: ir.Field{Number: 1, Kind: ir.KindInt32, OneofIndex: -1},
			tag:   8,
			bytes: "8",
			size:  1,
		},
		{
			name:  "string field 2",
			field: ir.Field{Number: 2, Kind: ir.KindString, OneofIndex: -1},
			tag:   18,
			bytes: "18",
			size:  1,
		},
		{
			name:  "packed int32 field 3",
			field: ir.Field{Number: 3, Kind: ir.KindInt32, IsRepeated: true, IsPacked: true, OneofIndex: -1},
			tag:   26,
			bytes: "26",
			size:  1,
		},
		{
			name:  "fixed64 field 5",
			field: ir.Field{Number: 5, Kind: ir.KindFixed64, OneofIndex: -1},
			tag:   41,
			bytes: "41",
			size:  1,
		},
		{
			name:  "map field 4",
			field: ir.Field{Number: 4, IsMap: true, Kind: ir.KindMessage, MapKeyKind: ir.KindString, MapValueKind: ir.KindInt32, OneofIndex: -1},
			tag:   34,
			bytes: "34",
			size:  1,
		},
		{
			name:  "field 16 needs a two byte tag",
			field: ir.Field{Number: 16, Kind: ir.KindInt32, OneofIndex: -1},
			tag:   128,
			bytes: "128, 1",
			size:  2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tag := fieldTag(tt.field)
			require.Equal(t, tt.tag, tag)
			require.Equal(t, tt.bytes, tagBytes(tag))
			require.Equal(t, tt.size, tagSize(tag))
		})
	}
}

func TestAlternateTag(t *testing.T) {
	// A packed-declared field also accepts the element-typed tag, and an
	// unpacked packable field also accepts the length-delimited tag.
	packed := ir.Field{Number: 3, Kind: ir.KindInt32, IsRepeated: true, IsPacked: true, OneofIndex: -1}
	require.Equal(t, uint32(26), fieldTag(packed))
	require.Equal(t, uint32(24), alternateTag(packed))

	unpacked := ir.Field{Number: 3, Kind: ir.KindFixed32, IsRepeated: true, OneofIndex: -1}
	require.Equal(t, uint32(29), fieldTag(unpacked))
	require.Equal(t, uint32(26), alternateTag(unpacked))
}

func TestAlternateTagAbsent(t *testing.T) {
	require.Zero(t, alternateTag(ir.Field{Number: 1, Kind: ir.KindInt32, OneofIndex: -1}))
	require.Zero(t, alternateTag(ir.Field{Number: 1, Kind: ir.KindString, IsRepeated: true, OneofIndex: -1}))
	require.Zero(t, alternateTag(ir.Field{Number: 1, Kind: ir.KindMessage, IsRepeated: true, OneofIndex: -1}))
	require.Zero(t, alternateTag(ir.Field{Number: 1, IsMap: true, Kind: ir.KindMessage, MapKeyKind: ir.KindInt32, MapValueKind: ir.KindInt32, OneofIndex: -1}))
}

func TestScalarWireType(t *testing.T) {
	varints := []ir.Kind{ir.KindBool, ir.KindInt32, ir.KindInt64, ir.KindUint32, ir.KindUint64, ir.KindSint32, ir.KindSint64, ir.KindEnum}
	for _, kind := range varints {
		require.Equal(t, uint32(8), makeTag(1, scalarWireType(kind)))
	}
	require.Equal(t, uint32(13), makeTag(1, scalarWireType(ir.KindFloat)))
	require.Equal(t, uint32(9), makeTag(1, scalarWireType(ir.KindDouble)))
	require.Equal(t, uint32(10), makeTag(1, scalarWireType(ir.KindString)))
}
